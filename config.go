package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	configloader "github.com/tiiuae/go-configloader"
	"gopkg.in/yaml.v3"
)

const (
	defaultSceneWorkerCount    = 2
	defaultDecodeWorkerCount   = 4
	defaultCompressWorkerCount = 1
	defaultCompressionMode     = compressionModeNone
)

type config struct {
	DataDir             string          `usage:"Path to the dataset root containing the metadata tables and sample files"`
	OutDir              string          `usage:"Directory the bags are written into"`
	Scenes              sceneList       `usage:"Comma-separated scene names to convert. An empty value or '*' converts every scene."`
	SceneWorkerCount    int             `usage:"Number of scenes converted concurrently"`
	DecodeWorkerCount   int             `usage:"Number of concurrent sample file decoders per scene"`
	CompressionMode     compressionMode `usage:"Compression applied to finished bags: none or xz"`
	CompressWorkerCount int             `usage:"Number of concurrent bag compressors"`
	LogLevel            string          `usage:"Log level: trace, debug, info, warn or error"`
}

func loadConfig(args []string) (*config, error) {
	cfg := &config{
		OutDir:              "bags",
		Scenes:              sceneList{All: true},
		SceneWorkerCount:    defaultSceneWorkerCount,
		DecodeWorkerCount:   defaultDecodeWorkerCount,
		CompressionMode:     defaultCompressionMode,
		CompressWorkerCount: defaultCompressWorkerCount,
		LogLevel:            zerolog.LevelInfoValue,
	}
	loader := configloader.New()
	loader.Args = args
	loader.EnvPrefix = "NUSCENES2BAG"
	// The loader reports missing env files as errors; the env file is
	// optional here.
	loader.EnvFilePaths = nil
	loader.ConfigType = "yaml"
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *config) validate() error {
	if c.DataDir == "" {
		return errors.New("'data-dir' must not be empty")
	}
	if c.OutDir == "" {
		return errors.New("'out-dir' must not be empty")
	}
	if c.SceneWorkerCount < 1 {
		return errors.New("'scene-worker-count' must be positive")
	}
	if c.DecodeWorkerCount < 1 {
		return errors.New("'decode-worker-count' must be positive")
	}
	if c.CompressWorkerCount < 1 {
		return errors.New("'compress-worker-count' must be positive")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid 'log-level': %w", err)
	}
	return c.CompressionMode.validate()
}

func parseCommaSeparatedList(val string) []string {
	var items []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

type sceneList struct {
	Scenes []string
	All    bool
}

func (l *sceneList) Type() string {
	return "scenes"
}

func (l *sceneList) Set(val string) error {
	switch val {
	case "", "*":
		l.All = true
		l.Scenes = nil
	default:
		l.All = false
		l.Scenes = parseCommaSeparatedList(val)
	}
	return nil
}

func (l *sceneList) Parse(val interface{}) (interface{}, error) {
	const errMsg = "'scenes' must be an empty string, '*' or a list of strings"
	switch scenes := val.(type) {
	case nil:
		return sceneList{All: true}, nil
	case string:
		var sl sceneList
		if err := sl.Set(scenes); err != nil {
			return nil, err
		}
		return sl, nil
	case []interface{}:
		var list sceneList
		for _, scene := range scenes {
			if scene, ok := scene.(string); ok {
				list.Scenes = append(list.Scenes, scene)
			} else {
				return nil, errors.New(errMsg)
			}
		}
		return list, nil
	}
	return nil, errors.New(errMsg)
}

func (l *sceneList) String() string {
	if l.All {
		return "*"
	}
	return strings.Join(l.Scenes, ",")
}

func (l *sceneList) UnmarshalYAML(val *yaml.Node) error {
	var decoded interface{}
	if err := val.Decode(&decoded); err != nil {
		return err
	}
	sl, err := l.Parse(decoded)
	if err != nil {
		return err
	}
	*l = sl.(sceneList)
	return nil
}

type compressionMode string

const (
	compressionModeNone compressionMode = "none"
	compressionModeXZ   compressionMode = "xz"
)

func (m compressionMode) validate() error {
	switch m {
	case compressionModeNone, compressionModeXZ:
		return nil
	}
	return fmt.Errorf("unsupported compression mode: %q", string(m))
}

func (m *compressionMode) Type() string {
	return "compression mode"
}

func (m *compressionMode) Set(val string) error {
	mode := compressionMode(val)
	if err := mode.validate(); err != nil {
		return err
	}
	*m = mode
	return nil
}

func (m *compressionMode) String() string {
	return string(*m)
}

func (m *compressionMode) Parse(val interface{}) (interface{}, error) {
	switch mode := val.(type) {
	case nil:
		return defaultCompressionMode, nil
	case string:
		var cm compressionMode
		if err := cm.Set(mode); err != nil {
			return nil, err
		}
		return cm, nil
	}
	return nil, errors.New("'compression_mode' must be a string")
}

func (m *compressionMode) UnmarshalYAML(val *yaml.Node) error {
	var decoded string
	if err := val.Decode(&decoded); err != nil {
		return err
	}
	return m.Set(decoded)
}
