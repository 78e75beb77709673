package nuscenes

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Index holds the loaded metadata tables. It is built once per dataset
// and read-only afterwards, so concurrent scene conversions share it
// without locking.
type Index struct {
	scenes       []SceneInfo
	sceneByToken map[Token]*SceneInfo

	samplesByScene     map[Token]map[Token]Sample
	sampleDataByScene  map[Token][]SampleData
	egoPosesByScene    map[Token][]EgoPose
	annotationsByScene map[Token]map[Token][]SampleAnnotation

	calibratedSensors map[Token]CalibratedSensor
	sensors           map[Token]Sensor
	calibratedByScene map[Token][]CalibratedSensorWithName
}

// LoadDirectory parses the metadata tables from dir. Any unreadable or
// malformed table is fatal; individual records with unresolvable foreign
// tokens are logged and dropped.
func LoadDirectory(dir string, log zerolog.Logger) (*Index, error) {
	idx := &Index{
		sceneByToken:       make(map[Token]*SceneInfo),
		samplesByScene:     make(map[Token]map[Token]Sample),
		sampleDataByScene:  make(map[Token][]SampleData),
		egoPosesByScene:    make(map[Token][]EgoPose),
		annotationsByScene: make(map[Token]map[Token][]SampleAnnotation),
		calibratedSensors:  make(map[Token]CalibratedSensor),
		sensors:            make(map[Token]Sensor),
		calibratedByScene:  make(map[Token][]CalibratedSensorWithName),
	}

	if err := loadTable(dir, "scene.json", &idx.scenes); err != nil {
		return nil, err
	}
	for i := range idx.scenes {
		idx.scenes[i].SceneID = sceneIDFromName(idx.scenes[i].Name)
		idx.sceneByToken[idx.scenes[i].Token] = &idx.scenes[i]
	}

	var samples []Sample
	if err := loadTable(dir, "sample.json", &samples); err != nil {
		return nil, err
	}
	sampleToScene := make(map[Token]Token, len(samples))
	for _, s := range samples {
		if _, ok := idx.sceneByToken[s.SceneToken]; !ok {
			log.Warn().Str("sample", s.Token).Str("scene", s.SceneToken).
				Msg("sample references unknown scene, skipping")
			continue
		}
		byToken := idx.samplesByScene[s.SceneToken]
		if byToken == nil {
			byToken = make(map[Token]Sample)
			idx.samplesByScene[s.SceneToken] = byToken
		}
		byToken[s.Token] = s
		sampleToScene[s.Token] = s.SceneToken
	}

	var sampleData []SampleData
	if err := loadTable(dir, "sample_data.json", &sampleData); err != nil {
		return nil, err
	}
	egoPoseToScene := make(map[Token]Token, len(sampleData))
	sensorTokensByScene := make(map[Token]map[Token]struct{})
	for _, sd := range sampleData {
		scene, ok := sampleToScene[sd.SampleToken]
		if !ok {
			log.Warn().Str("sampleData", sd.Token).Str("sample", sd.SampleToken).
				Msg("sample data references unknown sample, skipping")
			continue
		}
		idx.sampleDataByScene[scene] = append(idx.sampleDataByScene[scene], sd)
		if sd.EgoPoseToken != "" {
			egoPoseToScene[sd.EgoPoseToken] = scene
		}
		set := sensorTokensByScene[scene]
		if set == nil {
			set = make(map[Token]struct{})
			sensorTokensByScene[scene] = set
		}
		set[sd.CalibratedSensorToken] = struct{}{}
	}

	var egoPoses []EgoPose
	if err := loadTable(dir, "ego_pose.json", &egoPoses); err != nil {
		return nil, err
	}
	for _, p := range egoPoses {
		scene, ok := egoPoseToScene[p.Token]
		if !ok {
			// Poses outside any scene's sample data are common in full
			// dataset splits and carry no information for conversion.
			continue
		}
		idx.egoPosesByScene[scene] = append(idx.egoPosesByScene[scene], p)
	}
	for _, poses := range idx.egoPosesByScene {
		sort.Slice(poses, func(i, j int) bool { return poses[i].Timestamp < poses[j].Timestamp })
	}

	var calibrated []CalibratedSensor
	if err := loadTable(dir, "calibrated_sensor.json", &calibrated); err != nil {
		return nil, err
	}
	for _, c := range calibrated {
		idx.calibratedSensors[c.Token] = c
	}

	var sensors []Sensor
	if err := loadTable(dir, "sensor.json", &sensors); err != nil {
		return nil, err
	}
	for _, s := range sensors {
		idx.sensors[s.Token] = s
	}

	for scene, tokens := range sensorTokensByScene {
		list := make([]CalibratedSensorWithName, 0, len(tokens))
		for token := range tokens {
			c, ok := idx.calibratedSensors[token]
			if !ok {
				log.Warn().Str("calibratedSensor", token).Str("scene", scene).
					Msg("scene references unknown calibrated sensor, skipping")
				continue
			}
			s, ok := idx.sensors[c.SensorToken]
			if !ok {
				log.Warn().Str("sensor", c.SensorToken).Str("scene", scene).
					Msg("calibrated sensor references unknown sensor, skipping")
				continue
			}
			list = append(list, CalibratedSensorWithName{Sensor: c, Name: s.Channel})
		}
		sort.Slice(list, func(i, j int) bool { return list[i].Sensor.Token < list[j].Sensor.Token })
		idx.calibratedByScene[scene] = list
	}

	if err := idx.loadAnnotations(dir, sampleToScene, log); err != nil {
		return nil, err
	}
	return idx, nil
}

func (idx *Index) loadAnnotations(dir string, sampleToScene map[Token]Token, log zerolog.Logger) error {
	var instances []instance
	if err := loadTable(dir, "instance.json", &instances); err != nil {
		return err
	}
	instanceCategory := make(map[Token]Token, len(instances))
	for _, in := range instances {
		instanceCategory[in.Token] = in.CategoryToken
	}

	var categories []category
	if err := loadTable(dir, "category.json", &categories); err != nil {
		return err
	}
	categoryName := make(map[Token]string, len(categories))
	for _, c := range categories {
		categoryName[c.Token] = c.Name
	}

	var annotations []SampleAnnotation
	if err := loadTable(dir, "sample_annotation.json", &annotations); err != nil {
		return err
	}
	for _, a := range annotations {
		scene, ok := sampleToScene[a.SampleToken]
		if !ok {
			log.Warn().Str("annotation", a.Token).Str("sample", a.SampleToken).
				Msg("annotation references unknown sample, skipping")
			continue
		}
		a.CategoryName = categoryName[instanceCategory[a.InstanceToken]]
		bySample := idx.annotationsByScene[scene]
		if bySample == nil {
			bySample = make(map[Token][]SampleAnnotation)
			idx.annotationsByScene[scene] = bySample
		}
		bySample[a.SampleToken] = append(bySample[a.SampleToken], a)
	}
	return nil
}

func loadTable(dir, name string, dst interface{}) error {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("failed to read metadata table %s: %w", name, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse metadata table %s: %w", name, err)
	}
	return nil
}

func sceneIDFromName(name string) uint32 {
	digits := strings.TrimLeftFunc(name, func(r rune) bool { return r < '0' || r > '9' })
	id, err := strconv.ParseUint(digits, 10, 32)
	if err != nil {
		return 0
	}
	return uint32(id)
}

// AllSceneTokens lists every scene in table order.
func (idx *Index) AllSceneTokens() []Token {
	tokens := make([]Token, len(idx.scenes))
	for i := range idx.scenes {
		tokens[i] = idx.scenes[i].Token
	}
	return tokens
}

// SceneInfo looks up a scene by token.
func (idx *Index) SceneInfo(token Token) (SceneInfo, bool) {
	info, ok := idx.sceneByToken[token]
	if !ok {
		return SceneInfo{}, false
	}
	return *info, true
}

// SampleData returns a scene's sample data records in file order, mixed
// keyframes and sweeps.
func (idx *Index) SampleData(sceneToken Token) []SampleData {
	return idx.sampleDataByScene[sceneToken]
}

// Samples returns a scene's samples keyed by token.
func (idx *Index) Samples(sceneToken Token) map[Token]Sample {
	return idx.samplesByScene[sceneToken]
}

// Annotations returns a scene's annotations keyed by owning sample token.
func (idx *Index) Annotations(sceneToken Token) map[Token][]SampleAnnotation {
	return idx.annotationsByScene[sceneToken]
}

// EgoPoses returns a scene's vehicle poses in timestamp order.
func (idx *Index) EgoPoses(sceneToken Token) []EgoPose {
	return idx.egoPosesByScene[sceneToken]
}

// CalibratedSensor looks up a static extrinsic by token.
func (idx *Index) CalibratedSensor(token Token) (CalibratedSensor, bool) {
	c, ok := idx.calibratedSensors[token]
	return c, ok
}

// SensorChannel resolves a sensor token to its display name.
func (idx *Index) SensorChannel(token Token) (string, bool) {
	s, ok := idx.sensors[token]
	return s.Channel, ok
}

// CalibratedSensorsForScene returns the extrinsics referenced by a
// scene's sample data, with display names, in deterministic order.
func (idx *Index) CalibratedSensorsForScene(sceneToken Token) []CalibratedSensorWithName {
	return idx.calibratedByScene[sceneToken]
}
