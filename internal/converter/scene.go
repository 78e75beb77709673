package converter

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/robolog/nuscenes2bag/internal/nuscenes"
	"github.com/robolog/nuscenes2bag/internal/ros"
	"github.com/robolog/nuscenes2bag/internal/sample"
)

// Bag is the output archive a scene writes into. Within a topic, storage
// order is call order. The converter owns its bag exclusively; Write is
// never called from more than one goroutine.
type Bag interface {
	Write(topic string, timestamp int64, m ros.Message) error
}

// Annotations are keyframed at 25 Hz, so rendered boxes live until the
// next keyframe.
const annotationLifetimeSeconds = 1.0 / 25

// SceneConverter reconstructs one scene into one bag. It is used in two
// strictly sequential phases: Bind resolves all scene-local metadata,
// Run emits the messages. A converter must not be reused across scenes.
type SceneConverter struct {
	index *nuscenes.Index
	log   zerolog.Logger

	decoders      map[SampleType]sample.Decoder
	decodeWorkers int

	sceneToken  nuscenes.Token
	sceneName   string
	samples     map[nuscenes.Token]nuscenes.Sample
	annotations map[nuscenes.Token][]nuscenes.SampleAnnotation
	sampleData  []nuscenes.SampleData
	egoPoses    []nuscenes.EgoPose
}

// NewSceneConverter returns a converter reading from index and decoding
// raw files on decodeWorkers goroutines.
func NewSceneConverter(index *nuscenes.Index, log zerolog.Logger, decodeWorkers int) *SceneConverter {
	if decodeWorkers < 1 {
		decodeWorkers = 1
	}
	return &SceneConverter{
		index:         index,
		log:           log,
		decodeWorkers: decodeWorkers,
		decoders: map[SampleType]sample.Decoder{
			SampleCamera: sample.ImageDecoder{},
			SampleLidar:  sample.LidarDecoder{},
			SampleRadar:  sample.RadarDecoder{},
		},
	}
}

// SceneName returns the bound scene's name, e.g. "scene-0061".
func (c *SceneConverter) SceneName() string { return c.sceneName }

// Bind resolves the scene's metadata from the index and registers its
// file count with progress. It must be called exactly once, before Run.
func (c *SceneConverter) Bind(sceneToken nuscenes.Token, progress *Progress) error {
	info, ok := c.index.SceneInfo(sceneToken)
	if !ok {
		return fmt.Errorf("unknown scene token %q", sceneToken)
	}
	c.sceneToken = sceneToken
	c.sceneName = info.Name
	c.log = c.log.With().Str("scene", info.Name).Logger()
	c.samples = c.index.Samples(sceneToken)
	c.annotations = c.index.Annotations(sceneToken)
	c.sampleData = c.index.SampleData(sceneToken)
	c.egoPoses = c.index.EgoPoses(sceneToken)
	progress.AddToProcess(len(c.sampleData))
	return nil
}

// Run converts the bound scene into bag: the pose and transform track,
// the annotation tracks, then every decodable sample file. Per-record
// problems are logged and skipped; only archive write failures abort the
// scene.
func (c *SceneConverter) Run(ctx context.Context, dataRoot string, bag Bag, progress *Progress) error {
	if err := c.convertEgoPoses(bag); err != nil {
		return err
	}
	if err := c.convertAnnotations(bag); err != nil {
		return err
	}
	return c.convertSampleData(ctx, dataRoot, bag, progress)
}

func (c *SceneConverter) convertEgoPoses(bag Bag) error {
	statics := StaticTransforms(c.index.CalibratedSensorsForScene(c.sceneToken))
	for _, pose := range c.egoPoses {
		timestamp := ros.NanosFromMicros(pose.Timestamp)
		if err := bag.Write("/odom", timestamp, OdometryFromPose(pose)); err != nil {
			return err
		}
		tf := &ros.TFMessage{Transforms: make([]ros.TransformStamped, 0, len(statics)+1)}
		tf.Transforms = append(tf.Transforms, TransformFromPose(pose))
		for _, static := range statics {
			static.Header.Stamp = ros.TimeFromMicros(pose.Timestamp)
			tf.Transforms = append(tf.Transforms, static)
		}
		if err := bag.Write("/tf", timestamp, tf); err != nil {
			return err
		}
	}
	return nil
}

func (c *SceneConverter) convertAnnotations(bag Bag) error {
	lifetime := ros.DurationFromSeconds(annotationLifetimeSeconds)
	for _, sd := range c.sampleData {
		if ClassifySampleType(sd.FileName) != SampleLidar {
			continue
		}
		boxes := c.boxesFor(sd)
		stamp := ros.TimeFromMicros(sd.Timestamp)
		timestamp := ros.NanosFromMicros(sd.Timestamp)
		if err := bag.Write("boxes", timestamp, &ros.Boxes{
			Header: ros.Header{Stamp: stamp, FrameID: mapFrame},
			Boxes:  boxes,
		}); err != nil {
			return err
		}
		if err := bag.Write("boxes_viz", timestamp, MakeMarkerArray(boxes, stamp, lifetime)); err != nil {
			return err
		}
	}
	return nil
}

// boxesFor computes the boxes of one lidar sample-data record: raw
// annotations at keyframes and first-in-scene samples, interpolated
// poses for sweeps. Unresolvable tokens yield no boxes, never an error.
func (c *SceneConverter) boxesFor(sd nuscenes.SampleData) []ros.Box {
	curr, ok := c.samples[sd.SampleToken]
	if !ok {
		c.log.Warn().Str("sample", sd.SampleToken).
			Msg("sample data references unknown sample, skipping boxes")
		return nil
	}
	if sd.IsKeyFrame || curr.Prev == "" {
		// Annotations are authoritative at keyframes, and a first sample
		// has no earlier keyframe to interpolate from.
		return RawBoxes(c.annotations[curr.Token])
	}
	prev, ok := c.samples[curr.Prev]
	if !ok {
		c.log.Warn().Str("sample", curr.Prev).
			Msg("previous sample not found, skipping boxes")
		return nil
	}
	return InterpolateBoxes(sd, curr, prev, c.annotations[curr.Token], c.annotations[prev.Token])
}

type decodeOutcome struct {
	msg ros.StampedMessage
	err error
}

type decodeTask struct {
	sd    nuscenes.SampleData
	frame string
	topic string
	path  string
	dec   sample.Decoder
	out   chan decodeOutcome
}

// convertSampleData walks the sample-data list in file order. Decoding
// runs on a bounded worker pool; this goroutine stays the only writer
// and drains results in file-list order.
func (c *SceneConverter) convertSampleData(ctx context.Context, dataRoot string, bag Bag, progress *Progress) error {
	tasks := make(chan *decodeTask)
	pending := make(chan *decodeTask, c.decodeWorkers*2)

	go func() {
		defer close(tasks)
		defer close(pending)
		for _, sd := range c.sampleData {
			if ctx.Err() != nil {
				return
			}
			t := c.prepareTask(sd, dataRoot)
			if t == nil {
				progress.AddProcessed(1)
				continue
			}
			pending <- t
			tasks <- t
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < c.decodeWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				msg, err := t.dec.Decode(t.path)
				t.out <- decodeOutcome{msg: msg, err: err}
			}
		}()
	}

	var writeErr error
	for t := range pending {
		res := <-t.out
		switch {
		case res.err != nil:
			c.log.Warn().Err(res.err).Str("file", t.sd.FileName).
				Msg("failed to decode sample file, skipping")
		case writeErr == nil:
			res.msg.SetHeader(ros.Header{
				Stamp:   ros.TimeFromMicros(t.sd.Timestamp),
				FrameID: t.frame,
			})
			writeErr = bag.Write(t.topic, ros.NanosFromMicros(t.sd.Timestamp), res.msg)
		}
		progress.AddProcessed(1)
	}
	wg.Wait()
	if writeErr != nil {
		return writeErr
	}
	return ctx.Err()
}

// prepareTask classifies one record and resolves its sensor. A nil
// return means the record was logged and skipped.
func (c *SceneConverter) prepareTask(sd nuscenes.SampleData, dataRoot string) *decodeTask {
	typ := ClassifySampleType(sd.FileName)
	if typ == SampleUnknown {
		c.log.Warn().Str("file", sd.FileName).Msg("unknown sample type, skipping")
		return nil
	}
	calibrated, ok := c.index.CalibratedSensor(sd.CalibratedSensorToken)
	if !ok {
		c.log.Warn().Str("calibratedSensor", sd.CalibratedSensorToken).Str("file", sd.FileName).
			Msg("unknown calibrated sensor, skipping")
		return nil
	}
	channel, ok := c.index.SensorChannel(calibrated.SensorToken)
	if !ok {
		c.log.Warn().Str("sensor", calibrated.SensorToken).Str("file", sd.FileName).
			Msg("unknown sensor, skipping")
		return nil
	}
	sensorName := strings.ToLower(channel)
	topic := sensorName
	if typ == SampleCamera {
		topic += "/raw"
	}
	return &decodeTask{
		sd:    sd,
		frame: sensorName,
		topic: topic,
		path:  filepath.Join(dataRoot, filepath.FromSlash(sd.FileName)),
		dec:   c.decoders[typ],
		out:   make(chan decodeOutcome, 1),
	}
}
