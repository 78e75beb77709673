// Package converter reconstructs scenes: it joins a scene's sample data,
// pose track and annotation track from the metadata index and emits
// ordered, topic-multiplexed messages into a bag.
package converter

import "strings"

// SampleType is the sensor modality of a sample-data file.
type SampleType int

const (
	SampleUnknown SampleType = iota
	SampleCamera
	SampleRadar
	SampleLidar
)

func (t SampleType) String() string {
	switch t {
	case SampleCamera:
		return "camera"
	case SampleRadar:
		return "radar"
	case SampleLidar:
		return "lidar"
	default:
		return "unknown"
	}
}

// Sensor file names embed their channel, e.g.
// "samples/CAM_FRONT/n008-...jpg". First match wins.
var sampleTypePatterns = []struct {
	substr string
	typ    SampleType
}{
	{"CAM", SampleCamera},
	{"RADAR", SampleRadar},
	{"LIDAR", SampleLidar},
}

// ClassifySampleType determines a file's modality from its name.
// Unmatched names classify as SampleUnknown, which downstream skips but
// never treats as fatal.
func ClassifySampleType(fileName string) SampleType {
	for _, p := range sampleTypePatterns {
		if strings.Contains(fileName, p.substr) {
			return p.typ
		}
	}
	return SampleUnknown
}
