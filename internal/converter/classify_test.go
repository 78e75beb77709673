package converter

import (
	"fmt"
	"testing"

	"github.com/bradleyjkemp/cupaloy/v2"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassifySampleType(t *testing.T) {
	fileNames := []string{
		"samples/CAM_FRONT/a.jpg",
		"sweeps/RADAR_FRONT/a.pcd",
		"samples/LIDAR_TOP/a.pcd.bin",
		"maps/basemap.png",
		// Matching is case sensitive.
		"samples/cam_front/a.jpg",
		// The first matching pattern wins.
		"RADAR_CAM_HYBRID/a.pcd",
	}
	classified := make([]string, len(fileNames))
	for i, name := range fileNames {
		classified[i] = fmt.Sprintf("%s %s", name, ClassifySampleType(name))
	}
	cupaloy.SnapshotT(t, classified)
}

func TestSampleTypeString(t *testing.T) {
	Convey("Scenario: sample types print their modality", t, func() {
		So(SampleUnknown.String(), ShouldEqual, "unknown")
		So(SampleCamera.String(), ShouldEqual, "camera")
		So(SampleRadar.String(), ShouldEqual, "radar")
		So(SampleLidar.String(), ShouldEqual, "lidar")
	})
}
