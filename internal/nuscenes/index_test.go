package nuscenes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	. "github.com/smartystreets/goconvey/convey"
)

func writeTable(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeTestTables(t *testing.T, dir string) {
	t.Helper()
	writeTable(t, dir, "scene.json", `[
		{"token": "sc1", "name": "scene-0061", "first_sample_token": "s1", "last_sample_token": "s2"}
	]`)
	writeTable(t, dir, "sample.json", `[
		{"token": "s1", "scene_token": "sc1", "timestamp": 1000000, "prev": "", "next": "s2"},
		{"token": "s2", "scene_token": "sc1", "timestamp": 1500000, "prev": "s1", "next": ""},
		{"token": "orphan", "scene_token": "nope", "timestamp": 1, "prev": "", "next": ""}
	]`)
	writeTable(t, dir, "sample_data.json", `[
		{"token": "sd1", "sample_token": "s1", "ego_pose_token": "p1",
		 "calibrated_sensor_token": "cs1", "filename": "samples/LIDAR_TOP/a.bin",
		 "fileformat": "bin", "timestamp": 1000000, "is_key_frame": true},
		{"token": "sd2", "sample_token": "s2", "ego_pose_token": "p2",
		 "calibrated_sensor_token": "cs1", "filename": "sweeps/LIDAR_TOP/b.bin",
		 "fileformat": "bin", "timestamp": 1250000, "is_key_frame": false},
		{"token": "sd3", "sample_token": "s1", "ego_pose_token": "p1",
		 "calibrated_sensor_token": "cs2", "filename": "samples/CAM_FRONT/a.jpg",
		 "fileformat": "jpg", "timestamp": 1000000, "is_key_frame": true},
		{"token": "sdx", "sample_token": "nope", "ego_pose_token": "p1",
		 "calibrated_sensor_token": "cs1", "filename": "samples/LIDAR_TOP/x.bin",
		 "fileformat": "bin", "timestamp": 1, "is_key_frame": true}
	]`)
	writeTable(t, dir, "ego_pose.json", `[
		{"token": "p2", "timestamp": 1250000, "translation": [1, 2, 3], "rotation": [1, 0, 0, 0]},
		{"token": "p1", "timestamp": 1000000, "translation": [0, 0, 0], "rotation": [1, 0, 0, 0]},
		{"token": "px", "timestamp": 1, "translation": [9, 9, 9], "rotation": [1, 0, 0, 0]}
	]`)
	writeTable(t, dir, "calibrated_sensor.json", `[
		{"token": "cs1", "sensor_token": "se1", "translation": [0.9, 0, 1.8], "rotation": [1, 0, 0, 0]},
		{"token": "cs2", "sensor_token": "se2", "translation": [1.7, 0, 1.5], "rotation": [0.5, -0.5, 0.5, -0.5]}
	]`)
	writeTable(t, dir, "sensor.json", `[
		{"token": "se1", "channel": "LIDAR_TOP", "modality": "lidar"},
		{"token": "se2", "channel": "CAM_FRONT", "modality": "camera"}
	]`)
	writeTable(t, dir, "instance.json", `[
		{"token": "i1", "category_token": "cat1"}
	]`)
	writeTable(t, dir, "category.json", `[
		{"token": "cat1", "name": "vehicle.car"}
	]`)
	writeTable(t, dir, "sample_annotation.json", `[
		{"token": "a1", "sample_token": "s1", "instance_token": "i1",
		 "translation": [10, 20, 1], "size": [2, 4.5, 1.6], "rotation": [1, 0, 0, 0]},
		{"token": "ax", "sample_token": "nope", "instance_token": "i1",
		 "translation": [0, 0, 0], "size": [1, 1, 1], "rotation": [1, 0, 0, 0]}
	]`)
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeTestTables(t, dir)
	idx, err := LoadDirectory(dir, zerolog.Nop())
	Convey("Scenario: the metadata tables load into a queryable index", t, func() {
		So(err, ShouldBeNil)

		Convey("Scenes are listed in table order with parsed ids", func() {
			So(idx.AllSceneTokens(), ShouldResemble, []Token{"sc1"})
			info, ok := idx.SceneInfo("sc1")
			So(ok, ShouldBeTrue)
			So(info.Name, ShouldEqual, "scene-0061")
			So(info.SceneID, ShouldEqual, 61)
			_, ok = idx.SceneInfo("nope")
			So(ok, ShouldBeFalse)
		})

		Convey("Samples referencing unknown scenes are dropped", func() {
			samples := idx.Samples("sc1")
			So(samples, ShouldHaveLength, 2)
			So(samples["s2"].Prev, ShouldEqual, "s1")
		})

		Convey("Sample data keeps file order and drops unresolvable records", func() {
			sampleData := idx.SampleData("sc1")
			So(sampleData, ShouldHaveLength, 3)
			So(sampleData[0].Token, ShouldEqual, "sd1")
			So(sampleData[1].Token, ShouldEqual, "sd2")
			So(sampleData[2].Token, ShouldEqual, "sd3")
		})

		Convey("Ego poses are joined through sample data and sorted by time", func() {
			poses := idx.EgoPoses("sc1")
			So(poses, ShouldHaveLength, 2)
			So(poses[0].Token, ShouldEqual, "p1")
			So(poses[1].Token, ShouldEqual, "p2")
		})

		Convey("Calibrated sensors resolve their channel names", func() {
			sensors := idx.CalibratedSensorsForScene("sc1")
			So(sensors, ShouldHaveLength, 2)
			So(sensors[0].Name, ShouldEqual, "LIDAR_TOP")
			So(sensors[1].Name, ShouldEqual, "CAM_FRONT")

			channel, ok := idx.SensorChannel("se2")
			So(ok, ShouldBeTrue)
			So(channel, ShouldEqual, "CAM_FRONT")
			_, ok = idx.CalibratedSensor("nope")
			So(ok, ShouldBeFalse)
		})

		Convey("Annotations resolve their category names", func() {
			annotations := idx.Annotations("sc1")
			So(annotations, ShouldHaveLength, 1)
			So(annotations["s1"], ShouldHaveLength, 1)
			So(annotations["s1"][0].CategoryName, ShouldEqual, "vehicle.car")
		})
	})
}

func TestLoadDirectoryErrors(t *testing.T) {
	Convey("Scenario: unreadable and malformed tables are fatal", t, func() {
		Convey("A missing table fails the load", func() {
			_, err := LoadDirectory(t.TempDir(), zerolog.Nop())
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "scene.json")
		})

		Convey("A malformed table fails the load", func() {
			dir := t.TempDir()
			writeTestTables(t, dir)
			writeTable(t, dir, "sample.json", `{not json`)
			_, err := LoadDirectory(dir, zerolog.Nop())
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "sample.json")
		})
	})
}
