package main

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"
)

func TestLoadConfig(t *testing.T) {
	Convey("Scenario: configuration loads from command line arguments", t, func() {
		Convey("Flags override the defaults", func() {
			cfg, err := loadConfig([]string{"nuscenes2bag",
				"--data-dir", "/data/sets/nuscenes",
				"--out-dir", "/tmp/bags",
				"--scenes", "scene-0061,scene-0103",
				"--compression-mode", "xz",
				"--decode-worker-count", "8",
			})
			So(err, ShouldBeNil)
			So(cfg.DataDir, ShouldEqual, "/data/sets/nuscenes")
			So(cfg.OutDir, ShouldEqual, "/tmp/bags")
			So(cfg.Scenes.All, ShouldBeFalse)
			So(cfg.Scenes.Scenes, ShouldResemble, []string{"scene-0061", "scene-0103"})
			So(cfg.CompressionMode, ShouldEqual, compressionModeXZ)
			So(cfg.SceneWorkerCount, ShouldEqual, defaultSceneWorkerCount)
			So(cfg.DecodeWorkerCount, ShouldEqual, 8)
		})

		Convey("The dataset directory is required", func() {
			_, err := loadConfig([]string{"nuscenes2bag"})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "data-dir")
		})

		Convey("Unsupported compression modes are rejected", func() {
			_, err := loadConfig([]string{"nuscenes2bag",
				"--data-dir", "/data", "--compression-mode", "gzip"})
			So(err, ShouldNotBeNil)
		})

		Convey("Worker counts must be positive", func() {
			_, err := loadConfig([]string{"nuscenes2bag",
				"--data-dir", "/data", "--scene-worker-count", "0"})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "scene-worker-count")
		})

		Convey("Log levels are validated", func() {
			_, err := loadConfig([]string{"nuscenes2bag",
				"--data-dir", "/data", "--log-level", "loud"})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "log-level")
		})
	})
}

func TestSceneList(t *testing.T) {
	Convey("Scenario: scene selections parse from flags and YAML", t, func() {
		Convey("An empty value and the wildcard select every scene", func() {
			var l sceneList
			So(l.Set(""), ShouldBeNil)
			So(l.All, ShouldBeTrue)
			So(l.Set("*"), ShouldBeNil)
			So(l.All, ShouldBeTrue)
			So(l.String(), ShouldEqual, "*")
		})

		Convey("Comma-separated names select a subset", func() {
			var l sceneList
			So(l.Set("scene-0061, scene-0103,"), ShouldBeNil)
			So(l.All, ShouldBeFalse)
			So(l.Scenes, ShouldResemble, []string{"scene-0061", "scene-0103"})
			So(l.String(), ShouldEqual, "scene-0061,scene-0103")
		})

		Convey("YAML accepts both the string and the list form", func() {
			var fromString struct {
				Scenes sceneList `yaml:"scenes"`
			}
			So(yaml.Unmarshal([]byte(`scenes: "scene-0061"`), &fromString), ShouldBeNil)
			So(fromString.Scenes.Scenes, ShouldResemble, []string{"scene-0061"})

			var fromList struct {
				Scenes sceneList `yaml:"scenes"`
			}
			So(yaml.Unmarshal([]byte("scenes:\n  - scene-0061\n  - scene-0103"), &fromList), ShouldBeNil)
			So(fromList.Scenes.Scenes, ShouldResemble, []string{"scene-0061", "scene-0103"})

			var fromBad struct {
				Scenes sceneList `yaml:"scenes"`
			}
			So(yaml.Unmarshal([]byte("scenes:\n  - 17"), &fromBad), ShouldNotBeNil)
		})
	})
}

func TestCompressionMode(t *testing.T) {
	Convey("Scenario: compression modes validate their values", t, func() {
		var m compressionMode
		So(m.Set("xz"), ShouldBeNil)
		So(m, ShouldEqual, compressionModeXZ)
		So(m.Set("none"), ShouldBeNil)
		So(m.Set("gzip"), ShouldNotBeNil)

		Convey("YAML values go through the same validation", func() {
			var cfg struct {
				Mode compressionMode `yaml:"compression_mode"`
			}
			So(yaml.Unmarshal([]byte(`compression_mode: xz`), &cfg), ShouldBeNil)
			So(cfg.Mode, ShouldEqual, compressionModeXZ)
			So(yaml.Unmarshal([]byte(`compression_mode: gzip`), &cfg), ShouldNotBeNil)
		})
	})
}
