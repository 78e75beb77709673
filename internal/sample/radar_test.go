package sample

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/robolog/nuscenes2bag/internal/ros"
)

const radarPCDHeader = `# .PCD v0.7 - Point Cloud Data file format
VERSION 0.7
FIELDS x y z dyn_prop id rcs vx vy vx_comp vy_comp is_quality_valid ambig_state x_rms y_rms invalid_state pdh0 vx_rms vy_rms
SIZE 4 4 4 1 2 4 4 4 4 4 1 1 1 1 1 1 1 1
TYPE F F F I I F F F F F I I I I I I I I
COUNT 1 1 1 1 1 1 1 1 1 1 1 1 1 1 1 1 1 1
WIDTH 1
HEIGHT 1
VIEWPOINT 0 0 0 1 0 0 0
POINTS 1
DATA binary
`

func radarPoint() []byte {
	var buf bytes.Buffer
	buf.Write(float32LE(10.5, -2.25, 0))    // x, y, z
	buf.WriteByte(1)                        // dyn_prop
	buf.Write([]byte{0x2a, 0x00})           // id
	buf.Write(float32LE(4.5))               // rcs
	buf.Write(float32LE(1.5, -0.5))         // vx, vy
	buf.Write(float32LE(1.25, -0.75))       // vx_comp, vy_comp
	buf.Write([]byte{1, 3, 2, 4, 0, 5, 6, 7}) // quality through vy_rms
	return buf.Bytes()
}

func TestRadarDecoder(t *testing.T) {
	Convey("Scenario: radar PCD object lists decode field by field", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "radar.pcd")
		content := append([]byte(radarPCDHeader), radarPoint()...)
		So(os.WriteFile(path, content, 0o644), ShouldBeNil)

		msg, err := RadarDecoder{}.Decode(path)
		So(err, ShouldBeNil)
		objects := msg.(*ros.RadarObjects)
		So(objects.Objects, ShouldHaveLength, 1)

		obj := objects.Objects[0]
		So(obj.Pose.X, ShouldAlmostEqual, 10.5)
		So(obj.Pose.Y, ShouldAlmostEqual, -2.25)
		So(obj.Pose.Z, ShouldAlmostEqual, 0)
		So(obj.DynProp, ShouldEqual, 1)
		So(obj.RCS, ShouldEqual, 4.5)
		So(obj.Vx, ShouldEqual, 1.5)
		So(obj.Vy, ShouldEqual, -0.5)
		So(obj.VxComp, ShouldEqual, 1.25)
		So(obj.VyComp, ShouldEqual, -0.75)
		So(obj.IsQualityValid, ShouldEqual, 1)
		So(obj.AmbigState, ShouldEqual, 3)
		So(obj.XRms, ShouldEqual, 2)
		So(obj.YRms, ShouldEqual, 4)
		So(obj.InvalidState, ShouldEqual, 0)
		So(obj.Pdh0, ShouldEqual, 5)
		So(obj.VxRms, ShouldEqual, 6)
		So(obj.VyRms, ShouldEqual, 7)
	})
}

func TestParsePCD(t *testing.T) {
	Convey("Scenario: only the dataset's binary PCD subset is accepted", t, func() {
		Convey("ASCII payloads are rejected", func() {
			header := strings.Replace(radarPCDHeader, "DATA binary", "DATA ascii", 1)
			_, err := parsePCD(strings.NewReader(header))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "ascii")
		})

		Convey("Truncated payloads are rejected", func() {
			content := append([]byte(radarPCDHeader), radarPoint()[:10]...)
			_, err := parsePCD(bytes.NewReader(content))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "truncated")
		})

		Convey("Headers without DATA are rejected", func() {
			_, err := parsePCD(strings.NewReader("VERSION 0.7\nFIELDS x\n"))
			So(err, ShouldNotBeNil)
		})

		Convey("Absent fields read as zero", func() {
			pcd, err := parsePCD(bytes.NewReader(append([]byte(radarPCDHeader), radarPoint()...)))
			So(err, ShouldBeNil)
			So(pcd.float32At(0, "no_such_field"), ShouldEqual, 0)
			So(pcd.uint8At(0, "no_such_field"), ShouldEqual, 0)
		})
	})
}
