package converter

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/robolog/nuscenes2bag/internal/nuscenes"
	"github.com/robolog/nuscenes2bag/internal/ros"
)

func TestStaticTransforms(t *testing.T) {
	sensors := []nuscenes.CalibratedSensorWithName{
		{
			Name: "LIDAR_TOP",
			Sensor: nuscenes.CalibratedSensor{
				Token:       "cs1",
				Translation: [3]float64{0.9, 0, 1.8},
				Rotation:    [4]float64{1, 0, 0, 0},
			},
		},
		{
			Name: "CAM_FRONT",
			Sensor: nuscenes.CalibratedSensor{
				Token:       "cs2",
				Translation: [3]float64{1.7, 0.01, 1.5},
				Rotation:    [4]float64{0.5, -0.5, 0.5, -0.5},
			},
		},
	}
	Convey("Scenario: the constant transform tree hangs sensors off the body", t, func() {
		transforms := StaticTransforms(sensors)
		So(transforms, ShouldHaveLength, 3)

		Convey("Sensor frames use lower-cased channel names", func() {
			So(transforms[0].Header.FrameID, ShouldEqual, "base_link")
			So(transforms[0].ChildFrameID, ShouldEqual, "lidar_top")
			So(transforms[0].Transform.Translation, ShouldResemble, ros.Vector3{X: 0.9, Y: 0, Z: 1.8})
			So(transforms[1].ChildFrameID, ShouldEqual, "cam_front")
			So(transforms[1].Transform.Rotation, ShouldResemble, ros.Quaternion{W: 0.5, X: -0.5, Y: 0.5, Z: -0.5})
		})

		Convey("The tree is closed by an identity map-to-odom transform", func() {
			last := transforms[len(transforms)-1]
			So(last.Header.FrameID, ShouldEqual, "map")
			So(last.ChildFrameID, ShouldEqual, "odom")
			So(last.Transform.Translation, ShouldResemble, ros.Vector3{})
			So(last.Transform.Rotation, ShouldResemble, ros.Identity())
		})
	})
}

func TestPoseConversions(t *testing.T) {
	pose := nuscenes.EgoPose{
		Token:       "p1",
		Timestamp:   1532402927647951,
		Translation: [3]float64{411.4, 1181.2, 0},
		Rotation:    [4]float64{0.77, 0, 0, -0.63},
	}
	Convey("Scenario: ego poses become the odometry and transform tracks", t, func() {
		Convey("Odometry is expressed in odom for the vehicle body", func() {
			odom := OdometryFromPose(pose)
			So(odom.Header.FrameID, ShouldEqual, "odom")
			So(odom.ChildFrameID, ShouldEqual, "base_link")
			So(odom.Header.Stamp, ShouldResemble, ros.TimeFromMicros(pose.Timestamp))
			So(odom.Pose.Pose.Position, ShouldResemble, ros.Point{X: 411.4, Y: 1181.2, Z: 0})
			So(odom.Pose.Pose.Orientation, ShouldResemble, ros.Quaternion{W: 0.77, Z: -0.63})
		})

		Convey("The dynamic transform mirrors the odometry pose", func() {
			tf := TransformFromPose(pose)
			So(tf.Header.FrameID, ShouldEqual, "odom")
			So(tf.ChildFrameID, ShouldEqual, "base_link")
			So(tf.Header.Stamp, ShouldResemble, ros.TimeFromMicros(pose.Timestamp))
			So(tf.Transform.Translation, ShouldResemble, ros.Vector3{X: 411.4, Y: 1181.2, Z: 0})
		})
	})
}
