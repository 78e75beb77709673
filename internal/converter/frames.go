package converter

import (
	"strings"

	"github.com/robolog/nuscenes2bag/internal/nuscenes"
	"github.com/robolog/nuscenes2bag/internal/ros"
)

// Frame names of the emitted transform tree. Sensor frames hang off
// baseLinkFrame under their lower-cased channel names.
const (
	mapFrame      = "map"
	odomFrame     = "odom"
	baseLinkFrame = "base_link"
)

// StaticTransforms builds the constant part of the transform tree: one
// sensor-to-vehicle-body transform per calibrated sensor, keyed by the
// lower-cased display name, plus the identity map-to-odom transform.
// They are replayed with a fresh stamp at every pose tick.
func StaticTransforms(sensors []nuscenes.CalibratedSensorWithName) []ros.TransformStamped {
	transforms := make([]ros.TransformStamped, 0, len(sensors)+1)
	for _, s := range sensors {
		transforms = append(transforms, makeTransform(
			baseLinkFrame, strings.ToLower(s.Name), s.Sensor.Translation, s.Sensor.Rotation,
		))
	}
	return append(transforms, makeIdentityTransform(mapFrame, odomFrame))
}

func makeTransform(frameID, childFrameID string, translation [3]float64, rotation [4]float64) ros.TransformStamped {
	return ros.TransformStamped{
		Header:       ros.Header{FrameID: frameID},
		ChildFrameID: childFrameID,
		Transform: ros.Transform{
			Translation: ros.Vector3{X: translation[0], Y: translation[1], Z: translation[2]},
			Rotation:    ros.Quaternion{W: rotation[0], X: rotation[1], Y: rotation[2], Z: rotation[3]},
		},
	}
}

func makeIdentityTransform(frameID, childFrameID string) ros.TransformStamped {
	return ros.TransformStamped{
		Header:       ros.Header{FrameID: frameID},
		ChildFrameID: childFrameID,
		Transform:    ros.Transform{Rotation: ros.Identity()},
	}
}

// OdometryFromPose converts one ego pose record into the /odom message.
func OdometryFromPose(pose nuscenes.EgoPose) *ros.Odometry {
	return &ros.Odometry{
		Header:       ros.Header{Stamp: ros.TimeFromMicros(pose.Timestamp), FrameID: odomFrame},
		ChildFrameID: baseLinkFrame,
		Pose: ros.PoseWithCovariance{
			Pose: ros.Pose{
				Position: ros.Point{
					X: pose.Translation[0],
					Y: pose.Translation[1],
					Z: pose.Translation[2],
				},
				Orientation: ros.Quaternion{
					W: pose.Rotation[0],
					X: pose.Rotation[1],
					Y: pose.Rotation[2],
					Z: pose.Rotation[3],
				},
			},
		},
	}
}

// TransformFromPose converts one ego pose record into the dynamic
// vehicle-to-world transform.
func TransformFromPose(pose nuscenes.EgoPose) ros.TransformStamped {
	t := makeTransform(odomFrame, baseLinkFrame, pose.Translation, pose.Rotation)
	t.Header.Stamp = ros.TimeFromMicros(pose.Timestamp)
	return t
}
