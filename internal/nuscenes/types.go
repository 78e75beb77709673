// Package nuscenes loads the dataset's relational JSON tables into a
// read-only, token-keyed index. All cross-table references are opaque
// token strings; referential integrity is never assumed, so queries
// return empty or absent results for unknown tokens.
package nuscenes

// Token is an opaque dataset-assigned identifier.
type Token = string

// SceneInfo describes one recorded driving segment.
type SceneInfo struct {
	Token            Token  `json:"token"`
	Name             string `json:"name"`
	FirstSampleToken Token  `json:"first_sample_token"`
	LastSampleToken  Token  `json:"last_sample_token"`

	// SceneID is the numeric part of Name ("scene-0061" -> 61).
	SceneID uint32 `json:"-"`
}

// Sample is one keyframe timestamp along a scene. Samples form a singly
// linked chain through Prev/Next; an empty Prev marks the first sample.
type Sample struct {
	Token      Token  `json:"token"`
	SceneToken Token  `json:"scene_token"`
	Timestamp  uint64 `json:"timestamp"`
	Prev       Token  `json:"prev"`
	Next       Token  `json:"next"`
}

// SampleData references one raw sensor file. Keyframe records align with
// their sample's timestamp; sweep records fall between two samples.
type SampleData struct {
	Token                 Token  `json:"token"`
	SampleToken           Token  `json:"sample_token"`
	EgoPoseToken          Token  `json:"ego_pose_token"`
	CalibratedSensorToken Token  `json:"calibrated_sensor_token"`
	FileName              string `json:"filename"`
	FileFormat            string `json:"fileformat"`
	Timestamp             uint64 `json:"timestamp"`
	IsKeyFrame            bool   `json:"is_key_frame"`
}

// EgoPose is the vehicle pose at one timestamp. Rotation is a quaternion
// in w, x, y, z order, as everywhere in the dataset.
type EgoPose struct {
	Token       Token      `json:"token"`
	Timestamp   uint64     `json:"timestamp"`
	Translation [3]float64 `json:"translation"`
	Rotation    [4]float64 `json:"rotation"`
}

// CalibratedSensor is a static sensor-to-vehicle-body extrinsic.
type CalibratedSensor struct {
	Token       Token      `json:"token"`
	SensorToken Token      `json:"sensor_token"`
	Translation [3]float64 `json:"translation"`
	Rotation    [4]float64 `json:"rotation"`
}

// CalibratedSensorWithName pairs an extrinsic with its sensor's display
// name (the channel, e.g. "CAM_FRONT").
type CalibratedSensorWithName struct {
	Sensor CalibratedSensor
	Name   string
}

// Sensor is a physical sensor description.
type Sensor struct {
	Token    Token  `json:"token"`
	Channel  string `json:"channel"`
	Modality string `json:"modality"`
}

// SampleAnnotation is one 3D object box at one sample. InstanceToken
// identifies the same physical object across samples. CategoryName is
// resolved through the instance and category tables at load time.
type SampleAnnotation struct {
	Token         Token      `json:"token"`
	SampleToken   Token      `json:"sample_token"`
	InstanceToken Token      `json:"instance_token"`
	Translation   [3]float64 `json:"translation"`
	Size          [3]float64 `json:"size"`
	Rotation      [4]float64 `json:"rotation"`

	CategoryName string `json:"-"`
}

type instance struct {
	Token         Token `json:"token"`
	CategoryToken Token `json:"category_token"`
}

type category struct {
	Token Token  `json:"token"`
	Name  string `json:"name"`
}
