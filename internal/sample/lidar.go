package sample

import (
	"fmt"
	"os"

	"github.com/robolog/nuscenes2bag/internal/ros"
)

// Lidar sample files are flat little-endian float32 records of
// x, y, z, intensity, ring. The ring index is dropped on conversion; the
// emitted cloud carries x, y, z, intensity.
const (
	lidarRecordSize = 5 * 4
	cloudPointStep  = 4 * 4
)

// LidarDecoder reads lidar sweep files into sensor_msgs/PointCloud2
// payloads.
type LidarDecoder struct{}

func (LidarDecoder) Decode(path string) (ros.StampedMessage, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(raw)%lidarRecordSize != 0 {
		return nil, fmt.Errorf("truncated lidar file %s: %d bytes", path, len(raw))
	}
	points := len(raw) / lidarRecordSize
	data := make([]byte, 0, points*cloudPointStep)
	for i := 0; i < points; i++ {
		rec := raw[i*lidarRecordSize:]
		data = append(data, rec[:cloudPointStep]...)
	}
	return &ros.PointCloud2{
		Height: 1,
		Width:  uint32(points),
		Fields: []ros.PointField{
			{Name: "x", Offset: 0, Datatype: ros.PointFieldFloat32, Count: 1},
			{Name: "y", Offset: 4, Datatype: ros.PointFieldFloat32, Count: 1},
			{Name: "z", Offset: 8, Datatype: ros.PointFieldFloat32, Count: 1},
			{Name: "intensity", Offset: 12, Datatype: ros.PointFieldFloat32, Count: 1},
		},
		PointStep: cloudPointStep,
		RowStep:   uint32(points * cloudPointStep),
		Data:      data,
		IsDense:   true,
	}, nil
}
