package sample

import (
	"fmt"
	"os"

	"github.com/robolog/nuscenes2bag/internal/ros"
)

// RadarDecoder reads radar PCD object lists into RadarObjects payloads.
type RadarDecoder struct{}

func (RadarDecoder) Decode(path string) (ros.StampedMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pcd, err := parsePCD(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode radar file %s: %w", path, err)
	}
	msg := &ros.RadarObjects{Objects: make([]ros.RadarObject, pcd.points)}
	for i := 0; i < pcd.points; i++ {
		msg.Objects[i] = ros.RadarObject{
			Pose: ros.Point{
				X: float64(pcd.float32At(i, "x")),
				Y: float64(pcd.float32At(i, "y")),
				Z: float64(pcd.float32At(i, "z")),
			},
			DynProp:        pcd.uint8At(i, "dyn_prop"),
			RCS:            pcd.float32At(i, "rcs"),
			Vx:             pcd.float32At(i, "vx"),
			Vy:             pcd.float32At(i, "vy"),
			VxComp:         pcd.float32At(i, "vx_comp"),
			VyComp:         pcd.float32At(i, "vy_comp"),
			IsQualityValid: pcd.uint8At(i, "is_quality_valid"),
			AmbigState:     pcd.uint8At(i, "ambig_state"),
			XRms:           pcd.uint8At(i, "x_rms"),
			YRms:           pcd.uint8At(i, "y_rms"),
			InvalidState:   pcd.uint8At(i, "invalid_state"),
			Pdh0:           pcd.uint8At(i, "pdh0"),
			VxRms:          pcd.uint8At(i, "vx_rms"),
			VyRms:          pcd.uint8At(i, "vy_rms"),
		}
	}
	return msg, nil
}
