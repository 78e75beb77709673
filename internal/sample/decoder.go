// Package sample decodes raw nuScenes sensor files (camera JPEG, lidar
// point blobs, radar PCD object lists) into message payloads. Decoders
// are pure format readers: a failed decode returns an error and nothing
// else, and the caller decides whether to skip or abort.
package sample

import (
	"github.com/robolog/nuscenes2bag/internal/ros"
)

// Decoder converts one raw sample file into an unstamped payload; the
// orchestrator assigns the header afterwards.
type Decoder interface {
	Decode(path string) (ros.StampedMessage, error)
}
