package sample

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/robolog/nuscenes2bag/internal/ros"
)

// ImageDecoder reads camera sample files into sensor_msgs/Image payloads
// with rgb8 encoding.
type ImageDecoder struct{}

func (ImageDecoder) Decode(path string) (ros.StampedMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	data := make([]byte, 0, width*height*3)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			data = append(data, byte(r>>8), byte(g>>8), byte(b>>8))
		}
	}
	return &ros.Image{
		Height:   uint32(height),
		Width:    uint32(width),
		Encoding: "rgb8",
		Step:     uint32(width * 3),
		Data:     data,
	}, nil
}
