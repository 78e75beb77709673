package converter

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/robolog/nuscenes2bag/internal/ros"
)

const markerLineWidth = 0.1

// MakeMarkerArray renders boxes as LINE_LIST wireframe markers in the
// map frame, one marker per box with sequential ids.
func MakeMarkerArray(boxes []ros.Box, stamp ros.Time, lifetime ros.Duration) *ros.MarkerArray {
	msg := &ros.MarkerArray{Markers: make([]ros.Marker, 0, len(boxes))}
	for i := range boxes {
		msg.Markers = append(msg.Markers, makeMarker(&boxes[i], int32(i), stamp, lifetime))
	}
	return msg
}

func makeMarker(box *ros.Box, id int32, stamp ros.Time, lifetime ros.Duration) ros.Marker {
	rotation := r3.Rotation(quatFromDataset([4]float64{
		box.Orientation.W, box.Orientation.X, box.Orientation.Y, box.Orientation.Z,
	}))
	center := r3.Vec{X: box.Center.X, Y: box.Center.Y, Z: box.Center.Z}

	// Box width lies along the x axis.
	width, depth, height := box.Size.X, box.Size.Y, box.Size.Z
	min := r3.Vec{X: -depth / 2, Y: -width / 2, Z: -height / 2}
	max := r3.Vec{X: depth / 2, Y: width / 2, Z: height / 2}

	corners := [8]r3.Vec{
		{X: min.X, Y: min.Y, Z: min.Z},
		{X: min.X, Y: min.Y, Z: max.Z},
		{X: max.X, Y: min.Y, Z: max.Z},
		{X: max.X, Y: min.Y, Z: min.Z},
		{X: min.X, Y: max.Y, Z: min.Z},
		{X: min.X, Y: max.Y, Z: max.Z},
		{X: max.X, Y: max.Y, Z: max.Z},
		{X: max.X, Y: max.Y, Z: min.Z},
	}
	for i := range corners {
		corners[i] = r3.Add(rotation.Rotate(corners[i]), center)
	}

	// Unconnected edge pairs of the wireframe, indexing corners.
	edges := [12][2]int{
		{0, 1}, {0, 3}, {0, 4}, {4, 5}, {4, 7}, {1, 5},
		{5, 6}, {6, 7}, {1, 2}, {3, 7}, {2, 3}, {2, 6},
	}

	msg := ros.Marker{
		Header:   ros.Header{Stamp: stamp, FrameID: "map"},
		Ns:       "annotations",
		ID:       id,
		Type:     ros.MarkerLineList,
		Action:   ros.MarkerAdd,
		Pose:     ros.Pose{Orientation: ros.Identity()},
		Scale:    ros.Vector3{X: markerLineWidth},
		Color:    box.Color,
		Lifetime: lifetime,
		Points:   make([]ros.Point, 0, len(edges)*2),
		Colors:   make([]ros.ColorRGBA, 0, len(edges)*2),
	}
	for _, e := range edges {
		a, b := corners[e[0]], corners[e[1]]
		msg.Points = append(msg.Points,
			ros.Point{X: a.X, Y: a.Y, Z: a.Z},
			ros.Point{X: b.X, Y: b.Y, Z: b.Z},
		)
		msg.Colors = append(msg.Colors, box.Color, box.Color)
	}
	return msg
}
