package converter

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/robolog/nuscenes2bag/internal/nuscenes"
	"github.com/robolog/nuscenes2bag/internal/ros"
)

var (
	colorRed     = ros.ColorRGBA{R: 1, G: 0.239, B: 0.388, A: 1}
	colorOrange  = ros.ColorRGBA{R: 1, G: 0.619, B: 0, A: 1}
	colorBlue    = ros.ColorRGBA{R: 0, G: 0, B: 0.901, A: 1}
	colorBlack   = ros.ColorRGBA{A: 1}
	colorMagenta = ros.ColorRGBA{R: 1, G: 0, B: 1, A: 1}
)

// Category fragments in match order; first hit wins.
var categoryColors = []struct {
	fragment string
	color    ros.ColorRGBA
}{
	{"bicycle", colorRed},
	{"motorcycle", colorRed},
	{"vehicle", colorOrange},
	{"bus", colorOrange},
	{"car", colorOrange},
	{"construction_vehicle", colorOrange},
	{"trailer", colorOrange},
	{"truck", colorOrange},
	{"pedestrian", colorBlue},
	{"cone", colorBlack},
	{"barrier", colorBlack},
}

// ColorForCategory assigns the deterministic display color for a
// category name. Unrecognized categories are magenta.
func ColorForCategory(categoryName string) ros.ColorRGBA {
	name := strings.ToLower(categoryName)
	for _, c := range categoryColors {
		if strings.Contains(name, c.fragment) {
			return c.color
		}
	}
	return colorMagenta
}

// RawBoxes converts annotations at a keyframe into boxes without any
// interpolation; the annotation poses are authoritative there.
func RawBoxes(annotations []nuscenes.SampleAnnotation) []ros.Box {
	boxes := make([]ros.Box, 0, len(annotations))
	for i := range annotations {
		boxes = append(boxes, makeBox(&annotations[i]))
	}
	return boxes
}

// InterpolateBoxes estimates object poses for a sweep record lying
// between prev and curr. For every current annotation whose instance
// also exists in the previous sample, center and orientation are
// interpolated at amount = (t-t0)/(t1-t0) with t clamped into [t0,t1];
// amount=0 reproduces the previous pose and amount=1 the current one.
// Instances absent from the previous sample keep their current pose
// unmodified. Size is never interpolated.
func InterpolateBoxes(
	sampleData nuscenes.SampleData,
	curr, prev nuscenes.Sample,
	currAnnotations, prevAnnotations []nuscenes.SampleAnnotation,
) []ros.Box {
	prevByInstance := make(map[nuscenes.Token]*nuscenes.SampleAnnotation, len(prevAnnotations))
	for i := range prevAnnotations {
		prevByInstance[prevAnnotations[i].InstanceToken] = &prevAnnotations[i]
	}

	t0, t1 := prev.Timestamp, curr.Timestamp
	// Rare records carry timestamps outside the bounding samples; clamp
	// so the interpolation fraction stays in [0, 1].
	t := sampleData.Timestamp
	if t < t0 {
		t = t0
	}
	if t > t1 {
		t = t1
	}
	amount := 1.0
	if t1 > t0 {
		amount = float64(t-t0) / float64(t1-t0)
	}

	boxes := make([]ros.Box, 0, len(currAnnotations))
	for i := range currAnnotations {
		ann := &currAnnotations[i]
		prevAnn, ok := prevByInstance[ann.InstanceToken]
		if !ok {
			// The object entered the scene at this frame.
			boxes = append(boxes, makeBox(ann))
			continue
		}
		c0 := r3.Vec{X: prevAnn.Translation[0], Y: prevAnn.Translation[1], Z: prevAnn.Translation[2]}
		c1 := r3.Vec{X: ann.Translation[0], Y: ann.Translation[1], Z: ann.Translation[2]}
		center := r3.Add(r3.Scale(amount, c1), r3.Scale(1-amount, c0))
		rotation := slerp(quatFromDataset(prevAnn.Rotation), quatFromDataset(ann.Rotation), amount)
		boxes = append(boxes, makeBoxAt(ann, center, rotation))
	}
	return boxes
}

func quatFromDataset(rotation [4]float64) quat.Number {
	// Dataset order is w, x, y, z.
	return quat.Number{Real: rotation[0], Imag: rotation[1], Jmag: rotation[2], Kmag: rotation[3]}
}

// slerp spherically interpolates from q0 (t=0) to q1 (t=1) along the
// shorter arc.
func slerp(q0, q1 quat.Number, t float64) quat.Number {
	dot := q0.Real*q1.Real + q0.Imag*q1.Imag + q0.Jmag*q1.Jmag + q0.Kmag*q1.Kmag
	if dot < 0 {
		q1 = quat.Scale(-1, q1)
		dot = -dot
	}
	if dot > 0.9995 {
		// Nearly parallel; normalized lerp avoids the unstable division.
		return normalize(quat.Add(quat.Scale(1-t, q0), quat.Scale(t, q1)))
	}
	theta := math.Acos(dot)
	sinTheta := math.Sin(theta)
	w0 := math.Sin((1-t)*theta) / sinTheta
	w1 := math.Sin(t*theta) / sinTheta
	return quat.Add(quat.Scale(w0, q0), quat.Scale(w1, q1))
}

func normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/n, q)
}

func makeBox(annotation *nuscenes.SampleAnnotation) ros.Box {
	return ros.Box{
		Center: ros.Point{
			X: annotation.Translation[0],
			Y: annotation.Translation[1],
			Z: annotation.Translation[2],
		},
		Size: ros.Vector3{
			X: annotation.Size[0],
			Y: annotation.Size[1],
			Z: annotation.Size[2],
		},
		Orientation: ros.Quaternion{
			W: annotation.Rotation[0],
			X: annotation.Rotation[1],
			Y: annotation.Rotation[2],
			Z: annotation.Rotation[3],
		},
		Token:        annotation.Token,
		CategoryName: annotation.CategoryName,
		Color:        ColorForCategory(annotation.CategoryName),
	}
}

func makeBoxAt(annotation *nuscenes.SampleAnnotation, center r3.Vec, rotation quat.Number) ros.Box {
	box := makeBox(annotation)
	box.Center = ros.Point{X: center.X, Y: center.Y, Z: center.Z}
	box.Orientation = ros.Quaternion{
		W: rotation.Real,
		X: rotation.Imag,
		Y: rotation.Jmag,
		Z: rotation.Kmag,
	}
	return box
}
