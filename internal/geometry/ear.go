// Package geometry holds the landmark geometry used by the gaze and head-pose
// modalities: eye aspect ratio, iris-offset gaze classification and head-pose
// recovery from a 3D face template.
package geometry

import (
	"math"

	"github.com/Intervyou-site/intervyou/domain/entities"
)

// BlinkThreshold is the eye aspect ratio below which an eye counts as closed.
const BlinkThreshold = 0.25

// Six-point eye rings in face-mesh indices: outer corner, two upper lid points,
// inner corner, two lower lid points.
var (
	LeftEyeRing  = [6]int{362, 385, 387, 263, 373, 380}
	RightEyeRing = [6]int{33, 160, 158, 133, 153, 144}
)

func distance(a, b entities.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// EyeAspectRatio computes (|p1-p5| + |p2-p4|) / (2|p0-p3|) over a six-point eye ring.
// A degenerate ring with zero width returns 0.
func EyeAspectRatio(ring [6]entities.Point) float64 {
	horizontal := distance(ring[0], ring[3])
	if horizontal == 0 {
		return 0
	}
	vertical := distance(ring[1], ring[5]) + distance(ring[2], ring[4])
	return vertical / (2 * horizontal)
}

// IsBlink reports whether the ratio marks a closed eye
func IsBlink(ear float64) bool {
	return ear < BlinkThreshold
}

// EyeRing extracts a ring from a face mesh in pixel coordinates
func EyeRing(lm *entities.FaceLandmarks, indices [6]int, w, h int) ([6]entities.Point, bool) {
	var ring [6]entities.Point
	for i, idx := range indices {
		if !lm.Has(idx) {
			return ring, false
		}
		ring[i] = lm.Pixel(idx, w, h)
	}
	return ring, true
}

// AverageEAR averages the aspect ratio of both eyes of a face mesh
func AverageEAR(lm *entities.FaceLandmarks, w, h int) (float64, bool) {
	left, ok := EyeRing(lm, LeftEyeRing, w, h)
	if !ok {
		return 0, false
	}
	right, ok := EyeRing(lm, RightEyeRing, w, h)
	if !ok {
		return 0, false
	}
	return (EyeAspectRatio(left) + EyeAspectRatio(right)) / 2, true
}
