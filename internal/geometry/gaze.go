package geometry

import (
	"errors"
	"math"

	"github.com/Intervyou-site/intervyou/domain/entities"
)

// Gaze thresholds on the normalized iris offsets.
const (
	HorizontalGazeThreshold = 0.15
	VerticalGazeThreshold   = 0.10
)

// Iris rings and eye corners in refined face-mesh indices.
var (
	LeftIris  = []int{474, 475, 476, 477}
	RightIris = []int{469, 470, 471, 472}

	eyeOuterCorner = 33
	eyeInnerCorner = 133
)

// ErrNoIris is returned when the mesh lacks iris refinement points.
var ErrNoIris = errors.New("face mesh has no iris landmarks")

// GazeOffset is the iris position relative to the eye socket and frame.
type GazeOffset struct {
	X float64
	Y float64
}

// ClassifyGaze maps an offset to a direction. The horizontal test wins over the vertical one.
func ClassifyGaze(o GazeOffset) string {
	if math.Abs(o.X) > HorizontalGazeThreshold {
		if o.X > 0 {
			return entities.GazeRight
		}
		return entities.GazeLeft
	}
	if math.Abs(o.Y) > VerticalGazeThreshold {
		if o.Y < 0 {
			return entities.GazeUp
		}
		return entities.GazeDown
	}
	return entities.GazeCenter
}

func centroid(lm *entities.FaceLandmarks, indices []int, w, h int) (entities.Point, bool) {
	var c entities.Point
	for _, idx := range indices {
		if !lm.Has(idx) {
			return c, false
		}
		p := lm.Pixel(idx, w, h)
		c.X += p.X
		c.Y += p.Y
	}
	n := float64(len(indices))
	return entities.Point{X: c.X / n, Y: c.Y / n}, true
}

// IrisOffset computes the horizontal iris offset against the eye-corner midpoint,
// normalized by eye width, and the vertical offset of the left iris against the
// frame half-height, normalized by frame height.
func IrisOffset(lm *entities.FaceLandmarks, w, h int) (GazeOffset, error) {
	left, ok := centroid(lm, LeftIris, w, h)
	if !ok {
		return GazeOffset{}, ErrNoIris
	}
	right, ok := centroid(lm, RightIris, w, h)
	if !ok {
		return GazeOffset{}, ErrNoIris
	}
	if !lm.Has(eyeOuterCorner) || !lm.Has(eyeInnerCorner) {
		return GazeOffset{}, ErrNoIris
	}
	outer := lm.Pixel(eyeOuterCorner, w, h)
	inner := lm.Pixel(eyeInnerCorner, w, h)

	eyeWidth := math.Abs(inner.X - outer.X)
	if eyeWidth == 0 || h == 0 {
		return GazeOffset{}, errors.New("degenerate eye geometry")
	}
	irisX := (left.X + right.X) / 2
	eyeCenterX := (outer.X + inner.X) / 2

	return GazeOffset{
		X: (irisX - eyeCenterX) / eyeWidth,
		Y: (left.Y - float64(h)/2) / float64(h),
	}, nil
}
