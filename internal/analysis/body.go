package analysis

import (
	"context"
	"fmt"
	"image"
	"math"

	"go.uber.org/zap"

	"github.com/Intervyou-site/intervyou/domain/entities"
)

// Movement bands over the mean absolute grey-level difference.
const (
	minimalMovement   = 5.0
	moderateMovement  = 15.0
	stabilityScale    = 20.0
	secondsPerGesture = 10.0
)

// BodyPlugin measures overall motion by differencing sampled frames.
// It needs no model.
type BodyPlugin struct {
	stride int
	logger *zap.Logger
}

func NewBodyPlugin(stride int, logger *zap.Logger) *BodyPlugin {
	return &BodyPlugin{stride: stride, logger: logger}
}

func (p *BodyPlugin) Name() string { return entities.ModalityBodyMovement }

func (p *BodyPlugin) Extract(ctx context.Context, src *Source) (Partial, error) {
	var (
		prev      []float64
		movements []float64
	)
	_, err := src.Walk(ctx, p.Name(), p.stride, func(f entities.Frame) error {
		gray := Grayscale(f.Image)
		if prev != nil && len(prev) == len(gray) {
			movements = append(movements, MeanAbsDiff(prev, gray))
		}
		prev = gray
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(movements) == 0 {
		return nil, fmt.Errorf("fewer than two frames sampled: %w", ErrNoSamples)
	}
	return bodyPartial{SummarizeMovement(movements, src.Asset.Duration)}, nil
}

// SummarizeMovement bands the per-step motion of a recording of duration seconds.
func SummarizeMovement(movements []float64, duration float64) *entities.BodyMovementSummary {
	avg := mean(movements)
	level, posture := entities.MovementActive, 0.7
	switch {
	case avg < minimalMovement:
		level, posture = entities.MovementMinimal, 0.9
	case avg < moderateMovement:
		level, posture = entities.MovementModerate, 0.85
	}
	return &entities.BodyMovementSummary{
		MovementLevel:    level,
		AverageMovement:  round(avg, 2),
		PostureScore:     posture,
		Stability:        round(1-math.Min(stddev(movements)/stabilityScale, 1), 2),
		GesturesDetected: max(0, int(duration/secondsPerGesture)),
	}
}

// Grayscale returns the luma of every pixel in row-major order.
func Grayscale(img *image.RGBA) []float64 {
	b := img.Bounds()
	out := make([]float64, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			px := row[x*4 : x*4+3]
			out = append(out, 0.299*float64(px[0])+0.587*float64(px[1])+0.114*float64(px[2]))
		}
	}
	return out
}

// MeanAbsDiff is the mean absolute difference of two equally sized planes.
func MeanAbsDiff(a, b []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum / float64(len(a))
}
