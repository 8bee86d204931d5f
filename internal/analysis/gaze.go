package analysis

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Intervyou-site/intervyou/domain/entities"
	"github.com/Intervyou-site/intervyou/domain/repositories"
	"github.com/Intervyou-site/intervyou/internal/geometry"
)

const (
	// timelineEvery is the frame interval at which gaze and attention samples
	// are kept for the merged timeline.
	timelineEvery = 30
	// gazeVarianceScale maps offset variance onto the stability score.
	gazeVarianceScale = 0.1
)

// GazePlugin tracks blinks and iris direction from the dense face mesh.
type GazePlugin struct {
	landmarks repositories.LandmarkDetector
	stride    int
	logger    *zap.Logger
}

func NewGazePlugin(landmarks repositories.LandmarkDetector, stride int, logger *zap.Logger) *GazePlugin {
	return &GazePlugin{landmarks: landmarks, stride: stride, logger: logger}
}

func (p *GazePlugin) Name() string { return entities.ModalityEyeTracking }

func (p *GazePlugin) Extract(ctx context.Context, src *Source) (Partial, error) {
	var (
		blinks   int
		analyzed int
		xs, ys   []float64
		timeline []entities.GazeSample
	)
	counts := make(map[string]int, len(entities.GazeDirections))
	_, err := src.Walk(ctx, p.Name(), p.stride, func(f entities.Frame) error {
		bounds := f.Image.Bounds()
		lm, err := p.landmarks.DetectLandmarks(ctx, f.Image)
		if err != nil {
			if !errors.Is(err, repositories.ErrNoFace) {
				p.logger.Debug("Face mesh failed", zap.Int("frame", f.Index), zap.Error(err))
			}
			return nil
		}

		blink := false
		if ear, ok := geometry.AverageEAR(lm, bounds.Dx(), bounds.Dy()); ok && geometry.IsBlink(ear) {
			blink = true
			blinks++
		}

		offset, err := geometry.IrisOffset(lm, bounds.Dx(), bounds.Dy())
		if err != nil {
			return nil
		}
		direction := geometry.ClassifyGaze(offset)
		analyzed++
		counts[direction]++
		xs = append(xs, offset.X)
		ys = append(ys, offset.Y)

		if f.Index%timelineEvery == 0 {
			timeline = append(timeline, entities.GazeSample{
				Timestamp: f.Timestamp,
				Direction: direction,
				XOffset:   offset.X,
				YOffset:   offset.Y,
				Blink:     blink,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if analyzed == 0 {
		return nil, fmt.Errorf("no frame had a usable iris: %w", ErrNoSamples)
	}

	histogram := make(map[string]float64, len(entities.GazeDirections))
	for _, d := range entities.GazeDirections {
		histogram[d] = round(percent(counts[d], analyzed), 2)
	}
	eyeContact := histogram[entities.GazeCenter]
	stability := round(max(0, 1-variance(append(xs, ys...))/gazeVarianceScale), 2)

	var blinkRate float64
	if src.Asset.Duration > 0 {
		blinkRate = round(float64(blinks)/src.Asset.Duration*60, 2)
	}

	return eyePartial{&entities.EyeTrackingSummary{
		GazeDirection:        histogram,
		BlinkRate:            blinkRate,
		TotalBlinks:          blinks,
		EyeContactPercentage: eyeContact,
		GazeStability:        stability,
		AttentionScore:       round(eyeContact/100*0.7+stability*0.3, 2),
		FramesAnalyzed:       analyzed,
		Timeline:             timeline,
	}}, nil
}
