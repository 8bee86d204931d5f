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

const poseVarianceScale = 1000.0

// AttentionPlugin estimates head pose and counts frames spent looking away.
type AttentionPlugin struct {
	landmarks repositories.LandmarkDetector
	stride    int
	logger    *zap.Logger
}

func NewAttentionPlugin(landmarks repositories.LandmarkDetector, stride int, logger *zap.Logger) *AttentionPlugin {
	return &AttentionPlugin{landmarks: landmarks, stride: stride, logger: logger}
}

func (p *AttentionPlugin) Name() string { return entities.ModalityAttention }

func (p *AttentionPlugin) Extract(ctx context.Context, src *Source) (Partial, error) {
	var (
		analyzed     int
		faceFrames   int
		focused      int
		distractions int
		lookingAway  int
		yaws, pitchs []float64
		timeline     []entities.HeadPoseSample
	)
	_, err := src.Walk(ctx, p.Name(), p.stride, func(f entities.Frame) error {
		bounds := f.Image.Bounds()
		lm, err := p.landmarks.DetectLandmarks(ctx, f.Image)
		switch {
		case errors.Is(err, repositories.ErrNoFace):
			analyzed++
			distractions++
			lookingAway++
			return nil
		case err != nil:
			p.logger.Debug("Face mesh failed", zap.Int("frame", f.Index), zap.Error(err))
			return nil
		}

		pose, err := geometry.EstimateHeadPose(lm, bounds.Dx(), bounds.Dy())
		if err != nil {
			p.logger.Debug("Head pose unsolved", zap.Int("frame", f.Index), zap.Error(err))
			return nil
		}
		analyzed++
		faceFrames++
		yaws = append(yaws, pose.Yaw)
		pitchs = append(pitchs, pose.Pitch)

		isFocused := pose.Focused()
		if isFocused {
			focused++
		} else {
			lookingAway++
		}
		if f.Index%timelineEvery == 0 {
			timeline = append(timeline, entities.HeadPoseSample{
				Timestamp: f.Timestamp,
				Yaw:       round(pose.Yaw, 2),
				Pitch:     round(pose.Pitch, 2),
				Roll:      round(pose.Roll, 2),
				Focused:   isFocused,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if analyzed == 0 {
		return nil, fmt.Errorf("no frame reached the face mesh: %w", ErrNoSamples)
	}

	summary := &entities.AttentionSummary{
		DistractionCount: distractions,
		FramesAnalyzed:   analyzed,
		Timeline:         timeline,
	}
	if faceFrames > 0 {
		summary.FocusPercentage = round(percent(focused, faceFrames), 2)
		summary.HeadPoseStability = round(max(0, 1-(variance(yaws)+variance(pitchs))/poseVarianceScale), 2)
	}
	if src.Asset.FPS > 0 {
		summary.LookingAwayDuration = round(float64(lookingAway)/src.Asset.FPS, 2)
	}
	return attentionPartial{summary}, nil
}
