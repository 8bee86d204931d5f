package analysis

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/Intervyou-site/intervyou/domain/entities"
	"github.com/Intervyou-site/intervyou/domain/repositories"
)

const (
	// centeredFraction bounds the horizontal distance of a centred face from
	// the frame centre, as a fraction of the frame width.
	centeredFraction = 0.2
	smileThreshold   = 0.5
)

// FacialPlugin measures face presence, centring and smiling with the
// lightweight detector. The classifier is optional.
type FacialPlugin struct {
	detector   repositories.FaceDetector
	classifier repositories.EmotionClassifier
	stride     int
	logger     *zap.Logger
}

func NewFacialPlugin(detector repositories.FaceDetector, classifier repositories.EmotionClassifier, stride int, logger *zap.Logger) *FacialPlugin {
	return &FacialPlugin{detector: detector, classifier: classifier, stride: stride, logger: logger}
}

func (p *FacialPlugin) Name() string { return entities.ModalityFacial }

func (p *FacialPlugin) Extract(ctx context.Context, src *Source) (Partial, error) {
	var analyzed, withFace, centered, smiling int
	_, err := src.Walk(ctx, p.Name(), p.stride, func(f entities.Frame) error {
		faces, err := p.detector.DetectFaces(ctx, f.Image)
		if err != nil {
			p.logger.Debug("Face detection failed", zap.Int("frame", f.Index), zap.Error(err))
			return nil
		}
		analyzed++
		if len(faces) == 0 {
			return nil
		}
		withFace++
		width := float64(f.Image.Bounds().Dx())
		if IsCentered(faces[0], width) {
			centered++
		}
		if p.classifier != nil {
			if dist, err := p.classifier.ClassifyEmotion(ctx, f.Image); err == nil && dist[entities.EmotionHappy] >= smileThreshold {
				smiling++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if analyzed == 0 {
		return nil, fmt.Errorf("no frame reached the face detector: %w", ErrNoSamples)
	}

	summary := &entities.FacialSummary{
		FaceDetectedRatio: round(float64(withFace)/float64(analyzed), 3),
		EyeContact:        round(float64(centered)/float64(analyzed), 3),
		FramesAnalyzed:    analyzed,
	}
	if p.classifier != nil {
		smile := round(float64(smiling)/float64(analyzed), 3)
		summary.SmileFrequency = &smile
	}
	return facialPartial{summary}, nil
}

// IsCentered reports whether the face sits near the horizontal centre of a frame
func IsCentered(face entities.FaceBox, frameWidth float64) bool {
	return math.Abs(face.CenterX-frameWidth/2) < centeredFraction*frameWidth
}
