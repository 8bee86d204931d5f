package analysis

import (
	"context"

	"github.com/Intervyou-site/intervyou/domain/entities"
)

// Plugin is one modality extractor. Plugins whose backend is missing are not
// registered, so the analyzer never sees a disabled plugin.
type Plugin interface {
	Name() string
	Extract(ctx context.Context, src *Source) (Partial, error)
}

// Partial is a modality measurement ready to be merged into a result.
type Partial interface {
	apply(res *entities.AnalysisResult)
}

type emotionPartial struct{ s *entities.EmotionSummary }

func (p emotionPartial) apply(r *entities.AnalysisResult) { r.Emotion = p.s }

type facialPartial struct{ s *entities.FacialSummary }

func (p facialPartial) apply(r *entities.AnalysisResult) { r.Facial = p.s }

type eyePartial struct{ s *entities.EyeTrackingSummary }

func (p eyePartial) apply(r *entities.AnalysisResult) { r.EyeTracking = p.s }

type attentionPartial struct{ s *entities.AttentionSummary }

func (p attentionPartial) apply(r *entities.AnalysisResult) { r.Attention = p.s }

type bodyPartial struct{ s *entities.BodyMovementSummary }

func (p bodyPartial) apply(r *entities.AnalysisResult) { r.BodyMovement = p.s }

type microPartial struct{ s *entities.MicroExpressionSummary }

func (p microPartial) apply(r *entities.AnalysisResult) { r.MicroExpressions = p.s }

type voicePartial struct{ s *entities.VoiceMetrics }

func (p voicePartial) apply(r *entities.AnalysisResult) { r.Voice = p.s }

// VideoModalities lists every modality in result order.
var VideoModalities = []string{
	entities.ModalityEmotion,
	entities.ModalityFacial,
	entities.ModalityEyeTracking,
	entities.ModalityAttention,
	entities.ModalityBodyMovement,
	entities.ModalityMicroExpression,
	entities.ModalityVoice,
}
