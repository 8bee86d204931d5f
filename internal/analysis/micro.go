package analysis

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Intervyou-site/intervyou/domain/entities"
	"github.com/Intervyou-site/intervyou/domain/repositories"
)

// microWindow is the longest gap between transitions that still counts as a
// micro-expression, in seconds.
const microWindow = 0.5

// Authenticity indicators.
const (
	IndicatorNatural    = "Natural micro-expressions detected - indicates genuine emotions"
	IndicatorStress     = "High micro-expression rate - may indicate nervousness or stress"
	IndicatorControlled = "Low micro-expression rate - expressions may be controlled"
)

// MicroPlugin detects rapid changes of the dominant emotion.
type MicroPlugin struct {
	classifier repositories.EmotionClassifier
	stride     int
	logger     *zap.Logger
}

func NewMicroPlugin(classifier repositories.EmotionClassifier, stride int, logger *zap.Logger) *MicroPlugin {
	return &MicroPlugin{classifier: classifier, stride: stride, logger: logger}
}

func (p *MicroPlugin) Name() string { return entities.ModalityMicroExpression }

func (p *MicroPlugin) Extract(ctx context.Context, src *Source) (Partial, error) {
	tracker := NewTransitionTracker()
	_, err := src.Walk(ctx, p.Name(), p.stride, func(f entities.Frame) error {
		dist, err := p.classifier.ClassifyEmotion(ctx, f.Image)
		if err != nil {
			p.logger.Debug("Micro-expression sample skipped", zap.Int("frame", f.Index), zap.Error(err))
			return nil
		}
		label, _ := dist.Dominant()
		tracker.Observe(f.Timestamp, label)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if tracker.frames == 0 {
		return nil, fmt.Errorf("no frame could be classified: %w", ErrNoSamples)
	}
	return microPartial{tracker.Summary()}, nil
}

// TransitionTracker follows the dominant emotion over time-ordered frames.
type TransitionTracker struct {
	frames      int
	last        string
	transitions []float64
	count       int
	types       map[string]int
}

func NewTransitionTracker() *TransitionTracker {
	return &TransitionTracker{types: make(map[string]int)}
}

// Observe records the dominant label of the frame at ts seconds
func (t *TransitionTracker) Observe(ts float64, label string) {
	t.frames++
	if t.frames == 1 {
		t.last = label
		return
	}
	if label == t.last {
		return
	}
	t.transitions = append(t.transitions, ts)
	if n := len(t.transitions); n > 1 && ts-t.transitions[n-2] < microWindow {
		t.count++
		t.types[t.last+"_to_"+label]++
	}
	t.last = label
}

func (t *TransitionTracker) Summary() *entities.MicroExpressionSummary {
	indicators := []string{}
	if t.count > 0 {
		indicators = append(indicators, IndicatorNatural)
	}
	if t.count > 20 {
		indicators = append(indicators, IndicatorStress)
	} else if t.count < 5 {
		indicators = append(indicators, IndicatorControlled)
	}
	types := make(map[string]int, len(t.types))
	for k, v := range t.types {
		types[k] = v
	}
	return &entities.MicroExpressionSummary{
		DetectedCount:          t.count,
		Types:                  types,
		AuthenticityIndicators: indicators,
		FramesAnalyzed:         t.frames,
	}
}
