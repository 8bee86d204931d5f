package analysis

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Intervyou-site/intervyou/domain/entities"
	"github.com/Intervyou-site/intervyou/domain/repositories"
)

// emotionTimelineSize is how many trailing samples the summary keeps.
const emotionTimelineSize = 10

// EmotionPlugin classifies the facial emotion of every sampled frame.
type EmotionPlugin struct {
	classifier repositories.EmotionClassifier
	stride     int
	logger     *zap.Logger
}

func NewEmotionPlugin(classifier repositories.EmotionClassifier, stride int, logger *zap.Logger) *EmotionPlugin {
	return &EmotionPlugin{classifier: classifier, stride: stride, logger: logger}
}

func (p *EmotionPlugin) Name() string { return entities.ModalityEmotion }

func (p *EmotionPlugin) Extract(ctx context.Context, src *Source) (Partial, error) {
	var samples []entities.EmotionSample
	_, err := src.Walk(ctx, p.Name(), p.stride, func(f entities.Frame) error {
		dist, err := p.classifier.ClassifyEmotion(ctx, f.Image)
		if err != nil {
			p.logger.Debug("Emotion sample skipped", zap.Int("frame", f.Index), zap.Error(err))
			return nil
		}
		samples = append(samples, entities.EmotionSample{Timestamp: f.Timestamp, Emotions: dist})
		return nil
	})
	if err != nil {
		return nil, err
	}
	summary, err := SummarizeEmotions(samples)
	if err != nil {
		return nil, err
	}
	return emotionPartial{summary}, nil
}

// SummarizeEmotions aggregates classified samples per label. A label missing from
// a sample counts as zero for that sample.
func SummarizeEmotions(samples []entities.EmotionSample) (*entities.EmotionSummary, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no frame could be classified: %w", ErrNoSamples)
	}

	stats := make(map[string]entities.EmotionStat, len(entities.EmotionLabels))
	averages := make(entities.EmotionDistribution, len(entities.EmotionLabels))
	for _, label := range entities.EmotionLabels {
		scores := make([]float64, len(samples))
		for i, s := range samples {
			scores[i] = s.Emotions[label]
		}
		lo, hi := scores[0], scores[0]
		for _, v := range scores[1:] {
			lo = min(lo, v)
			hi = max(hi, v)
		}
		avg := mean(scores)
		stats[label] = entities.EmotionStat{Average: avg, Max: hi, Min: lo}
		averages[label] = avg
	}
	dominant, _ := averages.Dominant()

	timeline := samples
	if len(timeline) > emotionTimelineSize {
		timeline = timeline[len(timeline)-emotionTimelineSize:]
	}
	return &entities.EmotionSummary{
		Emotions:        stats,
		DominantEmotion: dominant,
		SampleCount:     len(samples),
		Timeline:        append([]entities.EmotionSample(nil), timeline...),
	}, nil
}
