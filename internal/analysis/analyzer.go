// Package analysis runs the batch behavioral analysis of an interview recording:
// the quality gate, the registered modality plugins and the score fusion.
package analysis

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Intervyou-site/intervyou/domain/entities"
	"github.com/Intervyou-site/intervyou/domain/repositories"
	"github.com/Intervyou-site/intervyou/internal/textanalysis"
)

// Analyzer is built once from the available backends and is safe for
// concurrent use; every call works on its own decoders.
type Analyzer struct {
	validator   *Validator
	plugins     []Plugin
	frames      repositories.FrameSource
	audio       repositories.AudioExtractor
	parallelism int
	logger      *zap.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithPlugins registers modality plugins in result order.
func WithPlugins(plugins ...Plugin) Option {
	return func(a *Analyzer) {
		a.plugins = append(a.plugins, plugins...)
	}
}

// WithParallelism bounds how many plugins extract at once.
func WithParallelism(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.parallelism = n
		}
	}
}

func NewAnalyzer(validator *Validator, frames repositories.FrameSource, audio repositories.AudioExtractor, logger *zap.Logger, opts ...Option) *Analyzer {
	a := &Analyzer{
		validator:   validator,
		frames:      frames,
		audio:       audio,
		parallelism: runtime.NumCPU(),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Modalities returns the names of the registered plugins
func (a *Analyzer) Modalities() []string {
	names := make([]string, len(a.plugins))
	for i, p := range a.plugins {
		names[i] = p.Name()
	}
	return names
}

// Observer is told about every pipeline state the run enters.
type Observer func(state entities.PipelineState)

// RunOptions holds the settings of a single Analyze call.
type RunOptions struct {
	Observe Observer
}

// RunOption configures a single Analyze call.
type RunOption func(*RunOptions)

// WithObserver reports state transitions of the run.
func WithObserver(fn Observer) RunOption {
	return func(o *RunOptions) { o.Observe = fn }
}

// BuildRunOptions applies opts over the defaults
func BuildRunOptions(opts ...RunOption) RunOptions {
	ro := RunOptions{Observe: func(entities.PipelineState) {}}
	for _, opt := range opts {
		opt(&ro)
	}
	if ro.Observe == nil {
		ro.Observe = func(entities.PipelineState) {}
	}
	return ro
}

// Validate runs only the quality gate.
func (a *Analyzer) Validate(ctx context.Context, path string) (entities.QualityReport, error) {
	report, _, err := a.validator.Validate(ctx, path)
	return report, err
}

// Analyze runs the full pipeline. It fails only for unreadable input or a
// cancelled context; an unanalyzable recording yields a low-score result.
func (a *Analyzer) Analyze(ctx context.Context, path, transcript string, opts ...RunOption) (*entities.AnalysisResult, error) {
	ro := BuildRunOptions(opts...)
	start := time.Now()

	ro.Observe(entities.StateValidating)
	report, asset, err := a.validator.Validate(ctx, path)
	result := &entities.AnalysisResult{
		Video:           asset,
		Quality:         report,
		Recommendations: []string{},
		Timeline:        []entities.TimelineEntry{},
		Modalities:      map[string]entities.ModalityStatus{},
		AnalyzedAt:      time.Now().UTC(),
	}
	if err != nil {
		result.Error = err.Error()
		return result, err
	}

	if !report.IsValid {
		ro.Observe(entities.StateInvalid)
		result.ConfidenceScore = report.SuggestedScore
		result.Professionalism = report.SuggestedScore
		result.Engagement = report.SuggestedScore
		result.Recommendations = append(result.Recommendations, report.Recommendations...)
		a.logger.Info("Recording failed the quality gate",
			zap.String("path", path),
			zap.Strings("issues", report.Issues),
			zap.Float64("suggestedScore", report.SuggestedScore))
		return result, nil
	}

	ro.Observe(entities.StateExtracting)
	if err := a.extract(ctx, NewSource(asset, transcript, a.frames, a.audio, a.logger), result); err != nil {
		return nil, err
	}

	ro.Observe(entities.StateFusing)
	a.analyzeSentiment(result, transcript)
	Fuse(result)
	result.Recommendations = Recommend(result)
	result.Timeline = MergeTimeline(result)
	result.AnalyzedAt = time.Now().UTC()

	ro.Observe(entities.StateDone)
	a.logger.Info("Analysis completed",
		zap.String("path", path),
		zap.Float64("confidence", result.ConfidenceScore),
		zap.Float64("professionalism", result.Professionalism),
		zap.Float64("engagement", result.Engagement),
		zap.Float64("authenticity", result.Authenticity),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

// extract runs every plugin against its own decoders and merges the partials
// in registry order. A failing plugin only loses its own modality.
func (a *Analyzer) extract(ctx context.Context, src *Source, result *entities.AnalysisResult) error {
	partials := make([]Partial, len(a.plugins))
	errs := make([]error, len(a.plugins))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.parallelism)
	for i, p := range a.plugins {
		g.Go(func() error {
			partial, err := p.Extract(gctx, src)
			if err != nil {
				errs[i] = err
				return nil
			}
			partials[i] = partial
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("analysis cancelled: %w", err)
	}

	for i, p := range a.plugins {
		status := statusOf(errs[i])
		result.Modalities[p.Name()] = status
		if errs[i] != nil {
			a.logger.Warn("Modality not measured",
				zap.String("modality", p.Name()),
				zap.String("kind", status.ErrorKind),
				zap.Error(errs[i]))
			continue
		}
		partials[i].apply(result)
	}
	for _, name := range VideoModalities {
		if _, ok := result.Modalities[name]; !ok {
			result.Modalities[name] = statusOf(fmt.Errorf("%s: %w", name, ErrModalityUnavailable))
		}
	}
	return nil
}

// analyzeSentiment scores the supplied transcript, or the recognized one when
// the voice plugin produced it.
func (a *Analyzer) analyzeSentiment(result *entities.AnalysisResult, transcript string) {
	if transcript == "" && result.Voice != nil {
		transcript = result.Voice.Transcription
	}
	if textanalysis.WordCount(transcript) == 0 {
		result.Modalities[entities.ModalitySentiment] = statusOf(fmt.Errorf("no transcript: %w", ErrNoSamples))
		return
	}
	s := textanalysis.Sentiment(transcript)
	result.Sentiment = &s
	result.Modalities[entities.ModalitySentiment] = statusOf(nil)
}
