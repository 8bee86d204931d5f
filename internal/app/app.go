// Package app builds the analysis backends from configuration. The CLI and
// the HTTP server share it so both run the same pipeline.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Intervyou-site/intervyou/adapters/ffmpeg"
	"github.com/Intervyou-site/intervyou/adapters/memory"
	"github.com/Intervyou-site/intervyou/adapters/mongo"
	"github.com/Intervyou-site/intervyou/adapters/stt"
	"github.com/Intervyou-site/intervyou/adapters/vision"
	"github.com/Intervyou-site/intervyou/domain/repositories"
	"github.com/Intervyou-site/intervyou/internal/analysis"
	"github.com/Intervyou-site/intervyou/internal/auth"
	"github.com/Intervyou-site/intervyou/internal/config"
	"github.com/Intervyou-site/intervyou/internal/realtime"
)

const tokenTTL = 24 * time.Hour

// Backends are the per-frame and audio models available to the pipeline.
// A nil field means the capability is not configured.
type Backends struct {
	Faces         repositories.FaceDetector
	Landmarks     repositories.LandmarkDetector
	Emotions      repositories.EmotionClassifier
	MicroEmotions repositories.EmotionClassifier
	STT           repositories.SpeechToText
}

// App holds everything built from one configuration
type App struct {
	Config   *config.Config
	Media    *ffmpeg.Runner
	Backends Backends
	Analyzer *analysis.Analyzer

	logger  *zap.Logger
	closers []func(context.Context) error
}

// New connects the configured backends and assembles the analyzer
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Media:  ffmpeg.NewRunner(cfg.Media, logger),
		logger: logger,
	}
	if err := a.Media.Available(); err != nil {
		logger.Warn("ffmpeg is not available; every recording will be rejected as unreadable", zap.Error(err))
	}

	backends, err := a.buildBackends(ctx)
	if err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}
	a.Backends = backends

	plugins := BuildPlugins(cfg.Sampling, cfg.Speech, backends, logger)
	validator := analysis.NewValidator(a.Media, a.Media, a.Media, backends.Faces, cfg.Quality, logger)
	a.Analyzer = analysis.NewAnalyzer(validator, a.Media, a.Media, logger, analysis.WithPlugins(plugins...))

	logger.Info("Analysis pipeline ready", zap.Strings("modalities", a.Analyzer.Modalities()))
	return a, nil
}

func (a *App) buildBackends(ctx context.Context) (Backends, error) {
	cfg := a.Config
	var b Backends

	if cfg.Vision.CascadePath != "" {
		detector, err := vision.LoadPigoDetector(cfg.Vision, a.logger)
		if err != nil {
			return b, fmt.Errorf("face detector: %w", err)
		}
		b.Faces = detector
	} else {
		a.logger.Warn("No face cascade configured; face detection is disabled")
	}

	if cfg.Services.FaceMesh.URL != "" {
		b.Landmarks = vision.NewFaceMeshClient(cfg.Services.FaceMesh)
	}

	switch {
	case cfg.Services.Emotion.URL != "":
		b.Emotions = vision.NewEmotionClient(cfg.Services.Emotion)
	case cfg.Gemini.APIKey != "":
		gemini, err := vision.NewGeminiEmotion(ctx, cfg.Gemini, a.logger)
		if err != nil {
			return b, fmt.Errorf("gemini emotion: %w", err)
		}
		b.Emotions = gemini
	}
	b.MicroEmotions = b.Emotions
	if cfg.Services.MicroEmotion.URL != "" {
		b.MicroEmotions = vision.NewEmotionClient(cfg.Services.MicroEmotion)
	}

	switch cfg.Speech.Provider {
	case "google":
		google, err := stt.NewGoogleSpeechToText(ctx, a.logger)
		if err != nil {
			return b, fmt.Errorf("speech to text: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return google.Close() })
		b.STT = google
	case "mock":
		b.STT = stt.NewMockSpeechToText(a.logger)
	}
	return b, nil
}

// BuildPlugins registers a plugin for every modality whose backend exists
func BuildPlugins(sampling config.Sampling, speech config.Speech, b Backends, logger *zap.Logger) []analysis.Plugin {
	var plugins []analysis.Plugin
	if b.Emotions != nil {
		plugins = append(plugins, analysis.NewEmotionPlugin(b.Emotions, sampling.Emotion, logger))
	}
	if b.Faces != nil {
		plugins = append(plugins, analysis.NewFacialPlugin(b.Faces, b.Emotions, sampling.Facial, logger))
	}
	if b.Landmarks != nil {
		plugins = append(plugins,
			analysis.NewGazePlugin(b.Landmarks, sampling.Gaze, logger),
			analysis.NewAttentionPlugin(b.Landmarks, sampling.HeadPose, logger))
	}
	plugins = append(plugins, analysis.NewBodyPlugin(sampling.Body, logger))
	if b.MicroEmotions != nil {
		plugins = append(plugins, analysis.NewMicroPlugin(b.MicroEmotions, sampling.Micro, logger))
	}
	plugins = append(plugins, analysis.NewVoicePlugin(b.STT, speech.Language, logger))
	return plugins
}

// NewRealtimeSession creates a live session over the same backends
func (a *App) NewRealtimeSession() *realtime.Session {
	return realtime.NewSession(a.Config.Realtime, realtime.Backends{
		Emotions:  a.Backends.Emotions,
		Landmarks: a.Backends.Landmarks,
		Faces:     a.Backends.Faces,
	}, a.logger)
}

// JobRepository returns the Mongo repository when configured, memory otherwise
func (a *App) JobRepository(ctx context.Context) (repositories.JobRepository, error) {
	if a.Config.Mongo.URI == "" {
		a.logger.Info("No MongoDB configured; keeping analyses in memory")
		return memory.NewJobRepository(), nil
	}

	client, err := mongo.NewClient(ctx, a.Config.Mongo, a.logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Close)

	repo := mongo.NewJobRepository(client.Database, a.logger)
	if err := repo.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

// TokenIssuer returns nil when websocket auth is disabled
func (a *App) TokenIssuer() (*auth.TokenIssuer, error) {
	if !a.Config.Server.RequireAuth {
		return nil, nil
	}
	return auth.NewTokenIssuer(a.Config.Server.JWTSecret, tokenTTL)
}

// Close releases backend connections
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
