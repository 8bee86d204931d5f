package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"go.uber.org/zap"

	"github.com/Intervyou-site/intervyou/domain/entities"
	"github.com/Intervyou-site/intervyou/domain/repositories"
	"github.com/Intervyou-site/intervyou/internal/config"
	"github.com/Intervyou-site/intervyou/internal/dsp"
)

// defaultFPS is assumed when the container reports no frame rate.
const defaultFPS = 30.0

const (
	recommendLonger       = "Record a longer video - at least 10 seconds needed for meaningful analysis"
	recommendAnswerLength = "A good interview answer typically takes 30-90 seconds"
	recommendFaceVisible  = "Ensure your face is clearly visible in the camera frame"
	recommendLighting     = "Position yourself in good lighting facing the camera"
	recommendMicrophone   = "Speak clearly and ensure your microphone is working"
	recommendVolume       = "Check audio settings and speak at normal volume"
	recommendRecordAgain  = "Please record again with proper setup for accurate analysis"
)

// Validator is the quality gate run before any deep analysis.
type Validator struct {
	prober   repositories.MediaProber
	frames   repositories.FrameSource
	audio    repositories.AudioExtractor
	detector repositories.FaceDetector
	cfg      config.Quality
	logger   *zap.Logger
}

// NewValidator builds a quality gate. detector may be nil, in which case the
// face rule is skipped and the report says so.
func NewValidator(prober repositories.MediaProber, frames repositories.FrameSource, audio repositories.AudioExtractor, detector repositories.FaceDetector, cfg config.Quality, logger *zap.Logger) *Validator {
	return &Validator{
		prober:   prober,
		frames:   frames,
		audio:    audio,
		detector: detector,
		cfg:      cfg,
		logger:   logger,
	}
}

// Validate probes and samples the recording. The error is non-nil only for
// unreadable input, in which case the report is invalid with a zero score.
func (v *Validator) Validate(ctx context.Context, path string) (entities.QualityReport, entities.VideoAsset, error) {
	report := entities.QualityReport{
		IsValid:         true,
		Issues:          []string{},
		Recommendations: []string{},
	}

	asset, err := v.prober.Probe(ctx, path)
	if err != nil {
		v.logger.Error("Failed to open video", zap.String("path", path), zap.Error(err))
		report.IsValid = false
		report.Issues = append(report.Issues, fmt.Sprintf("Error validating video: %v", err))
		return report, asset, fmt.Errorf("probe %s: %w: %v", path, ErrUnreadableInput, err)
	}
	if asset.FPS <= 0 {
		asset.FPS = defaultFPS
	}
	if asset.FrameCount > 0 {
		asset.Duration = float64(asset.FrameCount) / asset.FPS
	}

	report.Duration = round(asset.Duration, 2)
	report.FPS = asset.FPS

	if v.detector != nil {
		ratio, err := v.faceRatio(ctx, asset)
		if err != nil {
			report.IsValid = false
			report.Issues = append(report.Issues, fmt.Sprintf("Error validating video: %v", err))
			return report, asset, fmt.Errorf("sample frames: %w: %v", ErrUnreadableInput, err)
		}
		report.FaceDetectionRatio = round(ratio, 2)
	} else {
		report.FaceCheckSkipped = true
	}

	report.AudioEnergy = v.audioEnergy(ctx, asset)
	report.HasAudio = report.AudioEnergy > v.cfg.MinAudioEnergy

	v.applyRules(&report)
	return report, asset, nil
}

func (v *Validator) faceRatio(ctx context.Context, asset entities.VideoAsset) (float64, error) {
	stride := max(1, int(asset.FPS))
	it, err := v.frames.Frames(ctx, asset, stride)
	if err != nil {
		return 0, err
	}
	defer it.Close()

	var checked, found int
	for {
		frame, err := it.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				v.logger.Warn("Face check stopped early", zap.Int("framesChecked", checked), zap.Error(err))
			}
			break
		}
		checked++
		faces, err := v.detector.DetectFaces(ctx, frame.Image)
		if err == nil && len(faces) > 0 {
			found++
		}
	}
	if checked == 0 {
		return 0, nil
	}
	return float64(found) / float64(checked), nil
}

func (v *Validator) audioEnergy(ctx context.Context, asset entities.VideoAsset) float64 {
	if !asset.HasAudio || v.audio == nil {
		return 0
	}
	wave, err := v.audio.ExtractAudio(ctx, asset, math.Min(asset.Duration, v.cfg.AudioProbeSeconds))
	if err != nil {
		v.logger.Warn("Audio probe failed", zap.String("path", asset.Path), zap.Error(err))
		return 0
	}
	return round(mean(dsp.FrameRMS(wave.Samples, dsp.FrameLength, dsp.HopLength)), 4)
}

// applyRules evaluates the independent quality rules and the suggested score.
func (v *Validator) applyRules(r *entities.QualityReport) {
	invalidate := func(issue string, recs ...string) {
		r.IsValid = false
		r.Issues = append(r.Issues, issue)
		r.Recommendations = append(r.Recommendations, recs...)
	}

	if r.Duration < v.cfg.MinDuration {
		invalidate(fmt.Sprintf("Video too short: %.1fs (minimum %gs required)", r.Duration, v.cfg.MinDuration),
			recommendLonger, recommendAnswerLength)
		r.SuggestedScore = math.Min(3.0, r.Duration/v.cfg.MinDuration*3.0)
	}
	if !r.FaceCheckSkipped && r.FaceDetectionRatio < v.cfg.MinFaceRatio {
		invalidate(fmt.Sprintf("Face not detected in most frames: %.0f%%", r.FaceDetectionRatio*100),
			recommendFaceVisible, recommendLighting)
		r.SuggestedScore = math.Max(r.SuggestedScore, 2.0)
	}
	if !r.HasAudio || r.AudioEnergy < v.cfg.MinAudioEnergy {
		invalidate("No speech detected or audio too quiet", recommendMicrophone, recommendVolume)
		r.SuggestedScore = math.Max(r.SuggestedScore, 2.0)
	}
	if len(r.Issues) >= 2 {
		r.SuggestedScore = math.Min(r.SuggestedScore, 2.5)
	}
	if !r.IsValid {
		r.Recommendations = append(r.Recommendations, recommendRecordAgain)
	}
	r.SuggestedScore = round(r.SuggestedScore, 2)
}
