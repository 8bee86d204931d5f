// Package realtime analyzes a live recording one frame at a time. A Session
// belongs to a single connection and is not safe for concurrent use.
package realtime

import (
	"context"
	"errors"
	"image"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	"github.com/Intervyou-site/intervyou/domain/entities"
	"github.com/Intervyou-site/intervyou/domain/repositories"
	"github.com/Intervyou-site/intervyou/internal/analysis"
	"github.com/Intervyou-site/intervyou/internal/config"
)

// Landmark indices used by the fast gaze estimate.
const (
	noseTip     = 1
	leftEyeOut  = 33
	rightEyeOut = 263
)

const (
	centeredNose  = 0.15
	levelEyes     = 0.05
	leftOfCenter  = 0.4
	rightOfCenter = 0.6
)

// Backends are the optional per-frame models. Any of them may be nil.
type Backends struct {
	Emotions  repositories.EmotionClassifier
	Landmarks repositories.LandmarkDetector
	Faces     repositories.FaceDetector
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces the wall clock used for streak alerts.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session keeps the rolling state of one live recording
type Session struct {
	id       string
	cfg      config.Realtime
	backends Backends
	now      func() time.Time
	logger   *zap.Logger

	frameCount int
	alertCount int

	eyeHistory       *history[float64]
	emotionHistory   *history[string]
	postureHistory   *history[float64]
	attentionHistory *history[float64]

	lookingAway     streak
	poorPosture     streak
	negativeEmotion streak
}

// NewSession creates a session with empty history
func NewSession(cfg config.Realtime, backends Backends, logger *zap.Logger, opts ...Option) *Session {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 100
	}
	if cfg.EyeContactWindow <= 0 || cfg.EyeContactWindow > cfg.HistorySize {
		cfg.EyeContactWindow = min(30, cfg.HistorySize)
	}
	if cfg.AssumedFPS <= 0 {
		cfg.AssumedFPS = 30
	}
	s := &Session{
		id:       uuid.New().String(),
		cfg:      cfg,
		backends: backends,
		now:      time.Now,
		logger:   logger,

		eyeHistory:       newHistory[float64](cfg.HistorySize),
		emotionHistory:   newHistory[string](cfg.HistorySize),
		postureHistory:   newHistory[float64](cfg.HistorySize),
		attentionHistory: newHistory[float64](cfg.HistorySize),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("sessionID", s.id))
	s.Reset()
	return s
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// FrameCount returns the number of frames analyzed since the last reset
func (s *Session) FrameCount() int {
	return s.frameCount
}

// Reset clears all state so the session can be reused
func (s *Session) Reset() {
	s.frameCount = 0
	s.alertCount = 0
	s.eyeHistory.clear()
	s.emotionHistory.clear()
	s.postureHistory.clear()
	s.attentionHistory.clear()
	s.lookingAway = streak{}
	s.poorPosture = streak{}
	s.negativeEmotion = streak{}
}

// Analyze measures one frame, updates the histories and raises alerts.
// Backend failures degrade the frame's metrics instead of failing it.
func (s *Session) Analyze(ctx context.Context, img image.Image) (*FrameAnalysis, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, errors.New("empty frame")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.frameCount++
	now := s.now()
	result := &FrameAnalysis{
		Timestamp:   now.UTC(),
		FrameNumber: s.frameCount,
		Alerts:      []Alert{},
	}

	result.Metrics.Emotion = s.measureEmotion(ctx, img)
	s.emotionHistory.push(result.Metrics.Emotion.Dominant)
	negative := entities.IsNegativeEmotion(result.Metrics.Emotion.Dominant)
	if s.negativeEmotion.observe(negative, now, s.cfg.NegativeEmotion) {
		result.Alerts = append(result.Alerts, Alert{AlertNegativeEmotion, SeverityWarning, "Take a breath and relax your expression"})
	}

	if s.backends.Landmarks != nil {
		gaze := s.measureGaze(ctx, img)
		result.Metrics.Gaze = &gaze
		s.eyeHistory.push(boolValue(gaze.EyeContact))
		s.attentionHistory.push(boolValue(gaze.Direction == entities.GazeCenter))

		if s.eyeHistory.len() >= s.cfg.EyeContactWindow {
			recent := mean(s.eyeHistory.last(s.cfg.EyeContactWindow))
			if recent < s.cfg.EyeContactMinimum {
				result.Alerts = append(result.Alerts, Alert{AlertEyeContact, SeverityWarning, "Look at the camera more often"})
			}
		}
		if s.lookingAway.observe(!gaze.EyeContact, now, s.cfg.LookingAway) {
			result.Alerts = append(result.Alerts, Alert{AlertLookingAway, SeverityWarning, "You have been looking away for a while"})
		}
	}

	if s.backends.Faces != nil {
		posture := s.measurePosture(ctx, img)
		result.Metrics.Posture = &posture
		s.postureHistory.push(boolValue(posture.GoodPosture))
		if s.poorPosture.observe(!posture.GoodPosture, now, s.cfg.PoorPosture) {
			result.Alerts = append(result.Alerts, Alert{AlertPoorPosture, SeverityWarning, "Sit up straight and stay centered in frame"})
		}
	}

	result.Feedback = feedback(result.Metrics)
	s.alertCount += len(result.Alerts)
	return result, nil
}

// End summarizes the session from its rolling histories
func (s *Session) End() Summary {
	summary := Summary{
		SessionID:           s.id,
		TotalFrames:         s.frameCount,
		DurationSeconds:     round2(float64(s.frameCount) / s.cfg.AssumedFPS),
		AverageMetrics:      map[string]float64{},
		EmotionDistribution: map[string]float64{},
		AlertCount:          s.alertCount,
	}
	if s.eyeHistory.len() > 0 {
		summary.AverageMetrics["eye_contact_percentage"] = round2(mean(s.eyeHistory.values) * 100)
	}
	if s.postureHistory.len() > 0 {
		summary.AverageMetrics["posture_percentage"] = round2(mean(s.postureHistory.values) * 100)
	}
	if s.attentionHistory.len() > 0 {
		summary.AverageMetrics["attention_percentage"] = round2(mean(s.attentionHistory.values) * 100)
	}
	if n := s.emotionHistory.len(); n > 0 {
		counts := make(map[string]int)
		for _, label := range s.emotionHistory.values {
			counts[label]++
		}
		for label, c := range counts {
			summary.EmotionDistribution[label] = round2(float64(c) / float64(n) * 100)
		}
	}
	s.logger.Info("Realtime session ended",
		zap.Int("frames", summary.TotalFrames),
		zap.Int("alerts", summary.AlertCount))
	return summary
}

func (s *Session) measureEmotion(ctx context.Context, img image.Image) EmotionReading {
	reading := EmotionReading{Dominant: entities.EmotionNeutral}
	if s.backends.Emotions == nil {
		return reading
	}
	scores, err := s.backends.Emotions.ClassifyEmotion(ctx, img)
	if err != nil {
		if !errors.Is(err, repositories.ErrNoFace) {
			s.logger.Debug("Emotion classification failed", zap.Error(err))
		}
		return reading
	}
	if len(scores) == 0 {
		return reading
	}
	rounded := make(entities.EmotionDistribution, len(scores))
	for label, v := range scores {
		rounded[label] = round2(v)
	}
	label, score := scores.Dominant()
	reading.Dominant = label
	reading.Confidence = round2(score)
	reading.Scores = rounded
	return reading
}

func (s *Session) measureGaze(ctx context.Context, img image.Image) GazeReading {
	reading := GazeReading{Direction: "unknown"}
	lm, err := s.backends.Landmarks.DetectLandmarks(ctx, img)
	if err != nil {
		if !errors.Is(err, repositories.ErrNoFace) {
			s.logger.Debug("Face mesh failed", zap.Error(err))
		}
		return reading
	}
	if !lm.Has(noseTip) || !lm.Has(leftEyeOut) || !lm.Has(rightEyeOut) {
		return reading
	}
	return EstimateGaze(lm)
}

// EstimateGaze judges eye contact from the nose position and eye level of
// normalized face-mesh landmarks
func EstimateGaze(lm *entities.FaceLandmarks) GazeReading {
	nose := lm.Points[noseTip]
	left, right := lm.Points[leftEyeOut], lm.Points[rightEyeOut]

	centered := math.Abs(nose.X-0.5) < centeredNose
	level := math.Abs(left.Y-right.Y) < levelEyes

	reading := GazeReading{EyeContact: centered && level, Confidence: 0.3, Direction: entities.GazeCenter}
	if reading.EyeContact {
		reading.Confidence = 0.8
	}
	switch {
	case nose.X < leftOfCenter:
		reading.Direction = entities.GazeLeft
	case nose.X > rightOfCenter:
		reading.Direction = entities.GazeRight
	}
	return reading
}

func (s *Session) measurePosture(ctx context.Context, img image.Image) PostureReading {
	reading := PostureReading{GoodPosture: true, FaceVisible: true, Centered: true}
	faces, err := s.backends.Faces.DetectFaces(ctx, img)
	if err != nil {
		s.logger.Debug("Face detection failed", zap.Error(err))
		return reading
	}
	if len(faces) == 0 {
		return PostureReading{}
	}
	reading.Centered = analysis.IsCentered(faces[0], float64(img.Bounds().Dx()))
	reading.GoodPosture = reading.Centered
	return reading
}

func feedback(m Metrics) Feedback {
	fb := Feedback{Primary: "Keep going!", Tips: []string{}}

	switch {
	case entities.IsNegativeEmotion(m.Emotion.Dominant):
		fb.Tips = append(fb.Tips, "Try to relax and smile")
	case m.Emotion.Dominant == entities.EmotionHappy:
		fb.Primary = "Great energy!"
	}
	if m.Gaze != nil && !m.Gaze.EyeContact {
		fb.Tips = append(fb.Tips, "Look at the camera")
	}
	if m.Posture != nil {
		if !m.Posture.FaceVisible {
			fb.Tips = append(fb.Tips, "Ensure your face is visible")
		} else if !m.Posture.Centered {
			fb.Tips = append(fb.Tips, "Center yourself in frame")
		}
	}
	if len(fb.Tips) > 2 {
		fb.Tips = fb.Tips[:2]
	}
	return fb
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func mean(values []float64) float64 {
	m, err := stats.Mean(values)
	if err != nil {
		return 0
	}
	return m
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
