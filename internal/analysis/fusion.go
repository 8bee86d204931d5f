package analysis

import (
	"sort"

	"github.com/Intervyou-site/intervyou/domain/entities"
)

// Normalized metric names shared by the weight tables.
const (
	MetricEmotionPositivity = "emotion_positivity"
	MetricEmotionEngagement = "emotion_engagement"
	MetricEyeContact        = "eye_contact"
	MetricGazeStability     = "gaze_stability"
	MetricFaceDetection     = "face_detection"
	MetricSmileFrequency    = "smile_frequency"
	MetricPosture           = "posture"
	MetricMovementStability = "movement_stability"
	MetricMovementLevel     = "movement_level"
	MetricGestures          = "gestures"
	MetricVoiceClarity      = "voice_clarity"
	MetricSpeechRateBand    = "speech_rate_band"
	MetricFocus             = "focus"
	MetricLowDistraction    = "low_distraction"
)

// WeightTable holds the relative weight of each metric in a composite score.
type WeightTable map[string]float64

// Composite weight tables. Weights are relative; each score is renormalized
// over the metrics that were measured.
var (
	ConfidenceWeights = WeightTable{
		MetricEmotionPositivity: 3.5,
		MetricEyeContact:        2.5,
		MetricPosture:           1.5,
		MetricMovementStability: 0.5,
		MetricVoiceClarity:      1.5,
		MetricSpeechRateBand:    0.5,
	}
	ProfessionalismWeights = WeightTable{
		MetricEyeContact:        3.5,
		MetricGazeStability:     1.5,
		MetricFaceDetection:     2.0,
		MetricPosture:           2.0,
		MetricMovementStability: 1.0,
	}
	EngagementWeights = WeightTable{
		MetricEmotionEngagement: 3.5,
		MetricSmileFrequency:    2.0,
		MetricFocus:             2.0,
		MetricLowDistraction:    0.5,
		MetricMovementLevel:     1.0,
		MetricGestures:          1.0,
	}
)

// Authenticity is additive around a neutral base rather than a weighted mean.
const (
	authenticityBase         = 5.0
	authenticityMicroNatural = 2.0
	authenticityMicroHigh    = 1.0
	authenticityMicroLow     = -1.0
	authenticityPitch        = 1.5
	authenticityClarity      = 1.5
)

// Measurements are the normalized [0,1] metrics of the measured modalities.
// A metric absent from the map was not measured.
type Measurements map[string]float64

// Measure extracts the fusion inputs from a result.
func Measure(r *entities.AnalysisResult) Measurements {
	m := Measurements{}

	if e := r.Emotion; e != nil {
		happy := e.Average(entities.EmotionHappy)
		m[MetricEmotionPositivity] = clamp(happy-e.Average(entities.EmotionFear)-0.75*e.Average(entities.EmotionSad), 0, 1)
		m[MetricEmotionEngagement] = clamp(happy+e.Average(entities.EmotionSurprise), 0, 1)
	}

	if f := r.Facial; f != nil {
		m[MetricFaceDetection] = f.FaceDetectedRatio
		m[MetricEyeContact] = f.EyeContact
		if f.SmileFrequency != nil {
			m[MetricSmileFrequency] = *f.SmileFrequency
		}
	}
	if g := r.EyeTracking; g != nil {
		m[MetricEyeContact] = g.EyeContactPercentage / 100
		m[MetricGazeStability] = g.GazeStability
	}

	if b := r.BodyMovement; b != nil {
		m[MetricPosture] = b.PostureScore
		m[MetricMovementStability] = b.Stability
		m[MetricMovementLevel] = movementLevelScore(b.MovementLevel)
		m[MetricGestures] = min(float64(b.GesturesDetected)*0.2, 1)
	}

	if v := r.Voice; v.HasTranscript() {
		m[MetricVoiceClarity] = v.ClarityScore
		if v.SpeechRate > 0 {
			m[MetricSpeechRateBand] = speechRateScore(v.SpeechRate)
		}
	}

	if a := r.Attention; a != nil {
		m[MetricFocus] = a.FocusPercentage / 100
		m[MetricLowDistraction] = distractionScore(a.DistractionCount)
	}
	return m
}

func movementLevelScore(level string) float64 {
	switch level {
	case entities.MovementModerate:
		return 1
	case entities.MovementActive:
		return 0.7
	default:
		return 0.3
	}
}

func speechRateScore(wpm float64) float64 {
	switch {
	case wpm >= 120 && wpm <= 160:
		return 1
	case wpm >= 100 && wpm <= 180:
		return 0.6
	default:
		return 0
	}
}

func distractionScore(count int) float64 {
	switch {
	case count < 3:
		return 1
	case count < 7:
		return 0.5
	default:
		return 0
	}
}

// Composite returns Σ(w·m)/Σw over the measured metrics, scaled to [0,10].
// Zero when no weighted metric was measured.
func (t WeightTable) Composite(m Measurements) float64 {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var num, den float64
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		num += t[k] * v
		den += t[k]
	}
	if den == 0 {
		return 0
	}
	return round(clamp(num/den*10, 0, 10), 2)
}

// Authenticity scores expression and voice naturalness of a result.
func Authenticity(r *entities.AnalysisResult) float64 {
	score := authenticityBase
	if mx := r.MicroExpressions; mx != nil {
		switch c := mx.DetectedCount; {
		case c >= 5 && c <= 20:
			score += authenticityMicroNatural
		case c > 20:
			score += authenticityMicroHigh
		default:
			score += authenticityMicroLow
		}
	}
	if v := r.Voice; v != nil {
		if v.Pitch.Std > 20 && v.Pitch.Std < 80 {
			score += authenticityPitch
		}
		if v.HasTranscript() {
			score += v.ClarityScore * authenticityClarity
		}
	}
	return round(clamp(score, 0, 10), 2)
}

// Fuse fills the four composite scores of a valid result.
func Fuse(r *entities.AnalysisResult) {
	m := Measure(r)
	r.ConfidenceScore = ConfidenceWeights.Composite(m)
	r.Professionalism = ProfessionalismWeights.Composite(m)
	r.Engagement = EngagementWeights.Composite(m)
	r.Authenticity = Authenticity(r)
}
