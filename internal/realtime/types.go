package realtime

import (
	"time"

	"github.com/Intervyou-site/intervyou/domain/entities"
)

// Alert types.
const (
	AlertEyeContact      = "eye_contact"
	AlertLookingAway     = "looking_away"
	AlertPoorPosture     = "poor_posture"
	AlertNegativeEmotion = "negative_emotion"
)

// SeverityWarning is the only severity the session raises.
const SeverityWarning = "warning"

// EmotionReading is the fast per-frame emotion estimate.
type EmotionReading struct {
	Dominant   string                       `json:"dominant"`
	Confidence float64                      `json:"confidence"`
	Scores     entities.EmotionDistribution `json:"all_scores,omitempty"`
}

// GazeReading is the nose-and-eyes eye contact estimate.
type GazeReading struct {
	EyeContact bool    `json:"eye_contact"`
	Direction  string  `json:"direction"`
	Confidence float64 `json:"confidence"`
}

// PostureReading uses the detected face as a posture proxy.
type PostureReading struct {
	GoodPosture bool `json:"good_posture"`
	FaceVisible bool `json:"face_visible"`
	Centered    bool `json:"centered"`
}

// Metrics holds what was measured on one frame. Gaze and Posture are nil
// when the session has no backend for them.
type Metrics struct {
	Emotion EmotionReading  `json:"emotion"`
	Gaze    *GazeReading    `json:"gaze,omitempty"`
	Posture *PostureReading `json:"posture,omitempty"`
}

// Alert is a threshold warning raised while recording.
type Alert struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Feedback is the short coaching text shown next to the preview.
type Feedback struct {
	Primary string   `json:"primary"`
	Tips    []string `json:"tips"`
}

// FrameAnalysis is the response to one frame.
type FrameAnalysis struct {
	Timestamp   time.Time `json:"timestamp"`
	FrameNumber int       `json:"frame_number"`
	Metrics     Metrics   `json:"metrics"`
	Alerts      []Alert   `json:"alerts"`
	Feedback    Feedback  `json:"feedback"`
}

// Summary is computed from the rolling histories when the session ends.
type Summary struct {
	SessionID           string             `json:"session_id"`
	TotalFrames         int                `json:"total_frames"`
	DurationSeconds     float64            `json:"duration_seconds"`
	AverageMetrics      map[string]float64 `json:"average_metrics"`
	EmotionDistribution map[string]float64 `json:"emotion_distribution"`
	AlertCount          int                `json:"alert_count"`
}
