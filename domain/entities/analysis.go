package entities

import "time"

// QualityReport is the outcome of the quality gate.
type QualityReport struct {
	IsValid            bool     `json:"is_valid" bson:"is_valid"`
	Duration           float64  `json:"duration" bson:"duration"`
	FPS                float64  `json:"fps" bson:"fps"`
	FaceDetectionRatio float64  `json:"face_detection_ratio" bson:"face_detection_ratio"`
	FaceCheckSkipped   bool     `json:"face_check_skipped,omitempty" bson:"face_check_skipped,omitempty"`
	HasAudio           bool     `json:"has_audio" bson:"has_audio"`
	AudioEnergy        float64  `json:"audio_energy" bson:"audio_energy"`
	Issues             []string `json:"issues" bson:"issues"`
	Recommendations    []string `json:"recommendations" bson:"recommendations"`
	SuggestedScore     float64  `json:"suggested_score" bson:"suggested_score"`
}

// EmotionStat aggregates one emotion label over the sampled frames.
type EmotionStat struct {
	Average float64 `json:"average" bson:"average"`
	Max     float64 `json:"max" bson:"max"`
	Min     float64 `json:"min" bson:"min"`
}

// EmotionSample is one classified frame.
type EmotionSample struct {
	Timestamp float64             `json:"timestamp" bson:"timestamp"`
	Emotions  EmotionDistribution `json:"emotions" bson:"emotions"`
}

// EmotionSummary aggregates the facial emotion modality.
type EmotionSummary struct {
	Emotions        map[string]EmotionStat `json:"emotions" bson:"emotions"`
	DominantEmotion string                 `json:"dominant_emotion" bson:"dominant_emotion"`
	SampleCount     int                    `json:"sample_count" bson:"sample_count"`
	Timeline        []EmotionSample        `json:"timeline" bson:"timeline"`
}

// Average returns the mean score of label, zero when absent
func (s *EmotionSummary) Average(label string) float64 {
	if s == nil {
		return 0
	}
	return s.Emotions[label].Average
}

// Gaze directions.
const (
	GazeCenter = "center"
	GazeLeft   = "left"
	GazeRight  = "right"
	GazeUp     = "up"
	GazeDown   = "down"
)

// GazeDirections lists every gaze direction in reporting order.
var GazeDirections = []string{GazeCenter, GazeLeft, GazeRight, GazeUp, GazeDown}

// GazeSample is one analyzed eye-tracking frame.
type GazeSample struct {
	Timestamp float64 `json:"timestamp" bson:"timestamp"`
	Direction string  `json:"direction" bson:"direction"`
	XOffset   float64 `json:"x_offset" bson:"x_offset"`
	YOffset   float64 `json:"y_offset" bson:"y_offset"`
	Blink     bool    `json:"blink_detected" bson:"blink_detected"`
}

// EyeTrackingSummary aggregates the gaze modality.
type EyeTrackingSummary struct {
	GazeDirection        map[string]float64 `json:"gaze_direction" bson:"gaze_direction"`
	BlinkRate            float64            `json:"blink_rate" bson:"blink_rate"`
	TotalBlinks          int                `json:"total_blinks" bson:"total_blinks"`
	EyeContactPercentage float64            `json:"eye_contact_percentage" bson:"eye_contact_percentage"`
	GazeStability        float64            `json:"gaze_stability" bson:"gaze_stability"`
	AttentionScore       float64            `json:"attention_score" bson:"attention_score"`
	FramesAnalyzed       int                `json:"frames_analyzed" bson:"frames_analyzed"`
	Timeline             []GazeSample       `json:"timeline" bson:"timeline"`
}

// HeadPoseSample is one analyzed head-pose frame.
type HeadPoseSample struct {
	Timestamp float64 `json:"timestamp" bson:"timestamp"`
	Yaw       float64 `json:"head_yaw" bson:"head_yaw"`
	Pitch     float64 `json:"head_pitch" bson:"head_pitch"`
	Roll      float64 `json:"head_roll" bson:"head_roll"`
	Focused   bool    `json:"focused" bson:"focused"`
}

// AttentionSummary aggregates the head-pose modality.
type AttentionSummary struct {
	FocusPercentage     float64          `json:"focus_percentage" bson:"focus_percentage"`
	DistractionCount    int              `json:"distraction_count" bson:"distraction_count"`
	HeadPoseStability   float64          `json:"head_pose_stability" bson:"head_pose_stability"`
	LookingAwayDuration float64          `json:"looking_away_duration" bson:"looking_away_duration"`
	FramesAnalyzed      int              `json:"frames_analyzed" bson:"frames_analyzed"`
	Timeline            []HeadPoseSample `json:"attention_timeline" bson:"attention_timeline"`
}

// Movement levels.
const (
	MovementMinimal  = "minimal"
	MovementModerate = "moderate"
	MovementActive   = "active"
)

// BodyMovementSummary aggregates the frame-differencing modality.
type BodyMovementSummary struct {
	MovementLevel    string  `json:"movement_level" bson:"movement_level"`
	AverageMovement  float64 `json:"average_movement" bson:"average_movement"`
	PostureScore     float64 `json:"posture_score" bson:"posture_score"`
	Stability        float64 `json:"stability" bson:"stability"`
	GesturesDetected int     `json:"gestures_detected" bson:"gestures_detected"`
}

// MicroExpressionSummary aggregates rapid dominant-emotion transitions.
type MicroExpressionSummary struct {
	DetectedCount          int            `json:"detected_count" bson:"detected_count"`
	Types                  map[string]int `json:"types" bson:"types"`
	AuthenticityIndicators []string       `json:"authenticity_indicators" bson:"authenticity_indicators"`
	FramesAnalyzed         int            `json:"frames_analyzed" bson:"frames_analyzed"`
}

// Energy levels.
const (
	EnergyLow      = "low"
	EnergyModerate = "moderate"
	EnergyHigh     = "high"
)

// PitchStats summarizes the fundamental frequency over voiced frames, in Hz.
type PitchStats struct {
	Mean  float64 `json:"mean" bson:"mean"`
	Std   float64 `json:"std" bson:"std"`
	Range float64 `json:"range" bson:"range"`
}

// VolumeStats summarizes frame RMS energy.
type VolumeStats struct {
	Mean float64 `json:"mean" bson:"mean"`
	Std  float64 `json:"std" bson:"std"`
}

// VoiceMetrics aggregates the audio modality.
type VoiceMetrics struct {
	Pitch                PitchStats     `json:"pitch" bson:"pitch"`
	Volume               VolumeStats    `json:"volume" bson:"volume"`
	EnergyLevel          string         `json:"energy_level" bson:"energy_level"`
	PauseCount           int            `json:"pause_count" bson:"pause_count"`
	AveragePauseDuration float64        `json:"average_pause_duration" bson:"average_pause_duration"`
	FillerWords          map[string]int `json:"filler_words" bson:"filler_words"`
	TotalFillerCount     int            `json:"total_filler_count" bson:"total_filler_count"`
	WordCount            int            `json:"word_count" bson:"word_count"`
	SpeechRate           float64        `json:"speech_rate" bson:"speech_rate"`
	ClarityScore         float64        `json:"clarity_score" bson:"clarity_score"`
	Transcription        string         `json:"transcription" bson:"transcription"`
	TranscriptSource     string         `json:"transcript_source,omitempty" bson:"transcript_source,omitempty"`
}

// HasTranscript reports whether filler, rate and clarity were measured from words
func (v *VoiceMetrics) HasTranscript() bool {
	return v != nil && v.WordCount > 0
}

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// SentimentResult is the lexical polarity of the transcript.
type SentimentResult struct {
	Polarity     float64 `json:"polarity" bson:"polarity"`
	Subjectivity float64 `json:"subjectivity" bson:"subjectivity"`
	Label        string  `json:"label" bson:"label"`
	Confidence   float64 `json:"confidence" bson:"confidence"`
}

// FacialSummary aggregates the coarse face-detector modality.
// SmileFrequency is nil when no emotion classifier was available.
type FacialSummary struct {
	FaceDetectedRatio float64  `json:"face_detected_ratio" bson:"face_detected_ratio"`
	EyeContact        float64  `json:"eye_contact" bson:"eye_contact"`
	SmileFrequency    *float64 `json:"smile_frequency,omitempty" bson:"smile_frequency,omitempty"`
	FramesAnalyzed    int      `json:"frames_analyzed" bson:"frames_analyzed"`
}

// TimelineEntry merges the per-modality timelines at one instant.
type TimelineEntry struct {
	Timestamp  float64             `json:"timestamp" bson:"timestamp"`
	Emotions   EmotionDistribution `json:"emotions,omitempty" bson:"emotions,omitempty"`
	Gaze       string              `json:"gaze,omitempty" bson:"gaze,omitempty"`
	EyeContact *bool               `json:"eye_contact,omitempty" bson:"eye_contact,omitempty"`
	Focused    *bool               `json:"focused,omitempty" bson:"focused,omitempty"`
}

// Modality names.
const (
	ModalityEmotion         = "emotion"
	ModalityFacial          = "facial"
	ModalityEyeTracking     = "eye_tracking"
	ModalityAttention       = "attention"
	ModalityBodyMovement    = "body_movement"
	ModalityMicroExpression = "micro_expressions"
	ModalityVoice           = "voice"
	ModalitySentiment       = "sentiment"
)

// ModalityStatus records whether a modality produced a measurement.
type ModalityStatus struct {
	Measured  bool   `json:"measured" bson:"measured"`
	ErrorKind string `json:"error_kind,omitempty" bson:"error_kind,omitempty"`
	Error     string `json:"error,omitempty" bson:"error,omitempty"`
}

// AnalysisResult is the full behavioral assessment of one recording.
// A nil summary means the modality was not measured.
type AnalysisResult struct {
	Video            VideoAsset                `json:"video" bson:"video"`
	Quality          QualityReport             `json:"quality" bson:"quality"`
	Emotion          *EmotionSummary           `json:"emotion_analysis,omitempty" bson:"emotion_analysis,omitempty"`
	Facial           *FacialSummary            `json:"facial_analysis,omitempty" bson:"facial_analysis,omitempty"`
	EyeTracking      *EyeTrackingSummary       `json:"eye_tracking,omitempty" bson:"eye_tracking,omitempty"`
	Attention        *AttentionSummary         `json:"attention_analysis,omitempty" bson:"attention_analysis,omitempty"`
	BodyMovement     *BodyMovementSummary      `json:"body_movement,omitempty" bson:"body_movement,omitempty"`
	MicroExpressions *MicroExpressionSummary   `json:"micro_expressions,omitempty" bson:"micro_expressions,omitempty"`
	Voice            *VoiceMetrics             `json:"voice_analysis,omitempty" bson:"voice_analysis,omitempty"`
	Sentiment        *SentimentResult          `json:"sentiment,omitempty" bson:"sentiment,omitempty"`
	ConfidenceScore  float64                   `json:"confidence_score" bson:"confidence_score"`
	Professionalism  float64                   `json:"professionalism_score" bson:"professionalism_score"`
	Engagement       float64                   `json:"engagement_score" bson:"engagement_score"`
	Authenticity     float64                   `json:"authenticity_score" bson:"authenticity_score"`
	Recommendations  []string                  `json:"recommendations" bson:"recommendations"`
	Timeline         []TimelineEntry           `json:"timeline" bson:"timeline"`
	Modalities       map[string]ModalityStatus `json:"modalities" bson:"modalities"`
	Error            string                    `json:"error,omitempty" bson:"error,omitempty"`
	AnalyzedAt       time.Time                 `json:"analyzed_at" bson:"analyzed_at"`
}

// HasScores reports whether the pipeline produced composite scores at all.
// Unreadable input yields a result with Error set and no scores.
func (r *AnalysisResult) HasScores() bool {
	return r != nil && r.Error == ""
}
