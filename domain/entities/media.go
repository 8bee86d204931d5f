package entities

import (
	"errors"
	"image"
)

// VideoAsset describes an input recording. It is read-only once probed.
type VideoAsset struct {
	Path       string  `json:"path" bson:"path"`
	Duration   float64 `json:"duration" bson:"duration"`
	FPS        float64 `json:"fps" bson:"fps"`
	FrameCount int     `json:"frame_count" bson:"frame_count"`
	Width      int     `json:"width" bson:"width"`
	Height     int     `json:"height" bson:"height"`
	HasAudio   bool    `json:"has_audio" bson:"has_audio"`
}

// Validate checks that the asset can be walked frame by frame
func (v VideoAsset) Validate() error {
	if v.Path == "" {
		return errors.New("video path is required")
	}
	if v.FPS <= 0 {
		return errors.New("frame rate must be positive")
	}
	if v.Width <= 0 || v.Height <= 0 {
		return errors.New("frame size must be positive")
	}
	return nil
}

// Frame is one decoded video frame.
type Frame struct {
	Index     int
	Timestamp float64
	Image     *image.RGBA
}

// Point is a 2D pixel coordinate.
type Point struct {
	X float64
	Y float64
}

// Landmark is a normalized face-mesh landmark; X and Y are in [0,1] of the frame size.
type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// FaceLandmarks is a dense face mesh (468 points, 478 with iris refinement).
type FaceLandmarks struct {
	Points []Landmark `json:"landmarks"`
}

// Has reports whether index i is present in the mesh
func (f *FaceLandmarks) Has(i int) bool {
	return f != nil && i >= 0 && i < len(f.Points)
}

// Pixel converts landmark i to pixel coordinates for a w x h frame
func (f *FaceLandmarks) Pixel(i int, w, h int) Point {
	p := f.Points[i]
	return Point{X: p.X * float64(w), Y: p.Y * float64(h)}
}

// FaceBox is a detected face in pixel coordinates.
type FaceBox struct {
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
	Size    float64 `json:"size"`
	Score   float64 `json:"score"`
}

// Emotion labels produced by the emotion classifiers.
const (
	EmotionAngry    = "angry"
	EmotionDisgust  = "disgust"
	EmotionFear     = "fear"
	EmotionHappy    = "happy"
	EmotionSad      = "sad"
	EmotionSurprise = "surprise"
	EmotionNeutral  = "neutral"
)

// EmotionLabels is the fixed label set, in reporting order.
var EmotionLabels = []string{
	EmotionAngry, EmotionDisgust, EmotionFear, EmotionHappy,
	EmotionSad, EmotionSurprise, EmotionNeutral,
}

// EmotionDistribution maps label to score in [0,1]. Scores need not sum to 1.
type EmotionDistribution map[string]float64

// Dominant returns the highest scoring label, "neutral" when empty.
// Ties resolve in EmotionLabels order.
func (d EmotionDistribution) Dominant() (string, float64) {
	best, bestScore := EmotionNeutral, -1.0
	for _, label := range EmotionLabels {
		score, ok := d[label]
		if ok && score > bestScore {
			best, bestScore = label, score
		}
	}
	if bestScore < 0 {
		return EmotionNeutral, 0
	}
	return best, bestScore
}

// IsNegativeEmotion reports whether label is one of the distress emotions
func IsNegativeEmotion(label string) bool {
	switch label {
	case EmotionSad, EmotionFear, EmotionAngry:
		return true
	}
	return false
}

// Waveform is mono PCM audio scaled to [-1,1].
type Waveform struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the waveform length in seconds
func (w *Waveform) Duration() float64 {
	if w == nil || w.SampleRate <= 0 {
		return 0
	}
	return float64(len(w.Samples)) / float64(w.SampleRate)
}
