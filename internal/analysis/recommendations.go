package analysis

import (
	"fmt"

	"github.com/Intervyou-site/intervyou/domain/entities"
)

// MaxRecommendations bounds the advice returned for one recording.
const MaxRecommendations = 8

const (
	bannerOutstanding = "Outstanding performance! You demonstrated excellent interview skills across all metrics"
	bannerGreat       = "Great job! You showed strong interview presence and communication skills"
)

// Recommend collects the advice of every firing rule in a fixed order,
// prepends a banner for strong scores and truncates the list.
// Rules over a modality fire only when that modality was measured.
func Recommend(r *entities.AnalysisResult) []string {
	var recs []string
	add := func(s string) { recs = append(recs, s) }

	if g := r.EyeTracking; g != nil {
		if g.EyeContactPercentage < 60 {
			add("Improve eye contact - aim for 60-80% direct camera gaze")
		}
		if g.BlinkRate > 30 {
			add("High blink rate detected - try to relax and reduce nervousness")
		} else if g.BlinkRate < 10 {
			add("Very low blink rate - remember to blink naturally to avoid appearing tense")
		}
		if g.GazeStability < 0.6 {
			add("Maintain steadier gaze - avoid darting eyes by focusing on the camera")
		}
	}

	if v := r.Voice; v != nil {
		if v.TotalFillerCount > 10 {
			add(fmt.Sprintf("Reduce filler words (detected %d) - pause instead of using 'um', 'uh', 'like'", v.TotalFillerCount))
		}
		if v.SpeechRate > 160 {
			add("Slow down your speech - aim for 120-160 words per minute")
		} else if v.SpeechRate > 0 && v.SpeechRate < 100 {
			add("Speak a bit faster - your pace is too slow, aim for 120-160 wpm")
		}
		if v.EnergyLevel == entities.EnergyLow {
			add("Increase vocal energy and enthusiasm in your delivery")
		}
		if v.HasTranscript() && v.ClarityScore < 0.7 {
			add("Improve speech clarity - articulate words more clearly")
		}
	}

	if a := r.Attention; a != nil {
		if a.FocusPercentage < 70 {
			add("Maintain better focus - you looked away frequently during the interview")
		}
		if a.DistractionCount > 5 {
			add("Minimize distractions - ensure a quiet, focused environment")
		}
	}

	if mx := r.MicroExpressions; mx != nil && mx.DetectedCount > 25 {
		add("High micro-expression rate suggests nervousness - practice to feel more comfortable")
	}

	if r.ConfidenceScore < 6 {
		add("Build confidence through practice and positive self-talk")
	}
	if r.Authenticity < 6 {
		add("Be more authentic - let your genuine personality show through")
	}

	if f := r.Facial; f != nil && f.SmileFrequency != nil && *f.SmileFrequency < 0.2 {
		add("Smile more naturally - it shows engagement and positivity")
	}

	if b := r.BodyMovement; b != nil {
		switch b.MovementLevel {
		case entities.MovementMinimal:
			add("Use natural hand gestures to emphasize key points")
		case entities.MovementActive:
			add("Reduce excessive movement - maintain a calm, steady presence")
		}
		if b.PostureScore < 0.7 {
			add("Improve posture - sit up straight and maintain good body alignment")
		}
	}

	if r.Engagement < 6 {
		add("Show more enthusiasm and engagement with your answers")
	}
	if r.Professionalism < 7 {
		add("Enhance professionalism through better posture and eye contact")
	}
	if s := r.Sentiment; s != nil && s.Label == entities.SentimentNegative {
		add("Frame experiences more positively - focus on achievements and learning")
	}

	switch {
	case r.ConfidenceScore >= 8 && r.Professionalism >= 8 && r.Engagement >= 8:
		recs = append([]string{bannerOutstanding}, recs...)
	case r.ConfidenceScore >= 7 && r.Professionalism >= 7:
		recs = append([]string{bannerGreat}, recs...)
	}

	if len(recs) > MaxRecommendations {
		recs = recs[:MaxRecommendations]
	}
	if recs == nil {
		recs = []string{}
	}
	return recs
}
