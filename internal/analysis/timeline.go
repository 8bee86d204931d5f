package analysis

import (
	"math"
	"sort"

	"github.com/Intervyou-site/intervyou/domain/entities"
)

const (
	// MaxTimelineEntries bounds the merged timeline.
	MaxTimelineEntries = 50
	timelineTolerance  = 0.5
)

// MergeTimeline joins the emotion, gaze and attention timelines on their
// timestamps. Each distinct timestamp becomes one entry carrying whatever the
// modalities recorded within half a second of it.
func MergeTimeline(r *entities.AnalysisResult) []entities.TimelineEntry {
	var (
		emotions []entities.EmotionSample
		gaze     []entities.GazeSample
		poses    []entities.HeadPoseSample
	)
	if r.Emotion != nil {
		emotions = r.Emotion.Timeline
	}
	if r.EyeTracking != nil {
		gaze = r.EyeTracking.Timeline
	}
	if r.Attention != nil {
		poses = r.Attention.Timeline
	}

	seen := map[float64]bool{}
	var stamps []float64
	mark := func(ts float64) {
		if !seen[ts] {
			seen[ts] = true
			stamps = append(stamps, ts)
		}
	}
	for _, e := range emotions {
		mark(e.Timestamp)
	}
	for _, g := range gaze {
		mark(g.Timestamp)
	}
	for _, p := range poses {
		mark(p.Timestamp)
	}
	sort.Float64s(stamps)
	if len(stamps) > MaxTimelineEntries {
		stamps = stamps[:MaxTimelineEntries]
	}

	near := func(a, b float64) bool { return math.Abs(a-b) < timelineTolerance }

	entries := make([]entities.TimelineEntry, 0, len(stamps))
	for _, ts := range stamps {
		entry := entities.TimelineEntry{Timestamp: round(ts, 2)}
		for _, e := range emotions {
			if near(e.Timestamp, ts) {
				entry.Emotions = e.Emotions
			}
		}
		for _, g := range gaze {
			if near(g.Timestamp, ts) {
				contact := g.Direction == entities.GazeCenter
				entry.Gaze = g.Direction
				entry.EyeContact = &contact
			}
		}
		for _, p := range poses {
			if near(p.Timestamp, ts) {
				focused := p.Focused
				entry.Focused = &focused
			}
		}
		entries = append(entries, entry)
	}
	return entries
}
