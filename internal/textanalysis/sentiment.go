package textanalysis

import (
	"math"
	"sync"

	"github.com/jonreiter/govader"

	"github.com/Intervyou-site/intervyou/domain/entities"
)

// The analyzer parses its lexicon on construction; it is read-only afterwards.
var vader = sync.OnceValue(govader.NewSentimentIntensityAnalyzer)

// Score is the polarity and subjectivity of a text.
type Score struct {
	Polarity     float64
	Subjectivity float64
}

// AnalyzeSentiment scores text with VADER. Polarity is the compound score and
// subjectivity the share of the text carrying positive or negative valence.
func AnalyzeSentiment(text string) Score {
	s := vader().PolarityScores(text)
	return Score{
		Polarity:     clamp(s.Compound, -1, 1),
		Subjectivity: clamp(s.Positive+s.Negative, 0, 1),
	}
}

// Label thresholds on polarity.
const (
	PositiveThreshold = 0.1
	NegativeThreshold = -0.1
)

// Sentiment labels a text and rounds its scores to three decimals.
func Sentiment(text string) entities.SentimentResult {
	score := AnalyzeSentiment(text)
	label := entities.SentimentNeutral
	switch {
	case score.Polarity > PositiveThreshold:
		label = entities.SentimentPositive
	case score.Polarity < NegativeThreshold:
		label = entities.SentimentNegative
	}
	return entities.SentimentResult{
		Polarity:     round3(score.Polarity),
		Subjectivity: round3(score.Subjectivity),
		Label:        label,
		Confidence:   round3(math.Abs(score.Polarity)),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
