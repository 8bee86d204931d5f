package textanalysis

import "strings"

// FillerWords is the fixed filler lexicon, in reporting order.
var FillerWords = []string{
	"um", "uh", "like", "you know", "so",
	"actually", "basically", "literally", "kind of", "sort of",
}

// FillerReport is the filler usage of one transcript.
type FillerReport struct {
	Counts    map[string]int
	Total     int
	WordCount int
}

// CountFillers counts each filler as a substring of the lowercased transcript.
// Matches are substrings, so "so" also counts inside words such as "also".
func CountFillers(transcript string) FillerReport {
	text := Normalize(transcript)
	report := FillerReport{
		Counts:    make(map[string]int),
		WordCount: WordCount(text),
	}
	for _, filler := range FillerWords {
		if n := strings.Count(text, filler); n > 0 {
			report.Counts[filler] = n
			report.Total += n
		}
	}
	return report
}

// DefaultClarity is reported when a transcript has no words.
const DefaultClarity = 0.8

// Clarity is max(0, 1 - 2*fillers/words), or DefaultClarity without words.
func (r FillerReport) Clarity() float64 {
	if r.WordCount == 0 {
		return DefaultClarity
	}
	c := 1 - 2*float64(r.Total)/float64(r.WordCount)
	if c < 0 {
		return 0
	}
	return c
}

// SpeechRate returns words per minute over duration seconds
func (r FillerReport) SpeechRate(duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	return float64(r.WordCount) / duration * 60
}
