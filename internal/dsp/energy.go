// Package dsp implements the audio signal processing behind the voice modality.
package dsp

import "math"

// Default framing, in samples.
const (
	FrameLength = 2048
	HopLength   = 512
)

// RMS returns the root mean square of samples, 0 for an empty slice
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// FrameRMS computes RMS energy over frames of frameLength samples every hop samples.
// The last frame may be shorter than frameLength.
func FrameRMS(samples []float64, frameLength, hop int) []float64 {
	if frameLength <= 0 || hop <= 0 {
		return nil
	}
	var out []float64
	for start := 0; start < len(samples); start += hop {
		end := start + frameLength
		if end > len(samples) {
			end = len(samples)
		}
		out = append(out, RMS(samples[start:end]))
	}
	return out
}

// Interval is a half-open sample range [Start, End).
type Interval struct {
	Start int
	End   int
}

// SplitNonSilent returns the intervals whose frame energy lies within topDB
// decibels of the loudest frame.
func SplitNonSilent(samples []float64, topDB float64, frameLength, hop int) []Interval {
	energy := FrameRMS(samples, frameLength, hop)
	var peak float64
	for _, e := range energy {
		peak = math.Max(peak, e)
	}
	if peak == 0 {
		return nil
	}
	threshold := peak * math.Pow(10, -topDB/20)

	var intervals []Interval
	open := -1
	for i, e := range energy {
		loud := e > threshold
		switch {
		case loud && open < 0:
			open = i
		case !loud && open >= 0:
			intervals = append(intervals, frameInterval(open, i, hop, len(samples)))
			open = -1
		}
	}
	if open >= 0 {
		intervals = append(intervals, frameInterval(open, len(energy), hop, len(samples)))
	}
	return intervals
}

func frameInterval(first, end, hop, n int) Interval {
	iv := Interval{Start: first * hop, End: end * hop}
	if iv.End > n {
		iv.End = n
	}
	return iv
}

// Pauses returns the gaps between consecutive intervals longer than minGap seconds.
func Pauses(intervals []Interval, sampleRate int, minGap float64) []float64 {
	if sampleRate <= 0 {
		return nil
	}
	var pauses []float64
	for i := 0; i+1 < len(intervals); i++ {
		gap := float64(intervals[i+1].Start-intervals[i].End) / float64(sampleRate)
		if gap > minGap {
			pauses = append(pauses, gap)
		}
	}
	return pauses
}
