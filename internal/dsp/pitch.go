package dsp

// PitchConfig bounds the fundamental-frequency search.
type PitchConfig struct {
	MinHz      float64
	MaxHz      float64
	Threshold  float64
	SilenceRMS float64
	FrameSize  int
	Hop        int
}

// DefaultPitchConfig covers the adult speaking range.
func DefaultPitchConfig() PitchConfig {
	return PitchConfig{
		MinHz:      75,
		MaxHz:      400,
		Threshold:  0.15,
		SilenceRMS: 0.005,
		FrameSize:  1024,
		Hop:        1024,
	}
}

// VoicedPitches estimates f0 per frame with the YIN cumulative mean normalized
// difference and returns the values of voiced frames only.
func VoicedPitches(samples []float64, sampleRate int, cfg PitchConfig) []float64 {
	if sampleRate <= 0 || cfg.MinHz <= 0 || cfg.MaxHz <= cfg.MinHz {
		return nil
	}
	minTau := int(float64(sampleRate) / cfg.MaxHz)
	maxTau := int(float64(sampleRate) / cfg.MinHz)
	if minTau < 2 {
		minTau = 2
	}
	window := cfg.FrameSize - maxTau
	if window <= 0 {
		return nil
	}

	var pitches []float64
	diff := make([]float64, maxTau+1)
	for start := 0; start+cfg.FrameSize <= len(samples); start += cfg.Hop {
		frame := samples[start : start+cfg.FrameSize]
		if RMS(frame) < cfg.SilenceRMS {
			continue
		}
		if f0, ok := yin(frame, window, minTau, maxTau, cfg.Threshold, diff); ok {
			pitches = append(pitches, float64(sampleRate)/f0)
		}
	}
	return pitches
}

// yin returns the period in samples of the frame, if it is voiced.
func yin(frame []float64, window, minTau, maxTau int, threshold float64, diff []float64) (float64, bool) {
	for tau := 1; tau <= maxTau; tau++ {
		var d float64
		for j := 0; j < window; j++ {
			delta := frame[j] - frame[j+tau]
			d += delta * delta
		}
		diff[tau] = d
	}

	// cumulative mean normalization, in place
	diff[0] = 1
	var running float64
	for tau := 1; tau <= maxTau; tau++ {
		running += diff[tau]
		if running == 0 {
			diff[tau] = 1
			continue
		}
		diff[tau] = diff[tau] * float64(tau) / running
	}

	tau := -1
	for t := minTau; t <= maxTau; t++ {
		if diff[t] < threshold {
			for t+1 <= maxTau && diff[t+1] < diff[t] {
				t++
			}
			tau = t
			break
		}
	}
	if tau < 0 {
		return 0, false
	}

	period := float64(tau)
	if tau > 1 && tau < maxTau {
		a, b, c := diff[tau-1], diff[tau], diff[tau+1]
		if denom := a - 2*b + c; denom != 0 {
			period += (a - c) / (2 * denom)
		}
	}
	return period, period > 0
}
