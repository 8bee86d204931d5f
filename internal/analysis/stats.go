package analysis

import (
	"math"

	"github.com/montanaflynn/stats"
)

// mean, variance and stddev treat an empty series as zero.

func mean(xs []float64) float64 {
	m, err := stats.Mean(xs)
	if err != nil {
		return 0
	}
	return m
}

func variance(xs []float64) float64 {
	v, err := stats.PopulationVariance(xs)
	if err != nil {
		return 0
	}
	return v
}

func stddev(xs []float64) float64 {
	s, err := stats.StandardDeviationPopulation(xs)
	if err != nil {
		return 0
	}
	return s
}

func spread(xs []float64) float64 {
	lo, err := stats.Min(xs)
	if err != nil {
		return 0
	}
	hi, _ := stats.Max(xs)
	return hi - lo
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
