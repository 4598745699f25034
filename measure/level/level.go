// Package level computes block level statistics of rendered audio.
package level

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/thedjinn/wasm303/dsp/core"
)

// Stats summarizes a block of samples.
type Stats struct {
	Peak float64 `json:"peak"`
	RMS  float64 `json:"rms"`
	DC   float64 `json:"dc"`
}

// PeakDB returns the peak level in dBFS.
func (s Stats) PeakDB() float64 { return core.LinearToDB(s.Peak) }

// RMSDB returns the RMS level in dBFS.
func (s Stats) RMSDB() float64 { return core.LinearToDB(s.RMS) }

// CrestFactor returns peak over RMS, or 0 for silence.
func (s Stats) CrestFactor() float64 {
	if s.RMS == 0 {
		return 0
	}

	return s.Peak / s.RMS
}

// Analyze returns the absolute peak, RMS and mean of samples.
func Analyze(samples []float64) Stats {
	if len(samples) == 0 {
		return Stats{}
	}

	peak := math.Max(floats.Max(samples), -floats.Min(samples))
	rms := math.Sqrt(floats.Dot(samples, samples) / float64(len(samples)))

	return Stats{
		Peak: peak,
		RMS:  rms,
		DC:   stat.Mean(samples, nil),
	}
}

// Meter accumulates statistics over consecutive blocks.
type Meter struct {
	peak  float64
	sumSq float64
	sum   float64
	n     int
}

// Add folds a block into the running statistics.
func (m *Meter) Add(samples []float64) {
	if len(samples) == 0 {
		return
	}

	m.peak = math.Max(m.peak, math.Max(floats.Max(samples), -floats.Min(samples)))
	m.sumSq += floats.Dot(samples, samples)
	m.sum += floats.Sum(samples)
	m.n += len(samples)
}

// Stats returns the statistics of everything added so far.
func (m *Meter) Stats() Stats {
	if m.n == 0 {
		return Stats{}
	}

	return Stats{
		Peak: m.peak,
		RMS:  math.Sqrt(m.sumSq / float64(m.n)),
		DC:   m.sum / float64(m.n),
	}
}

// Count returns the number of samples added.
func (m *Meter) Count() int { return m.n }

// Reset clears the meter.
func (m *Meter) Reset() { *m = Meter{} }
