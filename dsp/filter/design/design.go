package design

import (
	"math"

	"github.com/thedjinn/wasm303/dsp/filter/biquad"
)

// DefaultQ is the Butterworth quality factor 1/sqrt(2).
const DefaultQ = 1 / math.Sqrt2

func normalizedW0(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, false
	}

	nyquist := sampleRate / 2
	if freq <= 0 || freq >= nyquist || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return 0, false
	}

	return 2 * math.Pi * freq / sampleRate, true
}

func normalizedQ(q float64) float64 {
	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return DefaultQ
	}

	return q
}

// bandwidthAlpha converts a bandwidth in octaves to the cookbook alpha term,
// including the bilinear warping correction w0/sin(w0).
func bandwidthAlpha(w0, octaves float64) float64 {
	sw := math.Sin(w0)
	if octaves <= 0 || math.IsNaN(octaves) || math.IsInf(octaves, 0) {
		octaves = 1
	}

	return sw * math.Sinh(0.5*math.Ln2*octaves*w0/sw)
}

func normalizeBiquad(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return biquad.BypassCoefficients()
	}

	c := biquad.Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}

	if !finite(c) {
		return biquad.BypassCoefficients()
	}

	return c
}

func finite(c biquad.Coefficients) bool {
	for _, v := range [...]float64{c.B0, c.B1, c.B2, c.A1, c.A2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}
