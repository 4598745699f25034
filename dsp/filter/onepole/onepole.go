// Package onepole provides the first-order high-pass and all-pass sections
// of the voice's DC-blocking chain.
package onepole

import (
	"math"

	"github.com/thedjinn/wasm303/dsp/core"
)

// Coefficients of y[n] = B0*x[n] + B1*x[n-1] - A1*y[n-1].
type Coefficients struct {
	B0, B1, A1 float64
}

// Filter is a single-pole, single-zero section.
type Filter struct {
	Coefficients

	x1, y1 float64
}

// New returns a Filter with the given coefficients and zero state.
func New(c Coefficients) *Filter {
	return &Filter{Coefficients: c}
}

// Bypass returns a Filter whose output equals its input.
func Bypass() *Filter {
	return New(Coefficients{B0: 1})
}

// HighPassCoefficients returns the one-pole high-pass at cutoff Hz. The pole
// sits at exp(-2*pi*cutoff/sampleRate); the zero is at DC.
func HighPassCoefficients(cutoff, sampleRate float64) Coefficients {
	alpha := math.Exp(-2 * math.Pi * cutoff / sampleRate)

	return Coefficients{
		B0: 0.5 * (1 + alpha),
		B1: -0.5 * (1 + alpha),
		A1: -alpha,
	}
}

// AllPassCoefficients returns the first-order all-pass with its 90 degree
// phase point at cutoff Hz.
func AllPassCoefficients(cutoff, sampleRate float64) Coefficients {
	tau := math.Tan(math.Pi * cutoff / sampleRate)
	alpha := (1 - tau) / (1 + tau)

	return Coefficients{B0: alpha, B1: 1, A1: alpha}
}

// HighPass returns a high-pass Filter at cutoff Hz.
func HighPass(cutoff, sampleRate float64) *Filter {
	return New(HighPassCoefficients(cutoff, sampleRate))
}

// AllPass returns an all-pass Filter at cutoff Hz.
func AllPass(cutoff, sampleRate float64) *Filter {
	return New(AllPassCoefficients(cutoff, sampleRate))
}

// ProcessSample filters one sample.
func (f *Filter) ProcessSample(x float64) float64 {
	y := f.B0*x + f.B1*f.x1 - f.A1*f.y1

	f.x1 = x
	f.y1 = y + core.AntiDenormal

	return y
}

// ProcessInPlace filters buf in place.
func (f *Filter) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = f.ProcessSample(x)
	}
}

// Reset clears the filter history.
func (f *Filter) Reset() {
	f.x1, f.y1 = 0, 0
}

// State returns the previous input and stored output.
func (f *Filter) State() (x1, y1 float64) {
	return f.x1, f.y1
}

// SetState restores a history captured with State.
func (f *Filter) SetState(x1, y1 float64) {
	f.x1, f.y1 = x1, y1
}

// MagnitudeSquared returns |H(f)|^2 at freqHz.
func (c Coefficients) MagnitudeSquared(freqHz, sampleRate float64) float64 {
	w := 2 * math.Pi * freqHz / sampleRate
	cw, sw := math.Cos(w), math.Sin(w)

	nr, ni := c.B0+c.B1*cw, -c.B1*sw
	dr, di := 1+c.A1*cw, -c.A1*sw

	return (nr*nr + ni*ni) / (dr*dr + di*di)
}
