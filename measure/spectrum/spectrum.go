// Package spectrum computes magnitude spectra of rendered audio.
package spectrum

import (
	"fmt"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/thedjinn/wasm303/dsp/core"
	"github.com/thedjinn/wasm303/dsp/window"
)

var (
	planMu sync.Mutex
	plans  = map[int]*algofft.Plan[complex128]{}
)

func planFor(n int) (*algofft.Plan[complex128], error) {
	planMu.Lock()
	defer planMu.Unlock()

	if p, ok := plans[n]; ok {
		return p, nil
	}

	p, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, err
	}

	plans[n] = p

	return p, nil
}

// Magnitude returns the single-sided amplitude spectrum of samples after a
// periodic Hann window. len(samples) must be a power of two. Magnitudes are
// scaled so a bin-centered sinusoid of amplitude A reads A. binHz is the bin
// spacing.
func Magnitude(samples []float64, sampleRate float64) (mags []float64, binHz float64, err error) {
	return MagnitudeWindow(samples, sampleRate, window.TypeHann)
}

// MagnitudeWindow is Magnitude with an explicit window type.
func MagnitudeWindow(samples []float64, sampleRate float64, wt window.Type) (mags []float64, binHz float64, err error) {
	n := len(samples)
	if n < 2 || n&(n-1) != 0 {
		return nil, 0, fmt.Errorf("spectrum: length must be a power of two >= 2: %d", n)
	}

	if sampleRate <= 0 {
		return nil, 0, fmt.Errorf("spectrum: sample rate must be > 0: %f", sampleRate)
	}

	plan, err := planFor(n)
	if err != nil {
		return nil, 0, fmt.Errorf("spectrum: %w", err)
	}

	windowed, err := window.ApplyCoefficients(samples, window.Generate(wt, n, window.WithPeriodic()))
	if err != nil {
		return nil, 0, fmt.Errorf("spectrum: %w", err)
	}

	in := make([]complex128, n)
	for i, v := range windowed {
		in[i] = complex(v, 0)
	}

	out := make([]complex128, n)
	if err := plan.Forward(out, in); err != nil {
		return nil, 0, fmt.Errorf("spectrum: %w", err)
	}

	bins := n/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)

	for i := range bins {
		re[i] = real(out[i])
		im[i] = imag(out[i])
	}

	mags = make([]float64, bins)
	vecmath.Magnitude(mags, re, im)

	// Single-sided amplitude: double every bin except DC and Nyquist, and
	// undo the window's coherent gain.
	scale := 2 / (float64(n) * window.Info(wt).CoherentGain)
	vecmath.ScaleBlock(mags, mags, scale)
	mags[0] /= 2
	mags[bins-1] /= 2

	return mags, sampleRate / float64(n), nil
}

// PeakFrequency returns the frequency of the largest bin above DC, refined
// by parabolic interpolation over its neighbours.
func PeakFrequency(mags []float64, binHz float64) float64 {
	if len(mags) < 3 {
		return 0
	}

	best := 1
	for i := 2; i < len(mags); i++ {
		if mags[i] > mags[best] {
			best = i
		}
	}

	if best == len(mags)-1 {
		return float64(best) * binHz
	}

	a, b, c := mags[best-1], mags[best], mags[best+1]

	den := a - 2*b + c
	if core.NearlyEqual(den, 0, 0) {
		return float64(best) * binHz
	}

	return (float64(best) + 0.5*(a-c)/den) * binHz
}

// BandEnergy returns the sum of squared magnitudes of the bins in
// [loHz, hiHz].
func BandEnergy(mags []float64, binHz, loHz, hiHz float64) float64 {
	if binHz <= 0 || hiHz < loHz {
		return 0
	}

	lo := max(0, int(loHz/binHz+0.5))
	hi := min(len(mags)-1, int(hiHz/binHz+0.5))

	sum := 0.0
	for i := lo; i <= hi; i++ {
		sum += mags[i] * mags[i]
	}

	return sum
}
