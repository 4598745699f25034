package design

import (
	"math"

	"github.com/thedjinn/wasm303/dsp/filter/biquad"
)

// Lowpass12 designs a 12 dB/oct lowpass at freq (Hz) with quality factor q.
func Lowpass12(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.BypassCoefficients()
	}

	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * normalizedQ(q))

	return normalizeBiquad(
		0.5*(1-cw), 1-cw, 0.5*(1-cw),
		1+alpha, -2*cw, 1-alpha,
	)
}

// Highpass12 designs a 12 dB/oct highpass at freq (Hz) with quality factor q.
func Highpass12(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.BypassCoefficients()
	}

	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * normalizedQ(q))

	return normalizeBiquad(
		0.5*(1+cw), -(1 + cw), 0.5*(1+cw),
		1+alpha, -2*cw, 1-alpha,
	)
}

// BandpassSkirt designs a constant-skirt-gain bandpass. The peak gain equals
// Q, so narrow bands ring louder. bandwidth is in octaves.
func BandpassSkirt(freq, bandwidth, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.BypassCoefficients()
	}

	sw := math.Sin(w0)
	alpha := bandwidthAlpha(w0, bandwidth)

	return normalizeBiquad(
		0.5*sw, 0, -0.5*sw,
		1+alpha, -2*math.Cos(w0), 1-alpha,
	)
}

// BandpassPeak designs a bandpass with 0 dB peak gain. bandwidth is in octaves.
func BandpassPeak(freq, bandwidth, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.BypassCoefficients()
	}

	alpha := bandwidthAlpha(w0, bandwidth)

	return normalizeBiquad(
		alpha, 0, -alpha,
		1+alpha, -2*math.Cos(w0), 1-alpha,
	)
}

// Notch designs a band-reject filter centered at freq. bandwidth is in octaves.
func Notch(freq, bandwidth, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.BypassCoefficients()
	}

	cw := math.Cos(w0)
	alpha := bandwidthAlpha(w0, bandwidth)

	return normalizeBiquad(
		1, -2*cw, 1,
		1+alpha, -2*cw, 1-alpha,
	)
}

// Allpass designs a second-order allpass centered at freq with quality factor q.
func Allpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.BypassCoefficients()
	}

	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * normalizedQ(q))

	return normalizeBiquad(
		1-alpha, -2*cw, 1+alpha,
		1+alpha, -2*cw, 1-alpha,
	)
}

// PeakingEQ designs a peaking filter with gainDB at freq. bandwidth is in
// octaves.
func PeakingEQ(freq, gainDB, bandwidth, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.BypassCoefficients()
	}

	a := math.Pow(10, gainDB/40)
	cw := math.Cos(w0)
	alpha := bandwidthAlpha(w0, bandwidth)

	return normalizeBiquad(
		1+alpha*a, -2*cw, 1-alpha*a,
		1+alpha/a, -2*cw, 1-alpha/a,
	)
}

// LowShelf designs a low shelf with gainDB below freq. slope is the shelf
// slope S; 1 gives the steepest monotonic transition.
func LowShelf(freq, gainDB, slope, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.BypassCoefficients()
	}

	a, cw, beta := shelfTerms(w0, gainDB, slope)

	return normalizeBiquad(
		a*((a+1)-(a-1)*cw+beta),
		2*a*((a-1)-(a+1)*cw),
		a*((a+1)-(a-1)*cw-beta),
		(a+1)+(a-1)*cw+beta,
		-2*((a-1)+(a+1)*cw),
		(a+1)+(a-1)*cw-beta,
	)
}

// HighShelf designs a high shelf with gainDB above freq. slope as in LowShelf.
func HighShelf(freq, gainDB, slope, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.BypassCoefficients()
	}

	a, cw, beta := shelfTerms(w0, gainDB, slope)

	return normalizeBiquad(
		a*((a+1)+(a-1)*cw+beta),
		-2*a*((a-1)+(a+1)*cw),
		a*((a+1)+(a-1)*cw-beta),
		(a+1)-(a-1)*cw+beta,
		2*((a-1)-(a+1)*cw),
		(a+1)-(a-1)*cw-beta,
	)
}

// shelfTerms returns A, cos(w0) and 2*sqrt(A)*alpha for the shelf forms.
func shelfTerms(w0, gainDB, slope float64) (a, cw, beta float64) {
	if slope <= 0 || math.IsNaN(slope) || math.IsInf(slope, 0) {
		slope = 1
	}

	a = math.Pow(10, gainDB/40)
	cw = math.Cos(w0)

	radicand := (a+1/a)*(1/slope-1) + 2
	if radicand < 0 {
		radicand = 0
	}

	alpha := 0.5 * math.Sin(w0) * math.Sqrt(radicand)

	return a, cw, 2 * math.Sqrt(a) * alpha
}
