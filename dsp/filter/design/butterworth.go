package design

import (
	"math"

	"github.com/thedjinn/wasm303/dsp/filter/biquad"
)

// ButterworthLowpass6 designs a first-order (6 dB/oct) Butterworth lowpass
// as a biquad with B2 = A2 = 0.
func ButterworthLowpass6(freq, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.BypassCoefficients()
	}

	t := math.Tan(w0 / 2)

	return normalizeBiquad(2*t, 2*t, 0, 2+2*t, 2*t-2, 0)
}

// ButterworthHighpass6 designs a first-order (6 dB/oct) Butterworth highpass.
func ButterworthHighpass6(freq, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.BypassCoefficients()
	}

	t := math.Tan(w0 / 2)

	return normalizeBiquad(2, -2, 0, 2+2*t, 2*t-2, 0)
}
