package design

import (
	"math"
	"testing"

	"github.com/thedjinn/wasm303/dsp/filter/biquad"
)

const sr = 44100.0

func magDB(c biquad.Coefficients, freq float64) float64 {
	return c.MagnitudeDB(freq, sr)
}

func stable(c biquad.Coefficients) bool {
	// Jury conditions for a second-order denominator.
	return math.Abs(c.A2) < 1 && math.Abs(c.A1) < 1+c.A2
}

func TestRBJResponses(t *testing.T) {
	tests := []struct {
		name  string
		c     biquad.Coefficients
		freq  float64
		want  float64
		tolDB float64
	}{
		{"lowpass dc", Lowpass12(1000, DefaultQ, sr), 1, 0, 0.01},
		{"lowpass cutoff", Lowpass12(1000, DefaultQ, sr), 1000, -3.01, 0.05},
		{"lowpass stop", Lowpass12(1000, DefaultQ, sr), 10000, -43.32, 0.05},
		{"highpass nyquist", Highpass12(1000, DefaultQ, sr), 22000, 0, 0.01},
		{"highpass cutoff", Highpass12(1000, DefaultQ, sr), 1000, -3.01, 0.05},
		{"bandpass peak center", BandpassPeak(2000, 1, sr), 2000, 0, 0.01},
		{"notch far", Notch(1000, 1, sr), 100, 0, 0.5},
		{"allpass flat", Allpass(3000, 0.8, sr), 500, 0, 1e-9},
		{"allpass flat high", Allpass(3000, 0.8, sr), 15000, 0, 1e-9},
		{"peaking center", PeakingEQ(1000, 6, 1, sr), 1000, 6, 0.01},
		{"peaking cut", PeakingEQ(1000, -9, 0.5, sr), 1000, -9, 0.01},
		{"low shelf dc", LowShelf(300, 6, 1, sr), 1, 6, 0.01},
		{"low shelf top", LowShelf(300, 6, 1, sr), 20000, 0, 0.05},
		{"high shelf top", HighShelf(3000, -6, 1, sr), 22000, -6, 0.05},
		{"high shelf dc", HighShelf(3000, -6, 1, sr), 1, 0, 0.01},
		{"butterworth lp dc", ButterworthLowpass6(500, sr), 1, 0, 0.01},
		{"butterworth lp cutoff", ButterworthLowpass6(500, sr), 500, -3.01, 0.02},
		{"butterworth hp cutoff", ButterworthHighpass6(500, sr), 500, -3.01, 0.02},
		{"butterworth hp nyquist", ButterworthHighpass6(500, sr), 22049, 0, 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !stable(tt.c) {
				t.Fatalf("unstable coefficients %+v", tt.c)
			}
			if got := magDB(tt.c, tt.freq); math.Abs(got-tt.want) > tt.tolDB {
				t.Fatalf("|H(%v)| = %.3f dB, want %.3f ± %v", tt.freq, got, tt.want, tt.tolDB)
			}
		})
	}
}

func TestNotchRejectsCenter(t *testing.T) {
	c := Notch(1000, 1, sr)
	if got := c.MagnitudeDB(1000, sr); got > -100 {
		t.Fatalf("|H(f0)| = %.1f dB, want < -100 dB", got)
	}
}

func TestBandpassSkirtPeakEqualsQ(t *testing.T) {
	c := BandpassSkirt(2000, 0.5, sr)
	peak := math.Sqrt(c.MagnitudeSquared(2000, sr))

	// Q for a bandwidth in octaves, warped the same way as the design.
	w0 := 2 * math.Pi * 2000 / sr
	q := 1 / (2 * math.Sinh(0.5*math.Ln2*0.5*w0/math.Sin(w0)))
	if math.Abs(peak-q) > 1e-6 {
		t.Fatalf("peak gain = %v, want Q = %v", peak, q)
	}
}

func TestButterworth6IsFirstOrder(t *testing.T) {
	for _, c := range []biquad.Coefficients{ButterworthLowpass6(700, sr), ButterworthHighpass6(700, sr)} {
		if c.B2 != 0 || c.A2 != 0 {
			t.Fatalf("expected first-order section, got %+v", c)
		}
	}
}

func TestInvalidFrequencyYieldsBypass(t *testing.T) {
	bypass := biquad.BypassCoefficients()
	for _, freq := range []float64{0, -10, sr / 2, sr, math.NaN(), math.Inf(1)} {
		cs := []biquad.Coefficients{
			Lowpass12(freq, DefaultQ, sr),
			Highpass12(freq, DefaultQ, sr),
			BandpassSkirt(freq, 1, sr),
			BandpassPeak(freq, 1, sr),
			Notch(freq, 1, sr),
			Allpass(freq, 1, sr),
			PeakingEQ(freq, 3, 1, sr),
			LowShelf(freq, 3, 1, sr),
			HighShelf(freq, 3, 1, sr),
			ButterworthLowpass6(freq, sr),
			ButterworthHighpass6(freq, sr),
			MoorerPresence(freq, 100, 3, sr),
			MoorerShelf(freq, 3, DefaultQ, false, sr),
		}
		for i, c := range cs {
			if c != bypass {
				t.Fatalf("freq=%v design %d: got %+v, want bypass", freq, i, c)
			}
		}
	}
}

func TestVoiceChainDesignsAreStable(t *testing.T) {
	notch := Notch(7.5164, 4.7, sr)
	declicker := Lowpass12(200, math.Sqrt(0.5), sr)

	for _, c := range []biquad.Coefficients{notch, declicker} {
		if !stable(c) {
			t.Fatalf("unstable %+v", c)
		}
	}

	if got := magDB(declicker, 1); math.Abs(got) > 0.01 {
		t.Fatalf("declicker DC gain = %v dB, want 0", got)
	}
}
