package design

import (
	"math"

	"github.com/thedjinn/wasm303/dsp/core"
	"github.com/thedjinn/wasm303/dsp/filter/biquad"
)

// Moorer, "The Manifold Joys of Conformal Mapping", JAES 1983.

// minNormal32 is the smallest positive normal float32. Squared-gain
// differences at or below it are treated as zero.
const minNormal32 = 0x1p-126

// warpFactor maps a normalized frequency (0..0.5) onto the tangent warp used
// to move the prototype from fs/4 to the requested center.
func warpFactor(normalizedFreq float64) float64 {
	return math.Tan(math.Pi * (normalizedFreq - 0.25))
}

// moorerF picks the reference gain f for amplification factor amp. Near
// unity it uses the geometric midpoint; otherwise it stays 3 dB from amp so
// the squared difference below never vanishes.
func moorerF(gainDB, amp float64) float64 {
	switch {
	case gainDB > -6 && gainDB < 6:
		return math.Sqrt(amp)
	case amp > 1:
		return amp / math.Sqrt2
	default:
		return amp * math.Sqrt2
	}
}

// BandedgeAngle solves for the prototype bandedge frequency given warp
// factor a and a normalized bandwidth (0..0.5). Of the two closed-form
// roots it keeps the smaller one when it lies strictly between 0 and the
// principal value, and the principal value otherwise. The result is a
// normalized frequency.
func BandedgeAngle(a, bandwidth float64) float64 {
	a2 := a * a
	a4 := a2 * a2

	sinT := math.Sin(2 * math.Pi * bandwidth)
	cosT := math.Cos(2 * math.Pi * bandwidth)
	sine := (1 + a4) * sinT
	cosine := (1 - a4) * cosT

	magnitude := math.Hypot(sine, cosine)
	d := 2 * a2 * sinT / magnitude

	asnd := math.Asin(core.Clamp(d, -1, 1))
	delta := math.Atan2(sine, cosine)

	theta := 0.5 * (math.Pi - asnd - delta)
	alt := 0.5 * (asnd - delta)

	if alt > 0 && alt < theta {
		return alt / (2 * math.Pi)
	}

	return theta / (2 * math.Pi)
}

// MoorerPresence designs a presence (peaking) filter at freq with the given
// bandwidth in Hz and gain in dB.
func MoorerPresence(freq, bandwidthHz, gainDB, sampleRate float64) biquad.Coefficients {
	if _, ok := normalizedW0(freq, sampleRate); !ok || bandwidthHz <= 0 || bandwidthHz >= sampleRate/2 {
		return biquad.BypassCoefficients()
	}

	a := warpFactor(freq / sampleRate)
	a2 := a * a
	amp := core.DBToLinear(gainDB)
	f := moorerF(gainDB, amp)

	cot := 1 / math.Tan(2*math.Pi*BandedgeAngle(a, bandwidthHz/sampleRate))
	f2 := f * f
	diff := amp*amp - f2

	var den float64
	if math.Abs(diff) <= minNormal32 {
		den = cot
	} else {
		den = math.Sqrt(cot * cot * (f2 - 1) / diff)
	}

	num := amp * den

	a1 := 4 * a

	return normalizeBiquad(
		(1+a2)+num*(1-a2),
		a1,
		(1+a2)-num*(1-a2),
		(1+a2)+den*(1-a2),
		a1,
		(1+a2)-den*(1-a2),
	)
}

// MoorerShelf designs a low (high = false) or high (high = true) shelving
// filter at freq with gain in dB. slope plays the role of the prototype
// damping; 1/sqrt(2) gives the sharpest monotonic shelf.
func MoorerShelf(freq, gainDB, slope float64, high bool, sampleRate float64) biquad.Coefficients {
	if _, ok := normalizedW0(freq, sampleRate); !ok {
		return biquad.BypassCoefficients()
	}

	a := warpFactor(freq / sampleRate)
	a2 := a * a
	amp := core.DBToLinear(gainDB)
	f := moorerF(gainDB, amp)

	f2 := f * f
	diff := amp*amp - f2

	gd := 1.0
	if math.Abs(diff) > minNormal32 {
		gd = math.Pow((f2-1)/diff, 0.25)
	}

	gn := math.Sqrt(amp) * gd
	twoSigma := 2 * slope

	gn2 := gn * gn
	tb0 := (1 + gn2) + twoSigma*gn
	tb1 := -2 * (1 - gn2)
	tb2 := (1 + gn2) - twoSigma*gn

	gd2 := gd * gd
	ta0 := (1 + gd2) + twoSigma*gd
	ta1 := -2 * (1 - gd2)
	ta2 := (1 + gd2) - twoSigma*gd

	// Mirroring z^-1 turns the low shelf prototype into a high shelf.
	if high {
		tb1 = -tb1
		ta1 = -ta1
	}

	aa1 := a * ta1
	ab1 := a * tb1

	return normalizeBiquad(
		tb0+ab1+a2*tb2,
		2*a*(tb0+tb2)+(1+a2)*tb1,
		a2*tb0+ab1+tb2,
		ta0+aa1+a2*ta2,
		2*a*(ta0+ta2)+(1+a2)*ta1,
		a2*ta0+aa1+ta2,
	)
}
