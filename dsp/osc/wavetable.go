// Package osc provides the band-limited wavetable oscillator of the voice.
package osc

import (
	"fmt"
	"math"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/thedjinn/wasm303/dsp/core"
)

const (
	// CycleLength is the number of samples in one stored waveform cycle.
	CycleLength = 4096

	// NoteCount is the number of MIDI notes with their own table.
	NoteCount = 128

	groupLength = NoteCount * CycleLength
	cycleMask   = CycleLength - 1
)

// Waveform selects a table group.
type Waveform int

const (
	// Sawtooth uses all harmonics with 1/j amplitudes.
	Sawtooth Waveform = iota
	// Square uses odd harmonics only.
	Square

	waveformCount
)

func (w Waveform) String() string {
	switch w {
	case Sawtooth:
		return "sawtooth"
	case Square:
		return "square"
	default:
		return "unknown"
	}
}

// Wavetable holds one band-limited cycle per note and waveform. Each note's
// partial count is chosen so the highest harmonic stays below Nyquist. The
// table is immutable after construction and safe for concurrent readers.
type Wavetable struct {
	sampleRate float64
	data       []float32
}

var (
	sharedOnce  sync.Once
	sharedTable *Wavetable
	sharedErr   error
)

// SharedWavetable returns the process-wide table for core.SampleRate,
// building it on first use.
func SharedWavetable() (*Wavetable, error) {
	sharedOnce.Do(func() {
		sharedTable, sharedErr = NewWavetable(core.SampleRate)
	})

	return sharedTable, sharedErr
}

// NewWavetable synthesizes the tables for sampleRate.
//
// Partials are weighted by cos²((j-1)π/2h)/j to suppress the Gibbs overshoot,
// and each waveform group is normalized to unit peak. Every cycle is built
// by a single inverse FFT over the folded partial amplitudes.
func NewWavetable(sampleRate float64) (*Wavetable, error) {
	if !core.IsFinite(sampleRate) || sampleRate <= 0 {
		return nil, fmt.Errorf("osc: sample rate must be > 0 and finite: %f", sampleRate)
	}

	plan, err := algofft.NewPlan64(CycleLength)
	if err != nil {
		return nil, fmt.Errorf("osc: wavetable plan: %w", err)
	}

	wt := &Wavetable{
		sampleRate: sampleRate,
		data:       make([]float32, int(waveformCount)*groupLength),
	}

	bins := make([]complex128, CycleLength)
	cycle := make([]complex128, CycleLength)
	peaks := [waveformCount]float64{}
	raw := make([]float64, len(wt.data))

	last := 0
	for note := range NoteCount {
		h := partialCount(note, sampleRate)

		if note > 0 && h == last {
			for w := range waveformCount {
				dst := raw[int(w)*groupLength+note*CycleLength:][:CycleLength]
				copy(dst, raw[int(w)*groupLength+(note-1)*CycleLength:][:CycleLength])
			}

			continue
		}

		for w := range waveformCount {
			fillSpectrum(bins, h, w == Square)

			if err := plan.Inverse(cycle, bins); err != nil {
				return nil, fmt.Errorf("osc: wavetable synthesis: %w", err)
			}

			dst := raw[int(w)*groupLength+note*CycleLength:][:CycleLength]
			for k, c := range cycle {
				v := imag(c) * CycleLength
				dst[k] = v
				peaks[w] = math.Max(peaks[w], math.Abs(v))
			}
		}

		last = h
	}

	for w := range waveformCount {
		scale := 1.0
		if peaks[w] > 0 {
			scale = 1 / peaks[w]
		}

		group := raw[int(w)*groupLength:][:groupLength]
		out := wt.data[int(w)*groupLength:][:groupLength]
		for i, v := range group {
			out[i] = float32(v * scale)
		}
	}

	return wt, nil
}

// partialCount returns round((sr/2) / f(note)), the number of harmonics
// below Nyquist for note.
func partialCount(note int, sampleRate float64) int {
	return int(math.Round(core.Nyquist(sampleRate) / core.NoteToHz(float64(note))))
}

// fillSpectrum writes the amplitudes of h sine partials into bins so that
// the inverse transform's imaginary part is the waveform. Partials above the
// cycle length fold back onto their alias bin, as a direct table lookup of
// sin(2πjk/N) would.
func fillSpectrum(bins []complex128, h int, oddOnly bool) {
	clear(bins)

	for j := 1; j <= h; j++ {
		if oddOnly && j%2 == 0 {
			continue
		}

		m1 := math.Cos(float64(j-1) * math.Pi / (2 * float64(h)))
		bins[j%CycleLength] += complex(m1*m1/float64(j), 0)
	}
}

// SampleRate returns the rate the partial counts were derived for.
func (wt *Wavetable) SampleRate() float64 {
	return wt.sampleRate
}

// Cycle returns the stored cycle for waveform and note. Out-of-range
// arguments are clamped.
func (wt *Wavetable) Cycle(w Waveform, note int) []float32 {
	w = Waveform(max(0, min(int(w), int(waveformCount)-1)))
	note = max(0, min(note, NoteCount-1))

	off := int(w)*groupLength + note*CycleLength

	return wt.data[off : off+CycleLength : off+CycleLength]
}
