package osc

import (
	"math"

	"github.com/thedjinn/wasm303/dsp/core"
)

// SlideSteps is the number of Update calls a portamento glide takes.
const SlideSteps = 64

// VCO reads a wavetable cycle with linear interpolation. Its pitch is either
// reset instantly or glided over SlideSteps control updates.
type VCO struct {
	table      *Wavetable
	sampleRate float64

	waveform Waveform
	cycle    []float32

	phase     float64
	increment float64

	slideDelta     float64
	slideRemaining int
	targetInc      float64
	targetCycle    []float32
}

// NewVCO returns an oscillator reading from table, silent until Reset.
func NewVCO(table *Wavetable) *VCO {
	return &VCO{
		table:      table,
		sampleRate: table.SampleRate(),
		cycle:      table.Cycle(Sawtooth, 0),
	}
}

// SetWaveform selects the waveform used by the next Reset or completed
// slide. Values outside the known range are clamped.
func (v *VCO) SetWaveform(w Waveform) {
	v.waveform = Waveform(max(0, min(int(w), int(waveformCount)-1)))
}

// Waveform returns the selected waveform.
func (v *VCO) Waveform() Waveform {
	return v.waveform
}

// Reset jumps to pitch (a MIDI note, possibly fractional), restarts the
// phase at zero and cancels any glide.
func (v *VCO) Reset(pitch float64) {
	v.phase = 0
	v.increment = v.incrementFor(pitch)
	v.cycle = v.table.Cycle(v.waveform, noteIndex(pitch))

	v.slideDelta = 0
	v.slideRemaining = 0
	v.targetCycle = nil
}

// Slide starts a linear glide of the phase increment toward pitch. The
// phase is kept so the waveform stays continuous; the table switches to the
// target note once the glide completes.
func (v *VCO) Slide(pitch float64) {
	v.targetInc = v.incrementFor(pitch)
	v.targetCycle = v.table.Cycle(v.waveform, noteIndex(pitch))
	v.slideDelta = (v.increment - v.targetInc) / SlideSteps
	v.slideRemaining = SlideSteps
}

// Render returns the next sample and advances the phase.
func (v *VCO) Render() float64 {
	i := int(v.phase)
	r := v.phase - float64(i)
	a := float64(v.cycle[i&cycleMask])
	b := float64(v.cycle[(i+1)&cycleMask])

	v.phase += v.increment
	if v.phase >= CycleLength {
		v.phase -= CycleLength
	}

	return (1-r)*a + r*b
}

// Update advances the glide by one step. Call it once per control block.
func (v *VCO) Update() {
	if v.slideRemaining == 0 {
		return
	}

	v.slideRemaining--
	if v.slideRemaining > 0 {
		v.increment -= v.slideDelta
		return
	}

	v.increment = v.targetInc
	v.cycle = v.targetCycle
	v.targetCycle = nil
}

// Gliding reports whether a slide is in progress.
func (v *VCO) Gliding() bool {
	return v.slideRemaining > 0
}

// Phase returns the read position within the cycle, in samples.
func (v *VCO) Phase() float64 {
	return v.phase
}

// Increment returns the per-sample phase increment.
func (v *VCO) Increment() float64 {
	return v.increment
}

// Frequency returns the current oscillator frequency in Hz.
func (v *VCO) Frequency() float64 {
	return v.increment * v.sampleRate / CycleLength
}

func (v *VCO) incrementFor(pitch float64) float64 {
	inc := core.NoteToHz(pitch) * CycleLength / v.sampleRate
	if !core.IsFinite(inc) || inc < 0 {
		return 0
	}

	// Keep at least one sample per cycle so the phase wrap stays a single
	// subtraction.
	return math.Min(inc, CycleLength-1)
}

func noteIndex(pitch float64) int {
	if !core.IsFinite(pitch) {
		return 0
	}

	return max(0, min(int(math.Round(pitch)), NoteCount-1))
}
