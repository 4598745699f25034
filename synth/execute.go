package synth

import (
	"fmt"

	"github.com/thedjinn/wasm303/dsp/core"
	"github.com/thedjinn/wasm303/dsp/osc"
	"github.com/thedjinn/wasm303/dsp/seq"
	"github.com/thedjinn/wasm303/vm"
)

// Execute applies one instruction. Rejected values return an error wrapping
// ErrInvalidParameter or a seq index error and leave the voice unchanged.
// Notification opcodes and Nop are ignored.
func (v *Voice) Execute(in vm.Instruction) error {
	switch in.Op.Kind() {
	case vm.KindU32:
		u, _ := in.U32()
		return v.executeU32(in.Op, u)
	case vm.KindF32:
		f, _ := in.F32()
		return v.executeF32(in.Op, float64(f))
	default:
		return nil
	}
}

func (v *Voice) executeU32(op vm.Opcode, u uint32) error {
	switch op {
	case vm.SetWaveformIndex:
		v.vco.SetWaveform(osc.Waveform(min(u, uint32(osc.Square))))
	case vm.SetDelayLength:
		if u == 0 {
			return fmt.Errorf("%w: delay length must be > 0", ErrInvalidParameter)
		}

		v.delay.SetLength(int(min(u, uint32(v.delay.Capacity()))))
	case vm.SetRunning:
		if u != 0 {
			v.sequencer.Start()
		} else {
			v.sequencer.Stop()
		}
	case vm.SetStepData:
		pattern, index, pitch, flags := vm.UnpackStep(u)
		if err := v.sequencer.SetStep(pattern, index, seq.StepFromFlags(pitch, flags)); err != nil {
			return fmt.Errorf("synth: %v: %w", op, err)
		}
	case vm.SetNextPattern:
		if err := v.sequencer.SetNextPattern(int(min(u, 0xff))); err != nil {
			return fmt.Errorf("synth: %v: %w", op, err)
		}
	case vm.SetPatternLength:
		pattern, length := vm.UnpackPatternLength(u)
		if err := v.sequencer.SetPatternLength(pattern, length); err != nil {
			return fmt.Errorf("synth: %v: %w", op, err)
		}
	}

	return nil
}

//nolint:cyclop
func (v *Voice) executeF32(op vm.Opcode, f float64) error {
	if !core.IsFinite(f) {
		return fmt.Errorf("%w: %v value must be finite: %f", ErrInvalidParameter, op, f)
	}

	switch op {
	case vm.SetCutoff:
		return v.SetCutoff(f)
	case vm.SetResonance:
		return v.SetResonance(f)
	case vm.SetEnvMod:
		return v.SetEnvMod(f)
	case vm.SetDecay:
		return v.SetDecay(f)
	case vm.SetTempo:
		return v.SetTempo(f)
	case vm.SetTuning:
		return v.SetTuning(f)
	case vm.SetAccent:
		return v.SetAccent(f)
	case vm.SetDistortionThreshold:
		return wrapInvalid(v.foldback.SetAmount(f))
	case vm.SetDistortionShape:
		return wrapInvalid(v.foldback.SetShape(f))
	case vm.SetDelaySend:
		return wrapInvalid(v.delay.SetSend(f))
	case vm.SetDelayFeedback:
		return wrapInvalid(v.delay.SetFeedback(f))
	}

	return nil
}

// SetCutoff sets the base cutoff in (0, core.MaxCutoffHz]. The ladder picks
// it up at the next control tick.
func (v *Voice) SetCutoff(hz float64) error {
	if !core.IsFinite(hz) || hz <= 0 || hz > core.MaxCutoffHz {
		return fmt.Errorf("%w: cutoff must be in (0, %g]: %f", ErrInvalidParameter, core.MaxCutoffHz, hz)
	}

	v.cutoff = hz
	v.updateEnvModCoefficients()

	return nil
}

// SetResonance sets the ladder resonance in [0, 1].
func (v *Voice) SetResonance(r float64) error {
	if err := v.ladder.SetResonance(r); err != nil {
		return wrapInvalid(err)
	}

	v.resonance = r

	return nil
}

// SetEnvMod sets the envelope modulation depth in [0, 1].
func (v *Voice) SetEnvMod(depth float64) error {
	if err := validateUnit(depth, "envmod"); err != nil {
		return err
	}

	v.envMod = depth
	v.updateEnvModCoefficients()

	return nil
}

// SetDecay sets the amplitude decay in milliseconds. It applies from the
// next step.
func (v *Voice) SetDecay(ms float64) error {
	if !core.IsFinite(ms) || ms <= 0 {
		return fmt.Errorf("%w: decay must be > 0: %f", ErrInvalidParameter, ms)
	}

	v.decay = ms

	return nil
}

// SetTempo sets the sequencer tempo in BPM.
func (v *Voice) SetTempo(bpm float64) error {
	if err := v.sequencer.SetTempo(bpm); err != nil {
		return wrapInvalid(err)
	}

	v.tempo = bpm

	return nil
}

// SetTuning sets the transposition in semitones. It applies from the next
// step.
func (v *Voice) SetTuning(semitones float64) error {
	if !core.IsFinite(semitones) || semitones < -maxTuningSemis || semitones > maxTuningSemis {
		return fmt.Errorf("%w: tuning must be in [-%g, %g]: %f", ErrInvalidParameter, maxTuningSemis, maxTuningSemis, semitones)
	}

	v.tuning = semitones

	return nil
}

// SetAccent sets the accent amount in [0, 1]. It applies from the next
// accented step.
func (v *Voice) SetAccent(amount float64) error {
	if err := validateUnit(amount, "accent"); err != nil {
		return err
	}

	v.accent = amount

	return nil
}

func validateUnit(x float64, name string) error {
	if !core.IsFinite(x) || x < 0 || x > 1 {
		return fmt.Errorf("%w: %s must be in [0, 1]: %f", ErrInvalidParameter, name, x)
	}

	return nil
}

func wrapInvalid(err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%w: %w", ErrInvalidParameter, err)
}
