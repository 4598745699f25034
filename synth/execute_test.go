package synth

import (
	"errors"
	"math"
	"testing"

	"github.com/thedjinn/wasm303/dsp/osc"
	"github.com/thedjinn/wasm303/dsp/seq"
	"github.com/thedjinn/wasm303/vm"
)

func TestExecuteAppliesParameters(t *testing.T) {
	tests := []struct {
		name  string
		in    vm.Instruction
		check func(v *Voice) bool
	}{
		{"cutoff", vm.NewF32(vm.SetCutoff, 1000), func(v *Voice) bool { return v.Cutoff() == 1000 }},
		{"resonance", vm.NewF32(vm.SetResonance, 0.5), func(v *Voice) bool {
			return v.Resonance() == 0.5 && v.ladder.Resonance() == 0.5
		}},
		{"envmod", vm.NewF32(vm.SetEnvMod, 0.25), func(v *Voice) bool { return v.EnvMod() == 0.25 }},
		{"decay", vm.NewF32(vm.SetDecay, 800), func(v *Voice) bool { return v.Decay() == 800 }},
		{"tempo", vm.NewF32(vm.SetTempo, 60), func(v *Voice) bool {
			return v.Tempo() == 60 && v.Sequencer().StepLength() == 11025
		}},
		{"tuning", vm.NewF32(vm.SetTuning, -7), func(v *Voice) bool { return v.Tuning() == -7 }},
		{"accent", vm.NewF32(vm.SetAccent, 1), func(v *Voice) bool { return v.Accent() == 1 }},
		{"distortion", vm.NewF32(vm.SetDistortionThreshold, 1), func(v *Voice) bool {
			return math.Abs(v.Foldback().Threshold()-0.1) < 1e-7
		}},
		{"shape", vm.NewF32(vm.SetDistortionShape, 0.75), func(v *Voice) bool { return v.Foldback().Shape() == 0.75 }},
		{"send", vm.NewF32(vm.SetDelaySend, 0.125), func(v *Voice) bool { return v.Delay().Send() == 0.125 }},
		{"feedback", vm.NewF32(vm.SetDelayFeedback, 0.25), func(v *Voice) bool { return v.Delay().Feedback() == 0.25 }},
		{"waveform", vm.NewU32(vm.SetWaveformIndex, 1), func(v *Voice) bool { return v.Waveform() == osc.Square }},
		{"waveform clamp", vm.NewU32(vm.SetWaveformIndex, 9), func(v *Voice) bool { return v.Waveform() == osc.Square }},
		{"delay length", vm.NewU32(vm.SetDelayLength, 4410), func(v *Voice) bool { return v.Delay().Length() == 4410 }},
		{"delay length clamp", vm.NewU32(vm.SetDelayLength, 1<<30), func(v *Voice) bool {
			return v.Delay().Length() == v.Delay().Capacity()
		}},
		{"stop", vm.NewU32(vm.SetRunning, 0), func(v *Voice) bool { return !v.Sequencer().Running() }},
		{"next pattern", vm.NewU32(vm.SetNextPattern, 5), func(v *Voice) bool { return v.Sequencer().NextPattern() == 5 }},
		{"pattern length", vm.NewU32(vm.SetPatternLength, vm.PackPatternLength(2, 7)), func(v *Voice) bool {
			p, _ := v.Sequencer().Pattern(2)
			return p.Length == 7
		}},
		{"step data", vm.NewU32(vm.SetStepData, vm.PackStep(1, 3, 41, seq.FlagEnabled|seq.FlagSlide)), func(v *Voice) bool {
			s, _ := v.Sequencer().Step(1, 3)
			return s == seq.Step{Pitch: 41, Enabled: true, Slide: true}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := mustVoice(t)
			if err := v.Execute(tt.in); err != nil {
				t.Fatalf("Execute(%v) error = %v", tt.in.Op, err)
			}
			if !tt.check(v) {
				t.Fatalf("Execute(%v) had no effect", tt.in.Op)
			}
		})
	}
}

func TestExecuteRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		in   vm.Instruction
		want error
	}{
		{"nan cutoff", vm.NewF32(vm.SetCutoff, float32(math.NaN())), ErrInvalidParameter},
		{"zero cutoff", vm.NewF32(vm.SetCutoff, 0), ErrInvalidParameter},
		{"huge cutoff", vm.NewF32(vm.SetCutoff, 30000), ErrInvalidParameter},
		{"resonance", vm.NewF32(vm.SetResonance, 1.5), ErrInvalidParameter},
		{"envmod", vm.NewF32(vm.SetEnvMod, -0.1), ErrInvalidParameter},
		{"decay", vm.NewF32(vm.SetDecay, 0), ErrInvalidParameter},
		{"tempo", vm.NewF32(vm.SetTempo, -120), ErrInvalidParameter},
		{"inf tuning", vm.NewF32(vm.SetTuning, float32(math.Inf(1))), ErrInvalidParameter},
		{"tuning range", vm.NewF32(vm.SetTuning, 100), ErrInvalidParameter},
		{"accent", vm.NewF32(vm.SetAccent, 2), ErrInvalidParameter},
		{"distortion", vm.NewF32(vm.SetDistortionThreshold, 3), ErrInvalidParameter},
		{"shape", vm.NewF32(vm.SetDistortionShape, -1), ErrInvalidParameter},
		{"send", vm.NewF32(vm.SetDelaySend, 1.5), ErrInvalidParameter},
		{"feedback", vm.NewF32(vm.SetDelayFeedback, -0.5), ErrInvalidParameter},
		{"delay length", vm.NewU32(vm.SetDelayLength, 0), ErrInvalidParameter},
		{"step pattern", vm.NewU32(vm.SetStepData, vm.PackStep(9, 0, 36, 1)), seq.ErrPatternIndex},
		{"step index", vm.NewU32(vm.SetStepData, vm.PackStep(0, 20, 36, 1)), seq.ErrStepIndex},
		{"next pattern", vm.NewU32(vm.SetNextPattern, 8), seq.ErrPatternIndex},
		{"pattern length", vm.NewU32(vm.SetPatternLength, vm.PackPatternLength(0, 0)), seq.ErrPatternLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := mustVoice(t)
			before := v.Params()

			err := v.Execute(tt.in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Execute(%v) error = %v, want %v", tt.in.Op, err, tt.want)
			}
			if v.Params() != before {
				t.Fatalf("rejected %v changed parameters", tt.in.Op)
			}
		})
	}
}

func TestExecuteIgnoresNotificationsAndNop(t *testing.T) {
	v := mustVoice(t)
	before := v.Params()

	for _, in := range []vm.Instruction{
		{Op: vm.Nop},
		{Op: vm.BootstrapFinished},
		vm.NewU32(vm.SetSequencerStep, 3),
	} {
		if err := v.Execute(in); err != nil {
			t.Fatalf("Execute(%v) error = %v", in.Op, err)
		}
	}

	if v.Params() != before {
		t.Fatal("notifications changed the voice")
	}
}
