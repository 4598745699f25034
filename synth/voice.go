package synth

import (
	"errors"
	"fmt"
	"math"

	approx "github.com/meko-christian/algo-approx"

	"github.com/thedjinn/wasm303/dsp/core"
	"github.com/thedjinn/wasm303/dsp/effects"
	"github.com/thedjinn/wasm303/dsp/filter/biquad"
	"github.com/thedjinn/wasm303/dsp/filter/design"
	"github.com/thedjinn/wasm303/dsp/filter/ladder"
	"github.com/thedjinn/wasm303/dsp/filter/onepole"
	"github.com/thedjinn/wasm303/dsp/osc"
	"github.com/thedjinn/wasm303/dsp/seq"
	"github.com/thedjinn/wasm303/vm"
)

const (
	defaultCutoff    = 450.0
	defaultResonance = 0.9
	defaultEnvMod    = 0.7
	defaultDecay     = 150.0
	defaultAccent    = 0.2

	accentDecayMs  = 200.0
	accentGainMult = 4.0

	highpass1Hz    = 44.486
	allpassHz      = 14.008
	highpass2Hz    = 24.167
	notchHz        = 7.5164
	notchOctaves   = 4.7
	declickerHz    = 200.0
	maxTuningSemis = 48.0

	// Fit of the envelope-to-cutoff mapping over the cutoff knob range
	// [envC0, envC1].
	envC0       = 313.8152786059267
	envC1       = 2394.411986817546
	envSloScale = 3.773996325111173
	envSloBias  = 0.736965594166206
	envShiScale = 4.194548788411135
	envShiBias  = 0.864344900642434
	envOffScale = 0.048292930943553
	envOffBias  = 0.294391201442418
)

// ErrInvalidParameter is wrapped by Execute when a parameter value is
// rejected. The voice state is left unchanged.
var ErrInvalidParameter = errors.New("synth: invalid parameter")

// Emitter receives notifications produced while rendering.
type Emitter interface {
	Emit(in vm.Instruction)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(in vm.Instruction)

// Emit calls f(in).
func (f EmitterFunc) Emit(in vm.Instruction) { f(in) }

type discardEmitter struct{}

func (discardEmitter) Emit(vm.Instruction) {}

// Option mutates constructor configuration.
type Option func(*config) error

type config struct {
	emitter   Emitter
	wavetable *osc.Wavetable
	sequencer *seq.Sequencer
}

// WithEmitter sets the notification sink. The default discards them.
func WithEmitter(e Emitter) Option {
	return func(cfg *config) error {
		if e == nil {
			return fmt.Errorf("synth: emitter must not be nil")
		}

		cfg.emitter = e

		return nil
	}
}

// WithWavetable overrides the shared wavetable.
func WithWavetable(wt *osc.Wavetable) Option {
	return func(cfg *config) error {
		if wt == nil {
			return fmt.Errorf("synth: wavetable must not be nil")
		}

		if wt.SampleRate() != core.SampleRate {
			return fmt.Errorf("synth: wavetable sample rate %f does not match %f", wt.SampleRate(), core.SampleRate)
		}

		cfg.wavetable = wt

		return nil
	}
}

// WithSequencer replaces the default demo sequencer.
func WithSequencer(s *seq.Sequencer) Option {
	return func(cfg *config) error {
		if s == nil {
			return fmt.Errorf("synth: sequencer must not be nil")
		}

		cfg.sequencer = s

		return nil
	}
}

// Params is a snapshot of the user-facing voice parameters.
type Params struct {
	Waveform       int     `json:"waveform"`
	Cutoff         float64 `json:"cutoff"`
	Resonance      float64 `json:"resonance"`
	EnvMod         float64 `json:"envmod"`
	Decay          float64 `json:"decay"`
	Accent         float64 `json:"accent"`
	Tuning         float64 `json:"tuning"`
	Tempo          float64 `json:"tempo"`
	Distortion     float64 `json:"distortion"`
	DistortionMix  float64 `json:"distortionShape"`
	DelaySend      float64 `json:"delaySend"`
	DelayFeedback  float64 `json:"delayFeedback"`
	DelayLength    int     `json:"delayLength"`
	Running        bool    `json:"running"`
	PatternLength  int     `json:"patternLength"`
	CurrentPattern int     `json:"currentPattern"`
}

// Voice is the monophonic synth voice. It is not safe for concurrent use.
type Voice struct {
	sampleRate float64

	cutoff    float64
	resonance float64
	envMod    float64
	decay     float64
	accent    float64
	tuning    float64
	tempo     float64

	sequencer *seq.Sequencer
	vco       *osc.VCO
	foldback  *effects.Foldback
	delay     *effects.Delay
	emitter   Emitter

	accentGain float64

	ampEnv  float64
	ampMult float64

	filterEnv  float64
	filterMult float64

	envScaler float64
	envOffset float64

	effectiveCutoff float64

	highpass1 *onepole.Filter
	allpass   *onepole.Filter
	highpass2 *onepole.Filter
	ladder    *ladder.Filter
	notch     *biquad.Section
	declicker *biquad.Section

	samples uint64
}

// New creates a voice with the default parameters and the demo pattern.
func New(opts ...Option) (*Voice, error) {
	cfg := config{emitter: discardEmitter{}}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if cfg.wavetable == nil {
		wt, err := osc.SharedWavetable()
		if err != nil {
			return nil, fmt.Errorf("synth: %w", err)
		}

		cfg.wavetable = wt
	}

	if cfg.sequencer == nil {
		cfg.sequencer = seq.New()
	}

	sr := core.SampleRate

	lf, err := ladder.New(sr, ladder.WithCutoffHz(defaultCutoff), ladder.WithResonance(defaultResonance))
	if err != nil {
		return nil, fmt.Errorf("synth: %w", err)
	}

	fb, err := effects.NewFoldback()
	if err != nil {
		return nil, fmt.Errorf("synth: %w", err)
	}

	dl, err := effects.NewDelay(sr)
	if err != nil {
		return nil, fmt.Errorf("synth: %w", err)
	}

	v := &Voice{
		sampleRate: sr,
		cutoff:     defaultCutoff,
		resonance:  defaultResonance,
		envMod:     defaultEnvMod,
		decay:      defaultDecay,
		accent:     defaultAccent,
		tempo:      seq.DefaultTempo,
		sequencer:  cfg.sequencer,
		vco:        osc.NewVCO(cfg.wavetable),
		foldback:   fb,
		delay:      dl,
		emitter:    cfg.emitter,
		highpass1:  onepole.HighPass(highpass1Hz, sr),
		allpass:    onepole.AllPass(allpassHz, sr),
		highpass2:  onepole.HighPass(highpass2Hz, sr),
		ladder:     lf,
		notch:      biquad.NewSection(design.Notch(notchHz, notchOctaves, sr)),
		declicker:  biquad.NewSection(design.Lowpass12(declickerHz, math.Sqrt2/2, sr)),
	}

	v.vco.SetWaveform(osc.Sawtooth)
	v.effectiveCutoff = defaultCutoff
	v.updateEnvModCoefficients()

	return v, nil
}

// Render produces the next output sample.
func (v *Voice) Render() float64 {
	if step, ok := v.sequencer.Advance(); ok {
		v.trigger(step)
	}

	v.ampEnv = v.ampEnv*v.ampMult + core.AntiDenormal
	v.filterEnv = v.filterEnv*v.filterMult + core.AntiDenormal

	x := v.vco.Render()

	if v.samples%core.ControlBlockSize == 0 {
		v.vco.Update()
		v.updateCutoff()
	}
	v.samples++

	x = v.highpass1.ProcessSample(x)
	x = v.ladder.ProcessSample(x)
	x = v.allpass.ProcessSample(x)
	x = v.highpass2.ProcessSample(x)
	x = v.notch.ProcessSample(x)

	gain := v.declicker.ProcessSample((v.accentGain*accentGainMult + 1) * v.ampEnv)
	x *= gain

	x = v.foldback.ProcessSample(x)

	return v.delay.ProcessSample(x)
}

// RenderBlock fills dst with consecutive samples.
func (v *Voice) RenderBlock(dst []float64) {
	for i := range dst {
		dst[i] = v.Render()
	}
}

func (v *Voice) trigger(step *seq.Step) {
	v.ampMult = decayMultiplier(v.decay, v.sampleRate)

	if step.Accent {
		v.filterMult = decayMultiplier(accentDecayMs, v.sampleRate)
		v.accentGain = v.accent
	} else {
		v.filterMult = v.ampMult
		v.accentGain = 0
	}

	if step.Enabled {
		v.ampEnv = 1 / v.ampMult
	} else {
		v.ampEnv = 0
	}

	pitch := step.Note() + v.tuning

	if step.Slide {
		v.vco.Slide(pitch)
	} else {
		v.filterEnv = 1 / v.filterMult
		v.vco.Reset(pitch)
	}

	v.emitter.Emit(vm.NewU32(vm.SetSequencerStep, uint32(v.sequencer.PatternPosition())))
}

// updateCutoff applies the filter envelope to the ladder cutoff. A cutoff
// the ladder rejects leaves the previous one in place.
func (v *Voice) updateCutoff() {
	e := v.envScaler*(v.filterEnv-v.envOffset) + v.accentGain*v.filterEnv
	fc := math.Min(v.cutoff*approx.FastExp(e*math.Ln2), core.MaxCutoffHz)

	if err := v.ladder.SetCutoffHz(fc); err != nil {
		return
	}

	v.effectiveCutoff = fc
}

func (v *Voice) updateEnvModCoefficients() {
	c := math.Log(v.cutoff/envC0) / math.Log(envC1/envC0)

	slo := envSloScale*v.envMod + envSloBias
	shi := envShiScale*v.envMod + envShiBias

	v.envScaler = (1-c)*slo + c*shi
	v.envOffset = envOffScale*c + envOffBias
}

func decayMultiplier(ms, sampleRate float64) float64 {
	return math.Exp(-1 / (0.001 * ms * sampleRate))
}

// Cutoff returns the base cutoff in Hz.
func (v *Voice) Cutoff() float64 { return v.cutoff }

// Resonance returns the resonance in [0, 1].
func (v *Voice) Resonance() float64 { return v.resonance }

// EnvMod returns the envelope modulation depth in [0, 1].
func (v *Voice) EnvMod() float64 { return v.envMod }

// Decay returns the amplitude decay time in milliseconds.
func (v *Voice) Decay() float64 { return v.decay }

// Accent returns the accent amount in [0, 1].
func (v *Voice) Accent() float64 { return v.accent }

// Tuning returns the transposition in semitones.
func (v *Voice) Tuning() float64 { return v.tuning }

// Tempo returns the sequencer tempo in BPM.
func (v *Voice) Tempo() float64 { return v.tempo }

// Waveform returns the selected oscillator waveform.
func (v *Voice) Waveform() osc.Waveform { return v.vco.Waveform() }

// LadderCoefficients returns the current ladder filter coefficients.
func (v *Voice) LadderCoefficients() ladder.Coefficients { return v.ladder.Coefficients }

// EffectiveCutoff returns the modulated cutoff applied at the last control
// tick.
func (v *Voice) EffectiveCutoff() float64 { return v.effectiveCutoff }

// EnvelopeCoefficients returns the envelope scaler and offset derived from
// cutoff and envmod.
func (v *Voice) EnvelopeCoefficients() (scaler, offset float64) {
	return v.envScaler, v.envOffset
}

// AmplitudeEnvelope returns the current amplitude envelope value.
func (v *Voice) AmplitudeEnvelope() float64 { return v.ampEnv }

// FilterEnvelope returns the current filter envelope value.
func (v *Voice) FilterEnvelope() float64 { return v.filterEnv }

// Sequencer returns the voice's sequencer.
func (v *Voice) Sequencer() *seq.Sequencer { return v.sequencer }

// VCO returns the voice's oscillator.
func (v *Voice) VCO() *osc.VCO { return v.vco }

// Delay returns the voice's delay effect.
func (v *Voice) Delay() *effects.Delay { return v.delay }

// Foldback returns the voice's saturator.
func (v *Voice) Foldback() *effects.Foldback { return v.foldback }

// SampleCount returns the number of rendered samples.
func (v *Voice) SampleCount() uint64 { return v.samples }

// Params returns a snapshot of the user-facing parameters.
func (v *Voice) Params() Params {
	current := v.sequencer.CurrentPattern()
	pattern, _ := v.sequencer.Pattern(current)

	return Params{
		Waveform:       int(v.vco.Waveform()),
		Cutoff:         v.cutoff,
		Resonance:      v.resonance,
		EnvMod:         v.envMod,
		Decay:          v.decay,
		Accent:         v.accent,
		Tuning:         v.tuning,
		Tempo:          v.tempo,
		Distortion:     v.foldback.Amount(),
		DistortionMix:  v.foldback.Shape(),
		DelaySend:      v.delay.Send(),
		DelayFeedback:  v.delay.Feedback(),
		DelayLength:    v.delay.Length(),
		Running:        v.sequencer.Running(),
		PatternLength:  pattern.Length,
		CurrentPattern: current,
	}
}
