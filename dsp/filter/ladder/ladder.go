package ladder

import (
	"fmt"
	"math"

	"github.com/thedjinn/wasm303/dsp/core"
	"github.com/thedjinn/wasm303/dsp/filter/onepole"
)

const (
	defaultCutoffHz           = 1000.0
	defaultResonance          = 0.0
	defaultFeedbackHighpassHz = 150.0
	maxResonance              = 1.0
	cutoffScale               = 0.11253953951963826 // 1/sqrt(2) / 2pi
	resonanceSkewExponent     = -3.0
	feedbackGainNormalization = 1.0 / 17.0
)

// Option mutates constructor configuration.
type Option func(*config) error

type config struct {
	cutoffHz           float64
	resonance          float64
	feedbackHighpassHz float64
}

func defaultConfig() config {
	return config{
		cutoffHz:           defaultCutoffHz,
		resonance:          defaultResonance,
		feedbackHighpassHz: defaultFeedbackHighpassHz,
	}
}

// WithCutoffHz sets the initial cutoff in Hz. Must be finite and > 0.
func WithCutoffHz(cutoffHz float64) Option {
	return func(cfg *config) error {
		if err := validateCutoff(cutoffHz); err != nil {
			return err
		}

		cfg.cutoffHz = cutoffHz

		return nil
	}
}

// WithResonance sets the initial resonance in [0, 1].
func WithResonance(resonance float64) Option {
	return func(cfg *config) error {
		if err := validateResonance(resonance); err != nil {
			return err
		}

		cfg.resonance = resonance

		return nil
	}
}

// WithFeedbackHighpassHz sets the cutoff of the high-pass in the feedback
// path. Must be finite and > 0.
func WithFeedbackHighpassHz(freqHz float64) Option {
	return func(cfg *config) error {
		if !core.IsFinite(freqHz) || freqHz <= 0 {
			return fmt.Errorf("ladder: feedback high-pass must be > 0 and finite: %f", freqHz)
		}

		cfg.feedbackHighpassHz = freqHz

		return nil
	}
}

// Coefficients are the derived per-cutoff terms of the ladder.
type Coefficients struct {
	B0 float64 // stage integration gain
	G  float64 // output makeup gain
	K  float64 // feedback gain after resonance scaling
}

// State contains the ladder runtime state for save/restore workflows.
type State struct {
	Stage      [5]float64
	FeedbackX1 float64
	FeedbackY1 float64
}

// Filter is a nonlinear 4-stage ladder low-pass.
type Filter struct {
	sampleRate float64

	cutoffHz        float64
	resonance       float64
	resonanceSkewed float64

	Coefficients

	y0, y1, y2, y3, y4 float64

	feedback *onepole.Filter
}

// New constructs a ladder filter.
func New(sampleRate float64, opts ...Option) (*Filter, error) {
	if !core.IsFinite(sampleRate) || sampleRate <= 0 {
		return nil, fmt.Errorf("ladder: sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	f := &Filter{
		sampleRate: sampleRate,
		feedback:   onepole.HighPass(cfg.feedbackHighpassHz, sampleRate),
	}

	f.setResonance(cfg.resonance)
	f.setCutoff(cfg.cutoffHz)

	return f, nil
}

// SampleRate returns the sample rate in Hz.
func (f *Filter) SampleRate() float64 { return f.sampleRate }

// CutoffHz returns the cutoff the coefficients were last derived from.
func (f *Filter) CutoffHz() float64 { return f.cutoffHz }

// Resonance returns the resonance in [0, 1].
func (f *Filter) Resonance() float64 { return f.resonance }

// ResonanceSkewed returns the resonance after the exponential skew curve.
func (f *Filter) ResonanceSkewed() float64 { return f.resonanceSkewed }

// SetResonance updates resonance. The new value is folded into the
// coefficients on the next SetCutoffHz call, matching a control-rate update.
func (f *Filter) SetResonance(resonance float64) error {
	if err := validateResonance(resonance); err != nil {
		return err
	}

	f.setResonance(resonance)

	return nil
}

// SetCutoffHz recomputes b0, g and k for cutoffHz.
func (f *Filter) SetCutoffHz(cutoffHz float64) error {
	if err := validateCutoff(cutoffHz); err != nil {
		return err
	}

	f.setCutoff(cutoffHz)

	return nil
}

// Reset clears ladder and feedback state.
func (f *Filter) Reset() {
	f.y0, f.y1, f.y2, f.y3, f.y4 = 0, 0, 0, 0, 0
	f.feedback.Reset()
}

// State returns a copy of the current processor state.
func (f *Filter) State() State {
	x1, y1 := f.feedback.State()

	return State{
		Stage:      [5]float64{f.y0, f.y1, f.y2, f.y3, f.y4},
		FeedbackX1: x1,
		FeedbackY1: y1,
	}
}

// SetState restores an externally saved processor state.
func (f *Filter) SetState(state State) error {
	for _, v := range state.Stage {
		if !core.IsFinite(v) {
			return fmt.Errorf("ladder: state contains NaN or Inf")
		}
	}

	if !core.IsFinite(state.FeedbackX1) || !core.IsFinite(state.FeedbackY1) {
		return fmt.Errorf("ladder: state contains NaN or Inf")
	}

	f.y0, f.y1, f.y2, f.y3, f.y4 = state.Stage[0], state.Stage[1], state.Stage[2], state.Stage[3], state.Stage[4]
	f.feedback.SetState(state.FeedbackX1, state.FeedbackY1)

	return nil
}

// ProcessSample processes one sample.
func (f *Filter) ProcessSample(x float64) float64 {
	b0 := f.B0

	f.y0 = x - f.feedback.ProcessSample(f.K*f.y4)
	f.y1 += 2*b0*(f.y0-f.y1+f.y2) + core.AntiDenormal
	f.y2 += b0*(f.y1-2*f.y2+f.y3) + core.AntiDenormal
	f.y3 += b0*(f.y2-2*f.y3+f.y4) + core.AntiDenormal
	f.y4 += b0*(f.y3-2*f.y4) + core.AntiDenormal

	return 2 * f.G * f.y4
}

// ProcessInPlace filters buf in place.
func (f *Filter) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = f.ProcessSample(x)
	}
}

func (f *Filter) setResonance(resonance float64) {
	f.resonance = resonance
	f.resonanceSkewed = (1 - math.Exp(resonanceSkewExponent*resonance)) /
		(1 - math.Exp(resonanceSkewExponent))
}

func (f *Filter) setCutoff(cutoffHz float64) {
	f.cutoffHz = cutoffHz
	f.Coefficients = Derive(cutoffHz, f.resonanceSkewed, f.sampleRate)
}

// Derive computes ladder coefficients for a cutoff and an already skewed
// resonance.
func Derive(cutoffHz, resonanceSkewed, sampleRate float64) Coefficients {
	wc := 2 * math.Pi / sampleRate * cutoffHz
	fx := wc * cutoffScale

	b0 := (0.00045522346 + 6.1922189*fx) / (1 + 12.358354*fx + 4.4156345*(fx*fx))

	k := fx*(fx*(fx*(fx*(fx*(fx+7198.6997)-5837.7917)-476.47308)+614.95611)+213.87126) + 16.998792
	g := ((k*feedbackGainNormalization-1)*resonanceSkewed + 1) * (1 + resonanceSkewed)

	return Coefficients{B0: b0, G: g, K: k * resonanceSkewed}
}

func validateCutoff(cutoffHz float64) error {
	if !core.IsFinite(cutoffHz) || cutoffHz <= 0 {
		return fmt.Errorf("ladder: cutoff must be > 0 and finite: %f", cutoffHz)
	}

	return nil
}

func validateResonance(resonance float64) error {
	if !core.IsFinite(resonance) || resonance < 0 || resonance > maxResonance {
		return fmt.Errorf("ladder: resonance must be in [0, %g]: %f", maxResonance, resonance)
	}

	return nil
}
