package effects

import (
	"fmt"
	"math"

	"github.com/thedjinn/wasm303/dsp/core"
)

const (
	defaultFoldbackAmount = 5.0 / 9.0 // threshold 0.5
	defaultFoldbackShape  = 0.5
	foldbackThresholdSpan = 0.9
)

// FoldbackOption mutates construction-time parameters.
type FoldbackOption func(*foldbackConfig) error

type foldbackConfig struct {
	amount float64
	shape  float64
}

// WithFoldbackAmount sets the drive amount in [0, 1]. The fold threshold is
// 1 - 0.9*amount and the output gain its reciprocal.
func WithFoldbackAmount(amount float64) FoldbackOption {
	return func(cfg *foldbackConfig) error {
		if err := validateUnit(amount, "amount"); err != nil {
			return err
		}

		cfg.amount = amount

		return nil
	}
}

// WithFoldbackShape sets the blend in [0, 1] between hard clipping (0) and
// folding the raw signal (1).
func WithFoldbackShape(shape float64) FoldbackOption {
	return func(cfg *foldbackConfig) error {
		if err := validateUnit(shape, "shape"); err != nil {
			return err
		}

		cfg.shape = shape

		return nil
	}
}

// Foldback is a stateless wave-folding saturator.
type Foldback struct {
	amount    float64
	shape     float64
	threshold float64
	gain      float64
}

// NewFoldback creates a saturator with threshold 0.5, gain 2 and shape 0.5.
func NewFoldback(opts ...FoldbackOption) (*Foldback, error) {
	cfg := foldbackConfig{amount: defaultFoldbackAmount, shape: defaultFoldbackShape}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	f := &Foldback{shape: cfg.shape}
	f.setAmount(cfg.amount)

	return f, nil
}

// SetAmount updates the drive amount in [0, 1].
func (f *Foldback) SetAmount(amount float64) error {
	if err := validateUnit(amount, "amount"); err != nil {
		return err
	}

	f.setAmount(amount)

	return nil
}

// SetShape updates the clip/fold blend in [0, 1].
func (f *Foldback) SetShape(shape float64) error {
	if err := validateUnit(shape, "shape"); err != nil {
		return err
	}

	f.shape = shape

	return nil
}

// Amount returns the drive amount.
func (f *Foldback) Amount() float64 { return f.amount }

// Shape returns the clip/fold blend.
func (f *Foldback) Shape() float64 { return f.shape }

// Threshold returns the fold threshold t.
func (f *Foldback) Threshold() float64 { return f.threshold }

// Gain returns the output gain 1/t.
func (f *Foldback) Gain() float64 { return f.gain }

// ProcessSample shapes one sample. Inputs within ±t are scaled by the gain.
// Larger inputs are blended toward the clipped value and then reflected by a
// triangle wave of period 4t, so the output never exceeds ±1.
func (f *Foldback) ProcessSample(x float64) float64 {
	if !core.IsFinite(x) {
		return 0
	}

	t := f.threshold
	if x <= t && x >= -t {
		return x * f.gain
	}

	a := (1-f.shape)*core.Sign(x)*t + f.shape*x

	// Euclidean remainder keeps the triangle in [-t, t] for negative input.
	m := math.Mod(a-t, 4*t)
	if m < 0 {
		m += 4 * t
	}

	folded := math.Abs(m-2*t) - t

	return folded * f.gain
}

// ProcessInPlace shapes buf in place.
func (f *Foldback) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = f.ProcessSample(x)
	}
}

func (f *Foldback) setAmount(amount float64) {
	f.amount = amount
	f.threshold = 1 - foldbackThresholdSpan*amount
	f.gain = 1 / f.threshold
}

func validateUnit(v float64, name string) error {
	if !core.IsFinite(v) || v < 0 || v > 1 {
		return fmt.Errorf("effects: %s must be in [0, 1]: %f", name, v)
	}

	return nil
}
