package dither

import (
	"fmt"
	"math"
	"math/rand/v2"
)

const (
	defaultBitDepth = 16
	minBitDepth     = 2
	maxBitDepth     = 32
)

type config struct {
	bitDepth int
	typ      Type
	feedback bool
	rng      *rand.Rand
}

// Option configures a [Quantizer].
type Option func(*config) error

// WithBitDepth sets the target bit depth (2..32, default 16).
func WithBitDepth(bits int) Option {
	return func(cfg *config) error {
		if bits < minBitDepth || bits > maxBitDepth {
			return fmt.Errorf("dither: bit depth must be in [%d, %d]: %d", minBitDepth, maxBitDepth, bits)
		}

		cfg.bitDepth = bits

		return nil
	}
}

// WithType sets the dither noise PDF (default [TypeTriangular]).
func WithType(t Type) Option {
	return func(cfg *config) error {
		if !t.Valid() {
			return fmt.Errorf("dither: invalid type: %d", int(t))
		}

		cfg.typ = t

		return nil
	}
}

// WithErrorFeedback subtracts the previous quantization error from each
// input, pushing the noise floor towards high frequencies.
func WithErrorFeedback(enabled bool) Option {
	return func(cfg *config) error {
		cfg.feedback = enabled
		return nil
	}
}

// WithRNG sets the noise source. Use a seeded generator for reproducible
// output.
func WithRNG(rng *rand.Rand) Option {
	return func(cfg *config) error {
		if rng == nil {
			return fmt.Errorf("dither: rng must not be nil")
		}

		cfg.rng = rng

		return nil
	}
}

// Quantizer converts samples in [-1, 1] to signed integers of one channel.
// It is not safe for concurrent use.
type Quantizer struct {
	bitDepth int
	typ      Type
	feedback bool
	rng      *rand.Rand

	scale   float64
	lo, hi  int
	lastErr float64
}

// NewQuantizer creates a quantizer. The default is 16 bits with triangular
// dither and no error feedback.
func NewQuantizer(opts ...Option) (*Quantizer, error) {
	cfg := config{bitDepth: defaultBitDepth, typ: TypeTriangular}
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if cfg.rng == nil {
		cfg.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	full := math.Exp2(float64(cfg.bitDepth - 1))

	return &Quantizer{
		bitDepth: cfg.bitDepth,
		typ:      cfg.typ,
		feedback: cfg.feedback,
		rng:      cfg.rng,
		scale:    full - 1,
		lo:       -int(full),
		hi:       int(full) - 1,
	}, nil
}

// ProcessInteger quantizes one sample. Inputs are clipped to [-1, 1] and
// non-finite inputs map to zero.
func (q *Quantizer) ProcessInteger(x float64) int {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		x = 0
	}

	scaled := q.scale * max(-1, min(1, x))
	if q.feedback {
		scaled -= q.lastErr
	}

	v := int(math.Round(scaled + q.noise()))
	v = max(q.lo, min(q.hi, v))

	if q.feedback {
		q.lastErr = float64(v) - scaled
	}

	return v
}

// ProcessBlock quantizes src into dst and returns the number of samples
// written.
func (q *Quantizer) ProcessBlock(dst []int, src []float64) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = q.ProcessInteger(src[i])
	}

	return n
}

// Reset clears the error feedback state.
func (q *Quantizer) Reset() {
	q.lastErr = 0
}

// BitDepth returns the target bit depth.
func (q *Quantizer) BitDepth() int { return q.bitDepth }

// Type returns the dither noise type.
func (q *Quantizer) Type() Type { return q.typ }

// Max returns the largest output value.
func (q *Quantizer) Max() int { return q.hi }

func (q *Quantizer) noise() float64 {
	switch q.typ {
	case TypeRectangular:
		return q.rng.Float64() - 0.5
	case TypeTriangular:
		return q.rng.Float64() - q.rng.Float64()
	default:
		return 0
	}
}
