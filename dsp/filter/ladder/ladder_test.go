package ladder

import (
	"math"
	"testing"

	"github.com/thedjinn/wasm303/internal/testutil"
)

const sr = 44100.0

func mustNew(t *testing.T, opts ...Option) *Filter {
	t.Helper()

	f, err := New(sr, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return f
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name string
		sr   float64
		opts []Option
	}{
		{"zero sample rate", 0, nil},
		{"nan sample rate", math.NaN(), nil},
		{"negative cutoff", sr, []Option{WithCutoffHz(-1)}},
		{"inf cutoff", sr, []Option{WithCutoffHz(math.Inf(1))}},
		{"resonance above one", sr, []Option{WithResonance(1.5)}},
		{"negative resonance", sr, []Option{WithResonance(-0.1)}},
		{"zero feedback highpass", sr, []Option{WithFeedbackHighpassHz(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.sr, tt.opts...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	f := mustNew(t)
	if f.CutoffHz() != defaultCutoffHz || f.Resonance() != 0 || f.SampleRate() != sr {
		t.Fatalf("unexpected defaults: cutoff=%v resonance=%v sr=%v", f.CutoffHz(), f.Resonance(), f.SampleRate())
	}
	if f.K != 0 || f.G != 1 {
		t.Fatalf("zero resonance should disable feedback: %+v", f.Coefficients)
	}
}

func TestResonanceSkew(t *testing.T) {
	f := mustNew(t, WithResonance(1))
	if got := f.ResonanceSkewed(); math.Abs(got-1) > 1e-12 {
		t.Fatalf("skew(1) = %v, want 1", got)
	}

	if err := f.SetResonance(0.5); err != nil {
		t.Fatal(err)
	}
	want := (1 - math.Exp(-1.5)) / (1 - math.Exp(-3))
	if got := f.ResonanceSkewed(); math.Abs(got-want) > 1e-12 {
		t.Fatalf("skew(0.5) = %v, want %v", got, want)
	}
}

func TestDeriveMatchesReferencePoint(t *testing.T) {
	c := Derive(1000, 1, sr)

	fx := 2 * math.Pi * 1000 / sr * cutoffScale
	b0 := (0.00045522346 + 6.1922189*fx) / (1 + 12.358354*fx + 4.4156345*fx*fx)
	if math.Abs(c.B0-b0) > 1e-15 {
		t.Fatalf("B0 = %v, want %v", c.B0, b0)
	}

	// At full resonance the makeup gain is k/17 * 2.
	if math.Abs(c.G-2*c.K/17) > 1e-12 {
		t.Fatalf("G = %v, K = %v", c.G, c.K)
	}
}

func TestSetCutoffChangesCoefficients(t *testing.T) {
	f := mustNew(t, WithResonance(0.9))
	before := f.Coefficients

	if err := f.SetCutoffHz(450); err != nil {
		t.Fatal(err)
	}
	if f.Coefficients == before {
		t.Fatal("coefficients unchanged after SetCutoffHz")
	}

	if err := f.SetCutoffHz(0); err == nil {
		t.Fatal("expected error for zero cutoff")
	}
	if f.CutoffHz() != 450 {
		t.Fatalf("invalid cutoff must not change state, got %v", f.CutoffHz())
	}
}

func TestLowpassMonotonicAtZeroResonance(t *testing.T) {
	// Ten seconds of input; only the second half is measured so the onset
	// transient has decayed at the lowest cutoffs.
	in := testutil.DeterministicSine(5000, sr, 0.5, 10*int(sr))
	cutoffs := []float64{4000, 2000, 1000, 500, 250, 125, 60}

	prev := math.Inf(1)
	for _, fc := range cutoffs {
		f := mustNew(t, WithCutoffHz(fc))
		out := append([]float64(nil), in...)
		f.ProcessInPlace(out)

		rms := testutil.RMS(out[len(out)/2:])
		if !(rms < prev) {
			t.Fatalf("cutoff %v: rms %v not below %v", fc, rms, prev)
		}
		prev = rms
	}
}

func TestPassbandGainAtZeroResonance(t *testing.T) {
	f := mustNew(t, WithCutoffHz(2000))

	var y float64
	for range 20000 {
		y = f.ProcessSample(1)
	}

	if math.Abs(y-2) > 1e-6 {
		t.Fatalf("DC output = %v, want 2", y)
	}
}

func TestFullResonanceStaysFinite(t *testing.T) {
	f := mustNew(t, WithResonance(1))
	noise := testutil.DeterministicNoise(5, 1, 44100)

	for i := 0; i < len(noise); i += 64 {
		fc := 20 + 19980*float64(i)/float64(len(noise))
		if err := f.SetCutoffHz(fc); err != nil {
			t.Fatal(err)
		}

		end := min(i+64, len(noise))
		f.ProcessInPlace(noise[i:end])
	}

	testutil.RequireFinite(t, noise)
}

func TestStateRoundTrip(t *testing.T) {
	f := mustNew(t, WithResonance(0.7), WithCutoffHz(800))
	in := testutil.DeterministicNoise(9, 0.5, 256)
	f.ProcessInPlace(append([]float64(nil), in...))

	saved := f.State()
	a := append([]float64(nil), in...)
	f.ProcessInPlace(a)

	if err := f.SetState(saved); err != nil {
		t.Fatal(err)
	}
	b := append([]float64(nil), in...)
	f.ProcessInPlace(b)

	testutil.RequireSliceNearlyEqual(t, a, b, 0)

	bad := saved
	bad.Stage[2] = math.NaN()
	if err := f.SetState(bad); err == nil {
		t.Fatal("expected error for NaN state")
	}

	f.Reset()
	if f.State() != (State{}) {
		t.Fatalf("Reset left %+v", f.State())
	}
}

func BenchmarkProcessSample(b *testing.B) {
	f, _ := New(sr, WithResonance(0.9), WithCutoffHz(600))
	x := 0.1
	for b.Loop() {
		x = f.ProcessSample(x) * 0.5
	}
	_ = x
}
