package biquad

import (
	"math"
	"testing"

	"github.com/thedjinn/wasm303/internal/testutil"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestNewSection(t *testing.T) {
	c := Coefficients{B0: 1, B1: 2, B2: 3, A1: 4, A2: 5}
	s := NewSection(c)
	if s.Coefficients != c {
		t.Fatalf("coefficients mismatch: got %v, want %v", s.Coefficients, c)
	}
	if s.State() != (State{}) {
		t.Fatalf("initial state not zero: %+v", s.State())
	}
}

func TestBypassIsIdentity(t *testing.T) {
	s := Bypass()
	input := testutil.DeterministicSine(110, 44100, 0.8, 2048)
	input = append(input, 1, -1, 0, 1e-9, -1e-30, 1e6)

	for i, x := range input {
		if y := s.ProcessSample(x); y != x {
			t.Fatalf("sample %d: got %v, want %v", i, y, x)
		}
	}
}

func TestProcessSampleDirectFormI(t *testing.T) {
	// y[n] = 0.5x[n] + 0.25x[n-1] + 0.125x[n-2] + 0.5y[n-1] - 0.25y[n-2]
	c := Coefficients{B0: 0.5, B1: 0.25, B2: 0.125, A1: -0.5, A2: 0.25}
	s := NewSection(c)

	x := []float64{1, 2, 0, 0, 0}
	want := make([]float64, len(x))
	var x1, x2, y1, y2 float64
	for n, v := range x {
		want[n] = 0.5*v + 0.25*x1 + 0.125*x2 + 0.5*y1 - 0.25*y2
		x2, x1 = x1, v
		y2, y1 = y1, want[n]
	}

	for n, v := range x {
		if got := s.ProcessSample(v); !almostEqual(got, want[n], 1e-15) {
			t.Fatalf("y[%d] = %v, want %v", n, got, want[n])
		}
	}
}

func TestProcessBlockMatchesProcessSample(t *testing.T) {
	c := Coefficients{B0: 0.2, B1: 0.4, B2: 0.2, A1: -0.6, A2: 0.2}
	input := testutil.DeterministicSine(440, 44100, 1, 512)

	ref := NewSection(c)
	want := make([]float64, len(input))
	for i, x := range input {
		want[i] = ref.ProcessSample(x)
	}

	block := NewSection(c)
	got := append([]float64(nil), input...)
	block.ProcessBlock(got[:100])
	block.ProcessBlock(got[100:])

	testutil.RequireSliceNearlyEqual(t, got, want, 0)
	if block.State() != ref.State() {
		t.Fatalf("state mismatch: %+v vs %+v", block.State(), ref.State())
	}
}

func TestStoredOutputCarriesBias(t *testing.T) {
	s := NewSection(Coefficients{B0: 0.5, A1: -0.5})
	s.ProcessSample(0)

	if got := s.State().Y1; got == 0 {
		t.Fatal("expected anti-denormal bias in stored output")
	}
}

func TestSetCoefficientsKeepsState(t *testing.T) {
	s := NewSection(Coefficients{B0: 0.3, B1: 0.3, A1: -0.4})
	s.ProcessSample(1)
	before := s.State()

	s.SetCoefficients(Coefficients{B0: 1})
	if s.State() != before {
		t.Fatalf("state changed: %+v -> %+v", before, s.State())
	}
}

func TestResetAndSetState(t *testing.T) {
	s := NewSection(Coefficients{B0: 0.3, B1: 0.3, A1: -0.4})
	s.ProcessSample(1)
	saved := s.State()

	s.Reset()
	if s.State() != (State{}) {
		t.Fatalf("Reset left state %+v", s.State())
	}

	s.SetState(saved)
	if s.State() != saved {
		t.Fatalf("SetState() = %+v, want %+v", s.State(), saved)
	}
}

func TestImpulseResponsePreservesState(t *testing.T) {
	s := NewSection(Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04})
	s.ProcessSample(0.7)
	saved := s.State()

	ir := s.ImpulseResponse(4)
	want := []float64{0.25, 0.55, 0.35, 0.048}
	testutil.RequireSliceNearlyEqual(t, ir, want, 1e-12)

	if s.State() != saved {
		t.Fatal("ImpulseResponse modified the section state")
	}
	if s.ImpulseResponse(0) != nil {
		t.Fatal("expected nil for n <= 0")
	}
}

func BenchmarkProcessSample(b *testing.B) {
	s := NewSection(Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04})
	x := 1.0
	for b.Loop() {
		x = s.ProcessSample(x)
	}
	_ = x
}
