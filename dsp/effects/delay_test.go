package effects

import (
	"testing"

	"github.com/thedjinn/wasm303/internal/testutil"
)

func mustDelay(t *testing.T) *Delay {
	t.Helper()

	d, err := NewDelay(44100)
	if err != nil {
		t.Fatalf("NewDelay() error = %v", err)
	}

	return d
}

func TestDelayDefaults(t *testing.T) {
	d := mustDelay(t)
	if d.Send() != 0.5 || d.Feedback() != 0.5 || d.Length() != 20000 || d.Capacity() != 88200 {
		t.Fatalf("send=%v feedback=%v length=%d capacity=%d", d.Send(), d.Feedback(), d.Length(), d.Capacity())
	}

	if _, err := NewDelay(0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

func TestDelaySingleTap(t *testing.T) {
	const length = 100

	d := mustDelay(t)
	if err := d.SetSend(1); err != nil {
		t.Fatal(err)
	}
	if err := d.SetFeedback(0); err != nil {
		t.Fatal(err)
	}
	d.SetLength(length)

	out := testutil.Impulse(4*length, 0)
	d.ProcessInPlace(out)

	for i, y := range out {
		var want float64
		if i == 0 || i == length {
			want = 1
		}
		if diff := y - want; diff > 1e-15 || diff < -1e-15 {
			t.Fatalf("out[%d] = %v, want %v", i, y, want)
		}
	}
}

func TestDelayFeedbackEchoes(t *testing.T) {
	const length = 50

	d := mustDelay(t)
	_ = d.SetSend(1)
	_ = d.SetFeedback(0.5)
	d.SetLength(length)

	out := testutil.Impulse(4*length+1, 0)
	d.ProcessInPlace(out)

	for k, want := range []float64{1, 1, 0.5, 0.25, 0.125} {
		if diff := out[k*length] - want; diff > 1e-12 || diff < -1e-12 {
			t.Fatalf("echo %d = %v, want %v", k, out[k*length], want)
		}
	}
}

func TestDelayFirstPassIsDryOnly(t *testing.T) {
	d := mustDelay(t)
	in := testutil.DeterministicSine(440, 44100, 0.7, 1000)
	out := append([]float64(nil), in...)
	d.ProcessInPlace(out)

	testutil.RequireSliceNearlyEqual(t, out, in, 1e-15)
}

func TestDelaySetterValidation(t *testing.T) {
	d := mustDelay(t)
	if err := d.SetSend(-1); err == nil {
		t.Fatal("expected error for negative send")
	}
	if err := d.SetFeedback(1.5); err == nil {
		t.Fatal("expected error for feedback > 1")
	}

	d.SetLength(0)
	if d.Length() != 1 {
		t.Fatalf("Length() = %d, want 1", d.Length())
	}
	d.SetLength(1 << 20)
	if d.Length() != d.Capacity() {
		t.Fatalf("Length() = %d, want %d", d.Length(), d.Capacity())
	}
}

func TestDelayReset(t *testing.T) {
	d := mustDelay(t)
	d.SetLength(10)
	d.ProcessInPlace(testutil.Impulse(5, 0))
	d.Reset()

	out := make([]float64, 20)
	d.ProcessInPlace(out)
	testutil.RequireBounded(t, out, 1e-15)
}
