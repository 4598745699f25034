package effects

import (
	"fmt"

	"github.com/thedjinn/wasm303/dsp/core"
	"github.com/thedjinn/wasm303/dsp/delay"
)

const (
	defaultDelaySend     = 0.5
	defaultDelayFeedback = 0.5
	defaultDelayLength   = 20000
	maxDelaySeconds      = 2.0
)

// Delay is a single-tap feedback delay. The heard signal is the dry input
// plus the tap read before the write, so send and feedback shape what is
// stored and are first heard one length later.
type Delay struct {
	send     float64
	feedback float64

	line *delay.Line
}

// NewDelay creates a delay holding two seconds at sampleRate, with send 0.5,
// feedback 0.5 and a length of 20000 samples.
func NewDelay(sampleRate float64) (*Delay, error) {
	if !core.IsFinite(sampleRate) || sampleRate <= 0 {
		return nil, fmt.Errorf("effects: delay sample rate must be > 0: %f", sampleRate)
	}

	line, err := delay.New(int(maxDelaySeconds * sampleRate))
	if err != nil {
		return nil, err
	}

	line.SetLength(defaultDelayLength)

	return &Delay{
		send:     defaultDelaySend,
		feedback: defaultDelayFeedback,
		line:     line,
	}, nil
}

// SetSend sets the input level written into the line, in [0, 1].
func (d *Delay) SetSend(send float64) error {
	if err := validateUnit(send, "delay send"); err != nil {
		return err
	}

	d.send = send

	return nil
}

// SetFeedback sets the level of the tap written back into the line, in [0, 1].
func (d *Delay) SetFeedback(feedback float64) error {
	if err := validateUnit(feedback, "delay feedback"); err != nil {
		return err
	}

	d.feedback = feedback

	return nil
}

// SetLength sets the delay length in samples, clamped to [1, Capacity()].
func (d *Delay) SetLength(samples int) {
	d.line.SetLength(samples)
}

// Send returns the send level.
func (d *Delay) Send() float64 { return d.send }

// Feedback returns the feedback level.
func (d *Delay) Feedback() float64 { return d.feedback }

// Length returns the delay length in samples.
func (d *Delay) Length() int { return d.line.Length() }

// Capacity returns the maximum length in samples.
func (d *Delay) Capacity() int { return d.line.Cap() }

// Reset clears the delay memory.
func (d *Delay) Reset() {
	d.line.Reset()
}

// ProcessSample processes one sample.
func (d *Delay) ProcessSample(x float64) float64 {
	prev := d.line.Peek()
	d.line.Push(d.send*x + d.feedback*prev + core.AntiDenormal)

	return x + prev
}

// ProcessInPlace processes buf in place.
func (d *Delay) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = d.ProcessSample(x)
	}
}
