// Package host drives a kernel from ordinary Go code: it queues commands
// from any goroutine, pulls audio blocks and decodes the notifications the
// kernel writes back.
package host

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/thedjinn/wasm303/dsp/core"
	"github.com/thedjinn/wasm303/kernel"
	"github.com/thedjinn/wasm303/synth"
	"github.com/thedjinn/wasm303/vm"
)

// Channels is the number of interleaved output channels.
const Channels = 2

// BlockFrames is the number of frames produced per kernel block.
const BlockFrames = core.BlockSize

// ErrQueueFull is returned by Send when the pending commands would not fit
// in the kernel's command buffer.
var ErrQueueFull = errors.New("host: command queue full")

// Option mutates driver configuration.
type Option func(*Driver)

// WithStepHandler registers a callback for SetSequencerStep notifications.
// It runs on the goroutine that renders, after the driver lock is released,
// so it may call back into the driver.
func WithStepHandler(fn func(step int)) Option {
	return func(d *Driver) { d.onStep = fn }
}

// WithBootHandler registers a callback for the BootstrapFinished
// notification.
func WithBootHandler(fn func()) Option {
	return func(d *Driver) { d.onBoot = fn }
}

// event is a decoded notification waiting for its handler.
type event struct {
	boot bool
	step int
}

// Driver serializes access to a kernel. Send may be called concurrently
// with RenderBlock and Read.
type Driver struct {
	mu      sync.Mutex
	kernel  *kernel.Kernel
	pending []byte

	lastStep int
	booted   bool

	onStep func(step int)
	onBoot func()
	events []event

	block  [BlockFrames * Channels]float32
	out    []byte
	outPos int
}

// NewDriver wraps k and initializes it.
func NewDriver(k *kernel.Kernel, opts ...Option) *Driver {
	d := &Driver{
		kernel:   k,
		lastStep: -1,
		pending:  make([]byte, 0, len(k.CommandBuffer())),
		out:      make([]byte, 0, BlockFrames*Channels*4),
	}

	for _, opt := range opts {
		opt(d)
	}

	k.Initialize()

	return d
}

// New creates a kernel with opts and wraps it.
func New(kernelOpts []kernel.Option, opts ...Option) (*Driver, error) {
	k, err := kernel.New(kernelOpts...)
	if err != nil {
		return nil, err
	}

	return NewDriver(k, opts...), nil
}

// Send queues one instruction for the next block. value is converted to the
// opcode's operand kind.
func (d *Driver) Send(op vm.Opcode, value float64) error {
	if err := vm.CheckOperand(op, value); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	size := 1 + op.Kind().Size()
	if len(d.pending)+size > len(d.kernel.CommandBuffer()) {
		return fmt.Errorf("%w: dropping %v", ErrQueueFull, op)
	}

	d.pending = vm.Encode(d.pending, op, value)

	return nil
}

// SendParam queues the opcode registered under name.
func (d *Driver) SendParam(name string, value float64) error {
	op, ok := ParamByName(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}

	return d.Send(op, value)
}

// RenderBlock processes one kernel block and writes up to BlockFrames
// interleaved stereo frames to dst. It returns the number of frames written.
func (d *Driver) RenderBlock(dst []float32) int {
	d.mu.Lock()
	n := d.renderLocked(dst)
	events := d.takeEvents()
	d.mu.Unlock()

	d.notify(events)

	return n
}

func (d *Driver) renderLocked(dst []float32) int {
	n := copy(d.kernel.CommandBuffer(), d.pending)
	d.pending = d.pending[:0]

	written := d.kernel.Process(n)
	d.dispatch(d.kernel.CommandBuffer()[:written])

	return core.Interleave(dst, d.kernel.Left(), d.kernel.Right())
}

func (d *Driver) dispatch(notifications []byte) {
	for in := range vm.Decode(notifications) {
		switch in.Op {
		case vm.BootstrapFinished:
			d.booted = true
			if d.onBoot != nil {
				d.events = append(d.events, event{boot: true})
			}
		case vm.SetSequencerStep:
			step, _ := in.U32()
			d.lastStep = int(step)
			if d.onStep != nil {
				d.events = append(d.events, event{step: d.lastStep})
			}
		}
	}
}

// takeEvents hands the queued events to the caller. d.mu must be held.
func (d *Driver) takeEvents() []event {
	if len(d.events) == 0 {
		return nil
	}

	events := d.events
	d.events = nil

	return events
}

func (d *Driver) notify(events []event) {
	for _, ev := range events {
		if ev.boot {
			d.onBoot()
		} else {
			d.onStep(ev.step)
		}
	}
}

// Read implements io.Reader, producing interleaved float32 little-endian
// stereo frames. It never returns an error.
func (d *Driver) Read(p []byte) (int, error) {
	d.mu.Lock()
	total := d.readLocked(p)
	events := d.takeEvents()
	d.mu.Unlock()

	d.notify(events)

	return total, nil
}

func (d *Driver) readLocked(p []byte) int {
	total := 0
	for len(p) > 0 {
		if d.outPos >= len(d.out) {
			d.renderLocked(d.block[:])
			d.out = d.out[:0]
			for _, s := range d.block {
				d.out = binary.LittleEndian.AppendUint32(d.out, math.Float32bits(s))
			}
			d.outPos = 0
		}

		n := copy(p, d.out[d.outPos:])
		d.outPos += n
		total += n
		p = p[n:]
	}

	return total
}

// LastStep returns the most recent sequencer step, or -1 before the first.
func (d *Driver) LastStep() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.lastStep
}

// Booted reports whether the kernel has confirmed initialization.
func (d *Driver) Booted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.booted
}

// Params returns a snapshot of the voice parameters.
func (d *Driver) Params() synth.Params {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.kernel.Voice().Params()
}

// Pending returns the number of queued command bytes.
func (d *Driver) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.pending)
}
