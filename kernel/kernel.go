// Package kernel is the block render loop that a host calls once per audio
// quantum.
//
// Each call to [Kernel.Process] executes the commands the host wrote into
// the command buffer, renders [core.BlockSize] samples into the left and
// right buffers, and leaves the notifications produced during the block in
// the command buffer for the host to read back.
package kernel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/thedjinn/wasm303/dsp/core"
	"github.com/thedjinn/wasm303/synth"
	"github.com/thedjinn/wasm303/vm"
)

// ErrNotificationOverflow is reported when a notification does not fit in
// the command buffer. The notification is dropped.
var ErrNotificationOverflow = errors.New("kernel: notification buffer overflow")

// ErrorReporter receives non-fatal errors raised while processing a block.
// Report is called on the render path and must not block.
type ErrorReporter interface {
	Report(err error)
}

// SlogReporter reports errors to a slog logger.
type SlogReporter struct {
	Logger *slog.Logger

	kernel *Kernel
}

// Report logs err at error level with the current sample position.
func (r *SlogReporter) Report(err error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	attrs := []slog.Attr{slog.String("error", err.Error())}
	if r.kernel != nil {
		attrs = append(attrs, slog.Uint64("sample", r.kernel.CurrentSample()))
	}

	logger.LogAttrs(context.Background(), slog.LevelError, "kernel error", attrs...)
}

// Option mutates constructor configuration.
type Option func(*config) error

type config struct {
	reporter     ErrorReporter
	capacity     int
	voiceOptions []synth.Option
}

// WithErrorReporter sets the error sink. The default logs through slog.
func WithErrorReporter(r ErrorReporter) Option {
	return func(cfg *config) error {
		if r == nil {
			return fmt.Errorf("kernel: error reporter must not be nil")
		}

		cfg.reporter = r

		return nil
	}
}

// WithCommandCapacity sets the command buffer size in bytes.
func WithCommandCapacity(n int) Option {
	return func(cfg *config) error {
		if n < 1+vm.OperandSize {
			return fmt.Errorf("kernel: command capacity must be >= %d: %d", 1+vm.OperandSize, n)
		}

		cfg.capacity = n

		return nil
	}
}

// WithVoiceOptions passes options through to the voice constructor.
func WithVoiceOptions(opts ...synth.Option) Option {
	return func(cfg *config) error {
		cfg.voiceOptions = append(cfg.voiceOptions, opts...)
		return nil
	}
}

// Kernel owns the command program, the voice and the output buffers.
type Kernel struct {
	program  *vm.Program
	voice    *synth.Voice
	reporter ErrorReporter

	left  [core.BlockSize]float32
	right [core.BlockSize]float32

	currentSample uint64
	booted        bool
	bootPending   bool
}

// New creates a kernel.
func New(opts ...Option) (*Kernel, error) {
	cfg := config{capacity: vm.DefaultCapacity}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	k := &Kernel{program: vm.NewProgram(cfg.capacity)}

	if cfg.reporter == nil {
		cfg.reporter = &SlogReporter{}
	}
	if r, ok := cfg.reporter.(*SlogReporter); ok && r.kernel == nil {
		r.kernel = k
	}
	k.reporter = cfg.reporter

	voiceOpts := append([]synth.Option{synth.WithEmitter(synth.EmitterFunc(k.notify))}, cfg.voiceOptions...)

	voice, err := synth.New(voiceOpts...)
	if err != nil {
		return nil, fmt.Errorf("kernel: %w", err)
	}
	k.voice = voice

	return k, nil
}

// Initialize resets the sample counter and queues the BootstrapFinished
// notification once, to be read after the next Process call.
func (k *Kernel) Initialize() {
	k.currentSample = 0

	if k.booted {
		return
	}
	k.booted = true
	k.bootPending = true
}

// Process executes the first validLength bytes of the command buffer,
// renders one block and returns the number of notification bytes written
// back into the command buffer.
func (k *Kernel) Process(validLength int) int {
	k.program.SetPosition(validLength)

	for in := range k.program.All() {
		if err := k.voice.Execute(in); err != nil {
			k.reporter.Report(err)
		}
	}

	k.program.Drain()

	if k.bootPending {
		k.bootPending = false
		k.notify(vm.Instruction{Op: vm.BootstrapFinished})
	}

	for i := range core.BlockSize {
		s := float32(k.voice.Render())
		k.left[i] = s
		k.right[i] = s
		k.currentSample++
	}

	return k.program.Position()
}

func (k *Kernel) notify(in vm.Instruction) {
	if err := k.program.Emit(in); err != nil {
		k.reporter.Report(fmt.Errorf("%w: %v", ErrNotificationOverflow, in.Op))
	}
}

// CommandBuffer returns the shared command buffer.
func (k *Kernel) CommandBuffer() []byte { return k.program.Bytes() }

// Left returns the left output buffer of the last block.
func (k *Kernel) Left() []float32 { return k.left[:] }

// Right returns the right output buffer of the last block.
func (k *Kernel) Right() []float32 { return k.right[:] }

// CurrentSample returns the number of samples rendered since Initialize.
func (k *Kernel) CurrentSample() uint64 { return k.currentSample }

// Voice returns the kernel's voice.
func (k *Kernel) Voice() *synth.Voice { return k.voice }
