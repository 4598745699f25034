package seq

import (
	"errors"
	"fmt"
	"math"

	"github.com/thedjinn/wasm303/dsp/core"
)

const (
	// MaxSteps is the number of steps in a pattern.
	MaxSteps = 16

	// PatternCount is the number of pattern slots.
	PatternCount = 8

	// DefaultTempo is the tempo of a new sequencer in BPM.
	DefaultTempo = 120.0

	// DefaultPitch is the MIDI note of a blank step.
	DefaultPitch = 36
)

var (
	// ErrPatternIndex is returned for a pattern slot outside [0, PatternCount).
	ErrPatternIndex = errors.New("seq: pattern index out of range")

	// ErrStepIndex is returned for a step outside [0, MaxSteps).
	ErrStepIndex = errors.New("seq: step index out of range")

	// ErrPatternLength is returned for a pattern length outside [1, MaxSteps].
	ErrPatternLength = errors.New("seq: pattern length out of range")
)

// Step is one sequencer slot.
type Step struct {
	Pitch   uint8
	Enabled bool
	Accent  bool
	Slide   bool
	Down    bool
	Up      bool
}

// Flag bits of a packed step, see [Step.Flags].
const (
	FlagEnabled = 1 << iota
	FlagAccent
	FlagSlide
	FlagDown
	FlagUp
)

// BlankStep returns an enabled step at DefaultPitch.
func BlankStep() Step {
	return Step{Pitch: DefaultPitch, Enabled: true}
}

// StepFromFlags builds a step from a pitch and a flag byte.
func StepFromFlags(pitch, flags uint8) Step {
	return Step{
		Pitch:   pitch,
		Enabled: flags&FlagEnabled != 0,
		Accent:  flags&FlagAccent != 0,
		Slide:   flags&FlagSlide != 0,
		Down:    flags&FlagDown != 0,
		Up:      flags&FlagUp != 0,
	}
}

// Flags packs the boolean fields into a flag byte.
func (s Step) Flags() uint8 {
	var f uint8
	if s.Enabled {
		f |= FlagEnabled
	}
	if s.Accent {
		f |= FlagAccent
	}
	if s.Slide {
		f |= FlagSlide
	}
	if s.Down {
		f |= FlagDown
	}
	if s.Up {
		f |= FlagUp
	}

	return f
}

// Note returns the step pitch with octave transposition applied.
func (s Step) Note() float64 {
	n := float64(s.Pitch)
	if s.Down {
		n -= 12
	}
	if s.Up {
		n += 12
	}

	return n
}

// Pattern is a fixed array of steps of which the first Length play.
type Pattern struct {
	Steps  [MaxSteps]Step
	Length int
}

// BlankPattern returns a full-length pattern of blank steps.
func BlankPattern() Pattern {
	p := Pattern{Length: MaxSteps}
	for i := range p.Steps {
		p.Steps[i] = BlankStep()
	}

	return p
}

// Sequencer counts samples and steps through the active pattern.
type Sequencer struct {
	patterns [PatternCount]Pattern

	running bool
	armed   bool

	samplePosition  uint32
	stepLength      uint32
	patternPosition int

	current int
	next    int
}

// New returns a running sequencer at DefaultTempo with a demo pattern in
// slot 0 and blank patterns elsewhere. The first Advance emits step 0.
func New() *Sequencer {
	s := &Sequencer{
		running:    true,
		armed:      true,
		stepLength: StepLengthFor(core.SampleRate, DefaultTempo),
	}

	for i := range s.patterns {
		s.patterns[i] = BlankPattern()
	}
	s.patterns[0] = DemoPattern()

	return s
}

// DemoPattern returns a sixteen-step acid line in A.
func DemoPattern() Pattern {
	const (
		on = FlagEnabled
		ac = FlagEnabled | FlagAccent
		sl = FlagEnabled | FlagSlide
	)

	line := [MaxSteps]struct{ pitch, flags uint8 }{
		{33, ac}, {33, on}, {45, sl}, {33, on},
		{36, on}, {33, 0}, {43, ac}, {33, on},
		{31, FlagEnabled | FlagUp}, {33, on}, {40, sl}, {45, ac},
		{33, on}, {36, sl}, {33, on}, {48, ac | FlagDown},
	}

	p := Pattern{Length: MaxSteps}
	for i, s := range line {
		p.Steps[i] = StepFromFlags(s.pitch, s.flags)
	}

	return p
}

// StepLengthFor returns the number of samples in a sixteenth note at bpm,
// saturated to the uint32 range.
func StepLengthFor(sampleRate, bpm float64) uint32 {
	return uint32(min(stepSamples(sampleRate, bpm), math.MaxUint32))
}

func stepSamples(sampleRate, bpm float64) float64 {
	return math.Floor(sampleRate * 60 / bpm / 4)
}

// SetTempo changes the step length. The new length applies from the next
// sample comparison; the current sample position is kept.
func (s *Sequencer) SetTempo(bpm float64) error {
	if !core.IsFinite(bpm) || bpm <= 0 {
		return fmt.Errorf("seq: tempo must be > 0 and finite: %f", bpm)
	}

	length := stepSamples(core.SampleRate, bpm)
	switch {
	case length < 1:
		return fmt.Errorf("seq: tempo too high: %f", bpm)
	case length > math.MaxUint32:
		return fmt.Errorf("seq: tempo too low: %f", bpm)
	}

	s.stepLength = uint32(length)

	return nil
}

// Advance moves the sequencer forward by one sample. It returns the new step
// when a step boundary is crossed. The returned pointer stays valid until
// the pattern is edited.
func (s *Sequencer) Advance() (*Step, bool) {
	if !s.running {
		return nil, false
	}

	if s.armed {
		s.armed = false
		s.samplePosition = 0
		s.patternPosition = 0
		s.current = s.next

		return &s.patterns[s.current].Steps[0], true
	}

	s.samplePosition++
	if s.samplePosition < s.stepLength {
		return nil, false
	}

	s.samplePosition = 0
	s.patternPosition++

	if s.patternPosition >= s.patterns[s.current].Length {
		s.patternPosition = 0
		s.current = s.next
	}

	return &s.patterns[s.current].Steps[s.patternPosition], true
}

// Start resumes playback. Starting a stopped sequencer re-arms it so the
// next Advance emits step 0 of the next pattern.
func (s *Sequencer) Start() {
	if !s.running {
		s.armed = true
	}

	s.running = true
}

// Stop halts playback; Advance returns nothing until Start.
func (s *Sequencer) Stop() {
	s.running = false
}

// Running reports whether the sequencer is playing.
func (s *Sequencer) Running() bool {
	return s.running
}

// SetStep replaces one step of a pattern.
func (s *Sequencer) SetStep(pattern, index int, step Step) error {
	if err := checkPattern(pattern); err != nil {
		return err
	}

	if index < 0 || index >= MaxSteps {
		return fmt.Errorf("%w: %d", ErrStepIndex, index)
	}

	s.patterns[pattern].Steps[index] = step

	return nil
}

// Step returns a copy of one step.
func (s *Sequencer) Step(pattern, index int) (Step, error) {
	if err := checkPattern(pattern); err != nil {
		return Step{}, err
	}

	if index < 0 || index >= MaxSteps {
		return Step{}, fmt.Errorf("%w: %d", ErrStepIndex, index)
	}

	return s.patterns[pattern].Steps[index], nil
}

// SetPatternLength sets how many steps of a pattern play. A shorter length
// on the active pattern takes effect at the next step boundary.
func (s *Sequencer) SetPatternLength(pattern, n int) error {
	if err := checkPattern(pattern); err != nil {
		return err
	}

	if n < 1 || n > MaxSteps {
		return fmt.Errorf("%w: %d", ErrPatternLength, n)
	}

	s.patterns[pattern].Length = n

	return nil
}

// SetNextPattern queues the pattern that plays after the active one wraps.
func (s *Sequencer) SetNextPattern(pattern int) error {
	if err := checkPattern(pattern); err != nil {
		return err
	}

	s.next = pattern

	return nil
}

// Pattern returns a copy of a pattern slot.
func (s *Sequencer) Pattern(pattern int) (Pattern, error) {
	if err := checkPattern(pattern); err != nil {
		return Pattern{}, err
	}

	return s.patterns[pattern], nil
}

// PatternPosition returns the index of the current step.
func (s *Sequencer) PatternPosition() int { return s.patternPosition }

// SamplePosition returns the sample offset within the current step.
func (s *Sequencer) SamplePosition() uint32 { return s.samplePosition }

// StepLength returns the step length in samples.
func (s *Sequencer) StepLength() uint32 { return s.stepLength }

// CurrentPattern returns the active pattern slot.
func (s *Sequencer) CurrentPattern() int { return s.current }

// NextPattern returns the queued pattern slot.
func (s *Sequencer) NextPattern() int { return s.next }

func checkPattern(pattern int) error {
	if pattern < 0 || pattern >= PatternCount {
		return fmt.Errorf("%w: %d", ErrPatternIndex, pattern)
	}

	return nil
}
