// Package delay provides the circular buffer behind the voice's feedback
// delay.
package delay

import "fmt"

// Line is a circular delay line whose active length can be shortened below
// its capacity without reallocating. The sample under the write position is
// the one written Length() samples ago.
type Line struct {
	buffer []float64
	length int
	pos    int
}

// New returns a delay line of fixed capacity with the active length set to
// the full capacity.
func New(capacity int) (*Line, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("delay: capacity must be > 0: %d", capacity)
	}

	return &Line{buffer: make([]float64, capacity), length: capacity}, nil
}

// Cap returns the allocated buffer size.
func (d *Line) Cap() int {
	return len(d.buffer)
}

// Length returns the active length.
func (d *Line) Length() int {
	return d.length
}

// SetLength sets the active length, clamped to [1, Cap()]. The write
// position wraps into the new range if it falls outside.
func (d *Line) SetLength(n int) {
	d.length = max(1, min(n, len(d.buffer)))
	if d.pos >= d.length {
		d.pos = 0
	}
}

// Peek returns the sample at the write position.
func (d *Line) Peek() float64 {
	return d.buffer[d.pos]
}

// Push overwrites the sample at the write position and advances it modulo
// the active length.
func (d *Line) Push(sample float64) {
	d.buffer[d.pos] = sample

	d.pos++
	if d.pos >= d.length {
		d.pos = 0
	}
}

// Position returns the write position.
func (d *Line) Position() int {
	return d.pos
}

// Reset clears the buffer and rewinds the write position.
func (d *Line) Reset() {
	clear(d.buffer)
	d.pos = 0
}
