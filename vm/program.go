package vm

import (
	"encoding/binary"
	"errors"
	"iter"
	"math"
)

// DefaultCapacity is the command buffer size used by the kernel.
const DefaultCapacity = 1024

// ErrProgramFull is returned when a write does not fit behind the cursor.
var ErrProgramFull = errors.New("vm: program buffer full")

// Program is a fixed command buffer with a cursor. The host writes commands
// into Bytes and publishes their length with SetPosition; the kernel decodes
// them, drains, and writes notifications back through the same buffer.
type Program struct {
	buf      []byte
	position int
}

// NewProgram allocates a program of the given capacity. Non-positive
// capacities use DefaultCapacity.
func NewProgram(capacity int) *Program {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Program{buf: make([]byte, capacity)}
}

// Bytes returns the whole backing buffer.
func (p *Program) Bytes() []byte {
	return p.buf
}

// Cap returns the buffer capacity.
func (p *Program) Cap() int {
	return len(p.buf)
}

// SetPosition sets the cursor, clamped to [0, Cap].
func (p *Program) SetPosition(n int) {
	p.position = max(0, min(n, len(p.buf)))
}

// Position returns the cursor.
func (p *Program) Position() int {
	return p.position
}

// Drain resets the cursor to zero. Bytes are left as they are.
func (p *Program) Drain() {
	p.position = 0
}

// Written returns the bytes before the cursor.
func (p *Program) Written() []byte {
	return p.buf[:p.position]
}

// PushOpcode appends a bare opcode.
func (p *Program) PushOpcode(op Opcode) error {
	if p.position+1 > len(p.buf) {
		return ErrProgramFull
	}

	p.buf[p.position] = byte(op)
	p.position++

	return nil
}

// PushU32 appends op with a u32 operand. Nothing is written on error.
func (p *Program) PushU32(op Opcode, v uint32) error {
	if p.position+1+OperandSize > len(p.buf) {
		return ErrProgramFull
	}

	p.buf[p.position] = byte(op)
	binary.LittleEndian.PutUint32(p.buf[p.position+1:], v)
	p.position += 1 + OperandSize

	return nil
}

// PushF32 appends op with an f32 operand. Nothing is written on error.
func (p *Program) PushF32(op Opcode, v float32) error {
	return p.PushU32(op, math.Float32bits(v))
}

// Emit appends an encoded instruction.
func (p *Program) Emit(in Instruction) error {
	if p.position+in.Size() > len(p.buf) {
		return ErrProgramFull
	}

	p.buf[p.position] = byte(in.Op)
	copy(p.buf[p.position+1:], in.operand[:in.Op.Kind().Size()])
	p.position += in.Size()

	return nil
}

// Instructions returns an iterator over the instructions before the cursor.
func (p *Program) Instructions() *Iterator {
	return NewIterator(p.Written())
}

// All returns the instructions before the cursor as a sequence.
func (p *Program) All() iter.Seq[Instruction] {
	return Decode(p.Written())
}

// Iterator walks an encoded command stream.
type Iterator struct {
	data []byte
	pos  int
}

// NewIterator returns an iterator over data.
func NewIterator(data []byte) *Iterator {
	return &Iterator{data: data}
}

// Next decodes the next instruction. Codes not in the opcode table decode
// to Nop after their operand is skipped. A trailing instruction whose
// operand is cut off ends the stream.
func (it *Iterator) Next() (Instruction, bool) {
	if it.pos >= len(it.data) {
		return Instruction{}, false
	}

	code := it.data[it.pos]
	size := KindOf(code).Size()

	if it.pos+1+size > len(it.data) {
		it.pos = len(it.data)
		return Instruction{}, false
	}

	in := Instruction{Op: Opcode(code)}
	copy(in.operand[:], it.data[it.pos+1:it.pos+1+size])
	it.pos += 1 + size

	if !in.Op.Known() {
		return Instruction{Op: Nop}, true
	}

	return in, true
}

// Reset rewinds the iterator to the start of the stream.
func (it *Iterator) Reset() {
	it.pos = 0
}

// Offset returns the number of bytes consumed.
func (it *Iterator) Offset() int {
	return it.pos
}

// Decode returns the instructions of data as a sequence.
func Decode(data []byte) iter.Seq[Instruction] {
	return func(yield func(Instruction) bool) {
		it := NewIterator(data)
		for {
			in, ok := it.Next()
			if !ok || !yield(in) {
				return
			}
		}
	}
}
