package vm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrOperandRange is returned by CheckOperand for a value that does not fit
// the opcode's operand kind.
var ErrOperandRange = errors.New("vm: operand out of range")

// Instruction is one decoded command. The operand is held by value, so an
// Instruction stays valid after the program buffer is reused.
type Instruction struct {
	Op      Opcode
	operand [OperandSize]byte
}

// NewU32 returns an instruction with a u32 operand.
func NewU32(op Opcode, v uint32) Instruction {
	in := Instruction{Op: op}
	binary.LittleEndian.PutUint32(in.operand[:], v)

	return in
}

// NewF32 returns an instruction with an f32 operand.
func NewF32(op Opcode, v float32) Instruction {
	return NewU32(op, math.Float32bits(v))
}

// U32 returns the operand of a u32 instruction.
func (in Instruction) U32() (uint32, bool) {
	if in.Op.Kind() != KindU32 {
		return 0, false
	}

	return binary.LittleEndian.Uint32(in.operand[:]), true
}

// F32 returns the operand of an f32 instruction.
func (in Instruction) F32() (float32, bool) {
	if in.Op.Kind() != KindF32 {
		return 0, false
	}

	return math.Float32frombits(binary.LittleEndian.Uint32(in.operand[:])), true
}

// Size returns the encoded size of the instruction.
func (in Instruction) Size() int {
	return 1 + in.Op.Kind().Size()
}

// AppendTo appends the encoded instruction to dst.
func (in Instruction) AppendTo(dst []byte) []byte {
	dst = append(dst, byte(in.Op))
	if in.Op.Kind() != KindNone {
		dst = append(dst, in.operand[:]...)
	}

	return dst
}

// CheckOperand reports whether value can be encoded for op. A u32 operand
// must be finite and within [0, MaxUint32]; f32 operands accept any value.
func CheckOperand(op Opcode, value float64) error {
	if op.Kind() != KindU32 {
		return nil
	}

	if math.IsNaN(value) || value < 0 || value > math.MaxUint32 {
		return fmt.Errorf("%w: %v for %v", ErrOperandRange, value, op)
	}

	return nil
}

// Encode appends op and, for opcodes with an operand, value converted to
// the opcode's operand kind. Out of range u32 values saturate; use
// CheckOperand to reject them instead.
func Encode(dst []byte, op Opcode, value float64) []byte {
	switch op.Kind() {
	case KindU32:
		return NewU32(op, saturateU32(value)).AppendTo(dst)
	case KindF32:
		return NewF32(op, float32(value)).AppendTo(dst)
	default:
		return Instruction{Op: op}.AppendTo(dst)
	}
}

func saturateU32(v float64) uint32 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= math.MaxUint32:
		return math.MaxUint32
	default:
		return uint32(v)
	}
}

// PackStep packs a SetStepData operand.
func PackStep(pattern, step int, pitch, flags uint8) uint32 {
	return uint32(pattern&0xff)<<24 | uint32(step&0xff)<<16 | uint32(pitch)<<8 | uint32(flags)
}

// UnpackStep splits a SetStepData operand.
func UnpackStep(v uint32) (pattern, step int, pitch, flags uint8) {
	return int(v >> 24), int(v >> 16 & 0xff), uint8(v >> 8), uint8(v)
}

// PackPatternLength packs a SetPatternLength operand.
func PackPatternLength(pattern, length int) uint32 {
	return uint32(pattern&0xff)<<8 | uint32(length&0xff)
}

// UnpackPatternLength splits a SetPatternLength operand.
func UnpackPatternLength(v uint32) (pattern, length int) {
	return int(v >> 8 & 0xff), int(v & 0xff)
}
