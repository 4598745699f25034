// Package vm implements the byte-coded command channel between a host and
// the synth kernel.
//
// A command stream is a sequence of instructions, each one opcode byte
// followed by zero or four little-endian operand bytes. The operand kind is
// a function of the opcode range only, so a decoder that does not know an
// opcode still stays aligned with the stream.
package vm

import "fmt"

// Opcode identifies an instruction. Numeric values are part of the wire
// format and never change.
type Opcode uint8

// Opcodes understood by the kernel, and notifications it emits.
const (
	Nop Opcode = 0

	SetWaveformIndex Opcode = 20
	SetDelayLength   Opcode = 21
	SetRunning       Opcode = 22
	SetStepData      Opcode = 23
	SetNextPattern   Opcode = 24
	SetPatternLength Opcode = 25

	SetCutoff              Opcode = 40
	SetResonance           Opcode = 41
	SetEnvMod              Opcode = 42
	SetDecay               Opcode = 43
	SetTempo               Opcode = 44
	SetTuning              Opcode = 45
	SetAccent              Opcode = 46
	SetDistortionThreshold Opcode = 47
	SetDistortionShape     Opcode = 48
	SetDelaySend           Opcode = 49
	SetDelayFeedback       Opcode = 50

	BootstrapFinished Opcode = 60

	SetSequencerStep Opcode = 80
)

// OperandKind is the type of an instruction operand.
type OperandKind uint8

// Operand kinds.
const (
	KindNone OperandKind = iota
	KindU32
	KindF32
)

// OperandSize is the encoded size of a u32 or f32 operand.
const OperandSize = 4

func (k OperandKind) String() string {
	switch k {
	case KindU32:
		return "u32"
	case KindF32:
		return "f32"
	default:
		return "none"
	}
}

// Size returns the encoded operand size in bytes.
func (k OperandKind) Size() int {
	if k == KindNone {
		return 0
	}

	return OperandSize
}

// KindOf returns the operand kind declared by the range code falls in.
func KindOf(code uint8) OperandKind {
	switch {
	case code >= 20 && code <= 39, code >= 80 && code <= 99:
		return KindU32
	case code >= 40 && code <= 59, code >= 100 && code <= 119:
		return KindF32
	default:
		return KindNone
	}
}

// OpcodeInfo describes one table entry.
type OpcodeInfo struct {
	Name         string      `json:"name"`
	Code         Opcode      `json:"code"`
	Kind         OperandKind `json:"-"`
	KindName     string      `json:"operand"`
	Notification bool        `json:"notification"`
}

var opcodeTable = []OpcodeInfo{
	{Name: "Nop", Code: Nop},
	{Name: "SetWaveformIndex", Code: SetWaveformIndex},
	{Name: "SetDelayLength", Code: SetDelayLength},
	{Name: "SetRunning", Code: SetRunning},
	{Name: "SetStepData", Code: SetStepData},
	{Name: "SetNextPattern", Code: SetNextPattern},
	{Name: "SetPatternLength", Code: SetPatternLength},
	{Name: "SetCutoff", Code: SetCutoff},
	{Name: "SetResonance", Code: SetResonance},
	{Name: "SetEnvMod", Code: SetEnvMod},
	{Name: "SetDecay", Code: SetDecay},
	{Name: "SetTempo", Code: SetTempo},
	{Name: "SetTuning", Code: SetTuning},
	{Name: "SetAccent", Code: SetAccent},
	{Name: "SetDistortionThreshold", Code: SetDistortionThreshold},
	{Name: "SetDistortionShape", Code: SetDistortionShape},
	{Name: "SetDelaySend", Code: SetDelaySend},
	{Name: "SetDelayFeedback", Code: SetDelayFeedback},
	{Name: "BootstrapFinished", Code: BootstrapFinished, Notification: true},
	{Name: "SetSequencerStep", Code: SetSequencerStep, Notification: true},
}

var opcodeNames = func() map[Opcode]string {
	m := make(map[Opcode]string, len(opcodeTable))
	for i := range opcodeTable {
		e := &opcodeTable[i]
		e.Kind = KindOf(uint8(e.Code))
		e.KindName = e.Kind.String()
		m[e.Code] = e.Name
	}

	return m
}()

// Opcodes returns a copy of the opcode table in code order.
func Opcodes() []OpcodeInfo {
	out := make([]OpcodeInfo, len(opcodeTable))
	copy(out, opcodeTable)

	return out
}

// Known reports whether op is in the opcode table.
func (op Opcode) Known() bool {
	_, ok := opcodeNames[op]
	return ok
}

// Kind returns the operand kind of op.
func (op Opcode) Kind() OperandKind {
	return KindOf(uint8(op))
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}

	return fmt.Sprintf("Opcode(%d)", uint8(op))
}
