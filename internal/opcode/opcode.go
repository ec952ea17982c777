// Package opcode decodes 16-bit CHIP-8 instruction words.
package opcode

import "fmt"

// Op identifies one of the canonical CHIP-8 operations.
type Op uint8

// The 35 canonical CHIP-8 operations, named by their opcode pattern.
const (
	Unknown Op = iota // word that matches no canonical pattern

	Sys      // 0NNN
	Cls      // 00E0
	Ret      // 00EE
	Jp       // 1NNN
	Call     // 2NNN
	SeByte   // 3XNN
	SneByte  // 4XNN
	SeReg    // 5XY0
	LdByte   // 6XNN
	AddByte  // 7XNN
	LdReg    // 8XY0
	Or       // 8XY1
	And      // 8XY2
	Xor      // 8XY3
	AddReg   // 8XY4
	Sub      // 8XY5
	Shr      // 8XY6
	Subn     // 8XY7
	Shl      // 8XYE
	SneReg   // 9XY0
	LdI      // ANNN
	JpV0     // BNNN
	Rnd      // CXNN
	Drw      // DXYN
	Skp      // EX9E
	Sknp     // EXA1
	LdVxDT   // FX07
	LdKey    // FX0A
	LdDTVx   // FX15
	LdSTVx   // FX18
	AddI     // FX1E
	LdFont   // FX29
	LdBCD    // FX33
	LdStore  // FX55
	LdLoad   // FX65

	// Count is the number of Op values including Unknown.
	Count
)

var patterns = [Count]string{
	Unknown: "????",
	Sys:     "0NNN",
	Cls:     "00E0",
	Ret:     "00EE",
	Jp:      "1NNN",
	Call:    "2NNN",
	SeByte:  "3XNN",
	SneByte: "4XNN",
	SeReg:   "5XY0",
	LdByte:  "6XNN",
	AddByte: "7XNN",
	LdReg:   "8XY0",
	Or:      "8XY1",
	And:     "8XY2",
	Xor:     "8XY3",
	AddReg:  "8XY4",
	Sub:     "8XY5",
	Shr:     "8XY6",
	Subn:    "8XY7",
	Shl:     "8XYE",
	SneReg:  "9XY0",
	LdI:     "ANNN",
	JpV0:    "BNNN",
	Rnd:     "CXNN",
	Drw:     "DXYN",
	Skp:     "EX9E",
	Sknp:    "EXA1",
	LdVxDT:  "FX07",
	LdKey:   "FX0A",
	LdDTVx:  "FX15",
	LdSTVx:  "FX18",
	AddI:    "FX1E",
	LdFont:  "FX29",
	LdBCD:   "FX33",
	LdStore: "FX55",
	LdLoad:  "FX65",
}

// String returns the opcode pattern of the operation, for example "8XY4".
func (o Op) String() string {
	if o >= Count {
		return fmt.Sprintf("Op(%d)", uint8(o))
	}
	return patterns[o]
}

// Instruction is a decoded instruction word.
type Instruction struct {
	Raw uint16 // the raw big-endian instruction word
	Op  Op

	NNN uint16 // low 12 bits, address operand
	NN  uint8  // low 8 bits, byte operand
	N   uint8  // low 4 bits, nibble operand
	X   uint8  // bits 8-11, register selector
	Y   uint8  // bits 4-7, register selector
}

// Decode extracts the operand fields from the instruction word and
// identifies its operation. Every possible word decodes, words that match no
// canonical pattern get the Unknown operation.
func Decode(raw uint16) Instruction {
	ins := Instruction{
		Raw: raw,
		NNN: raw & 0x0FFF,
		NN:  uint8(raw & 0x00FF),
		N:   uint8(raw & 0x000F),
		X:   uint8((raw & 0x0F00) >> 8),
		Y:   uint8((raw & 0x00F0) >> 4),
	}
	ins.Op = decodeOp(ins)
	return ins
}

func decodeOp(ins Instruction) Op {
	switch ins.Raw >> 12 {
	case 0x0:
		switch ins.NNN {
		case 0x0E0:
			return Cls
		case 0x0EE:
			return Ret
		default:
			return Sys
		}
	case 0x1:
		return Jp
	case 0x2:
		return Call
	case 0x3:
		return SeByte
	case 0x4:
		return SneByte
	case 0x5:
		if ins.N == 0 {
			return SeReg
		}
	case 0x6:
		return LdByte
	case 0x7:
		return AddByte
	case 0x8:
		return decodeArithmetic(ins.N)
	case 0x9:
		if ins.N == 0 {
			return SneReg
		}
	case 0xA:
		return LdI
	case 0xB:
		return JpV0
	case 0xC:
		return Rnd
	case 0xD:
		return Drw
	case 0xE:
		switch ins.NN {
		case 0x9E:
			return Skp
		case 0xA1:
			return Sknp
		}
	case 0xF:
		return decodeMisc(ins.NN)
	}
	return Unknown
}

func decodeArithmetic(n uint8) Op {
	switch n {
	case 0x0:
		return LdReg
	case 0x1:
		return Or
	case 0x2:
		return And
	case 0x3:
		return Xor
	case 0x4:
		return AddReg
	case 0x5:
		return Sub
	case 0x6:
		return Shr
	case 0x7:
		return Subn
	case 0xE:
		return Shl
	default:
		return Unknown
	}
}

func decodeMisc(nn uint8) Op {
	switch nn {
	case 0x07:
		return LdVxDT
	case 0x0A:
		return LdKey
	case 0x15:
		return LdDTVx
	case 0x18:
		return LdSTVx
	case 0x1E:
		return AddI
	case 0x29:
		return LdFont
	case 0x33:
		return LdBCD
	case 0x55:
		return LdStore
	case 0x65:
		return LdLoad
	default:
		return Unknown
	}
}

// String returns the raw word and the operation pattern.
func (i Instruction) String() string {
	return fmt.Sprintf("%04X (%s)", i.Raw, i.Op)
}
