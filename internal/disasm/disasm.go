// Package disasm converts CHIP-8 instruction words into assembly text.
// It is used for the execution trace, the debugger code view and the
// listing mode of the command line tool.
package disasm

import (
	"fmt"
	"io"

	"github.com/retroenv/chip8vm/internal/machine"
	"github.com/retroenv/chip8vm/internal/opcode"
	"github.com/retroenv/retrogolib/arch/cpu/chip8"
	"github.com/retroenv/retrogolib/set"
)

const (
	opcodeSize = 2
	startLabel = "Start"
)

// sysName is the name of 0NNN, which the CPU instruction table does not
// contain as the instruction is ignored by interpreters.
const sysName = "sys"

// Line is a single disassembled instruction.
type Line struct {
	Address uint16
	Raw     uint16
	Text    string
}

// Mnemonic returns the instruction name of the word by matching it against
// the CHIP-8 opcode table.
func Mnemonic(raw uint16) (string, bool) {
	firstNibble := (raw & 0xF000) >> 12
	for _, op := range chip8.Opcodes[int(firstNibble)] {
		if op.Info.Mask&raw == op.Info.Value && op.Instruction != nil {
			return op.Instruction.Name, true
		}
	}
	return "", false
}

// Format returns the assembly text of the instruction word, for example
// "drw V0, V1, $5". Words that do not decode to an instruction are returned
// as data.
func Format(raw uint16) string {
	ins := opcode.Decode(raw)
	if ins.Op == opcode.Unknown {
		return fmt.Sprintf("db $%04X", raw)
	}

	name := instructionName(raw, ins.Op)
	if params := formatParams(ins); params != "" {
		return name + " " + params
	}
	return name
}

func instructionName(raw uint16, op opcode.Op) string {
	if op == opcode.Sys {
		return sysName
	}
	name, _ := Mnemonic(raw)
	return name
}

// formatParams formats the operands of a decoded instruction.
func formatParams(ins opcode.Instruction) string {
	switch ins.Op {
	case opcode.Cls, opcode.Ret:
		return ""

	case opcode.Sys, opcode.Jp, opcode.Call:
		return fmt.Sprintf("$%03X", ins.NNN)
	case opcode.JpV0:
		return fmt.Sprintf("V0, $%03X", ins.NNN)
	case opcode.LdI:
		return fmt.Sprintf("I, $%03X", ins.NNN)

	case opcode.SeByte, opcode.SneByte, opcode.LdByte, opcode.AddByte, opcode.Rnd:
		return fmt.Sprintf("V%X, $%02X", ins.X, ins.NN)

	case opcode.SeReg, opcode.SneReg, opcode.LdReg, opcode.Or, opcode.And,
		opcode.Xor, opcode.AddReg, opcode.Sub, opcode.Subn:
		return fmt.Sprintf("V%X, V%X", ins.X, ins.Y)

	case opcode.Shr, opcode.Shl, opcode.Skp, opcode.Sknp:
		return fmt.Sprintf("V%X", ins.X)

	case opcode.Drw:
		return fmt.Sprintf("V%X, V%X, $%X", ins.X, ins.Y, ins.N)

	case opcode.LdVxDT:
		return fmt.Sprintf("V%X, DT", ins.X)
	case opcode.LdKey:
		return fmt.Sprintf("V%X, K", ins.X)
	case opcode.LdDTVx:
		return fmt.Sprintf("DT, V%X", ins.X)
	case opcode.LdSTVx:
		return fmt.Sprintf("ST, V%X", ins.X)
	case opcode.AddI:
		return fmt.Sprintf("I, V%X", ins.X)
	case opcode.LdFont:
		return fmt.Sprintf("F, V%X", ins.X)
	case opcode.LdBCD:
		return fmt.Sprintf("B, V%X", ins.X)
	case opcode.LdStore:
		return fmt.Sprintf("[I], V%X", ins.X)
	case opcode.LdLoad:
		return fmt.Sprintf("V%X, [I]", ins.X)
	}
	return ""
}

// Disassemble returns up to count instructions of the memory starting at
// the start address. Addresses wrap inside the memory size.
func Disassemble(memory []byte, start uint16, count int) []Line {
	if len(memory) == 0 || count <= 0 {
		return nil
	}

	size := len(memory)
	lines := make([]Line, 0, count)
	address := int(start)
	for range count {
		b1 := memory[address%size]
		b2 := memory[(address+1)%size]
		raw := uint16(b1)<<8 | uint16(b2)
		lines = append(lines, Line{
			Address: uint16(address % size),
			Raw:     raw,
			Text:    Format(raw),
		})
		address += opcodeSize
	}
	return lines
}

// Write writes an assembly listing of the program image, as it would be
// located in memory at the program start address. Jump and call targets
// inside the program get a label.
func Write(w io.Writer, program []byte) error {
	end := machine.ProgramStart + len(program)
	targets := branchTargets(program, end)

	for offset := 0; offset < len(program); offset += opcodeSize {
		address := uint16(machine.ProgramStart + offset)

		if label := labelName(address, targets); label != "" {
			if _, err := fmt.Fprintf(w, "%s:\n", label); err != nil {
				return fmt.Errorf("writing label: %w", err)
			}
		}

		if offset+1 >= len(program) {
			// trailing single byte of an odd sized image
			text := fmt.Sprintf("db $%02X", program[offset])
			if _, err := fmt.Fprintf(w, "  %-24s; $%03X %02X\n", text, address, program[offset]); err != nil {
				return fmt.Errorf("writing data: %w", err)
			}
			break
		}

		raw := uint16(program[offset])<<8 | uint16(program[offset+1])
		text := formatWithLabel(raw, end, targets)
		if _, err := fmt.Fprintf(w, "  %-24s; $%03X %02X %02X\n",
			text, address, program[offset], program[offset+1]); err != nil {
			return fmt.Errorf("writing instruction: %w", err)
		}
	}
	return nil
}

// branchTargets returns all jump and call destinations that point inside
// the program.
func branchTargets(program []byte, end int) set.Set[uint16] {
	targets := set.New[uint16]()
	for offset := 0; offset+1 < len(program); offset += opcodeSize {
		raw := uint16(program[offset])<<8 | uint16(program[offset+1])
		if target, ok := branchTarget(raw, end); ok {
			targets.Add(target)
		}
	}
	return targets
}

// branchTarget returns the destination of a jump or call instruction if it
// points to an instruction inside the program. Odd destinations are not
// returned as the listing has no line starting at them.
func branchTarget(raw uint16, end int) (uint16, bool) {
	ins := opcode.Decode(raw)
	if ins.Op != opcode.Jp && ins.Op != opcode.Call {
		return 0, false
	}
	if ins.NNN < machine.ProgramStart || int(ins.NNN) >= end {
		return 0, false
	}
	if (ins.NNN-machine.ProgramStart)%opcodeSize != 0 {
		return 0, false
	}
	return ins.NNN, true
}

func labelName(address uint16, targets set.Set[uint16]) string {
	switch {
	case address == machine.ProgramStart:
		return startLabel
	case targets.Contains(address):
		return fmt.Sprintf("L%03X", address)
	default:
		return ""
	}
}

// formatWithLabel formats the instruction and replaces a branch destination
// by its label name.
func formatWithLabel(raw uint16, end int, targets set.Set[uint16]) string {
	target, ok := branchTarget(raw, end)
	if !ok {
		return Format(raw)
	}
	name := instructionName(raw, opcode.Decode(raw).Op)
	return name + " " + labelName(target, targets)
}
