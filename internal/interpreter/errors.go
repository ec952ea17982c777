package interpreter

import (
	"errors"
	"fmt"

	"github.com/retroenv/chip8vm/internal/opcode"
)

// ErrUnknownOpcode is returned for instruction words that match no
// CHIP-8 operation.
var ErrUnknownOpcode = errors.New("unknown opcode")

// Fault describes an instruction that could not be executed and was
// skipped.
type Fault struct {
	Address     uint16
	Instruction opcode.Instruction
	Err         error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("instruction %s at $%03X: %s", f.Instruction, f.Address, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}
