package interpreter

import (
	"github.com/retroenv/chip8vm/internal/machine"
	"github.com/retroenv/chip8vm/internal/opcode"
	"github.com/retroenv/retrogolib/log"
)

// keyWait is the state of a FX0A instruction that suspends execution until
// a key gets pressed. Keys that are already held when the wait starts have
// to be released and pressed again to satisfy it.
type keyWait struct {
	active bool
	x      uint8
	held   [machine.KeyCount]bool
}

// ldKey starts waiting for a key press. The program counter is rewound to
// the FX0A instruction and only advanced again once the wait is satisfied.
func (in *Interpreter) ldKey(ins opcode.Instruction) error {
	in.m.SetPC(in.m.PC() - 2)
	in.keyWait = keyWait{
		active: true,
		x:      ins.X,
		held:   in.m.Keys(),
	}
	in.logger.Debug("Waiting for key press", log.Hex("register", ins.X))
	return nil
}

// pollKeyWait checks the keypad for a key that was pressed after the wait
// started. The first such key is stored in VX and execution continues after
// the FX0A instruction.
func (in *Interpreter) pollKeyWait() {
	keys := in.m.Keys()
	for key, pressed := range keys {
		if !pressed {
			in.keyWait.held[key] = false
			continue
		}
		if in.keyWait.held[key] {
			continue
		}

		in.m.SetV(in.keyWait.x, uint8(key))
		in.m.SetPC(in.m.PC() + 2)
		in.keyWait = keyWait{}
		return
	}
}
