package interpreter

import (
	"fmt"

	"github.com/retroenv/chip8vm/internal/machine"
	"github.com/retroenv/chip8vm/internal/opcode"
	"github.com/retroenv/retrogolib/log"
)

const flagRegister = 0xF

// initHandlers sets up the dispatch table that maps every operation to its
// implementation.
func (in *Interpreter) initHandlers() {
	in.handlers = [opcode.Count]handler{
		opcode.Unknown: in.unknown,
		opcode.Sys:     in.sys,
		opcode.Cls:     in.cls,
		opcode.Ret:     in.ret,
		opcode.Jp:      in.jp,
		opcode.Call:    in.call,
		opcode.SeByte:  in.seByte,
		opcode.SneByte: in.sneByte,
		opcode.SeReg:   in.seReg,
		opcode.LdByte:  in.ldByte,
		opcode.AddByte: in.addByte,
		opcode.LdReg:   in.ldReg,
		opcode.Or:      in.or,
		opcode.And:     in.and,
		opcode.Xor:     in.xor,
		opcode.AddReg:  in.addReg,
		opcode.Sub:     in.sub,
		opcode.Shr:     in.shr,
		opcode.Subn:    in.subn,
		opcode.Shl:     in.shl,
		opcode.SneReg:  in.sneReg,
		opcode.LdI:     in.ldI,
		opcode.JpV0:    in.jpV0,
		opcode.Rnd:     in.rnd,
		opcode.Drw:     in.drw,
		opcode.Skp:     in.skp,
		opcode.Sknp:    in.sknp,
		opcode.LdVxDT:  in.ldVxDT,
		opcode.LdKey:   in.ldKey,
		opcode.LdDTVx:  in.ldDTVx,
		opcode.LdSTVx:  in.ldSTVx,
		opcode.AddI:    in.addI,
		opcode.LdFont:  in.ldFont,
		opcode.LdBCD:   in.ldBCD,
		opcode.LdStore: in.ldStore,
		opcode.LdLoad:  in.ldLoad,
	}
}

func (in *Interpreter) unknown(ins opcode.Instruction) error {
	return fmt.Errorf("%w: %04X", ErrUnknownOpcode, ins.Raw)
}

// sys calls a machine code routine of the host computer, modern interpreters
// ignore it.
func (in *Interpreter) sys(ins opcode.Instruction) error {
	in.logger.Debug("Ignoring machine code routine call", log.Hex("address", ins.NNN))
	return nil
}

func (in *Interpreter) cls(opcode.Instruction) error {
	in.m.ClearDisplay()
	return nil
}

func (in *Interpreter) ret(opcode.Instruction) error {
	address, err := in.m.Pop()
	if err != nil {
		return err
	}
	in.m.SetPC(address)
	return nil
}

func (in *Interpreter) jp(ins opcode.Instruction) error {
	in.m.SetPC(ins.NNN)
	return nil
}

func (in *Interpreter) call(ins opcode.Instruction) error {
	if err := in.m.Push(in.m.PC()); err != nil {
		return err
	}
	in.m.SetPC(ins.NNN)
	return nil
}

// skipIf skips the next instruction if the condition is true.
func (in *Interpreter) skipIf(condition bool) {
	if condition {
		in.m.SetPC(in.m.PC() + 2)
	}
}

func (in *Interpreter) seByte(ins opcode.Instruction) error {
	in.skipIf(in.m.V(ins.X) == ins.NN)
	return nil
}

func (in *Interpreter) sneByte(ins opcode.Instruction) error {
	in.skipIf(in.m.V(ins.X) != ins.NN)
	return nil
}

func (in *Interpreter) seReg(ins opcode.Instruction) error {
	in.skipIf(in.m.V(ins.X) == in.m.V(ins.Y))
	return nil
}

func (in *Interpreter) sneReg(ins opcode.Instruction) error {
	in.skipIf(in.m.V(ins.X) != in.m.V(ins.Y))
	return nil
}

func (in *Interpreter) ldByte(ins opcode.Instruction) error {
	in.m.SetV(ins.X, ins.NN)
	return nil
}

// addByte adds without touching the carry flag.
func (in *Interpreter) addByte(ins opcode.Instruction) error {
	in.m.SetV(ins.X, in.m.V(ins.X)+ins.NN)
	return nil
}

func (in *Interpreter) ldReg(ins opcode.Instruction) error {
	in.m.SetV(ins.X, in.m.V(ins.Y))
	return nil
}

// setResult writes the result register first and the flag afterwards, so
// that VF holds the flag if it is also the target register.
func (in *Interpreter) setResult(x, value, flag uint8) {
	in.m.SetV(x, value)
	in.m.SetV(flagRegister, flag)
}

func (in *Interpreter) logic(ins opcode.Instruction, value uint8) {
	in.m.SetV(ins.X, value)
	if in.cfg.Quirks.LogicResetsVF {
		in.m.SetV(flagRegister, 0)
	}
}

func (in *Interpreter) or(ins opcode.Instruction) error {
	in.logic(ins, in.m.V(ins.X)|in.m.V(ins.Y))
	return nil
}

func (in *Interpreter) and(ins opcode.Instruction) error {
	in.logic(ins, in.m.V(ins.X)&in.m.V(ins.Y))
	return nil
}

func (in *Interpreter) xor(ins opcode.Instruction) error {
	in.logic(ins, in.m.V(ins.X)^in.m.V(ins.Y))
	return nil
}

func (in *Interpreter) addReg(ins opcode.Instruction) error {
	sum := uint16(in.m.V(ins.X)) + uint16(in.m.V(ins.Y))
	in.setResult(ins.X, uint8(sum), uint8(sum>>8))
	return nil
}

// sub sets VF to 1 if no borrow occurs.
func (in *Interpreter) sub(ins opcode.Instruction) error {
	vx, vy := in.m.V(ins.X), in.m.V(ins.Y)
	in.setResult(ins.X, vx-vy, boolToFlag(vx >= vy))
	return nil
}

// subn sets VX to VY minus VX, VF is set to 1 if no borrow occurs.
func (in *Interpreter) subn(ins opcode.Instruction) error {
	vx, vy := in.m.V(ins.X), in.m.V(ins.Y)
	in.setResult(ins.X, vy-vx, boolToFlag(vy >= vx))
	return nil
}

// shiftSource returns the register value that a shift operates on.
func (in *Interpreter) shiftSource(ins opcode.Instruction) uint8 {
	if in.cfg.Quirks.ShiftUsesVY {
		return in.m.V(ins.Y)
	}
	return in.m.V(ins.X)
}

func (in *Interpreter) shr(ins opcode.Instruction) error {
	value := in.shiftSource(ins)
	in.setResult(ins.X, value>>1, value&0x01)
	return nil
}

func (in *Interpreter) shl(ins opcode.Instruction) error {
	value := in.shiftSource(ins)
	in.setResult(ins.X, value<<1, value>>7)
	return nil
}

func (in *Interpreter) ldI(ins opcode.Instruction) error {
	in.m.SetI(ins.NNN)
	return nil
}

func (in *Interpreter) jpV0(ins opcode.Instruction) error {
	in.m.SetPC(ins.NNN + uint16(in.m.V(0)))
	return nil
}

func (in *Interpreter) rnd(ins opcode.Instruction) error {
	value := uint8(in.rng.Uint32())
	in.m.SetV(ins.X, value&ins.NN)
	return nil
}

// drw draws a sprite of N rows that is read from memory at I. VF is set to 1
// if any pixel was turned off.
func (in *Interpreter) drw(ins opcode.Instruction) error {
	x, y := in.m.V(ins.X), in.m.V(ins.Y)
	in.m.SetV(flagRegister, 0)

	sprite := make([]byte, ins.N)
	address := in.m.I()
	for row := range sprite {
		sprite[row] = in.m.Read(address + uint16(row))
	}

	collision := in.m.DrawSprite(x, y, sprite)
	in.m.SetV(flagRegister, boolToFlag(collision))
	return nil
}

func (in *Interpreter) skp(ins opcode.Instruction) error {
	in.skipIf(in.m.KeyPressed(machine.Key(in.m.V(ins.X))))
	return nil
}

func (in *Interpreter) sknp(ins opcode.Instruction) error {
	in.skipIf(!in.m.KeyPressed(machine.Key(in.m.V(ins.X))))
	return nil
}

func (in *Interpreter) ldVxDT(ins opcode.Instruction) error {
	in.m.SetV(ins.X, in.m.DelayTimer())
	return nil
}

func (in *Interpreter) ldDTVx(ins opcode.Instruction) error {
	in.m.SetDelayTimer(in.m.V(ins.X))
	return nil
}

func (in *Interpreter) ldSTVx(ins opcode.Instruction) error {
	in.m.SetSoundTimer(in.m.V(ins.X))
	return nil
}

func (in *Interpreter) addI(ins opcode.Instruction) error {
	in.m.SetI(in.m.I() + uint16(in.m.V(ins.X)))
	return nil
}

func (in *Interpreter) ldFont(ins opcode.Instruction) error {
	in.m.SetI(machine.GlyphAddress(in.m.V(ins.X)))
	return nil
}

// ldBCD stores the decimal digits of VX at I, I+1 and I+2.
func (in *Interpreter) ldBCD(ins opcode.Instruction) error {
	value := in.m.V(ins.X)
	address := in.m.I()
	in.m.Write(address, value/100)
	in.m.Write(address+1, value/10%10)
	in.m.Write(address+2, value%10)
	return nil
}

// ldStore stores the registers V0 to VX in memory starting at I.
func (in *Interpreter) ldStore(ins opcode.Instruction) error {
	address := in.m.I()
	for reg := range ins.X + 1 {
		in.m.Write(address+uint16(reg), in.m.V(reg))
	}
	in.advanceIndex(ins)
	return nil
}

// ldLoad loads the registers V0 to VX from memory starting at I.
func (in *Interpreter) ldLoad(ins opcode.Instruction) error {
	address := in.m.I()
	for reg := range ins.X + 1 {
		in.m.SetV(reg, in.m.Read(address+uint16(reg)))
	}
	in.advanceIndex(ins)
	return nil
}

func (in *Interpreter) advanceIndex(ins opcode.Instruction) {
	if in.cfg.Quirks.LoadStoreIncrementsI {
		in.m.SetI(in.m.I() + uint16(ins.X) + 1)
	}
}

func boolToFlag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
