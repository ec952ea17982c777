// Package machine holds the mutable state of a CHIP-8 virtual machine.
//
// The package contains no opcode logic. It exposes controlled mutation points
// that the interpreter uses to execute instructions and read-only views that a
// host uses for presentation.
package machine

import (
	"bytes"
	"fmt"
	"io"
)

// CHIP-8 memory layout constants.
//
//	0x000-0x1FF: Interpreter area, font table at FontAddress
//	0x200-0xFFF: Program and data area
const (
	// MemorySize is the size of the addressable memory in bytes.
	MemorySize = 0x1000

	// ProgramStart is the address where program images are loaded.
	ProgramStart = 0x200

	// MaxProgramSize is the largest program image that fits into memory.
	MaxProgramSize = MemorySize - ProgramStart

	// addressMask keeps every memory access inside the 4KB address space.
	addressMask = MemorySize - 1

	// RegisterCount is the number of general purpose registers V0-VF.
	RegisterCount = 16

	// KeyCount is the number of keys on the hex keypad.
	KeyCount = 16
)

// Key is a key of the hex keypad, 0x0-0xF.
type Key uint8

// Settings holds the configuration parameters for a Machine instance.
type Settings struct {
	// StackSize defines the maximum amount of nested calls.
	// The COSMAC VIP interpreter allowed 12 levels.
	StackSize int
}

// DefaultSettings are used when no settings are passed to New.
var DefaultSettings = Settings{
	StackSize: MaxStackSize,
}

// Validate validates the settings.
func (s Settings) Validate() error {
	if s.StackSize < MinStackSize || s.StackSize > MaxStackSize {
		return fmt.Errorf("stack size must be between %d and %d, got %d",
			MinStackSize, MaxStackSize, s.StackSize)
	}
	return nil
}

// Machine is the complete state of a CHIP-8 virtual machine.
// A Machine is not safe for concurrent use, it is owned by one execution loop.
type Machine struct {
	memory [MemorySize]byte
	v      [RegisterCount]uint8
	i      uint16
	pc     uint16

	stack stack

	delayTimer uint8
	soundTimer uint8

	keys    [KeyCount]bool
	display Display
	dirty   bool

	programSize int

	state RunState
}

// New returns a machine with zeroed memory and the font table loaded.
// The machine starts in Paused state until a program gets loaded.
func New(settings *Settings) (*Machine, error) {
	if settings == nil {
		settings = &DefaultSettings
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	m := &Machine{
		stack: stack{capacity: settings.StackSize},
		state: Paused,
	}
	copy(m.memory[FontAddress:], fontSet[:])
	return m, nil
}

// Load copies the program image into memory at ProgramStart and resets the
// machine state to start executing it. If the image does not fit into memory
// an error is returned and the memory is left untouched.
func (m *Machine) Load(program []byte) error {
	if m.state == Halted {
		return ErrHalted
	}
	if len(program) > MaxProgramSize {
		return &LoadError{
			Reason: ErrImageTooLarge,
			Size:   len(program),
		}
	}

	m.memory = [MemorySize]byte{}
	copy(m.memory[FontAddress:], fontSet[:])
	copy(m.memory[ProgramStart:], program)

	m.v = [RegisterCount]uint8{}
	m.i = 0
	m.pc = ProgramStart
	m.stack.reset()
	m.delayTimer = 0
	m.soundTimer = 0
	m.keys = [KeyCount]bool{}
	m.display.clear()
	m.dirty = true
	m.programSize = len(program)
	m.state = Running
	return nil
}

// ProgramSize returns the size of the loaded program image.
func (m *Machine) ProgramSize() int { return m.programSize }

// LoadReader reads a program image from the reader and loads it.
// Read failures are returned as a LoadError wrapping ErrIOFailure.
func (m *Machine) LoadReader(r io.Reader) error {
	// read one byte more than fits to detect oversized images
	var buf bytes.Buffer
	n, err := buf.ReadFrom(io.LimitReader(r, MaxProgramSize+1))
	if err != nil {
		return &LoadError{
			Reason: ErrIOFailure,
			Size:   int(n),
			Err:    err,
		}
	}
	return m.Load(buf.Bytes())
}

// V returns the value of register VX.
func (m *Machine) V(x uint8) uint8 { return m.v[x&0xF] }

// SetV sets register VX.
func (m *Machine) SetV(x, value uint8) { m.v[x&0xF] = value }

// I returns the address register.
func (m *Machine) I() uint16 { return m.i }

// SetI sets the address register.
func (m *Machine) SetI(value uint16) { m.i = value }

// PC returns the program counter.
func (m *Machine) PC() uint16 { return m.pc }

// SetPC sets the program counter, wrapped into the address space.
func (m *Machine) SetPC(address uint16) { m.pc = address & addressMask }

// Read returns the memory byte at the address, wrapped into the address space.
func (m *Machine) Read(address uint16) byte {
	return m.memory[address&addressMask]
}

// ReadWord returns the big-endian 16-bit word at the address.
func (m *Machine) ReadWord(address uint16) uint16 {
	return uint16(m.Read(address))<<8 | uint16(m.Read(address+1))
}

// Write sets the memory byte at the address, wrapped into the address space.
func (m *Machine) Write(address uint16, value byte) {
	m.memory[address&addressMask] = value
}

// Push pushes a return address on the call stack.
func (m *Machine) Push(address uint16) error {
	return m.stack.push(address)
}

// Pop pops the last return address from the call stack.
func (m *Machine) Pop() (uint16, error) {
	return m.stack.pop()
}

// StackDepth returns the number of return addresses on the call stack.
func (m *Machine) StackDepth() int { return m.stack.depth }

// StackCapacity returns the maximum number of nested calls.
func (m *Machine) StackCapacity() int { return m.stack.capacity }

// DelayTimer returns the delay timer value.
func (m *Machine) DelayTimer() uint8 { return m.delayTimer }

// SetDelayTimer sets the delay timer.
func (m *Machine) SetDelayTimer(value uint8) { m.delayTimer = value }

// SoundTimer returns the sound timer value.
func (m *Machine) SoundTimer() uint8 { return m.soundTimer }

// SetSoundTimer sets the sound timer.
func (m *Machine) SetSoundTimer(value uint8) { m.soundTimer = value }

// SoundActive returns whether the sound timer is running and a tone should
// be played by the host.
func (m *Machine) SoundActive() bool { return m.soundTimer > 0 }

// TickTimers decrements the delay and sound timers towards zero.
// It has to be called at 60Hz independent of the instruction rate.
// Timers are frozen unless the machine is running.
func (m *Machine) TickTimers() {
	if m.state != Running {
		return
	}
	if m.delayTimer > 0 {
		m.delayTimer--
	}
	if m.soundTimer > 0 {
		m.soundTimer--
	}
}

// SetKey sets the pressed state of a keypad key.
func (m *Machine) SetKey(key Key, pressed bool) {
	m.keys[key&0xF] = pressed
}

// KeyPressed returns whether the key is currently pressed.
func (m *Machine) KeyPressed(key Key) bool {
	return m.keys[key&0xF]
}

// Keys returns the state of all keypad keys.
func (m *Machine) Keys() [KeyCount]bool { return m.keys }

// Display returns a copy of the display buffer.
func (m *Machine) Display() Display { return m.display }

// ClearDisplay turns all pixels off.
func (m *Machine) ClearDisplay() {
	m.display.clear()
	m.dirty = true
}

// DrawSprite XORs the sprite rows onto the display at the given position and
// returns whether any pixel was turned off.
func (m *Machine) DrawSprite(x, y uint8, sprite []byte) bool {
	m.dirty = true
	return m.display.drawSprite(x, y, sprite)
}

// TakeDirty returns whether the display changed since the last call.
func (m *Machine) TakeDirty() bool {
	dirty := m.dirty
	m.dirty = false
	return dirty
}
