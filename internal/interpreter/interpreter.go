// Package interpreter implements the CHIP-8 fetch, decode and execute cycle
// on top of the machine state and provides the API that host shells use to
// drive a machine.
package interpreter

import (
	"io"
	"math/rand/v2"

	"github.com/retroenv/chip8vm/internal/disasm"
	"github.com/retroenv/chip8vm/internal/machine"
	"github.com/retroenv/chip8vm/internal/opcode"
	"github.com/retroenv/retrogolib/log"
)

// pcgStream is the fixed stream selector of the random generator, only the
// seed varies between runs.
const pcgStream = 0x9E3779B97F4A7C15

// Quirks selects behavior variants of CHIP-8 implementations that programs
// depend on. The zero value selects the behavior of modern interpreters.
type Quirks struct {
	// ShiftUsesVY makes 8XY6 and 8XYE shift VY into VX instead of shifting VX.
	ShiftUsesVY bool
	// LoadStoreIncrementsI makes FX55 and FX65 leave I pointing after the
	// last accessed register.
	LoadStoreIncrementsI bool
	// LogicResetsVF makes 8XY1, 8XY2 and 8XY3 clear VF.
	LogicResetsVF bool
}

// Config holds the interpreter settings.
type Config struct {
	Quirks Quirks

	// Seed initializes the random number generator used by CXNN.
	// A value of 0 selects a random seed.
	Seed uint64

	// Trace logs every executed instruction at debug level.
	Trace bool
}

type handler func(ins opcode.Instruction) error

// Interpreter executes instructions on a machine.
// It is not safe for concurrent use, all calls have to come from the loop
// that owns the machine.
type Interpreter struct {
	logger *log.Logger
	m      *machine.Machine
	cfg    Config
	rng    *rand.Rand

	handlers [opcode.Count]handler
	keyWait  keyWait

	lastFault *Fault
}

// New returns an interpreter that executes instructions on the machine.
func New(logger *log.Logger, m *machine.Machine, cfg Config) *Interpreter {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	in := &Interpreter{
		logger: logger,
		m:      m,
		cfg:    cfg,
		rng:    rand.New(rand.NewPCG(seed, pcgStream)),
	}
	in.initHandlers()
	return in
}

// Machine returns the machine that the interpreter executes on.
func (in *Interpreter) Machine() *machine.Machine {
	return in.m
}

// Load loads the program image into the machine and prepares it for
// execution from the program start address.
func (in *Interpreter) Load(program []byte) error {
	if err := in.m.Load(program); err != nil {
		return err
	}
	in.loaded()
	return nil
}

// LoadReader reads a program image from the reader and loads it.
func (in *Interpreter) LoadReader(r io.Reader) error {
	if err := in.m.LoadReader(r); err != nil {
		return err
	}
	in.loaded()
	return nil
}

func (in *Interpreter) loaded() {
	in.reset()
	in.logger.Debug("Program loaded", log.Int("size", in.m.ProgramSize()))
}

func (in *Interpreter) reset() {
	in.keyWait = keyWait{}
	in.lastFault = nil
}

// Step executes exactly one instruction if the machine is running.
// While the machine waits for a key press no instruction is fetched.
// Faults of the executed instruction are logged and recorded, the machine
// keeps running.
func (in *Interpreter) Step() {
	if in.m.RunState() != machine.Running {
		return
	}
	in.step()
}

// StepOnce executes exactly one instruction of a paused or running machine.
// It allows a debugger to single step a paused machine.
func (in *Interpreter) StepOnce() {
	if in.m.RunState() == machine.Halted {
		return
	}
	in.step()
}

func (in *Interpreter) step() {
	if in.keyWait.active {
		in.pollKeyWait()
		return
	}

	address := in.m.PC()
	raw := in.m.ReadWord(address)
	in.m.SetPC(address + 2)

	ins := opcode.Decode(raw)
	if in.cfg.Trace {
		in.logger.Debug("Executing instruction",
			log.Hex("address", address),
			log.String("code", disasm.Format(raw)))
	}

	if err := in.handlers[ins.Op](ins); err != nil {
		in.fault(address, ins, err)
	}
}

func (in *Interpreter) fault(address uint16, ins opcode.Instruction, err error) {
	in.lastFault = &Fault{
		Address:     address,
		Instruction: ins,
		Err:         err,
	}
	in.logger.Warn("Instruction skipped",
		log.Hex("address", address),
		log.Hex("opcode", ins.Raw),
		log.Err(err))
}

// LastFault returns the last instruction fault since the program was loaded
// or nil if none occurred. A non nil error is of type *Fault.
func (in *Interpreter) LastFault() error {
	if in.lastFault == nil {
		return nil
	}
	return in.lastFault
}

// SetKey sets the pressed state of a keypad key.
func (in *Interpreter) SetKey(key machine.Key, pressed bool) {
	in.m.SetKey(key, pressed)
}

// TickTimers decrements the machine timers, it has to be called at 60Hz.
func (in *Interpreter) TickTimers() {
	in.m.TickTimers()
}

// Display returns a copy of the display buffer.
func (in *Interpreter) Display() machine.Display {
	return in.m.Display()
}

// SoundActive returns whether a tone should be played.
func (in *Interpreter) SoundActive() bool {
	return in.m.SoundActive()
}

// RunState returns the run state of the machine.
func (in *Interpreter) RunState() machine.RunState {
	return in.m.RunState()
}

// RequestPause pauses a running machine.
func (in *Interpreter) RequestPause() {
	in.m.Pause()
}

// RequestResume resumes a paused machine.
func (in *Interpreter) RequestResume() {
	in.m.Resume()
}

// TogglePause switches between running and paused.
func (in *Interpreter) TogglePause() {
	in.m.TogglePause()
}

// RequestQuit halts the machine permanently.
func (in *Interpreter) RequestQuit() {
	in.m.Quit()
}

// AwaitingKey returns whether execution is suspended by FX0A until a key
// gets pressed.
func (in *Interpreter) AwaitingKey() bool {
	return in.keyWait.active
}
