// Package options contains the program options.
package options

// Front end names.
const (
	UITerminal = "terminal"
	UIDebug    = "debug"
	UIHeadless = "headless"
)

// Parameters contains file path options.
type Parameters struct {
	Input string `arg:"positional" usage:"ROM file to run" required:"true"`
}

// Flags contains behavior options.
type Flags struct {
	UI          string `flag:"ui" usage:"user interface to use (terminal/debug/headless)" default:"terminal"`
	Disassemble bool   `flag:"disasm" usage:"print a disassembly listing of the ROM and exit"`
	Trace       bool   `flag:"trace" usage:"log every executed instruction, requires -debug"`
	Debug       bool   `flag:"debug" usage:"enable debugging options for extended logging"`
	Quiet       bool   `flag:"q" usage:"perform operations quietly"`
}

// MachineFlags contains options of the emulated machine.
type MachineFlags struct {
	InstructionsPerFrame int    `flag:"ipf" usage:"instructions to execute per frame, at 60 frames per second" default:"10"`
	Frames               int    `flag:"frames" usage:"stop after the given number of frames, 0 runs until quit"`
	Seed                 uint64 `flag:"seed" usage:"seed of the random number generator, 0 picks a random seed"`
	StackSize            int    `flag:"stack" usage:"call stack size (12-16)" default:"16"`
}

// QuirkFlags select behavior variants of CHIP-8 implementations.
type QuirkFlags struct {
	ShiftUsesVY          bool `flag:"shift-vy" usage:"shift instructions 8XY6/8XYE shift VY into VX"`
	LoadStoreIncrementsI bool `flag:"loadstore-inc" usage:"register store/load FX55/FX65 increment I"`
	LogicResetsVF        bool `flag:"logic-vf" usage:"logic instructions 8XY1/8XY2/8XY3 reset VF"`
}

// Program options of the virtual machine.
type Program struct {
	Parameters
	Flags
	MachineFlags
	QuirkFlags
}
