package machine

import "fmt"

// RunState is the execution state of a machine.
type RunState uint8

// Run states. Halted is terminal, a halted machine never runs again.
const (
	Running RunState = iota
	Paused
	Halted
)

func (s RunState) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Halted:
		return "halted"
	default:
		return fmt.Sprintf("RunState(%d)", uint8(s))
	}
}

// RunState returns the current run state.
func (m *Machine) RunState() RunState { return m.state }

// Pause freezes a running machine.
func (m *Machine) Pause() {
	if m.state == Running {
		m.state = Paused
	}
}

// Resume continues a paused machine.
func (m *Machine) Resume() {
	if m.state == Paused {
		m.state = Running
	}
}

// TogglePause switches between running and paused.
func (m *Machine) TogglePause() {
	switch m.state {
	case Running:
		m.state = Paused
	case Paused:
		m.state = Running
	}
}

// Quit halts the machine permanently.
func (m *Machine) Quit() {
	m.state = Halted
}

// Snapshot is a read-only copy of the machine state.
type Snapshot struct {
	PC         uint16
	I          uint16
	V          [RegisterCount]uint8
	DelayTimer uint8
	SoundTimer uint8
	Stack      []uint16
	Keys       [KeyCount]bool
	State      RunState
	Memory     [MemorySize]byte
}

// Snapshot returns a copy of the machine state.
func (m *Machine) Snapshot() Snapshot {
	return Snapshot{
		PC:         m.pc,
		I:          m.i,
		V:          m.v,
		DelayTimer: m.delayTimer,
		SoundTimer: m.soundTimer,
		Stack:      m.stack.values(),
		Keys:       m.keys,
		State:      m.state,
		Memory:     m.memory,
	}
}

// String returns formatted information about the machine state.
func (m *Machine) String() string {
	return fmt.Sprintf("Machine{V: [% 02X], I: %04X, PC: %04X, Stack: % 04X, "+
		"DT: %02X, ST: %02X, State: %s}",
		m.v, m.i, m.pc, m.stack.values(), m.delayTimer, m.soundTimer, m.state)
}
