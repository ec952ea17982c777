// Package host drives a CHIP-8 interpreter at a fixed frame rate and connects
// it to a front end that presents the display and delivers input.
package host

import (
	"fmt"

	"github.com/retroenv/chip8vm/internal/machine"
)

// EventType is the kind of an input event.
type EventType uint8

// Input event types.
const (
	KeyDown EventType = iota // a keypad key was pressed
	KeyUp                    // a keypad key was released
	Pause                    // toggle between running and paused
	Step                     // execute a single instruction while paused
	Quit                     // halt the machine and stop the loop
)

func (t EventType) String() string {
	switch t {
	case KeyDown:
		return "key down"
	case KeyUp:
		return "key up"
	case Pause:
		return "pause"
	case Step:
		return "step"
	case Quit:
		return "quit"
	default:
		return fmt.Sprintf("EventType(%d)", uint8(t))
	}
}

// Event is an input event delivered by a front end.
type Event struct {
	Type EventType
	Key  machine.Key // set for KeyDown and KeyUp
}

// Frame is the presentation state passed to a front end.
type Frame struct {
	Display     machine.Display
	Sound       bool // a tone should be played while set
	AwaitingKey bool
	Snapshot    machine.Snapshot
	Count       int // number of the frame since the start of the loop
}

// Frontend presents frames and delivers input events.
// All methods are called from the goroutine that runs the loop.
type Frontend interface {
	// Poll returns the input events since the last call. It must not block.
	Poll() []Event
	// Render presents the frame.
	Render(frame Frame) error
	// Close releases the resources of the front end.
	Close() error
}

// ContinuousRenderer is implemented by front ends that show more than the
// display, like registers, and need every frame to be rendered.
type ContinuousRenderer interface {
	RenderEveryFrame() bool
}
