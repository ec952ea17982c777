package machine

import (
	"errors"
	"fmt"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

var (
	// ErrImageTooLarge is returned when a program image exceeds the free memory.
	ErrImageTooLarge = errors.New("program image too large")
	// ErrIOFailure is returned when the program image source can not be read.
	ErrIOFailure = errors.New("program image unreadable")
	// ErrHalted is returned when loading a program into a halted machine.
	ErrHalted = errors.New("machine is halted")

	// ErrStackOverflow is returned when calling beyond the stack capacity.
	ErrStackOverflow = chip8.ErrStackOverflow
	// ErrStackUnderflow is returned when returning with an empty stack.
	ErrStackUnderflow = chip8.ErrStackUnderflow
)

// A LoadError is returned when a program image can not be loaded.
type LoadError struct {
	Reason error // ErrImageTooLarge or ErrIOFailure
	Size   int   // bytes of the image that were seen
	Err    error // underlying read error, if any
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Reason, e.Err)
	}
	return fmt.Sprintf("%s (program size: %d, free memory: %d)",
		e.Reason, e.Size, MaxProgramSize)
}

// Unwrap allows errors.Is to match both the reason and the cause.
func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Reason}
	}
	return []error{e.Reason, e.Err}
}
