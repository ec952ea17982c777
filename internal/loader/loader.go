// Package loader handles ROM file loading operations.
package loader

import (
	"fmt"
	"os"

	"github.com/retroenv/chip8vm/internal/interpreter"
	"github.com/retroenv/chip8vm/internal/machine"
)

// Loader handles loading ROM files from disk.
type Loader struct{}

// New creates a new ROM loader.
func New() *Loader {
	return &Loader{}
}

// Read returns the content of the ROM file. A file that can not be opened or
// read is reported as a machine.LoadError wrapping machine.ErrIOFailure.
func (l *Loader) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &machine.LoadError{
			Reason: machine.ErrIOFailure,
			Err:    err,
		}
	}
	return data, nil
}

// Load reads the ROM file and loads it into the interpreter. It returns the
// size of the loaded program image.
func (l *Loader) Load(in *interpreter.Interpreter, path string) (int, error) {
	program, err := l.Read(path)
	if err != nil {
		return 0, fmt.Errorf("opening file %s: %w", path, err)
	}

	if err := in.Load(program); err != nil {
		return 0, fmt.Errorf("loading file %s: %w", path, err)
	}
	return len(program), nil
}
