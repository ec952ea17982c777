// Package config handles application configuration and setup
package config

import (
	"github.com/retroenv/chip8vm/internal/host"
	"github.com/retroenv/chip8vm/internal/interpreter"
	"github.com/retroenv/chip8vm/internal/machine"
	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// MachineSettings returns the machine settings for the program options.
func MachineSettings(opts options.Program) *machine.Settings {
	return &machine.Settings{
		StackSize: opts.StackSize,
	}
}

// Interpreter returns the interpreter configuration for the program options.
func Interpreter(opts options.Program) interpreter.Config {
	return interpreter.Config{
		Quirks: interpreter.Quirks{
			ShiftUsesVY:          opts.ShiftUsesVY,
			LoadStoreIncrementsI: opts.LoadStoreIncrementsI,
			LogicResetsVF:        opts.LogicResetsVF,
		},
		Seed:  opts.Seed,
		Trace: opts.Trace,
	}
}

// Loop returns the loop configuration for the program options.
func Loop(opts options.Program) host.Config {
	cfg := host.DefaultConfig()
	cfg.InstructionsPerFrame = opts.InstructionsPerFrame
	cfg.FrameLimit = opts.Frames
	return cfg
}
