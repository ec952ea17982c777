// Package app provides the main application helper for the virtual machine.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/chip8vm/internal/config"
	"github.com/retroenv/chip8vm/internal/disasm"
	"github.com/retroenv/chip8vm/internal/frontend/debugger"
	"github.com/retroenv/chip8vm/internal/frontend/headless"
	"github.com/retroenv/chip8vm/internal/frontend/terminal"
	"github.com/retroenv/chip8vm/internal/host"
	"github.com/retroenv/chip8vm/internal/interpreter"
	"github.com/retroenv/chip8vm/internal/loader"
	"github.com/retroenv/chip8vm/internal/machine"
	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// PrintBanner prints the application banner with version information.
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	versionString := version
	if commit != "" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		versionString += fmt.Sprintf(" (%s)", commit)
	}

	logger.Info("chip8vm", log.String("version", versionString))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}

// PrintInfo prints the information about the ROM file and the machine setup.
func PrintInfo(logger *log.Logger, opts options.Program, size int) {
	if opts.Quiet {
		return
	}

	logger.Info("Loading CHIP-8 ROM",
		log.String("file", opts.Input),
		log.Int("size", size),
		log.String("ui", opts.UI),
	)
	logger.Debug("Machine setup",
		log.Int("instructions_per_frame", opts.InstructionsPerFrame),
		log.Int("stack_size", opts.StackSize),
		log.String("quirks", quirkNames(opts.QuirkFlags)),
	)
}

func quirkNames(q options.QuirkFlags) string {
	var names []string
	if q.ShiftUsesVY {
		names = append(names, "shift-vy")
	}
	if q.LoadStoreIncrementsI {
		names = append(names, "loadstore-inc")
	}
	if q.LogicResetsVF {
		names = append(names, "logic-vf")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// NewFrontend creates the front end selected by the options. The headless
// front end writes the final display to w.
func NewFrontend(logger *log.Logger, opts options.Program, w io.Writer) (host.Frontend, error) {
	switch opts.UI {
	case options.UITerminal:
		return terminal.New(logger)
	case options.UIDebug:
		return debugger.New(logger)
	case options.UIHeadless:
		return headless.New(logger, w), nil
	default:
		return nil, fmt.Errorf("unsupported user interface: %s", opts.UI)
	}
}

// Disassemble writes the disassembly of the ROM file to w.
func Disassemble(logger *log.Logger, opts options.Program, w io.Writer) error {
	program, err := loader.New().Read(opts.Input)
	if err != nil {
		return fmt.Errorf("reading file %s: %w", opts.Input, err)
	}
	if len(program) > machine.MaxProgramSize {
		return &machine.LoadError{
			Reason: machine.ErrImageTooLarge,
			Size:   len(program),
		}
	}
	PrintInfo(logger, opts, len(program))

	if err := disasm.Write(w, program); err != nil {
		return fmt.Errorf("writing disassembly: %w", err)
	}
	return nil
}

// Run loads the ROM file and executes it until the user quits, the frame
// limit is reached or the context is canceled. The headless front end writes
// the final display to w.
func Run(ctx context.Context, logger *log.Logger, opts options.Program, w io.Writer) (err error) {
	m, err := machine.New(config.MachineSettings(opts))
	if err != nil {
		return fmt.Errorf("creating machine: %w", err)
	}
	in := interpreter.New(logger, m, config.Interpreter(opts))

	size, err := loader.New().Load(in, opts.Input)
	if err != nil {
		return err
	}
	PrintInfo(logger, opts, size)

	frontend, err := NewFrontend(logger, opts, w)
	if err != nil {
		return fmt.Errorf("creating front end: %w", err)
	}
	defer func() {
		if closeErr := frontend.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing front end: %w", closeErr)
		}
	}()

	runner, err := host.New(logger, in, frontend, config.Loop(opts))
	if err != nil {
		return fmt.Errorf("creating runner: %w", err)
	}

	if err := runner.Run(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Info("Run time exceeded", log.Int("frames", runner.Frames()))
			return nil
		}
		return err
	}

	logger.Debug("Execution finished",
		log.Int("frames", runner.Frames()),
		log.Stringer("state", in.RunState()),
	)
	if fault := in.LastFault(); fault != nil {
		logger.Warn("Last instruction fault", log.Err(fault))
	}
	return nil
}
