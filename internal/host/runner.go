package host

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/retroenv/chip8vm/internal/interpreter"
	"github.com/retroenv/chip8vm/internal/machine"
	"github.com/retroenv/retrogolib/log"
)

// Default loop settings.
const (
	DefaultFrameRate            = 60
	DefaultInstructionsPerFrame = 10
)

// Config holds the loop settings.
type Config struct {
	// FrameRate is the number of frames per second, timers are ticked once
	// per frame.
	FrameRate int
	// InstructionsPerFrame is the number of instructions executed per frame.
	InstructionsPerFrame int
	// FrameLimit stops the loop after the number of frames, 0 means no limit.
	FrameLimit int
}

// DefaultConfig returns the default loop settings.
func DefaultConfig() Config {
	return Config{
		FrameRate:            DefaultFrameRate,
		InstructionsPerFrame: DefaultInstructionsPerFrame,
	}
}

// Validate validates the settings.
func (c Config) Validate() error {
	if c.FrameRate <= 0 {
		return fmt.Errorf("frame rate must be positive, got %d", c.FrameRate)
	}
	if c.InstructionsPerFrame <= 0 {
		return fmt.Errorf("instructions per frame must be positive, got %d", c.InstructionsPerFrame)
	}
	if c.FrameLimit < 0 {
		return fmt.Errorf("frame limit must not be negative, got %d", c.FrameLimit)
	}
	return nil
}

// Runner executes the interpreter in a fixed rate loop. Every frame it
// applies the input events of the front end, executes the configured number
// of instructions, ticks the timers once and renders the display if needed.
type Runner struct {
	logger   *log.Logger
	in       *interpreter.Interpreter
	frontend Frontend
	cfg      Config

	renderAll bool
	frames    int
}

// New returns a runner for the interpreter and front end.
func New(logger *log.Logger, in *interpreter.Interpreter, frontend Frontend, cfg Config) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating loop config: %w", err)
	}

	r := &Runner{
		logger:   logger,
		in:       in,
		frontend: frontend,
		cfg:      cfg,
	}
	if cr, ok := frontend.(ContinuousRenderer); ok {
		r.renderAll = cr.RenderEveryFrame()
	}
	return r, nil
}

// Run runs the loop until the machine halts, the frame limit is reached or
// the context is canceled.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(r.cfg.FrameRate))
	defer ticker.Stop()

	r.logger.Debug("Starting loop",
		log.Int("frameRate", r.cfg.FrameRate),
		log.Int("instructionsPerFrame", r.cfg.InstructionsPerFrame))

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("Loop canceled", log.Int("frames", r.frames))
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			done, err := r.Frame()
			if err != nil {
				return err
			}
			if done {
				r.logger.Debug("Loop finished", log.Int("frames", r.frames))
				return nil
			}
		}
	}
}

// Frame runs a single frame of the loop and returns whether the loop is
// done.
func (r *Runner) Frame() (bool, error) {
	stateBefore := r.in.RunState()
	stepped := r.applyEvents(r.frontend.Poll())

	if r.in.RunState() == machine.Halted {
		return true, nil
	}

	for range r.cfg.InstructionsPerFrame {
		r.in.Step()
	}
	r.in.TickTimers()
	r.frames++

	m := r.in.Machine()
	dirty := m.TakeDirty()
	if dirty || stepped || r.renderAll || stateBefore != r.in.RunState() {
		if err := r.render(); err != nil {
			return false, err
		}
	}

	if r.in.RunState() == machine.Halted {
		return true, nil
	}
	if r.cfg.FrameLimit > 0 && r.frames >= r.cfg.FrameLimit {
		return true, nil
	}
	return false, nil
}

// Frames returns the number of frames that were run.
func (r *Runner) Frames() int {
	return r.frames
}

// applyEvents applies the input events to the interpreter and returns
// whether a single step was executed.
func (r *Runner) applyEvents(events []Event) bool {
	stepped := false
	for _, event := range events {
		switch event.Type {
		case KeyDown:
			r.in.SetKey(event.Key, true)
		case KeyUp:
			r.in.SetKey(event.Key, false)
		case Pause:
			r.in.TogglePause()
			r.logger.Debug("Run state changed", log.Stringer("state", r.in.RunState()))
		case Step:
			if r.in.RunState() == machine.Paused {
				r.in.StepOnce()
				stepped = true
			}
		case Quit:
			r.in.RequestQuit()
		}
	}
	return stepped
}

func (r *Runner) render() error {
	m := r.in.Machine()
	frame := Frame{
		Display:     m.Display(),
		Sound:       m.SoundActive(),
		AwaitingKey: r.in.AwaitingKey(),
		Snapshot:    m.Snapshot(),
		Count:       r.frames,
	}
	if err := r.frontend.Render(frame); err != nil {
		return fmt.Errorf("rendering frame: %w", err)
	}
	return nil
}
