package host

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/retroenv/chip8vm/internal/interpreter"
	"github.com/retroenv/chip8vm/internal/machine"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

type fakeFrontend struct {
	events     [][]Event // events returned by the next Poll calls
	frames     []Frame
	renderErr  error
	everyFrame bool
}

func (f *fakeFrontend) Poll() []Event {
	if len(f.events) == 0 {
		return nil
	}
	events := f.events[0]
	f.events = f.events[1:]
	return events
}

func (f *fakeFrontend) Render(frame Frame) error {
	f.frames = append(f.frames, frame)
	return f.renderErr
}

func (f *fakeFrontend) Close() error { return nil }

func (f *fakeFrontend) RenderEveryFrame() bool { return f.everyFrame }

func newTestRunner(t *testing.T, frontend Frontend, cfg Config, program ...byte) (*Runner, *interpreter.Interpreter) {
	t.Helper()
	logger := log.NewTestLogger(t)

	m, err := machine.New(nil)
	assert.NoError(t, err)
	in := interpreter.New(logger, m, interpreter.Config{Seed: 1})
	assert.NoError(t, in.Load(program))

	r, err := New(logger, in, frontend, cfg)
	assert.NoError(t, err)
	return r, in
}

// counterProgram increments V0 in an endless loop.
var counterProgram = []byte{
	0x70, 0x01, // add V0, $01
	0x12, 0x00, // jp $200
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"frame limit", Config{FrameRate: 60, InstructionsPerFrame: 1, FrameLimit: 10}, false},
		{"no frame rate", Config{InstructionsPerFrame: 1}, true},
		{"no instructions", Config{FrameRate: 60}, true},
		{"negative frame limit", Config{FrameRate: 60, InstructionsPerFrame: 1, FrameLimit: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRunner_Frame(t *testing.T) {
	frontend := &fakeFrontend{}
	cfg := DefaultConfig()
	cfg.InstructionsPerFrame = 4
	r, in := newTestRunner(t, frontend, cfg, counterProgram...)
	m := in.Machine()
	m.SetDelayTimer(10)

	done, err := r.Frame()
	assert.NoError(t, err)
	assert.False(t, done)

	// 4 instructions are 2 loop iterations
	assert.Equal(t, uint8(2), m.V(0))
	assert.Equal(t, uint8(9), m.DelayTimer())
	assert.Equal(t, 1, r.Frames())

	// the load marked the display as changed
	assert.Len(t, frontend.frames, 1)

	done, err = r.Frame()
	assert.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, uint8(4), m.V(0))
	assert.Equal(t, uint8(8), m.DelayTimer())
	assert.Len(t, frontend.frames, 1)
}

func TestRunner_RenderEveryFrame(t *testing.T) {
	frontend := &fakeFrontend{everyFrame: true}
	r, _ := newTestRunner(t, frontend, DefaultConfig(), counterProgram...)

	for range 3 {
		_, err := r.Frame()
		assert.NoError(t, err)
	}
	assert.Len(t, frontend.frames, 3)
	assert.Equal(t, 3, frontend.frames[2].Count)
}

func TestRunner_Events(t *testing.T) {
	frontend := &fakeFrontend{
		events: [][]Event{
			{{Type: KeyDown, Key: 0xA}},
			{{Type: KeyUp, Key: 0xA}, {Type: Pause}},
			{{Type: Step}},
			{{Type: Pause}},
			{{Type: Quit}},
		},
	}
	cfg := DefaultConfig()
	cfg.InstructionsPerFrame = 2
	r, in := newTestRunner(t, frontend, cfg, counterProgram...)
	m := in.Machine()

	_, err := r.Frame()
	assert.NoError(t, err)
	assert.True(t, m.KeyPressed(0xA))
	assert.Equal(t, uint8(1), m.V(0))

	_, err = r.Frame()
	assert.NoError(t, err)
	assert.False(t, m.KeyPressed(0xA))
	assert.Equal(t, machine.Paused, in.RunState())
	assert.Equal(t, uint8(1), m.V(0))

	// a single step while paused
	_, err = r.Frame()
	assert.NoError(t, err)
	assert.Equal(t, uint8(2), m.V(0))
	assert.Equal(t, uint16(0x202), m.PC())
	assert.Equal(t, machine.Paused, in.RunState())
	last := frontend.frames[len(frontend.frames)-1]
	assert.Equal(t, uint16(0x202), last.Snapshot.PC)

	_, err = r.Frame()
	assert.NoError(t, err)
	assert.Equal(t, machine.Running, in.RunState())
	assert.Equal(t, uint8(3), m.V(0))

	done, err := r.Frame()
	assert.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, machine.Halted, in.RunState())
}

func TestRunner_FrameLimit(t *testing.T) {
	frontend := &fakeFrontend{}
	cfg := DefaultConfig()
	cfg.FrameRate = 1000
	cfg.FrameLimit = 5
	r, _ := newTestRunner(t, frontend, cfg, counterProgram...)

	assert.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 5, r.Frames())
}

func TestRunner_Canceled(t *testing.T) {
	frontend := &fakeFrontend{}
	cfg := DefaultConfig()
	cfg.FrameRate = 1000
	r, _ := newTestRunner(t, frontend, cfg, counterProgram...)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := r.Run(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	ctx, cancel = context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, r.Run(ctx))
}

func TestRunner_RenderError(t *testing.T) {
	frontend := &fakeFrontend{renderErr: errors.New("terminal gone")}
	r, _ := newTestRunner(t, frontend, DefaultConfig(), counterProgram...)

	_, err := r.Frame()
	assert.ErrorContains(t, err, "terminal gone")
}
