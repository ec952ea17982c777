package machine

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
	"github.com/retroenv/retrogolib/assert"
)

func newTestMachine(t *testing.T) *Machine {
	t.Helper()
	m, err := New(nil)
	assert.NoError(t, err)
	return m
}

func TestNew(t *testing.T) {
	m := newTestMachine(t)

	assert.Equal(t, Paused, m.RunState())
	assert.Equal(t, MaxStackSize, m.StackCapacity())
	for i, b := range fontSet {
		assert.Equal(t, b, m.Read(FontAddress+uint16(i)))
	}
	assert.Equal(t, byte(0), m.Read(ProgramStart))
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name      string
		stackSize int
		wantErr   bool
	}{
		{"original size", 12, false},
		{"maximum size", 16, false},
		{"too small", 11, true},
		{"too large", 17, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(&Settings{StackSize: tt.stackSize})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("program fits", func(t *testing.T) {
		for _, size := range []int{0, 1, 2, 100, MaxProgramSize} {
			m := newTestMachine(t)
			program := make([]byte, size)
			for i := range program {
				program[i] = byte(i*7 + 3)
			}

			assert.NoError(t, m.Load(program))
			for i, b := range program {
				assert.Equal(t, b, m.Read(ProgramStart+uint16(i)))
			}
			assert.Equal(t, uint16(ProgramStart), m.PC())
			assert.Equal(t, Running, m.RunState())
		}
	})

	t.Run("program too large", func(t *testing.T) {
		m := newTestMachine(t)
		assert.NoError(t, m.Load([]byte{0xAA, 0xBB}))
		m.SetV(3, 9)

		err := m.Load(make([]byte, MaxProgramSize+1))
		assert.Error(t, err)
		assert.True(t, errors.Is(err, ErrImageTooLarge))

		var loadErr *LoadError
		assert.True(t, errors.As(err, &loadErr))
		assert.Equal(t, MaxProgramSize+1, loadErr.Size)

		// nothing was mutated
		assert.Equal(t, byte(0xAA), m.Read(ProgramStart))
		assert.Equal(t, byte(0xBB), m.Read(ProgramStart+1))
		assert.Equal(t, uint8(9), m.V(3))
	})

	t.Run("load resets state", func(t *testing.T) {
		m := newTestMachine(t)
		assert.NoError(t, m.Load([]byte{0x12, 0x00}))
		m.SetV(0xF, 1)
		m.SetI(0x300)
		m.SetPC(0x400)
		m.SetDelayTimer(10)
		m.SetSoundTimer(20)
		m.SetKey(4, true)
		assert.NoError(t, m.Push(0x202))
		m.DrawSprite(0, 0, []byte{0xFF})

		assert.NoError(t, m.Load([]byte{0x00, 0xE0}))
		assert.Equal(t, uint8(0), m.V(0xF))
		assert.Equal(t, uint16(0), m.I())
		assert.Equal(t, uint16(ProgramStart), m.PC())
		assert.Equal(t, uint8(0), m.DelayTimer())
		assert.Equal(t, uint8(0), m.SoundTimer())
		assert.False(t, m.KeyPressed(4))
		assert.Equal(t, 0, m.StackDepth())
		d := m.Display()
		assert.False(t, d.Pixel(0, 0))
	})

	t.Run("halted machine", func(t *testing.T) {
		m := newTestMachine(t)
		m.Quit()
		assert.True(t, errors.Is(m.Load([]byte{0x00}), ErrHalted))
	})
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}

func TestLoadReader(t *testing.T) {
	t.Run("reads whole source", func(t *testing.T) {
		m := newTestMachine(t)
		assert.NoError(t, m.LoadReader(bytes.NewReader([]byte{0x60, 0x05})))
		assert.Equal(t, uint16(0x6005), m.ReadWord(ProgramStart))
	})

	t.Run("read failure", func(t *testing.T) {
		m := newTestMachine(t)
		err := m.LoadReader(failingReader{})
		assert.True(t, errors.Is(err, ErrIOFailure))
		assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
		assert.Equal(t, Paused, m.RunState())
	})

	t.Run("oversized source is not truncated", func(t *testing.T) {
		m := newTestMachine(t)
		err := m.LoadReader(bytes.NewReader(make([]byte, MaxProgramSize+10)))
		assert.True(t, errors.Is(err, ErrImageTooLarge))
	})
}

func TestMemoryAccessWraps(t *testing.T) {
	m := newTestMachine(t)

	m.Write(0x1FFF, 0x42)
	assert.Equal(t, byte(0x42), m.Read(0xFFF))
	assert.Equal(t, byte(0x42), m.Read(0xFFFF))

	m.Write(0x000, 0x11)
	assert.Equal(t, uint16(0x4211), m.ReadWord(0xFFF))
}

func TestStack(t *testing.T) {
	m, err := New(&Settings{StackSize: MinStackSize})
	assert.NoError(t, err)

	_, err = m.Pop()
	assert.True(t, errors.Is(err, ErrStackUnderflow))
	assert.True(t, errors.Is(err, chip8.ErrStackUnderflow))

	for i := range MinStackSize {
		assert.NoError(t, m.Push(uint16(0x200+i*2)))
	}
	err = m.Push(0x300)
	assert.True(t, errors.Is(err, ErrStackOverflow))
	assert.True(t, errors.Is(err, chip8.ErrStackOverflow))
	assert.Equal(t, MinStackSize, m.StackDepth())

	address, err := m.Pop()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x200+(MinStackSize-1)*2), address)
	assert.Equal(t, MinStackSize-1, m.StackDepth())
}

func TestTickTimers(t *testing.T) {
	m := newTestMachine(t)
	assert.NoError(t, m.Load(nil))
	m.SetDelayTimer(60)
	m.SetSoundTimer(2)
	assert.True(t, m.SoundActive())

	for range 60 {
		m.TickTimers()
	}
	assert.Equal(t, uint8(0), m.DelayTimer())
	assert.Equal(t, uint8(0), m.SoundTimer())
	assert.False(t, m.SoundActive())

	m.TickTimers()
	assert.Equal(t, uint8(0), m.DelayTimer())
}

func TestTickTimers_Paused(t *testing.T) {
	m := newTestMachine(t)
	assert.NoError(t, m.Load(nil))
	m.SetDelayTimer(10)
	m.SetSoundTimer(10)

	m.Pause()
	for range 5 {
		m.TickTimers()
	}
	assert.Equal(t, uint8(10), m.DelayTimer())
	assert.Equal(t, uint8(10), m.SoundTimer())

	m.Resume()
	m.TickTimers()
	assert.Equal(t, uint8(9), m.DelayTimer())
}

func TestRunStateTransitions(t *testing.T) {
	m := newTestMachine(t)
	assert.NoError(t, m.Load(nil))

	m.TogglePause()
	assert.Equal(t, Paused, m.RunState())
	m.TogglePause()
	assert.Equal(t, Running, m.RunState())

	m.Pause()
	m.Quit()
	assert.Equal(t, Halted, m.RunState())

	m.Resume()
	m.TogglePause()
	assert.Equal(t, Halted, m.RunState())
	assert.Equal(t, "halted", m.RunState().String())
}

func TestSetKey(t *testing.T) {
	m := newTestMachine(t)

	m.SetKey(0xA, true)
	assert.True(t, m.KeyPressed(0xA))
	m.SetKey(0x1A, false) // masked to 0xA
	assert.False(t, m.KeyPressed(0xA))

	m.SetKey(0xF, true)
	keys := m.Keys()
	assert.True(t, keys[0xF])
}

func TestSnapshot(t *testing.T) {
	m := newTestMachine(t)
	assert.NoError(t, m.Load([]byte{0x12, 0x34}))
	assert.NoError(t, m.Push(0x206))
	m.SetV(2, 0x22)

	snap := m.Snapshot()
	assert.Equal(t, uint16(ProgramStart), snap.PC)
	assert.Equal(t, uint8(0x22), snap.V[2])
	assert.Equal(t, []uint16{0x206}, snap.Stack)
	assert.Equal(t, byte(0x12), snap.Memory[ProgramStart])

	// the snapshot is a copy
	snap.Memory[ProgramStart] = 0
	assert.Equal(t, byte(0x12), m.Read(ProgramStart))
}
