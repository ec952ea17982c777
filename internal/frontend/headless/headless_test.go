package headless

import (
	"bytes"
	"strings"
	"testing"

	"github.com/retroenv/chip8vm/internal/host"
	"github.com/retroenv/chip8vm/internal/interpreter"
	"github.com/retroenv/chip8vm/internal/machine"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestHeadlessRun(t *testing.T) {
	logger := log.NewTestLogger(t)
	m, err := machine.New(nil)
	assert.NoError(t, err)

	// draw the glyph of digit 0 at the top left and loop forever
	program := []byte{
		0x60, 0x00, // ld V0, $00
		0xF0, 0x29, // ld F, V0
		0xD0, 0x05, // drw V0, V0, $5
		0x12, 0x06, // jp $206
	}
	in := interpreter.New(logger, m, interpreter.Config{Seed: 1})
	assert.NoError(t, in.Load(program))

	var buf bytes.Buffer
	frontend := New(logger, &buf)
	assert.Empty(t, frontend.Poll())

	runner, err := host.New(logger, in, frontend, host.DefaultConfig())
	assert.NoError(t, err)
	for range 3 {
		_, err := runner.Frame()
		assert.NoError(t, err)
	}
	assert.NoError(t, frontend.Close())

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "####"+strings.Repeat(".", machine.DisplayWidth-4), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "#..#."))
	assert.True(t, strings.HasPrefix(lines[4], "####."))
	assert.Equal(t, strings.Repeat(".", machine.DisplayWidth), lines[5])
}
