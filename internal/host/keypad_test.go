package host

import (
	"testing"
	"time"

	"github.com/retroenv/chip8vm/internal/machine"
	"github.com/retroenv/retrogolib/assert"
)

func TestKeypadKey(t *testing.T) {
	tests := []struct {
		ch   rune
		want machine.Key
		ok   bool
	}{
		{'1', 0x1, true},
		{'4', 0xC, true},
		{'w', 0x5, true},
		{'W', 0x5, true},
		{'f', 0xE, true},
		{'x', 0x0, true},
		{'v', 0xF, true},
		{'p', 0, false},
		{'5', 0, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.ch), func(t *testing.T) {
			key, ok := KeypadKey(tt.ch)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, key)
		})
	}
}

func TestKeypadLayout_CoversAllKeys(t *testing.T) {
	seen := map[machine.Key]bool{}
	for _, key := range keypadLayout {
		seen[key] = true
	}
	assert.Len(t, seen, machine.KeyCount)
}

func TestKeyLatch(t *testing.T) {
	latch := NewKeyLatch(KeyReleaseDelay)
	start := time.Unix(1000, 0)

	event, ok := latch.Press(0x5, start)
	assert.True(t, ok)
	assert.Equal(t, Event{Type: KeyDown, Key: 0x5}, event)

	// auto repeat of the terminal keeps the key down
	_, ok = latch.Press(0x5, start.Add(50*time.Millisecond))
	assert.False(t, ok)
	assert.Empty(t, latch.Expire(start.Add(120*time.Millisecond)))

	events := latch.Expire(start.Add(150 * time.Millisecond))
	assert.Equal(t, []Event{{Type: KeyUp, Key: 0x5}}, events)
	assert.Empty(t, latch.Expire(start.Add(time.Second)))

	_, ok = latch.Press(0x5, start.Add(2*time.Second))
	assert.True(t, ok)
}
