package host

import (
	"time"

	"github.com/retroenv/chip8vm/internal/machine"
)

// KeyReleaseDelay is the time after which a key that was pressed in a
// terminal is considered released. Terminals do not report key releases,
// holding a key down is reported by the repeated key presses of the
// terminal auto repeat.
const KeyReleaseDelay = 100 * time.Millisecond

// keypadLayout maps the left side of a QWERTY keyboard to the COSMAC VIP
// hex keypad:
//
//	1 2 3 4      1 2 3 C
//	Q W E R  ->  4 5 6 D
//	A S D F      7 8 9 E
//	Z X C V      A 0 B F
var keypadLayout = map[rune]machine.Key{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// KeypadKey returns the keypad key that a keyboard character is mapped to.
// Upper case characters map to the same key as lower case ones.
func KeypadKey(ch rune) (machine.Key, bool) {
	if ch >= 'A' && ch <= 'Z' {
		ch += 'a' - 'A'
	}
	key, ok := keypadLayout[ch]
	return key, ok
}

// KeyLatch turns the key presses of a terminal into key down and key up
// events by releasing keys that were not pressed again within the release
// delay.
type KeyLatch struct {
	delay     time.Duration
	pressedAt [machine.KeyCount]time.Time
	down      [machine.KeyCount]bool
}

// NewKeyLatch returns a key latch that releases keys after the delay.
func NewKeyLatch(delay time.Duration) *KeyLatch {
	return &KeyLatch{delay: delay}
}

// Press registers a key press at the given time. It returns a key down event
// if the key was not already down.
func (l *KeyLatch) Press(key machine.Key, now time.Time) (Event, bool) {
	key &= 0xF
	l.pressedAt[key] = now
	if l.down[key] {
		return Event{}, false
	}
	l.down[key] = true
	return Event{Type: KeyDown, Key: key}, true
}

// Expire returns key up events for all keys that were not pressed within the
// release delay before the given time.
func (l *KeyLatch) Expire(now time.Time) []Event {
	var events []Event
	for key := range machine.KeyCount {
		if !l.down[key] || now.Sub(l.pressedAt[key]) < l.delay {
			continue
		}
		l.down[key] = false
		events = append(events, Event{Type: KeyUp, Key: machine.Key(key)})
	}
	return events
}
