// Package terminal implements a front end that renders the display into a
// terminal using termbox.
package terminal

import (
	"fmt"
	"sync"
	"time"

	"github.com/nsf/termbox-go"
	"github.com/retroenv/chip8vm/internal/host"
	"github.com/retroenv/chip8vm/internal/machine"
	"github.com/retroenv/retrogolib/log"
)

// the status line follows the display, every terminal row shows two
// display rows.
const statusLine = machine.DisplayHeight / 2

var _ host.Frontend = (*Frontend)(nil)

// Frontend renders into the terminal and reads keyboard input.
type Frontend struct {
	logger *log.Logger
	latch  *host.KeyLatch
	now    func() time.Time

	events chan termbox.Event
	done   chan struct{}
	wg     sync.WaitGroup
}

// New initializes the terminal and starts reading input events.
func New(logger *log.Logger) (*Frontend, error) {
	if err := termbox.Init(); err != nil {
		return nil, fmt.Errorf("initializing terminal: %w", err)
	}
	termbox.SetInputMode(termbox.InputEsc)
	termbox.HideCursor()

	f := &Frontend{
		logger: logger,
		latch:  host.NewKeyLatch(host.KeyReleaseDelay),
		now:    time.Now,
		events: make(chan termbox.Event, 64),
		done:   make(chan struct{}),
	}

	f.wg.Add(1)
	go f.readEvents()
	return f, nil
}

// readEvents forwards the blocking termbox event polling to the channel
// that Poll drains.
func (f *Frontend) readEvents() {
	defer f.wg.Done()
	for {
		ev := termbox.PollEvent()
		if ev.Type == termbox.EventInterrupt {
			return
		}
		select {
		case f.events <- ev:
		case <-f.done:
			return
		}
	}
}

// Poll returns the input events since the last call.
func (f *Frontend) Poll() []host.Event {
	var events []host.Event
	now := f.now()

	for {
		select {
		case ev := <-f.events:
			if ev.Type == termbox.EventError {
				f.logger.Error("Reading terminal input failed", log.Err(ev.Err))
				continue
			}
			events = append(events, translate(ev, f.latch, now)...)
		default:
			return append(events, f.latch.Expire(now)...)
		}
	}
}

// Render draws the display and a status line.
func (f *Frontend) Render(frame host.Frame) error {
	if err := termbox.Clear(termbox.ColorDefault, termbox.ColorDefault); err != nil {
		return fmt.Errorf("clearing terminal: %w", err)
	}

	drawDisplay(&frame.Display, func(x, y int, ch rune) {
		termbox.SetCell(x, y, ch, termbox.ColorWhite, termbox.ColorDefault)
	})
	for x, ch := range status(frame) {
		termbox.SetCell(x, statusLine, ch, termbox.ColorDefault, termbox.ColorDefault)
	}

	if err := termbox.Flush(); err != nil {
		return fmt.Errorf("flushing terminal: %w", err)
	}
	return nil
}

// Close stops reading input and restores the terminal.
func (f *Frontend) Close() error {
	close(f.done)
	termbox.Interrupt()
	f.wg.Wait()
	termbox.Close()
	return nil
}

// translate converts a terminal event into front end events.
func translate(ev termbox.Event, latch *host.KeyLatch, now time.Time) []host.Event {
	if ev.Type != termbox.EventKey {
		return nil
	}

	switch ev.Key {
	case termbox.KeyEsc, termbox.KeyCtrlC:
		return []host.Event{{Type: host.Quit}}
	}

	switch ev.Ch {
	case 'p', 'P':
		return []host.Event{{Type: host.Pause}}
	case 'n', 'N':
		return []host.Event{{Type: host.Step}}
	}

	key, ok := host.KeypadKey(ev.Ch)
	if !ok {
		return nil
	}
	if event, ok := latch.Press(key, now); ok {
		return []host.Event{event}
	}
	return nil
}

// drawDisplay draws the display using one character for two pixel rows.
func drawDisplay(d *machine.Display, set func(x, y int, ch rune)) {
	for y := 0; y < machine.DisplayHeight; y += 2 {
		for x := range machine.DisplayWidth {
			set(x, y/2, host.HalfBlock(d.Pixel(x, y), d.Pixel(x, y+1)))
		}
	}
}

// status returns the text of the status line below the display.
func status(frame host.Frame) string {
	s := fmt.Sprintf("PC $%03X  I $%03X  %s", frame.Snapshot.PC, frame.Snapshot.I, frame.Snapshot.State)
	if frame.AwaitingKey {
		s += "  waiting for key"
	}
	if frame.Sound {
		s += "  beep"
	}
	return s
}
