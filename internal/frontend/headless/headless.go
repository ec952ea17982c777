// Package headless implements a front end without display and input that
// writes the final display content as text when it is closed.
package headless

import (
	"fmt"
	"io"

	"github.com/retroenv/chip8vm/internal/host"
	"github.com/retroenv/retrogolib/log"
)

var _ host.Frontend = (*Frontend)(nil)

// Frontend keeps the last rendered frame.
type Frontend struct {
	logger *log.Logger
	w      io.Writer

	last     host.Frame
	rendered int
}

// New returns a headless front end that writes the display to w on close.
func New(logger *log.Logger, w io.Writer) *Frontend {
	return &Frontend{
		logger: logger,
		w:      w,
	}
}

// Poll returns no events.
func (f *Frontend) Poll() []host.Event {
	return nil
}

// Render stores the frame.
func (f *Frontend) Render(frame host.Frame) error {
	f.last = frame
	f.rendered++
	return nil
}

// Close writes the last rendered display.
func (f *Frontend) Close() error {
	f.logger.Debug("Headless run finished",
		log.Int("renderedFrames", f.rendered),
		log.Hex("pc", f.last.Snapshot.PC))

	if _, err := fmt.Fprint(f.w, f.last.Display.String()); err != nil {
		return fmt.Errorf("writing display: %w", err)
	}
	return nil
}
