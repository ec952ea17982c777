// Package debugger implements a front end that shows the display together
// with the registers, the call stack and the code around the program counter
// in a terminal user interface.
package debugger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jroimartin/gocui"
	"github.com/retroenv/chip8vm/internal/disasm"
	"github.com/retroenv/chip8vm/internal/host"
	"github.com/retroenv/chip8vm/internal/machine"
	"github.com/retroenv/retrogolib/log"
)

// view names
const (
	screenView    = "screen"
	registersView = "registers"
	stackView     = "stack"
	codeView      = "code"
)

const (
	screenWidth  = machine.DisplayWidth + 2 // including the frame
	screenHeight = machine.DisplayHeight/2 + 2
	sideWidth    = 30

	// instructions shown before the program counter in the code view
	codeContext = 4
)

// characters that are bound to keys besides the keypad
const bindingKeys = "1234qwerasdfzxcvpn"

var _ host.Frontend = (*Frontend)(nil)

// input is a key press received by a key binding handler.
type input struct {
	ch   rune
	quit bool
}

// Frontend is the debugger user interface.
type Frontend struct {
	logger *log.Logger
	gui    *gocui.Gui
	latch  *host.KeyLatch
	now    func() time.Time

	inputs  chan input
	loopErr chan error
}

// New creates the user interface and starts its main loop.
func New(logger *log.Logger) (*Frontend, error) {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, fmt.Errorf("creating user interface: %w", err)
	}

	f := &Frontend{
		logger:  logger,
		gui:     g,
		latch:   host.NewKeyLatch(host.KeyReleaseDelay),
		now:     time.Now,
		inputs:  make(chan input, 64),
		loopErr: make(chan error, 1),
	}
	g.SetManagerFunc(layout)

	if err := f.setKeybindings(); err != nil {
		g.Close()
		return nil, err
	}

	go func() {
		f.loopErr <- g.MainLoop()
	}()
	return f, nil
}

func (f *Frontend) setKeybindings() error {
	quit := func(*gocui.Gui, *gocui.View) error {
		f.send(input{quit: true})
		return nil
	}
	for _, key := range []gocui.Key{gocui.KeyCtrlC, gocui.KeyEsc} {
		if err := f.gui.SetKeybinding("", key, gocui.ModNone, quit); err != nil {
			return fmt.Errorf("setting key binding: %w", err)
		}
	}

	for _, ch := range bindingKeys {
		handler := func(*gocui.Gui, *gocui.View) error {
			f.send(input{ch: ch})
			return nil
		}
		if err := f.gui.SetKeybinding("", ch, gocui.ModNone, handler); err != nil {
			return fmt.Errorf("setting key binding: %w", err)
		}
	}
	return nil
}

// send queues the input for the next Poll, input is dropped while the queue
// is full.
func (f *Frontend) send(in input) {
	select {
	case f.inputs <- in:
	default:
	}
}

// Poll returns the input events since the last call.
func (f *Frontend) Poll() []host.Event {
	var events []host.Event
	now := f.now()

	for {
		select {
		case in := <-f.inputs:
			events = append(events, translate(in, f.latch, now)...)
		default:
			return append(events, f.latch.Expire(now)...)
		}
	}
}

// RenderEveryFrame returns true as the registers change with every
// executed instruction.
func (f *Frontend) RenderEveryFrame() bool {
	return true
}

// Render updates all views with the frame.
func (f *Frontend) Render(frame host.Frame) error {
	select {
	case err := <-f.loopErr:
		f.loopErr <- err
		return fmt.Errorf("user interface stopped: %w", err)
	default:
	}

	f.gui.Update(func(g *gocui.Gui) error {
		return draw(g, frame)
	})
	return nil
}

// Close stops the main loop and restores the terminal.
func (f *Frontend) Close() error {
	f.gui.Update(func(*gocui.Gui) error {
		return gocui.ErrQuit
	})
	err := <-f.loopErr
	f.gui.Close()

	if err != nil && !errors.Is(err, gocui.ErrQuit) {
		return fmt.Errorf("running user interface: %w", err)
	}
	return nil
}

func translate(in input, latch *host.KeyLatch, now time.Time) []host.Event {
	if in.quit {
		return []host.Event{{Type: host.Quit}}
	}

	switch in.ch {
	case 'p':
		return []host.Event{{Type: host.Pause}}
	case 'n':
		return []host.Event{{Type: host.Step}}
	}

	key, ok := host.KeypadKey(in.ch)
	if !ok {
		return nil
	}
	if event, ok := latch.Press(key, now); ok {
		return []host.Event{event}
	}
	return nil
}

// layout creates the views, the display on the top left with registers and
// stack to the right of it and the code below.
func layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	maxX = max(maxX, screenWidth+sideWidth+1)
	maxY = max(maxY, screenHeight+4)

	views := []struct {
		name           string
		title          string
		x0, y0, x1, y1 int
	}{
		{screenView, "CHIP-8", 0, 0, screenWidth - 1, screenHeight - 1},
		{registersView, "Registers", screenWidth, 0, maxX - 1, 7},
		{stackView, "Stack", screenWidth, 8, maxX - 1, screenHeight - 1},
		{codeView, "Code", 0, screenHeight, maxX - 1, maxY - 1},
	}

	for _, view := range views {
		v, err := g.SetView(view.name, view.x0, view.y0, view.x1, view.y1)
		if err != nil {
			if !errors.Is(err, gocui.ErrUnknownView) {
				return fmt.Errorf("setting view %s: %w", view.name, err)
			}
			v.Title = view.title
		}
	}
	return nil
}

// draw writes the frame into the views.
func draw(g *gocui.Gui, frame host.Frame) error {
	contents := map[string]string{
		screenView:    strings.Join(host.HalfBlockRows(&frame.Display), "\n"),
		registersView: registersText(frame),
		stackView:     stackText(frame.Snapshot),
		codeView:      codeText(frame.Snapshot, codeLines(g)),
	}

	for name, content := range contents {
		v, err := g.View(name)
		if err != nil {
			return fmt.Errorf("getting view %s: %w", name, err)
		}
		v.Clear()
		if _, err := fmt.Fprint(v, content); err != nil {
			return fmt.Errorf("writing view %s: %w", name, err)
		}
	}
	return nil
}

// codeLines returns the number of lines that fit into the code view.
func codeLines(g *gocui.Gui) int {
	v, err := g.View(codeView)
	if err != nil {
		return 1
	}
	_, height := v.Size()
	return max(height, 1)
}

func registersText(frame host.Frame) string {
	s := frame.Snapshot
	var sb strings.Builder
	for i, value := range s.V {
		fmt.Fprintf(&sb, "V%X %02X", i, value)
		if i%4 == 3 {
			sb.WriteByte('\n')
		} else {
			sb.WriteString("  ")
		}
	}
	fmt.Fprintf(&sb, "PC %03X  I %03X  DT %02X  ST %02X\n", s.PC, s.I, s.DelayTimer, s.SoundTimer)

	sb.WriteString(s.State.String())
	if frame.AwaitingKey {
		sb.WriteString(", waiting for key")
	}
	if frame.Sound {
		sb.WriteString(", beep")
	}
	return sb.String()
}

// stackText lists the return addresses, the most recent one first.
func stackText(s machine.Snapshot) string {
	var sb strings.Builder
	for i := len(s.Stack) - 1; i >= 0; i-- {
		fmt.Fprintf(&sb, "%2d  $%03X\n", i, s.Stack[i])
	}
	return sb.String()
}

// codeText disassembles the memory around the program counter and marks
// the current instruction.
func codeText(s machine.Snapshot, lines int) string {
	start := s.PC - codeContext*2
	if s.PC < codeContext*2 {
		start = 0
	}

	var sb strings.Builder
	for _, line := range disasm.Disassemble(s.Memory[:], start, lines) {
		marker := "  "
		if line.Address == s.PC {
			marker = "> "
		}
		fmt.Fprintf(&sb, "%s$%03X  %04X  %s\n", marker, line.Address, line.Raw, line.Text)
	}
	return sb.String()
}
