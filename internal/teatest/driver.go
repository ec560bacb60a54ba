// Package teatest drives bubbletea models synchronously in tests.
//
// A Driver calls Update directly and runs every returned Cmd before the next
// event, so keyboard and mouse scripts are deterministic without a
// tea.Program. The mouse helpers produce the press, motion and release
// messages a terminal in cell motion mode reports.
package teatest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// MaxDrainSteps bounds how many Cmds one event may chain.
const MaxDrainSteps = 100

// cmdTimeout separates Cmds that return at once from timer Cmds such as
// the textinput cursor blink, which are dropped.
const cmdTimeout = 10 * time.Millisecond

// Driver is a synchronous harness for a tea.Model.
type Driver struct {
	T     *testing.T
	Model tea.Model

	// Quitting is set once a Cmd yields tea.QuitMsg. Later events are
	// ignored, the way a stopped program ignores input.
	Quitting bool
}

// New creates a Driver for model. Call DrainInit to run the model's Init.
func New(t *testing.T, model tea.Model, opts ...Option) *Driver {
	t.Helper()
	d := &Driver{T: t, Model: model}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Option configures a Driver.
type Option func(*Driver)

// WithSize delivers a WindowSizeMsg before anything else.
func WithSize(w, h int) Option {
	return func(d *Driver) {
		d.Model, _ = d.Model.Update(tea.WindowSizeMsg{Width: w, Height: h})
	}
}

// DrainInit runs the Cmd returned by Init.
func (d *Driver) DrainInit() {
	d.T.Helper()
	d.drain(d.Model.Init())
}

// Send delivers msg and runs the Cmds it produces.
func (d *Driver) Send(msg tea.Msg) {
	d.T.Helper()
	if d.Quitting {
		return
	}
	var cmd tea.Cmd
	d.Model, cmd = d.Model.Update(msg)
	d.drain(cmd)
}

// View renders the model.
func (d *Driver) View() string {
	return d.Model.View()
}

// ── Keys ─────────────────────────────────────────────────────────────────────

// PressType sends a named key such as tea.KeyCtrlZ or tea.KeyShiftDown.
func (d *Driver) PressType(kt tea.KeyType) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: kt})
}

func (d *Driver) PressEnter() {
	d.T.Helper()
	d.PressType(tea.KeyEnter)
}

func (d *Driver) PressEsc() {
	d.T.Helper()
	d.PressType(tea.KeyEsc)
}

func (d *Driver) PressCtrlC() {
	d.T.Helper()
	d.PressType(tea.KeyCtrlC)
}

func (d *Driver) PressDown() {
	d.T.Helper()
	d.PressType(tea.KeyDown)
}

// Type sends s one rune at a time.
func (d *Driver) Type(s string) {
	d.T.Helper()
	for _, r := range s {
		d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// ── Mouse ────────────────────────────────────────────────────────────────────

// MouseOption adjusts a mouse message before it is sent.
type MouseOption func(*tea.MouseMsg)

// WithShift marks the event as shift-modified.
func WithShift() MouseOption { return func(m *tea.MouseMsg) { m.Shift = true } }

// WithCtrl marks the event as ctrl-modified.
func WithCtrl() MouseOption { return func(m *tea.MouseMsg) { m.Ctrl = true } }

func (d *Driver) mouse(x, y int, action tea.MouseAction, button tea.MouseButton, opts []MouseOption) {
	d.T.Helper()
	msg := tea.MouseMsg{X: x, Y: y, Action: action, Button: button}
	for _, opt := range opts {
		opt(&msg)
	}
	d.Send(msg)
}

// MouseDown presses the left button at (x, y).
func (d *Driver) MouseDown(x, y int, opts ...MouseOption) {
	d.T.Helper()
	d.mouse(x, y, tea.MouseActionPress, tea.MouseButtonLeft, opts)
}

// MouseMove moves to (x, y) with the left button held.
func (d *Driver) MouseMove(x, y int) {
	d.T.Helper()
	d.mouse(x, y, tea.MouseActionMotion, tea.MouseButtonLeft, nil)
}

// MouseUp releases the button at (x, y). Terminals report no button on
// release.
func (d *Driver) MouseUp(x, y int) {
	d.T.Helper()
	d.mouse(x, y, tea.MouseActionRelease, tea.MouseButtonNone, nil)
}

// Click presses and releases at (x, y). Modifiers apply to the press.
func (d *Driver) Click(x, y int, opts ...MouseOption) {
	d.T.Helper()
	d.MouseDown(x, y, opts...)
	d.MouseUp(x, y)
}

// Drag presses at (x, y0), reports a motion for every row up to y1 and
// releases there.
func (d *Driver) Drag(x, y0, y1 int) {
	d.T.Helper()
	d.MouseDown(x, y0)
	step := 1
	if y1 < y0 {
		step = -1
	}
	for y := y0 + step; y != y1+step; y += step {
		d.MouseMove(x, y)
	}
	d.MouseUp(x, y1)
}

// Wheel scrolls at (x, y); negative steps scroll up.
func (d *Driver) Wheel(x, y, steps int) {
	d.T.Helper()
	button := tea.MouseButtonWheelDown
	if steps < 0 {
		button, steps = tea.MouseButtonWheelUp, -steps
	}
	for range steps {
		d.mouse(x, y, tea.MouseActionPress, button, nil)
	}
}

// ── Cmd draining ─────────────────────────────────────────────────────────────

// drain runs cmd and every Cmd that follows from it, breadth first. Batches
// are flattened; messages go back through Update.
func (d *Driver) drain(cmd tea.Cmd) {
	d.T.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps >= MaxDrainSteps {
			d.T.Logf("teatest.Driver: stopped after %d cmds", MaxDrainSteps)
			return
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}

		switch msg := run(next).(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case tea.QuitMsg:
			d.Quitting = true
			d.Model, _ = d.Model.Update(msg)
			return
		default:
			if isBlink(msg) {
				continue
			}
			var follow tea.Cmd
			d.Model, follow = d.Model.Update(msg)
			queue = append(queue, follow)
		}
	}
}

// run executes cmd, giving up after cmdTimeout.
func run(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(cmdTimeout):
		return nil
	}
}

// isBlink matches the unexported cursor blink messages of bubbles.
func isBlink(msg tea.Msg) bool {
	return strings.Contains(strings.ToLower(fmt.Sprintf("%T", msg)), "blink")
}
