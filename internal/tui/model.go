// Package tui is the terminal presentation of a sheet. It maps bubbletea
// mouse and keyboard messages onto grid.Controller intents and draws the
// controller's visible rows with lipgloss.
package tui

import (
	"context"
	"fmt"

	"github.com/alexanderramin/plansheet/internal/domain"
	"github.com/alexanderramin/plansheet/internal/filter"
	"github.com/alexanderramin/plansheet/internal/grid"
	"github.com/alexanderramin/plansheet/internal/plan"
	"github.com/alexanderramin/plansheet/internal/reorder"
	"github.com/alexanderramin/plansheet/internal/repository"
	"github.com/alexanderramin/plansheet/internal/selection"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// StateStore keeps view state between sessions.
// repository.SheetStateRepo satisfies it.
type StateStore interface {
	SetList(ctx context.Context, key string, values []string) error
}

// SaveStatus reports on background persistence. persist.Saver satisfies it.
type SaveStatus interface {
	Pending() bool
	Err() error
}

// Options configures a Model. Every field is optional.
type Options struct {
	Title  string
	Bounds plan.Bounds
	State  StateStore
	Save   SaveStatus
}

type stateSavedMsg struct{ err error }

var quitKey = key.NewBinding(key.WithKeys("ctrl+c", "ctrl+q"), key.WithHelp("ctrl+c", "quit"))

// Model is the bubbletea model of one sheet.
type Model struct {
	ctrl   *grid.Controller
	opts   Options
	help   help.Model
	editor textinput.Model
	layout layout

	width, height int
	offset        int
	pressY        int

	status    string
	statusErr bool
	quitting  bool
}

// New creates a Model over ctrl.
func New(ctrl *grid.Controller, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 200
	ti.Width = 40

	return Model{
		ctrl:   ctrl,
		opts:   opts,
		help:   help.New(),
		editor: ti,
		layout: newLayout(ctrl.Columns()),
	}
}

// Run starts a full-screen program over ctrl and blocks until it quits or
// ctx is cancelled.
func Run(ctx context.Context, ctrl *grid.Controller, opts Options) error {
	p := tea.NewProgram(New(ctrl, opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	ctrl.Close()
	if err != nil {
		return fmt.Errorf("running sheet: %w", err)
	}
	return nil
}

// ── bubbletea interface ──────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.editor.Width = max(msg.Width-30, 10)
		m.clampOffset()
		return m, nil

	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		return m, cmd

	case tea.MouseMsg:
		cmd := m.handleMouse(msg)
		m.syncEditor()
		return m, cmd

	case tea.BlurMsg:
		// The release may happen in another window; drop the drag.
		m.ctrl.Close()
		return m, nil

	case stateSavedMsg:
		if msg.err != nil {
			m.setError("saving view state: " + msg.err.Error())
		}
		return m, nil
	}

	if m.editor.Focused() {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	return m, nil
}

// ── Keyboard ─────────────────────────────────────────────────────────────────

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, quitKey) {
		m.ctrl.Close()
		m.quitting = true
		return tea.Quit
	}
	if _, editing := m.ctrl.Editing(); editing {
		return m.handleEditKey(msg)
	}

	m.status, m.statusErr = "", false
	keys := m.ctrl.Keys()
	if m.ctrl.KeyDown(msg) {
		defer m.scrollToFocus()
		if _, editing := m.ctrl.Editing(); editing {
			m.openEditor(m.ctrl.EditValue())
			return textinput.Blink
		}
		if key.Matches(msg, keys.ToggleCollapse) {
			return m.saveCollapsed()
		}
		return nil
	}

	// Typing on an editable cell starts editing with what was typed.
	if msg.Type == tea.KeyRunes && !msg.Alt && m.ctrl.BeginEdit() {
		m.openEditor(string(msg.Runes))
		return textinput.Blink
	}
	return nil
}

func (m *Model) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		if err := m.ctrl.CommitEdit(m.editor.Value()); err != nil {
			m.setError(err.Error())
			return nil
		}
		m.status, m.statusErr = "", false
		m.closeEditor()
		return nil
	case tea.KeyEsc:
		m.ctrl.KeyDown(msg)
		m.status, m.statusErr = "", false
		m.closeEditor()
		return nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return cmd
}

func (m *Model) openEditor(value string) {
	m.editor.SetValue(value)
	m.editor.CursorEnd()
	m.editor.Focus()
}

func (m *Model) closeEditor() {
	m.editor.Blur()
	m.editor.Reset()
}

// syncEditor closes the editor when the controller stopped editing, which
// a press elsewhere does.
func (m *Model) syncEditor() {
	if _, editing := m.ctrl.Editing(); !editing && m.editor.Focused() {
		m.closeEditor()
	}
}

// ── Mouse ────────────────────────────────────────────────────────────────────

// handleMouse routes mouse events by position. The wheel scrolls the body.
// A press on a group header toggles it, a press on a filter row day cell
// toggles that day filter, and every other press goes to the controller as
// a cell click or, on the gutter, as the start of a possible drag.
func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.scroll(-3)
		return nil
	case tea.MouseButtonWheelDown:
		m.scroll(3)
		return nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return nil
		}
		return m.mousePress(msg)

	case tea.MouseActionMotion:
		if m.ctrl.DragPhase() == reorder.PhaseIdle {
			return nil
		}
		m.ctrl.PointerMove(m.pointer(msg.X, msg.Y), m.renderedBounds())

	case tea.MouseActionRelease:
		m.ctrl.PointerUp(m.inGrid(msg.X, msg.Y))
	}
	return nil
}

func (m *Model) mousePress(msg tea.MouseMsg) tea.Cmd {
	m.status, m.statusErr = "", false
	m.pressY = msg.Y
	mods := selection.Mods{Toggle: msg.Ctrl || msg.Alt, Extend: msg.Shift}

	id, onRow := m.rowAt(msg.Y)
	col, inCols := m.layout.columnAt(msg.X)
	if !onRow || !inCols {
		m.ctrl.PointerDown(grid.Target{}, m.pointer(msg.X, msg.Y), mods)
		return nil
	}

	if r, ok := m.ctrl.Row(id); ok && col != "" {
		switch {
		case r.Kind.IsGroupHeader():
			if m.ctrl.ToggleCollapse(id) {
				m.clampOffset()
				return m.saveCollapsed()
			}
		case r.Timeline != nil && r.Timeline.Part == domain.TimelineFilter:
			if _, isDay := domain.DayIndex(col); isDay {
				m.toggleDayFilter(col)
				return nil
			}
		}
	}
	m.ctrl.PointerDown(grid.Target{RowID: id, ColumnKey: col}, m.pointer(msg.X, msg.Y), mods)
	return nil
}

// pointer converts a cell position to engine coordinates. While a drag
// moves down the pointer sits in the lower half of the hovered row, so the
// block lands after it; moving up it sits in the upper half.
func (m *Model) pointer(x, y int) reorder.Point {
	py := float64(y*cellPxHeight) + cellPxHeight/2
	switch {
	case y > m.pressY:
		py += cellPxHeight / 4
	case y < m.pressY:
		py -= cellPxHeight / 4
	}
	return reorder.Point{X: float64(x * cellPxWidth), Y: py}
}

// renderedBounds lists the rows on screen in engine coordinates.
func (m *Model) renderedBounds() []reorder.RowBounds {
	ids := m.windowIDs()
	out := make([]reorder.RowBounds, len(ids))
	for i, id := range ids {
		top := float64((bodyTop + i) * cellPxHeight)
		out[i] = reorder.RowBounds{ID: id, Top: top, Bottom: top + cellPxHeight}
	}
	return out
}

// rowAt returns the visible row drawn on screen line y.
func (m *Model) rowAt(y int) (string, bool) {
	i := y - bodyTop
	ids := m.windowIDs()
	if i < 0 || i >= len(ids) {
		return "", false
	}
	return ids[i], true
}

// inGrid reports whether (x, y) lies on the body, including the empty space
// below the last row.
func (m *Model) inGrid(x, y int) bool {
	return y >= bodyTop && y < bodyTop+m.bodyHeight() && x >= 0 && x < m.layout.width
}

func (m *Model) toggleDayFilter(col string) {
	crit := m.ctrl.Criteria()
	days := filter.NewSet(crit.ActiveDays.Values()...)
	days.Toggle(col)
	crit.ActiveDays = days
	m.ctrl.SetCriteria(crit)
	m.clampOffset()
}

// ── Scrolling ────────────────────────────────────────────────────────────────

func (m *Model) bodyHeight() int {
	if m.height <= 0 {
		return 40
	}
	return max(m.height-bodyTop-chromeBelow, 1)
}

func (m *Model) windowIDs() []string {
	ids := m.ctrl.VisibleIDs()
	from := min(m.offset, len(ids))
	to := min(from+m.bodyHeight(), len(ids))
	return ids[from:to]
}

func (m *Model) scroll(delta int) {
	m.offset += delta
	m.clampOffset()
}

func (m *Model) clampOffset() {
	limit := max(len(m.ctrl.VisibleIDs())-m.bodyHeight(), 0)
	m.offset = min(max(m.offset, 0), limit)
}

func (m *Model) scrollToFocus() {
	f := m.ctrl.Focus()
	if !f.Valid() {
		m.clampOffset()
		return
	}
	for i, id := range m.ctrl.VisibleIDs() {
		if id != f.RowID {
			continue
		}
		if i < m.offset {
			m.offset = i
		} else if i >= m.offset+m.bodyHeight() {
			m.offset = i - m.bodyHeight() + 1
		}
		break
	}
	m.clampOffset()
}

// ── State ────────────────────────────────────────────────────────────────────

// saveCollapsed stores the collapsed groups off the update loop.
func (m *Model) saveCollapsed() tea.Cmd {
	if m.opts.State == nil {
		return nil
	}
	store, groups := m.opts.State, m.ctrl.Collapsed()
	return func() tea.Msg {
		return stateSavedMsg{err: store.SetList(context.Background(), repository.StateCollapsed, groups)}
	}
}

func (m *Model) setError(text string) {
	m.status, m.statusErr = text, true
}

// Controller returns the controller the model drives.
func (m Model) Controller() *grid.Controller { return m.ctrl }

// Status returns the status line message and whether it is an error.
func (m Model) Status() (string, bool) { return m.status, m.statusErr }

// Quitting reports whether the model asked the program to quit.
func (m Model) Quitting() bool { return m.quitting }
