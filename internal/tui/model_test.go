package tui

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/alexanderramin/plansheet/internal/domain"
	"github.com/alexanderramin/plansheet/internal/grid"
	"github.com/alexanderramin/plansheet/internal/plan"
	"github.com/alexanderramin/plansheet/internal/reorder"
	"github.com/alexanderramin/plansheet/internal/repository"
	"github.com/alexanderramin/plansheet/internal/rowid"
	"github.com/alexanderramin/plansheet/internal/rowstore"
	"github.com/alexanderramin/plansheet/internal/teatest"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Screen geometry of the test sheet. Visible row i is drawn on line
// bodyTop+i; seven timeline rows come first.
const (
	yFilter   = 8
	yWork     = 9
	ySlot1    = 11
	ySlot2    = 12
	ySlot3    = 13
	xGutter   = 0
	xStatus   = 15
	xTask     = 30
	xDay0     = 78
	termW     = 120
	termH     = 30
	offscreen = 29
)

const sheetPlan = `
start: 2026-10-19
days: 3
daily: {min: 60, max: 240}
projects:
  - key: work
    name: Work
    slots: 3
inbox: 1
`

var (
	work  = rowid.Project("work")
	slot1 = rowid.Slot(work, 1)
	slot2 = rowid.Slot(work, 2)
	slot3 = rowid.Slot(work, 3)
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

type fakeState struct {
	key    string
	values []string
	calls  int
	err    error
}

func (f *fakeState) SetList(_ context.Context, key string, values []string) error {
	f.calls++
	f.key, f.values = key, values
	return f.err
}

func newSheet(t *testing.T) *grid.Controller {
	t.Helper()
	p, err := plan.Parse([]byte(sheetPlan))
	require.NoError(t, err)
	rows := plan.Build(p, nil)
	names := map[string]string{slot1: "Alpha", slot2: "Beta", slot3: "Gamma"}
	for i := range rows {
		if n, ok := names[rows[i].ID]; ok {
			rows[i].Task.TaskName = n
		}
		if rows[i].ID == slot1 {
			rows[i].Task.DayEntries[0] = "1.00"
		}
	}
	return grid.New(rowstore.New(p.Days, rows), grid.Config{})
}

func newDriver(t *testing.T, ctrl *grid.Controller, opts Options, size ...int) *teatest.Driver {
	t.Helper()
	w, h := termW, termH
	if len(size) == 2 {
		w, h = size[0], size[1]
	}
	d := teatest.New(t, New(ctrl, opts), teatest.WithSize(w, h))
	d.DrainInit()
	return d
}

func model(d *teatest.Driver) Model { return d.Model.(Model) }

func plainView(d *teatest.Driver) string { return ansiPattern.ReplaceAllString(d.View(), "") }

func taskOrder(ctrl *grid.Controller) []string {
	var out []string
	for _, r := range ctrl.StoreRows() {
		if r.Kind == domain.KindTask {
			out = append(out, r.ID)
		}
	}
	return out
}

func taskName(t *testing.T, ctrl *grid.Controller, id string) string {
	t.Helper()
	r, ok := ctrl.Row(id)
	require.True(t, ok)
	return r.Task.TaskName
}

func TestLayout_ColumnAt(t *testing.T) {
	l := newLayout(domain.Columns(3))
	cases := []struct {
		x    int
		want string
		ok   bool
	}{
		{0, "", true},
		{2, domain.ColumnProject, true},
		{xStatus, domain.ColumnStatus, true},
		{xTask, domain.ColumnTaskName, true},
		{xDay0, domain.DayColumnKey(0), true},
		{91, domain.DayColumnKey(2), true},
		{98, "", false},
		{-1, "", false},
	}
	for _, c := range cases {
		got, ok := l.columnAt(c.x)
		assert.Equal(t, c.ok, ok, "x=%d", c.x)
		assert.Equal(t, c.want, got, "x=%d", c.x)
	}
	assert.Equal(t, 77, l.daysFrom)
}

func TestFit(t *testing.T) {
	assert.Equal(t, "ab  ", fit("ab", 4))
	assert.Equal(t, "abc…", fit("abcdef", 4))
	assert.Equal(t, "", fit("abc", 0))
}

func TestView_DrawsSheet(t *testing.T) {
	d := newDriver(t, newSheet(t), Options{Title: "week 43", Bounds: plan.Bounds{Min: 60, Max: 240}})
	v := plainView(d)

	assert.Contains(t, v, "plansheet")
	assert.Contains(t, v, "week 43")
	assert.Contains(t, v, "Mon 19")
	assert.Contains(t, v, "▾ Work")
	assert.Contains(t, v, "Alpha")
	assert.Contains(t, v, "Daily total")
	assert.Contains(t, v, "1.00")
	assert.Contains(t, v, "ctrl+z undo")
}

func TestTypeToEditCommitsOnEnter(t *testing.T) {
	ctrl := newSheet(t)
	d := newDriver(t, ctrl, Options{})

	d.Click(xTask, ySlot1)
	require.Equal(t, slot1, ctrl.Focus().RowID)
	require.Equal(t, domain.ColumnTaskName, ctrl.Focus().ColumnKey)

	d.Type("Write")
	_, editing := ctrl.Editing()
	require.True(t, editing)
	assert.Contains(t, plainView(d), "Task ❯")

	d.PressEnter()
	_, editing = ctrl.Editing()
	assert.False(t, editing)
	assert.Equal(t, "Write", taskName(t, ctrl, slot1))

	d.PressType(tea.KeyCtrlZ)
	assert.Equal(t, "Alpha", taskName(t, ctrl, slot1))
}

func TestEnterEditsFromStoredValueAndEscCancels(t *testing.T) {
	ctrl := newSheet(t)
	d := newDriver(t, ctrl, Options{})

	d.Click(xTask, ySlot2)
	d.PressEnter()
	require.Equal(t, "Beta", model(d).editor.Value())

	d.Type(" two")
	d.PressEsc()
	_, editing := ctrl.Editing()
	assert.False(t, editing)
	assert.False(t, model(d).editor.Focused())
	assert.Equal(t, "Beta", taskName(t, ctrl, slot2))
}

func TestFailedCommitKeepsEditorOpen(t *testing.T) {
	ctrl := newSheet(t)
	d := newDriver(t, ctrl, Options{})

	d.Click(xStatus, ySlot1)
	d.PressEnter()
	d.Type("zz")
	d.PressEnter()

	_, editing := ctrl.Editing()
	assert.True(t, editing)
	status, isErr := model(d).Status()
	assert.True(t, isErr)
	assert.Contains(t, status, "unknown status")

	d.PressEsc()
	_, editing = ctrl.Editing()
	assert.False(t, editing)
}

func TestPressElsewhereClosesEditor(t *testing.T) {
	ctrl := newSheet(t)
	d := newDriver(t, ctrl, Options{})

	d.Click(xTask, ySlot1)
	d.PressEnter()
	require.True(t, model(d).editor.Focused())

	d.Click(xTask, ySlot3)
	assert.False(t, model(d).editor.Focused())
	assert.Equal(t, "Alpha", taskName(t, ctrl, slot1))
}

func TestGutterClickSelectsRowAndDeleteRemovesIt(t *testing.T) {
	ctrl := newSheet(t)
	d := newDriver(t, ctrl, Options{})

	d.Click(xGutter, ySlot2)
	assert.True(t, ctrl.IsRowSelected(slot2))
	assert.Contains(t, plainView(d), "1 rows selected")

	d.Click(xGutter, ySlot3, teatest.WithCtrl())
	assert.Equal(t, []string{slot2, slot3}, ctrl.SelectedRowIDs())

	d.PressType(tea.KeyCtrlX)
	assert.Equal(t, []string{slot1}, taskOrder(ctrl))
}

func TestDragDownMovesRowAfterHoveredRow(t *testing.T) {
	ctrl := newSheet(t)
	d := newDriver(t, ctrl, Options{})

	d.MouseDown(xGutter, ySlot1)
	d.MouseMove(xGutter, ySlot2)
	require.Equal(t, reorder.PhaseDragging, ctrl.DragPhase())
	assert.True(t, ctrl.IsRowDragged(slot1))
	assert.True(t, ctrl.IsDropTarget(slot3))

	d.MouseMove(xGutter, ySlot3)
	d.MouseUp(xGutter, ySlot3)

	assert.Equal(t, reorder.PhaseIdle, ctrl.DragPhase())
	assert.Equal(t, []string{slot2, slot3, slot1}, taskOrder(ctrl))

	d.PressType(tea.KeyCtrlZ)
	assert.Equal(t, []string{slot1, slot2, slot3}, taskOrder(ctrl))
}

func TestDragUpMovesRowBeforeHoveredRow(t *testing.T) {
	ctrl := newSheet(t)
	d := newDriver(t, ctrl, Options{})

	d.Drag(xGutter, ySlot3, ySlot1)

	assert.Equal(t, []string{slot3, slot1, slot2}, taskOrder(ctrl))
}

func TestReleaseOutsideGridCancelsDrag(t *testing.T) {
	ctrl := newSheet(t)
	d := newDriver(t, ctrl, Options{})

	d.MouseDown(xGutter, ySlot1)
	d.MouseMove(xGutter, ySlot3)
	require.Equal(t, reorder.PhaseDragging, ctrl.DragPhase())
	d.MouseUp(xGutter, offscreen)

	assert.Equal(t, reorder.PhaseIdle, ctrl.DragPhase())
	assert.Equal(t, []string{slot1, slot2, slot3}, taskOrder(ctrl))
	assert.Zero(t, ctrl.UndoDepth())
}

func TestFocusLossAbandonsDrag(t *testing.T) {
	ctrl := newSheet(t)
	d := newDriver(t, ctrl, Options{})

	d.MouseDown(xGutter, ySlot1)
	d.MouseMove(xGutter, ySlot3)
	require.Equal(t, reorder.PhaseDragging, ctrl.DragPhase())

	d.Send(tea.BlurMsg{})
	assert.Equal(t, reorder.PhaseIdle, ctrl.DragPhase())

	d.MouseUp(xGutter, ySlot3)
	assert.Equal(t, []string{slot1, slot2, slot3}, taskOrder(ctrl))
	assert.Zero(t, ctrl.UndoDepth())
}

func TestHeaderClickTogglesCollapseAndSavesState(t *testing.T) {
	ctrl := newSheet(t)
	state := &fakeState{}
	d := newDriver(t, ctrl, Options{State: state})

	d.Click(xTask, yWork)

	assert.True(t, ctrl.IsCollapsed(work))
	assert.NotContains(t, ctrl.VisibleIDs(), slot1)
	assert.Contains(t, plainView(d), "▸ Work")
	assert.Equal(t, 1, state.calls)
	assert.Equal(t, repository.StateCollapsed, state.key)
	assert.Equal(t, []string{work}, state.values)

	d.Click(xTask, yWork)
	assert.False(t, ctrl.IsCollapsed(work))
	assert.Empty(t, state.values)
}

func TestSpaceTogglesFocusedHeader(t *testing.T) {
	ctrl := newSheet(t)
	state := &fakeState{}
	d := newDriver(t, ctrl, Options{State: state})

	d.MouseDown(xGutter, yWork)
	d.MouseUp(xGutter, yWork)
	require.Equal(t, []string{work}, ctrl.SelectedRowIDs())

	d.PressType(tea.KeySpace)
	assert.True(t, ctrl.IsCollapsed(work))
	assert.Equal(t, 1, state.calls)
}

func TestStateSaveErrorIsShown(t *testing.T) {
	ctrl := newSheet(t)
	d := newDriver(t, ctrl, Options{State: &fakeState{err: errors.New("disk full")}})

	d.Click(xTask, yWork)

	status, isErr := model(d).Status()
	assert.True(t, isErr)
	assert.Contains(t, status, "disk full")
}

func TestFilterRowTogglesActiveDay(t *testing.T) {
	ctrl := newSheet(t)
	d := newDriver(t, ctrl, Options{})

	d.Click(xDay0, yFilter)

	assert.True(t, ctrl.Criteria().ActiveDays.Has(domain.DayColumnKey(0)))
	assert.Contains(t, ctrl.VisibleIDs(), slot1)
	assert.NotContains(t, ctrl.VisibleIDs(), slot2)
	assert.Contains(t, plainView(d), "filter: active=day 1")

	d.Click(xDay0, yFilter)
	assert.Empty(t, ctrl.Criteria().ActiveDays)
	assert.Contains(t, ctrl.VisibleIDs(), slot2)
}

func TestWheelAndFocusScroll(t *testing.T) {
	ctrl := newSheet(t)
	d := newDriver(t, ctrl, Options{}, termW, 10)
	m := model(d)
	require.Equal(t, 5, m.bodyHeight())

	d.Wheel(xTask, 4, 1)
	assert.Equal(t, 3, model(d).offset)
	d.Wheel(xTask, 4, -5)
	assert.Equal(t, 0, model(d).offset)

	d.PressDown()
	require.Equal(t, slot1, ctrl.Focus().RowID)
	m = model(d)
	id, ok := m.rowAt(bodyTop + 4)
	require.True(t, ok)
	assert.Equal(t, slot1, id, "focus row scrolled onto the last body line")
}

func TestSaveStatusInTitle(t *testing.T) {
	save := &fakeSave{pending: true}
	d := newDriver(t, newSheet(t), Options{Save: save})
	assert.Contains(t, plainView(d), "saving…")

	save.pending = false
	assert.Contains(t, plainView(d), "saved")

	save.err = errors.New("locked")
	assert.Contains(t, plainView(d), "save failed")
}

type fakeSave struct {
	pending bool
	err     error
}

func (f *fakeSave) Pending() bool { return f.pending }
func (f *fakeSave) Err() error    { return f.err }

func TestQuit(t *testing.T) {
	ctrl := newSheet(t)
	d := newDriver(t, ctrl, Options{})

	d.MouseDown(xGutter, ySlot1)
	d.PressCtrlC()

	assert.True(t, d.Quitting)
	assert.True(t, model(d).Quitting())
	assert.Equal(t, reorder.PhaseIdle, ctrl.DragPhase())
	assert.Empty(t, d.View())
}
