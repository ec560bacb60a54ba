package grid

import (
	"testing"

	"github.com/alexanderramin/plansheet/internal/domain"
	"github.com/alexanderramin/plansheet/internal/reorder"
	"github.com/alexanderramin/plansheet/internal/rowid"
	"github.com/alexanderramin/plansheet/internal/rowstore"
	"github.com/alexanderramin/plansheet/internal/selection"
)

const days = 7

type keyPress string

func (k keyPress) String() string { return string(k) }

type recordingPersister struct {
	calls int
	last  []domain.Row
}

func (p *recordingPersister) Schedule(rows []domain.Row) {
	p.calls++
	p.last = rows
}

type recordingObserver struct {
	events []Event
}

func (o *recordingObserver) Observe(e Event) { o.events = append(o.events, e) }

func (o *recordingObserver) named(name string) []Event {
	var out []Event
	for _, e := range o.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

func taskRow(id, project, name string) domain.Row {
	r := domain.NewTaskRow(id, domain.KindTask, project, "", days)
	r.Task.TaskName = name
	return r
}

// plainRows returns bare task rows with the given ids.
func plainRows(ids ...string) []domain.Row {
	rows := make([]domain.Row, len(ids))
	for i, id := range ids {
		rows[i] = taskRow(id, "p", id)
	}
	return rows
}

// sheetRows returns a small planned sheet: a timeline row, projects a and b
// with general and unscheduled rows, and one inbox slot.
func sheetRows() []domain.Row {
	pa, pb := rowid.Project("a"), rowid.Project("b")
	inbox := domain.NewTaskRow(rowid.Slot(rowid.InboxGroup, 1), domain.KindInboxItem, "", "", days)
	return []domain.Row{
		{ID: rowid.Timeline("day"), Kind: domain.KindTimeline, Timeline: &domain.TimelineFields{
			Part: domain.TimelineDay, Cells: make([]string, days),
		}},
		{ID: pa, Kind: domain.KindProjectHeader, GroupID: pa, Label: "a"},
		{ID: rowid.General(pa), Kind: domain.KindProjectGeneral, Label: "General"},
		taskRow(rowid.Slot(pa, 1), "a", "Write"),
		taskRow(rowid.Slot(pa, 2), "a", ""),
		{ID: rowid.Unscheduled(pa), Kind: domain.KindProjectUnscheduled, Label: "Unscheduled"},
		{ID: pb, Kind: domain.KindProjectHeader, GroupID: pb, Label: "b"},
		{ID: rowid.General(pb), Kind: domain.KindProjectGeneral, Label: "General"},
		taskRow(rowid.Slot(pb, 1), "b", "Call"),
		{ID: rowid.Unscheduled(pb), Kind: domain.KindProjectUnscheduled, Label: "Unscheduled"},
		inbox,
	}
}

func newController(t *testing.T, rows []domain.Row, cfg Config) (*Controller, *rowstore.Store) {
	t.Helper()
	store := rowstore.New(days, rows)
	return New(store, cfg), store
}

// layout places the visible rows ten units apart starting at y=0.
func layout(ids []string) []reorder.RowBounds {
	out := make([]reorder.RowBounds, len(ids))
	for i, id := range ids {
		out[i] = reorder.RowBounds{ID: id, Top: float64(i * 10), Bottom: float64(i*10 + 10)}
	}
	return out
}

func clickRow(c *Controller, id string, mods selection.Mods) {
	c.PointerDown(Target{RowID: id}, reorder.Point{}, mods)
	c.PointerUp(true)
}

// dragRow presses the gutter of id at its rendered midpoint and moves the
// pointer to y.
func dragRow(c *Controller, id string, y float64) {
	rendered := layout(c.VisibleIDs())
	var start reorder.Point
	for _, b := range rendered {
		if b.ID == id {
			start = reorder.Point{Y: b.Mid()}
		}
	}
	c.PointerDown(Target{RowID: id}, start, selection.Mods{})
	c.PointerMove(reorder.Point{Y: y}, rendered)
}

func ids(rows []domain.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func cell(row, col string) selection.CellRef {
	return selection.CellRef{RowID: row, ColumnKey: col}
}
