// Package grid is the composition root of the sheet engine. A Controller
// turns pointer and keyboard intents into row store mutations, runs the
// derivation pipeline after each one, and exposes the visible rows and the
// per-cell and per-row predicates a presentation layer draws from.
//
// Controllers are single-threaded: every method must be called from the
// goroutine that owns the presentation loop.
package grid

import (
	"fmt"
	"time"

	"github.com/alexanderramin/plansheet/internal/derive"
	"github.com/alexanderramin/plansheet/internal/domain"
	"github.com/alexanderramin/plansheet/internal/filter"
	"github.com/alexanderramin/plansheet/internal/history"
	"github.com/alexanderramin/plansheet/internal/reorder"
	"github.com/alexanderramin/plansheet/internal/rowstore"
	"github.com/alexanderramin/plansheet/internal/selection"
	"github.com/charmbracelet/bubbles/key"
)

// Persister receives the full row list after every change that moved the
// store. Implementations debounce; Schedule must not block.
type Persister interface {
	Schedule(rows []domain.Row)
}

type noopPersister struct{}

func (noopPersister) Schedule([]domain.Row) {}

// Config tunes a Controller. The zero value is usable.
type Config struct {
	HistoryCap    int
	DragThreshold float64
	Keys          KeyMap
	Persister     Persister
	Observer      Observer
	Capture       reorder.Capture
}

// Target is what a pointer press landed on. An empty RowID means outside
// the grid. An empty ColumnKey means the row gutter, which is where drags
// start.
type Target struct {
	RowID     string
	ColumnKey string
}

// Controller owns the interaction state of one sheet.
type Controller struct {
	store    *rowstore.Store
	pipeline *derive.Pipeline
	history  *history.History
	sel      *selection.Model
	drag     *reorder.Engine
	keys     KeyMap
	persist  Persister
	observer Observer

	criteria  filter.Criteria
	collapsed filter.Set

	derived    []domain.Row
	derivedIdx map[string]int
	visible    []domain.Row
	visibleIDs []string
	columns    []string

	pressMods selection.Mods
	editing   selection.CellRef
	scheduled uint64
}

// New binds a controller to store and runs the first derivation.
func New(store *rowstore.Store, cfg Config) *Controller {
	keys := cfg.Keys
	if keys.isZero() {
		keys = DefaultKeyMap()
	}
	c := &Controller{
		store:     store,
		pipeline:  derive.NewPipeline(store),
		history:   history.New(cfg.HistoryCap),
		sel:       selection.New(),
		drag:      reorder.NewEngine(cfg.DragThreshold, cfg.Capture),
		keys:      keys,
		persist:   cfg.Persister,
		observer:  observerOrNoop(cfg.Observer),
		collapsed: filter.NewSet(),
		columns:   domain.Columns(store.TotalDays()),
		scheduled: store.Version(),
	}
	if c.persist == nil {
		c.persist = noopPersister{}
	}
	c.refresh()
	return c
}

// refresh runs derive, reconcile and filter against the latest store
// snapshot, then drops selection and edit state that points at rows which
// no longer exist.
func (c *Controller) refresh() {
	startedAt := time.Now()
	res := c.pipeline.Run()
	if res.Passes > 1 {
		e := Event{
			Name: "reconcile",
			Fields: map[string]any{
				"rows":   len(res.Reconciled),
				"passes": res.Passes,
			},
		}
		if !res.Converged {
			e.Err = ErrNoConvergence
		}
		c.observe(startedAt, e)
	}

	c.derived = res.Derived
	c.derivedIdx = make(map[string]int, len(c.derived))
	for i, r := range c.derived {
		c.derivedIdx[r.ID] = i
	}
	c.visible = filter.Visible(c.derived, c.criteria, c.collapsed)
	c.visibleIDs = filter.IDs(c.visible)

	c.sel.Prune(c.exists)
	if c.editing.Valid() && !c.editable(c.editing) {
		c.editing = selection.CellRef{}
	}

	if v := c.store.Version(); v != c.scheduled {
		c.scheduled = v
		c.persist.Schedule(c.store.Rows())
	}
}

func (c *Controller) exists(id string) bool { return c.store.IndexOf(id) >= 0 }

func (c *Controller) editable(ref selection.CellRef) bool {
	r, ok := c.store.Get(ref.RowID)
	if !ok || !r.IsTaskLike() || ref.ColumnKey == domain.ColumnTimeValue {
		return false
	}
	if i, ok := domain.DayIndex(ref.ColumnKey); ok {
		return i < c.store.TotalDays()
	}
	for _, col := range domain.FixedColumns {
		if col == ref.ColumnKey {
			return true
		}
	}
	return false
}

// --- Read side ---

// Visible returns the filtered, collapse-flattened derived rows.
func (c *Controller) Visible() []domain.Row { return c.visible }

// VisibleIDs returns the ids of Visible in order.
func (c *Controller) VisibleIDs() []string { return c.visibleIDs }

// Derived returns every derived row, hidden ones included.
func (c *Controller) Derived() []domain.Row { return c.derived }

// Row returns the derived row with id.
func (c *Controller) Row(id string) (domain.Row, bool) {
	i, ok := c.derivedIdx[id]
	if !ok {
		return domain.Row{}, false
	}
	return c.derived[i], true
}

// Columns returns the column keys in display order.
func (c *Controller) Columns() []string { return c.columns }

// TotalDays returns the number of day columns.
func (c *Controller) TotalDays() int { return c.store.TotalDays() }

// DailyTotals returns scheduled minutes per day over every derived row.
func (c *Controller) DailyTotals() []int {
	return derive.DailyTotals(c.derived, c.store.TotalDays())
}

// StoreRows returns the canonical rows.
func (c *Controller) StoreRows() []domain.Row { return c.store.Rows() }

// Keys returns the active key map.
func (c *Controller) Keys() KeyMap { return c.keys }

// UndoDepth returns how many commands can be undone.
func (c *Controller) UndoDepth() int { return c.history.UndoDepth() }

// RedoDepth returns how many commands can be redone.
func (c *Controller) RedoDepth() int { return c.history.RedoDepth() }

// IsCellSelected reports whether the cell is part of the cell selection.
func (c *Controller) IsCellSelected(ref selection.CellRef) bool {
	return c.sel.IsCellSelected(ref, c.visibleIDs, c.columns)
}

// IsCellFocused reports whether the cell holds the keyboard focus.
func (c *Controller) IsCellFocused(ref selection.CellRef) bool {
	return ref.Valid() && c.sel.Focus() == ref
}

// IsCellEditing reports whether the cell is being edited.
func (c *Controller) IsCellEditing(ref selection.CellRef) bool {
	return c.editing.Valid() && c.editing == ref
}

// IsRowSelected reports whether the row is part of the row selection.
func (c *Controller) IsRowSelected(id string) bool { return c.sel.IsRowSelected(id) }

// IsRowDragged reports whether the row is being dragged.
func (c *Controller) IsRowDragged(id string) bool { return c.drag.IsDragged(id) }

// IsDropTarget reports whether the insertion marker sits before the row.
func (c *Controller) IsDropTarget(id string) bool { return c.drag.IsDropTarget(id) }

// DropAtEnd reports whether a drag would currently insert after the last
// visible row.
func (c *Controller) DropAtEnd() bool {
	idx, id := c.drag.Target()
	return idx >= 0 && id == ""
}

// DragPhase returns the reorder engine phase.
func (c *Controller) DragPhase() reorder.Phase { return c.drag.Phase() }

// SelectedRowIDs returns the selected rows in visible order.
func (c *Controller) SelectedRowIDs() []string { return c.sel.SelectedRowIDs(c.visibleIDs) }

// SelectedCells returns the selected cells in visible order.
func (c *Controller) SelectedCells() []selection.CellRef {
	return c.sel.SelectedCells(c.visibleIDs, c.columns)
}

// Focus returns the focused cell, or the zero CellRef.
func (c *Controller) Focus() selection.CellRef { return c.sel.Focus() }

// --- Filtering and collapse ---

// Criteria returns the active value filters.
func (c *Controller) Criteria() filter.Criteria { return c.criteria }

// SetCriteria replaces the value filters.
func (c *Controller) SetCriteria(crit filter.Criteria) {
	c.criteria = crit
	c.refresh()
}

// IsCollapsed reports whether the group is collapsed.
func (c *Controller) IsCollapsed(groupID string) bool { return c.collapsed.Has(groupID) }

// ToggleCollapse flips the collapse state of the group headed by id. It
// reports false when id is not a group header.
func (c *Controller) ToggleCollapse(id string) bool {
	r, ok := c.Row(id)
	if !ok || !r.Kind.IsGroupHeader() || r.GroupID == "" {
		return false
	}
	c.collapsed.Toggle(r.GroupID)
	c.refresh()
	return true
}

// Collapsed returns the collapsed group ids, sorted.
func (c *Controller) Collapsed() []string { return c.collapsed.Values() }

// SetCollapsed replaces the collapsed group set.
func (c *Controller) SetCollapsed(groups ...string) {
	c.collapsed = filter.NewSet(groups...)
	c.refresh()
}

// --- Pointer intents ---

// PointerDown starts a pointer interaction. A press outside the grid clears
// both selections and abandons any drag or edit. A press on a cell selects
// it. A press on a row gutter arms the reorder engine; the row selection is
// only touched on release.
func (c *Controller) PointerDown(t Target, p reorder.Point, mods selection.Mods) {
	if t.RowID == "" {
		c.drag.Cancel()
		c.editing = selection.CellRef{}
		c.sel.Clear()
		return
	}
	if !c.exists(t.RowID) {
		return
	}
	if t.ColumnKey != "" {
		ref := selection.CellRef{RowID: t.RowID, ColumnKey: t.ColumnKey}
		if c.editing.Valid() && c.editing != ref {
			c.editing = selection.CellRef{}
		}
		c.sel.ClickCell(ref, mods, c.visibleIDs, c.columns)
		return
	}
	c.pressMods = mods
	c.drag.PointerDown(t.RowID, p, c.draggable(c.sel.SelectedRowIDs(c.visibleIDs)))
}

// PointerMove feeds pointer motion to an active drag. rendered lists the
// on-screen rows with their vertical bounds, top to bottom.
func (c *Controller) PointerMove(p reorder.Point, rendered []reorder.RowBounds) {
	c.drag.PointerMove(p, c.visibleIDs, rendered)
}

// PointerUp ends a pointer interaction. Releasing a drag outside the grid
// cancels it; releasing inside but below every row inserts after the last
// visible row.
func (c *Controller) PointerUp(inGrid bool) {
	if !inGrid && c.drag.Phase() == reorder.PhaseDragging {
		c.drag.Cancel()
		return
	}
	out := c.drag.PointerUp()
	switch out.Kind {
	case reorder.OutcomeClick:
		c.sel.ClickRow(out.RowID, c.pressMods, c.visibleIDs)
	case reorder.OutcomeMove:
		c.commitDrag(out)
	case reorder.OutcomeNone:
	}
	c.pressMods = selection.Mods{}
}

// Close abandons any in-flight drag, releasing pointer capture.
func (c *Controller) Close() { c.drag.Cancel() }

func (c *Controller) draggable(ids []string) []string {
	out := ids[:0:0]
	for _, id := range ids {
		if r, ok := c.store.Get(id); ok && r.IsTaskLike() {
			out = append(out, id)
		}
	}
	return out
}

// commitDrag replays a move computed on the visible order onto the full
// row list: the dragged block lands next to the same visible neighbour it
// has in the moved visible order, so hidden rows keep their place.
func (c *Controller) commitDrag(out reorder.Outcome) {
	startedAt := time.Now()
	moving := c.draggable(out.Moving)
	newVis, changed := reorder.MoveIDs(c.visibleIDs, moving, out.Target)
	if !changed {
		return
	}
	inBlock := filter.NewSet(moving...)
	first := -1
	n := 0
	for i, id := range newVis {
		if inBlock.Has(id) {
			if first < 0 {
				first = i
			}
			n++
		}
	}
	anchor, before := "", true
	switch {
	case first+n < len(newVis):
		anchor = newVis[first+n]
	case first > 0:
		anchor, before = newVis[first-1], false
	default:
		return
	}

	next, changed := reorder.MoveBlockBeside(c.store.Rows(), rowID, moving, anchor, before)
	if !changed {
		return
	}
	c.reshape("move_rows", next, map[string]any{"rows": len(moving), "target": out.Target})
	c.observe(startedAt, Event{
		Name: "reorder_commit",
		Fields: map[string]any{
			"rows":   len(moving),
			"target": out.Target,
			"anchor": anchor,
		},
	})
}

func rowID(r domain.Row) string { return r.ID }

// --- Keyboard intents ---

// KeyDown handles one key press and reports whether it was consumed. While
// a cell is being edited only Cancel is consumed; everything else belongs
// to the editor.
func (c *Controller) KeyDown(k fmt.Stringer) bool {
	if c.editing.Valid() {
		if key.Matches(k, c.keys.Cancel) {
			c.CancelEdit()
			return true
		}
		return false
	}
	switch {
	case key.Matches(k, c.keys.Undo):
		c.drag.Cancel()
		c.Undo()
	case key.Matches(k, c.keys.Redo):
		c.drag.Cancel()
		c.Redo()
	case key.Matches(k, c.keys.Cancel):
		if c.drag.Phase() != reorder.PhaseIdle {
			c.drag.Cancel()
		} else {
			c.sel.Clear()
		}
	case key.Matches(k, c.keys.Up):
		c.moveFocus(-1, 0, false)
	case key.Matches(k, c.keys.Down):
		c.moveFocus(1, 0, false)
	case key.Matches(k, c.keys.Left):
		c.moveFocus(0, -1, false)
	case key.Matches(k, c.keys.Right):
		c.moveFocus(0, 1, false)
	case key.Matches(k, c.keys.ExtendUp):
		c.moveFocus(-1, 0, true)
	case key.Matches(k, c.keys.ExtendDown):
		c.moveFocus(1, 0, true)
	case key.Matches(k, c.keys.ExtendLeft):
		c.moveFocus(0, -1, true)
	case key.Matches(k, c.keys.ExtendRight):
		c.moveFocus(0, 1, true)
	case key.Matches(k, c.keys.Edit):
		return c.BeginEdit()
	case key.Matches(k, c.keys.Clear):
		c.ClearCells(c.SelectedCells())
	case key.Matches(k, c.keys.Duplicate):
		c.Duplicate(c.SelectedRowIDs())
	case key.Matches(k, c.keys.Insert):
		after := c.sel.Focus().RowID
		if ids := c.SelectedRowIDs(); len(ids) > 0 {
			after = ids[len(ids)-1]
		}
		c.InsertTask(after)
	case key.Matches(k, c.keys.Delete):
		c.Delete(c.SelectedRowIDs())
	case key.Matches(k, c.keys.SelectAll):
		c.sel.SelectRows(c.visibleIDs)
	case key.Matches(k, c.keys.ToggleCollapse):
		id := c.sel.Focus().RowID
		if ids := c.SelectedRowIDs(); id == "" && len(ids) == 1 {
			id = ids[0]
		}
		return c.ToggleCollapse(id)
	default:
		return false
	}
	return true
}

func (c *Controller) moveFocus(dr, dc int, extend bool) {
	if len(c.visibleIDs) == 0 || len(c.columns) == 0 {
		return
	}
	f := c.sel.Focus()
	ri, ci := indexOf(c.visibleIDs, f.RowID), indexOf(c.columns, f.ColumnKey)
	if ri < 0 || ci < 0 {
		ri, ci = c.firstTaskIndex(), indexOf(c.columns, domain.ColumnTaskName)
	} else {
		ri = min(max(ri+dr, 0), len(c.visibleIDs)-1)
		ci = min(max(ci+dc, 0), len(c.columns)-1)
	}
	ref := selection.CellRef{RowID: c.visibleIDs[ri], ColumnKey: c.columns[ci]}
	if extend {
		c.sel.ExtendFocus(ref)
		return
	}
	c.sel.SetFocus(ref)
}

func (c *Controller) firstTaskIndex() int {
	for i, r := range c.visible {
		if r.IsTaskLike() {
			return i
		}
	}
	return 0
}

func indexOf(xs []string, x string) int {
	for i, v := range xs {
		if v == x {
			return i
		}
	}
	return -1
}

// --- Editing ---

// BeginEdit starts editing the focused cell. It reports false when the
// focused cell is not editable.
func (c *Controller) BeginEdit() bool {
	f := c.sel.Focus()
	if !f.Valid() || !c.editable(f) {
		return false
	}
	c.editing = f
	return true
}

// Editing returns the cell being edited.
func (c *Controller) Editing() (selection.CellRef, bool) {
	return c.editing, c.editing.Valid()
}

// EditValue returns the stored value of the cell being edited, which is
// what an editor starts from.
func (c *Controller) EditValue() string {
	r, ok := c.store.Get(c.editing.RowID)
	if !ok {
		return ""
	}
	v, _ := r.CellValue(c.editing.ColumnKey)
	return v
}

// CommitEdit writes value into the edited cell and ends editing. On error
// the edit stays open and nothing changes.
func (c *Controller) CommitEdit(value string) error {
	if !c.editing.Valid() {
		return nil
	}
	if err := c.EditCell(c.editing, value); err != nil {
		return err
	}
	c.editing = selection.CellRef{}
	return nil
}

// CancelEdit ends editing without writing.
func (c *Controller) CancelEdit() { c.editing = selection.CellRef{} }
