package grid

import (
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/plansheet/internal/domain"
	"github.com/alexanderramin/plansheet/internal/history"
	"github.com/alexanderramin/plansheet/internal/plan"
	"github.com/alexanderramin/plansheet/internal/reorder"
	"github.com/alexanderramin/plansheet/internal/rowid"
	"github.com/alexanderramin/plansheet/internal/selection"
	"github.com/google/uuid"
)

var (
	// ErrUnknownRow is returned when a row id does not exist.
	ErrUnknownRow = errors.New("unknown row")
	// ErrNotEditable is returned for cells that cannot take a value.
	ErrNotEditable = errors.New("cell is not editable")
)

// Every mutation goes through execute so that it lands on the history with
// a command id the observer can correlate.
func (c *Controller) execute(label string, fields map[string]any, apply, revert func()) {
	startedAt := time.Now()
	id := uuid.NewString()
	c.history.Execute(history.Func{ID: id, Label: label, Apply: apply, Revert: revert})
	c.observe(startedAt, Event{Name: "command", Command: label, CommandID: id, Fields: fields})
}

// patch records a command that replaces rows one by one through the store's
// replace-by-id operation. prev and next hold the same ids.
func (c *Controller) patch(label string, prev, next []domain.Row, fields map[string]any) {
	c.execute(label, fields,
		func() { c.replaceEach(next) },
		func() { c.replaceEach(prev) },
	)
}

func (c *Controller) replaceEach(rows []domain.Row) {
	for _, r := range rows {
		c.store.Replace(r)
	}
	c.refresh()
}

// reshape records a command that swaps the whole row list, for inserts,
// deletes and moves.
func (c *Controller) reshape(label string, next []domain.Row, fields map[string]any) {
	prev := c.store.Rows()
	c.execute(label, fields,
		func() { c.install(next) },
		func() { c.install(prev) },
	)
}

func (c *Controller) install(rows []domain.Row) {
	c.store.SetRows(rows)
	c.refresh()
}

// Undo reverts the latest command. It reports false on an empty stack.
func (c *Controller) Undo() bool {
	return c.stepHistory("undo", c.history.Undo)
}

// Redo replays the latest undone command. It reports false on an empty
// stack.
func (c *Controller) Redo() bool {
	return c.stepHistory("redo", c.history.Redo)
}

func (c *Controller) stepHistory(name string, step func() (history.Command, bool)) bool {
	startedAt := time.Now()
	cmd, ok := step()
	if !ok {
		return false
	}
	e := Event{Name: name}
	if f, isFunc := cmd.(history.Func); isFunc {
		e.Command, e.CommandID = f.Label, f.ID
	}
	c.observe(startedAt, e)
	return true
}

// --- Cell edits ---

// EditCell sets one cell. Writing the value a cell already holds records
// nothing.
func (c *Controller) EditCell(ref selection.CellRef, value string) error {
	row, ok := c.store.Get(ref.RowID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRow, ref.RowID)
	}
	if !row.IsTaskLike() {
		return fmt.Errorf("%w: %s is a %s row", ErrNotEditable, ref.RowID, row.Kind)
	}
	next, err := row.WithCell(ref.ColumnKey, value)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotEditable, err)
	}
	before, _ := row.CellValue(ref.ColumnKey)
	after, _ := next.CellValue(ref.ColumnKey)
	if before == after {
		return nil
	}
	c.patch("edit_cell", []domain.Row{row}, []domain.Row{next}, map[string]any{
		"row":    ref.RowID,
		"column": ref.ColumnKey,
	})
	return nil
}

// SetEstimate sets the estimate label of a row.
func (c *Controller) SetEstimate(id string, e domain.EstimateLabel) error {
	return c.EditCell(selection.CellRef{RowID: id, ColumnKey: domain.ColumnEstimate}, string(e))
}

// SetStatus sets the status of a row.
func (c *Controller) SetStatus(id string, st domain.Status) error {
	return c.EditCell(selection.CellRef{RowID: id, ColumnKey: domain.ColumnStatus}, string(st))
}

// SetTaskName sets the task name of a row.
func (c *Controller) SetTaskName(id, name string) error {
	return c.EditCell(selection.CellRef{RowID: id, ColumnKey: domain.ColumnTaskName}, name)
}

// ToggleRecurring flips the recurring flag of a row.
func (c *Controller) ToggleRecurring(id string) error {
	row, ok := c.store.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRow, id)
	}
	if !row.IsTaskLike() {
		return fmt.Errorf("%w: %s is a %s row", ErrNotEditable, id, row.Kind)
	}
	return c.EditCell(selection.CellRef{RowID: id, ColumnKey: domain.ColumnRecurring},
		domain.FormatRecurring(!row.Task.Recurring))
}

// ClearCells resets every editable cell in refs to its blank value as one
// command, and returns how many cells changed.
func (c *Controller) ClearCells(refs []selection.CellRef) int {
	var order []string
	byRow := make(map[string][]string)
	for _, ref := range refs {
		if !c.editable(ref) {
			continue
		}
		if _, seen := byRow[ref.RowID]; !seen {
			order = append(order, ref.RowID)
		}
		byRow[ref.RowID] = append(byRow[ref.RowID], ref.ColumnKey)
	}

	var prev, next []domain.Row
	cleared := 0
	for _, id := range order {
		row, _ := c.store.Get(id)
		cur := row
		for _, col := range byRow[id] {
			before, _ := cur.CellValue(col)
			updated, err := cur.WithCell(col, blankValue(col))
			if err != nil {
				continue
			}
			if after, _ := updated.CellValue(col); after != before {
				cur = updated
				cleared++
			}
		}
		if cur.Task != row.Task {
			prev = append(prev, row)
			next = append(next, cur)
		}
	}
	if cleared == 0 {
		return 0
	}
	c.patch("clear_cells", prev, next, map[string]any{"cells": cleared})
	return cleared
}

func blankValue(column string) string {
	switch column {
	case domain.ColumnStatus:
		return string(domain.StatusNone)
	case domain.ColumnEstimate:
		return string(domain.EstimateNone)
	case domain.ColumnRecurring:
		return domain.FormatRecurring(false)
	}
	return ""
}

// --- Row lifecycle ---

// InsertTask adds a blank task slot directly after the row with id afterID,
// in the group that row belongs to. It returns the new id, or false when no
// slot can be placed there (timeline rows, archive week headers, stale ids).
func (c *Controller) InsertTask(afterID string) (string, bool) {
	i := c.store.IndexOf(afterID)
	if i < 0 {
		return "", false
	}
	group, kind, ok := c.slotGroup(afterID)
	if !ok {
		return "", false
	}
	g, _ := rowid.ParseGroup(group)
	row := domain.NewTaskRow(rowid.NewSlot(group, c.exists), kind, g.Project, g.Subproject, c.store.TotalDays())
	c.reshape("insert_task", insertAt(c.store.Rows(), i+1, row), map[string]any{"row": row.ID})
	return row.ID, true
}

// slotGroup returns the group new slots next to id belong to.
func (c *Controller) slotGroup(id string) (string, domain.RowKind, bool) {
	d, ok := c.Row(id)
	if !ok {
		return "", "", false
	}
	var group string
	switch d.Kind {
	case domain.KindInboxItem:
		return rowid.InboxGroup, domain.KindInboxItem, true
	case domain.KindTask:
		if g, ok := rowid.SlotGroup(d.ID); ok {
			group = g
		} else {
			group = d.ParentGroupID
		}
	case domain.KindProjectHeader, domain.KindSubprojectHeader, domain.KindArchivedProjectHeader:
		group = d.GroupID
	case domain.KindProjectGeneral, domain.KindProjectUnscheduled,
		domain.KindSubprojectGeneral, domain.KindSubprojectUnscheduled,
		domain.KindArchivedProjectGeneral, domain.KindArchivedProjectUnscheduled:
		group = d.ParentGroupID
	case domain.KindArchiveWeek, domain.KindTimeline:
		return "", "", false
	}
	g, ok := rowid.ParseGroup(group)
	if !ok {
		return "", "", false
	}
	switch g.Kind {
	case rowid.GroupProject, rowid.GroupSubproject, rowid.GroupArchivedProject:
		return group, domain.KindTask, true
	case rowid.GroupInbox:
		return group, domain.KindInboxItem, true
	case rowid.GroupArchiveWeek, rowid.GroupUnknown:
	}
	return "", "", false
}

// Duplicate inserts a copy of every task-like row in ids directly after its
// source and returns the new ids in order.
func (c *Controller) Duplicate(ids []string) []string {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	created := make(map[string]bool)
	taken := func(id string) bool { return created[id] || c.exists(id) }

	prev := c.store.Rows()
	next := make([]domain.Row, 0, len(prev)+len(ids))
	var out []string
	for _, r := range prev {
		next = append(next, r)
		if !want[r.ID] || !r.IsTaskLike() {
			continue
		}
		group, _, ok := c.slotGroup(r.ID)
		if !ok {
			group = r.ID
		}
		cp := r.Clone()
		cp.ID = rowid.NewSlot(group, taken)
		cp.GroupID = ""
		created[cp.ID] = true
		out = append(out, cp.ID)
		next = append(next, cp)
	}
	if len(out) == 0 {
		return nil
	}
	c.reshape("duplicate", next, map[string]any{"rows": len(out)})
	return out
}

// Delete removes every task-like row in ids and returns how many went.
// Structural rows cannot be deleted.
func (c *Controller) Delete(ids []string) int {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	prev := c.store.Rows()
	next := make([]domain.Row, 0, len(prev))
	for _, r := range prev {
		if drop[r.ID] && r.IsTaskLike() {
			continue
		}
		next = append(next, r)
	}
	removed := len(prev) - len(next)
	if removed == 0 {
		return 0
	}
	c.reshape("delete", next, map[string]any{"rows": removed})
	return removed
}

// MoveRows moves the task-like rows in ids as one block to target, an
// insertion index into the full row order. It reports false when the order
// does not change.
func (c *Controller) MoveRows(ids []string, target int) bool {
	moving := c.draggable(ids)
	next, changed := reorder.MoveBlock(c.store.Rows(), rowID, moving, target)
	if !changed {
		return false
	}
	c.reshape("move_rows", next, map[string]any{"rows": len(moving), "target": target})
	return true
}

// Archive moves the project tasks in ids under the archive week, creating
// the week section and the per-project block on demand. Inbox items and rows
// already archived are skipped. It returns the ids of the archived copies.
func (c *Controller) Archive(ids []string, week string) ([]string, error) {
	if _, _, err := plan.ParseWeekKey(week); err != nil {
		return nil, err
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var moving []domain.Row
	rest := make([]domain.Row, 0, c.store.Len())
	for _, r := range c.store.Rows() {
		if want[r.ID] && r.Kind == domain.KindTask && r.Task != nil && !isArchived(r.ID) {
			moving = append(moving, r)
			continue
		}
		rest = append(rest, r)
	}
	if len(moving) == 0 {
		return nil, nil
	}

	created := make(map[string]bool)
	taken := func(id string) bool { return created[id] || c.exists(id) }
	out := make([]string, 0, len(moving))
	for _, r := range moving {
		var id string
		rest, id = archiveInto(rest, r, week, taken)
		created[id] = true
		out = append(out, id)
	}
	c.reshape("archive", rest, map[string]any{"rows": len(out), "week": week})
	return out, nil
}

func isArchived(id string) bool {
	group, ok := rowid.SlotGroup(id)
	if !ok {
		return false
	}
	g, ok := rowid.ParseGroup(group)
	return ok && g.Kind == rowid.GroupArchivedProject
}

// archiveInto places a copy of r in the archived project block of week and
// returns the updated list and the copy's id.
func archiveInto(rows []domain.Row, r domain.Row, week string, taken func(string) bool) ([]domain.Row, string) {
	weekID := rowid.ArchiveWeek(week)
	wi := indexByID(rows, weekID, 0, len(rows))
	if wi < 0 {
		rows = insertAt(rows, len(rows), plan.WeekHeader(week))
		wi = len(rows) - 1
	}
	end := wi + 1
	for end < len(rows) && rows[end].Kind != domain.KindArchiveWeek {
		end++
	}

	project := r.Task.ProjectKey
	if !rowid.ValidKey(project) {
		project = rowid.InboxGroup
	}
	groupID := rowid.ArchivedProject(week, project)
	pi := indexByID(rows, groupID, wi, end)
	if pi < 0 {
		rows = insertAt(rows, end, plan.ArchivedBlock(week, project)...)
		pi = end
		end += 3
	}
	at := indexByID(rows, rowid.Unscheduled(groupID), pi, end)
	if at < 0 {
		at = pi + 1
		for at < end && rows[at].Kind != domain.KindArchivedProjectHeader {
			at++
		}
	}

	cp := r.Clone()
	cp.ID = rowid.NewSlot(groupID, taken)
	cp.ParentGroupID = ""
	return insertAt(rows, at, cp), cp.ID
}

func indexByID(rows []domain.Row, id string, from, to int) int {
	for i := from; i < to && i < len(rows); i++ {
		if rows[i].ID == id {
			return i
		}
	}
	return -1
}

// insertAt returns a new slice with add spliced in before index i.
func insertAt(rows []domain.Row, i int, add ...domain.Row) []domain.Row {
	i = min(max(i, 0), len(rows))
	out := make([]domain.Row, 0, len(rows)+len(add))
	out = append(out, rows[:i]...)
	out = append(out, add...)
	return append(out, rows[i:]...)
}
