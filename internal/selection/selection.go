// Package selection holds the grid's row and cell selections.
//
// Selections are keyed by row id and column key, never by index. Ranges are
// stored as an anchor and a focus reference and resolved against whatever
// row and column order the caller passes in, so filtering or reordering
// between two clicks changes what the range covers rather than leaving it
// pointing at stale indices.
package selection

import "slices"

// CellRef addresses one cell.
type CellRef struct {
	RowID     string
	ColumnKey string
}

// Valid reports whether both parts of the reference are set.
func (c CellRef) Valid() bool { return c.RowID != "" && c.ColumnKey != "" }

// Mods are the modifier keys held during a click.
type Mods struct {
	Toggle bool // ctrl/cmd
	Extend bool // shift
}

// Model is the selection state. The zero value is an empty selection.
type Model struct {
	rows      map[string]struct{}
	rowAnchor string

	cells       map[CellRef]struct{}
	anchor      CellRef
	focus       CellRef
	rangeActive bool
}

// New returns an empty selection.
func New() *Model { return &Model{} }

// ClickRow applies a row click over the visible order.
//
// A plain click selects only id, or clears the selection when id already was
// the sole selected row. Toggle flips membership of id. Extend selects the
// contiguous run of visible rows between the row anchor and id; without a
// visible anchor it behaves like a plain click.
func (m *Model) ClickRow(id string, mods Mods, order []string) {
	if id == "" {
		return
	}
	switch {
	case mods.Extend:
		from := slices.Index(order, m.rowAnchor)
		to := slices.Index(order, id)
		if from < 0 || to < 0 {
			m.rows = map[string]struct{}{id: {}}
			m.rowAnchor = id
			return
		}
		if from > to {
			from, to = to, from
		}
		m.rows = make(map[string]struct{}, to-from+1)
		for _, rid := range order[from : to+1] {
			m.rows[rid] = struct{}{}
		}
	case mods.Toggle:
		if m.rows == nil {
			m.rows = make(map[string]struct{})
		}
		if _, ok := m.rows[id]; ok {
			delete(m.rows, id)
		} else {
			m.rows[id] = struct{}{}
		}
		m.rowAnchor = id
	default:
		_, sole := m.rows[id]
		if sole && len(m.rows) == 1 {
			m.rows = nil
		} else {
			m.rows = map[string]struct{}{id: {}}
		}
		m.rowAnchor = id
	}
}

// SelectRows replaces the row selection with ids.
func (m *Model) SelectRows(ids []string) {
	m.rows = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			m.rows[id] = struct{}{}
		}
	}
	if len(ids) > 0 {
		m.rowAnchor = ids[0]
	}
}

// IsRowSelected reports whether id is in the row selection.
func (m *Model) IsRowSelected(id string) bool {
	_, ok := m.rows[id]
	return ok
}

// RowCount returns the number of selected rows.
func (m *Model) RowCount() int { return len(m.rows) }

// SelectedRowIDs returns the selected row ids in the given order. Selected
// ids absent from order are omitted.
func (m *Model) SelectedRowIDs(order []string) []string {
	if len(m.rows) == 0 {
		return nil
	}
	out := make([]string, 0, len(m.rows))
	for _, id := range order {
		if _, ok := m.rows[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// ClickCell applies a cell click. rows and cols are the current visible row
// order and column order.
//
// A plain click makes ref the anchor and focus of a one-cell range and drops
// any toggled cells. Extend moves the focus to ref, keeping the anchor.
// Toggle folds the current range into the explicit set, then flips ref.
func (m *Model) ClickCell(ref CellRef, mods Mods, rows, cols []string) {
	if !ref.Valid() {
		return
	}
	switch {
	case mods.Extend:
		m.ExtendFocus(ref)
	case mods.Toggle:
		if m.cells == nil {
			m.cells = make(map[CellRef]struct{})
		}
		if m.rangeActive {
			for _, c := range Range(m.anchor, m.focus, rows, cols) {
				m.cells[c] = struct{}{}
			}
		}
		if _, ok := m.cells[ref]; ok {
			delete(m.cells, ref)
		} else {
			m.cells[ref] = struct{}{}
		}
		m.anchor, m.focus = ref, ref
		m.rangeActive = false
	default:
		m.SetFocus(ref)
	}
}

// SetFocus collapses the cell selection to ref alone.
func (m *Model) SetFocus(ref CellRef) {
	if !ref.Valid() {
		return
	}
	m.cells = nil
	m.anchor, m.focus = ref, ref
	m.rangeActive = true
}

// ExtendFocus moves the focus end of the range to ref. Without an anchor ref
// becomes the anchor as well.
func (m *Model) ExtendFocus(ref CellRef) {
	if !ref.Valid() {
		return
	}
	if !m.anchor.Valid() {
		m.anchor = ref
	}
	m.cells = nil
	m.focus = ref
	m.rangeActive = true
}

// Anchor returns the range anchor, or the zero CellRef.
func (m *Model) Anchor() CellRef { return m.anchor }

// Focus returns the range focus, or the zero CellRef.
func (m *Model) Focus() CellRef { return m.focus }

// IsCellSelected reports whether ref is selected under the current order.
func (m *Model) IsCellSelected(ref CellRef, rows, cols []string) bool {
	if _, ok := m.cells[ref]; ok {
		return true
	}
	if !m.rangeActive {
		return false
	}
	r0, r1, c0, c1, ok := bounds(m.anchor, m.focus, rows, cols)
	if !ok {
		return false
	}
	ri := slices.Index(rows, ref.RowID)
	ci := slices.Index(cols, ref.ColumnKey)
	return ri >= r0 && ri <= r1 && ci >= c0 && ci <= c1
}

// SelectedCells returns every selected cell present in the current order,
// row-major, without duplicates.
func (m *Model) SelectedCells(rows, cols []string) []CellRef {
	var inRange map[CellRef]struct{}
	var out []CellRef
	if m.rangeActive {
		out = Range(m.anchor, m.focus, rows, cols)
		inRange = make(map[CellRef]struct{}, len(out))
		for _, c := range out {
			inRange[c] = struct{}{}
		}
	}
	if len(m.cells) == 0 {
		return out
	}
	for _, r := range rows {
		for _, c := range cols {
			ref := CellRef{RowID: r, ColumnKey: c}
			if _, ok := m.cells[ref]; !ok {
				continue
			}
			if _, dup := inRange[ref]; dup {
				continue
			}
			out = append(out, ref)
		}
	}
	return out
}

// HasCells reports whether any cell is selected.
func (m *Model) HasCells() bool { return len(m.cells) > 0 || m.rangeActive }

// Clear empties both selections.
func (m *Model) Clear() {
	m.rows = nil
	m.rowAnchor = ""
	m.cells = nil
	m.anchor, m.focus = CellRef{}, CellRef{}
	m.rangeActive = false
}

// ClearCells empties the cell selection only.
func (m *Model) ClearCells() {
	m.cells = nil
	m.anchor, m.focus = CellRef{}, CellRef{}
	m.rangeActive = false
}

// Prune drops every reference to a row for which exists reports false. A
// range whose anchor or focus row is gone is dropped whole.
func (m *Model) Prune(exists func(id string) bool) {
	for id := range m.rows {
		if !exists(id) {
			delete(m.rows, id)
		}
	}
	if m.rowAnchor != "" && !exists(m.rowAnchor) {
		m.rowAnchor = ""
	}
	for c := range m.cells {
		if !exists(c.RowID) {
			delete(m.cells, c)
		}
	}
	if (m.anchor.Valid() && !exists(m.anchor.RowID)) || (m.focus.Valid() && !exists(m.focus.RowID)) {
		m.anchor, m.focus = CellRef{}, CellRef{}
		m.rangeActive = false
	}
}

// Range enumerates the rectangle spanned by anchor and focus over the given
// order, row-major. It is empty when either reference is invalid or absent
// from the order. Range(a, f) == Range(f, a).
func Range(anchor, focus CellRef, rows, cols []string) []CellRef {
	r0, r1, c0, c1, ok := bounds(anchor, focus, rows, cols)
	if !ok {
		return nil
	}
	out := make([]CellRef, 0, (r1-r0+1)*(c1-c0+1))
	for _, r := range rows[r0 : r1+1] {
		for _, c := range cols[c0 : c1+1] {
			out = append(out, CellRef{RowID: r, ColumnKey: c})
		}
	}
	return out
}

func bounds(anchor, focus CellRef, rows, cols []string) (r0, r1, c0, c1 int, ok bool) {
	if !anchor.Valid() || !focus.Valid() {
		return 0, 0, 0, 0, false
	}
	ar, fr := slices.Index(rows, anchor.RowID), slices.Index(rows, focus.RowID)
	ac, fc := slices.Index(cols, anchor.ColumnKey), slices.Index(cols, focus.ColumnKey)
	if ar < 0 || fr < 0 || ac < 0 || fc < 0 {
		return 0, 0, 0, 0, false
	}
	return min(ar, fr), max(ar, fr), min(ac, fc), max(ac, fc), true
}
