package derive

import (
	"slices"
	"strings"

	"github.com/alexanderramin/plansheet/internal/domain"
	"github.com/alexanderramin/plansheet/internal/rowstore"
)

// Reconcile copies the tracked derived fields (status, estimate, time value,
// original estimate, and day entries that held the placeholder token) from
// derived onto stored. Rows are matched by id. When nothing differs the
// stored slice itself is returned with no changed ids; otherwise a new slice
// is returned together with the ids that changed. Non-task rows pass through.
func Reconcile(stored, derived []domain.Row) ([]domain.Row, []string) {
	byID := make(map[string]domain.Row, len(derived))
	for _, d := range derived {
		byID[d.ID] = d
	}

	var next []domain.Row
	var changed []string
	for i, s := range stored {
		if !s.IsTaskLike() {
			continue
		}
		d, ok := byID[s.ID]
		if !ok || !d.IsTaskLike() {
			continue
		}
		merged, diff := mergeTracked(s, d)
		if !diff {
			continue
		}
		if next == nil {
			next = slices.Clone(stored)
		}
		next[i] = merged
		changed = append(changed, s.ID)
	}
	if next == nil {
		return stored, nil
	}
	return next, changed
}

func mergeTracked(stored, derived domain.Row) (domain.Row, bool) {
	st, dt := stored.Task, derived.Task
	diff := st.Status != dt.Status ||
		st.Estimate != dt.Estimate ||
		st.TimeValue != dt.TimeValue ||
		st.OriginalEstimate != dt.OriginalEstimate
	for i, e := range st.DayEntries {
		if strings.TrimSpace(e) == domain.PlaceholderToken && i < len(dt.DayEntries) && dt.DayEntries[i] != e {
			diff = true
			break
		}
	}
	if !diff {
		return stored, false
	}

	out := stored.Clone()
	t := out.Task
	t.Status = dt.Status
	t.Estimate = dt.Estimate
	t.TimeValue = dt.TimeValue
	t.OriginalEstimate = dt.OriginalEstimate
	for i, e := range t.DayEntries {
		if strings.TrimSpace(e) == domain.PlaceholderToken && i < len(dt.DayEntries) {
			t.DayEntries[i] = dt.DayEntries[i]
		}
	}
	return out, true
}

// Result describes one pipeline run.
type Result struct {
	Derived    []domain.Row
	Reconciled []string // ids written back to the store
	Passes     int      // 1, or 2 when a write-back happened
	Converged  bool     // false only if the second pass still found differences
}

// Pipeline runs the two-phase derivation against a row store: a pure derive,
// then a guarded diff-and-write, then exactly one re-derive when something
// was written.
type Pipeline struct {
	store *rowstore.Store
}

// NewPipeline binds a pipeline to the store it reconciles.
func NewPipeline(store *rowstore.Store) *Pipeline {
	return &Pipeline{store: store}
}

// Run derives from the latest store snapshot and reconciles synchronously.
func (p *Pipeline) Run() Result {
	days := p.store.TotalDays()
	rows := p.store.Rows()
	derived := Derive(rows, days)
	next, changed := Reconcile(rows, derived)
	if len(changed) == 0 {
		return Result{Derived: derived, Passes: 1, Converged: true}
	}

	p.store.SetRows(next)
	rows = p.store.Rows()
	derived = Derive(rows, days)
	_, again := Reconcile(rows, derived)
	return Result{
		Derived:    derived,
		Reconciled: changed,
		Passes:     2,
		Converged:  len(again) == 0,
	}
}
