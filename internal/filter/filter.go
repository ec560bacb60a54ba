// Package filter flattens the derived row list into the visible sequence.
package filter

import (
	"slices"
	"strings"

	"github.com/alexanderramin/plansheet/internal/domain"
)

// Set is a set of filter values or group ids. A nil Set is empty.
type Set map[string]struct{}

// NewSet returns a set holding vals. Empty strings are kept: "" is a valid
// value for an unset project key.
func NewSet(vals ...string) Set {
	s := make(Set, len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

// Has reports whether v is in the set.
func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Toggle adds v when absent and removes it when present.
func (s Set) Toggle(v string) {
	if _, ok := s[v]; ok {
		delete(s, v)
		return
	}
	s[v] = struct{}{}
}

// Values returns the members in sorted order.
func (s Set) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// Criteria are the per-column value filters. An empty set does not filter
// its column.
type Criteria struct {
	Projects  Set
	Statuses  Set
	Recurring Set // "Yes" / "No"
	Estimates Set

	// ActiveDays holds day column keys. A task row must carry a valid
	// numeric entry in every one of them.
	ActiveDays Set
}

// IsZero reports whether no filter is active.
func (c Criteria) IsZero() bool {
	return len(c.Projects) == 0 && len(c.Statuses) == 0 && len(c.Recurring) == 0 &&
		len(c.Estimates) == 0 && len(c.ActiveDays) == 0
}

// Match reports whether r passes every value filter. Rows without task
// fields always match.
func (c Criteria) Match(r domain.Row) bool {
	if !r.IsTaskLike() {
		return true
	}
	t := r.Task
	if !matchOne(c.Projects, t.ProjectKey) ||
		!matchOne(c.Statuses, string(t.Status)) ||
		!matchOne(c.Recurring, domain.FormatRecurring(t.Recurring)) ||
		!matchOne(c.Estimates, string(t.Estimate)) {
		return false
	}
	for key := range c.ActiveDays {
		i, ok := domain.DayIndex(key)
		if !ok {
			continue
		}
		if i >= len(t.DayEntries) || !domain.IsValidEntry(t.DayEntries[i]) {
			return false
		}
	}
	return true
}

func matchOne(s Set, v string) bool {
	if len(s) == 0 {
		return true
	}
	if s.Has(v) {
		return true
	}
	// Values typed on a command line rarely match case exactly.
	for want := range s {
		if strings.EqualFold(want, v) {
			return true
		}
	}
	return false
}

// Visible returns the rows that survive collapse pruning and the value
// filters, in order.
//
// A collapsed header stays visible and hides every following row nested
// deeper than it, until a row at the same depth or shallower appears. Rows
// whose parent group is collapsed are hidden as well. Value filters only
// ever drop task-like rows.
func Visible(rows []domain.Row, c Criteria, collapsed Set) []domain.Row {
	visible := make([]domain.Row, 0, len(rows))
	collapsedDepth := -1
	for _, r := range rows {
		depth := r.Kind.Depth()
		if collapsedDepth >= 0 {
			if depth > collapsedDepth {
				continue
			}
			collapsedDepth = -1
		}
		if r.ParentGroupID != "" && r.ParentGroupID != r.GroupID && collapsed.Has(r.ParentGroupID) {
			continue
		}
		if r.Kind.IsGroupHeader() && r.GroupID != "" && collapsed.Has(r.GroupID) {
			collapsedDepth = depth
		}
		if !c.Match(r) {
			continue
		}
		visible = append(visible, r)
	}
	return visible
}

// IDs returns the ids of rows in order.
func IDs(rows []domain.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}
