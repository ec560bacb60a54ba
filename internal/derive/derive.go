// Package derive recomputes the derived fields of task-like rows (habit
// detection, original-estimate bookkeeping, time value, placeholder
// substitution, status inference, group inheritance) and reconciles the
// tracked subset back into the row store.
//
// Derive is pure and idempotent on the tracked fields:
//
//	Derive(Derive(rows)) == Derive(rows)
//
// which is what bounds the derive -> write-back -> derive cycle to a single
// extra pass.
package derive

import (
	"strings"

	"github.com/alexanderramin/plansheet/internal/domain"
)

// WeekLength is the size of the day-entry windows used for habit detection.
const WeekLength = 7

// habitThreshold: a week with more valid entries than this flips to Multi.
const habitThreshold = 1

// Derive returns derived copies of rows in the same order. The input slice
// and its rows are never modified; task-like rows in the result are fresh
// clones.
func Derive(rows []domain.Row, totalDays int) []domain.Row {
	out := make([]domain.Row, len(rows))
	var scope groupScope
	for i, r := range rows {
		d := r
		if r.IsTaskLike() {
			d = deriveTask(r, totalDays)
		}
		scope.apply(&d)
		out[i] = d
	}
	return out
}

func deriveTask(r domain.Row, totalDays int) domain.Row {
	d := r.Clone()
	t := d.Task
	t.DayEntries = domain.NormalizeDayEntries(t.DayEntries, totalDays)
	if t.Estimate == "" {
		t.Estimate = domain.EstimateNone
	}

	if !t.Estimate.IsAggregate() && hasHabitWeek(t.DayEntries) {
		t.OriginalEstimate = t.Estimate
		t.Estimate = domain.EstimateMulti
	}

	if t.Estimate.IsAggregate() {
		if t.OriginalEstimate == "" || t.OriginalEstimate.IsAggregate() {
			t.OriginalEstimate = domain.EstimateNone
		}
	} else {
		t.OriginalEstimate = ""
	}

	// The placeholder is rewritten to the value it contributed to the time
	// value, so a second pass sums the same minutes.
	var placeholder string
	if t.Estimate.IsAggregate() {
		perToken := t.OriginalEstimate.Minutes()
		total := 0
		for _, e := range t.DayEntries {
			if isPlaceholder(e) {
				total += perToken
				continue
			}
			if m, ok := domain.ParseEntryMinutes(e); ok {
				total += m
			}
		}
		t.TimeValue = domain.FormatHHMM(total)
		placeholder = domain.FormatHHMM(perToken)
	} else {
		t.TimeValue = domain.FormatHHMM(t.Estimate.Minutes())
		placeholder = t.TimeValue
	}
	for i, e := range t.DayEntries {
		if isPlaceholder(e) {
			t.DayEntries[i] = placeholder
		}
	}

	t.Status = inferStatus(t)
	return d
}

func isPlaceholder(e string) bool {
	return strings.TrimSpace(e) == domain.PlaceholderToken
}

// hasHabitWeek reports whether any 7-day window holds more than one valid
// entry.
func hasHabitWeek(entries []string) bool {
	for start := 0; start < len(entries); start += WeekLength {
		end := min(start+WeekLength, len(entries))
		valid := 0
		for _, e := range entries[start:end] {
			if domain.IsValidEntry(e) {
				valid++
			}
		}
		if valid > habitThreshold {
			return true
		}
	}
	return false
}

// inferStatus applies the scheduling state machine.
//
//	empty name                  -> "-"           (protected statuses kept)
//	name, some day entry        -> "Scheduled"   (from "-", Not Scheduled, Abandoned)
//	name, no day entries        -> "Not Scheduled" (protected statuses kept)
func inferStatus(t *domain.TaskFields) domain.Status {
	s := t.Status
	if s == "" {
		s = domain.StatusNone
	}
	switch {
	case strings.TrimSpace(t.TaskName) == "":
		if s.IsProtected() {
			return s
		}
		return domain.StatusNone
	case t.HasDayEntries():
		switch s {
		case domain.StatusNone, domain.StatusNotScheduled, domain.StatusAbandoned:
			return domain.StatusScheduled
		}
		return s
	default:
		if s.IsProtected() {
			return s
		}
		return domain.StatusNotScheduled
	}
}

// groupScope tracks the open section and subsection while scanning rows top
// to bottom.
type groupScope struct {
	section string
	sub     string
}

func (g *groupScope) apply(r *domain.Row) {
	switch r.Kind {
	case domain.KindProjectHeader, domain.KindArchiveWeek:
		g.section, g.sub = r.GroupID, ""
	case domain.KindSubprojectHeader, domain.KindArchivedProjectHeader:
		r.ParentGroupID = g.section
		g.sub = r.GroupID
	case domain.KindInboxItem:
		g.section, g.sub = "", ""
		r.ParentGroupID = ""
	case domain.KindTimeline:
	case domain.KindProjectGeneral, domain.KindProjectUnscheduled,
		domain.KindSubprojectGeneral, domain.KindSubprojectUnscheduled,
		domain.KindTask, domain.KindArchivedProjectGeneral,
		domain.KindArchivedProjectUnscheduled:
		r.ParentGroupID = g.innermost()
	}
}

func (g *groupScope) innermost() string {
	if g.sub != "" {
		return g.sub
	}
	return g.section
}

// DailyTotals sums the scheduled minutes of every task-like row per day
// column. Abandoned rows are excluded. Rows should be derived first so that
// placeholders are already resolved.
func DailyTotals(rows []domain.Row, totalDays int) []int {
	totals := make([]int, max(totalDays, 0))
	for _, r := range rows {
		if !r.IsTaskLike() || r.Task.Status == domain.StatusAbandoned {
			continue
		}
		for i, e := range r.Task.DayEntries {
			if i >= len(totals) {
				break
			}
			if m, ok := domain.ParseEntryMinutes(e); ok {
				totals[i] += m
			}
		}
	}
	return totals
}
