package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Row is one addressable record of the grid. Kind selects the variant:
// task-like kinds carry Task, KindTimeline carries Timeline, every other kind
// carries neither.
type Row struct {
	ID            string
	Kind          RowKind
	GroupID       string // group this row heads, if any
	ParentGroupID string // group this row belongs to, if any
	Label         string

	Task     *TaskFields
	Timeline *TimelineFields
}

// TaskFields holds the editable and derived fields of task-like rows.
type TaskFields struct {
	ProjectKey    string
	SubprojectKey string
	Status        Status
	TaskName      string
	Recurring     bool
	Estimate      EstimateLabel
	TimeValue     string

	// OriginalEstimate is set iff Estimate is Multi or Custom. It holds the
	// label the row had before it became aggregate.
	OriginalEstimate EstimateLabel

	DayEntries         []string
	HasUserInteraction bool
}

// TimelineFields holds one label per day column.
type TimelineFields struct {
	Part  TimelinePart
	Cells []string
}

// NewTaskRow returns a blank task-like row with totalDays empty day entries.
func NewTaskRow(id string, kind RowKind, projectKey, subprojectKey string, totalDays int) Row {
	return Row{
		ID:   id,
		Kind: kind,
		Task: &TaskFields{
			ProjectKey:    projectKey,
			SubprojectKey: subprojectKey,
			Status:        StatusNone,
			Estimate:      EstimateNone,
			TimeValue:     FormatHHMM(0),
			DayEntries:    make([]string, max(totalDays, 0)),
		},
	}
}

// IsTaskLike reports whether the row carries task fields.
func (r Row) IsTaskLike() bool {
	return r.Kind.IsTaskLike() && r.Task != nil
}

// Clone returns a deep copy of the row.
func (r Row) Clone() Row {
	out := r
	if r.Task != nil {
		t := *r.Task
		t.DayEntries = append([]string(nil), r.Task.DayEntries...)
		out.Task = &t
	}
	if r.Timeline != nil {
		tl := *r.Timeline
		tl.Cells = append([]string(nil), r.Timeline.Cells...)
		out.Timeline = &tl
	}
	return out
}

// HasDayEntries reports whether any day entry is non-empty.
func (t *TaskFields) HasDayEntries() bool {
	for _, e := range t.DayEntries {
		if strings.TrimSpace(e) != "" {
			return true
		}
	}
	return false
}

// NormalizeDayEntries returns entries padded with "" or truncated so that its
// length is exactly totalDays. The input slice is never modified.
func NormalizeDayEntries(entries []string, totalDays int) []string {
	if totalDays < 0 {
		totalDays = 0
	}
	out := make([]string, totalDays)
	copy(out, entries)
	return out
}

// Column keys for the fixed task columns. Day columns use DayColumnKey.
const (
	ColumnProject   = "project"
	ColumnStatus    = "status"
	ColumnTaskName  = "task"
	ColumnRecurring = "recurring"
	ColumnEstimate  = "estimate"
	ColumnTimeValue = "time"
)

const dayColumnPrefix = "day-"

// FixedColumns lists the non-day columns in display order.
var FixedColumns = []string{
	ColumnProject, ColumnStatus, ColumnTaskName, ColumnRecurring, ColumnEstimate, ColumnTimeValue,
}

// DayColumnKey returns the column key of the day at index i.
func DayColumnKey(i int) string {
	return dayColumnPrefix + strconv.Itoa(i)
}

// DayIndex parses a day column key. It reports false for fixed columns and
// malformed keys.
func DayIndex(key string) (int, bool) {
	rest, ok := strings.CutPrefix(key, dayColumnPrefix)
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(rest)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

// Columns returns every column key for a grid with totalDays day columns.
func Columns(totalDays int) []string {
	cols := make([]string, 0, len(FixedColumns)+totalDays)
	cols = append(cols, FixedColumns...)
	for i := 0; i < totalDays; i++ {
		cols = append(cols, DayColumnKey(i))
	}
	return cols
}

// CellValue returns the display value of the cell at column key. Rows without
// task fields only expose timeline cells.
func (r Row) CellValue(column string) (string, bool) {
	if i, ok := DayIndex(column); ok {
		switch {
		case r.Task != nil && i < len(r.Task.DayEntries):
			return r.Task.DayEntries[i], true
		case r.Timeline != nil && i < len(r.Timeline.Cells):
			return r.Timeline.Cells[i], true
		}
		return "", false
	}
	if r.Task == nil {
		return "", false
	}
	switch column {
	case ColumnProject:
		return r.Task.ProjectKey, true
	case ColumnStatus:
		return string(r.Task.Status), true
	case ColumnTaskName:
		return r.Task.TaskName, true
	case ColumnRecurring:
		return FormatRecurring(r.Task.Recurring), true
	case ColumnEstimate:
		return string(r.Task.Estimate), true
	case ColumnTimeValue:
		return r.Task.TimeValue, true
	}
	return "", false
}

// FormatRecurring renders the recurring flag the way filters match it.
func FormatRecurring(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// WithCell returns a copy of the row with the cell at column set to value.
// Time values are derived and cannot be set. Unknown columns, non-task rows
// and unparseable enum values return an error and the row unchanged.
func (r Row) WithCell(column, value string) (Row, error) {
	if r.Task == nil {
		return r, fmt.Errorf("row %s has no editable cells", r.ID)
	}
	out := r.Clone()
	t := out.Task
	if i, ok := DayIndex(column); ok {
		if i >= len(t.DayEntries) {
			return r, fmt.Errorf("day column %d out of range", i)
		}
		t.DayEntries[i] = strings.TrimSpace(value)
		t.HasUserInteraction = true
		return out, nil
	}
	switch column {
	case ColumnProject:
		t.ProjectKey = strings.TrimSpace(value)
	case ColumnStatus:
		st, ok := ParseStatus(value)
		if !ok {
			return r, fmt.Errorf("unknown status %q", value)
		}
		t.Status = st
	case ColumnTaskName:
		t.TaskName = value
	case ColumnRecurring:
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "yes", "true", "1", "y":
			t.Recurring = true
		case "no", "false", "0", "n", "":
			t.Recurring = false
		default:
			return r, fmt.Errorf("invalid recurring value %q", value)
		}
	case ColumnEstimate:
		e, ok := ParseEstimate(value)
		if !ok {
			return r, fmt.Errorf("unknown estimate %q", value)
		}
		t.SetEstimate(e)
	default:
		return r, fmt.Errorf("column %q is not editable", column)
	}
	t.HasUserInteraction = true
	return out, nil
}

// SetEstimate changes the estimate label and keeps OriginalEstimate
// consistent: entering Multi/Custom snapshots the prior label, leaving both
// clears the snapshot.
func (t *TaskFields) SetEstimate(e EstimateLabel) {
	switch {
	case e.IsAggregate() && !t.Estimate.IsAggregate():
		t.OriginalEstimate = t.Estimate
		if t.OriginalEstimate == "" {
			t.OriginalEstimate = EstimateNone
		}
	case !e.IsAggregate():
		t.OriginalEstimate = ""
	}
	t.Estimate = e
}
