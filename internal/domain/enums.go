package domain

import "strings"

// RowKind tags the variant of a Row. The set is closed: every switch over
// RowKind in this module lists all kinds, so adding one is caught by the
// kind table in row_test.go.
type RowKind string

const (
	KindProjectHeader              RowKind = "project_header"
	KindProjectGeneral             RowKind = "project_general"
	KindProjectUnscheduled         RowKind = "project_unscheduled"
	KindSubprojectHeader           RowKind = "subproject_header"
	KindSubprojectGeneral          RowKind = "subproject_general"
	KindSubprojectUnscheduled      RowKind = "subproject_unscheduled"
	KindTask                       RowKind = "task"
	KindInboxItem                  RowKind = "inbox_item"
	KindArchiveWeek                RowKind = "archive_week"
	KindArchivedProjectHeader      RowKind = "archived_project_header"
	KindArchivedProjectGeneral     RowKind = "archived_project_general"
	KindArchivedProjectUnscheduled RowKind = "archived_project_unscheduled"
	KindTimeline                   RowKind = "timeline"
)

// AllRowKinds lists every RowKind in canonical order.
var AllRowKinds = []RowKind{
	KindProjectHeader,
	KindProjectGeneral,
	KindProjectUnscheduled,
	KindSubprojectHeader,
	KindSubprojectGeneral,
	KindSubprojectUnscheduled,
	KindTask,
	KindInboxItem,
	KindArchiveWeek,
	KindArchivedProjectHeader,
	KindArchivedProjectGeneral,
	KindArchivedProjectUnscheduled,
	KindTimeline,
}

// TimelinePart identifies which decoration a KindTimeline row draws.
type TimelinePart string

const (
	TimelineMonth     TimelinePart = "month"
	TimelineWeek      TimelinePart = "week"
	TimelineDay       TimelinePart = "day"
	TimelineDayOfWeek TimelinePart = "day_of_week"
	TimelineDailyMin  TimelinePart = "daily_min"
	TimelineDailyMax  TimelinePart = "daily_max"
	TimelineFilter    TimelinePart = "filter"
)

// Nesting depths used by collapse flattening. A collapsed header hides every
// following row until a header at the same or a shallower depth appears.
const (
	DepthBoundary   = 0
	DepthProject    = 1
	DepthSubproject = 2
	DepthLeaf       = 3
)

// IsTaskLike reports whether rows of this kind carry TaskFields.
func (k RowKind) IsTaskLike() bool {
	switch k {
	case KindTask, KindInboxItem:
		return true
	case KindProjectHeader, KindProjectGeneral, KindProjectUnscheduled,
		KindSubprojectHeader, KindSubprojectGeneral, KindSubprojectUnscheduled,
		KindArchiveWeek, KindArchivedProjectHeader, KindArchivedProjectGeneral,
		KindArchivedProjectUnscheduled, KindTimeline:
		return false
	}
	return false
}

// IsGroupHeader reports whether rows of this kind head a collapsible group.
func (k RowKind) IsGroupHeader() bool {
	switch k {
	case KindProjectHeader, KindSubprojectHeader, KindArchiveWeek, KindArchivedProjectHeader:
		return true
	case KindProjectGeneral, KindProjectUnscheduled, KindSubprojectGeneral,
		KindSubprojectUnscheduled, KindTask, KindInboxItem, KindArchivedProjectGeneral,
		KindArchivedProjectUnscheduled, KindTimeline:
		return false
	}
	return false
}

// IsSectionHeader reports whether the row opens a top-level project section.
// Section headers never inherit a parent group during derivation.
func (k RowKind) IsSectionHeader() bool {
	switch k {
	case KindProjectHeader, KindArchiveWeek:
		return true
	case KindProjectGeneral, KindProjectUnscheduled, KindSubprojectHeader,
		KindSubprojectGeneral, KindSubprojectUnscheduled, KindTask, KindInboxItem,
		KindArchivedProjectHeader, KindArchivedProjectGeneral,
		KindArchivedProjectUnscheduled, KindTimeline:
		return false
	}
	return false
}

// Depth returns the nesting depth of the kind.
func (k RowKind) Depth() int {
	switch k {
	case KindTimeline, KindInboxItem, KindArchiveWeek:
		return DepthBoundary
	case KindProjectHeader, KindArchivedProjectHeader:
		return DepthProject
	case KindSubprojectHeader:
		return DepthSubproject
	case KindProjectGeneral, KindProjectUnscheduled, KindSubprojectGeneral,
		KindSubprojectUnscheduled, KindTask, KindArchivedProjectGeneral,
		KindArchivedProjectUnscheduled:
		return DepthLeaf
	}
	return DepthLeaf
}

// Valid reports whether k is one of the declared kinds.
func (k RowKind) Valid() bool {
	for _, known := range AllRowKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Status is the scheduling state of a task-like row.
type Status string

const (
	StatusNone         Status = "-"
	StatusNotScheduled Status = "Not Scheduled"
	StatusScheduled    Status = "Scheduled"
	StatusDone         Status = "Done"
	StatusAbandoned    Status = "Abandoned"
	StatusBlocked      Status = "Blocked"
	StatusOnHold       Status = "On Hold"
	StatusSpecial      Status = "Special"
)

// AllStatuses lists the statuses offered for selection.
var AllStatuses = []Status{
	StatusNone, StatusNotScheduled, StatusScheduled, StatusDone,
	StatusAbandoned, StatusBlocked, StatusOnHold, StatusSpecial,
}

// IsProtected reports whether derivation must leave the status alone.
func (s Status) IsProtected() bool {
	switch s {
	case StatusDone, StatusAbandoned, StatusBlocked, StatusOnHold, StatusSpecial:
		return true
	}
	return false
}

// ParseStatus matches s case-insensitively against the known statuses.
func ParseStatus(s string) (Status, bool) {
	for _, st := range AllStatuses {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, true
		}
	}
	return "", false
}
