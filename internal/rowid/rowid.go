// Package rowid builds and parses the stable row ids of a sheet.
//
//	p:<project>                     project header (and its group)
//	p:<project>/s:<sub>             subproject header
//	<group>:general                 general row of a group
//	<group>:unscheduled             unscheduled row of a group
//	<group>#<n>                     task slot n of a group
//	inbox#<n>                       inbox slot
//	a:<week>                        archive week header
//	a:<week>:p:<project>            archived project header
//	t:<part>                        timeline decoration row
//
// Slots created at runtime use a random suffix instead of <n>, so an id is
// never handed out twice even after the row it named was deleted.
package rowid

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// InboxGroup is the pseudo group holding inbox slots.
const InboxGroup = "inbox"

const (
	projectPrefix = "p:"
	subSep        = "/s:"
	archivePrefix = "a:"
	archiveSep    = ":p:"
	slotSep       = "#"
)

// Project returns the group id of a project.
func Project(project string) string { return projectPrefix + project }

// Subproject returns the group id of a subproject.
func Subproject(project, sub string) string { return Project(project) + subSep + sub }

// ArchiveWeek returns the group id of an archive week.
func ArchiveWeek(week string) string { return archivePrefix + week }

// ArchivedProject returns the group id of a project inside an archive week.
func ArchivedProject(week, project string) string {
	return ArchiveWeek(week) + archiveSep + project
}

// General returns the id of a group's general row.
func General(group string) string { return group + ":general" }

// Unscheduled returns the id of a group's unscheduled row.
func Unscheduled(group string) string { return group + ":unscheduled" }

// Timeline returns the id of a timeline decoration row.
func Timeline(part string) string { return "t:" + part }

// Slot returns the id of the n-th planned slot of a group.
func Slot(group string, n int) string { return group + slotSep + strconv.Itoa(n) }

// NewSlot returns a fresh slot id in group for which taken reports false.
func NewSlot(group string, taken func(string) bool) string {
	for {
		id := group + slotSep + uuid.NewString()[:8]
		if taken == nil || !taken(id) {
			return id
		}
	}
}

// SlotGroup returns the group part of a slot id.
func SlotGroup(id string) (string, bool) {
	i := strings.LastIndex(id, slotSep)
	if i <= 0 || i == len(id)-1 {
		return "", false
	}
	return id[:i], true
}

// GroupKind classifies a group id.
type GroupKind int

const (
	GroupUnknown GroupKind = iota
	GroupProject
	GroupSubproject
	GroupInbox
	GroupArchiveWeek
	GroupArchivedProject
)

// Group is a parsed group id.
type Group struct {
	Kind       GroupKind
	Project    string
	Subproject string
	Week       string
}

// ParseGroup parses a group id produced by this package.
func ParseGroup(group string) (Group, bool) {
	switch {
	case group == InboxGroup:
		return Group{Kind: GroupInbox}, true
	case strings.HasPrefix(group, archivePrefix):
		rest := strings.TrimPrefix(group, archivePrefix)
		week, project, ok := strings.Cut(rest, archiveSep)
		if !ok {
			if rest == "" || strings.Contains(rest, ":") {
				return Group{}, false
			}
			return Group{Kind: GroupArchiveWeek, Week: rest}, true
		}
		if week == "" || project == "" {
			return Group{}, false
		}
		return Group{Kind: GroupArchivedProject, Week: week, Project: project}, true
	case strings.HasPrefix(group, projectPrefix):
		rest := strings.TrimPrefix(group, projectPrefix)
		project, sub, ok := strings.Cut(rest, subSep)
		if project == "" {
			return Group{}, false
		}
		if !ok {
			return Group{Kind: GroupProject, Project: project}, true
		}
		if sub == "" {
			return Group{}, false
		}
		return Group{Kind: GroupSubproject, Project: project, Subproject: sub}, true
	}
	return Group{}, false
}

// ValidKey reports whether s can be used as a project or subproject
// key without breaking id parsing.
func ValidKey(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	return !strings.ContainsAny(s, ":/#")
}
