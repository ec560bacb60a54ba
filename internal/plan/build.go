package plan

import (
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/plansheet/internal/domain"
	"github.com/alexanderramin/plansheet/internal/rowid"
)

// TimelineParts lists the decoration rows in the order they head the sheet.
var TimelineParts = []domain.TimelinePart{
	domain.TimelineMonth,
	domain.TimelineWeek,
	domain.TimelineDay,
	domain.TimelineDayOfWeek,
	domain.TimelineDailyMin,
	domain.TimelineDailyMax,
	domain.TimelineFilter,
}

// Build returns the fresh rows for p: timeline rows, project sections,
// inbox items, then one archive week per week found in saved.
//
// saved holds the ids of a persisted snapshot in saved order. Slot ids in
// saved that belong to a planned group extend that group, which is how rows
// inserted in an earlier session come back. Slot ids of groups the plan no
// longer has are dropped.
func Build(p *Plan, saved []string) []domain.Row {
	extra := groupSaved(saved)
	var rows []domain.Row
	rows = append(rows, timelineRows(p)...)

	for _, pr := range p.Projects {
		group := rowid.Project(pr.Key)
		rows = append(rows, domain.Row{ID: group, Kind: domain.KindProjectHeader, GroupID: group, Label: labelOr(pr.Name, pr.Key)})
		rows = append(rows, domain.Row{ID: rowid.General(group), Kind: domain.KindProjectGeneral, Label: "General"})
		for _, id := range slotIDs(group, pr.Slots, extra[group]) {
			rows = append(rows, domain.NewTaskRow(id, domain.KindTask, pr.Key, "", p.Days))
		}
		rows = append(rows, domain.Row{ID: rowid.Unscheduled(group), Kind: domain.KindProjectUnscheduled, Label: "Unscheduled"})

		for _, s := range pr.Subprojects {
			sub := rowid.Subproject(pr.Key, s.Key)
			rows = append(rows, domain.Row{ID: sub, Kind: domain.KindSubprojectHeader, GroupID: sub, Label: labelOr(s.Name, s.Key)})
			rows = append(rows, domain.Row{ID: rowid.General(sub), Kind: domain.KindSubprojectGeneral, Label: "General"})
			for _, id := range slotIDs(sub, s.Slots, extra[sub]) {
				rows = append(rows, domain.NewTaskRow(id, domain.KindTask, pr.Key, s.Key, p.Days))
			}
			rows = append(rows, domain.Row{ID: rowid.Unscheduled(sub), Kind: domain.KindSubprojectUnscheduled, Label: "Unscheduled"})
		}
	}

	for _, id := range slotIDs(rowid.InboxGroup, p.Inbox, extra[rowid.InboxGroup]) {
		rows = append(rows, domain.NewTaskRow(id, domain.KindInboxItem, "", "", p.Days))
	}

	return append(rows, archiveRows(saved, extra, p.Days)...)
}

// WeekHeader returns the row that opens the archive section of week.
func WeekHeader(week string) domain.Row {
	id := rowid.ArchiveWeek(week)
	return domain.Row{ID: id, Kind: domain.KindArchiveWeek, GroupID: id, Label: "Week " + week}
}

// ArchivedBlock returns the header, general and unscheduled rows of a
// project inside an archive week. Archived tasks go between general and
// unscheduled.
func ArchivedBlock(week, project string) []domain.Row {
	group := rowid.ArchivedProject(week, project)
	return []domain.Row{
		{ID: group, Kind: domain.KindArchivedProjectHeader, GroupID: group, Label: project},
		{ID: rowid.General(group), Kind: domain.KindArchivedProjectGeneral, Label: "General"},
		{ID: rowid.Unscheduled(group), Kind: domain.KindArchivedProjectUnscheduled, Label: "Unscheduled"},
	}
}

func labelOr(name, key string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	return key
}

// groupSaved buckets saved slot ids by group, keeping saved order.
func groupSaved(saved []string) map[string][]string {
	out := make(map[string][]string)
	for _, id := range saved {
		if g, ok := rowid.SlotGroup(id); ok {
			out[g] = append(out[g], id)
		}
	}
	return out
}

// slotIDs returns the planned slots of group followed by every extra saved
// slot the plan does not already produce.
func slotIDs(group string, n int, extra []string) []string {
	out := make([]string, 0, n+len(extra))
	planned := make(map[string]bool, n)
	for i := 1; i <= n; i++ {
		id := rowid.Slot(group, i)
		planned[id] = true
		out = append(out, id)
	}
	for _, id := range extra {
		if !planned[id] {
			planned[id] = true
			out = append(out, id)
		}
	}
	return out
}

// archiveRows rebuilds the archive sections found in saved. Weeks and the
// projects inside them keep the order of their first saved slot.
func archiveRows(saved []string, extra map[string][]string, days int) []domain.Row {
	var weeks []string
	projects := make(map[string][]string)
	seen := make(map[string]bool)
	for _, id := range saved {
		group, ok := rowid.SlotGroup(id)
		if !ok || seen[group] {
			continue
		}
		g, ok := rowid.ParseGroup(group)
		if !ok || g.Kind != rowid.GroupArchivedProject {
			continue
		}
		seen[group] = true
		if _, known := projects[g.Week]; !known {
			weeks = append(weeks, g.Week)
		}
		projects[g.Week] = append(projects[g.Week], g.Project)
	}

	var rows []domain.Row
	for _, week := range weeks {
		rows = append(rows, WeekHeader(week))
		for _, project := range projects[week] {
			block := ArchivedBlock(week, project)
			group := block[0].GroupID
			rows = append(rows, block[:2]...)
			for _, id := range extra[group] {
				rows = append(rows, domain.NewTaskRow(id, domain.KindTask, project, "", days))
			}
			rows = append(rows, block[2])
		}
	}
	return rows
}

// timelineRows builds one decoration row per TimelineParts entry.
func timelineRows(p *Plan) []domain.Row {
	start := p.StartDate()
	rows := make([]domain.Row, 0, len(TimelineParts))
	for _, part := range TimelineParts {
		cells := make([]string, p.Days)
		for i := range cells {
			cells[i] = timelineCell(part, start, i, p.Daily)
		}
		rows = append(rows, domain.Row{
			ID:       rowid.Timeline(string(part)),
			Kind:     domain.KindTimeline,
			Label:    timelineLabel(part),
			Timeline: &domain.TimelineFields{Part: part, Cells: cells},
		})
	}
	return rows
}

func timelineCell(part domain.TimelinePart, start time.Time, i int, b Bounds) string {
	day := start.AddDate(0, 0, i)
	switch part {
	case domain.TimelineMonth:
		if i == 0 || day.Day() == 1 {
			return day.Format("Jan")
		}
	case domain.TimelineWeek:
		if i == 0 || day.Weekday() == time.Monday {
			_, w := day.ISOWeek()
			return "W" + strconv.Itoa(w)
		}
	case domain.TimelineDay:
		return strconv.Itoa(day.Day())
	case domain.TimelineDayOfWeek:
		return day.Format("Mon")
	case domain.TimelineDailyMin:
		if b.Min > 0 {
			return domain.FormatHHMM(b.Min)
		}
	case domain.TimelineDailyMax:
		if b.Max > 0 {
			return domain.FormatHHMM(b.Max)
		}
	case domain.TimelineFilter:
	}
	return ""
}

func timelineLabel(part domain.TimelinePart) string {
	switch part {
	case domain.TimelineMonth:
		return "Month"
	case domain.TimelineWeek:
		return "Week"
	case domain.TimelineDay:
		return "Day"
	case domain.TimelineDayOfWeek:
		return "Weekday"
	case domain.TimelineDailyMin:
		return "Daily min"
	case domain.TimelineDailyMax:
		return "Daily max"
	case domain.TimelineFilter:
		return "Filter"
	}
	return string(part)
}
