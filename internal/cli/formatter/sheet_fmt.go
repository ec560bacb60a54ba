package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/plansheet/internal/domain"
	"github.com/alexanderramin/plansheet/internal/plan"
	"github.com/alexanderramin/plansheet/internal/rowid"
)

// rowHeaders are the fixed columns of FormatRows, before the day columns.
var rowHeaders = []string{"ID", "PROJECT", "STATUS", "TASK", "REC", "ESTIMATE", "TIME"}

// Indent returns the nesting level a row is drawn at, read from the group
// it belongs to.
func Indent(r domain.Row) int {
	if r.Kind.IsSectionHeader() || r.Kind == domain.KindTimeline {
		return 0
	}
	g, ok := rowid.ParseGroup(r.ParentGroupID)
	if !ok {
		return 0
	}
	switch g.Kind {
	case rowid.GroupProject, rowid.GroupArchiveWeek:
		return 1
	case rowid.GroupSubproject, rowid.GroupArchivedProject:
		return 2
	default:
		return 0
	}
}

// DayLabels returns one header per day column, built from the day and
// weekday timeline rows when rows carry them.
func DayLabels(rows []domain.Row, totalDays int) []string {
	var day, weekday []string
	for _, r := range rows {
		if r.Timeline == nil {
			continue
		}
		switch r.Timeline.Part {
		case domain.TimelineDay:
			day = r.Timeline.Cells
		case domain.TimelineDayOfWeek:
			weekday = r.Timeline.Cells
		}
	}
	out := make([]string, totalDays)
	for i := range out {
		switch {
		case i < len(day) && i < len(weekday):
			out[i] = weekday[i] + " " + day[i]
		case i < len(day):
			out[i] = day[i]
		default:
			out[i] = fmt.Sprintf("D%d", i+1)
		}
	}
	return out
}

// FormatRows renders derived rows as a sheet table. Timeline rows only
// contribute the day headers.
func FormatRows(rows []domain.Row, totalDays int) string {
	headers := append(append([]string(nil), rowHeaders...), DayLabels(rows, totalDays)...)

	var body [][]string
	for _, r := range rows {
		if r.Kind == domain.KindTimeline {
			continue
		}
		body = append(body, rowCells(r, totalDays))
	}
	if len(body) == 0 {
		return Dim("No rows match.") + "\n"
	}
	return RenderTable(headers, body, RightAlignFrom(len(rowHeaders)))
}

func rowCells(r domain.Row, totalDays int) []string {
	indent := strings.Repeat("  ", Indent(r))
	cells := make([]string, len(rowHeaders)+totalDays)
	cells[0] = Dim(r.ID)
	if !r.IsTaskLike() {
		label := indent + r.Label
		if r.Kind.IsGroupHeader() {
			cells[3] = Bold(label)
		} else {
			cells[3] = Dim(label)
		}
		return cells
	}

	t := r.Task
	cells[1] = t.ProjectKey
	if t.SubprojectKey != "" {
		cells[1] += "/" + t.SubprojectKey
	}
	cells[2] = StatusStyle(t.Status).Render(string(t.Status))
	cells[3] = indent + t.TaskName
	if t.Recurring {
		cells[4] = "yes"
	}
	cells[5] = string(t.Estimate)
	cells[6] = t.TimeValue
	for i := 0; i < totalDays && i < len(t.DayEntries); i++ {
		cells[len(rowHeaders)+i] = t.DayEntries[i]
	}
	return cells
}

// FormatTotals renders the scheduled minutes per day with a load bar and a
// flag for days outside bounds.
func FormatTotals(totals []int, labels []string, b plan.Bounds) string {
	headers := []string{"DAY", "TOTAL", "LOAD", "FLAG"}
	rows := make([][]string, 0, len(totals))
	sum := 0
	for i, m := range totals {
		sum += m
		label := fmt.Sprintf("D%d", i+1)
		if i < len(labels) {
			label = labels[i]
		}
		state := b.Classify(m)
		rows = append(rows, []string{
			label,
			BoundStyle(state).Render(domain.FormatHHMM(m)),
			RenderLoad(m, b, 20),
			boundFlag(state),
		})
	}

	var out strings.Builder
	out.WriteString(RenderTable(headers, rows))
	fmt.Fprintf(&out, "\n%s %s\n", Bold("Total:"), domain.FormatHHMM(sum))
	if b.Min > 0 || b.Max > 0 {
		fmt.Fprintf(&out, "%s\n", Dim(fmt.Sprintf("Daily bounds: %s to %s", boundText(b.Min), boundText(b.Max))))
	}
	return out.String()
}

func boundFlag(s plan.BoundState) string {
	switch s {
	case plan.Under:
		return StyleYellow.Render("under")
	case plan.Over:
		return StyleRed.Render("over")
	default:
		return ""
	}
}

func boundText(minutes int) string {
	if minutes <= 0 {
		return "-"
	}
	return domain.FormatHHMM(minutes)
}
