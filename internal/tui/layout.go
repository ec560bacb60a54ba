package tui

import (
	"strings"

	"github.com/alexanderramin/plansheet/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const (
	gutterWidth = 2
	cellGap     = 1
	dayWidth    = 6

	// Terminal cells are reported to the reorder engine in pseudo pixels so
	// the drag threshold keeps its pixel meaning.
	cellPxWidth  = 8
	cellPxHeight = 16

	// Screen lines above the body: title and column headers.
	bodyTop = 2
	// Screen lines below the body: totals, status and help.
	chromeBelow = 3
)

var fixedWidths = map[string]int{
	domain.ColumnProject:   10,
	domain.ColumnStatus:    13,
	domain.ColumnTaskName:  28,
	domain.ColumnRecurring: 3,
	domain.ColumnEstimate:  10,
	domain.ColumnTimeValue: 5,
}

var columnTitles = map[string]string{
	domain.ColumnProject:   "Project",
	domain.ColumnStatus:    "Status",
	domain.ColumnTaskName:  "Task",
	domain.ColumnRecurring: "Rec",
	domain.ColumnEstimate:  "Estimate",
	domain.ColumnTimeValue: "Time",
}

type column struct {
	key   string
	x     int
	width int
}

// layout places the columns of a sheet on screen, left to right after the
// row gutter.
type layout struct {
	columns  []column
	daysFrom int // x of the first day column
	width    int
}

func newLayout(keys []string) layout {
	l := layout{columns: make([]column, len(keys))}
	x := gutterWidth
	l.daysFrom = -1
	for i, k := range keys {
		w, fixed := fixedWidths[k]
		if !fixed {
			w = dayWidth
			if l.daysFrom < 0 {
				l.daysFrom = x
			}
		}
		l.columns[i] = column{key: k, x: x, width: w}
		x += w + cellGap
	}
	if l.daysFrom < 0 {
		l.daysFrom = x
	}
	l.width = x
	return l
}

// columnAt returns the column key under x. The gutter is "" with ok true;
// ok is false right of the last column.
func (l layout) columnAt(x int) (string, bool) {
	if x < 0 || x >= l.width {
		return "", false
	}
	if x < gutterWidth {
		return "", true
	}
	for _, c := range l.columns {
		if x >= c.x && x < c.x+c.width+cellGap {
			return c.key, true
		}
	}
	return "", false
}

// labelWidth is the span structural rows draw their label in: every fixed
// column.
func (l layout) labelWidth() int {
	return max(l.daysFrom-gutterWidth-cellGap, 1)
}

// fit pads or cuts s to exactly w display cells.
func fit(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= w {
		return s + strings.Repeat(" ", w-lipgloss.Width(s))
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r)) > w-1 {
		r = r[:len(r)-1]
	}
	out := string(r) + "…"
	return out + strings.Repeat(" ", max(w-lipgloss.Width(out), 0))
}
