package tui

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/plansheet/internal/cli/formatter"
	"github.com/alexanderramin/plansheet/internal/domain"
	"github.com/alexanderramin/plansheet/internal/filter"
	"github.com/alexanderramin/plansheet/internal/selection"
	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	lines := make([]string, 0, m.bodyHeight()+bodyTop+chromeBelow)
	lines = append(lines, m.titleLine(), m.headerLine())

	ids := m.windowIDs()
	for _, id := range ids {
		r, ok := m.ctrl.Row(id)
		if !ok {
			continue
		}
		lines = append(lines, m.rowLine(r))
	}
	for range m.bodyHeight() - len(ids) {
		lines = append(lines, "")
	}

	lines = append(lines, m.totalsLine(), m.statusLine(), m.footerLine())

	if m.width > 0 {
		clip := lipgloss.NewStyle().MaxWidth(m.width)
		for i, l := range lines {
			lines[i] = clip.Render(l)
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) titleLine() string {
	var parts []string
	parts = append(parts, styleTitle.Render("plansheet"))
	if m.opts.Title != "" {
		parts = append(parts, formatter.Dim(m.opts.Title))
	}
	if f := criteriaSummary(m.ctrl.Criteria()); f != "" {
		parts = append(parts, formatter.StyleYellow.Render("filter: "+f))
	}
	parts = append(parts, formatter.Dim(fmt.Sprintf("undo %d · redo %d", m.ctrl.UndoDepth(), m.ctrl.RedoDepth())))
	if s := m.saveState(); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, "  ")
}

func (m Model) saveState() string {
	if m.opts.Save == nil {
		return ""
	}
	switch {
	case m.opts.Save.Err() != nil:
		return styleError.Render("save failed")
	case m.opts.Save.Pending():
		return formatter.StyleYellow.Render("saving…")
	default:
		return formatter.StyleGreen.Render("saved")
	}
}

func (m Model) headerLine() string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", gutterWidth))
	labels := formatter.DayLabels(m.ctrl.Derived(), m.ctrl.TotalDays())
	for _, c := range m.layout.columns {
		title, ok := columnTitles[c.key]
		if !ok {
			if i, isDay := domain.DayIndex(c.key); isDay && i < len(labels) {
				title = labels[i]
			}
		}
		b.WriteString(styleColumn.Render(fit(title, c.width)))
		b.WriteString(strings.Repeat(" ", cellGap))
	}
	return b.String()
}

func (m Model) rowLine(r domain.Row) string {
	var b strings.Builder
	b.WriteString(m.gutter(r.ID))
	switch {
	case r.IsTaskLike():
		for _, c := range m.layout.columns {
			b.WriteString(m.taskCell(r, c))
			b.WriteString(strings.Repeat(" ", cellGap))
		}
	case r.Timeline != nil:
		b.WriteString(m.label(r, styleTimeline.Render(fit(r.Label, m.layout.labelWidth()))))
		b.WriteString(strings.Repeat(" ", cellGap))
		for _, c := range m.layout.columns {
			i, isDay := domain.DayIndex(c.key)
			if !isDay {
				continue
			}
			b.WriteString(m.styleCell(r.ID, c.key, styleTimeline).Render(fit(m.timelineCell(r, i), c.width)))
			b.WriteString(strings.Repeat(" ", cellGap))
		}
	default:
		text := strings.Repeat("  ", formatter.Indent(r))
		style := styleLeaf
		if r.Kind.IsGroupHeader() {
			chevron := "▾ "
			if m.ctrl.IsCollapsed(r.GroupID) {
				chevron = "▸ "
			}
			text += chevron
			style = styleGroup
		}
		b.WriteString(m.label(r, style.Render(fit(text+r.Label, m.layout.labelWidth()))))
	}
	line := b.String()
	if m.ctrl.IsRowDragged(r.ID) {
		return styleDragged.Render(line)
	}
	return line
}

// label marks a structural row's label when the row or any of its cells
// is focused or selected.
func (m Model) label(r domain.Row, text string) string {
	f := m.ctrl.Focus()
	switch {
	case f.RowID == r.ID:
		return styleFocused.Render(text)
	case m.ctrl.IsRowSelected(r.ID):
		return styleSelected.Render(text)
	}
	return text
}

func (m Model) timelineCell(r domain.Row, i int) string {
	if r.Timeline.Part == domain.TimelineFilter {
		if m.ctrl.Criteria().ActiveDays.Has(domain.DayColumnKey(i)) {
			return "●"
		}
		return "·"
	}
	if i < len(r.Timeline.Cells) {
		return r.Timeline.Cells[i]
	}
	return ""
}

func (m Model) gutter(id string) string {
	switch {
	case m.ctrl.IsDropTarget(id):
		return styleMarker.Render("→ ")
	case m.ctrl.IsRowDragged(id):
		return styleMarker.Render("┃ ")
	case m.ctrl.IsRowSelected(id):
		return styleMarker.Render("▌ ")
	}
	return strings.Repeat(" ", gutterWidth)
}

func (m Model) taskCell(r domain.Row, c column) string {
	ref := selection.CellRef{RowID: r.ID, ColumnKey: c.key}
	value, _ := r.CellValue(c.key)
	base := lipgloss.NewStyle()
	switch c.key {
	case domain.ColumnStatus:
		base = formatter.StatusStyle(r.Task.Status)
	case domain.ColumnRecurring:
		value = ""
		if r.Task.Recurring {
			value = "↻"
		}
	case domain.ColumnTimeValue:
		base = formatter.StyleDim
	default:
		if _, isDay := domain.DayIndex(c.key); isDay {
			switch {
			case strings.TrimSpace(value) == "":
			case strings.EqualFold(strings.TrimSpace(value), domain.PlaceholderToken):
				base = stylePlacehold
			case !domain.IsValidEntry(value):
				base = styleInvalid
			}
		}
	}
	if m.ctrl.IsCellEditing(ref) {
		return styleEditing.Render(fit(m.editor.Value(), c.width))
	}
	return m.styleCell(r.ID, c.key, base).Render(fit(value, c.width))
}

func (m Model) styleCell(id, col string, base lipgloss.Style) lipgloss.Style {
	ref := selection.CellRef{RowID: id, ColumnKey: col}
	switch {
	case m.ctrl.IsCellFocused(ref):
		return base.Inherit(styleFocused)
	case m.ctrl.IsCellSelected(ref), m.ctrl.IsRowSelected(id):
		return base.Inherit(styleSelected)
	}
	return base
}

// totalsLine shows scheduled time per day, flagged against the daily
// bounds. The gutter carries the drop marker when a drag would land after
// the last row.
func (m Model) totalsLine() string {
	var b strings.Builder
	if m.ctrl.DropAtEnd() {
		b.WriteString(styleMarker.Render("→ "))
	} else {
		b.WriteString(strings.Repeat(" ", gutterWidth))
	}
	b.WriteString(formatter.Bold(fit("Daily total", m.layout.labelWidth())))
	b.WriteString(strings.Repeat(" ", cellGap))

	totals := m.ctrl.DailyTotals()
	for _, c := range m.layout.columns {
		i, isDay := domain.DayIndex(c.key)
		if !isDay || i >= len(totals) {
			continue
		}
		style := formatter.BoundStyle(m.opts.Bounds.Classify(totals[i]))
		b.WriteString(style.Render(fit(domain.FormatHHMM(totals[i]), c.width)))
		b.WriteString(strings.Repeat(" ", cellGap))
	}
	return b.String()
}

func (m Model) statusLine() string {
	if ref, editing := m.ctrl.Editing(); editing {
		prefix := formatter.StyleYellow.Render(fmt.Sprintf("%s %s ❯ ", ref.RowID, columnName(ref.ColumnKey)))
		line := prefix + m.editor.View()
		if m.statusErr {
			line += "  " + styleError.Render(m.status)
		}
		return line
	}
	if m.status != "" {
		if m.statusErr {
			return styleError.Render(m.status)
		}
		return styleInfo.Render(m.status)
	}
	switch rows, cells := len(m.ctrl.SelectedRowIDs()), len(m.ctrl.SelectedCells()); {
	case rows > 0:
		return styleInfo.Render(fmt.Sprintf("%d rows selected", rows))
	case cells > 1:
		return styleInfo.Render(fmt.Sprintf("%d cells selected", cells))
	}
	return ""
}

func (m Model) footerLine() string {
	return m.help.ShortHelpView(append(m.ctrl.Keys().ShortHelp(), quitKey))
}

func columnName(key string) string {
	if t, ok := columnTitles[key]; ok {
		return t
	}
	if i, ok := domain.DayIndex(key); ok {
		return fmt.Sprintf("day %d", i+1)
	}
	return key
}

// criteriaSummary renders the active value filters, or "" when none are.
func criteriaSummary(c filter.Criteria) string {
	var parts []string
	add := func(name string, s filter.Set) {
		if len(s) > 0 {
			parts = append(parts, name+"="+strings.Join(s.Values(), ","))
		}
	}
	add("project", c.Projects)
	add("status", c.Statuses)
	add("recurring", c.Recurring)
	add("estimate", c.Estimates)
	if len(c.ActiveDays) > 0 {
		var days []string
		for _, k := range c.ActiveDays.Values() {
			days = append(days, columnName(k))
		}
		parts = append(parts, "active="+strings.Join(days, ","))
	}
	return strings.Join(parts, " ")
}
