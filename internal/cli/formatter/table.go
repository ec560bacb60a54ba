package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// colGap is the padding between table columns.
const colGap = 2

// TableOption adjusts RenderTable.
type TableOption func(*tableConfig)

type tableConfig struct {
	rightFrom int
}

// RightAlignFrom right-aligns column i and every column after it. Day
// columns hold numbers and read better that way.
func RightAlignFrom(i int) TableOption {
	return func(c *tableConfig) { c.rightFrom = i }
}

// RenderTable renders an aligned table with a header separator line.
// Headers are rendered with the Header style. Widths are measured on the
// visible text, so cells may carry ANSI styling. Trailing padding is not
// written.
func RenderTable(headers []string, rows [][]string, opts ...TableOption) string {
	if len(headers) == 0 {
		return ""
	}
	cfg := tableConfig{rightFrom: -1}
	for _, opt := range opts {
		opt(&cfg)
	}

	cols := len(headers)
	widths := make([]int, cols)
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < cols && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	var b strings.Builder
	writeLine := func(cells []string, style func(...string) string) {
		var line strings.Builder
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := strings.Repeat(" ", max(widths[i]-lipgloss.Width(cell), 0))
			if style != nil {
				cell = style(cell)
			}
			if i > 0 {
				line.WriteString(strings.Repeat(" ", colGap))
			}
			if cfg.rightFrom >= 0 && i >= cfg.rightFrom {
				line.WriteString(pad + cell)
			} else {
				line.WriteString(cell + pad)
			}
		}
		b.WriteString(strings.TrimRight(line.String(), " "))
		b.WriteString("\n")
	}

	writeLine(headers, StyleHeader.Render)
	seps := make([]string, cols)
	for i, w := range widths {
		seps[i] = strings.Repeat("─", w)
	}
	writeLine(seps, StyleDim.Render)
	for _, row := range rows {
		writeLine(row, nil)
	}
	return b.String()
}
