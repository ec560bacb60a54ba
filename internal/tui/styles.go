package tui

import (
	"github.com/alexanderramin/plansheet/internal/cli/formatter"
	"github.com/charmbracelet/lipgloss"
)

var (
	styleTitle     = lipgloss.NewStyle().Foreground(formatter.ColorPurple).Bold(true)
	styleColumn    = formatter.StyleHeader
	styleGroup     = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	styleLeaf      = formatter.StyleDim
	styleTimeline  = formatter.StyleDim
	styleMarker    = lipgloss.NewStyle().Foreground(formatter.ColorYellow).Bold(true)
	styleSelected  = lipgloss.NewStyle().Background(lipgloss.Color("#3c3836"))
	styleFocused   = lipgloss.NewStyle().Reverse(true)
	styleEditing   = lipgloss.NewStyle().Foreground(formatter.ColorYellow).Underline(true)
	styleDragged   = formatter.StyleDim.Italic(true)
	stylePlacehold = formatter.StyleBlue
	styleInvalid   = formatter.StyleRed
	styleError     = formatter.StyleRed
	styleInfo      = formatter.StyleDim
)
