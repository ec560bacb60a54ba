package formatter

import (
	"strings"

	"github.com/alexanderramin/plansheet/internal/plan"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderLoad renders a bar of minutes against the daily maximum, colored by
// where the total sits in bounds. Without a maximum the bar scales to the
// minimum, and without either it is empty.
func RenderLoad(minutes int, b plan.Bounds, width int) string {
	width = max(width, 2)
	scale := b.Max
	if scale <= 0 {
		scale = b.Min
	}

	filled := 0
	if scale > 0 {
		filled = min(minutes*width/scale, width)
	}
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)
	return "[" + BoundStyle(b.Classify(minutes)).Render(bar) + "]"
}
