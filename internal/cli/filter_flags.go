package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/plansheet/internal/domain"
	"github.com/alexanderramin/plansheet/internal/filter"
	"github.com/alexanderramin/plansheet/internal/grid"
	"github.com/spf13/pflag"
)

// filterFlags are the row filters shared by "rows" and "open".
type filterFlags struct {
	projects  []string
	statuses  []string
	estimates []string
	recurring string
	days      []int
	collapse  []string
}

func (f *filterFlags) register(fs *pflag.FlagSet) {
	fs.StringSliceVar(&f.projects, "project", nil, "Only tasks of these project keys")
	fs.StringSliceVar(&f.statuses, "status", nil, "Only tasks with these statuses")
	fs.StringSliceVar(&f.estimates, "estimate", nil, "Only tasks with these estimate labels")
	fs.StringVar(&f.recurring, "recurring", "", "Only recurring (yes) or one-off (no) tasks")
	fs.IntSliceVar(&f.days, "day", nil, "Only tasks with time on every one of these days (1-based)")
	fs.StringSliceVar(&f.collapse, "collapse", nil, "Collapse these group ids, e.g. p:work")
}

// criteria validates the flags against a sheet of totalDays days.
func (f *filterFlags) criteria(totalDays int) (filter.Criteria, error) {
	var c filter.Criteria
	if len(f.projects) > 0 {
		c.Projects = filter.NewSet(f.projects...)
	}

	if len(f.statuses) > 0 {
		c.Statuses = filter.NewSet()
		for _, s := range f.statuses {
			st, ok := domain.ParseStatus(s)
			if !ok {
				return filter.Criteria{}, fmt.Errorf("unknown status %q", s)
			}
			c.Statuses[string(st)] = struct{}{}
		}
	}

	if len(f.estimates) > 0 {
		c.Estimates = filter.NewSet()
		for _, s := range f.estimates {
			e, ok := domain.ParseEstimate(s)
			if !ok {
				return filter.Criteria{}, fmt.Errorf("unknown estimate %q", s)
			}
			c.Estimates[string(e)] = struct{}{}
		}
	}

	if f.recurring != "" {
		b, err := parseYesNo(f.recurring)
		if err != nil {
			return filter.Criteria{}, err
		}
		c.Recurring = filter.NewSet(domain.FormatRecurring(b))
	}

	if len(f.days) > 0 {
		c.ActiveDays = filter.NewSet()
		for _, d := range f.days {
			if d < 1 || d > totalDays {
				return filter.Criteria{}, fmt.Errorf("day %d is outside 1..%d", d, totalDays)
			}
			c.ActiveDays[domain.DayColumnKey(d-1)] = struct{}{}
		}
	}
	return c, nil
}

// apply sets the filters on sheet and adds the collapsed groups to the ones
// it already has.
func (f *filterFlags) apply(sheet *grid.Controller) error {
	crit, err := f.criteria(sheet.TotalDays())
	if err != nil {
		return err
	}
	sheet.SetCriteria(crit)
	if len(f.collapse) > 0 {
		sheet.SetCollapsed(append(sheet.Collapsed(), f.collapse...)...)
	}
	return nil
}

func parseYesNo(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("expected yes or no, got %q", s)
	}
	return b, nil
}
