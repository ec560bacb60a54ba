package persist

import (
	"context"
	"fmt"
	"slices"

	"github.com/alexanderramin/plansheet/internal/db"
	"github.com/alexanderramin/plansheet/internal/domain"
	"github.com/alexanderramin/plansheet/internal/repository"
	"github.com/alexanderramin/plansheet/internal/rowid"
)

// Merge overlays the task fields of saved onto fresh by row id and returns
// the result; fresh is not modified. Saved rows with ids fresh does not have
// are ignored, and day entries are padded or cut to totalDays.
//
// Inside each slot group the saved rows take the positions saved rows hold
// in fresh, in saved order, so a reorder made in an earlier session survives
// a rebuild. Rows with nothing saved keep their fresh position.
func Merge(fresh, saved []domain.Row, totalDays int) []domain.Row {
	rank := make(map[string]int, len(saved))
	byID := make(map[string]domain.Row, len(saved))
	for i, r := range saved {
		if r.Task == nil {
			continue
		}
		if _, dup := byID[r.ID]; dup {
			continue
		}
		rank[r.ID] = i
		byID[r.ID] = r
	}

	out := make([]domain.Row, len(fresh))
	groups := make(map[string][]int)
	var order []string
	for i, r := range fresh {
		out[i] = r.Clone()
		if !r.IsTaskLike() {
			continue
		}
		s, ok := byID[r.ID]
		if !ok {
			out[i].Task.DayEntries = domain.NormalizeDayEntries(r.Task.DayEntries, totalDays)
			continue
		}
		t := *s.Clone().Task
		t.DayEntries = domain.NormalizeDayEntries(t.DayEntries, totalDays)
		out[i].Task = &t

		g, _ := rowid.SlotGroup(r.ID)
		if _, seen := groups[g]; !seen {
			order = append(order, g)
		}
		groups[g] = append(groups[g], i)
	}

	for _, g := range order {
		idx := groups[g]
		rows := make([]domain.Row, len(idx))
		for k, i := range idx {
			rows[k] = out[i]
		}
		slices.SortFunc(rows, func(a, b domain.Row) int {
			return rank[a.ID] - rank[b.ID]
		})
		for k, i := range idx {
			out[i] = rows[k]
		}
	}
	return out
}

// SavedIDs returns the ids of rows in order, for plan.Build.
func SavedIDs(rows []domain.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

// LoadSnapshot reads the saved task rows.
func LoadSnapshot(ctx context.Context, conn db.DBTX) ([]domain.Row, error) {
	rows, err := repository.NewSQLiteTaskRowRepo(conn).LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	return rows, nil
}
