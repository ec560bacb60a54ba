package testutil

import (
	"github.com/alexanderramin/plansheet/internal/domain"
)

// FixtureDays is the day-column count of fixture rows.
const FixtureDays = 7

// Task row options
type RowOption func(*domain.Row)

func WithKind(k domain.RowKind) RowOption {
	return func(r *domain.Row) {
		r.Kind = k
	}
}

func WithSubproject(key string) RowOption {
	return func(r *domain.Row) {
		r.Task.SubprojectKey = key
	}
}

func WithStatus(s domain.Status) RowOption {
	return func(r *domain.Row) {
		r.Task.Status = s
	}
}

func WithEstimate(e domain.EstimateLabel) RowOption {
	return func(r *domain.Row) {
		r.Task.SetEstimate(e)
	}
}

func WithRecurring() RowOption {
	return func(r *domain.Row) {
		r.Task.Recurring = true
	}
}

// WithEntry sets the entry of one day column and marks the row as touched.
func WithEntry(day int, value string) RowOption {
	return func(r *domain.Row) {
		r.Task.DayEntries[day] = value
		r.Task.HasUserInteraction = true
	}
}

// NewTestTaskRow returns a task row in project with FixtureDays day columns.
func NewTestTaskRow(id, project, name string, opts ...RowOption) domain.Row {
	r := domain.NewTaskRow(id, domain.KindTask, project, "", FixtureDays)
	r.Task.TaskName = name
	for _, opt := range opts {
		opt(&r)
	}
	return r
}
