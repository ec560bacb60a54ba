package repository

import (
	"context"

	"github.com/alexanderramin/plansheet/internal/domain"
)

// TaskRowRepo stores the task-like rows of a sheet. Structural rows are
// rebuilt from the plan and never stored.
type TaskRowRepo interface {
	// ReplaceAll swaps the stored snapshot for rows, keeping their order.
	// Rows without task fields are skipped.
	ReplaceAll(ctx context.Context, rows []domain.Row) error
	// LoadAll returns the stored rows in saved order.
	LoadAll(ctx context.Context) ([]domain.Row, error)
	GetByID(ctx context.Context, id string) (domain.Row, error)
	Count(ctx context.Context) (int, error)
}

// SheetStateRepo stores small named pieces of view state.
type SheetStateRepo interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	GetList(ctx context.Context, key string) ([]string, error)
	SetList(ctx context.Context, key string, values []string) error
}
