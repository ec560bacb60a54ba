package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/plansheet/internal/db"
	"github.com/alexanderramin/plansheet/internal/domain"
)

// SQLiteTaskRowRepo implements TaskRowRepo using a SQLite database.
// ReplaceAll issues several statements; run it inside a UnitOfWork when the
// snapshot must land atomically.
type SQLiteTaskRowRepo struct {
	db db.DBTX
}

// NewSQLiteTaskRowRepo creates a new SQLiteTaskRowRepo.
func NewSQLiteTaskRowRepo(conn db.DBTX) *SQLiteTaskRowRepo {
	return &SQLiteTaskRowRepo{db: conn}
}

const taskRowColumns = `id, kind, project_key, subproject_key, status, task_name, recurring,
	estimate, original_estimate, time_value, day_entries, has_user_interaction`

func (r *SQLiteTaskRowRepo) ReplaceAll(ctx context.Context, rows []domain.Row) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM task_rows`); err != nil {
		return fmt.Errorf("clearing task rows: %w", err)
	}

	query := `INSERT INTO task_rows (` + taskRowColumns + `, position, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := nowUTC()
	position := 0
	for _, row := range rows {
		if !row.IsTaskLike() {
			continue
		}
		t := row.Task
		entries, err := encodeStrings(t.DayEntries)
		if err != nil {
			return fmt.Errorf("task row %s: %w", row.ID, err)
		}
		_, err = r.db.ExecContext(ctx, query,
			row.ID,
			string(row.Kind),
			t.ProjectKey,
			t.SubprojectKey,
			string(t.Status),
			t.TaskName,
			boolToInt(t.Recurring),
			string(t.Estimate),
			string(t.OriginalEstimate),
			t.TimeValue,
			entries,
			boolToInt(t.HasUserInteraction),
			position,
			now,
		)
		if err != nil {
			return fmt.Errorf("inserting task row %s: %w", row.ID, err)
		}
		position++
	}
	return nil
}

func (r *SQLiteTaskRowRepo) LoadAll(ctx context.Context) ([]domain.Row, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+taskRowColumns+` FROM task_rows ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("listing task rows: %w", err)
	}
	defer rows.Close()

	var out []domain.Row
	for rows.Next() {
		row, err := scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating task rows: %w", err)
	}
	return out, nil
}

func (r *SQLiteTaskRowRepo) GetByID(ctx context.Context, id string) (domain.Row, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskRowColumns+` FROM task_rows WHERE id = ?`, id)
	out, err := scanTaskRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Row{}, fmt.Errorf("task row %s: %w", id, ErrNotFound)
	}
	return out, err
}

func (r *SQLiteTaskRowRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM task_rows`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting task rows: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTaskRow(s rowScanner) (domain.Row, error) {
	var (
		id, kind, status, estimate, original, entries string
		recurring, touched                            int
		t                                             domain.TaskFields
	)
	err := s.Scan(
		&id, &kind, &t.ProjectKey, &t.SubprojectKey, &status, &t.TaskName, &recurring,
		&estimate, &original, &t.TimeValue, &entries, &touched,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Row{}, err
		}
		return domain.Row{}, fmt.Errorf("scanning task row: %w", err)
	}

	t.Status = domain.Status(status)
	t.Estimate = domain.EstimateLabel(estimate)
	t.OriginalEstimate = domain.EstimateLabel(original)
	t.Recurring = intToBool(recurring)
	t.HasUserInteraction = intToBool(touched)
	if t.DayEntries, err = decodeStrings(entries); err != nil {
		return domain.Row{}, fmt.Errorf("task row %s: %w", id, err)
	}
	return domain.Row{ID: id, Kind: domain.RowKind(kind), Task: &t}, nil
}
