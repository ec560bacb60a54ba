package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/plansheet/internal/db"
)

// Sheet state keys.
const (
	StateCollapsed = "collapsed_groups"
)

// SQLiteSheetStateRepo implements SheetStateRepo using a SQLite database.
type SQLiteSheetStateRepo struct {
	db db.DBTX
}

// NewSQLiteSheetStateRepo creates a new SQLiteSheetStateRepo.
func NewSQLiteSheetStateRepo(conn db.DBTX) *SQLiteSheetStateRepo {
	return &SQLiteSheetStateRepo{db: conn}
}

func (r *SQLiteSheetStateRepo) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM sheet_state WHERE key = ?`, key).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("sheet state %s: %w", key, ErrNotFound)
		}
		return "", fmt.Errorf("reading sheet state %s: %w", key, err)
	}
	return v, nil
}

func (r *SQLiteSheetStateRepo) Set(ctx context.Context, key, value string) error {
	query := `INSERT INTO sheet_state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, query, key, value, nowUTC()); err != nil {
		return fmt.Errorf("writing sheet state %s: %w", key, err)
	}
	return nil
}

// GetList reads a list value. A missing key is an empty list.
func (r *SQLiteSheetStateRepo) GetList(ctx context.Context, key string) ([]string, error) {
	v, err := r.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeStrings(v)
}

func (r *SQLiteSheetStateRepo) SetList(ctx context.Context, key string, values []string) error {
	v, err := encodeStrings(values)
	if err != nil {
		return err
	}
	return r.Set(ctx, key, v)
}
