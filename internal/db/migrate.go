package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are idempotent, so the
// whole list is replayed on every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	// One row per task-like sheet row. position keeps the saved order;
	// day_entries is a JSON array of strings.
	`CREATE TABLE IF NOT EXISTS task_rows (
		id                 TEXT PRIMARY KEY,
		position           INTEGER NOT NULL,
		kind               TEXT NOT NULL
		                   CHECK(kind IN ('task','inbox_item')),
		project_key        TEXT NOT NULL DEFAULT '',
		subproject_key     TEXT NOT NULL DEFAULT '',
		status             TEXT NOT NULL DEFAULT '-',
		task_name          TEXT NOT NULL DEFAULT '',
		recurring          INTEGER NOT NULL DEFAULT 0,
		estimate           TEXT NOT NULL DEFAULT '-',
		time_value         TEXT NOT NULL DEFAULT '0.00',
		day_entries        TEXT NOT NULL DEFAULT '[]',
		updated_at         TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_task_rows_position ON task_rows(position)`,

	// Added after the first release: aggregate estimates remember the label
	// they replaced, and untouched rows are told apart from edited ones.
	`ALTER TABLE task_rows ADD COLUMN original_estimate TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE task_rows ADD COLUMN has_user_interaction INTEGER NOT NULL DEFAULT 0`,

	// Sheet-level view state such as the collapsed groups.
	`CREATE TABLE IF NOT EXISTS sheet_state (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
}
