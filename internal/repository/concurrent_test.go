package repository

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alexanderramin/plansheet/internal/db"
	"github.com/alexanderramin/plansheet/internal/domain"
	"github.com/alexanderramin/plansheet/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newConcurrentTestDB creates a file-backed SQLite database in a temp directory.
// Unlike :memory:, a file-backed DB shares state across all connections in the
// pool, which is required to test real concurrent access with WAL mode.
func newConcurrentTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "concurrent_test.db")
	database, err := db.OpenDB(dbPath)
	require.NoError(t, err, "failed to create concurrent test database")
	t.Cleanup(func() { database.Close() })
	return database
}

func snapshot(gen, size int) []domain.Row {
	rows := make([]domain.Row, size)
	for i := range rows {
		rows[i] = testutil.NewTestTaskRow(fmt.Sprintf("p:a#%d", i+1), "a", fmt.Sprintf("gen-%d", gen))
	}
	return rows
}

// TestConcurrentAccess_SnapshotsAreAtomic verifies that readers never see a
// half-written snapshot while ReplaceAll runs inside a UnitOfWork. The
// debounced saver writes from its own goroutine while the CLI may read.
func TestConcurrentAccess_SnapshotsAreAtomic(t *testing.T) {
	database := newConcurrentTestDB(t)
	ctx := context.Background()
	uow := db.NewSQLiteUnitOfWork(database)
	const size = 5

	require.NoError(t, NewSQLiteTaskRowRepo(database).ReplaceAll(ctx, snapshot(0, size)))

	var wg sync.WaitGroup

	// Writer goroutine: replace the snapshot 20 times.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for gen := 1; gen <= 20; gen++ {
			err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
				return NewSQLiteTaskRowRepo(tx).ReplaceAll(ctx, snapshot(gen, size))
			})
			if err != nil {
				t.Errorf("writer: generation %d: %v", gen, err)
				return
			}
		}
	}()

	// Reader goroutines: every read sees one whole generation.
	repo := NewSQLiteTaskRowRepo(database)
	for r := 0; r < 5; r++ {
		wg.Add(1)
		go func(reader int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				rows, err := repo.LoadAll(ctx)
				if err != nil {
					t.Errorf("reader %d: load: %v", reader, err)
					return
				}
				if len(rows) != size {
					t.Errorf("reader %d: got %d rows, want %d", reader, len(rows), size)
					return
				}
				for _, row := range rows {
					if row.Task.TaskName != rows[0].Task.TaskName {
						t.Errorf("reader %d: mixed generations %q and %q", reader, row.Task.TaskName, rows[0].Task.TaskName)
					}
				}
			}
		}(r)
	}

	wg.Wait()

	rows, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, size)
	assert.Equal(t, "gen-20", rows[0].Task.TaskName)
}
