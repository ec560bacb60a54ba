package testutil

import (
	"context"
	"database/sql"
	"strings"
	"sync/atomic"

	"github.com/alexanderramin/plansheet/internal/db"
)

// FailingTx is a UnitOfWork that runs fn in a real transaction and makes one
// write fail: the Nth ExecContext whose statement starts with Prefix, or the
// Nth write of any kind when Prefix is empty. The transaction then rolls back
// through the production unit of work. Reads are never counted.
type FailingTx struct {
	DB     *sql.DB
	Prefix string
	Nth    int32
	Err    error
}

func (f *FailingTx) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	return db.NewSQLiteUnitOfWork(f.DB).WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &failingExec{DBTX: tx, tx: f})
	})
}

type failingExec struct {
	db.DBTX
	tx    *FailingTx
	count atomic.Int32
}

func (e *failingExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if strings.HasPrefix(strings.TrimSpace(query), e.tx.Prefix) && e.count.Add(1) == e.tx.Nth {
		return nil, e.tx.Err
	}
	return e.DBTX.ExecContext(ctx, query, args...)
}
