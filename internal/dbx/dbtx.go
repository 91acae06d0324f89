// Package dbx holds the thin database plumbing shared by every repository:
// the DBTX handle and a transaction wrapper.
package dbx

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is the common query surface of *sql.DB and *sql.Tx. Repositories
// accept it instead of a concrete handle, so the same implementation serves
// both direct calls and calls running inside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs work inside a transaction: commit when work returns nil, roll
// back when it returns an error or panics (the panic is rethrown). Rollback
// errors are dropped; the work's own error is what the caller acts on.
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    return repomanager.Submissions(tx).Upsert(ctx, sub)
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, work func(ctx context.Context, tx DBTX) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := work(ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}
