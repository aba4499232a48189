// Package dbx holds the small database plumbing the repository layer is
// built on: the DBTX handle that lets one repository type run against
// either a live connection or an open transaction, and WithTx for the
// few operations that need more than one statement to be atomic.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the execution surface a repository needs. *sql.DB and *sql.Tx
// both satisfy it, so services decide per call whether a repository runs
// transactionally.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction: commit when fn returns nil,
// rollback on error. A panic in fn rolls back and is rethrown.
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    if err := tokens.DeleteExpiredOrRevoked(ctx, userID); err != nil {
//	        return err
//	    }
//	    return tokens.Create(ctx, userID, token, expiresAt)
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}
