package repository

import (
	"context"
	"database/sql"
)

type txKey struct{}

// withTx stores a SQL transaction in context for downstream repository
// calls made inside TxRunner.RunInTx.
func withTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// txFrom extracts a SQL transaction from context if present.
func txFrom(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Repositories run each statement against the transaction carried in
// the context when one is present, so every method works both inside
// and outside a unit of work.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func q(ctx context.Context, db *sql.DB) querier {
	if tx, ok := txFrom(ctx); ok {
		return tx
	}
	return db
}

// TxRunner is the unit-of-work boundary for cascading operations. Every
// repository call made inside fn joins the same transaction; if fn
// returns an error the whole transaction rolls back, so no partial
// cascade (a half-transitioned request, an orphan notification) is ever
// observable to other readers.
type TxRunner struct{ db *sql.DB }

// NewTxRunner returns a TxRunner bound to the given database.
func NewTxRunner(db *sql.DB) *TxRunner { return &TxRunner{db: db} }

// RunInTx executes fn within a single database transaction. The
// transaction is committed when fn returns nil and rolled back
// otherwise.
func (r *TxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(withTx(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
