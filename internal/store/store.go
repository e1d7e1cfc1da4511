// internal/store/store.go
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the pgx-backed store. Consumers declare narrow interfaces over the
// subset of methods they use; *DB satisfies all of them.
type DB struct {
	pool *pgxpool.Pool
}

// New creates a store backed by the given connection pool.
func New(pool *pgxpool.Pool) *DB {
	return &DB{pool: pool}
}

// withTx runs fn inside a single transaction. Rollback is a no-op once
// the transaction has committed.
func (d *DB) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
