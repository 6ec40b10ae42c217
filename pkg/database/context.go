package database

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type contextKey string

// txKey is the context key for the request's open transaction.
const txKey contextKey = "tx"

// WithTx stores an open transaction in the context so repositories
// called downstream join it instead of the pool.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// TxFrom retrieves the transaction from context. Returns nil and
// false if the context carries none.
func TxFrom(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey).(pgx.Tx)
	return tx, ok
}
