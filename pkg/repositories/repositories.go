// Package repositories contains the PostgreSQL data access layer.
// Every repository is an interface plus a pgx-backed implementation;
// mutating call sites run inside a transaction carried by the request
// context (database.InTx), which repositories join transparently.
package repositories

import (
	"context"

	"github.com/roomboard-io/roomboard-engine/pkg/database"
)

// querier returns the context's open transaction when one is present,
// falling back to the pool.
func querier(ctx context.Context, db *database.DB) database.Querier {
	if tx, ok := database.TxFrom(ctx); ok {
		return tx
	}
	return db.Pool
}
