// Package services holds the application's business logic. Every
// operation authorizes through the gate before touching data, and
// multi-step mutations run inside a single transaction.
package services

import "context"

// TxRunner runs a function inside a database transaction. Satisfied
// by *database.DB.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
