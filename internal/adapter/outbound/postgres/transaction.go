package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/uniedit/invite-server/internal/port/outbound"
)

// txContextKey is used to store transaction in context.
type txContextKeyType struct{}

var txContextKey = txContextKeyType{}

// dbFromContext returns the transaction stored in ctx, or db.
func dbFromContext(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// transactionAdapter implements outbound.TransactionPort.
type transactionAdapter struct {
	db *gorm.DB
}

// NewTransactionAdapter creates a new transaction adapter.
func NewTransactionAdapter(db *gorm.DB) outbound.TransactionPort {
	return &transactionAdapter{db: db}
}

func (a *transactionAdapter) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return dbFromContext(ctx, a.db).Transaction(func(tx *gorm.DB) error {
		// Store tx in context for the adapters called by fn
		txCtx := context.WithValue(ctx, txContextKey, tx)
		return fn(txCtx)
	})
}
