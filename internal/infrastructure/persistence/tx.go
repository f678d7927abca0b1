package persistence

import (
	"context"

	"gorm.io/gorm"
)

type txContextKey struct{}

// WithTx returns a context carrying the given transaction handle.
// Repositories resolve their connection through DBFromContext so that
// work done inside a transaction manager callback joins the transaction.
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// DBFromContext returns the transaction handle from the context, or the
// fallback connection when no transaction is in flight.
func DBFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return fallback
}

// GormTransactionManager runs units of work inside a database transaction
type GormTransactionManager struct {
	db *gorm.DB
}

// NewGormTransactionManager creates a GormTransactionManager
func NewGormTransactionManager(db *gorm.DB) *GormTransactionManager {
	return &GormTransactionManager{db: db}
}

// Do executes fn inside a transaction. The transaction handle is placed on
// the context so repository calls within fn share it. Nested calls join the
// surrounding transaction instead of opening a new one.
func (m *GormTransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok && tx != nil {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(WithTx(ctx, tx))
	})
}
