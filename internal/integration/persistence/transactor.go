// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/streamshare/backend/internal/application/adapter"
)

type txKey struct{}

// gormTransactor implements the adapter.Transactor interface.
type gormTransactor struct {
	db *gorm.DB
}

// NewTransactor creates a transactor backed by the given database handle.
func NewTransactor(db *gorm.DB) adapter.Transactor {
	return &gormTransactor{db: db}
}

// WithinTransaction runs fn in a transaction. A call made while a transaction is
// already open on ctx joins it instead of opening a new one.
func (t *gormTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction bound to ctx, or db scoped to ctx.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
