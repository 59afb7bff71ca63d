package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Drafter5000/Drafter5000-sub000/internal/domain/billing"
)

type txKey struct{}

// dbFrom returns the transaction-scoped handle carried by ctx, or the
// repository's own handle when no transaction is open. Repositories call
// this on every query so they transparently join a surrounding
// GormTxManager.WithinTx.
func dbFrom(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}

type GormTxManager struct {
	db *gorm.DB
}

func NewGormTxManager(db *gorm.DB) billing.TxManager {
	return &GormTxManager{db: db}
}

// WithinTx runs fn inside one database transaction. The transaction handle
// travels in the context; a returned error rolls everything back.
func (m *GormTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}
