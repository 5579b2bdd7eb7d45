package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/evbs/battery-swap-backend/internal/ports"
)

type txContextKey struct{}

// dbFromContext returns the transaction carried by ctx if a UnitOfWork is in
// progress, otherwise the fallback connection. Every repository method goes
// through this so the same code runs inside and outside transactions.
func dbFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback
}

// GormUnitOfWork implements ports.UnitOfWork with a GORM transaction stored
// in the context.
type GormUnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) ports.UnitOfWork {
	return &GormUnitOfWork{db: db}
}

func (u *GormUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
}
