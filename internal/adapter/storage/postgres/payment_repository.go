package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/evbs/battery-swap-backend/internal/domain"
	"github.com/evbs/battery-swap-backend/internal/ports"
)

type PaymentRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewPaymentRepository(db *gorm.DB, log *zap.Logger) ports.PaymentRepository {
	return &PaymentRepository{db: db, log: log}
}

func (r *PaymentRepository) Save(ctx context.Context, payment *domain.Payment) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Save(payment).Error
}

func (r *PaymentRepository) FindByID(ctx context.Context, id int64) (*domain.Payment, error) {
	var payment domain.Payment
	err := dbFromContext(ctx, r.db).WithContext(ctx).First(&payment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) FindBySubscriptionID(ctx context.Context, subscriptionID int64) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}
