package postgres

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/evbs/battery-swap-backend/internal/domain"
	"github.com/evbs/battery-swap-backend/internal/ports"
)

type SubscriptionRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewSubscriptionRepository(db *gorm.DB, log *zap.Logger) ports.SubscriptionRepository {
	return &SubscriptionRepository{db: db, log: log}
}

func (r *SubscriptionRepository) Save(ctx context.Context, sub *domain.DriverSubscription) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Save(sub).Error
}

func (r *SubscriptionRepository) FindByID(ctx context.Context, id int64) (*domain.DriverSubscription, error) {
	var sub domain.DriverSubscription
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("ServicePackage").
		First(&sub, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepository) FindByDriverID(ctx context.Context, driverID int64) ([]domain.DriverSubscription, error) {
	var subs []domain.DriverSubscription
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("ServicePackage").
		Where("driver_id = ?", driverID).
		Order("start_date DESC").
		Find(&subs).Error
	return subs, err
}

func (r *SubscriptionRepository) FindAll(ctx context.Context) ([]domain.DriverSubscription, error) {
	var subs []domain.DriverSubscription
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("ServicePackage").
		Order("id").
		Find(&subs).Error
	return subs, err
}

func (r *SubscriptionRepository) FindActiveByDriver(ctx context.Context, driverID int64, day time.Time) (*domain.DriverSubscription, error) {
	return r.findActive(dbFromContext(ctx, r.db).WithContext(ctx), driverID, day)
}

// FindActiveByDriverForUpdate locks the active subscription row for the
// duration of the surrounding transaction. Must run inside a UnitOfWork.
func (r *SubscriptionRepository) FindActiveByDriverForUpdate(ctx context.Context, driverID int64, day time.Time) (*domain.DriverSubscription, error) {
	db := dbFromContext(ctx, r.db).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"})
	return r.findActive(db, driverID, day)
}

func (r *SubscriptionRepository) findActive(db *gorm.DB, driverID int64, day time.Time) (*domain.DriverSubscription, error) {
	var sub domain.DriverSubscription
	err := db.
		Where("driver_id = ? AND status = ? AND end_date >= ?",
			driverID, domain.SubscriptionStatusActive, domain.Midnight(day)).
		Order("end_date DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}
