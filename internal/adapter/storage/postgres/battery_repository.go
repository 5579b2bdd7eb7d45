package postgres

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/evbs/battery-swap-backend/internal/domain"
	"github.com/evbs/battery-swap-backend/internal/ports"
)

type BatteryRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewBatteryRepository(db *gorm.DB, log *zap.Logger) ports.BatteryRepository {
	return &BatteryRepository{db: db, log: log}
}

func (r *BatteryRepository) Save(ctx context.Context, battery *domain.Battery) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Save(battery).Error
}

func (r *BatteryRepository) FindByID(ctx context.Context, id int64) (*domain.Battery, error) {
	var battery domain.Battery
	err := dbFromContext(ctx, r.db).WithContext(ctx).First(&battery, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &battery, nil
}

func (r *BatteryRepository) FindAll(ctx context.Context) ([]domain.Battery, error) {
	var batteries []domain.Battery
	err := dbFromContext(ctx, r.db).WithContext(ctx).Order("id").Find(&batteries).Error
	return batteries, err
}

func (r *BatteryRepository) FindExpiredPending(ctx context.Context, now time.Time) ([]domain.Battery, error) {
	var batteries []domain.Battery
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("status = ? AND reservation_expiry < ?", domain.BatteryStatusPending, now).
		Order("id").
		Find(&batteries).Error
	return batteries, err
}

func (r *BatteryRepository) FindAvailableAtStation(ctx context.Context, stationID, batteryTypeID int64) (*domain.Battery, error) {
	var battery domain.Battery
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("current_station_id = ? AND battery_type_id = ? AND status = ?",
			stationID, batteryTypeID, domain.BatteryStatusAvailable).
		Order("id").
		First(&battery).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &battery, nil
}

type BatteryTypeRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewBatteryTypeRepository(db *gorm.DB, log *zap.Logger) ports.BatteryTypeRepository {
	return &BatteryTypeRepository{db: db, log: log}
}

func (r *BatteryTypeRepository) Save(ctx context.Context, bt *domain.BatteryType) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Save(bt).Error
}

func (r *BatteryTypeRepository) FindByID(ctx context.Context, id int64) (*domain.BatteryType, error) {
	var bt domain.BatteryType
	err := dbFromContext(ctx, r.db).WithContext(ctx).First(&bt, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &bt, nil
}

func (r *BatteryTypeRepository) FindAll(ctx context.Context) ([]domain.BatteryType, error) {
	var types []domain.BatteryType
	err := dbFromContext(ctx, r.db).WithContext(ctx).Order("id").Find(&types).Error
	return types, err
}
