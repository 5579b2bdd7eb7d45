package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/evbs/battery-swap-backend/internal/domain"
	"github.com/evbs/battery-swap-backend/internal/ports"
)

type VehicleRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewVehicleRepository(db *gorm.DB, log *zap.Logger) ports.VehicleRepository {
	return &VehicleRepository{db: db, log: log}
}

func (r *VehicleRepository) Save(ctx context.Context, vehicle *domain.Vehicle) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Save(vehicle).Error
}

func (r *VehicleRepository) FindByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	var vehicle domain.Vehicle
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("BatteryType").
		First(&vehicle, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vehicle, nil
}

func (r *VehicleRepository) FindByDriverID(ctx context.Context, driverID int64) ([]domain.Vehicle, error) {
	var vehicles []domain.Vehicle
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("BatteryType").
		Where("driver_id = ?", driverID).
		Order("id").
		Find(&vehicles).Error
	return vehicles, err
}
