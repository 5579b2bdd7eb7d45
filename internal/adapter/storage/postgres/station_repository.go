package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/evbs/battery-swap-backend/internal/domain"
	"github.com/evbs/battery-swap-backend/internal/ports"
)

type StationRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewStationRepository(db *gorm.DB, log *zap.Logger) ports.StationRepository {
	return &StationRepository{db: db, log: log}
}

func (r *StationRepository) Save(ctx context.Context, station *domain.Station) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Save(station).Error
}

func (r *StationRepository) FindByID(ctx context.Context, id int64) (*domain.Station, error) {
	var station domain.Station
	err := dbFromContext(ctx, r.db).WithContext(ctx).First(&station, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &station, nil
}

func (r *StationRepository) FindAll(ctx context.Context) ([]domain.Station, error) {
	var stations []domain.Station
	err := dbFromContext(ctx, r.db).WithContext(ctx).Order("id").Find(&stations).Error
	return stations, err
}

func (r *StationRepository) Delete(ctx context.Context, id int64) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Delete(&domain.Station{}, "id = ?", id).Error
}
