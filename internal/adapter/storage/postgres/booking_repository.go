package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/evbs/battery-swap-backend/internal/domain"
	"github.com/evbs/battery-swap-backend/internal/ports"
)

type BookingRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewBookingRepository(db *gorm.DB, log *zap.Logger) ports.BookingRepository {
	return &BookingRepository{db: db, log: log}
}

func (r *BookingRepository) Save(ctx context.Context, booking *domain.Booking) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Save(booking).Error
}

// FindByID loads the booking with its driver, station, and vehicle relations
// so callers can build notifications without extra round trips.
func (r *BookingRepository) FindByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var booking domain.Booking
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("Driver").
		Preload("Station.BatteryType").
		Preload("Vehicle").
		First(&booking, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) FindByDriverID(ctx context.Context, driverID int64) ([]domain.Booking, error) {
	var bookings []domain.Booking
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("Station").
		Where("driver_id = ?", driverID).
		Order("booking_time DESC").
		Find(&bookings).Error
	return bookings, err
}

func (r *BookingRepository) FindByConfirmationCode(ctx context.Context, code string) (*domain.Booking, error) {
	var booking domain.Booking
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("Driver").
		Preload("Station").
		First(&booking, "confirmation_code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}
