package booking

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/evbs/battery-swap-backend/internal/domain"
	"github.com/evbs/battery-swap-backend/internal/ports"
)

// DefaultHoldWindow is how long a reserved battery stays held past the
// scheduled booking time before the expiry reconciler releases it.
const DefaultHoldWindow = 3 * time.Hour

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Service creates bookings and places the matching battery hold. Creation and
// hold are one transaction; the expiry reconciler undoes abandoned holds.
type Service struct {
	bookingRepo ports.BookingRepository
	batteryRepo ports.BatteryRepository
	vehicleRepo ports.VehicleRepository
	stationRepo ports.StationRepository
	subRepo     ports.SubscriptionRepository
	uow         ports.UnitOfWork
	holdWindow  time.Duration
	now         func() time.Time
	log         *zap.Logger
}

func NewService(
	bookingRepo ports.BookingRepository,
	batteryRepo ports.BatteryRepository,
	vehicleRepo ports.VehicleRepository,
	stationRepo ports.StationRepository,
	subRepo ports.SubscriptionRepository,
	uow ports.UnitOfWork,
	holdWindow time.Duration,
	now func() time.Time,
	log *zap.Logger,
) *Service {
	if holdWindow <= 0 {
		holdWindow = DefaultHoldWindow
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		bookingRepo: bookingRepo,
		batteryRepo: batteryRepo,
		vehicleRepo: vehicleRepo,
		stationRepo: stationRepo,
		subRepo:     subRepo,
		uow:         uow,
		holdWindow:  holdWindow,
		now:         now,
		log:         log,
	}
}

var _ ports.BookingService = (*Service)(nil)

// CreateBooking validates the driver's allowance, reserves a compatible
// battery at the station, and confirms the booking with a pickup code.
func (s *Service) CreateBooking(ctx context.Context, req *ports.BookingRequest) (*domain.Booking, error) {
	if req.BookingTime.Before(s.now()) {
		return nil, fmt.Errorf("%w: booking time is in the past", domain.ErrInvalidState)
	}

	station, err := s.stationRepo.FindByID(ctx, req.StationID)
	if err != nil {
		return nil, err
	}
	if station == nil {
		return nil, fmt.Errorf("%w: station %d", domain.ErrNotFound, req.StationID)
	}

	vehicle, err := s.vehicleRepo.FindByID(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, fmt.Errorf("%w: vehicle %d", domain.ErrNotFound, req.VehicleID)
	}
	if vehicle.DriverID != req.DriverID {
		return nil, fmt.Errorf("%w: vehicle %d does not belong to driver %d",
			domain.ErrInvalidState, req.VehicleID, req.DriverID)
	}

	sub, err := s.subRepo.FindActiveByDriver(ctx, req.DriverID, s.now())
	if err != nil {
		return nil, err
	}
	if sub == nil || !sub.HasSwapsLeft() {
		return nil, fmt.Errorf("%w: driver %d has no active subscription with swaps left",
			domain.ErrInvalidState, req.DriverID)
	}

	var booking *domain.Booking
	err = s.uow.Do(ctx, func(ctx context.Context) error {
		battery, err := s.batteryRepo.FindAvailableAtStation(ctx, req.StationID, vehicle.BatteryTypeID)
		if err != nil {
			return err
		}
		if battery == nil {
			return fmt.Errorf("%w: no available battery of type %d at station %d",
				domain.ErrConflict, vehicle.BatteryTypeID, req.StationID)
		}

		expiry := req.BookingTime.Add(s.holdWindow)
		booking = &domain.Booking{
			DriverID:          req.DriverID,
			StationID:         req.StationID,
			VehicleID:         req.VehicleID,
			Status:            domain.BookingStatusConfirmed,
			BookingTime:       req.BookingTime,
			ConfirmationCode:  generateConfirmationCode(),
			ReservedBatteryID: &battery.ID,
			ReservationExpiry: &expiry,
			CreatedAt:         s.now(),
			UpdatedAt:         s.now(),
		}
		if err := s.bookingRepo.Save(ctx, booking); err != nil {
			return err
		}

		battery.Status = domain.BatteryStatusPending
		battery.ReservedForBookingID = &booking.ID
		battery.ReservationExpiry = &expiry
		battery.UpdatedAt = s.now()
		return s.batteryRepo.Save(ctx, battery)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Booking created",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("driver_id", req.DriverID),
		zap.Int64("station_id", req.StationID),
		zap.Time("booking_time", req.BookingTime),
	)
	return booking, nil
}

func (s *Service) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: booking %d", domain.ErrNotFound, id)
	}
	return booking, nil
}

func (s *Service) GetDriverBookings(ctx context.Context, driverID int64) ([]domain.Booking, error) {
	return s.bookingRepo.FindByDriverID(ctx, driverID)
}

// CancelBooking is the driver-initiated cancellation. It releases the held
// battery in the same transaction. No swap is forfeited; forfeiture only
// happens when the reconciler cancels a no-show.
func (s *Service) CancelBooking(ctx context.Context, id, driverID int64, reason string) error {
	return s.uow.Do(ctx, func(ctx context.Context) error {
		booking, err := s.bookingRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if booking == nil {
			return fmt.Errorf("%w: booking %d", domain.ErrNotFound, id)
		}
		if booking.DriverID != driverID {
			return fmt.Errorf("%w: booking %d does not belong to driver %d",
				domain.ErrInvalidState, id, driverID)
		}
		if !booking.CanBeCancelled() {
			return fmt.Errorf("%w: booking %d is %s", domain.ErrInvalidState, id, booking.Status)
		}

		reservedBatteryID := booking.ReservedBatteryID
		if reason == "" {
			reason = "cancelled by driver"
		}
		booking.Cancel(reason, s.now())
		if err := s.bookingRepo.Save(ctx, booking); err != nil {
			return err
		}

		if reservedBatteryID != nil {
			battery, err := s.batteryRepo.FindByID(ctx, *reservedBatteryID)
			if err != nil {
				return err
			}
			if battery != nil && battery.Status == domain.BatteryStatusPending {
				battery.Release(s.now())
				if err := s.batteryRepo.Save(ctx, battery); err != nil {
					return err
				}
			}
		}

		s.log.Info("Booking cancelled by driver",
			zap.Int64("booking_id", id),
			zap.Int64("driver_id", driverID),
		)
		return nil
	})
}

// generateConfirmationCode returns an 8-character pickup code from an
// alphabet without lookalike characters.
func generateConfirmationCode() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken; fall back to a
		// timestamp-derived code rather than panicking.
		for i := range buf {
			buf[i] = byte(time.Now().UnixNano() >> (i * 8))
		}
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf)
}
