package reconciler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/evbs/battery-swap-backend/internal/adapter/queue"
	"github.com/evbs/battery-swap-backend/internal/domain"
	"github.com/evbs/battery-swap-backend/internal/observability/telemetry"
	"github.com/evbs/battery-swap-backend/internal/ports"
)

// CancellationSubject is the queue subject booking-cancellation notification
// payloads are published on.
const CancellationSubject = "notifications.booking.cancelled"

const bookingTimeLayout = "15:04 - 02/01/2006"

// Service sweeps expired battery reservations. Each run releases timed-out
// batteries, cancels the no-show bookings holding them, and deducts one swap
// from the no-show driver's subscription.
//
// The sweep is batch-oriented and idempotent: a missed cycle just means a
// larger backlog next run, and re-running immediately cancels nothing new.
type Service struct {
	batteryRepo ports.BatteryRepository
	bookingRepo ports.BookingRepository
	subs        ports.SubscriptionService
	mq          queue.MessageQueue
	now         func() time.Time
	log         *zap.Logger
}

// Summary reports what one sweep did.
type Summary struct {
	BatteriesScanned  int
	BookingsCancelled int
}

// NewService creates a new reconciler. now is injectable for tests; nil means
// the wall clock.
func NewService(
	batteryRepo ports.BatteryRepository,
	bookingRepo ports.BookingRepository,
	subs ports.SubscriptionService,
	mq queue.MessageQueue,
	now func() time.Time,
	log *zap.Logger,
) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		batteryRepo: batteryRepo,
		bookingRepo: bookingRepo,
		subs:        subs,
		mq:          mq,
		now:         now,
		log:         log,
	}
}

// RunOnce executes one sweep. Per-battery failures are logged and do not
// abort the rest of the batch.
func (s *Service) RunOnce(ctx context.Context) (Summary, error) {
	now := s.now()

	expired, err := s.batteryRepo.FindExpiredPending(ctx, now)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to scan expired reservations: %w", err)
	}

	summary := Summary{BatteriesScanned: len(expired)}
	if len(expired) == 0 {
		s.log.Debug("No expired reservations", zap.Time("now", now))
		return summary, nil
	}

	s.log.Info("Found PENDING batteries with expired reservations",
		zap.Int("count", len(expired)),
	)

	for i := range expired {
		battery := &expired[i]
		if err := s.processBattery(ctx, battery, &summary); err != nil {
			s.log.Error("Failed to process expired battery",
				zap.Int64("battery_id", battery.ID),
				zap.Error(err),
			)
		}
	}

	telemetry.ReconcilerRunsTotal.Inc()
	telemetry.ReconcilerBatteriesScanned.Add(float64(summary.BatteriesScanned))
	telemetry.ReconcilerBookingsCancelled.Add(float64(summary.BookingsCancelled))

	s.log.Info("Expired reservation sweep finished",
		zap.Int("batteries_scanned", summary.BatteriesScanned),
		zap.Int("bookings_cancelled", summary.BookingsCancelled),
	)
	return summary, nil
}

func (s *Service) processBattery(ctx context.Context, battery *domain.Battery, summary *Summary) error {
	// A PENDING battery without a booking owner is a data inconsistency.
	// Self-heal by releasing it; not an error.
	if battery.ReservedForBookingID == nil {
		s.log.Warn("PENDING battery has no linked booking, releasing",
			zap.Int64("battery_id", battery.ID),
		)
		return s.releaseBattery(ctx, battery)
	}

	booking, err := s.bookingRepo.FindByID(ctx, *battery.ReservedForBookingID)
	if err != nil {
		return fmt.Errorf("failed to load booking %d: %w", *battery.ReservedForBookingID, err)
	}
	if booking == nil {
		s.log.Warn("PENDING battery points at a missing booking, releasing",
			zap.Int64("battery_id", battery.ID),
			zap.Int64("booking_id", *battery.ReservedForBookingID),
		)
		return s.releaseBattery(ctx, battery)
	}

	if booking.Status == domain.BookingStatusConfirmed {
		// Driver never arrived: forfeit one swap before cancelling.
		if err := s.subs.DeductSwap(ctx, booking.DriverID); err != nil {
			s.log.Error("Failed to deduct no-show swap",
				zap.Int64("booking_id", booking.ID),
				zap.Int64("driver_id", booking.DriverID),
				zap.Error(err),
			)
		}

		booking.Cancel("auto-expired, no-show, one swap forfeited", s.now())
		if err := s.bookingRepo.Save(ctx, booking); err != nil {
			return fmt.Errorf("failed to cancel booking %d: %w", booking.ID, err)
		}
		summary.BookingsCancelled++

		s.log.Info("Cancelled expired booking and deducted swap",
			zap.Int64("booking_id", booking.ID),
			zap.String("confirmation_code", booking.ConfirmationCode),
			zap.Int64("driver_id", booking.DriverID),
		)

		s.publishCancellation(booking)
	}

	return s.releaseBattery(ctx, battery)
}

func (s *Service) releaseBattery(ctx context.Context, battery *domain.Battery) error {
	battery.Release(s.now())
	if err := s.batteryRepo.Save(ctx, battery); err != nil {
		return fmt.Errorf("failed to release battery %d: %w", battery.ID, err)
	}

	s.log.Debug("Battery released",
		zap.Int64("battery_id", battery.ID),
	)
	return nil
}

// publishCancellation emits the structured cancellation payload. Delivery is
// fire-and-forget; failures are logged, never propagated.
func (s *Service) publishCancellation(booking *domain.Booking) {
	detail := s.buildCancellationDetail(booking)

	data, err := json.Marshal(detail)
	if err != nil {
		s.log.Error("Failed to marshal cancellation payload",
			zap.Int64("booking_id", booking.ID),
			zap.Error(err),
		)
		return
	}

	if err := s.mq.Publish(CancellationSubject, data); err != nil {
		s.log.Error("Failed to publish cancellation notification",
			zap.Int64("booking_id", booking.ID),
			zap.Error(err),
		)
		return
	}

	s.log.Info("Published auto-cancellation notification",
		zap.Int64("booking_id", booking.ID),
	)
}

func (s *Service) buildCancellationDetail(booking *domain.Booking) *domain.EmailDetail {
	detail := &domain.EmailDetail{
		Subject:          "AUTOMATIC BOOKING CANCELLATION - " + booking.ConfirmationCode,
		BookingID:        booking.ID,
		BookingTime:      booking.BookingTime.Format(bookingTimeLayout),
		Status:           string(domain.BookingStatusCancelled),
		ConfirmationCode: booking.ConfirmationCode,
		CancellationPolicy: "Your booking was cancelled automatically because the reservation hold expired. " +
			"One swap was deducted from your service package because the swap was not carried out.",
	}

	if booking.Driver != nil {
		detail.Recipient = booking.Driver.Email
		detail.FullName = booking.Driver.FullName
	}
	if booking.Station != nil {
		detail.StationName = booking.Station.Name
		detail.StationLocation = booking.Station.DisplayLocation()
		detail.StationContact = booking.Station.ContactInfo
		if detail.StationContact == "" {
			detail.StationContact = "not provided"
		}
		if booking.Station.BatteryType != nil {
			detail.BatteryType = booking.Station.BatteryType.Name
			if booking.Station.BatteryType.Capacity != nil {
				detail.BatteryType = fmt.Sprintf("%s - %.0fkWh", detail.BatteryType, *booking.Station.BatteryType.Capacity)
			}
		}
	}
	if booking.Vehicle != nil {
		detail.VehicleModel = booking.Vehicle.Descriptor()
	}

	return detail
}
