package reconciler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/evbs/battery-swap-backend/internal/domain"
	"github.com/evbs/battery-swap-backend/internal/mocks"
)

var sweepTime = time.Date(2025, 6, 20, 18, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return sweepTime }

type world struct {
	batteries map[int64]*domain.Battery
	bookings  map[int64]*domain.Booking

	batteryRepo *mocks.MockBatteryRepository
	bookingRepo *mocks.MockBookingRepository
	subs        *mocks.MockSubscriptionService
	mq          *mocks.MockMessageQueue
	svc         *Service
}

func newWorld() *world {
	w := &world{
		batteries: make(map[int64]*domain.Battery),
		bookings:  make(map[int64]*domain.Booking),
		subs:      &mocks.MockSubscriptionService{},
		mq:        mocks.NewMockMessageQueue(),
	}
	w.batteryRepo = &mocks.MockBatteryRepository{
		FindExpiredPendingFunc: func(ctx context.Context, now time.Time) ([]domain.Battery, error) {
			var out []domain.Battery
			for _, b := range w.batteries {
				if b.IsReservationExpired(now) {
					out = append(out, *b)
				}
			}
			return out, nil
		},
		SaveFunc: func(ctx context.Context, battery *domain.Battery) error {
			w.batteries[battery.ID] = battery
			return nil
		},
	}
	w.bookingRepo = &mocks.MockBookingRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*domain.Booking, error) {
			return w.bookings[id], nil
		},
		SaveFunc: func(ctx context.Context, booking *domain.Booking) error {
			w.bookings[booking.ID] = booking
			return nil
		},
	}
	w.svc = NewService(w.batteryRepo, w.bookingRepo, w.subs, w.mq, fixedNow, zap.NewNop())
	return w
}

// addExpiredNoShow sets up a CONFIRMED booking whose battery hold lapsed an
// hour before the sweep.
func (w *world) addExpiredNoShow(batteryID, bookingID, driverID int64) {
	expiry := sweepTime.Add(-time.Hour)
	w.batteries[batteryID] = &domain.Battery{
		ID:                   batteryID,
		Status:               domain.BatteryStatusPending,
		ReservedForBookingID: &bookingID,
		ReservationExpiry:    &expiry,
	}
	w.bookings[bookingID] = &domain.Booking{
		ID:                bookingID,
		DriverID:          driverID,
		Status:            domain.BookingStatusConfirmed,
		BookingTime:       sweepTime.Add(-4 * time.Hour),
		ConfirmationCode:  "NOSHOW01",
		ReservedBatteryID: &batteryID,
		ReservationExpiry: &expiry,
		Driver: &domain.User{
			ID:       driverID,
			FullName: "Nguyen Van A",
			Email:    "driver@example.com",
		},
		Station: &domain.Station{
			Name:     "District 1 Hub",
			Location: "12 Le Loi, Ho Chi Minh City",
		},
	}
}

func TestRunOnceCancelsNoShowAndReleasesBattery(t *testing.T) {
	w := newWorld()
	w.addExpiredNoShow(77, 500, 42)

	summary, err := w.svc.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.BatteriesScanned)
	assert.Equal(t, 1, summary.BookingsCancelled)

	battery := w.batteries[77]
	assert.Equal(t, domain.BatteryStatusAvailable, battery.Status)
	assert.Nil(t, battery.ReservedForBookingID)
	assert.Nil(t, battery.ReservationExpiry)

	booking := w.bookings[500]
	assert.Equal(t, domain.BookingStatusCancelled, booking.Status)
	assert.Equal(t, "auto-expired, no-show, one swap forfeited", booking.CancellationReason)

	assert.Equal(t, []int64{42}, w.subs.DeductedDrivers)
}

func TestRunOnceIsIdempotent(t *testing.T) {
	w := newWorld()
	w.addExpiredNoShow(77, 500, 42)

	first, err := w.svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.BookingsCancelled)

	// Everything was released; an immediate second sweep finds nothing.
	second, err := w.svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.BatteriesScanned)
	assert.Equal(t, 0, second.BookingsCancelled)
	assert.Equal(t, []int64{42}, w.subs.DeductedDrivers, "no double deduction")
	assert.Len(t, w.mq.Published, 1, "no duplicate notification")
}

func TestRunOncePublishesCancellationPayload(t *testing.T) {
	w := newWorld()
	w.addExpiredNoShow(77, 500, 42)

	_, err := w.svc.RunOnce(context.Background())
	require.NoError(t, err)

	require.Len(t, w.mq.Published, 1)
	assert.Equal(t, CancellationSubject, w.mq.Published[0].Subject)

	var detail domain.EmailDetail
	require.NoError(t, json.Unmarshal(w.mq.Published[0].Data, &detail))
	assert.Equal(t, "driver@example.com", detail.Recipient)
	assert.Equal(t, "Nguyen Van A", detail.FullName)
	assert.Equal(t, int64(500), detail.BookingID)
	assert.Equal(t, "District 1 Hub", detail.StationName)
	assert.Equal(t, "not provided", detail.StationContact)
	assert.Equal(t, "14:00 - 20/06/2025", detail.BookingTime)
	assert.Equal(t, string(domain.BookingStatusCancelled), detail.Status)
}

func TestRunOnceSelfHealsOrphanedBattery(t *testing.T) {
	w := newWorld()
	expiry := sweepTime.Add(-time.Minute)
	w.batteries[88] = &domain.Battery{
		ID:                88,
		Status:            domain.BatteryStatusPending,
		ReservationExpiry: &expiry,
		// ReservedForBookingID nil: inconsistent row
	}

	summary, err := w.svc.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.BatteriesScanned)
	assert.Equal(t, 0, summary.BookingsCancelled)
	assert.Equal(t, domain.BatteryStatusAvailable, w.batteries[88].Status)
	assert.Empty(t, w.subs.DeductedDrivers)
	assert.Empty(t, w.mq.Published)
}

func TestRunOnceSelfHealsMissingBooking(t *testing.T) {
	w := newWorld()
	missingID := int64(999)
	expiry := sweepTime.Add(-time.Minute)
	w.batteries[88] = &domain.Battery{
		ID:                   88,
		Status:               domain.BatteryStatusPending,
		ReservedForBookingID: &missingID,
		ReservationExpiry:    &expiry,
	}

	summary, err := w.svc.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.BookingsCancelled)
	assert.Equal(t, domain.BatteryStatusAvailable, w.batteries[88].Status)
}

func TestRunOnceSkipsAlreadyCancelledBooking(t *testing.T) {
	w := newWorld()
	w.addExpiredNoShow(77, 500, 42)
	w.bookings[500].Status = domain.BookingStatusCancelled

	summary, err := w.svc.RunOnce(context.Background())
	require.NoError(t, err)

	// Battery is still released, but nothing is cancelled or deducted again.
	assert.Equal(t, 0, summary.BookingsCancelled)
	assert.Equal(t, domain.BatteryStatusAvailable, w.batteries[77].Status)
	assert.Empty(t, w.subs.DeductedDrivers)
	assert.Empty(t, w.mq.Published)
}

func TestRunOnceIsolatesPerBatteryFailures(t *testing.T) {
	w := newWorld()
	w.addExpiredNoShow(77, 500, 42)
	w.addExpiredNoShow(78, 501, 43)

	failedBooking := int64(500)
	baseSave := w.bookingRepo.SaveFunc
	w.bookingRepo.SaveFunc = func(ctx context.Context, booking *domain.Booking) error {
		if booking.ID == failedBooking {
			return errors.New("storage down")
		}
		return baseSave(ctx, booking)
	}

	summary, err := w.svc.RunOnce(context.Background())
	require.NoError(t, err, "per-battery failures must not abort the sweep")

	assert.Equal(t, 2, summary.BatteriesScanned)
	assert.Equal(t, 1, summary.BookingsCancelled)
	assert.Equal(t, domain.BookingStatusCancelled, w.bookings[501].Status)
}

func TestRunOnceDeductionFailureStillCancels(t *testing.T) {
	w := newWorld()
	w.addExpiredNoShow(77, 500, 42)
	w.subs.DeductSwapFunc = func(ctx context.Context, driverID int64) error {
		return errors.New("subscription storage down")
	}

	summary, err := w.svc.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.BookingsCancelled)
	assert.Equal(t, domain.BookingStatusCancelled, w.bookings[500].Status)
	assert.Equal(t, domain.BatteryStatusAvailable, w.batteries[77].Status)
}
