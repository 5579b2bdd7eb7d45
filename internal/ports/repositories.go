package ports

import (
	"context"
	"time"

	"github.com/evbs/battery-swap-backend/internal/domain"
)

// UnitOfWork runs fn inside one storage transaction. Repository calls made
// with the ctx passed to fn share that transaction; fn returning an error
// rolls everything back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserRepository interface {
	Save(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

type StationRepository interface {
	Save(ctx context.Context, station *domain.Station) error
	FindByID(ctx context.Context, id int64) (*domain.Station, error)
	FindAll(ctx context.Context) ([]domain.Station, error)
	Delete(ctx context.Context, id int64) error
}

type BatteryRepository interface {
	Save(ctx context.Context, battery *domain.Battery) error
	FindByID(ctx context.Context, id int64) (*domain.Battery, error)
	FindAll(ctx context.Context) ([]domain.Battery, error)
	// FindExpiredPending returns batteries with status PENDING whose
	// reservation expiry is strictly before now.
	FindExpiredPending(ctx context.Context, now time.Time) ([]domain.Battery, error)
	// FindAvailableAtStation returns one AVAILABLE battery of the given type
	// at the station, or nil.
	FindAvailableAtStation(ctx context.Context, stationID, batteryTypeID int64) (*domain.Battery, error)
}

type BookingRepository interface {
	Save(ctx context.Context, booking *domain.Booking) error
	FindByID(ctx context.Context, id int64) (*domain.Booking, error)
	FindByDriverID(ctx context.Context, driverID int64) ([]domain.Booking, error)
	FindByConfirmationCode(ctx context.Context, code string) (*domain.Booking, error)
}

type ServicePackageRepository interface {
	Save(ctx context.Context, pkg *domain.ServicePackage) error
	FindByID(ctx context.Context, id int64) (*domain.ServicePackage, error)
	FindAll(ctx context.Context) ([]domain.ServicePackage, error)
	Delete(ctx context.Context, id int64) error
}

type SubscriptionRepository interface {
	Save(ctx context.Context, sub *domain.DriverSubscription) error
	FindByID(ctx context.Context, id int64) (*domain.DriverSubscription, error)
	FindByDriverID(ctx context.Context, driverID int64) ([]domain.DriverSubscription, error)
	FindAll(ctx context.Context) ([]domain.DriverSubscription, error)
	// FindActiveByDriver returns the driver's ACTIVE subscription with
	// end_date >= the given day, or nil.
	FindActiveByDriver(ctx context.Context, driverID int64, day time.Time) (*domain.DriverSubscription, error)
	// FindActiveByDriverForUpdate is FindActiveByDriver with a row lock; it
	// must be called inside a UnitOfWork transaction so concurrent
	// read-modify-write sequences on the same driver serialize.
	FindActiveByDriverForUpdate(ctx context.Context, driverID int64, day time.Time) (*domain.DriverSubscription, error)
}

type PaymentRepository interface {
	Save(ctx context.Context, payment *domain.Payment) error
	FindByID(ctx context.Context, id int64) (*domain.Payment, error)
	FindBySubscriptionID(ctx context.Context, subscriptionID int64) ([]domain.Payment, error)
}

type VehicleRepository interface {
	Save(ctx context.Context, vehicle *domain.Vehicle) error
	FindByID(ctx context.Context, id int64) (*domain.Vehicle, error)
	FindByDriverID(ctx context.Context, driverID int64) ([]domain.Vehicle, error)
}

type BatteryTypeRepository interface {
	Save(ctx context.Context, bt *domain.BatteryType) error
	FindByID(ctx context.Context, id int64) (*domain.BatteryType, error)
	FindAll(ctx context.Context) ([]domain.BatteryType, error)
}

// Cache is a generic key/value cache with TTL.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping() error
	Close() error
}
