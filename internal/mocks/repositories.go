package mocks

import (
	"context"
	"time"

	"github.com/evbs/battery-swap-backend/internal/domain"
)

// MockUnitOfWork runs the function directly; tests that need rollback
// behavior set DoFunc.
type MockUnitOfWork struct {
	DoFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *MockUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.DoFunc != nil {
		return m.DoFunc(ctx, fn)
	}
	return fn(ctx)
}

// MockUserRepository is a mock implementation of ports.UserRepository.
type MockUserRepository struct {
	SaveFunc        func(ctx context.Context, user *domain.User) error
	FindByIDFunc    func(ctx context.Context, id int64) (*domain.User, error)
	FindByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
}

func (m *MockUserRepository) Save(ctx context.Context, user *domain.User) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, nil
}

// MockStationRepository is a mock implementation of ports.StationRepository.
type MockStationRepository struct {
	SaveFunc     func(ctx context.Context, station *domain.Station) error
	FindByIDFunc func(ctx context.Context, id int64) (*domain.Station, error)
	FindAllFunc  func(ctx context.Context) ([]domain.Station, error)
	DeleteFunc   func(ctx context.Context, id int64) error
}

func (m *MockStationRepository) Save(ctx context.Context, station *domain.Station) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, station)
	}
	return nil
}

func (m *MockStationRepository) FindByID(ctx context.Context, id int64) (*domain.Station, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockStationRepository) FindAll(ctx context.Context) ([]domain.Station, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx)
	}
	return nil, nil
}

func (m *MockStationRepository) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockBatteryRepository is a mock implementation of ports.BatteryRepository.
type MockBatteryRepository struct {
	SaveFunc                   func(ctx context.Context, battery *domain.Battery) error
	FindByIDFunc               func(ctx context.Context, id int64) (*domain.Battery, error)
	FindAllFunc                func(ctx context.Context) ([]domain.Battery, error)
	FindExpiredPendingFunc     func(ctx context.Context, now time.Time) ([]domain.Battery, error)
	FindAvailableAtStationFunc func(ctx context.Context, stationID, batteryTypeID int64) (*domain.Battery, error)
}

func (m *MockBatteryRepository) Save(ctx context.Context, battery *domain.Battery) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, battery)
	}
	return nil
}

func (m *MockBatteryRepository) FindByID(ctx context.Context, id int64) (*domain.Battery, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockBatteryRepository) FindAll(ctx context.Context) ([]domain.Battery, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx)
	}
	return nil, nil
}

func (m *MockBatteryRepository) FindExpiredPending(ctx context.Context, now time.Time) ([]domain.Battery, error) {
	if m.FindExpiredPendingFunc != nil {
		return m.FindExpiredPendingFunc(ctx, now)
	}
	return nil, nil
}

func (m *MockBatteryRepository) FindAvailableAtStation(ctx context.Context, stationID, batteryTypeID int64) (*domain.Battery, error) {
	if m.FindAvailableAtStationFunc != nil {
		return m.FindAvailableAtStationFunc(ctx, stationID, batteryTypeID)
	}
	return nil, nil
}

// MockBookingRepository is a mock implementation of ports.BookingRepository.
type MockBookingRepository struct {
	SaveFunc                   func(ctx context.Context, booking *domain.Booking) error
	FindByIDFunc               func(ctx context.Context, id int64) (*domain.Booking, error)
	FindByDriverIDFunc         func(ctx context.Context, driverID int64) ([]domain.Booking, error)
	FindByConfirmationCodeFunc func(ctx context.Context, code string) (*domain.Booking, error)
}

func (m *MockBookingRepository) Save(ctx context.Context, booking *domain.Booking) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, booking)
	}
	return nil
}

func (m *MockBookingRepository) FindByID(ctx context.Context, id int64) (*domain.Booking, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockBookingRepository) FindByDriverID(ctx context.Context, driverID int64) ([]domain.Booking, error) {
	if m.FindByDriverIDFunc != nil {
		return m.FindByDriverIDFunc(ctx, driverID)
	}
	return nil, nil
}

func (m *MockBookingRepository) FindByConfirmationCode(ctx context.Context, code string) (*domain.Booking, error) {
	if m.FindByConfirmationCodeFunc != nil {
		return m.FindByConfirmationCodeFunc(ctx, code)
	}
	return nil, nil
}

// MockServicePackageRepository is a mock implementation of
// ports.ServicePackageRepository.
type MockServicePackageRepository struct {
	SaveFunc     func(ctx context.Context, pkg *domain.ServicePackage) error
	FindByIDFunc func(ctx context.Context, id int64) (*domain.ServicePackage, error)
	FindAllFunc  func(ctx context.Context) ([]domain.ServicePackage, error)
	DeleteFunc   func(ctx context.Context, id int64) error
}

func (m *MockServicePackageRepository) Save(ctx context.Context, pkg *domain.ServicePackage) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, pkg)
	}
	return nil
}

func (m *MockServicePackageRepository) FindByID(ctx context.Context, id int64) (*domain.ServicePackage, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockServicePackageRepository) FindAll(ctx context.Context) ([]domain.ServicePackage, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx)
	}
	return nil, nil
}

func (m *MockServicePackageRepository) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockSubscriptionRepository is a mock implementation of
// ports.SubscriptionRepository.
type MockSubscriptionRepository struct {
	SaveFunc                        func(ctx context.Context, sub *domain.DriverSubscription) error
	FindByIDFunc                    func(ctx context.Context, id int64) (*domain.DriverSubscription, error)
	FindByDriverIDFunc              func(ctx context.Context, driverID int64) ([]domain.DriverSubscription, error)
	FindAllFunc                     func(ctx context.Context) ([]domain.DriverSubscription, error)
	FindActiveByDriverFunc          func(ctx context.Context, driverID int64, day time.Time) (*domain.DriverSubscription, error)
	FindActiveByDriverForUpdateFunc func(ctx context.Context, driverID int64, day time.Time) (*domain.DriverSubscription, error)
}

func (m *MockSubscriptionRepository) Save(ctx context.Context, sub *domain.DriverSubscription) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, sub)
	}
	return nil
}

func (m *MockSubscriptionRepository) FindByID(ctx context.Context, id int64) (*domain.DriverSubscription, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockSubscriptionRepository) FindByDriverID(ctx context.Context, driverID int64) ([]domain.DriverSubscription, error) {
	if m.FindByDriverIDFunc != nil {
		return m.FindByDriverIDFunc(ctx, driverID)
	}
	return nil, nil
}

func (m *MockSubscriptionRepository) FindAll(ctx context.Context) ([]domain.DriverSubscription, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx)
	}
	return nil, nil
}

func (m *MockSubscriptionRepository) FindActiveByDriver(ctx context.Context, driverID int64, day time.Time) (*domain.DriverSubscription, error) {
	if m.FindActiveByDriverFunc != nil {
		return m.FindActiveByDriverFunc(ctx, driverID, day)
	}
	return nil, nil
}

func (m *MockSubscriptionRepository) FindActiveByDriverForUpdate(ctx context.Context, driverID int64, day time.Time) (*domain.DriverSubscription, error) {
	if m.FindActiveByDriverForUpdateFunc != nil {
		return m.FindActiveByDriverForUpdateFunc(ctx, driverID, day)
	}
	if m.FindActiveByDriverFunc != nil {
		return m.FindActiveByDriverFunc(ctx, driverID, day)
	}
	return nil, nil
}

// MockPaymentRepository is a mock implementation of ports.PaymentRepository.
type MockPaymentRepository struct {
	SaveFunc                 func(ctx context.Context, payment *domain.Payment) error
	FindByIDFunc             func(ctx context.Context, id int64) (*domain.Payment, error)
	FindBySubscriptionIDFunc func(ctx context.Context, subscriptionID int64) ([]domain.Payment, error)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *domain.Payment) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, payment)
	}
	return nil
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id int64) (*domain.Payment, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockPaymentRepository) FindBySubscriptionID(ctx context.Context, subscriptionID int64) ([]domain.Payment, error) {
	if m.FindBySubscriptionIDFunc != nil {
		return m.FindBySubscriptionIDFunc(ctx, subscriptionID)
	}
	return nil, nil
}

// MockVehicleRepository is a mock implementation of ports.VehicleRepository.
type MockVehicleRepository struct {
	SaveFunc           func(ctx context.Context, vehicle *domain.Vehicle) error
	FindByIDFunc       func(ctx context.Context, id int64) (*domain.Vehicle, error)
	FindByDriverIDFunc func(ctx context.Context, driverID int64) ([]domain.Vehicle, error)
}

func (m *MockVehicleRepository) Save(ctx context.Context, vehicle *domain.Vehicle) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, vehicle)
	}
	return nil
}

func (m *MockVehicleRepository) FindByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockVehicleRepository) FindByDriverID(ctx context.Context, driverID int64) ([]domain.Vehicle, error) {
	if m.FindByDriverIDFunc != nil {
		return m.FindByDriverIDFunc(ctx, driverID)
	}
	return nil, nil
}

// MockBatteryTypeRepository is a mock implementation of
// ports.BatteryTypeRepository.
type MockBatteryTypeRepository struct {
	SaveFunc     func(ctx context.Context, bt *domain.BatteryType) error
	FindByIDFunc func(ctx context.Context, id int64) (*domain.BatteryType, error)
	FindAllFunc  func(ctx context.Context) ([]domain.BatteryType, error)
}

func (m *MockBatteryTypeRepository) Save(ctx context.Context, bt *domain.BatteryType) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, bt)
	}
	return nil
}

func (m *MockBatteryTypeRepository) FindByID(ctx context.Context, id int64) (*domain.BatteryType, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockBatteryTypeRepository) FindAll(ctx context.Context) ([]domain.BatteryType, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx)
	}
	return nil, nil
}
