package mocks

import (
	"context"

	"github.com/evbs/battery-swap-backend/internal/domain"
	"github.com/evbs/battery-swap-backend/internal/ports"
)

// MockSubscriptionService is a mock implementation of
// ports.SubscriptionService.
type MockSubscriptionService struct {
	CreateAfterPaymentFunc  func(ctx context.Context, driverID, packageID int64) (*domain.DriverSubscription, error)
	DeductSwapFunc          func(ctx context.Context, driverID int64) error
	EvaluateUpgradeFunc     func(ctx context.Context, driverID, newPackageID int64) (*ports.UpgradeEvaluation, error)
	UpgradeAfterPaymentFunc func(ctx context.Context, driverID, newPackageID int64) (*domain.DriverSubscription, error)
	EvaluateDowngradeFunc   func(ctx context.Context, driverID, newPackageID int64) (*ports.DowngradeEvaluation, error)
	DowngradeFunc           func(ctx context.Context, driverID, newPackageID int64) (*domain.DriverSubscription, error)
	GetByDriverFunc         func(ctx context.Context, driverID int64) ([]domain.DriverSubscription, error)
	GetAllFunc              func(ctx context.Context) ([]domain.DriverSubscription, error)
	CancelFunc              func(ctx context.Context, id int64) error

	DeductedDrivers []int64
}

func (m *MockSubscriptionService) CreateAfterPayment(ctx context.Context, driverID, packageID int64) (*domain.DriverSubscription, error) {
	if m.CreateAfterPaymentFunc != nil {
		return m.CreateAfterPaymentFunc(ctx, driverID, packageID)
	}
	return nil, nil
}

func (m *MockSubscriptionService) DeductSwap(ctx context.Context, driverID int64) error {
	m.DeductedDrivers = append(m.DeductedDrivers, driverID)
	if m.DeductSwapFunc != nil {
		return m.DeductSwapFunc(ctx, driverID)
	}
	return nil
}

func (m *MockSubscriptionService) EvaluateUpgrade(ctx context.Context, driverID, newPackageID int64) (*ports.UpgradeEvaluation, error) {
	if m.EvaluateUpgradeFunc != nil {
		return m.EvaluateUpgradeFunc(ctx, driverID, newPackageID)
	}
	return nil, nil
}

func (m *MockSubscriptionService) UpgradeAfterPayment(ctx context.Context, driverID, newPackageID int64) (*domain.DriverSubscription, error) {
	if m.UpgradeAfterPaymentFunc != nil {
		return m.UpgradeAfterPaymentFunc(ctx, driverID, newPackageID)
	}
	return nil, nil
}

func (m *MockSubscriptionService) EvaluateDowngrade(ctx context.Context, driverID, newPackageID int64) (*ports.DowngradeEvaluation, error) {
	if m.EvaluateDowngradeFunc != nil {
		return m.EvaluateDowngradeFunc(ctx, driverID, newPackageID)
	}
	return nil, nil
}

func (m *MockSubscriptionService) Downgrade(ctx context.Context, driverID, newPackageID int64) (*domain.DriverSubscription, error) {
	if m.DowngradeFunc != nil {
		return m.DowngradeFunc(ctx, driverID, newPackageID)
	}
	return nil, nil
}

func (m *MockSubscriptionService) GetByDriver(ctx context.Context, driverID int64) ([]domain.DriverSubscription, error) {
	if m.GetByDriverFunc != nil {
		return m.GetByDriverFunc(ctx, driverID)
	}
	return nil, nil
}

func (m *MockSubscriptionService) GetAll(ctx context.Context) ([]domain.DriverSubscription, error) {
	if m.GetAllFunc != nil {
		return m.GetAllFunc(ctx)
	}
	return nil, nil
}

func (m *MockSubscriptionService) Cancel(ctx context.Context, id int64) error {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, id)
	}
	return nil
}

// MockNotificationSender is a mock implementation of ports.NotificationSender.
type MockNotificationSender struct {
	SendBookingCancellationFunc func(ctx context.Context, detail *domain.EmailDetail) error

	Sent []*domain.EmailDetail
}

func (m *MockNotificationSender) SendBookingCancellation(ctx context.Context, detail *domain.EmailDetail) error {
	m.Sent = append(m.Sent, detail)
	if m.SendBookingCancellationFunc != nil {
		return m.SendBookingCancellationFunc(ctx, detail)
	}
	return nil
}
