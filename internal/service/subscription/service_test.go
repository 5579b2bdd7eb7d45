package subscription

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/evbs/battery-swap-backend/internal/domain"
	"github.com/evbs/battery-swap-backend/internal/mocks"
)

func fixedNow() time.Time { return today }

type lifecycleFixture struct {
	subRepo  *mocks.MockSubscriptionRepository
	pkgRepo  *mocks.MockServicePackageRepository
	userRepo *mocks.MockUserRepository
	svc      *Service

	saved []*domain.DriverSubscription
}

func newLifecycleFixture() *lifecycleFixture {
	f := &lifecycleFixture{
		subRepo:  &mocks.MockSubscriptionRepository{},
		pkgRepo:  &mocks.MockServicePackageRepository{},
		userRepo: &mocks.MockUserRepository{},
	}
	f.subRepo.SaveFunc = func(ctx context.Context, sub *domain.DriverSubscription) error {
		if sub.ID == 0 {
			sub.ID = int64(100 + len(f.saved))
		}
		f.saved = append(f.saved, sub)
		return nil
	}
	f.userRepo.FindByIDFunc = func(ctx context.Context, id int64) (*domain.User, error) {
		return &domain.User{ID: id, Role: domain.UserRoleDriver, Status: domain.UserStatusActive}, nil
	}
	f.svc = NewService(f.subRepo, f.pkgRepo, f.userRepo, &mocks.MockUnitOfWork{}, fixedNow, zap.NewNop())
	return f
}

func (f *lifecycleFixture) withPackages(pkgs ...*domain.ServicePackage) {
	f.pkgRepo.FindByIDFunc = func(ctx context.Context, id int64) (*domain.ServicePackage, error) {
		for _, p := range pkgs {
			if p.ID == id {
				return p, nil
			}
		}
		return nil, nil
	}
}

func (f *lifecycleFixture) withActive(sub *domain.DriverSubscription) {
	f.subRepo.FindActiveByDriverFunc = func(ctx context.Context, driverID int64, day time.Time) (*domain.DriverSubscription, error) {
		if sub != nil && sub.DriverID == driverID && sub.IsActiveOn(day) {
			return sub, nil
		}
		return nil, nil
	}
}

func TestCreateAfterPayment(t *testing.T) {
	f := newLifecycleFixture()
	basic := pkg(1, "Basic", 400000, 20, 30)
	f.withPackages(basic)
	f.withActive(nil)

	created, err := f.svc.CreateAfterPayment(context.Background(), 42, 1)
	require.NoError(t, err)

	assert.Equal(t, domain.SubscriptionStatusActive, created.Status)
	assert.Equal(t, 20, created.RemainingSwaps)
	assert.Equal(t, domain.Midnight(today), created.StartDate)
	assert.Equal(t, domain.Midnight(today).AddDate(0, 0, 30), created.EndDate)
}

func TestCreateAfterPaymentBlockedByActiveSubscription(t *testing.T) {
	f := newLifecycleFixture()
	basic := pkg(1, "Basic", 400000, 20, 30)
	f.withPackages(basic)
	f.withActive(subscriptionWith(5, basic))
	f.subRepo.FindActiveByDriverFunc = func(ctx context.Context, driverID int64, day time.Time) (*domain.DriverSubscription, error) {
		return subscriptionWith(5, basic), nil
	}

	_, err := f.svc.CreateAfterPayment(context.Background(), 42, 1)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Empty(t, f.saved)
}

func TestCreateAfterPaymentExpiresExhaustedSubscription(t *testing.T) {
	f := newLifecycleFixture()
	basic := pkg(1, "Basic", 400000, 20, 30)
	f.withPackages(basic)

	exhausted := subscriptionWith(0, basic)
	f.subRepo.FindActiveByDriverFunc = func(ctx context.Context, driverID int64, day time.Time) (*domain.DriverSubscription, error) {
		return exhausted, nil
	}

	created, err := f.svc.CreateAfterPayment(context.Background(), 42, 1)
	require.NoError(t, err)

	assert.Equal(t, domain.SubscriptionStatusExpired, exhausted.Status)
	assert.Equal(t, 20, created.RemainingSwaps)
	require.Len(t, f.saved, 2)
}

func TestCreateAfterPaymentUnknownDriver(t *testing.T) {
	f := newLifecycleFixture()
	f.userRepo.FindByIDFunc = func(ctx context.Context, id int64) (*domain.User, error) {
		return nil, nil
	}

	_, err := f.svc.CreateAfterPayment(context.Background(), 42, 1)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDeductSwapDecrementsAndExpiresAtZero(t *testing.T) {
	f := newLifecycleFixture()
	basic := pkg(1, "Basic", 400000, 20, 30)
	sub := subscriptionWith(1, basic)
	f.subRepo.FindActiveByDriverFunc = func(ctx context.Context, driverID int64, day time.Time) (*domain.DriverSubscription, error) {
		return sub, nil
	}

	require.NoError(t, f.svc.DeductSwap(context.Background(), 42))

	assert.Equal(t, 0, sub.RemainingSwaps)
	assert.Equal(t, domain.SubscriptionStatusExpired, sub.Status)
	require.Len(t, f.saved, 1)
}

func TestDeductSwapNoActiveSubscriptionIsNoOp(t *testing.T) {
	f := newLifecycleFixture()
	f.withActive(nil)

	require.NoError(t, f.svc.DeductSwap(context.Background(), 42))
	assert.Empty(t, f.saved)
}

func TestDeductSwapExhaustedIsNoOp(t *testing.T) {
	f := newLifecycleFixture()
	basic := pkg(1, "Basic", 400000, 20, 30)
	sub := subscriptionWith(0, basic)
	f.subRepo.FindActiveByDriverFunc = func(ctx context.Context, driverID int64, day time.Time) (*domain.DriverSubscription, error) {
		return sub, nil
	}

	require.NoError(t, f.svc.DeductSwap(context.Background(), 42))
	assert.Equal(t, 0, sub.RemainingSwaps)
	assert.Empty(t, f.saved)
}

func TestUpgradeAfterPaymentForfeitsRemainingSwaps(t *testing.T) {
	f := newLifecycleFixture()
	basic := pkg(1, "Basic", 400000, 20, 30)
	premium := pkg(2, "Premium", 800000, 50, 30)
	f.withPackages(basic, premium)

	old := subscriptionWith(15, basic)
	f.subRepo.FindActiveByDriverFunc = func(ctx context.Context, driverID int64, day time.Time) (*domain.DriverSubscription, error) {
		if old.Status == domain.SubscriptionStatusActive {
			return old, nil
		}
		return nil, nil
	}

	created, err := f.svc.UpgradeAfterPayment(context.Background(), 42, 2)
	require.NoError(t, err)

	assert.Equal(t, domain.SubscriptionStatusExpired, old.Status)
	assert.Equal(t, domain.Midnight(today), old.EndDate)
	assert.Equal(t, 50, created.RemainingSwaps)
	assert.Equal(t, int64(2), created.ServicePackageID)
}

func TestUpgradeAfterPaymentNoActiveSubscription(t *testing.T) {
	f := newLifecycleFixture()
	premium := pkg(2, "Premium", 800000, 50, 30)
	f.withPackages(premium)
	f.withActive(nil)

	_, err := f.svc.UpgradeAfterPayment(context.Background(), 42, 2)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDowngradeUsesEvaluationResults(t *testing.T) {
	f := newLifecycleFixture()
	premium := pkg(1, "Premium", 800000, 50, 30)
	basic := pkg(2, "Basic", 400000, 30, 30)
	f.withPackages(premium, basic)

	old := subscriptionWith(27, premium)
	f.subRepo.FindActiveByDriverFunc = func(ctx context.Context, driverID int64, day time.Time) (*domain.DriverSubscription, error) {
		if old.Status == domain.SubscriptionStatusActive {
			return old, nil
		}
		return nil, nil
	}

	created, err := f.svc.Downgrade(context.Background(), 42, 2)
	require.NoError(t, err)

	assert.Equal(t, domain.SubscriptionStatusExpired, old.Status)
	assert.Equal(t, 24, created.RemainingSwaps)
	assert.Equal(t, domain.Midnight(today), created.StartDate)
	assert.Equal(t, domain.Midnight(today).AddDate(0, 0, 24), created.EndDate)
}

func TestDowngradeRejectedWhenTooManySwapsRemain(t *testing.T) {
	f := newLifecycleFixture()
	premium := pkg(1, "Premium", 800000, 60, 30)
	basic := pkg(2, "Basic", 400000, 30, 30)
	f.withPackages(premium, basic)
	f.withActive(subscriptionWith(50, premium))

	_, err := f.svc.Downgrade(context.Background(), 42, 2)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
	assert.Empty(t, f.saved)
}

func TestCancelOnlyActive(t *testing.T) {
	f := newLifecycleFixture()
	basic := pkg(1, "Basic", 400000, 20, 30)

	active := subscriptionWith(5, basic)
	f.subRepo.FindByIDFunc = func(ctx context.Context, id int64) (*domain.DriverSubscription, error) {
		return active, nil
	}

	require.NoError(t, f.svc.Cancel(context.Background(), 1))
	assert.Equal(t, domain.SubscriptionStatusCancelled, active.Status)

	// Terminal states cannot be cancelled again.
	err := f.svc.Cancel(context.Background(), 1)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
}
