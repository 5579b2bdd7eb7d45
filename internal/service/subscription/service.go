package subscription

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/evbs/battery-swap-backend/internal/domain"
	"github.com/evbs/battery-swap-backend/internal/observability/telemetry"
	"github.com/evbs/battery-swap-backend/internal/ports"
)

// Service is the subscription lifecycle manager. Every mutation runs as one
// unit of work around a locked read of the driver's active subscription, so
// concurrent deductions or replacements for the same driver serialize.
type Service struct {
	subRepo  ports.SubscriptionRepository
	pkgRepo  ports.ServicePackageRepository
	userRepo ports.UserRepository
	uow      ports.UnitOfWork
	now      func() time.Time
	log      *zap.Logger
}

// NewService creates a new subscription service. now is injectable for tests;
// nil means the wall clock.
func NewService(
	subRepo ports.SubscriptionRepository,
	pkgRepo ports.ServicePackageRepository,
	userRepo ports.UserRepository,
	uow ports.UnitOfWork,
	now func() time.Time,
	log *zap.Logger,
) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		subRepo:  subRepo,
		pkgRepo:  pkgRepo,
		userRepo: userRepo,
		uow:      uow,
		now:      now,
		log:      log,
	}
}

// CreateAfterPayment activates a subscription once payment is confirmed. An
// existing active subscription with swaps left blocks the purchase; one that
// is active but exhausted is expired first.
func (s *Service) CreateAfterPayment(ctx context.Context, driverID, packageID int64) (*domain.DriverSubscription, error) {
	driver, err := s.userRepo.FindByID(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("failed to find driver: %w", err)
	}
	if driver == nil {
		return nil, fmt.Errorf("%w: driver %d", domain.ErrNotFound, driverID)
	}

	pkg, err := s.pkgRepo.FindByID(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("failed to find service package: %w", err)
	}
	if pkg == nil {
		return nil, fmt.Errorf("%w: service package %d", domain.ErrNotFound, packageID)
	}

	var created *domain.DriverSubscription
	err = s.uow.Do(ctx, func(ctx context.Context) error {
		today := domain.Midnight(s.now())

		existing, err := s.subRepo.FindActiveByDriverForUpdate(ctx, driverID, today)
		if err != nil {
			return fmt.Errorf("failed to look up active subscription: %w", err)
		}
		if existing != nil {
			if existing.HasSwapsLeft() {
				return fmt.Errorf("%w: existing active subscription blocks purchase: package %q, %d swaps remaining, expires %s",
					domain.ErrConflict, s.packageName(ctx, existing.ServicePackageID), existing.RemainingSwaps, existing.EndDate.Format("2006-01-02"))
			}

			existing.Status = domain.SubscriptionStatusExpired
			existing.UpdatedAt = s.now()
			if err := s.subRepo.Save(ctx, existing); err != nil {
				return fmt.Errorf("failed to expire exhausted subscription: %w", err)
			}
			s.log.Info("Expired exhausted subscription before new purchase",
				zap.Int64("subscription_id", existing.ID),
				zap.Int64("driver_id", driverID),
			)
		}

		created = s.newSubscription(driverID, pkg, today, today.AddDate(0, 0, pkg.Duration), pkg.MaxSwaps)
		if err := s.subRepo.Save(ctx, created); err != nil {
			return fmt.Errorf("failed to save subscription: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.SubscriptionOpsTotal.WithLabelValues("create", "error").Inc()
		return nil, err
	}

	telemetry.SubscriptionOpsTotal.WithLabelValues("create", "ok").Inc()
	s.log.Info("Subscription created after payment",
		zap.Int64("subscription_id", created.ID),
		zap.Int64("driver_id", driverID),
		zap.String("package", pkg.Name),
		zap.Int("max_swaps", pkg.MaxSwaps),
	)
	return created, nil
}

// DeductSwap consumes one swap from the driver's active subscription. A
// missing subscription or an exhausted allowance is logged and skipped; the
// decrement that reaches zero expires the subscription in the same write.
func (s *Service) DeductSwap(ctx context.Context, driverID int64) error {
	return s.uow.Do(ctx, func(ctx context.Context) error {
		today := domain.Midnight(s.now())

		sub, err := s.subRepo.FindActiveByDriverForUpdate(ctx, driverID, today)
		if err != nil {
			return fmt.Errorf("failed to look up active subscription: %w", err)
		}
		if sub == nil {
			s.log.Warn("No active subscription to deduct from", zap.Int64("driver_id", driverID))
			return nil
		}
		if !sub.HasSwapsLeft() {
			s.log.Warn("Subscription already exhausted, nothing to deduct",
				zap.Int64("subscription_id", sub.ID),
				zap.Int64("driver_id", driverID),
			)
			return nil
		}

		before := sub.RemainingSwaps
		sub.RemainingSwaps--
		sub.UpdatedAt = s.now()
		if sub.RemainingSwaps == 0 {
			sub.Status = domain.SubscriptionStatusExpired
			s.log.Info("Subscription exhausted, expiring",
				zap.Int64("subscription_id", sub.ID),
				zap.Int64("driver_id", driverID),
			)
		}

		if err := s.subRepo.Save(ctx, sub); err != nil {
			return fmt.Errorf("failed to save subscription: %w", err)
		}

		telemetry.SwapDeductionsTotal.Inc()
		s.log.Info("Swap deducted",
			zap.Int64("driver_id", driverID),
			zap.Int("remaining_before", before),
			zap.Int("remaining_after", sub.RemainingSwaps),
		)
		return nil
	})
}

// EvaluateUpgrade prices an upgrade for the driver's active subscription.
func (s *Service) EvaluateUpgrade(ctx context.Context, driverID, newPackageID int64) (*ports.UpgradeEvaluation, error) {
	sub, current, next, err := s.loadChangeInputs(ctx, driverID, newPackageID)
	if err != nil {
		return nil, err
	}
	return EvaluateUpgrade(sub, current, next, s.now())
}

// UpgradeAfterPayment expires the active subscription today, forfeiting its
// remaining swaps, and creates a full subscription on the new package. The
// upgrade price was already settled through the payment flow.
func (s *Service) UpgradeAfterPayment(ctx context.Context, driverID, newPackageID int64) (*domain.DriverSubscription, error) {
	newPkg, err := s.pkgRepo.FindByID(ctx, newPackageID)
	if err != nil {
		return nil, fmt.Errorf("failed to find service package: %w", err)
	}
	if newPkg == nil {
		return nil, fmt.Errorf("%w: service package %d", domain.ErrNotFound, newPackageID)
	}

	var created *domain.DriverSubscription
	err = s.uow.Do(ctx, func(ctx context.Context) error {
		today := domain.Midnight(s.now())

		old, err := s.subRepo.FindActiveByDriverForUpdate(ctx, driverID, today)
		if err != nil {
			return fmt.Errorf("failed to look up active subscription: %w", err)
		}
		if old == nil {
			return fmt.Errorf("%w: no active subscription to upgrade for driver %d", domain.ErrNotFound, driverID)
		}

		forfeited := old.RemainingSwaps
		old.Status = domain.SubscriptionStatusExpired
		old.EndDate = today
		old.UpdatedAt = s.now()
		if err := s.subRepo.Save(ctx, old); err != nil {
			return fmt.Errorf("failed to expire old subscription: %w", err)
		}
		s.log.Info("Old subscription expired for upgrade, remaining swaps forfeited",
			zap.Int64("subscription_id", old.ID),
			zap.Int("forfeited_swaps", forfeited),
		)

		created = s.newSubscription(driverID, newPkg, today, today.AddDate(0, 0, newPkg.Duration), newPkg.MaxSwaps)
		if err := s.subRepo.Save(ctx, created); err != nil {
			return fmt.Errorf("failed to save upgraded subscription: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.SubscriptionOpsTotal.WithLabelValues("upgrade", "error").Inc()
		return nil, err
	}

	telemetry.SubscriptionOpsTotal.WithLabelValues("upgrade", "ok").Inc()
	s.log.Info("Subscription upgraded",
		zap.Int64("driver_id", driverID),
		zap.Int64("subscription_id", created.ID),
		zap.String("package", newPkg.Name),
	)
	return created, nil
}

// EvaluateDowngrade computes downgrade eligibility, penalty, and extension.
func (s *Service) EvaluateDowngrade(ctx context.Context, driverID, newPackageID int64) (*ports.DowngradeEvaluation, error) {
	sub, current, next, err := s.loadChangeInputs(ctx, driverID, newPackageID)
	if err != nil {
		return nil, err
	}
	return EvaluateDowngrade(sub, current, next, s.now()), nil
}

// Downgrade replaces the active subscription with one on the smaller package,
// carrying over the penalty-adjusted swap count and the extended term the
// proration engine computed. No money moves.
func (s *Service) Downgrade(ctx context.Context, driverID, newPackageID int64) (*domain.DriverSubscription, error) {
	eval, err := s.EvaluateDowngrade(ctx, driverID, newPackageID)
	if err != nil {
		return nil, err
	}
	if !eval.CanDowngrade {
		telemetry.SubscriptionOpsTotal.WithLabelValues("downgrade", "rejected").Inc()
		return nil, fmt.Errorf("%w: cannot downgrade: %s", domain.ErrInvalidState, eval.Reason)
	}

	newPkg, err := s.pkgRepo.FindByID(ctx, newPackageID)
	if err != nil {
		return nil, fmt.Errorf("failed to find service package: %w", err)
	}
	if newPkg == nil {
		return nil, fmt.Errorf("%w: service package %d", domain.ErrNotFound, newPackageID)
	}

	var created *domain.DriverSubscription
	err = s.uow.Do(ctx, func(ctx context.Context) error {
		today := domain.Midnight(s.now())

		old, err := s.subRepo.FindActiveByDriverForUpdate(ctx, driverID, today)
		if err != nil {
			return fmt.Errorf("failed to look up active subscription: %w", err)
		}
		if old == nil {
			return fmt.Errorf("%w: no active subscription to downgrade for driver %d", domain.ErrNotFound, driverID)
		}

		old.Status = domain.SubscriptionStatusExpired
		old.EndDate = today
		old.UpdatedAt = s.now()
		if err := s.subRepo.Save(ctx, old); err != nil {
			return fmt.Errorf("failed to expire old subscription: %w", err)
		}

		created = s.newSubscription(driverID, newPkg, eval.NewStartDate, eval.NewEndDate, eval.FinalRemainingSwaps)
		if err := s.subRepo.Save(ctx, created); err != nil {
			return fmt.Errorf("failed to save downgraded subscription: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.SubscriptionOpsTotal.WithLabelValues("downgrade", "error").Inc()
		return nil, err
	}

	telemetry.SubscriptionOpsTotal.WithLabelValues("downgrade", "ok").Inc()
	s.log.Info("Subscription downgraded",
		zap.Int64("driver_id", driverID),
		zap.Int64("subscription_id", created.ID),
		zap.Int("penalty_swaps", eval.PenaltySwaps),
		zap.Int("final_swaps", eval.FinalRemainingSwaps),
		zap.Int("extension_days", eval.ExtensionDays),
	)
	return created, nil
}

// GetByDriver returns all of a driver's subscriptions, newest first.
func (s *Service) GetByDriver(ctx context.Context, driverID int64) ([]domain.DriverSubscription, error) {
	return s.subRepo.FindByDriverID(ctx, driverID)
}

// GetAll returns every subscription (admin surface).
func (s *Service) GetAll(ctx context.Context) ([]domain.DriverSubscription, error) {
	return s.subRepo.FindAll(ctx)
}

// Cancel administratively terminates a subscription. Only ACTIVE
// subscriptions can be cancelled; EXPIRED and CANCELLED are terminal.
func (s *Service) Cancel(ctx context.Context, id int64) error {
	sub, err := s.subRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find subscription: %w", err)
	}
	if sub == nil {
		return fmt.Errorf("%w: subscription %d", domain.ErrNotFound, id)
	}
	if sub.Status != domain.SubscriptionStatusActive {
		return fmt.Errorf("%w: cannot cancel subscription in status %s", domain.ErrInvalidState, sub.Status)
	}

	sub.Status = domain.SubscriptionStatusCancelled
	sub.UpdatedAt = s.now()
	if err := s.subRepo.Save(ctx, sub); err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}

	s.log.Info("Subscription cancelled", zap.Int64("subscription_id", id))
	return nil
}

// loadChangeInputs gathers the active subscription and both package rows for
// an upgrade/downgrade evaluation.
func (s *Service) loadChangeInputs(ctx context.Context, driverID, newPackageID int64) (*domain.DriverSubscription, *domain.ServicePackage, *domain.ServicePackage, error) {
	sub, err := s.subRepo.FindActiveByDriver(ctx, driverID, domain.Midnight(s.now()))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to look up active subscription: %w", err)
	}
	if sub == nil {
		return nil, nil, nil, fmt.Errorf("%w: no active subscription for driver %d; buy a package instead of changing one", domain.ErrNotFound, driverID)
	}

	current, err := s.pkgRepo.FindByID(ctx, sub.ServicePackageID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to find current package: %w", err)
	}
	if current == nil {
		return nil, nil, nil, fmt.Errorf("%w: service package %d", domain.ErrNotFound, sub.ServicePackageID)
	}

	next, err := s.pkgRepo.FindByID(ctx, newPackageID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to find new package: %w", err)
	}
	if next == nil {
		return nil, nil, nil, fmt.Errorf("%w: service package %d", domain.ErrNotFound, newPackageID)
	}

	return sub, current, next, nil
}

func (s *Service) newSubscription(driverID int64, pkg *domain.ServicePackage, start, end time.Time, swaps int) *domain.DriverSubscription {
	return &domain.DriverSubscription{
		DriverID:         driverID,
		ServicePackageID: pkg.ID,
		StartDate:        start,
		EndDate:          end,
		Status:           domain.SubscriptionStatusActive,
		RemainingSwaps:   swaps,
		CreatedAt:        s.now(),
		UpdatedAt:        s.now(),
	}
}

func (s *Service) packageName(ctx context.Context, packageID int64) string {
	pkg, err := s.pkgRepo.FindByID(ctx, packageID)
	if err != nil || pkg == nil {
		return fmt.Sprintf("#%d", packageID)
	}
	return pkg.Name
}
