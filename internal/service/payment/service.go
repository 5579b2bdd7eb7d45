package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	momo "github.com/evbs/battery-swap-backend/internal/adapter/external/payment"
	"github.com/evbs/battery-swap-backend/internal/domain"
	"github.com/evbs/battery-swap-backend/internal/observability/telemetry"
	"github.com/evbs/battery-swap-backend/internal/ports"
)

const dateLayout = "2006-01-02"

// Gateway is the payment-provider client surface the service depends on.
type Gateway interface {
	CreatePayment(ctx context.Context, req momo.CreateRequest) (*momo.CreateResponse, error)
	VerifyCallback(params ports.CallbackParams) error
	IsSuccess(resultCode string) bool
}

// Service turns package purchases and upgrades into provider payment URLs and
// applies provider callbacks. The callback is the only authority for payment
// success; nothing is activated before it arrives.
type Service struct {
	gateway Gateway
	subs    ports.SubscriptionService
	pkgRepo ports.ServicePackageRepository
	subRepo ports.SubscriptionRepository
	payRepo ports.PaymentRepository
	now     func() time.Time
	log     *zap.Logger
}

func NewService(
	gateway Gateway,
	subs ports.SubscriptionService,
	pkgRepo ports.ServicePackageRepository,
	subRepo ports.SubscriptionRepository,
	payRepo ports.PaymentRepository,
	now func() time.Time,
	log *zap.Logger,
) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		gateway: gateway,
		subs:    subs,
		pkgRepo: pkgRepo,
		subRepo: subRepo,
		payRepo: payRepo,
		now:     now,
		log:     log,
	}
}

var _ ports.PaymentService = (*Service)(nil)

// CreatePaymentURL builds a signed provider payment request for a package
// purchase or upgrade. The driver and package identities ride along in
// extraData because the callback arrives without a session.
func (s *Service) CreatePaymentURL(ctx context.Context, driverID, packageID int64, redirectURL string, upgrade bool) (*ports.PaymentURL, error) {
	pkg, err := s.pkgRepo.FindByID(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, fmt.Errorf("%w: service package %d", domain.ErrNotFound, packageID)
	}

	var amount decimal.Decimal
	var orderInfo string
	if upgrade {
		eval, err := s.subs.EvaluateUpgrade(ctx, driverID, packageID)
		if err != nil {
			return nil, err
		}
		if !eval.TotalPayment.IsPositive() {
			return nil, fmt.Errorf("%w: upgrade to package %s requires no payment", domain.ErrInvalidState, pkg.Name)
		}
		amount = eval.TotalPayment
		orderInfo = fmt.Sprintf("Upgrade to package %s", pkg.Name)
	} else {
		active, err := s.subRepo.FindActiveByDriver(ctx, driverID, s.now())
		if err != nil {
			return nil, err
		}
		if active != nil && active.HasSwapsLeft() {
			return nil, fmt.Errorf("%w: driver %d already has an active subscription with %d swaps left",
				domain.ErrConflict, driverID, active.RemainingSwaps)
		}
		amount = pkg.Price
		orderInfo = fmt.Sprintf("Purchase package %s", pkg.Name)
	}

	resp, err := s.gateway.CreatePayment(ctx, momo.CreateRequest{
		Amount:      amount.Round(0).IntPart(),
		OrderInfo:   orderInfo,
		ExtraData:   momo.BuildExtraData(packageID, driverID, upgrade),
		RedirectURL: redirectURL,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Payment URL issued",
		zap.Int64("driver_id", driverID),
		zap.Int64("package_id", packageID),
		zap.Bool("upgrade", upgrade),
		zap.String("order_id", resp.OrderID),
	)

	return &ports.PaymentURL{
		PaymentURL: resp.PayURL,
		OrderID:    resp.OrderID,
		RequestID:  resp.RequestID,
		Message:    "Complete the payment to activate the subscription",
	}, nil
}

// HandleCallback verifies the provider signature, then either activates the
// paid subscription or records the failure verbatim. A failed payment has no
// side effects beyond logging.
func (s *Service) HandleCallback(ctx context.Context, params ports.CallbackParams) (*ports.CallbackResult, error) {
	if err := s.gateway.VerifyCallback(params); err != nil {
		telemetry.PaymentCallbacksTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	extra, err := momo.ParseExtraData(params.ExtraData)
	if err != nil {
		telemetry.PaymentCallbacksTotal.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidState, err)
	}

	if !s.gateway.IsSuccess(params.ResultCode) {
		telemetry.PaymentCallbacksTotal.WithLabelValues("failed").Inc()
		s.log.Warn("Payment failed at provider",
			zap.Int64("driver_id", extra.DriverID),
			zap.Int64("package_id", extra.PackageID),
			zap.String("result_code", params.ResultCode),
			zap.String("provider_message", params.Message),
		)
		return &ports.CallbackResult{
			Success:    false,
			Message:    params.Message,
			ResultCode: params.ResultCode,
		}, nil
	}

	var sub *domain.DriverSubscription
	if extra.Upgrade {
		sub, err = s.subs.UpgradeAfterPayment(ctx, extra.DriverID, extra.PackageID)
	} else {
		sub, err = s.subs.CreateAfterPayment(ctx, extra.DriverID, extra.PackageID)
	}
	if err != nil {
		telemetry.PaymentCallbacksTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	amount, parseErr := decimal.NewFromString(params.Amount)
	if parseErr != nil {
		amount = decimal.Zero
	}
	record := &domain.Payment{
		SubscriptionID: sub.ID,
		Amount:         amount,
		Method:         domain.PaymentMethodMoMo,
		TransactionRef: params.TransID,
		PaymentDate:    s.now(),
		Status:         domain.PaymentStatusCompleted,
	}
	if err := s.payRepo.Save(ctx, record); err != nil {
		// The subscription is already active; the missing row is recoverable
		// from the provider's transaction log.
		s.log.Error("Failed to record payment",
			zap.Int64("subscription_id", sub.ID),
			zap.String("trans_id", params.TransID),
			zap.Error(err),
		)
	}

	telemetry.PaymentCallbacksTotal.WithLabelValues("success").Inc()
	s.log.Info("Payment confirmed, subscription active",
		zap.Int64("driver_id", extra.DriverID),
		zap.Int64("subscription_id", sub.ID),
		zap.String("trans_id", params.TransID),
	)

	packageName := ""
	if pkg, err := s.pkgRepo.FindByID(ctx, sub.ServicePackageID); err == nil && pkg != nil {
		packageName = pkg.Name
	}

	return &ports.CallbackResult{
		Success:        true,
		Message:        "Payment processed successfully",
		SubscriptionID: sub.ID,
		PackageName:    packageName,
		RemainingSwaps: sub.RemainingSwaps,
		StartDate:      sub.StartDate.Format(dateLayout),
		EndDate:        sub.EndDate.Format(dateLayout),
		Amount:         params.Amount,
		TransactionRef: params.TransID,
		ResultCode:     params.ResultCode,
	}, nil
}

func (s *Service) GetBySubscription(ctx context.Context, subscriptionID int64) ([]domain.Payment, error) {
	return s.payRepo.FindBySubscriptionID(ctx, subscriptionID)
}
