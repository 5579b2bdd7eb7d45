package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	momo "github.com/evbs/battery-swap-backend/internal/adapter/external/payment"
	"github.com/evbs/battery-swap-backend/internal/domain"
	"github.com/evbs/battery-swap-backend/internal/mocks"
	"github.com/evbs/battery-swap-backend/internal/ports"
)

type stubGateway struct {
	verifyErr     error
	createReq     *momo.CreateRequest
	createErr     error
	createRespURL string
}

func (g *stubGateway) CreatePayment(ctx context.Context, req momo.CreateRequest) (*momo.CreateResponse, error) {
	g.createReq = &req
	if g.createErr != nil {
		return nil, g.createErr
	}
	return &momo.CreateResponse{PayURL: g.createRespURL, OrderID: "order-1", RequestID: "req-1"}, nil
}

func (g *stubGateway) VerifyCallback(params ports.CallbackParams) error {
	return g.verifyErr
}

func (g *stubGateway) IsSuccess(resultCode string) bool {
	return resultCode == "0"
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
}

func newTestService(gw Gateway, subs ports.SubscriptionService, pkgRepo *mocks.MockServicePackageRepository, subRepo *mocks.MockSubscriptionRepository, payRepo *mocks.MockPaymentRepository) *Service {
	return NewService(gw, subs, pkgRepo, subRepo, payRepo, fixedNow, zap.NewNop())
}

func basicPackage() *domain.ServicePackage {
	return &domain.ServicePackage{
		ID:       7,
		Name:     "Basic",
		Price:    decimal.NewFromInt(400000),
		MaxSwaps: 20,
		Duration: 30,
	}
}

func TestCreatePaymentURLForNewPurchase(t *testing.T) {
	gw := &stubGateway{createRespURL: "https://pay.example/abc"}
	pkgRepo := &mocks.MockServicePackageRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*domain.ServicePackage, error) {
			return basicPackage(), nil
		},
	}
	svc := newTestService(gw, &mocks.MockSubscriptionService{}, pkgRepo, &mocks.MockSubscriptionRepository{}, &mocks.MockPaymentRepository{})

	url, err := svc.CreatePaymentURL(context.Background(), 42, 7, "", false)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/abc", url.PaymentURL)

	require.NotNil(t, gw.createReq)
	assert.Equal(t, int64(400000), gw.createReq.Amount)
	assert.Equal(t, "packageId=7&driverId=42", gw.createReq.ExtraData)
}

func TestCreatePaymentURLRejectsActiveSubscriptionWithSwaps(t *testing.T) {
	pkgRepo := &mocks.MockServicePackageRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*domain.ServicePackage, error) {
			return basicPackage(), nil
		},
	}
	subRepo := &mocks.MockSubscriptionRepository{
		FindActiveByDriverFunc: func(ctx context.Context, driverID int64, day time.Time) (*domain.DriverSubscription, error) {
			return &domain.DriverSubscription{
				ID:             3,
				DriverID:       driverID,
				Status:         domain.SubscriptionStatusActive,
				RemainingSwaps: 5,
			}, nil
		},
	}
	svc := newTestService(&stubGateway{}, &mocks.MockSubscriptionService{}, pkgRepo, subRepo, &mocks.MockPaymentRepository{})

	_, err := svc.CreatePaymentURL(context.Background(), 42, 7, "", false)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestCreatePaymentURLForUpgradeUsesProratedTotal(t *testing.T) {
	gw := &stubGateway{createRespURL: "https://pay.example/up"}
	pkgRepo := &mocks.MockServicePackageRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*domain.ServicePackage, error) {
			return &domain.ServicePackage{ID: 9, Name: "Premium", Price: decimal.NewFromInt(800000), MaxSwaps: 50, Duration: 30}, nil
		},
	}
	subs := &mocks.MockSubscriptionService{
		EvaluateUpgradeFunc: func(ctx context.Context, driverID, newPackageID int64) (*ports.UpgradeEvaluation, error) {
			return &ports.UpgradeEvaluation{TotalPayment: decimal.RequireFromString("528000.00")}, nil
		},
	}
	svc := newTestService(gw, subs, pkgRepo, &mocks.MockSubscriptionRepository{}, &mocks.MockPaymentRepository{})

	_, err := svc.CreatePaymentURL(context.Background(), 42, 9, "", true)
	require.NoError(t, err)
	require.NotNil(t, gw.createReq)
	assert.Equal(t, int64(528000), gw.createReq.Amount)
	assert.Equal(t, "packageId=9&driverId=42&upgrade=true", gw.createReq.ExtraData)
}

func successParams(extraData string) ports.CallbackParams {
	return ports.CallbackParams{
		OrderID:    "order-1",
		Amount:     "400000",
		ResultCode: "0",
		Message:    "Successful.",
		TransID:    "trans-123",
		ExtraData:  extraData,
		Signature:  "sig",
	}
}

func TestHandleCallbackRejectsInvalidSignature(t *testing.T) {
	gw := &stubGateway{verifyErr: domain.ErrSecurityViolation}
	subs := &mocks.MockSubscriptionService{}
	svc := newTestService(gw, subs, &mocks.MockServicePackageRepository{}, &mocks.MockSubscriptionRepository{}, &mocks.MockPaymentRepository{})

	_, err := svc.HandleCallback(context.Background(), successParams("packageId=7&driverId=42"))
	assert.True(t, errors.Is(err, domain.ErrSecurityViolation))
}

func TestHandleCallbackFailedPaymentHasNoSideEffects(t *testing.T) {
	created := false
	subs := &mocks.MockSubscriptionService{
		CreateAfterPaymentFunc: func(ctx context.Context, driverID, packageID int64) (*domain.DriverSubscription, error) {
			created = true
			return nil, nil
		},
	}
	saved := false
	payRepo := &mocks.MockPaymentRepository{
		SaveFunc: func(ctx context.Context, payment *domain.Payment) error {
			saved = true
			return nil
		},
	}
	svc := newTestService(&stubGateway{}, subs, &mocks.MockServicePackageRepository{}, &mocks.MockSubscriptionRepository{}, payRepo)

	params := successParams("packageId=7&driverId=42")
	params.ResultCode = "1006"
	params.Message = "Transaction denied by user."

	result, err := svc.HandleCallback(context.Background(), params)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Transaction denied by user.", result.Message)
	assert.Equal(t, "1006", result.ResultCode)
	assert.False(t, created)
	assert.False(t, saved)
}

func TestHandleCallbackSuccessActivatesSubscriptionAndRecordsPayment(t *testing.T) {
	sub := &domain.DriverSubscription{
		ID:               11,
		DriverID:         42,
		ServicePackageID: 7,
		Status:           domain.SubscriptionStatusActive,
		RemainingSwaps:   20,
		StartDate:        time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		EndDate:          time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC),
	}
	subs := &mocks.MockSubscriptionService{
		CreateAfterPaymentFunc: func(ctx context.Context, driverID, packageID int64) (*domain.DriverSubscription, error) {
			assert.Equal(t, int64(42), driverID)
			assert.Equal(t, int64(7), packageID)
			return sub, nil
		},
	}
	var recorded *domain.Payment
	payRepo := &mocks.MockPaymentRepository{
		SaveFunc: func(ctx context.Context, payment *domain.Payment) error {
			recorded = payment
			return nil
		},
	}
	pkgRepo := &mocks.MockServicePackageRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*domain.ServicePackage, error) {
			return basicPackage(), nil
		},
	}
	svc := newTestService(&stubGateway{}, subs, pkgRepo, &mocks.MockSubscriptionRepository{}, payRepo)

	result, err := svc.HandleCallback(context.Background(), successParams("packageId=7&driverId=42"))
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, int64(11), result.SubscriptionID)
	assert.Equal(t, "Basic", result.PackageName)
	assert.Equal(t, 20, result.RemainingSwaps)

	require.NotNil(t, recorded)
	assert.Equal(t, int64(11), recorded.SubscriptionID)
	assert.Equal(t, domain.PaymentStatusCompleted, recorded.Status)
	assert.Equal(t, "trans-123", recorded.TransactionRef)
	assert.True(t, recorded.Amount.Equal(decimal.NewFromInt(400000)))
}

func TestHandleCallbackUpgradeFlagRoutesToUpgrade(t *testing.T) {
	upgraded := false
	subs := &mocks.MockSubscriptionService{
		UpgradeAfterPaymentFunc: func(ctx context.Context, driverID, newPackageID int64) (*domain.DriverSubscription, error) {
			upgraded = true
			return &domain.DriverSubscription{ID: 12, DriverID: driverID, ServicePackageID: newPackageID}, nil
		},
	}
	svc := newTestService(&stubGateway{}, subs, &mocks.MockServicePackageRepository{}, &mocks.MockSubscriptionRepository{}, &mocks.MockPaymentRepository{})

	result, err := svc.HandleCallback(context.Background(), successParams("packageId=9&driverId=42&upgrade=true"))
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, upgraded)
}

func TestHandleCallbackMalformedExtraData(t *testing.T) {
	svc := newTestService(&stubGateway{}, &mocks.MockSubscriptionService{}, &mocks.MockServicePackageRepository{}, &mocks.MockSubscriptionRepository{}, &mocks.MockPaymentRepository{})

	_, err := svc.HandleCallback(context.Background(), successParams("garbage"))
	assert.Error(t, err)
}
