package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/evbs/battery-swap-backend/internal/adapter/http/fiber/middleware"
	"github.com/evbs/battery-swap-backend/internal/domain"
	"github.com/evbs/battery-swap-backend/internal/ports"
)

type stubPaymentService struct {
	gotParams ports.CallbackParams
	result    *ports.CallbackResult
	err       error
}

func (s *stubPaymentService) CreatePaymentURL(ctx context.Context, driverID, packageID int64, redirectURL string, upgrade bool) (*ports.PaymentURL, error) {
	return &ports.PaymentURL{PaymentURL: "https://pay.example/x", OrderID: "EVBS-1"}, nil
}

func (s *stubPaymentService) HandleCallback(ctx context.Context, params ports.CallbackParams) (*ports.CallbackResult, error) {
	s.gotParams = params
	return s.result, s.err
}

func (s *stubPaymentService) GetBySubscription(ctx context.Context, subscriptionID int64) ([]domain.Payment, error) {
	return nil, nil
}

func newCallbackApp(svc ports.PaymentService) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(zap.NewNop()),
	})
	h := NewPaymentHandler(svc, zap.NewNop())
	app.Post("/payments/callback", h.Callback)
	return app
}

func TestCallback_NumericFieldsParse(t *testing.T) {
	svc := &stubPaymentService{result: &ports.CallbackResult{Success: true}}
	app := newCallbackApp(svc)

	// The provider sends amount, transId, resultCode and responseTime as
	// JSON numbers.
	body := `{
		"partnerCode": "MOMO",
		"orderId": "EVBS-abc",
		"requestId": "req-1",
		"amount": 400000,
		"orderInfo": "Purchase package Basic",
		"orderType": "momo_wallet",
		"transId": 411223344,
		"resultCode": 0,
		"message": "Successful.",
		"payType": "qr",
		"responseTime": 1718000000000,
		"extraData": "packageId=7&driverId=42",
		"signature": "deadbeef"
	}`

	req := httptest.NewRequest(http.MethodPost, "/payments/callback", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "400000", svc.gotParams.Amount)
	assert.Equal(t, "411223344", svc.gotParams.TransID)
	assert.Equal(t, "0", svc.gotParams.ResultCode)
	assert.Equal(t, "packageId=7&driverId=42", svc.gotParams.ExtraData)
}

func TestCallback_BadSignatureIsForbidden(t *testing.T) {
	svc := &stubPaymentService{err: domain.ErrSecurityViolation}
	app := newCallbackApp(svc)

	body := `{"orderId": "EVBS-abc", "amount": 1, "resultCode": 0, "signature": "forged"}`
	req := httptest.NewRequest(http.MethodPost, "/payments/callback", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
