package payment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/evbs/battery-swap-backend/internal/domain"
	"github.com/evbs/battery-swap-backend/internal/ports"
)

func testClient() *MoMoClient {
	return NewMoMoClient(MoMoConfig{
		PartnerCode: "PARTNER",
		AccessKey:   "access-key",
		SecretKey:   "secret-key",
		RequestType: "captureWallet",
	}, zap.NewNop())
}

func signedCallbackParams(c *MoMoClient) ports.CallbackParams {
	params := ports.CallbackParams{
		PartnerCode:  "PARTNER",
		OrderID:      "EVBS-order-1",
		RequestID:    "req-1",
		Amount:       "400000",
		OrderInfo:    "Buy package Basic",
		OrderType:    "momo_wallet",
		TransID:      "2718281828",
		ResultCode:   "0",
		Message:      "Successful.",
		PayType:      "qr",
		ResponseTime: "1735689600000",
		ExtraData:    "packageId=7&driverId=42",
	}
	raw := buildRawSignature([][2]string{
		{"accessKey", c.cfg.AccessKey},
		{"amount", params.Amount},
		{"extraData", params.ExtraData},
		{"message", params.Message},
		{"orderId", params.OrderID},
		{"orderInfo", params.OrderInfo},
		{"orderType", params.OrderType},
		{"partnerCode", params.PartnerCode},
		{"payType", params.PayType},
		{"requestId", params.RequestID},
		{"responseTime", params.ResponseTime},
		{"resultCode", params.ResultCode},
		{"transId", params.TransID},
	})
	params.Signature = hmacSHA256(raw, c.cfg.SecretKey)
	return params
}

func TestVerifyCallbackAcceptsValidSignature(t *testing.T) {
	c := testClient()
	params := signedCallbackParams(c)

	assert.NoError(t, c.VerifyCallback(params))
}

func TestVerifyCallbackRejectsTamperedAmount(t *testing.T) {
	c := testClient()
	params := signedCallbackParams(c)
	params.Amount = "1" // tampered after signing

	err := c.VerifyCallback(params)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSecurityViolation))
}

func TestVerifyCallbackRejectsForgedSignature(t *testing.T) {
	c := testClient()
	params := signedCallbackParams(c)
	params.Signature = "deadbeef"

	err := c.VerifyCallback(params)
	assert.True(t, errors.Is(err, domain.ErrSecurityViolation))
}

func TestParseExtraData(t *testing.T) {
	extra, err := ParseExtraData("packageId=7&driverId=42")
	require.NoError(t, err)
	assert.Equal(t, int64(7), extra.PackageID)
	assert.Equal(t, int64(42), extra.DriverID)
	assert.False(t, extra.Upgrade)
}

func TestParseExtraDataUpgradeFlag(t *testing.T) {
	extra, err := ParseExtraData("packageId=3&driverId=9&upgrade=true")
	require.NoError(t, err)
	assert.True(t, extra.Upgrade)
}

func TestParseExtraDataMissingDriverID(t *testing.T) {
	_, err := ParseExtraData("packageId=7")
	assert.Error(t, err)
}

func TestParseExtraDataNonNumeric(t *testing.T) {
	_, err := ParseExtraData("packageId=abc&driverId=42")
	assert.Error(t, err)
}

func TestBuildExtraDataRoundTrip(t *testing.T) {
	raw := BuildExtraData(12, 99, true)
	extra, err := ParseExtraData(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(12), extra.PackageID)
	assert.Equal(t, int64(99), extra.DriverID)
	assert.True(t, extra.Upgrade)
}
