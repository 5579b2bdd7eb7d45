package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/evbs/battery-swap-backend/internal/domain"
	"github.com/evbs/battery-swap-backend/internal/ports"
)

// successResultCode is the provider's "payment accepted" sentinel.
const successResultCode = 0

// MoMoConfig holds the provider credentials and endpoints.
type MoMoConfig struct {
	PartnerCode string
	PartnerName string
	StoreID     string
	AccessKey   string
	SecretKey   string
	Endpoint    string // create-payment URL
	RedirectURL string
	IpnURL      string
	RequestType string // e.g. captureWallet
}

// MoMoClient builds signed payment requests and validates signed callbacks.
// The signature base strings and the extraData encoding are dictated by the
// provider; they are a stable wire format, not something to normalize.
type MoMoClient struct {
	cfg     MoMoConfig
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger
}

// NewMoMoClient creates a new MoMo client.
func NewMoMoClient(cfg MoMoConfig, log *zap.Logger) *MoMoClient {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "momo",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("Payment provider circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &MoMoClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		breaker: breaker,
		log:     log,
	}
}

// CreateRequest carries the outbound payment-creation inputs.
type CreateRequest struct {
	Amount      int64
	OrderInfo   string
	ExtraData   string
	RedirectURL string // optional override of the configured redirect
}

// CreateResponse is the provider's accepted payment-creation result.
type CreateResponse struct {
	PayURL    string
	OrderID   string
	RequestID string
}

// GenerateOrderID returns a fresh provider order identifier.
func GenerateOrderID() string {
	return "EVBS-" + uuid.New().String()
}

// GenerateRequestID returns a fresh provider request identifier.
func GenerateRequestID() string {
	return uuid.New().String()
}

// BuildExtraData encodes the identity carriers the callback needs. The
// callback has no authenticated session, so packageId and driverId travel
// through the provider verbatim.
func BuildExtraData(packageID, driverID int64, upgrade bool) string {
	extra := fmt.Sprintf("packageId=%d&driverId=%d", packageID, driverID)
	if upgrade {
		extra += "&upgrade=true"
	}
	return extra
}

// ExtraData is the decoded identity payload from a callback.
type ExtraData struct {
	PackageID int64
	DriverID  int64
	Upgrade   bool
}

// ParseExtraData decodes "packageId=<n>&driverId=<n>[&upgrade=true]". The
// format has no escaping; parsing is a plain split on '&' then '='.
func ParseExtraData(raw string) (*ExtraData, error) {
	values := map[string]string{}
	for _, pair := range strings.Split(raw, "&") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) == 2 {
			values[kv[0]] = kv[1]
		}
	}

	packageID, err := strconv.ParseInt(values["packageId"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("extraData missing or invalid packageId: %q", raw)
	}
	driverID, err := strconv.ParseInt(values["driverId"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("extraData missing or invalid driverId: %q", raw)
	}

	return &ExtraData{
		PackageID: packageID,
		DriverID:  driverID,
		Upgrade:   values["upgrade"] == "true",
	}, nil
}

// CreatePayment builds the signed request, posts it to the provider, and
// returns the payment URL. Anything but the success result code fails closed.
func (c *MoMoClient) CreatePayment(ctx context.Context, req CreateRequest) (*CreateResponse, error) {
	orderID := GenerateOrderID()
	requestID := GenerateRequestID()

	redirectURL := c.cfg.RedirectURL
	if strings.TrimSpace(req.RedirectURL) != "" {
		redirectURL = req.RedirectURL
	}

	amount := strconv.FormatInt(req.Amount, 10)

	// Signature parameters in the provider's documented order.
	raw := buildRawSignature([][2]string{
		{"accessKey", c.cfg.AccessKey},
		{"amount", amount},
		{"extraData", req.ExtraData},
		{"ipnUrl", c.cfg.IpnURL},
		{"orderId", orderID},
		{"orderInfo", req.OrderInfo},
		{"partnerCode", c.cfg.PartnerCode},
		{"redirectUrl", redirectURL},
		{"requestId", requestID},
		{"requestType", c.cfg.RequestType},
	})
	signature := hmacSHA256(raw, c.cfg.SecretKey)

	body := map[string]interface{}{
		"partnerCode": c.cfg.PartnerCode,
		"partnerName": c.cfg.PartnerName,
		"storeId":     c.cfg.StoreID,
		"requestId":   requestID,
		"amount":      req.Amount,
		"orderId":     orderID,
		"orderInfo":   req.OrderInfo,
		"redirectUrl": redirectURL,
		"ipnUrl":      c.cfg.IpnURL,
		"lang":        "vi",
		"extraData":   req.ExtraData,
		"requestType": c.cfg.RequestType,
		"signature":   signature,
	}

	respBody, err := c.doRequest(ctx, body)
	if err != nil {
		return nil, err
	}

	var result struct {
		ResultCode int    `json:"resultCode"`
		Message    string `json:"message"`
		PayURL     string `json:"payUrl"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("%w: malformed provider response: %v", domain.ErrIntegration, err)
	}

	if result.ResultCode != successResultCode {
		return nil, fmt.Errorf("%w: provider rejected payment creation: code=%d message=%s",
			domain.ErrIntegration, result.ResultCode, result.Message)
	}

	c.log.Info("Payment URL created",
		zap.String("order_id", orderID),
		zap.Int64("amount", req.Amount),
	)

	return &CreateResponse{
		PayURL:    result.PayURL,
		OrderID:   orderID,
		RequestID: requestID,
	}, nil
}

// VerifyCallback re-derives the callback signature over the provider's
// ordered parameter set and compares it to the delivered one. Any mismatch is
// treated as potential forgery.
func (c *MoMoClient) VerifyCallback(params ports.CallbackParams) error {
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
	expected := hmacSHA256(raw, c.cfg.SecretKey)

	if !hmac.Equal([]byte(expected), []byte(params.Signature)) {
		c.log.Error("Callback signature mismatch, possible forgery",
			zap.String("order_id", params.OrderID),
		)
		return fmt.Errorf("%w: callback signature mismatch for order %s", domain.ErrSecurityViolation, params.OrderID)
	}
	return nil
}

// IsSuccess reports whether the callback result code is the success sentinel.
func (c *MoMoClient) IsSuccess(resultCode string) bool {
	return resultCode == strconv.Itoa(successResultCode)
}

func (c *MoMoClient) doRequest(ctx context.Context, body map[string]interface{}) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		res, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()

		data, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, err
		}
		if res.StatusCode >= 300 {
			return nil, fmt.Errorf("provider returned status %d: %s", res.StatusCode, data)
		}
		return data, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: payment provider call failed: %v", domain.ErrIntegration, err)
	}

	return resp.([]byte), nil
}

// buildRawSignature joins the ordered pairs as key=value&key=value.
func buildRawSignature(pairs [][2]string) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p[0]+"="+p[1])
	}
	return strings.Join(parts, "&")
}

func hmacSHA256(data, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}
