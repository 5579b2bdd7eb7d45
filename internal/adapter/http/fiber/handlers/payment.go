package handlers

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/evbs/battery-swap-backend/internal/adapter/http/fiber/middleware"
	"github.com/evbs/battery-swap-backend/internal/ports"
)

type PaymentHandler struct {
	service ports.PaymentService
	log     *zap.Logger
}

func NewPaymentHandler(service ports.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log,
	}
}

type CreatePaymentRequest struct {
	PackageID   int64  `json:"package_id"`
	RedirectURL string `json:"redirect_url"`
	Upgrade     bool   `json:"upgrade"`
}

// CallbackRequest mirrors the provider's IPN body. Field names follow the
// provider's wire format, not ours; the provider sends amount, transId,
// resultCode and responseTime as JSON numbers.
type CallbackRequest struct {
	PartnerCode  string      `json:"partnerCode"`
	OrderID      string      `json:"orderId"`
	RequestID    string      `json:"requestId"`
	Amount       json.Number `json:"amount"`
	OrderInfo    string      `json:"orderInfo"`
	OrderType    string      `json:"orderType"`
	TransID      json.Number `json:"transId"`
	ResultCode   json.Number `json:"resultCode"`
	Message      string      `json:"message"`
	PayType      string      `json:"payType"`
	ResponseTime json.Number `json:"responseTime"`
	ExtraData    string      `json:"extraData"`
	Signature    string      `json:"signature"`
}

// Create builds a provider payment URL for a package purchase or upgrade.
func (h *PaymentHandler) Create(c *fiber.Ctx) error {
	var req CreatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.PackageID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "package_id is required"})
	}

	url, err := h.service.CreatePaymentURL(c.Context(), middleware.UserID(c), req.PackageID, req.RedirectURL, req.Upgrade)
	if err != nil {
		return err
	}
	return c.JSON(url)
}

// Callback is the provider's server-to-server notification. It is public:
// authenticity comes from the HMAC signature, not a bearer token.
func (h *PaymentHandler) Callback(c *fiber.Ctx) error {
	var req CallbackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	result, err := h.service.HandleCallback(c.Context(), ports.CallbackParams{
		PartnerCode:  req.PartnerCode,
		OrderID:      req.OrderID,
		RequestID:    req.RequestID,
		Amount:       req.Amount.String(),
		OrderInfo:    req.OrderInfo,
		OrderType:    req.OrderType,
		TransID:      req.TransID.String(),
		ResultCode:   req.ResultCode.String(),
		Message:      req.Message,
		PayType:      req.PayType,
		ResponseTime: req.ResponseTime.String(),
		ExtraData:    req.ExtraData,
		Signature:    req.Signature,
	})
	if err != nil {
		h.log.Warn("Payment callback rejected", zap.String("order_id", req.OrderID), zap.Error(err))
		return err
	}

	return c.JSON(result)
}

// GetBySubscription lists the payments recorded for a subscription.
func (h *PaymentHandler) GetBySubscription(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid subscription id"})
	}

	payments, err := h.service.GetBySubscription(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(payments)
}
