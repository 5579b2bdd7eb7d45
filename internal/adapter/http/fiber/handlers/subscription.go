package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/evbs/battery-swap-backend/internal/adapter/http/fiber/middleware"
	"github.com/evbs/battery-swap-backend/internal/ports"
)

type SubscriptionHandler struct {
	service ports.SubscriptionService
	log     *zap.Logger
}

func NewSubscriptionHandler(service ports.SubscriptionService, log *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		service: service,
		log:     log,
	}
}

type PackageChangeRequest struct {
	NewPackageID int64 `json:"new_package_id"`
}

// GetMine lists the authenticated driver's subscriptions.
func (h *SubscriptionHandler) GetMine(c *fiber.Ctx) error {
	subs, err := h.service.GetByDriver(c.Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(subs)
}

// GetAll lists every subscription. Admin only.
func (h *SubscriptionHandler) GetAll(c *fiber.Ctx) error {
	subs, err := h.service.GetAll(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(subs)
}

// EvaluateUpgrade quotes an upgrade to a bigger package without changing
// anything. The driver pays through the payment endpoint afterwards.
func (h *SubscriptionHandler) EvaluateUpgrade(c *fiber.Ctx) error {
	var req PackageChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	eval, err := h.service.EvaluateUpgrade(c.Context(), middleware.UserID(c), req.NewPackageID)
	if err != nil {
		return err
	}
	return c.JSON(eval)
}

// EvaluateDowngrade quotes a downgrade. Rejections come back as a 200 with
// can_downgrade=false so the client can show the reason.
func (h *SubscriptionHandler) EvaluateDowngrade(c *fiber.Ctx) error {
	var req PackageChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	eval, err := h.service.EvaluateDowngrade(c.Context(), middleware.UserID(c), req.NewPackageID)
	if err != nil {
		return err
	}
	return c.JSON(eval)
}

// Downgrade applies an eligible downgrade immediately. No payment involved.
func (h *SubscriptionHandler) Downgrade(c *fiber.Ctx) error {
	var req PackageChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	sub, err := h.service.Downgrade(c.Context(), middleware.UserID(c), req.NewPackageID)
	if err != nil {
		return err
	}
	return c.JSON(sub)
}

// Cancel administratively terminates a subscription. Admin only.
func (h *SubscriptionHandler) Cancel(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid subscription id"})
	}

	if err := h.service.Cancel(c.Context(), id); err != nil {
		return err
	}

	h.log.Info("Subscription cancelled by admin", zap.Int64("subscription_id", id))
	return c.JSON(fiber.Map{"message": "Subscription cancelled"})
}
