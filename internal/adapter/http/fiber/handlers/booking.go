package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/evbs/battery-swap-backend/internal/adapter/http/fiber/middleware"
	"github.com/evbs/battery-swap-backend/internal/ports"
)

type BookingHandler struct {
	service ports.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service ports.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

type CreateBookingRequest struct {
	StationID   int64     `json:"station_id"`
	VehicleID   int64     `json:"vehicle_id"`
	BookingTime time.Time `json:"booking_time"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

func (h *BookingHandler) Create(c *fiber.Ctx) error {
	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	booking, err := h.service.CreateBooking(c.Context(), &ports.BookingRequest{
		DriverID:    middleware.UserID(c),
		StationID:   req.StationID,
		VehicleID:   req.VehicleID,
		BookingTime: req.BookingTime,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(booking)
}

func (h *BookingHandler) GetMine(c *fiber.Ctx) error {
	bookings, err := h.service.GetDriverBookings(c.Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(bookings)
}

func (h *BookingHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	booking, err := h.service.GetBooking(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(booking)
}

func (h *BookingHandler) Cancel(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	var req CancelBookingRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := h.service.CancelBooking(c.Context(), id, middleware.UserID(c), req.Reason); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Booking cancelled"})
}
