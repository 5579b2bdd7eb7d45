package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/evbs/battery-swap-backend/internal/adapter/http/fiber/middleware"
	"github.com/evbs/battery-swap-backend/internal/domain"
	"github.com/evbs/battery-swap-backend/internal/ports"
)

// StationHandler serves the catalog surface: stations, batteries, battery
// types, service packages and the driver's vehicles.
type StationHandler struct {
	service ports.CatalogService
	log     *zap.Logger
}

func NewStationHandler(service ports.CatalogService, log *zap.Logger) *StationHandler {
	return &StationHandler{
		service: service,
		log:     log,
	}
}

func (h *StationHandler) ListStations(c *fiber.Ctx) error {
	stations, err := h.service.ListStations(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(stations)
}

func (h *StationHandler) GetStation(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid station id"})
	}

	station, err := h.service.GetStation(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(station)
}

func (h *StationHandler) SaveStation(c *fiber.Ctx) error {
	var station domain.Station
	if err := c.BodyParser(&station); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := h.service.SaveStation(c.Context(), &station); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(station)
}

func (h *StationHandler) DeleteStation(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid station id"})
	}

	if err := h.service.DeleteStation(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Station deleted"})
}

func (h *StationHandler) ListBatteries(c *fiber.Ctx) error {
	batteries, err := h.service.ListBatteries(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(batteries)
}

func (h *StationHandler) SaveBattery(c *fiber.Ctx) error {
	var battery domain.Battery
	if err := c.BodyParser(&battery); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := h.service.SaveBattery(c.Context(), &battery); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(battery)
}

func (h *StationHandler) ListBatteryTypes(c *fiber.Ctx) error {
	types, err := h.service.ListBatteryTypes(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(types)
}

func (h *StationHandler) SaveBatteryType(c *fiber.Ctx) error {
	var bt domain.BatteryType
	if err := c.BodyParser(&bt); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := h.service.SaveBatteryType(c.Context(), &bt); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(bt)
}

func (h *StationHandler) ListPackages(c *fiber.Ctx) error {
	packages, err := h.service.ListPackages(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(packages)
}

func (h *StationHandler) GetPackage(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid package id"})
	}

	pkg, err := h.service.GetPackage(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(pkg)
}

func (h *StationHandler) SavePackage(c *fiber.Ctx) error {
	var pkg domain.ServicePackage
	if err := c.BodyParser(&pkg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := h.service.SavePackage(c.Context(), &pkg); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(pkg)
}

func (h *StationHandler) DeletePackage(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid package id"})
	}

	if err := h.service.DeletePackage(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Package deleted"})
}

func (h *StationHandler) ListMyVehicles(c *fiber.Ctx) error {
	vehicles, err := h.service.ListVehicles(c.Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(vehicles)
}

func (h *StationHandler) SaveVehicle(c *fiber.Ctx) error {
	var vehicle domain.Vehicle
	if err := c.BodyParser(&vehicle); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	vehicle.DriverID = middleware.UserID(c)

	if err := h.service.SaveVehicle(c.Context(), &vehicle); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(vehicle)
}
