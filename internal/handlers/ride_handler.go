package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/poolmate/poolmate-backend/internal/dto"
	"github.com/poolmate/poolmate-backend/internal/safety"
	"github.com/poolmate/poolmate-backend/internal/services"
	"github.com/poolmate/poolmate-backend/internal/session"
)

type RideHandler struct {
	rideService *services.RideService
	authService *services.AuthService
	registry    *safety.Registry
}

func NewRideHandler(rideService *services.RideService, authService *services.AuthService, registry *safety.Registry) *RideHandler {
	return &RideHandler{rideService: rideService, authService: authService, registry: registry}
}

func (h *RideHandler) Create(c *fiber.Ctx) error {
	ident, err := session.FromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreateRideRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	user, err := h.authService.Me(ident.UserID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	ride, err := h.rideService.Create(ident, user.DisplayName, req.Route,
		req.DepartureTime, req.SeatsAvailable,
		req.StartLocationName, req.EndLocationName,
		req.StartLatitude, req.StartLongitude,
		req.CarNumber, req.CarModel)
	if err != nil {
		if errors.Is(err, services.ErrNotVerified) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(ride)
}

func (h *RideHandler) List(c *fiber.Ctx) error {
	ident, err := session.FromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	overlay := h.registry.Snapshot(c.Context(), ident.UserID)
	rides, err := h.rideService.List(overlay)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list rides",
		})
	}

	return c.JSON(fiber.Map{"rides": rides, "count": len(rides)})
}

func (h *RideHandler) Search(c *fiber.Ctx) error {
	ident, err := session.FromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.SearchRidesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	overlay := h.registry.Snapshot(c.Context(), ident.UserID)
	rides, err := h.rideService.Search(overlay, req.Start, req.End, req.From, req.To)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to search rides",
		})
	}

	return c.JSON(fiber.Map{"rides": rides, "count": len(rides)})
}

func (h *RideHandler) Get(c *fiber.Ctx) error {
	rideID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid ride id",
		})
	}

	ride, err := h.rideService.Get(rideID)
	if err != nil {
		if errors.Is(err, services.ErrRideNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load ride",
		})
	}

	return c.JSON(ride)
}

func (h *RideHandler) UpdateSeats(c *fiber.Ctx) error {
	ident, err := session.FromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	rideID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid ride id",
		})
	}

	var req dto.UpdateSeatsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.rideService.UpdateSeats(ident, rideID, req.SeatsAvailable); err != nil {
		return rideError(c, err, "Failed to update seats")
	}

	return c.JSON(fiber.Map{"message": "Seats updated"})
}

func (h *RideHandler) Delete(c *fiber.Ctx) error {
	ident, err := session.FromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	rideID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid ride id",
		})
	}

	if err := h.rideService.Delete(ident, rideID); err != nil {
		return rideError(c, err, "Failed to delete ride")
	}

	return c.JSON(fiber.Map{"message": "Ride deleted"})
}

// rideError maps the ride service sentinels onto HTTP statuses.
func rideError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrRideNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrNotRideOwner):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrBelowApprovedCount):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrTransactionConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: fallback,
		})
	}
}
