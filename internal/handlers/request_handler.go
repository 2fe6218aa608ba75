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

type RequestHandler struct {
	requestService *services.RequestService
	registry       *safety.Registry
}

func NewRequestHandler(requestService *services.RequestService, registry *safety.Registry) *RequestHandler {
	return &RequestHandler{requestService: requestService, registry: registry}
}

func (h *RequestHandler) Submit(c *fiber.Ctx) error {
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

	request, err := h.requestService.Submit(ident, rideID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotVerified):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrDuplicateRequest):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrInvalidRequest):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		default:
			return requestError(c, err, "Failed to submit request")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(request)
}

func (h *RequestHandler) Approve(c *fiber.Ctx) error {
	return h.transition(c, h.requestService.Approve, "Request approved")
}

func (h *RequestHandler) Reject(c *fiber.Ctx) error {
	return h.transition(c, h.requestService.Reject, "Request rejected")
}

func (h *RequestHandler) Withdraw(c *fiber.Ctx) error {
	return h.transition(c, h.requestService.Withdraw, "Request withdrawn")
}

func (h *RequestHandler) Remove(c *fiber.Ctx) error {
	return h.transition(c, h.requestService.Remove, "Rider removed")
}

func (h *RequestHandler) transition(c *fiber.Ctx,
	op func(session.Identity, uuid.UUID, uuid.UUID) error, okMessage string) error {

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
	requestID, err := uuid.Parse(c.Params("requestId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request id",
		})
	}

	if err := op(ident, rideID, requestID); err != nil {
		return requestError(c, err, "Failed to update request")
	}

	return c.JSON(fiber.Map{"message": okMessage})
}

func (h *RequestHandler) ListForRide(c *fiber.Ctx) error {
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

	overlay := h.registry.Snapshot(c.Context(), ident.UserID)
	requests, err := h.requestService.ListForRide(ident, rideID, overlay.UserBlocked)
	if err != nil {
		return requestError(c, err, "Failed to list requests")
	}

	return c.JSON(fiber.Map{"requests": requests, "count": len(requests)})
}

func (h *RequestHandler) MyRequest(c *fiber.Ctx) error {
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

	request, err := h.requestService.MyRequest(ident, rideID)
	if err != nil {
		if errors.Is(err, services.ErrRequestNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return requestError(c, err, "Failed to load request")
	}

	return c.JSON(request)
}

func (h *RequestHandler) ListPending(c *fiber.Ctx) error {
	ident, err := session.FromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	pending, err := h.requestService.ListPending(ident)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list pending requests",
		})
	}

	return c.JSON(fiber.Map{"pending": pending, "count": len(pending)})
}

func (h *RequestHandler) HasActivePending(c *fiber.Ctx) error {
	ident, err := session.FromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	active, err := h.requestService.HasActivePending(ident)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to check pending requests",
		})
	}

	return c.JSON(fiber.Map{"has_active_pending": active})
}

func (h *RequestHandler) JoinedRides(c *fiber.Ctx) error {
	ident, err := session.FromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	rides, err := h.requestService.JoinedRides(ident)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list joined rides",
		})
	}

	return c.JSON(fiber.Map{"rides": rides, "count": len(rides)})
}

// requestError maps the request service sentinels onto HTTP statuses.
func requestError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrRideNotFound), errors.Is(err, services.ErrRequestNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrNotRideOwner), errors.Is(err, services.ErrNotParticipant):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrNoSeatsAvailable),
		errors.Is(err, services.ErrInvalidRequest),
		errors.Is(err, services.ErrTransactionConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrMalformedRecord):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: fallback,
		})
	}
}
