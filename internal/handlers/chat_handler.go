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

type ChatHandler struct {
	chatService *services.ChatService
	registry    *safety.Registry
}

func NewChatHandler(chatService *services.ChatService, registry *safety.Registry) *ChatHandler {
	return &ChatHandler{chatService: chatService, registry: registry}
}

func (h *ChatHandler) Send(c *fiber.Ctx) error {
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

	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	message, err := h.chatService.Send(ident, rideID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRideNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrNotParticipant):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		default:
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(message)
}

func (h *ChatHandler) List(c *fiber.Ctx) error {
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
	messages, err := h.chatService.List(overlay, rideID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list messages",
		})
	}

	return c.JSON(fiber.Map{"messages": messages, "count": len(messages)})
}
