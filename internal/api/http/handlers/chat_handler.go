package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/helpfast/helpdesk/internal/api/dto"
	"github.com/helpfast/helpdesk/internal/service"
	apperrors "github.com/helpfast/helpdesk/pkg/util"
)

// ChatHandler manages per-ticket conversation endpoints.
type ChatHandler struct {
	service *service.ChatService
}

// NewChatHandler constructs handler.
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{service: chatService}
}

// PostMessage POST /api/chat.
func (h *ChatHandler) PostMessage(c *fiber.Ctx) error {
	var req dto.CreateChatMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	msg, err := h.service.PostMessage(c.UserContext(), req.TicketID, req.Body, req.ParentID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewChatMessageResponse(msg)})
}

// GetMessage GET /api/chat/:id.
func (h *ChatHandler) GetMessage(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	msg, err := h.service.GetMessage(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewChatMessageResponse(msg)})
}

// ListMessages GET /api/chat. An optional chamadoId query narrows the list
// to one ticket's thread.
func (h *ChatHandler) ListMessages(c *fiber.Ctx) error {
	var ticketID *int64
	if raw := c.Query("chamadoId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return apperrors.NewValidationError("invalid chamadoId", nil)
		}
		ticketID = &id
	}

	msgs, err := h.service.ListMessages(c.UserContext(), ticketID)
	if err != nil {
		return err
	}
	items := make([]dto.ChatMessageResponse, 0, len(msgs))
	for i := range msgs {
		items = append(items, dto.NewChatMessageResponse(&msgs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// SaveAIResult POST /api/chat/resultados.
func (h *ChatHandler) SaveAIResult(c *fiber.Ctx) error {
	var req dto.SaveAIResultRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.service.SaveAIResult(c.UserContext(), req.ChatMessageID, req.ResultJSON)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAIResultResponse(result)})
}

// GetAIResult GET /api/chat/resultados/:id.
func (h *ChatHandler) GetAIResult(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	result, err := h.service.GetAIResult(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAIResultResponse(result)})
}

// ListAIResults GET /api/chat/resultados.
func (h *ChatHandler) ListAIResults(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	results, err := h.service.ListAIResults(c.UserContext(), limit)
	if err != nil {
		return err
	}
	items := make([]dto.AIResultResponse, 0, len(results))
	for i := range results {
		items = append(items, dto.NewAIResultResponse(&results[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
