package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/helpfast/helpdesk/internal/api/dto"
	"github.com/helpfast/helpdesk/internal/service"
	apperrors "github.com/helpfast/helpdesk/pkg/util"
)

// AssistantHandler exposes the virtual assistant endpoints.
type AssistantHandler struct {
	service *service.AssistantService
}

// NewAssistantHandler constructs handler.
func NewAssistantHandler(assistantService *service.AssistantService) *AssistantHandler {
	return &AssistantHandler{service: assistantService}
}

// AskDocument POST /api/assistente/perguntar.
func (h *AssistantHandler) AskDocument(c *fiber.Ctx) error {
	var req dto.AskDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	reply, err := h.service.AskDocument(c.UserContext(), req.Question, req.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reply})
}

// Chat POST /api/assistente/chat.
func (h *AssistantHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatAssistantRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UserID <= 0 {
		return apperrors.NewValidationError("usuarioId required", nil)
	}

	reply, err := h.service.ProcessMessage(c.UserContext(), req.UserID, req.Message)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reply})
}

// Categorize POST /api/assistente/categorizar.
func (h *AssistantHandler) Categorize(c *fiber.Ctx) error {
	var req dto.CategorizeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return c.JSON(fiber.Map{"data": h.service.Categorize(req.Subject, req.Reason)})
}

// SuggestFAQs POST /api/assistente/faqs.
func (h *AssistantHandler) SuggestFAQs(c *fiber.Ctx) error {
	var req dto.SuggestFAQRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	questions, err := h.service.SuggestFAQs(c.UserContext(), req.Description)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": questions})
}

// AnalyzePatterns GET /api/assistente/padroes?inicio=...&fim=...
func (h *AssistantHandler) AnalyzePatterns(c *fiber.Ctx) error {
	from, err := parseTimeQuery(c, "inicio")
	if err != nil {
		return err
	}
	to, err := parseTimeQuery(c, "fim")
	if err != nil {
		return err
	}

	report, err := h.service.AnalyzePatterns(c.UserContext(), from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

func parseTimeQuery(c *fiber.Ctx, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, apperrors.NewValidationError(name+" required", nil)
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		t, err = time.Parse("2006-01-02", raw)
	}
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("invalid "+name, nil)
	}
	return t, nil
}
