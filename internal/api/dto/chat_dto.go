package dto

import (
	"time"

	"github.com/helpfast/helpdesk/internal/domain"
)

// CreateChatMessageRequest payload.
type CreateChatMessageRequest struct {
	TicketID int64  `json:"chamadoId"`
	Body     string `json:"motivo"`
	ParentID *int64 `json:"chatId,omitempty"`
}

// ChatMessageResponse is one thread entry.
type ChatMessageResponse struct {
	ID          int64                  `json:"id"`
	TicketID    *int64                 `json:"chamadoId"`
	SenderID    *int64                 `json:"remetenteId"`
	RecipientID *int64                 `json:"destinatarioId"`
	Body        string                 `json:"motivo"`
	MessageType domain.ChatMessageType `json:"tipoMensagem"`
	ParentID    *int64                 `json:"chatId"`
	SentAt      time.Time              `json:"dataEnvio"`
}

// SaveAIResultRequest payload.
type SaveAIResultRequest struct {
	ChatMessageID int64  `json:"chatMensagemId"`
	ResultJSON    string `json:"resultadoJson"`
}

// AIResultResponse is a stored assistant run.
type AIResultResponse struct {
	ID            int64     `json:"id"`
	ChatMessageID int64     `json:"chatMensagemId"`
	ResultJSON    string    `json:"resultadoJson"`
	CreatedAt     time.Time `json:"dataCriacao"`
}

// NewChatMessageResponse maps the domain model.
func NewChatMessageResponse(m *domain.ChatMessage) ChatMessageResponse {
	return ChatMessageResponse{
		ID:          m.ID,
		TicketID:    m.TicketID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Body:        m.Body,
		MessageType: m.MessageType,
		ParentID:    m.ParentID,
		SentAt:      m.SentAt,
	}
}

// NewAIResultResponse maps the domain model.
func NewAIResultResponse(r *domain.ChatAIResult) AIResultResponse {
	return AIResultResponse{
		ID:            r.ID,
		ChatMessageID: r.ChatMessageID,
		ResultJSON:    r.ResultJSON,
		CreatedAt:     r.CreatedAt,
	}
}
