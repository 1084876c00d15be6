package dto

import (
	"time"

	"github.com/helpfast/helpdesk/internal/domain"
)

// OpenTicketRequest payload.
type OpenTicketRequest struct {
	ClientID int64  `json:"clienteId"`
	Reason   string `json:"motivo"`
}

// UpdateStatusRequest payload. TechnicianID is optional; when present it
// also assigns the ticket.
type UpdateStatusRequest struct {
	Status       string `json:"status"`
	TechnicianID *int64 `json:"tecnicoId,omitempty"`
}

// TicketResponse is the standard ticket representation.
type TicketResponse struct {
	ID         int64               `json:"id"`
	OwnerID    int64               `json:"clienteId"`
	AssigneeID *int64              `json:"tecnicoId"`
	Reason     string              `json:"motivo"`
	Status     domain.TicketStatus `json:"status"`
	OpenedAt   time.Time           `json:"dataAbertura"`
	ClosedAt   *time.Time          `json:"dataFechamento"`
}

// TicketStatusResponse is the poll endpoint payload.
type TicketStatusResponse struct {
	ID     int64               `json:"id"`
	Status domain.TicketStatus `json:"status"`
}

// HistoryEntryResponse is one audit log line.
type HistoryEntryResponse struct {
	ID         int64     `json:"id"`
	TicketID   int64     `json:"chamadoId"`
	Action     string    `json:"acao"`
	ActorID    int64     `json:"usuarioId"`
	OccurredAt time.Time `json:"dataHora"`
}

// NewTicketResponse maps the domain model.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:         t.ID,
		OwnerID:    t.OwnerID,
		AssigneeID: t.AssigneeID,
		Reason:     t.Reason,
		Status:     t.Status,
		OpenedAt:   t.OpenedAt,
		ClosedAt:   t.ClosedAt,
	}
}

// NewHistoryEntryResponse maps the domain model.
func NewHistoryEntryResponse(e *domain.HistoryEntry) HistoryEntryResponse {
	return HistoryEntryResponse{
		ID:         e.ID,
		TicketID:   e.TicketID,
		Action:     e.Action,
		ActorID:    e.ActorID,
		OccurredAt: e.OccurredAt,
	}
}
