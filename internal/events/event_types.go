package events

import (
	"time"

	"github.com/helpfast/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventChatMessageAdded    EventType = "chat_message_added"
	EventUserRemoved         EventType = "user_removed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  int64     `json:"ticket_id,omitempty"`
	ActorID   int64     `json:"actor_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	OwnerID int64               `json:"owner_id"`
	Reason  string              `json:"reason"`
	Status  domain.TicketStatus `json:"status"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	TechnicianID   int64  `json:"technician_id"`
	TechnicianName string `json:"technician_name"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// ChatMessageAddedPayload payload.
type ChatMessageAddedPayload struct {
	MessageID   int64  `json:"message_id"`
	BodyPreview string `json:"body_preview"`
}

// UserRemovedPayload payload.
type UserRemovedPayload struct {
	UserID          int64 `json:"user_id"`
	TicketsDeleted  int   `json:"tickets_deleted"`
	TicketsReleased int   `json:"tickets_released"`
}
