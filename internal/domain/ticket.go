package domain

import (
	"fmt"
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "InProgress"
	TicketStatusFinalized  TicketStatus = "Finalized"
	TicketStatusCancelled  TicketStatus = "Cancelled"
)

// IsTerminal reports whether the status sets a ticket's closed-at timestamp.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusFinalized || s == TicketStatusCancelled
}

// ParseTicketStatus normalizes raw status input. Input is trimmed; the legacy
// variants "andamento" and "em andamento" map to InProgress regardless of
// case. Anything else must match one of the canonical names exactly.
func ParseTicketStatus(raw string) (TicketStatus, error) {
	trimmed := strings.TrimSpace(raw)
	lowered := strings.ToLower(trimmed)
	if lowered == "andamento" || lowered == "em andamento" {
		return TicketStatusInProgress, nil
	}
	switch TicketStatus(trimmed) {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusFinalized, TicketStatusCancelled:
		return TicketStatus(trimmed), nil
	}
	return "", fmt.Errorf("unknown ticket status %q", raw)
}

// Ticket is the aggregate for support requests. It is mutated only through
// lifecycle operations, never by direct field updates outside a transaction.
type Ticket struct {
	ID         int64
	OwnerID    int64
	AssigneeID *int64
	Reason     string
	Status     TicketStatus
	OpenedAt   time.Time
	ClosedAt   *time.Time
}
