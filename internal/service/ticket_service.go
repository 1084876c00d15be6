package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/helpfast/helpdesk/internal/domain"
	"github.com/helpfast/helpdesk/internal/events"
	"github.com/helpfast/helpdesk/internal/persistence"
	"github.com/helpfast/helpdesk/internal/repository"
	apperrors "github.com/helpfast/helpdesk/pkg/util"
)

// TicketService coordinates the ticket lifecycle: opening, assignment,
// status transitions, and the audit history that accompanies each of them.
// Every multi-row mutation runs inside one store transaction.
type TicketService struct {
	store       repository.Store
	statusCache *persistence.StatusCache
	dispatcher  events.Dispatcher
	clock       func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Store       repository.Store
	StatusCache *persistence.StatusCache
	Dispatcher  events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		store:       deps.Store,
		statusCache: deps.StatusCache,
		dispatcher:  deps.Dispatcher,
		clock:       time.Now,
	}
}

// OpenTicket creates a ticket for the owner. When a technician exists in the
// directory the ticket is immediately assigned and moves to InProgress, with
// an assignment history entry; insert, assignment, and history commit as one
// unit.
func (s *TicketService) OpenTicket(ctx context.Context, ownerID int64, reason string) (*domain.Ticket, error) {
	if ownerID <= 0 {
		return nil, apperrors.NewValidationError("owner id required", nil)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewValidationError("reason required", nil)
	}
	if _, err := s.store.Users().GetByID(ctx, ownerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("owner does not exist", map[string]any{"owner_id": ownerID})
		}
		return nil, apperrors.MapError(err)
	}

	now := s.clock()
	ticket := &domain.Ticket{
		OwnerID:  ownerID,
		Reason:   reason,
		Status:   domain.TicketStatusOpen,
		OpenedAt: now,
	}
	var technician *domain.User

	err := s.store.InTx(ctx, func(tx repository.Store) error {
		ticket.ID = 0
		ticket.AssigneeID = nil
		ticket.Status = domain.TicketStatusOpen
		if err := tx.Tickets().Create(ctx, ticket); err != nil {
			return err
		}

		tech, err := tx.Users().FindByRole(ctx, domain.RoleTechnician)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}

		technician = tech
		ticket.AssigneeID = &tech.ID
		ticket.Status = domain.TicketStatusInProgress
		if err := tx.Tickets().Update(ctx, ticket); err != nil {
			return err
		}
		return tx.History().Append(ctx, &domain.HistoryEntry{
			TicketID:   ticket.ID,
			Action:     assignmentAction(tech.Name),
			ActorID:    tech.ID,
			OccurredAt: now,
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventTicketCreated, ticket.ID, ownerID, events.TicketCreatedPayload{
		OwnerID: ownerID,
		Reason:  ticket.Reason,
		Status:  ticket.Status,
	})
	if technician != nil {
		s.publish(ctx, events.EventTicketAssigned, ticket.ID, technician.ID, events.TicketAssignedPayload{
			TechnicianID:   technician.ID,
			TechnicianName: technician.Name,
		})
	}
	return ticket, nil
}

// UpdateStatus applies one status transition: optional technician
// assignment, terminal/reopen handling of closed-at, and exactly one status
// history entry, all atomically. Returns the refreshed ticket.
func (s *TicketService) UpdateStatus(ctx context.Context, ticketID int64, rawStatus string, technicianID *int64) (*domain.Ticket, error) {
	newStatus, parseErr := domain.ParseTicketStatus(rawStatus)

	var (
		ticket     *domain.Ticket
		oldStatus  domain.TicketStatus
		technician *domain.User
	)
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		ticket, err = tx.Tickets().GetByID(ctx, ticketID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
			}
			return err
		}
		if parseErr != nil {
			return apperrors.NewValidationError("invalid status", map[string]any{"status": rawStatus})
		}

		now := s.clock()
		technician = nil
		if technicianID != nil {
			technician, err = tx.Users().GetByID(ctx, *technicianID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return apperrors.NewValidationError("technician does not exist", map[string]any{"technician_id": *technicianID})
				}
				return err
			}
			ticket.AssigneeID = &technician.ID
			if err := tx.History().Append(ctx, &domain.HistoryEntry{
				TicketID:   ticket.ID,
				Action:     assignmentAction(technician.Name),
				ActorID:    technician.ID,
				OccurredAt: now,
			}); err != nil {
				return err
			}
		}

		oldStatus = ticket.Status
		ticket.Status = newStatus
		if newStatus.IsTerminal() {
			if ticket.ClosedAt == nil {
				ticket.ClosedAt = &now
			}
		} else if newStatus == domain.TicketStatusOpen {
			ticket.ClosedAt = nil
		}

		actorID := int64(0)
		if technicianID != nil {
			actorID = *technicianID
		} else if ticket.AssigneeID != nil {
			actorID = *ticket.AssigneeID
		}
		if err := tx.History().Append(ctx, &domain.HistoryEntry{
			TicketID:   ticket.ID,
			Action:     statusChangeAction(oldStatus, newStatus),
			ActorID:    actorID,
			OccurredAt: now,
		}); err != nil {
			return err
		}
		return tx.Tickets().Update(ctx, ticket)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.statusCache.Invalidate(ctx, ticket.ID)
	if technician != nil {
		s.publish(ctx, events.EventTicketAssigned, ticket.ID, technician.ID, events.TicketAssignedPayload{
			TechnicianID:   technician.ID,
			TechnicianName: technician.Name,
		})
	}
	s.publish(ctx, events.EventTicketStatusChanged, ticket.ID, 0, events.TicketStatusChangedPayload{
		OldStatus: oldStatus,
		NewStatus: newStatus,
	})
	return ticket, nil
}

// GetTicket fetches a ticket by id.
func (s *TicketService) GetTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.store.Tickets().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// ListTickets returns every ticket, newest first.
func (s *TicketService) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.store.Tickets().ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListTicketsByOwner returns the owner's tickets, newest first.
func (s *TicketService) ListTicketsByOwner(ctx context.Context, ownerID int64) ([]domain.Ticket, error) {
	tickets, err := s.store.Tickets().ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// PollStatus returns just the ticket's status, served from the short-TTL
// cache when fresh.
func (s *TicketService) PollStatus(ctx context.Context, id int64) (domain.TicketStatus, error) {
	if cached := s.statusCache.Get(ctx, id); cached != "" {
		return domain.TicketStatus(cached), nil
	}
	ticket, err := s.GetTicket(ctx, id)
	if err != nil {
		return "", err
	}
	s.statusCache.Set(ctx, id, string(ticket.Status))
	return ticket.Status, nil
}

// ListHistory returns the ticket's audit trail in timestamp order.
func (s *TicketService) ListHistory(ctx context.Context, ticketID int64) ([]domain.HistoryEntry, error) {
	if _, err := s.GetTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	entries, err := s.store.History().ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func assignmentAction(technicianName string) string {
	return fmt.Sprintf("Assigned to technician %s", technicianName)
}

func statusChangeAction(prev, next domain.TicketStatus) string {
	return fmt.Sprintf("Status changed from '%s' to '%s'", prev, next)
}

func (s *TicketService) publish(ctx context.Context, eventType events.EventType, ticketID, actorID int64, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		ActorID:   actorID,
		Timestamp: s.clock(),
		Payload:   payload,
	})
}
