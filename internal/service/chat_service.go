package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/helpfast/helpdesk/internal/domain"
	"github.com/helpfast/helpdesk/internal/events"
	"github.com/helpfast/helpdesk/internal/repository"
	apperrors "github.com/helpfast/helpdesk/pkg/util"
)

// ChatService manages the per-ticket conversation thread and the stored
// assistant results attached to it.
type ChatService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	clock      func() time.Time
}

// ChatDependencies bundles collaborators for the chat service.
type ChatDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
}

// NewChatService builds the service.
func NewChatService(deps ChatDependencies) *ChatService {
	return &ChatService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		clock:      time.Now,
	}
}

// PostMessage appends a client message to a ticket's thread. The sender is
// the ticket owner and the recipient the current assignee (possibly none);
// the body is trimmed and clamped to the storage bound.
func (s *ChatService) PostMessage(ctx context.Context, ticketID int64, body string, parentID *int64) (*domain.ChatMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("message body required", nil)
	}
	if ticketID <= 0 {
		return nil, apperrors.NewValidationError("ticket id required", nil)
	}

	ticket, err := s.store.Tickets().GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	body = truncateRunes(body, domain.MaxChatMessageLen)
	if parentID != nil && *parentID <= 0 {
		parentID = nil
	}

	ownerID := ticket.OwnerID
	msg := &domain.ChatMessage{
		TicketID:    &ticket.ID,
		SenderID:    &ownerID,
		RecipientID: ticket.AssigneeID,
		Body:        body,
		MessageType: domain.ChatTypeUser,
		ParentID:    parentID,
		SentAt:      s.clock(),
	}
	if err := s.store.Chat().Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventChatMessageAdded,
			TicketID:  ticket.ID,
			ActorID:   ownerID,
			Timestamp: s.clock(),
			Payload: events.ChatMessageAddedPayload{
				MessageID:   msg.ID,
				BodyPreview: stringPreview(msg.Body, 120),
			},
		})
	}
	return msg, nil
}

// GetMessage fetches a single message.
func (s *ChatService) GetMessage(ctx context.Context, id int64) (*domain.ChatMessage, error) {
	msg, err := s.store.Chat().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("chat message", map[string]any{"chat_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return msg, nil
}

// ListMessages returns the thread for a ticket in send order; a nil
// ticketID lists everything.
func (s *ChatService) ListMessages(ctx context.Context, ticketID *int64) ([]domain.ChatMessage, error) {
	var (
		msgs []domain.ChatMessage
		err  error
	)
	if ticketID != nil {
		msgs, err = s.store.Chat().ListByTicket(ctx, *ticketID)
	} else {
		msgs, err = s.store.Chat().ListAll(ctx)
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return msgs, nil
}

// SaveAIResult stores a serialized assistant outcome for a chat message.
func (s *ChatService) SaveAIResult(ctx context.Context, chatMessageID int64, resultJSON string) (*domain.ChatAIResult, error) {
	if chatMessageID <= 0 {
		return nil, apperrors.NewValidationError("chat message id required", nil)
	}
	resultJSON = truncateRunes(resultJSON, domain.MaxAIResultLen)
	result := &domain.ChatAIResult{
		ChatMessageID: chatMessageID,
		ResultJSON:    resultJSON,
		CreatedAt:     s.clock(),
	}
	if err := s.store.AIResults().Create(ctx, result); err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// GetAIResult fetches a stored assistant outcome.
func (s *ChatService) GetAIResult(ctx context.Context, id int64) (*domain.ChatAIResult, error) {
	result, err := s.store.AIResults().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ai result", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// ListAIResults returns recent assistant outcomes, newest first.
func (s *ChatService) ListAIResults(ctx context.Context, limit int) ([]domain.ChatAIResult, error) {
	results, err := s.store.AIResults().ListRecent(ctx, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return results, nil
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return truncateRunes(body, max)
	}
	truncated := truncateRunes(body, max-3)
	if truncated == body {
		return body
	}
	return truncated + "..."
}

// truncateRunes bounds s to max characters, cutting only on rune boundaries
// so the result is always valid UTF-8.
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	var n int
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
