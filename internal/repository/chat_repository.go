package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/helpfast/helpdesk/internal/domain"
)

// ChatRepository manages the per-ticket conversation thread.
type ChatRepository interface {
	Create(ctx context.Context, msg *domain.ChatMessage) error
	GetByID(ctx context.Context, id int64) (*domain.ChatMessage, error)
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.ChatMessage, error)
	ListAll(ctx context.Context) ([]domain.ChatMessage, error)
	DeleteByTicket(ctx context.Context, ticketID int64) error
	NullifyUserRefs(ctx context.Context, userID int64) error
}

type chatRepository struct {
	db DB
}

// NewChatRepository builds repository.
func NewChatRepository(db DB) ChatRepository {
	return &chatRepository{db: db}
}

const chatColumns = `id, ticket_id, sender_id, recipient_id, body, message_type, parent_id, sent_at`

func (r *chatRepository) Create(ctx context.Context, msg *domain.ChatMessage) error {
	const query = `
        INSERT INTO chat_messages (ticket_id, sender_id, recipient_id, body, message_type, parent_id, sent_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		msg.TicketID,
		msg.SenderID,
		msg.RecipientID,
		msg.Body,
		msg.MessageType,
		msg.ParentID,
		msg.SentAt,
	).Scan(&msg.ID)
}

func (r *chatRepository) GetByID(ctx context.Context, id int64) (*domain.ChatMessage, error) {
	const query = `SELECT ` + chatColumns + ` FROM chat_messages WHERE id=$1`
	var msg domain.ChatMessage
	if err := scanChatMessage(r.db.QueryRow(ctx, query, id), &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *chatRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.ChatMessage, error) {
	const query = `SELECT ` + chatColumns + ` FROM chat_messages WHERE ticket_id=$1 ORDER BY sent_at ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectChatMessages(rows)
}

func (r *chatRepository) ListAll(ctx context.Context) ([]domain.ChatMessage, error) {
	const query = `SELECT ` + chatColumns + ` FROM chat_messages ORDER BY sent_at ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectChatMessages(rows)
}

func (r *chatRepository) DeleteByTicket(ctx context.Context, ticketID int64) error {
	const query = `DELETE FROM chat_messages WHERE ticket_id=$1`
	_, err := r.db.Exec(ctx, query, ticketID)
	return err
}

// NullifyUserRefs detaches a user from every message they sent or received.
// Messages survive; the identity link does not.
func (r *chatRepository) NullifyUserRefs(ctx context.Context, userID int64) error {
	const query = `
        UPDATE chat_messages SET
            sender_id = CASE WHEN sender_id=$1 THEN NULL ELSE sender_id END,
            recipient_id = CASE WHEN recipient_id=$1 THEN NULL ELSE recipient_id END
        WHERE sender_id=$1 OR recipient_id=$1`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

func scanChatMessage(row pgx.Row, msg *domain.ChatMessage) error {
	return row.Scan(
		&msg.ID,
		&msg.TicketID,
		&msg.SenderID,
		&msg.RecipientID,
		&msg.Body,
		&msg.MessageType,
		&msg.ParentID,
		&msg.SentAt,
	)
}

func collectChatMessages(rows pgx.Rows) ([]domain.ChatMessage, error) {
	var result []domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		if err := scanChatMessage(rows, &msg); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}
