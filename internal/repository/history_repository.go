package repository

import (
	"context"

	"github.com/helpfast/helpdesk/internal/domain"
)

// HistoryRepository stores the append-only ticket audit trail. Deletes exist
// only for the user-removal and ticket-deletion cascades.
type HistoryRepository interface {
	Append(ctx context.Context, entry *domain.HistoryEntry) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.HistoryEntry, error)
	DeleteByTicket(ctx context.Context, ticketID int64) error
	DeleteByActor(ctx context.Context, actorID int64) error
}

type historyRepository struct {
	db DB
}

// NewHistoryRepository builds repository.
func NewHistoryRepository(db DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Append(ctx context.Context, entry *domain.HistoryEntry) error {
	const query = `
        INSERT INTO ticket_history (ticket_id, action, actor_id, occurred_at)
        VALUES ($1,$2,$3,$4)
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		entry.TicketID,
		entry.Action,
		entry.ActorID,
		entry.OccurredAt,
	).Scan(&entry.ID)
}

func (r *historyRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.HistoryEntry, error) {
	const query = `
        SELECT id, ticket_id, action, actor_id, occurred_at
        FROM ticket_history WHERE ticket_id=$1 ORDER BY occurred_at ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.HistoryEntry
	for rows.Next() {
		var entry domain.HistoryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.Action,
			&entry.ActorID,
			&entry.OccurredAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *historyRepository) DeleteByTicket(ctx context.Context, ticketID int64) error {
	const query = `DELETE FROM ticket_history WHERE ticket_id=$1`
	_, err := r.db.Exec(ctx, query, ticketID)
	return err
}

func (r *historyRepository) DeleteByActor(ctx context.Context, actorID int64) error {
	const query = `DELETE FROM ticket_history WHERE actor_id=$1`
	_, err := r.db.Exec(ctx, query, actorID)
	return err
}
