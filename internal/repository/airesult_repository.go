package repository

import (
	"context"

	"github.com/helpfast/helpdesk/internal/domain"
)

// AIResultRepository stores serialized assistant outcomes per chat message.
type AIResultRepository interface {
	Create(ctx context.Context, result *domain.ChatAIResult) error
	GetByID(ctx context.Context, id int64) (*domain.ChatAIResult, error)
	ListRecent(ctx context.Context, limit int) ([]domain.ChatAIResult, error)
}

type aiResultRepository struct {
	db DB
}

// NewAIResultRepository builds repository.
func NewAIResultRepository(db DB) AIResultRepository {
	return &aiResultRepository{db: db}
}

func (r *aiResultRepository) Create(ctx context.Context, result *domain.ChatAIResult) error {
	const query = `
        INSERT INTO chat_ai_results (chat_message_id, result_json, created_at)
        VALUES ($1,$2,$3)
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		result.ChatMessageID,
		result.ResultJSON,
		result.CreatedAt,
	).Scan(&result.ID)
}

func (r *aiResultRepository) GetByID(ctx context.Context, id int64) (*domain.ChatAIResult, error) {
	const query = `
        SELECT id, chat_message_id, result_json, created_at
        FROM chat_ai_results WHERE id=$1`
	var result domain.ChatAIResult
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&result.ID,
		&result.ChatMessageID,
		&result.ResultJSON,
		&result.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *aiResultRepository) ListRecent(ctx context.Context, limit int) ([]domain.ChatAIResult, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, chat_message_id, result_json, created_at
        FROM chat_ai_results ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.ChatAIResult
	for rows.Next() {
		var result domain.ChatAIResult
		if err := rows.Scan(
			&result.ID,
			&result.ChatMessageID,
			&result.ResultJSON,
			&result.CreatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}
