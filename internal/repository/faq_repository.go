package repository

import (
	"context"
	"strings"

	"github.com/helpfast/helpdesk/internal/domain"
)

// FAQRepository queries the curated FAQ catalog.
type FAQRepository interface {
	SearchActive(ctx context.Context, keywords []string, limit int) ([]domain.FAQ, error)
}

type faqRepository struct {
	db DB
}

// NewFAQRepository builds repository.
func NewFAQRepository(db DB) FAQRepository {
	return &faqRepository{db: db}
}

// SearchActive returns active FAQs whose question or answer contains any of
// the keywords, ordered by question.
func (r *faqRepository) SearchActive(ctx context.Context, keywords []string, limit int) ([]domain.FAQ, error) {
	if len(keywords) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}

	patterns := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		patterns = append(patterns, "%"+kw+"%")
	}
	if len(patterns) == 0 {
		return nil, nil
	}

	const query = `
        SELECT id, question, answer, active
        FROM faqs
        WHERE active
          AND (LOWER(question) LIKE ANY($1) OR LOWER(answer) LIKE ANY($1))
        ORDER BY question ASC
        LIMIT $2`
	rows, err := r.db.Query(ctx, query, patterns, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.FAQ
	for rows.Next() {
		var faq domain.FAQ
		if err := rows.Scan(&faq.ID, &faq.Question, &faq.Answer, &faq.Active); err != nil {
			return nil, err
		}
		result = append(result, faq)
	}
	return result, rows.Err()
}
