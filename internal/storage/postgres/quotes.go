package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/itarix-api/internal/models"
)

const quoteColumns = `id, account_id, email, service, tier, subtype, pages, features, platforms,
	price, estimated_hours, note, save_to_account, created_at`

// CreateQuote inserts a priced quote.
func (s *Store) CreateQuote(ctx context.Context, quote models.Quote) (models.Quote, error) {
	const query = `
		INSERT INTO quotes (id, account_id, email, service, tier, subtype, pages, features, platforms,
			price, estimated_hours, note, save_to_account)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + quoteColumns + `;
	`
	features, platforms := quote.Features, quote.Platforms
	if features == nil {
		features = []string{}
	}
	if platforms == nil {
		platforms = []string{}
	}
	row := s.pool.QueryRow(ctx, query,
		quote.ID, quote.AccountID, quote.Email, quote.Service, quote.Tier, quote.Subtype, quote.Pages,
		features, platforms, quote.Price, quote.EstimatedHours, quote.Note, quote.SaveToAccount)
	return scanQuote(row)
}

// ListQuotesByAccount returns an account's quotes, newest first.
func (s *Store) ListQuotesByAccount(ctx context.Context, accountID int64) ([]models.Quote, error) {
	const query = `
		SELECT ` + quoteColumns + `
		FROM quotes
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC;
	`
	rows, err := s.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, mapError(err)
	}
	return collect(rows, scanQuote)
}

func scanQuote(row pgx.Row) (models.Quote, error) {
	var q models.Quote
	err := row.Scan(&q.ID, &q.AccountID, &q.Email, &q.Service, &q.Tier, &q.Subtype, &q.Pages,
		&q.Features, &q.Platforms, &q.Price, &q.EstimatedHours, &q.Note, &q.SaveToAccount, &q.CreatedAt)
	if err != nil {
		return models.Quote{}, mapError(err)
	}
	return q, nil
}

// collect scans every row with scan and always returns a non-nil slice.
func collect[T any](rows pgx.Rows, scan func(pgx.Row) (T, error)) ([]T, error) {
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}
