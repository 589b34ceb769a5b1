package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/itarix-api/internal/models"
)

const toolSelect = `
	SELECT t.id, t.name, t.description, t.category_id, c.name, t.website_url, t.created_at
	FROM tools t
	JOIN categories c ON c.id = t.category_id`

// ListCategories returns every tool category by name.
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM categories ORDER BY name;`)
	if err != nil {
		return nil, mapError(err)
	}
	return collect(rows, func(row pgx.Row) (models.Category, error) {
		var c models.Category
		if err := row.Scan(&c.ID, &c.Name); err != nil {
			return models.Category{}, mapError(err)
		}
		return c, nil
	})
}

// ListTools returns every tool by name.
func (s *Store) ListTools(ctx context.Context) ([]models.Tool, error) {
	rows, err := s.pool.Query(ctx, toolSelect+` ORDER BY t.name, t.id;`)
	if err != nil {
		return nil, mapError(err)
	}
	return collect(rows, scanTool)
}

// GetTool fetches one tool.
func (s *Store) GetTool(ctx context.Context, id int64) (models.Tool, error) {
	return scanTool(s.pool.QueryRow(ctx, toolSelect+` WHERE t.id = $1;`, id))
}

// CreateTool inserts a tool.
func (s *Store) CreateTool(ctx context.Context, tool models.Tool) (models.Tool, error) {
	const query = `
		WITH t AS (
			INSERT INTO tools (name, description, category_id, website_url)
			VALUES ($1, $2, $3, $4)
			RETURNING *
		)
		SELECT t.id, t.name, t.description, t.category_id, c.name, t.website_url, t.created_at
		FROM t
		JOIN categories c ON c.id = t.category_id;
	`
	return scanTool(s.pool.QueryRow(ctx, query, tool.Name, tool.Description, tool.CategoryID, tool.WebsiteURL))
}

// UpdateTool replaces a tool's editable fields.
func (s *Store) UpdateTool(ctx context.Context, tool models.Tool) (models.Tool, error) {
	const query = `
		WITH t AS (
			UPDATE tools SET name = $2, description = $3, category_id = $4, website_url = $5
			WHERE id = $1
			RETURNING *
		)
		SELECT t.id, t.name, t.description, t.category_id, c.name, t.website_url, t.created_at
		FROM t
		JOIN categories c ON c.id = t.category_id;
	`
	return scanTool(s.pool.QueryRow(ctx, query, tool.ID, tool.Name, tool.Description, tool.CategoryID, tool.WebsiteURL))
}

// DeleteTool removes a tool together with its reviews and comments.
func (s *Store) DeleteTool(ctx context.Context, id int64) error {
	return expectOne(s.pool.Exec(ctx, `DELETE FROM tools WHERE id = $1;`, id))
}

func scanTool(row pgx.Row) (models.Tool, error) {
	var t models.Tool
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.CategoryID, &t.CategoryName, &t.WebsiteURL, &t.CreatedAt); err != nil {
		return models.Tool{}, mapError(err)
	}
	return t, nil
}
