package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/itarix-api/internal/models"
)

const commentSelect = `
	SELECT c.id, c.tool_id, c.review_id, c.parent_id, c.account_id, COALESCE(a.username, ''),
		c.comment_text, c.approved, c.flagged, c.created_at, c.updated_at
	FROM comments c
	LEFT JOIN accounts a ON a.id = c.account_id`

// ListCommentsByTool returns a tool's comments in posting order.
func (s *Store) ListCommentsByTool(ctx context.Context, toolID int64) ([]models.Comment, error) {
	return s.listComments(ctx, ` WHERE c.tool_id = $1`, toolID)
}

// CountCommentsByTool counts a tool's comments.
func (s *Store) CountCommentsByTool(ctx context.Context, toolID int64) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM comments WHERE tool_id = $1;`, toolID).Scan(&n); err != nil {
		return 0, mapError(err)
	}
	return n, nil
}

// ListCommentsByReview returns the comments attached to a review.
func (s *Store) ListCommentsByReview(ctx context.Context, reviewID int64) ([]models.Comment, error) {
	return s.listComments(ctx, ` WHERE c.review_id = $1`, reviewID)
}

// CreateComment inserts a comment.
func (s *Store) CreateComment(ctx context.Context, comment models.Comment) (models.Comment, error) {
	const query = `
		WITH c AS (
			INSERT INTO comments (tool_id, review_id, parent_id, account_id, comment_text, approved, flagged)
			VALUES ($1, $2, $3, $4, $5, $6, FALSE)
			RETURNING *
		)
		SELECT c.id, c.tool_id, c.review_id, c.parent_id, c.account_id, COALESCE(a.username, ''),
			c.comment_text, c.approved, c.flagged, c.created_at, c.updated_at
		FROM c
		LEFT JOIN accounts a ON a.id = c.account_id;
	`
	row := s.pool.QueryRow(ctx, query, comment.ToolID, comment.ReviewID, comment.ParentID,
		comment.AccountID, comment.Text, comment.Approved)
	return scanComment(row)
}

// UpdateComment edits a comment owned by comment.AccountID.
func (s *Store) UpdateComment(ctx context.Context, comment models.Comment) (models.Comment, error) {
	const query = `
		WITH c AS (
			UPDATE comments SET comment_text = $3, updated_at = NOW()
			WHERE id = $1 AND account_id = $2
			RETURNING *
		)
		SELECT c.id, c.tool_id, c.review_id, c.parent_id, c.account_id, COALESCE(a.username, ''),
			c.comment_text, c.approved, c.flagged, c.created_at, c.updated_at
		FROM c
		LEFT JOIN accounts a ON a.id = c.account_id;
	`
	return scanComment(s.pool.QueryRow(ctx, query, comment.ID, comment.AccountID, comment.Text))
}

// DeleteComment removes a comment; accountID of zero skips the ownership check.
func (s *Store) DeleteComment(ctx context.Context, id, accountID int64) error {
	const query = `DELETE FROM comments WHERE id = $1 AND ($2::bigint = 0 OR account_id = $2);`
	return expectOne(s.pool.Exec(ctx, query, id, accountID))
}

// ReportComment stores the report and flags the comment in one transaction.
func (s *Store) ReportComment(ctx context.Context, report models.Report) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := expectOne(tx.Exec(ctx, `UPDATE comments SET flagged = TRUE WHERE id = $1;`, report.TargetID)); err != nil {
			return err
		}
		const insert = `INSERT INTO comment_reports (comment_id, account_id, reason) VALUES ($1, $2, $3);`
		if _, err := tx.Exec(ctx, insert, report.TargetID, report.AccountID, report.Reason); err != nil {
			return mapError(err)
		}
		return nil
	})
}

// ListFlaggedComments returns comments reported by users.
func (s *Store) ListFlaggedComments(ctx context.Context) ([]models.Comment, error) {
	return s.listComments(ctx, ` WHERE c.flagged`)
}

// ApproveComment approves a comment and clears its flag.
func (s *Store) ApproveComment(ctx context.Context, id int64) error {
	const query = `UPDATE comments SET approved = TRUE, flagged = FALSE WHERE id = $1;`
	return expectOne(s.pool.Exec(ctx, query, id))
}

func (s *Store) listComments(ctx context.Context, where string, args ...any) ([]models.Comment, error) {
	rows, err := s.pool.Query(ctx, commentSelect+where+` ORDER BY c.created_at, c.id;`, args...)
	if err != nil {
		return nil, mapError(err)
	}
	return collect(rows, scanComment)
}

func scanComment(row pgx.Row) (models.Comment, error) {
	var c models.Comment
	err := row.Scan(&c.ID, &c.ToolID, &c.ReviewID, &c.ParentID, &c.AccountID, &c.Username,
		&c.Text, &c.Approved, &c.Flagged, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return models.Comment{}, mapError(err)
	}
	return c, nil
}
