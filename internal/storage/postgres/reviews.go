package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/itarix-api/internal/models"
)

const reviewSelect = `
	SELECT r.id, r.tool_id, r.account_id, COALESCE(a.username, ''), r.rating, r.review_text,
		r.approved, r.flagged, r.created_at, r.updated_at
	FROM reviews r
	LEFT JOIN accounts a ON a.id = r.account_id`

// ListReviewsByTool returns a tool's reviews, newest first.
func (s *Store) ListReviewsByTool(ctx context.Context, toolID int64, approvedOnly bool) ([]models.Review, error) {
	query := reviewSelect + ` WHERE r.tool_id = $1 AND (r.approved OR NOT $2) ORDER BY r.created_at DESC, r.id DESC;`
	rows, err := s.pool.Query(ctx, query, toolID, approvedOnly)
	if err != nil {
		return nil, mapError(err)
	}
	return collect(rows, scanReview)
}

// RatingForTool averages approved reviews.
func (s *Store) RatingForTool(ctx context.Context, toolID int64) (models.Rating, error) {
	const query = `
		SELECT COALESCE(AVG(rating)::float8, 0), COUNT(*)
		FROM reviews
		WHERE tool_id = $1 AND approved;
	`
	var r models.Rating
	if err := s.pool.QueryRow(ctx, query, toolID).Scan(&r.Average, &r.Count); err != nil {
		return models.Rating{}, mapError(err)
	}
	return r, nil
}

// CreateReview inserts an unmoderated review.
func (s *Store) CreateReview(ctx context.Context, review models.Review) (models.Review, error) {
	const query = `
		WITH r AS (
			INSERT INTO reviews (tool_id, account_id, rating, review_text, approved, flagged)
			VALUES ($1, $2, $3, $4, $5, FALSE)
			RETURNING *
		)
		SELECT r.id, r.tool_id, r.account_id, COALESCE(a.username, ''), r.rating, r.review_text,
			r.approved, r.flagged, r.created_at, r.updated_at
		FROM r
		LEFT JOIN accounts a ON a.id = r.account_id;
	`
	row := s.pool.QueryRow(ctx, query, review.ToolID, review.AccountID, review.Rating, review.Text, review.Approved)
	return scanReview(row)
}

// UpdateReview edits a review owned by review.AccountID.
func (s *Store) UpdateReview(ctx context.Context, review models.Review) (models.Review, error) {
	const query = `
		WITH r AS (
			UPDATE reviews SET rating = $3, review_text = $4, updated_at = NOW()
			WHERE id = $1 AND account_id = $2
			RETURNING *
		)
		SELECT r.id, r.tool_id, r.account_id, COALESCE(a.username, ''), r.rating, r.review_text,
			r.approved, r.flagged, r.created_at, r.updated_at
		FROM r
		LEFT JOIN accounts a ON a.id = r.account_id;
	`
	return scanReview(s.pool.QueryRow(ctx, query, review.ID, review.AccountID, review.Rating, review.Text))
}

// DeleteReview removes a review; accountID of zero skips the ownership check.
func (s *Store) DeleteReview(ctx context.Context, id, accountID int64) error {
	const query = `DELETE FROM reviews WHERE id = $1 AND ($2::bigint = 0 OR account_id = $2);`
	return expectOne(s.pool.Exec(ctx, query, id, accountID))
}

// ReportReview stores the report and flags the review in one transaction.
func (s *Store) ReportReview(ctx context.Context, report models.Report) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := expectOne(tx.Exec(ctx, `UPDATE reviews SET flagged = TRUE WHERE id = $1;`, report.TargetID)); err != nil {
			return err
		}
		const insert = `INSERT INTO review_reports (review_id, account_id, reason) VALUES ($1, $2, $3);`
		if _, err := tx.Exec(ctx, insert, report.TargetID, report.AccountID, report.Reason); err != nil {
			return mapError(err)
		}
		return nil
	})
}

// ListPendingReviews returns reviews awaiting approval.
func (s *Store) ListPendingReviews(ctx context.Context) ([]models.Review, error) {
	rows, err := s.pool.Query(ctx, reviewSelect+` WHERE NOT r.approved ORDER BY r.created_at DESC, r.id DESC;`)
	if err != nil {
		return nil, mapError(err)
	}
	return collect(rows, scanReview)
}

// ApproveReview publishes a review.
func (s *Store) ApproveReview(ctx context.Context, id int64) error {
	return expectOne(s.pool.Exec(ctx, `UPDATE reviews SET approved = TRUE WHERE id = $1;`, id))
}

func scanReview(row pgx.Row) (models.Review, error) {
	var r models.Review
	err := row.Scan(&r.ID, &r.ToolID, &r.AccountID, &r.Username, &r.Rating, &r.Text,
		&r.Approved, &r.Flagged, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return models.Review{}, mapError(err)
	}
	return r, nil
}
