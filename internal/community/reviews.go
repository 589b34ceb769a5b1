package community

import (
	"context"
	"fmt"

	"github.com/hongminglow/itarix-api/internal/logging"
	"github.com/hongminglow/itarix-api/internal/models"
	"github.com/hongminglow/itarix-api/internal/storage"
)

// ReviewService manages reviews written by signed-in accounts. New reviews
// are hidden until a moderator approves them.
type ReviewService struct {
	store storage.ReviewStore
	log   logging.Logger
}

func NewReviewService(store storage.ReviewStore, log logging.Logger) *ReviewService {
	return &ReviewService{store: store, log: log.With("component", "reviews")}
}

// ListByTool returns the approved reviews of a tool.
func (s *ReviewService) ListByTool(ctx context.Context, toolID int64) ([]models.Review, error) {
	reviews, err := s.store.ListReviewsByTool(ctx, toolID, true)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// Rating averages approved reviews of a tool.
func (s *ReviewService) Rating(ctx context.Context, toolID int64) (models.Rating, error) {
	r, err := s.store.RatingForTool(ctx, toolID)
	if err != nil {
		return models.Rating{}, fmt.Errorf("rating: %w", err)
	}
	return r, nil
}

func (s *ReviewService) Create(ctx context.Context, accountID, toolID int64, rating int, text string) (models.Review, error) {
	text, err := validateReview(rating, text)
	if err != nil {
		return models.Review{}, err
	}
	r, err := s.store.CreateReview(ctx, models.Review{ToolID: toolID, AccountID: accountID, Rating: rating, Text: text})
	if err != nil {
		return models.Review{}, translate(err, ErrToolNotFound, ErrToolNotFound, "create review")
	}
	s.log.Info(ctx, "review created", "review_id", r.ID, "tool_id", toolID, "account_id", accountID)
	return r, nil
}

// Update edits a review the account owns.
func (s *ReviewService) Update(ctx context.Context, accountID, reviewID int64, rating int, text string) (models.Review, error) {
	text, err := validateReview(rating, text)
	if err != nil {
		return models.Review{}, err
	}
	r, err := s.store.UpdateReview(ctx, models.Review{ID: reviewID, AccountID: accountID, Rating: rating, Text: text})
	return r, translate(err, ErrReviewNotFound, ErrReviewNotFound, "update review")
}

// Delete removes a review the account owns.
func (s *ReviewService) Delete(ctx context.Context, accountID, reviewID int64) error {
	if accountID == 0 {
		return ErrReviewNotFound
	}
	return translate(s.store.DeleteReview(ctx, reviewID, accountID), ErrReviewNotFound, ErrReviewNotFound, "delete review")
}

// Report flags a review for moderation.
func (s *ReviewService) Report(ctx context.Context, accountID, reviewID int64, reason string) error {
	reason, err := requireText("reason", reason, MaxReasonLength)
	if err != nil {
		return ErrReasonRequired
	}
	err = s.store.ReportReview(ctx, models.Report{TargetID: reviewID, AccountID: accountID, Reason: reason})
	if err != nil {
		return translate(err, ErrReviewNotFound, ErrReviewNotFound, "report review")
	}
	s.log.Warn(ctx, "review reported", "review_id", reviewID, "account_id", accountID)
	return nil
}

func validateReview(rating int, text string) (string, error) {
	if rating < 1 || rating > 5 {
		return "", ErrInvalidRating
	}
	return optionalText("reviewText", text, MaxReviewLength)
}
