package community

import (
	"context"
	"fmt"

	"github.com/hongminglow/itarix-api/internal/logging"
	"github.com/hongminglow/itarix-api/internal/models"
	"github.com/hongminglow/itarix-api/internal/storage"
)

// ModerationStore is the persistence the moderation queue needs.
type ModerationStore interface {
	storage.ReviewStore
	storage.CommentStore
}

// ModerationService is the staff view over reviews and comments.
type ModerationService struct {
	store ModerationStore
	log   logging.Logger
}

func NewModerationService(store ModerationStore, log logging.Logger) *ModerationService {
	return &ModerationService{store: store, log: log.With("component", "moderation")}
}

func (s *ModerationService) PendingReviews(ctx context.Context) ([]models.Review, error) {
	reviews, err := s.store.ListPendingReviews(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending reviews: %w", err)
	}
	return reviews, nil
}

func (s *ModerationService) ApproveReview(ctx context.Context, id int64) error {
	if err := s.store.ApproveReview(ctx, id); err != nil {
		return translate(err, ErrReviewNotFound, ErrReviewNotFound, "approve review")
	}
	s.log.Info(ctx, "review approved", "review_id", id)
	return nil
}

// DeleteReview removes any review regardless of author.
func (s *ModerationService) DeleteReview(ctx context.Context, id int64) error {
	if err := s.store.DeleteReview(ctx, id, 0); err != nil {
		return translate(err, ErrReviewNotFound, ErrReviewNotFound, "delete review")
	}
	s.log.Info(ctx, "review removed by moderator", "review_id", id)
	return nil
}

func (s *ModerationService) FlaggedComments(ctx context.Context) ([]models.Comment, error) {
	comments, err := s.store.ListFlaggedComments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list flagged comments: %w", err)
	}
	return comments, nil
}

// ApproveComment approves a comment and clears its flag.
func (s *ModerationService) ApproveComment(ctx context.Context, id int64) error {
	if err := s.store.ApproveComment(ctx, id); err != nil {
		return translate(err, ErrCommentNotFound, ErrCommentNotFound, "approve comment")
	}
	s.log.Info(ctx, "comment approved", "comment_id", id)
	return nil
}

// DeleteComment removes any comment regardless of author.
func (s *ModerationService) DeleteComment(ctx context.Context, id int64) error {
	if err := s.store.DeleteComment(ctx, id, 0); err != nil {
		return translate(err, ErrCommentNotFound, ErrCommentNotFound, "delete comment")
	}
	s.log.Info(ctx, "comment removed by moderator", "comment_id", id)
	return nil
}
