package community

import (
	"context"
	"fmt"

	"github.com/hongminglow/itarix-api/internal/logging"
	"github.com/hongminglow/itarix-api/internal/models"
	"github.com/hongminglow/itarix-api/internal/storage"
)

// CommentService manages discussion on tools and reviews.
type CommentService struct {
	store storage.CommentStore
	log   logging.Logger
}

func NewCommentService(store storage.CommentStore, log logging.Logger) *CommentService {
	return &CommentService{store: store, log: log.With("component", "comments")}
}

func (s *CommentService) ListByTool(ctx context.Context, toolID int64) ([]models.Comment, error) {
	comments, err := s.store.ListCommentsByTool(ctx, toolID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

func (s *CommentService) CountByTool(ctx context.Context, toolID int64) (int, error) {
	n, err := s.store.CountCommentsByTool(ctx, toolID)
	if err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return n, nil
}

func (s *CommentService) ListByReview(ctx context.Context, reviewID int64) ([]models.Comment, error) {
	comments, err := s.store.ListCommentsByReview(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("list review comments: %w", err)
	}
	return comments, nil
}

// Create posts a comment, optionally attached to a review or replying to
// another comment.
func (s *CommentService) Create(ctx context.Context, accountID int64, in models.Comment) (models.Comment, error) {
	text, err := requireText("commentText", in.Text, MaxCommentLength)
	if err != nil {
		return models.Comment{}, err
	}
	c, err := s.store.CreateComment(ctx, models.Comment{
		ToolID:    in.ToolID,
		ReviewID:  in.ReviewID,
		ParentID:  in.ParentID,
		AccountID: accountID,
		Text:      text,
	})
	if err != nil {
		return models.Comment{}, translate(err, ErrBadReference, ErrBadReference, "create comment")
	}
	s.log.Info(ctx, "comment created", "comment_id", c.ID, "tool_id", c.ToolID, "account_id", accountID)
	return c, nil
}

// Update edits a comment the account owns.
func (s *CommentService) Update(ctx context.Context, accountID, commentID int64, text string) (models.Comment, error) {
	text, err := requireText("commentText", text, MaxCommentLength)
	if err != nil {
		return models.Comment{}, err
	}
	c, err := s.store.UpdateComment(ctx, models.Comment{ID: commentID, AccountID: accountID, Text: text})
	return c, translate(err, ErrCommentNotFound, ErrCommentNotFound, "update comment")
}

// Delete removes a comment the account owns.
func (s *CommentService) Delete(ctx context.Context, accountID, commentID int64) error {
	if accountID == 0 {
		return ErrCommentNotFound
	}
	return translate(s.store.DeleteComment(ctx, commentID, accountID), ErrCommentNotFound, ErrCommentNotFound, "delete comment")
}

// Report flags a comment for moderation.
func (s *CommentService) Report(ctx context.Context, accountID, commentID int64, reason string) error {
	reason, err := requireText("reason", reason, MaxReasonLength)
	if err != nil {
		return ErrReasonRequired
	}
	err = s.store.ReportComment(ctx, models.Report{TargetID: commentID, AccountID: accountID, Reason: reason})
	if err != nil {
		return translate(err, ErrCommentNotFound, ErrCommentNotFound, "report comment")
	}
	s.log.Warn(ctx, "comment reported", "comment_id", commentID, "account_id", accountID)
	return nil
}
