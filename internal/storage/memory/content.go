package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/hongminglow/itarix-api/internal/models"
	"github.com/hongminglow/itarix-api/internal/storage"
)

func (s *Store) CreateQuote(_ context.Context, quote models.Quote) (models.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quotes[quote.ID]; ok {
		return models.Quote{}, storage.ErrAlreadyExists
	}
	if _, ok := s.accounts[quote.AccountID]; !ok {
		return models.Quote{}, storage.ErrInvalidReference
	}
	quote.CreatedAt = s.stamp(quote.CreatedAt)
	quote.Features = slices.Clone(quote.Features)
	quote.Platforms = slices.Clone(quote.Platforms)
	s.quotes[quote.ID] = quote
	return quote, nil
}

func (s *Store) ListQuotesByAccount(_ context.Context, accountID int64) ([]models.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Quote{}
	for _, q := range s.quotes {
		if q.AccountID == accountID {
			out = append(out, q)
		}
	}
	slices.SortFunc(out, func(a, b models.Quote) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (s *Store) ListCategories(_ context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b models.Category) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *Store) ListTools(_ context.Context) ([]models.Tool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Tool, 0, len(s.tools))
	for _, t := range s.tools {
		out = append(out, s.withCategory(t))
	}
	slices.SortFunc(out, func(a, b models.Tool) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *Store) GetTool(_ context.Context, id int64) (models.Tool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tools[id]
	if !ok {
		return models.Tool{}, storage.ErrNotFound
	}
	return s.withCategory(t), nil
}

func (s *Store) CreateTool(_ context.Context, tool models.Tool) (models.Tool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[tool.CategoryID]; !ok {
		return models.Tool{}, storage.ErrInvalidReference
	}
	tool.ID = s.nextID()
	tool.CreatedAt = s.stamp(tool.CreatedAt)
	tool.CategoryName = ""
	s.tools[tool.ID] = tool
	return s.withCategory(tool), nil
}

func (s *Store) UpdateTool(_ context.Context, tool models.Tool) (models.Tool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tools[tool.ID]
	if !ok {
		return models.Tool{}, storage.ErrNotFound
	}
	if _, ok := s.categories[tool.CategoryID]; !ok {
		return models.Tool{}, storage.ErrInvalidReference
	}
	existing.Name = tool.Name
	existing.Description = tool.Description
	existing.CategoryID = tool.CategoryID
	existing.WebsiteURL = tool.WebsiteURL
	s.tools[tool.ID] = existing
	return s.withCategory(existing), nil
}

func (s *Store) DeleteTool(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tools[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.tools, id)
	for rid, r := range s.reviews {
		if r.ToolID == id {
			delete(s.reviews, rid)
		}
	}
	for cid, c := range s.comments {
		if c.ToolID == id {
			delete(s.comments, cid)
		}
	}
	return nil
}

func (s *Store) withCategory(t models.Tool) models.Tool {
	t.CategoryName = s.categories[t.CategoryID].Name
	return t
}

func (s *Store) ListReviewsByTool(_ context.Context, toolID int64, approvedOnly bool) ([]models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collectReviews(func(r models.Review) bool {
		return r.ToolID == toolID && (!approvedOnly || r.Approved)
	}), nil
}

func (s *Store) RatingForTool(_ context.Context, toolID int64) (models.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rating models.Rating
	sum := 0
	for _, r := range s.reviews {
		if r.ToolID == toolID && r.Approved {
			rating.Count++
			sum += r.Rating
		}
	}
	if rating.Count > 0 {
		rating.Average = float64(sum) / float64(rating.Count)
	}
	return rating, nil
}

func (s *Store) CreateReview(_ context.Context, review models.Review) (models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tools[review.ToolID]; !ok {
		return models.Review{}, storage.ErrInvalidReference
	}
	if _, ok := s.accounts[review.AccountID]; !ok {
		return models.Review{}, storage.ErrInvalidReference
	}
	review.ID = s.nextID()
	review.CreatedAt = s.stamp(review.CreatedAt)
	review.UpdatedAt = nil
	s.reviews[review.ID] = review
	review.Username = s.usernameOf(review.AccountID)
	return review, nil
}

func (s *Store) UpdateReview(_ context.Context, review models.Review) (models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.reviews[review.ID]
	if !ok || existing.AccountID != review.AccountID {
		return models.Review{}, storage.ErrNotFound
	}
	existing.Rating = review.Rating
	existing.Text = review.Text
	existing.UpdatedAt = ptr(s.now().UTC())
	s.reviews[review.ID] = existing
	existing.Username = s.usernameOf(existing.AccountID)
	return existing, nil
}

func (s *Store) DeleteReview(_ context.Context, id, accountID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.reviews[id]
	if !ok || (accountID != 0 && existing.AccountID != accountID) {
		return storage.ErrNotFound
	}
	delete(s.reviews, id)
	for cid, c := range s.comments {
		if c.ReviewID != nil && *c.ReviewID == id {
			delete(s.comments, cid)
		}
	}
	return nil
}

func (s *Store) ReportReview(_ context.Context, report models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviews[report.TargetID]
	if !ok {
		return storage.ErrNotFound
	}
	report.ID = s.nextID()
	report.CreatedAt = s.stamp(report.CreatedAt)
	s.reviewReports = append(s.reviewReports, report)
	r.Flagged = true
	s.reviews[r.ID] = r
	return nil
}

func (s *Store) ListPendingReviews(_ context.Context) ([]models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collectReviews(func(r models.Review) bool { return !r.Approved }), nil
}

func (s *Store) ApproveReview(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviews[id]
	if !ok {
		return storage.ErrNotFound
	}
	r.Approved = true
	s.reviews[id] = r
	return nil
}

func (s *Store) collectReviews(match func(models.Review) bool) []models.Review {
	out := []models.Review{}
	for _, r := range s.reviews {
		if match(r) {
			r.Username = s.usernameOf(r.AccountID)
			out = append(out, r)
		}
	}
	newestFirst(out,
		func(r models.Review) time.Time { return r.CreatedAt },
		func(r models.Review) int64 { return r.ID })
	return out
}

func (s *Store) ListCommentsByTool(_ context.Context, toolID int64) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collectComments(func(c models.Comment) bool { return c.ToolID == toolID }), nil
}

func (s *Store) CountCommentsByTool(_ context.Context, toolID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, c := range s.comments {
		if c.ToolID == toolID {
			n++
		}
	}
	return n, nil
}

func (s *Store) ListCommentsByReview(_ context.Context, reviewID int64) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collectComments(func(c models.Comment) bool {
		return c.ReviewID != nil && *c.ReviewID == reviewID
	}), nil
}

func (s *Store) CreateComment(_ context.Context, comment models.Comment) (models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tools[comment.ToolID]; !ok {
		return models.Comment{}, storage.ErrInvalidReference
	}
	if _, ok := s.accounts[comment.AccountID]; !ok {
		return models.Comment{}, storage.ErrInvalidReference
	}
	if comment.ReviewID != nil {
		if _, ok := s.reviews[*comment.ReviewID]; !ok {
			return models.Comment{}, storage.ErrInvalidReference
		}
	}
	if comment.ParentID != nil {
		if _, ok := s.comments[*comment.ParentID]; !ok {
			return models.Comment{}, storage.ErrInvalidReference
		}
	}
	comment.ID = s.nextID()
	comment.CreatedAt = s.stamp(comment.CreatedAt)
	comment.UpdatedAt = nil
	s.comments[comment.ID] = comment
	comment.Username = s.usernameOf(comment.AccountID)
	return comment, nil
}

func (s *Store) UpdateComment(_ context.Context, comment models.Comment) (models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.comments[comment.ID]
	if !ok || existing.AccountID != comment.AccountID {
		return models.Comment{}, storage.ErrNotFound
	}
	existing.Text = comment.Text
	existing.UpdatedAt = ptr(s.now().UTC())
	s.comments[comment.ID] = existing
	existing.Username = s.usernameOf(existing.AccountID)
	return existing, nil
}

func (s *Store) DeleteComment(_ context.Context, id, accountID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.comments[id]
	if !ok || (accountID != 0 && existing.AccountID != accountID) {
		return storage.ErrNotFound
	}
	delete(s.comments, id)
	for cid, c := range s.comments {
		if c.ParentID != nil && *c.ParentID == id {
			c.ParentID = nil
			s.comments[cid] = c
		}
	}
	return nil
}

func (s *Store) ReportComment(_ context.Context, report models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[report.TargetID]
	if !ok {
		return storage.ErrNotFound
	}
	report.ID = s.nextID()
	report.CreatedAt = s.stamp(report.CreatedAt)
	s.commentReport = append(s.commentReport, report)
	c.Flagged = true
	s.comments[c.ID] = c
	return nil
}

func (s *Store) ListFlaggedComments(_ context.Context) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collectComments(func(c models.Comment) bool { return c.Flagged }), nil
}

func (s *Store) ApproveComment(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return storage.ErrNotFound
	}
	c.Approved = true
	c.Flagged = false
	s.comments[id] = c
	return nil
}

func (s *Store) collectComments(match func(models.Comment) bool) []models.Comment {
	out := []models.Comment{}
	for _, c := range s.comments {
		if match(c) {
			c.Username = s.usernameOf(c.AccountID)
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b models.Comment) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return int(a.ID - b.ID)
	})
	return out
}
