package community

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/itarix-api/internal/apperr"
	"github.com/hongminglow/itarix-api/internal/logging"
	"github.com/hongminglow/itarix-api/internal/models"
	"github.com/hongminglow/itarix-api/internal/storage/memory"
)

type fixture struct {
	store      *memory.Store
	tools      *ToolService
	reviews    *ReviewService
	comments   *CommentService
	moderation *ModerationService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.New()
	log := logging.NewNop()
	return fixture{
		store:      store,
		tools:      NewToolService(store, log),
		reviews:    NewReviewService(store, log),
		comments:   NewCommentService(store, log),
		moderation: NewModerationService(store, log),
	}
}

func (f fixture) account(t *testing.T, name string) int64 {
	t.Helper()
	ctx := context.Background()
	p, err := f.store.CreatePerson(ctx, models.Person{Name: name, Email: name + "@example.com"})
	require.NoError(t, err)
	a, err := f.store.CreateAccount(ctx, models.Account{PersonID: p.ID, Username: name, PasswordHash: "x", Role: models.RoleUser})
	require.NoError(t, err)
	return a.ID
}

func (f fixture) tool(t *testing.T) models.Tool {
	t.Helper()
	tool, err := f.tools.Create(context.Background(), models.Tool{Name: " Copilot ", CategoryID: 3, WebsiteURL: "https://example.com"})
	require.NoError(t, err)
	return tool
}

func TestTools_CreateValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tool := f.tool(t)
	assert.Equal(t, "Copilot", tool.Name)
	assert.Equal(t, "Code Assistants", tool.CategoryName)

	tests := []struct {
		name string
		in   models.Tool
	}{
		{"missing name", models.Tool{CategoryID: 1}},
		{"bad url", models.Tool{Name: "x", CategoryID: 1, WebsiteURL: "ftp://x"}},
		{"missing category", models.Tool{Name: "x"}},
		{"unknown category", models.Tool{Name: "x", CategoryID: 99}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.tools.Create(ctx, tc.in)
			assert.Equal(t, apperr.Validation, apperr.KindOf(err))
		})
	}
}

func TestTools_UpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tool := f.tool(t)

	updated, err := f.tools.Update(ctx, tool.ID, models.Tool{Name: "Copilot X", CategoryID: 5})
	require.NoError(t, err)
	assert.Equal(t, "Productivity", updated.CategoryName)

	_, err = f.tools.Update(ctx, 9999, models.Tool{Name: "ghost", CategoryID: 1})
	assert.ErrorIs(t, err, ErrToolNotFound)

	require.NoError(t, f.tools.Delete(ctx, tool.ID))
	_, err = f.tools.Get(ctx, tool.ID)
	assert.ErrorIs(t, err, ErrToolNotFound)
	assert.ErrorIs(t, f.tools.Delete(ctx, tool.ID), ErrToolNotFound)
}

func TestReviews_ModerationFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tool := f.tool(t)
	ada := f.account(t, "ada")
	bob := f.account(t, "bob")

	_, err := f.reviews.Create(ctx, ada, tool.ID, 6, "")
	assert.ErrorIs(t, err, ErrInvalidRating)
	_, err = f.reviews.Create(ctx, ada, tool.ID, 4, strings.Repeat("a", MaxReviewLength+1))
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	r, err := f.reviews.Create(ctx, ada, tool.ID, 4, "solid")
	require.NoError(t, err)
	assert.False(t, r.Approved)

	visible, err := f.reviews.ListByTool(ctx, tool.ID)
	require.NoError(t, err)
	assert.Empty(t, visible)

	pending, err := f.moderation.PendingReviews(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, f.moderation.ApproveReview(ctx, r.ID))
	rating, err := f.reviews.Rating(ctx, tool.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Rating{Average: 4, Count: 1}, rating)

	_, err = f.reviews.Update(ctx, bob, r.ID, 1, "hijack")
	assert.ErrorIs(t, err, ErrReviewNotFound)
	assert.ErrorIs(t, f.reviews.Delete(ctx, bob, r.ID), ErrReviewNotFound)

	assert.ErrorIs(t, f.reviews.Report(ctx, bob, r.ID, "  "), ErrReasonRequired)
	require.NoError(t, f.reviews.Report(ctx, bob, r.ID, "spam"))

	require.NoError(t, f.moderation.DeleteReview(ctx, r.ID))
	assert.ErrorIs(t, f.moderation.DeleteReview(ctx, r.ID), ErrReviewNotFound)
}

func TestReviews_UnknownTool(t *testing.T) {
	f := newFixture(t)
	ada := f.account(t, "ada")

	_, err := f.reviews.Create(context.Background(), ada, 4242, 5, "")
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestComments_ThreadAndModeration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tool := f.tool(t)
	ada := f.account(t, "ada")
	bob := f.account(t, "bob")

	_, err := f.comments.Create(ctx, ada, models.Comment{ToolID: tool.ID, Text: "   "})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	root, err := f.comments.Create(ctx, ada, models.Comment{ToolID: tool.ID, Text: "first"})
	require.NoError(t, err)
	reply, err := f.comments.Create(ctx, bob, models.Comment{ToolID: tool.ID, ParentID: &root.ID, Text: "reply"})
	require.NoError(t, err)
	assert.Equal(t, "bob", reply.Username)

	missing := int64(777)
	_, err = f.comments.Create(ctx, bob, models.Comment{ToolID: tool.ID, ParentID: &missing, Text: "orphan"})
	assert.ErrorIs(t, err, ErrBadReference)

	n, err := f.comments.CountByTool(ctx, tool.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list, err := f.comments.ListByTool(ctx, tool.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, root.ID, list[0].ID)

	_, err = f.comments.Update(ctx, bob, root.ID, "edited")
	assert.ErrorIs(t, err, ErrCommentNotFound)
	edited, err := f.comments.Update(ctx, ada, root.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", edited.Text)

	require.NoError(t, f.comments.Report(ctx, ada, reply.ID, "rude"))
	flagged, err := f.moderation.FlaggedComments(ctx)
	require.NoError(t, err)
	require.Len(t, flagged, 1)
	assert.Equal(t, reply.ID, flagged[0].ID)

	require.NoError(t, f.moderation.ApproveComment(ctx, reply.ID))
	flagged, err = f.moderation.FlaggedComments(ctx)
	require.NoError(t, err)
	assert.Empty(t, flagged)

	require.NoError(t, f.comments.Delete(ctx, bob, reply.ID))
	assert.ErrorIs(t, f.moderation.DeleteComment(ctx, reply.ID), ErrCommentNotFound)
}

func TestComments_ByReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tool := f.tool(t)
	ada := f.account(t, "ada")

	r, err := f.reviews.Create(ctx, ada, tool.ID, 5, "great")
	require.NoError(t, err)
	_, err = f.comments.Create(ctx, ada, models.Comment{ToolID: tool.ID, ReviewID: &r.ID, Text: "agreed"})
	require.NoError(t, err)

	list, err := f.comments.ListByReview(ctx, r.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
