package consultation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/itarix-api/internal/logging"
	"github.com/hongminglow/itarix-api/internal/models"
	"github.com/hongminglow/itarix-api/internal/storage/memory"
)

func setup(t *testing.T) (*Service, *memory.Store, int64) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	p, err := store.CreatePerson(ctx, models.Person{Name: "ada", Email: "ada@example.com"})
	require.NoError(t, err)
	a, err := store.CreateAccount(ctx, models.Account{PersonID: p.ID, Username: "ada", PasswordHash: "x", Role: models.RoleUser})
	require.NoError(t, err)
	return NewService(store, logging.NewNop()), store, a.ID
}

func TestCreate_DefaultsToDraft(t *testing.T) {
	svc, _, acct := setup(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, acct, models.Consultation{
		ServiceTypeID: 1,
		Answers: []models.ConsultationAnswer{
			{QuestionID: 1, Value: "a shop"},
			{QuestionID: 2, OptionIDs: []int64{3, 4, 3}},
		},
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, acct, id)
	require.NoError(t, err)
	assert.Equal(t, models.ConsultationDraft, got.Status)
	require.Len(t, got.Answers, 2)
	assert.Equal(t, []int64{3, 4}, got.Answers[1].OptionIDs)
}

func TestCreate_Rejects(t *testing.T) {
	svc, _, acct := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, acct, models.Consultation{ServiceTypeID: 1, Status: "archived"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.Create(ctx, acct, models.Consultation{ServiceTypeID: 42})
	assert.ErrorIs(t, err, ErrUnknownServiceType)

	_, err = svc.Create(ctx, acct, models.Consultation{ServiceTypeID: 1, Answers: []models.ConsultationAnswer{{Value: "x"}}})
	assert.ErrorIs(t, err, ErrInvalidQuestion)
}

func TestList_PagingAndFilters(t *testing.T) {
	svc, _, acct := setup(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		status := models.ConsultationDraft
		if i%2 == 0 {
			status = models.ConsultationSubmitted
		}
		_, err := svc.Create(ctx, acct, models.Consultation{ServiceTypeID: 2, Status: status})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, acct, Query{Limit: 2, Offset: -3})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 0, page.Offset)
	assert.Len(t, page.Items, 2)

	page, err = svc.List(ctx, acct, Query{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, page.Limit)

	page, err = svc.List(ctx, acct, Query{})
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, page.Limit)

	n, err := svc.Count(ctx, acct, Query{Status: "submitted"})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	from := time.Now().Add(time.Hour)
	to := time.Now()
	_, err = svc.List(ctx, acct, Query{From: &from, To: &to})
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestGet_Ownership(t *testing.T) {
	svc, store, acct := setup(t)
	ctx := context.Background()

	_, err := svc.Latest(ctx, acct)
	assert.ErrorIs(t, err, ErrNotFound)

	id, err := svc.Create(ctx, acct, models.Consultation{ServiceTypeID: 3})
	require.NoError(t, err)

	p, err := store.CreatePerson(ctx, models.Person{Name: "eve", Email: "eve@example.com"})
	require.NoError(t, err)
	eve, err := store.CreateAccount(ctx, models.Account{PersonID: p.ID, Username: "eve", PasswordHash: "x"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, eve.ID, id)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := svc.GetAny(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, acct, got.AccountID)

	latest, err := svc.Latest(ctx, acct)
	require.NoError(t, err)
	assert.Equal(t, id, latest.ID)
}
