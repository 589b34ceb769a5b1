package quote

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/itarix-api/internal/auth"
	"github.com/hongminglow/itarix-api/internal/logging"
	"github.com/hongminglow/itarix-api/internal/mail"
	"github.com/hongminglow/itarix-api/internal/models"
	"github.com/hongminglow/itarix-api/internal/pricing"
	"github.com/hongminglow/itarix-api/internal/storage/memory"
)

type outbox struct {
	mu   sync.Mutex
	msgs []mail.Message
}

func (o *outbox) Send(_ context.Context, msg mail.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.msgs = append(o.msgs, msg)
	return nil
}

type archive struct {
	quotes []models.Quote
	err    error
}

func (a *archive) Archive(_ context.Context, q models.Quote) error {
	a.quotes = append(a.quotes, q)
	return a.err
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

type fixture struct {
	svc      *Service
	store    *memory.Store
	outbox   *outbox
	archive  *archive
	observed []string
	account  models.Account
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: memory.New(), outbox: &outbox{}, archive: &archive{}}

	ctx := context.Background()
	p, err := f.store.CreatePerson(ctx, models.Person{Name: "ada", Email: "ada@example.com"})
	require.NoError(t, err)
	f.account, err = f.store.CreateAccount(ctx, models.Account{PersonID: p.ID, Username: "ada", Role: models.RoleUser})
	require.NoError(t, err)

	f.svc = NewService(pricing.NewEngine(pricing.DefaultCatalog()), f.store, f.outbox, logging.NewNop(),
		WithArchiver(f.archive),
		WithTeamCopy("team@itarix.dev"),
		WithClock(func() time.Time { return time.Date(2025, 5, 5, 10, 0, 0, 0, time.UTC) }),
		WithQuoteObserver(func(s string) { f.observed = append(f.observed, s) }))
	return f
}

func (f *fixture) requester() auth.Identity {
	return auth.Identity{AccountID: f.account.ID, Name: "ada", Email: "ada@example.com", Role: models.RoleUser}
}

var referencePattern = regexp.MustCompile(`^Q-2025-[0-9A-F]{8}$`)

func TestCreate_PricesSavesArchivesAndEmails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	q, err := f.svc.Create(ctx, f.requester(), Request{
		Service:   "Web Services",
		Tier:      "basic",
		Type:      "business",
		Pages:     intPtr(3),
		Features:  []string{"seo", "bogus", "seo"},
		Platforms: []string{" web ", ""},
		Note:      "  call me  ",
	})
	require.NoError(t, err)

	assert.Regexp(t, referencePattern, q.ID)
	assert.Equal(t, []string{"seo"}, q.Features)
	assert.Equal(t, []string{"web"}, q.Platforms)
	assert.Equal(t, "call me", q.Note)
	assert.True(t, q.SaveToAccount)
	assert.Equal(t, 3, q.Pages)

	mine, err := f.svc.ListMine(ctx, f.account.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, q.ID, mine[0].ID)

	require.Len(t, f.archive.quotes, 1)
	assert.Equal(t, []string{"Web Services"}, f.observed)

	require.Len(t, f.outbox.msgs, 2)
	assert.Equal(t, "ada@example.com", f.outbox.msgs[0].To)
	assert.Equal(t, "Your iTARiX Quote ("+q.ID+")", f.outbox.msgs[0].Subject)
	assert.Contains(t, f.outbox.msgs[0].HTML, "<b>Pages</b>")
	assert.Contains(t, f.outbox.msgs[0].HTML, "call me")
	assert.Equal(t, "team@itarix.dev", f.outbox.msgs[1].To)
}

func TestCreate_NotSavedWhenOptedOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	q, err := f.svc.Create(ctx, f.requester(), Request{
		Service:       "ERP Systems",
		Tier:          "pro",
		Type:          "retail",
		Pages:         intPtr(40),
		SaveToAccount: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, q.Pages, "services without page cost are quoted for one page")
	assert.False(t, q.SaveToAccount)

	mine, err := f.svc.ListMine(ctx, f.account.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)
	assert.NotContains(t, f.outbox.msgs[0].HTML, "<b>Pages</b>")
}

func TestCreate_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	long := make([]rune, MaxNoteLength+1)
	for i := range long {
		long[i] = 'x'
	}

	cases := map[string]struct {
		who auth.Identity
		req Request
		err error
	}{
		"unknown service": {f.requester(), Request{Service: "Space Travel", Tier: "basic", Type: "x"}, pricing.ErrInvalidService},
		"unknown tier":    {f.requester(), Request{Service: "Web Services", Tier: "gold", Type: "x"}, pricing.ErrInvalidTier},
		"missing type":    {f.requester(), Request{Service: "Web Services", Tier: "basic", Type: " "}, pricing.ErrSubtypeRequired},
		"no email":        {auth.Identity{AccountID: f.account.ID}, Request{Service: "Web Services", Tier: "basic", Type: "x"}, ErrMissingEmail},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tc.who, tc.req)
			assert.ErrorIs(t, err, tc.err)
		})
	}

	_, err := f.svc.Create(ctx, f.requester(), Request{Service: "Web Services", Tier: "basic", Type: "x", Pages: intPtr(MaxPages + 1)})
	assert.Error(t, err)
	_, err = f.svc.Create(ctx, f.requester(), Request{Service: "Web Services", Tier: "basic", Type: "x", Note: string(long)})
	assert.Error(t, err)

	assert.Empty(t, f.outbox.msgs)
}

func TestCreate_ArchiveFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.archive.err = errors.New("bucket missing")

	_, err := f.svc.Create(context.Background(), f.requester(), Request{Service: "Web Services", Tier: "pro", Type: "business"})
	assert.NoError(t, err)
}

func TestCreate_NoTeamCopyToRequester(t *testing.T) {
	f := newFixture(t)
	WithTeamCopy("ADA@example.com")(f.svc)

	_, err := f.svc.Create(context.Background(), f.requester(), Request{Service: "Web Services", Tier: "pro", Type: "business"})
	require.NoError(t, err)
	assert.Len(t, f.outbox.msgs, 1)
}

func TestEstimate_MatchesEngine(t *testing.T) {
	f := newFixture(t)
	est, err := f.svc.Estimate(Request{Service: "Web Services", Tier: "basic", Type: "business", Pages: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, 1, est.Pages)
	assert.Equal(t, 160, est.Price)
	assert.Equal(t, 8, est.Hours)
}

func TestThousands(t *testing.T) {
	assert.Equal(t, "0", thousands(0))
	assert.Equal(t, "999", thousands(999))
	assert.Equal(t, "1,000", thousands(1000))
	assert.Equal(t, "12,345,678", thousands(12345678))
	assert.Equal(t, "-1,200", thousands(-1200))
}
