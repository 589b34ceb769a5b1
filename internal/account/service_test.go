package account

import (
	"context"
	"net/url"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/itarix-api/internal/auth"
	"github.com/hongminglow/itarix-api/internal/logging"
	"github.com/hongminglow/itarix-api/internal/mail"
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

func (o *outbox) last(t *testing.T) mail.Message {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	require.NotEmpty(t, o.msgs)
	return o.msgs[len(o.msgs)-1]
}

var tokenInLink = regexp.MustCompile(`token=([^"&]+)`)

func (o *outbox) token(t *testing.T) string {
	t.Helper()
	m := tokenInLink.FindStringSubmatch(o.last(t).HTML)
	require.Len(t, m, 2)
	tok, err := url.QueryUnescape(m[1])
	require.NoError(t, err)
	return tok
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	svc    *Service
	store  *memory.Store
	outbox *outbox
	clock  *clock
	logins []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  memory.New(),
		outbox: &outbox{},
		clock:  &clock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)},
	}
	tokens := auth.NewTokenManager("test-secret-0123456789", "itarix-api", "itarix-clients",
		15*time.Minute, 7*24*time.Hour, auth.WithClock(f.clock.Now))
	f.svc = NewService(f.store, auth.NewPasswordHasher(bcrypt.MinCost), tokens, f.outbox,
		logging.NewNop(), "https://itarix.test/",
		WithClock(f.clock.Now),
		WithLoginObserver(func(o string) { f.logins = append(f.logins, o) }))
	return f
}

// registerVerified registers and confirms an account.
func (f *fixture) registerVerified(t *testing.T, username, email, password string) int64 {
	t.Helper()
	ctx := context.Background()
	id, err := f.svc.Register(ctx, RegisterInput{Username: username, Email: email, Password: password})
	require.NoError(t, err)
	_, err = f.svc.VerifyEmail(ctx, f.outbox.token(t))
	require.NoError(t, err)
	return id
}

func TestRegister_SendsVerificationAndRequiresIt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.svc.Register(ctx, RegisterInput{Username: "ada", Email: "ada@example.com", Password: "pw-123456"})
	require.NoError(t, err)
	assert.NotZero(t, id)

	msg := f.outbox.last(t)
	assert.Equal(t, "ada@example.com", msg.To)
	assert.Contains(t, msg.HTML, "https://itarix.test/verify-email?token=")

	_, err = f.svc.Login(ctx, "ada", "pw-123456")
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	token := f.outbox.token(t)
	acc, err := f.svc.VerifyEmail(ctx, token)
	require.NoError(t, err)
	assert.True(t, acc.EmailConfirmed)

	_, err = f.svc.VerifyEmail(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken, "verification tokens are single use")

	acc, err = f.svc.Login(ctx, "ada", "pw-123456")
	require.NoError(t, err)
	assert.Equal(t, id, acc.ID)
}

func TestRegister_Duplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.registerVerified(t, "bob", "bob@example.com", "pw")

	_, err := f.svc.Register(ctx, RegisterInput{Username: "bob", Email: "other@example.com", Password: "pw"})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	_, err = f.svc.Register(ctx, RegisterInput{Username: "bobby", Email: "bob@example.com", Password: "pw"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	require.NoError(t, f.svc.Deactivate(ctx, id))

	newID, err := f.svc.Register(ctx, RegisterInput{Username: "bob", Email: "bob@example.com", Password: "pw2"})
	require.NoError(t, err, "a deleted account frees both username and email")
	assert.NotEqual(t, id, newID)

	old, err := f.store.FindPersonByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	acc, err := f.store.FindAccountByID(ctx, newID)
	require.NoError(t, err)
	assert.Equal(t, old.ID, acc.PersonID, "person record is reused")
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register(context.Background(), RegisterInput{Username: "x", Email: "not-an-email", Password: "pw"})
	assert.Error(t, err)
	_, err = f.svc.Register(context.Background(), RegisterInput{Email: "x@example.com", Password: "pw"})
	assert.Error(t, err)
}

func TestLogin_UnknownAndWrongPasswordLookTheSame(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registerVerified(t, "cy", "cy@example.com", "right")

	_, errUnknown := f.svc.Login(ctx, "nobody", "right")
	_, errWrong := f.svc.Login(ctx, "cy", "wrong")
	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestLogin_LocksAfterFiveFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registerVerified(t, "dee", "dee@example.com", "right")

	for range MaxFailedLogins {
		_, err := f.svc.Login(ctx, "dee", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}

	_, err := f.svc.Login(ctx, "dee", "right")
	assert.ErrorIs(t, err, ErrAccountLocked, "correct password is refused while locked")

	acc, err := f.store.FindAccountByUsername(ctx, "dee")
	require.NoError(t, err)
	assert.Zero(t, acc.FailedLoginAttempts)
	require.NotNil(t, acc.LockoutUntil)
	assert.Equal(t, f.clock.Now().Add(LockoutDuration), *acc.LockoutUntil)

	f.clock.Advance(LockoutDuration + time.Second)
	acc, err = f.svc.Login(ctx, "dee", "right")
	require.NoError(t, err)
	assert.Nil(t, acc.LockoutUntil)

	assert.Contains(t, f.logins, OutcomeLocked)
	assert.Equal(t, OutcomeSuccess, f.logins[len(f.logins)-1])
}

func TestLogin_SuccessResetsCounter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registerVerified(t, "eve", "eve@example.com", "right")

	for range MaxFailedLogins - 1 {
		_, _ = f.svc.Login(ctx, "eve", "wrong")
	}
	_, err := f.svc.Login(ctx, "eve", "right")
	require.NoError(t, err)

	_, _ = f.svc.Login(ctx, "eve", "wrong")
	acc, err := f.store.FindAccountByUsername(ctx, "eve")
	require.NoError(t, err)
	assert.Equal(t, 1, acc.FailedLoginAttempts)
	assert.Nil(t, acc.LockoutUntil)
}

func TestLogin_DeletedAccountIsUnknown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.registerVerified(t, "fay", "fay@example.com", "pw")
	require.NoError(t, f.svc.Deactivate(ctx, id))

	_, err := f.svc.Login(ctx, "fay", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.ErrorIs(t, f.svc.Deactivate(ctx, id), ErrNotFound)
}

func TestSession_RefreshRotates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registerVerified(t, "gus", "gus@example.com", "pw")

	acc, err := f.svc.Login(ctx, "gus", "pw")
	require.NoError(t, err)
	first, err := f.svc.IssueSession(ctx, acc)
	require.NoError(t, err)

	refreshed, second, err := f.svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, refreshed.ID)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, _, err = f.svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken, "old refresh token is consumed")

	// a new login replaces the outstanding refresh token
	third, err := f.svc.IssueSession(ctx, acc)
	require.NoError(t, err)
	_, _, err = f.svc.Refresh(ctx, second.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)

	f.clock.Advance(8 * 24 * time.Hour)
	_, _, err = f.svc.Refresh(ctx, third.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken, "expired refresh token")
}

func TestSession_Logout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registerVerified(t, "hal", "hal@example.com", "pw")
	acc, err := f.svc.Login(ctx, "hal", "pw")
	require.NoError(t, err)
	pair, err := f.svc.IssueSession(ctx, acc)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, pair.RefreshToken))
	require.NoError(t, f.svc.Logout(ctx, pair.RefreshToken))

	_, _, err = f.svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestPasswordReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registerVerified(t, "ivy", "ivy@example.com", "old-pw")

	_, err := f.svc.ForgotPassword(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	token, err := f.svc.ForgotPassword(ctx, "ivy@example.com")
	require.NoError(t, err)
	assert.Equal(t, token, f.outbox.token(t))
	assert.Contains(t, f.outbox.last(t).HTML, "15 minutes")

	require.NoError(t, f.svc.ResetPassword(ctx, token, "new-pw"))
	assert.ErrorIs(t, f.svc.ResetPassword(ctx, token, "again"), ErrInvalidOrExpiredResetToken)

	_, err = f.svc.Login(ctx, "ivy", "old-pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, "ivy", "new-pw")
	require.NoError(t, err)
}

func TestPasswordReset_Expires(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registerVerified(t, "jo", "jo@example.com", "pw")

	token, err := f.svc.ForgotPassword(ctx, "jo@example.com")
	require.NoError(t, err)

	f.clock.Advance(ResetTokenTTL + time.Second)
	assert.ErrorIs(t, f.svc.ResetPassword(ctx, token, "new"), ErrInvalidOrExpiredResetToken)
}
