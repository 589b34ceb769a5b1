package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef-test"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newManager(now time.Time) *TokenManager {
	return NewTokenManager(testSecret, "itarix-api", "itarix-clients", 15*time.Minute, 7*24*time.Hour, WithClock(fixedClock(now)))
}

func TestIssueValidate_RoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tm := newManager(now)
	id := Identity{AccountID: 42, Name: "Ada Lovelace", Email: "ada@example.com", Role: "admin"}

	pair, err := tm.Issue(id)
	require.NoError(t, err)
	assert.Equal(t, now.Add(15*time.Minute), pair.AccessExpiresAt)
	assert.Equal(t, now.Add(7*24*time.Hour), pair.RefreshExpiresAt)
	assert.Len(t, strings.Split(pair.AccessToken, "."), 3)
	assert.NotEmpty(t, pair.RefreshToken)

	claims, err := tm.Validate(pair.AccessToken)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, "itarix-api", claims.Issuer)

	got, err := claims.Identity()
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestIssue_UniqueTokenIDs(t *testing.T) {
	t.Parallel()

	tm := newManager(time.Now())
	a, err := tm.Issue(Identity{AccountID: 1, Role: "user"})
	require.NoError(t, err)
	b, err := tm.Issue(Identity{AccountID: 1, Role: "user"})
	require.NoError(t, err)

	assert.NotEqual(t, a.RefreshToken, b.RefreshToken)

	ca, err := tm.Validate(a.AccessToken)
	require.NoError(t, err)
	cb, err := tm.Validate(b.AccessToken)
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestValidate_ExpiryWithClockSkew(t *testing.T) {
	t.Parallel()

	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	pair, err := newManager(issued).Issue(Identity{AccountID: 7, Role: "user"})
	require.NoError(t, err)

	_, err = newManager(issued.Add(16 * time.Minute)).Validate(pair.AccessToken)
	assert.NoError(t, err, "within the two minute leeway")

	_, err = newManager(issued.Add(18 * time.Minute)).Validate(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Rejects(t *testing.T) {
	t.Parallel()

	now := time.Now()
	good := newManager(now)
	pair, err := good.Issue(Identity{AccountID: 3, Role: "user"})
	require.NoError(t, err)

	cases := map[string]struct {
		manager *TokenManager
		token   string
	}{
		"wrong secret": {
			manager: NewTokenManager("another-secret-value", "itarix-api", "itarix-clients", time.Minute, time.Hour),
			token:   pair.AccessToken,
		},
		"wrong issuer": {
			manager: NewTokenManager(testSecret, "someone-else", "itarix-clients", time.Minute, time.Hour),
			token:   pair.AccessToken,
		},
		"wrong audience": {
			manager: NewTokenManager(testSecret, "itarix-api", "other-clients", time.Minute, time.Hour),
			token:   pair.AccessToken,
		},
		"malformed": {
			manager: good,
			token:   "not.a.jwt",
		},
		"none algorithm": {
			manager: good,
			token:   noneToken(t, now),
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := tc.manager.Validate(tc.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestValidate_RejectsNonNumericSubject(t *testing.T) {
	t.Parallel()

	now := time.Now()
	claims := Claims{
		Role: "user",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "itarix-api",
			Subject:   "not-a-number",
			Audience:  jwt.ClaimStrings{"itarix-clients"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = newManager(now).Validate(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func noneToken(t *testing.T, now time.Time) string {
	t.Helper()
	claims := Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "itarix-api",
			Subject:   "1",
			Audience:  jwt.ClaimStrings{"itarix-clients"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return s
}
