package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/itarix-api/internal/config"
	"github.com/hongminglow/itarix-api/internal/logging"
	"github.com/hongminglow/itarix-api/internal/mail"
	"github.com/hongminglow/itarix-api/internal/models"
	"github.com/hongminglow/itarix-api/internal/storage/memory"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) do(method, path string, body any, out any) int {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	if out != nil {
		var env envelope
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&env))
		if len(env.Data) > 0 {
			require.NoError(c.t, json.Unmarshal(env.Data, out))
		}
	}
	return resp.StatusCode
}

func testConfig() config.Config {
	return config.Config{
		Port:            "0",
		StorageDriver:   config.DriverMemory,
		JWTSecret:       "0123456789abcdef0123456789abcdef",
		JWTIssuer:       "itarix-api",
		JWTAudience:     "itarix-clients",
		JWTTTL:          15 * time.Minute,
		RefreshTTL:      time.Hour,
		BcryptCost:      bcrypt.MinCost,
		AppBaseURL:      "http://localhost:3000",
		CORSOrigins:     []string{"*"},
		JanitorSchedule: "@every 1h",
	}
}

func TestServerEndToEnd(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	log := logging.NewNop()

	srv, err := New(ctx, testConfig(), store, log, WithMailer(mail.LogSender{Logger: log}))
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	c := &client{t: t, base: ts.URL}

	var health map[string]string
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/health", nil, &health))
	assert.Equal(t, "ok", health["status"])

	var registered map[string]int64
	status := c.do(http.MethodPost, "/auth/register", map[string]string{
		"username": "ada", "email": "ada@example.com", "password": "s3cret-pass",
	}, &registered)
	require.Equal(t, http.StatusCreated, status)
	assert.NotZero(t, registered["userId"])

	var loginFailure map[string]any
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodPost, "/auth/login",
		map[string]string{"username": "ada", "password": "s3cret-pass"}, &loginFailure))

	acc, err := store.FindAccountByUsername(ctx, "ada")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/auth/verify-email?token="+acc.EmailVerificationToken, nil, nil))

	var login struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
		Role         string `json:"role"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/auth/login",
		map[string]string{"username": "ada", "password": "s3cret-pass"}, &login))
	require.NotEmpty(t, login.AccessToken)
	assert.Equal(t, models.RoleUser, login.Role)

	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/quotes/me", nil, nil))

	c.token = login.AccessToken
	var me struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/auth/validate", nil, &me))
	assert.Equal(t, "ada", me.Username)
	assert.Equal(t, "ada@example.com", me.Email)

	var created struct {
		Success bool   `json:"success"`
		QuoteID string `json:"quoteId"`
		Price   int    `json:"priceNumber"`
		Hours   int    `json:"estimatedHours"`
	}
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/quotes", map[string]any{
		"service": "Web Services", "tier": "basic", "type": "bakery", "pages": 3,
	}, &created))
	assert.True(t, created.Success)
	assert.Equal(t, 560, created.Price)

	var mine struct {
		Items []models.Quote `json:"items"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/quotes/me", nil, &mine))
	require.Len(t, mine.Items, 1)
	assert.Equal(t, created.QuoteID, mine.Items[0].ID)

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/quotes", map[string]any{
		"service": "Space Travel", "tier": "basic", "type": "bakery",
	}, nil))

	assert.Equal(t, http.StatusForbidden, c.do(http.MethodPost, "/tools", map[string]any{
		"name": "Copilot", "categoryId": 3,
	}, nil))

	var consult struct {
		ID int64 `json:"consultationId"`
	}
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/consultations", map[string]any{
		"serviceTypeId": 1,
		"answers":       []map[string]any{{"questionId": 1, "answerValue": "bakery site"}},
	}, &consult))
	var latest models.Consultation
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/consultations/latest", nil, &latest))
	assert.Equal(t, consult.ID, latest.ID)

	c.token = ""
	var refreshed struct {
		AccessToken string `json:"accessToken"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/auth/refresh-token",
		map[string]string{"refreshToken": login.RefreshToken}, &refreshed))
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodPost, "/auth/refresh-token",
		map[string]string{"refreshToken": login.RefreshToken}, nil))

	assert.Equal(t, http.StatusOK, c.do(http.MethodPost, "/auth/forgot-password",
		map[string]string{"email": "nobody@example.com"}, nil))

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	assert.NoError(t, srv.Shutdown(shutdownCtx))
}

func TestNewRejectsBadJanitorSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.JanitorSchedule = "whenever"
	_, err := New(context.Background(), cfg, memory.New(), logging.NewNop())
	assert.Error(t, err)
}
