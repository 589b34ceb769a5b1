package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", New(Validation, "bad input"), http.StatusBadRequest},
		{"conflict", New(Conflict, "taken"), http.StatusBadRequest},
		{"authentication", New(Authentication, "nope"), http.StatusUnauthorized},
		{"forbidden", New(Forbidden, "role"), http.StatusForbidden},
		{"not found", New(NotFound, "missing"), http.StatusNotFound},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("ctx: %w", New(NotFound, "missing")), http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatus(tc.err))
		})
	}
}

func TestPublicMessageHidesInternalDetail(t *testing.T) {
	assert.Equal(t, "internal server error", PublicMessage(errors.New("pq: connection refused")))
	assert.Equal(t, "internal server error", PublicMessage(Wrap(Internal, "db down", errors.New("x"))))
	assert.Equal(t, "taken", PublicMessage(New(Conflict, "taken")))
}

func TestWrappedSentinelMatches(t *testing.T) {
	sentinel := New(Validation, "invalid tier")
	err := Wrap(Validation, "invalid tier", errors.New("tier \"gold\""))

	assert.True(t, errors.Is(err, sentinel))
	assert.False(t, errors.Is(New(Validation, "invalid service"), sentinel))
	assert.Equal(t, Validation, KindOf(fmt.Errorf("outer: %w", err)))
}
