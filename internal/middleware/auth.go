package middleware

import (
	"net/http"
	"strings"

	"github.com/hongminglow/itarix-api/internal/apperr"
	"github.com/hongminglow/itarix-api/internal/auth"
	"github.com/hongminglow/itarix-api/internal/http/respond"
	"github.com/hongminglow/itarix-api/internal/logging"
	"github.com/hongminglow/itarix-api/internal/models"
)

var (
	ErrUnauthenticated = apperr.New(apperr.Authentication, "authentication required")
	ErrForbidden       = apperr.New(apperr.Forbidden, "insufficient role")
)

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// Authenticate attaches the identity of a valid bearer token to the request
// context. Requests without a usable token continue anonymously; routes that
// need an identity wrap their handler with RequireAuth.
func Authenticate(tokens TokenValidator, log logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := BearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := tokens.Validate(raw)
			if err != nil {
				log.Debug(r.Context(), "bearer token rejected", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			id, err := claims.Identity()
			if err != nil {
				log.Warn(r.Context(), "bearer token has unusable subject", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireAuth rejects requests that carry no identity.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.IdentityFrom(r.Context()); !ok {
			respond.Fail(w, ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects requests whose identity holds none of roles.
func RequireRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.IdentityFrom(r.Context())
			if !ok {
				respond.Fail(w, ErrUnauthenticated)
				return
			}
			if !models.HasRole(id.Role, roles...) {
				respond.Fail(w, ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
