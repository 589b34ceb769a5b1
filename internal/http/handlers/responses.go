package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/hongminglow/itarix-api/internal/apperr"
	"github.com/hongminglow/itarix-api/internal/auth"
	"github.com/hongminglow/itarix-api/internal/http/respond"
	"github.com/hongminglow/itarix-api/internal/logging"
	"github.com/hongminglow/itarix-api/internal/middleware"
	"github.com/hongminglow/itarix-api/internal/models"
)

const maxBodyBytes = 1 << 20

var (
	errInvalidJSON = apperr.New(apperr.Validation, "invalid JSON payload")
	errInvalidID   = apperr.New(apperr.Validation, "invalid id")
)

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.New(apperr.Validation, "request body is required")
		}
		return errInvalidJSON
	}
	return nil
}

// pathID parses a positive integer path wildcard.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// identity returns the caller behind a RequireAuth-wrapped route.
func identity(r *http.Request) auth.Identity {
	id, _ := auth.IdentityFrom(r.Context())
	return id
}

// writeError logs unexpected failures and answers with the public message.
func writeError(w http.ResponseWriter, r *http.Request, log logging.Logger, err error) {
	if apperr.KindOf(err) == apperr.Internal {
		log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	respond.Fail(w, err)
}

func authed(h http.HandlerFunc) http.Handler {
	return middleware.RequireAuth(h)
}

func staffOnly(h http.HandlerFunc) http.Handler {
	return middleware.RequireRole(models.StaffRoles...)(h)
}

func adminOnly(h http.HandlerFunc) http.Handler {
	return middleware.RequireRole(models.RoleAdmin)(h)
}
