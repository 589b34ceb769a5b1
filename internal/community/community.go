// Package community runs the AI tool directory: tools, reviews, comments
// and their moderation.
package community

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/hongminglow/itarix-api/internal/apperr"
	"github.com/hongminglow/itarix-api/internal/storage"
)

const (
	MaxReviewLength  = 2000
	MaxCommentLength = 2000
	MaxReasonLength  = 500
	MaxNameLength    = 200
)

var (
	ErrToolNotFound    = apperr.New(apperr.NotFound, "tool not found")
	ErrReviewNotFound  = apperr.New(apperr.NotFound, "review not found")
	ErrCommentNotFound = apperr.New(apperr.NotFound, "comment not found")
	ErrUnknownCategory = apperr.New(apperr.Validation, "unknown category")
	ErrBadReference    = apperr.New(apperr.Validation, "referenced tool, review or comment does not exist")
	ErrInvalidRating   = apperr.New(apperr.Validation, "rating must be between 1 and 5")
	ErrReasonRequired  = apperr.New(apperr.Validation, "reason is required")
)

// translate maps storage sentinels onto the caller's domain errors.
func translate(err error, notFound, badRef error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return notFound
	case errors.Is(err, storage.ErrInvalidReference):
		return badRef
	}
	return fmt.Errorf("%s: %w", op, err)
}

func requireText(field, value string, limit int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", apperr.New(apperr.Validation, field+" is required")
	}
	if utf8.RuneCountInString(value) > limit {
		return "", apperr.New(apperr.Validation, fmt.Sprintf("%s must be at most %d characters", field, limit))
	}
	return value, nil
}

func optionalText(field, value string, limit int) (string, error) {
	value = strings.TrimSpace(value)
	if utf8.RuneCountInString(value) > limit {
		return "", apperr.New(apperr.Validation, fmt.Sprintf("%s must be at most %d characters", field, limit))
	}
	return value, nil
}

func validURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperr.New(apperr.Validation, "websiteUrl must be an absolute http(s) URL")
	}
	return nil
}
