// Package consultation stores intake questionnaires filled in before a
// project is scoped.
package consultation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hongminglow/itarix-api/internal/apperr"
	"github.com/hongminglow/itarix-api/internal/logging"
	"github.com/hongminglow/itarix-api/internal/models"
	"github.com/hongminglow/itarix-api/internal/storage"
)

const (
	DefaultLimit   = 25
	MaxLimit       = 200
	MaxAnswerChars = 4000
)

var (
	ErrNotFound           = apperr.New(apperr.NotFound, "consultation not found")
	ErrInvalidStatus      = apperr.New(apperr.Validation, "status must be draft or submitted")
	ErrUnknownServiceType = apperr.New(apperr.Validation, "unknown service type")
	ErrInvalidQuestion    = apperr.New(apperr.Validation, "every answer needs a questionId")
	ErrInvalidRange       = apperr.New(apperr.Validation, "from must not be after to")
)

// Query is the user-facing listing request before defaults are applied.
type Query struct {
	Status        string
	ServiceTypeID *int64
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}

// Page is one slice of an account's consultations.
type Page struct {
	Items  []models.Consultation
	Total  int
	Limit  int
	Offset int
}

type Service struct {
	store storage.ConsultationStore
	log   logging.Logger
}

func NewService(store storage.ConsultationStore, log logging.Logger) *Service {
	return &Service{store: store, log: log.With("component", "consultations")}
}

// Create stores a consultation with all of its answers.
func (s *Service) Create(ctx context.Context, accountID int64, c models.Consultation) (int64, error) {
	status, err := normaliseStatus(c.Status)
	if err != nil {
		return 0, err
	}
	if c.ServiceTypeID <= 0 {
		return 0, ErrUnknownServiceType
	}
	answers := make([]models.ConsultationAnswer, 0, len(c.Answers))
	for _, a := range c.Answers {
		if a.QuestionID <= 0 {
			return 0, ErrInvalidQuestion
		}
		if len([]rune(a.Value)) > MaxAnswerChars {
			return 0, apperr.New(apperr.Validation, fmt.Sprintf("answerValue must be at most %d characters", MaxAnswerChars))
		}
		answers = append(answers, models.ConsultationAnswer{
			QuestionID:  a.QuestionID,
			Value:       a.Value,
			SectionKey:  strings.TrimSpace(a.SectionKey),
			QuestionKey: strings.TrimSpace(a.QuestionKey),
			OptionIDs:   dedupe(a.OptionIDs),
		})
	}

	id, err := s.store.CreateConsultation(ctx, models.Consultation{
		AccountID:     accountID,
		ServiceTypeID: c.ServiceTypeID,
		Status:        status,
		Answers:       answers,
	})
	if err != nil {
		if errors.Is(err, storage.ErrInvalidReference) {
			return 0, ErrUnknownServiceType
		}
		return 0, fmt.Errorf("create consultation: %w", err)
	}
	s.log.Info(ctx, "consultation created", "consultation_id", id, "account_id", accountID, "status", status, "answers", len(answers))
	return id, nil
}

// List returns one page of an account's consultations, newest first.
func (s *Service) List(ctx context.Context, accountID int64, q Query) (Page, error) {
	filter, err := toFilter(q)
	if err != nil {
		return Page{}, err
	}
	items, err := s.store.ListConsultationsByAccount(ctx, accountID, filter)
	if err != nil {
		return Page{}, fmt.Errorf("list consultations: %w", err)
	}
	total, err := s.store.CountConsultationsByAccount(ctx, accountID, filter)
	if err != nil {
		return Page{}, fmt.Errorf("count consultations: %w", err)
	}
	return Page{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// Count ignores paging and applies only the filters of q.
func (s *Service) Count(ctx context.Context, accountID int64, q Query) (int, error) {
	filter, err := toFilter(q)
	if err != nil {
		return 0, err
	}
	n, err := s.store.CountConsultationsByAccount(ctx, accountID, filter)
	if err != nil {
		return 0, fmt.Errorf("count consultations: %w", err)
	}
	return n, nil
}

// Get loads a consultation owned by accountID.
func (s *Service) Get(ctx context.Context, accountID, id int64) (models.Consultation, error) {
	if accountID == 0 {
		return models.Consultation{}, ErrNotFound
	}
	return s.get(ctx, id, accountID)
}

// GetAny loads any consultation; staff only.
func (s *Service) GetAny(ctx context.Context, id int64) (models.Consultation, error) {
	return s.get(ctx, id, 0)
}

func (s *Service) Latest(ctx context.Context, accountID int64) (models.Consultation, error) {
	c, err := s.store.LatestConsultation(ctx, accountID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Consultation{}, ErrNotFound
	}
	if err != nil {
		return models.Consultation{}, fmt.Errorf("latest consultation: %w", err)
	}
	return c, nil
}

func (s *Service) get(ctx context.Context, id, accountID int64) (models.Consultation, error) {
	c, err := s.store.GetConsultation(ctx, id, accountID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Consultation{}, ErrNotFound
	}
	if err != nil {
		return models.Consultation{}, fmt.Errorf("get consultation: %w", err)
	}
	return c, nil
}

func normaliseStatus(status string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "", models.ConsultationDraft:
		return models.ConsultationDraft, nil
	case models.ConsultationSubmitted:
		return models.ConsultationSubmitted, nil
	}
	return "", ErrInvalidStatus
}

func toFilter(q Query) (models.ConsultationFilter, error) {
	f := models.ConsultationFilter{
		ServiceTypeID: q.ServiceTypeID,
		From:          q.From,
		To:            q.To,
		Limit:         q.Limit,
		Offset:        max(q.Offset, 0),
	}
	if q.Status != "" {
		status, err := normaliseStatus(q.Status)
		if err != nil {
			return f, err
		}
		f.Status = status
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return f, ErrInvalidRange
	}
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultLimit
	case f.Limit > MaxLimit:
		f.Limit = MaxLimit
	}
	return f, nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
