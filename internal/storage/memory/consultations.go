package memory

import (
	"context"
	"slices"
	"time"

	"github.com/hongminglow/itarix-api/internal/models"
	"github.com/hongminglow/itarix-api/internal/storage"
)

func (s *Store) CreateConsultation(_ context.Context, c models.Consultation) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[c.AccountID]; !ok {
		return 0, storage.ErrInvalidReference
	}
	if !s.serviceTypes[c.ServiceTypeID] {
		return 0, storage.ErrInvalidReference
	}
	c.ID = s.nextID()
	c.CreatedAt = s.stamp(c.CreatedAt)
	answers := make([]models.ConsultationAnswer, len(c.Answers))
	for i, a := range c.Answers {
		a.ID = s.nextID()
		a.ConsultationID = c.ID
		a.AnsweredAt = s.stamp(a.AnsweredAt)
		a.OptionIDs = slices.Clone(a.OptionIDs)
		answers[i] = a
	}
	c.Answers = answers
	s.consultations[c.ID] = c
	return c.ID, nil
}

func (s *Store) ListConsultationsByAccount(_ context.Context, accountID int64, filter models.ConsultationFilter) ([]models.Consultation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.filterConsultations(accountID, filter)
	start := min(max(filter.Offset, 0), len(matched))
	end := len(matched)
	if filter.Limit > 0 {
		end = min(start+filter.Limit, len(matched))
	}
	out := make([]models.Consultation, 0, end-start)
	for _, c := range matched[start:end] {
		c.Answers = nil
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) CountConsultationsByAccount(_ context.Context, accountID int64, filter models.ConsultationFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.filterConsultations(accountID, filter)), nil
}

func (s *Store) GetConsultation(_ context.Context, id, accountID int64) (models.Consultation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.consultations[id]
	if !ok || (accountID != 0 && c.AccountID != accountID) {
		return models.Consultation{}, storage.ErrNotFound
	}
	return cloneConsultation(c), nil
}

func (s *Store) LatestConsultation(_ context.Context, accountID int64) (models.Consultation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.filterConsultations(accountID, models.ConsultationFilter{})
	if len(matched) == 0 {
		return models.Consultation{}, storage.ErrNotFound
	}
	return cloneConsultation(matched[0]), nil
}

func (s *Store) filterConsultations(accountID int64, f models.ConsultationFilter) []models.Consultation {
	out := []models.Consultation{}
	for _, c := range s.consultations {
		switch {
		case c.AccountID != accountID:
			continue
		case f.Status != "" && c.Status != f.Status:
			continue
		case f.ServiceTypeID != nil && c.ServiceTypeID != *f.ServiceTypeID:
			continue
		case f.From != nil && c.CreatedAt.Before(*f.From):
			continue
		case f.To != nil && c.CreatedAt.After(*f.To):
			continue
		}
		out = append(out, c)
	}
	newestFirst(out,
		func(c models.Consultation) time.Time { return c.CreatedAt },
		func(c models.Consultation) int64 { return c.ID })
	return out
}

func cloneConsultation(c models.Consultation) models.Consultation {
	answers := make([]models.ConsultationAnswer, len(c.Answers))
	for i, a := range c.Answers {
		a.OptionIDs = slices.Clone(a.OptionIDs)
		answers[i] = a
	}
	c.Answers = answers
	return c
}
