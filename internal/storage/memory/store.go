// Package memory is an in-process storage.Store used by tests and by the
// server when STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/hongminglow/itarix-api/internal/models"
	"github.com/hongminglow/itarix-api/internal/storage"
)

// Store keeps every record in maps guarded by one mutex.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	people        map[int64]models.Person
	accounts      map[int64]models.Account
	quotes        map[string]models.Quote
	categories    map[int64]models.Category
	tools         map[int64]models.Tool
	reviews       map[int64]models.Review
	comments      map[int64]models.Comment
	reviewReports []models.Report
	commentReport []models.Report
	serviceTypes  map[int64]bool
	consultations map[int64]models.Consultation

	seq int64
}

var _ storage.Store = (*Store)(nil)

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the time used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns an empty store seeded with the default categories and
// service types.
func New(opts ...Option) *Store {
	s := &Store{
		now:           time.Now,
		people:        make(map[int64]models.Person),
		accounts:      make(map[int64]models.Account),
		quotes:        make(map[string]models.Quote),
		categories:    make(map[int64]models.Category),
		tools:         make(map[int64]models.Tool),
		reviews:       make(map[int64]models.Review),
		comments:      make(map[int64]models.Comment),
		serviceTypes:  make(map[int64]bool),
		consultations: make(map[int64]models.Consultation),
		seq:           100,
	}
	for _, c := range storage.DefaultCategories {
		s.categories[c.ID] = c
	}
	for _, id := range storage.DefaultServiceTypeIDs {
		s.serviceTypes[id] = true
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *Store) stamp(t time.Time) time.Time {
	if t.IsZero() {
		return s.now().UTC()
	}
	return t
}

func (s *Store) usernameOf(accountID int64) string {
	if a, ok := s.accounts[accountID]; ok {
		return a.Username
	}
	return ""
}

func ptr[T any](v T) *T { return &v }

func newestFirst[T any](items []T, created func(T) time.Time, id func(T) int64) {
	slices.SortFunc(items, func(a, b T) int {
		if c := created(b).Compare(created(a)); c != 0 {
			return c
		}
		switch {
		case id(a) > id(b):
			return -1
		case id(a) < id(b):
			return 1
		}
		return 0
	})
}

func sameFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
