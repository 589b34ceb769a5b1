// Package quote prices client requests, keeps them for the requesting
// account and notifies the requester and the team.
package quote

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hongminglow/itarix-api/internal/apperr"
	"github.com/hongminglow/itarix-api/internal/auth"
	"github.com/hongminglow/itarix-api/internal/logging"
	"github.com/hongminglow/itarix-api/internal/mail"
	"github.com/hongminglow/itarix-api/internal/models"
	"github.com/hongminglow/itarix-api/internal/pricing"
	"github.com/hongminglow/itarix-api/internal/storage"
)

const (
	MaxPages      = 999
	MaxNoteLength = 1000
)

var ErrMissingEmail = apperr.New(apperr.Validation, "missing user email")

// Archiver keeps an external copy of every quote.
type Archiver interface {
	Archive(ctx context.Context, q models.Quote) error
}

// Request is a quote as submitted by a client.
type Request struct {
	Service       string
	Tier          string
	Type          string
	Pages         *int
	Features      []string
	Platforms     []string
	Note          string
	SaveToAccount *bool
}

// Service creates and lists quotes.
type Service struct {
	engine    *pricing.Engine
	store     storage.QuoteStore
	mailer    mail.Sender
	archiver  Archiver
	teamEmail string
	log       logging.Logger
	now       func() time.Time
	observe   func(service string)
}

// Option customises a Service.
type Option func(*Service)

// WithArchiver copies every created quote to a.
func WithArchiver(a Archiver) Option {
	return func(s *Service) { s.archiver = a }
}

// WithTeamCopy sends a copy of every quote email to address.
func WithTeamCopy(address string) Option {
	return func(s *Service) { s.teamEmail = strings.TrimSpace(address) }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithQuoteObserver registers a callback invoked for every created quote.
func WithQuoteObserver(fn func(service string)) Option {
	return func(s *Service) { s.observe = fn }
}

// NewService wires the quote service.
func NewService(engine *pricing.Engine, store storage.QuoteStore, mailer mail.Sender, log logging.Logger, opts ...Option) *Service {
	s := &Service{
		engine:  engine,
		store:   store,
		mailer:  mailer,
		log:     log.With("component", "quote"),
		now:     func() time.Time { return time.Now().UTC() },
		observe: func(string) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Estimate prices req without storing anything.
func (s *Service) Estimate(req Request) (pricing.Estimate, error) {
	pr, err := pricingRequest(req)
	if err != nil {
		return pricing.Estimate{}, err
	}
	return s.engine.Estimate(pr)
}

// Create prices req for requester, stores it when requested, archives it and
// emails the confirmation. Archive and email failures are only logged.
func (s *Service) Create(ctx context.Context, requester auth.Identity, req Request) (models.Quote, error) {
	if strings.TrimSpace(requester.Email) == "" {
		return models.Quote{}, ErrMissingEmail
	}
	note := strings.TrimSpace(req.Note)
	if len([]rune(note)) > MaxNoteLength {
		return models.Quote{}, apperr.New(apperr.Validation, fmt.Sprintf("note must be at most %d characters", MaxNoteLength))
	}
	est, err := s.Estimate(req)
	if err != nil {
		return models.Quote{}, err
	}

	platforms := make([]string, 0, len(req.Platforms))
	for _, p := range req.Platforms {
		if p = strings.TrimSpace(p); p != "" {
			platforms = append(platforms, p)
		}
	}
	save := req.SaveToAccount == nil || *req.SaveToAccount

	now := s.now()
	q := models.Quote{
		ID:             NewReference(now),
		AccountID:      requester.AccountID,
		Email:          requester.Email,
		Service:        est.Service,
		Tier:           string(est.Tier),
		Subtype:        est.Subtype,
		Pages:          est.Pages,
		Features:       est.Features,
		Platforms:      platforms,
		Price:          est.Price,
		EstimatedHours: est.Hours,
		Note:           note,
		SaveToAccount:  save,
		CreatedAt:      now,
	}

	if save {
		stored, err := s.store.CreateQuote(ctx, q)
		if err != nil {
			return models.Quote{}, fmt.Errorf("save quote: %w", err)
		}
		q = stored
	}

	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, q); err != nil {
			s.log.Error(ctx, "archive quote", "quote_id", q.ID, "error", err)
		}
	}
	s.notify(ctx, requester, q)
	s.observe(q.Service)

	s.log.Info(ctx, "quote created", "quote_id", q.ID, "service", q.Service, "tier", q.Tier,
		"price", q.Price, "saved", save)
	return q, nil
}

// ListMine returns the saved quotes of an account, newest first.
func (s *Service) ListMine(ctx context.Context, accountID int64) ([]models.Quote, error) {
	quotes, err := s.store.ListQuotesByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	return quotes, nil
}

func (s *Service) notify(ctx context.Context, requester auth.Identity, q models.Quote) {
	name := requester.Name
	if name == "" {
		name = "Unknown"
	}
	def, _ := s.engine.Catalog().Service(q.Service)
	html, err := renderEmail(q, name, def != nil && def.HasPageCost())
	if err != nil {
		s.log.Error(ctx, "render quote email", "quote_id", q.ID, "error", err)
		return
	}

	subject := fmt.Sprintf("Your iTARiX Quote (%s)", q.ID)
	if err := s.mailer.Send(ctx, mail.Message{To: q.Email, Subject: subject, HTML: html}); err != nil {
		s.log.Error(ctx, "send quote email", "quote_id", q.ID, "error", err)
	}
	if s.teamEmail == "" || strings.EqualFold(s.teamEmail, q.Email) {
		return
	}
	copySubject := fmt.Sprintf("[Copy] iTARiX Quote (%s)", q.ID)
	if err := s.mailer.Send(ctx, mail.Message{To: s.teamEmail, Subject: copySubject, HTML: html}); err != nil {
		s.log.Error(ctx, "send quote team copy", "quote_id", q.ID, "error", err)
	}
}

// NewReference returns a quote reference of the form Q-<year>-<8 hex>.
func NewReference(now time.Time) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "Q-" + strconv.Itoa(now.Year()) + "-" + strings.ToUpper(id[:8])
}

func pricingRequest(req Request) (pricing.Request, error) {
	pages := 1
	if req.Pages != nil {
		if *req.Pages > MaxPages {
			return pricing.Request{}, apperr.New(apperr.Validation, fmt.Sprintf("pages must be between 1 and %d", MaxPages))
		}
		pages = max(1, *req.Pages)
	}
	return pricing.Request{
		Service:  strings.TrimSpace(req.Service),
		Tier:     pricing.Tier(strings.TrimSpace(req.Tier)),
		Subtype:  req.Type,
		Pages:    pages,
		Features: req.Features,
	}, nil
}
