package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hongminglow/itarix-api/internal/account"
	"github.com/hongminglow/itarix-api/internal/auth"
	"github.com/hongminglow/itarix-api/internal/community"
	"github.com/hongminglow/itarix-api/internal/config"
	"github.com/hongminglow/itarix-api/internal/consultation"
	"github.com/hongminglow/itarix-api/internal/http/handlers"
	"github.com/hongminglow/itarix-api/internal/janitor"
	"github.com/hongminglow/itarix-api/internal/logging"
	"github.com/hongminglow/itarix-api/internal/mail"
	"github.com/hongminglow/itarix-api/internal/metrics"
	"github.com/hongminglow/itarix-api/internal/middleware"
	"github.com/hongminglow/itarix-api/internal/pricing"
	"github.com/hongminglow/itarix-api/internal/quote"
	"github.com/hongminglow/itarix-api/internal/storage"
	"github.com/hongminglow/itarix-api/internal/storage/s3archive"
)

const mailTimeout = 30 * time.Second

// Server wraps an http.Server with configured routes and the background
// workers that share its lifetime.
type Server struct {
	inner   *http.Server
	handler http.Handler
	mail    *mail.Async
	janitor *janitor.Janitor
}

// Option customises a Server.
type Option func(*options)

type options struct {
	mailer   mail.Sender
	archiver quote.Archiver
}

// WithMailer replaces the sender chosen from configuration.
func WithMailer(m mail.Sender) Option {
	return func(o *options) { o.mailer = m }
}

// WithArchiver replaces the S3 archive chosen from configuration.
func WithArchiver(a quote.Archiver) Option {
	return func(o *options) { o.archiver = a }
}

// New wires up services, middleware and routes, and returns a ready server.
func New(ctx context.Context, cfg config.Config, store storage.Store, log logging.Logger, opts ...Option) (*Server, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.mailer == nil {
		o.mailer = mail.LogSender{Logger: log}
		if cfg.SMTP.Enabled() {
			o.mailer = mail.NewSMTPSender(mail.SMTPConfig{
				Host:      cfg.SMTP.Host,
				Port:      cfg.SMTP.Port,
				Username:  cfg.SMTP.Username,
				Password:  cfg.SMTP.Password,
				FromEmail: cfg.SMTP.FromEmail,
				FromName:  cfg.SMTP.FromName,
			})
		}
	}
	mailer := mail.NewAsync(o.mailer, log, mailTimeout)

	if o.archiver == nil && cfg.Archive.Enabled() {
		archive, err := s3archive.Open(ctx, s3archive.Config{
			Bucket:    cfg.Archive.Bucket,
			Region:    cfg.Archive.Region,
			Endpoint:  cfg.Archive.Endpoint,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("open quote archive: %w", err)
		}
		o.archiver = archive
	}

	m := metrics.New()
	engine := pricing.NewEngine(pricing.DefaultCatalog())
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTTTL, cfg.RefreshTTL)

	accounts := account.NewService(store, auth.NewPasswordHasher(cfg.BcryptCost), tokens, mailer, log, cfg.AppBaseURL,
		account.WithLoginObserver(m.ObserveLogin))

	quoteOpts := []quote.Option{quote.WithQuoteObserver(m.ObserveQuote)}
	if o.archiver != nil {
		quoteOpts = append(quoteOpts, quote.WithArchiver(o.archiver))
	}
	if cfg.SMTP.FromEmail != "" {
		quoteOpts = append(quoteOpts, quote.WithTeamCopy(cfg.SMTP.FromEmail))
	}
	quotes := quote.NewService(engine, store, mailer, log, quoteOpts...)

	tools := community.NewToolService(store, log)
	reviews := community.NewReviewService(store, log)
	comments := community.NewCommentService(store, log)
	moderation := community.NewModerationService(store, log)
	consultations := consultation.NewService(store, log)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now(), store).Register(mux)
	handlers.NewAuthHandler(accounts, log).Register(mux)
	handlers.NewPricingHandler(engine.Catalog()).Register(mux)
	handlers.NewQuoteHandler(quotes, log).Register(mux)
	handlers.NewToolHandler(tools, reviews, comments, log).Register(mux)
	handlers.NewReviewHandler(reviews, comments, log).Register(mux)
	handlers.NewAdminHandler(moderation, accounts, consultations, log).Register(mux)
	handlers.NewConsultationHandler(consultations, log).Register(mux)
	mux.Handle("GET /metrics", m.Handler())

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log)
	handler := middleware.Chain(mux,
		middleware.Recover(log),
		middleware.CORS(cfg.CORSOrigins),
		limiter.Handler,
		middleware.RequestLogger(log),
		m.Instrument,
		middleware.Authenticate(tokens, log),
	)

	jan, err := janitor.New(cfg.JanitorSchedule, store, log,
		janitor.WithLimiter(limiter, janitor.DefaultIdle),
		janitor.WithPurgeObserver(m.ObservePurge))
	if err != nil {
		return nil, err
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{
		inner:   httpServer,
		handler: handler,
		mail:    mailer,
		janitor: jan,
	}, nil
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start launches background jobs and begins serving HTTP traffic.
func (s *Server) Start() error {
	s.janitor.Start()
	return s.inner.ListenAndServe()
}

// Shutdown stops accepting requests, then drains background jobs and
// pending email.
func (s *Server) Shutdown(ctx context.Context) error {
	return errors.Join(
		s.inner.Shutdown(ctx),
		s.janitor.Stop(ctx),
		s.mail.Wait(ctx),
	)
}
