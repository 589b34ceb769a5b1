// Package account manages registration, sign-in and the session lifecycle:
// email verification, lockout after repeated failures, refresh token
// rotation and password reset.
package account

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hongminglow/itarix-api/internal/apperr"
	"github.com/hongminglow/itarix-api/internal/auth"
	"github.com/hongminglow/itarix-api/internal/logging"
	imail "github.com/hongminglow/itarix-api/internal/mail"
	"github.com/hongminglow/itarix-api/internal/models"
	"github.com/hongminglow/itarix-api/internal/storage"
)

const (
	// MaxFailedLogins is the number of consecutive wrong passwords that
	// triggers a lockout.
	MaxFailedLogins = 5
	LockoutDuration = 10 * time.Minute
	ResetTokenTTL   = 15 * time.Minute
)

// Login outcomes reported to the LoginObserver.
const (
	OutcomeSuccess            = "success"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeUnverified         = "unverified"
	OutcomeLocked             = "locked"
)

// Service implements the credential and session rules.
type Service struct {
	store   storage.AccountStore
	hasher  auth.PasswordHasher
	tokens  *auth.TokenManager
	mailer  imail.Sender
	log     logging.Logger
	baseURL string
	now     func() time.Time
	observe func(outcome string)
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLoginObserver registers a callback receiving every login outcome.
func WithLoginObserver(fn func(outcome string)) Option {
	return func(s *Service) { s.observe = fn }
}

// NewService wires the service. baseURL is the public site used in emailed links.
func NewService(store storage.AccountStore, hasher auth.PasswordHasher, tokens *auth.TokenManager,
	mailer imail.Sender, log logging.Logger, baseURL string, opts ...Option) *Service {
	s := &Service{
		store:   store,
		hasher:  hasher,
		tokens:  tokens,
		mailer:  mailer,
		log:     log.With("component", "account"),
		baseURL: baseURL,
		now:     func() time.Time { return time.Now().UTC() },
		observe: func(string) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterInput carries the fields needed to create an account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register creates an unverified account and emails its verification link.
// A person whose previous account was deleted keeps their person record.
func (s *Service) Register(ctx context.Context, in RegisterInput) (int64, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return 0, apperr.New(apperr.Validation, "username, email and password are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return 0, apperr.New(apperr.Validation, "invalid email address")
	}

	if _, err := s.store.FindAccountByUsername(ctx, username); err == nil {
		return 0, ErrDuplicateUsername
	} else if !errors.Is(err, storage.ErrNotFound) {
		return 0, fmt.Errorf("find account by username: %w", err)
	}

	person, err := s.personFor(ctx, username, email)
	if err != nil {
		return 0, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return 0, err
	}

	created, err := s.store.CreateAccount(ctx, models.Account{
		PersonID:               person.ID,
		Username:               username,
		PasswordHash:           hash,
		Role:                   models.RoleUser,
		CreatedAt:              s.now(),
		EmailVerificationToken: uuid.NewString(),
	})
	if errors.Is(err, storage.ErrAlreadyExists) {
		return 0, ErrDuplicateUsername
	}
	if err != nil {
		return 0, fmt.Errorf("create account: %w", err)
	}

	s.sendVerification(ctx, person.Email, created)
	s.log.Info(ctx, "account registered", "account_id", created.ID, "username", created.Username)
	return created.ID, nil
}

// personFor returns the person owning email, creating one if needed. It
// fails when that person already has a live account.
func (s *Service) personFor(ctx context.Context, name, email string) (models.Person, error) {
	person, err := s.store.FindPersonByEmail(ctx, email)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		created, err := s.store.CreatePerson(ctx, models.Person{Name: name, Email: email})
		if errors.Is(err, storage.ErrAlreadyExists) {
			return models.Person{}, ErrDuplicateEmail
		}
		if err != nil {
			return models.Person{}, fmt.Errorf("create person: %w", err)
		}
		return created, nil
	case err != nil:
		return models.Person{}, fmt.Errorf("find person by email: %w", err)
	}

	if _, err := s.store.FindAccountByPersonID(ctx, person.ID); err == nil {
		return models.Person{}, ErrDuplicateEmail
	} else if !errors.Is(err, storage.ErrNotFound) {
		return models.Person{}, fmt.Errorf("find account by person: %w", err)
	}
	return person, nil
}

// VerifyEmail consumes a verification token.
func (s *Service) VerifyEmail(ctx context.Context, token string) (models.Account, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.Account{}, ErrInvalidToken
	}
	acc, err := s.store.ConfirmEmail(ctx, token)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Account{}, ErrInvalidToken
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("confirm email: %w", err)
	}
	s.log.Info(ctx, "email verified", "account_id", acc.ID)
	return acc, nil
}

// Login checks credentials. Unknown, deleted and wrong-password attempts all
// return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (models.Account, error) {
	acc, err := s.store.FindAccountByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, storage.ErrNotFound) {
		s.observe(OutcomeInvalidCredentials)
		return models.Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("find account by username: %w", err)
	}

	now := s.now()
	if !acc.EmailConfirmed {
		s.observe(OutcomeUnverified)
		return models.Account{}, ErrEmailNotVerified
	}
	if acc.LockedAt(now) {
		s.observe(OutcomeLocked)
		return models.Account{}, ErrAccountLocked
	}

	ok, err := s.hasher.Compare(acc.PasswordHash, password)
	if err != nil {
		return models.Account{}, err
	}
	if !ok {
		updated, err := s.store.RecordLoginFailure(ctx, acc.ID, MaxFailedLogins, now.Add(LockoutDuration))
		if err != nil {
			return models.Account{}, fmt.Errorf("record login failure: %w", err)
		}
		if updated.LockedAt(now) {
			s.log.Warn(ctx, "account locked after failed logins", "account_id", acc.ID)
		}
		s.observe(OutcomeInvalidCredentials)
		return models.Account{}, ErrInvalidCredentials
	}

	if err := s.store.ClearLoginFailures(ctx, acc.ID); err != nil {
		return models.Account{}, fmt.Errorf("clear login failures: %w", err)
	}
	acc.FailedLoginAttempts = 0
	acc.LockoutUntil = nil
	s.observe(OutcomeSuccess)
	return acc, nil
}

// IssueSession mints an access token for acc and stores its new refresh
// token, replacing any previous one.
func (s *Service) IssueSession(ctx context.Context, acc models.Account) (auth.TokenPair, error) {
	pair, err := s.tokens.Issue(Identity(acc))
	if err != nil {
		return auth.TokenPair{}, err
	}
	if err := s.store.SetRefreshToken(ctx, acc.ID, pair.RefreshToken, pair.RefreshExpiresAt); err != nil {
		return auth.TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}
	return pair, nil
}

// Refresh exchanges a refresh token for a new session. The old token is
// consumed atomically so it can be used only once.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (models.Account, auth.TokenPair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return models.Account{}, auth.TokenPair{}, ErrInvalidOrExpiredToken
	}
	acc, err := s.store.ConsumeRefreshToken(ctx, refreshToken, s.now())
	if errors.Is(err, storage.ErrNotFound) {
		return models.Account{}, auth.TokenPair{}, ErrInvalidOrExpiredToken
	}
	if err != nil {
		return models.Account{}, auth.TokenPair{}, fmt.Errorf("consume refresh token: %w", err)
	}
	pair, err := s.IssueSession(ctx, acc)
	if err != nil {
		return models.Account{}, auth.TokenPair{}, err
	}
	return acc, pair, nil
}

// Logout revokes a refresh token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return nil
	}
	err := s.store.ClearRefreshToken(ctx, refreshToken)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	return nil
}

// ForgotPassword issues a reset token valid for ResetTokenTTL and emails the
// reset link. Callers must hide ErrNotFound from clients.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	person, err := s.store.FindPersonByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find person by email: %w", err)
	}
	acc, err := s.store.FindAccountByPersonID(ctx, person.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find account by person: %w", err)
	}

	token := uuid.NewString()
	if err := s.store.SetPasswordResetToken(ctx, acc.ID, token, s.now().Add(ResetTokenTTL)); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}

	html, err := render(resetTemplate, emailData{
		Link:    link(s.baseURL, "/reset-password", token),
		Minutes: int(ResetTokenTTL / time.Minute),
	})
	if err != nil {
		return "", fmt.Errorf("render reset email: %w", err)
	}
	if err := s.mailer.Send(ctx, imail.Message{To: person.Email, Subject: "Reset your password", HTML: html}); err != nil {
		s.log.Error(ctx, "send reset email", "account_id", acc.ID, "error", err)
	}
	return token, nil
}

// ResetPassword replaces the password of the account owning a valid reset token.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if strings.TrimSpace(token) == "" {
		return ErrInvalidOrExpiredResetToken
	}
	if newPassword == "" {
		return apperr.New(apperr.Validation, "new password is required")
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	acc, err := s.store.ResetPassword(ctx, token, hash, s.now())
	if errors.Is(err, storage.ErrNotFound) {
		return ErrInvalidOrExpiredResetToken
	}
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	s.log.Info(ctx, "password reset", "account_id", acc.ID)
	return nil
}

// Get returns a live account.
func (s *Service) Get(ctx context.Context, id int64) (models.Account, error) {
	acc, err := s.store.FindAccountByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Account{}, ErrNotFound
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("find account: %w", err)
	}
	return acc, nil
}

// Deactivate soft-deletes an account and revokes its session.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	err := s.store.SoftDeleteAccount(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("soft delete account: %w", err)
	}
	s.log.Info(ctx, "account deactivated", "account_id", id)
	return nil
}

// Identity is the token identity of acc.
func Identity(acc models.Account) auth.Identity {
	return auth.Identity{
		AccountID: acc.ID,
		Name:      acc.DisplayName(),
		Email:     acc.Email,
		Role:      acc.Role,
	}
}

func (s *Service) sendVerification(ctx context.Context, email string, acc models.Account) {
	html, err := render(verifyTemplate, emailData{
		Username: acc.Username,
		Link:     link(s.baseURL, "/verify-email", acc.EmailVerificationToken),
	})
	if err != nil {
		s.log.Error(ctx, "render verification email", "account_id", acc.ID, "error", err)
		return
	}
	msg := imail.Message{To: email, Subject: "Verify your email address", HTML: html}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.log.Error(ctx, "send verification email", "account_id", acc.ID, "error", err)
	}
}
