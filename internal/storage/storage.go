package storage

import (
	"context"
	"errors"
	"time"

	"github.com/hongminglow/itarix-api/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrInvalidReference indicates a row points at a missing parent record.
var ErrInvalidReference = errors.New("referenced record does not exist")

// AccountStore persists people and their accounts. Every account lookup
// skips soft-deleted accounts.
type AccountStore interface {
	CreatePerson(ctx context.Context, person models.Person) (models.Person, error)
	FindPersonByID(ctx context.Context, id int64) (models.Person, error)
	FindPersonByEmail(ctx context.Context, email string) (models.Person, error)

	CreateAccount(ctx context.Context, account models.Account) (models.Account, error)
	FindAccountByID(ctx context.Context, id int64) (models.Account, error)
	FindAccountByUsername(ctx context.Context, username string) (models.Account, error)
	FindAccountByPersonID(ctx context.Context, personID int64) (models.Account, error)

	// ConfirmEmail marks the account owning token as confirmed and clears
	// the token so it cannot be used twice.
	ConfirmEmail(ctx context.Context, token string) (models.Account, error)
	// RecordLoginFailure increments the failure counter. When the counter
	// reaches threshold it is reset to zero and the account is locked until
	// lockUntil.
	RecordLoginFailure(ctx context.Context, id int64, threshold int, lockUntil time.Time) (models.Account, error)
	ClearLoginFailures(ctx context.Context, id int64) error

	// SetRefreshToken replaces the account's single refresh token.
	SetRefreshToken(ctx context.Context, id int64, token string, expiry time.Time) error
	// ConsumeRefreshToken clears a refresh token that is still valid at now
	// and returns its owner.
	ConsumeRefreshToken(ctx context.Context, token string, now time.Time) (models.Account, error)
	ClearRefreshToken(ctx context.Context, token string) error

	SetPasswordResetToken(ctx context.Context, id int64, token string, expiry time.Time) error
	// ResetPassword swaps the password hash for the account owning a reset
	// token still valid at now, and clears the token.
	ResetPassword(ctx context.Context, token, passwordHash string, now time.Time) (models.Account, error)

	SoftDeleteAccount(ctx context.Context, id int64) error
	// PurgeExpiredTokens clears refresh and reset tokens that expired before now.
	PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

// QuoteStore persists saved quotes.
type QuoteStore interface {
	CreateQuote(ctx context.Context, quote models.Quote) (models.Quote, error)
	ListQuotesByAccount(ctx context.Context, accountID int64) ([]models.Quote, error)
}

// ToolStore persists the AI tool directory.
type ToolStore interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListTools(ctx context.Context) ([]models.Tool, error)
	GetTool(ctx context.Context, id int64) (models.Tool, error)
	CreateTool(ctx context.Context, tool models.Tool) (models.Tool, error)
	UpdateTool(ctx context.Context, tool models.Tool) (models.Tool, error)
	DeleteTool(ctx context.Context, id int64) error
}

// ReviewStore persists tool reviews and their reports.
type ReviewStore interface {
	ListReviewsByTool(ctx context.Context, toolID int64, approvedOnly bool) ([]models.Review, error)
	RatingForTool(ctx context.Context, toolID int64) (models.Rating, error)
	CreateReview(ctx context.Context, review models.Review) (models.Review, error)
	// UpdateReview edits rating and text of a review owned by review.AccountID.
	UpdateReview(ctx context.Context, review models.Review) (models.Review, error)
	// DeleteReview removes a review; accountID of zero ignores ownership.
	DeleteReview(ctx context.Context, id, accountID int64) error
	// ReportReview records the report and flags the review atomically.
	ReportReview(ctx context.Context, report models.Report) error
	ListPendingReviews(ctx context.Context) ([]models.Review, error)
	ApproveReview(ctx context.Context, id int64) error
}

// CommentStore persists tool comments and their reports.
type CommentStore interface {
	ListCommentsByTool(ctx context.Context, toolID int64) ([]models.Comment, error)
	CountCommentsByTool(ctx context.Context, toolID int64) (int, error)
	ListCommentsByReview(ctx context.Context, reviewID int64) ([]models.Comment, error)
	CreateComment(ctx context.Context, comment models.Comment) (models.Comment, error)
	// UpdateComment edits the text of a comment owned by comment.AccountID.
	UpdateComment(ctx context.Context, comment models.Comment) (models.Comment, error)
	// DeleteComment removes a comment; accountID of zero ignores ownership.
	DeleteComment(ctx context.Context, id, accountID int64) error
	// ReportComment records the report and flags the comment atomically.
	ReportComment(ctx context.Context, report models.Report) error
	ListFlaggedComments(ctx context.Context) ([]models.Comment, error)
	// ApproveComment approves a comment and clears its flag.
	ApproveComment(ctx context.Context, id int64) error
}

// ConsultationStore persists consultation questionnaires.
type ConsultationStore interface {
	// CreateConsultation writes the header, answers and multi-select rows in
	// one transaction and returns the new consultation id.
	CreateConsultation(ctx context.Context, c models.Consultation) (int64, error)
	ListConsultationsByAccount(ctx context.Context, accountID int64, filter models.ConsultationFilter) ([]models.Consultation, error)
	CountConsultationsByAccount(ctx context.Context, accountID int64, filter models.ConsultationFilter) (int, error)
	// GetConsultation loads a consultation with answers; accountID of zero
	// ignores ownership.
	GetConsultation(ctx context.Context, id, accountID int64) (models.Consultation, error)
	LatestConsultation(ctx context.Context, accountID int64) (models.Consultation, error)
}

// Store is the full persistence gateway.
type Store interface {
	AccountStore
	QuoteStore
	ToolStore
	ReviewStore
	CommentStore
	ConsultationStore
	Ping(ctx context.Context) error
	Close()
}
