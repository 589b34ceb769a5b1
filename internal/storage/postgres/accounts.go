package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/itarix-api/internal/models"
)

const accountColumns = `a.id, a.person_id, a.username, p.email, a.password_hash, a.role, a.created_at,
	COALESCE(a.refresh_token, ''), a.refresh_token_expiry, a.failed_login_attempts, a.lockout_until,
	a.email_confirmed, COALESCE(a.email_verification_token, ''), COALESCE(a.password_reset_token, ''),
	a.password_reset_expiry, a.deleted`

// CreatePerson inserts a new person row.
func (s *Store) CreatePerson(ctx context.Context, person models.Person) (models.Person, error) {
	const query = `
		INSERT INTO people (name, email, phone)
		VALUES ($1, $2, $3)
		RETURNING id, name, email, phone;
	`
	return scanPerson(s.pool.QueryRow(ctx, query, person.Name, person.Email, person.Phone))
}

// FindPersonByID fetches a person by id.
func (s *Store) FindPersonByID(ctx context.Context, id int64) (models.Person, error) {
	const query = `SELECT id, name, email, phone FROM people WHERE id = $1;`
	return scanPerson(s.pool.QueryRow(ctx, query, id))
}

// FindPersonByEmail fetches a person by email, ignoring case.
func (s *Store) FindPersonByEmail(ctx context.Context, email string) (models.Person, error) {
	const query = `SELECT id, name, email, phone FROM people WHERE lower(email) = lower($1);`
	return scanPerson(s.pool.QueryRow(ctx, query, email))
}

// CreateAccount inserts a new account row.
func (s *Store) CreateAccount(ctx context.Context, account models.Account) (models.Account, error) {
	const query = `
		WITH a AS (
			INSERT INTO accounts (person_id, username, password_hash, role, email_confirmed, email_verification_token)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
			RETURNING *
		)
		SELECT ` + accountColumns + `
		FROM a
		JOIN people p ON p.id = a.person_id;
	`
	row := s.pool.QueryRow(ctx, query,
		account.PersonID, account.Username, account.PasswordHash, account.Role,
		account.EmailConfirmed, account.EmailVerificationToken)
	return scanAccount(row)
}

// FindAccountByID fetches a live account by id.
func (s *Store) FindAccountByID(ctx context.Context, id int64) (models.Account, error) {
	return s.findAccount(ctx, `a.id = $1`, id)
}

// FindAccountByUsername fetches a live account by username, ignoring case.
func (s *Store) FindAccountByUsername(ctx context.Context, username string) (models.Account, error) {
	return s.findAccount(ctx, `lower(a.username) = lower($1)`, username)
}

// FindAccountByPersonID fetches the live account owned by a person.
func (s *Store) FindAccountByPersonID(ctx context.Context, personID int64) (models.Account, error) {
	return s.findAccount(ctx, `a.person_id = $1`, personID)
}

// ConfirmEmail consumes a verification token.
func (s *Store) ConfirmEmail(ctx context.Context, token string) (models.Account, error) {
	return s.updateAccount(ctx,
		`email_confirmed = TRUE, email_verification_token = NULL`,
		`email_verification_token = $1`, token)
}

// RecordLoginFailure increments the failure counter in a single statement so
// concurrent attempts cannot lose updates.
func (s *Store) RecordLoginFailure(ctx context.Context, id int64, threshold int, lockUntil time.Time) (models.Account, error) {
	return s.updateAccount(ctx, `
		failed_login_attempts = CASE WHEN failed_login_attempts + 1 >= $2 THEN 0 ELSE failed_login_attempts + 1 END,
		lockout_until = CASE WHEN failed_login_attempts + 1 >= $2 THEN $3 ELSE lockout_until END`,
		`id = $1`, id, threshold, lockUntil)
}

// ClearLoginFailures resets the counter and any lockout.
func (s *Store) ClearLoginFailures(ctx context.Context, id int64) error {
	const query = `UPDATE accounts SET failed_login_attempts = 0, lockout_until = NULL WHERE id = $1 AND NOT deleted;`
	return expectOne(s.pool.Exec(ctx, query, id))
}

// SetRefreshToken stores the account's only refresh token.
func (s *Store) SetRefreshToken(ctx context.Context, id int64, token string, expiry time.Time) error {
	const query = `UPDATE accounts SET refresh_token = $2, refresh_token_expiry = $3 WHERE id = $1 AND NOT deleted;`
	return expectOne(s.pool.Exec(ctx, query, id, token, expiry))
}

// ConsumeRefreshToken clears a still-valid refresh token and returns its owner.
func (s *Store) ConsumeRefreshToken(ctx context.Context, token string, now time.Time) (models.Account, error) {
	return s.updateAccount(ctx,
		`refresh_token = NULL, refresh_token_expiry = NULL`,
		`refresh_token = $1 AND refresh_token_expiry > $2`, token, now)
}

// ClearRefreshToken revokes a refresh token.
func (s *Store) ClearRefreshToken(ctx context.Context, token string) error {
	const query = `UPDATE accounts SET refresh_token = NULL, refresh_token_expiry = NULL WHERE refresh_token = $1 AND NOT deleted;`
	return expectOne(s.pool.Exec(ctx, query, token))
}

// SetPasswordResetToken stores a single-use reset token.
func (s *Store) SetPasswordResetToken(ctx context.Context, id int64, token string, expiry time.Time) error {
	const query = `UPDATE accounts SET password_reset_token = $2, password_reset_expiry = $3 WHERE id = $1 AND NOT deleted;`
	return expectOne(s.pool.Exec(ctx, query, id, token, expiry))
}

// ResetPassword consumes a still-valid reset token and stores the new hash.
func (s *Store) ResetPassword(ctx context.Context, token, passwordHash string, now time.Time) (models.Account, error) {
	return s.updateAccount(ctx,
		`password_hash = $3, password_reset_token = NULL, password_reset_expiry = NULL`,
		`password_reset_token = $1 AND password_reset_expiry > $2`, token, now, passwordHash)
}

// SoftDeleteAccount marks an account deleted and revokes its session.
func (s *Store) SoftDeleteAccount(ctx context.Context, id int64) error {
	const query = `
		UPDATE accounts
		SET deleted = TRUE, refresh_token = NULL, refresh_token_expiry = NULL
		WHERE id = $1 AND NOT deleted;
	`
	return expectOne(s.pool.Exec(ctx, query, id))
}

// PurgeExpiredTokens clears refresh and reset tokens past their expiry.
func (s *Store) PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	const query = `
		UPDATE accounts SET
			refresh_token = CASE WHEN refresh_token_expiry <= $1 THEN NULL ELSE refresh_token END,
			refresh_token_expiry = CASE WHEN refresh_token_expiry <= $1 THEN NULL ELSE refresh_token_expiry END,
			password_reset_token = CASE WHEN password_reset_expiry <= $1 THEN NULL ELSE password_reset_token END,
			password_reset_expiry = CASE WHEN password_reset_expiry <= $1 THEN NULL ELSE password_reset_expiry END
		WHERE refresh_token_expiry <= $1 OR password_reset_expiry <= $1;
	`
	tag, err := s.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, mapError(err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) findAccount(ctx context.Context, where string, args ...any) (models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts a
		JOIN people p ON p.id = a.person_id
		WHERE ` + where + ` AND NOT a.deleted;
	`
	return scanAccount(s.pool.QueryRow(ctx, query, args...))
}

// updateAccount runs UPDATE ... SET set WHERE where on a live account and
// returns the updated row joined with its person.
func (s *Store) updateAccount(ctx context.Context, set, where string, args ...any) (models.Account, error) {
	query := `
		WITH a AS (
			UPDATE accounts SET ` + set + `
			WHERE ` + where + ` AND NOT deleted
			RETURNING *
		)
		SELECT ` + accountColumns + `
		FROM a
		JOIN people p ON p.id = a.person_id;
	`
	return scanAccount(s.pool.QueryRow(ctx, query, args...))
}

func scanPerson(row pgx.Row) (models.Person, error) {
	var p models.Person
	if err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Phone); err != nil {
		return models.Person{}, mapError(err)
	}
	return p, nil
}

func scanAccount(row pgx.Row) (models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.ID, &a.PersonID, &a.Username, &a.Email, &a.PasswordHash, &a.Role, &a.CreatedAt,
		&a.RefreshToken, &a.RefreshTokenExpiry, &a.FailedLoginAttempts, &a.LockoutUntil,
		&a.EmailConfirmed, &a.EmailVerificationToken, &a.PasswordResetToken,
		&a.PasswordResetExpiry, &a.Deleted,
	)
	if err != nil {
		return models.Account{}, mapError(err)
	}
	return a, nil
}
