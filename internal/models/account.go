package models

import "time"

// Person is the contact record behind one or more accounts over time.
type Person struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// AccountState is the lifecycle position of an account.
type AccountState string

const (
	StateUnverified AccountState = "unverified"
	StateActive     AccountState = "active"
	StateLocked     AccountState = "locked"
	StateDeleted    AccountState = "deleted"
)

// Account captures login credentials and session state for a person.
// Email is read through the owning Person and is not stored on the account.
type Account struct {
	ID                     int64      `json:"id"`
	PersonID               int64      `json:"personId"`
	Username               string     `json:"username"`
	Email                  string     `json:"email"`
	PasswordHash           string     `json:"-"`
	Role                   string     `json:"role"`
	CreatedAt              time.Time  `json:"createdAt"`
	RefreshToken           string     `json:"-"`
	RefreshTokenExpiry     *time.Time `json:"-"`
	FailedLoginAttempts    int        `json:"-"`
	LockoutUntil           *time.Time `json:"-"`
	EmailConfirmed         bool       `json:"emailConfirmed"`
	EmailVerificationToken string     `json:"-"`
	PasswordResetToken     string     `json:"-"`
	PasswordResetExpiry    *time.Time `json:"-"`
	Deleted                bool       `json:"-"`
}

// State derives the lifecycle state at instant now.
func (a Account) State(now time.Time) AccountState {
	switch {
	case a.Deleted:
		return StateDeleted
	case !a.EmailConfirmed:
		return StateUnverified
	case a.LockedAt(now):
		return StateLocked
	default:
		return StateActive
	}
}

// LockedAt reports whether a lockout is still in force at now.
func (a Account) LockedAt(now time.Time) bool {
	return a.LockoutUntil != nil && a.LockoutUntil.After(now)
}

// DisplayName is the name put into access tokens.
func (a Account) DisplayName() string {
	return a.Username
}
