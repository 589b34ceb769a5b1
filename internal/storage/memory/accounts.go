package memory

import (
	"context"
	"time"

	"github.com/hongminglow/itarix-api/internal/models"
	"github.com/hongminglow/itarix-api/internal/storage"
)

func (s *Store) CreatePerson(_ context.Context, person models.Person) (models.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.people {
		if sameFold(p.Email, person.Email) {
			return models.Person{}, storage.ErrAlreadyExists
		}
	}
	person.ID = s.nextID()
	s.people[person.ID] = person
	return person, nil
}

func (s *Store) FindPersonByID(_ context.Context, id int64) (models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.people[id]
	if !ok {
		return models.Person{}, storage.ErrNotFound
	}
	return p, nil
}

func (s *Store) FindPersonByEmail(_ context.Context, email string) (models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.people {
		if sameFold(p.Email, email) {
			return p, nil
		}
	}
	return models.Person{}, storage.ErrNotFound
}

func (s *Store) CreateAccount(_ context.Context, account models.Account) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	person, ok := s.people[account.PersonID]
	if !ok {
		return models.Account{}, storage.ErrInvalidReference
	}
	for _, a := range s.accounts {
		if a.Deleted {
			continue
		}
		if sameFold(a.Username, account.Username) || a.PersonID == account.PersonID {
			return models.Account{}, storage.ErrAlreadyExists
		}
	}
	account.ID = s.nextID()
	account.CreatedAt = s.stamp(account.CreatedAt)
	account.Email = ""
	s.accounts[account.ID] = account
	account.Email = person.Email
	return account, nil
}

func (s *Store) FindAccountByID(_ context.Context, id int64) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.findAccount(func(a models.Account) bool { return a.ID == id })
}

func (s *Store) FindAccountByUsername(_ context.Context, username string) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.findAccount(func(a models.Account) bool { return sameFold(a.Username, username) })
}

func (s *Store) FindAccountByPersonID(_ context.Context, personID int64) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.findAccount(func(a models.Account) bool { return a.PersonID == personID })
}

func (s *Store) ConfirmEmail(_ context.Context, token string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateAccount(
		func(a models.Account) bool { return token != "" && a.EmailVerificationToken == token },
		func(a *models.Account) {
			a.EmailConfirmed = true
			a.EmailVerificationToken = ""
		},
	)
}

func (s *Store) RecordLoginFailure(_ context.Context, id int64, threshold int, lockUntil time.Time) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateAccount(
		func(a models.Account) bool { return a.ID == id },
		func(a *models.Account) {
			a.FailedLoginAttempts++
			if a.FailedLoginAttempts >= threshold {
				a.FailedLoginAttempts = 0
				a.LockoutUntil = ptr(lockUntil)
			}
		},
	)
}

func (s *Store) ClearLoginFailures(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.updateAccount(
		func(a models.Account) bool { return a.ID == id },
		func(a *models.Account) {
			a.FailedLoginAttempts = 0
			a.LockoutUntil = nil
		},
	)
	return err
}

func (s *Store) SetRefreshToken(_ context.Context, id int64, token string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.updateAccount(
		func(a models.Account) bool { return a.ID == id },
		func(a *models.Account) {
			a.RefreshToken = token
			a.RefreshTokenExpiry = ptr(expiry)
		},
	)
	return err
}

func (s *Store) ConsumeRefreshToken(_ context.Context, token string, now time.Time) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateAccount(
		func(a models.Account) bool {
			return token != "" && a.RefreshToken == token &&
				a.RefreshTokenExpiry != nil && a.RefreshTokenExpiry.After(now)
		},
		func(a *models.Account) {
			a.RefreshToken = ""
			a.RefreshTokenExpiry = nil
		},
	)
}

func (s *Store) ClearRefreshToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.updateAccount(
		func(a models.Account) bool { return token != "" && a.RefreshToken == token },
		func(a *models.Account) {
			a.RefreshToken = ""
			a.RefreshTokenExpiry = nil
		},
	)
	return err
}

func (s *Store) SetPasswordResetToken(_ context.Context, id int64, token string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.updateAccount(
		func(a models.Account) bool { return a.ID == id },
		func(a *models.Account) {
			a.PasswordResetToken = token
			a.PasswordResetExpiry = ptr(expiry)
		},
	)
	return err
}

func (s *Store) ResetPassword(_ context.Context, token, passwordHash string, now time.Time) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateAccount(
		func(a models.Account) bool {
			return token != "" && a.PasswordResetToken == token &&
				a.PasswordResetExpiry != nil && a.PasswordResetExpiry.After(now)
		},
		func(a *models.Account) {
			a.PasswordHash = passwordHash
			a.PasswordResetToken = ""
			a.PasswordResetExpiry = nil
		},
	)
}

func (s *Store) SoftDeleteAccount(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.updateAccount(
		func(a models.Account) bool { return a.ID == id },
		func(a *models.Account) {
			a.Deleted = true
			a.RefreshToken = ""
			a.RefreshTokenExpiry = nil
		},
	)
	return err
}

func (s *Store) PurgeExpiredTokens(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, a := range s.accounts {
		changed := false
		if a.RefreshTokenExpiry != nil && !a.RefreshTokenExpiry.After(now) {
			a.RefreshToken = ""
			a.RefreshTokenExpiry = nil
			changed = true
		}
		if a.PasswordResetExpiry != nil && !a.PasswordResetExpiry.After(now) {
			a.PasswordResetToken = ""
			a.PasswordResetExpiry = nil
			changed = true
		}
		if changed {
			s.accounts[id] = a
			n++
		}
	}
	return n, nil
}

// findAccount returns the first live account matching, with Email joined
// from its person. Callers hold the lock.
func (s *Store) findAccount(match func(models.Account) bool) (models.Account, error) {
	for _, a := range s.accounts {
		if !a.Deleted && match(a) {
			a.Email = s.people[a.PersonID].Email
			return a, nil
		}
	}
	return models.Account{}, storage.ErrNotFound
}

// updateAccount applies mutate to the first live account matching. Callers
// hold the write lock.
func (s *Store) updateAccount(match func(models.Account) bool, mutate func(*models.Account)) (models.Account, error) {
	a, err := s.findAccount(match)
	if err != nil {
		return models.Account{}, err
	}
	mutate(&a)
	stored := a
	stored.Email = ""
	s.accounts[a.ID] = stored
	return a, nil
}
