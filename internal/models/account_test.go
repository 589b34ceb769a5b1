package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccountState(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Minute)
	past := now.Add(-time.Minute)

	tests := []struct {
		name string
		acct Account
		want AccountState
	}{
		{"unverified", Account{}, StateUnverified},
		{"active", Account{EmailConfirmed: true}, StateActive},
		{"locked", Account{EmailConfirmed: true, LockoutUntil: &future}, StateLocked},
		{"lockout elapsed", Account{EmailConfirmed: true, LockoutUntil: &past}, StateActive},
		{"deleted wins", Account{EmailConfirmed: true, LockoutUntil: &future, Deleted: true}, StateDeleted},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.acct.State(now))
		})
	}
}
