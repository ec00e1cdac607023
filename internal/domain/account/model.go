package account

import (
	"errors"
	"strings"
	"time"
)

// Length constants for user-editable fields.
const (
	MinEmailLength    = 6
	MaxEmailLength    = 255
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MinPasswordLength = 8
)

// Domain errors
var (
	ErrEmptyEmail      = errors.New("email cannot be empty")
	ErrInvalidEmail    = errors.New("email must contain '@'")
	ErrEmptyUsername   = errors.New("username cannot be empty")
	ErrInvalidUsername = errors.New("username must be 3-30 alphanumeric characters")
)

// Account holds state for the Account concept. PasswordHash is a PHC-format
// argon2id digest; the plaintext never touches this struct. RefreshToken and
// ResetToken hold at most one live value each — an empty string means no
// active session / no pending reset.
type Account struct {
	ID             string
	Username       string
	Email          string
	PasswordHash   string
	EmailConfirmed bool
	RefreshToken   string
	ResetToken     string
	CreatedAt      time.Time
}

// Validate checks if the Account has valid data.
// PRE: Account struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Email) == "" {
		return ErrEmptyEmail
	}
	if len(a.Email) < MinEmailLength || len(a.Email) > MaxEmailLength {
		return errors.New("email must be 6-255 characters")
	}
	if !strings.Contains(a.Email, "@") {
		return ErrInvalidEmail
	}
	if strings.TrimSpace(a.Username) == "" {
		return ErrEmptyUsername
	}
	if !IsValidUsername(a.Username) {
		return ErrInvalidUsername
	}
	return nil
}

// HasSession returns true if the account holds a live refresh token.
// INVARIANT: Account fields are not mutated
func (a *Account) HasSession() bool {
	return a.RefreshToken != ""
}

// HasPendingReset returns true if a password reset has been requested and
// not yet consumed or superseded.
// INVARIANT: Account fields are not mutated
func (a *Account) HasPendingReset() bool {
	return a.ResetToken != ""
}

// Confirm transitions the account to the email-confirmed state.
// Confirming an already-confirmed account is harmless.
// POST: EmailConfirmed is true
func (a *Account) Confirm() {
	a.EmailConfirmed = true
}

// IsValidUsername reports whether s is 3-30 ASCII alphanumeric characters.
func IsValidUsername(s string) bool {
	if len(s) < MinUsernameLength || len(s) > MaxUsernameLength {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
