// Package validate holds the pure request-shape checks consulted before any
// orchestrator acts. The rules mirror the registration and login schemas the
// service has always enforced: they reject malformed input with a
// field-specific message and never touch storage.
package validate

import (
	"strings"

	"gatekeeper/internal/domain/account"
)

// Error is a request-shape failure carrying the field-specific message
// surfaced to callers. Handlers classify it with errors.As.
type Error string

func (e Error) Error() string { return string(e) }

// Validation errors
const (
	ErrUsernameRequired = Error("username is required")
	ErrUsernameFormat   = Error("username must be 3-30 alphanumeric characters")
	ErrEmailRequired    = Error("email is required")
	ErrEmailFormat      = Error("email must be a valid email address")
	ErrEmailLength      = Error("email must be 6-255 characters")
	ErrPasswordRequired = Error("password is required")
	ErrPasswordLength   = Error("password must be at least 8 characters")
)

// RegisterPayload is the shape of a registration request.
type RegisterPayload struct {
	Username string
	Email    string
	Password string
}

// LoginPayload is the shape of a login request.
type LoginPayload struct {
	Email    string
	Password string
}

// Register checks a registration payload.
// POST: Returns nil if valid, the first failing field's error otherwise
func Register(p RegisterPayload) error {
	if strings.TrimSpace(p.Username) == "" {
		return ErrUsernameRequired
	}
	if !account.IsValidUsername(p.Username) {
		return ErrUsernameFormat
	}
	if err := email(p.Email); err != nil {
		return err
	}
	return NewPassword(p.Password)
}

// Login checks a login payload.
// POST: Returns nil if valid, the first failing field's error otherwise
func Login(p LoginPayload) error {
	if err := email(p.Email); err != nil {
		return err
	}
	if p.Password == "" {
		return ErrPasswordRequired
	}
	return nil
}

// NewPassword checks a password from registration or the reset flow.
// POST: Returns nil if valid, the failing error otherwise
func NewPassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) < account.MinPasswordLength {
		return ErrPasswordLength
	}
	return nil
}

func email(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrEmailRequired
	}
	if len(s) < account.MinEmailLength || len(s) > account.MaxEmailLength {
		return ErrEmailLength
	}
	at := strings.Index(s, "@")
	if at <= 0 || at == len(s)-1 || strings.ContainsAny(s, " \t") {
		return ErrEmailFormat
	}
	return nil
}
