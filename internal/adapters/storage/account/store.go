package account

import (
	"context"
	"errors"

	domain "gatekeeper/internal/domain/account"
)

// ErrNotFound is returned by lookups when no account matches.
var ErrNotFound = errors.New("account not found")

// ErrEmailExists is returned by Create when the email is already registered.
var ErrEmailExists = errors.New("email is already registered")

// Store persists Account state. The token-mutating operations are atomic
// conditional updates keyed on the expected prior value — two racing
// refreshes on the same account resolve at this layer, never by
// read-then-write in a caller.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	GetByRefreshToken(ctx context.Context, token string) (domain.Account, error)
	Create(ctx context.Context, a domain.Account) error

	// SetEmailConfirmed marks the account's email as confirmed. Confirming
	// twice is harmless.
	SetEmailConfirmed(ctx context.Context, id string) error

	// UpdateRefreshToken overwrites the stored refresh token at login,
	// superseding any prior session.
	UpdateRefreshToken(ctx context.Context, id, token string) error

	// SwapRefreshToken replaces old with new only if old is still the stored
	// value. Returns false when the stored value no longer matches (a
	// concurrent rotation won the race).
	SwapRefreshToken(ctx context.Context, id, old, new string) (bool, error)

	// ClearRefreshToken revokes whichever session holds token. Clearing a
	// token nobody holds is not an error.
	ClearRefreshToken(ctx context.Context, token string) error

	// SetResetToken overwrites the stored reset token, invalidating any
	// earlier one.
	SetResetToken(ctx context.Context, id, token string) error

	// CompleteReset clears the reset token and replaces the password hash in
	// one conditional update. Returns false when token is no longer the
	// stored value (consumed or superseded).
	CompleteReset(ctx context.Context, id, token, newHash string) (bool, error)
}
