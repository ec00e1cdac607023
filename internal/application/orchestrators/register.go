package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gatekeeper/internal/application/token"
	"gatekeeper/internal/application/validate"
	"gatekeeper/internal/domain/account"
	"gatekeeper/internal/domain/password"

	storage "gatekeeper/internal/adapters/storage/account"
)

// Notifier dispatches account emails. Dispatch is fire-and-forget: a
// delivery failure never fails the operation that triggered it.
type Notifier interface {
	SendConfirmation(to, token string)
	SendPasswordReset(to, token string)
}

// AccountStoreForRegister defines the store interface needed by Register.
type AccountStoreForRegister interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Create(ctx context.Context, a account.Account) error
}

// RegisterInput carries input for the register orchestrator.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// RegisterDeps holds dependencies for Register.
type RegisterDeps struct {
	AccountStore AccountStoreForRegister
	Hasher       *password.Hasher
	Tokens       *token.Service
	Notifier     Notifier
	GenerateID   func() string
	Now          func() time.Time
}

var ErrEmailTaken = errors.New("User already registered")

// ExecuteRegister coordinates account creation: hash the password, persist
// the account unconfirmed, and dispatch the confirmation link.
// PRE: Input fields are present (shape-checked here)
// POST: Account exists with EmailConfirmed=false; confirmation email queued
// INVARIANT: Email must be unique
func ExecuteRegister(ctx context.Context, input RegisterInput, deps RegisterDeps) (string, error) {
	if err := validate.Register(validate.RegisterPayload{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	}); err != nil {
		return "", err
	}

	// Check if email already exists
	if _, err := deps.AccountStore.GetByEmail(ctx, input.Email); err == nil {
		slog.Info("auth_event", "event", "register_conflict", "email", input.Email)
		return "", ErrEmailTaken
	}

	hash, err := deps.Hasher.Hash(input.Password)
	if err != nil {
		return "", err
	}

	acct := account.Account{
		ID:           deps.GenerateID(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    deps.Now(),
	}
	if err := acct.Validate(); err != nil {
		return "", err
	}

	if err := deps.AccountStore.Create(ctx, acct); err != nil {
		if errors.Is(err, storage.ErrEmailExists) {
			// Lost a create race since the lookup above.
			return "", ErrEmailTaken
		}
		return "", err
	}

	confirmToken, err := deps.Tokens.Issue(token.KindConfirm, acct.ID, token.ConfirmTTL)
	if err != nil {
		return "", err
	}
	deps.Notifier.SendConfirmation(acct.Email, confirmToken)

	slog.Info("auth_event", "event", "registered", "account_id", acct.ID, "email", acct.Email)
	return acct.ID, nil
}
