package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"gatekeeper/internal/application/token"
	"gatekeeper/internal/application/validate"
	"gatekeeper/internal/domain/account"
	"gatekeeper/internal/domain/password"
)

// AccountStoreForLogin defines the store interface needed by Login.
type AccountStoreForLogin interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	UpdateRefreshToken(ctx context.Context, id, token string) error
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the token pair issued by a successful login.
type LoginResult struct {
	AccountID    string
	AccessToken  string
	RefreshToken string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	AccountStore AccountStoreForLogin
	Hasher       *password.Hasher
	Tokens       *token.Service
}

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// the response never reveals whether the email is registered. The two
	// cases are still distinguished in the logs.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotConfirmed  = errors.New("Please confirm your email.")
)

// ExecuteLogin authenticates credentials and opens a session: a 10-minute
// access token plus a 30-day refresh token persisted on the account,
// superseding any prior session.
// PRE: Valid email and password provided
// POST: On success the account's stored refresh token is the returned one
// INVARIANT: Confirmation state is checked only after the password verifies
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	if err := validate.Login(validate.LoginPayload{Email: input.Email, Password: input.Password}); err != nil {
		return LoginResult{}, err
	}

	acct, err := deps.AccountStore.GetByEmail(ctx, input.Email)
	if err != nil {
		slog.Info("auth_event", "event", "login_failed", "email", input.Email, "reason", "not_found")
		return LoginResult{}, ErrInvalidCredentials
	}

	if !deps.Hasher.Verify(acct.PasswordHash, input.Password) {
		slog.Info("auth_event", "event", "login_failed", "email", input.Email, "reason", "wrong_password")
		return LoginResult{}, ErrInvalidCredentials
	}

	// Checked after credential verification so an unconfirmed-email reply
	// never reveals registration state ahead of password correctness.
	if !acct.EmailConfirmed {
		slog.Info("auth_event", "event", "login_blocked", "email", input.Email, "reason", "unconfirmed")
		return LoginResult{}, ErrEmailNotConfirmed
	}

	accessToken, err := deps.Tokens.Issue(token.KindAccess, acct.ID, token.AccessTTL)
	if err != nil {
		return LoginResult{}, err
	}
	refreshToken, err := deps.Tokens.Issue(token.KindRefresh, acct.ID, token.RefreshLoginTTL)
	if err != nil {
		return LoginResult{}, err
	}

	// At most one live session per account: overwrite any prior value.
	if err := deps.AccountStore.UpdateRefreshToken(ctx, acct.ID, refreshToken); err != nil {
		return LoginResult{}, err
	}

	slog.Info("auth_event", "event", "login_success", "account_id", acct.ID, "email", acct.Email)
	return LoginResult{
		AccountID:    acct.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
