package orchestrators

import (
	"context"
	"log/slog"
)

// AccountStoreForLogout defines the store interface needed by Logout.
type AccountStoreForLogout interface {
	ClearRefreshToken(ctx context.Context, tok string) error
}

// LogoutDeps holds dependencies for Logout.
type LogoutDeps struct {
	AccountStore AccountStoreForLogout
}

// ExecuteLogout revokes whichever session holds the presented refresh token.
// Revocation is idempotent: a token nobody holds is already logged out.
// POST: No account stores the presented token
func ExecuteLogout(ctx context.Context, presented string, deps LogoutDeps) error {
	if presented == "" {
		return nil
	}
	if err := deps.AccountStore.ClearRefreshToken(ctx, presented); err != nil {
		return err
	}
	slog.Info("auth_event", "event", "logout")
	return nil
}
