package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"gatekeeper/internal/application/token"

	storage "gatekeeper/internal/adapters/storage/account"
)

// AccountStoreForConfirm defines the store interface needed by ConfirmEmail.
type AccountStoreForConfirm interface {
	SetEmailConfirmed(ctx context.Context, id string) error
}

// ConfirmEmailDeps holds dependencies for ConfirmEmail.
type ConfirmEmailDeps struct {
	AccountStore AccountStoreForConfirm
	Tokens       *token.Service
}

// ExecuteConfirmEmail verifies a confirmation token and marks the subject's
// email as confirmed. Confirming twice is harmless — the token stays valid
// until it expires.
// PRE: tokenString came from a confirmation link
// POST: Subject account has EmailConfirmed=true; no other state changes
func ExecuteConfirmEmail(ctx context.Context, tokenString string, deps ConfirmEmailDeps) error {
	subject, err := deps.Tokens.Verify(token.KindConfirm, tokenString)
	if err != nil {
		slog.Info("auth_event", "event", "confirm_rejected", "reason", err.Error())
		return err
	}

	if err := deps.AccountStore.SetEmailConfirmed(ctx, subject); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Signature-valid token for an account that no longer exists.
			return token.ErrInvalid
		}
		return err
	}

	slog.Info("auth_event", "event", "email_confirmed", "account_id", subject)
	return nil
}
