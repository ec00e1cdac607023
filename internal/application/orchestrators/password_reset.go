package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"gatekeeper/internal/application/token"
	"gatekeeper/internal/application/validate"
	"gatekeeper/internal/domain/account"
	"gatekeeper/internal/domain/password"

	storage "gatekeeper/internal/adapters/storage/account"
)

// AccountStoreForResetRequest defines the store interface needed by
// RequestPasswordReset.
type AccountStoreForResetRequest interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	SetResetToken(ctx context.Context, id, tok string) error
}

// AccountStoreForResetVerify defines the store interface needed by
// VerifyResetToken.
type AccountStoreForResetVerify interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
}

// AccountStoreForResetComplete defines the store interface needed by
// CompletePasswordReset.
type AccountStoreForResetComplete interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	CompleteReset(ctx context.Context, id, tok, newHash string) (bool, error)
}

// RequestPasswordResetDeps holds dependencies for RequestPasswordReset.
type RequestPasswordResetDeps struct {
	AccountStore AccountStoreForResetRequest
	Tokens       *token.Service
	Notifier     Notifier
}

// VerifyResetTokenDeps holds dependencies for VerifyResetToken.
type VerifyResetTokenDeps struct {
	AccountStore AccountStoreForResetVerify
	Tokens       *token.Service
}

// CompletePasswordResetDeps holds dependencies for CompletePasswordReset.
type CompletePasswordResetDeps struct {
	AccountStore AccountStoreForResetComplete
	Tokens       *token.Service
	Hasher       *password.Hasher
}

// ErrResetSuperseded: the token's signature checks out but it is not the
// most recently issued reset token for the account — consumed already or
// replaced by a newer request.
var ErrResetSuperseded = errors.New("reset link is no longer valid")

// ExecuteRequestPasswordReset issues a 15-minute reset token and emails it.
// An unknown email reports success with no token issued, so the response
// never reveals whether an address is registered.
// POST: For a known email, the stored reset token is the newly issued one,
// invalidating any earlier token
func ExecuteRequestPasswordReset(ctx context.Context, email string, deps RequestPasswordResetDeps) error {
	acct, err := deps.AccountStore.GetByEmail(ctx, email)
	if err != nil {
		slog.Info("auth_event", "event", "reset_requested", "email", email, "known", false)
		return nil
	}

	resetToken, err := deps.Tokens.Issue(token.KindReset, acct.ID, token.ResetTTL)
	if err != nil {
		return err
	}
	if err := deps.AccountStore.SetResetToken(ctx, acct.ID, resetToken); err != nil {
		return err
	}
	deps.Notifier.SendPasswordReset(acct.Email, resetToken)

	slog.Info("auth_event", "event", "reset_requested", "account_id", acct.ID, "known", true)
	return nil
}

// ExecuteVerifyResetToken checks that a reset token is signature-valid,
// unexpired AND still the stored value for its subject. Read-only: the token
// is not consumed.
// POST: No state changes
func ExecuteVerifyResetToken(ctx context.Context, tokenString string, deps VerifyResetTokenDeps) error {
	subject, err := deps.Tokens.Verify(token.KindReset, tokenString)
	if err != nil {
		slog.Info("auth_event", "event", "reset_verify_rejected", "reason", err.Error())
		return err
	}

	acct, err := deps.AccountStore.GetByID(ctx, subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return token.ErrInvalid
		}
		return err
	}
	if acct.ResetToken != tokenString {
		slog.Info("auth_event", "event", "reset_verify_rejected", "account_id", acct.ID, "reason", "superseded")
		return ErrResetSuperseded
	}
	return nil
}

// ExecuteCompletePasswordReset consumes a reset token and replaces the
// account's password. The clear-and-replace is a single conditional update
// keyed on the stored token, so a consumed or superseded token cannot change
// anything.
// PRE: newPassword meets the password rules
// POST: On success the reset token is cleared and the password hash replaced;
// on mismatch no state changes
func ExecuteCompletePasswordReset(ctx context.Context, tokenString, newPassword string, deps CompletePasswordResetDeps) error {
	if err := validate.NewPassword(newPassword); err != nil {
		return err
	}

	subject, err := deps.Tokens.Verify(token.KindReset, tokenString)
	if err != nil {
		slog.Info("auth_event", "event", "reset_rejected", "reason", err.Error())
		return err
	}

	acct, err := deps.AccountStore.GetByID(ctx, subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return token.ErrInvalid
		}
		return err
	}
	if acct.ResetToken != tokenString {
		slog.Info("auth_event", "event", "reset_rejected", "account_id", acct.ID, "reason", "superseded")
		return ErrResetSuperseded
	}

	hash, err := deps.Hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	done, err := deps.AccountStore.CompleteReset(ctx, acct.ID, tokenString, hash)
	if err != nil {
		return err
	}
	if !done {
		// The stored token changed between the read and the update.
		slog.Info("auth_event", "event", "reset_rejected", "account_id", acct.ID, "reason", "superseded")
		return ErrResetSuperseded
	}

	slog.Info("auth_event", "event", "password_reset", "account_id", acct.ID)
	return nil
}
