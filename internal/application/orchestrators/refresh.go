package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"gatekeeper/internal/application/token"
	"gatekeeper/internal/domain/account"
)

// AccountStoreForRefresh defines the store interface needed by Refresh.
type AccountStoreForRefresh interface {
	GetByRefreshToken(ctx context.Context, tok string) (account.Account, error)
	SwapRefreshToken(ctx context.Context, id, old, new string) (bool, error)
	ClearRefreshToken(ctx context.Context, tok string) error
}

// RefreshResult carries the rotated token pair.
type RefreshResult struct {
	AccountID    string
	AccessToken  string
	RefreshToken string
}

// RefreshDeps holds dependencies for Refresh.
type RefreshDeps struct {
	AccountStore AccountStoreForRefresh
	Tokens       *token.Service
}

var (
	// ErrSessionUnknown: no account holds the presented refresh token.
	ErrSessionUnknown = errors.New("no session matches the refresh token")
	// ErrSessionRevoked: the token matched a session but failed
	// verification; the session has been force-logged-out.
	ErrSessionRevoked = errors.New("refresh token is no longer valid")
)

// ExecuteRefresh exchanges a refresh token for a new access token and a new
// 7-day refresh token. Rotation, not reuse: the swap is a conditional update
// keyed on the presented value, so the old token is invalid the moment the
// new one exists, and two racing refreshes cannot both succeed.
// PRE: presented is the refresh token from the client
// POST: On success the stored refresh token is the returned one; on a failed
// verification the stored token is cleared (forced logout)
func ExecuteRefresh(ctx context.Context, presented string, deps RefreshDeps) (RefreshResult, error) {
	if presented == "" {
		return RefreshResult{}, ErrSessionUnknown
	}

	acct, err := deps.AccountStore.GetByRefreshToken(ctx, presented)
	if err != nil {
		slog.Info("auth_event", "event", "refresh_rejected", "reason", "no_match")
		return RefreshResult{}, ErrSessionUnknown
	}

	if _, verr := deps.Tokens.Verify(token.KindRefresh, presented); verr != nil {
		// Expired or tampered while still stored: revoke the session.
		if cerr := deps.AccountStore.ClearRefreshToken(ctx, presented); cerr != nil {
			return RefreshResult{}, cerr
		}
		slog.Info("auth_event", "event", "refresh_revoked", "account_id", acct.ID, "reason", verr.Error())
		return RefreshResult{}, ErrSessionRevoked
	}

	accessToken, err := deps.Tokens.Issue(token.KindAccess, acct.ID, token.AccessTTL)
	if err != nil {
		return RefreshResult{}, err
	}
	refreshToken, err := deps.Tokens.Issue(token.KindRefresh, acct.ID, token.RefreshRotateTTL)
	if err != nil {
		return RefreshResult{}, err
	}

	swapped, err := deps.AccountStore.SwapRefreshToken(ctx, acct.ID, presented, refreshToken)
	if err != nil {
		return RefreshResult{}, err
	}
	if !swapped {
		// A concurrent refresh rotated first; the presented token is stale.
		slog.Info("auth_event", "event", "refresh_rejected", "account_id", acct.ID, "reason", "lost_rotation_race")
		return RefreshResult{}, ErrSessionUnknown
	}

	slog.Info("auth_event", "event", "refresh_rotated", "account_id", acct.ID)
	return RefreshResult{
		AccountID:    acct.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
