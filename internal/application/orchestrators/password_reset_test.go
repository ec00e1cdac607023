package orchestrators_test

import (
	"context"
	"errors"
	"testing"

	"gatekeeper/internal/application/orchestrators"
	"gatekeeper/internal/application/token"
	"gatekeeper/internal/application/validate"
)

// TestExecuteRequestPasswordReset_UnknownEmail tests that an unknown email
// reports success and issues nothing — no account-existence leak.
func TestExecuteRequestPasswordReset_UnknownEmail(t *testing.T) {
	store := newMockAccountStore()
	notifier := &fakeNotifier{}
	deps := orchestrators.RequestPasswordResetDeps{
		AccountStore: store,
		Tokens:       testTokens(t),
		Notifier:     notifier,
	}

	if err := orchestrators.ExecuteRequestPasswordReset(context.Background(), "nobody@x.com", deps); err != nil {
		t.Fatalf("err = %v, want nil for unknown email", err)
	}
	if notifier.resetSends != 0 {
		t.Error("no email should be dispatched for an unknown address")
	}
}

// TestExecuteRequestPasswordReset_Supersedes tests the single-active-token
// policy: a second request invalidates the first token even though its
// signature is still good.
func TestExecuteRequestPasswordReset_Supersedes(t *testing.T) {
	store := newMockAccountStore()
	hasher := testHasher(t)
	tokens := testTokens(t)
	notifier := &fakeNotifier{}
	seedAccount(t, store, hasher, "1", "a@x.com", "longpass1", true)

	reqDeps := orchestrators.RequestPasswordResetDeps{AccountStore: store, Tokens: tokens, Notifier: notifier}
	if err := orchestrators.ExecuteRequestPasswordReset(context.Background(), "a@x.com", reqDeps); err != nil {
		t.Fatalf("first request: %v", err)
	}
	first := notifier.resetToken
	if err := orchestrators.ExecuteRequestPasswordReset(context.Background(), "a@x.com", reqDeps); err != nil {
		t.Fatalf("second request: %v", err)
	}
	second := notifier.resetToken

	if notifier.resetSends != 2 || first == second {
		t.Fatalf("expected two distinct dispatched tokens, sends=%d", notifier.resetSends)
	}

	verifyDeps := orchestrators.VerifyResetTokenDeps{AccountStore: store, Tokens: tokens}
	if err := orchestrators.ExecuteVerifyResetToken(context.Background(), first, verifyDeps); !errors.Is(err, orchestrators.ErrResetSuperseded) {
		t.Errorf("first token err = %v, want ErrResetSuperseded", err)
	}
	if err := orchestrators.ExecuteVerifyResetToken(context.Background(), second, verifyDeps); err != nil {
		t.Errorf("second token err = %v, want nil", err)
	}
}

// TestExecuteVerifyResetToken_ReadOnly tests that verification does not
// consume the token.
func TestExecuteVerifyResetToken_ReadOnly(t *testing.T) {
	store := newMockAccountStore()
	hasher := testHasher(t)
	tokens := testTokens(t)
	notifier := &fakeNotifier{}
	seedAccount(t, store, hasher, "1", "a@x.com", "longpass1", true)

	reqDeps := orchestrators.RequestPasswordResetDeps{AccountStore: store, Tokens: tokens, Notifier: notifier}
	if err := orchestrators.ExecuteRequestPasswordReset(context.Background(), "a@x.com", reqDeps); err != nil {
		t.Fatalf("request: %v", err)
	}

	verifyDeps := orchestrators.VerifyResetTokenDeps{AccountStore: store, Tokens: tokens}
	for i := 0; i < 2; i++ {
		if err := orchestrators.ExecuteVerifyResetToken(context.Background(), notifier.resetToken, verifyDeps); err != nil {
			t.Fatalf("verify #%d: %v", i+1, err)
		}
	}
	if store.accounts["1"].ResetToken != notifier.resetToken {
		t.Error("verification must not clear the stored reset token")
	}
}

// TestExecuteVerifyResetToken_BadTokens tests classification of garbage and
// cross-kind tokens.
func TestExecuteVerifyResetToken_BadTokens(t *testing.T) {
	store := newMockAccountStore()
	tokens := testTokens(t)
	deps := orchestrators.VerifyResetTokenDeps{AccountStore: store, Tokens: tokens}

	if err := orchestrators.ExecuteVerifyResetToken(context.Background(), "garbage", deps); !errors.Is(err, token.ErrInvalid) {
		t.Errorf("garbage err = %v, want ErrInvalid", err)
	}

	accessTok, err := tokens.Issue(token.KindAccess, "1", token.AccessTTL)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if err := orchestrators.ExecuteVerifyResetToken(context.Background(), accessTok, deps); !errors.Is(err, token.ErrInvalid) {
		t.Errorf("cross-kind err = %v, want ErrInvalid", err)
	}
}

// TestExecuteCompletePasswordReset tests the full consume path: password
// replaced, token cleared, re-submission rejected.
func TestExecuteCompletePasswordReset(t *testing.T) {
	store := newMockAccountStore()
	hasher := testHasher(t)
	tokens := testTokens(t)
	notifier := &fakeNotifier{}
	seedAccount(t, store, hasher, "1", "a@x.com", "oldpass12", true)

	reqDeps := orchestrators.RequestPasswordResetDeps{AccountStore: store, Tokens: tokens, Notifier: notifier}
	if err := orchestrators.ExecuteRequestPasswordReset(context.Background(), "a@x.com", reqDeps); err != nil {
		t.Fatalf("request: %v", err)
	}

	deps := orchestrators.CompletePasswordResetDeps{AccountStore: store, Tokens: tokens, Hasher: hasher}
	if err := orchestrators.ExecuteCompletePasswordReset(context.Background(), notifier.resetToken, "newpass12", deps); err != nil {
		t.Fatalf("complete: %v", err)
	}

	acct := store.accounts["1"]
	if acct.ResetToken != "" {
		t.Error("reset token should be cleared after use")
	}
	if hasher.Verify(acct.PasswordHash, "oldpass12") {
		t.Error("old password should no longer verify")
	}
	if !hasher.Verify(acct.PasswordHash, "newpass12") {
		t.Error("new password should verify")
	}

	// Single use: the same token cannot reset again.
	if err := orchestrators.ExecuteCompletePasswordReset(context.Background(), notifier.resetToken, "thirdpass1", deps); !errors.Is(err, orchestrators.ErrResetSuperseded) {
		t.Errorf("re-submission err = %v, want ErrResetSuperseded", err)
	}
	if !hasher.Verify(store.accounts["1"].PasswordHash, "newpass12") {
		t.Error("re-submission must not change the password")
	}
}

// TestExecuteCompletePasswordReset_ShortPassword tests that the replacement
// password is shape-checked before any state changes.
func TestExecuteCompletePasswordReset_ShortPassword(t *testing.T) {
	store := newMockAccountStore()
	hasher := testHasher(t)
	tokens := testTokens(t)
	notifier := &fakeNotifier{}
	seedAccount(t, store, hasher, "1", "a@x.com", "oldpass12", true)

	reqDeps := orchestrators.RequestPasswordResetDeps{AccountStore: store, Tokens: tokens, Notifier: notifier}
	if err := orchestrators.ExecuteRequestPasswordReset(context.Background(), "a@x.com", reqDeps); err != nil {
		t.Fatalf("request: %v", err)
	}

	deps := orchestrators.CompletePasswordResetDeps{AccountStore: store, Tokens: tokens, Hasher: hasher}
	err := orchestrators.ExecuteCompletePasswordReset(context.Background(), notifier.resetToken, "short", deps)
	var vErr validate.Error
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want a validate.Error", err)
	}
	if store.accounts["1"].ResetToken == "" {
		t.Error("a rejected completion must not consume the token")
	}
	if !hasher.Verify(store.accounts["1"].PasswordHash, "oldpass12") {
		t.Error("a rejected completion must not change the password")
	}
}
