package token_test

import (
	"errors"
	"testing"
	"time"

	"gatekeeper/internal/application/token"
)

func testService(t *testing.T) *token.Service {
	t.Helper()
	svc, err := token.NewService(token.Config{
		ConfirmSecret: []byte("confirm-secret-for-tests"),
		ResetSecret:   []byte("reset-secret-for-tests"),
		AccessSecret:  []byte("access-secret-for-tests"),
		RefreshSecret: []byte("refresh-secret-for-tests"),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

// TestService_IssueVerify tests the issue/verify round trip for every kind.
func TestService_IssueVerify(t *testing.T) {
	svc := testService(t)

	kinds := []token.Kind{token.KindConfirm, token.KindReset, token.KindAccess, token.KindRefresh}
	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			tok, err := svc.Issue(kind, "account-1", time.Minute)
			if err != nil {
				t.Fatalf("Issue: %v", err)
			}
			subject, err := svc.Verify(kind, tok)
			if err != nil {
				t.Fatalf("Verify: %v", err)
			}
			if subject != "account-1" {
				t.Errorf("subject = %q, want account-1", subject)
			}
		})
	}
}

// TestService_Expired tests that an expired token is classified distinctly
// from an invalid one.
func TestService_Expired(t *testing.T) {
	svc := testService(t)

	tok, err := svc.Issue(token.KindAccess, "account-1", -time.Second)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	_, err = svc.Verify(token.KindAccess, tok)
	if !errors.Is(err, token.ErrExpired) {
		t.Errorf("err = %v, want ErrExpired", err)
	}
}

// TestService_CrossKind tests that a token presented to the wrong verifier
// fails as invalid, never as a subject leak.
func TestService_CrossKind(t *testing.T) {
	svc := testService(t)

	confirmTok, err := svc.Issue(token.KindConfirm, "account-1", time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	for _, wrong := range []token.Kind{token.KindReset, token.KindAccess, token.KindRefresh} {
		if _, err := svc.Verify(wrong, confirmTok); !errors.Is(err, token.ErrInvalid) {
			t.Errorf("Verify(%s, confirm token) err = %v, want ErrInvalid", wrong, err)
		}
	}
}

// TestService_Garbage tests malformed and tampered token strings.
func TestService_Garbage(t *testing.T) {
	svc := testService(t)

	tests := []struct {
		name string
		tok  string
	}{
		{"empty", ""},
		{"not a jwt", "nope"},
		{"truncated", "eyJhbGciOiJIUzI1NiJ9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Verify(token.KindAccess, tt.tok); !errors.Is(err, token.ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

// TestService_TamperedSignature tests that flipping the payload invalidates
// the signature.
func TestService_TamperedSignature(t *testing.T) {
	svc := testService(t)

	tok, err := svc.Issue(token.KindRefresh, "account-1", time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	tampered := tok[:len(tok)-4] + "AAAA"
	if _, err := svc.Verify(token.KindRefresh, tampered); !errors.Is(err, token.ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

// TestNewService_RequiresAllSecrets tests that a missing secret is rejected
// at construction.
func TestNewService_RequiresAllSecrets(t *testing.T) {
	_, err := token.NewService(token.Config{
		ConfirmSecret: []byte("a"),
		ResetSecret:   []byte("b"),
		AccessSecret:  []byte("c"),
	})
	if err == nil {
		t.Error("expected error for missing refresh secret")
	}
}
