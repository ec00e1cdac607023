package orchestrators_test

import (
	"context"
	"testing"
	"time"

	storage "gatekeeper/internal/adapters/storage/account"
	"gatekeeper/internal/application/token"
	domain "gatekeeper/internal/domain/account"
	"gatekeeper/internal/domain/password"
)

// --- Mock store ---

type mockAccountStore struct {
	accounts map[string]domain.Account
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{accounts: make(map[string]domain.Account)}
}

// GetByID implements the mock AccountStore for testing.
// PRE: valid parameters
// POST: returns expected result
func (m *mockAccountStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	if a, ok := m.accounts[id]; ok {
		return a, nil
	}
	return domain.Account{}, storage.ErrNotFound
}

// GetByEmail implements the mock AccountStore for testing.
// PRE: valid parameters
// POST: returns expected result
func (m *mockAccountStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return domain.Account{}, storage.ErrNotFound
}

// GetByRefreshToken implements the mock AccountStore for testing.
// PRE: valid parameters
// POST: returns expected result
func (m *mockAccountStore) GetByRefreshToken(ctx context.Context, tok string) (domain.Account, error) {
	if tok == "" {
		return domain.Account{}, storage.ErrNotFound
	}
	for _, a := range m.accounts {
		if a.RefreshToken == tok {
			return a, nil
		}
	}
	return domain.Account{}, storage.ErrNotFound
}

// Create implements the mock AccountStore for testing.
// PRE: valid parameters
// POST: account stored unless the email is taken
func (m *mockAccountStore) Create(ctx context.Context, a domain.Account) error {
	for _, existing := range m.accounts {
		if existing.Email == a.Email {
			return storage.ErrEmailExists
		}
	}
	m.accounts[a.ID] = a
	return nil
}

// SetEmailConfirmed implements the mock AccountStore for testing.
// PRE: valid parameters
// POST: account marked confirmed
func (m *mockAccountStore) SetEmailConfirmed(ctx context.Context, id string) error {
	a, ok := m.accounts[id]
	if !ok {
		return storage.ErrNotFound
	}
	a.EmailConfirmed = true
	m.accounts[id] = a
	return nil
}

// UpdateRefreshToken implements the mock AccountStore for testing.
// PRE: valid parameters
// POST: refresh token overwritten
func (m *mockAccountStore) UpdateRefreshToken(ctx context.Context, id, tok string) error {
	a, ok := m.accounts[id]
	if !ok {
		return storage.ErrNotFound
	}
	a.RefreshToken = tok
	m.accounts[id] = a
	return nil
}

// SwapRefreshToken implements the mock AccountStore for testing.
// PRE: valid parameters
// POST: CAS semantics — swap only if old still matches
func (m *mockAccountStore) SwapRefreshToken(ctx context.Context, id, old, new string) (bool, error) {
	a, ok := m.accounts[id]
	if !ok || a.RefreshToken != old {
		return false, nil
	}
	a.RefreshToken = new
	m.accounts[id] = a
	return true, nil
}

// ClearRefreshToken implements the mock AccountStore for testing.
// PRE: valid parameters
// POST: no account holds tok
func (m *mockAccountStore) ClearRefreshToken(ctx context.Context, tok string) error {
	for id, a := range m.accounts {
		if a.RefreshToken == tok {
			a.RefreshToken = ""
			m.accounts[id] = a
		}
	}
	return nil
}

// SetResetToken implements the mock AccountStore for testing.
// PRE: valid parameters
// POST: reset token overwritten
func (m *mockAccountStore) SetResetToken(ctx context.Context, id, tok string) error {
	a, ok := m.accounts[id]
	if !ok {
		return storage.ErrNotFound
	}
	a.ResetToken = tok
	m.accounts[id] = a
	return nil
}

// CompleteReset implements the mock AccountStore for testing.
// PRE: valid parameters
// POST: CAS semantics — clear token and set hash only if tok still matches
func (m *mockAccountStore) CompleteReset(ctx context.Context, id, tok, newHash string) (bool, error) {
	a, ok := m.accounts[id]
	if !ok || tok == "" || a.ResetToken != tok {
		return false, nil
	}
	a.ResetToken = ""
	a.PasswordHash = newHash
	m.accounts[id] = a
	return true, nil
}

// --- Fake notifier ---

type fakeNotifier struct {
	confirmTo    string
	confirmToken string
	confirmSends int
	resetTo      string
	resetToken   string
	resetSends   int
}

func (f *fakeNotifier) SendConfirmation(to, tok string) {
	f.confirmTo = to
	f.confirmToken = tok
	f.confirmSends++
}

func (f *fakeNotifier) SendPasswordReset(to, tok string) {
	f.resetTo = to
	f.resetToken = tok
	f.resetSends++
}

// --- Shared fixtures ---

func testHasher(t *testing.T) *password.Hasher {
	t.Helper()
	h, err := password.NewHasher(password.Config{
		Memory:      1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	return h
}

func testTokens(t *testing.T) *token.Service {
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

// seedAccount stores a ready-made account and returns it.
func seedAccount(t *testing.T, store *mockAccountStore, hasher *password.Hasher, id, email, plaintext string, confirmed bool) domain.Account {
	t.Helper()
	hash, err := hasher.Hash(plaintext)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	a := domain.Account{
		ID:             id,
		Username:       "user" + id,
		Email:          email,
		PasswordHash:   hash,
		EmailConfirmed: confirmed,
		CreatedAt:      time.Now(),
	}
	store.accounts[id] = a
	return a
}
