package account

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	domain "gatekeeper/internal/domain/account"
)

const timeFormat = "2006-01-02T15:04:05.999999999Z07:00"

const accountColumns = "id, username, email, password_hash, email_confirmed, refresh_token, reset_token, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new account store.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Account by its ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	query := "SELECT " + accountColumns + " FROM account WHERE id = ?"
	return scanAccount(s.db.QueryRowContext(ctx, query, id).Scan)
}

// GetByEmail retrieves an Account by email.
// PRE: email is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	query := "SELECT " + accountColumns + " FROM account WHERE email = ?"
	return scanAccount(s.db.QueryRowContext(ctx, query, email).Scan)
}

// GetByRefreshToken retrieves the Account holding the given refresh token.
// PRE: token is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByRefreshToken(ctx context.Context, token string) (domain.Account, error) {
	if token == "" {
		// An empty comparator would match every logged-out account.
		return domain.Account{}, ErrNotFound
	}
	query := "SELECT " + accountColumns + " FROM account WHERE refresh_token = ?"
	return scanAccount(s.db.QueryRowContext(ctx, query, token).Scan)
}

// Create inserts a new Account.
// PRE: entity has been validated
// POST: Entity is persisted; ErrEmailExists if the email is taken
func (s *SQLiteStore) Create(ctx context.Context, a domain.Account) error {
	query := "INSERT INTO account (" + accountColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
	_, err := s.db.ExecContext(ctx, query,
		a.ID,
		a.Username,
		a.Email,
		a.PasswordHash,
		boolToInt(a.EmailConfirmed),
		a.RefreshToken,
		a.ResetToken,
		a.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// SetEmailConfirmed marks the account's email as confirmed.
// PRE: id is non-empty
// POST: email_confirmed is 1; repeat calls are no-ops
func (s *SQLiteStore) SetEmailConfirmed(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE account SET email_confirmed = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to confirm email: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateRefreshToken overwrites the stored refresh token for the account.
// PRE: id is non-empty
// POST: refresh_token holds token; any prior session is superseded
func (s *SQLiteStore) UpdateRefreshToken(ctx context.Context, id, token string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE account SET refresh_token = ? WHERE id = ?", token, id)
	if err != nil {
		return fmt.Errorf("failed to update refresh token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SwapRefreshToken rotates the stored refresh token with a single
// compare-and-swap update.
// PRE: id and old are non-empty
// POST: refresh_token holds new iff old was still the stored value
func (s *SQLiteStore) SwapRefreshToken(ctx context.Context, id, old, new string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE account SET refresh_token = ? WHERE id = ? AND refresh_token = ?",
		new, id, old,
	)
	if err != nil {
		return false, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ClearRefreshToken revokes the session holding token.
// PRE: token is non-empty
// POST: No account holds token; absent match is not an error
func (s *SQLiteStore) ClearRefreshToken(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		"UPDATE account SET refresh_token = '' WHERE refresh_token = ?", token)
	if err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return nil
}

// SetResetToken overwrites the stored reset token for the account.
// PRE: id is non-empty
// POST: reset_token holds token; any earlier reset token is invalid
func (s *SQLiteStore) SetResetToken(ctx context.Context, id, token string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE account SET reset_token = ? WHERE id = ?", token, id)
	if err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CompleteReset consumes the reset token and replaces the password hash in
// one conditional update.
// PRE: id, token and newHash are non-empty
// POST: On a match, reset_token is cleared and password_hash replaced;
// returns false when token was consumed or superseded
func (s *SQLiteStore) CompleteReset(ctx context.Context, id, token, newHash string) (bool, error) {
	if token == "" {
		return false, nil
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE account SET reset_token = '', password_hash = ? WHERE id = ? AND reset_token = ?",
		newHash, id, token,
	)
	if err != nil {
		return false, fmt.Errorf("failed to complete reset: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// scanAccount extracts an Account from a row scanner function.
func scanAccount(scan func(dest ...interface{}) error) (domain.Account, error) {
	var entity domain.Account
	var confirmed int
	var createdAt string
	err := scan(
		&entity.ID,
		&entity.Username,
		&entity.Email,
		&entity.PasswordHash,
		&confirmed,
		&entity.RefreshToken,
		&entity.ResetToken,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return domain.Account{}, ErrNotFound
	}
	if err != nil {
		return domain.Account{}, err
	}
	entity.EmailConfirmed = confirmed != 0
	entity.CreatedAt, _ = parseTime(createdAt)
	return entity, nil
}

func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		t, err := time.Parse(f, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time: %s", s)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
