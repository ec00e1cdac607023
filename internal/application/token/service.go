package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind identifies one of the four token kinds. Each kind signs with its own
// secret, so a token presented to the wrong verifier fails as invalid rather
// than leaking across kinds.
type Kind string

// Token kinds
const (
	KindConfirm Kind = "confirm"
	KindReset   Kind = "reset"
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Lifetimes by kind. Refresh tokens start at 30 days when issued at login
// and shorten to 7 days on every rotation — sessions stay long only while
// continuously active.
const (
	ConfirmTTL       = 24 * time.Hour
	ResetTTL         = 15 * time.Minute
	AccessTTL        = 10 * time.Minute
	RefreshLoginTTL  = 30 * 24 * time.Hour
	RefreshRotateTTL = 7 * 24 * time.Hour
)

// Verification errors. Callers react differently to the two: an expired
// refresh token triggers revocation, an invalid one is a bare rejection.
var (
	ErrExpired = errors.New("token has expired")
	ErrInvalid = errors.New("token is invalid")
)

// Config holds the signing secret for each token kind. All four must be set
// and distinct secrets are expected; the service never signs or verifies a
// kind with another kind's secret.
type Config struct {
	ConfirmSecret []byte
	ResetSecret   []byte
	AccessSecret  []byte
	RefreshSecret []byte
}

// Service issues and verifies signed, time-bounded assertions of
// {subject, kind, iat, exp}. Secrets are injected configuration, not
// process-wide globals, so tests can run in parallel with independent
// instances.
type Service struct {
	secrets map[Kind][]byte
}

type claims struct {
	jwt.RegisteredClaims
	Kind Kind `json:"kind"`
}

// NewService creates a Service from the given per-kind secrets.
// PRE: every secret in cfg is non-empty
// POST: Returns a ready-to-use service
func NewService(cfg Config) (*Service, error) {
	secrets := map[Kind][]byte{
		KindConfirm: cfg.ConfirmSecret,
		KindReset:   cfg.ResetSecret,
		KindAccess:  cfg.AccessSecret,
		KindRefresh: cfg.RefreshSecret,
	}
	for kind, secret := range secrets {
		if len(secret) == 0 {
			return nil, fmt.Errorf("missing signing secret for %s tokens", kind)
		}
	}
	return &Service{secrets: secrets}, nil
}

// Issue signs a token of the given kind for subject, expiring after ttl.
// PRE: subject is non-empty, ttl > 0
// POST: Returns a signed compact JWT string
func (s *Service) Issue(kind Kind, subject string, ttl time.Duration) (string, error) {
	secret, ok := s.secrets[kind]
	if !ok {
		return "", fmt.Errorf("unknown token kind %q", kind)
	}

	// The jti makes every issued token unique even within the same second,
	// so rotation always produces a distinct stored value.
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Kind: kind,
	})

	signed, err := t.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", kind, err)
	}
	return signed, nil
}

// Verify checks tokenString against the secret and expiry for kind and
// returns the subject it asserts. Expiry and invalidity are signalled as
// ErrExpired and ErrInvalid respectively, never as a fault.
// INVARIANT: Service fields are not mutated
func (s *Service) Verify(kind Kind, tokenString string) (string, error) {
	secret, ok := s.secrets[kind]
	if !ok {
		return "", fmt.Errorf("unknown token kind %q", kind)
	}

	var c claims
	parsed, err := jwt.ParseWithClaims(tokenString, &c,
		func(t *jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpired
		}
		return "", ErrInvalid
	}
	if !parsed.Valid || c.Kind != kind || c.Subject == "" {
		return "", ErrInvalid
	}
	return c.Subject, nil
}
