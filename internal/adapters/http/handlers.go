package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"gatekeeper/internal/adapters/http/middleware"
	storage "gatekeeper/internal/adapters/storage/account"
	"gatekeeper/internal/application/orchestrators"
	"gatekeeper/internal/application/token"
	"gatekeeper/internal/application/validate"
	"gatekeeper/internal/domain/password"

	"github.com/google/uuid"
)

// RefreshTokenHeader carries the long-lived refresh token on /token and
// /logout requests and on login/refresh responses.
const RefreshTokenHeader = "refresh-token"

// API holds the handler dependencies. One instance per server; tests build
// their own with doubles.
type API struct {
	Accounts   storage.Store
	Hasher     *password.Hasher
	Tokens     *token.Service
	Notifier   orchestrators.Notifier
	GenerateID func() string
	Now        func() time.Time
}

// NewAPI fills in default ID and clock functions.
func NewAPI(accounts storage.Store, hasher *password.Hasher, tokens *token.Service, notifier orchestrators.Notifier) *API {
	return &API{
		Accounts:   accounts,
		Hasher:     hasher,
		Tokens:     tokens,
		Notifier:   notifier,
		GenerateID: func() string { return uuid.New().String() },
		Now:        time.Now,
	}
}

// internalError logs the real error and returns a generic message to the
// client. This prevents leaking internal details.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeError maps a business-rule failure to its status code. Anything not
// classified is an unexpected fault.
func writeError(w http.ResponseWriter, err error) {
	var vErr validate.Error
	switch {
	case errors.As(err, &vErr),
		errors.Is(err, orchestrators.ErrEmailTaken),
		errors.Is(err, orchestrators.ErrInvalidCredentials),
		errors.Is(err, orchestrators.ErrEmailNotConfirmed),
		errors.Is(err, orchestrators.ErrResetSuperseded),
		errors.Is(err, token.ErrExpired),
		errors.Is(err, token.ErrInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, orchestrators.ErrSessionUnknown):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, orchestrators.ErrSessionRevoked):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		internalError(w, err)
	}
}

// handleRegister handles POST /api/user/register
func (api *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := strictDecode(r, &body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	input := orchestrators.RegisterInput{
		Username: body.Username,
		Email:    body.Email,
		Password: body.Password,
	}
	deps := orchestrators.RegisterDeps{
		AccountStore: api.Accounts,
		Hasher:       api.Hasher,
		Tokens:       api.Tokens,
		Notifier:     api.Notifier,
		GenerateID:   api.GenerateID,
		Now:          api.Now,
	}

	if _, err := orchestrators.ExecuteRegister(r.Context(), input, deps); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleConfirmEmail handles GET /api/user/confirm/{token}
func (api *API) handleConfirmEmail(w http.ResponseWriter, r *http.Request) {
	deps := orchestrators.ConfirmEmailDeps{
		AccountStore: api.Accounts,
		Tokens:       api.Tokens,
	}
	if err := orchestrators.ExecuteConfirmEmail(r.Context(), r.PathValue("token"), deps); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleLogin handles POST /api/user/login. The token pair travels in the
// auth-token and refresh-token response headers, not the body.
func (api *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := strictDecode(r, &body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	deps := orchestrators.LoginDeps{
		AccountStore: api.Accounts,
		Hasher:       api.Hasher,
		Tokens:       api.Tokens,
	}
	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    body.Email,
		Password: body.Password,
	}, deps)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set(middleware.AccessTokenHeader, result.AccessToken)
	w.Header().Set(RefreshTokenHeader, result.RefreshToken)
	w.WriteHeader(http.StatusOK)
}

// handleRefresh handles POST /api/user/token — exchanges the refresh-token
// header for a rotated pair.
func (api *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	deps := orchestrators.RefreshDeps{
		AccountStore: api.Accounts,
		Tokens:       api.Tokens,
	}
	result, err := orchestrators.ExecuteRefresh(r.Context(), r.Header.Get(RefreshTokenHeader), deps)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set(middleware.AccessTokenHeader, result.AccessToken)
	w.Header().Set(RefreshTokenHeader, result.RefreshToken)
	w.WriteHeader(http.StatusOK)
}

// handleLogout handles DELETE /api/user/logout
func (api *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	deps := orchestrators.LogoutDeps{AccountStore: api.Accounts}
	if err := orchestrators.ExecuteLogout(r.Context(), r.Header.Get(RefreshTokenHeader), deps); err != nil {
		internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleForgot handles POST /api/user/forgot — always reports success so the
// response never reveals whether an email is registered.
func (api *API) handleForgot(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := strictDecode(r, &body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	deps := orchestrators.RequestPasswordResetDeps{
		AccountStore: api.Accounts,
		Tokens:       api.Tokens,
		Notifier:     api.Notifier,
	}
	if err := orchestrators.ExecuteRequestPasswordReset(r.Context(), body.Email, deps); err != nil {
		internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleVerifyReset handles GET /api/user/forgot/verify/{token}
func (api *API) handleVerifyReset(w http.ResponseWriter, r *http.Request) {
	deps := orchestrators.VerifyResetTokenDeps{
		AccountStore: api.Accounts,
		Tokens:       api.Tokens,
	}
	if err := orchestrators.ExecuteVerifyResetToken(r.Context(), r.PathValue("token"), deps); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleCompleteReset handles POST /api/user/forgot/{token}
func (api *API) handleCompleteReset(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := strictDecode(r, &body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	deps := orchestrators.CompletePasswordResetDeps{
		AccountStore: api.Accounts,
		Tokens:       api.Tokens,
		Hasher:       api.Hasher,
	}
	if err := orchestrators.ExecuteCompletePasswordReset(r.Context(), r.PathValue("token"), body.Password, deps); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleMe handles GET /api/user/me — the access-token-guarded profile.
func (api *API) handleMe(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.GetSubjectFromContext(r.Context())
	if !ok {
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
		return
	}

	acct, err := api.Accounts.GetByID(r.Context(), subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}
		internalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":              acct.ID,
		"username":        acct.Username,
		"email":           acct.Email,
		"email_confirmed": acct.EmailConfirmed,
		"created_at":      acct.CreatedAt,
	})
}
