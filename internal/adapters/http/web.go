package web

import (
	"net/http"

	"gatekeeper/internal/adapters/http/middleware"
)

// NewMux wires the HTTP routes and middleware for the API.
func NewMux(api *API) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/user/register", api.handleRegister)
	mux.HandleFunc("GET /api/user/confirm/{token}", api.handleConfirmEmail)
	mux.HandleFunc("POST /api/user/login", api.handleLogin)
	mux.HandleFunc("POST /api/user/token", api.handleRefresh)
	mux.HandleFunc("DELETE /api/user/logout", api.handleLogout)
	mux.HandleFunc("POST /api/user/forgot", api.handleForgot)
	mux.HandleFunc("GET /api/user/forgot/verify/{token}", api.handleVerifyReset)
	mux.HandleFunc("POST /api/user/forgot/{token}", api.handleCompleteReset)

	guard := middleware.RequireAccess(api.Tokens)
	mux.Handle("GET /api/user/me", guard(http.HandlerFunc(api.handleMe)))

	// Apply middleware: CORS -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.CORS,
		middleware.SecurityHeaders,
	)
}
