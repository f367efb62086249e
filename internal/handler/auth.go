package handler

import (
	"log/slog"
	"net/http"

	authmw "github.com/jharjadi/jdgen/internal/middleware"
	"github.com/jharjadi/jdgen/internal/model"
	"github.com/jharjadi/jdgen/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authSvc *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authSvc *service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Token handles POST /v1/auth/token.
// Exchanges the API key in the x-api-key header for a signed JWT.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get(authmw.APIKeyHeader)
	if key == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "x-api-key header is required")
		return
	}

	k, err := h.authSvc.AuthenticateKey(key)
	if err != nil {
		// Don't reveal which part of the key was wrong.
		slog.Debug("token exchange failed", "error", err)
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid API key")
		return
	}

	token, exp, err := h.authSvc.SignToken(k.Name, k.Role)
	if err != nil {
		slog.Error("token: failed to sign", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "authentication failed")
		return
	}

	slog.Info("token issued",
		"event", "token_issued",
		"subject", k.Name,
		"role", k.Role,
	)
	writeJSON(w, http.StatusOK, model.TokenResponse{
		Token:     token,
		Role:      k.Role,
		ExpiresAt: exp,
	})
}
