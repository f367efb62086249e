// Package middleware provides HTTP middleware for the jdgen API.
package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jharjadi/jdgen/internal/service"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const (
	// ContextKeySubject is the context key for the authenticated key name.
	ContextKeySubject contextKey = "subject"
	// ContextKeyRole is the context key for the authenticated role.
	ContextKeyRole contextKey = "role"
)

// APIKeyHeader carries a raw API key.
const APIKeyHeader = "x-api-key"

// DevSubject is the subject assigned to every request when auth is disabled.
const DevSubject = "dev"

// SubjectFromContext extracts the authenticated subject from the request
// context. Returns empty string if not present.
func SubjectFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ContextKeySubject).(string)
	return v
}

// RoleFromContext extracts the role from the request context.
func RoleFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ContextKeyRole).(string)
	return v
}

// WithIdentity returns ctx carrying subject and role, as AuthMiddleware
// would set them.
func WithIdentity(ctx context.Context, subject, role string) context.Context {
	ctx = context.WithValue(ctx, ContextKeySubject, subject)
	return context.WithValue(ctx, ContextKeyRole, role)
}

// AuthMiddleware authenticates requests and injects subject and role into
// the request context.
//
// When authEnabled=true a request must carry either an x-api-key header
// matching a configured bcrypt hash, or Authorization: Bearer <jwt> issued
// by POST /v1/auth/token.
//
// When authEnabled=false (dev mode) every request runs as subject "dev"
// with role admin.
func AuthMiddleware(authSvc *service.AuthService, authEnabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !authEnabled {
				next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), DevSubject, service.RoleAdmin)))
				return
			}

			if key := r.Header.Get(APIKeyHeader); key != "" {
				k, err := authSvc.AuthenticateKey(key)
				if err != nil {
					slog.Warn("api key rejected", "remote_addr", r.RemoteAddr)
					writeAuthError(w, http.StatusUnauthorized, "invalid API key")
					return
				}
				next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), k.Name, k.Role)))
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAuthError(w, http.StatusUnauthorized, "missing x-api-key or Authorization header")
				return
			}
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeAuthError(w, http.StatusUnauthorized, "invalid Authorization header format (expected: Bearer <token>)")
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenStr == "" {
				writeAuthError(w, http.StatusUnauthorized, "empty bearer token")
				return
			}

			claims, err := authSvc.VerifyToken(tokenStr)
			if err != nil {
				slog.Debug("JWT verification failed", "error", err)
				writeAuthError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), claims.Subject, claims.Role)))
		})
	}
}

// RequireRole returns middleware that checks the caller has one of the
// allowed roles. Must be used after AuthMiddleware.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			if !allowed[role] {
				writeAuthError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeAuthError mirrors handler.writeError without importing it.
func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_")),
		"message": message,
	})
}
