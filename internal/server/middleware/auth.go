package middleware

import (
	"net/http"
	"strings"

	"news-aggregator/backend/internal/auth/service"
	"news-aggregator/backend/internal/server/httpx"
	userdomain "news-aggregator/backend/internal/user/domain"
)

const bearerPrefix = "bearer "

// Authenticate returns middleware that extracts the Bearer access token from the
// Authorization header, verifies it (signature, expiry, revocation counter), and
// attaches the decoded identity to the request context. A missing or malformed
// header yields 401 unauthorized; a failed verification yields 401 invalid_token.
func Authenticate(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r)
			if token == "" {
				httpx.Error(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "Authentication required")
				return
			}
			ident, err := auth.VerifyAccess(r.Context(), token)
			if err != nil {
				httpx.Error(w, http.StatusUnauthorized, httpx.CodeInvalidToken, "Invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), ident)))
		})
	}
}

// Authorize returns middleware that enforces role membership. It must run after
// Authenticate: a request without an identity yields 401, an identity whose role
// is outside the allowed set yields 403. Nothing is mutated on the way through.
func Authorize(roles ...userdomain.Role) func(http.Handler) http.Handler {
	allowed := make(map[userdomain.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, ok := IdentityFrom(r.Context())
			if !ok {
				httpx.Error(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "Authentication required")
				return
			}
			if !allowed[ident.Role] {
				httpx.Error(w, http.StatusForbidden, httpx.CodeForbidden, "You do not have permission to perform this action")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractBearer returns the Bearer token from the Authorization header, or "" if
// missing or malformed.
func extractBearer(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
