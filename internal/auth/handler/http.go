// Package handler exposes the auth endpoints: register, login, refresh and
// logout. The refresh token travels only in an HttpOnly cookie scoped to the
// refresh path; the access token travels in the response body.
package handler

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"news-aggregator/backend/internal/audit"
	auditdomain "news-aggregator/backend/internal/audit/domain"
	"news-aggregator/backend/internal/auth/service"
	"news-aggregator/backend/internal/server/httpx"
	userdomain "news-aggregator/backend/internal/user/domain"
)

const (
	refreshCookieName = "refresh_token"
	refreshCookiePath = "/api/auth/refresh"
)

// Handler serves the /api/auth endpoints.
type Handler struct {
	auth         *service.AuthService
	audit        audit.AuditLogger
	logger       *zap.Logger
	secureCookie bool
}

// New returns an auth handler. secureCookie should be true in production so the
// refresh cookie is marked Secure.
func New(auth *service.AuthService, auditLogger audit.AuditLogger, logger *zap.Logger, secureCookie bool) *Handler {
	if auditLogger == nil {
		auditLogger = audit.Nop{}
	}
	return &Handler{
		auth:         auth,
		audit:        auditLogger,
		logger:       logger,
		secureCookie: secureCookie,
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u *userdomain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

// Register handles POST /api/auth/register. New accounts always get the "user"
// role; privileged roles are assigned through the admin user endpoints.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, "Invalid request body")
		return
	}

	fields := map[string]string{}
	if err := userdomain.ValidateUsername(req.Username); err != nil {
		fields["username"] = err.Error()
	}
	if err := userdomain.ValidatePassword(req.Password); err != nil {
		fields["password"] = err.Error()
	}
	if len(fields) > 0 {
		httpx.ErrorFields(w, http.StatusBadRequest, httpx.CodeValidationFailed, "Validation failed", fields)
		return
	}

	user, err := h.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			httpx.ErrorFields(w, http.StatusBadRequest, httpx.CodeUserExists, "Username already taken",
				map[string]string{"username": "Username already taken"})
			return
		}
		h.logger.Error("register failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}

	h.audit.LogEvent(r.Context(), user.ID, auditdomain.ActionRegister, "user", "")
	httpx.OK(w, http.StatusCreated, toUserResponse(user))
}

// Login handles POST /api/auth/login. Unknown usernames and wrong passwords are
// indistinguishable in the response.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, "Invalid request body")
		return
	}

	res, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.audit.LogEvent(r.Context(), "", auditdomain.ActionLoginFailure, "user", req.Username)
			httpx.Error(w, http.StatusUnauthorized, httpx.CodeInvalidCredentials, "Invalid username or password")
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}

	h.setRefreshCookie(w, res.RefreshToken)
	h.audit.LogEvent(r.Context(), res.User.ID, auditdomain.ActionLogin, "user", "")
	httpx.OK(w, http.StatusOK, map[string]any{
		"accessToken": res.AccessToken,
		"user":        toUserResponse(res.User),
	})
}

// Refresh handles POST /api/auth/refresh. The refresh token arrives in the
// cookie; on success the pair rotates and the cookie is re-set. An invalid or
// stale token clears the cookie so the client stops retrying.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		httpx.Error(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "Refresh token missing")
		return
	}

	res, err := h.auth.Refresh(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			h.clearRefreshCookie(w)
			httpx.Error(w, http.StatusUnauthorized, httpx.CodeInvalidToken, "Invalid or expired refresh token")
			return
		}
		h.logger.Error("refresh failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}

	h.setRefreshCookie(w, res.RefreshToken)
	h.audit.LogEvent(r.Context(), res.User.ID, auditdomain.ActionRefresh, "user", "")
	httpx.OK(w, http.StatusOK, map[string]any{"accessToken": res.AccessToken})
}

// Logout handles POST /api/auth/logout. Best-effort: the counter bump happens
// only when a valid refresh cookie is presented, but the response is 200 either
// way and the cookie is always cleared.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var token string
	if cookie, err := r.Cookie(refreshCookieName); err == nil {
		token = cookie.Value
	}

	userID, err := h.auth.Logout(r.Context(), token)
	if err != nil {
		h.logger.Error("logout failed", zap.Error(err))
	}
	if userID != "" {
		h.audit.LogEvent(r.Context(), userID, auditdomain.ActionLogout, "user", "")
	}

	h.clearRefreshCookie(w)
	httpx.OK(w, http.StatusOK, map[string]any{"message": "Logged out"})
}

func (h *Handler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     refreshCookiePath,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.auth.RefreshTTL() / time.Second),
	})
}

// clearRefreshCookie must mirror the attributes of setRefreshCookie or the
// browser keeps the old cookie around.
func (h *Handler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
