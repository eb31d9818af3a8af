// Package handler serves the /api/users endpoints. Listing, creation and
// deletion are admin-only; get and update allow self-access, with role changes
// reserved for admins.
package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"news-aggregator/backend/internal/audit"
	auditdomain "news-aggregator/backend/internal/audit/domain"
	"news-aggregator/backend/internal/security"
	"news-aggregator/backend/internal/server/httpx"
	"news-aggregator/backend/internal/server/middleware"
	"news-aggregator/backend/internal/user/domain"
	"news-aggregator/backend/internal/user/repository"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

// Handler serves user management.
type Handler struct {
	repo   repository.Repository
	hasher *security.Hasher
	audit  audit.AuditLogger
	logger *zap.Logger
}

// New returns a user handler.
func New(repo repository.Repository, hasher *security.Hasher, auditLogger audit.AuditLogger, logger *zap.Logger) *Handler {
	if auditLogger == nil {
		auditLogger = audit.Nop{}
	}
	return &Handler{repo: repo, hasher: hasher, audit: auditLogger, logger: logger}
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// List handles GET /api/users with pagination.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := parseBounded(q.Get("limit"), defaultLimit, maxLimit)
	if limit < 1 {
		limit = defaultLimit
	}
	offset := parseBounded(q.Get("offset"), 0, 1<<30)

	users, total, err := h.repo.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("list users failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	httpx.OK(w, http.StatusOK, map[string]any{
		"users": out,
		"pagination": map[string]int{
			"total":  total,
			"limit":  limit,
			"offset": offset,
		},
	})
}

// Get handles GET /api/users/{id}: self or admin.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "Authentication required")
		return
	}
	id := r.PathValue("id")
	if ident.UserID != id && ident.Role != domain.RoleAdmin {
		httpx.Error(w, http.StatusForbidden, httpx.CodeForbidden, "You do not have permission to perform this action")
		return
	}

	user, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("get user failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}
	if user == nil {
		httpx.Error(w, http.StatusNotFound, httpx.CodeNotFound, "User not found")
		return
	}
	httpx.OK(w, http.StatusOK, toUserResponse(user))
}

type createRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Create handles POST /api/users: admin creation with an explicit role.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, "Invalid request body")
		return
	}

	username := strings.TrimSpace(req.Username)
	fields := map[string]string{}
	if err := domain.ValidateUsername(username); err != nil {
		fields["username"] = err.Error()
	}
	if err := domain.ValidatePassword(req.Password); err != nil {
		fields["password"] = err.Error()
	}
	role := domain.RoleUser
	if req.Role != "" {
		parsed, err := domain.ParseRole(req.Role)
		if err != nil {
			fields["role"] = err.Error()
		} else {
			role = parsed
		}
	}
	if len(fields) > 0 {
		httpx.ErrorFields(w, http.StatusBadRequest, httpx.CodeValidationFailed, "Validation failed", fields)
		return
	}

	existing, err := h.repo.GetByUsername(r.Context(), username)
	if err != nil {
		h.logger.Error("get user by username failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}
	if existing != nil {
		httpx.ErrorFields(w, http.StatusBadRequest, httpx.CodeUserExists, "Username already taken",
			map[string]string{"username": "Username already taken"})
		return
	}

	hashed, err := h.hasher.Hash(req.Password)
	if err != nil {
		h.logger.Error("hash password failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hashed,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.repo.Create(r.Context(), user); err != nil {
		h.logger.Error("create user failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}

	h.audit.LogEvent(r.Context(), actorID(r), auditdomain.ActionCreate, "user", user.ID)
	httpx.OK(w, http.StatusCreated, toUserResponse(user))
}

type updateRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

// Update handles PUT /api/users/{id}: self or admin, partial update. Changing
// the role requires admin. A role change takes effect on the target's next
// login; outstanding tokens keep the role they were issued with.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "Authentication required")
		return
	}
	id := r.PathValue("id")
	isAdmin := ident.Role == domain.RoleAdmin
	if ident.UserID != id && !isAdmin {
		httpx.Error(w, http.StatusForbidden, httpx.CodeForbidden, "You do not have permission to perform this action")
		return
	}

	user, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("get user failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}
	if user == nil {
		httpx.Error(w, http.StatusNotFound, httpx.CodeNotFound, "User not found")
		return
	}

	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, "Invalid request body")
		return
	}
	if req.Role != nil && !isAdmin {
		httpx.Error(w, http.StatusForbidden, httpx.CodeForbidden, "Only admins can change roles")
		return
	}

	fields := map[string]string{}
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if err := domain.ValidateUsername(username); err != nil {
			fields["username"] = err.Error()
		} else if username != user.Username {
			other, err := h.repo.GetByUsername(r.Context(), username)
			if err != nil {
				h.logger.Error("get user by username failed", zap.Error(err))
				httpx.Internal(w, "Internal server error")
				return
			}
			if other != nil {
				httpx.ErrorFields(w, http.StatusBadRequest, httpx.CodeUserExists, "Username already taken",
					map[string]string{"username": "Username already taken"})
				return
			}
			user.Username = username
		}
	}
	if req.Password != nil {
		if err := domain.ValidatePassword(*req.Password); err != nil {
			fields["password"] = err.Error()
		} else {
			hashed, err := h.hasher.Hash(*req.Password)
			if err != nil {
				h.logger.Error("hash password failed", zap.Error(err))
				httpx.Internal(w, "Internal server error")
				return
			}
			user.PasswordHash = hashed
		}
	}
	if req.Role != nil {
		role, err := domain.ParseRole(*req.Role)
		if err != nil {
			fields["role"] = err.Error()
		} else {
			user.Role = role
		}
	}
	if len(fields) > 0 {
		httpx.ErrorFields(w, http.StatusBadRequest, httpx.CodeValidationFailed, "Validation failed", fields)
		return
	}

	user.UpdatedAt = time.Now().UTC()
	if err := h.repo.Update(r.Context(), user); err != nil {
		h.logger.Error("update user failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}

	h.audit.LogEvent(r.Context(), ident.UserID, auditdomain.ActionUpdate, "user", user.ID)
	httpx.OK(w, http.StatusOK, toUserResponse(user))
}

// Delete handles DELETE /api/users/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	user, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("get user failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}
	if user == nil {
		httpx.Error(w, http.StatusNotFound, httpx.CodeNotFound, "User not found")
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete user failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}

	h.audit.LogEvent(r.Context(), actorID(r), auditdomain.ActionDelete, "user", id)
	httpx.OK(w, http.StatusOK, map[string]any{"message": "User deleted successfully"})
}

func actorID(r *http.Request) string {
	if ident, ok := middleware.IdentityFrom(r.Context()); ok {
		return ident.UserID
	}
	return ""
}

func parseBounded(raw string, def, max int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
