// Package handler serves the /api/tags endpoints. Reads are public; writes are
// admin-only (enforced by the router's middleware).
package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"news-aggregator/backend/internal/audit"
	auditdomain "news-aggregator/backend/internal/audit/domain"
	"news-aggregator/backend/internal/server/httpx"
	"news-aggregator/backend/internal/server/middleware"
	"news-aggregator/backend/internal/tag/domain"
	"news-aggregator/backend/internal/tag/repository"
)

// Handler serves tag CRUD.
type Handler struct {
	repo   repository.Repository
	audit  audit.AuditLogger
	logger *zap.Logger
}

// New returns a tag handler.
func New(repo repository.Repository, auditLogger audit.AuditLogger, logger *zap.Logger) *Handler {
	if auditLogger == nil {
		auditLogger = audit.Nop{}
	}
	return &Handler{repo: repo, audit: auditLogger, logger: logger}
}

type tagRequest struct {
	Name string `json:"name"`
}

// List handles GET /api/tags.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("list tags failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}
	if tags == nil {
		tags = []*domain.Tag{}
	}
	httpx.OK(w, http.StatusOK, map[string]any{"tags": tags})
}

// Get handles GET /api/tags/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	tag, err := h.repo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("get tag failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}
	if tag == nil {
		httpx.Error(w, http.StatusNotFound, httpx.CodeNotFound, "Tag not found")
		return
	}
	httpx.OK(w, http.StatusOK, tag)
}

// Create handles POST /api/tags. Duplicate names are a validation failure.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, "Invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if err := domain.ValidateName(name); err != nil {
		httpx.ErrorFields(w, http.StatusBadRequest, httpx.CodeValidationFailed, "Validation failed",
			map[string]string{"name": err.Error()})
		return
	}
	existing, err := h.repo.GetByName(r.Context(), name)
	if err != nil {
		h.logger.Error("get tag by name failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}
	if existing != nil {
		httpx.ErrorFields(w, http.StatusBadRequest, httpx.CodeValidationFailed, "Validation failed",
			map[string]string{"name": "Tag already exists"})
		return
	}

	tag := &domain.Tag{ID: uuid.New().String(), Name: name, CreatedAt: time.Now().UTC()}
	if err := h.repo.Create(r.Context(), tag); err != nil {
		h.logger.Error("create tag failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}

	h.audit.LogEvent(r.Context(), actorID(r), auditdomain.ActionCreate, "tag", tag.ID)
	httpx.OK(w, http.StatusCreated, tag)
}

// Update handles PUT /api/tags/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	tag, err := h.repo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("get tag failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}
	if tag == nil {
		httpx.Error(w, http.StatusNotFound, httpx.CodeNotFound, "Tag not found")
		return
	}

	var req tagRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, "Invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if err := domain.ValidateName(name); err != nil {
		httpx.ErrorFields(w, http.StatusBadRequest, httpx.CodeValidationFailed, "Validation failed",
			map[string]string{"name": err.Error()})
		return
	}

	tag.Name = name
	if err := h.repo.Update(r.Context(), tag); err != nil {
		h.logger.Error("update tag failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}

	h.audit.LogEvent(r.Context(), actorID(r), auditdomain.ActionUpdate, "tag", tag.ID)
	httpx.OK(w, http.StatusOK, tag)
}

// Delete handles DELETE /api/tags/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	tag, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("get tag failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}
	if tag == nil {
		httpx.Error(w, http.StatusNotFound, httpx.CodeNotFound, "Tag not found")
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete tag failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}

	h.audit.LogEvent(r.Context(), actorID(r), auditdomain.ActionDelete, "tag", id)
	httpx.OK(w, http.StatusOK, map[string]any{"message": "Tag deleted successfully"})
}

func actorID(r *http.Request) string {
	if ident, ok := middleware.IdentityFrom(r.Context()); ok {
		return ident.UserID
	}
	return ""
}
