// Package handler serves the /api/sources endpoints. Reads are public; writes
// are admin-only (enforced by the router's middleware).
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
	"news-aggregator/backend/internal/source/domain"
	"news-aggregator/backend/internal/source/repository"
)

// Handler serves source CRUD.
type Handler struct {
	repo   repository.Repository
	audit  audit.AuditLogger
	logger *zap.Logger
}

// New returns a source handler.
func New(repo repository.Repository, auditLogger audit.AuditLogger, logger *zap.Logger) *Handler {
	if auditLogger == nil {
		auditLogger = audit.Nop{}
	}
	return &Handler{repo: repo, audit: auditLogger, logger: logger}
}

type sourceRequest struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

func (req *sourceRequest) validate() map[string]string {
	fields := map[string]string{}
	if err := domain.ValidateName(strings.TrimSpace(req.Name)); err != nil {
		fields["name"] = err.Error()
	}
	if err := domain.ValidateURL(req.URL); err != nil {
		fields["url"] = err.Error()
	}
	return fields
}

// List handles GET /api/sources.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	sources, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("list sources failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}
	if sources == nil {
		sources = []*domain.Source{}
	}
	httpx.OK(w, http.StatusOK, map[string]any{"sources": sources})
}

// Get handles GET /api/sources/{id}, including the article count.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	source, err := h.repo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("get source failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}
	if source == nil {
		httpx.Error(w, http.StatusNotFound, httpx.CodeNotFound, "Source not found")
		return
	}
	count, err := h.repo.ArticlesCount(r.Context(), source.ID)
	if err != nil {
		h.logger.Error("count source articles failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}
	httpx.OK(w, http.StatusOK, sourceWithCount{Source: source, ArticlesCount: count})
}

// sourceWithCount is the GET /api/sources/{id} payload: the source fields plus
// how many articles reference it.
type sourceWithCount struct {
	*domain.Source
	ArticlesCount int `json:"articlesCount"`
}

// Create handles POST /api/sources.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req sourceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, "Invalid request body")
		return
	}
	if fields := req.validate(); len(fields) > 0 {
		httpx.ErrorFields(w, http.StatusBadRequest, httpx.CodeValidationFailed, "Validation failed", fields)
		return
	}

	now := time.Now().UTC()
	source := &domain.Source{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(req.Name),
		URL:         req.URL,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.repo.Create(r.Context(), source); err != nil {
		h.logger.Error("create source failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}

	h.audit.LogEvent(r.Context(), actorID(r), auditdomain.ActionCreate, "source", source.ID)
	httpx.OK(w, http.StatusCreated, source)
}

// Update handles PUT /api/sources/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	source, err := h.repo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("get source failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}
	if source == nil {
		httpx.Error(w, http.StatusNotFound, httpx.CodeNotFound, "Source not found")
		return
	}

	var req sourceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, "Invalid request body")
		return
	}
	if fields := req.validate(); len(fields) > 0 {
		httpx.ErrorFields(w, http.StatusBadRequest, httpx.CodeValidationFailed, "Validation failed", fields)
		return
	}

	source.Name = strings.TrimSpace(req.Name)
	source.URL = req.URL
	source.Description = req.Description
	source.UpdatedAt = time.Now().UTC()
	if err := h.repo.Update(r.Context(), source); err != nil {
		h.logger.Error("update source failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}

	h.audit.LogEvent(r.Context(), actorID(r), auditdomain.ActionUpdate, "source", source.ID)
	httpx.OK(w, http.StatusOK, source)
}

// Delete handles DELETE /api/sources/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	source, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("get source failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}
	if source == nil {
		httpx.Error(w, http.StatusNotFound, httpx.CodeNotFound, "Source not found")
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete source failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}

	h.audit.LogEvent(r.Context(), actorID(r), auditdomain.ActionDelete, "source", id)
	httpx.OK(w, http.StatusOK, map[string]any{"message": "Source deleted successfully"})
}

func actorID(r *http.Request) string {
	if ident, ok := middleware.IdentityFrom(r.Context()); ok {
		return ident.UserID
	}
	return ""
}
