// Package handler serves the /api/reports endpoints. Creating a report takes
// any authenticated user; listing and triage are for admins and moderators,
// with transitions gated by the moderation policy.
package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	articlerepo "news-aggregator/backend/internal/article/repository"
	"news-aggregator/backend/internal/audit"
	auditdomain "news-aggregator/backend/internal/audit/domain"
	"news-aggregator/backend/internal/policy/engine"
	"news-aggregator/backend/internal/report/domain"
	"news-aggregator/backend/internal/report/repository"
	"news-aggregator/backend/internal/server/httpx"
	"news-aggregator/backend/internal/server/middleware"
)

// Handler serves report endpoints.
type Handler struct {
	repo     repository.Repository
	articles articlerepo.Repository
	policy   engine.Evaluator
	audit    audit.AuditLogger
	logger   *zap.Logger
}

// New returns a report handler.
func New(repo repository.Repository, articles articlerepo.Repository, policy engine.Evaluator, auditLogger audit.AuditLogger, logger *zap.Logger) *Handler {
	if auditLogger == nil {
		auditLogger = audit.Nop{}
	}
	return &Handler{repo: repo, articles: articles, policy: policy, audit: auditLogger, logger: logger}
}

// List handles GET /api/reports with an optional status filter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var status domain.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := domain.ParseStatus(raw)
		if err != nil {
			httpx.ErrorFields(w, http.StatusBadRequest, httpx.CodeValidationFailed, "Validation failed",
				map[string]string{"status": err.Error()})
			return
		}
		status = parsed
	}

	reports, err := h.repo.List(r.Context(), status)
	if err != nil {
		h.logger.Error("list reports failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}
	if reports == nil {
		reports = []*domain.Report{}
	}
	httpx.OK(w, http.StatusOK, map[string]any{"reports": reports})
}

// Get handles GET /api/reports/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.repo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("get report failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}
	if report == nil {
		httpx.Error(w, http.StatusNotFound, httpx.CodeNotFound, "Report not found")
		return
	}
	httpx.OK(w, http.StatusOK, report)
}

type createRequest struct {
	ArticleID string `json:"articleId"`
	Reason    string `json:"reason"`
}

// Create handles POST /api/reports. Unknown articles yield 404; a second open
// report for the same article yields 400 already_reported. Closed reports do
// not block a new one.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "Authentication required")
		return
	}

	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, "Invalid request body")
		return
	}
	fields := map[string]string{}
	if _, err := uuid.Parse(req.ArticleID); err != nil {
		fields["articleId"] = "articleId must be a valid UUID"
	}
	if err := domain.ValidateReason(req.Reason); err != nil {
		fields["reason"] = err.Error()
	}
	if len(fields) > 0 {
		httpx.ErrorFields(w, http.StatusBadRequest, httpx.CodeValidationFailed, "Validation failed", fields)
		return
	}

	exists, err := h.articles.Exists(r.Context(), req.ArticleID)
	if err != nil {
		h.logger.Error("article lookup failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}
	if !exists {
		httpx.Error(w, http.StatusNotFound, httpx.CodeNotFound, "Article not found")
		return
	}

	open, err := h.repo.GetOpenByUserAndArticle(r.Context(), ident.UserID, req.ArticleID)
	if err != nil {
		h.logger.Error("report lookup failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}
	if open != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeAlreadyReported, "You already have an open report for this article")
		return
	}

	now := time.Now().UTC()
	report := &domain.Report{
		ID:        uuid.New().String(),
		UserID:    ident.UserID,
		ArticleID: req.ArticleID,
		Reason:    req.Reason,
		Status:    domain.StatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.repo.Create(r.Context(), report); err != nil {
		h.logger.Error("create report failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}

	h.audit.LogEvent(r.Context(), ident.UserID, auditdomain.ActionCreate, "report", report.ID)
	httpx.OK(w, http.StatusCreated, report)
}

type updateRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PUT /api/reports/{id}. The moderation policy decides
// whether the caller's role may perform the transition.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "Authentication required")
		return
	}

	report, err := h.repo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("get report failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}
	if report == nil {
		httpx.Error(w, http.StatusNotFound, httpx.CodeNotFound, "Report not found")
		return
	}

	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidationFailed, "Invalid request body")
		return
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		httpx.ErrorFields(w, http.StatusBadRequest, httpx.CodeValidationFailed, "Validation failed",
			map[string]string{"status": err.Error()})
		return
	}

	allowed, err := h.policy.AllowTransition(r.Context(), string(ident.Role), string(report.Status), string(status))
	if err != nil {
		h.logger.Error("moderation policy evaluation failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}
	if !allowed {
		httpx.Error(w, http.StatusForbidden, httpx.CodeForbidden, "You do not have permission to perform this action")
		return
	}

	if err := h.repo.UpdateStatus(r.Context(), report.ID, status); err != nil {
		h.logger.Error("update report status failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}
	report.Status = status
	report.UpdatedAt = time.Now().UTC()

	h.audit.LogEvent(r.Context(), ident.UserID, auditdomain.ActionStatusChange, "report", report.ID)
	httpx.OK(w, http.StatusOK, report)
}
