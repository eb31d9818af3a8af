// Package handler serves the /api/favorites endpoints. Every route requires an
// authenticated caller; favorites belong to the caller only.
package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	articlerepo "news-aggregator/backend/internal/article/repository"
	"news-aggregator/backend/internal/audit"
	auditdomain "news-aggregator/backend/internal/audit/domain"
	"news-aggregator/backend/internal/favorite/domain"
	"news-aggregator/backend/internal/favorite/repository"
	"news-aggregator/backend/internal/server/httpx"
	"news-aggregator/backend/internal/server/middleware"
)

// Handler serves favorite endpoints.
type Handler struct {
	repo     repository.Repository
	articles articlerepo.Repository
	audit    audit.AuditLogger
	logger   *zap.Logger
}

// New returns a favorite handler.
func New(repo repository.Repository, articles articlerepo.Repository, auditLogger audit.AuditLogger, logger *zap.Logger) *Handler {
	if auditLogger == nil {
		auditLogger = audit.Nop{}
	}
	return &Handler{repo: repo, articles: articles, audit: auditLogger, logger: logger}
}

// List handles GET /api/favorites: the caller's own favorites with articles.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "Authentication required")
		return
	}

	favorites, err := h.repo.ListByUser(r.Context(), ident.UserID)
	if err != nil {
		h.logger.Error("list favorites failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}
	if favorites == nil {
		favorites = []*domain.Favorite{}
	}
	httpx.OK(w, http.StatusOK, map[string]any{"favorites": favorites})
}

type createRequest struct {
	ArticleID string `json:"articleId"`
}

// Create handles POST /api/favorites. Unknown articles yield 404; favoriting
// the same article twice yields 400 already_favorited.
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
	if _, err := uuid.Parse(req.ArticleID); err != nil {
		httpx.ErrorFields(w, http.StatusBadRequest, httpx.CodeValidationFailed, "Validation failed",
			map[string]string{"articleId": "articleId must be a valid UUID"})
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

	existing, err := h.repo.GetByUserAndArticle(r.Context(), ident.UserID, req.ArticleID)
	if err != nil {
		h.logger.Error("favorite lookup failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}
	if existing != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeAlreadyFavorited, "Article already favorited")
		return
	}

	favorite := &domain.Favorite{
		ID:        uuid.New().String(),
		UserID:    ident.UserID,
		ArticleID: req.ArticleID,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.repo.Create(r.Context(), favorite); err != nil {
		h.logger.Error("create favorite failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}

	h.audit.LogEvent(r.Context(), ident.UserID, auditdomain.ActionCreate, "favorite", favorite.ID)
	httpx.OK(w, http.StatusCreated, favorite)
}

// Delete handles DELETE /api/favorites/{id}. Only the owner may remove it.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "Authentication required")
		return
	}

	id := r.PathValue("id")
	favorite, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("get favorite failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}
	if favorite == nil {
		httpx.Error(w, http.StatusNotFound, httpx.CodeNotFound, "Favorite not found")
		return
	}
	if favorite.UserID != ident.UserID {
		httpx.Error(w, http.StatusForbidden, httpx.CodeForbidden, "You do not have permission to perform this action")
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete favorite failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}

	h.audit.LogEvent(r.Context(), ident.UserID, auditdomain.ActionDelete, "favorite", id)
	httpx.OK(w, http.StatusOK, map[string]any{"message": "Favorite deleted successfully"})
}
