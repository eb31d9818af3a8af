// Package handler serves the public feed endpoints.
package handler

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"news-aggregator/backend/internal/article/domain"
	"news-aggregator/backend/internal/article/repository"
	"news-aggregator/backend/internal/server/httpx"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

// Handler serves the article feed.
type Handler struct {
	repo   repository.Repository
	logger *zap.Logger
}

// New returns a feed handler.
func New(repo repository.Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// Feed handles GET /api/feed with tagId/sourceId filters and pagination.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.FeedFilter{
		TagID:    q.Get("tagId"),
		SourceID: q.Get("sourceId"),
		Limit:    parseBounded(q.Get("limit"), defaultLimit, maxLimit),
		Offset:   parseBounded(q.Get("offset"), 0, 1<<30),
	}
	if filter.Limit < 1 {
		filter.Limit = defaultLimit
	}

	articles, total, err := h.repo.Feed(r.Context(), filter)
	if err != nil {
		h.logger.Error("feed query failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}
	if articles == nil {
		articles = []*domain.Article{}
	}
	httpx.OK(w, http.StatusOK, map[string]any{
		"articles": articles,
		"pagination": map[string]int{
			"total":  total,
			"limit":  filter.Limit,
			"offset": filter.Offset,
		},
	})
}

// Get handles GET /api/feed/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	article, err := h.repo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("get article failed", zap.Error(err))
		httpx.Internal(w, "Internal server error")
		return
	}
	if article == nil {
		httpx.Error(w, http.StatusNotFound, httpx.CodeNotFound, "Article not found")
		return
	}
	httpx.OK(w, http.StatusOK, article)
}

// parseBounded parses a query value, falling back to def and capping at max.
// Negative and malformed values fall back to def.
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
