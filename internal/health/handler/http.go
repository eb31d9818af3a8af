// Package handler serves liveness endpoints.
package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"news-aggregator/backend/internal/server/httpx"
)

// Handler serves the service banner and health check.
type Handler struct {
	db *sql.DB
}

// New returns a health handler that pings db on each check.
func New(db *sql.DB) *Handler {
	return &Handler{db: db}
}

// Root handles GET /: a plain service banner.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	httpx.OK(w, http.StatusOK, map[string]string{"service": "news-aggregator"})
}

// Health handles GET /health. The database must answer a ping within two
// seconds or the service reports unavailable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		httpx.Error(w, http.StatusServiceUnavailable, httpx.CodeInternalServerError, "Database unavailable")
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
