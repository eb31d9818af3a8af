// Package server assembles the HTTP routing table and the middleware chain.
package server

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	articlehandler "news-aggregator/backend/internal/article/handler"
	authhandler "news-aggregator/backend/internal/auth/handler"
	authservice "news-aggregator/backend/internal/auth/service"
	favoritehandler "news-aggregator/backend/internal/favorite/handler"
	healthhandler "news-aggregator/backend/internal/health/handler"
	reporthandler "news-aggregator/backend/internal/report/handler"
	"news-aggregator/backend/internal/server/metrics"
	"news-aggregator/backend/internal/server/middleware"
	sourcehandler "news-aggregator/backend/internal/source/handler"
	taghandler "news-aggregator/backend/internal/tag/handler"
	userdomain "news-aggregator/backend/internal/user/domain"
	userhandler "news-aggregator/backend/internal/user/handler"
)

const maxBodyBytes = 1 << 20

// Deps carries everything the router needs.
type Deps struct {
	Logger       *zap.Logger
	Auth         *authservice.AuthService
	AuthHandler  *authhandler.Handler
	Users        *userhandler.Handler
	Sources      *sourcehandler.Handler
	Tags         *taghandler.Handler
	Articles     *articlehandler.Handler
	Favorites    *favoritehandler.Handler
	Reports      *reporthandler.Handler
	Health       *healthhandler.Handler
	Metrics      *metrics.Collector
	ClientOrigin string
}

// NewRouter builds the full routing table with per-route guards and the shared
// middleware chain.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	authn := middleware.Authenticate(d.Auth)
	adminOnly := middleware.Authorize(userdomain.RoleAdmin)
	triage := middleware.Authorize(userdomain.RoleAdmin, userdomain.RoleModerator)

	route := func(pattern string, h http.HandlerFunc, mws ...middleware.Middleware) {
		mux.Handle(pattern, d.Metrics.Instrument(pattern, middleware.Chain(h, mws...)))
	}

	route("GET /{$}", d.Health.Root)
	route("GET /health", d.Health.Health)
	mux.Handle("GET /metrics", d.Metrics.Handler())

	route("POST /api/auth/register", d.AuthHandler.Register)
	route("POST /api/auth/login", d.AuthHandler.Login)
	route("POST /api/auth/refresh", d.AuthHandler.Refresh)
	route("POST /api/auth/logout", d.AuthHandler.Logout)

	route("GET /api/feed", d.Articles.Feed)
	route("GET /api/feed/{id}", d.Articles.Get)

	route("GET /api/sources", d.Sources.List)
	route("GET /api/sources/{id}", d.Sources.Get)
	route("POST /api/sources", d.Sources.Create, authn, adminOnly)
	route("PUT /api/sources/{id}", d.Sources.Update, authn, adminOnly)
	route("DELETE /api/sources/{id}", d.Sources.Delete, authn, adminOnly)

	route("GET /api/tags", d.Tags.List)
	route("GET /api/tags/{id}", d.Tags.Get)
	route("POST /api/tags", d.Tags.Create, authn, adminOnly)
	route("PUT /api/tags/{id}", d.Tags.Update, authn, adminOnly)
	route("DELETE /api/tags/{id}", d.Tags.Delete, authn, adminOnly)

	route("GET /api/users", d.Users.List, authn, adminOnly)
	route("GET /api/users/{id}", d.Users.Get, authn)
	route("POST /api/users", d.Users.Create, authn, adminOnly)
	route("PUT /api/users/{id}", d.Users.Update, authn)
	route("DELETE /api/users/{id}", d.Users.Delete, authn, adminOnly)

	route("GET /api/favorites", d.Favorites.List, authn)
	route("POST /api/favorites", d.Favorites.Create, authn)
	route("DELETE /api/favorites/{id}", d.Favorites.Delete, authn)

	route("GET /api/reports", d.Reports.List, authn, triage)
	route("GET /api/reports/{id}", d.Reports.Get, authn, triage)
	route("POST /api/reports", d.Reports.Create, authn)
	route("PUT /api/reports/{id}", d.Reports.UpdateStatus, authn, triage)

	handler := middleware.Chain(mux,
		middleware.Recover(d.Logger),
		middleware.ClientIP(),
		middleware.Logging(d.Logger),
		middleware.CORS(d.ClientOrigin),
		middleware.BodyLimit(maxBodyBytes),
	)
	return otelhttp.NewHandler(handler, "http.server")
}
