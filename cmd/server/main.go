package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	articlehandler "news-aggregator/backend/internal/article/handler"
	articlerepo "news-aggregator/backend/internal/article/repository"
	"news-aggregator/backend/internal/audit"
	auditrepo "news-aggregator/backend/internal/audit/repository"
	authhandler "news-aggregator/backend/internal/auth/handler"
	authservice "news-aggregator/backend/internal/auth/service"
	"news-aggregator/backend/internal/config"
	"news-aggregator/backend/internal/db"
	favoritehandler "news-aggregator/backend/internal/favorite/handler"
	favoriterepo "news-aggregator/backend/internal/favorite/repository"
	healthhandler "news-aggregator/backend/internal/health/handler"
	"news-aggregator/backend/internal/policy/engine"
	reporthandler "news-aggregator/backend/internal/report/handler"
	reportrepo "news-aggregator/backend/internal/report/repository"
	"news-aggregator/backend/internal/security"
	"news-aggregator/backend/internal/server"
	"news-aggregator/backend/internal/server/metrics"
	"news-aggregator/backend/internal/server/middleware"
	sourcehandler "news-aggregator/backend/internal/source/handler"
	sourcerepo "news-aggregator/backend/internal/source/repository"
	taghandler "news-aggregator/backend/internal/tag/handler"
	tagrepo "news-aggregator/backend/internal/tag/repository"
	"news-aggregator/backend/internal/telemetry/otel"
	"news-aggregator/backend/internal/telemetry/producer"
	userhandler "news-aggregator/backend/internal/user/handler"
	userrepo "news-aggregator/backend/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer database.Close()

	privateKey, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		logger.Fatal("jwt private key", zap.Error(err))
	}
	publicKey, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		logger.Fatal("jwt public key", zap.Error(err))
	}
	tokens := security.NewTokenProvider(privateKey, publicKey,
		cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL())
	hasher := security.NewHasher(cfg.BcryptCost)

	providers, err := otel.Setup(context.Background(), cfg.OTLPEndpoint, "news-aggregator", cfg.OTLPInsecure)
	if err != nil {
		logger.Fatal("otel", zap.Error(err))
	}

	var prod producer.Producer
	if brokers := cfg.AuditKafkaBrokersList(); len(brokers) > 0 {
		kp, err := producer.NewKafkaProducer(brokers, cfg.AuditKafkaTopic)
		if err != nil {
			logger.Fatal("kafka producer", zap.Error(err))
		}
		if kp != nil {
			defer kp.Close()
			prod = kp
		}
	}
	auditLogger := audit.NewLogger(auditrepo.NewPostgresRepository(database), prod, middleware.ClientIPFrom)

	policySource, err := loadModerationPolicy(cfg.ModerationPolicy)
	if err != nil {
		logger.Fatal("moderation policy", zap.Error(err))
	}
	policy, err := engine.NewOPAEvaluator(policySource)
	if err != nil {
		logger.Fatal("moderation policy", zap.Error(err))
	}

	users := userrepo.NewPostgresRepository(database)
	sources := sourcerepo.NewPostgresRepository(database)
	tags := tagrepo.NewPostgresRepository(database)
	articles := articlerepo.NewPostgresRepository(database)
	favorites := favoriterepo.NewPostgresRepository(database, articles)
	reports := reportrepo.NewPostgresRepository(database)

	auth := authservice.NewAuthService(users, hasher, tokens)

	router := server.NewRouter(server.Deps{
		Logger:       logger,
		Auth:         auth,
		AuthHandler:  authhandler.New(auth, auditLogger, logger, cfg.IsProduction()),
		Users:        userhandler.New(users, hasher, auditLogger, logger),
		Sources:      sourcehandler.New(sources, auditLogger, logger),
		Tags:         taghandler.New(tags, auditLogger, logger),
		Articles:     articlehandler.New(articles, logger),
		Favorites:    favoritehandler.New(favorites, articles, auditLogger, logger),
		Reports:      reporthandler.New(reports, articles, policy, auditLogger, logger),
		Health:       healthhandler.New(database),
		Metrics:      metrics.NewCollector(),
		ClientOrigin: cfg.ClientOrigin,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	if err := providers.Shutdown(ctx); err != nil {
		logger.Error("otel shutdown", zap.Error(err))
	}
	logger.Info("http server stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// loadModerationPolicy treats the configured value as a file path when one
// exists, otherwise as inline Rego source. Empty means the built-in default.
func loadModerationPolicy(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if _, err := os.Stat(value); err == nil {
		data, err := os.ReadFile(value)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return value, nil
}
