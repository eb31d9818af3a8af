package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"news-aggregator/backend/internal/audit/domain"
	auditrepo "news-aggregator/backend/internal/audit/repository"
	"news-aggregator/backend/internal/telemetry/producer"
)

// IPExtractor returns the client IP from the request context.
type IPExtractor func(context.Context) string

// AuditLogger writes a single audit event with explicit action/resource. Used by the
// auth and resource handlers. LogEvent is best-effort: failures are logged and do not
// affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, userID, action, resource, metadata string)
}

// Logger implements AuditLogger using the audit repository, an optional IP
// extractor, and an optional event producer for fan-out (e.g. Kafka).
type Logger struct {
	repo        auditrepo.Repository
	producer    producer.Producer
	ipExtractor IPExtractor
}

// NewLogger returns an AuditLogger that persists to repo and uses ipExtractor for
// the client IP. ipExtractor may be nil; then IP is recorded as "unknown".
// prod may be nil; then no events are fanned out.
func NewLogger(repo auditrepo.Repository, prod producer.Producer, ipExtractor IPExtractor) *Logger {
	return &Logger{repo: repo, producer: prod, ipExtractor: ipExtractor}
}

// LogEvent writes one audit log entry and emits it to the producer if configured.
// Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, userID, action, resource, metadata string) {
	if l == nil || l.repo == nil {
		return
	}
	ip := "unknown"
	if l.ipExtractor != nil {
		if got := l.ipExtractor(ctx); got != "" {
			ip = got
		}
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		IP:        ip,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to log event %s/%s: %v", action, resource, err)
	}
	if l.producer != nil {
		if err := l.producer.Emit(ctx, entry); err != nil {
			log.Printf("audit: failed to emit event %s/%s: %v", action, resource, err)
		}
	}
}

// Nop is an AuditLogger that discards everything. Used in tests and when the
// audit repository is not wired.
type Nop struct{}

func (Nop) LogEvent(context.Context, string, string, string, string) {}
