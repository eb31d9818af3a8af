// Package repository persists article reports.
package repository

import (
	"context"

	"news-aggregator/backend/internal/report/domain"
)

// Repository is the report store. Get methods return (nil, nil) for missing rows.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Report, error)
	// GetOpenByUserAndArticle returns the user's open (new or reviewed) report
	// for the article, or nil.
	GetOpenByUserAndArticle(ctx context.Context, userID, articleID string) (*domain.Report, error)
	// List returns reports newest first, optionally filtered by status.
	List(ctx context.Context, status domain.Status) ([]*domain.Report, error)
	Create(ctx context.Context, rep *domain.Report) error
	// UpdateStatus sets the status and bumps updated_at.
	UpdateStatus(ctx context.Context, id string, status domain.Status) error
}
