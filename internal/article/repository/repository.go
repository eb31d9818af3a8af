// Package repository persists articles and serves the feed query.
package repository

import (
	"context"

	"news-aggregator/backend/internal/article/domain"
)

// Repository is the article store. GetByID returns (nil, nil) for missing rows.
type Repository interface {
	// Feed returns one page of articles with source, tags and counters embedded,
	// newest publication first, plus the total count matching the filter.
	Feed(ctx context.Context, filter domain.FeedFilter) ([]*domain.Article, int, error)
	GetByID(ctx context.Context, id string) (*domain.Article, error)
	// Exists reports whether an article row exists, without loading it.
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, a *domain.Article) error
	// SetTags replaces the article's tag set.
	SetTags(ctx context.Context, articleID string, tagIDs []string) error
}
