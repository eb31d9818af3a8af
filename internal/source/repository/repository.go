// Package repository persists news sources.
package repository

import (
	"context"

	"news-aggregator/backend/internal/source/domain"
)

// Repository is the source store. Get methods return (nil, nil) for missing rows.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Source, error)
	// ArticlesCount returns the number of articles attached to the source.
	ArticlesCount(ctx context.Context, id string) (int, error)
	List(ctx context.Context) ([]*domain.Source, error)
	Create(ctx context.Context, s *domain.Source) error
	Update(ctx context.Context, s *domain.Source) error
	Delete(ctx context.Context, id string) error
}
