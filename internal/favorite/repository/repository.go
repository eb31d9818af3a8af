// Package repository persists favorites.
package repository

import (
	"context"

	"news-aggregator/backend/internal/favorite/domain"
)

// Repository is the favorite store. Get methods return (nil, nil) for missing rows.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Favorite, error)
	GetByUserAndArticle(ctx context.Context, userID, articleID string) (*domain.Favorite, error)
	// ListByUser returns the user's favorites with the articles embedded, newest
	// favorite first.
	ListByUser(ctx context.Context, userID string) ([]*domain.Favorite, error)
	Create(ctx context.Context, f *domain.Favorite) error
	Delete(ctx context.Context, id string) error
}
