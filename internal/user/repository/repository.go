package repository

import (
	"context"

	"news-aggregator/backend/internal/user/domain"
)

// Repository defines persistence for users. This is the Credential Store contract
// the auth service and middleware depend on.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, limit, offset int) ([]*domain.User, int, error)
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id string) error
	// IncrementTokenVersion bumps the revocation counter in place. The increment
	// happens in SQL so concurrent logout/refresh cannot lose updates.
	IncrementTokenVersion(ctx context.Context, id string) error
}
