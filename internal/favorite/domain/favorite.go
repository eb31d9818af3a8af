// Package domain holds the favorite entity.
package domain

import (
	"time"

	articledomain "news-aggregator/backend/internal/article/domain"
)

// Favorite marks an article saved by a user. At most one favorite exists per
// user/article pair, enforced by a unique constraint.
type Favorite struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"userId"`
	ArticleID string                 `json:"articleId"`
	CreatedAt time.Time              `json:"createdAt"`
	Article   *articledomain.Article `json:"article,omitempty"`
}
