// Package domain holds the article entity served by the public feed.
package domain

import (
	"time"

	sourcedomain "news-aggregator/backend/internal/source/domain"
	tagdomain "news-aggregator/backend/internal/tag/domain"
)

// Article is one feed entry. Source, Tags and the counters are populated by the
// repository when serving the feed; they are derived data, not columns of the
// articles table.
type Article struct {
	ID             string               `json:"id"`
	SourceID       string               `json:"sourceId"`
	Title          string               `json:"title"`
	Content        string               `json:"content"`
	URL            string               `json:"url"`
	PublishedAt    time.Time            `json:"publishedAt"`
	CreatedAt      time.Time            `json:"createdAt"`
	Source         *sourcedomain.Source `json:"source,omitempty"`
	Tags           []*tagdomain.Tag     `json:"tags"`
	FavoritesCount int                  `json:"favoritesCount"`
	ReportsCount   int                  `json:"reportsCount"`
}

// FeedFilter narrows the feed query. Empty fields mean "no filter".
type FeedFilter struct {
	TagID    string
	SourceID string
	Limit    int
	Offset   int
}
