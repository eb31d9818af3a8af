// Package domain holds the article report entity and its status lifecycle.
package domain

import (
	"errors"
	"time"

	articledomain "news-aggregator/backend/internal/article/domain"
)

// Report is a user complaint about an article. A user may have at most one
// open report (new or reviewed) per article.
type Report struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"userId"`
	ArticleID string                 `json:"articleId"`
	Reason    string                 `json:"reason"`
	Status    Status                 `json:"status"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
	Article   *articledomain.Article `json:"article,omitempty"`
}

// Status is the closed set of report statuses.
type Status string

const (
	StatusNew      Status = "new"
	StatusReviewed Status = "reviewed"
	StatusClosed   Status = "closed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusReviewed, StatusClosed:
		return true
	}
	return false
}

// Open reports whether the status counts as unresolved for the duplicate check.
func (s Status) Open() bool {
	return s == StatusNew || s == StatusReviewed
}

// ParseStatus converts s into a Status, rejecting anything outside the closed set.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", errors.New("status must be one of new, reviewed, closed")
	}
	return st, nil
}

// ValidateReason checks the report reason rule.
func ValidateReason(reason string) error {
	if len(reason) < 10 {
		return errors.New("reason must be at least 10 characters")
	}
	return nil
}
