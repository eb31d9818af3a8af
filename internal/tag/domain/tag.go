// Package domain holds the article tag entity.
package domain

import (
	"errors"
	"time"
)

// Tag is a topic label attached to articles.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// ValidateName checks the tag name rule. Names are unique, enforced by the
// database.
func ValidateName(name string) error {
	if name == "" {
		return errors.New("name is required")
	}
	return nil
}
