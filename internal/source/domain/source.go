// Package domain holds the news source entity and its validation rules.
package domain

import (
	"errors"
	"net/url"
	"time"
)

// Source is a publication articles are aggregated from.
type Source struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ValidateName checks the source name rule.
func ValidateName(name string) error {
	if name == "" {
		return errors.New("name is required")
	}
	return nil
}

// ValidateURL requires an absolute http or https URL.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("url must be a valid absolute http(s) URL")
	}
	return nil
}

// Validate validates the source for persistence.
func (s *Source) Validate() error {
	if err := ValidateName(s.Name); err != nil {
		return err
	}
	return ValidateURL(s.URL)
}
