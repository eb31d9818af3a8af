package domain

import (
	"errors"
	"regexp"
	"time"
)

// User is the core user entity. TokenVersion is the revocation counter: every
// token embeds the value current at issuance, and a token is honored only while
// its embedded value matches the live one.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         Role
	TokenVersion int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Role is the closed set of user roles.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	}
	return false
}

// ParseRole converts s into a Role, rejecting anything outside the closed set.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", errors.New("role must be one of admin, moderator, user")
	}
	return r, nil
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidateUsername checks the registration username rules: at least 3 characters,
// letters, digits and underscores only.
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return errors.New("username must be at least 3 characters")
	}
	if !usernamePattern.MatchString(username) {
		return errors.New("username must contain only letters, numbers, and underscores")
	}
	return nil
}

// ValidatePassword checks the plaintext password rules prior to hashing.
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	return nil
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if err := ValidateUsername(u.Username); err != nil {
		return err
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if !u.Role.Valid() {
		return errors.New("invalid role")
	}
	return nil
}
