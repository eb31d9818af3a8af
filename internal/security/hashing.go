package security

import "golang.org/x/crypto/bcrypt"

// Hasher derives and checks bcrypt password hashes at a fixed cost.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher with cost clamped into bcrypt's supported range.
// A zero or negative cost selects the library default.
func NewHasher(cost int) *Hasher {
	switch {
	case cost <= 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt hash of password for storage.
func (h *Hasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare checks password against a stored hash. Returns
// bcrypt.ErrMismatchedHashAndPassword on a wrong password.
func (h *Hasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
