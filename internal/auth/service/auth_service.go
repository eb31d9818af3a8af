package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"news-aggregator/backend/internal/security"
	userdomain "news-aggregator/backend/internal/user/domain"
)

// Sentinel errors for the auth service; the handler maps them to HTTP codes.
var (
	// ErrUsernameTaken is returned by Register when the username already exists.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrInvalidCredentials covers both unknown username and wrong password so
	// callers cannot enumerate usernames.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidToken is returned when a token fails verification, has expired,
	// or embeds a stale revocation counter.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Identity is the decoded claim set carried inside a token.
type Identity struct {
	UserID       string
	Username     string
	Role         userdomain.Role
	TokenVersion int
}

// AuthResult holds the outcome of Login or Refresh: the token pair and the user
// the tokens were issued for.
type AuthResult struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
	User             *userdomain.User
}

// UserRepo is the minimal credential store needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByUsername(ctx context.Context, username string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
	IncrementTokenVersion(ctx context.Context, id string) error
}

// AuthService implements register, login, refresh, logout, and access-token
// verification with counter-based global revocation: each user carries a
// monotonically increasing token_version, every token embeds the value current
// at issuance, and a token is honored only while the two match. Logout bumps
// the counter and thereby invalidates every outstanding token at once. There is
// no denylist and no per-token state.
type AuthService struct {
	userRepo UserRepo
	hasher   *security.Hasher
	tokens   *security.TokenProvider
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(userRepo UserRepo, hasher *security.Hasher, tokens *security.TokenProvider) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
	}
}

// Register creates a user with the given username and password and role "user".
func (s *AuthService) Register(ctx context.Context, username, password string) (*userdomain.User, error) {
	username = strings.TrimSpace(username)
	if err := userdomain.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := userdomain.ValidatePassword(password); err != nil {
		return nil, err
	}
	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &userdomain.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hashed,
		Role:         userdomain.RoleUser,
		TokenVersion: 0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates with username/password and returns a fresh token pair.
// Unknown username and wrong password both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issuePair(user)
}

// Refresh validates the refresh token against the live user record and rotates
// the pair. The embedded token_version must equal the user's current value;
// a logout in between invalidates every earlier token, not just one. Rotation
// does not revoke the presented refresh token: it stays cryptographically valid
// until its own expiry, and only a counter bump retires it early.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, ErrInvalidToken
	}
	claims, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.userRepo.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil || user.TokenVersion != claims.TokenVersion {
		return nil, ErrInvalidToken
	}
	return s.issuePair(user)
}

// Logout revokes every outstanding token for the user identified by the refresh
// token by bumping the revocation counter. Best-effort: an invalid or missing
// token is not an error, and the caller reports success regardless. Returns the
// user id whose counter was bumped, or "" when nothing was done.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", nil
	}
	claims, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return "", nil
	}
	if err := s.userRepo.IncrementTokenVersion(ctx, claims.Subject); err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// VerifyAccess validates an access token and enforces the revocation check: the
// user must still exist and the embedded token_version must equal the live one.
// The returned identity comes from the claims, so a role change only takes
// effect after re-login.
func (s *AuthService) VerifyAccess(ctx context.Context, accessToken string) (*Identity, error) {
	claims, err := s.tokens.ValidateAccess(accessToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.userRepo.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil || user.TokenVersion != claims.TokenVersion {
		return nil, ErrInvalidToken
	}
	return &Identity{
		UserID:       claims.Subject,
		Username:     claims.Username,
		Role:         userdomain.Role(claims.Role),
		TokenVersion: claims.TokenVersion,
	}, nil
}

// RefreshTTL exposes the refresh token lifetime for cookie max-age.
func (s *AuthService) RefreshTTL() time.Duration {
	return s.tokens.RefreshTTL()
}

func (s *AuthService) issuePair(user *userdomain.User) (*AuthResult, error) {
	accessToken, _, err := s.tokens.IssueAccess(user.ID, user.Username, string(user.Role), user.TokenVersion)
	if err != nil {
		return nil, err
	}
	refreshToken, refreshExp, err := s.tokens.IssueRefresh(user.ID, user.Username, string(user.Role), user.TokenVersion)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExp,
		User:             user,
	}, nil
}
