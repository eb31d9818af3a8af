package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"news-aggregator/backend/internal/security"
	userdomain "news-aggregator/backend/internal/user/domain"
)

type memUserRepo struct {
	mu         sync.Mutex
	byID       map[string]*userdomain.User
	byUsername map[string]*userdomain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		byID:       map[string]*userdomain.User{},
		byUsername: map[string]*userdomain.User{},
	}
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id], nil
}

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byUsername[username], nil
}

func (r *memUserRepo) Create(ctx context.Context, u *userdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[u.ID] = u
	r.byUsername[u.Username] = u
	return nil
}

func (r *memUserRepo) IncrementTokenVersion(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		u2 := *u
		u2.TokenVersion++
		r.byID[id] = &u2
		r.byUsername[u.Username] = &u2
	}
	return nil
}

func newTestService(t *testing.T) (*AuthService, *memUserRepo) {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	repo := newMemUserRepo()
	// Low bcrypt cost to keep tests fast.
	return NewAuthService(repo, security.NewHasher(4), tokens), repo
}

func TestRegisterAndLogin(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	user, err := s.Register(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != userdomain.RoleUser {
		t.Errorf("Register role = %q, want user", user.Role)
	}
	if user.TokenVersion != 0 {
		t.Errorf("Register token version = %d, want 0", user.TokenVersion)
	}

	res, err := s.Login(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatal("Login should return both tokens")
	}

	ident, err := s.VerifyAccess(ctx, res.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	if ident.UserID != user.ID {
		t.Errorf("identity user id = %q, want %q", ident.UserID, user.ID)
	}
	if ident.Username != "alice" || ident.Role != userdomain.RoleUser {
		t.Errorf("identity = %+v", ident)
	}
}

func TestRegister_UsernameTaken(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	if _, err := s.Register(ctx, "alice", "secret1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := s.Register(ctx, "alice", "other123"); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("duplicate Register: want ErrUsernameTaken, got %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	if _, err := s.Register(ctx, "ab", "secret1"); err == nil {
		t.Error("Register should reject short username")
	}
	if _, err := s.Register(ctx, "alice", "short"); err == nil {
		t.Error("Register should reject short password")
	}
}

func TestLogin_EnumerationResistance(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	if _, err := s.Register(ctx, "alice", "secret1"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, errWrongPass := s.Login(ctx, "alice", "wrong-password")
	_, errNoUser := s.Login(ctx, "nobody", "whatever")

	if !errors.Is(errWrongPass, ErrInvalidCredentials) {
		t.Errorf("wrong password: want ErrInvalidCredentials, got %v", errWrongPass)
	}
	// Unknown username must be indistinguishable from a wrong password.
	if !errors.Is(errNoUser, ErrInvalidCredentials) {
		t.Errorf("unknown username: want ErrInvalidCredentials, got %v", errNoUser)
	}
}

func TestRefresh_RotatesPair(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	if _, err := s.Register(ctx, "alice", "secret1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	login, err := s.Login(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	res, err := s.Refresh(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatal("Refresh should return a new pair")
	}
	if _, err := s.VerifyAccess(ctx, res.AccessToken); err != nil {
		t.Errorf("new access token should verify: %v", err)
	}

	// Rotation is not revocation: the old refresh token is still valid until
	// its own expiry or a counter bump.
	if _, err := s.Refresh(ctx, login.RefreshToken); err != nil {
		t.Errorf("pre-rotation refresh token should still be accepted: %v", err)
	}
}

func TestRefresh_InvalidToken(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	if _, err := s.Refresh(ctx, ""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("empty token: want ErrInvalidToken, got %v", err)
	}
	if _, err := s.Refresh(ctx, "garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token: want ErrInvalidToken, got %v", err)
	}
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	if _, err := s.Register(ctx, "alice", "secret1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	login, err := s.Login(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := s.Refresh(ctx, login.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("access token used as refresh token: want ErrInvalidToken, got %v", err)
	}
}

func TestLogout_RevokesEverything(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	user, err := s.Register(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	login, err := s.Login(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	userID, err := s.Logout(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if userID != user.ID {
		t.Errorf("Logout user id = %q, want %q", userID, user.ID)
	}

	// The counter bump invalidates the access token even though its signature
	// and expiry are still fine.
	if _, err := s.VerifyAccess(ctx, login.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("post-logout access token: want ErrInvalidToken, got %v", err)
	}
	// And the refresh token carries a stale counter now.
	if _, err := s.Refresh(ctx, login.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("post-logout refresh: want ErrInvalidToken, got %v", err)
	}
}

func TestLogout_Idempotent(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	if userID, err := s.Logout(ctx, ""); err != nil || userID != "" {
		t.Errorf("Logout with empty token = (%q, %v), want no-op", userID, err)
	}
	if userID, err := s.Logout(ctx, "garbage"); err != nil || userID != "" {
		t.Errorf("Logout with invalid token = (%q, %v), want no-op", userID, err)
	}
}

func TestVerifyAccess_DeletedUser(t *testing.T) {
	s, repo := newTestService(t)
	ctx := context.Background()

	user, err := s.Register(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	login, err := s.Login(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	repo.mu.Lock()
	delete(repo.byID, user.ID)
	delete(repo.byUsername, user.Username)
	repo.mu.Unlock()

	if _, err := s.VerifyAccess(ctx, login.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("deleted user: want ErrInvalidToken, got %v", err)
	}
}
