package security

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"testing"
	"time"
)

func newProvider(t *testing.T) *TokenProvider {
	t.Helper()
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	return p
}

func newSigningKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key
}

func TestIssueAccess_ValidateRoundTrip(t *testing.T) {
	p := newProvider(t)

	token, expiresAt, err := p.IssueAccess("user-1", "alice", "user", 3)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if token == "" {
		t.Fatal("IssueAccess returned empty token")
	}
	if !expiresAt.After(time.Now()) {
		t.Error("access token should expire in the future")
	}

	claims, err := p.ValidateAccess(token)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("Subject = %q, want user-1", claims.Subject)
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %q, want alice", claims.Username)
	}
	if claims.Role != "user" {
		t.Errorf("Role = %q, want user", claims.Role)
	}
	if claims.TokenVersion != 3 {
		t.Errorf("TokenVersion = %d, want 3", claims.TokenVersion)
	}
	if claims.TokenUse != TokenUseAccess {
		t.Errorf("TokenUse = %q, want access", claims.TokenUse)
	}
}

func TestIssueRefresh_ValidateRoundTrip(t *testing.T) {
	p := newProvider(t)

	token, _, err := p.IssueRefresh("user-2", "bob", "moderator", 0)
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	claims, err := p.ValidateRefresh(token)
	if err != nil {
		t.Fatalf("ValidateRefresh: %v", err)
	}
	if claims.Subject != "user-2" || claims.Role != "moderator" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestValidate_TokenUseMismatch(t *testing.T) {
	p := newProvider(t)

	refresh, _, err := p.IssueRefresh("user-1", "alice", "user", 0)
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	if _, err := p.ValidateAccess(refresh); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("refresh token accepted as access token: err = %v", err)
	}

	access, _, err := p.IssueAccess("user-1", "alice", "user", 0)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := p.ValidateRefresh(access); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("access token accepted as refresh token: err = %v", err)
	}
}

func TestValidate_Malformed(t *testing.T) {
	p := newProvider(t)

	testCases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"truncated", "eyJhbGciOiJSUzI1NiJ9"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := p.ValidateAccess(tc.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("ValidateAccess(%q): want ErrInvalidToken, got %v", tc.token, err)
			}
		})
	}
}

func TestValidate_Expired(t *testing.T) {
	key := newSigningKey(t)
	p := NewTokenProvider(key, key.Public(), "test-issuer", "test-audience", -time.Minute, -time.Minute)

	token, _, err := p.IssueAccess("user-1", "alice", "user", 0)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := p.ValidateAccess(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token: want ErrInvalidToken, got %v", err)
	}
}

func TestValidate_WrongIssuerOrAudience(t *testing.T) {
	key := newSigningKey(t)

	issuerA := NewTokenProvider(key, key.Public(), "issuer-a", "aud", time.Minute, time.Hour)
	issuerB := NewTokenProvider(key, key.Public(), "issuer-b", "aud", time.Minute, time.Hour)
	audX := NewTokenProvider(key, key.Public(), "issuer-a", "aud-x", time.Minute, time.Hour)

	token, _, err := issuerA.IssueAccess("u", "alice", "user", 0)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := issuerB.ValidateAccess(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong issuer: want ErrInvalidToken, got %v", err)
	}
	if _, err := audX.ValidateAccess(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong audience: want ErrInvalidToken, got %v", err)
	}
}

func TestValidate_TamperedSignature(t *testing.T) {
	p := newProvider(t)

	token, _, err := p.IssueAccess("user-1", "alice", "user", 0)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	tampered := token[:len(token)-4] + "AAAA"
	if _, err := p.ValidateAccess(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("tampered token: want ErrInvalidToken, got %v", err)
	}
}
