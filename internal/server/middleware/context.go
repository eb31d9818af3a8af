package middleware

import (
	"context"

	"news-aggregator/backend/internal/auth/service"
)

type contextKey string

const (
	identityKey contextKey = "identity"
	clientIPKey contextKey = "client_ip"
)

// WithIdentity returns a context carrying the verified identity.
func WithIdentity(ctx context.Context, ident *service.Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

// IdentityFrom returns the verified identity set by Authenticate, if any.
func IdentityFrom(ctx context.Context) (*service.Identity, bool) {
	ident, ok := ctx.Value(identityKey).(*service.Identity)
	return ident, ok && ident != nil
}

// WithClientIP returns a context carrying the client IP.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIPFrom returns the client IP recorded by the ClientIP middleware, or "".
func ClientIPFrom(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey).(string)
	return ip
}
