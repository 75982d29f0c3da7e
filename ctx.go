package auth

import (
	"context"

	"github.com/goliatone/go-router"
)

// DefaultContextKey is the request store key claims are stored under
const DefaultContextKey = "user"

var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithClaimsContext sets the claims in the given context
func WithClaimsContext(r context.Context, claims *JWTClaims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// GetClaims extracts the claims from the standard context
func GetClaims(ctx context.Context) (*JWTClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(*JWTClaims)
	return raw, ok && raw != nil
}

// GetRouterClaims extracts the claims the jwt middleware stored on the request
func GetRouterClaims(ctx router.Context, key string) (*JWTClaims, bool) {
	if key == "" {
		key = DefaultContextKey
	}
	claims := router.GetContextValue[*JWTClaims](ctx, key, nil)
	return claims, claims != nil
}

// IsAtLeast is a convenience check on the role stored in ctx
func IsAtLeast(ctx context.Context, minRole UserRole) bool {
	claims, ok := GetClaims(ctx)
	if !ok {
		return false
	}
	return claims.Role().IsAtLeast(minRole)
}
