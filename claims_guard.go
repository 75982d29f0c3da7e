package auth

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// frozenClaims holds the claim values a decorator must leave untouched
type frozenClaims struct {
	registered jwt.RegisteredClaims
	uid        string
	role       UserRole
}

func freezeClaims(claims *JWTClaims) frozenClaims {
	registered := claims.RegisteredClaims
	registered.Audience = slices.Clone(claims.RegisteredClaims.Audience)
	return frozenClaims{
		registered: registered,
		uid:        claims.UID,
		role:       claims.UserRole,
	}
}

func (f frozenClaims) check(claims *JWTClaims) error {
	rc := claims.RegisteredClaims
	switch {
	case rc.ID != f.registered.ID:
		return claimMutated("jti")
	case rc.Subject != f.registered.Subject:
		return claimMutated("sub")
	case rc.Issuer != f.registered.Issuer:
		return claimMutated("iss")
	case !slices.Equal(rc.Audience, f.registered.Audience):
		return claimMutated("aud")
	case !sameDate(rc.IssuedAt, f.registered.IssuedAt):
		return claimMutated("iat")
	case !sameDate(rc.ExpiresAt, f.registered.ExpiresAt):
		return claimMutated("exp")
	case !sameDate(rc.NotBefore, f.registered.NotBefore):
		return claimMutated("nbf")
	case claims.UID != f.uid:
		return claimMutated("uid")
	case claims.UserRole != f.role:
		return claimMutated("role")
	}
	return nil
}

func sameDate(a, b *jwt.NumericDate) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Time.Equal(b.Time)
}

func claimMutated(claim string) error {
	return goerrors.New("immutable claim mutated: "+claim, goerrors.CategoryInternal).
		WithTextCode(TextCodeClaimImmutable).
		WithCode(goerrors.CodeInternal).
		WithMetadata(map[string]any{"claim": claim})
}
