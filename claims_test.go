package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	auth "github.com/webafan/portfolio-auth"
)

func TestJWTClaims_Accessors(t *testing.T) {
	iat := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	claims := &auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-1",
			Subject:   "alice",
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(iat.Add(time.Hour)),
		},
		UID:      "uid-1",
		UserRole: auth.RoleUser,
	}

	assert.Equal(t, "alice", claims.Subject())
	assert.Equal(t, "alice", claims.Username())
	assert.Equal(t, "uid-1", claims.UserID())
	assert.Equal(t, "jti-1", claims.TokenID())
	assert.Equal(t, auth.RoleUser, claims.Role())
	assert.True(t, iat.Equal(claims.IssuedAt()))
	assert.True(t, iat.Add(time.Hour).Equal(claims.Expires()))

	claims.UID = ""
	assert.Equal(t, "alice", claims.UserID())

	empty := &auth.JWTClaims{}
	assert.True(t, empty.Expires().IsZero())
	assert.True(t, empty.IssuedAt().IsZero())
}

func TestJWTClaims_Roles(t *testing.T) {
	user := &auth.JWTClaims{UserRole: auth.RoleUser}
	admin := &auth.JWTClaims{UserRole: auth.RoleAdmin}

	assert.True(t, user.HasRole("user"))
	assert.False(t, user.HasRole("ADMIN"))
	assert.False(t, user.HasRole("root"))

	assert.True(t, user.IsAtLeast("USER"))
	assert.False(t, user.IsAtLeast("admin"))
	assert.True(t, admin.IsAtLeast("user"))
	assert.False(t, admin.IsAtLeast("superuser"))
}

func TestUserRole(t *testing.T) {
	assert.True(t, auth.RoleUser.IsValid())
	assert.True(t, auth.RoleAdmin.IsValid())
	assert.False(t, auth.UserRole("guest").IsValid())

	assert.True(t, auth.RoleAdmin.IsAtLeast(auth.RoleUser))
	assert.False(t, auth.RoleUser.IsAtLeast(auth.RoleAdmin))
	assert.False(t, auth.UserRole("guest").IsAtLeast(auth.RoleUser))

	assert.Equal(t, []auth.UserRole{auth.RoleUser, auth.RoleAdmin}, auth.GetAllRoles())
	assert.Equal(t, "ADMIN", auth.RoleAdmin.String())

	r, ok := auth.ParseRole(" admin ")
	assert.True(t, ok)
	assert.Equal(t, auth.RoleAdmin, r)

	_, ok = auth.ParseRole("owner")
	assert.False(t, ok)
}
