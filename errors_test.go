package auth

import (
	"errors"
	"fmt"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"

	"github.com/webafan/portfolio-auth/middleware/jwtware"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindNone},
		{"invalid credentials", ErrInvalidCredentials, KindInvalidCredentials},
		{"malformed", ErrTokenMalformed, KindMalformedToken},
		{"bad signature", ErrTokenBadSignature, KindBadSignature},
		{"expired", ErrTokenExpired, KindExpired},
		{"config", ErrConfig, KindConfig},
		{"internal", ErrInternal, KindInternal},
		{"wrapped with fmt", fmt.Errorf("login: %w", ErrInvalidCredentials), KindInvalidCredentials},
		{"token error around a cause", tokenError(ErrTokenExpired, errors.New("exp")), KindExpired},
		{"config error with reason", configError("no key"), KindConfig},
		{"internal wrap", internalError(errors.New("db down"), "lookup"), KindInternal},
		{"plain error", errors.New("boom"), KindInternal},
		{"not found is internal at the boundary", ErrUserNotFound, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestIsTokenError(t *testing.T) {
	assert.True(t, IsTokenError(ErrTokenMalformed))
	assert.True(t, IsTokenError(ErrTokenBadSignature))
	assert.True(t, IsTokenError(ErrTokenExpired))
	assert.False(t, IsTokenError(ErrInvalidCredentials))
	assert.False(t, IsTokenError(ErrConfig))
	assert.False(t, IsTokenError(nil))
}

func TestIsTokenExpiredError(t *testing.T) {
	assert.True(t, IsTokenExpiredError(ErrTokenExpired))
	assert.True(t, IsTokenExpiredError(tokenError(ErrTokenExpired, jwt.ErrTokenExpired)))
	assert.True(t, IsTokenExpiredError(fmt.Errorf("parse: %w", jwt.ErrTokenExpired)))
	assert.False(t, IsTokenExpiredError(errors.New("token has invalid claims: token is expired")))
	assert.False(t, IsTokenExpiredError(ErrTokenMalformed))
	assert.False(t, IsTokenExpiredError(nil))
}

func TestIsMalformedError(t *testing.T) {
	assert.True(t, IsMalformedError(ErrTokenMalformed))
	assert.True(t, IsMalformedError(jwtware.ErrJWTMissingOrMalformed))
	assert.True(t, IsMalformedError(fmt.Errorf("parse: %w", jwt.ErrTokenMalformed)))
	assert.False(t, IsMalformedError(errors.New("missing or malformed JWT")))
	assert.False(t, IsMalformedError(ErrTokenExpired))
	assert.False(t, IsMalformedError(nil))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrUserNotFound))
	assert.True(t, IsNotFound(fmt.Errorf("store: %w", ErrUserNotFound)))
	assert.True(t, IsNotFound(goerrors.New("no rows", goerrors.CategoryNotFound)))
	assert.False(t, IsNotFound(errors.New("connection refused")))
	assert.False(t, IsNotFound(nil))
}

func TestInternalErrorKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := internalError(cause, "failed to look up user")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, TextCodeInternal, err.TextCode)
	assert.Equal(t, goerrors.CodeInternal, err.Code)
}

func TestConfigErrorMetadata(t *testing.T) {
	err := configError("signing key is required")
	assert.Equal(t, "signing key is required", err.Metadata["reason"])
	assert.Contains(t, err.Error(), "signing key is required")
}
