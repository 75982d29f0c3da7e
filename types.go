package auth

import (
	"context"
	"log/slog"
	"time"
)

// Logger is the logging surface used across the package. *slog.Logger
// satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Identity holds the attributes of an authenticated user
type Identity interface {
	ID() string
	Username() string
	Role() UserRole
	IsActive() bool
}

// UserStore looks up user records. Implementations return an error matching
// IsNotFound when no user has the given username.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
}

// CredentialHasher hashes passwords and verifies them against stored hashes
type CredentialHasher interface {
	Hash(password string) (string, error)
	Verify(password, hashedValue string) bool
}

// TokenCodec issues and parses signed bearer tokens
type TokenCodec interface {
	Issue(identity Identity, ttl time.Duration) (string, error)
	Parse(token string) (*JWTClaims, error)
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetTokenTTL() time.Duration
	GetIssuer() string
	GetAudience() []string
	GetEnforceActive() bool
}

func defaultLogger() Logger {
	return slog.Default().With("component", "auth")
}

func normalizeLogger(l Logger) Logger {
	if l == nil {
		return defaultLogger()
	}
	return l
}
