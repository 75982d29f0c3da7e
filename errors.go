package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"

	"github.com/webafan/portfolio-auth/middleware/jwtware"
)

const (
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	TextCodeTokenMalformed     = "TOKEN_MALFORMED"
	TextCodeTokenBadSignature  = "TOKEN_BAD_SIGNATURE"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeConfig             = "AUTH_CONFIG_INVALID"
	TextCodeInternal           = "INTERNAL_ERROR"
	TextCodeUserNotFound       = "USER_NOT_FOUND"
	TextCodeEmptyPassword      = "EMPTY_PASSWORD"
	TextCodeInvalidTTL         = "INVALID_TOKEN_TTL"
	TextCodeClaimImmutable     = "CLAIM_IMMUTABLE"
)

// Public messages. These are the only strings a caller ever sees.
const (
	MessageInvalidCredentials = "Invalid username or password"
	MessageInvalidToken       = "Invalid token"
	MessageInternal           = "Internal server error"
	MessageLogout             = "Logout successful"
)

// ErrInvalidCredentials is returned for unknown users, inactive users and
// wrong passwords alike.
var ErrInvalidCredentials = goerrors.New("invalid username or password", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned when a token cannot be decoded or its claims
// are structurally invalid
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenBadSignature is returned when the signature does not match the
// payload or the token was signed with an unexpected algorithm
var ErrTokenBadSignature = goerrors.New("token signature is invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenBadSignature).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned once now is at or past the token exp claim
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrConfig is returned when the signing configuration is unusable.
// It is fatal at startup.
var ErrConfig = goerrors.New("invalid auth configuration", goerrors.CategoryInternal).
	WithTextCode(TextCodeConfig).
	WithCode(goerrors.CodeInternal)

// ErrInternal is the generic server fault
var ErrInternal = goerrors.New("internal server error", goerrors.CategoryInternal).
	WithTextCode(TextCodeInternal).
	WithCode(goerrors.CodeInternal)

// ErrUserNotFound is what a UserStore returns when no record matches
var ErrUserNotFound = goerrors.New("user not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrNoEmptyString is returned when hashing an empty password
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidTokenTTL is returned when a negative TTL is requested
var ErrInvalidTokenTTL = goerrors.New("token TTL must be non-negative", goerrors.CategoryBadInput).
	WithTextCode(TextCodeInvalidTTL).
	WithCode(goerrors.CodeBadRequest)

// ErrorKind is the coarse classification used at the service boundary
type ErrorKind string

const (
	KindNone               ErrorKind = ""
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindMalformedToken     ErrorKind = "malformed_token"
	KindBadSignature       ErrorKind = "bad_signature"
	KindExpired            ErrorKind = "expired"
	KindConfig             ErrorKind = "config"
	KindInternal           ErrorKind = "internal"
)

var kindsByTextCode = map[string]ErrorKind{
	TextCodeInvalidCredentials: KindInvalidCredentials,
	TextCodeTokenMalformed:     KindMalformedToken,
	TextCodeTokenBadSignature:  KindBadSignature,
	TextCodeTokenExpired:       KindExpired,
	TextCodeConfig:             KindConfig,
	TextCodeInternal:           KindInternal,
}

// KindOf classifies err. Anything it does not recognize is KindInternal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}

	var richErr *goerrors.Error
	if errors.As(err, &richErr) {
		if kind, ok := kindsByTextCode[richErr.TextCode]; ok {
			return kind
		}
	}

	return KindInternal
}

// IsTokenError reports whether err is any of the token rejection kinds
func IsTokenError(err error) bool {
	switch KindOf(err) {
	case KindMalformedToken, KindBadSignature, KindExpired:
		return true
	default:
		return false
	}
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == KindExpired || errors.Is(err, jwt.ErrTokenExpired)
}

// IsMalformedError will check for malformed or absent tokens
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == KindMalformedToken ||
		errors.Is(err, jwt.ErrTokenMalformed) ||
		errors.Is(err, jwtware.ErrJWTMissingOrMalformed)
}

// IsNotFound reports whether a UserStore error means "no such user"
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUserNotFound) {
		return true
	}
	return goerrors.IsNotFound(err)
}

// internalError wraps cause so it is classified as KindInternal while keeping
// the cause available to server side logs.
func internalError(cause error, message string) *goerrors.Error {
	return goerrors.Wrap(cause, goerrors.CategoryInternal, message).
		WithTextCode(TextCodeInternal).
		WithCode(goerrors.CodeInternal)
}

// configError builds a KindConfig error carrying the reason in metadata
func configError(reason string) *goerrors.Error {
	return goerrors.New("invalid auth configuration: "+reason, goerrors.CategoryInternal).
		WithTextCode(TextCodeConfig).
		WithCode(goerrors.CodeInternal).
		WithMetadata(map[string]any{"reason": reason})
}

// tokenError rebuilds a token sentinel around the parser cause
func tokenError(sentinel *goerrors.Error, cause error) *goerrors.Error {
	return goerrors.Wrap(cause, sentinel.Category, sentinel.Message).
		WithTextCode(sentinel.TextCode).
		WithCode(sentinel.Code)
}
