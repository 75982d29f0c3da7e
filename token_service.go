package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// MinSigningKeyLength is the shortest HMAC key accepted, in bytes
const MinSigningKeyLength = 32

// TokenService implements TokenCodec with HMAC signed JWTs. It is immutable
// once built and safe for concurrent use.
type TokenService struct {
	signingKey []byte
	method     *jwt.SigningMethodHMAC
	ttl        time.Duration
	issuer     string
	audience   jwt.ClaimStrings
	logger     Logger
	now        func() time.Time
	decorator  ClaimsDecorator
}

var _ TokenCodec = (*TokenService)(nil)

// NewTokenService creates a TokenService from cfg. It fails with a
// KindConfig error when the key or signing method is unusable.
func NewTokenService(cfg Config, logger Logger) (*TokenService, error) {
	if cfg == nil {
		return nil, configError("missing configuration")
	}

	key := cfg.GetSigningKey()
	if strings.TrimSpace(key) == "" {
		return nil, configError("signing key is required")
	}

	if len(key) < MinSigningKeyLength {
		return nil, configError(fmt.Sprintf("signing key must be at least %d bytes", MinSigningKeyLength))
	}

	method, err := signingMethod(cfg.GetSigningMethod())
	if err != nil {
		return nil, err
	}

	var aud jwt.ClaimStrings
	if audience := cfg.GetAudience(); len(audience) > 0 {
		aud = make(jwt.ClaimStrings, len(audience))
		copy(aud, audience)
	}

	return &TokenService{
		signingKey: []byte(key),
		method:     method,
		ttl:        cfg.GetTokenTTL(),
		issuer:     cfg.GetIssuer(),
		audience:   aud,
		logger:     normalizeLogger(logger),
		now:        time.Now,
	}, nil
}

func signingMethod(name string) (*jwt.SigningMethodHMAC, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", jwt.SigningMethodHS256.Alg():
		return jwt.SigningMethodHS256, nil
	case jwt.SigningMethodHS384.Alg():
		return jwt.SigningMethodHS384, nil
	case jwt.SigningMethodHS512.Alg():
		return jwt.SigningMethodHS512, nil
	default:
		return nil, configError("unsupported signing method " + name)
	}
}

// WithClock returns a copy of the service that reads time from now
func (ts *TokenService) WithClock(now func() time.Time) *TokenService {
	cp := *ts
	if now == nil {
		now = time.Now
	}
	cp.now = now
	return &cp
}

// WithClaimsDecorator returns a copy of the service that runs d on every
// token before signing
func (ts *TokenService) WithClaimsDecorator(d ClaimsDecorator) *TokenService {
	cp := *ts
	cp.decorator = d
	return &cp
}

// TTL returns the configured default token lifetime
func (ts *TokenService) TTL() time.Duration {
	return ts.ttl
}

// Issue signs a token for identity that expires ttl from now. A zero ttl
// produces a token that is already expired.
func (ts *TokenService) Issue(identity Identity, ttl time.Duration) (string, error) {
	if ts == nil || len(ts.signingKey) == 0 || ts.method == nil {
		return "", configError("signing key is required")
	}

	if identity == nil || identity.Username() == "" {
		return "", goerrors.New("identity with a username is required", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}

	if ttl < 0 {
		return "", ErrInvalidTokenTTL
	}

	now := ts.now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    ts.issuer,
			Subject:   identity.Username(),
			Audience:  ts.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UID:      identity.ID(),
		UserRole: identity.Role(),
	}

	if err := decorate(context.Background(), ts.decorator, identity, claims); err != nil {
		ts.logger.Error("token decoration rejected", "username", identity.Username(), "error", err)
		return "", err
	}

	signed, err := jwt.NewWithClaims(ts.method, claims).SignedString(ts.signingKey)
	if err != nil {
		return "", internalError(err, "failed to sign token")
	}

	return signed, nil
}

// Parse verifies the token signature and expiry and returns its claims.
// Errors are ErrTokenMalformed, ErrTokenBadSignature or ErrTokenExpired kinds.
func (ts *TokenService) Parse(tokenString string) (*JWTClaims, error) {
	if ts == nil || len(ts.signingKey) == 0 || ts.method == nil {
		return nil, configError("signing key is required")
	}

	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrTokenMalformed
	}

	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{ts.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(ts.now),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience[0]))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != ts.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		mapped := mapParseError(err)
		ts.logger.Debug("token rejected", "reason", KindOf(mapped))
		return nil, mapped
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}

	if claims.Subject() == "" {
		return nil, tokenError(ErrTokenMalformed, errors.New("token has no subject"))
	}

	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return tokenError(ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return tokenError(ErrTokenBadSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return tokenError(ErrTokenExpired, err)
	default:
		return tokenError(ErrTokenMalformed, err)
	}
}
