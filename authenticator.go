package auth

import (
	"context"
	"sync"
	"time"
)

// Reasons recorded for rejected logins. They reach logs and activity events,
// never the caller.
const (
	reasonUserNotFound     = "user_not_found"
	reasonInactive         = "inactive"
	reasonPasswordMismatch = "password_mismatch"
	reasonStoreError       = "store_error"
	reasonIssueError       = "issue_error"
)

// LoginResult is returned on a successful login
type LoginResult struct {
	Token    string   `json:"token"`
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
}

// ValidationResult describes the outcome of a token validation. Message is
// the only text safe to show a caller when Valid is false.
type ValidationResult struct {
	Valid     bool       `json:"valid"`
	Username  string     `json:"username,omitempty"`
	Role      UserRole   `json:"-"`
	ExpiresAt time.Time  `json:"-"`
	Message   string     `json:"message,omitempty"`
	Claims    *JWTClaims `json:"-"`
}

// LogoutResult acknowledges a logout
type LogoutResult struct {
	Message string `json:"message"`
}

// Auther orchestrates login and token validation. It holds no per call state
// and is safe for concurrent use.
type Auther struct {
	store         UserStore
	hasher        CredentialHasher
	tokens        TokenCodec
	ttl           time.Duration
	enforceActive bool
	logger        Logger
	metrics       *Metrics
	activitySink  ActivitySink

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthenticator returns an Auther backed by store. The token codec is
// built from opts, so an unusable signing key fails here.
func NewAuthenticator(store UserStore, opts Config) (*Auther, error) {
	if store == nil {
		return nil, configError("user store is required")
	}

	logger := defaultLogger()

	tokens, err := NewTokenService(opts, logger)
	if err != nil {
		return nil, err
	}

	return &Auther{
		store:         store,
		hasher:        NewBcryptHasher(0),
		tokens:        tokens,
		ttl:           opts.GetTokenTTL(),
		enforceActive: opts.GetEnforceActive(),
		logger:        logger,
		activitySink:  discardActivity{},
	}, nil
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = normalizeLogger(logger)
	// Update the TokenService logger as well
	if ts, ok := s.tokens.(*TokenService); ok {
		cp := *ts
		cp.logger = s.logger
		s.tokens = &cp
	}
	return s
}

// WithHasher replaces the credential hasher. Stored hashes must be
// verifiable by it.
func (s *Auther) WithHasher(hasher CredentialHasher) *Auther {
	if hasher != nil {
		s.hasher = hasher
	}
	return s
}

// WithTokenCodec replaces the token codec built from config
func (s *Auther) WithTokenCodec(tokens TokenCodec) *Auther {
	if tokens != nil {
		s.tokens = tokens
	}
	return s
}

// WithMetrics enables Prometheus instrumentation
func (s *Auther) WithMetrics(m *Metrics) *Auther {
	s.metrics = m
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// TokenCodec returns the codec used to issue and parse tokens
func (s *Auther) TokenCodec() TokenCodec {
	return s.tokens
}

// Login verifies username and password and issues a token.
//
// Unknown users, inactive users and wrong passwords all return
// ErrInvalidCredentials. Store and signing faults return a KindInternal error.
func (s *Auther) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	started := time.Now()

	user, err := s.store.FindByUsername(ctx, username)
	if err != nil && !IsNotFound(err) {
		s.logger.Error("login user lookup failed", "username", username, "error", err)
		s.metrics.observeLogin(ResultError, started)
		s.emit(ctx, ActivityEventLoginFailure, username, reasonStoreError)
		return nil, internalError(err, "failed to look up user")
	}

	if err != nil || user == nil {
		// keep timing close to the known user path
		s.hasher.Verify(password, s.dummy())
		return nil, s.reject(ctx, username, reasonUserNotFound, started)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, s.reject(ctx, username, reasonPasswordMismatch, started)
	}

	// checked after verification so inactive accounts cost the same as active ones
	if s.enforceActive && !user.IsActive {
		return nil, s.reject(ctx, username, reasonInactive, started)
	}

	identity := user.Identity()

	token, err := s.tokens.Issue(identity, s.ttl)
	if err != nil {
		s.logger.Error("login token issue failed", "username", username, "error", err)
		s.metrics.observeLogin(ResultError, started)
		s.emit(ctx, ActivityEventLoginFailure, username, reasonIssueError)
		return nil, internalError(err, "failed to issue token")
	}

	s.logger.Info("login succeeded", "username", identity.Username(), "role", identity.Role())
	s.metrics.observeLogin(ResultSuccess, started)
	s.emit(ctx, ActivityEventLoginSuccess, identity.Username(), "")

	return &LoginResult{
		Token:    token,
		Username: identity.Username(),
		Role:     identity.Role(),
	}, nil
}

// Validate parses token and reports whether it is valid. It never consults
// the UserStore. On failure the result carries the generic message and the
// error carries the precise kind.
func (s *Auther) Validate(ctx context.Context, token string) (ValidationResult, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		kind := KindOf(err)
		if IsTokenError(err) {
			s.logger.Debug("token validation rejected", "reason", kind)
		} else {
			s.logger.Error("token validation failed", "reason", kind, "error", err)
		}
		s.metrics.observeValidation(string(kind))
		s.emit(ctx, ActivityEventTokenRejected, "", string(kind))

		return ValidationResult{
			Valid:   false,
			Message: MessageInvalidToken,
		}, err
	}

	s.metrics.observeValidation(ResultValid)

	return ValidationResult{
		Valid:     true,
		Username:  claims.Username(),
		Role:      claims.Role(),
		ExpiresAt: claims.Expires(),
		Claims:    claims,
	}, nil
}

// Logout acknowledges a logout. Tokens are stateless so nothing is revoked;
// the client is expected to discard its token.
func (s *Auther) Logout(ctx context.Context) LogoutResult {
	s.emit(ctx, ActivityEventLogout, "", "")
	return LogoutResult{Message: MessageLogout}
}

func (s *Auther) reject(ctx context.Context, username, reason string, started time.Time) error {
	s.logger.Info("login rejected", "username", username, "reason", reason)
	s.metrics.observeLogin(ResultInvalidCredentials, started)
	s.emit(ctx, ActivityEventLoginFailure, username, reason)
	return ErrInvalidCredentials
}

func (s *Auther) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := RandomPasswordHash(s.hasher)
		if err != nil {
			s.logger.Warn("unable to build dummy password hash", "error", err)
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

func (s *Auther) emit(ctx context.Context, eventType ActivityEventType, username, reason string) {
	event := ActivityEvent{
		Type:       eventType,
		Username:   username,
		Reason:     reason,
		OccurredAt: time.Now(),
	}

	if err := normalizeActivitySink(s.activitySink).Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error", "error", err)
	}
}
