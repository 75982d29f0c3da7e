package auth_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	auth "github.com/webafan/portfolio-auth"
)

const testSigningKey = "test-signing-key-0123456789abcdef"

// MockUserStore implements auth.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

// MockHasher implements auth.CredentialHasher
type MockHasher struct {
	mock.Mock
}

func (m *MockHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockHasher) Verify(password, hashedValue string) bool {
	args := m.Called(password, hashedValue)
	return args.Bool(0)
}

// MockTokenCodec implements auth.TokenCodec
type MockTokenCodec struct {
	mock.Mock
}

func (m *MockTokenCodec) Issue(identity auth.Identity, ttl time.Duration) (string, error) {
	args := m.Called(identity, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockTokenCodec) Parse(token string) (*auth.JWTClaims, error) {
	args := m.Called(token)
	claims, _ := args.Get(0).(*auth.JWTClaims)
	return claims, args.Error(1)
}

// MockConfig implements auth.Config
type MockConfig struct {
	mock.Mock
}

func (m *MockConfig) GetSigningKey() string {
	return m.Called().String(0)
}

func (m *MockConfig) GetSigningMethod() string {
	return m.Called().String(0)
}

func (m *MockConfig) GetTokenTTL() time.Duration {
	return m.Called().Get(0).(time.Duration)
}

func (m *MockConfig) GetIssuer() string {
	return m.Called().String(0)
}

func (m *MockConfig) GetAudience() []string {
	return m.Called().Get(0).([]string)
}

func (m *MockConfig) GetEnforceActive() bool {
	return m.Called().Bool(0)
}

func newMockConfig() *MockConfig {
	mockConfig := new(MockConfig)
	mockConfig.On("GetSigningKey").Return(testSigningKey)
	mockConfig.On("GetSigningMethod").Return("HS256")
	mockConfig.On("GetTokenTTL").Return(time.Hour)
	mockConfig.On("GetIssuer").Return("test-issuer")
	mockConfig.On("GetAudience").Return([]string{"test:audience"})
	mockConfig.On("GetEnforceActive").Return(true)
	return mockConfig
}

// testConfig is a plain auth.Config for tests that do not assert on calls
type testConfig struct {
	key           string
	method        string
	ttl           time.Duration
	issuer        string
	audience      []string
	enforceActive bool
}

func newTestConfig() *testConfig {
	return &testConfig{
		key:           testSigningKey,
		method:        "HS256",
		ttl:           time.Hour,
		enforceActive: true,
	}
}

func (c *testConfig) GetSigningKey() string      { return c.key }
func (c *testConfig) GetSigningMethod() string   { return c.method }
func (c *testConfig) GetTokenTTL() time.Duration { return c.ttl }
func (c *testConfig) GetIssuer() string          { return c.issuer }
func (c *testConfig) GetAudience() []string      { return c.audience }
func (c *testConfig) GetEnforceActive() bool     { return c.enforceActive }

// recordingSink collects activity events
type recordingSink struct {
	mu     sync.Mutex
	events []auth.ActivityEvent
}

func (s *recordingSink) Record(_ context.Context, event auth.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) Events() []auth.ActivityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]auth.ActivityEvent, len(s.events))
	copy(out, s.events)
	return out
}

// testIdentity is a simple auth.Identity
type testIdentity struct {
	id       string
	username string
	role     auth.UserRole
	active   bool
}

func (t testIdentity) ID() string          { return t.id }
func (t testIdentity) Username() string    { return t.username }
func (t testIdentity) Role() auth.UserRole { return t.role }
func (t testIdentity) IsActive() bool      { return t.active }
