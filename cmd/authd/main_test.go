package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	auth "github.com/webafan/portfolio-auth"
	"github.com/webafan/portfolio-auth/config"
	"github.com/webafan/portfolio-auth/repository"
)

const testSigningKey = "cmd-signing-key-0123456789abcdefgh"

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	configFile = ""

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommand_HasExpectedSubcommands(t *testing.T) {
	out, err := execute(t, "", "--help")
	require.NoError(t, err)

	for _, sub := range []string{"serve", "hash-password", "user"} {
		assert.Contains(t, out, sub, "Help missing %q command", sub)
	}
}

func TestRootCommand_ConfigFlag(t *testing.T) {
	_, err := execute(t, "", "--config=/etc/authd.yaml", "--help")
	require.NoError(t, err)
	assert.Equal(t, "/etc/authd.yaml", configFile)
}

func TestHashPassword(t *testing.T) {
	t.Run("argument", func(t *testing.T) {
		out, err := execute(t, "", "hash-password", "--cost", "4", "s3cret")
		require.NoError(t, err)

		hash := strings.TrimSpace(out)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
	})

	t.Run("stdin", func(t *testing.T) {
		out, err := execute(t, "s3cret\n", "hash-password", "--algorithm", auth.HasherArgon2id)
		require.NoError(t, err)

		hash := strings.TrimSpace(out)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
		hasher, err := auth.NewHasher(auth.HasherArgon2id, 0)
		require.NoError(t, err)
		assert.True(t, hasher.Verify("s3cret", hash))
	})

	t.Run("empty stdin", func(t *testing.T) {
		_, err := execute(t, "", "hash-password")
		assert.Error(t, err)
	})

	t.Run("unknown algorithm", func(t *testing.T) {
		_, err := execute(t, "", "hash-password", "--algorithm", "md5", "s3cret")
		assert.Error(t, err)
	})
}

func TestUserCommands(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "authd.db")
	t.Setenv("AUTHD_AUTH__SIGNING_KEY", testSigningKey)
	t.Setenv("AUTHD_AUTH__BCRYPT_COST", "4")
	t.Setenv("AUTHD_STORE__DSN", dsn)

	out, err := execute(t, "", "user", "create", "--username", "dana", "--password", "pw4", "--role", "admin")
	require.NoError(t, err, out)
	assert.Contains(t, out, "created user dana")

	_, err = execute(t, "", "user", "create", "--username", "dana", "--password", "pw4")
	assert.Error(t, err, "duplicate usernames are rejected")

	_, err = execute(t, "", "user", "create", "--username", "erin", "--password", "pw5", "--role", "ROOT")
	assert.Error(t, err)

	out, err = execute(t, "", "user", "disable", "dana")
	require.NoError(t, err, out)
	assert.Contains(t, out, "user dana disabled")

	_, err = execute(t, "", "user", "disable", "nobody")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)

	db, err := repository.Open(repository.DriverSQLite, dsn)
	require.NoError(t, err)
	defer db.Close()

	user, err := repository.NewUsers(db).FindByUsername(context.Background(), "dana")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, user.Role)
	assert.False(t, user.IsActive)
	assert.NotEqual(t, "pw4", user.PasswordHash)
}

func TestNewApp(t *testing.T) {
	t.Setenv("AUTHD_AUTH__SIGNING_KEY", testSigningKey)
	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	hash, err := auth.NewBcryptHasher(4).Hash("pw1")
	require.NoError(t, err)
	store := auth.NewMemoryUserStore(&auth.User{
		Username:     "alice",
		PasswordHash: hash,
		Role:         auth.RoleAdmin,
		IsActive:     true,
	})

	reg := prometheus.NewRegistry()
	srv, err := newApp(cfg, store, newLogger(io.Discard, "error", "text"), reg)
	require.NoError(t, err)
	app := srv.WrappedRouter()

	var named []string
	for _, route := range srv.Router().Routes() {
		named = append(named, route.Name)
	}
	assert.ElementsMatch(t, []string{"auth.login", "auth.validate", "auth.logout", "auth.test", "auth.me"}, named)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"alice","password":"pw1"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var login map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))
	resp.Body.Close()
	token, _ := login["token"].(string)
	require.NotEmpty(t, token)

	t.Run("protected route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "alice", body["username"])
		assert.Equal(t, "ADMIN", body["role"])
	})

	t.Run("protected route without token", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("cors preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		resp, err := app.Test(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("metrics", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `auth_login_attempts_total{result="success"} 1`)
	})
}

func TestNewLogger(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := newLogger(buf, "warn", "json")

	logger.Info("hidden")
	logger.Warn("shown", "username", "alice")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"username":"alice"`)
}
