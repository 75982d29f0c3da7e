package config

import (
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	auth "github.com/webafan/portfolio-auth"
)

// EnvPrefix marks the environment variables read by Load. Nested keys use
// a double underscore: AUTHD_AUTH__SIGNING_KEY sets auth.signing_key.
const EnvPrefix = "AUTHD_"

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Auth    AuthConfig    `koanf:"auth"`
	Store   StoreConfig   `koanf:"store"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	BasePath        string        `koanf:"base_path"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type AuthConfig struct {
	SigningKey    string        `koanf:"signing_key"`
	SigningMethod string        `koanf:"signing_method"`
	TokenTTL      time.Duration `koanf:"token_ttl"`
	Issuer        string        `koanf:"issuer"`
	Audience      []string      `koanf:"audience"`
	Hasher        string        `koanf:"hasher"`
	BcryptCost    int           `koanf:"bcrypt_cost"`
	EnforceActive bool          `koanf:"enforce_active"`
	TokenLookup   string        `koanf:"token_lookup"`
	AuthScheme    string        `koanf:"auth_scheme"`
	ContextKey    string        `koanf:"context_key"`
}

type StoreConfig struct {
	Driver      string `koanf:"driver"`
	DSN         string `koanf:"dsn"`
	AutoMigrate bool   `koanf:"auto_migrate"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

var (
	_ auth.Config      = (*Config)(nil)
	_ auth.RouteConfig = (*Config)(nil)
)

// Defaults returns the flattened default values
func Defaults() map[string]any {
	return map[string]any{
		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.base_path":        "/api/auth",
		"server.cors_origins":     []string{"http://localhost:3000"},
		"server.shutdown_timeout": "10s",
		"auth.signing_method":     "HS256",
		"auth.token_ttl":          "24h",
		"auth.hasher":             auth.HasherBcrypt,
		"auth.bcrypt_cost":        0,
		"auth.enforce_active":     true,
		"auth.token_lookup":       "header:Authorization",
		"auth.auth_scheme":        "Bearer",
		"auth.context_key":        auth.DefaultContextKey,
		"store.driver":            "sqlite",
		"store.dsn":               "file:authd.db?cache=shared",
		"store.auto_migrate":      true,
		"log.level":               "info",
		"log.format":              "text",
		"metrics.enabled":         true,
		"metrics.path":            "/metrics",
	}
}

// flagKeys maps command line flag names to config keys
var flagKeys = map[string]string{
	"host":           "server.host",
	"port":           "server.port",
	"base-path":      "server.base_path",
	"store-driver":   "store.driver",
	"dsn":            "store.dsn",
	"log-level":      "log.level",
	"log-format":     "log.format",
	"token-ttl":      "auth.token_ttl",
	"enforce-active": "auth.enforce_active",
}

// Load builds the configuration from defaults, the optional YAML file at
// path, AUTHD_ environment variables and changed flags, in that order of
// precedence. The result is validated.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load config defaults")
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to load config file").
				WithMetadata(map[string]any{"path": path})
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load config from environment")
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, flagKey(flags)), nil); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to load config flags")
		}
	}

	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to decode config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// listKeys are split on commas when read from the environment
var listKeys = map[string]bool{
	"server.cors_origins": true,
	"auth.audience":       true,
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func envValue(name, value string) (string, any) {
	key := envKey(name)
	if !listKeys[key] {
		return key, value
	}

	items := []string{}
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return key, items
}

func flagKey(fs *pflag.FlagSet) func(f *pflag.Flag) (string, any) {
	return func(f *pflag.Flag) (string, any) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return "", nil
		}
		return key, posflag.FlagVal(fs, f)
	}
}

// Addr is the host:port the server listens on
func (c *Config) Addr() string {
	return joinHostPort(c.Server.Host, c.Server.Port)
}

func (c *Config) GetSigningKey() string      { return c.Auth.SigningKey }
func (c *Config) GetSigningMethod() string   { return c.Auth.SigningMethod }
func (c *Config) GetTokenTTL() time.Duration { return c.Auth.TokenTTL }
func (c *Config) GetIssuer() string          { return c.Auth.Issuer }
func (c *Config) GetAudience() []string      { return c.Auth.Audience }
func (c *Config) GetEnforceActive() bool     { return c.Auth.EnforceActive }
func (c *Config) GetTokenLookup() string     { return c.Auth.TokenLookup }
func (c *Config) GetAuthScheme() string      { return c.Auth.AuthScheme }
func (c *Config) GetContextKey() string      { return c.Auth.ContextKey }
