package config

import (
	"errors"
	"net"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"

	auth "github.com/webafan/portfolio-auth"
)

// Validate checks every section. A failure carries the auth config text
// code so auth.KindOf reports it as KindConfig.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Server),
		validation.Field(&c.Auth),
		validation.Field(&c.Store),
		validation.Field(&c.Log),
		validation.Field(&c.Metrics),
	)
	if err == nil {
		return nil
	}

	return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid configuration").
		WithTextCode(auth.TextCodeConfig).
		WithCode(goerrors.CodeInternal).
		WithMetadata(validationMetadata(err))
}

func (s ServerConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&s.BasePath, validation.Required),
		validation.Field(&s.ShutdownTimeout, validation.By(nonNegativeDuration)),
	)
}

func (a AuthConfig) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.SigningKey, validation.Required, validation.Length(auth.MinSigningKeyLength, 0)),
		validation.Field(&a.SigningMethod, validation.Required, validation.In("HS256", "HS384", "HS512")),
		validation.Field(&a.TokenTTL, validation.By(nonNegativeDuration)),
		validation.Field(&a.Hasher, validation.Required, validation.In(auth.HasherBcrypt, auth.HasherArgon2id)),
		validation.Field(&a.BcryptCost, validation.Min(0), validation.Max(31)),
		validation.Field(&a.TokenLookup, validation.Required),
		validation.Field(&a.AuthScheme, validation.Required),
		validation.Field(&a.ContextKey, validation.Required),
	)
}

func (s StoreConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Driver, validation.Required, validation.In("sqlite", "sqlite3", "postgres", "pg")),
		validation.Field(&s.DSN, validation.Required),
	)
}

func (l LogConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.Required, validation.In("debug", "info", "warn", "error")),
		validation.Field(&l.Format, validation.Required, validation.In("text", "json")),
	)
}

func (m MetricsConfig) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Path, validation.By(func(v any) error {
			if m.Enabled && m.Path == "" {
				return errors.New("is required when metrics are enabled")
			}
			return nil
		})),
	)
}

func nonNegativeDuration(v any) error {
	d, _ := v.(time.Duration)
	if d < 0 {
		return errors.New("must not be negative")
	}
	return nil
}

func validationMetadata(err error) map[string]any {
	out := map[string]any{}
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		out["error"] = err.Error()
		return out
	}
	for field, ferr := range verrs {
		var nested validation.Errors
		if errors.As(ferr, &nested) {
			out[field] = validationMetadata(nested)
			continue
		}
		out[field] = ferr.Error()
	}
	return out
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
