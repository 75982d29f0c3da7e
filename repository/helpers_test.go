package repository_test

import "time"

type staticConfig struct{}

func (staticConfig) GetSigningKey() string      { return "repository-test-signing-key-32-bytes" }
func (staticConfig) GetSigningMethod() string   { return "HS256" }
func (staticConfig) GetTokenTTL() time.Duration { return time.Hour }
func (staticConfig) GetIssuer() string          { return "" }
func (staticConfig) GetAudience() []string      { return nil }
func (staticConfig) GetEnforceActive() bool     { return true }
