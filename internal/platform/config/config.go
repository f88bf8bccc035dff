// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (backend client, session store) via constructors.
  - Single Origin: Every backend call resolves against API_BASE_URL.

Site copy (owner name, biography, optional static courses) lives in a YAML
profile loaded by the content package, not here.
*/
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

// Session store backends accepted by SESSION_STORE.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// # Configuration Schema

// Config holds all runtime configuration for the scholar web server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// PublicBaseURL is the canonical origin used in sitemap links.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`

	// Content REST API
	APIBaseURL    string        `env:"API_BASE_URL,required"`
	APITimeout    time.Duration `env:"API_TIMEOUT"     envDefault:"10s"`
	APIRetryCount int           `env:"API_RETRY_COUNT" envDefault:"2"`

	// Session storage: memory | redis | postgres
	SessionStore       string        `env:"SESSION_STORE"        envDefault:"memory"`
	SessionSecret      string        `env:"SESSION_SECRET,required"`
	SessionFallbackTTL time.Duration `env:"SESSION_FALLBACK_TTL" envDefault:"20m"`

	// Key-Value Store (Redis), required when SESSION_STORE=redis
	RedisURL string `env:"REDIS_URL"`

	// Relational Database (PostgreSQL), required when SESSION_STORE=postgres
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath reads the SQL migrations from disk; empty uses the embedded set.
	MigrationPath string `env:"MIGRATION_PATH"`

	// CredentialPublicKeyPath optionally points to the PEM key that signs
	// admin credentials. Without it, expiry is read from unverified claims.
	CredentialPublicKeyPath string `env:"CREDENTIAL_PUBLIC_KEY_PATH"`

	// SiteProfilePath is the YAML file holding the site copy.
	SiteProfilePath string `env:"SITE_PROFILE_PATH" envDefault:"./site.yaml"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field rules that struct tags cannot express.
func (c *Config) Validate() error {

	// 1. The API origin must be absolute
	parsed, err := url.Parse(c.APIBaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("config: API_BASE_URL must be an absolute URL, got %q", c.APIBaseURL)
	}

	// 2. The selected session store must have its connection string
	switch c.SessionStore {
	case StoreMemory:
	case StoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("config: REDIS_URL is required when SESSION_STORE=redis")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required when SESSION_STORE=postgres")
		}
	default:
		return fmt.Errorf("config: unknown SESSION_STORE %q", c.SessionStore)
	}

	// 3. gorilla/csrf requires a 32-byte authentication key
	if len(c.SessionSecret) < 32 {
		return fmt.Errorf("config: SESSION_SECRET must be at least 32 bytes")
	}

	if c.SessionFallbackTTL <= 0 {
		return fmt.Errorf("config: SESSION_FALLBACK_TTL must be positive")
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// CSRFKey returns the first 32 bytes of the session secret.
func (c *Config) CSRFKey() []byte {
	return []byte(c.SessionSecret)[:32]
}
