// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/scholar/internal/platform/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

/*
TestLoad_Defaults verifies that only the required variables need to be set.
*/
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://localhost:5000")
	t.Setenv("SESSION_SECRET", testSecret)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, config.StoreMemory, cfg.SessionStore)
	assert.Equal(t, 20*time.Minute, cfg.SessionFallbackTTL)
	assert.Equal(t, 2, cfg.APIRetryCount)
	assert.True(t, cfg.IsDevelopment())
	assert.Len(t, cfg.CSRFKey(), 32)
}

/*
TestLoad_MissingRequired verifies that a missing API origin fails fast.
*/
func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("SESSION_SECRET", testSecret)

	_, err := config.Load()
	assert.Error(t, err)
}

/*
TestValidate covers the cross-field rules.
*/
func TestValidate(t *testing.T) {
	base := func() config.Config {
		return config.Config{
			APIBaseURL:         "https://api.example.org",
			SessionStore:       config.StoreMemory,
			SessionSecret:      testSecret,
			SessionFallbackTTL: time.Minute,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr bool
	}{
		{"valid", func(c *config.Config) {}, false},
		{"relative_api_url", func(c *config.Config) { c.APIBaseURL = "/api" }, true},
		{"redis_without_url", func(c *config.Config) { c.SessionStore = config.StoreRedis }, true},
		{"redis_with_url", func(c *config.Config) {
			c.SessionStore = config.StoreRedis
			c.RedisURL = "redis://localhost:6379/0"
		}, false},
		{"postgres_without_url", func(c *config.Config) { c.SessionStore = config.StorePostgres }, true},
		{"unknown_store", func(c *config.Config) { c.SessionStore = "etcd" }, true},
		{"short_secret", func(c *config.Config) { c.SessionSecret = "short" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
