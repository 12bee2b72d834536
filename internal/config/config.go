// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads server and backoffice settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the catalog server configuration.
type Config struct {
	DBPath        string `env:"EVENTFX_DB_PATH" envDefault:"./data/eventfx.db"`
	SessionSecret string `env:"EVENTFX_SESSION_SECRET,required"`
	ServerHost    string `env:"EVENTFX_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"EVENTFX_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"EVENTFX_ENV" envDefault:"development"`
	LogLevel      string `env:"EVENTFX_LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"EVENTFX_LOG_FORMAT" envDefault:"text"`

	// Origins allowed to call the API with credentials, e.g. the public site.
	CORSOrigins []string `env:"EVENTFX_CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`

	// Cache configuration
	RedisURL     string `env:"EVENTFX_REDIS_URL"`                          // Optional Redis URL for the read cache
	CachePrefix  string `env:"EVENTFX_CACHE_PREFIX" envDefault:"eventfx:"` // Redis key prefix
	CacheTTL     int    `env:"EVENTFX_CACHE_TTL" envDefault:"60"`          // Read cache TTL in seconds
	CacheMaxSize int    `env:"EVENTFX_CACHE_MAX_SIZE" envDefault:"1000"`   // Max memory cache entries

	// Seeding
	AdminUsername string `env:"EVENTFX_ADMIN_USERNAME"`
	AdminPassword string `env:"EVENTFX_ADMIN_PASSWORD"`
	SeedCatalog   bool   `env:"EVENTFX_SEED_CATALOG" envDefault:"false"`

	// Audit events older than this are pruned nightly.
	EventRetentionDays int `env:"EVENTFX_EVENT_RETENTION_DAYS" envDefault:"30"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// CacheTTLDuration returns CacheTTL as a time.Duration.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// ShouldSeedAdmin reports whether admin credentials were supplied.
func (c Config) ShouldSeedAdmin() bool {
	return c.AdminUsername != "" && c.AdminPassword != ""
}

// MinSessionSecretLength is the minimum length of EVENTFX_SESSION_SECRET,
// which doubles as the CSRF authentication key.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("EVENTFX_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("EVENTFX_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret))
	}
	for _, weak := range knownWeakSecrets {
		if c.SessionSecret == weak {
			return errors.New("EVENTFX_SESSION_SECRET is a known default value and must not be used")
		}
	}

	if c.CacheTTL <= 0 {
		return fmt.Errorf("EVENTFX_CACHE_TTL must be positive, got %d", c.CacheTTL)
	}
	if c.EventRetentionDays <= 0 {
		return fmt.Errorf("EVENTFX_EVENT_RETENTION_DAYS must be positive, got %d", c.EventRetentionDays)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("EVENTFX_LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}

	for i, origin := range c.CORSOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("EVENTFX_CORS_ORIGINS entry %q is not an origin", origin)
		}
		c.CORSOrigins[i] = origin
	}

	return nil
}

// OriginHosts returns the host[:port] part of every CORS origin.
func (c Config) OriginHosts() []string {
	hosts := make([]string, 0, len(c.CORSOrigins))
	for _, origin := range c.CORSOrigins {
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			hosts = append(hosts, u.Host)
		}
	}
	return hosts
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
