// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret-key-32-bytes-long!!!"

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	setEnv(t, "EVENTFX_SESSION_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "./data/eventfx.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/eventfx.db")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want %q", cfg.Env, "development")
	}
	if cfg.CacheTTLDuration() != time.Minute {
		t.Errorf("CacheTTLDuration = %v, want 1m", cfg.CacheTTLDuration())
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:5173" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.UseRedisCache() {
		t.Error("UseRedisCache should be false without EVENTFX_REDIS_URL")
	}
	if cfg.ShouldSeedAdmin() {
		t.Error("ShouldSeedAdmin should be false without credentials")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	setEnv(t, "EVENTFX_SESSION_SECRET", testSecret)
	setEnv(t, "EVENTFX_DB_PATH", "/custom/path.db")
	setEnv(t, "EVENTFX_SERVER_HOST", "0.0.0.0")
	setEnv(t, "EVENTFX_SERVER_PORT", "3000")
	setEnv(t, "EVENTFX_ENV", "production")
	setEnv(t, "EVENTFX_CORS_ORIGINS", "https://example.com/, http://localhost:3000")
	setEnv(t, "EVENTFX_REDIS_URL", "redis://localhost:6379/0")
	setEnv(t, "EVENTFX_ADMIN_USERNAME", "admin")
	setEnv(t, "EVENTFX_ADMIN_PASSWORD", "pw")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.ServerAddr() != "0.0.0.0:3000" {
		t.Errorf("ServerAddr = %q", cfg.ServerAddr())
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment should be false in production")
	}
	want := []string{"https://example.com", "http://localhost:3000"}
	for i, origin := range want {
		if cfg.CORSOrigins[i] != origin {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.CORSOrigins[i], origin)
		}
	}
	hosts := cfg.OriginHosts()
	if len(hosts) != 2 || hosts[0] != "example.com" || hosts[1] != "localhost:3000" {
		t.Errorf("OriginHosts = %v", hosts)
	}
	if !cfg.UseRedisCache() || !cfg.ShouldSeedAdmin() {
		t.Error("expected redis cache and admin seeding to be enabled")
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"missing secret", map[string]string{}, "EVENTFX_SESSION_SECRET"},
		{"short secret", map[string]string{"EVENTFX_SESSION_SECRET": "short"}, "at least 32 bytes"},
		{"weak secret", map[string]string{"EVENTFX_SESSION_SECRET": "change-me-to-32-byte-secret-key!"}, "known default"},
		{"zero ttl", map[string]string{"EVENTFX_SESSION_SECRET": testSecret, "EVENTFX_CACHE_TTL": "0"}, "EVENTFX_CACHE_TTL"},
		{"bad origin", map[string]string{"EVENTFX_SESSION_SECRET": testSecret, "EVENTFX_CORS_ORIGINS": "example.com"}, "not an origin"},
		{"bad log format", map[string]string{"EVENTFX_SESSION_SECRET": testSecret, "EVENTFX_LOG_FORMAT": "xml"}, "EVENTFX_LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.env {
				setEnv(t, k, v)
			}

			_, err := Load()
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	if hasMinimumEntropy("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa") {
		t.Error("single class should not pass")
	}
	if !hasMinimumEntropy("Abc123!x") {
		t.Error("four classes should pass")
	}
}

func TestLoadBackoffice(t *testing.T) {
	os.Clearenv()

	cfg, err := LoadBackoffice()
	if err != nil {
		t.Fatalf("LoadBackoffice() error: %v", err)
	}
	if cfg.APIURL != "http://localhost:8080" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.Locale != "pt" {
		t.Errorf("Locale = %q, want pt", cfg.Locale)
	}
	if cfg.Debounce != 150*time.Millisecond {
		t.Errorf("Debounce = %v, want 150ms", cfg.Debounce)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Timeout)
	}

	setEnv(t, "EVENTFX_API_URL", "not a url")
	if _, err := LoadBackoffice(); err == nil {
		t.Error("LoadBackoffice should reject a relative API URL")
	}

	setEnv(t, "EVENTFX_API_URL", "http://api.local")
	setEnv(t, "EVENTFX_BACKOFFICE_PREFETCH", "0")
	cfg, err = LoadBackoffice()
	if err != nil {
		t.Fatalf("LoadBackoffice() error: %v", err)
	}
	if cfg.PrefetchLimit != 1 {
		t.Errorf("PrefetchLimit = %d, want clamped to 1", cfg.PrefetchLimit)
	}
}
