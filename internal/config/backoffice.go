// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/text/language"
)

// Backoffice holds the terminal backoffice configuration.
type Backoffice struct {
	APIURL   string        `env:"EVENTFX_API_URL" envDefault:"http://localhost:8080"`
	Username string        `env:"EVENTFX_BACKOFFICE_USERNAME"`
	Password string        `env:"EVENTFX_BACKOFFICE_PASSWORD"`
	Locale   string        `env:"EVENTFX_BACKOFFICE_LOCALE" envDefault:"pt"`
	Debounce time.Duration `env:"EVENTFX_BACKOFFICE_DEBOUNCE" envDefault:"150ms"`
	Timeout  time.Duration `env:"EVENTFX_BACKOFFICE_TIMEOUT" envDefault:"10s"`

	// Concurrent extra-count fetches when listing services.
	PrefetchLimit int    `env:"EVENTFX_BACKOFFICE_PREFETCH" envDefault:"4"`
	LogLevel      string `env:"EVENTFX_LOG_LEVEL" envDefault:"warn"`
}

// LoadBackoffice parses the backoffice settings.
func LoadBackoffice() (*Backoffice, error) {
	cfg := &Backoffice{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing backoffice config: %w", err)
	}

	u, err := url.Parse(cfg.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("EVENTFX_API_URL %q is not an absolute URL", cfg.APIURL)
	}
	if _, err := language.Parse(cfg.Locale); err != nil {
		return nil, fmt.Errorf("EVENTFX_BACKOFFICE_LOCALE %q: %w", cfg.Locale, err)
	}
	if cfg.Debounce < 0 {
		return nil, fmt.Errorf("EVENTFX_BACKOFFICE_DEBOUNCE must not be negative, got %s", cfg.Debounce)
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("EVENTFX_BACKOFFICE_TIMEOUT must be positive, got %s", cfg.Timeout)
	}
	if cfg.PrefetchLimit < 1 {
		cfg.PrefetchLimit = 1
	}

	return cfg, nil
}
