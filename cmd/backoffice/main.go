// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/olegiv/eventfx/internal/backoffice"
	"github.com/olegiv/eventfx/internal/config"
	"github.com/olegiv/eventfx/internal/logging"
	"github.com/olegiv/eventfx/internal/remote"
)

func main() {
	apiURL := flag.String("api", "", "Catalog API base URL (overrides EVENTFX_API_URL)")
	flag.Parse()

	if err := run(*apiURL); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(apiURL string) error {
	_ = godotenv.Load()

	if apiURL != "" {
		_ = os.Setenv("EVENTFX_API_URL", apiURL)
	}
	cfg, err := config.LoadBackoffice()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(logging.NewHandler(os.Stderr, "text", logging.ParseLevel(cfg.LogLevel)))
	slog.SetDefault(logger)

	client, err := remote.New(remote.Options{
		BaseURL: cfg.APIURL,
		Timeout: cfg.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	ctrl := backoffice.New(client, backoffice.Options{
		Locale:        cfg.Locale,
		Debounce:      cfg.Debounce,
		PrefetchLimit: cfg.PrefetchLimit,
		Logger:        logger,
	})
	defer ctrl.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sh := &shell{
		ctx:    ctx,
		cfg:    cfg,
		auth:   client,
		ctrl:   ctrl,
		in:     bufio.NewScanner(os.Stdin),
		out:    os.Stdout,
		prompt: true,
	}
	return sh.run()
}
