// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared fixtures for tests that need a migrated
// database, a seeded admin or a catalog read cache.
package testutil

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/olegiv/eventfx/internal/cache"
	"github.com/olegiv/eventfx/internal/store"
)

// Credentials of the admin seeded by TestStore.
const (
	AdminUsername = "admin"
	AdminPassword = "Fogo-de-artificio-2026"
)

// TestLogger creates a test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent discards everything.
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestDB opens a migrated sqlite database in a temp dir, closed on cleanup.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "eventfx-test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

// TestStore returns a store over TestDB with the admin seeded.
func TestStore(t *testing.T) *store.Store {
	t.Helper()

	s := store.NewStore(TestDB(t))
	if err := store.SeedAdmin(context.Background(), s.Queries, AdminUsername, AdminPassword); err != nil {
		t.Fatalf("SeedAdmin: %v", err)
	}
	return s
}

// TestCatalog returns a catalog read cache over a memory backend.
func TestCatalog(t *testing.T) *cache.Catalog {
	t.Helper()

	mem := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute, MaxSize: 100})
	t.Cleanup(func() { _ = mem.Close() })
	return cache.NewCatalog(mem, time.Minute)
}
