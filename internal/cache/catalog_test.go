// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/olegiv/eventfx/internal/model"
)

func TestCatalog_ServicesCachedUntilInvalidate(t *testing.T) {
	cat := NewCatalog(newTestMemoryCache(t, 0), time.Hour)
	ctx := context.Background()

	calls := 0
	load := func() ([]model.Service, error) {
		calls++
		return []model.Service{{ID: int64(calls), Title: "Pirotecnia"}}, nil
	}

	first, err := cat.Services(ctx, load)
	if err != nil {
		t.Fatalf("Services: %v", err)
	}
	second, _ := cat.Services(ctx, load)
	if calls != 1 || first[0].ID != second[0].ID {
		t.Fatalf("expected cached result, calls=%d", calls)
	}

	cat.Invalidate(ctx)

	third, _ := cat.Services(ctx, load)
	if calls != 2 || third[0].ID != 2 {
		t.Errorf("expected reload after Invalidate, calls=%d third=%+v", calls, third)
	}
}

func TestCatalog_ExtrasKeyedByServiceAndLocale(t *testing.T) {
	cat := NewCatalog(newTestMemoryCache(t, 0), time.Hour)
	ctx := context.Background()

	calls := 0
	load := func() ([]model.Extra, error) {
		calls++
		return []model.Extra{}, nil
	}

	_, _ = cat.Extras(ctx, 1, "pt", load)
	_, _ = cat.Extras(ctx, 1, "pt", load)
	_, _ = cat.Extras(ctx, 1, "en", load)
	_, _ = cat.Extras(ctx, 2, "pt", load)

	if calls != 3 {
		t.Errorf("loader calls = %d, want 3", calls)
	}
}

func TestCatalog_DetailNotFoundIsNotCached(t *testing.T) {
	cat := NewCatalog(newTestMemoryCache(t, 0), time.Hour)
	ctx := context.Background()
	notFound := errors.New("not found")

	calls := 0
	_, err := cat.Detail(ctx, "co2", "pt", func() (model.Detail, error) {
		calls++
		return model.Detail{}, notFound
	})
	if !errors.Is(err, notFound) {
		t.Fatalf("err = %v", err)
	}

	d, err := cat.Detail(ctx, "co2", "pt", func() (model.Detail, error) {
		calls++
		return model.Detail{ViewID: "co2", Description: "now exists"}, nil
	})
	if err != nil || d.Description != "now exists" || calls != 2 {
		t.Errorf("d=%+v err=%v calls=%d", d, err, calls)
	}
}

func TestCatalog_Stats(t *testing.T) {
	cat := NewCatalog(newTestMemoryCache(t, 0), time.Hour)
	if _, ok := cat.Stats(); !ok {
		t.Error("memory backend should report stats")
	}
}

func TestNew_MemoryBackend(t *testing.T) {
	c, backend := New(Config{DefaultTTL: time.Minute, MaxSize: 10})
	defer func() { _ = c.Close() }()

	if backend != BackendMemory {
		t.Errorf("backend = %q, want memory", backend)
	}
	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("cache type = %T, want *MemoryCache", c)
	}
}

func TestNew_RedisFallback(t *testing.T) {
	c, backend := New(Config{RedisURL: "redis://127.0.0.1:1/0", DefaultTTL: time.Minute})
	defer func() { _ = c.Close() }()

	if backend != BackendMemory {
		t.Errorf("backend = %q, want memory fallback", backend)
	}
}
