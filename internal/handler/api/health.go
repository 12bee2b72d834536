// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/olegiv/eventfx/internal/cache"
	"github.com/olegiv/eventfx/internal/middleware"
	"github.com/olegiv/eventfx/internal/model"
	"github.com/olegiv/eventfx/internal/scheduler"
)

// HealthStatus is the body of GET /api/health.
type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache,omitempty"`
	Version  string `json:"version"`
}

// Health handles GET /api/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := HealthStatus{Status: "healthy", Database: "healthy", Cache: h.cacheBackend, Version: h.build.Version}
	code := http.StatusOK
	if err := h.store.DB().PingContext(ctx); err != nil {
		status.Status = "degraded"
		status.Database = "unreachable"
		code = http.StatusServiceUnavailable
	}
	WriteJSON(w, code, status)
}

// PingResponse is the body of GET /api/admin/ping.
type PingResponse struct {
	OK   bool            `json:"ok"`
	User model.Principal `json:"user"`
}

// Ping handles GET /api/admin/ping, a cheap session check.
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, PingResponse{OK: true, User: *middleware.GetPrincipal(r)})
}

// ListEvents handles GET /api/admin/events?limit=, newest first.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			WriteBadRequest(w, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	events, err := h.store.ListEvents(r.Context(), limit)
	if err != nil {
		writeStoreError(w, r, err, "events", "list")
		return
	}
	WriteJSON(w, http.StatusOK, events)
}

// CacheStatsResponse is the body of GET /api/admin/cache.
type CacheStatsResponse struct {
	Backend string       `json:"backend"`
	Stats   *cache.Stats `json:"stats,omitempty"`
}

// CacheStats handles GET /api/admin/cache.
func (h *Handler) CacheStats(w http.ResponseWriter, _ *http.Request) {
	resp := CacheStatsResponse{Backend: h.cacheBackend}
	if stats, ok := h.catalog.Stats(); ok {
		resp.Stats = &stats
	}
	WriteJSON(w, http.StatusOK, resp)
}

// ListJobs handles GET /api/admin/jobs.
func (h *Handler) ListJobs(w http.ResponseWriter, _ *http.Request) {
	if h.jobs == nil {
		WriteJSON(w, http.StatusOK, []scheduler.JobInfo{})
		return
	}
	WriteJSON(w, http.StatusOK, h.jobs.List())
}
