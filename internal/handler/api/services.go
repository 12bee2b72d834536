// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/eventfx/internal/model"
	"github.com/olegiv/eventfx/internal/store"
)

// ListServices handles GET /api/services.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	services, err := h.catalog.Services(ctx, func() ([]model.Service, error) {
		return h.store.ListServices(ctx)
	})
	if err != nil {
		writeStoreError(w, r, err, "services", "list")
		return
	}
	WriteJSON(w, http.StatusOK, services)
}

// CreateService handles POST /api/services.
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	var in model.ServiceInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in.Title = strings.TrimSpace(in.Title)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if in.Title == "" {
		WriteValidationError(w, "title is required")
		return
	}

	ctx := r.Context()
	count, err := h.store.CountServices(ctx)
	if err != nil {
		writeStoreError(w, r, err, "service", "create")
		return
	}

	svc, err := h.store.CreateService(ctx, store.CreateServiceParams{
		Title:     in.Title,
		ImageURL:  in.ImageURL,
		SortOrder: int(count),
	})
	if err != nil {
		writeStoreError(w, r, err, "service", "create")
		return
	}
	h.catalog.Invalidate(ctx)

	slog.Info("service created", "category", "catalog", "service_id", svc.ID, "title", svc.Title)
	WriteJSON(w, http.StatusCreated, svc)
}

// UpdateService handles PUT /api/services/{id}.
func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "service")
	if !ok {
		return
	}

	var in model.ServiceInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		WriteValidationError(w, "title is required")
		return
	}

	ctx := r.Context()
	if err := h.store.UpdateService(ctx, id, in.Title, strings.TrimSpace(in.ImageURL)); err != nil {
		writeStoreError(w, r, err, "service", "update")
		return
	}
	h.catalog.Invalidate(ctx)

	slog.Info("service updated", "category", "catalog", "service_id", id)
	WriteOK(w)
}

// DeleteService handles DELETE /api/services/{id}. Extras and their
// details go with it.
func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "service")
	if !ok {
		return
	}

	ctx := r.Context()
	if err := h.store.DeleteServiceCascade(ctx, id); err != nil {
		writeStoreError(w, r, err, "service", "delete")
		return
	}
	h.catalog.Invalidate(ctx)

	slog.Info("service deleted", "category", "catalog", "service_id", id)
	WriteOK(w)
}
