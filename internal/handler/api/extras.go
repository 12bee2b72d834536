// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/olegiv/eventfx/internal/middleware"
	"github.com/olegiv/eventfx/internal/model"
	"github.com/olegiv/eventfx/internal/store"
	"github.com/olegiv/eventfx/internal/util"
)

// ListExtras handles GET /api/extras?service_id=&locale=[&include_inactive=true].
// Inactive extras are only listed for admins that ask for them.
func (h *Handler) ListExtras(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	serviceID, err := strconv.ParseInt(q.Get("service_id"), 10, 64)
	if err != nil || serviceID <= 0 {
		WriteBadRequest(w, "service_id is required")
		return
	}

	locale := util.NormalizeLocale(q.Get("locale"))
	if !util.IsValidLocale(locale) {
		WriteValidationError(w, "invalid locale")
		return
	}

	ctx := r.Context()
	arg := store.ListExtrasParams{
		ServiceID:       serviceID,
		Locale:          locale,
		IncludeInactive: q.Get("include_inactive") == "true" && middleware.GetPrincipal(r) != nil,
	}

	var extras []model.Extra
	if arg.IncludeInactive {
		extras, err = h.store.ListExtras(ctx, arg)
	} else {
		extras, err = h.catalog.Extras(ctx, serviceID, locale, func() ([]model.Extra, error) {
			return h.store.ListExtras(ctx, arg)
		})
	}
	if err != nil {
		writeStoreError(w, r, err, "extras", "list")
		return
	}
	WriteJSON(w, http.StatusOK, extras)
}

// validateExtra normalizes in and returns the first validation failure.
// A blank viewId is derived from the title.
func validateExtra(in *model.ExtraInput) string {
	in.Title = strings.TrimSpace(in.Title)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	in.ViewID = strings.TrimSpace(in.ViewID)
	in.Locale = util.NormalizeLocale(in.Locale)

	if in.Title == "" {
		return "title is required"
	}
	if in.ViewID == "" {
		in.ViewID = util.Slugify(in.Title)
	}
	if in.ViewID == "" {
		return "viewId is required"
	}
	if !util.IsValidSlug(in.ViewID) {
		return "viewId must be lowercase letters, digits and single hyphens"
	}
	if !util.IsValidLocale(in.Locale) {
		return "invalid locale"
	}
	return ""
}

// CreateExtra handles POST /api/extras.
func (h *Handler) CreateExtra(w http.ResponseWriter, r *http.Request) {
	var in model.ExtraInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.ServiceID <= 0 {
		WriteValidationError(w, "serviceId is required")
		return
	}
	if msg := validateExtra(&in); msg != "" {
		WriteValidationError(w, msg)
		return
	}
	if in.ImageURL == "" {
		WriteValidationError(w, "imageUrl is required")
		return
	}

	ctx := r.Context()
	if _, err := h.store.GetService(ctx, in.ServiceID); err != nil {
		writeStoreError(w, r, err, "service", "create extra for")
		return
	}

	extra, err := h.store.CreateExtra(ctx, store.CreateExtraParams{
		ServiceID: in.ServiceID,
		Title:     in.Title,
		ImageURL:  in.ImageURL,
		ViewID:    in.ViewID,
		Locale:    in.Locale,
		IsActive:  in.Active(),
	})
	if err != nil {
		writeStoreError(w, r, err, "extra", "create")
		return
	}
	h.catalog.Invalidate(ctx)

	slog.Info("extra created",
		"category", "catalog",
		"extra_id", extra.ID,
		"service_id", extra.ServiceID,
		"view_id", extra.ViewID,
	)
	WriteJSON(w, http.StatusCreated, extra)
}

// UpdateExtra handles PUT /api/extras/{id}. Omitted viewId, locale and
// isActive keep their current values. A new viewId carries the extra's
// details along.
func (h *Handler) UpdateExtra(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "extra")
	if !ok {
		return
	}

	var in model.ExtraInput
	if !decodeJSON(w, r, &in) {
		return
	}

	ctx := r.Context()
	current, err := h.store.GetExtra(ctx, id)
	if err != nil {
		writeStoreError(w, r, err, "extra", "update")
		return
	}

	if strings.TrimSpace(in.ViewID) == "" {
		in.ViewID = current.ViewID
	}
	if strings.TrimSpace(in.Locale) == "" {
		in.Locale = current.Locale
	}
	if in.IsActive == nil {
		in.IsActive = &current.IsActive
	}
	if msg := validateExtra(&in); msg != "" {
		WriteValidationError(w, msg)
		return
	}

	err = h.store.UpdateExtraCascade(ctx, store.UpdateExtraParams{
		ID:       id,
		Title:    in.Title,
		ImageURL: in.ImageURL,
		ViewID:   in.ViewID,
		Locale:   in.Locale,
		IsActive: in.Active(),
	})
	if err != nil {
		writeStoreError(w, r, err, "extra", "update")
		return
	}
	h.catalog.Invalidate(ctx)

	attrs := []any{"category", "catalog", "extra_id", id}
	if current.ViewID != in.ViewID {
		attrs = append(attrs, "old_view_id", current.ViewID, "view_id", in.ViewID)
	}
	slog.Info("extra updated", attrs...)
	WriteOK(w)
}

// DeleteExtra handles DELETE /api/extras/{id}[?locale=]. Its details are
// removed first, restricted to locale when given.
func (h *Handler) DeleteExtra(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "extra")
	if !ok {
		return
	}

	locale := strings.TrimSpace(r.URL.Query().Get("locale"))
	if locale != "" && !util.IsValidLocale(locale) {
		WriteValidationError(w, "invalid locale")
		return
	}

	ctx := r.Context()
	if err := h.store.DeleteExtraCascade(ctx, id, locale); err != nil {
		writeStoreError(w, r, err, "extra", "delete")
		return
	}
	h.catalog.Invalidate(ctx)

	slog.Info("extra deleted", "category", "catalog", "extra_id", id, "locale", locale)
	WriteOK(w)
}
