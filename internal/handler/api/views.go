// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/eventfx/internal/model"
	"github.com/olegiv/eventfx/internal/store"
	"github.com/olegiv/eventfx/internal/util"
	"github.com/olegiv/eventfx/internal/views"
)

// ListViews handles GET /api/views with the ids that have built-in pages.
func (h *Handler) ListViews(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, h.views.IDs())
}

// GetView handles GET /api/views/{viewId}?locale=. Stored content wins over
// the built-in page.
func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	viewID := chi.URLParam(r, "viewId")
	locale := util.NormalizeLocale(r.URL.Query().Get("locale"))
	if !util.IsValidLocale(locale) {
		WriteValidationError(w, "invalid locale")
		return
	}

	ctx := r.Context()
	source := views.SourceStored
	detail, err := h.catalog.Detail(ctx, viewID, locale, func() (model.Detail, error) {
		return h.store.GetDetail(ctx, viewID, locale)
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		var found bool
		if detail, found = h.views.Builtin(viewID, locale); !found {
			WriteNotFound(w, "view not found")
			return
		}
		source = views.SourceBuiltin
	case err != nil:
		writeStoreError(w, r, err, "view", "load")
		return
	}

	if strings.TrimSpace(detail.ViewID) == "" {
		detail.ViewID = viewID
	}
	page, err := h.views.Render(detail, source)
	if err != nil {
		writeStoreError(w, r, err, "view", "render")
		return
	}
	WriteJSON(w, http.StatusOK, page)
}
