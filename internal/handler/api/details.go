// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"html"
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/eventfx/internal/model"
	"github.com/olegiv/eventfx/internal/util"
)

// detailKey reads and validates view_id and locale from the query string.
// An empty locale is returned as is when allowBlank is set.
func detailKey(w http.ResponseWriter, r *http.Request, allowBlankLocale bool) (viewID, locale string, ok bool) {
	q := r.URL.Query()
	viewID = strings.TrimSpace(q.Get("view_id"))
	if viewID == "" {
		WriteBadRequest(w, "view_id is required")
		return "", "", false
	}

	locale = strings.TrimSpace(q.Get("locale"))
	if locale == "" && !allowBlankLocale {
		locale = util.DefaultLocale
	}
	if locale != "" && !util.IsValidLocale(locale) {
		WriteValidationError(w, "invalid locale")
		return "", "", false
	}
	return viewID, locale, true
}

// GetDetail handles GET /api/details?view_id=&locale=. A missing locale row
// falls back to the default locale.
func (h *Handler) GetDetail(w http.ResponseWriter, r *http.Request) {
	viewID, locale, ok := detailKey(w, r, false)
	if !ok {
		return
	}

	ctx := r.Context()
	detail, err := h.catalog.Detail(ctx, viewID, locale, func() (model.Detail, error) {
		return h.store.GetDetail(ctx, viewID, locale)
	})
	if err != nil {
		writeStoreError(w, r, err, "detail", "load")
		return
	}
	WriteJSON(w, http.StatusOK, detail)
}

// SaveDetail handles POST /api/details, upserting the (viewId, locale) row.
// Markup is stripped from the description, which is stored as markdown.
func (h *Handler) SaveDetail(w http.ResponseWriter, r *http.Request) {
	var in model.Detail
	if !decodeJSON(w, r, &in) {
		return
	}

	in.ViewID = strings.TrimSpace(in.ViewID)
	in.Locale = util.NormalizeLocale(in.Locale)
	if in.ViewID == "" {
		WriteValidationError(w, "viewId is required")
		return
	}
	if !util.IsValidSlug(in.ViewID) {
		WriteValidationError(w, "invalid viewId")
		return
	}
	if !util.IsValidLocale(in.Locale) {
		WriteValidationError(w, "invalid locale")
		return
	}

	in.Description = h.stripMarkup(in.Description)
	detail := in.Normalize()

	ctx := r.Context()
	if err := h.store.UpsertDetail(ctx, detail); err != nil {
		writeStoreError(w, r, err, "detail", "save")
		return
	}
	h.catalog.Invalidate(ctx)

	slog.Info("detail saved",
		"category", "catalog",
		"view_id", detail.ViewID,
		"locale", detail.Locale,
		"gallery", len(detail.GalleryURLs),
		"highlights", len(detail.Highlights),
	)
	WriteOK(w)
}

// DeleteDetail handles DELETE /api/details?view_id=[&locale=]. Without a
// locale every translation of the view is removed.
func (h *Handler) DeleteDetail(w http.ResponseWriter, r *http.Request) {
	viewID, locale, ok := detailKey(w, r, true)
	if !ok {
		return
	}

	ctx := r.Context()
	n, err := h.store.DeleteDetails(ctx, viewID, locale)
	if err != nil {
		writeStoreError(w, r, err, "detail", "delete")
		return
	}
	h.catalog.Invalidate(ctx)

	slog.Info("detail deleted", "category", "catalog", "view_id", viewID, "locale", locale, "rows", n)
	WriteOK(w)
}

// stripMarkup removes HTML from s while keeping markdown punctuation intact.
func (h *Handler) stripMarkup(s string) string {
	return html.UnescapeString(h.stripper.Sanitize(s))
}
