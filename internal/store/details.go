// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/olegiv/eventfx/internal/model"
	"github.com/olegiv/eventfx/internal/util"
)

// getDetail prefers the requested locale and falls back to the default one.
const getDetail = `SELECT view_id, locale, description, gallery_urls, highlights
FROM service_details
WHERE view_id = ? AND locale IN (?, ?)
ORDER BY (locale = ?) DESC
LIMIT 1`

// GetDetail returns the detail of viewID in locale, or the default-locale
// row when locale has none. ErrNotFound when neither exists.
func (q *Queries) GetDetail(ctx context.Context, viewID, locale string) (model.Detail, error) {
	var (
		d                   model.Detail
		gallery, highlights string
	)
	err := q.db.QueryRowContext(ctx, getDetail, viewID, locale, util.DefaultLocale, locale).
		Scan(&d.ViewID, &d.Locale, &d.Description, &gallery, &highlights)
	if err != nil {
		return model.Detail{}, translate(err)
	}

	if err := decodeList(gallery, &d.GalleryURLs); err != nil {
		return model.Detail{}, fmt.Errorf("decoding gallery of %s/%s: %w", d.ViewID, d.Locale, err)
	}
	if err := decodeList(highlights, &d.Highlights); err != nil {
		return model.Detail{}, fmt.Errorf("decoding highlights of %s/%s: %w", d.ViewID, d.Locale, err)
	}
	return d.Normalize(), nil
}

// decodeList unmarshals a JSON array column. Blank columns decode as empty.
func decodeList[T any](raw string, dst *[]T) error {
	if raw == "" || raw == "null" {
		*dst = []T{}
		return nil
	}
	return json.Unmarshal([]byte(raw), dst)
}

const upsertDetail = `INSERT INTO service_details (view_id, locale, description, gallery_urls, highlights)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(view_id, locale) DO UPDATE SET
    description = excluded.description,
    gallery_urls = excluded.gallery_urls,
    highlights = excluded.highlights,
    updated_at = CURRENT_TIMESTAMP`

// UpsertDetail writes the detail keyed by (ViewID, Locale), replacing any
// existing row.
func (q *Queries) UpsertDetail(ctx context.Context, d model.Detail) error {
	d = d.Normalize()

	gallery, err := json.Marshal(d.GalleryURLs)
	if err != nil {
		return fmt.Errorf("encoding gallery: %w", err)
	}
	highlights, err := json.Marshal(d.Highlights)
	if err != nil {
		return fmt.Errorf("encoding highlights: %w", err)
	}

	if _, err := q.db.ExecContext(ctx, upsertDetail,
		d.ViewID, d.Locale, d.Description, string(gallery), string(highlights)); err != nil {
		return fmt.Errorf("upserting detail: %w", err)
	}
	return nil
}

const deleteDetailLocale = `DELETE FROM service_details WHERE view_id = ? AND locale = ?`

const deleteDetailAll = `DELETE FROM service_details WHERE view_id = ?`

// DeleteDetails removes the details of viewID in locale, or in every locale
// when locale is empty. It returns the number of rows removed.
func (q *Queries) DeleteDetails(ctx context.Context, viewID, locale string) (int64, error) {
	query, args := deleteDetailAll, []any{viewID}
	if locale != "" {
		query, args = deleteDetailLocale, []any{viewID, locale}
	}

	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("deleting details: %w", err)
	}
	return res.RowsAffected()
}

const countDetails = `SELECT COUNT(*) FROM service_details WHERE view_id = ?`

// CountDetails counts the detail rows of viewID across locales.
func (q *Queries) CountDetails(ctx context.Context, viewID string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countDetails, viewID).Scan(&n)
	return n, err
}
