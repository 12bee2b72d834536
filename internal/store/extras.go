// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"

	"github.com/olegiv/eventfx/internal/model"
)

const extraColumns = `id, service_id, title, image_url, view_id, locale, is_active`

func scanExtra(row interface{ Scan(...any) error }) (model.Extra, error) {
	var e model.Extra
	err := row.Scan(&e.ID, &e.ServiceID, &e.Title, &e.ImageURL, &e.ViewID, &e.Locale, &e.IsActive)
	return e, err
}

// ListExtrasParams filters the extras of one service.
type ListExtrasParams struct {
	ServiceID       int64
	Locale          string
	IncludeInactive bool
}

const listExtras = `SELECT ` + extraColumns + ` FROM service_extras
WHERE service_id = ? AND locale = ? AND (is_active = 1 OR ?)
ORDER BY sort_order, title, id`

// ListExtras returns the extras of a service in one locale.
func (q *Queries) ListExtras(ctx context.Context, arg ListExtrasParams) ([]model.Extra, error) {
	rows, err := q.db.QueryContext(ctx, listExtras, arg.ServiceID, arg.Locale, arg.IncludeInactive)
	if err != nil {
		return nil, fmt.Errorf("listing extras: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := []model.Extra{}
	for rows.Next() {
		e, err := scanExtra(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning extra: %w", err)
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

const getExtra = `SELECT ` + extraColumns + ` FROM service_extras WHERE id = ?`

// GetExtra returns one extra by id.
func (q *Queries) GetExtra(ctx context.Context, id int64) (model.Extra, error) {
	e, err := scanExtra(q.db.QueryRowContext(ctx, getExtra, id))
	return e, translate(err)
}

const getExtraByViewID = `SELECT ` + extraColumns + ` FROM service_extras WHERE view_id = ?`

// GetExtraByViewID returns the extra owning viewID.
func (q *Queries) GetExtraByViewID(ctx context.Context, viewID string) (model.Extra, error) {
	e, err := scanExtra(q.db.QueryRowContext(ctx, getExtraByViewID, viewID))
	return e, translate(err)
}

const listExtraViewIDsByService = `SELECT view_id FROM service_extras WHERE service_id = ?`

// ListExtraViewIDsByService returns the view ids of every extra of a service.
func (q *Queries) ListExtraViewIDsByService(ctx context.Context, serviceID int64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listExtraViewIDsByService, serviceID)
	if err != nil {
		return nil, fmt.Errorf("listing view ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning view id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CreateExtraParams holds the columns of a new extra.
type CreateExtraParams struct {
	ServiceID int64
	Title     string
	ImageURL  string
	ViewID    string
	Locale    string
	IsActive  bool
}

const createExtra = `INSERT INTO service_extras (service_id, title, image_url, view_id, locale, is_active)
VALUES (?, ?, ?, ?, ?, ?)`

// CreateExtra inserts an extra. A taken view id yields ErrConflict.
func (q *Queries) CreateExtra(ctx context.Context, arg CreateExtraParams) (model.Extra, error) {
	res, err := q.db.ExecContext(ctx, createExtra,
		arg.ServiceID, arg.Title, arg.ImageURL, arg.ViewID, arg.Locale, arg.IsActive)
	if err != nil {
		return model.Extra{}, fmt.Errorf("creating extra: %w", translate(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Extra{}, fmt.Errorf("reading extra id: %w", err)
	}
	return model.Extra{
		ID:        id,
		ServiceID: arg.ServiceID,
		Title:     arg.Title,
		ImageURL:  arg.ImageURL,
		ViewID:    arg.ViewID,
		Locale:    arg.Locale,
		IsActive:  arg.IsActive,
	}, nil
}

// UpdateExtraParams holds the mutable columns of an extra.
type UpdateExtraParams struct {
	ID       int64
	Title    string
	ImageURL string
	ViewID   string
	Locale   string
	IsActive bool
}

const updateExtra = `UPDATE service_extras
SET title = ?, image_url = ?, view_id = ?, locale = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?`

// UpdateExtra rewrites an extra. A taken view id yields ErrConflict.
func (q *Queries) UpdateExtra(ctx context.Context, arg UpdateExtraParams) error {
	res, err := q.db.ExecContext(ctx, updateExtra,
		arg.Title, arg.ImageURL, arg.ViewID, arg.Locale, arg.IsActive, arg.ID)
	if err != nil {
		return fmt.Errorf("updating extra: %w", translate(err))
	}
	return affected(res)
}

const renameDetailViewID = `UPDATE service_details SET view_id = ? WHERE view_id = ?`

// RenameDetailViewID moves every detail row of oldID to newID.
func (q *Queries) RenameDetailViewID(ctx context.Context, oldID, newID string) error {
	_, err := q.db.ExecContext(ctx, renameDetailViewID, newID, oldID)
	if err != nil {
		return fmt.Errorf("renaming detail view id: %w", translate(err))
	}
	return nil
}

const deleteExtra = `DELETE FROM service_extras WHERE id = ?`

// DeleteExtra removes the extra row only.
func (q *Queries) DeleteExtra(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, deleteExtra, id)
	if err != nil {
		return fmt.Errorf("deleting extra: %w", err)
	}
	return affected(res)
}

const countExtrasByService = `SELECT COUNT(*) FROM service_extras WHERE service_id = ?`

// CountExtrasByService counts every extra of a service.
func (q *Queries) CountExtrasByService(ctx context.Context, serviceID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countExtrasByService, serviceID).Scan(&n)
	return n, err
}
