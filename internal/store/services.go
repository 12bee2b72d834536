// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"

	"github.com/olegiv/eventfx/internal/model"
)

const listServices = `SELECT id, title, image_url FROM services
WHERE is_active = 1
ORDER BY sort_order, title, id`

// ListServices returns active services ordered for display.
func (q *Queries) ListServices(ctx context.Context) ([]model.Service, error) {
	rows, err := q.db.QueryContext(ctx, listServices)
	if err != nil {
		return nil, fmt.Errorf("listing services: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := []model.Service{}
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.Title, &s.ImageURL); err != nil {
			return nil, fmt.Errorf("scanning service: %w", err)
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

const getService = `SELECT id, title, image_url FROM services WHERE id = ?`

// GetService returns one service regardless of its active flag.
func (q *Queries) GetService(ctx context.Context, id int64) (model.Service, error) {
	var s model.Service
	err := q.db.QueryRowContext(ctx, getService, id).Scan(&s.ID, &s.Title, &s.ImageURL)
	return s, translate(err)
}

// CreateServiceParams holds the columns of a new service.
type CreateServiceParams struct {
	Title     string
	ImageURL  string
	SortOrder int
}

const createService = `INSERT INTO services (title, image_url, is_active, sort_order)
VALUES (?, ?, 1, ?)`

// CreateService inserts an active service.
func (q *Queries) CreateService(ctx context.Context, arg CreateServiceParams) (model.Service, error) {
	res, err := q.db.ExecContext(ctx, createService, arg.Title, arg.ImageURL, arg.SortOrder)
	if err != nil {
		return model.Service{}, fmt.Errorf("creating service: %w", translate(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Service{}, fmt.Errorf("reading service id: %w", err)
	}
	return model.Service{ID: id, Title: arg.Title, ImageURL: arg.ImageURL}, nil
}

const updateService = `UPDATE services SET title = ?, image_url = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?`

// UpdateService replaces title and image of a service.
func (q *Queries) UpdateService(ctx context.Context, id int64, title, imageURL string) error {
	res, err := q.db.ExecContext(ctx, updateService, title, imageURL, id)
	if err != nil {
		return fmt.Errorf("updating service: %w", translate(err))
	}
	return affected(res)
}

const deleteService = `DELETE FROM services WHERE id = ?`

// DeleteService removes the service row. Extras go with it through the
// foreign key; details must be removed first, see Store.DeleteServiceCascade.
func (q *Queries) DeleteService(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, deleteService, id)
	if err != nil {
		return fmt.Errorf("deleting service: %w", err)
	}
	return affected(res)
}

const countServices = `SELECT COUNT(*) FROM services`

// CountServices returns the number of services, active or not.
func (q *Queries) CountServices(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countServices).Scan(&n)
	return n, err
}
