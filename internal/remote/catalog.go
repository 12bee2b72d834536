// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/olegiv/eventfx/internal/model"
	"github.com/olegiv/eventfx/internal/util"
)

// ListServices returns every active service.
func (c *Client) ListServices(ctx context.Context) ([]model.Service, error) {
	var items []model.Service
	if err := c.do(ctx, "list services", http.MethodGet, "/api/services", nil, nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Service{}
	}
	return items, nil
}

// CreateService creates a service and returns it with its id.
func (c *Client) CreateService(ctx context.Context, in model.ServiceInput) (model.Service, error) {
	var svc model.Service
	if err := c.do(ctx, "create service", http.MethodPost, "/api/services", nil, in, &svc); err != nil {
		return model.Service{}, err
	}
	if svc.Title == "" {
		svc.Title = in.Title
		svc.ImageURL = in.ImageURL
	}
	return svc, nil
}

// UpdateService rewrites a service.
func (c *Client) UpdateService(ctx context.Context, id int64, in model.ServiceInput) error {
	return c.do(ctx, "update service", http.MethodPut, idPath("/api/services", id), nil, in, nil)
}

// DeleteService deletes a service with its extras and details.
func (c *Client) DeleteService(ctx context.Context, id int64) error {
	return c.do(ctx, "delete service", http.MethodDelete, idPath("/api/services", id), nil, nil, nil)
}

// ExtrasQuery selects the extras of one service.
type ExtrasQuery struct {
	ServiceID       int64
	Locale          string
	IncludeInactive bool
}

// ListExtras returns the extras of a service in a locale.
func (c *Client) ListExtras(ctx context.Context, q ExtrasQuery) ([]model.Extra, error) {
	query := url.Values{}
	query.Set("service_id", strconv.FormatInt(q.ServiceID, 10))
	if q.Locale != "" {
		query.Set("locale", q.Locale)
	}
	if q.IncludeInactive {
		query.Set("include_inactive", "true")
	}

	var items []model.Extra
	if err := c.do(ctx, "list extras", http.MethodGet, "/api/extras", query, nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Extra{}
	}
	for i := range items {
		if items[i].ServiceID == 0 {
			items[i].ServiceID = q.ServiceID
		}
		items[i].Locale = util.NormalizeLocale(items[i].Locale)
	}
	return items, nil
}

// CreateExtra creates an extra. Fields the server does not echo back are
// taken from the input.
func (c *Client) CreateExtra(ctx context.Context, in model.ExtraInput) (model.Extra, error) {
	var extra model.Extra
	if err := c.do(ctx, "create extra", http.MethodPost, "/api/extras", nil, in, &extra); err != nil {
		return model.Extra{}, err
	}

	if extra.ServiceID == 0 {
		extra.ServiceID = in.ServiceID
	}
	if extra.Title == "" {
		extra.Title = in.Title
		extra.ImageURL = in.ImageURL
		extra.IsActive = in.Active()
	}
	if extra.ViewID == "" {
		extra.ViewID = in.ViewID
	}
	if extra.Locale == "" {
		extra.Locale = util.NormalizeLocale(in.Locale)
	}
	return extra, nil
}

// UpdateExtra rewrites an extra.
func (c *Client) UpdateExtra(ctx context.Context, id int64, in model.ExtraInput) error {
	return c.do(ctx, "update extra", http.MethodPut, idPath("/api/extras", id), nil, in, nil)
}

// DeleteExtra deletes an extra and its details, restricted to locale when
// it is not empty.
func (c *Client) DeleteExtra(ctx context.Context, id int64, locale string) error {
	var query url.Values
	if locale != "" {
		query = url.Values{"locale": {locale}}
	}
	return c.do(ctx, "delete extra", http.MethodDelete, idPath("/api/extras", id), query, nil, nil)
}

// GetDetail returns the detail of viewID in locale. A missing detail is
// (nil, nil).
func (c *Client) GetDetail(ctx context.Context, viewID, locale string) (*model.Detail, error) {
	query := url.Values{"view_id": {viewID}}
	if locale != "" {
		query.Set("locale", locale)
	}

	var d model.Detail
	err := c.do(ctx, "load detail", http.MethodGet, "/api/details", query, nil, &d)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	d = d.Normalize()
	if d.ViewID == "" {
		d.ViewID = viewID
	}
	if d.Locale == "" {
		d.Locale = util.NormalizeLocale(locale)
	}
	return &d, nil
}

// SaveDetail upserts the detail keyed by d.ViewID and d.Locale.
func (c *Client) SaveDetail(ctx context.Context, d model.Detail) error {
	return c.do(ctx, "save detail", http.MethodPost, "/api/details", nil, d.Normalize(), nil)
}

// DeleteDetail removes the detail of viewID in locale, or in every locale
// when locale is empty.
func (c *Client) DeleteDetail(ctx context.Context, viewID, locale string) error {
	query := url.Values{"view_id": {viewID}}
	if locale != "" {
		query.Set("locale", locale)
	}
	return c.do(ctx, "delete detail", http.MethodDelete, "/api/details", query, nil, nil)
}
