// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/eventfx/internal/model"
)

// catalogPrefix namespaces every public catalog read.
const catalogPrefix = "catalog:"

// Catalog caches the public, unauthenticated catalog reads. Any write to
// the catalog drops every entry, so readers never see data older than the
// last successful write.
type Catalog struct {
	raw      Cacher
	services *TypedCache[[]model.Service]
	extras   *TypedCache[[]model.Extra]
	details  *TypedCache[model.Detail]
}

// NewCatalog wraps c with catalog-typed accessors.
func NewCatalog(c Cacher, ttl time.Duration) *Catalog {
	return &Catalog{
		raw:      c,
		services: NewTypedCache[[]model.Service](c, ttl),
		extras:   NewTypedCache[[]model.Extra](c, ttl),
		details:  NewTypedCache[model.Detail](c, ttl),
	}
}

// Services returns the cached service list or loads it.
func (c *Catalog) Services(ctx context.Context, load func() ([]model.Service, error)) ([]model.Service, error) {
	return c.services.GetOrSet(ctx, catalogPrefix+"services", load)
}

// Extras returns the cached active extras of a service in locale or loads them.
func (c *Catalog) Extras(ctx context.Context, serviceID int64, locale string, load func() ([]model.Extra, error)) ([]model.Extra, error) {
	key := fmt.Sprintf("%sextras:%d:%s", catalogPrefix, serviceID, locale)
	return c.extras.GetOrSet(ctx, key, load)
}

// Detail returns the cached detail or loads it. Load errors, including not
// found, are never cached.
func (c *Catalog) Detail(ctx context.Context, viewID, locale string, load func() (model.Detail, error)) (model.Detail, error) {
	key := fmt.Sprintf("%sdetail:%s:%s", catalogPrefix, viewID, locale)
	return c.details.GetOrSet(ctx, key, load)
}

// Invalidate drops every catalog entry.
func (c *Catalog) Invalidate(ctx context.Context) {
	if err := c.raw.DeleteByPrefix(ctx, catalogPrefix); err != nil {
		slog.Warn("cache invalidation failed", "category", "cache", "error", err)
	}
}

// Stats reports backend statistics when the backend tracks them.
func (c *Catalog) Stats() (Stats, bool) {
	if sp, ok := c.raw.(StatsProvider); ok {
		return sp.Stats(), true
	}
	return Stats{}, false
}
