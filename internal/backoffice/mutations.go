// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backoffice

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/olegiv/eventfx/internal/model"
	"github.com/olegiv/eventfx/internal/remote"
	"github.com/olegiv/eventfx/internal/util"
)

// Busy keys. At most one mutation per key runs at a time.
const newServiceKey = "service:new"

// ServiceKey is the busy key of a service.
func ServiceKey(id int64) string { return "service:" + strconv.FormatInt(id, 10) }

// ExtraKey is the busy key of an extra.
func ExtraKey(id int64) string { return "extra:" + strconv.FormatInt(id, 10) }

// DetailKey is the busy key of the detail of a view id.
func DetailKey(viewID string) string { return "detail:" + viewID }

func newExtraKey(serviceID int64) string {
	return "extra:new:" + strconv.FormatInt(serviceID, 10)
}

// Busy reports whether a mutation holding key is in flight.
func (c *Controller) Busy(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.busy[key]
	return ok
}

func (c *Controller) acquire(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.busy[key]; ok {
		return false
	}
	c.busy[key] = struct{}{}
	return true
}

func (c *Controller) release(key string) {
	c.mu.Lock()
	delete(c.busy, key)
	c.mu.Unlock()
}

func validateService(in model.ServiceInput) (model.ServiceInput, *ValidationError) {
	in.Title = strings.TrimSpace(in.Title)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if in.Title == "" {
		return in, &ValidationError{Field: "title", Message: "Title is required"}
	}
	return in, nil
}

// refetchServices re-reads the service list after a write. A failure is
// logged; the write itself already succeeded.
func (c *Controller) refetchServices(ctx context.Context) {
	c.mu.Lock()
	c.cache.Invalidate(EntityServices, nil)
	c.mu.Unlock()
	if err := c.LoadServices(ctx); err != nil {
		c.logger.Warn("reloading services failed", "error", err)
	}
}

func (c *Controller) refetchExtras(ctx context.Context, serviceID int64) {
	c.mu.Lock()
	c.cache.Invalidate(EntityExtras, serviceID)
	c.mu.Unlock()
	if err := c.LoadExtras(ctx, serviceID); err != nil {
		c.logger.Warn("reloading extras failed", "service_id", serviceID, "error", err)
	}
}

// refetchDetail drops the details of viewIDs and reloads the selected one
// if it is among them.
func (c *Controller) refetchDetail(ctx context.Context, viewIDs ...string) {
	c.mu.Lock()
	for _, v := range viewIDs {
		c.cache.Invalidate(EntityDetail, v)
	}
	extra, ok := c.selectedExtraLocked()
	c.mu.Unlock()

	if !ok || !slices.Contains(viewIDs, extra.ViewID) {
		return
	}
	if err := c.loadDetail(ctx, extra); err != nil {
		c.logger.Warn("reloading detail failed", "view_id", extra.ViewID, "error", err)
	}
}

// CreateService creates a service and reloads the service list.
func (c *Controller) CreateService(ctx context.Context, in model.ServiceInput) Outcome[model.Service] {
	in, verr := validateService(in)
	if verr != nil {
		return invalid[model.Service](verr)
	}
	if !c.acquire(newServiceKey) {
		return busy[model.Service]()
	}
	defer c.release(newServiceKey)

	svc, err := c.remote.CreateService(ctx, in)
	if err != nil {
		return remoteFailure[model.Service](err, "Failed to create service")
	}
	c.logger.Info("service created", "service_id", svc.ID)

	c.refetchServices(ctx)
	return succeed(svc)
}

// UpdateService replaces the title and image of a service.
func (c *Controller) UpdateService(ctx context.Context, id int64, in model.ServiceInput) Outcome[model.Service] {
	in, verr := validateService(in)
	if verr != nil {
		return invalid[model.Service](verr)
	}
	key := ServiceKey(id)
	if !c.acquire(key) {
		return busy[model.Service]()
	}
	defer c.release(key)

	if err := c.remote.UpdateService(ctx, id, in); err != nil {
		return remoteFailure[model.Service](err, "Failed to update service")
	}
	c.logger.Info("service updated", "service_id", id)

	c.refetchServices(ctx)
	return succeed(model.Service{ID: id, Title: in.Title, ImageURL: in.ImageURL})
}

// DeleteService deletes a service with its extras and their details. A
// selection inside the service returns to the service list.
func (c *Controller) DeleteService(ctx context.Context, id int64) Outcome[int64] {
	key := ServiceKey(id)
	if !c.acquire(key) {
		return busy[int64]()
	}
	defer c.release(key)

	if err := c.remote.DeleteService(ctx, id); err != nil {
		return remoteFailure[int64](err, "Failed to delete service")
	}
	c.logger.Info("service deleted", "service_id", id)

	c.mu.Lock()
	c.cache.DropService(id)
	delete(c.counts, id)
	cleared := c.nav.ClearService(id)
	c.mu.Unlock()
	if cleared {
		c.filters.Reset(Level1)
	}

	c.refetchServices(ctx)
	return succeed(id)
}

// CreateExtra creates an extra under in.ServiceID, or under the selected
// service when it is zero. The view id comes from in.ViewID or else the
// title, slugified and made unique against every cached extra. The new
// extra becomes the selection.
func (c *Controller) CreateExtra(ctx context.Context, in model.ExtraInput) Outcome[model.Extra] {
	c.mu.Lock()
	if in.ServiceID == 0 {
		in.ServiceID = c.nav.Selection().ServiceID
	}
	if strings.TrimSpace(in.Locale) == "" {
		in.Locale = c.locale
	}
	c.mu.Unlock()

	in.Title = strings.TrimSpace(in.Title)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	source := in.ViewID
	if strings.TrimSpace(source) == "" {
		source = in.Title
	}
	base := util.Slugify(source)

	switch {
	case in.ServiceID == 0:
		return invalid[model.Extra](&ValidationError{Field: "serviceId", Message: "Select a service first"})
	case in.Title == "":
		return invalid[model.Extra](&ValidationError{Field: "title", Message: "Title is required"})
	case in.ImageURL == "":
		return invalid[model.Extra](&ValidationError{Field: "imageUrl", Message: "Image URL is required"})
	case base == "":
		return invalid[model.Extra](&ValidationError{Field: "viewId", Message: "A view id cannot be derived from this title"})
	}

	key := newExtraKey(in.ServiceID)
	if !c.acquire(key) {
		return busy[model.Extra]()
	}
	defer c.release(key)

	in.ViewID = util.EnsureUniqueSlug(base, c.takenViewIDs(ctx, in.ServiceID))

	extra, err := c.remote.CreateExtra(ctx, in)
	if err != nil {
		return remoteFailure[model.Extra](err, "Failed to create extra")
	}
	c.logger.Info("extra created", "extra_id", extra.ID, "view_id", extra.ViewID)

	c.refetchExtras(ctx, in.ServiceID)

	c.mu.Lock()
	extras, _ := c.cache.Extras(in.ServiceID)
	if cached, ok := findExtra(extras, extra.ID); ok {
		extra = cached
	}
	prev := c.nav.Selection().ServiceID
	c.nav.SelectService(in.ServiceID)
	c.nav.SelectExtra(extra.ID)
	c.mu.Unlock()
	if prev != in.ServiceID {
		c.filters.Reset(Level1)
	}

	if err := c.loadDetail(ctx, extra); err != nil {
		c.logger.Warn("loading detail of new extra failed", "view_id", extra.ViewID, "error", err)
	}
	c.notify()
	return succeed(extra)
}

// takenViewIDs returns the view ids of every cached extra plus those of
// serviceID, which is loaded first. While another load of serviceID is
// still in flight its extras are listed directly.
func (c *Controller) takenViewIDs(ctx context.Context, serviceID int64) map[string]struct{} {
	if err := c.LoadExtras(ctx, serviceID); err != nil {
		c.logger.Warn("loading extras before create failed", "service_id", serviceID, "error", err)
	}

	c.mu.Lock()
	taken := c.cache.TakenViewIDs()
	_, state := c.cache.Extras(serviceID)
	locale := c.locale
	c.mu.Unlock()
	if state != Loading {
		return taken
	}

	list, err := c.remote.ListExtras(ctx, remote.ExtrasQuery{
		ServiceID:       serviceID,
		Locale:          locale,
		IncludeInactive: true,
	})
	if err != nil {
		c.logger.Warn("listing extras before create failed", "service_id", serviceID, "error", err)
		return taken
	}
	for _, e := range list {
		taken[e.ViewID] = struct{}{}
	}
	return taken
}

// UpdateExtra edits a cached extra. Blank image, view id and locale keep
// their current values. A changed view id is slugified and made unique;
// the server moves the details along.
func (c *Controller) UpdateExtra(ctx context.Context, id int64, in model.ExtraInput) Outcome[model.Extra] {
	c.mu.Lock()
	current, ok := c.cache.FindExtra(id)
	taken := c.cache.TakenViewIDs()
	c.mu.Unlock()
	if !ok {
		return invalid[model.Extra](&ValidationError{Field: "id", Message: "Extra is not loaded"})
	}

	updated := current
	updated.Title = strings.TrimSpace(in.Title)
	if updated.Title == "" {
		return invalid[model.Extra](&ValidationError{Field: "title", Message: "Title is required"})
	}
	if v := strings.TrimSpace(in.ImageURL); v != "" {
		updated.ImageURL = v
	}
	if v := strings.TrimSpace(in.Locale); v != "" {
		updated.Locale = v
	}
	if in.IsActive != nil {
		updated.IsActive = *in.IsActive
	}
	if strings.TrimSpace(in.ViewID) != "" {
		base := util.Slugify(in.ViewID)
		if base == "" {
			return invalid[model.Extra](&ValidationError{Field: "viewId", Message: "View id must contain letters or digits"})
		}
		if base != current.ViewID {
			delete(taken, current.ViewID)
			updated.ViewID = util.EnsureUniqueSlug(base, taken)
		}
	}

	key := ExtraKey(id)
	if !c.acquire(key) {
		return busy[model.Extra]()
	}
	defer c.release(key)

	active := updated.IsActive
	err := c.remote.UpdateExtra(ctx, id, model.ExtraInput{
		Title:    updated.Title,
		ImageURL: updated.ImageURL,
		ViewID:   updated.ViewID,
		Locale:   updated.Locale,
		IsActive: &active,
	})
	if err != nil {
		return remoteFailure[model.Extra](err, "Failed to update extra")
	}
	c.logger.Info("extra updated", "extra_id", id, "view_id", updated.ViewID)

	c.refetchExtras(ctx, current.ServiceID)
	c.refetchDetail(ctx, current.ViewID, updated.ViewID)
	return succeed(updated)
}

// DeleteExtra deletes a cached extra and all its details. A selection of
// the extra returns to its service.
func (c *Controller) DeleteExtra(ctx context.Context, id int64) Outcome[int64] {
	c.mu.Lock()
	current, ok := c.cache.FindExtra(id)
	c.mu.Unlock()
	if !ok {
		return invalid[int64](&ValidationError{Field: "id", Message: "Extra is not loaded"})
	}

	key := ExtraKey(id)
	if !c.acquire(key) {
		return busy[int64]()
	}
	defer c.release(key)

	if err := c.remote.DeleteExtra(ctx, id, ""); err != nil {
		return remoteFailure[int64](err, "Failed to delete extra")
	}
	c.logger.Info("extra deleted", "extra_id", id, "view_id", current.ViewID)

	c.mu.Lock()
	c.cache.Invalidate(EntityDetail, current.ViewID)
	c.nav.ClearExtra(id)
	c.mu.Unlock()

	c.refetchExtras(ctx, current.ServiceID)
	return succeed(id)
}

func (c *Controller) detailTarget(viewID string) (string, string, *ValidationError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	viewID = strings.TrimSpace(viewID)
	if viewID == "" {
		if extra, ok := c.selectedExtraLocked(); ok {
			viewID = extra.ViewID
		}
	}
	if viewID == "" {
		return "", "", &ValidationError{Field: "viewId", Message: "Select an extra first"}
	}
	if !util.IsValidSlug(viewID) {
		return "", "", &ValidationError{Field: "viewId", Message: "Invalid view id"}
	}
	return viewID, c.locale, nil
}

// SaveDetail upserts the detail of d.ViewID, or of the selected extra when
// blank, in the current locale.
func (c *Controller) SaveDetail(ctx context.Context, d model.Detail) Outcome[model.Detail] {
	viewID, locale, verr := c.detailTarget(d.ViewID)
	if verr != nil {
		return invalid[model.Detail](verr)
	}
	d.ViewID = viewID
	d.Locale = locale
	d = d.Normalize()

	key := DetailKey(viewID)
	if !c.acquire(key) {
		return busy[model.Detail]()
	}
	defer c.release(key)

	if err := c.remote.SaveDetail(ctx, d); err != nil {
		return remoteFailure[model.Detail](err, "Failed to save detail")
	}
	c.logger.Info("detail saved", "view_id", viewID, "locale", locale)

	c.refetchDetail(ctx, viewID)
	return succeed(d)
}

// DeleteDetail removes the detail of viewID, or of the selected extra when
// blank, in the current locale. The extra itself is kept.
func (c *Controller) DeleteDetail(ctx context.Context, viewID string) Outcome[string] {
	viewID, locale, verr := c.detailTarget(viewID)
	if verr != nil {
		return invalid[string](verr)
	}

	key := DetailKey(viewID)
	if !c.acquire(key) {
		return busy[string]()
	}
	defer c.release(key)

	if err := c.remote.DeleteDetail(ctx, viewID, locale); err != nil {
		return remoteFailure[string](err, "Failed to delete detail")
	}
	c.logger.Info("detail deleted", "view_id", viewID, "locale", locale)

	c.refetchDetail(ctx, viewID)
	return succeed(viewID)
}
