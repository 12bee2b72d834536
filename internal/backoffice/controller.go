// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package backoffice is the client side of the catalog backoffice: an
// entity cache over the remote catalog API, the services > extras > detail
// navigation, debounced list filters and the mutation orchestrator. The
// Controller ties them together and is what a user interface drives.
package backoffice

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/olegiv/eventfx/internal/model"
	"github.com/olegiv/eventfx/internal/remote"
	"github.com/olegiv/eventfx/internal/util"
)

// Remote is the catalog API as the backoffice uses it. *remote.Client
// implements it.
type Remote interface {
	ListServices(ctx context.Context) ([]model.Service, error)
	CreateService(ctx context.Context, in model.ServiceInput) (model.Service, error)
	UpdateService(ctx context.Context, id int64, in model.ServiceInput) error
	DeleteService(ctx context.Context, id int64) error

	ListExtras(ctx context.Context, q remote.ExtrasQuery) ([]model.Extra, error)
	CreateExtra(ctx context.Context, in model.ExtraInput) (model.Extra, error)
	UpdateExtra(ctx context.Context, id int64, in model.ExtraInput) error
	DeleteExtra(ctx context.Context, id int64, locale string) error

	GetDetail(ctx context.Context, viewID, locale string) (*model.Detail, error)
	SaveDetail(ctx context.Context, d model.Detail) error
	DeleteDetail(ctx context.Context, viewID, locale string) error
}

var _ Remote = (*remote.Client)(nil)

// Options configures a Controller.
type Options struct {
	Locale        string
	Debounce      time.Duration
	PrefetchLimit int
	Logger        *slog.Logger

	// OnChange runs after any state change, without locks held.
	OnChange func()
}

// Controller owns the backoffice state. It is safe for concurrent use; no
// lock is held while the remote is called.
type Controller struct {
	remote   Remote
	logger   *slog.Logger
	onChange func()
	prefetch int
	filters  *Debouncer

	mu     sync.Mutex
	locale string
	cache  *EntityCache
	nav    Navigator
	busy   map[string]struct{}
	counts map[int64]int
}

// New returns a Controller over r.
func New(r Remote, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	prefetch := opts.PrefetchLimit
	if prefetch < 1 {
		prefetch = 4
	}

	c := &Controller{
		remote:   r,
		logger:   logger,
		onChange: opts.OnChange,
		prefetch: prefetch,
		locale:   util.NormalizeLocale(opts.Locale),
		cache:    NewEntityCache(),
		busy:     make(map[string]struct{}),
		counts:   make(map[int64]int),
	}
	c.filters = NewDebouncer(opts.Debounce, func(Level, string) { c.notify() })
	return c
}

// Close stops pending filter commits.
func (c *Controller) Close() {
	c.filters.Stop()
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}

// Locale returns the content locale.
func (c *Controller) Locale() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locale
}

// SetLocale switches the content locale. Extras and details are dropped
// and the selection returns to the service list.
func (c *Controller) SetLocale(locale string) error {
	locale = util.NormalizeLocale(locale)
	if !util.IsValidLocale(locale) {
		return &ValidationError{Field: "locale", Message: fmt.Sprintf("invalid locale %q", locale)}
	}

	c.mu.Lock()
	changed := c.locale != locale
	if changed {
		c.locale = locale
		c.cache.ClearLocalized()
		c.counts = make(map[int64]int)
		c.nav.Reset()
	}
	c.mu.Unlock()

	if changed {
		c.filters.Reset(Level1)
		c.notify()
	}
	return nil
}

// Selection returns the navigation state.
func (c *Controller) Selection() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nav.Selection()
}

// --- reads

// LoadServices fetches the service list unless it is loading or loaded.
func (c *Controller) LoadServices(ctx context.Context) error {
	c.mu.Lock()
	gen, ok := c.cache.BeginServices()
	c.mu.Unlock()
	if !ok {
		return nil
	}

	list, err := c.remote.ListServices(ctx)

	c.mu.Lock()
	applied := c.cache.FinishServices(gen, list, err)
	if applied && err == nil {
		c.reconcileLocked()
	}
	c.mu.Unlock()

	if !applied {
		c.logger.Debug("discarded stale services result")
	}
	c.notify()
	return err
}

// RefreshServices drops the cached services and fetches them again.
func (c *Controller) RefreshServices(ctx context.Context) error {
	c.mu.Lock()
	c.cache.Invalidate(EntityServices, nil)
	c.mu.Unlock()
	return c.LoadServices(ctx)
}

// Services returns a copy of the service list filtered by the Level0 query.
func (c *Controller) Services() ([]model.Service, State) {
	q := c.filters.Query(Level0)
	c.mu.Lock()
	list, state := c.cache.Services()
	list = slices.Clone(list)
	c.mu.Unlock()
	return Filter(list, q, serviceTitle), state
}

// LoadExtras fetches the extras of serviceID unless loading or loaded.
func (c *Controller) LoadExtras(ctx context.Context, serviceID int64) error {
	c.mu.Lock()
	gen, ok := c.cache.BeginExtras(serviceID)
	locale := c.locale
	c.mu.Unlock()
	if !ok {
		return nil
	}

	list, err := c.remote.ListExtras(ctx, remote.ExtrasQuery{
		ServiceID:       serviceID,
		Locale:          locale,
		IncludeInactive: true,
	})

	c.mu.Lock()
	applied := c.cache.FinishExtras(serviceID, gen, list, err)
	if applied && err == nil {
		c.counts[serviceID] = len(list)
		c.reconcileLocked()
	}
	c.mu.Unlock()

	if !applied {
		c.logger.Debug("discarded stale extras result", "service_id", serviceID)
	}
	c.notify()
	return err
}

// Extras returns a copy of the selected service's extras filtered by the
// Level1 query.
func (c *Controller) Extras() ([]model.Extra, State) {
	q := c.filters.Query(Level1)
	c.mu.Lock()
	sel := c.nav.Selection()
	if sel.ServiceID == 0 {
		c.mu.Unlock()
		return nil, NotRequested
	}
	list, state := c.cache.Extras(sel.ServiceID)
	list = slices.Clone(list)
	c.mu.Unlock()
	return Filter(list, q, extraTitle), state
}

// ExtraCount returns the number of extras of serviceID once known.
func (c *Controller) ExtraCount(serviceID int64) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.counts[serviceID]
	return n, ok
}

// PrefetchExtraCounts loads the extras of every cached service with at
// most PrefetchLimit requests in flight. It returns the first failure;
// counts of the other services are still recorded.
func (c *Controller) PrefetchExtraCounts(ctx context.Context) error {
	c.mu.Lock()
	services, _ := c.cache.Services()
	ids := make([]int64, 0, len(services))
	for _, s := range services {
		ids = append(ids, s.ID)
	}
	c.mu.Unlock()

	// A failed list must not cancel the others.
	var g errgroup.Group
	g.SetLimit(c.prefetch)
	for _, id := range ids {
		g.Go(func() error {
			return c.LoadExtras(ctx, id)
		})
	}
	return g.Wait()
}

// SelectService opens the extras of id, fetching them if needed. Selecting
// a service resets the extras filter.
func (c *Controller) SelectService(ctx context.Context, id int64) error {
	c.mu.Lock()
	if _, state := c.cache.Services(); state == Loaded {
		if _, ok := c.cache.FindService(id); !ok {
			c.mu.Unlock()
			return fmt.Errorf("select service %d: %w", id, ErrUnknownEntity)
		}
	}
	prev := c.nav.Selection().ServiceID
	c.nav.SelectService(id)
	c.mu.Unlock()

	if prev != id {
		c.filters.Reset(Level1)
	}
	c.notify()
	return c.LoadExtras(ctx, id)
}

// SelectExtra opens the detail of id, which must be an extra of the
// selected service. A detail result that arrives after the selection moved
// elsewhere is discarded.
func (c *Controller) SelectExtra(ctx context.Context, id int64) error {
	c.mu.Lock()
	sel := c.nav.Selection()
	extras, _ := c.cache.Extras(sel.ServiceID)
	extra, ok := findExtra(extras, id)
	if sel.ServiceID == 0 || !ok {
		c.mu.Unlock()
		return fmt.Errorf("select extra %d: %w", id, ErrUnknownEntity)
	}
	c.nav.SelectExtra(id)
	c.mu.Unlock()

	c.notify()
	return c.loadDetail(ctx, extra)
}

func (c *Controller) loadDetail(ctx context.Context, extra model.Extra) error {
	c.mu.Lock()
	gen, ok := c.cache.BeginDetail(extra.ViewID)
	locale := c.locale
	c.mu.Unlock()
	if !ok {
		return nil
	}

	d, err := c.remote.GetDetail(ctx, extra.ViewID, locale)

	c.mu.Lock()
	var applied bool
	if c.nav.Selection().ExtraID != extra.ID {
		c.cache.AbandonDetail(extra.ViewID, gen)
	} else {
		applied = c.cache.FinishDetail(extra.ViewID, gen, d, err)
	}
	c.mu.Unlock()

	if !applied {
		c.logger.Debug("discarded stale detail result", "view_id", extra.ViewID)
		return nil
	}
	c.notify()
	return err
}

// Detail returns the cached detail of the selected extra. A Loaded state
// with a nil detail means none exists yet.
func (c *Controller) Detail() (*model.Detail, State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	extra, ok := c.selectedExtraLocked()
	if !ok {
		return nil, NotRequested
	}
	d, state := c.cache.Detail(extra.ViewID)
	return d.Clone(), state
}

// DetailForm returns the editable detail of the selected extra, or an
// empty form when none exists.
func (c *Controller) DetailForm() (model.Detail, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	extra, ok := c.selectedExtraLocked()
	if !ok {
		return model.Detail{}, false
	}
	d, _ := c.cache.Detail(extra.ViewID)
	if d == nil {
		return model.EmptyDetail(extra.ViewID, c.locale), true
	}
	return *d.Clone(), true
}

// SelectedExtra returns the extra at Level2.
func (c *Controller) SelectedExtra() (model.Extra, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedExtraLocked()
}

func (c *Controller) selectedExtraLocked() (model.Extra, bool) {
	sel := c.nav.Selection()
	if sel.ExtraID == 0 {
		return model.Extra{}, false
	}
	extras, _ := c.cache.Extras(sel.ServiceID)
	return findExtra(extras, sel.ExtraID)
}

// Back moves one level up. Leaving Level1 resets the extras filter.
func (c *Controller) Back() Direction {
	c.mu.Lock()
	from := c.nav.Selection().Level
	d := c.nav.Back()
	c.mu.Unlock()

	if from == Level1 && d == Backward {
		c.filters.Reset(Level1)
	}
	c.notify()
	return d
}

// SetQuery debounces a filter query for level.
func (c *Controller) SetQuery(level Level, raw string) {
	c.filters.SetQuery(level, raw)
}

// SetQueryNow commits a filter query for level immediately.
func (c *Controller) SetQueryNow(level Level, raw string) {
	c.filters.SetQueryNow(level, raw)
}

// Query returns the committed filter query of level.
func (c *Controller) Query(level Level) string {
	return c.filters.Query(level)
}

// reconcileLocked clears selections that no longer exist in the cache.
func (c *Controller) reconcileLocked() {
	sel := c.nav.Selection()
	if sel.ServiceID == 0 {
		return
	}
	if _, state := c.cache.Services(); state == Loaded {
		if _, ok := c.cache.FindService(sel.ServiceID); !ok {
			c.nav.ClearService(sel.ServiceID)
			return
		}
	}
	if sel.ExtraID == 0 {
		return
	}
	if extras, state := c.cache.Extras(sel.ServiceID); state == Loaded {
		if _, ok := findExtra(extras, sel.ExtraID); !ok {
			c.nav.ClearExtra(sel.ExtraID)
		}
	}
}

func findExtra(list []model.Extra, id int64) (model.Extra, bool) {
	for _, e := range list {
		if e.ID == id {
			return e, true
		}
	}
	return model.Extra{}, false
}
