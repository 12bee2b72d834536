// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backoffice

import (
	"github.com/olegiv/eventfx/internal/model"
)

// State is the load state of one cache entry.
type State int

// Load states.
const (
	NotRequested State = iota
	Loading
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case NotRequested:
		return "not-requested"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// EntityKind names a cached collection.
type EntityKind int

// Cached collections.
const (
	EntityServices EntityKind = iota
	EntityExtras
	EntityDetail
)

// slot is one cache entry. gen identifies the fetch that owns a Loading
// slot; results carrying another gen are stale.
type slot[T any] struct {
	value T
	state State
	gen   uint64
	err   error
}

// EntityCache holds the services, the extras per service id and the detail
// per view id. A loaded detail may be nil, meaning none exists remotely.
// EntityCache is not safe for concurrent use; the Controller guards it.
type EntityCache struct {
	nextGen  uint64
	services slot[[]model.Service]
	extras   map[int64]*slot[[]model.Extra]
	details  map[string]*slot[*model.Detail]
}

// NewEntityCache returns an empty cache.
func NewEntityCache() *EntityCache {
	return &EntityCache{
		extras:  make(map[int64]*slot[[]model.Extra]),
		details: make(map[string]*slot[*model.Detail]),
	}
}

// Services returns the cached services and their state.
func (c *EntityCache) Services() ([]model.Service, State) {
	return c.services.value, c.services.state
}

// Extras returns the cached extras of serviceID and their state.
func (c *EntityCache) Extras(serviceID int64) ([]model.Extra, State) {
	s, ok := c.extras[serviceID]
	if !ok {
		return nil, NotRequested
	}
	return s.value, s.state
}

// Detail returns the cached detail of viewID. A Loaded state with a nil
// detail means the detail does not exist.
func (c *EntityCache) Detail(viewID string) (*model.Detail, State) {
	s, ok := c.details[viewID]
	if !ok {
		return nil, NotRequested
	}
	return s.value, s.state
}

// Err returns the failure of the last fetch of an entry, if any.
func (c *EntityCache) Err(kind EntityKind, key any) error {
	switch kind {
	case EntityServices:
		return c.services.err
	case EntityExtras:
		if id, ok := key.(int64); ok {
			if s := c.extras[id]; s != nil {
				return s.err
			}
		}
	case EntityDetail:
		if viewID, ok := key.(string); ok {
			if s := c.details[viewID]; s != nil {
				return s.err
			}
		}
	}
	return nil
}

func (c *EntityCache) next() uint64 {
	c.nextGen++
	return c.nextGen
}

// begin marks s as Loading and returns the fetch generation. It reports
// false when s is already loading or loaded.
func begin[T any](c *EntityCache, s *slot[T]) (uint64, bool) {
	if s.state == Loading || s.state == Loaded {
		return 0, false
	}
	s.state = Loading
	s.err = nil
	s.gen = c.next()
	return s.gen, true
}

// finish stores a fetch result if gen still owns s. It reports whether the
// result was applied. A failed fetch keeps the previous value.
func finish[T any](s *slot[T], gen uint64, v T, err error) bool {
	if s == nil || s.state != Loading || s.gen != gen {
		return false
	}
	if err != nil {
		s.state = Failed
		s.err = err
		return true
	}
	s.value = v
	s.state = Loaded
	return true
}

// BeginServices starts a services fetch unless one is loading or loaded.
func (c *EntityCache) BeginServices() (uint64, bool) {
	return begin(c, &c.services)
}

// FinishServices stores the result of the fetch gen.
func (c *EntityCache) FinishServices(gen uint64, list []model.Service, err error) bool {
	return finish(&c.services, gen, list, err)
}

// BeginExtras starts an extras fetch for serviceID.
func (c *EntityCache) BeginExtras(serviceID int64) (uint64, bool) {
	s, ok := c.extras[serviceID]
	if !ok {
		s = &slot[[]model.Extra]{}
		c.extras[serviceID] = s
	}
	return begin(c, s)
}

// FinishExtras stores the result of the extras fetch gen.
func (c *EntityCache) FinishExtras(serviceID int64, gen uint64, list []model.Extra, err error) bool {
	return finish(c.extras[serviceID], gen, list, err)
}

// BeginDetail starts a detail fetch for viewID.
func (c *EntityCache) BeginDetail(viewID string) (uint64, bool) {
	s, ok := c.details[viewID]
	if !ok {
		s = &slot[*model.Detail]{}
		c.details[viewID] = s
	}
	return begin(c, s)
}

// FinishDetail stores the result of the detail fetch gen. d may be nil.
func (c *EntityCache) FinishDetail(viewID string, gen uint64, d *model.Detail, err error) bool {
	return finish(c.details[viewID], gen, d, err)
}

// AbandonDetail drops a detail fetch that is no longer wanted, so the next
// ensure fetches again.
func (c *EntityCache) AbandonDetail(viewID string, gen uint64) {
	if s := c.details[viewID]; s != nil && s.gen == gen && s.state == Loading {
		delete(c.details, viewID)
	}
}

// Invalidate drops one entry so the next ensure re-fetches it. key is the
// service id for EntityExtras and the view id for EntityDetail; it is
// ignored for EntityServices. In-flight fetches of a dropped entry are
// discarded when they complete.
func (c *EntityCache) Invalidate(kind EntityKind, key any) {
	switch kind {
	case EntityServices:
		c.services = slot[[]model.Service]{value: c.services.value}
	case EntityExtras:
		if id, ok := key.(int64); ok {
			delete(c.extras, id)
		}
	case EntityDetail:
		if viewID, ok := key.(string); ok {
			delete(c.details, viewID)
		}
	}
}

// DropService forgets a deleted service: its extras list and the details
// of those extras.
func (c *EntityCache) DropService(serviceID int64) {
	if s, ok := c.extras[serviceID]; ok {
		for _, e := range s.value {
			delete(c.details, e.ViewID)
		}
		delete(c.extras, serviceID)
	}
	list := c.services.value[:0:0]
	for _, svc := range c.services.value {
		if svc.ID != serviceID {
			list = append(list, svc)
		}
	}
	c.services.value = list
}

// Clear drops every entry.
func (c *EntityCache) Clear() {
	c.services = slot[[]model.Service]{}
	c.extras = make(map[int64]*slot[[]model.Extra])
	c.details = make(map[string]*slot[*model.Detail])
}

// ClearLocalized drops the locale dependent entries: extras and details.
func (c *EntityCache) ClearLocalized() {
	c.extras = make(map[int64]*slot[[]model.Extra])
	c.details = make(map[string]*slot[*model.Detail])
}

// TakenViewIDs returns the view ids of every cached extra, across services.
func (c *EntityCache) TakenViewIDs() map[string]struct{} {
	taken := make(map[string]struct{})
	for _, s := range c.extras {
		for _, e := range s.value {
			taken[e.ViewID] = struct{}{}
		}
	}
	return taken
}

// FindService returns the cached service with id.
func (c *EntityCache) FindService(id int64) (model.Service, bool) {
	for _, s := range c.services.value {
		if s.ID == id {
			return s, true
		}
	}
	return model.Service{}, false
}

// FindExtra returns the cached extra with id from any service.
func (c *EntityCache) FindExtra(id int64) (model.Extra, bool) {
	for _, s := range c.extras {
		for _, e := range s.value {
			if e.ID == id {
				return e, true
			}
		}
	}
	return model.Extra{}, false
}
