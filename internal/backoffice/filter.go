// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backoffice

import (
	"strings"
	"sync"
	"time"

	"github.com/olegiv/eventfx/internal/model"
)

// DefaultDebounce is the settle delay of interactive queries.
const DefaultDebounce = 150 * time.Millisecond

// Filter returns the items whose title contains query, ignoring case. A
// blank query returns list itself. list is never modified.
func Filter[T any](list []T, query string, title func(T) string) []T {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return list
	}
	out := make([]T, 0, len(list))
	for _, item := range list {
		if strings.Contains(strings.ToLower(title(item)), q) {
			out = append(out, item)
		}
	}
	return out
}

func serviceTitle(s model.Service) string { return s.Title }

func extraTitle(e model.Extra) string { return e.Title }

// Debouncer holds one committed query per level. SetQuery commits the last
// value once no further input arrives for the settle delay.
type Debouncer struct {
	mu       sync.Mutex
	delay    time.Duration
	timers   map[Level]*time.Timer
	pending  map[Level]string
	queries  map[Level]string
	onCommit func(Level, string)
}

// NewDebouncer returns a Debouncer with the given delay. onCommit, when
// set, runs after each commit without the Debouncer lock held.
func NewDebouncer(delay time.Duration, onCommit func(Level, string)) *Debouncer {
	if delay < 0 {
		delay = 0
	}
	return &Debouncer{
		delay:    delay,
		timers:   make(map[Level]*time.Timer),
		pending:  make(map[Level]string),
		queries:  make(map[Level]string),
		onCommit: onCommit,
	}
}

// SetQuery schedules raw to become the query of level.
func (d *Debouncer) SetQuery(level Level, raw string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[level] = raw
	if t, ok := d.timers[level]; ok {
		t.Reset(d.delay)
		return
	}
	d.timers[level] = time.AfterFunc(d.delay, func() { d.fire(level) })
}

func (d *Debouncer) fire(level Level) {
	d.mu.Lock()
	raw, ok := d.pending[level]
	if !ok {
		d.mu.Unlock()
		return
	}
	delete(d.pending, level)
	d.queries[level] = raw
	d.mu.Unlock()

	if d.onCommit != nil {
		d.onCommit(level, raw)
	}
}

// SetQueryNow commits raw immediately, dropping any pending value.
func (d *Debouncer) SetQueryNow(level Level, raw string) {
	d.mu.Lock()
	d.stopLocked(level)
	d.queries[level] = raw
	d.mu.Unlock()

	if d.onCommit != nil {
		d.onCommit(level, raw)
	}
}

// Reset clears the query of level and any pending value.
func (d *Debouncer) Reset(level Level) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked(level)
	delete(d.queries, level)
}

// Query returns the committed query of level.
func (d *Debouncer) Query(level Level) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.queries[level]
}

// Stop cancels every pending commit.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for level := range d.timers {
		d.stopLocked(level)
	}
}

func (d *Debouncer) stopLocked(level Level) {
	if t, ok := d.timers[level]; ok {
		t.Stop()
		delete(d.timers, level)
	}
	delete(d.pending, level)
}
