// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backoffice

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/eventfx/internal/model"
	"github.com/olegiv/eventfx/internal/remote"
)

func TestController_LoadServicesOnce(t *testing.T) {
	ctx := context.Background()
	f := newFakeRemote()
	f.addService("Pirotecnia")
	f.addService("Efeitos Especiais")
	c := newTestController(t, f)

	require.NoError(t, c.LoadServices(ctx))
	require.NoError(t, c.LoadServices(ctx))
	assert.Equal(t, 1, f.count("ListServices"))

	list, state := c.Services()
	assert.Equal(t, Loaded, state)
	assert.Len(t, list, 2)

	require.NoError(t, c.RefreshServices(ctx))
	assert.Equal(t, 2, f.count("ListServices"))
}

func TestController_LoadFailure(t *testing.T) {
	ctx := context.Background()
	f := newFakeRemote()
	c := newTestController(t, f)

	boom := errors.New("connection refused")
	f.failWith("ListServices", boom)
	require.ErrorIs(t, c.LoadServices(ctx), boom)
	_, state := c.Services()
	assert.Equal(t, Failed, state)

	f.failWith("ListServices", nil)
	require.NoError(t, c.LoadServices(ctx))
	_, state = c.Services()
	assert.Equal(t, Loaded, state)
}

func TestController_SelectAndFilter(t *testing.T) {
	ctx := context.Background()
	f := newFakeRemote()
	piro := f.addService("Pirotecnia")
	fx := f.addService("Efeitos Especiais")
	f.addExtra(piro.ID, "CO2", "co2")
	f.addExtra(piro.ID, "Lasers", "lasers")
	f.addExtra(fx.ID, "Confettis", "confettis")
	c := newTestController(t, f)

	require.NoError(t, c.LoadServices(ctx))
	require.ErrorIs(t, c.SelectService(ctx, 999), ErrUnknownEntity)

	c.SetQueryNow(Level0, "piro")
	services, _ := c.Services()
	require.Len(t, services, 1)
	assert.Equal(t, piro.ID, services[0].ID)

	require.NoError(t, c.SelectService(ctx, piro.ID))
	extras, state := c.Extras()
	assert.Equal(t, Loaded, state)
	assert.Len(t, extras, 2)

	c.SetQueryNow(Level1, "las")
	extras, _ = c.Extras()
	require.Len(t, extras, 1)
	assert.Equal(t, "Lasers", extras[0].Title)

	// A new parent resets the child query.
	require.NoError(t, c.SelectService(ctx, fx.ID))
	assert.Empty(t, c.Query(Level1))
	extras, _ = c.Extras()
	assert.Len(t, extras, 1)

	assert.Equal(t, "piro", c.Query(Level0), "parent query kept")

	c.SetQueryNow(Level1, "conf")
	assert.Equal(t, Backward, c.Back())
	assert.Empty(t, c.Query(Level1))
	assert.Equal(t, Level0, c.Selection().Level)
}

func TestController_DetailForm(t *testing.T) {
	ctx := context.Background()
	f := newFakeRemote()
	piro := f.addService("Pirotecnia")
	co2 := f.addExtra(piro.ID, "CO2", "co2")
	c := newTestController(t, f)

	require.NoError(t, c.LoadServices(ctx))
	require.NoError(t, c.SelectService(ctx, piro.ID))
	require.NoError(t, c.SelectExtra(ctx, co2.ID))
	require.ErrorIs(t, c.SelectExtra(ctx, 999), ErrUnknownEntity)

	d, state := c.Detail()
	assert.Equal(t, Loaded, state)
	assert.Nil(t, d)

	form, ok := c.DetailForm()
	require.True(t, ok)
	assert.Equal(t, model.EmptyDetail("co2", "pt"), form)
}

func TestController_StaleDetailDiscarded(t *testing.T) {
	ctx := context.Background()
	f := newFakeRemote()
	piro := f.addService("Pirotecnia")
	co2 := f.addExtra(piro.ID, "CO2", "co2")
	lasers := f.addExtra(piro.ID, "Lasers", "lasers")
	f.details[detailID("co2", "pt")] = model.Detail{ViewID: "co2", Locale: "pt", Description: "Jatos de CO2"}
	c := newTestController(t, f)

	require.NoError(t, c.LoadServices(ctx))
	require.NoError(t, c.SelectService(ctx, piro.ID))

	started := make(chan struct{})
	release := make(chan struct{})
	var blocked atomic.Bool
	f.hook = func(op string) {
		if op == "GetDetail" && blocked.CompareAndSwap(false, true) {
			close(started)
			<-release
		}
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, c.SelectExtra(ctx, co2.ID))
	}()
	<-started

	// The user moves on before the co2 detail arrives.
	require.NoError(t, c.SelectExtra(ctx, lasers.ID))
	close(release)
	wg.Wait()

	ex, ok := c.SelectedExtra()
	require.True(t, ok)
	assert.Equal(t, lasers.ID, ex.ID)

	f.hook = nil
	c.mu.Lock()
	_, state := c.cache.Detail("co2")
	c.mu.Unlock()
	assert.Equal(t, NotRequested, state, "stale co2 result cached")

	// Coming back fetches co2 again.
	c.Back()
	require.NoError(t, c.SelectExtra(ctx, co2.ID))
	d, _ := c.Detail()
	require.NotNil(t, d)
	assert.Equal(t, "Jatos de CO2", d.Description)
}

func TestController_ReloadClearsMissingSelection(t *testing.T) {
	ctx := context.Background()
	f := newFakeRemote()
	piro := f.addService("Pirotecnia")
	co2 := f.addExtra(piro.ID, "CO2", "co2")
	c := newTestController(t, f)

	require.NoError(t, c.LoadServices(ctx))
	require.NoError(t, c.SelectService(ctx, piro.ID))
	require.NoError(t, c.SelectExtra(ctx, co2.ID))

	// Removed by someone else.
	require.NoError(t, f.DeleteExtra(ctx, co2.ID, ""))
	c.refetchExtras(ctx, piro.ID)
	assert.Equal(t, Selection{Level: Level1, ServiceID: piro.ID, Direction: Backward}, c.Selection())

	require.NoError(t, f.DeleteService(ctx, piro.ID))
	require.NoError(t, c.RefreshServices(ctx))
	assert.Equal(t, Level0, c.Selection().Level)
}

func TestController_PrefetchExtraCounts(t *testing.T) {
	ctx := context.Background()
	f := newFakeRemote()
	var ids []int64
	for _, title := range []string{"A", "B", "C", "D", "E"} {
		s := f.addService(title)
		ids = append(ids, s.ID)
		for i := 0; i < len(ids); i++ {
			f.addExtra(s.ID, title, title+"-"+string(rune('a'+i)))
		}
	}

	var inFlight, peak atomic.Int32
	f.hook = func(op string) {
		if op != "ListExtras" {
			return
		}
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
	}

	c := newTestController(t, f)
	require.NoError(t, c.LoadServices(ctx))
	require.NoError(t, c.PrefetchExtraCounts(ctx))

	for i, id := range ids {
		n, ok := c.ExtraCount(id)
		require.True(t, ok)
		assert.Equal(t, i+1, n)
	}
	assert.LessOrEqual(t, peak.Load(), int32(2), "prefetch limit exceeded")
	assert.Equal(t, 5, f.count("ListExtras"))

	// Already cached lists are not fetched again.
	require.NoError(t, c.PrefetchExtraCounts(ctx))
	assert.Equal(t, 5, f.count("ListExtras"))
}

// slowRemote fails the extras list of failID at once and makes every other
// extras list wait, honoring cancellation.
type slowRemote struct {
	*fakeRemote
	failID int64
	delay  time.Duration
}

func (r *slowRemote) ListExtras(ctx context.Context, q remote.ExtrasQuery) ([]model.Extra, error) {
	if q.ServiceID == r.failID {
		return nil, statusError("list extras", http.StatusInternalServerError, "boom")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(r.delay):
	}
	return r.fakeRemote.ListExtras(ctx, q)
}

func TestController_PrefetchFailureIsolated(t *testing.T) {
	ctx := context.Background()
	f := newFakeRemote()
	broken := f.addService("Broken")
	slow := f.addService("Slow")
	queued := f.addService("Queued")
	f.addExtra(slow.ID, "CO2", "co2")
	f.addExtra(queued.ID, "Lasers", "lasers")
	f.addExtra(queued.ID, "Sparks", "sparks")

	c := newTestController(t, &slowRemote{fakeRemote: f, failID: broken.ID, delay: 30 * time.Millisecond})
	require.NoError(t, c.LoadServices(ctx))

	err := c.PrefetchExtraCounts(ctx)
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, remote.StatusOf(err))

	_, known := c.ExtraCount(broken.ID)
	assert.False(t, known)
	for id, want := range map[int64]int{slow.ID: 1, queued.ID: 2} {
		n, ok := c.ExtraCount(id)
		require.True(t, ok, "service %d count missing", id)
		assert.Equal(t, want, n)
	}

	c.mu.Lock()
	_, brokenState := c.cache.Extras(broken.ID)
	_, slowState := c.cache.Extras(slow.ID)
	_, queuedState := c.cache.Extras(queued.ID)
	c.mu.Unlock()
	assert.Equal(t, Failed, brokenState)
	assert.Equal(t, Loaded, slowState)
	assert.Equal(t, Loaded, queuedState)
}

func TestController_ListsAreCopies(t *testing.T) {
	ctx := context.Background()
	f := newFakeRemote()
	piro := f.addService("Pirotecnia")
	f.addExtra(piro.ID, "CO2", "co2")
	c := newTestController(t, f)
	require.NoError(t, c.LoadServices(ctx))
	require.NoError(t, c.SelectService(ctx, piro.ID))

	services, _ := c.Services()
	require.Len(t, services, 1)
	services[0].Title = "changed"
	services, _ = c.Services()
	assert.Equal(t, "Pirotecnia", services[0].Title)

	extras, _ := c.Extras()
	require.Len(t, extras, 1)
	extras[0].ViewID = "changed"
	extras, _ = c.Extras()
	assert.Equal(t, "co2", extras[0].ViewID)
}

func TestController_SetLocale(t *testing.T) {
	ctx := context.Background()
	f := newFakeRemote()
	piro := f.addService("Pirotecnia")
	c := newTestController(t, f)

	require.NoError(t, c.LoadServices(ctx))
	require.NoError(t, c.SelectService(ctx, piro.ID))

	var verr *ValidationError
	require.ErrorAs(t, c.SetLocale("not a locale"), &verr)

	require.NoError(t, c.SetLocale("en"))
	assert.Equal(t, "en", c.Locale())
	assert.Equal(t, Level0, c.Selection().Level)

	_, state := c.Services()
	assert.Equal(t, Loaded, state, "services are not localized")
}
