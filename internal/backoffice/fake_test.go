// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backoffice

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/olegiv/eventfx/internal/model"
	"github.com/olegiv/eventfx/internal/remote"
)

// fakeRemote is an in-memory catalog. hook, when set, runs at the start of
// every call without the lock held so tests can block or observe calls.
type fakeRemote struct {
	mu       sync.Mutex
	nextID   int64
	services []model.Service
	extras   []model.Extra
	details  map[string]model.Detail
	calls    map[string]int
	fail     map[string]error
	hook     func(op string)
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		details: make(map[string]model.Detail),
		calls:   make(map[string]int),
		fail:    make(map[string]error),
	}
}

func detailID(viewID, locale string) string { return viewID + "|" + locale }

func (f *fakeRemote) enter(op string) error {
	if f.hook != nil {
		f.hook(op)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	return f.fail[op]
}

func (f *fakeRemote) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeRemote) failWith(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op] = err
}

func (f *fakeRemote) addService(title string) model.Service {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	s := model.Service{ID: f.nextID, Title: title, ImageURL: "/img/" + title + ".jpg"}
	f.services = append(f.services, s)
	return s
}

func (f *fakeRemote) addExtra(serviceID int64, title, viewID string) model.Extra {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	e := model.Extra{ID: f.nextID, ServiceID: serviceID, Title: title, ImageURL: "/img/x.jpg", ViewID: viewID, Locale: "pt", IsActive: true}
	f.extras = append(f.extras, e)
	return e
}

func statusError(op string, status int, msg string) error {
	return &remote.Error{Op: op, Status: status, Message: msg}
}

func (f *fakeRemote) ListServices(context.Context) ([]model.Service, error) {
	if err := f.enter("ListServices"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Service{}, f.services...), nil
}

func (f *fakeRemote) CreateService(_ context.Context, in model.ServiceInput) (model.Service, error) {
	if err := f.enter("CreateService"); err != nil {
		return model.Service{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	s := model.Service{ID: f.nextID, Title: in.Title, ImageURL: in.ImageURL}
	f.services = append(f.services, s)
	return s, nil
}

func (f *fakeRemote) UpdateService(_ context.Context, id int64, in model.ServiceInput) error {
	if err := f.enter("UpdateService"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.services {
		if f.services[i].ID == id {
			f.services[i].Title = in.Title
			f.services[i].ImageURL = in.ImageURL
			return nil
		}
	}
	return statusError("update service", http.StatusNotFound, "service not found")
}

func (f *fakeRemote) DeleteService(_ context.Context, id int64) error {
	if err := f.enter("DeleteService"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	services := f.services[:0]
	for _, s := range f.services {
		if s.ID != id {
			services = append(services, s)
		}
	}
	f.services = services
	extras := f.extras[:0]
	for _, e := range f.extras {
		if e.ServiceID == id {
			for k, d := range f.details {
				if d.ViewID == e.ViewID {
					delete(f.details, k)
				}
			}
			continue
		}
		extras = append(extras, e)
	}
	f.extras = extras
	return nil
}

func (f *fakeRemote) ListExtras(_ context.Context, q remote.ExtrasQuery) ([]model.Extra, error) {
	if err := f.enter("ListExtras"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Extra{}
	for _, e := range f.extras {
		if e.ServiceID == q.ServiceID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRemote) CreateExtra(_ context.Context, in model.ExtraInput) (model.Extra, error) {
	if err := f.enter("CreateExtra"); err != nil {
		return model.Extra{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.extras {
		if e.ViewID == in.ViewID {
			return model.Extra{}, statusError("create extra", http.StatusConflict, "viewId already exists")
		}
	}
	f.nextID++
	e := model.Extra{
		ID: f.nextID, ServiceID: in.ServiceID, Title: in.Title, ImageURL: in.ImageURL,
		ViewID: in.ViewID, Locale: in.Locale, IsActive: in.Active(),
	}
	f.extras = append(f.extras, e)
	return e, nil
}

func (f *fakeRemote) UpdateExtra(_ context.Context, id int64, in model.ExtraInput) error {
	if err := f.enter("UpdateExtra"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.extras {
		if f.extras[i].ID != id {
			continue
		}
		old := f.extras[i].ViewID
		f.extras[i].Title = in.Title
		f.extras[i].ImageURL = in.ImageURL
		f.extras[i].ViewID = in.ViewID
		f.extras[i].Locale = in.Locale
		f.extras[i].IsActive = in.Active()
		if old != in.ViewID {
			for k, d := range f.details {
				if d.ViewID == old {
					delete(f.details, k)
					d.ViewID = in.ViewID
					f.details[detailID(d.ViewID, d.Locale)] = d
				}
			}
		}
		return nil
	}
	return statusError("update extra", http.StatusNotFound, "extra not found")
}

func (f *fakeRemote) DeleteExtra(_ context.Context, id int64, _ string) error {
	if err := f.enter("DeleteExtra"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	extras := f.extras[:0]
	for _, e := range f.extras {
		if e.ID == id {
			for k, d := range f.details {
				if d.ViewID == e.ViewID {
					delete(f.details, k)
				}
			}
			continue
		}
		extras = append(extras, e)
	}
	f.extras = extras
	return nil
}

func (f *fakeRemote) GetDetail(_ context.Context, viewID, locale string) (*model.Detail, error) {
	if err := f.enter("GetDetail"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.details[detailID(viewID, locale)]
	if !ok {
		return nil, nil
	}
	return d.Clone(), nil
}

func (f *fakeRemote) SaveDetail(_ context.Context, d model.Detail) error {
	if err := f.enter("SaveDetail"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.details[detailID(d.ViewID, d.Locale)] = d
	return nil
}

func (f *fakeRemote) DeleteDetail(_ context.Context, viewID, locale string) error {
	if err := f.enter("DeleteDetail"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.details, detailID(viewID, locale))
	return nil
}

func newTestController(t *testing.T, r Remote) *Controller {
	t.Helper()
	c := New(r, Options{
		Locale:        "pt",
		Debounce:      10 * time.Millisecond,
		PrefetchLimit: 2,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	t.Cleanup(c.Close)
	return c
}
