// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/eventfx/internal/model"
)

// fakeAPI records requests and answers from a route table.
type fakeAPI struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   []map[string]any
	routes   map[string]http.HandlerFunc
}

func newFakeAPI(t *testing.T, routes map[string]http.HandlerFunc) (*fakeAPI, *Client) {
	t.Helper()
	f := &fakeAPI{routes: routes}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	c, err := New(Options{BaseURL: srv.URL + "/", Timeout: 2 * time.Second})
	require.NoError(t, err)
	return f, c
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	f.mu.Lock()
	f.requests = append(f.requests, r)
	f.bodies = append(f.bodies, body)
	f.mu.Unlock()

	if h, ok := f.routes[r.Method+" "+r.URL.Path]; ok {
		h(w, r)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (f *fakeAPI) last() (*http.Request, map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1], f.bodies[len(f.bodies)-1]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8080", "://bad"} {
		_, err := New(Options{BaseURL: raw})
		assert.Errorf(t, err, "New(%q)", raw)
	}
}

func TestLogin_KeepsSessionCookie(t *testing.T) {
	f, c := newFakeAPI(t, map[string]http.HandlerFunc{
		"POST /api/auth/login": func(w http.ResponseWriter, _ *http.Request) {
			http.SetCookie(w, &http.Cookie{Name: "SESSION", Value: "tok", Path: "/"})
			writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{"sub": 1, "username": "admin", "role": "admin"}})
		},
		"GET /api/auth/me": func(w http.ResponseWriter, r *http.Request) {
			if ck, err := r.Cookie("SESSION"); err != nil || ck.Value != "tok" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{"sub": 1, "username": "admin", "role": "admin"}})
		},
	})
	ctx := context.Background()

	_, err := c.Me(ctx)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, "unauthorized", MessageOf(err))

	p, err := c.Login(ctx, "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, model.Principal{ID: 1, Username: "admin", Role: "admin"}, p)

	_, body := f.last()
	assert.Equal(t, "admin", body["username"])

	p, err = c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin", p.Username)
}

func TestRequestIDHeader(t *testing.T) {
	f, c := newFakeAPI(t, map[string]http.HandlerFunc{
		"GET /api/services": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, []model.Service{})
		},
	})

	_, err := c.ListServices(context.Background())
	require.NoError(t, err)
	_, _ = c.ListServices(context.Background())

	f.mu.Lock()
	defer f.mu.Unlock()
	first := f.requests[0].Header.Get(RequestIDHeader)
	second := f.requests[1].Header.Get(RequestIDHeader)
	_, err = uuid.Parse(first)
	assert.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestServices(t *testing.T) {
	f, c := newFakeAPI(t, map[string]http.HandlerFunc{
		"GET /api/services": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("null"))
		},
		"POST /api/services": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusCreated, map[string]any{"id": 7})
		},
		"PUT /api/services/7": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		},
		"DELETE /api/services/7": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		},
	})
	ctx := context.Background()

	list, err := c.ListServices(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	svc, err := c.CreateService(ctx, model.ServiceInput{Title: "Pirotecnia", ImageURL: "/p.png"})
	require.NoError(t, err)
	assert.Equal(t, model.Service{ID: 7, Title: "Pirotecnia", ImageURL: "/p.png"}, svc, "id-only responses are merged with the input")

	require.NoError(t, c.UpdateService(ctx, 7, model.ServiceInput{Title: "Pirotecnia 2"}))
	_, body := f.last()
	assert.Equal(t, "Pirotecnia 2", body["title"])

	require.NoError(t, c.DeleteService(ctx, 7))
	req, _ := f.last()
	assert.Equal(t, http.MethodDelete, req.Method)
}

func TestExtras(t *testing.T) {
	f, c := newFakeAPI(t, map[string]http.HandlerFunc{
		"GET /api/extras": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, []map[string]any{
				{"id": 1, "title": "CO2", "viewId": "co2", "isActive": true},
			})
		},
		"POST /api/extras": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusCreated, map[string]any{"id": 12})
		},
		"DELETE /api/extras/12": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		},
	})
	ctx := context.Background()

	list, err := c.ListExtras(ctx, ExtrasQuery{ServiceID: 3, Locale: "en", IncludeInactive: true})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(3), list[0].ServiceID, "missing serviceId is filled from the query")
	assert.Equal(t, "pt", list[0].Locale, "missing locale defaults to pt")

	req, _ := f.last()
	assert.Equal(t, "3", req.URL.Query().Get("service_id"))
	assert.Equal(t, "en", req.URL.Query().Get("locale"))
	assert.Equal(t, "true", req.URL.Query().Get("include_inactive"))

	extra, err := c.CreateExtra(ctx, model.ExtraInput{ServiceID: 3, Title: "Lasers", ImageURL: "/l.png", ViewID: "lasers"})
	require.NoError(t, err)
	assert.Equal(t, model.Extra{ID: 12, ServiceID: 3, Title: "Lasers", ImageURL: "/l.png", ViewID: "lasers", Locale: "pt", IsActive: true}, extra)

	require.NoError(t, c.DeleteExtra(ctx, 12, "en"))
	req, _ = f.last()
	assert.Equal(t, "en", req.URL.Query().Get("locale"))
}

func TestDetails(t *testing.T) {
	f, c := newFakeAPI(t, map[string]http.HandlerFunc{
		"GET /api/details": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("view_id") != "co2" {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "detail not found", "code": "not_found"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"description": "Jatos",
				"galleryUrls": nil,
				"highlights":  []any{"bolt | Impacto | Alto"},
			})
		},
		"POST /api/details": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		},
		"DELETE /api/details": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		},
	})
	ctx := context.Background()

	d, err := c.GetDetail(ctx, "missing", "pt")
	require.NoError(t, err, "404 is not an error")
	assert.Nil(t, d)

	d, err = c.GetDetail(ctx, "co2", "en")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "co2", d.ViewID)
	assert.Equal(t, "en", d.Locale)
	assert.Equal(t, []string{}, d.GalleryURLs)
	assert.Equal(t, []model.Highlight{{Icon: "bolt", Title: "Impacto", Desc: "Alto"}}, d.Highlights)

	require.NoError(t, c.SaveDetail(ctx, model.Detail{ViewID: "co2", Locale: "pt", GalleryURLs: []string{" ", "/a.png"}}))
	_, body := f.last()
	assert.Equal(t, []any{"/a.png"}, body["galleryUrls"], "blank gallery urls are dropped before sending")

	require.NoError(t, c.DeleteDetail(ctx, "co2", ""))
	req, _ := f.last()
	assert.Equal(t, "co2", req.URL.Query().Get("view_id"))
	assert.False(t, req.URL.Query().Has("locale"))
}

func TestErrors(t *testing.T) {
	_, c := newFakeAPI(t, map[string]http.HandlerFunc{
		"POST /api/extras": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "viewId already exists", "code": "conflict"})
		},
		"DELETE /api/services/1": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("<html>oops</html>"))
		},
	})
	ctx := context.Background()

	_, err := c.CreateExtra(ctx, model.ExtraInput{Title: "X"})
	var re *Error
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusConflict, re.Status)
	assert.Equal(t, "conflict", re.Code)
	assert.Equal(t, "viewId already exists", re.Message)
	assert.Contains(t, err.Error(), "create extra")

	err = c.DeleteService(ctx, 1)
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
	assert.Empty(t, MessageOf(err), "non-JSON bodies carry no message")
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c, err := New(Options{BaseURL: srv.URL, Timeout: time.Second})
	require.NoError(t, err)

	_, err = c.ListServices(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, StatusOf(err))
	assert.False(t, IsUnauthorized(err))
}
