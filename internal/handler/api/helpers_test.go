// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olegiv/eventfx/internal/cache"
	"github.com/olegiv/eventfx/internal/middleware"
	"github.com/olegiv/eventfx/internal/session"
	"github.com/olegiv/eventfx/internal/store"
	"github.com/olegiv/eventfx/internal/testutil"
)

const (
	testAdmin    = testutil.AdminUsername
	testPassword = testutil.AdminPassword
)

// testServer is a running API backed by a fresh sqlite database.
type testServer struct {
	t      *testing.T
	srv    *httptest.Server
	store  *store.Store
	client *http.Client
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	s := testutil.TestStore(t)
	h := NewHandler(Deps{
		Store:    s,
		Catalog:  testutil.TestCatalog(t),
		Sessions: session.New(s.DB(), true),
		Login: middleware.NewLoginProtection(middleware.LoginProtectionConfig{
			IPRateLimit:       100,
			IPBurst:           100,
			MaxFailedAttempts: 3,
		}),
		CacheBackend: cache.BackendMemory,
		PublicMaxAge: 30,
	})

	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testServer{t: t, srv: srv, store: s, client: &http.Client{Jar: jar}}
}

// do sends a JSON request and returns the status and raw body.
func (ts *testServer) do(method, path string, body any) (int, []byte) {
	ts.t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, ts.srv.URL+path, reader)
	require.NoError(ts.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ts.client.Do(req)
	require.NoError(ts.t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(ts.t, err)
	return resp.StatusCode, raw
}

// doJSON sends a request, checks the status and decodes the body into out.
func (ts *testServer) doJSON(method, path string, body any, wantStatus int, out any) {
	ts.t.Helper()
	code, raw := ts.do(method, path, body)
	require.Equalf(ts.t, wantStatus, code, "%s %s: %s", method, path, raw)
	if out != nil {
		require.NoError(ts.t, json.Unmarshal(raw, out), string(raw))
	}
}

func (ts *testServer) login() {
	ts.t.Helper()
	ts.doJSON(http.MethodPost, "/api/auth/login",
		LoginRequest{Username: testAdmin, Password: testPassword}, http.StatusOK, nil)
}

func decodeError(t *testing.T, raw []byte) middleware.APIError {
	t.Helper()
	var e middleware.APIError
	require.NoError(t, json.Unmarshal(raw, &e), string(raw))
	return e
}
