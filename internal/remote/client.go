// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package remote is the typed HTTP client of the catalog API. Every call
// returns normalized records or an *Error.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/eventfx/internal/model"
)

// maxResponseSize caps response bodies.
const maxResponseSize = 4 << 20

// RequestIDHeader correlates client calls with server logs.
const RequestIDHeader = "X-Request-Id"

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the transport. Its Jar, if nil, is replaced by a
	// fresh cookie jar so the session cookie survives between calls.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to one catalog server on behalf of one session.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *slog.Logger
}

// New creates a client for opts.BaseURL.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid catalog URL %q", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	if hc.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("creating cookie jar: %w", err)
		}
		hc.Jar = jar
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{base: base, http: hc, logger: logger}, nil
}

// errorBody mirrors the server's error envelope.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// do performs one call. A nil out discards the response body.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	u := c.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, Err: fmt.Errorf("encoding request: %w", err)}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("catalog call failed", "op", op, "request_id", requestID, "error", err)
		return &Error{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &Error{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}

	c.logger.Debug("catalog call",
		"op", op,
		"method", method,
		"path", u.Path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"took", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		re := &Error{Op: op, Status: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil {
			re.Message = strings.TrimSpace(eb.Error)
			re.Code = eb.Code
		}
		return re
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

func idPath(prefix string, id int64) string {
	return prefix + "/" + strconv.FormatInt(id, 10)
}

// loginRequest is the body of POST /api/auth/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type meResponse struct {
	User model.Principal `json:"user"`
}

// Login opens an admin session. The session cookie is kept in the client.
func (c *Client) Login(ctx context.Context, username, password string) (model.Principal, error) {
	var resp meResponse
	err := c.do(ctx, "login", http.MethodPost, "/api/auth/login", nil,
		loginRequest{Username: username, Password: password}, &resp)
	return resp.User, err
}

// Logout ends the admin session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, "logout", http.MethodPost, "/api/auth/logout", nil, nil, nil)
}

// Me returns the session's admin, or an unauthorized *Error.
func (c *Client) Me(ctx context.Context) (model.Principal, error) {
	var resp meResponse
	err := c.do(ctx, "me", http.MethodGet, "/api/auth/me", nil, nil, &resp)
	return resp.User, err
}
