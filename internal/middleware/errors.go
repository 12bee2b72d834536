// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides the HTTP middleware of the catalog API:
// admin session guard, login protection, rate limiting, CORS, CSRF,
// security headers and request timeouts.
package middleware

import (
	"encoding/json"
	"net/http"
)

// Error codes shared by middleware and handlers.
const (
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeRateLimited  = "rate_limited"
	CodeTimeout      = "timeout"
)

// APIError is the JSON error body of every non-2xx API response.
type APIError struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// WriteAPIError writes a JSON error response.
func WriteAPIError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIError{Error: message, Code: code})
}
