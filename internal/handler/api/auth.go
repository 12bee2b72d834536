// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mileusna/useragent"

	"github.com/olegiv/eventfx/internal/auth"
	"github.com/olegiv/eventfx/internal/middleware"
	"github.com/olegiv/eventfx/internal/model"
	"github.com/olegiv/eventfx/internal/session"
	"github.com/olegiv/eventfx/internal/store"
)

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// MeResponse wraps the authenticated principal.
type MeResponse struct {
	User model.Principal `json:"user"`
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		WriteValidationError(w, "username and password are required")
		return
	}

	ctx := r.Context()
	logAttrs := []any{"category", "auth", "username", req.Username, "ip", middleware.ClientIP(r)}

	if locked, remaining := h.login.IsAccountLocked(req.Username); locked {
		slog.Warn("login attempt on locked account", logAttrs...)
		WriteError(w, http.StatusTooManyRequests, middleware.CodeRateLimited,
			fmt.Sprintf("account locked, try again in %s", formatDuration(remaining)))
		return
	}

	admin, err := h.store.GetAdminByUsername(ctx, req.Username)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Error("database error during login", "category", "auth", "error", err)
			WriteInternalError(w, "login failed")
			return
		}
		// Unknown usernames count too, so accounts cannot be enumerated.
		slog.Warn("login failed: unknown admin", logAttrs...)
		h.rejectLogin(w, req.Username)
		return
	}

	valid, err := auth.CheckPassword(req.Password, admin.PasswordHash)
	if err != nil {
		slog.Error("password check error", "category", "auth", "admin_id", admin.ID, "error", err)
	}
	if !valid || !admin.IsActive {
		slog.Warn("login failed: invalid password or inactive admin", logAttrs...)
		h.rejectLogin(w, req.Username)
		return
	}

	h.login.RecordSuccessfulLogin(req.Username)

	if auth.NeedsRehash(admin.PasswordHash) {
		if newHash, err := auth.HashPassword(req.Password); err == nil {
			if err := h.store.UpdateAdminPassword(ctx, admin.ID, newHash); err != nil {
				slog.Error("failed to re-hash password", "category", "auth", "admin_id", admin.ID, "error", err)
			}
		}
	}

	if err := h.store.TouchAdminLogin(ctx, admin.ID); err != nil {
		slog.Error("failed to update last login time", "category", "auth", "admin_id", admin.ID, "error", err)
	}

	// New token on login so a planted session id is useless.
	if err := h.sessions.RenewToken(ctx); err != nil {
		slog.Error("session renewal error", "category", "auth", "error", err)
		WriteInternalError(w, "login failed")
		return
	}
	h.sessions.Put(ctx, session.KeyAdminID, admin.ID)
	h.sessions.Put(ctx, session.KeyUsername, admin.Username)

	ua := useragent.Parse(r.UserAgent())
	slog.Info("admin logged in",
		"category", "auth",
		"admin_id", admin.ID,
		"username", admin.Username,
		"browser", orUnknown(ua.Name),
		"os", orUnknown(ua.OS),
		"bot", ua.Bot,
	)

	WriteJSON(w, http.StatusOK, MeResponse{User: model.Principal{
		ID:       admin.ID,
		Username: admin.Username,
		Role:     model.RoleAdmin,
	}})
}

// rejectLogin records a failure and answers 401, or 429 once the account
// gets locked.
func (h *Handler) rejectLogin(w http.ResponseWriter, username string) {
	if locked, d := h.login.RecordFailedAttempt(username); locked {
		WriteError(w, http.StatusTooManyRequests, middleware.CodeRateLimited,
			fmt.Sprintf("too many failed attempts, try again in %s", formatDuration(d)))
		return
	}
	WriteError(w, http.StatusUnauthorized, CodeInvalidCredentials, "invalid username or password")
}

// Logout handles POST /api/auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if p := middleware.GetPrincipal(r); p != nil {
		slog.Info("admin logged out", "category", "auth", "admin_id", p.ID)
	}
	if err := h.sessions.Destroy(r.Context()); err != nil {
		slog.Error("session destroy error", "category", "auth", "error", err)
		WriteInternalError(w, "logout failed")
		return
	}
	WriteOK(w)
}

// Me handles GET /api/auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r)
	if p == nil {
		WriteError(w, http.StatusUnauthorized, middleware.CodeUnauthorized, "unauthorized")
		return
	}
	WriteJSON(w, http.StatusOK, MeResponse{User: *p})
}

// formatDuration renders a lockout duration rounded up to whole minutes.
func formatDuration(d time.Duration) string {
	minutes := int((d + time.Minute - 1) / time.Minute)
	if minutes <= 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
