// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/eventfx/internal/model"
	"github.com/olegiv/eventfx/internal/session"
	"github.com/olegiv/eventfx/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyPrincipal holds the *model.Principal of an authenticated request.
const ContextKeyPrincipal ContextKey = "principal"

// LoadAdmin resolves the session's admin and stores it in the request
// context. Sessions pointing at a missing or deactivated admin are
// destroyed. Requests without a session pass through untouched.
func LoadAdmin(sm *scs.SessionManager, queries *store.Queries) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			adminID := sm.GetInt64(r.Context(), session.KeyAdminID)
			if adminID == 0 {
				next.ServeHTTP(w, r)
				return
			}

			admin, err := queries.GetAdmin(r.Context(), adminID)
			if err != nil || !admin.IsActive {
				if err != nil {
					slog.Debug("session admin not loadable", "admin_id", adminID, "error", err)
				}
				_ = sm.Destroy(r.Context())
				next.ServeHTTP(w, r)
				return
			}

			p := &model.Principal{ID: admin.ID, Username: admin.Username, Role: model.RoleAdmin}
			ctx := context.WithValue(r.Context(), ContextKeyPrincipal, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests without an authenticated admin with a JSON
// 401. It must run after LoadAdmin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetPrincipal(r) == nil {
			WriteAPIError(w, http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetPrincipal returns the authenticated admin or nil.
func GetPrincipal(r *http.Request) *model.Principal {
	p, _ := r.Context().Value(ContextKeyPrincipal).(*model.Principal)
	return p
}

// WithPrincipal returns a copy of ctx carrying p. Used by tests and by
// handlers that authenticate inline.
func WithPrincipal(ctx context.Context, p *model.Principal) context.Context {
	return context.WithValue(ctx, ContextKeyPrincipal, p)
}
