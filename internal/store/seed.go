// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/olegiv/eventfx/internal/auth"
)

// SeedAdmin creates the admin account or resets its password.
func SeedAdmin(ctx context.Context, q *Queries, username, password string) error {
	if username == "" || password == "" {
		return errors.New("admin username and password are required")
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if err := q.UpsertAdmin(ctx, username, passwordHash); err != nil {
		return fmt.Errorf("seeding admin %q: %w", username, err)
	}

	slog.Info("admin created or updated", "username", username)
	return nil
}
