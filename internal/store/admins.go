// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"

	"github.com/olegiv/eventfx/internal/model"
)

const adminColumns = `id, username, password_hash, is_active, created_at, last_login_at`

const getAdminByUsername = `SELECT ` + adminColumns + ` FROM admins WHERE username = ? LIMIT 1`

// GetAdminByUsername returns the admin with username, active or not.
func (q *Queries) GetAdminByUsername(ctx context.Context, username string) (model.Admin, error) {
	var a model.Admin
	err := q.db.QueryRowContext(ctx, getAdminByUsername, username).
		Scan(&a.ID, &a.Username, &a.PasswordHash, &a.IsActive, &a.CreatedAt, &a.LastLoginAt)
	return a, translate(err)
}

const getAdmin = `SELECT ` + adminColumns + ` FROM admins WHERE id = ?`

// GetAdmin returns the admin with id.
func (q *Queries) GetAdmin(ctx context.Context, id int64) (model.Admin, error) {
	var a model.Admin
	err := q.db.QueryRowContext(ctx, getAdmin, id).
		Scan(&a.ID, &a.Username, &a.PasswordHash, &a.IsActive, &a.CreatedAt, &a.LastLoginAt)
	return a, translate(err)
}

const upsertAdmin = `INSERT INTO admins (username, password_hash, is_active)
VALUES (?, ?, 1)
ON CONFLICT(username) DO UPDATE SET
    password_hash = excluded.password_hash,
    is_active = 1`

// UpsertAdmin creates the admin or resets its password and reactivates it.
func (q *Queries) UpsertAdmin(ctx context.Context, username, passwordHash string) error {
	if _, err := q.db.ExecContext(ctx, upsertAdmin, username, passwordHash); err != nil {
		return fmt.Errorf("upserting admin: %w", err)
	}
	return nil
}

const updateAdminPassword = `UPDATE admins SET password_hash = ? WHERE id = ?`

// UpdateAdminPassword replaces the stored hash, used for rehashing.
func (q *Queries) UpdateAdminPassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := q.db.ExecContext(ctx, updateAdminPassword, passwordHash, id)
	if err != nil {
		return fmt.Errorf("updating admin password: %w", err)
	}
	return affected(res)
}

const touchAdminLogin = `UPDATE admins SET last_login_at = CURRENT_TIMESTAMP WHERE id = ?`

// TouchAdminLogin records a successful login.
func (q *Queries) TouchAdminLogin(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, touchAdminLogin, id)
	return err
}

const countAdmins = `SELECT COUNT(*) FROM admins`

// CountAdmins returns the number of admin rows.
func (q *Queries) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countAdmins).Scan(&n)
	return n, err
}
