// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// RoleAdmin is the only role; every authenticated principal is an admin.
const RoleAdmin = "admin"

// Admin is a backoffice account.
type Admin struct {
	ID           int64        `json:"id"`
	Username     string       `json:"username"`
	PasswordHash string       `json:"-"` // Never expose in JSON
	IsActive     bool         `json:"isActive"`
	CreatedAt    time.Time    `json:"createdAt"`
	LastLoginAt  sql.NullTime `json:"-"`
}

// Principal is what /api/auth/me reports about the session holder.
type Principal struct {
	ID       int64  `json:"sub"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
