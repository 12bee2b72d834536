// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// EventPruner deletes audit events older than a cutoff.
type EventPruner interface {
	DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// PruneEventsJob removes events older than retention once a day.
func PruneEventsJob(p EventPruner, retention time.Duration, logger *slog.Logger) Job {
	return Job{
		Name:        "prune-events",
		Description: "Delete audit events past the retention period",
		Schedule:    "0 3 * * *",
		Run: func(ctx context.Context) error {
			cutoff := time.Now().UTC().Add(-retention)
			n, err := p.DeleteEventsBefore(ctx, cutoff)
			if err != nil {
				return fmt.Errorf("pruning events: %w", err)
			}
			if n > 0 {
				logger.Info("pruned old events", "category", "system", "deleted", n, "cutoff", cutoff)
			}
			return nil
		},
	}
}

// Cleaner is anything with periodic in-memory housekeeping.
type Cleaner interface {
	Cleanup()
}

// CleanupJob runs c.Cleanup on schedule.
func CleanupJob(name, schedule string, c Cleaner) Job {
	return Job{
		Name:        name,
		Description: "In-memory housekeeping",
		Schedule:    schedule,
		Run: func(context.Context) error {
			c.Cleanup()
			return nil
		},
	}
}
