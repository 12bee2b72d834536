// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
)

// DeleteServiceCascade removes a service, its extras and every detail row
// keyed by those extras' view ids, atomically.
func (s *Store) DeleteServiceCascade(ctx context.Context, id int64) error {
	return s.ExecTx(ctx, func(q *Queries) error {
		viewIDs, err := q.ListExtraViewIDsByService(ctx, id)
		if err != nil {
			return err
		}
		for _, viewID := range viewIDs {
			if _, err := q.DeleteDetails(ctx, viewID, ""); err != nil {
				return fmt.Errorf("deleting details of %s: %w", viewID, err)
			}
		}
		// Extras follow through ON DELETE CASCADE.
		return q.DeleteService(ctx, id)
	})
}

// DeleteExtraCascade removes the details of an extra and then the extra.
// A non-empty locale restricts detail removal to that locale.
func (s *Store) DeleteExtraCascade(ctx context.Context, id int64, locale string) error {
	return s.ExecTx(ctx, func(q *Queries) error {
		extra, err := q.GetExtra(ctx, id)
		if err != nil {
			return err
		}
		if _, err := q.DeleteDetails(ctx, extra.ViewID, locale); err != nil {
			return err
		}
		return q.DeleteExtra(ctx, id)
	})
}

// UpdateExtraCascade updates an extra and moves its details along when the
// view id changes.
func (s *Store) UpdateExtraCascade(ctx context.Context, arg UpdateExtraParams) error {
	return s.ExecTx(ctx, func(q *Queries) error {
		current, err := q.GetExtra(ctx, arg.ID)
		if err != nil {
			return err
		}
		if err := q.UpdateExtra(ctx, arg); err != nil {
			return err
		}
		if current.ViewID != arg.ViewID {
			return q.RenameDetailViewID(ctx, current.ViewID, arg.ViewID)
		}
		return nil
	})
}
