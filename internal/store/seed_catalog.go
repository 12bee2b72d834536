// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/olegiv/eventfx/internal/model"
	"github.com/olegiv/eventfx/internal/util"
)

type seedExtra struct {
	title  string
	viewID string
}

type seedService struct {
	title    string
	imageURL string
	extras   []seedExtra
}

const (
	seedImagePyro = "/assets/services_2.png"
	seedImageSFX  = "/assets/services_3.png"
)

func catalogSeed() []seedService {
	return []seedService{
		{
			title:    "Pirotecnia",
			imageURL: seedImagePyro,
			extras: []seedExtra{
				{"Espetáculos Pirotécnicos", "espetaculo-pirotecnico"},
				{"Espetáculos Piromusicais", "espetaculo-piromusical"},
				{"Indoor", "indoor"},
				{"Pirotecnia Diurna", "pirotecnia-diurna"},
			},
		},
		{
			title:    "Efeitos Especiais",
			imageURL: seedImageSFX,
			extras: []seedExtra{
				{"Chamas", "chamas"},
				{"CO2", "co2"},
				{"Confettis/Streamers", "confettis-streamers"},
				{"Lasers", "lasers"},
				{"Low Fog", "low-fog"},
				{"Power Drop", "power-drop"},
				{"Bolhas", "bolhas"},
				{"Neve", "neve"},
				{"Espuma", "espuma"},
				{"Sparks", "sparks"},
			},
		},
		{
			title:    "Design & Custom",
			imageURL: seedImagePyro,
			extras: []seedExtra{
				{"Design & Custom", "design-custom"},
				{"Modelação 3D", "modelacao-3d"},
			},
		},
	}
}

// SeedCatalog fills an empty catalog with the demo services and extras.
// It is a no-op when any service exists. Details are seeded through the
// provided function, which may be nil.
func SeedCatalog(ctx context.Context, s *Store, detail func(viewID string) (model.Detail, bool)) error {
	n, err := s.CountServices(ctx)
	if err != nil {
		return fmt.Errorf("counting services: %w", err)
	}
	if n > 0 {
		slog.Info("catalog already populated, skipping seed", "services", n)
		return nil
	}

	var extras int
	err = s.ExecTx(ctx, func(q *Queries) error {
		for i, svc := range catalogSeed() {
			created, err := q.CreateService(ctx, CreateServiceParams{
				Title:     svc.title,
				ImageURL:  svc.imageURL,
				SortOrder: i,
			})
			if err != nil {
				return err
			}

			for _, ex := range svc.extras {
				if _, err := q.CreateExtra(ctx, CreateExtraParams{
					ServiceID: created.ID,
					Title:     ex.title,
					ImageURL:  svc.imageURL,
					ViewID:    ex.viewID,
					Locale:    util.DefaultLocale,
					IsActive:  true,
				}); err != nil {
					return err
				}
				extras++

				if detail == nil {
					continue
				}
				if d, ok := detail(ex.viewID); ok {
					d.ViewID, d.Locale = ex.viewID, util.DefaultLocale
					if err := q.UpsertDetail(ctx, d); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seeding catalog: %w", err)
	}

	slog.Info("seeded demo catalog", "extras", extras)
	return nil
}
