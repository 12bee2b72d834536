// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package views

import (
	"fmt"

	"github.com/olegiv/eventfx/internal/model"
	"github.com/olegiv/eventfx/internal/util"
)

// Built-in content exists in Portuguese only; every locale gets it.
var builtins = map[string]Factory{
	"co2": static("co2",
		"Jatos brancos e densos de CO₂ para sublinhar drops e refrões. "+
			"Dissipação rápida, sensação de frescura e leitura perfeita em luz e vídeo.",
		model.Highlight{Icon: "Wind", Title: "Jatos de Alta Pressão", Desc: "Explosões densas de CO₂."},
		model.Highlight{Icon: "Timer", Title: "Efeito Instantâneo", Desc: "Impacto imediato e dissipação rápida."},
	),
	"confettis-streamers": static("confettis_streamers",
		"Explosões de confettis e serpentinas que enchem o ar de cor. "+
			"Materiais biodegradáveis, paletas personalizadas e lançamentos adaptados ao espaço.",
		model.Highlight{Icon: "PartyPopper", Title: "Impacto de Celebração", Desc: "Marca momentos chave."},
		model.Highlight{Icon: "Palette", Title: "Cores Personalizadas", Desc: "Várias cores e materiais."},
	),
	"espetaculo-pirotecnico": static("espetaculo_pirotecnico",
		"Show aéreo de grande escala com bombas, cometas, palmeiras e cascatas. "+
			"Design do desenho de céu, perímetros e aprovações incluídas.",
		model.Highlight{Icon: "Stars", Title: "Pintura no Céu", Desc: "Bombas, cometas e cascatas."},
		model.Highlight{Icon: "Timer", Title: "Ritmo Planeado", Desc: "Sequência detalhada."},
	),
	"lasers": static("lasers",
		"Feixes e figuras multicolor em varrimentos e cones volumétricos. "+
			"Programação em tempo real ou timecode e integração com luz e vídeo.",
		model.Highlight{Icon: "ScanLine", Title: "Shows Dinâmicos", Desc: "Figuras e cones hipnóticos."},
		model.Highlight{Icon: "Palette", Title: "Cores Completas", Desc: "Mistura RGB calibrada."},
	),
	"sparks": static("sparks",
		"Faíscas frias com altura regulável que criam picos de brilho sem chama aberta. "+
			"Perfeitas para palcos e espaços interiores.",
		model.Highlight{Icon: "Sparkles", Title: "Faísca Fria", Desc: "Sem chama aberta."},
		model.Highlight{Icon: "SlidersHorizontal", Title: "Altura Ajustável", Desc: "Até 5 m, conforme o local."},
	),
}

// static builds a factory with three gallery images named after asset.
func static(asset, description string, highlights ...model.Highlight) Factory {
	return func(string) model.Detail {
		gallery := make([]string, 3)
		for i := range gallery {
			gallery[i] = fmt.Sprintf("/assets/services/%s_%d.png", asset, i+1)
		}
		return model.Detail{
			Locale:      util.DefaultLocale,
			Description: description,
			GalleryURLs: gallery,
			Highlights:  append([]model.Highlight(nil), highlights...),
		}
	}
}

// SeedDetail adapts the registry for store.SeedCatalog.
func (r *Registry) SeedDetail(viewID string) (model.Detail, bool) {
	return r.Builtin(viewID, util.DefaultLocale)
}
