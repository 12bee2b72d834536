// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package views holds the closed set of public extra pages known at compile
// time and renders their payload for the public site.
package views

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/olegiv/eventfx/internal/model"
)

// Factory builds the built-in content of a view for a locale.
type Factory func(locale string) model.Detail

// Page sources.
const (
	SourceStored  = "stored"
	SourceBuiltin = "builtin"
)

// Page is the public payload of one extra detail page.
type Page struct {
	ViewID          string            `json:"viewId"`
	Locale          string            `json:"locale"`
	Description     string            `json:"description"`
	DescriptionHTML string            `json:"descriptionHtml"`
	GalleryURLs     []string          `json:"galleryUrls"`
	Highlights      []model.Highlight `json:"highlights"`
	Source          string            `json:"source"`
}

// Registry maps view ids to factories. It is immutable after construction.
type Registry struct {
	factories map[string]Factory
	md        goldmark.Markdown
	policy    *bluemonday.Policy
}

// NewRegistry builds a registry over factories.
func NewRegistry(factories map[string]Factory) *Registry {
	copied := make(map[string]Factory, len(factories))
	for id, f := range factories {
		copied[id] = f
	}
	return &Registry{
		factories: copied,
		md:        goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough)),
		policy:    bluemonday.UGCPolicy(),
	}
}

// Default returns the registry of the built-in pages.
func Default() *Registry {
	return NewRegistry(builtins)
}

// Has reports whether viewID has built-in content.
func (r *Registry) Has(viewID string) bool {
	_, ok := r.factories[viewID]
	return ok
}

// IDs returns the registered view ids in lexical order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Builtin returns the built-in content of viewID.
func (r *Registry) Builtin(viewID, locale string) (model.Detail, bool) {
	f, ok := r.factories[viewID]
	if !ok {
		return model.Detail{}, false
	}
	d := f(locale).Normalize()
	d.ViewID = viewID
	if d.Locale == "" {
		d.Locale = locale
	}
	return d, true
}

// Render converts a detail into a page, turning the Markdown description
// into sanitized HTML.
func (r *Registry) Render(d model.Detail, source string) (Page, error) {
	d = d.Normalize()

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(d.Description), &buf); err != nil {
		return Page{}, fmt.Errorf("rendering description of %s: %w", d.ViewID, err)
	}

	return Page{
		ViewID:          d.ViewID,
		Locale:          d.Locale,
		Description:     d.Description,
		DescriptionHTML: r.policy.Sanitize(buf.String()),
		GalleryURLs:     d.GalleryURLs,
		Highlights:      d.Highlights,
		Source:          source,
	}, nil
}
