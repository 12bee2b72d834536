// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the catalog domain types shared by the server, the
// remote catalog client and the backoffice: Service, Extra, Detail and the
// admin and event log records.
package model

import (
	"encoding/json"
	"strings"
)

// Service is a top-level catalog item such as "Pirotecnia".
type Service struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"imageUrl"`
}

// Extra is a sub-item of one Service. ViewID joins it to its Detail rows.
type Extra struct {
	ID        int64  `json:"id"`
	ServiceID int64  `json:"serviceId"`
	Title     string `json:"title"`
	ImageURL  string `json:"imageUrl"`
	ViewID    string `json:"viewId"`
	Locale    string `json:"locale"`
	IsActive  bool   `json:"isActive"`
}

// Detail is the localized rich content of an Extra, keyed by (ViewID, Locale).
type Detail struct {
	ViewID      string      `json:"viewId,omitempty"`
	Locale      string      `json:"locale,omitempty"`
	Description string      `json:"description"`
	GalleryURLs []string    `json:"galleryUrls"`
	Highlights  []Highlight `json:"highlights"`
}

// Highlight is one icon/title/description bullet of a Detail.
type Highlight struct {
	Icon  string `json:"icon"`
	Title string `json:"title"`
	Desc  string `json:"desc"`
}

// ServiceInput is the body of service create and update requests.
type ServiceInput struct {
	Title    string `json:"title"`
	ImageURL string `json:"imageUrl"`
}

// ExtraInput is the body of extra create and update requests.
// ServiceID is ignored on update.
type ExtraInput struct {
	ServiceID int64  `json:"serviceId,omitempty"`
	Title     string `json:"title"`
	ImageURL  string `json:"imageUrl"`
	ViewID    string `json:"viewId"`
	Locale    string `json:"locale"`
	IsActive  *bool  `json:"isActive,omitempty"`
}

// Active reports the requested active flag, defaulting to true.
func (in ExtraInput) Active() bool {
	return in.IsActive == nil || *in.IsActive
}

// ParseHighlight parses the legacy "Icon | Title | Description" form.
// Everything after the second separator belongs to the description.
func ParseHighlight(s string) Highlight {
	parts := strings.Split(s, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	var h Highlight
	if len(parts) > 0 {
		h.Icon = parts[0]
	}
	if len(parts) > 1 {
		h.Title = parts[1]
	}
	if len(parts) > 2 {
		h.Desc = strings.Join(parts[2:], " | ")
	}
	return h
}

// String serializes the highlight to the legacy pipe form, skipping blanks.
func (h Highlight) String() string {
	var parts []string
	for _, s := range []string{h.Icon, h.Title, h.Desc} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " | ")
}

// IsEmpty reports whether every field is blank.
func (h Highlight) IsEmpty() bool {
	return strings.TrimSpace(h.Icon) == "" &&
		strings.TrimSpace(h.Title) == "" &&
		strings.TrimSpace(h.Desc) == ""
}

// UnmarshalJSON accepts both the object form and the legacy string form.
func (h *Highlight) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*h = ParseHighlight(s)
		return nil
	}

	type plain Highlight
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*h = Highlight{
		Icon:  strings.TrimSpace(p.Icon),
		Title: strings.TrimSpace(p.Title),
		Desc:  strings.TrimSpace(p.Desc),
	}
	return nil
}

// EmptyDetail returns the blank form used when no Detail row exists yet.
func EmptyDetail(viewID, locale string) Detail {
	return Detail{
		ViewID:      viewID,
		Locale:      locale,
		GalleryURLs: []string{},
		Highlights:  []Highlight{},
	}
}

// Normalize trims the description, drops blank gallery URLs and empty
// highlights, and guarantees non-nil slices.
func (d Detail) Normalize() Detail {
	out := Detail{
		ViewID:      d.ViewID,
		Locale:      d.Locale,
		Description: strings.TrimSpace(d.Description),
		GalleryURLs: make([]string, 0, len(d.GalleryURLs)),
		Highlights:  make([]Highlight, 0, len(d.Highlights)),
	}
	for _, u := range d.GalleryURLs {
		if u = strings.TrimSpace(u); u != "" {
			out.GalleryURLs = append(out.GalleryURLs, u)
		}
	}
	for _, h := range d.Highlights {
		if !h.IsEmpty() {
			out.Highlights = append(out.Highlights, h)
		}
	}
	return out
}

// Clone returns a deep copy so cached details cannot be mutated by callers.
func (d *Detail) Clone() *Detail {
	if d == nil {
		return nil
	}
	c := *d
	c.GalleryURLs = append([]string(nil), d.GalleryURLs...)
	c.Highlights = append([]Highlight(nil), d.Highlights...)
	return &c
}
