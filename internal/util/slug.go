// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides general-purpose helpers shared by the server and the
// backoffice: view id slug generation, collision resolution and locale checks.
package util

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength is the maximum length of a generated slug.
const MaxSlugLength = 64

// DefaultLocale is the locale used when a request does not name one.
const DefaultLocale = "pt"

// nonSlugRun matches any run of characters outside [a-z0-9].
var nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts free text to a view id slug.
// It lower-cases, strips accents, transliterates what is left to ASCII,
// collapses every run of non [a-z0-9] characters into one hyphen, trims
// hyphens at both ends and truncates to MaxSlugLength.
func Slugify(s string) string {
	// Decompose accents and drop the combining marks
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)

	// CO₂ -> CO2, ß -> ss
	result = unidecode.Unidecode(result)
	result = strings.ToLower(result)

	result = nonSlugRun.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	if len(result) > MaxSlugLength {
		// Truncation can expose a hyphen; trim again to stay idempotent.
		result = strings.TrimRight(result[:MaxSlugLength], "-")
	}

	return result
}

// EnsureUniqueSlug returns base when it is not in taken, otherwise the first
// of base-2, base-3, ... that is free.
func EnsureUniqueSlug(base string, taken map[string]struct{}) string {
	if _, exists := taken[base]; !exists {
		return base
	}

	for i := 2; ; i++ {
		candidate := base + "-" + strconv.Itoa(i)
		if _, exists := taken[candidate]; !exists {
			return candidate
		}
	}
}

// IsValidSlug checks if a string is a valid slug format.
func IsValidSlug(s string) bool {
	if s == "" || len(s) > MaxSlugLength {
		return false
	}

	// Check if it only contains lowercase letters, numbers, and hyphens
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}

	// Check that it doesn't start or end with a hyphen
	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}

	return !strings.Contains(s, "--")
}

// IsValidLocale reports whether s is a well-formed BCP 47 language tag such
// as "pt", "en" or "pt-BR".
func IsValidLocale(s string) bool {
	if s == "" || len(s) > 16 {
		return false
	}
	tag, err := language.Parse(s)
	if err != nil {
		return false
	}
	return tag != language.Und
}

// NormalizeLocale returns the locale or DefaultLocale when it is blank.
func NormalizeLocale(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultLocale
	}
	return s
}
