// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package attribution maps free-text queries to catalog categories.
package attribution

import (
	"sort"
	"strings"
)

// NameSource lists the recognized category names
type NameSource interface {
	Names() []string
}

// Match returns every name that occurs as a substring of the lower-cased
// text, deduplicated and sorted. Names are expected in normalized form.
// Runs of whitespace in text are collapsed first so "breast   cancer" still
// matches "breast cancer".
func Match(text string, names []string) []string {
	if text == "" || len(names) == 0 {
		return nil
	}
	text = strings.ToLower(strings.Join(strings.Fields(text), " "))

	seen := make(map[string]struct{}, len(names))
	var out []string
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		if strings.Contains(text, name) {
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Matcher matches queries against a live name source such as the catalog
type Matcher struct {
	source NameSource
}

// NewMatcher creates a matcher over source
func NewMatcher(source NameSource) *Matcher {
	return &Matcher{source: source}
}

// Match returns the categories mentioned in text
func (m *Matcher) Match(text string) []string {
	return Match(text, m.source.Names())
}
