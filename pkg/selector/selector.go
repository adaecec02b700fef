// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package selector picks the one ad to serve for a query's matched categories.
package selector

import (
	"github.com/shopspring/decimal"

	"github.com/luxfi/adcat/pkg/auction"
)

// Ad is the creative of the winning category
type Ad struct {
	Category string          `json:"category"`
	Company  string          `json:"company"`
	AdImage  string          `json:"ad_path"`
	AdLink   string          `json:"link"`
	Price    decimal.Decimal `json:"cost"`
}

// CategoryReader resolves category names
type CategoryReader interface {
	Get(name string) (auction.Category, error)
}

// Select returns the ad of the owned candidate with the highest current
// price, breaking ties by the lexicographically smallest name. It returns
// false when no candidate is owned.
func Select(candidates []auction.Category) (Ad, bool) {
	var (
		best  auction.Category
		found bool
	)
	for _, c := range candidates {
		if !c.Owned() {
			continue
		}
		if !found || better(c, best) {
			best, found = c, true
		}
	}
	if !found {
		return Ad{}, false
	}
	return Ad{
		Category: best.Name,
		Company:  best.Owner,
		AdImage:  best.AdImage,
		AdLink:   best.AdLink,
		Price:    best.Price,
	}, true
}

func better(a, b auction.Category) bool {
	if cmp := a.Price.Cmp(b.Price); cmp != 0 {
		return cmp > 0
	}
	return a.Name < b.Name
}

// Selector resolves matched names against a catalog and selects an ad
type Selector struct {
	categories CategoryReader
}

// New creates a selector reading from categories
func New(categories CategoryReader) *Selector {
	return &Selector{categories: categories}
}

// SelectFor selects among the named categories. Unknown names are no match.
func (s *Selector) SelectFor(names []string) (Ad, bool) {
	candidates := make([]auction.Category, 0, len(names))
	for _, name := range names {
		c, err := s.categories.Get(name)
		if err != nil {
			continue
		}
		candidates = append(candidates, c)
	}
	return Select(candidates)
}
