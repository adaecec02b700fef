// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger is the append-only record of queries, clicks and costs.
//
// Each event is one JSON record written with a single Put under a
// time-ordered key, so prefix scans return events in append order and a
// reader never observes a partially written event.
package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/luxfi/adcat/pkg/errs"
	"github.com/luxfi/adcat/pkg/ids"
	"github.com/luxfi/adcat/pkg/log"
	"github.com/luxfi/adcat/pkg/storage"
)

const (
	ledgerPrefix = "ledger"

	kindQuery = "query"
	kindClick = "click"
	kindCost  = "cost"
)

// CostTypeQuery is the cost type used for language model calls
const CostTypeQuery = "query"

// QueryEvent records one processed query and the categories it mentioned
type QueryEvent struct {
	ID         ids.ID    `json:"id"`
	At         time.Time `json:"at"`
	Categories []string  `json:"categories"`
	DurationMs int64     `json:"duration_ms"`
}

// Mentions reports whether the query mentioned category
func (e QueryEvent) Mentions(category string) bool {
	for _, c := range e.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// ClickEvent records one click on a served ad
type ClickEvent struct {
	ID       ids.ID    `json:"id"`
	At       time.Time `json:"at"`
	Category string    `json:"category"`
	Company  string    `json:"company"`
}

// CostEvent records an operating cost. Negative amounts are corrections.
type CostEvent struct {
	ID     ids.ID          `json:"id"`
	At     time.Time       `json:"at"`
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
}

// Snapshot is a consistent-enough read of the whole ledger
type Snapshot struct {
	Queries []QueryEvent
	Clicks  []ClickEvent
	Costs   []CostEvent
}

// Earliest returns the time of the first event of any kind
func (s Snapshot) Earliest() (time.Time, bool) {
	var (
		first time.Time
		found bool
	)
	consider := func(t time.Time) {
		if !found || t.Before(first) {
			first, found = t, true
		}
	}
	if len(s.Queries) > 0 {
		consider(s.Queries[0].At)
	}
	if len(s.Clicks) > 0 {
		consider(s.Clicks[0].At)
	}
	if len(s.Costs) > 0 {
		consider(s.Costs[0].At)
	}
	return first, found
}

// Ledger appends and reads events
type Ledger struct {
	store *storage.Storage
	now   func() time.Time
	log   log.Logger
}

// New creates a ledger over store. now defaults to time.Now.
func New(store *storage.Storage, now func() time.Time, logger log.Logger) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{store: store, now: now, log: logger}
}

// AppendQuery records a query that mentioned categories
func (l *Ledger) AppendQuery(ctx context.Context, categories []string, duration time.Duration) (QueryEvent, error) {
	if err := ctx.Err(); err != nil {
		return QueryEvent{}, err
	}
	if duration < 0 {
		return QueryEvent{}, errs.Invalid("negative duration %s", duration)
	}
	at := l.now().UTC()
	e := QueryEvent{
		ID:         ids.New(at),
		At:         at,
		Categories: append([]string(nil), categories...),
		DurationMs: duration.Milliseconds(),
	}
	if err := l.put(kindQuery, e.ID, e); err != nil {
		return QueryEvent{}, err
	}
	l.log.Debug("query logged",
		log.Strings("categories", e.Categories),
		log.Int64("duration_ms", e.DurationMs))
	return e, nil
}

// AppendClick records a click on category's ad credited to company
func (l *Ledger) AppendClick(ctx context.Context, category, company string) (ClickEvent, error) {
	if err := ctx.Err(); err != nil {
		return ClickEvent{}, err
	}
	company = strings.TrimSpace(company)
	if category == "" || company == "" {
		return ClickEvent{}, errs.Invalid("click needs a category and a company")
	}
	at := l.now().UTC()
	e := ClickEvent{ID: ids.New(at), At: at, Category: category, Company: company}
	if err := l.put(kindClick, e.ID, e); err != nil {
		return ClickEvent{}, err
	}
	l.log.Debug("click logged",
		log.String("category", category),
		log.String("company", company))
	return e, nil
}

// AppendCost records an operating cost of the given type
func (l *Ledger) AppendCost(ctx context.Context, costType string, amount decimal.Decimal) (CostEvent, error) {
	if err := ctx.Err(); err != nil {
		return CostEvent{}, err
	}
	costType = strings.TrimSpace(costType)
	if costType == "" {
		costType = CostTypeQuery
	}
	at := l.now().UTC()
	e := CostEvent{ID: ids.New(at), At: at, Type: costType, Amount: amount}
	if err := l.put(kindCost, e.ID, e); err != nil {
		return CostEvent{}, err
	}
	l.log.Debug("cost logged",
		log.String("type", costType),
		log.Stringer("amount", amount))
	return e, nil
}

func (l *Ledger) put(kind string, id ids.ID, v any) error {
	if err := l.store.PutJSON(storage.Key(ledgerPrefix, kind, id.String()), v); err != nil {
		l.log.Error("ledger append failed", log.String("kind", kind), log.Error(err))
		return err
	}
	return nil
}

// Queries returns every query event in append order
func (l *Ledger) Queries() ([]QueryEvent, error) {
	return storage.ScanJSON[QueryEvent](l.store, storage.Prefix(ledgerPrefix, kindQuery))
}

// Clicks returns every click event in append order
func (l *Ledger) Clicks() ([]ClickEvent, error) {
	return storage.ScanJSON[ClickEvent](l.store, storage.Prefix(ledgerPrefix, kindClick))
}

// Costs returns every cost event in append order
func (l *Ledger) Costs() ([]CostEvent, error) {
	return storage.ScanJSON[CostEvent](l.store, storage.Prefix(ledgerPrefix, kindCost))
}

// Snapshot reads all three logs
func (l *Ledger) Snapshot() (Snapshot, error) {
	var (
		s   Snapshot
		err error
	)
	if s.Queries, err = l.Queries(); err != nil {
		return Snapshot{}, err
	}
	if s.Clicks, err = l.Clicks(); err != nil {
		return Snapshot{}, err
	}
	if s.Costs, err = l.Costs(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}
