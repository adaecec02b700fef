// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auction

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/luxfi/adcat/pkg/errs"
	"github.com/luxfi/adcat/pkg/ids"
	"github.com/luxfi/adcat/pkg/log"
)

// PurchaseRequest is a company's bid to own a category at a monthly price
type PurchaseRequest struct {
	Category string
	Company  string
	BidPrice decimal.Decimal
	AdImage  string
	AdLink   string
}

// Receipt describes an accepted purchase
type Receipt struct {
	Category      string          `json:"category"`
	Company       string          `json:"company"`
	Price         decimal.Decimal `json:"price"`
	PreviousOwner string          `json:"previous_owner,omitempty"`
	PreviousPrice decimal.Decimal `json:"previous_price"`
	IntervalID    ids.ID          `json:"interval_id"`
	At            time.Time       `json:"at"`
}

// Manager processes purchase bids. It is the only code path that changes
// category ownership.
type Manager struct {
	catalog *Catalog
	locks   *keyedMutex
	now     func() time.Time
	log     log.Logger
}

// NewManager creates a manager over catalog. now defaults to time.Now.
func NewManager(catalog *Catalog, now func() time.Time, logger log.Logger) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		catalog: catalog,
		locks:   newKeyedMutex(),
		now:     now,
		log:     logger,
	}
}

// Catalog returns the catalog the manager writes to
func (m *Manager) Catalog() *Catalog {
	return m.catalog
}

// Purchase applies a bid. It succeeds only when the bid is strictly greater
// than the category's current price; otherwise it returns a
// *errs.BidTooLowError carrying that price. Bids on one category are
// serialized; bids on different categories run in parallel.
func (m *Manager) Purchase(ctx context.Context, req PurchaseRequest) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := NormalizeName(req.Category)
	company := strings.TrimSpace(req.Company)
	switch {
	case !ValidName(name):
		return nil, errs.Invalid("category name %q", req.Category)
	case company == "":
		return nil, errs.Invalid("company is required")
	case !req.BidPrice.IsPositive():
		return nil, errs.Invalid("bid price must be positive, got %s", req.BidPrice)
	}

	unlock := m.locks.Lock(name)
	defer unlock()

	current, err := m.catalog.Get(name)
	if err != nil {
		// an unknown, well-formed name is introduced by its first purchase
		current = Category{Name: name}
	}

	if !req.BidPrice.GreaterThan(current.Price) {
		m.log.Debug("bid rejected",
			log.String("category", name),
			log.String("company", company),
			log.Stringer("bid", req.BidPrice),
			log.Stringer("minimum", current.Price))
		return nil, &errs.BidTooLowError{
			Category: name,
			Bid:      req.BidPrice,
			Minimum:  current.Price,
		}
	}

	start := m.now().UTC()
	open, seq, ok := m.catalog.openInterval(name)
	// keep the history linear even if the clock steps backwards
	if ok && start.Before(open.Start) {
		start = open.Start
	}

	t := transfer{
		category: Category{
			Name:      name,
			Owner:     company,
			Price:     req.BidPrice,
			AdImage:   req.AdImage,
			AdLink:    req.AdLink,
			ChangedAt: start,
		},
	}
	if ok {
		closed := open
		end := start
		closed.End = &end
		t.closed = &closed
	}
	t.opened = Interval{
		ID:       ids.New(start),
		Seq:      seq,
		Category: name,
		Company:  company,
		Price:    req.BidPrice,
		Start:    start,
	}

	if err := m.catalog.apply(t); err != nil {
		m.log.Error("purchase not persisted",
			log.String("category", name),
			log.String("company", company),
			log.Error(err))
		return nil, err
	}

	receipt := &Receipt{
		Category:      name,
		Company:       company,
		Price:         req.BidPrice,
		PreviousOwner: current.Owner,
		PreviousPrice: current.Price,
		IntervalID:    t.opened.ID,
		At:            start,
	}
	m.log.Info("category purchased",
		log.String("category", name),
		log.String("company", company),
		log.Stringer("price", req.BidPrice),
		log.String("previous_owner", current.Owner))
	return receipt, nil
}

// keyedMutex hands out one mutex per key. The set of keys is the set of
// categories, which is small and never shrinks, so entries are not evicted.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns its release function
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
