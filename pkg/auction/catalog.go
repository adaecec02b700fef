// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auction

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/luxfi/adcat/pkg/errs"
	"github.com/luxfi/adcat/pkg/ids"
	"github.com/luxfi/adcat/pkg/log"
	"github.com/luxfi/adcat/pkg/storage"
)

const (
	categoryPrefix = "category"
	intervalPrefix = "interval"

	maxNameLen = 64
)

// Category is one auctionable ad slot keyed by a disease name
type Category struct {
	Name      string          `json:"name"`
	Owner     string          `json:"owner,omitempty"`
	Price     decimal.Decimal `json:"price"`
	AdImage   string          `json:"ad_image,omitempty"`
	AdLink    string          `json:"ad_link,omitempty"`
	ChangedAt time.Time       `json:"changed_at,omitempty"`
}

// Owned reports whether a company currently holds the slot
func (c Category) Owned() bool {
	return c.Owner != ""
}

// Interval records one company owning one category at one price.
// End is nil while the interval is open.
type Interval struct {
	ID       ids.ID          `json:"id"`
	Seq      int             `json:"seq"`
	Category string          `json:"category"`
	Company  string          `json:"company"`
	Price    decimal.Decimal `json:"price"`
	Start    time.Time       `json:"start"`
	End      *time.Time      `json:"end,omitempty"`
}

// Open reports whether the interval has not been closed yet
func (iv Interval) Open() bool {
	return iv.End == nil
}

// Duration returns how long the interval has lasted, counting an open
// interval up to now.
func (iv Interval) Duration(now time.Time) time.Duration {
	end := now
	if iv.End != nil {
		end = *iv.End
	}
	if d := end.Sub(iv.Start); d > 0 {
		return d
	}
	return 0
}

// NormalizeName lower-cases a category name and collapses its whitespace
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// ValidName reports whether a normalized name may be used as a category key
func ValidName(name string) bool {
	return name != "" && len(name) <= maxNameLen && !strings.Contains(name, "/")
}

// Catalog is the set of recognized categories and their purchase state.
//
// Reads are served from memory. The only writer is Manager, through apply,
// which persists a transfer before publishing it in memory.
type Catalog struct {
	mu         sync.RWMutex
	store      *storage.Storage
	known      map[string]struct{}
	categories map[string]Category
	intervals  map[string][]Interval
	log        log.Logger
}

// NewCatalog creates an empty catalog backed by store
func NewCatalog(store *storage.Storage, logger log.Logger) *Catalog {
	return &Catalog{
		store:      store,
		known:      make(map[string]struct{}),
		categories: make(map[string]Category),
		intervals:  make(map[string][]Interval),
		log:        logger,
	}
}

// Load reads purchased categories and ownership intervals from the store
func (c *Catalog) Load() error {
	cats, err := storage.ScanJSON[Category](c.store, storage.Prefix(categoryPrefix))
	if err != nil {
		return err
	}
	ivs, err := storage.ScanJSON[Interval](c.store, storage.Prefix(intervalPrefix))
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, cat := range cats {
		c.categories[cat.Name] = cat
		c.known[cat.Name] = struct{}{}
	}
	c.intervals = make(map[string][]Interval)
	for _, iv := range ivs {
		c.intervals[iv.Category] = append(c.intervals[iv.Category], iv)
	}
	for name := range c.intervals {
		sort.Slice(c.intervals[name], func(i, j int) bool {
			return c.intervals[name][i].Seq < c.intervals[name][j].Seq
		})
	}

	c.log.Info("catalog loaded",
		log.Int("categories", len(cats)),
		log.Int("intervals", len(ivs)))
	return nil
}

// Seed registers recognized names. Existing purchase state is left untouched.
func (c *Catalog) Seed(names ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, raw := range names {
		name := NormalizeName(raw)
		if !ValidName(name) {
			return errs.Invalid("category name %q", raw)
		}
		c.known[name] = struct{}{}
	}
	return nil
}

// Get returns the named category. Names are matched case-insensitively.
func (c *Catalog) Get(name string) (Category, error) {
	key := NormalizeName(name)

	c.mu.RLock()
	defer c.mu.RUnlock()

	if cat, ok := c.categories[key]; ok {
		return cat, nil
	}
	if _, ok := c.known[key]; ok {
		return Category{Name: key}, nil
	}
	return Category{}, errs.NotFound("category", name)
}

// Has reports whether name is a recognized category
func (c *Catalog) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.known[NormalizeName(name)]
	return ok
}

// Names returns every recognized category name, sorted
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.known))
	for name := range c.known {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every recognized category sorted by name
func (c *Catalog) All() []Category {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Category, 0, len(c.known))
	for name := range c.known {
		if cat, ok := c.categories[name]; ok {
			out = append(out, cat)
		} else {
			out = append(out, Category{Name: name})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Intervals returns the ownership history of one category in start order
func (c *Catalog) Intervals(name string) []Interval {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Interval(nil), c.intervals[NormalizeName(name)]...)
}

// IntervalsFor returns every interval held by company, matched case-insensitively
func (c *Catalog) IntervalsFor(company string) []Interval {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []Interval
	for _, ivs := range c.intervals {
		for _, iv := range ivs {
			if strings.EqualFold(iv.Company, company) {
				out = append(out, iv)
			}
		}
	}
	sortIntervals(out)
	return out
}

// AllIntervals returns the full ownership history
func (c *Catalog) AllIntervals() []Interval {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []Interval
	for _, ivs := range c.intervals {
		out = append(out, ivs...)
	}
	sortIntervals(out)
	return out
}

// transfer is an ownership change computed by Manager under the category lock
type transfer struct {
	category Category
	closed   *Interval
	opened   Interval
}

// apply persists t in one batch and then publishes it in memory. On a storage
// error nothing in memory changes.
func (c *Catalog) apply(t transfer) error {
	batch := c.store.NewBatch()
	if err := batch.PutJSON(storage.Key(categoryPrefix, t.category.Name), t.category); err != nil {
		return err
	}
	if t.closed != nil {
		if err := batch.PutJSON(intervalKey(*t.closed), *t.closed); err != nil {
			return err
		}
	}
	if err := batch.PutJSON(intervalKey(t.opened), t.opened); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	name := t.category.Name
	c.categories[name] = t.category
	c.known[name] = struct{}{}
	ivs := c.intervals[name]
	if t.closed != nil {
		for i := range ivs {
			if ivs[i].ID == t.closed.ID {
				ivs[i] = *t.closed
			}
		}
	}
	c.intervals[name] = append(ivs, t.opened)
	return nil
}

// openInterval returns the current open interval of name, if any, and the
// sequence number the next interval must take.
func (c *Catalog) openInterval(name string) (Interval, int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ivs := c.intervals[name]
	next := len(ivs) + 1
	for i := len(ivs) - 1; i >= 0; i-- {
		if ivs[i].Open() {
			return ivs[i], next, true
		}
	}
	return Interval{}, next, false
}

func intervalKey(iv Interval) []byte {
	return storage.Key(intervalPrefix, iv.Category, iv.ID.String())
}

func sortIntervals(ivs []Interval) {
	sort.SliceStable(ivs, func(i, j int) bool {
		if !ivs[i].Start.Equal(ivs[j].Start) {
			return ivs[i].Start.Before(ivs[j].Start)
		}
		if ivs[i].Category != ivs[j].Category {
			return ivs[i].Category < ivs[j].Category
		}
		return ivs[i].Seq < ivs[j].Seq
	})
}
