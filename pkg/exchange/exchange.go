// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package exchange is the category ad exchange: it owns the catalog, the
// auction, the ledger and the reports, and is the single entry point used by
// the API and the CLI.
package exchange

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/luxfi/adcat/pkg/analytics"
	"github.com/luxfi/adcat/pkg/attribution"
	"github.com/luxfi/adcat/pkg/auction"
	"github.com/luxfi/adcat/pkg/errs"
	"github.com/luxfi/adcat/pkg/feed"
	"github.com/luxfi/adcat/pkg/ledger"
	"github.com/luxfi/adcat/pkg/log"
	"github.com/luxfi/adcat/pkg/metric"
	"github.com/luxfi/adcat/pkg/pricing"
	"github.com/luxfi/adcat/pkg/selector"
	"github.com/luxfi/adcat/pkg/storage"
)

// DefaultSeed is the set of categories recognized at first start
var DefaultSeed = []string{
	"arthritis",
	"meningitis",
	"pneumonia",
	"breast cancer",
	"lung cancer",
	"melanoma",
	"allergy",
	"asthma",
	"hiv",
	"diabetes",
	"obesity",
	"pancreatic cancer",
}

// Config holds the business parameters of the exchange
type Config struct {
	BillingPeriod time.Duration
	Pricer        pricing.Pricer
	Seed          []string
}

// DefaultConfig returns a monthly billing period, hosted model prices and the
// default categories.
func DefaultConfig() Config {
	return Config{
		BillingPeriod: analytics.DefaultBillingPeriod,
		Pricer:        pricing.Default(),
		Seed:          DefaultSeed,
	}
}

// Option configures a Service
type Option func(*Service)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger
func WithLogger(l log.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithMetrics records exchange activity in m
func WithMetrics(m *metric.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithPublisher pushes durable events to p
func WithPublisher(p feed.Publisher) Option {
	return func(s *Service) { s.feed = p }
}

// Service implements every exchange operation
type Service struct {
	catalog  *auction.Catalog
	manager  *auction.Manager
	matcher  *attribution.Matcher
	selector *selector.Selector
	ledger   *ledger.Ledger
	agg      *analytics.Aggregator
	pricer   pricing.Pricer

	now     func() time.Time
	log     log.Logger
	metrics *metric.Metrics
	feed    feed.Publisher
}

// New loads the exchange state from store and seeds the catalog
func New(store *storage.Storage, cfg Config, opts ...Option) (*Service, error) {
	if cfg.BillingPeriod <= 0 {
		return nil, errs.Invalid("billing period must be positive, got %s", cfg.BillingPeriod)
	}
	if err := cfg.Pricer.Validate(); err != nil {
		return nil, err
	}

	s := &Service{
		pricer: cfg.Pricer,
		now:    time.Now,
		log:    log.NoOp(),
		feed:   feed.Discard,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.catalog = auction.NewCatalog(store, s.log.With(log.String("component", "catalog")))
	if err := s.catalog.Load(); err != nil {
		return nil, err
	}
	if err := s.catalog.Seed(cfg.Seed...); err != nil {
		return nil, err
	}
	s.manager = auction.NewManager(s.catalog, s.now, s.log.With(log.String("component", "auction")))
	s.matcher = attribution.NewMatcher(s.catalog)
	s.selector = selector.New(s.catalog)
	s.ledger = ledger.New(store, s.now, s.log.With(log.String("component", "ledger")))
	s.agg = analytics.New(cfg.BillingPeriod)
	return s, nil
}

// Categories returns every recognized category sorted by name
func (s *Service) Categories() []auction.Category {
	return s.catalog.All()
}

// Category returns one category
func (s *Service) Category(name string) (auction.Category, error) {
	return s.catalog.Get(name)
}

// OwnedSince returns when the current owner's interval of name started
func (s *Service) OwnedSince(name string) (time.Time, bool) {
	ivs := s.catalog.Intervals(name)
	for i := len(ivs) - 1; i >= 0; i-- {
		if ivs[i].Open() {
			return ivs[i].Start, true
		}
	}
	return time.Time{}, false
}

// Purchase places a bid on a category
func (s *Service) Purchase(ctx context.Context, req auction.PurchaseRequest) (*auction.Receipt, error) {
	start := time.Now()
	receipt, err := s.manager.Purchase(ctx, req)
	if s.metrics != nil {
		s.metrics.PurchaseDuration.Observe(time.Since(start).Seconds())
		s.metrics.Purchases.WithLabelValues(purchaseResult(err)).Inc()
	}
	if err != nil {
		return nil, err
	}
	s.feed.Publish(feed.Notice{Type: feed.TypePurchase, At: receipt.At, Data: receipt})
	return receipt, nil
}

func purchaseResult(err error) string {
	switch {
	case err == nil:
		return metric.ResultAccepted
	case errors.Is(err, errs.ErrBidTooLow):
		return metric.ResultTooLow
	case errors.Is(err, errs.ErrInvalidInput):
		return metric.ResultInvalid
	default:
		return metric.ResultError
	}
}

// Match returns the recognized categories mentioned by text
func (s *Service) Match(text string) []string {
	return s.matcher.Match(text)
}

// AdResult is the outcome of an ad lookup
type AdResult struct {
	Ad      selector.Ad
	Found   bool
	Matched []string
}

// noAdLabel marks lookups that served no ad
const noAdLabel = "none"

// GetAd matches query against the catalog and selects the ad to show. It
// does not write to the ledger; callers log the query separately.
func (s *Service) GetAd(ctx context.Context, query string) (AdResult, error) {
	if err := ctx.Err(); err != nil {
		return AdResult{}, err
	}
	matched := s.matcher.Match(query)
	ad, ok := s.selector.SelectFor(matched)
	if s.metrics != nil {
		label := noAdLabel
		if ok {
			label = ad.Category
		}
		s.metrics.AdsServed.WithLabelValues(label).Inc()
	}
	return AdResult{Ad: ad, Found: ok, Matched: matched}, nil
}

// TrackClick logs a click on category's ad, credited to company
func (s *Service) TrackClick(ctx context.Context, category, company string) (ledger.ClickEvent, error) {
	name := auction.NormalizeName(category)
	if !s.catalog.Has(name) {
		return ledger.ClickEvent{}, errs.NotFound("category", category)
	}
	if strings.TrimSpace(company) == "" {
		return ledger.ClickEvent{}, errs.Invalid("company is required")
	}
	e, err := s.ledger.AppendClick(ctx, name, company)
	if err != nil {
		return ledger.ClickEvent{}, err
	}
	if s.metrics != nil {
		s.metrics.Clicks.Inc()
	}
	s.feed.Publish(feed.Notice{Type: feed.TypeClick, At: e.At, Data: e})
	return e, nil
}

// LogQueryDuration logs a processed query. Names are normalized and
// unrecognized names are dropped; nothing left is ErrInvalidInput.
func (s *Service) LogQueryDuration(ctx context.Context, categories []string, durationMs int64) (ledger.QueryEvent, error) {
	if durationMs < 0 {
		return ledger.QueryEvent{}, errs.Invalid("negative duration %dms", durationMs)
	}
	seen := make(map[string]struct{}, len(categories))
	names := make([]string, 0, len(categories))
	for _, raw := range categories {
		name := auction.NormalizeName(raw)
		if _, dup := seen[name]; dup || !s.catalog.Has(name) {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	if len(names) == 0 {
		return ledger.QueryEvent{}, errs.Invalid("no recognized categories in %q", categories)
	}

	e, err := s.ledger.AppendQuery(ctx, names, time.Duration(durationMs)*time.Millisecond)
	if err != nil {
		return ledger.QueryEvent{}, err
	}
	if s.metrics != nil {
		s.metrics.Queries.Inc()
	}
	s.feed.Publish(feed.Notice{Type: feed.TypeQuery, At: e.At, Data: e})
	return e, nil
}

// LogAPICost logs an operating cost. Negative amounts correct earlier costs.
func (s *Service) LogAPICost(ctx context.Context, costType string, amount decimal.Decimal) (ledger.CostEvent, error) {
	e, err := s.ledger.AppendCost(ctx, costType, amount)
	if err != nil {
		return ledger.CostEvent{}, err
	}
	if s.metrics != nil {
		s.metrics.CostEvents.WithLabelValues(e.Type).Inc()
		s.metrics.CostTotal.Add(amount.InexactFloat64())
	}
	s.feed.Publish(feed.Notice{Type: feed.TypeCost, At: e.At, Data: e})
	return e, nil
}

// LogTokenUsage prices a language model call and logs it as a query cost
func (s *Service) LogTokenUsage(ctx context.Context, promptTokens, completionTokens int) (ledger.CostEvent, error) {
	cost, err := s.pricer.Cost(promptTokens, completionTokens)
	if err != nil {
		return ledger.CostEvent{}, err
	}
	return s.LogAPICost(ctx, ledger.CostTypeQuery, cost)
}

func (s *Service) input() (analytics.Input, error) {
	snapshot, err := s.ledger.Snapshot()
	if err != nil {
		return analytics.Input{}, err
	}
	return analytics.Input{
		Categories: s.catalog.All(),
		Intervals:  s.catalog.AllIntervals(),
		Ledger:     snapshot,
		Now:        s.now().UTC(),
	}, nil
}

// CompanySummary reports a company's categories
func (s *Service) CompanySummary(ctx context.Context, company string) (analytics.CompanyReport, error) {
	if err := ctx.Err(); err != nil {
		return analytics.CompanyReport{}, err
	}
	in, err := s.input()
	if err != nil {
		return analytics.CompanyReport{}, err
	}
	return s.agg.CompanySummary(in, company)
}

// CategoriesForSale lists unowned categories that queries mention
func (s *Service) CategoriesForSale(ctx context.Context) ([]analytics.Unclaimed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	in, err := s.input()
	if err != nil {
		return nil, err
	}
	return s.agg.CategoriesForSale(in), nil
}

// Revenue reports the exchange profit and loss
func (s *Service) Revenue(ctx context.Context) (analytics.Revenue, error) {
	if err := ctx.Err(); err != nil {
		return analytics.Revenue{}, err
	}
	in, err := s.input()
	if err != nil {
		return analytics.Revenue{}, err
	}
	return s.agg.Revenue(in), nil
}
