// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package analytics derives company and exchange reports from the catalog
// and the ledger. Every view is a pure function of its Input, so reports can
// be recomputed at any time and always agree with the event log.
package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/luxfi/adcat/pkg/auction"
	"github.com/luxfi/adcat/pkg/errs"
	"github.com/luxfi/adcat/pkg/ledger"
)

// DefaultBillingPeriod is the length of one monthly billing period
const DefaultBillingPeriod = 30 * 24 * time.Hour

const day = 24 * time.Hour

// Input is everything a report is computed from
type Input struct {
	Categories []auction.Category
	Intervals  []auction.Interval
	Ledger     ledger.Snapshot
	Now        time.Time
}

// CategorySummary is one company's performance in one category
type CategorySummary struct {
	Category         string
	Mentions         int
	Clicks           int
	AvgTimeSeconds   float64
	TotalTimeSeconds float64
	MentionsPerQuery float64
	ClicksPerMention float64
	MonthlyCost      decimal.Decimal
	CurrentlyOwned   bool
	OwnedSince       time.Time
	TotalPaid        decimal.Decimal
	ClicksPerDollar  float64
	MentionsPerDay   float64
	ClicksPerDay     float64
}

// MentionsPerQueryPercent renders MentionsPerQuery as a percentage, e.g. "40.00%"
func (s CategorySummary) MentionsPerQueryPercent() string {
	return Percent(s.MentionsPerQuery)
}

// CompanyReport lists a company's categories sorted by name
type CompanyReport struct {
	Company    string
	Categories []CategorySummary
}

// Unclaimed is an unowned category that queries have mentioned
type Unclaimed struct {
	Category string
	Mentions int
}

// Revenue is the exchange-wide profit and loss
type Revenue struct {
	TotalCosts   decimal.Decimal
	TotalRevenue decimal.Decimal
	NetProfit    decimal.Decimal
	ProfitPerDay decimal.Decimal
	ByCompany    map[string]decimal.Decimal
}

// Aggregator computes reports for one billing period length
type Aggregator struct {
	period time.Duration
}

// New creates an aggregator. A non-positive period selects DefaultBillingPeriod.
func New(period time.Duration) *Aggregator {
	if period <= 0 {
		period = DefaultBillingPeriod
	}
	return &Aggregator{period: period}
}

// BillingPeriod returns the period prices are quoted for
func (a *Aggregator) BillingPeriod() time.Duration {
	return a.period
}

// Prorate returns what iv has cost so far: price × duration / billing period.
// An open interval is charged up to now.
func (a *Aggregator) Prorate(iv auction.Interval, now time.Time) decimal.Decimal {
	d := iv.Duration(now)
	if d <= 0 {
		return decimal.Zero
	}
	return iv.Price.
		Mul(decimal.NewFromInt(int64(d))).
		Div(decimal.NewFromInt(int64(a.period)))
}

// Mentions counts the queries that mentioned category
func Mentions(s ledger.Snapshot, category string) int {
	n := 0
	for _, q := range s.Queries {
		if q.Mentions(category) {
			n++
		}
	}
	return n
}

// Clicks counts the clicks on category credited to company
func Clicks(s ledger.Snapshot, category, company string) int {
	n := 0
	for _, c := range s.Clicks {
		if c.Category == category && strings.EqualFold(c.Company, company) {
			n++
		}
	}
	return n
}

// Percent renders a ratio as a percentage with two decimals
func Percent(ratio float64) string {
	return fmt.Sprintf("%.2f%%", ratio*100)
}

// CompanySummary reports every category company has ever owned. A company
// with no ownership history is ErrNotFound.
func (a *Aggregator) CompanySummary(in Input, company string) (CompanyReport, error) {
	company = strings.TrimSpace(company)
	byCategory := make(map[string][]auction.Interval)
	display := ""
	for _, iv := range in.Intervals {
		if !strings.EqualFold(iv.Company, company) {
			continue
		}
		byCategory[iv.Category] = append(byCategory[iv.Category], iv)
		display = iv.Company
	}
	if len(byCategory) == 0 {
		return CompanyReport{}, errs.NotFound("company", company)
	}

	current := make(map[string]auction.Category, len(in.Categories))
	for _, c := range in.Categories {
		current[c.Name] = c
	}

	report := CompanyReport{Company: display}
	for name, ivs := range byCategory {
		report.Categories = append(report.Categories, a.summarize(in, name, company, ivs, current[name]))
	}
	sort.Slice(report.Categories, func(i, j int) bool {
		return report.Categories[i].Category < report.Categories[j].Category
	})
	return report, nil
}

func (a *Aggregator) summarize(in Input, category, company string, ivs []auction.Interval, cur auction.Category) CategorySummary {
	s := CategorySummary{
		Category: category,
		Mentions: Mentions(in.Ledger, category),
		Clicks:   Clicks(in.Ledger, category, company),
	}

	var totalMs int64
	for _, q := range in.Ledger.Queries {
		if q.Mentions(category) {
			totalMs += q.DurationMs
		}
	}
	s.TotalTimeSeconds = float64(totalMs) / 1000
	if s.Mentions > 0 {
		s.AvgTimeSeconds = s.TotalTimeSeconds / float64(s.Mentions)
		s.ClicksPerMention = float64(s.Clicks) / float64(s.Mentions)
	}
	if n := len(in.Ledger.Queries); n > 0 {
		s.MentionsPerQuery = float64(s.Mentions) / float64(n)
	}

	if cur.Owned() && strings.EqualFold(cur.Owner, company) {
		s.CurrentlyOwned = true
		s.MonthlyCost = cur.Price
	}

	s.TotalPaid = decimal.Zero
	for i, iv := range ivs {
		if i == 0 || iv.Start.Before(s.OwnedSince) {
			s.OwnedSince = iv.Start
		}
		s.TotalPaid = s.TotalPaid.Add(a.Prorate(iv, in.Now))
	}
	if s.TotalPaid.IsPositive() {
		s.ClicksPerDollar = float64(s.Clicks) / s.TotalPaid.InexactFloat64()
	}
	days := elapsedDays(s.OwnedSince, in.Now)
	s.MentionsPerDay = float64(s.Mentions) / days
	s.ClicksPerDay = float64(s.Clicks) / days
	return s
}

// CategoriesForSale lists unowned categories with at least one mention,
// most mentioned first.
func (a *Aggregator) CategoriesForSale(in Input) []Unclaimed {
	var out []Unclaimed
	for _, c := range in.Categories {
		if c.Owned() {
			continue
		}
		if n := Mentions(in.Ledger, c.Name); n > 0 {
			out = append(out, Unclaimed{Category: c.Name, Mentions: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Mentions != out[j].Mentions {
			return out[i].Mentions > out[j].Mentions
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Revenue totals prorated ad revenue against logged costs
func (a *Aggregator) Revenue(in Input) Revenue {
	r := Revenue{
		TotalCosts:   decimal.Zero,
		TotalRevenue: decimal.Zero,
		ProfitPerDay: decimal.Zero,
		ByCompany:    make(map[string]decimal.Decimal),
	}
	for _, c := range in.Ledger.Costs {
		r.TotalCosts = r.TotalCosts.Add(c.Amount)
	}

	// companies differing only in case share one entry, named as first seen
	names := make(map[string]string)
	for _, iv := range in.Intervals {
		key := strings.ToLower(iv.Company)
		name, ok := names[key]
		if !ok {
			name = iv.Company
			names[key] = name
		}
		paid := a.Prorate(iv, in.Now)
		r.ByCompany[name] = r.ByCompany[name].Add(paid)
		r.TotalRevenue = r.TotalRevenue.Add(paid)
	}

	r.NetProfit = r.TotalRevenue.Sub(r.TotalCosts)
	if first, ok := in.Ledger.Earliest(); ok {
		r.ProfitPerDay = r.NetProfit.Div(decimal.NewFromFloat(elapsedDays(first, in.Now)))
	}
	return r
}

// elapsedDays is the fractional number of days from since to now, at least one
func elapsedDays(since, now time.Time) float64 {
	d := now.Sub(since)
	if d < day {
		return 1
	}
	return float64(d) / float64(day)
}
