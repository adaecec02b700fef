// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/luxfi/adcat/pkg/analytics"
	"github.com/luxfi/adcat/pkg/selector"
)

// Request bodies. Money fields accept JSON numbers or numeric strings.

type purchaseRequest struct {
	Disease  string          `json:"disease"`
	Company  string          `json:"company"`
	BidPrice decimal.Decimal `json:"bid_price"`
	AdImage  string          `json:"ad_image"`
	AdLink   string          `json:"ad_link"`
}

type clickRequest struct {
	Disease string `json:"disease"`
	Company string `json:"company"`
}

type queryTimeRequest struct {
	Diseases   []string `json:"diseases"`
	DurationMs int64    `json:"duration_ms"`
}

type apiCostRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Type   string          `json:"type"`
}

type tokenUsageRequest struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Responses

type errorResponse struct {
	Error           string   `json:"error"`
	Code            string   `json:"code"`
	MinimumRequired *float64 `json:"minimum_required,omitempty"`
}

type categoryAd struct {
	Company      string     `json:"company"`
	CategoryCost float64    `json:"category_cost"`
	AdPath       string     `json:"ad_path"`
	Link         string     `json:"link"`
	OwnedSince   *time.Time `json:"owned_since,omitempty"`
}

type purchaseResponse struct {
	Message       string    `json:"message"`
	Category      string    `json:"category"`
	Company       string    `json:"company"`
	Price         float64   `json:"price"`
	PreviousOwner string    `json:"previous_owner,omitempty"`
	PreviousPrice float64   `json:"previous_price"`
	At            time.Time `json:"at"`
}

type adView struct {
	Category string  `json:"category"`
	Company  string  `json:"company"`
	AdPath   string  `json:"ad_path"`
	Link     string  `json:"link"`
	Cost     float64 `json:"cost"`
}

type adResponse struct {
	Ad      *adView  `json:"ad"`
	Matched []string `json:"matched"`
}

type categorySummaryView struct {
	Disease             string     `json:"disease"`
	Mentions            int        `json:"mentions"`
	Clicks              int        `json:"clicks"`
	Times               float64    `json:"times"`
	TotalTimeSeconds    float64    `json:"total_time_seconds"`
	MentionsPerQuery    string     `json:"mentions_per_query"`
	ClicksPerMention    float64    `json:"clicks_per_mention"`
	MonthlyCategoryCost float64    `json:"monthly_category_cost"`
	CurrentlyOwned      bool       `json:"currently_owned"`
	OwnedSince          *time.Time `json:"owned_since,omitempty"`
	TotalPaid           float64    `json:"total_paid"`
	ClicksPerDollar     float64    `json:"clicks_per_dollar"`
	MentionsPerDay      float64    `json:"mentions_per_day"`
	ClicksPerDay        float64    `json:"clicks_per_day"`
}

type companySummaryResponse struct {
	Company string                `json:"company"`
	Summary []categorySummaryView `json:"summary"`
}

type unclaimedView struct {
	Disease  string `json:"disease"`
	Mentions int    `json:"mentions"`
}

type forSaleResponse struct {
	UnclaimedDiseases []unclaimedView `json:"unclaimed_diseases"`
}

type revenueResponse struct {
	TotalAPICosts    float64            `json:"total_api_costs_usd"`
	TotalAdRevenue   float64            `json:"total_prorated_ad_revenue_usd"`
	NetProfit        float64            `json:"net_profit_usd"`
	ProfitPerDay     float64            `json:"profit_per_day"`
	RevenueByCompany map[string]float64 `json:"revenue_breakdown_by_company"`
}

func newAdView(ad selector.Ad) *adView {
	return &adView{
		Category: ad.Category,
		Company:  ad.Company,
		AdPath:   ad.AdImage,
		Link:     ad.AdLink,
		Cost:     ad.Price.InexactFloat64(),
	}
}

func newCompanySummary(r analytics.CompanyReport) companySummaryResponse {
	out := companySummaryResponse{
		Company: r.Company,
		Summary: make([]categorySummaryView, 0, len(r.Categories)),
	}
	for _, s := range r.Categories {
		v := categorySummaryView{
			Disease:             s.Category,
			Mentions:            s.Mentions,
			Clicks:              s.Clicks,
			Times:               s.AvgTimeSeconds,
			TotalTimeSeconds:    s.TotalTimeSeconds,
			MentionsPerQuery:    s.MentionsPerQueryPercent(),
			ClicksPerMention:    s.ClicksPerMention,
			MonthlyCategoryCost: s.MonthlyCost.InexactFloat64(),
			CurrentlyOwned:      s.CurrentlyOwned,
			TotalPaid:           s.TotalPaid.InexactFloat64(),
			ClicksPerDollar:     s.ClicksPerDollar,
			MentionsPerDay:      s.MentionsPerDay,
			ClicksPerDay:        s.ClicksPerDay,
		}
		if !s.OwnedSince.IsZero() {
			since := s.OwnedSince
			v.OwnedSince = &since
		}
		out.Summary = append(out.Summary, v)
	}
	return out
}

func newRevenue(r analytics.Revenue) revenueResponse {
	out := revenueResponse{
		TotalAPICosts:    r.TotalCosts.InexactFloat64(),
		TotalAdRevenue:   r.TotalRevenue.InexactFloat64(),
		NetProfit:        r.NetProfit.InexactFloat64(),
		ProfitPerDay:     r.ProfitPerDay.InexactFloat64(),
		RevenueByCompany: make(map[string]float64, len(r.ByCompany)),
	}
	for company, paid := range r.ByCompany {
		out.RevenueByCompany[company] = paid.InexactFloat64()
	}
	return out
}
