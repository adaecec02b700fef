// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "adcat"

// Purchase results
const (
	ResultAccepted = "accepted"
	ResultTooLow   = "too_low"
	ResultInvalid  = "invalid"
	ResultError    = "error"
)

// Metrics holds all adcat metrics on a private registry
type Metrics struct {
	registry *prometheus.Registry

	// Auction metrics
	Purchases        *prometheus.CounterVec
	PurchaseDuration prometheus.Histogram

	// Serving metrics
	AdsServed *prometheus.CounterVec
	Clicks    prometheus.Counter
	Queries   prometheus.Counter

	// Cost metrics
	CostEvents *prometheus.CounterVec
	CostTotal  prometheus.Gauge

	// Feed metrics
	FeedClients prometheus.Gauge

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers every metric
func NewMetrics() (*Metrics, error) {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.Purchases = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auction_purchases_total",
		Help:      "Total number of category purchases by result",
	}, []string{"result"})

	m.PurchaseDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "auction_purchase_duration_seconds",
		Help:      "Time to process a purchase, including the storage write",
		Buckets:   prometheus.DefBuckets,
	})

	m.AdsServed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ads_served_total",
		Help:      "Total number of ad lookups by category, \"none\" when no ad was served",
	}, []string{"category"})

	m.Clicks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_clicks_total",
		Help:      "Total number of clicks logged",
	})

	m.Queries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_queries_total",
		Help:      "Total number of queries logged",
	})

	m.CostEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_cost_events_total",
		Help:      "Total number of cost events logged by type",
	}, []string{"type"})

	// a gauge since corrections may lower the total
	m.CostTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ledger_cost_usd",
		Help:      "Sum of costs logged since start, in USD",
	})

	m.FeedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "feed_clients",
		Help:      "Number of connected live feed clients",
	})

	m.HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	m.HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	for _, c := range []prometheus.Collector{
		m.Purchases,
		m.PurchaseDuration,
		m.AdsServed,
		m.Clicks,
		m.Queries,
		m.CostEvents,
		m.CostTotal,
		m.FeedClients,
		m.HTTPRequests,
		m.HTTPDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// GetGatherer returns the prometheus gatherer for metrics export
func (m *Metrics) GetGatherer() prometheus.Gatherer {
	return m.registry
}

// GetRegisterer returns the prometheus registerer
func (m *Metrics) GetRegisterer() prometheus.Registerer {
	return m.registry
}
