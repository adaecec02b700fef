// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package fixture builds in-memory exchanges for tests
package fixture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/adcat/internal/testing/clock"
	"github.com/luxfi/adcat/pkg/exchange"
	"github.com/luxfi/adcat/pkg/log"
	"github.com/luxfi/adcat/pkg/metric"
	"github.com/luxfi/adcat/pkg/storage"
)

// Start is the time every fixture clock starts at
var Start = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// Exchange is a service over a memory store with a manual clock
type Exchange struct {
	*exchange.Service
	Clock   *clock.Manual
	Store   *storage.Storage
	Metrics *metric.Metrics
}

// New creates an exchange with the default configuration. The store is
// closed when the test ends.
func New(t testing.TB, opts ...exchange.Option) *Exchange {
	return NewWithConfig(t, exchange.DefaultConfig(), opts...)
}

// NewWithConfig creates an exchange with cfg
func NewWithConfig(t testing.TB, cfg exchange.Config, opts ...exchange.Option) *Exchange {
	t.Helper()

	store := storage.NewMemory()
	t.Cleanup(func() { _ = store.Close() })

	m, err := metric.NewMetrics()
	require.NoError(t, err)

	clk := clock.NewManual(Start)
	all := append([]exchange.Option{
		exchange.WithClock(clk.Now),
		exchange.WithLogger(log.NoOp()),
		exchange.WithMetrics(m),
	}, opts...)

	svc, err := exchange.New(store, cfg, all...)
	require.NoError(t, err)
	return &Exchange{Service: svc, Clock: clk, Store: store, Metrics: m}
}
