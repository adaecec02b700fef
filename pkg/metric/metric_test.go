// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metric

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetricsAreIndependent(t *testing.T) {
	require := require.New(t)

	a, err := NewMetrics()
	require.NoError(err)
	b, err := NewMetrics()
	require.NoError(err)

	a.Purchases.WithLabelValues(ResultAccepted).Inc()
	a.Purchases.WithLabelValues(ResultAccepted).Inc()
	a.Purchases.WithLabelValues(ResultTooLow).Inc()

	require.Equal(2.0, testutil.ToFloat64(a.Purchases.WithLabelValues(ResultAccepted)))
	require.Equal(1.0, testutil.ToFloat64(a.Purchases.WithLabelValues(ResultTooLow)))
	require.Equal(0.0, testutil.ToFloat64(b.Purchases.WithLabelValues(ResultAccepted)))
}

func TestCostGaugeAcceptsCorrections(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	m.CostTotal.Add(1.25)
	m.CostTotal.Add(-0.25)
	require.Equal(t, 1.0, testutil.ToFloat64(m.CostTotal))
}

func TestGatherExposesNamespace(t *testing.T) {
	require := require.New(t)
	m, err := NewMetrics()
	require.NoError(err)

	m.Clicks.Inc()
	expected := `
# HELP adcat_ledger_clicks_total Total number of clicks logged
# TYPE adcat_ledger_clicks_total counter
adcat_ledger_clicks_total 1
`
	require.NoError(testutil.GatherAndCompare(m.GetGatherer(), strings.NewReader(expected), "adcat_ledger_clicks_total"))

	// registering the same collector twice fails
	require.Error(m.GetRegisterer().Register(prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_clicks_total",
		Help:      "Total number of clicks logged",
	})))
}
