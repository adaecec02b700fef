// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/adcat/internal/testing/fixture"
	"github.com/luxfi/adcat/pkg/auction"
)

func TestReport(t *testing.T) {
	require := require.New(t)
	ex := fixture.New(t)
	ctx := context.Background()

	_, err := ex.Purchase(ctx, auction.PurchaseRequest{
		Category: "asthma",
		Company:  "AcmeCo",
		BidPrice: decimal.NewFromInt(300),
	})
	require.NoError(err)
	_, err = ex.LogQueryDuration(ctx, []string{"hiv", "asthma"}, 100)
	require.NoError(err)
	_, err = ex.LogAPICost(ctx, "query", decimal.NewFromInt(10))
	require.NoError(err)
	ex.Clock.Advance(30 * 24 * time.Hour)

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(ctx)
	require.NoError(report(cmd, ex.Service))

	s := out.String()
	require.Contains(s, "Total ad revenue:  $300.00")
	require.Contains(s, "Net profit:        $290.00")
	require.Contains(s, "AcmeCo")
	require.Contains(s, "hiv")
	require.Contains(s, "1 mentions")
}

func TestSetupWithMemoryBackend(t *testing.T) {
	require := require.New(t)
	t.Setenv("ADCAT_STORAGE_BACKEND", "memory")
	configPath = ""

	rt, err := setup()
	require.NoError(err)
	defer rt.close()

	svc, err := rt.exchange()
	require.NoError(err)
	require.Len(svc.Categories(), 12)
}
