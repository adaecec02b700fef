// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/adcat/internal/testing/clock"
	"github.com/luxfi/adcat/pkg/errs"
	"github.com/luxfi/adcat/pkg/log"
	"github.com/luxfi/adcat/pkg/storage"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestLedger(t *testing.T) (*Ledger, *clock.Manual, *storage.Storage) {
	t.Helper()
	store := storage.NewMemory()
	t.Cleanup(func() { _ = store.Close() })
	clk := clock.NewManual(t0)
	return New(store, clk.Now, log.NoOp()), clk, store
}

func TestAppendAndReadInOrder(t *testing.T) {
	require := require.New(t)
	l, clk, _ := newTestLedger(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := l.AppendQuery(ctx, []string{"asthma"}, time.Duration(i)*time.Second)
		require.NoError(err)
		clk.Advance(time.Second)
	}
	_, err := l.AppendClick(ctx, "asthma", " AcmeCo ")
	require.NoError(err)
	_, err = l.AppendCost(ctx, "", decimal.RequireFromString("0.0125"))
	require.NoError(err)

	queries, err := l.Queries()
	require.NoError(err)
	require.Len(queries, 5)
	for i, q := range queries {
		require.EqualValues(i*1000, q.DurationMs)
		require.True(q.Mentions("asthma"))
		require.False(q.Mentions("hiv"))
	}

	clicks, err := l.Clicks()
	require.NoError(err)
	require.Len(clicks, 1)
	require.Equal("AcmeCo", clicks[0].Company)

	costs, err := l.Costs()
	require.NoError(err)
	require.Len(costs, 1)
	require.Equal(CostTypeQuery, costs[0].Type)
	require.True(costs[0].Amount.Equal(decimal.RequireFromString("0.0125")))
}

func TestAppendValidation(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := l.AppendQuery(ctx, []string{"asthma"}, -time.Millisecond)
	require.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = l.AppendClick(ctx, "asthma", "")
	require.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = l.AppendClick(ctx, "", "AcmeCo")
	require.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestNegativeCostIsCorrection(t *testing.T) {
	require := require.New(t)
	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := l.AppendCost(ctx, "query", decimal.NewFromInt(2))
	require.NoError(err)
	_, err = l.AppendCost(ctx, "refund", decimal.NewFromInt(-2))
	require.NoError(err)

	costs, err := l.Costs()
	require.NoError(err)
	require.Len(costs, 2)
	sum := costs[0].Amount.Add(costs[1].Amount)
	require.True(sum.IsZero())
}

func TestSnapshotEarliest(t *testing.T) {
	require := require.New(t)
	l, clk, _ := newTestLedger(t)
	ctx := context.Background()

	s, err := l.Snapshot()
	require.NoError(err)
	_, ok := s.Earliest()
	require.False(ok)

	_, err = l.AppendCost(ctx, "query", decimal.NewFromInt(1))
	require.NoError(err)
	clk.Advance(time.Hour)
	_, err = l.AppendQuery(ctx, nil, 0)
	require.NoError(err)

	s, err = l.Snapshot()
	require.NoError(err)
	first, ok := s.Earliest()
	require.True(ok)
	require.Equal(t0, first)
}

func TestConcurrentAppends(t *testing.T) {
	require := require.New(t)
	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	const writers, perWriter = 16, 25
	var wg sync.WaitGroup
	failures := make(chan error, writers*perWriter)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				if _, err := l.AppendClick(ctx, "diabetes", fmt.Sprintf("co-%d", w)); err != nil {
					failures <- err
				}
			}
		}(w)
	}
	wg.Wait()
	close(failures)
	for err := range failures {
		require.NoError(err)
	}

	clicks, err := l.Clicks()
	require.NoError(err)
	require.Len(clicks, writers*perWriter)
	seen := make(map[string]struct{}, len(clicks))
	for _, c := range clicks {
		require.Equal("diabetes", c.Category)
		seen[c.ID.String()] = struct{}{}
	}
	require.Len(seen, writers*perWriter)
}

func TestStorageFailure(t *testing.T) {
	l, _, store := newTestLedger(t)
	require.NoError(t, store.Close())

	_, err := l.AppendClick(context.Background(), "asthma", "AcmeCo")
	require.ErrorIs(t, err, errs.ErrStorageFailure)
}
