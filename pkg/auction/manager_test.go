// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auction

import (
	"context"
	"errors"
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

var t0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T) (*Manager, *clock.Manual, *storage.Storage) {
	t.Helper()
	store := storage.NewMemory()
	t.Cleanup(func() { _ = store.Close() })

	catalog := NewCatalog(store, log.NoOp())
	require.NoError(t, catalog.Seed("Asthma", "diabetes", "breast cancer"))

	clk := clock.NewManual(t0)
	return NewManager(catalog, clk.Now, log.NoOp()), clk, store
}

func bid(category, company string, price int64) PurchaseRequest {
	return PurchaseRequest{
		Category: category,
		Company:  company,
		BidPrice: decimal.NewFromInt(price),
		AdImage:  "ad_images/" + company + ".png",
		AdLink:   "https://example.com/" + company,
	}
}

func TestFirstBidSucceeds(t *testing.T) {
	require := require.New(t)
	m, _, _ := newTestManager(t)

	receipt, err := m.Purchase(context.Background(), bid("ASTHMA", "AcmeCo", 100))
	require.NoError(err)
	require.Equal("asthma", receipt.Category)
	require.Empty(receipt.PreviousOwner)
	require.True(receipt.PreviousPrice.IsZero())

	cat, err := m.Catalog().Get("asthma")
	require.NoError(err)
	require.Equal("AcmeCo", cat.Owner)
	require.True(cat.Price.Equal(decimal.NewFromInt(100)))
	require.Equal("https://example.com/AcmeCo", cat.AdLink)
	require.Equal(t0, cat.ChangedAt)

	ivs := m.Catalog().Intervals("asthma")
	require.Len(ivs, 1)
	require.True(ivs[0].Open())
}

func TestBidMustExceedCurrentPrice(t *testing.T) {
	require := require.New(t)
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.Purchase(ctx, bid("diabetes", "AcmeCo", 100))
	require.NoError(err)

	for _, price := range []int64{100, 99, 1} {
		_, err = m.Purchase(ctx, bid("diabetes", "Globex", price))
		require.ErrorIs(err, errs.ErrBidTooLow)

		var low *errs.BidTooLowError
		require.ErrorAs(err, &low)
		require.True(low.Minimum.Equal(decimal.NewFromInt(100)))
	}

	// retrying the same losing bid keeps failing
	_, err = m.Purchase(ctx, bid("diabetes", "Globex", 100))
	require.ErrorIs(err, errs.ErrBidTooLow)

	receipt, err := m.Purchase(ctx, bid("diabetes", "Globex", 101))
	require.NoError(err)
	require.Equal("AcmeCo", receipt.PreviousOwner)

	cat, err := m.Catalog().Get("diabetes")
	require.NoError(err)
	require.Equal("Globex", cat.Owner)
}

func TestPurchaseValidation(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  PurchaseRequest
	}{
		{"empty category", bid("   ", "AcmeCo", 10)},
		{"slash in name", bid("a/b", "AcmeCo", 10)},
		{"empty company", bid("asthma", " ", 10)},
		{"zero bid", bid("asthma", "AcmeCo", 0)},
		{"negative bid", bid("asthma", "AcmeCo", -5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Purchase(ctx, tt.req)
			require.ErrorIs(t, err, errs.ErrInvalidInput)
		})
	}
}

func TestTransferClosesPreviousInterval(t *testing.T) {
	require := require.New(t)
	m, clk, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.Purchase(ctx, bid("asthma", "AcmeCo", 100))
	require.NoError(err)

	clk.Advance(10 * 24 * time.Hour)
	_, err = m.Purchase(ctx, bid("asthma", "Globex", 150))
	require.NoError(err)

	ivs := m.Catalog().Intervals("asthma")
	require.Len(ivs, 2)
	require.Equal("AcmeCo", ivs[0].Company)
	require.False(ivs[0].Open())
	require.Equal(10*24*time.Hour, ivs[0].Duration(clk.Now()))
	require.Equal("Globex", ivs[1].Company)
	require.True(ivs[1].Open())
	require.Equal(*ivs[0].End, ivs[1].Start)
	require.Equal(1, ivs[0].Seq)
	require.Equal(2, ivs[1].Seq)

	acme := m.Catalog().IntervalsFor("acmeco")
	require.Len(acme, 1)
}

func TestOwnerMayRaiseOwnBid(t *testing.T) {
	require := require.New(t)
	m, clk, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.Purchase(ctx, bid("asthma", "AcmeCo", 100))
	require.NoError(err)
	clk.Advance(time.Hour)
	receipt, err := m.Purchase(ctx, bid("asthma", "AcmeCo", 120))
	require.NoError(err)
	require.Equal("AcmeCo", receipt.PreviousOwner)

	ivs := m.Catalog().Intervals("asthma")
	require.Len(ivs, 2)
	require.True(ivs[1].Price.Equal(decimal.NewFromInt(120)))
}

func TestClockStepBackKeepsChangeTimeOnInterval(t *testing.T) {
	require := require.New(t)
	m, clk, _ := newTestManager(t)
	ctx := context.Background()

	clk.Set(t0.Add(time.Hour))
	_, err := m.Purchase(ctx, bid("asthma", "AcmeCo", 100))
	require.NoError(err)

	clk.Set(t0)
	receipt, err := m.Purchase(ctx, bid("asthma", "Globex", 150))
	require.NoError(err)

	want := t0.Add(time.Hour)
	cat, err := m.Catalog().Get("asthma")
	require.NoError(err)
	require.Equal(want, cat.ChangedAt)
	require.Equal(want, receipt.At)

	ivs := m.Catalog().Intervals("asthma")
	require.Len(ivs, 2)
	require.Equal(want, ivs[1].Start)
	require.Equal(want, *ivs[0].End)
	require.Zero(ivs[0].Duration(clk.Now()))
}

func TestNewCategoryIntroducedByPurchase(t *testing.T) {
	require := require.New(t)
	m, _, _ := newTestManager(t)

	require.False(m.Catalog().Has("gout"))
	_, err := m.Catalog().Get("gout")
	require.ErrorIs(err, errs.ErrNotFound)

	_, err = m.Purchase(context.Background(), bid("Gout", "AcmeCo", 5))
	require.NoError(err)
	require.True(m.Catalog().Has("gout"))
	require.Contains(m.Catalog().Names(), "gout")
}

func TestConcurrentBidsKeepLinearHistory(t *testing.T) {
	require := require.New(t)
	m, clk, _ := newTestManager(t)
	ctx := context.Background()

	const bidders = 64
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted []decimal.Decimal
		failures []error
	)
	for i := 0; i < bidders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			clk.Advance(time.Minute)
			price := int64((i*37)%bidders + 1)
			r, err := m.Purchase(ctx, bid("asthma", fmt.Sprintf("co-%d", i), price))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted = append(accepted, r.Price)
			case !errors.Is(err, errs.ErrBidTooLow):
				failures = append(failures, err)
			}
		}(i)
	}
	wg.Wait()
	require.Empty(failures)

	ivs := m.Catalog().Intervals("asthma")
	require.Len(ivs, len(accepted))

	open := 0
	for i, iv := range ivs {
		if iv.Open() {
			open++
			continue
		}
		// each closed interval ends exactly where its successor starts
		require.Less(i, len(ivs)-1)
		require.Equal(*iv.End, ivs[i+1].Start)
		require.True(ivs[i+1].Price.GreaterThan(iv.Price))
	}
	require.Equal(1, open)

	highest := accepted[0]
	for _, p := range accepted {
		if p.GreaterThan(highest) {
			highest = p
		}
	}
	cat, err := m.Catalog().Get("asthma")
	require.NoError(err)
	require.True(cat.Price.Equal(highest))
	require.Equal(ivs[len(ivs)-1].Company, cat.Owner)
	require.True(highest.Equal(decimal.NewFromInt(bidders)))
}

func TestParallelCategoriesDoNotInterfere(t *testing.T) {
	require := require.New(t)
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	failures := make(chan error, 60)
	for _, name := range []string{"asthma", "diabetes", "breast cancer"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			for p := int64(1); p <= 20; p++ {
				if _, err := m.Purchase(ctx, bid(name, "co", p)); err != nil {
					failures <- err
				}
			}
		}(name)
	}
	wg.Wait()
	close(failures)
	for err := range failures {
		require.NoError(err)
	}

	for _, name := range []string{"asthma", "diabetes", "breast cancer"} {
		cat, err := m.Catalog().Get(name)
		require.NoError(err)
		require.True(cat.Price.Equal(decimal.NewFromInt(20)))
		require.Len(m.Catalog().Intervals(name), 20)
	}
}

func TestStorageFailureLeavesCatalogUntouched(t *testing.T) {
	require := require.New(t)
	m, _, store := newTestManager(t)
	ctx := context.Background()

	_, err := m.Purchase(ctx, bid("asthma", "AcmeCo", 100))
	require.NoError(err)

	require.NoError(store.Close())
	_, err = m.Purchase(ctx, bid("asthma", "Globex", 200))
	require.ErrorIs(err, errs.ErrStorageFailure)

	cat, err := m.Catalog().Get("asthma")
	require.NoError(err)
	require.Equal("AcmeCo", cat.Owner)
	require.Len(m.Catalog().Intervals("asthma"), 1)
}

func TestCatalogLoadRestoresState(t *testing.T) {
	require := require.New(t)
	m, clk, store := newTestManager(t)
	ctx := context.Background()

	_, err := m.Purchase(ctx, bid("asthma", "AcmeCo", 100))
	require.NoError(err)
	clk.Advance(time.Hour)
	_, err = m.Purchase(ctx, bid("asthma", "Globex", 200))
	require.NoError(err)
	_, err = m.Purchase(ctx, bid("gout", "Initech", 3))
	require.NoError(err)

	reloaded := NewCatalog(store, log.NoOp())
	require.NoError(reloaded.Load())
	require.NoError(reloaded.Seed("asthma"))

	cat, err := reloaded.Get("asthma")
	require.NoError(err)
	require.Equal("Globex", cat.Owner)
	require.True(reloaded.Has("gout"))
	before, after := m.Catalog().Intervals("asthma"), reloaded.Intervals("asthma")
	require.Len(after, len(before))
	for i := range before {
		require.Equal(before[i].ID, after[i].ID)
		require.Equal(before[i].Company, after[i].Company)
		require.Equal(before[i].Open(), after[i].Open())
		require.True(before[i].Start.Equal(after[i].Start))
		require.True(before[i].Price.Equal(after[i].Price))
	}
	require.Len(reloaded.AllIntervals(), 3)
}

func TestCatalogAllIncludesUnowned(t *testing.T) {
	require := require.New(t)
	m, _, _ := newTestManager(t)

	_, err := m.Purchase(context.Background(), bid("diabetes", "AcmeCo", 100))
	require.NoError(err)

	all := m.Catalog().All()
	require.Len(all, 3)
	require.Equal("asthma", all[0].Name)
	require.False(all[0].Owned())
	require.Equal("breast cancer", all[1].Name)
	require.Equal("diabetes", all[2].Name)
	require.True(all[2].Owned())

	require.ErrorIs(m.Catalog().Seed(""), errs.ErrInvalidInput)
}

func BenchmarkPurchase(b *testing.B) {
	store := storage.NewMemory()
	defer store.Close()

	catalog := NewCatalog(store, log.NoOp())
	m := NewManager(catalog, nil, log.NoOp())
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = m.Purchase(ctx, bid("asthma", "AcmeCo", int64(i+1)))
	}
}
