// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "verbose"})
	require.Error(t, err)

	// NewWithLevel falls back instead of failing.
	require.NotNil(t, NewWithLevel("verbose"))
}

func TestFileOutput(t *testing.T) {
	require := require.New(t)
	path := filepath.Join(t.TempDir(), "adcat.log")

	l, err := New(Config{Level: "debug", File: path})
	require.NoError(err)
	l.With(String("component", "test")).Info("purchase accepted", String("category", "asthma"))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(err)
	require.True(strings.Contains(string(data), `"category":"asthma"`))
	require.True(strings.Contains(string(data), `"component":"test"`))
}

func TestNewFromZapKeepsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewFromZap(zap.New(core)).With(String("category", "hiv"))

	l.Warn("bid rejected", Int("attempt", 2))

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "bid rejected", entries[0].Message)
	fields := entries[0].ContextMap()
	require.Equal(t, "hiv", fields["category"])
	require.EqualValues(t, 2, fields["attempt"])
}

func TestNoOp(t *testing.T) {
	NoLog.Error("ignored", Error(os.ErrNotExist))
	require.NoError(t, NoOp().Sync())
}
