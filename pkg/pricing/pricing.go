// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pricing converts language model token usage into USD cost.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/luxfi/adcat/pkg/errs"
)

var thousand = decimal.NewFromInt(1000)

// Pricer holds per-1K-token prices in USD
type Pricer struct {
	PromptPer1K     decimal.Decimal
	CompletionPer1K decimal.Decimal
}

// Default returns the prices of the hosted chat model
func Default() Pricer {
	return Pricer{
		PromptPer1K:     decimal.RequireFromString("0.0005"),
		CompletionPer1K: decimal.RequireFromString("0.0015"),
	}
}

// Cost prices one model call
func (p Pricer) Cost(promptTokens, completionTokens int) (decimal.Decimal, error) {
	if promptTokens < 0 || completionTokens < 0 {
		return decimal.Zero, errs.Invalid("token counts must not be negative, got %d and %d", promptTokens, completionTokens)
	}
	prompt := decimal.NewFromInt(int64(promptTokens)).Div(thousand).Mul(p.PromptPer1K)
	completion := decimal.NewFromInt(int64(completionTokens)).Div(thousand).Mul(p.CompletionPer1K)
	return prompt.Add(completion), nil
}

// Validate rejects negative prices
func (p Pricer) Validate() error {
	if p.PromptPer1K.IsNegative() || p.CompletionPer1K.IsNegative() {
		return errs.Invalid("token prices must not be negative")
	}
	return nil
}
