// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package errs holds the error taxonomy shared by the exchange packages.
//
// Callers match with errors.Is against the sentinels; every error returned by
// the exchange wraps exactly one of them.
package errs

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrBidTooLow      = errors.New("bid too low")
	ErrInvalidInput   = errors.New("invalid input")
	ErrStorageFailure = errors.New("storage failure")
)

// BidTooLowError reports a rejected purchase and the price that must be beaten.
type BidTooLowError struct {
	Category string
	Bid      decimal.Decimal
	Minimum  decimal.Decimal
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid too low for %q: bid %s must exceed %s", e.Category, e.Bid, e.Minimum)
}

// Is makes errors.Is(err, ErrBidTooLow) hold.
func (e *BidTooLowError) Is(target error) bool {
	return target == ErrBidTooLow
}

// Invalid returns an ErrInvalidInput with a formatted reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// NotFound returns an ErrNotFound naming the missing resource.
func NotFound(kind, name string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, name)
}

// Storage wraps a backend error as ErrStorageFailure, keeping the cause.
func Storage(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageFailure, op, err)
}

// Code is the machine-readable error code rendered by the API.
type Code string

const (
	CodeNotFound     Code = "NOT_FOUND"
	CodeBidTooLow    Code = "BID_TOO_LOW"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeStorage      Code = "STORAGE_FAILURE"
	CodeInternal     Code = "INTERNAL_ERROR"
)

var statusCodes = map[Code]int{
	CodeNotFound:     http.StatusNotFound,
	CodeBidTooLow:    http.StatusConflict,
	CodeInvalidInput: http.StatusBadRequest,
	CodeStorage:      http.StatusServiceUnavailable,
	CodeInternal:     http.StatusInternalServerError,
}

// StatusCode returns the HTTP status for the code.
func (c Code) StatusCode() int {
	if s, ok := statusCodes[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// CodeOf classifies err. BidTooLow is checked first since it is the most specific.
func CodeOf(err error) Code {
	switch {
	case errors.Is(err, ErrBidTooLow):
		return CodeBidTooLow
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, ErrStorageFailure):
		return CodeStorage
	default:
		return CodeInternal
	}
}
