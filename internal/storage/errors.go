package storage

import "errors"

var (
	// ErrNotFound is returned when a trade, summary or symbol has no rows.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when a keyed record (trade_id, strategy
	// summary, signal week) is inserted twice. Reruns delete first.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidInput is returned for nil records or empty keys.
	ErrInvalidInput = errors.New("invalid input")
)
