package strategy

import (
	"errors"

	"volume-breakout-lab/internal/domain"
)

// Input validation errors
var (
	ErrInvalidInput      = errors.New("invalid strategy input")
	ErrEmptyInstrumentID = errors.New("instrument id is empty")
	ErrInvalidEntryPrice = errors.New("entry price must be positive")
	ErrFutureNotAfter    = errors.New("future prices must be strictly after entry and increasing")
)

// Strategy produces a trade from an entry and the prices that follow it.
type Strategy interface {
	// Execute walks the future prices and returns the closed trade.
	// Returns ErrUnresolvedExit if the series ends while the position is open.
	Execute(input *Input) (*domain.Trade, error)

	// ID returns strategy identifier (includes parameters).
	ID() string
}

// Input holds all data needed for one simulation.
type Input struct {
	Signal domain.CandidateSignal
	Entry  domain.PricePoint
	Future []domain.PricePoint // closes strictly after Entry.Date, ascending
}

// Validate checks the input at the package boundary.
func (in *Input) Validate() error {
	if in == nil {
		return ErrInvalidInput
	}
	if in.Signal.InstrumentID == "" {
		return ErrEmptyInstrumentID
	}
	if !(in.Entry.Close > 0) {
		return ErrInvalidEntryPrice
	}

	prev := in.Entry.Date
	for _, p := range in.Future {
		if !p.Date.After(prev) {
			return ErrFutureNotAfter
		}
		prev = p.Date
	}
	return nil
}
