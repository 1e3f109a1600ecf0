package strategy

import (
	"errors"
	"fmt"

	"volume-breakout-lab/internal/domain"
)

// ErrInvalidLadder is returned when ladder multiples are out of order.
var ErrInvalidLadder = errors.New("invalid target ladder")

// FromConfig creates a Strategy from domain.LadderConfig.
// Requires 0 < InitialStop < 1 <= BreakevenStop < Target1 < Target2 < Target3.
func FromConfig(cfg domain.LadderConfig) (Strategy, error) {
	if err := ValidateLadder(cfg); err != nil {
		return nil, err
	}
	return NewTargetLadderStrategy(cfg), nil
}

// ValidateLadder checks the ordering of the ladder multiples.
func ValidateLadder(cfg domain.LadderConfig) error {
	switch {
	case !(cfg.InitialStop > 0 && cfg.InitialStop < 1):
		return fmt.Errorf("%w: initial stop %.4f must be in (0, 1)", ErrInvalidLadder, cfg.InitialStop)
	case cfg.BreakevenStop < 1:
		return fmt.Errorf("%w: breakeven stop %.4f must be >= 1", ErrInvalidLadder, cfg.BreakevenStop)
	case !(cfg.Target1 > cfg.BreakevenStop):
		return fmt.Errorf("%w: target1 %.4f must exceed breakeven stop %.4f", ErrInvalidLadder, cfg.Target1, cfg.BreakevenStop)
	case !(cfg.Target2 > cfg.Target1):
		return fmt.Errorf("%w: target2 %.4f must exceed target1 %.4f", ErrInvalidLadder, cfg.Target2, cfg.Target1)
	case !(cfg.Target3 > cfg.Target2):
		return fmt.Errorf("%w: target3 %.4f must exceed target2 %.4f", ErrInvalidLadder, cfg.Target3, cfg.Target2)
	}
	return nil
}
