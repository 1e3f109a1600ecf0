package strategy

import (
	"errors"
	"fmt"

	"volume-breakout-lab/internal/domain"
)

// ErrUnresolvedExit is returned when the price series ends before the
// position exits. The signal produces no trade.
var ErrUnresolvedExit = errors.New("price series exhausted before exit")

// TargetLadderStrategy holds a position until it hits the final target or a
// stop that ratchets up as intermediate targets are reached.
type TargetLadderStrategy struct {
	Config domain.LadderConfig
}

// NewTargetLadderStrategy creates a new TargetLadderStrategy.
func NewTargetLadderStrategy(cfg domain.LadderConfig) *TargetLadderStrategy {
	return &TargetLadderStrategy{Config: cfg}
}

// ID returns the strategy identifier including parameters.
func (s *TargetLadderStrategy) ID() string {
	return fmt.Sprintf("TARGET_LADDER_t%.0f_t%.0f_t%.0f_sl%.0f",
		s.Config.Target1*100,
		s.Config.Target2*100,
		s.Config.Target3*100,
		s.Config.InitialStop*100)
}

// Execute runs the ladder over the future closes, one step per trading day,
// and stops at the first exit.
func (s *TargetLadderStrategy) Execute(input *Input) (*domain.Trade, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	pos := NewPosition(input.Entry, s.Config)
	for _, point := range input.Future {
		if pos.Step(point) == StateExited {
			break
		}
	}
	pos.Abandon()

	exit, reason, ok := pos.Exit()
	if !ok {
		return nil, ErrUnresolvedExit
	}

	return buildTrade(s.ID(), input.Signal, input.Entry, exit, reason, pos.Stop()), nil
}

// Ensure TargetLadderStrategy implements Strategy
var _ Strategy = (*TargetLadderStrategy)(nil)
