package strategy

import (
	"volume-breakout-lab/internal/domain"
)

// State is the lifecycle state of a simulated position.
type State int

// Position states. Exited and Abandoned are terminal.
const (
	StateOpen State = iota
	StateExited
	StateAbandoned
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "OPEN"
	case StateExited:
		return "EXITED"
	case StateAbandoned:
		return "ABANDONED"
	default:
		return "UNKNOWN"
	}
}

// StopLevel identifies which rung of the ladder the stop sits on.
type StopLevel int

// Stop levels in ascending order.
const (
	StopInitial StopLevel = iota
	StopBreakeven
	StopTarget1
	StopTarget2
)

func (l StopLevel) String() string {
	switch l {
	case StopInitial:
		return "INITIAL"
	case StopBreakeven:
		return "BREAKEVEN"
	case StopTarget1:
		return "TARGET1"
	case StopTarget2:
		return "TARGET2"
	default:
		return "UNKNOWN"
	}
}

// Position is the per-simulation state machine of the target ladder.
// Thresholds are fixed at entry; only the stop moves.
type Position struct {
	entry     domain.PricePoint
	target1   float64
	target2   float64
	target3   float64
	breakeven float64

	stop  float64
	level StopLevel
	state State

	exit       domain.PricePoint
	exitReason string
}

// NewPosition opens a position at entry with thresholds derived from cfg.
func NewPosition(entry domain.PricePoint, cfg domain.LadderConfig) *Position {
	price := entry.Close
	return &Position{
		entry:     entry,
		target1:   price * cfg.Target1,
		target2:   price * cfg.Target2,
		target3:   price * cfg.Target3,
		breakeven: price * cfg.BreakevenStop,
		stop:      price * cfg.InitialStop,
		level:     StopInitial,
		state:     StateOpen,
	}
}

// Step evaluates one trading day and returns the resulting state.
// The three ratchet rules are applied independently before the exit check,
// so a single close above target3 moves the stop through every rung.
// Steps after a terminal state are ignored.
func (p *Position) Step(point domain.PricePoint) State {
	if p.state != StateOpen {
		return p.state
	}

	price := point.Close

	if price >= p.target1 {
		p.raise(StopBreakeven, p.breakeven)
	}
	if price >= p.target2 {
		p.raise(StopTarget1, p.target1)
	}
	if price >= p.target3 {
		p.raise(StopTarget2, p.target2)
	}

	switch {
	case price >= p.target3:
		p.close(point, domain.ExitReasonFinalTarget)
	case price <= p.stop:
		if p.level == StopInitial {
			p.close(point, domain.ExitReasonInitialStop)
		} else {
			p.close(point, domain.ExitReasonTrailingStop)
		}
	}

	return p.state
}

// Abandon marks an open position as having run out of data.
func (p *Position) Abandon() {
	if p.state == StateOpen {
		p.state = StateAbandoned
	}
}

// raise moves the stop up to level; the stop never moves down.
func (p *Position) raise(level StopLevel, stop float64) {
	if stop > p.stop {
		p.stop = stop
		p.level = level
	}
}

func (p *Position) close(point domain.PricePoint, reason string) {
	p.state = StateExited
	p.exit = point
	p.exitReason = reason
}

// State returns the current state.
func (p *Position) State() State { return p.state }

// Stop returns the stop price currently in force.
func (p *Position) Stop() float64 { return p.stop }

// Level returns the ladder rung of the current stop.
func (p *Position) Level() StopLevel { return p.level }

// Exit returns the exit point and reason. ok is false unless the position exited.
func (p *Position) Exit() (point domain.PricePoint, reason string, ok bool) {
	if p.state != StateExited {
		return domain.PricePoint{}, "", false
	}
	return p.exit, p.exitReason, true
}
