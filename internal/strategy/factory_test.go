package strategy

import (
	"errors"
	"testing"

	"volume-breakout-lab/internal/domain"
)

func TestFromConfig_Default(t *testing.T) {
	s, err := FromConfig(domain.DefaultLadderConfig)
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}

	tl, ok := s.(*TargetLadderStrategy)
	if !ok {
		t.Fatalf("expected *TargetLadderStrategy, got %T", s)
	}
	if tl.Config != domain.DefaultLadderConfig {
		t.Errorf("config not carried: %+v", tl.Config)
	}
}

func TestFromConfig_InvalidLadder(t *testing.T) {
	base := domain.DefaultLadderConfig

	tests := []struct {
		name   string
		mutate func(*domain.LadderConfig)
	}{
		{"zero initial stop", func(c *domain.LadderConfig) { c.InitialStop = 0 }},
		{"initial stop above entry", func(c *domain.LadderConfig) { c.InitialStop = 1.05 }},
		{"breakeven below entry", func(c *domain.LadderConfig) { c.BreakevenStop = 0.99 }},
		{"target1 not above breakeven", func(c *domain.LadderConfig) { c.Target1 = 1.01 }},
		{"target2 not above target1", func(c *domain.LadderConfig) { c.Target2 = 1.15 }},
		{"target3 below target2", func(c *domain.LadderConfig) { c.Target3 = 1.20 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)

			_, err := FromConfig(cfg)
			if !errors.Is(err, ErrInvalidLadder) {
				t.Errorf("expected ErrInvalidLadder, got %v", err)
			}
		})
	}
}
