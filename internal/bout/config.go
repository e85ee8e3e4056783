package bout

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/touche/internal/rules"
)

const (
	DefaultWinThreshold  = 5
	DefaultStartDistance = rules.Medium
)

// FencerConfig describes one side of the bout.
type FencerConfig struct {
	Name  string
	Skill float64
}

// Config is everything needed to start a bout.
type Config struct {
	Fencers       [2]FencerConfig
	WinThreshold  int
	StartDistance rules.DistanceBand
}

// DefaultConfig returns a config with the default threshold and start band.
func DefaultConfig(a, b FencerConfig) Config {
	return Config{
		Fencers:       [2]FencerConfig{a, b},
		WinThreshold:  DefaultWinThreshold,
		StartDistance: DefaultStartDistance,
	}
}

// Validate checks every field and returns the first *ConfigError found.
func (c Config) Validate() error {
	for i, f := range c.Fencers {
		if strings.TrimSpace(f.Name) == "" {
			return &ConfigError{
				Code:    ErrCodeInvalidName,
				Field:   fmt.Sprintf("fencers[%d].name", i),
				Message: "name must not be empty",
			}
		}
		if math.IsNaN(f.Skill) || f.Skill < 0 || f.Skill > 1 {
			return &ConfigError{
				Code:    ErrCodeInvalidSkill,
				Field:   fmt.Sprintf("fencers[%d].skill", i),
				Message: fmt.Sprintf("skill %v outside [0,1]", f.Skill),
			}
		}
	}
	if c.WinThreshold <= 0 {
		return &ConfigError{
			Code:    ErrCodeInvalidThreshold,
			Field:   "win_threshold",
			Message: fmt.Sprintf("win threshold must be positive, got %d", c.WinThreshold),
		}
	}
	if !c.StartDistance.Valid() {
		return &ConfigError{
			Code:    ErrCodeUnknownKind,
			Field:   "start_distance",
			Message: fmt.Sprintf("unknown distance band %d", uint8(c.StartDistance)),
			Err:     rules.ErrUnknownKind,
		}
	}
	return nil
}
