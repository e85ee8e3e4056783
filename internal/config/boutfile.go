// Package config loads bout definitions from YAML and server settings
// from the environment.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/roach88/touche/internal/bout"
	"github.com/roach88/touche/internal/rng"
	"github.com/roach88/touche/internal/rules"
)

// DefaultMaxRounds caps a bout loaded without an explicit max_rounds.
const DefaultMaxRounds = 1000

// FencerFile is one fencer entry in a bout file.
type FencerFile struct {
	Name  string  `yaml:"name"`
	Skill float64 `yaml:"skill"`
}

// BoutFile is the on-disk form of a bout definition.
//
// Omitted fields take their defaults: win_threshold 5, start_distance
// medium, seed 0 (random), max_rounds DefaultMaxRounds. A field that is
// present is never coerced; an explicit win_threshold of 0 is an error.
type BoutFile struct {
	Fencers       []FencerFile `yaml:"fencers"`
	WinThreshold  *int         `yaml:"win_threshold,omitempty"`
	StartDistance string       `yaml:"start_distance,omitempty"`
	Seed          uint64       `yaml:"seed,omitempty"`
	MaxRounds     int          `yaml:"max_rounds,omitempty"`
}

// LoadBoutFile reads and parses a bout definition from path.
func LoadBoutFile(path string) (*BoutFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bout file: %w", err)
	}
	return ParseBoutFile(bytes.NewReader(data))
}

// ParseBoutFile decodes a bout definition. Unknown fields are rejected so
// a typo like "win_treshold" fails loudly instead of being ignored.
func ParseBoutFile(r io.Reader) (*BoutFile, error) {
	var f BoutFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(f.Fencers) != 2 {
		return nil, fmt.Errorf("invalid bout file: exactly 2 fencers required, got %d", len(f.Fencers))
	}
	if f.MaxRounds < 0 {
		return nil, fmt.Errorf("invalid bout file: max_rounds must not be negative")
	}
	return &f, nil
}

// BoutConfig converts the file into a validated bout.Config.
func (f *BoutFile) BoutConfig() (bout.Config, error) {
	cfg := bout.DefaultConfig(
		bout.FencerConfig{Name: NormalizeName(f.Fencers[0].Name), Skill: f.Fencers[0].Skill},
		bout.FencerConfig{Name: NormalizeName(f.Fencers[1].Name), Skill: f.Fencers[1].Skill},
	)
	if f.WinThreshold != nil {
		cfg.WinThreshold = *f.WinThreshold
	}
	if f.StartDistance != "" {
		band, err := rules.ParseDistanceBand(f.StartDistance)
		if err != nil {
			return bout.Config{}, &bout.ConfigError{
				Code:    bout.ErrCodeUnknownKind,
				Field:   "start_distance",
				Message: fmt.Sprintf("unknown distance %q", f.StartDistance),
				Err:     err,
			}
		}
		cfg.StartDistance = band
	}
	if err := cfg.Validate(); err != nil {
		return bout.Config{}, err
	}
	return cfg, nil
}

// Rounds returns max_rounds or DefaultMaxRounds when unset.
func (f *BoutFile) Rounds() int {
	if f.MaxRounds == 0 {
		return DefaultMaxRounds
	}
	return f.MaxRounds
}

// NormalizeName trims surrounding space and applies Unicode NFC so that
// visually identical names compare equal.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// ResolveSeed returns seed unchanged, or a fresh crypto-random seed when
// seed is zero.
func ResolveSeed(seed uint64) (uint64, error) {
	if seed != 0 {
		return seed, nil
	}
	return rng.NewSeed()
}
