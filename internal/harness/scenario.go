package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/touche/internal/config"
	"github.com/roach88/touche/internal/rules"
)

// Scenario defines a seeded bout and the assertions its outcome must meet.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Bout is the bout definition, in the same format as `touche run --config`.
	// The seed is required so the scenario is reproducible.
	Bout config.BoutFile `yaml:"bout"`

	// BoutID is an optional fixed bout ID. Defaults to "test-bout-default".
	BoutID string `yaml:"bout_id,omitempty"`

	// Assertions validate the outcome stream and final snapshot.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one property of a finished scenario run.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Fencer is the expected winner (winner).
	Fencer string `yaml:"fencer,omitempty"`

	// Scores is the expected final score pair (final_score).
	Scores []int `yaml:"scores,omitempty"`

	// Count is the bound or exact size (max_rounds, history_len).
	Count *int `yaml:"count,omitempty"`

	// Actions are action names or slugs (never_selects).
	Actions []string `yaml:"actions,omitempty"`
}

// Assertion type constants.
const (
	AssertFinished     = "finished"
	AssertRoundLimit   = "round_limit"
	AssertWinner       = "winner"
	AssertFinalScore   = "final_score"
	AssertMaxRounds    = "max_rounds"
	AssertNeverSelects = "never_selects"
	AssertHistoryLen   = "history_len"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
// Bout field values (skills, threshold, band) are checked when the bout is
// built, so a bad value surfaces as a *bout.ConfigError from Run.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Bout.Fencers) != 2 {
		return fmt.Errorf("bout.fencers must list exactly 2 fencers, got %d", len(s.Bout.Fencers))
	}

	if s.Bout.Seed == 0 {
		return fmt.Errorf("bout.seed is required and must be non-zero")
	}

	if s.Bout.MaxRounds < 0 {
		return fmt.Errorf("bout.max_rounds must not be negative")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertion %d (%s): %w", i, a.Type, err)
		}
	}

	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertFinished, AssertRoundLimit:
		return nil
	case AssertWinner:
		if a.Fencer == "" {
			return fmt.Errorf("fencer is required")
		}
	case AssertFinalScore:
		if len(a.Scores) != 2 {
			return fmt.Errorf("scores must have exactly 2 entries")
		}
	case AssertMaxRounds, AssertHistoryLen:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("count is required and must not be negative")
		}
	case AssertNeverSelects:
		if len(a.Actions) == 0 {
			return fmt.Errorf("actions list is required")
		}
		for _, name := range a.Actions {
			if _, err := rules.ParseActionKind(name); err != nil {
				return err
			}
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type")
	}
	return nil
}
