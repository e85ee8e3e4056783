package harness

import (
	"errors"
	"fmt"

	"github.com/roach88/touche/internal/bout"
	"github.com/roach88/touche/internal/rng"
	"github.com/roach88/touche/internal/testutil"
)

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Build the bout config from the scenario
//  2. Seed the source and fix the bout ID
//  3. Run until a winner or the round cap
//  4. Evaluate assertions against the outcomes and final snapshot
//
// Hitting the round cap is not an error; it is recorded in the result so
// a round_limit assertion can check for it. A returned error means the
// scenario could not run at all.
func Run(scenario *Scenario) (*Result, error) {
	cfg, err := scenario.Bout.BoutConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to build bout: %w", err)
	}

	result := NewResult()
	result.Seed = scenario.Bout.Seed

	b, err := bout.New(cfg, rng.New(scenario.Bout.Seed),
		bout.WithIDGenerator(testutil.NewFixedIDGenerator(scenario.BoutID)),
		bout.WithObserver(result.Stats),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build bout: %w", err)
	}

	outs, err := b.Run(scenario.Bout.Rounds())
	switch {
	case errors.Is(err, bout.ErrRoundLimit):
		result.RoundLimit = true
	case err != nil:
		return nil, fmt.Errorf("failed to run bout: %w", err)
	}
	if outs != nil {
		result.Outcomes = outs
	}
	result.Final = b.Snapshot()

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}
