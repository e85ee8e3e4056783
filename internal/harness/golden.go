package harness

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/touche/internal/bout"
)

// GoldenSuffix is the extension of transcript golden files.
const GoldenSuffix = ".golden"

// ErrGoldenMismatch is returned by CompareGolden when a transcript differs
// from its golden file.
var ErrGoldenMismatch = errors.New("transcript differs from golden file")

// TranscriptSnapshot captures everything a scenario run produced.
// Field order is fixed, so equal runs marshal to equal bytes.
type TranscriptSnapshot struct {
	ScenarioName string              `json:"scenario_name"`
	Seed         uint64              `json:"seed"`
	Outcomes     []bout.RoundOutcome `json:"outcomes"`
	Final        bout.Snapshot       `json:"final"`
	RoundLimit   bool                `json:"round_limit"`
}

// Transcript renders a result as indented JSON for golden comparison.
func Transcript(scenarioName string, result *Result) ([]byte, error) {
	snap := TranscriptSnapshot{
		ScenarioName: scenarioName,
		Seed:         result.Seed,
		Outcomes:     result.Outcomes,
		Final:        result.Final,
		RoundLimit:   result.RoundLimit,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transcript: %w", err)
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares its transcript against a
// golden file in dir. The golden file is {dir}/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./... -update
func RunWithGolden(t *testing.T, scenario *Scenario, dir string) *Result {
	t.Helper()

	result, data := runTranscript(t, scenario)

	g := goldie.New(t,
		goldie.WithFixtureDir(dir),
		goldie.WithNameSuffix(GoldenSuffix),
	)
	g.Assert(t, scenario.Name, data)

	return result
}

// AssertReproducible runs a scenario twice and requires byte-identical
// transcripts. The first run is written as a golden file in a temporary
// directory and the second is asserted against it, so no checked-in
// fixture is needed.
func AssertReproducible(t *testing.T, scenario *Scenario) {
	t.Helper()

	_, first := runTranscript(t, scenario)

	g := goldie.New(t,
		goldie.WithFixtureDir(t.TempDir()),
		goldie.WithNameSuffix(GoldenSuffix),
	)
	if err := g.Update(t, scenario.Name, first); err != nil {
		t.Fatalf("failed to write golden file: %v", err)
	}

	_, second := runTranscript(t, scenario)
	g.Assert(t, scenario.Name, second)
}

func runTranscript(t *testing.T, scenario *Scenario) (*Result, []byte) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		t.Fatalf("scenario %s: %v", scenario.Name, err)
	}
	data, err := Transcript(scenario.Name, result)
	if err != nil {
		t.Fatalf("scenario %s: %v", scenario.Name, err)
	}
	return result, data
}

// CompareGolden checks data against {dir}/{name}.golden outside of a test.
// With update set it writes the file instead. A missing golden file is an
// error unless update is set.
func CompareGolden(dir, name string, data []byte, update bool) error {
	path := filepath.Join(dir, name+GoldenSuffix)

	if update {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create golden dir: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write golden file: %w", err)
		}
		return nil
	}

	want, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read golden file: %w", err)
	}
	if !bytes.Equal(want, data) {
		return fmt.Errorf("%w: %s", ErrGoldenMismatch, path)
	}
	return nil
}
