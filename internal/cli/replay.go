package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/touche/internal/bout"
	"github.com/roach88/touche/internal/rng"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Bout BoutFlags
}

// ReplayResult holds the result of replaying one seed.
type ReplayResult struct {
	Seed          uint64 `json:"seed"`
	Rounds        int    `json:"rounds"`
	Winner        string `json:"winner,omitempty"`
	Deterministic bool   `json:"deterministic"`
	// DivergedAt is the first round whose outcome differed, 0 if none.
	DivergedAt int `json:"diverged_at,omitempty"`
}

// replayID keeps the bout ID out of the comparison.
type replayID string

func (id replayID) Generate() string { return string(id) }

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a seeded bout and verify determinism",
		Long: `Run the same seeded bout twice and verify that both runs produce
byte-identical outcome streams and final snapshots.

Exit codes:
  0 - Both runs are identical
  1 - Determinism verification failed (differences detected)
  2 - Command error (missing seed, invalid config, etc.)

Examples:
  touche replay --seed 42
  touche replay --seed 42 --config bout.yaml --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	addBoutFlags(cmd, &opts.Bout)
	_ = cmd.MarkFlagRequired("seed")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	if opts.Bout.Seed == 0 {
		return NewExitError(ExitCommandError, "seed must be non-zero")
	}
	setup, err := opts.Bout.resolve(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	first, err := recordRun(setup)
	if err != nil {
		return WrapExitError(ExitCommandError, "first run failed", err)
	}
	second, err := recordRun(setup)
	if err != nil {
		return WrapExitError(ExitCommandError, "second run failed", err)
	}

	result := compareRuns(setup.Seed, first, second)
	logger.Debug("replay compared", "seed", result.Seed, "rounds", result.Rounds, "deterministic", result.Deterministic)

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	failMsg := fmt.Sprintf("seed %d diverged at round %d", result.Seed, result.DivergedAt)
	if out.IsJSON() {
		if err := out.Result(result, !result.Deterministic, "E_NONDETERMINISTIC", failMsg); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Seed %d: %d rounds", result.Seed, result.Rounds)
		if result.Winner != "" {
			fmt.Fprintf(w, ", winner %s", result.Winner)
		}
		fmt.Fprintln(w)
		if result.Deterministic {
			fmt.Fprintln(w, "✓ Replay is deterministic")
		} else {
			fmt.Fprintf(w, "✗ %s\n", failMsg)
		}
	}

	if !result.Deterministic {
		return NewExitError(ExitFailure, failMsg)
	}
	return nil
}

// recording is one run encoded for comparison.
type recording struct {
	rounds [][]byte
	final  []byte
	winner string
}

func recordRun(setup boutSetup) (recording, error) {
	b, err := bout.New(setup.Config, rng.New(setup.Seed), bout.WithIDGenerator(replayID("replay")))
	if err != nil {
		return recording{}, err
	}
	outcomes, err := b.Run(setup.MaxRounds)
	if err != nil && !errors.Is(err, bout.ErrRoundLimit) {
		return recording{}, err
	}

	rec := recording{rounds: make([][]byte, len(outcomes))}
	for i, o := range outcomes {
		if rec.rounds[i], err = json.Marshal(o); err != nil {
			return recording{}, fmt.Errorf("marshal round %d: %w", o.Round, err)
		}
	}
	if rec.final, err = json.Marshal(b.Snapshot()); err != nil {
		return recording{}, fmt.Errorf("marshal snapshot: %w", err)
	}
	rec.winner, _ = b.Winner()
	return rec, nil
}

func compareRuns(seed uint64, a, b recording) ReplayResult {
	res := ReplayResult{Seed: seed, Rounds: len(a.rounds), Winner: a.winner, Deterministic: true}
	for i := range max(len(a.rounds), len(b.rounds)) {
		if i >= len(a.rounds) || i >= len(b.rounds) || !bytes.Equal(a.rounds[i], b.rounds[i]) {
			res.Deterministic = false
			res.DivergedAt = i + 1
			return res
		}
	}
	if !bytes.Equal(a.final, b.final) {
		res.Deterministic = false
		res.DivergedAt = res.Rounds
	}
	return res
}
