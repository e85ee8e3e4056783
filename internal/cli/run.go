package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/touche/internal/bout"
	"github.com/roach88/touche/internal/render"
	"github.com/roach88/touche/internal/rng"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Bout  BoutFlags
	Delay time.Duration
}

// RunResult is the JSON output of the run command.
type RunResult struct {
	BoutID     string              `json:"bout_id"`
	Seed       uint64              `json:"seed"`
	Outcomes   []bout.RoundOutcome `json:"outcomes"`
	Final      bout.Snapshot       `json:"final"`
	RoundLimit bool                `json:"round_limit"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate one bout",
		Long: `Simulate a single bout and print it round by round.

The bout comes from --config or from the fencer flags. Flags given on the
command line override the file. The seed is always reported so the bout
can be replayed.

Exit codes:
  0 - Bout finished with a winner
  1 - Round cap reached without a winner
  2 - Command error (invalid config, bad flags, etc.)

Examples:
  touche run
  touche run --seed 42 --a-name Alice --a-skill 0.8 --to 15
  touche run --config bout.yaml --delay 500ms
  touche run --seed 42 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBout(opts, cmd)
		},
	}

	addBoutFlags(cmd, &opts.Bout)
	cmd.Flags().DurationVar(&opts.Delay, "delay", 0, "pause between rounds")

	return cmd
}

func runBout(opts *RunOptions, cmd *cobra.Command) error {
	if opts.Delay < 0 {
		return NewExitError(ExitCommandError, "delay must not be negative")
	}
	setup, err := opts.Bout.resolve(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	boutOpts := []bout.Option{bout.WithLogger(logger)}
	var console *render.Console
	if !out.IsJSON() {
		console = render.NewConsole(cmd.OutOrStdout())
		boutOpts = append(boutOpts, bout.WithObserver(console))
	}

	b, err := bout.New(setup.Config, rng.New(setup.Seed), boutOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid bout", err)
	}
	logger.Info("bout starting", "bout", b.ID(), "seed", setup.Seed, "max_rounds", setup.MaxRounds)

	ctx, stop := commandContext(cmd)
	defer stop()

	if console != nil {
		console.Header(b.Snapshot())
	}

	var outcomes []bout.RoundOutcome
	for !b.Finished() && b.Round() < setup.MaxRounds {
		if b.Round() > 0 && opts.Delay > 0 {
			if err := pause(ctx, opts.Delay); err != nil {
				logger.Info("bout interrupted", "bout", b.ID(), "round", b.Round())
				return WrapExitError(ExitFailure, "bout interrupted", err)
			}
		}
		o, err := b.Step()
		if err != nil {
			return WrapExitError(ExitFailure, "step failed", err)
		}
		outcomes = append(outcomes, o)
	}

	final := b.Snapshot()
	roundLimit := !b.Finished()
	limitMsg := fmt.Sprintf("no winner after %d rounds", final.Round)

	if out.IsJSON() {
		res := RunResult{
			BoutID:     final.BoutID,
			Seed:       setup.Seed,
			Outcomes:   outcomes,
			Final:      final,
			RoundLimit: roundLimit,
		}
		if err := out.Result(res, roundLimit, "E_ROUND_LIMIT", limitMsg); err != nil {
			return err
		}
	} else {
		console.Summary(final)
		fmt.Fprintf(cmd.OutOrStdout(), "Seed: %d\n", setup.Seed)
	}

	if roundLimit {
		return NewExitError(ExitFailure, limitMsg)
	}
	return nil
}

// commandContext derives a context from the command's that is cancelled
// on SIGINT or SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// pause waits for d or until ctx is done.
func pause(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
