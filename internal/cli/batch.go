package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/roach88/touche/internal/bout"
	"github.com/roach88/touche/internal/render"
	"github.com/roach88/touche/internal/rng"
)

// BatchOptions holds flags for the batch command.
type BatchOptions struct {
	*RootOptions
	Bout    BoutFlags
	Count   int
	Workers int
}

// FencerRecord is one fencer's results across a batch.
type FencerRecord struct {
	Name    string  `json:"name"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"win_rate"`
}

// BatchSummary aggregates a batch of bouts. Bout i uses seed FirstSeed+i,
// so the summary does not depend on worker scheduling.
type BatchSummary struct {
	Bouts       int                `json:"bouts"`
	FirstSeed   uint64             `json:"first_seed"`
	Fencers     [2]FencerRecord    `json:"fencers"`
	RoundLimits int                `json:"round_limits"`
	MeanRounds  float64            `json:"mean_rounds"`
	Repositions int                `json:"repositions"`
	Tallies     []bout.ActionTally `json:"tallies"`
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Simulate many seeded bouts and report statistics",
		Long: `Run N bouts on a worker pool and report win rates, mean bout length
and per-action success rates.

Bout i is seeded with seed+i, so a batch is reproducible from its first
seed regardless of the number of workers.

Examples:
  touche batch -n 1000
  touche batch -n 500 --workers 4 --seed 7 --a-skill 0.9
  touche batch -n 100 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(opts, cmd)
		},
	}

	addBoutFlags(cmd, &opts.Bout)
	cmd.Flags().IntVarP(&opts.Count, "count", "n", 100, "number of bouts")
	cmd.Flags().IntVar(&opts.Workers, "workers", runtime.NumCPU(), "concurrent workers")

	return cmd
}

func runBatch(opts *BatchOptions, cmd *cobra.Command) error {
	if opts.Count <= 0 {
		return NewExitError(ExitCommandError, "count must be positive")
	}
	if opts.Workers <= 0 {
		return NewExitError(ExitCommandError, "workers must be positive")
	}
	setup, err := opts.Bout.resolve(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	logger.Info("batch starting", "bouts", opts.Count, "workers", opts.Workers, "first_seed", setup.Seed)

	bar := progressbar.NewOptions(opts.Count,
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("bouts"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	ctx, stop := commandContext(cmd)
	defer stop()

	summary, err := simulateBatch(ctx, setup, opts.Count, opts.Workers, func() { _ = bar.Add(1) })
	_ = bar.Finish()
	if err != nil {
		return WrapExitError(ExitFailure, "batch interrupted", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if out.IsJSON() {
		return out.Success(summary)
	}
	writeBatchText(cmd.OutOrStdout(), summary)
	return nil
}

type boutRecord struct {
	winner int // -1 when the round cap was hit
	rounds int
	stats  bout.Stats
}

// simulateBatch runs n bouts of setup on a pool of workers. done is called
// once per finished bout and must be safe for concurrent use.
func simulateBatch(ctx context.Context, setup boutSetup, n, workers int, done func()) (BatchSummary, error) {
	records := make([]boutRecord, n)
	jobs := make(chan int)
	errs := make(chan error, workers)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rec, err := simulateOne(setup, setup.Seed+uint64(i))
				if err != nil {
					errs <- err
					return
				}
				records[i] = rec
				if done != nil {
					done()
				}
			}
		}()
	}

	var sendErr error
feed:
	for i := range n {
		select {
		case <-ctx.Done():
			sendErr = ctx.Err()
			break feed
		case err := <-errs:
			sendErr = err
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	close(errs)

	if sendErr != nil {
		return BatchSummary{}, sendErr
	}
	if err := <-errs; err != nil {
		return BatchSummary{}, err
	}
	return summarize(setup, records), nil
}

func simulateOne(setup boutSetup, seed uint64) (boutRecord, error) {
	rec := boutRecord{winner: -1}
	b, err := bout.New(setup.Config, rng.New(seed), bout.WithObserver(&rec.stats))
	if err != nil {
		return boutRecord{}, err
	}
	if _, err := b.Run(setup.MaxRounds); err != nil && !errors.Is(err, bout.ErrRoundLimit) {
		return boutRecord{}, fmt.Errorf("seed %d: %w", seed, err)
	}
	rec.rounds = b.Round()
	if b.Finished() {
		s := b.Scores()
		rec.winner = 0
		if s[1] > s[0] {
			rec.winner = 1
		}
	}
	return rec, nil
}

func summarize(setup boutSetup, records []boutRecord) BatchSummary {
	sum := BatchSummary{Bouts: len(records), FirstSeed: setup.Seed}
	for i, f := range setup.Config.Fencers {
		sum.Fencers[i].Name = f.Name
	}

	var stats bout.Stats
	rounds := 0
	for i := range records {
		r := &records[i]
		if r.winner < 0 {
			sum.RoundLimits++
		} else {
			sum.Fencers[r.winner].Wins++
		}
		rounds += r.rounds
		stats.Merge(&r.stats)
	}

	n := float64(len(records))
	for i := range sum.Fencers {
		sum.Fencers[i].WinRate = float64(sum.Fencers[i].Wins) / n
	}
	sum.MeanRounds = float64(rounds) / n
	sum.Repositions = stats.Repositions
	sum.Tallies = stats.Tallies()
	return sum
}

func writeBatchText(w io.Writer, s BatchSummary) {
	fmt.Fprintf(w, "Bouts: %d (seeds %d-%d)\n", s.Bouts, s.FirstSeed, s.FirstSeed+uint64(s.Bouts)-1)
	for _, f := range s.Fencers {
		fmt.Fprintf(w, "%-20s: %d wins (%.1f%%)\n", f.Name, f.Wins, f.WinRate*100)
	}
	if s.RoundLimits > 0 {
		fmt.Fprintf(w, "%-20s: %d\n", "Round cap reached", s.RoundLimits)
	}
	fmt.Fprintf(w, "Mean rounds: %.1f\n", s.MeanRounds)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Action Statistics:")
	render.WriteTallies(w, s.Tallies)
	if s.Repositions > 0 {
		fmt.Fprintf(w, "%-20s: %d\n", "Repositioning", s.Repositions)
	}
}
