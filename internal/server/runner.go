package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/touche/internal/bout"
	"github.com/roach88/touche/internal/rng"
)

// RunnerConfig controls the bout loop.
type RunnerConfig struct {
	Bout bout.Config
	// Seed of the first bout; each following bout uses the next seed.
	Seed       uint64
	RoundDelay time.Duration
	BoutPause  time.Duration
	// MaxRounds caps a single bout; zero means no cap.
	MaxRounds int
	// Bouts stops the loop after this many bouts; zero runs until the
	// context ends.
	Bouts int
}

// Runner plays bouts back to back and publishes every round to a hub.
// Step and Snapshot are serialized by the runner's mutex, so handlers may
// read the current bout while the loop is stepping it.
type Runner struct {
	cfg    RunnerConfig
	hub    *Hub
	logger *slog.Logger
	ids    bout.IDGenerator

	mu      sync.Mutex
	current *bout.Bout
	seed    uint64
}

// NewRunner validates the bout config up front so a bad config fails
// before the server starts listening.
func NewRunner(cfg RunnerConfig, hub *Hub, logger *slog.Logger) (*Runner, error) {
	if err := cfg.Bout.Validate(); err != nil {
		return nil, err
	}
	if cfg.Seed == 0 {
		return nil, fmt.Errorf("runner: seed must be non-zero")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{
		cfg:    cfg,
		hub:    hub,
		logger: logger,
		ids:    bout.UUIDv7Generator{},
		seed:   cfg.Seed,
	}, nil
}

// Run loops bouts until ctx ends or cfg.Bouts bouts have been played.
// It returns nil on cancellation.
func (r *Runner) Run(ctx context.Context) error {
	for played := 0; r.cfg.Bouts == 0 || played < r.cfg.Bouts; played++ {
		if played > 0 {
			if err := sleep(ctx, r.cfg.BoutPause); err != nil {
				return nil
			}
		}
		if err := r.playOne(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
	return nil
}

func (r *Runner) playOne(ctx context.Context) error {
	r.mu.Lock()
	seed := r.seed
	r.seed++
	b, err := bout.New(r.cfg.Bout, rng.New(seed),
		bout.WithIDGenerator(r.ids),
		bout.WithLogger(r.logger),
		bout.WithObserver(r.hub),
	)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	r.current = b
	r.mu.Unlock()

	r.logger.Info("bout started", "bout", b.ID(), "seed", seed)
	r.hub.Broadcast(Frame{Type: FrameBoutStarted, Payload: BoutStartedPayload{BoutID: b.ID(), Seed: seed}})

	for {
		if err := sleep(ctx, r.cfg.RoundDelay); err != nil {
			return err
		}

		r.mu.Lock()
		if r.cfg.MaxRounds > 0 && b.Round() >= r.cfg.MaxRounds {
			r.mu.Unlock()
			r.logger.Info("bout abandoned", "bout", b.ID(), "error", bout.ErrRoundLimit)
			return nil
		}
		out, err := b.Step()
		r.mu.Unlock()

		if errors.Is(err, bout.ErrBoutFinished) || (err == nil && out.Finished) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Snapshot returns the current bout's snapshot. It reports false until the
// current bout has resolved its first round.
func (r *Runner) Snapshot() (bout.Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil || r.current.Round() == 0 {
		return bout.Snapshot{}, false
	}
	return r.current.Snapshot(), true
}

// sleep waits for d or until ctx ends. A zero d still checks ctx.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
