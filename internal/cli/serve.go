package cli

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/touche/internal/config"
	"github.com/roach88/touche/internal/server"
)

// ServeOptions holds flags for the serve command. Flags left unset fall
// back to the TOUCHE_* environment.
type ServeOptions struct {
	*RootOptions
	Bout       BoutFlags
	Addr       string
	RoundDelay time.Duration
	BoutPause  time.Duration
	Bouts      int
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Broadcast bouts to websocket viewers",
		Long: `Play bouts back to back and broadcast every round.

Viewers subscribe on GET /ws and receive JSON frames. GET /snapshot
returns the latest bout state, and POST /action/{fencer}/{action} relays
a remote-control command to every viewer.

Environment:
  TOUCHE_ADDR         listen address (default 127.0.0.1:8000)
  TOUCHE_ROUND_DELAY  pause between rounds (default 1s)
  TOUCHE_BOUT_PAUSE   pause between bouts (default 3s)
  TOUCHE_SEED         seed of the first bout (default random)

Examples:
  touche serve
  touche serve --addr :9000 --round-delay 250ms --seed 42`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	addBoutFlags(cmd, &opts.Bout)
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides TOUCHE_ADDR)")
	cmd.Flags().DurationVar(&opts.RoundDelay, "round-delay", 0, "pause between rounds (overrides TOUCHE_ROUND_DELAY)")
	cmd.Flags().DurationVar(&opts.BoutPause, "bout-pause", 0, "pause between bouts (overrides TOUCHE_BOUT_PAUSE)")
	cmd.Flags().IntVar(&opts.Bouts, "bouts", 0, "stop after this many bouts (0 = forever)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	env, err := config.LoadServerConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid environment", err)
	}
	if cmd.Flags().Changed("addr") {
		env.Addr = opts.Addr
	}
	if cmd.Flags().Changed("round-delay") {
		env.RoundDelay = opts.RoundDelay
	}
	if cmd.Flags().Changed("bout-pause") {
		env.BoutPause = opts.BoutPause
	}
	if env.RoundDelay < 0 || env.BoutPause < 0 {
		return NewExitError(ExitCommandError, "delays must not be negative")
	}
	if opts.Bouts < 0 {
		return NewExitError(ExitCommandError, "bouts must not be negative")
	}
	if !cmd.Flags().Changed("seed") && env.Seed != 0 {
		if err := cmd.Flags().Set("seed", strconv.FormatUint(env.Seed, 10)); err != nil {
			return WrapExitError(ExitCommandError, "invalid seed", err)
		}
	}

	setup, err := opts.Bout.resolve(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	hub := server.NewHub(logger)
	runner, err := server.NewRunner(server.RunnerConfig{
		Bout:       setup.Config,
		Seed:       setup.Seed,
		RoundDelay: env.RoundDelay,
		BoutPause:  env.BoutPause,
		MaxRounds:  setup.MaxRounds,
		Bouts:      opts.Bouts,
	}, hub, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid bout", err)
	}

	ctx, stop := commandContext(cmd)
	defer stop()

	logger.Info("server starting", "addr", env.Addr, "seed", setup.Seed,
		"round_delay", env.RoundDelay, "bout_pause", env.BoutPause)
	if err := server.New(env.Addr, runner, hub, logger).ListenAndServe(ctx); err != nil {
		return WrapExitError(ExitCommandError, "server error", err)
	}
	logger.Info("server stopped gracefully")
	return nil
}
