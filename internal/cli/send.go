package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/touche/internal/remote"
	"github.com/roach88/touche/internal/server"
)

// SendOptions holds flags for the send command.
type SendOptions struct {
	*RootOptions
	URL      string
	Delay    time.Duration
	Throttle time.Duration
	Sample   string // "attack" | "defense"
}

// SendResult is the JSON output of the send command.
type SendResult struct {
	Sent  int `json:"sent"`
	Total int `json:"total"`
}

// NewSendCommand creates the send command.
func NewSendCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SendOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "send [<fencer> <action>...]",
		Short: "Send remote-control commands to a running server",
		Long: `Post one or more actions for a fencer to a running serve instance.

Fencer is left or right. Actions are advance, retreat, step_left,
step_right, lunge, parry_4, parry_6 and disengage. Commands are relayed
to viewers and never change the simulation.

Exit codes:
  0 - Every command was accepted
  1 - A command was rejected or throttled
  2 - Command error (bad arguments, server unreachable, etc.)

Examples:
  touche send left lunge
  touche send right retreat parry_4 lunge --delay 300ms
  touche send --sample attack --url http://127.0.0.1:9000`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.URL, "url", "http://127.0.0.1:8000", "server base URL")
	cmd.Flags().DurationVar(&opts.Delay, "delay", 500*time.Millisecond, "pause after each action")
	cmd.Flags().DurationVar(&opts.Throttle, "throttle", remote.DefaultThrottle, "minimum gap between identical commands")
	cmd.Flags().StringVar(&opts.Sample, "sample", "", "send a sample sequence (attack|defense)")

	return cmd
}

func runSend(opts *SendOptions, args []string, cmd *cobra.Command) error {
	steps, err := sendSteps(opts, args)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid arguments", err)
	}

	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	client, err := remote.NewClient(opts.URL, remote.WithThrottle(opts.Throttle), remote.WithLogger(logger))
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid url", err)
	}

	ctx, stop := commandContext(cmd)
	defer stop()

	sent, err := client.Sequence(ctx, steps)
	res := SendResult{Sent: sent, Total: len(steps)}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if out.IsJSON() {
		msg := ""
		if err != nil {
			msg = err.Error()
		}
		if encErr := out.Result(res, err != nil, "E_SEND_FAILED", msg); encErr != nil {
			return encErr
		}
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Sent %d/%d commands\n", res.Sent, res.Total)
	}

	if err == nil {
		return nil
	}
	var statusErr *remote.StatusError
	if errors.As(err, &statusErr) || errors.Is(err, remote.ErrThrottled) {
		return WrapExitError(ExitFailure, "command rejected", err)
	}
	return WrapExitError(ExitCommandError, "send failed", err)
}

// sendSteps builds the step list from a sample name or from
// <fencer> <action>... arguments.
func sendSteps(opts *SendOptions, args []string) ([]remote.Step, error) {
	if opts.Delay < 0 {
		return nil, errors.New("delay must not be negative")
	}
	if opts.Sample != "" {
		if len(args) > 0 {
			return nil, errors.New("--sample takes no arguments")
		}
		switch opts.Sample {
		case "attack":
			return remote.AttackSequence(), nil
		case "defense":
			return remote.DefenseSequence(), nil
		}
		return nil, fmt.Errorf("unknown sample %q: must be attack or defense", opts.Sample)
	}
	if len(args) < 2 {
		return nil, errors.New("need a fencer and at least one action")
	}

	fencer := args[0]
	steps := make([]remote.Step, 0, len(args)-1)
	for _, action := range args[1:] {
		if _, err := server.ParseCommand(fencer, action); err != nil {
			return nil, err
		}
		steps = append(steps, remote.Step{Fencer: fencer, Action: action, Delay: opts.Delay})
	}
	// No pause after the last command.
	steps[len(steps)-1].Delay = 0
	return steps, nil
}
