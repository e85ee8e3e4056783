package remote

import (
	"context"
	"fmt"
	"time"
)

// Step is one command in a sequence followed by a pause.
type Step struct {
	Fencer string
	Action string
	Delay  time.Duration
}

// SequenceError reports which step stopped a sequence.
type SequenceError struct {
	Index int
	Step  Step
	Err   error
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("step %d (%s %s): %v", e.Index, e.Step.Fencer, e.Step.Action, e.Err)
}

func (e *SequenceError) Unwrap() error { return e.Err }

// Sequence sends steps in order, waiting each step's delay after it is
// sent. It stops at the first failure and returns how many steps were
// sent. Cancelling ctx stops the sequence between steps.
func (c *Client) Sequence(ctx context.Context, steps []Step) (int, error) {
	for i, s := range steps {
		if _, err := c.Send(ctx, s.Fencer, s.Action); err != nil {
			c.logger.Error("sequence stopped", "step", i, "fencer", s.Fencer, "action", s.Action)
			return i, &SequenceError{Index: i, Step: s, Err: err}
		}
		if s.Delay <= 0 {
			continue
		}
		t := time.NewTimer(s.Delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return i + 1, ctx.Err()
		case <-t.C:
		}
	}
	return len(steps), nil
}

// AttackSequence is a sample advance-advance-lunge by the left fencer.
func AttackSequence() []Step {
	return []Step{
		{Fencer: "left", Action: "advance", Delay: time.Second},
		{Fencer: "left", Action: "advance", Delay: 800 * time.Millisecond},
		{Fencer: "left", Action: "lunge", Delay: 500 * time.Millisecond},
	}
}

// DefenseSequence is a sample retreat-parry-riposte by the right fencer.
func DefenseSequence() []Step {
	return []Step{
		{Fencer: "right", Action: "retreat", Delay: 800 * time.Millisecond},
		{Fencer: "right", Action: "parry_4", Delay: 300 * time.Millisecond},
		{Fencer: "right", Action: "lunge", Delay: 500 * time.Millisecond},
	}
}
