package bout

import (
	"fmt"

	"github.com/roach88/touche/internal/rules"
)

// Resolution details the roll for an attempted action.
type Resolution struct {
	Action             rules.ActionKind `json:"action"`
	ExecutionTime      float64          `json:"execution_time"`
	BaseSuccessRate    float64          `json:"base_success_rate"`
	ActionProbability  float64          `json:"action_probability"`
	DistanceMultiplier float64          `json:"distance_multiplier"`
	Probability        float64          `json:"probability"`
	Roll               float64          `json:"roll"`
	Success            bool             `json:"success"`
}

// RoundOutcome is the result of one Step.
type RoundOutcome struct {
	Round            int                `json:"round"`
	Actor            string             `json:"actor"`
	ActorIndex       int                `json:"actor_index"`
	PreviousDistance rules.DistanceBand `json:"previous_distance"`
	Distance         rules.DistanceBand `json:"distance"`
	// Resolution is nil when the actor repositioned.
	Resolution *Resolution `json:"resolution,omitempty"`
	Scores     [2]int      `json:"scores"`
	Finished   bool        `json:"finished"`
	Winner     string      `json:"winner,omitempty"`
}

// Repositioned reports whether the actor had no feasible action.
func (o RoundOutcome) Repositioned() bool { return o.Resolution == nil }

// Success reports whether the actor scored this round.
func (o RoundOutcome) Success() bool { return o.Resolution != nil && o.Resolution.Success }

// DistanceChanged reports whether drift moved the band this round.
func (o RoundOutcome) DistanceChanged() bool { return o.PreviousDistance != o.Distance }

// Describe renders the outcome as a single history line.
func (o RoundOutcome) Describe() string {
	prefix := fmt.Sprintf("R%d", o.Round)
	if o.DistanceChanged() {
		prefix += fmt.Sprintf(" [%v -> %v]", o.PreviousDistance, o.Distance)
	}
	if o.Repositioned() {
		return fmt.Sprintf("%s %s repositions at %v (%d-%d)",
			prefix, o.Actor, o.Distance, o.Scores[0], o.Scores[1])
	}
	r := o.Resolution
	verdict := "misses"
	if r.Success {
		verdict = "scores"
	}
	return fmt.Sprintf("%s %s %s with %v (p=%.2f roll=%.2f) (%d-%d)",
		prefix, o.Actor, verdict, r.Action, r.Probability, r.Roll, o.Scores[0], o.Scores[1])
}
