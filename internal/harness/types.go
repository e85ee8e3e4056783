package harness

import "github.com/roach88/touche/internal/bout"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all assertions hold.
	Pass bool `json:"pass"`

	// Seed is the seed the bout ran with.
	Seed uint64 `json:"seed"`

	// Outcomes contains every resolved round in order.
	Outcomes []bout.RoundOutcome `json:"outcomes"`

	// Final is the snapshot after the last round.
	Final bout.Snapshot `json:"final"`

	// RoundLimit is true when the round cap stopped the bout.
	RoundLimit bool `json:"round_limit"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Stats holds per-action tallies for the run.
	Stats *bout.Stats `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Outcomes: []bout.RoundOutcome{},
		Errors:   []string{},
		Stats:    &bout.Stats{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
