package server

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidCommand is returned by ParseCommand for an unknown fencer or
// action.
var ErrInvalidCommand = errors.New("invalid command")

// Sides and actions accepted by the remote-control endpoint.
var (
	Sides   = []string{"left", "right"}
	Actions = []string{"advance", "retreat", "step_left", "step_right", "lunge", "parry_4", "parry_6", "disengage"}
)

// Command is a remote-control input relayed to subscribers. Commands never
// reach the simulation.
type Command struct {
	Fencer string `json:"fencer"`
	Action string `json:"action"`
}

// ParseCommand validates a fencer side and action.
func ParseCommand(fencer, action string) (Command, error) {
	if !slices.Contains(Sides, fencer) {
		return Command{}, fmt.Errorf("%w: fencer %q must be one of %v", ErrInvalidCommand, fencer, Sides)
	}
	if !slices.Contains(Actions, action) {
		return Command{}, fmt.Errorf("%w: action %q must be one of %v", ErrInvalidCommand, action, Actions)
	}
	return Command{Fencer: fencer, Action: action}, nil
}
