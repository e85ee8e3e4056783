// Package bout runs a match between two agents.
//
// A Bout owns both agents, the current distance band, the round counter
// and a rolling event history. Each call to Step resolves exactly one
// round in a fixed order:
//
//  1. distance drift
//  2. the current agent picks an action, or repositions if none is feasible
//  3. the success roll against the band-adjusted probability
//  4. scoring, role swap and the terminal check
//
// Every random draw comes from the single rng.Source passed to New, so a
// seeded source reproduces a bout exactly. Observers registered with
// WithObserver receive a Snapshot after each round; snapshots are plain
// values that share no memory with the bout.
//
// Lifecycle is a two-state machine (in_progress, finished) backed by
// looplab/fsm. Step on a finished bout returns ErrBoutFinished.
package bout
