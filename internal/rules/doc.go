// Package rules holds the static fencing rule catalogue.
//
// Every ActionKind, DefenseKind and DistanceBand has exactly one rule entry,
// built into package-level tables before main runs and never mutated. Rules
// are returned by value and their set fields are bitsets, so callers cannot
// alter the catalogue and any number of bouts may read it concurrently
// without locking.
//
// Looking up a kind outside the enumerated range panics. Input that crosses
// a process boundary (config files, HTTP, flags) must go through the Parse
// functions, which return ErrUnknownKind instead.
package rules
