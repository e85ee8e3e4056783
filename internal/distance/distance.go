// Package distance implements the six-band distance state machine.
//
// The bands, their legal actions and their adjacency come from the rule
// catalogue. This package adds the per-band success multipliers and the
// drift policy the bout applies at the start of every round.
package distance

import (
	"fmt"

	"github.com/roach88/touche/internal/rng"
	"github.com/roach88/touche/internal/rules"
)

// DriftChance is the per-round probability that the band changes.
const DriftChance = 0.30

var multipliers = [...]float64{
	rules.OutOfDistance: 0.1,
	rules.Long:          0.5,
	rules.Medium:        1.0,
	rules.Lunge:         0.9,
	rules.Short:         0.8,
	rules.Infighting:    0.7,
}

// Multiplier returns the success multiplier applied at band b. Every value
// is at most 1.0.
func Multiplier(b rules.DistanceBand) float64 {
	if !b.Valid() {
		panic(fmt.Sprintf("distance: no multiplier for %v", b))
	}
	return multipliers[b]
}

// Legal returns the actions the band permits, in declaration order.
func Legal(b rules.DistanceBand) []rules.ActionKind {
	return rules.Distance(b).ValidActions.Slice()
}

// Neighbors returns the bands reachable from b in one transition.
func Neighbors(b rules.DistanceBand) []rules.DistanceBand {
	return rules.Distance(b).Neighbors.Slice()
}

// IsNeighbor reports whether to is reachable from from in one transition.
func IsNeighbor(from, to rules.DistanceBand) bool {
	return rules.Distance(from).Neighbors.Has(to)
}

// PreparationAllowed reports whether preparation may be acquired at b.
func PreparationAllowed(b rules.DistanceBand) bool {
	return rules.Distance(b).PreparationAllowed
}

// Drift applies the transition policy: with probability DriftChance the
// band moves to a uniformly chosen neighbor, otherwise it stays. It draws
// one Float64 and, when the band moves, one IntN.
func Drift(b rules.DistanceBand, src rng.Source) rules.DistanceBand {
	if src.Float64() >= DriftChance {
		return b
	}
	next := Neighbors(b)
	return next[src.IntN(len(next))]
}

// Apply scales p by the band multiplier and clamps the result to 1.
func Apply(b rules.DistanceBand, p float64) float64 {
	return min(p*Multiplier(b), 1.0)
}
