package agent

import (
	"github.com/roach88/touche/internal/distance"
	"github.com/roach88/touche/internal/rules"
)

// Tactical multipliers applied on top of the success probability.
const (
	PriorityBonus     = 1.2
	PreparedBonus     = 1.1
	PrepDistanceBonus = 1.1
	OpenLineBonus     = 1.2

	JitterMin = 0.95
	JitterMax = 1.05
)

// Candidate pairs a feasible action with its selection weight.
type Candidate struct {
	Action *ActionInstance
	Weight float64
}

// Weigh computes the selection weight of a. jitter is the tie-break factor
// drawn from [JitterMin, JitterMax); passing 1 gives the bare tactical weight.
func Weigh(a *ActionInstance, opponentBlade rules.BladePosition, jitter float64) float64 {
	w := a.SuccessProbability(opponentBlade)
	if !a.Agent.HasPriority && a.Rule.Priority {
		w *= PriorityBonus
	}
	if a.Agent.HasPreparation && a.Rule.PreparationRequired {
		w *= PreparedBonus
	}
	if distance.PreparationAllowed(a.Band) {
		w *= PrepDistanceBonus
	}
	if opensLine(a.Kind) && (a.Agent.Blade == rules.BladeQuarte || a.Agent.Blade == rules.BladeSixte) {
		w *= OpenLineBonus
	}
	return w * jitter
}

func opensLine(k rules.ActionKind) bool {
	return k == rules.Disengage || k == rules.CutOver
}
