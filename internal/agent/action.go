package agent

import "github.com/roach88/touche/internal/rules"

const (
	lungeRisk        = 0.9
	disengageOpening = 1.2
)

// ActionInstance is one action bound to one agent at one band. It lives
// for a single round.
type ActionInstance struct {
	Kind  rules.ActionKind
	Agent *Agent
	Rule  rules.ActionRule
	Band  rules.DistanceBand
}

// NewActionInstance binds kind to agent at band. It panics if kind is not
// in the catalogue.
func NewActionInstance(kind rules.ActionKind, agent *Agent, band rules.DistanceBand) *ActionInstance {
	return &ActionInstance{
		Kind:  kind,
		Agent: agent,
		Rule:  rules.Action(kind),
		Band:  band,
	}
}

// CanExecute reports whether the action is legal at the band and the agent
// holds preparation if the action needs it.
func (a *ActionInstance) CanExecute() bool {
	if !a.Rule.ValidDistances.Has(a.Band) {
		return false
	}
	return !a.Rule.PreparationRequired || a.Agent.HasPreparation
}

// SuccessProbability is the chance of landing before the distance
// multiplier is applied, clamped to [0,1].
func (a *ActionInstance) SuccessProbability(opponentBlade rules.BladePosition) float64 {
	p := a.Rule.BaseSuccessRate * a.Agent.Skill
	if a.Band == rules.Lunge {
		p *= lungeRisk
	}
	if a.Kind == rules.Disengage && opponentBlade == rules.BladeSixte {
		p *= disengageOpening
	}
	return clamp01(p)
}

func clamp01(p float64) float64 {
	return max(0, min(p, 1))
}
