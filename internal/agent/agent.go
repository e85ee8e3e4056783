// Package agent models a fencer and the policy it uses to pick an action.
//
// Selection is split in two: Weigh is a pure function of the candidate,
// the opponent's blade and a jitter factor, and Sample draws from the top
// weighted candidates using whatever rng.Source it is handed. Neither
// mutates the Agent; score and flags belong to the bout.
package agent

import (
	"github.com/roach88/touche/internal/distance"
	"github.com/roach88/touche/internal/rng"
	"github.com/roach88/touche/internal/rules"
)

// Agent is one combatant.
type Agent struct {
	Name           string
	Skill          float64 // multiplies every success probability
	Score          int
	Blade          rules.BladePosition
	HasPreparation bool
	HasPriority    bool
}

// New creates an agent on guard in sixte with no score or flags.
func New(name string, skill float64) *Agent {
	return &Agent{
		Name:  name,
		Skill: skill,
		Blade: rules.BladeSixte,
	}
}

// Feasible returns an instance for every action legal at band that the
// agent can currently execute, in declaration order.
func (a *Agent) Feasible(band rules.DistanceBand) []*ActionInstance {
	var out []*ActionInstance
	for _, k := range distance.Legal(band) {
		inst := NewActionInstance(k, a, band)
		if inst.CanExecute() {
			out = append(out, inst)
		}
	}
	return out
}

// Candidates weighs every feasible action. It draws one jitter value per
// candidate from src, in declaration order.
func (a *Agent) Candidates(band rules.DistanceBand, opponentBlade rules.BladePosition, src rng.Source) []Candidate {
	feasible := a.Feasible(band)
	out := make([]Candidate, 0, len(feasible))
	for _, inst := range feasible {
		jitter := rng.Uniform(src, JitterMin, JitterMax)
		out = append(out, Candidate{
			Action: inst,
			Weight: Weigh(inst, opponentBlade, jitter),
		})
	}
	return out
}

// ChooseAction picks the action to attempt this round. It returns false
// when nothing is feasible, meaning the agent repositions and no roll
// occurs.
func (a *Agent) ChooseAction(band rules.DistanceBand, opponentBlade rules.BladePosition, src rng.Source) (*ActionInstance, bool) {
	cands := a.Candidates(band, opponentBlade, src)
	if len(cands) == 0 {
		return nil, false
	}
	return Sample(cands, TopK, src).Action, true
}
