package bout

import (
	"github.com/roach88/touche/internal/agent"
	"github.com/roach88/touche/internal/rules"
)

// ActionView describes one action an agent may attempt right now.
type ActionView struct {
	Kind                rules.ActionKind `json:"kind"`
	Name                string           `json:"name"`
	ExecutionTime       float64          `json:"execution_time"`
	BaseSuccessRate     float64          `json:"base_success_rate"`
	PreparationRequired bool             `json:"preparation_required"`
	Description         string           `json:"description"`
}

// FencerView is the observable state of one agent.
type FencerView struct {
	Name           string              `json:"name"`
	Skill          float64             `json:"skill"`
	Score          int                 `json:"score"`
	Blade          rules.BladePosition `json:"blade_position"`
	HasPriority    bool                `json:"has_priority"`
	HasPreparation bool                `json:"has_preparation"`
	ValidActions   []ActionView        `json:"valid_actions"`
}

// Snapshot is a plain-data copy of the bout after a round. It shares no
// memory with the bout.
type Snapshot struct {
	BoutID         string             `json:"bout_id"`
	Round          int                `json:"round"`
	Phase          Phase              `json:"phase"`
	WinThreshold   int                `json:"win_threshold"`
	Distance       rules.DistanceBand `json:"distance"`
	DistanceName   string             `json:"distance_name"`
	Fencers        [2]FencerView      `json:"fencers"`
	Current        int                `json:"current"`
	ChosenAction   rules.ActionKind   `json:"chosen_action,omitempty"`
	LastResolution *Resolution        `json:"last_resolution,omitempty"`
	Winner         string             `json:"winner,omitempty"`
	History        []string           `json:"history"`
}

func fencerView(a *agent.Agent, band rules.DistanceBand) FencerView {
	feasible := a.Feasible(band)
	views := make([]ActionView, 0, len(feasible))
	for _, inst := range feasible {
		views = append(views, ActionView{
			Kind:                inst.Kind,
			Name:                inst.Kind.String(),
			ExecutionTime:       inst.Rule.ExecutionTime,
			BaseSuccessRate:     inst.Rule.BaseSuccessRate,
			PreparationRequired: inst.Rule.PreparationRequired,
			Description:         inst.Rule.Description,
		})
	}
	return FencerView{
		Name:           a.Name,
		Skill:          a.Skill,
		Score:          a.Score,
		Blade:          a.Blade,
		HasPriority:    a.HasPriority,
		HasPreparation: a.HasPreparation,
		ValidActions:   views,
	}
}
