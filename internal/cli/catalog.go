package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/roach88/touche/internal/distance"
	"github.com/roach88/touche/internal/rules"
)

// ActionEntry is one row of the action table.
type ActionEntry struct {
	Kind                string   `json:"kind"`
	Name                string   `json:"name"`
	Category            string   `json:"category"`
	ExecutionTime       float64  `json:"execution_time"`
	BaseSuccessRate     float64  `json:"base_success_rate"`
	ValidDistances      []string `json:"valid_distances"`
	VulnerableTo        []string `json:"vulnerable_to"`
	EffectiveAgainst    []string `json:"effective_against"`
	PreparationRequired bool     `json:"preparation_required"`
	Priority            bool     `json:"priority"`
	Description         string   `json:"description"`
}

// DefenseEntry is one row of the defense table.
type DefenseEntry struct {
	Kind             string   `json:"kind"`
	Name             string   `json:"name"`
	ExecutionTime    float64  `json:"execution_time"`
	BaseSuccessRate  float64  `json:"base_success_rate"`
	EffectiveAgainst []string `json:"effective_against"`
	FollowUpActions  []string `json:"follow_up_actions"`
	Description      string   `json:"description"`
}

// DistanceEntry is one row of the distance table. MaxMeters is nil for
// the unbounded band.
type DistanceEntry struct {
	Band               string   `json:"band"`
	Name               string   `json:"name"`
	MinMeters          float64  `json:"min_meters"`
	MaxMeters          *float64 `json:"max_meters"`
	Multiplier         float64  `json:"multiplier"`
	ValidActions       []string `json:"valid_actions"`
	PreparationAllowed bool     `json:"preparation_allowed"`
	Neighbors          []string `json:"neighbors"`
}

// Catalog is the full rule table set.
type Catalog struct {
	Actions   []ActionEntry   `json:"actions"`
	Defenses  []DefenseEntry  `json:"defenses"`
	Distances []DistanceEntry `json:"distances"`
}

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the action, defense and distance rules",
		Long: `Print the fixed rule tables that drive every bout.

Examples:
  touche catalog
  touche catalog --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rules.Check(); err != nil {
				return WrapExitError(ExitFailure, "rule catalogue is inconsistent", err)
			}
			cat := BuildCatalog()
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			if out.IsJSON() {
				return out.Success(cat)
			}
			_, err := fmt.Fprint(cmd.OutOrStdout(), renderCatalog(cat))
			return err
		},
	}
	return cmd
}

// BuildCatalog flattens the rule tables into plain rows.
func BuildCatalog() Catalog {
	var cat Catalog
	for _, k := range rules.AllActionKinds() {
		r := rules.Action(k)
		cat.Actions = append(cat.Actions, ActionEntry{
			Kind:                k.Slug(),
			Name:                k.String(),
			Category:            r.Category.String(),
			ExecutionTime:       r.ExecutionTime,
			BaseSuccessRate:     r.BaseSuccessRate,
			ValidDistances:      bandSlugs(r.ValidDistances.Slice()),
			VulnerableTo:        defenseSlugs(r.VulnerableTo.Slice()),
			EffectiveAgainst:    defenseSlugs(r.EffectiveAgainst.Slice()),
			PreparationRequired: r.PreparationRequired,
			Priority:            r.Priority,
			Description:         r.Description,
		})
	}
	for _, k := range rules.AllDefenseKinds() {
		r := rules.Defense(k)
		cat.Defenses = append(cat.Defenses, DefenseEntry{
			Kind:             k.Slug(),
			Name:             k.String(),
			ExecutionTime:    r.ExecutionTime,
			BaseSuccessRate:  r.BaseSuccessRate,
			EffectiveAgainst: actionSlugs(r.EffectiveAgainst.Slice()),
			FollowUpActions:  actionSlugs(r.FollowUpActions.Slice()),
			Description:      r.Description,
		})
	}
	for _, b := range rules.AllDistanceBands() {
		r := rules.Distance(b)
		entry := DistanceEntry{
			Band:               b.Slug(),
			Name:               b.String(),
			MinMeters:          r.Range.Min,
			Multiplier:         distance.Multiplier(b),
			ValidActions:       actionSlugs(r.ValidActions.Slice()),
			PreparationAllowed: r.PreparationAllowed,
			Neighbors:          bandSlugs(r.Neighbors.Slice()),
		}
		if !r.Range.Unbounded() {
			m := r.Range.Max
			entry.MaxMeters = &m
		}
		cat.Distances = append(cat.Distances, entry)
	}
	return cat
}

func renderCatalog(cat Catalog) string {
	var sb strings.Builder

	actions := newTable("Action", "Category", "Time", "Base", "Distances", "Vulnerable to", "Effective against", "Prep")
	for _, a := range cat.Actions {
		actions.Row(a.Name, a.Category, fmt.Sprintf("%.1fs", a.ExecutionTime),
			fmt.Sprintf("%.2f", a.BaseSuccessRate), join(a.ValidDistances),
			join(a.VulnerableTo), join(a.EffectiveAgainst), yesNo(a.PreparationRequired))
	}
	sb.WriteString("ACTIONS\n" + actions.String() + "\n\n")

	defenses := newTable("Defense", "Time", "Base", "Effective against", "Follow-ups")
	for _, d := range cat.Defenses {
		defenses.Row(d.Name, fmt.Sprintf("%.1fs", d.ExecutionTime),
			fmt.Sprintf("%.2f", d.BaseSuccessRate), join(d.EffectiveAgainst), join(d.FollowUpActions))
	}
	sb.WriteString("DEFENSES\n" + defenses.String() + "\n\n")

	distances := newTable("Distance", "Meters", "Multiplier", "Actions", "Neighbors")
	for _, d := range cat.Distances {
		meters := fmt.Sprintf("%.1f+", d.MinMeters)
		if d.MaxMeters != nil {
			meters = fmt.Sprintf("%.1f-%.1f", d.MinMeters, *d.MaxMeters)
		}
		distances.Row(d.Name, meters, fmt.Sprintf("%.1f", d.Multiplier), join(d.ValidActions), join(d.Neighbors))
	}
	sb.WriteString("DISTANCES\n" + distances.String() + "\n")

	return sb.String()
}

func newTable(headers ...string) *table.Table {
	return table.New().Border(lipgloss.NormalBorder()).Headers(headers...)
}

func actionSlugs(ks []rules.ActionKind) []string {
	out := make([]string, len(ks))
	for i, k := range ks {
		out[i] = k.Slug()
	}
	return out
}

func defenseSlugs(ks []rules.DefenseKind) []string {
	out := make([]string, len(ks))
	for i, k := range ks {
		out[i] = k.Slug()
	}
	return out
}

func bandSlugs(bs []rules.DistanceBand) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.Slug()
	}
	return out
}

func join(s []string) string {
	if len(s) == 0 {
		return "-"
	}
	return strings.Join(s, ", ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
