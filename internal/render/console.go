// Package render draws a bout on a terminal.
//
// Console is a bout.Observer: it only ever sees Snapshot and RoundOutcome
// values, so rendering can never change the simulation.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/touche/internal/bout"
	"github.com/roach88/touche/internal/rules"
)

const (
	PisteWidth = 60

	fencerLeft  = "{<|"
	fencerRight = "|>}"
	pisteRune   = "─"
	frameRune   = "═"
)

var spacing = [...]int{
	rules.OutOfDistance: 40,
	rules.Long:          30,
	rules.Medium:        20,
	rules.Lunge:         15,
	rules.Short:         10,
	rules.Infighting:    5,
}

// Spacing returns the gap between the fencers on the drawn piste.
func Spacing(b rules.DistanceBand) int {
	if !b.Valid() {
		return spacing[rules.OutOfDistance]
	}
	return spacing[b]
}

// FencerLine draws both fencers centered on the piste at band b.
func FencerLine(b rules.DistanceBand) string {
	gap := Spacing(b)
	left := (PisteWidth - gap) / 2
	return strings.Repeat(" ", left) + fencerLeft + strings.Repeat(" ", gap-3) + fencerRight
}

// Pips renders a score as filled and empty markers up to the threshold.
func Pips(score, threshold int) string {
	filled := min(max(score, 0), threshold)
	return strings.Repeat("●", filled) + strings.Repeat("○", threshold-filled)
}

type styles struct {
	title    lipgloss.Style
	info     lipgloss.Style
	score    lipgloss.Style
	success  lipgloss.Style
	failure  lipgloss.Style
	distance lipgloss.Style
	piste    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00D7FF")),
		info:     r.NewStyle().Foreground(lipgloss.Color("#FAFAFA")),
		score:    r.NewStyle().Foreground(lipgloss.Color("#FFD700")),
		success:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575")),
		failure:  r.NewStyle().Foreground(lipgloss.Color("#F25D94")),
		distance: r.NewStyle().Foreground(lipgloss.Color("#874BFD")),
		piste:    r.NewStyle().Foreground(lipgloss.Color("#5F87FF")),
	}
}

// Console prints a running commentary of a bout.
type Console struct {
	w     io.Writer
	st    styles
	now   func() time.Time
	start time.Time
	stats bout.Stats
}

// Option configures a Console.
type Option func(*Console)

// WithClock replaces time.Now for the header timestamp and the duration.
func WithClock(now func() time.Time) Option {
	return func(c *Console) { c.now = now }
}

// NewConsole writes to w. Colors are used only when w is a terminal that
// supports them.
func NewConsole(w io.Writer, opts ...Option) *Console {
	c := &Console{
		w:   w,
		st:  newStyles(lipgloss.NewRenderer(w)),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Header prints the bout title and both fencers. It also starts the clock
// used by Summary.
func (c *Console) Header(snap bout.Snapshot) {
	c.start = c.now()
	rule := strings.Repeat("=", PisteWidth)
	fmt.Fprintln(c.w, c.st.title.Render(rule))
	fmt.Fprintln(c.w, c.st.title.Render("FENCING BOUT - "+c.start.Format("15:04:05")))
	fmt.Fprintln(c.w, c.st.title.Render(rule))
	fmt.Fprintln(c.w)
	for i, f := range snap.Fencers {
		fmt.Fprintln(c.w, c.st.info.Render(fmt.Sprintf("Fencer %d: %s (Skill: %.2f)", i+1, f.Name, f.Skill)))
	}
	fmt.Fprintln(c.w, c.st.info.Render(fmt.Sprintf("Points to win: %d", snap.WinThreshold)))
	fmt.Fprintln(c.w)
	c.Piste(snap)
}

// Piste draws the strip with both fencers spaced by the current band.
func (c *Console) Piste(snap bout.Snapshot) {
	frame := strings.Repeat(frameRune, PisteWidth)
	line := c.st.piste.Render(strings.Repeat(pisteRune, PisteWidth))
	fmt.Fprintln(c.w, frame)
	fmt.Fprintln(c.w, c.st.info.Render(fmt.Sprintf("%-25s VS %25s", snap.Fencers[0].Name, snap.Fencers[1].Name)))
	fmt.Fprintln(c.w, line)
	fmt.Fprintln(c.w, FencerLine(snap.Distance))
	fmt.Fprintln(c.w, line)
	fmt.Fprintln(c.w, frame)
}

// ObserveRound prints one round and records it for the summary.
func (c *Console) ObserveRound(snap bout.Snapshot, out bout.RoundOutcome) {
	c.stats.Record(out)

	fmt.Fprintln(c.w)
	fmt.Fprintln(c.w, c.st.info.Render(fmt.Sprintf("Round %d", out.Round)))
	if out.DistanceChanged() {
		fmt.Fprintln(c.w, c.st.distance.Render(
			fmt.Sprintf("Distance changed: %v → %v", out.PreviousDistance, out.Distance)))
	}

	if out.Repositioned() {
		fmt.Fprintln(c.w, c.st.info.Render(fmt.Sprintf("%s is repositioning...", out.Actor)))
	} else {
		r := out.Resolution
		fmt.Fprintln(c.w, c.st.info.Render(fmt.Sprintf("%s attempts %v", out.Actor, r.Action)))
		fmt.Fprintln(c.w, c.st.info.Render(fmt.Sprintf("Probability: %.2f | Roll: %.2f", r.Probability, r.Roll)))
		if r.Success {
			fmt.Fprintln(c.w, c.st.success.Render("SCORES!"))
		} else {
			fmt.Fprintln(c.w, c.st.failure.Render("MISSES..."))
		}
	}

	c.Piste(snap)
	c.Score(snap)
}

// Score prints both scores as pips.
func (c *Console) Score(snap bout.Snapshot) {
	fmt.Fprintln(c.w, c.st.score.Render("SCORE:"))
	for _, f := range snap.Fencers {
		fmt.Fprintln(c.w, c.st.score.Render(
			fmt.Sprintf("%s: %s [%d]", f.Name, Pips(f.Score, snap.WinThreshold), f.Score)))
	}
}

// Summary prints the winner, round count, duration and per-action
// statistics gathered since Header.
func (c *Console) Summary(snap bout.Snapshot) {
	rule := strings.Repeat("=", PisteWidth)
	fmt.Fprintln(c.w)
	fmt.Fprintln(c.w, c.st.title.Render(rule))
	fmt.Fprintln(c.w, c.st.title.Render("BOUT SUMMARY"))
	fmt.Fprintln(c.w, c.st.title.Render(rule))
	fmt.Fprintln(c.w)

	if snap.Winner != "" {
		fmt.Fprintln(c.w, c.st.success.Render("Winner: "+snap.Winner))
	} else {
		fmt.Fprintln(c.w, c.st.failure.Render("No winner"))
	}
	fmt.Fprintln(c.w, c.st.info.Render(fmt.Sprintf("Total Rounds: %d", snap.Round)))
	if !c.start.IsZero() {
		fmt.Fprintln(c.w, c.st.info.Render(fmt.Sprintf("Duration: %.1f seconds", c.now().Sub(c.start).Seconds())))
	}

	fmt.Fprintln(c.w)
	fmt.Fprintln(c.w, c.st.title.Render("Action Statistics:"))
	WriteTallies(c.w, c.stats.Tallies())
	if c.stats.Repositions > 0 {
		fmt.Fprintf(c.w, "%-20s: %d\n", "Repositioning", c.stats.Repositions)
	}
}

// WriteTallies prints one line per action: hits/attempts and the rate.
func WriteTallies(w io.Writer, tallies []bout.ActionTally) {
	for _, t := range tallies {
		fmt.Fprintf(w, "%-20s: %d/%d (%.1f%% success)\n",
			t.Action.String(), t.Hits, t.Attempts, t.Rate()*100)
	}
}
