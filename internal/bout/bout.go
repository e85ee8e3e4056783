package bout

import (
	"log/slog"

	"github.com/looplab/fsm"

	"github.com/roach88/touche/internal/agent"
	"github.com/roach88/touche/internal/distance"
	"github.com/roach88/touche/internal/rng"
	"github.com/roach88/touche/internal/rules"
)

// Bout drives one match between two agents.
//
// A Bout is not safe for concurrent use. Hosts that step a bout from more
// than one goroutine must serialize Step themselves; independent bouts
// share nothing mutable.
type Bout struct {
	id        string
	threshold int
	src       rng.Source
	logger    *slog.Logger
	observers []Observer

	agents   [2]*agent.Agent
	current  int // index of the agent acting next
	band     rules.DistanceBand
	round    int
	phase    *fsm.FSM
	winner   int // index of the winner, -1 while in progress
	history  *History
	chosen   rules.ActionKind
	lastRoll *Resolution
}

// Option configures a Bout.
type Option func(*Bout)

// WithLogger sets the logger used for round and finish events.
// Default: a logger that discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bout) { b.logger = l }
}

// WithIDGenerator sets the bout ID source. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(b *Bout) { b.id = g.Generate() }
}

// WithObserver registers observers notified after every round, in order.
func WithObserver(obs ...Observer) Option {
	return func(b *Bout) { b.observers = append(b.observers, obs...) }
}

// New validates cfg and creates a bout. The first fencer in cfg acts first.
// src is the sole source of randomness for the whole bout.
func New(cfg Config, src rng.Source, opts ...Option) (*Bout, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b := &Bout{
		threshold: cfg.WinThreshold,
		src:       src,
		logger:    slog.New(slog.DiscardHandler),
		band:      cfg.StartDistance,
		winner:    -1,
		history:   NewHistory(HistoryCapacity),
	}
	for i, f := range cfg.Fencers {
		b.agents[i] = agent.New(f.Name, f.Skill)
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.id == "" {
		b.id = UUIDv7Generator{}.Generate()
	}
	b.phase = newPhaseMachine(func() {
		w := b.agents[b.winner]
		b.logger.Info("bout finished",
			"bout", b.id, "winner", w.Name, "rounds", b.round,
			"score", [2]int{b.agents[0].Score, b.agents[1].Score})
	})
	return b, nil
}

// ID returns the bout identifier.
func (b *Bout) ID() string { return b.id }

// Round returns the number of resolved rounds.
func (b *Bout) Round() int { return b.round }

// Distance returns the current band.
func (b *Bout) Distance() rules.DistanceBand { return b.band }

// Phase returns the lifecycle state.
func (b *Bout) Phase() Phase { return Phase(b.phase.Current()) }

// Finished reports whether a fencer has reached the threshold.
func (b *Bout) Finished() bool { return b.phase.Is(string(PhaseFinished)) }

// Current returns the index of the agent acting next.
func (b *Bout) Current() int { return b.current }

// Scores returns both scores in config order.
func (b *Bout) Scores() [2]int { return [2]int{b.agents[0].Score, b.agents[1].Score} }

// Winner returns the winner's name, or false while the bout is running.
func (b *Bout) Winner() (string, bool) {
	if b.winner < 0 {
		return "", false
	}
	return b.agents[b.winner].Name, true
}

// Step resolves one round: drift, selection, roll, scoring, role swap and
// terminal check. All randomness is drawn before any state changes, so a
// failed Step leaves the bout as it was.
func (b *Bout) Step() (RoundOutcome, error) {
	if b.Finished() {
		return RoundOutcome{}, ErrBoutFinished
	}

	actorIdx := b.current
	actor, opponent := b.agents[actorIdx], b.agents[1-actorIdx]
	prev := b.band
	band := distance.Drift(prev, b.src)

	var res *Resolution
	if inst, ok := actor.ChooseAction(band, opponent.Blade, b.src); ok {
		p := inst.SuccessProbability(opponent.Blade)
		final := distance.Apply(band, p)
		roll := b.src.Float64()
		res = &Resolution{
			Action:             inst.Kind,
			ExecutionTime:      inst.Rule.ExecutionTime,
			BaseSuccessRate:    inst.Rule.BaseSuccessRate,
			ActionProbability:  p,
			DistanceMultiplier: distance.Multiplier(band),
			Probability:        final,
			Roll:               roll,
			Success:            roll <= final,
		}
	}

	b.band = band
	b.chosen = 0
	if res != nil {
		b.chosen = res.Action
		if res.Success {
			actor.Score++
		}
	}
	b.lastRoll = res
	b.round++
	b.current = 1 - b.current

	out := RoundOutcome{
		Round:            b.round,
		Actor:            actor.Name,
		ActorIndex:       actorIdx,
		PreviousDistance: prev,
		Distance:         band,
		Resolution:       res,
		Scores:           b.Scores(),
	}

	if s := b.Scores(); s[0] >= b.threshold || s[1] >= b.threshold {
		b.winner = 0
		if s[1] > s[0] {
			b.winner = 1
		}
		finish(b.phase)
		out.Finished = true
		out.Winner = b.agents[b.winner].Name
	}

	b.history.Push(out.Describe())
	b.logRound(out)

	if len(b.observers) > 0 {
		snap := b.Snapshot()
		for _, o := range b.observers {
			o.ObserveRound(snap, out)
		}
	}
	return out, nil
}

func (b *Bout) logRound(out RoundOutcome) {
	if out.Repositioned() {
		b.logger.Debug("round", "bout", b.id, "round", out.Round, "fencer", out.Actor,
			"distance", out.Distance.Slug(), "action", "reposition")
		return
	}
	r := out.Resolution
	b.logger.Debug("round", "bout", b.id, "round", out.Round, "fencer", out.Actor,
		"distance", out.Distance.Slug(), "action", r.Action.Slug(),
		"p", r.Probability, "roll", r.Roll, "hit", r.Success)
}

// Run steps the bout until it finishes or maxRounds rounds have been
// resolved in total. A maxRounds of zero or less means no cap. It returns
// every outcome produced by this call.
func (b *Bout) Run(maxRounds int) ([]RoundOutcome, error) {
	var outs []RoundOutcome
	for !b.Finished() {
		if maxRounds > 0 && b.round >= maxRounds {
			return outs, ErrRoundLimit
		}
		out, err := b.Step()
		if err != nil {
			return outs, err
		}
		outs = append(outs, out)
	}
	return outs, nil
}

// Snapshot returns a plain-data copy of the current state.
func (b *Bout) Snapshot() Snapshot {
	snap := Snapshot{
		BoutID:       b.id,
		Round:        b.round,
		Phase:        b.Phase(),
		WinThreshold: b.threshold,
		Distance:     b.band,
		DistanceName: b.band.String(),
		Current:      b.current,
		ChosenAction: b.chosen,
		History:      b.history.Entries(),
	}
	for i, a := range b.agents {
		snap.Fencers[i] = fencerView(a, b.band)
	}
	if b.lastRoll != nil {
		r := *b.lastRoll
		snap.LastResolution = &r
	}
	if name, ok := b.Winner(); ok {
		snap.Winner = name
	}
	return snap
}
