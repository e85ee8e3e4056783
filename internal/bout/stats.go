package bout

import (
	"sort"

	"github.com/roach88/touche/internal/rules"
)

// ActionTally counts attempts and hits for one action kind.
type ActionTally struct {
	Action   rules.ActionKind `json:"action"`
	Attempts int              `json:"attempts"`
	Hits     int              `json:"hits"`
}

// Rate returns Hits/Attempts, or 0 when nothing was attempted.
func (t ActionTally) Rate() float64 {
	if t.Attempts == 0 {
		return 0
	}
	return float64(t.Hits) / float64(t.Attempts)
}

// Stats accumulates per-action results across one or more bouts.
// The zero value is ready to use. Not safe for concurrent use; merge
// per-worker Stats instead.
type Stats struct {
	Rounds      int
	Repositions int
	tallies     map[rules.ActionKind]*ActionTally
}

// Record adds one round outcome.
func (s *Stats) Record(out RoundOutcome) {
	s.Rounds++
	if out.Repositioned() {
		s.Repositions++
		return
	}
	t := s.tally(out.Resolution.Action)
	t.Attempts++
	if out.Resolution.Success {
		t.Hits++
	}
}

// ObserveRound lets Stats be registered directly on a bout.
func (s *Stats) ObserveRound(_ Snapshot, out RoundOutcome) { s.Record(out) }

// Merge folds other into s.
func (s *Stats) Merge(other *Stats) {
	s.Rounds += other.Rounds
	s.Repositions += other.Repositions
	for k, o := range other.tallies {
		t := s.tally(k)
		t.Attempts += o.Attempts
		t.Hits += o.Hits
	}
}

// Tallies returns a copy of every non-empty tally, most attempted first,
// ties broken by declaration order.
func (s *Stats) Tallies() []ActionTally {
	out := make([]ActionTally, 0, len(s.tallies))
	for _, t := range s.tallies {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Attempts != out[j].Attempts {
			return out[i].Attempts > out[j].Attempts
		}
		return out[i].Action < out[j].Action
	})
	return out
}

func (s *Stats) tally(k rules.ActionKind) *ActionTally {
	if s.tallies == nil {
		s.tallies = make(map[rules.ActionKind]*ActionTally)
	}
	t, ok := s.tallies[k]
	if !ok {
		t = &ActionTally{Action: k}
		s.tallies[k] = t
	}
	return t
}
