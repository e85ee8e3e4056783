package bout

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/touche/internal/distance"
	"github.com/roach88/touche/internal/rng"
	"github.com/roach88/touche/internal/rules"
	"github.com/roach88/touche/internal/testutil"
)

func aliceBob() Config {
	return DefaultConfig(
		FencerConfig{Name: "Alice", Skill: 0.7},
		FencerConfig{Name: "Bob", Skill: 0.6},
	)
}

// lungeRound scripts one round at Lunge with no drift: drift check, four
// neutral jitters, a sample that picks Disengage, then the roll.
func lungeRound(roll float64) []float64 {
	return []float64{0.9, 0.5, 0.5, 0.5, 0.5, 0.0, roll}
}

func newTestBout(t *testing.T, cfg Config, src rng.Source, opts ...Option) *Bout {
	t.Helper()
	opts = append([]Option{WithIDGenerator(testutil.NewFixedIDGenerator("bout-1"))}, opts...)
	b, err := New(cfg, src, opts...)
	require.NoError(t, err)
	return b
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		code   ConfigErrorCode
	}{
		{"skill above one", func(c *Config) { c.Fencers[0].Skill = 1.5 }, ErrCodeInvalidSkill},
		{"negative skill", func(c *Config) { c.Fencers[1].Skill = -0.1 }, ErrCodeInvalidSkill},
		{"nan skill", func(c *Config) { c.Fencers[1].Skill = math.NaN() }, ErrCodeInvalidSkill},
		{"zero threshold", func(c *Config) { c.WinThreshold = 0 }, ErrCodeInvalidThreshold},
		{"negative threshold", func(c *Config) { c.WinThreshold = -3 }, ErrCodeInvalidThreshold},
		{"empty name", func(c *Config) { c.Fencers[0].Name = "  " }, ErrCodeInvalidName},
		{"unknown band", func(c *Config) { c.StartDistance = 0 }, ErrCodeUnknownKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := aliceBob()
			tt.mutate(&cfg)
			b, err := New(cfg, rng.New(1))
			require.Error(t, err)
			assert.Nil(t, b)
			assert.True(t, IsConfigError(err))
			assert.Equal(t, tt.code, ConfigErrorCodeOf(err))
		})
	}
}

func TestNew_UnknownBandWrapsSentinel(t *testing.T) {
	cfg := aliceBob()
	cfg.StartDistance = 42
	_, err := New(cfg, rng.New(1))
	assert.True(t, errors.Is(err, rules.ErrUnknownKind))
}

func TestNew_InitialState(t *testing.T) {
	b := newTestBout(t, aliceBob(), rng.New(1))

	assert.Equal(t, "bout-1", b.ID())
	assert.Equal(t, PhaseInProgress, b.Phase())
	assert.False(t, b.Finished())
	assert.Zero(t, b.Round())
	assert.Zero(t, b.Current())
	assert.Equal(t, rules.Medium, b.Distance())
	assert.Equal(t, [2]int{0, 0}, b.Scores())
	_, ok := b.Winner()
	assert.False(t, ok)
}

func TestNew_DefaultIDIsUUID(t *testing.T) {
	b, err := New(aliceBob(), rng.New(1))
	require.NoError(t, err)
	assert.Len(t, b.ID(), 36)
}

func TestStep_ScriptedHitThenMiss(t *testing.T) {
	cfg := aliceBob()
	cfg.Fencers[0].Skill = 1
	cfg.Fencers[1].Skill = 1
	cfg.StartDistance = rules.Lunge

	src := testutil.NewScriptedSource(lungeRound(0.5)...)
	src.Push(lungeRound(0.99)...)
	b := newTestBout(t, cfg, src)

	out, err := b.Step()
	require.NoError(t, err)
	assert.Equal(t, 1, out.Round)
	assert.Equal(t, "Alice", out.Actor)
	assert.Equal(t, 0, out.ActorIndex)
	assert.False(t, out.DistanceChanged())
	require.NotNil(t, out.Resolution)
	assert.Equal(t, rules.Disengage, out.Resolution.Action)
	assert.InDelta(t, 0.702, out.Resolution.ActionProbability, 1e-9)
	assert.InDelta(t, 0.9, out.Resolution.DistanceMultiplier, 1e-9)
	assert.InDelta(t, 0.6318, out.Resolution.Probability, 1e-9)
	assert.True(t, out.Success())
	assert.Equal(t, [2]int{1, 0}, out.Scores)

	out, err = b.Step()
	require.NoError(t, err)
	assert.Equal(t, 2, out.Round)
	assert.Equal(t, "Bob", out.Actor)
	assert.False(t, out.Success())
	assert.Equal(t, [2]int{1, 0}, out.Scores)
	assert.Zero(t, b.Current())

	f, i := src.Remaining()
	assert.Zero(t, f)
	assert.Zero(t, i)
}

func TestStep_RollEqualToProbabilityScores(t *testing.T) {
	cfg := aliceBob()
	cfg.Fencers[0].Skill = 1
	cfg.StartDistance = rules.Lunge

	// same operation order as the resolver, so the roll equals p exactly
	p := rules.Action(rules.Disengage).BaseSuccessRate
	p *= 0.9
	p *= 1.2
	final := p * distance.Multiplier(rules.Lunge)

	src := testutil.NewScriptedSource(lungeRound(final)...)
	b := newTestBout(t, cfg, src)

	out, err := b.Step()
	require.NoError(t, err)
	assert.Equal(t, final, out.Resolution.Probability)
	assert.True(t, out.Success())
}

func TestStep_RepositionsWhenNothingFeasible(t *testing.T) {
	src := testutil.NewScriptedSource(0.9)
	b := newTestBout(t, aliceBob(), src)

	out, err := b.Step()
	require.NoError(t, err)
	assert.True(t, out.Repositioned())
	assert.False(t, out.Success())
	assert.Equal(t, rules.Medium, out.Distance)
	assert.Equal(t, 1, b.Round())
	assert.Equal(t, 1, b.Current(), "roles swap even on a reposition")
	assert.Equal(t, "R1 Alice repositions at Medium Distance (0-0)", out.Describe())
}

func TestStep_DriftMovesToScriptedNeighbor(t *testing.T) {
	cfg := aliceBob()
	cfg.Fencers[0].Skill = 1

	// drift fires, neighbor index 1 of [Long, Lunge] is Lunge
	src := testutil.NewScriptedSource(0.1, 0.5, 0.5, 0.5, 0.5, 0.0, 0.99).WithInts(1)
	b := newTestBout(t, cfg, src)

	out, err := b.Step()
	require.NoError(t, err)
	assert.Equal(t, rules.Medium, out.PreviousDistance)
	assert.Equal(t, rules.Lunge, out.Distance)
	assert.Equal(t, rules.Lunge, b.Distance())
	assert.True(t, strings.HasPrefix(out.Describe(), "R1 [Medium Distance -> Lunge Distance] Alice misses with Disengage"))
}

func TestStep_FinishedBoutIsUnchanged(t *testing.T) {
	cfg := aliceBob()
	cfg.Fencers[0].Skill = 1
	cfg.WinThreshold = 1
	cfg.StartDistance = rules.Lunge

	b := newTestBout(t, cfg, testutil.NewScriptedSource(lungeRound(0.1)...))

	out, err := b.Step()
	require.NoError(t, err)
	assert.True(t, out.Finished)
	assert.Equal(t, "Alice", out.Winner)
	assert.Equal(t, PhaseFinished, b.Phase())

	before := b.Snapshot()
	_, err = b.Step()
	assert.ErrorIs(t, err, ErrBoutFinished)
	assert.Equal(t, before, b.Snapshot())

	name, ok := b.Winner()
	assert.True(t, ok)
	assert.Equal(t, "Alice", name)
}

func TestStep_FinalProbabilityNeverExceedsActionProbability(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		b := newTestBout(t, aliceBob(), rng.New(seed))
		outs, err := b.Run(5000)
		require.NoError(t, err)
		for _, o := range outs {
			if o.Repositioned() {
				continue
			}
			r := o.Resolution
			assert.LessOrEqual(t, r.Probability, r.ActionProbability+1e-12)
			assert.GreaterOrEqual(t, r.Probability, 0.0)
			assert.Equal(t, distance.Multiplier(o.Distance), r.DistanceMultiplier)
		}
	}
}

func TestStep_RoundsIncrementAndRolesAlternate(t *testing.T) {
	b := newTestBout(t, aliceBob(), rng.New(7))
	outs, err := b.Run(5000)
	require.NoError(t, err)
	require.NotEmpty(t, outs)

	for i, o := range outs {
		assert.Equal(t, i+1, o.Round)
		assert.Equal(t, i%2, o.ActorIndex)
		assert.True(t, o.PreviousDistance == o.Distance || distance.IsNeighbor(o.PreviousDistance, o.Distance))
	}
}

func TestRun_SeededBoutIsReproducible(t *testing.T) {
	play := func() ([]RoundOutcome, [2]int) {
		b := newTestBout(t, aliceBob(), rng.New(2024))
		outs, err := b.Run(10000)
		require.NoError(t, err)
		return outs, b.Scores()
	}

	first, scores := play()
	second, again := play()
	assert.Equal(t, first, second)
	assert.Equal(t, scores, again)

	hi, lo := max(scores[0], scores[1]), min(scores[0], scores[1])
	assert.Equal(t, DefaultWinThreshold, hi)
	assert.Less(t, lo, DefaultWinThreshold)
	assert.True(t, first[len(first)-1].Finished)
}

func TestRun_FinishesForManySeeds(t *testing.T) {
	for seed := uint64(1); seed <= 50; seed++ {
		b := newTestBout(t, aliceBob(), rng.New(seed))
		_, err := b.Run(10000)
		require.NoError(t, err, "seed %d", seed)

		name, ok := b.Winner()
		require.True(t, ok)
		s := b.Scores()
		if name == "Alice" {
			assert.Greater(t, s[0], s[1])
		} else {
			assert.Greater(t, s[1], s[0])
		}
	}
}

func TestRun_RoundLimit(t *testing.T) {
	cfg := aliceBob()
	cfg.WinThreshold = 1000

	b := newTestBout(t, cfg, rng.New(3))
	outs, err := b.Run(30)
	assert.ErrorIs(t, err, ErrRoundLimit)
	assert.Len(t, outs, 30)
	assert.Equal(t, 30, b.Round())
	assert.False(t, b.Finished())

	// the cap counts total rounds, not rounds in this call
	outs, err = b.Run(30)
	assert.ErrorIs(t, err, ErrRoundLimit)
	assert.Empty(t, outs)
}

func TestHistory_KeepsLastTwentyRounds(t *testing.T) {
	floats := make([]float64, 25)
	for i := range floats {
		floats[i] = 0.9
	}
	cfg := aliceBob()
	cfg.WinThreshold = 100
	b := newTestBout(t, cfg, testutil.NewScriptedSource(floats...))

	for range 25 {
		_, err := b.Step()
		require.NoError(t, err)
	}

	hist := b.Snapshot().History
	require.Len(t, hist, HistoryCapacity)
	assert.True(t, strings.HasPrefix(hist[0], "R6 "))
	assert.True(t, strings.HasPrefix(hist[len(hist)-1], "R25 "))
	for _, h := range hist {
		for _, gone := range []string{"R1 ", "R2 ", "R3 ", "R4 ", "R5 "} {
			assert.False(t, strings.HasPrefix(h, gone))
		}
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	cfg := aliceBob()
	cfg.StartDistance = rules.Lunge
	b := newTestBout(t, cfg, rng.New(9))
	_, err := b.Step()
	require.NoError(t, err)

	snap := b.Snapshot()
	assert.Equal(t, "bout-1", snap.BoutID)
	assert.Equal(t, 1, snap.Round)
	assert.Equal(t, 1, snap.Current)
	assert.Equal(t, "Alice", snap.Fencers[0].Name)
	assert.Equal(t, 0.6, snap.Fencers[1].Skill)
	assert.Equal(t, b.Distance().String(), snap.DistanceName)

	snap.History[0] = "tampered"
	snap.Fencers[0].Score = 99
	if snap.LastResolution != nil {
		snap.LastResolution.Roll = 2
	}

	fresh := b.Snapshot()
	assert.NotEqual(t, "tampered", fresh.History[0])
	assert.NotEqual(t, 99, fresh.Fencers[0].Score)
	if fresh.LastResolution != nil {
		assert.Less(t, fresh.LastResolution.Roll, 1.0)
	}
}

func TestSnapshot_ValidActionsFollowBand(t *testing.T) {
	cfg := aliceBob()
	cfg.StartDistance = rules.Short
	b := newTestBout(t, cfg, rng.New(1))

	snap := b.Snapshot()
	var names []string
	for _, a := range snap.Fencers[0].ValidActions {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"Direct Thrust", "Disengage", "Cut Over", "Counter Disengage"}, names)
	assert.Zero(t, snap.ChosenAction)
	assert.Nil(t, snap.LastResolution)
}

func TestObserver_ReceivesEveryRound(t *testing.T) {
	var rounds []int
	var lastSnap Snapshot
	obs := ObserverFunc(func(s Snapshot, o RoundOutcome) {
		rounds = append(rounds, o.Round)
		assert.Equal(t, o.Round, s.Round)
		lastSnap = s
	})

	b := newTestBout(t, aliceBob(), rng.New(5), WithObserver(obs))
	outs, err := b.Run(10000)
	require.NoError(t, err)

	assert.Len(t, rounds, len(outs))
	assert.Equal(t, PhaseFinished, lastSnap.Phase)
	w, _ := b.Winner()
	assert.Equal(t, w, lastSnap.Winner)
}

func TestStats_ObservesBout(t *testing.T) {
	var st Stats
	b := newTestBout(t, aliceBob(), rng.New(12), WithObserver(&st))
	outs, err := b.Run(10000)
	require.NoError(t, err)

	assert.Equal(t, len(outs), st.Rounds)
	attempts, hits := 0, 0
	for _, tl := range st.Tallies() {
		attempts += tl.Attempts
		hits += tl.Hits
		assert.LessOrEqual(t, tl.Rate(), 1.0)
	}
	assert.Equal(t, st.Rounds-st.Repositions, attempts)
	s := b.Scores()
	assert.Equal(t, s[0]+s[1], hits)
}

func TestStats_MergeAndOrder(t *testing.T) {
	var a, b Stats
	a.Record(RoundOutcome{Resolution: &Resolution{Action: rules.Disengage, Success: true}})
	a.Record(RoundOutcome{})
	b.Record(RoundOutcome{Resolution: &Resolution{Action: rules.DirectThrust}})
	b.Record(RoundOutcome{Resolution: &Resolution{Action: rules.DirectThrust, Success: true}})
	b.Record(RoundOutcome{Resolution: &Resolution{Action: rules.Disengage}})

	a.Merge(&b)
	assert.Equal(t, 5, a.Rounds)
	assert.Equal(t, 1, a.Repositions)
	assert.Equal(t, []ActionTally{
		{Action: rules.DirectThrust, Attempts: 2, Hits: 1},
		{Action: rules.Disengage, Attempts: 2, Hits: 1},
	}, a.Tallies())
	assert.Zero(t, ActionTally{}.Rate())
}

func TestWithLogger_LogsRoundsAndFinish(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg := aliceBob()
	cfg.Fencers[0].Skill = 1
	cfg.WinThreshold = 1
	cfg.StartDistance = rules.Lunge
	b := newTestBout(t, cfg, testutil.NewScriptedSource(lungeRound(0.1)...), WithLogger(logger))

	_, err := b.Step()
	require.NoError(t, err)

	logs := buf.String()
	assert.Contains(t, logs, "msg=round")
	assert.Contains(t, logs, "action=disengage")
	assert.Contains(t, logs, "hit=true")
	assert.Contains(t, logs, `msg="bout finished"`)
	assert.Contains(t, logs, "winner=Alice")
}

func TestHistory_Ring(t *testing.T) {
	h := NewHistory(3)
	assert.Empty(t, h.Entries())
	for _, s := range []string{"a", "b", "c", "d", "e"} {
		h.Push(s)
	}
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, []string{"c", "d", "e"}, h.Entries())
	assert.Panics(t, func() { NewHistory(0) })
}
