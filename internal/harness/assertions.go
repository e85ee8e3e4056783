package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/touche/internal/bout"
	"github.com/roach88/touche/internal/rules"
)

// historyContext is how many trailing history lines an AssertionError shows.
const historyContext = 5

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	History  []string // Last few history lines for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)

	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.History) > 0 {
		fmt.Fprintf(&buf, "\nLast rounds:\n")
		for _, line := range e.History {
			fmt.Fprintf(&buf, "  %s\n", line)
		}
	}

	return buf.String()
}

// EvaluateAssertions checks each assertion against the result and returns
// one message per failing assertion.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluate(r *Result, a Assertion) error {
	switch a.Type {
	case AssertFinished:
		return assertFinished(r)
	case AssertRoundLimit:
		return assertRoundLimit(r)
	case AssertWinner:
		return assertWinner(r, a)
	case AssertFinalScore:
		return assertFinalScore(r, a)
	case AssertMaxRounds:
		if a.Count == nil {
			return fail(r, a.Type, "a count", "none given")
		}
		return assertMaxRounds(r, a)
	case AssertNeverSelects:
		return assertNeverSelects(r, a)
	case AssertHistoryLen:
		if a.Count == nil {
			return fail(r, a.Type, "a count", "none given")
		}
		return assertHistoryLen(r, a)
	}
	return fail(r, a.Type, "a known assertion type", fmt.Sprintf("%q", a.Type))
}

func assertFinished(r *Result) error {
	if r.Final.Phase == bout.PhaseFinished && r.Final.Winner != "" {
		return nil
	}
	return fail(r, AssertFinished, "bout finished with a winner",
		fmt.Sprintf("phase %s after %d rounds", r.Final.Phase, r.Final.Round))
}

func assertRoundLimit(r *Result) error {
	if r.RoundLimit {
		return nil
	}
	return fail(r, AssertRoundLimit, "round cap reached without a winner",
		fmt.Sprintf("%s won after %d rounds", r.Final.Winner, r.Final.Round))
}

func assertWinner(r *Result, a Assertion) error {
	if r.Final.Winner == a.Fencer {
		return nil
	}
	actual := r.Final.Winner
	if actual == "" {
		actual = "no winner"
	}
	return fail(r, AssertWinner, a.Fencer, actual)
}

func assertFinalScore(r *Result, a Assertion) error {
	got := [2]int{r.Final.Fencers[0].Score, r.Final.Fencers[1].Score}
	if len(a.Scores) == 2 && got[0] == a.Scores[0] && got[1] == a.Scores[1] {
		return nil
	}
	return fail(r, AssertFinalScore, fmt.Sprintf("%v", a.Scores), fmt.Sprintf("%v", got[:]))
}

func assertMaxRounds(r *Result, a Assertion) error {
	if r.Final.Round <= *a.Count {
		return nil
	}
	return fail(r, AssertMaxRounds, fmt.Sprintf("at most %d rounds", *a.Count),
		fmt.Sprintf("%d rounds", r.Final.Round))
}

func assertNeverSelects(r *Result, a Assertion) error {
	var banned rules.ActionSet
	for _, name := range a.Actions {
		k, err := rules.ParseActionKind(name)
		if err != nil {
			return fail(r, AssertNeverSelects, "known action names", err.Error())
		}
		banned |= rules.Actions(k)
	}

	for _, o := range r.Outcomes {
		if o.Repositioned() || !banned.Has(o.Resolution.Action) {
			continue
		}
		return fail(r, AssertNeverSelects,
			fmt.Sprintf("none of %v", a.Actions),
			fmt.Sprintf("%s chose %v in round %d", o.Actor, o.Resolution.Action, o.Round))
	}
	return nil
}

func assertHistoryLen(r *Result, a Assertion) error {
	if len(r.Final.History) == *a.Count {
		return nil
	}
	return fail(r, AssertHistoryLen, fmt.Sprintf("%d entries", *a.Count),
		fmt.Sprintf("%d entries", len(r.Final.History)))
}

func fail(r *Result, typ, expected, actual string) *AssertionError {
	hist := r.Final.History
	if len(hist) > historyContext {
		hist = hist[len(hist)-historyContext:]
	}
	return &AssertionError{
		Type:     typ,
		Expected: expected,
		Actual:   actual,
		History:  hist,
	}
}
