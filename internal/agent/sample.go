package agent

import (
	"sort"

	"github.com/roach88/touche/internal/rng"
)

// TopK is how many of the best-weighted candidates stay in the draw.
const TopK = 3

// Sample sorts cands by weight, keeps the best k, and draws one in
// proportion to its weight using a single Float64 from src. cands must be
// non-empty. The input slice is not modified.
func Sample(cands []Candidate, k int, src rng.Source) Candidate {
	if len(cands) == 0 {
		panic("agent: Sample called with no candidates")
	}
	top := make([]Candidate, len(cands))
	copy(top, cands)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Weight > top[j].Weight })
	if k > 0 && len(top) > k {
		top = top[:k]
	}

	var total float64
	for _, c := range top {
		total += c.Weight
	}
	r := src.Float64()
	if total <= 0 {
		return top[int(r*float64(len(top)))]
	}

	var acc float64
	for _, c := range top {
		acc += c.Weight / total
		if r < acc {
			return c
		}
	}
	return top[len(top)-1]
}
