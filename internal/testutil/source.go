package testutil

import (
	"fmt"
	"sync"
)

// ScriptedSource is a random source that replays predetermined values.
//
// Float64 and IntN draw from separate queues so a test can script the
// drift check, jitters, sample and roll of a round independently of the
// neighbor picks. Both panic when their queue is exhausted, which catches
// a test that consumes more randomness than it planned for.
//
// Thread-safety: ScriptedSource is safe for concurrent use via internal mutex.
type ScriptedSource struct {
	mu     sync.Mutex
	floats []float64
	ints   []int
}

// NewScriptedSource creates a source returning floats in order from Float64.
func NewScriptedSource(floats ...float64) *ScriptedSource {
	return &ScriptedSource{floats: floats}
}

// WithInts queues values for IntN and returns the source.
func (s *ScriptedSource) WithInts(ints ...int) *ScriptedSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ints = append(s.ints, ints...)
	return s
}

// Push appends more Float64 values.
func (s *ScriptedSource) Push(floats ...float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.floats = append(s.floats, floats...)
}

// Float64 returns the next scripted float.
func (s *ScriptedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.floats) == 0 {
		panic("ScriptedSource: Float64 values exhausted")
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

// IntN returns the next scripted int. The value must lie in [0, n).
func (s *ScriptedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ints) == 0 {
		panic("ScriptedSource: IntN values exhausted")
	}
	v := s.ints[0]
	if v < 0 || v >= n {
		panic(fmt.Sprintf("ScriptedSource: scripted int %d outside [0,%d)", v, n))
	}
	s.ints = s.ints[1:]
	return v
}

// Remaining reports how many floats and ints are still queued.
func (s *ScriptedSource) Remaining() (floats, ints int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.floats), len(s.ints)
}
