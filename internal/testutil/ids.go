package testutil

// FixedIDGenerator returns the same bout ID every time.
//
// This enables deterministic snapshots and transcript comparison: the same
// seeded bout with the same FixedIDGenerator produces byte-identical output.
// If id is empty, Generate returns "test-bout-default".
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a new fixed bout ID generator.
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-bout-default"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed ID.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}
