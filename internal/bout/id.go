package bout

import "github.com/google/uuid"

// IDGenerator generates bout identifiers for logs and snapshots.
// Implemented by UUIDv7Generator (production) and
// testutil.FixedIDGenerator (tests).
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 bout IDs.
//
// Bouts started later sort later, which keeps server logs and broadcast
// frames easy to follow. Stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
