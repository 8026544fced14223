package testutil

// FixedIDGenerator generates the same run ID every time.
//
// This enables deterministic harness output and golden snapshot comparison.
// The same scenario with the same FixedIDGenerator produces byte-identical
// reports.
//
// Thread-safety: FixedIDGenerator is stateless and safe for concurrent use.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a new fixed run ID generator.
// If id is empty, Generate() returns "test-run-default".
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed run ID.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}
