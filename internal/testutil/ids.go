package testutil

// FixedIDGenerator generates the same session id every time.
//
// Unlike engine.FixedGenerator which returns ids in sequence and panics
// when they run out, this generator never runs dry. Use it when a test
// restarts a session an unknown number of times.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a generator returning id.
// If id is empty, Generate() returns "test-session-default".
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-session-default"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed id.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}
