package testutil

// FixedRunID returns the same run ID every time.
//
// Logging tags every line with a run ID; tests that compare log output use
// FixedRunID so the lines are byte-identical across runs.
//
// Thread-safety: FixedRunID is stateless and safe for concurrent use.
type FixedRunID struct {
	id string
}

// NewFixedRunID creates a fixed run ID source. If id is empty, NewRunID
// returns "test-run-default".
func NewFixedRunID(id string) *FixedRunID {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunID{id: id}
}

// NewRunID returns the fixed run ID.
//
// Implements logging.RunIDSource.
func (g *FixedRunID) NewRunID() string {
	return g.id
}
