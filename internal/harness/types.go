package harness

import (
	"encoding/json"

	"github.com/roach88/wiregen/internal/value"
)

// CaseResult is the outcome of one case.
type CaseResult struct {
	Name string `json:"name"`
	Decl string `json:"decl"`
	Pass bool   `json:"pass"`

	// Hex is the encoding the codec produced, for round trips.
	Hex string `json:"hex,omitempty"`

	// Value is the canonical JSON of the decoded value, for round trips.
	Value json.RawMessage `json:"value,omitempty"`

	// Error is the error the codec reported, for error cases.
	Error string `json:"error,omitempty"`

	decoded value.Value
}

// Result is the outcome of running a suite.
type Result struct {
	Suite string `json:"suite"`

	// Pass is true if every case passed.
	Pass bool `json:"pass"`

	// Fingerprint identifies the schema's wire layout.
	Fingerprint string `json:"fingerprint"`

	Cases []CaseResult `json:"cases"`

	// Errors holds one message per mismatch. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result for the named suite.
func NewResult(suite string) *Result {
	return &Result{
		Suite:  suite,
		Pass:   true,
		Cases:  []CaseResult{},
		Errors: []string{},
	}
}

// AddError records a mismatch and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
