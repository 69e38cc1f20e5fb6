package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/wiregen/internal/testutil"
)

// TestRunWithGolden_Smash pins every result of the smash vectors,
// including the exact error text of the failure cases.
//
// To update the golden file:
//
//	go test ./internal/harness -run TestRunWithGolden_Smash -update
func TestRunWithGolden_Smash(t *testing.T) {
	suite, err := Load(testutil.FixturePath(t, "vectors/smash.yaml"))
	require.NoError(t, err)

	result, err := RunWithGolden(t, suite)
	require.NoError(t, err)
	assert.True(t, result.Pass)
}

func TestSnapshot_Deterministic(t *testing.T) {
	suite, err := Load(testutil.FixturePath(t, "vectors/smash.yaml"))
	require.NoError(t, err)

	first, err := Run(suite)
	require.NoError(t, err)
	second, err := Run(suite)
	require.NoError(t, err)

	a, err := Snapshot(first)
	require.NoError(t, err)
	b, err := Snapshot(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotContains(t, string(a), first.Fingerprint)
}

func TestSnapshot_Failure(t *testing.T) {
	result := NewResult("s")
	result.Cases = append(result.Cases, CaseResult{Name: "c", Decl: "Pair", Error: "boom"})
	result.AddError("c: boom")

	got, err := Snapshot(result)
	require.NoError(t, err)
	assert.Equal(t, `{"cases":[{"decl":"Pair","error":"boom","name":"c","pass":false}],"pass":false,"suite":"s"}`, string(got))
}
