package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/wiregen/internal/testutil"
)

// vectorDir lays out a schema and a vectors directory holding one suite.
func vectorDir(t *testing.T, suite string) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "smash.d.ts", testutil.Fixture(t, "smash.d.ts"))
	testutil.WriteFile(t, dir, "vectors/pair.yaml", []byte(suite))
	return filepath.Join(dir, "vectors")
}

const pairSuite = `name: pair
schema: ../smash.d.ts
cases:
  - name: pair
    decl: Pair
    value: { key: a, val: b }
    hex: "0001 61 0001 62"
`

func TestVerifySmashVectors(t *testing.T) {
	stdout, stderr, code := runCLI(t, "verify", testutil.FixturePath(t, "vectors"))
	require.Equal(t, ExitSuccess, code, stdout+stderr)
	assert.Equal(t, "✓ smash (18 cases)\n\n1 passed, 0 failed, 1 total\n", stdout)
}

func TestVerifyFailure(t *testing.T) {
	dir := vectorDir(t, `name: wrong
schema: ../smash.d.ts
cases:
  - name: pair
    decl: Pair
    value: { key: a, val: b }
    hex: "0001 61 0001 63"
`)

	stdout, _, code := runCLI(t, "verify", dir)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "✗ wrong\n")
	assert.Contains(t, stdout, "  pair: encode: got 000161000162, want 000161000163\n")
	assert.Contains(t, stdout, "0 passed, 1 failed, 1 total\n")
}

func TestVerifyLoadError(t *testing.T) {
	dir := vectorDir(t, "name: broken\ncases: []\n")

	stdout, _, code := runCLI(t, "verify", filepath.Join(dir, "pair.yaml"))
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "✗ pair.yaml\n  load: invalid suite: schema is required\n")
}

func TestVerifyMissingPath(t *testing.T) {
	_, stderr, code := runCLI(t, "verify", filepath.Join(t.TempDir(), "nope"))
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "wiregen: find suites: ")
}

func TestVerifyNoSuites(t *testing.T) {
	stdout, _, code := runCLI(t, "verify", t.TempDir())
	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, "No suites found.\n", stdout)
}

func TestVerifySnapshot(t *testing.T) {
	dir := vectorDir(t, pairSuite)
	snapshot := filepath.Join(dir, "pair.golden")

	_, _, code := runCLI(t, "verify", "--update", dir)
	require.Equal(t, ExitSuccess, code)
	data, err := os.ReadFile(snapshot)
	require.NoError(t, err)
	assert.JSONEq(t, `{"suite":"pair","pass":true,"cases":[
		{"name":"pair","decl":"Pair","pass":true,"hex":"000161000162","value":{"key":"a","val":"b"}}
	]}`, string(data))

	stdout, _, code := runCLI(t, "verify", dir)
	assert.Equal(t, ExitSuccess, code, stdout)

	require.NoError(t, os.WriteFile(snapshot, []byte(`{"suite":"pair","pass":true,"cases":[]}`), 0o644))
	stdout, _, code = runCLI(t, "verify", dir)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "does not match (run with --update to regenerate)")
}

func TestVerifyJSON(t *testing.T) {
	stdout, _, code := runCLI(t, "verify", "--format", "json", testutil.FixturePath(t, "vectors/smash.yaml"))
	require.Equal(t, ExitSuccess, code)

	var response struct {
		Status string       `json:"status"`
		Data   VerifyResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &response))
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, 1, response.Data.Passed)
	require.Len(t, response.Data.Suites, 1)
	assert.Equal(t, SuiteResult{
		Name:  "smash",
		File:  testutil.FixturePath(t, "vectors/smash.yaml"),
		Pass:  true,
		Cases: 18,
	}, response.Data.Suites[0])
}
