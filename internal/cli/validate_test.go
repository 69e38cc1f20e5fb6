package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/wiregen/internal/compiler"
	"github.com/roach88/wiregen/internal/ir"
	"github.com/roach88/wiregen/internal/testutil"
)

func TestValidateText(t *testing.T) {
	schema := testutil.FixturePath(t, "smash.d.ts")

	stdout, stderr, code := runCLI(t, "validate", schema)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Empty(t, stderr)

	s, err := compiler.CompileFile(schema)
	require.NoError(t, err)
	fp, err := ir.Fingerprint(s)
	require.NoError(t, err)

	assert.Contains(t, stdout, "✓ "+schema+": 16 declaration(s), 1 alias(es)\n")
	assert.Contains(t, stdout, "  union  ClientMessage (3 variant(s))\n")
	assert.Contains(t, stdout, "  struct Pair (2 field(s))\n")
	assert.Contains(t, stdout, "fingerprint "+fp+"\n")
	assert.NotContains(t, stdout, "interface Pair")
}

func TestValidatePrint(t *testing.T) {
	schema := testutil.FixturePath(t, "smash.d.ts")

	stdout, _, code := runCLI(t, "validate", "--print", schema)
	require.Equal(t, ExitSuccess, code)

	s, err := compiler.CompileFile(schema)
	require.NoError(t, err)
	assert.Contains(t, stdout, "\n\n"+ir.Format(s))
}

func TestValidateJSON(t *testing.T) {
	stdout, _, code := runCLI(t, "validate", "--format", "json", testutil.FixturePath(t, "smash.d.ts"))
	require.Equal(t, ExitSuccess, code)

	var response struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &response))
	assert.Equal(t, "ok", response.Status)
	assert.True(t, response.Data.Valid)
	assert.Len(t, response.Data.Declarations, 16)
	assert.Equal(t, DeclSummary{Name: "Pair", Kind: "struct", Members: 2}, response.Data.Declarations[9])
	assert.Equal(t, []string{"int"}, response.Data.Aliases)
	assert.NotEmpty(t, response.Data.Fingerprint)
}

func TestValidateSurfacesShareFingerprint(t *testing.T) {
	fingerprint := func(name string) string {
		stdout, _, code := runCLI(t, "validate", "--format", "json", testutil.FixturePath(t, name))
		require.Equal(t, ExitSuccess, code)
		var response struct {
			Data ValidationResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(stdout), &response))
		return response.Data.Fingerprint
	}
	assert.Equal(t, fingerprint("smash.d.ts"), fingerprint("smash.cue"))
}

func TestValidateSchemaErrorText(t *testing.T) {
	schema := testutil.WriteFile(t, t.TempDir(), "bad.d.ts", []byte(badSchema))

	stdout, stderr, code := runCLI(t, "validate", schema)
	assert.Equal(t, ExitFailure, code)
	assert.Empty(t, stdout)
	assert.Equal(t, filepath.ToSlash(schema)+":1:18: unhandled NumberKeyword in A\n", stderr)
}

func TestValidateSchemaErrorJSON(t *testing.T) {
	schema := testutil.WriteFile(t, t.TempDir(), "bad.d.ts", []byte(badSchema))

	stdout, stderr, code := runCLI(t, "validate", "--format", "json", schema)
	assert.Equal(t, ExitFailure, code)
	assert.Empty(t, stderr)

	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &response))
	assert.Equal(t, "error", response.Status)
	require.NotNil(t, response.Error)
	assert.Equal(t, ir.ErrUnhandled, response.Error.Code)
	assert.Contains(t, response.Error.Message, "unhandled NumberKeyword")

	data, ok := response.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, data["valid"])
	assert.Len(t, data["errors"], 1)
}

func TestValidateMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.d.ts")

	stdout, stderr, code := runCLI(t, "validate", missing)
	assert.Equal(t, ExitCommandError, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "wiregen: read schema: ")

	stdout, stderr, code = runCLI(t, "validate", "--format", "json", missing)
	assert.Equal(t, ExitCommandError, code)
	assert.Empty(t, stderr)
	assert.Contains(t, stdout, `"code":"E005"`)
}
