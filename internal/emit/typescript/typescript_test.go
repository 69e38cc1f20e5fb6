package typescript

import (
	"os/exec"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/wiregen/internal/compiler"
	"github.com/roach88/wiregen/internal/emit"
	"github.com/roach88/wiregen/internal/ir"
	"github.com/roach88/wiregen/internal/testutil"
)

const pairHello = `/** A key and its value. */
interface Pair {
  key: string;
  val: string;
}

interface Hello {
  alias: Pair[];
  on: boolean;
  n: uint16;
}

/**
 * First message.
 * Either kind.
 */
type Msg = Hello | Pair;
`

func TestRegistered(t *testing.T) {
	e, err := emit.Get("ts")
	require.NoError(t, err)
	assert.Equal(t, ".ts", e.FileExtension())
}

func TestDeclarationsGolden(t *testing.T) {
	s, err := compiler.Compile("pair_hello.d.ts", []byte(pairHello))
	require.NoError(t, err)

	body, err := Declarations(s)
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "pair_hello", []byte(body))
}

func TestEmitSmash(t *testing.T) {
	s, err := compiler.Compile("smash.d.ts", testutil.Fixture(t, "smash.d.ts"))
	require.NoError(t, err)

	out, err := New().Emit(s, emit.Options{Package: "ignored"})
	require.NoError(t, err)
	src := string(out)

	fp, err := ir.Fingerprint(s)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(src, "// Code generated by wiregen. DO NOT EDIT.\n// source: smash.d.ts\n\n"+Runtime()))
	assert.True(t, strings.HasSuffix(src, "export const SchemaFingerprint = \""+fp+"\";\n"))
	for _, want := range []string{
		"/** Sent by the browser. */\nexport type ClientMessage =\n  | { tag: 1; value: CompleteRequest }\n",
		"export const ClientMessageTag = {\n  CompleteRequest: 1,\n  RunRequest: 2,\n  KeyEvent: 3,\n} as const;",
		"  exitCode: number;\n",
		"  cursor: TermCursor;\n",
		"  completions: string[];\n",
		"    w.array(v.rows, (x) => writeRowSpans(w, x));\n",
		"    spans: r.array(() => readSpan(r)),\n",
		"    w.uint8(v.attr);\n",
		"    hidden: r.boolean(),\n",
		"export function decodeServerMsg(bytes: Uint8Array): ServerMsg {",
	} {
		assert.Contains(t, src, want)
	}
	assert.NotContains(t, src, "ignored")
	assert.NotContains(t, src, "interface int")
}

func TestRuntimeSurface(t *testing.T) {
	rt := Runtime()
	for _, want := range []string{
		"export class EncodeError extends Error",
		"export class DecodeError extends Error",
		"export class Writer",
		"export class Reader",
		`new TextDecoder("utf-8", { fatal: true, ignoreBOM: true })`,
		"let cap = this.buf.length * 2;",
		"unexpected end of input",
	} {
		assert.Contains(t, rt, want)
	}
}

// TestEmitTypeChecks runs the TypeScript compiler over the smash output when
// one is installed.
func TestEmitTypeChecks(t *testing.T) {
	if testing.Short() {
		t.Skip("runs tsc")
	}
	tsc, err := exec.LookPath("tsc")
	if err != nil {
		t.Skip("tsc not on PATH")
	}

	s, err := compiler.Compile("smash.d.ts", testutil.Fixture(t, "smash.d.ts"))
	require.NoError(t, err)
	out, err := New().Emit(s, emit.Options{})
	require.NoError(t, err)

	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "smash.ts", out)
	cmd := exec.Command(tsc, "--noEmit", "--strict", "--target", "es2020", "--lib", "es2020,dom", path)
	got, err := cmd.CombinedOutput()
	assert.NoError(t, err, string(got))
}
