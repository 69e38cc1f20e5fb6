package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/wiregen/internal/codec"
	"github.com/roach88/wiregen/internal/compiler"
	"github.com/roach88/wiregen/internal/ir"
	"github.com/roach88/wiregen/internal/testutil"
	"github.com/roach88/wiregen/internal/wire"
)

func pairSuite(t *testing.T, cases ...Case) *Suite {
	t.Helper()
	path := testutil.WriteFile(t, t.TempDir(), "pair.d.ts", []byte(pairSchema))
	return &Suite{Name: "pair", Schema: path, Cases: cases}
}

func TestRun_SmashVectors(t *testing.T) {
	suite, err := Load(testutil.FixturePath(t, "vectors/smash.yaml"))
	require.NoError(t, err)

	result, err := Run(suite)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	assert.Len(t, result.Cases, len(suite.Cases))

	schema, err := compiler.CompileFile(suite.Schema)
	require.NoError(t, err)
	fp, err := ir.Fingerprint(schema)
	require.NoError(t, err)
	assert.Equal(t, fp, result.Fingerprint)
}

func TestRun_EveryStrictPrefixIsShort(t *testing.T) {
	suite, err := Load(testutil.FixturePath(t, "vectors/smash.yaml"))
	require.NoError(t, err)
	schema, err := compiler.CompileFile(suite.Schema)
	require.NoError(t, err)

	checked := 0
	for _, c := range suite.Cases {
		if c.Kind() != KindRoundTrip {
			continue
		}
		data, err := c.Bytes()
		require.NoError(t, err, c.Name)
		for i := 1; i < len(data); i++ {
			_, err := codec.Decode(schema, c.Decl, data[:i])
			assert.ErrorIs(t, err, wire.ErrShortInput, "%s: %d of %d bytes", c.Name, i, len(data))
			checked++
		}
		n, err := firstWholePrefix(schema, c.Decl, data)
		assert.Zero(t, n, "%s: %v", c.Name, err)
	}
	assert.Positive(t, checked)
}

func TestRun_RoundTripResult(t *testing.T) {
	suite := pairSuite(t, Case{
		Name:  "ab",
		Decl:  "Pair",
		Value: map[string]any{"key": "a", "val": "b"},
		Hex:   "0001 61 0001 62",
	})

	result, err := Run(suite)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Cases, 1)

	c := result.Cases[0]
	assert.True(t, c.Pass)
	assert.Equal(t, "000161000162", c.Hex)
	assert.JSONEq(t, `{"key":"a","val":"b"}`, string(c.Value))
	assert.Empty(t, c.Error)
}

func TestRun_UppercaseHex(t *testing.T) {
	suite := pairSuite(t, Case{
		Name:  "upper",
		Decl:  "Pair",
		Value: map[string]any{"key": "", "val": "ÿ"},
		Hex:   "0000 0002 C3BF",
	})

	result, err := Run(suite)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_Mismatches(t *testing.T) {
	tests := []struct {
		name string
		c    Case
		want string
	}{
		{
			name: "wrong bytes",
			c:    Case{Name: "c", Decl: "Pair", Value: map[string]any{"key": "a", "val": "b"}, Hex: "0001 61 0001 63"},
			want: "c: encode: got 000161000162, want 000161000163",
		},
		{
			name: "wrong value",
			c:    Case{Name: "c", Decl: "Pair", Value: map[string]any{"key": "a", "val": "c"}, Hex: "0001 61 0001 62"},
			want: `c: decode: got {"key":"a","val":"b"}, want {"key":"a","val":"c"}`,
		},
		{
			name: "unencodable value",
			c:    Case{Name: "c", Decl: "Pair", Value: map[string]any{"key": "a"}, Hex: "0001 61"},
			want: `c: encode: encode Pair: codec: missing field "val"`,
		},
		{
			name: "float value",
			c:    Case{Name: "c", Decl: "Pair", Value: 1.5, Hex: "00"},
			want: "c: value: floats are not values: 1.5",
		},
		{
			name: "decode succeeds",
			c:    Case{Name: "c", Decl: "Pair", Hex: "0000 0000", DecodeError: "unexpected end"},
			want: `c: decode: got {"key":"","val":""}, want error containing "unexpected end"`,
		},
		{
			name: "other decode error",
			c:    Case{Name: "c", Decl: "Pair", Hex: "00", DecodeError: "invalid UTF-8"},
			want: `c: decode: error "decode string at offset 0: wire: unexpected end of input" does not contain "invalid UTF-8"`,
		},
		{
			name: "encode succeeds",
			c:    Case{Name: "c", Decl: "Pair", Value: map[string]any{"key": "", "val": ""}, EncodeError: "out of range"},
			want: `c: encode: got 00000000, want error containing "out of range"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Run(pairSuite(t, tt.c))
			require.NoError(t, err)
			assert.False(t, result.Pass)
			require.Len(t, result.Cases, 1)
			assert.False(t, result.Cases[0].Pass)
			assert.Contains(t, result.Errors, tt.want)
		})
	}
}

func TestRun_SchemaError(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "bad.d.ts", []byte("interface A { x: number }\n"))
	_, err := Run(&Suite{Name: "bad", Schema: path, Cases: []Case{{Name: "c", Decl: "A", Hex: "", DecodeError: "x"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile schema")
}
