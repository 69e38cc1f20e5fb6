package value

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	lineSep = string(rune(0x2028))
	paraSep = string(rune(0x2029))
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    Value
		expected string
	}{
		{"string", String("hello"), `"hello"`},
		{"empty string", String(""), `""`},
		{"int", Int(42), "42"},
		{"negative int", Int(-100), "-100"},
		{"max int64", Int(9223372036854775807), "9223372036854775807"},
		{"bool true", Bool(true), "true"},
		{"bool false", Bool(false), "false"},
		{"empty array", Array{}, "[]"},
		{"empty object", Object{}, "{}"},
		{"array of ints", Array{Int(1), Int(2), Int(3)}, "[1,2,3]"},
		{"simple object", Object{"a": Int(1)}, `{"a":1}`},
		{"variant", Variant{Name: "Hello", Value: Object{"msg": String("hi")}}, `{"Hello":{"msg":"hi"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	obj := Object{
		"z": Object{"b": Int(1), "a": Int(2)},
		"a": Int(3),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":3,"z":{"a":2,"b":1}}`, string(result))
}

func TestMarshalCanonicalUTF16Ordering(t *testing.T) {
	// U+10000 encodes as the surrogate pair 0xD800 0xDC00, which sorts
	// before U+E000 in UTF-16 but after it in UTF-8.
	private := string(rune(0xE000))
	astral := string(rune(0x10000))
	obj := Object{private: Int(1), astral: Int(2)}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"`+astral+`":2,"`+private+`":1}`, string(result))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical(Object{"html": String("<b>&</b>")})
	require.NoError(t, err)
	assert.Equal(t, `{"html":"<b>&</b>"}`, string(result))
}

func TestMarshalCanonicalRejectsNull(t *testing.T) {
	_, err := MarshalCanonical(nil)
	require.Error(t, err)

	_, err = MarshalCanonical(Array{Int(1), nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "array[1]")

	_, err = MarshalCanonical(Variant{Name: "Hello"})
	require.Error(t, err)
}

func TestMarshalCanonicalNFCNormalization(t *testing.T) {
	// "e" + combining acute accent composes to U+00E9.
	decomposed := "e" + string(rune(0x0301))
	composed := string(rune(0x00E9))

	result, err := MarshalCanonical(String(decomposed))
	require.NoError(t, err)
	assert.Equal(t, `"`+composed+`"`, string(result))

	result, err = MarshalCanonical(Object{decomposed: Int(1)})
	require.NoError(t, err)
	assert.Equal(t, `{"`+composed+`":1}`, string(result))
}

func TestMarshalCanonicalStringEscaping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`say "hi"`, `"say \"hi\""`},
		{`back\slash`, `"back\\slash"`},
		{"tab\there", `"tab\there"`},
		{"new\nline", `"new\nline"`},
	}
	for _, tt := range tests {
		result, err := MarshalCanonical(String(tt.input))
		require.NoError(t, err)
		assert.Equal(t, tt.expected, string(result))
	}
}

func TestMarshalCanonicalLineSeparatorsNotEscaped(t *testing.T) {
	input := "a" + lineSep + "b" + paraSep + "c"
	result, err := MarshalCanonical(Object{"k" + lineSep: String(input)})
	require.NoError(t, err)
	assert.Equal(t, `{"k`+lineSep+`":"`+input+`"}`, string(result))
	assert.NotContains(t, string(result), `\u2028`)
	assert.NotContains(t, string(result), `\u2029`)
}

func TestMarshalCanonicalLiteralBackslashU2028(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"literal text", `escape is \u2028`, `"escape is \\u2028"`},
		{"literal paragraph text", `escape is \u2029`, `"escape is \\u2029"`},
		{"mixed", `literal \u2028 and actual ` + lineSep, `"literal \\u2028 and actual ` + lineSep + `"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(String(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalIdempotent(t *testing.T) {
	v := Object{
		"argv": Array{String("ls"), String("-l")},
		"cell": Int(3),
		"cwd":  String("/home"),
	}
	first, err := MarshalCanonical(v)
	require.NoError(t, err)

	parsed, err := FromJSON(first)
	require.NoError(t, err)
	second, err := MarshalCanonical(parsed)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(
		Variant{Name: "Pair", Value: Object{"key": String("a"), "val": String("b")}},
		Object{"Pair": Object{"val": String("b"), "key": String("a")}},
	), "a variant and its one-key object form are equal")
	assert.False(t, Equal(Int(1), Int(2)))
	assert.False(t, Equal(nil, nil))
}

func TestCompactOutput(t *testing.T) {
	result, err := MarshalCanonical(Object{"a": Array{Int(1), Object{"b": Bool(true)}}})
	require.NoError(t, err)
	assert.False(t, strings.ContainsAny(string(result), " \n\t"))
}
