package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smashSchema builds the chat-protocol schema used across the tests.
func smashSchema(t *testing.T) *Schema {
	t.Helper()
	s := NewSchema("smash.d.ts")
	require.NoError(t, s.AddAlias(&Alias{Name: "int", Target: ref("uint16")}))
	add := func(name string, body Body) {
		require.NoError(t, s.AddDecl(&Decl{Name: name, Body: body}))
	}
	add("ClientMessage", mustUnion(t, "CompleteRequest", "RunRequest", "KeyEvent"))
	add("CompleteRequest", mustStruct(t,
		field("id", ref("int")), field("cwd", ref("string")),
		field("input", ref("string")), field("pos", ref("int"))))
	add("RunRequest", mustStruct(t,
		field("cell", ref("int")), field("cwd", ref("string")),
		field("argv", Array{Elem: ref("string")})))
	add("KeyEvent", mustStruct(t, field("cell", ref("int")), field("keys", ref("string"))))
	add("Cursor2", mustStruct(t,
		field("row", ref("int")), field("col", ref("int")), field("hidden", ref("boolean"))))
	return s
}

func TestValidateAcceptsSmash(t *testing.T) {
	s := smashSchema(t)
	assert.Empty(t, Validate(s))
}

func TestValidateReportsAll(t *testing.T) {
	s := NewSchema("bad.d.ts")
	require.NoError(t, s.AddAlias(&Alias{Name: "A1", Target: ref("A2")}))
	require.NoError(t, s.AddAlias(&Alias{Name: "A2", Target: ref("A1")}))
	require.NoError(t, s.AddAlias(&Alias{Name: "num", Target: ref("uint8")}))
	require.NoError(t, s.AddDecl(&Decl{Name: "S", Body: mustStruct(t, field("x", ref("Missing")))}))
	require.NoError(t, s.AddDecl(&Decl{Name: "T", Body: mustStruct(t, field("x", ref("uint8")))}))
	require.NoError(t, s.AddDecl(&Decl{Name: "U", Body: mustUnion(t, "num", "T")}))
	require.NoError(t, s.AddDecl(&Decl{Name: "V", Body: mustUnion(t, "T", "T")}))

	errs := Validate(s)
	codes := make([]string, len(errs))
	for i, e := range errs {
		codes[i] = e.Code
	}
	assert.Contains(t, codes, ErrAliasCycle)
	assert.Contains(t, codes, ErrUnresolved)
	assert.Contains(t, codes, ErrPrimitiveVariant)
	assert.Contains(t, codes, ErrDuplicateVariant)

	for _, e := range errs {
		assert.NotEmpty(t, e.Decl, "every error names its declaration: %s", e)
	}
}

func TestValidateNameCollision(t *testing.T) {
	s := NewSchema("c.d.ts")
	require.NoError(t, s.AddDecl(&Decl{Name: "Msg", Body: mustUnion(t, "Bar")}))
	require.NoError(t, s.AddDecl(&Decl{Name: "Bar", Body: mustStruct(t, field("x", ref("uint8")))}))
	require.NoError(t, s.AddDecl(&Decl{Name: "MsgBar", Body: mustStruct(t, field("x", ref("uint8")))}))

	errs := Validate(s)
	require.NotEmpty(t, errs)
	assert.Equal(t, ErrNameCollision, errs[0].Code)
	assert.Contains(t, errs[0].Message, "MsgBar")

	s = NewSchema("c.d.ts")
	require.NoError(t, s.AddDecl(&Decl{Name: "Out", Body: mustUnion(t, "Bar")}))
	require.NoError(t, s.AddDecl(&Decl{Name: "Bar", Body: mustStruct(t, field("x", ref("uint8")))}))
	require.NoError(t, s.AddDecl(&Decl{Name: "OutTag", Body: mustStruct(t, field("x", ref("uint8")))}))
	errs = Validate(s)
	require.NotEmpty(t, errs)
	assert.Equal(t, ErrNameCollision, errs[0].Code)
}

func TestValidateRecursion(t *testing.T) {
	t.Run("self by value", func(t *testing.T) {
		s := NewSchema("r.d.ts")
		require.NoError(t, s.AddDecl(&Decl{Name: "Node", Body: mustStruct(t, field("next", ref("Node")))}))
		errs := Validate(s)
		require.Len(t, errs, 1)
		assert.Equal(t, ErrRecursiveStruct, errs[0].Code)
		assert.Contains(t, errs[0].Message, "Node -> Node")
	})

	t.Run("mutual by value", func(t *testing.T) {
		s := NewSchema("r.d.ts")
		require.NoError(t, s.AddDecl(&Decl{Name: "A", Body: mustStruct(t, field("b", ref("B")))}))
		require.NoError(t, s.AddDecl(&Decl{Name: "B", Body: mustStruct(t, field("a", ref("A")))}))
		errs := Validate(s)
		require.Len(t, errs, 1)
		assert.Equal(t, ErrRecursiveStruct, errs[0].Code)
	})

	t.Run("array breaks cycle", func(t *testing.T) {
		s := NewSchema("r.d.ts")
		require.NoError(t, s.AddDecl(&Decl{Name: "Tree", Body: mustStruct(t,
			field("label", ref("string")), field("kids", Array{Elem: ref("Tree")}))}))
		assert.Empty(t, Validate(s))
	})

	t.Run("union with base case", func(t *testing.T) {
		s := NewSchema("r.d.ts")
		require.NoError(t, s.AddDecl(&Decl{Name: "Expr", Body: mustUnion(t, "Lit", "Neg")}))
		require.NoError(t, s.AddDecl(&Decl{Name: "Lit", Body: mustStruct(t, field("v", ref("uint8")))}))
		require.NoError(t, s.AddDecl(&Decl{Name: "Neg", Body: mustStruct(t, field("e", ref("Expr")))}))
		assert.Empty(t, Validate(s))
	})

	t.Run("union without base case", func(t *testing.T) {
		s := NewSchema("r.d.ts")
		require.NoError(t, s.AddDecl(&Decl{Name: "Loop", Body: mustUnion(t, "Wrap")}))
		require.NoError(t, s.AddDecl(&Decl{Name: "Wrap", Body: mustStruct(t, field("l", ref("Loop")))}))
		errs := Validate(s)
		require.Len(t, errs, 2)
		assert.Equal(t, ErrUninhabited, errs[0].Code)
		assert.Equal(t, "Loop", errs[0].Decl)
	})
}

func TestExportedName(t *testing.T) {
	tests := map[string]string{
		"exitCode": "ExitCode",
		"id":       "Id",
		"argv":     "Argv",
		"Already":  "Already",
		"a1b":      "A1b",
	}
	for in, want := range tests {
		assert.Equal(t, want, ExportedName(in), in)
	}
}

func TestIsIdent(t *testing.T) {
	assert.True(t, IsIdent("_a1"))
	assert.True(t, IsIdent("Foo"))
	assert.False(t, IsIdent(""))
	assert.False(t, IsIdent("1a"))
	assert.False(t, IsIdent("a.b"))
}
