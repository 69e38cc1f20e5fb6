package ir

import "fmt"

// Primitive names a built-in wire type.
type Primitive string

const (
	Boolean Primitive = "boolean"
	Uint8   Primitive = "uint8"
	Uint16  Primitive = "uint16"
	String  Primitive = "string"
)

// Primitives lists the built-in types in a fixed order.
var Primitives = []Primitive{Boolean, Uint8, Uint16, String}

// LookupPrimitive reports whether name is a built-in type.
func LookupPrimitive(name string) (Primitive, bool) {
	for _, p := range Primitives {
		if string(p) == name {
			return p, true
		}
	}
	return "", false
}

// Pos is a location in schema source. Line and Col are 1-based; Col counts
// bytes.
type Pos struct {
	File string `json:"file,omitempty"`
	Line int    `json:"line,omitempty"`
	Col  int    `json:"col,omitempty"`
}

// IsValid reports whether the position carries a line.
func (p Pos) IsValid() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	file := p.File
	if file == "" {
		file = "-"
	}
	if !p.IsValid() {
		return file
	}
	return fmt.Sprintf("%s:%d:%d", file, p.Line, p.Col)
}

// Type is the type of a struct field: a Ref or an Array of Ref.
type Type interface {
	isType()
	String() string
}

// Ref names a primitive, an alias, or a declaration.
type Ref struct {
	Name string `json:"name"`
	Pos  Pos    `json:"-"`
}

func (Ref) isType() {}

func (r Ref) String() string { return r.Name }

// Array is a length-prefixed sequence of Elem.
type Array struct {
	Elem Ref `json:"elem"`
}

func (Array) isType() {}

func (a Array) String() string { return a.Elem.Name + "[]" }

// Kind distinguishes declaration bodies.
type Kind string

const (
	KindStruct Kind = "struct"
	KindUnion  Kind = "union"
)

// Body is the right-hand side of a declaration: *Struct or *Union.
type Body interface {
	Kind() Kind
}

// Field is one member of a struct.
type Field struct {
	Name string `json:"name"`
	Type Type   `json:"type"`
	Pos  Pos    `json:"-"`
	Doc  string `json:"-"`
}

// Struct is an ordered, non-empty list of fields.
type Struct struct {
	Fields []Field `json:"fields"`
}

func (*Struct) Kind() Kind { return KindStruct }

// Union is an ordered, non-empty list of variants. Variant i is encoded with
// discriminant i+1.
type Union struct {
	Variants []Ref `json:"variants"`
}

func (*Union) Kind() Kind { return KindUnion }

// Decl is a named, emitted declaration.
type Decl struct {
	Name string
	Body Body
	Pos  Pos
	Doc  string
}

// Struct returns the body as a struct, if it is one.
func (d *Decl) Struct() (*Struct, bool) {
	s, ok := d.Body.(*Struct)
	return s, ok
}

// Union returns the body as a union, if it is one.
func (d *Decl) Union() (*Union, bool) {
	u, ok := d.Body.(*Union)
	return u, ok
}

// Alias is a transparent rename. It is resolved by name and never emitted.
type Alias struct {
	Name   string
	Target Ref
	Pos    Pos
}

// Resolved is the end of an alias chain: exactly one of Primitive or Decl is
// set.
type Resolved struct {
	Primitive Primitive
	Decl      *Decl
}

// IsPrimitive reports whether the reference ended at a built-in type.
func (r Resolved) IsPrimitive() bool {
	return r.Decl == nil
}

// Name returns the primitive or declaration name.
func (r Resolved) Name() string {
	if r.Decl != nil {
		return r.Decl.Name
	}
	return string(r.Primitive)
}
