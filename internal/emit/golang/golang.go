// Package golang emits a self-contained Go codec package for a schema.
//
// The output is one file: the wire runtime from internal/wire, then for each
// declaration a type, a Buffer.WriteX and Cursor.ReadX method, and the
// MarshalX/UnmarshalX entry points. It imports only the standard library.
package golang

import (
	"fmt"
	"go/format"
	"go/token"

	"github.com/roach88/wiregen/internal/emit"
	"github.com/roach88/wiregen/internal/ir"
	"github.com/roach88/wiregen/internal/wire"
)

func init() {
	emit.Register(New())
}

// Emitter generates Go source.
type Emitter struct{}

// New creates a Go emitter.
func New() *Emitter {
	return &Emitter{}
}

func (e *Emitter) Name() string { return "go" }

func (e *Emitter) FileExtension() string { return ".go" }

// Emit renders the package and runs it through go/format.
func (e *Emitter) Emit(schema *ir.Schema, opts emit.Options) ([]byte, error) {
	opts = opts.WithDefaults(schema)
	if !token.IsIdentifier(opts.Package) || opts.Package == "_" {
		return nil, fmt.Errorf("go: invalid package name %q", opts.Package)
	}

	runtime, err := wire.Runtime(opts.Package)
	if err != nil {
		return nil, err
	}
	body, err := Declarations(schema)
	if err != nil {
		return nil, err
	}
	fp, err := ir.Fingerprint(schema)
	if err != nil {
		return nil, err
	}

	src := emit.Header("//", opts.Source) + "\n" + runtime + "\n" + body +
		"\n// SchemaFingerprint identifies the wire layout this file was generated from.\n" +
		fmt.Sprintf("const SchemaFingerprint = %q\n", fp)

	out, err := format.Source([]byte(src))
	if err != nil {
		return nil, fmt.Errorf("go: format generated source: %w", err)
	}
	return out, nil
}

// Declarations renders the schema-specific part of the file, unformatted.
func Declarations(schema *ir.Schema) (string, error) {
	g := &generator{schema: schema, p: emit.NewPrinter("\t")}
	for _, d := range schema.Decls() {
		if st, ok := d.Struct(); ok {
			g.structDecl(d, st)
		} else {
			u, _ := d.Union()
			g.unionDecl(d, u)
		}
		g.entryPoints(d)
	}
	if g.err != nil {
		return "", g.err
	}
	return g.p.String(), nil
}

type generator struct {
	schema *ir.Schema
	p      *emit.Printer
	err    error
}

func (g *generator) resolve(ref ir.Ref) ir.Resolved {
	r, err := g.schema.Resolve(ref)
	if err != nil && g.err == nil {
		g.err = err
	}
	return r
}

var goPrimitive = map[ir.Primitive]string{
	ir.Boolean: "bool",
	ir.Uint8:   "uint8",
	ir.Uint16:  "uint16",
	ir.String:  "string",
}

func (g *generator) goType(t ir.Type) string {
	switch t := t.(type) {
	case ir.Array:
		return "[]" + g.goType(t.Elem)
	case ir.Ref:
		r := g.resolve(t)
		if r.IsPrimitive() {
			return goPrimitive[r.Primitive]
		}
		return r.Name()
	}
	return "any"
}

// suffix is the Write/Read method suffix for a resolved type.
func suffix(r ir.Resolved) string {
	if r.IsPrimitive() {
		return ir.ExportedName(string(r.Primitive))
	}
	return r.Decl.Name
}

func (g *generator) doc(doc string) {
	for _, line := range emit.DocLines(doc) {
		g.p.P("// ", line)
	}
}

func (g *generator) structDecl(d *ir.Decl, st *ir.Struct) {
	p := g.p
	g.doc(d.Doc)
	p.P("type ", d.Name, " struct {")
	p.In()
	for _, f := range st.Fields {
		g.doc(f.Doc)
		p.P(ir.ExportedName(f.Name), " ", g.goType(f.Type))
	}
	p.Out()
	p.P("}")
	p.P()

	p.P("// Write", d.Name, " appends the encoding of v. On error nothing is appended.")
	p.P("func (b *Buffer) Write", d.Name, "(v *", d.Name, ") (err error) {")
	p.In()
	p.P("defer b.rollback(b.Len(), &err)")
	for _, f := range st.Fields {
		g.writeField("v."+ir.ExportedName(f.Name), f.Type)
	}
	p.P("return nil")
	p.Out()
	p.P("}")
	p.P()

	p.P("// Read", d.Name, " decodes a ", d.Name, ". On error the cursor does not move.")
	p.P("func (c *Cursor) Read", d.Name, "() (v ", d.Name, ", err error) {")
	p.In()
	p.P("defer c.restore(c.off, &err)")
	for _, f := range st.Fields {
		p.P("if v.", ir.ExportedName(f.Name), ", err = ", g.readExpr(f.Type), "; err != nil {")
		p.In()
		p.P("return ", d.Name, "{}, err")
		p.Out()
		p.P("}")
	}
	p.P("return v, nil")
	p.Out()
	p.P("}")
	p.P()
}

func (g *generator) writeField(x string, t ir.Type) {
	p := g.p
	var call string
	switch t := t.(type) {
	case ir.Array:
		r := g.resolve(t.Elem)
		elem := "(*Buffer).Write" + suffix(r)
		if r.IsPrimitive() {
			elem = "write" + suffix(r) + "Elem"
		}
		call = "writeArray(b, " + x + ", " + elem + ")"
	case ir.Ref:
		r := g.resolve(t)
		switch {
		case !r.IsPrimitive():
			call = "b.Write" + r.Decl.Name + "(&" + x + ")"
		case r.Primitive == ir.String:
			call = "b.WriteString(" + x + ")"
		default:
			p.P("b.Write", suffix(r), "(", x, ")")
			return
		}
	}
	p.P("if err = ", call, "; err != nil {")
	p.In()
	p.P("return err")
	p.Out()
	p.P("}")
}

func (g *generator) readExpr(t ir.Type) string {
	switch t := t.(type) {
	case ir.Array:
		return "readArray(c, (*Cursor).Read" + suffix(g.resolve(t.Elem)) + ")"
	case ir.Ref:
		return "c.Read" + suffix(g.resolve(t)) + "()"
	}
	return ""
}

func (g *generator) unionDecl(d *ir.Decl, u *ir.Union) {
	p := g.p
	names := g.schema.VariantNames(u)
	tag := d.Name + "Tag"

	p.P("// ", tag, " selects the variant held by a ", d.Name, ". Zero means none.")
	p.P("type ", tag, " uint8")
	p.P()
	p.P("const (")
	p.In()
	for i, name := range names {
		p.P(d.Name, name, " ", tag, " = ", fmt.Sprint(i+1))
	}
	p.Out()
	p.P(")")
	p.P()

	g.doc(d.Doc)
	p.P("type ", d.Name, " struct {")
	p.In()
	p.P("Tag ", tag)
	for _, name := range names {
		p.P(name, " *", name)
	}
	p.Out()
	p.P("}")
	p.P()

	for _, name := range names {
		p.P("func New", d.Name, name, "(v ", name, ") ", d.Name, " {")
		p.In()
		p.P("return ", d.Name, "{Tag: ", d.Name, name, ", ", name, ": &v}")
		p.Out()
		p.P("}")
		p.P()
	}

	p.P("// Write", d.Name, " appends the tag and payload of v. A tag with no payload")
	p.P("// is an error.")
	p.P("func (b *Buffer) Write", d.Name, "(v *", d.Name, ") (err error) {")
	p.In()
	p.P("defer b.rollback(b.Len(), &err)")
	p.P("switch v.Tag {")
	for _, name := range names {
		p.P("case ", d.Name, name, ":")
		p.In()
		p.P("if v.", name, " == nil {")
		p.In()
		p.P("break")
		p.Out()
		p.P("}")
		p.P("b.WriteUint8(uint8(v.Tag))")
		p.P("return b.Write", name, "(v.", name, ")")
		p.Out()
	}
	p.P("}")
	p.P("return noVariant(", fmt.Sprintf("%q", d.Name), ", uint8(v.Tag))")
	p.Out()
	p.P("}")
	p.P()

	p.P("func (c *Cursor) Read", d.Name, "() (v ", d.Name, ", err error) {")
	p.In()
	p.P("defer c.restore(c.off, &err)")
	p.P("tag, err := c.readTag(", fmt.Sprintf("%q", d.Name), ")")
	p.P("if err != nil {")
	p.In()
	p.P("return ", d.Name, "{}, err")
	p.Out()
	p.P("}")
	p.P("switch ", tag, "(tag) {")
	for _, name := range names {
		p.P("case ", d.Name, name, ":")
		p.In()
		p.P("var x ", name)
		p.P("if x, err = c.Read", name, "(); err != nil {")
		p.In()
		p.P("return ", d.Name, "{}, err")
		p.Out()
		p.P("}")
		p.P("return New", d.Name, name, "(x), nil")
		p.Out()
	}
	p.P("}")
	p.P("return ", d.Name, "{}, c.unknownTag(", fmt.Sprintf("%q", d.Name), ", tag)")
	p.Out()
	p.P("}")
	p.P()
}

func (g *generator) entryPoints(d *ir.Decl) {
	p := g.p
	p.P("// Marshal", d.Name, " encodes v as a complete message.")
	p.P("func Marshal", d.Name, "(v *", d.Name, ") ([]byte, error) {")
	p.In()
	p.P("var b Buffer")
	p.P("if err := b.Write", d.Name, "(v); err != nil {")
	p.In()
	p.P("return nil, err")
	p.Out()
	p.P("}")
	p.P("return b.Bytes(), nil")
	p.Out()
	p.P("}")
	p.P()

	p.P("// Unmarshal", d.Name, " decodes a complete message. Trailing bytes are an error.")
	p.P("func Unmarshal", d.Name, "(data []byte) (", d.Name, ", error) {")
	p.In()
	p.P("c := NewCursor(data)")
	p.P("v, err := c.Read", d.Name, "()")
	p.P("if err != nil {")
	p.In()
	p.P("return ", d.Name, "{}, err")
	p.Out()
	p.P("}")
	p.P("if err := c.expectEnd(", fmt.Sprintf("%q", d.Name), "); err != nil {")
	p.In()
	p.P("return ", d.Name, "{}, err")
	p.Out()
	p.P("}")
	p.P("return v, nil")
	p.Out()
	p.P("}")
	p.P()
}
