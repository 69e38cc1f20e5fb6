// Package typescript emits a self-contained TypeScript codec module.
package typescript

import (
	_ "embed"
	"fmt"

	"github.com/roach88/wiregen/internal/emit"
	"github.com/roach88/wiregen/internal/ir"
)

//go:embed runtime.ts
var runtime string

func init() {
	emit.Register(New())
}

// Emitter generates TypeScript source.
type Emitter struct{}

// New creates a TypeScript emitter.
func New() *Emitter {
	return &Emitter{}
}

func (e *Emitter) Name() string { return "ts" }

func (e *Emitter) FileExtension() string { return ".ts" }

// Emit renders the module. opts.Package is ignored.
func (e *Emitter) Emit(schema *ir.Schema, opts emit.Options) ([]byte, error) {
	opts = opts.WithDefaults(schema)
	body, err := Declarations(schema)
	if err != nil {
		return nil, err
	}
	fp, err := ir.Fingerprint(schema)
	if err != nil {
		return nil, err
	}
	src := emit.Header("//", opts.Source) + "\n" + runtime + "\n" + body +
		fmt.Sprintf("export const SchemaFingerprint = %q;\n", fp)
	return []byte(src), nil
}

// Runtime returns the embedded reader/writer runtime.
func Runtime() string {
	return runtime
}

// Declarations renders the schema-specific part of the module.
func Declarations(schema *ir.Schema) (string, error) {
	g := &generator{schema: schema, p: emit.NewPrinter("  ")}
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

var tsPrimitive = map[ir.Primitive]string{
	ir.Boolean: "boolean",
	ir.Uint8:   "number",
	ir.Uint16:  "number",
	ir.String:  "string",
}

func (g *generator) tsType(t ir.Type) string {
	switch t := t.(type) {
	case ir.Array:
		return g.tsType(t.Elem) + "[]"
	case ir.Ref:
		r := g.resolve(t)
		if r.IsPrimitive() {
			return tsPrimitive[r.Primitive]
		}
		return r.Name()
	}
	return "unknown"
}

func (g *generator) doc(doc string) {
	lines := emit.DocLines(doc)
	switch len(lines) {
	case 0:
	case 1:
		g.p.P("/** ", lines[0], " */")
	default:
		g.p.P("/**")
		for _, line := range lines {
			if line == "" {
				g.p.P(" *")
			} else {
				g.p.P(" * ", line)
			}
		}
		g.p.P(" */")
	}
}

// write returns a statement writing x of type t to w.
func (g *generator) write(x string, t ir.Type) string {
	switch t := t.(type) {
	case ir.Array:
		return "w.array(" + x + ", (x) => " + g.writeCall("x", t.Elem) + ")"
	case ir.Ref:
		return g.writeCall(x, t)
	}
	return ""
}

func (g *generator) writeCall(x string, ref ir.Ref) string {
	r := g.resolve(ref)
	if r.IsPrimitive() {
		return "w." + string(r.Primitive) + "(" + x + ")"
	}
	return "write" + r.Decl.Name + "(w, " + x + ")"
}

// read returns an expression reading a t from r.
func (g *generator) read(t ir.Type) string {
	switch t := t.(type) {
	case ir.Array:
		return "r.array(() => " + g.readCall(t.Elem) + ")"
	case ir.Ref:
		return g.readCall(t)
	}
	return ""
}

func (g *generator) readCall(ref ir.Ref) string {
	r := g.resolve(ref)
	if r.IsPrimitive() {
		return "r." + string(r.Primitive) + "()"
	}
	return "read" + r.Decl.Name + "(r)"
}

func (g *generator) structDecl(d *ir.Decl, st *ir.Struct) {
	p := g.p
	g.doc(d.Doc)
	p.P("export interface ", d.Name, " {")
	p.In()
	for _, f := range st.Fields {
		g.doc(f.Doc)
		p.P(f.Name, ": ", g.tsType(f.Type), ";")
	}
	p.Out()
	p.P("}")
	p.P()

	p.P("export function write", d.Name, "(w: Writer, v: ", d.Name, "): void {")
	p.In()
	p.P("w.atomic(() => {")
	p.In()
	for _, f := range st.Fields {
		p.P(g.write("v."+f.Name, f.Type), ";")
	}
	p.Out()
	p.P("});")
	p.Out()
	p.P("}")
	p.P()

	p.P("export function read", d.Name, "(r: Reader): ", d.Name, " {")
	p.In()
	p.P("return r.atomic((): ", d.Name, " => ({")
	p.In()
	for _, f := range st.Fields {
		p.P(f.Name, ": ", g.read(f.Type), ",")
	}
	p.Out()
	p.P("}));")
	p.Out()
	p.P("}")
	p.P()
}

func (g *generator) unionDecl(d *ir.Decl, u *ir.Union) {
	p := g.p
	names := g.schema.VariantNames(u)

	p.P("export const ", d.Name, "Tag = {")
	p.In()
	for i, name := range names {
		p.P(name, ": ", fmt.Sprint(i+1), ",")
	}
	p.Out()
	p.P("} as const;")
	p.P()

	g.doc(d.Doc)
	p.P("export type ", d.Name, " =")
	p.In()
	for i, name := range names {
		line := fmt.Sprintf("| { tag: %d; value: %s }", i+1, name)
		if i == len(names)-1 {
			line += ";"
		}
		p.P(line)
	}
	p.Out()
	p.P()

	p.P("export function write", d.Name, "(w: Writer, v: ", d.Name, "): void {")
	p.In()
	p.P("w.atomic(() => {")
	p.In()
	p.P("switch (v.tag) {")
	p.In()
	for i, name := range names {
		p.P(fmt.Sprintf("case %d:", i+1))
		p.In()
		p.P("if (v.value === undefined || v.value === null) break;")
		p.P(fmt.Sprintf("w.uint8(%d);", i+1))
		p.P("write", name, "(w, v.value);")
		p.P("return;")
		p.Out()
	}
	p.Out()
	p.P("}")
	p.P(fmt.Sprintf("throw new EncodeError(%q, `union has no variant set (tag ${(v as { tag: unknown }).tag})`);", d.Name))
	p.Out()
	p.P("});")
	p.Out()
	p.P("}")
	p.P()

	p.P("export function read", d.Name, "(r: Reader): ", d.Name, " {")
	p.In()
	p.P("return r.atomic((): ", d.Name, " => {")
	p.In()
	p.P(fmt.Sprintf("const tag = r.tag(%q);", d.Name))
	p.P("switch (tag) {")
	p.In()
	for i, name := range names {
		p.P(fmt.Sprintf("case %d:", i+1))
		p.In()
		p.P(fmt.Sprintf("return { tag: %d, value: read%s(r) };", i+1, name))
		p.Out()
	}
	p.Out()
	p.P("}")
	p.P(fmt.Sprintf("throw r.unknownTag(%q, tag);", d.Name))
	p.Out()
	p.P("});")
	p.Out()
	p.P("}")
	p.P()
}

func (g *generator) entryPoints(d *ir.Decl) {
	p := g.p
	p.P("export function encode", d.Name, "(v: ", d.Name, "): Uint8Array {")
	p.In()
	p.P("const w = new Writer();")
	p.P("write", d.Name, "(w, v);")
	p.P("return w.bytes();")
	p.Out()
	p.P("}")
	p.P()

	p.P("export function decode", d.Name, "(bytes: Uint8Array): ", d.Name, " {")
	p.In()
	p.P("const r = new Reader(bytes);")
	p.P("const v = read", d.Name, "(r);")
	p.P(fmt.Sprintf("r.end(%q);", d.Name))
	p.P("return v;")
	p.Out()
	p.P("}")
	p.P()
}
