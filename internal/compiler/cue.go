package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/parser"
	"cuelang.org/go/cue/token"

	"github.com/roach88/wiregen/internal/ir"
)

// ParseCUE reads a schema written in CUE syntax. The file is parsed, never
// evaluated:
//
//	#Pair: { key: string, val: string }   struct
//	#Msg: #Hello | #Pair                   union
//	int: uint16                            alias
//	names: [...string]                     array field
//
// A leading "#" on definitions is dropped, and "bool" reads as boolean.
// Parsing stops at the first error and returns no schema.
func ParseCUE(filename string, src []byte) (*ir.Schema, error) {
	f, err := parser.ParseFile(filename, src, parser.ParseComments)
	if err != nil {
		return nil, formatCUEError(filename, err)
	}

	c := &cueReader{schema: ir.NewSchema(filename)}
	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.Package, *ast.CommentGroup:
			continue
		case *ast.Field:
			if err := c.field(d); err != nil {
				return nil, err
			}
		default:
			return nil, c.unhandled(decl, "")
		}
	}
	return c.schema, nil
}

type cueReader struct {
	schema *ir.Schema
}

func (c *cueReader) field(f *ast.Field) error {
	name, ok := labelName(f.Label)
	if !ok {
		return c.unhandled(f.Label, "")
	}
	if f.Constraint != token.ILLEGAL {
		return c.unhandled(f, name)
	}
	pos := cuePos(f.Label.Pos())
	doc := docOf(f)

	switch v := f.Value.(type) {
	case *ast.StructLit:
		fields, err := c.structFields(v, name)
		if err != nil {
			return err
		}
		s, err := ir.NewStruct(fields, cuePos(v.Pos()))
		if err != nil {
			return ir.InDecl(err, name)
		}
		return ir.InDecl(c.schema.AddDecl(&ir.Decl{Name: name, Body: s, Pos: pos, Doc: doc}), name)

	case *ast.BinaryExpr:
		if v.Op != token.OR {
			return c.unhandled(v, name)
		}
		var variants []ir.Type
		for _, x := range flattenOr(v) {
			t, err := c.typeExpr(x, name)
			if err != nil {
				return err
			}
			variants = append(variants, t)
		}
		u, err := ir.NewUnion(variants, cuePos(v.Pos()))
		if err != nil {
			return ir.InDecl(err, name)
		}
		return ir.InDecl(c.schema.AddDecl(&ir.Decl{Name: name, Body: u, Pos: pos, Doc: doc}), name)

	case *ast.Ident:
		t, err := c.typeExpr(v, name)
		if err != nil {
			return err
		}
		return ir.InDecl(c.schema.AddAlias(&ir.Alias{Name: name, Target: t.(ir.Ref), Pos: pos}), name)
	}
	return c.unhandled(f.Value, name)
}

func (c *cueReader) structFields(s *ast.StructLit, decl string) ([]ir.Field, error) {
	var fields []ir.Field
	for _, elt := range s.Elts {
		switch e := elt.(type) {
		case *ast.CommentGroup:
			continue
		case *ast.Field:
			name, ok := labelName(e.Label)
			if !ok || strings.HasPrefix(name, "#") {
				return nil, c.unhandled(e.Label, decl)
			}
			if e.Constraint != token.ILLEGAL {
				return nil, c.unhandled(e, decl)
			}
			t, err := c.typeExpr(e.Value, decl)
			if err != nil {
				return nil, err
			}
			fields = append(fields, ir.Field{
				Name: name,
				Type: t,
				Pos:  cuePos(e.Label.Pos()),
				Doc:  docOf(e),
			})
		default:
			return nil, c.unhandled(elt, decl)
		}
	}
	return fields, nil
}

// typeExpr reads an identifier or a "[...T]" list of one.
func (c *cueReader) typeExpr(x ast.Expr, decl string) (ir.Type, error) {
	switch e := x.(type) {
	case *ast.Ident:
		name := strings.TrimPrefix(e.Name, "#")
		if name == "bool" {
			name = string(ir.Boolean)
		}
		return ir.Ref{Name: name, Pos: cuePos(e.Pos())}, nil
	case *ast.ListLit:
		if len(e.Elts) != 1 {
			return nil, c.unhandled(e, decl)
		}
		ellipsis, ok := e.Elts[0].(*ast.Ellipsis)
		if !ok || ellipsis.Type == nil {
			return nil, c.unhandled(e, decl)
		}
		elem, err := c.typeExpr(ellipsis.Type, decl)
		if err != nil {
			return nil, err
		}
		arr, err := ir.NewArray(elem, cuePos(e.Pos()))
		if err != nil {
			return nil, ir.InDecl(err, decl)
		}
		return arr, nil
	}
	return nil, c.unhandled(x, decl)
}

func (c *cueReader) unhandled(n ast.Node, decl string) error {
	kind := strings.TrimPrefix(fmt.Sprintf("%T", n), "*ast.")
	if f, ok := n.(*ast.Field); ok && f.Constraint != token.ILLEGAL {
		kind = "OptionalField"
	}
	if b, ok := n.(*ast.BinaryExpr); ok && b.Op == token.OR {
		kind = "Disjunction"
	}
	return &ir.Error{Code: ir.ErrUnhandled, Kind: kind, Pos: cuePos(n.Pos()), Decl: decl}
}

// flattenOr returns the operands of a left-nested "|" chain in order.
func flattenOr(b *ast.BinaryExpr) []ast.Expr {
	var out []ast.Expr
	if left, ok := b.X.(*ast.BinaryExpr); ok && left.Op == token.OR {
		out = flattenOr(left)
	} else {
		out = []ast.Expr{b.X}
	}
	return append(out, b.Y)
}

func labelName(l ast.Label) (string, bool) {
	ident, ok := l.(*ast.Ident)
	if !ok {
		return "", false
	}
	return strings.TrimPrefix(ident.Name, "#"), true
}

func docOf(n ast.Node) string {
	var lines []string
	for _, cg := range ast.Comments(n) {
		if cg.Doc {
			lines = append(lines, strings.TrimSpace(cg.Text()))
		}
	}
	return strings.Join(lines, "\n")
}

func cuePos(p token.Pos) ir.Pos {
	if !p.IsValid() {
		return ir.Pos{}
	}
	return ir.Pos{File: p.Filename(), Line: p.Line(), Col: p.Column()}
}

// formatCUEError converts the first CUE parse error into a schema error.
func formatCUEError(filename string, err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return ir.Errorf(ir.ErrSyntax, ir.Pos{File: filename}, "%v", err)
	}
	first := errs[0]
	pos := ir.Pos{File: filename}
	if positions := errors.Positions(first); len(positions) > 0 {
		pos = cuePos(positions[0])
	}
	format, args := first.Msg()
	return ir.Errorf(ir.ErrSyntax, pos, format, args...)
}
