package syntax

import (
	"github.com/roach88/wiregen/internal/ir"
)

// Error is a schema error with position, enclosing declaration, and (for
// unsupported constructs) the construct kind.
type Error = ir.Error

// keywordKinds maps type-position keywords outside the dialect to the
// construct kind reported for them.
var keywordKinds = map[string]string{
	"number":    "NumberKeyword",
	"any":       "AnyKeyword",
	"unknown":   "UnknownKeyword",
	"never":     "NeverKeyword",
	"null":      "NullKeyword",
	"undefined": "UndefinedKeyword",
	"object":    "ObjectKeyword",
	"bigint":    "BigIntKeyword",
	"symbol":    "SymbolKeyword",
	"void":      "VoidKeyword",
	"true":      "LiteralType",
	"false":     "LiteralType",
	"this":      "ThisType",
	"typeof":    "TypeQuery",
	"keyof":     "TypeOperator",
	"readonly":  "TypeOperator",
	"infer":     "InferType",
}

// statementKinds maps top-level keywords outside the dialect to the
// construct kind reported for them.
var statementKinds = map[string]string{
	"class":     "ClassDeclaration",
	"abstract":  "ClassDeclaration",
	"enum":      "EnumDeclaration",
	"function":  "FunctionDeclaration",
	"const":     "VariableStatement",
	"let":       "VariableStatement",
	"var":       "VariableStatement",
	"import":    "ImportDeclaration",
	"namespace": "ModuleDeclaration",
	"module":    "ModuleDeclaration",
	"global":    "ModuleDeclaration",
	"default":   "ExportAssignment",
}

// numberAliases are the primitive declarations a .d.ts schema may carry so
// that TypeScript tooling accepts the file. They are skipped.
var numberAliases = map[string]bool{"uint8": true, "uint16": true}

type parser struct {
	toks   []Token
	i      int
	schema *ir.Schema
	decl   string
}

// Parse reads a TypeScript-declaration schema:
//
//	type Name = A | B | C;          union, variants in written order
//	interface Name { f: T; g: U[] } struct, fields in written order
//	type Name = Ref;                alias, resolved by name, not emitted
//
// Parsing stops at the first error and returns no schema.
func Parse(file string, src []byte) (*ir.Schema, error) {
	toks, err := Tokenize(file, src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, schema: ir.NewSchema(file)}
	for {
		doc := p.skipTrivia(T_SEMI)
		if p.peek().Kind == T_EOF {
			return p.schema, nil
		}
		if err := p.parseDecl(doc); err != nil {
			return nil, err
		}
	}
}

func (p *parser) peek() Token { return p.toks[p.i] }

func (p *parser) peekAt(n int) Token {
	if p.i+n < len(p.toks) {
		return p.toks[p.i+n]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) next() Token {
	tok := p.toks[p.i]
	if tok.Kind != T_EOF {
		p.i++
	}
	return tok
}

func (p *parser) accept(kind TokenKind) bool {
	if p.peek().Kind == kind {
		p.next()
		return true
	}
	return false
}

// skipTrivia skips newlines, doc comments and the extra separator kinds,
// returning the last doc comment seen.
func (p *parser) skipTrivia(extra ...TokenKind) string {
	doc := ""
	for {
		tok := p.peek()
		switch {
		case tok.Kind == T_NEWLINE:
		case tok.Kind == T_DOC:
			doc = tok.Text
		case containsKind(extra, tok.Kind):
			doc = ""
		default:
			return doc
		}
		p.next()
	}
}

func (p *parser) skipNewlines() {
	for p.peek().Kind == T_NEWLINE || p.peek().Kind == T_DOC {
		p.next()
	}
}

// continues reports whether the next significant token, possibly on a later
// line, is kind. If so the newlines and the token are consumed.
func (p *parser) continues(kind TokenKind) (Token, bool) {
	j := p.i
	for p.toks[j].Kind == T_NEWLINE {
		j++
	}
	if p.toks[j].Kind != kind {
		return Token{}, false
	}
	p.i = j + 1
	return p.toks[j], true
}

func (p *parser) unhandled(tok Token, kind string) error {
	return &ir.Error{Code: ir.ErrUnhandled, Kind: kind, Pos: tok.Pos, Decl: p.decl}
}

func (p *parser) expected(what string, tok Token) error {
	found := tok.Text
	if tok.Kind == T_NEWLINE {
		found = "newline"
	} else if tok.Kind == T_EOF {
		found = "end of file"
	}
	return &ir.Error{Code: ir.ErrSyntax, Pos: tok.Pos, Decl: p.decl,
		Message: "expected " + what + ", found " + quoteToken(found)}
}

func (p *parser) fail(err error) error {
	return ir.InDecl(err, p.decl)
}

func (p *parser) expectIdent() (Token, error) {
	tok := p.next()
	if tok.Kind != T_IDENT {
		return tok, p.expected("identifier", tok)
	}
	return tok, nil
}

func (p *parser) expect(kind TokenKind, what string) (Token, error) {
	tok := p.next()
	if tok.Kind != kind {
		return tok, p.expected(what, tok)
	}
	return tok, nil
}

func (p *parser) parseDecl(doc string) error {
	for p.peek().Kind == T_IDENT && (p.peek().Text == "export" || p.peek().Text == "declare") {
		p.next()
	}
	tok := p.next()
	if tok.Kind != T_IDENT {
		return p.unhandled(tok, tok.Kind.syntaxKind())
	}
	switch tok.Text {
	case "type":
		return p.parseTypeAlias(doc)
	case "interface":
		return p.parseInterface(doc)
	}
	if kind, ok := statementKinds[tok.Text]; ok {
		return p.unhandled(tok, kind)
	}
	return p.unhandled(tok, "ExpressionStatement")
}

// endStatement consumes the end of a top-level declaration.
func (p *parser) endStatement() error {
	switch tok := p.peek(); tok.Kind {
	case T_SEMI, T_NEWLINE:
		p.next()
		return nil
	case T_EOF:
		return nil
	default:
		return p.expected("';'", tok)
	}
}

func (p *parser) parseTypeAlias(doc string) error {
	name, err := p.expectIdent()
	if err != nil {
		return err
	}
	p.decl = name.Text
	defer func() { p.decl = "" }()

	if p.peek().Kind == T_LT {
		return p.unhandled(p.peek(), "TypeParameter")
	}
	if _, err := p.expect(T_EQ, "'='"); err != nil {
		return err
	}
	p.skipNewlines()

	if numberAliases[name.Text] && p.peek().Text == "number" {
		switch p.peekAt(1).Kind {
		case T_SEMI, T_NEWLINE, T_EOF:
			p.next()
			return p.endStatement()
		}
	}

	leading, isUnion := p.continues(T_PIPE)
	start := p.peek()
	if isUnion {
		start = leading
		p.skipNewlines()
	}

	var members []ir.Type
	for {
		t, err := p.parseType()
		if err != nil {
			return err
		}
		members = append(members, t)
		if tok, ok := p.continues(T_AMP); ok {
			return p.unhandled(tok, "IntersectionType")
		}
		if _, ok := p.continues(T_PIPE); !ok {
			break
		}
		isUnion = true
		p.skipNewlines()
	}
	if err := p.endStatement(); err != nil {
		return err
	}

	if !isUnion {
		switch t := members[0].(type) {
		case ir.Ref:
			return p.fail(p.schema.AddAlias(&ir.Alias{Name: name.Text, Target: t, Pos: name.Pos}))
		default:
			return p.unhandled(start, "ArrayType")
		}
	}

	u, err := ir.NewUnion(members, start.Pos)
	if err != nil {
		return p.fail(err)
	}
	return p.fail(p.schema.AddDecl(&ir.Decl{Name: name.Text, Body: u, Pos: name.Pos, Doc: doc}))
}

func (p *parser) parseInterface(doc string) error {
	name, err := p.expectIdent()
	if err != nil {
		return err
	}
	p.decl = name.Text
	defer func() { p.decl = "" }()

	switch tok := p.peek(); {
	case tok.Kind == T_LT:
		return p.unhandled(tok, "TypeParameter")
	case tok.Kind == T_IDENT && (tok.Text == "extends" || tok.Text == "implements"):
		return p.unhandled(tok, "HeritageClause")
	}
	p.skipNewlines()
	open, err := p.expect(T_OPEN_CURL, "'{'")
	if err != nil {
		return err
	}

	var fields []ir.Field
	for {
		fdoc := p.skipTrivia(T_SEMI, T_COMMA)
		if p.accept(T_CLOSE_CURL) {
			break
		}
		if p.peek().Kind == T_EOF {
			return p.expected("'}'", p.peek())
		}
		f, err := p.parseMember(fdoc)
		if err != nil {
			return err
		}
		fields = append(fields, f)

		switch tok := p.peek(); tok.Kind {
		case T_SEMI, T_COMMA, T_NEWLINE:
			p.next()
		case T_CLOSE_CURL:
		default:
			return p.expected("';'", tok)
		}
	}
	p.accept(T_SEMI)

	s, err := ir.NewStruct(fields, open.Pos)
	if err != nil {
		return p.fail(err)
	}
	return p.fail(p.schema.AddDecl(&ir.Decl{Name: name.Text, Body: s, Pos: name.Pos, Doc: doc}))
}

func (p *parser) parseMember(doc string) (ir.Field, error) {
	tok := p.next()
	switch tok.Kind {
	case T_OPEN_SQUARE:
		return ir.Field{}, p.unhandled(tok, "IndexSignature")
	case T_OPEN_PAREN, T_LT:
		return ir.Field{}, p.unhandled(tok, "CallSignature")
	case T_IDENT:
	default:
		return ir.Field{}, p.unhandled(tok, tok.Kind.syntaxKind())
	}

	if tok.Text == "readonly" && p.peek().Kind == T_IDENT {
		tok = p.next()
	}
	switch next := p.peek(); next.Kind {
	case T_QUESTION:
		return ir.Field{}, p.unhandled(tok, "OptionalProperty")
	case T_OPEN_PAREN, T_LT:
		if tok.Text == "new" {
			return ir.Field{}, p.unhandled(tok, "ConstructSignature")
		}
		return ir.Field{}, p.unhandled(tok, "MethodSignature")
	case T_IDENT:
		if tok.Text == "get" || tok.Text == "set" {
			return ir.Field{}, p.unhandled(tok, "AccessorDeclaration")
		}
		return ir.Field{}, p.expected("':'", next)
	case T_COLON:
		p.next()
	default:
		return ir.Field{}, p.expected("':'", next)
	}
	p.skipNewlines()

	t, err := p.parseType()
	if err != nil {
		return ir.Field{}, err
	}
	if bar, ok := p.continues(T_PIPE); ok {
		return ir.Field{}, p.unhandled(bar, "UnionType")
	}
	if amp, ok := p.continues(T_AMP); ok {
		return ir.Field{}, p.unhandled(amp, "IntersectionType")
	}
	return ir.Field{Name: tok.Text, Type: t, Pos: tok.Pos, Doc: doc}, nil
}

// parseType reads a Ref optionally followed by one "[]".
func (p *parser) parseType() (ir.Type, error) {
	tok := p.next()
	var t ir.Type
	switch tok.Kind {
	case T_IDENT:
		if kind, ok := keywordKinds[tok.Text]; ok {
			return nil, p.unhandled(tok, kind)
		}
		switch next := p.peek(); next.Kind {
		case T_LT:
			return nil, p.unhandled(tok, "TypeReference")
		case T_DOT:
			return nil, p.unhandled(tok, "QualifiedName")
		}
		t = ir.Ref{Name: tok.Text, Pos: tok.Pos}
	case T_OPEN_CURL:
		return nil, p.unhandled(tok, "TypeLiteral")
	case T_OPEN_PAREN:
		return nil, p.unhandled(tok, "ParenthesizedType")
	case T_OPEN_SQUARE:
		return nil, p.unhandled(tok, "TupleType")
	case T_STRING_LIT, T_NUMBER_LIT:
		return nil, p.unhandled(tok, "LiteralType")
	default:
		return nil, p.expected("type", tok)
	}

	for p.peek().Kind == T_OPEN_SQUARE {
		open := p.next()
		if p.peek().Kind != T_CLOSE_SQUARE {
			return nil, p.unhandled(open, "IndexedAccessType")
		}
		p.next()
		arr, err := ir.NewArray(t, open.Pos)
		if err != nil {
			return nil, p.fail(err)
		}
		t = arr
	}
	return t, nil
}

func containsKind(kinds []TokenKind, k TokenKind) bool {
	for _, kind := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}

func quoteToken(s string) string {
	if s == "newline" || s == "end of file" {
		return s
	}
	return "'" + s + "'"
}
