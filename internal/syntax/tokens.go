package syntax

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/roach88/wiregen/internal/ir"
)

type TokenKind uint8

const (
	T_EOF TokenKind = iota

	T_NEWLINE
	T_DOC

	T_COLON
	T_SEMI
	T_COMMA
	T_DOT
	T_EQ
	T_PIPE
	T_AMP
	T_QUESTION
	T_LT
	T_GT

	T_OPEN_CURL
	T_CLOSE_CURL
	T_OPEN_PAREN
	T_CLOSE_PAREN
	T_OPEN_SQUARE
	T_CLOSE_SQUARE

	T_STRING_LIT
	T_NUMBER_LIT

	T_IDENT
	T_OTHER
)

func (k TokenKind) String() string {
	switch k {
	case T_EOF:
		return "EOF"
	case T_NEWLINE:
		return "NEWLINE"
	case T_DOC:
		return "DOC"
	case T_COLON:
		return "COLON"
	case T_SEMI:
		return "SEMI"
	case T_COMMA:
		return "COMMA"
	case T_DOT:
		return "DOT"
	case T_EQ:
		return "EQ"
	case T_PIPE:
		return "PIPE"
	case T_AMP:
		return "AMP"
	case T_QUESTION:
		return "QUESTION"
	case T_LT:
		return "LT"
	case T_GT:
		return "GT"
	case T_OPEN_CURL:
		return "OPEN_CURL"
	case T_CLOSE_CURL:
		return "CLOSE_CURL"
	case T_OPEN_PAREN:
		return "OPEN_PAREN"
	case T_CLOSE_PAREN:
		return "CLOSE_PAREN"
	case T_OPEN_SQUARE:
		return "OPEN_SQUARE"
	case T_CLOSE_SQUARE:
		return "CLOSE_SQUARE"
	case T_STRING_LIT:
		return "STRING_LIT"
	case T_NUMBER_LIT:
		return "NUMBER_LIT"
	case T_IDENT:
		return "IDENT"
	case T_OTHER:
		return "OTHER"
	default:
		return fmt.Sprintf("TokenKind(%d)", uint8(k))
	}
}

// syntaxKind names a token the way TypeScript's SyntaxKind does, for
// "unhandled" diagnostics.
func (k TokenKind) syntaxKind() string {
	switch k {
	case T_EOF:
		return "EndOfFileToken"
	case T_COLON:
		return "ColonToken"
	case T_SEMI:
		return "SemicolonToken"
	case T_COMMA:
		return "CommaToken"
	case T_DOT:
		return "DotToken"
	case T_EQ:
		return "EqualsToken"
	case T_PIPE:
		return "BarToken"
	case T_AMP:
		return "AmpersandToken"
	case T_QUESTION:
		return "QuestionToken"
	case T_LT:
		return "LessThanToken"
	case T_GT:
		return "GreaterThanToken"
	case T_OPEN_CURL:
		return "OpenBraceToken"
	case T_CLOSE_CURL:
		return "CloseBraceToken"
	case T_OPEN_PAREN:
		return "OpenParenToken"
	case T_CLOSE_PAREN:
		return "CloseParenToken"
	case T_OPEN_SQUARE:
		return "OpenBracketToken"
	case T_CLOSE_SQUARE:
		return "CloseBracketToken"
	case T_STRING_LIT:
		return "StringLiteral"
	case T_NUMBER_LIT:
		return "NumericLiteral"
	case T_IDENT:
		return "Identifier"
	default:
		return "Unknown"
	}
}

type Token struct {
	Kind TokenKind
	Text string
	Pos  ir.Pos
}

var punct = map[byte]TokenKind{
	':': T_COLON,
	';': T_SEMI,
	',': T_COMMA,
	'.': T_DOT,
	'=': T_EQ,
	'|': T_PIPE,
	'&': T_AMP,
	'?': T_QUESTION,
	'<': T_LT,
	'>': T_GT,
	'{': T_OPEN_CURL,
	'}': T_CLOSE_CURL,
	'(': T_OPEN_PAREN,
	')': T_CLOSE_PAREN,
	'[': T_OPEN_SQUARE,
	']': T_CLOSE_SQUARE,
}

type lexer struct {
	file string
	src  []byte
	off  int
	line int
	col  int
	toks []Token
}

// Tokenize splits schema source into tokens. Ordinary comments and spaces
// are dropped; "/** */" comments become T_DOC tokens holding the cleaned
// text. The last token is always T_EOF.
func Tokenize(file string, src []byte) ([]Token, error) {
	if !utf8.Valid(src) {
		return nil, ir.Errorf(ir.ErrSyntax, ir.Pos{File: file}, "source is not valid UTF-8")
	}
	lx := &lexer{file: file, src: src, line: 1, col: 1}
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		lx.toks = append(lx.toks, tok)
		if tok.Kind == T_EOF {
			return lx.toks, nil
		}
	}
}

func (lx *lexer) pos() ir.Pos {
	return ir.Pos{File: lx.file, Line: lx.line, Col: lx.col}
}

func (lx *lexer) advance(n int) {
	for i := 0; i < n; i++ {
		if lx.src[lx.off] == '\n' {
			lx.line++
			lx.col = 1
		} else {
			lx.col++
		}
		lx.off++
	}
}

func (lx *lexer) next() (Token, error) {
	for lx.off < len(lx.src) {
		c := lx.src[lx.off]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			lx.advance(1)
		case c == '\n':
			pos := lx.pos()
			lx.advance(1)
			return Token{Kind: T_NEWLINE, Text: "\n", Pos: pos}, nil
		case c == '/' && lx.peekByte(1) == '/':
			for lx.off < len(lx.src) && lx.src[lx.off] != '\n' {
				lx.advance(1)
			}
		case c == '/' && lx.peekByte(1) == '*':
			return lx.blockComment()
		default:
			return lx.token()
		}
	}
	return Token{Kind: T_EOF, Pos: lx.pos()}, nil
}

func (lx *lexer) peekByte(n int) byte {
	if lx.off+n < len(lx.src) {
		return lx.src[lx.off+n]
	}
	return 0
}

func (lx *lexer) blockComment() (Token, error) {
	pos := lx.pos()
	end := strings.Index(string(lx.src[lx.off+2:]), "*/")
	if end < 0 {
		return Token{}, ir.Errorf(ir.ErrSyntax, pos, "unterminated comment")
	}
	body := string(lx.src[lx.off+2 : lx.off+2+end])
	lx.advance(end + 4)

	if strings.HasPrefix(body, "*") && body != "*" {
		return Token{Kind: T_DOC, Text: cleanDoc(body[1:]), Pos: pos}, nil
	}
	if strings.Contains(body, "\n") {
		return Token{Kind: T_NEWLINE, Text: "\n", Pos: pos}, nil
	}
	return lx.next()
}

// cleanDoc strips the leading "*" decoration from each line of a doc
// comment.
func cleanDoc(body string) string {
	lines := strings.Split(body, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		out = append(out, strings.TrimSpace(line))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func (lx *lexer) token() (Token, error) {
	pos := lx.pos()
	c := lx.src[lx.off]

	if kind, ok := punct[c]; ok {
		lx.advance(1)
		return Token{Kind: kind, Text: string(c), Pos: pos}, nil
	}

	switch {
	case c == '"' || c == '\'' || c == '`':
		return lx.stringLit(pos, c)
	case '0' <= c && c <= '9':
		start := lx.off
		for lx.off < len(lx.src) && isNumberByte(lx.src[lx.off]) {
			lx.advance(1)
		}
		return Token{Kind: T_NUMBER_LIT, Text: string(lx.src[start:lx.off]), Pos: pos}, nil
	}

	r, size := utf8.DecodeRune(lx.src[lx.off:])
	if !isIdentStart(r) {
		lx.advance(size)
		return Token{Kind: T_OTHER, Text: string(r), Pos: pos}, nil
	}
	start := lx.off
	for lx.off < len(lx.src) {
		r, size = utf8.DecodeRune(lx.src[lx.off:])
		if !isIdentStart(r) && !unicode.IsDigit(r) {
			break
		}
		lx.off += size
		lx.col += size
	}
	return Token{Kind: T_IDENT, Text: string(lx.src[start:lx.off]), Pos: pos}, nil
}

func (lx *lexer) stringLit(pos ir.Pos, quote byte) (Token, error) {
	start := lx.off
	lx.advance(1)
	for lx.off < len(lx.src) {
		c := lx.src[lx.off]
		switch {
		case c == '\\' && lx.off+1 < len(lx.src):
			lx.advance(2)
		case c == quote:
			lx.advance(1)
			return Token{Kind: T_STRING_LIT, Text: string(lx.src[start:lx.off]), Pos: pos}, nil
		case c == '\n' && quote != '`':
			return Token{}, ir.Errorf(ir.ErrSyntax, pos, "unterminated string literal")
		default:
			lx.advance(1)
		}
	}
	return Token{}, ir.Errorf(ir.ErrSyntax, pos, "unterminated string literal")
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isNumberByte(c byte) bool {
	return c == '.' || c == '_' || '0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}
