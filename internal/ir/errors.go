package ir

import (
	"fmt"
	"strings"
)

// Schema error codes (E200-E299)
const (
	// Surface syntax (E200-E209)
	ErrUnhandled = "E200" // construct outside the schema dialect
	ErrSyntax    = "E201" // malformed token stream

	// Declaration shape (E210-E219)
	ErrEmptyBody      = "E210" // struct or union without members
	ErrNestedType     = "E211" // array or union member that is not a Ref
	ErrDuplicateField = "E212" // field name repeated, also after capitalisation
	ErrDuplicateDecl  = "E213" // declaration or alias name repeated
	ErrInvalidName    = "E214" // not an identifier of the required shape
	ErrReservedName   = "E215" // clashes with a runtime identifier

	// Whole-schema (E220-E229)
	ErrUnresolved       = "E220" // reference to an unknown name
	ErrAliasCycle       = "E221" // alias chain loops or redefines a primitive
	ErrPrimitiveVariant = "E222" // union variant resolves to a primitive
	ErrDuplicateVariant = "E223" // union names the same declaration twice
	ErrRecursiveStruct  = "E224" // struct contains itself by value
	ErrNameCollision    = "E225" // generated identifiers collide
	ErrUninhabited      = "E226" // declaration has no finite value
)

// Error is a schema error. It is fatal to a compilation: any Error prevents
// emission.
//
// When Kind is set the error names an unsupported construct and renders as
// "<pos>: unhandled <Kind>". Otherwise it renders "<pos>: <Message>".
type Error struct {
	Code    string `json:"code"`
	Decl    string `json:"decl,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
	Pos     Pos    `json:"pos"`
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Pos.String())
	b.WriteString(": ")
	if e.Kind != "" {
		b.WriteString("unhandled ")
		b.WriteString(e.Kind)
		if e.Message != "" {
			b.WriteString(" (")
			b.WriteString(e.Message)
			b.WriteString(")")
		}
	} else {
		b.WriteString(e.Message)
	}
	if e.Decl != "" {
		b.WriteString(" in ")
		b.WriteString(e.Decl)
	}
	return b.String()
}

// Unhandled reports a construct outside the schema dialect.
func Unhandled(pos Pos, kind string) *Error {
	return &Error{Code: ErrUnhandled, Kind: kind, Pos: pos}
}

// Errorf builds an Error with a formatted message.
func Errorf(code string, pos Pos, format string, args ...any) *Error {
	return &Error{Code: code, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// InDecl records the enclosing declaration on err if it is an *Error that
// does not carry one yet. Other errors are returned unchanged.
func InDecl(err error, decl string) error {
	if e, ok := err.(*Error); ok && e.Decl == "" {
		e.Decl = decl
	}
	return err
}

// ErrorList collects every error found by Validate.
type ErrorList []*Error

func (l ErrorList) Error() string {
	lines := make([]string, len(l))
	for i, e := range l {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

// Err returns l as an error, or nil when l is empty.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}
