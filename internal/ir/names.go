package ir

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// reserved holds identifiers the generated runtimes define at top level in
// either target, plus the union payload field name.
var reserved = map[string]bool{
	// Go runtime
	"Buffer":           true,
	"Cursor":           true,
	"NewBuffer":        true,
	"NewCursor":        true,
	"EncodeError":      true,
	"DecodeError":      true,
	"MaxStringLen":     true,
	"MaxArrayLen":      true,
	"ErrShortInput":    true,
	"ErrUnknownTag":    true,
	"ErrInvalidBool":   true,
	"ErrInvalidUTF8":   true,
	"ErrStringTooLong": true,
	"ErrArrayTooLong":  true,
	"ErrTrailingBytes": true,
	"ErrNoVariant":     true,
	"ErrOutOfRange":    true,

	// primitive codec method suffixes
	"Boolean": true,
	"Uint8":   true,
	"Uint16":  true,
	"String":  true,

	// TypeScript runtime and globals
	"Writer":            true,
	"Reader":            true,
	"Array":             true,
	"Uint8Array":        true,
	"DataView":          true,
	"TextEncoder":       true,
	"TextDecoder":       true,
	"Error":             true,
	"RangeError":        true,
	"Number":            true,
	"Object":            true,
	"Math":              true,
	"MAX_STRING_LEN":    true,
	"MAX_ARRAY_LEN":     true,
	"Tag":               true,
	"SchemaFingerprint": true,
}

// IsReserved reports whether name clashes with a runtime identifier.
func IsReserved(name string) bool {
	return reserved[name]
}

// IsIdent reports whether s matches [A-Za-z_][A-Za-z0-9_]*.
func IsIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		case i > 0 && '0' <= r && r <= '9':
		default:
			return false
		}
	}
	return true
}

// ExportedName upper-cases the first letter of an identifier, leaving the rest
// untouched: "exitCode" becomes "ExitCode".
func ExportedName(s string) string {
	// Identifiers are a single word under Unicode segmentation, so Title
	// only touches the first rune.
	return cases.Title(language.Und, cases.NoLower).String(s)
}

// GoNames returns the top-level Go identifiers generated for d. Struct
// fields and Buffer/Cursor methods are scoped and not included.
func (s *Schema) GoNames(d *Decl) []string {
	names := []string{d.Name, "Marshal" + d.Name, "Unmarshal" + d.Name}
	if u, ok := d.Union(); ok {
		names = append(names, d.Name+"Tag")
		for _, v := range s.VariantNames(u) {
			names = append(names, d.Name+v, "New"+d.Name+v)
		}
	}
	return names
}

// TSNames returns the top-level TypeScript identifiers generated for d.
func (s *Schema) TSNames(d *Decl) []string {
	names := []string{d.Name, "write" + d.Name, "read" + d.Name, "encode" + d.Name, "decode" + d.Name}
	if _, ok := d.Union(); ok {
		names = append(names, d.Name+"Tag")
	}
	return names
}
