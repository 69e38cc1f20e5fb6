// Package emit holds the registry of code generation targets.
//
// Each target lives in its own package and registers itself from init, so a
// binary links exactly the targets it imports:
//
//	import _ "github.com/roach88/wiregen/internal/emit/golang"
package emit

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/wiregen/internal/ir"
)

// DefaultPackage is the package name used when Options.Package is empty.
const DefaultPackage = "proto"

// ErrUnknownTarget is returned by Get for a name no emitter registered.
var ErrUnknownTarget = errors.New("unknown target")

// Emitter turns a validated schema into one self-contained source file.
type Emitter interface {
	// Name is the target identifier used on the command line ("go", "ts").
	Name() string

	// FileExtension is the suffix for generated files, including the dot.
	FileExtension() string

	// Emit renders the complete generated file.
	Emit(schema *ir.Schema, opts Options) ([]byte, error)
}

// Options are per-invocation emitter settings.
type Options struct {
	// Package names the generated package. Targets without packages ignore it.
	Package string

	// Source is the schema path recorded in the generated header. Defaults to
	// the schema's file name.
	Source string
}

// WithDefaults fills empty fields from DefaultPackage and the schema.
func (o Options) WithDefaults(schema *ir.Schema) Options {
	if o.Package == "" {
		o.Package = DefaultPackage
	}
	if o.Source == "" {
		o.Source = schema.File
	}
	return o
}

var emitters = make(map[string]Emitter)

// Register adds an emitter to the registry, replacing any with the same name.
func Register(e Emitter) {
	emitters[e.Name()] = e
}

// Get retrieves an emitter by name.
func Get(name string) (Emitter, error) {
	e, ok := emitters[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownTarget, name, strings.Join(Available(), ", "))
	}
	return e, nil
}

// Available returns all registered emitter names, sorted.
func Available() []string {
	names := make([]string, 0, len(emitters))
	for name := range emitters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Header returns the generated-file banner, one comment line per entry,
// using the given line comment prefix.
func Header(comment, source string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Code generated by wiregen. DO NOT EDIT.\n", comment)
	fmt.Fprintf(&b, "%s source: %s\n", comment, source)
	return b.String()
}

// Printer accumulates generated source line by line.
type Printer struct {
	b      strings.Builder
	indent string
	unit   string
}

// NewPrinter returns a Printer that indents with unit.
func NewPrinter(unit string) *Printer {
	return &Printer{unit: unit}
}

// P writes one line at the current indentation. Arguments are formatted with
// fmt.Sprint; an empty call writes a blank line.
func (p *Printer) P(args ...any) {
	line := fmt.Sprint(args...)
	if line != "" {
		p.b.WriteString(p.indent)
		p.b.WriteString(line)
	}
	p.b.WriteByte('\n')
}

// In increases the indentation by one unit.
func (p *Printer) In() { p.indent += p.unit }

// Out decreases the indentation by one unit.
func (p *Printer) Out() { p.indent = strings.TrimPrefix(p.indent, p.unit) }

// Raw writes s unchanged.
func (p *Printer) Raw(s string) { p.b.WriteString(s) }

// String returns everything written so far.
func (p *Printer) String() string { return p.b.String() }

// DocLines splits a declaration or field doc comment into lines.
func DocLines(doc string) []string {
	if doc == "" {
		return nil
	}
	return strings.Split(doc, "\n")
}
