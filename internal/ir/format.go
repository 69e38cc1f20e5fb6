package ir

import (
	"strings"
)

// Format renders s in the TypeScript-declaration dialect: aliases first,
// then declarations in source order. Parsing the result yields an
// equivalent schema.
func Format(s *Schema) string {
	var b strings.Builder
	for _, a := range s.aliases {
		b.WriteString("type " + a.Name + " = " + a.Target.Name + ";\n")
	}
	for i, d := range s.decls {
		if i > 0 || len(s.aliases) > 0 {
			b.WriteString("\n")
		}
		writeDoc(&b, "", d.Doc)
		switch body := d.Body.(type) {
		case *Union:
			names := make([]string, len(body.Variants))
			for i, v := range body.Variants {
				names[i] = v.Name
			}
			b.WriteString("type " + d.Name + " = ")
			if len(names) == 1 {
				b.WriteString("| ")
			}
			b.WriteString(strings.Join(names, " | ") + ";\n")
		case *Struct:
			b.WriteString("interface " + d.Name + " {\n")
			for _, f := range body.Fields {
				writeDoc(&b, "  ", f.Doc)
				b.WriteString("  " + f.Name + ": " + f.Type.String() + ";\n")
			}
			b.WriteString("}\n")
		}
	}
	return b.String()
}

func writeDoc(b *strings.Builder, indent, doc string) {
	if doc == "" {
		return
	}
	lines := strings.Split(doc, "\n")
	if len(lines) == 1 {
		b.WriteString(indent + "/** " + doc + " */\n")
		return
	}
	b.WriteString(indent + "/**\n")
	for _, line := range lines {
		if line == "" {
			b.WriteString(indent + " *\n")
			continue
		}
		b.WriteString(indent + " * " + line + "\n")
	}
	b.WriteString(indent + " */\n")
}
