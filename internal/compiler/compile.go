package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/roach88/wiregen/internal/ir"
	"github.com/roach88/wiregen/internal/syntax"
)

// FrontEnd parses one schema surface into an unvalidated Schema.
type FrontEnd func(filename string, src []byte) (*ir.Schema, error)

// frontEnds maps file suffixes to schema surfaces. Longest suffix wins.
var frontEnds = map[string]FrontEnd{
	".d.ts": syntax.Parse,
	".ts":   syntax.Parse,
	".cue":  ParseCUE,
}

// Extensions lists the schema file suffixes Compile understands.
func Extensions() []string {
	exts := make([]string, 0, len(frontEnds))
	for ext := range frontEnds {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// frontEndFor picks the parser for filename, defaulting to the TypeScript
// declaration dialect.
func frontEndFor(filename string) FrontEnd {
	best := ""
	for ext := range frontEnds {
		if strings.HasSuffix(filename, ext) && len(ext) > len(best) {
			best = ext
		}
	}
	if best == "" {
		return syntax.Parse
	}
	return frontEnds[best]
}

// Compile parses src with the front-end for filename's suffix, then runs
// ir.Validate. Any error means no code may be emitted: parser errors are a
// single *ir.Error, validation failures an ir.ErrorList.
func Compile(filename string, src []byte) (*ir.Schema, error) {
	schema, err := frontEndFor(filename)(filename, src)
	if err != nil {
		return nil, err
	}
	if errs := ir.Validate(schema); len(errs) > 0 {
		return nil, errs
	}
	return schema, nil
}

// CompileFile reads and compiles a schema file. Diagnostics carry the path
// as given.
func CompileFile(path string) (*ir.Schema, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return Compile(filepath.ToSlash(path), src)
}

// Diagnostics flattens a compile error into one line per schema error.
// Errors that are not schema errors yield their message.
func Diagnostics(err error) []string {
	switch e := err.(type) {
	case nil:
		return nil
	case ir.ErrorList:
		lines := make([]string, len(e))
		for i, item := range e {
			lines[i] = item.Error()
		}
		return lines
	default:
		return []string{err.Error()}
	}
}
