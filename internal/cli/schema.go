package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/roach88/wiregen/internal/compiler"
	"github.com/roach88/wiregen/internal/ir"
)

// compileSchema reads and compiles a schema file. An unreadable file is a
// command error; schema errors are written to stderr one per line and
// returned as a failure.
func compileSchema(path string, stderr io.Writer, log zerolog.Logger) (*ir.Schema, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "read schema", err)
	}
	log.Debug().Str("schema", path).Int("bytes", len(src)).Msg("compiling schema")

	schema, err := compiler.Compile(filepath.ToSlash(path), src)
	if err != nil {
		lines := compiler.Diagnostics(err)
		for _, line := range lines {
			fmt.Fprintln(stderr, line)
		}
		log.Debug().Int("errors", len(lines)).Msg("schema rejected")
		return nil, &ExitError{
			Code:     ExitFailure,
			Message:  fmt.Sprintf("%s: %d schema error(s)", path, len(lines)),
			Err:      err,
			Reported: true,
		}
	}
	log.Debug().
		Int("decls", len(schema.Decls())).
		Int("aliases", len(schema.Aliases())).
		Msg("schema compiled")
	return schema, nil
}

// schemaErrors extracts the individual schema errors from a compile error.
func schemaErrors(err error) []*ir.Error {
	var list ir.ErrorList
	if errors.As(err, &list) {
		return list
	}
	var one *ir.Error
	if errors.As(err, &one) {
		return []*ir.Error{one}
	}
	return nil
}
