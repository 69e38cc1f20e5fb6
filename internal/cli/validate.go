package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/wiregen/internal/compiler"
	"github.com/roach88/wiregen/internal/ir"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Print bool // print the schema in normalised form
}

// DeclSummary describes one declaration of a valid schema.
type DeclSummary struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Members int    `json:"members"` // fields or variants
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid        bool          `json:"valid"`
	File         string        `json:"file"`
	Fingerprint  string        `json:"fingerprint,omitempty"`
	Declarations []DeclSummary `json:"declarations,omitempty"`
	Aliases      []string      `json:"aliases,omitempty"`
	Errors       []*ir.Error   `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <schema-file>",
		Short: "Check a schema without generating code",
		Long: `Parse and validate a schema, then print its declarations and wire
layout fingerprint.

Schema errors are printed as <file>:<line>:<col>: <message> lines on stderr
in text mode, or as an error response in JSON mode.`,
		Args:          usageArgs(cobra.ExactArgs(1)),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Print, "print", false, "print the schema in normalised declaration form")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	log := opts.Logger(cmd, "")

	src, err := os.ReadFile(path)
	if err != nil {
		if formatter.Format == "json" {
			_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		}
		return &ExitError{Code: ExitCommandError, Message: "read schema", Err: err, Reported: formatter.Format == "json"}
	}
	formatter.VerboseLog("Validating %s (%d bytes)", path, len(src))

	schema, err := compiler.Compile(filepath.ToSlash(path), src)
	if err != nil {
		return outputValidationErrors(formatter, path, err)
	}
	log.Debug().Str("schema", path).Int("decls", len(schema.Decls())).Msg("schema valid")

	fp, err := ir.Fingerprint(schema)
	if err != nil {
		return err
	}
	result := ValidationResult{Valid: true, File: path, Fingerprint: fp}
	for _, d := range schema.Decls() {
		s := DeclSummary{Name: d.Name}
		if st, ok := d.Struct(); ok {
			s.Kind, s.Members = string(ir.KindStruct), len(st.Fields)
		} else if u, ok := d.Union(); ok {
			s.Kind, s.Members = string(ir.KindUnion), len(u.Variants)
		}
		result.Declarations = append(result.Declarations, s)
	}
	for _, a := range schema.Aliases() {
		result.Aliases = append(result.Aliases, a.Name)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return outputValidateText(formatter, result, schema, opts.Print)
}

func outputValidateText(formatter *OutputFormatter, result ValidationResult, schema *ir.Schema, printSchema bool) error {
	w := formatter.Writer
	fmt.Fprintf(w, "✓ %s: %d declaration(s), %d alias(es)\n", result.File, len(result.Declarations), len(result.Aliases))
	for _, d := range result.Declarations {
		unit := "field"
		if d.Kind == string(ir.KindUnion) {
			unit = "variant"
		}
		fmt.Fprintf(w, "  %-6s %s (%d %s(s))\n", d.Kind, d.Name, d.Members, unit)
	}
	fmt.Fprintf(w, "fingerprint %s\n", result.Fingerprint)
	if printSchema {
		fmt.Fprintln(w)
		fmt.Fprint(w, ir.Format(schema))
	}
	return nil
}

// outputValidationErrors reports schema errors: one line each on stderr in
// text mode, an error response on stdout in JSON mode.
func outputValidationErrors(formatter *OutputFormatter, path string, err error) error {
	errs := schemaErrors(err)
	if formatter.Format == "json" {
		code, message := ErrCodeGeneric, err.Error()
		if len(errs) > 0 {
			code, message = errs[0].Code, errs[0].Error()
		}
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, File: path, Errors: errs},
			Error:  &CLIError{Code: code, Message: message},
		}
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
	} else {
		for _, line := range compiler.Diagnostics(err) {
			fmt.Fprintln(formatter.GetErrWriter(), line)
		}
	}

	n := len(errs)
	if n == 0 {
		n = 1
	}
	return &ExitError{
		Code:     ExitFailure,
		Message:  fmt.Sprintf("validation failed with %d error(s)", n),
		Err:      err,
		Reported: true,
	}
}
