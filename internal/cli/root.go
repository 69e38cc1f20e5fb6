package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/roach88/wiregen/internal/emit"
	_ "github.com/roach88/wiregen/internal/emit/golang"
	_ "github.com/roach88/wiregen/internal/emit/typescript"
	"github.com/roach88/wiregen/internal/ir"
	"github.com/roach88/wiregen/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// RunIDs and Getenv feed the logger. Nil means the process defaults.
	RunIDs logging.RunIDSource
	Getenv func(string) string

	logger *zerolog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Logger returns the invocation's logger, writing to the command's stderr.
// level is the configured level name; the first call fixes it.
func (o *RootOptions) Logger(cmd *cobra.Command, level string) zerolog.Logger {
	if o.logger == nil {
		l := logging.New(logging.Options{
			Level:   level,
			Verbose: o.Verbose,
			Out:     cmd.ErrOrStderr(),
			RunIDs:  o.RunIDs,
			Getenv:  o.Getenv,
		})
		o.logger = &l
	}
	return *o.logger
}

// NewRootCommand creates the root command for the wiregen CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wiregen <target> <schema-file>",
		Short: "wiregen - binary message codecs from one schema",
		Long: `Generate matching Go and TypeScript encoders and decoders for a
compact binary wire format from a single schema file.

Schemas are written as TypeScript declarations (.d.ts) or CUE (.cue).

Exit codes:
  0 - Success
  1 - Schema error, stale output, failed vectors or bad input bytes
  2 - Usage error`,
		Example: `  wiregen go proto/smash.d.ts -o server/proto/smash.go
  wiregen ts proto/smash.d.ts > web/src/proto.ts
  wiregen build --check`,
		Version:       fmt.Sprintf("%s (wire format %s)", ir.GeneratorVersion, ir.WireVersion),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return usageError(cmd, fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return usageError(cmd, errors.New("missing target"))
			}
			return usageError(cmd, fmt.Errorf("unknown target or command %q (targets: %v)", args[0], emit.Available()))
		},
	}
	cmd.SetFlagErrorFunc(usageError)

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logs on stderr)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	for _, name := range emit.Available() {
		e, _ := emit.Get(name)
		cmd.AddCommand(NewEmitCommand(opts, e))
	}
	cmd.AddCommand(NewTargetsCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewBuildCommand(opts))
	cmd.AddCommand(NewEncodeCommand(opts))
	cmd.AddCommand(NewDecodeCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// Execute runs the CLI with args and returns the process exit code. Errors
// not already reported by a command are printed to stderr.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	opts := &RootOptions{Getenv: getenv}
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || !exitErr.Reported {
		fmt.Fprintf(stderr, "wiregen: %v\n", err)
	}
	return GetExitCode(err)
}
