package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/wiregen/internal/emit"
)

// EmitOptions holds flags for a target command.
type EmitOptions struct {
	*RootOptions
	Output  string // file to write; stdout when empty
	Package string // package name for targets that have one
}

// NewEmitCommand creates the command generating code for one target.
func NewEmitCommand(rootOpts *RootOptions, e emit.Emitter) *cobra.Command {
	opts := &EmitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   e.Name() + " <schema-file>",
		Short: fmt.Sprintf("Generate a %s codec (%s)", e.Name(), e.FileExtension()),
		Long: fmt.Sprintf(`Compile the schema and write the generated %s codec to stdout, or
atomically to the file named by --output.

Nothing is written if the schema has errors.`, e.Name()),
		Args:          usageArgs(cobra.ExactArgs(1)),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmit(opts, e, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().StringVar(&opts.Package, "package", "", fmt.Sprintf("package name (default %q; ignored by targets without packages)", emit.DefaultPackage))

	return cmd
}

func runEmit(opts *EmitOptions, e emit.Emitter, schemaPath string, cmd *cobra.Command) error {
	log := opts.Logger(cmd, "").With().Str("target", e.Name()).Logger()

	schema, err := compileSchema(schemaPath, cmd.ErrOrStderr(), log)
	if err != nil {
		return err
	}

	src, err := e.Emit(schema, emit.Options{Package: opts.Package})
	if err != nil {
		return WrapExitError(ExitFailure, "generate "+e.Name(), err)
	}

	if opts.Output == "" {
		_, err := cmd.OutOrStdout().Write(src)
		return err
	}
	if err := writeFileAtomic(opts.Output, src); err != nil {
		return WrapExitError(ExitFailure, "write output", err)
	}
	log.Info().Str("path", opts.Output).Int("bytes", len(src)).Msg("wrote output")
	return nil
}
