package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/roach88/wiregen/internal/config"
	"github.com/roach88/wiregen/internal/emit"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	Config string // project file; found in the working directory when empty
	Check  bool   // compare instead of writing
	Watch  bool   // rebuild on change
}

// Output statuses reported by build.
const (
	StatusWritten   = "written"
	StatusUnchanged = "unchanged"
	StatusStale     = "stale"
)

// OutputResult is the outcome for one configured output.
type OutputResult struct {
	Target string `json:"target"`
	Path   string `json:"path"`
	Status string `json:"status"`
	Diff   string `json:"diff,omitempty"`
}

// BuildResult holds the outcome of one build pass.
type BuildResult struct {
	Config  string         `json:"config"`
	Outputs []OutputResult `json:"outputs"`
	Stale   int            `json:"stale"`
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate every output listed in the project file",
		Long: fmt.Sprintf(`Generate every output listed in the project file (%v, looked up in the
working directory unless --config is given).

All outputs are generated before any file is written; a schema error writes
nothing. Files whose content is unchanged are left alone.

With --check nothing is written. Outputs that differ from the files on disk
are printed as unified diffs and the command exits 1.

With --watch the project file and schema are watched and the build reruns
after each change until interrupted.`, config.DefaultFiles),
		Example: `  wiregen build
  wiregen build -c proto/wiregen.toml
  wiregen build --check
  wiregen build --watch -v`,
		Args:          usageArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Check && opts.Watch {
				return usageError(cmd, errors.New("--check and --watch are mutually exclusive"))
			}
			return runBuild(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "project file")
	cmd.Flags().BoolVar(&opts.Check, "check", false, "report stale outputs with a diff instead of writing")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "rebuild when the project file or schema changes")

	return cmd
}

func runBuild(opts *BuildOptions, cmd *cobra.Command) error {
	path := opts.Config
	if path == "" {
		found, err := config.Find(".")
		if err != nil {
			return WrapExitError(ExitCommandError, "find config", err)
		}
		path = found
	}
	cfg, err := config.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}

	log := opts.Logger(cmd, cfg.LogLevel)
	log.Debug().Str("config", cfg.Path).Int("outputs", len(cfg.Outputs)).Msg("loaded config")

	err = buildOnce(opts, cfg, cmd, log)
	if !opts.Watch {
		return err
	}
	if err != nil {
		reportWatchError(cmd, err)
	}

	w, err := config.NewWatcher(cfg, log)
	if err != nil {
		return WrapExitError(ExitCommandError, "watch", err)
	}
	log.Info().Str("config", cfg.Path).Str("schema", cfg.Schema).Msg("watching for changes")
	return w.Run(cmd.Context(), func(next *config.Config) {
		if err := buildOnce(opts, next, cmd, log); err != nil {
			reportWatchError(cmd, err)
		}
	})
}

// reportWatchError prints a failed pass in watch mode, where the command
// keeps running.
func reportWatchError(cmd *cobra.Command, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Reported {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wiregen: %v\n", err)
}

// generated is one rendered output waiting to be written or compared.
type generated struct {
	out config.Output
	src []byte
}

func buildOnce(opts *BuildOptions, cfg *config.Config, cmd *cobra.Command, log zerolog.Logger) error {
	schema, err := compileSchema(cfg.Schema, cmd.ErrOrStderr(), log)
	if err != nil {
		return err
	}

	source := cfg.Schema
	if rel, err := filepath.Rel(filepath.Dir(cfg.Path), cfg.Schema); err == nil {
		source = filepath.ToSlash(rel)
	}

	var outputs []generated
	for i, out := range cfg.Outputs {
		e, err := emit.Get(out.Target)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("outputs[%d]", i), err)
		}
		src, err := e.Emit(schema, emit.Options{Package: out.Package, Source: source})
		if err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("outputs[%d]: generate %s", i, out.Target), err)
		}
		outputs = append(outputs, generated{out: out, src: src})
	}

	result := BuildResult{Config: cfg.Path}
	for _, g := range outputs {
		r := OutputResult{Target: g.out.Target, Path: g.out.Path}
		if opts.Check {
			diff, err := staleDiff(g.out.Path, g.src)
			if err != nil {
				return WrapExitError(ExitCommandError, "read "+g.out.Path, err)
			}
			r.Status, r.Diff = StatusUnchanged, diff
			if diff != "" {
				r.Status = StatusStale
				result.Stale++
			}
		} else {
			r.Status = StatusUnchanged
			if current, err := os.ReadFile(g.out.Path); err != nil || !bytes.Equal(current, g.src) {
				if err := writeFileAtomic(g.out.Path, g.src); err != nil {
					return WrapExitError(ExitFailure, "write output", err)
				}
				r.Status = StatusWritten
			}
		}
		log.Debug().Str("target", r.Target).Str("path", r.Path).Str("status", r.Status).Msg("output")
		result.Outputs = append(result.Outputs, r)
	}

	if err := outputBuildResult(newFormatter(opts.RootOptions, cmd), result); err != nil {
		return err
	}
	if result.Stale > 0 {
		return &ExitError{
			Code:     ExitFailure,
			Message:  fmt.Sprintf("%d stale output(s)", result.Stale),
			Reported: true,
		}
	}
	return nil
}

func outputBuildResult(formatter *OutputFormatter, result BuildResult) error {
	if formatter.Format == "json" {
		if result.Stale == 0 {
			return formatter.Success(result)
		}
		return json.NewEncoder(formatter.Writer).Encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    ErrCodeStale,
				Message: fmt.Sprintf("%d stale output(s)", result.Stale),
			},
		})
	}
	w := formatter.Writer
	for _, r := range result.Outputs {
		switch r.Status {
		case StatusWritten:
			fmt.Fprintf(w, "✓ %s (%s) written\n", r.Path, r.Target)
		case StatusUnchanged:
			fmt.Fprintf(w, "✓ %s (%s) up to date\n", r.Path, r.Target)
		case StatusStale:
			fmt.Fprintf(w, "✗ %s (%s) is stale\n", r.Path, r.Target)
			fmt.Fprint(w, r.Diff)
		}
	}
	return nil
}
