package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/wiregen/internal/emit"
)

// TargetInfo describes one registered emitter.
type TargetInfo struct {
	Name          string `json:"name"`
	FileExtension string `json:"file_extension"`
}

// NewTargetsCommand creates the targets command.
func NewTargetsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "targets",
		Short:         "List code generation targets",
		Args:          usageArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTargets(rootOpts, cmd)
		},
	}
}

func runTargets(opts *RootOptions, cmd *cobra.Command) error {
	var targets []TargetInfo
	for _, name := range emit.Available() {
		e, err := emit.Get(name)
		if err != nil {
			return err
		}
		targets = append(targets, TargetInfo{Name: e.Name(), FileExtension: e.FileExtension()})
	}

	formatter := newFormatter(opts, cmd)
	if formatter.Format == "json" {
		return formatter.Success(targets)
	}
	for _, t := range targets {
		fmt.Fprintf(formatter.Writer, "%-4s %s\n", t.Name, t.FileExtension)
	}
	return nil
}
