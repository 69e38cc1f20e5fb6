package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/wiregen/internal/harness"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Update bool // rewrite snapshot files
}

// SuiteResult holds the result of one vector suite.
type SuiteResult struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Pass   bool     `json:"pass"`
	Cases  int      `json:"cases"`
	Errors []string `json:"errors,omitempty"`
}

// VerifyResult holds the overall verify result.
type VerifyResult struct {
	Suites []SuiteResult `json:"suites"`
	Passed int           `json:"passed"`
	Failed int           `json:"failed"`
	Total  int           `json:"total"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify <suite-file|dir>...",
		Short: "Check test vectors against the wire format",
		Long: `Run vector suites: YAML files pairing values with their expected bytes,
or with the error encoding or decoding must report. Directories are searched
for *.yaml and *.yml files.

A suite with a snapshot file next to it (<suite>.golden) must also match the
snapshot. --update rewrites snapshots from the current results.

Exit codes:
  0 - All suites passed
  1 - One or more suites failed
  2 - Command error (missing paths, etc.)`,
		Example: `  wiregen verify testdata/vectors
  wiregen verify testdata/vectors/smash.yaml --format json
  wiregen verify testdata/vectors --update`,
		Args:          usageArgs(cobra.MinimumNArgs(1)),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "rewrite snapshot files")

	return cmd
}

func runVerify(opts *VerifyOptions, paths []string, cmd *cobra.Command) error {
	log := opts.Logger(cmd, "")

	files, err := findSuiteFiles(paths)
	if err != nil {
		return WrapExitError(ExitCommandError, "find suites", err)
	}

	result := VerifyResult{Suites: make([]SuiteResult, 0, len(files)), Total: len(files)}
	for _, file := range files {
		r := runSuite(opts, file)
		log.Debug().Str("suite", r.Name).Bool("pass", r.Pass).Int("cases", r.Cases).Msg("suite finished")
		result.Suites = append(result.Suites, r)
		if r.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		return outputVerifyJSON(cmd, result)
	}
	return outputVerifyText(cmd, result)
}

// findSuiteFiles expands directories into their YAML files. Named files are
// kept in argument order.
func findSuiteFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		var found []string
		for _, e := range entries {
			ext := filepath.Ext(e.Name())
			if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
				found = append(found, filepath.Join(p, e.Name()))
			}
		}
		slices.Sort(found)
		files = append(files, found...)
	}
	return files, nil
}

func runSuite(opts *VerifyOptions, file string) SuiteResult {
	r := SuiteResult{Name: filepath.Base(file), File: file}

	suite, err := harness.Load(file)
	if err != nil {
		r.Errors = []string{fmt.Sprintf("load: %v", err)}
		return r
	}
	r.Name, r.Cases = suite.Name, len(suite.Cases)

	result, err := harness.Run(suite)
	if err != nil {
		r.Errors = []string{err.Error()}
		return r
	}
	r.Pass, r.Errors = result.Pass, result.Errors

	if err := checkSnapshot(opts.Update, file, result); err != nil {
		r.Pass = false
		r.Errors = append(r.Errors, err.Error())
	}
	return r
}

// snapshotPath returns the snapshot file kept next to a suite file.
func snapshotPath(suiteFile string) string {
	return strings.TrimSuffix(suiteFile, filepath.Ext(suiteFile)) + ".golden"
}

// checkSnapshot compares result with the suite's snapshot file, or rewrites
// it when update is set. Suites without a snapshot file are not compared.
func checkSnapshot(update bool, suiteFile string, result *harness.Result) error {
	path := snapshotPath(suiteFile)
	got, err := harness.Snapshot(result)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if update {
		if err := writeFileAtomic(path, got); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		return nil
	}

	want, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if !bytes.Equal(bytes.TrimSpace(want), bytes.TrimSpace(got)) {
		return fmt.Errorf("snapshot %s does not match (run with --update to regenerate)", path)
	}
	return nil
}

func outputVerifyText(cmd *cobra.Command, result VerifyResult) error {
	w := cmd.OutOrStdout()
	if result.Total == 0 {
		fmt.Fprintln(w, "No suites found.")
		return nil
	}
	for _, s := range result.Suites {
		if s.Pass {
			fmt.Fprintf(w, "✓ %s (%d cases)\n", s.Name, s.Cases)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", s.Name)
		for _, e := range s.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	fmt.Fprintf(w, "\n%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return &ExitError{
			Code:     ExitFailure,
			Message:  fmt.Sprintf("%d suite(s) failed", result.Failed),
			Reported: true,
		}
	}
	return nil
}

func outputVerifyJSON(cmd *cobra.Command, result VerifyResult) error {
	status := "ok"
	if result.Failed > 0 {
		status = "error"
	}

	response := CLIResponse{
		Status: status,
		Data:   result,
	}
	if result.Failed > 0 {
		response.Error = &CLIError{
			Code:    ErrCodeCodec,
			Message: fmt.Sprintf("%d suite(s) failed", result.Failed),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		return &ExitError{
			Code:     ExitFailure,
			Message:  fmt.Sprintf("%d suite(s) failed", result.Failed),
			Reported: true,
		}
	}
	return nil
}
