// Package cli wires configuration, path resolution, scanning, and report
// writing into the fsscan command.
package cli

import (
	"path/filepath"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/idelchi/fsscan/internal/report"
)

// options holds the parsed command-line flags.
type options struct {
	Folder      string
	ThresholdMB int
	Report      string
	Config      string
	Excludes    []string

	folderSet    bool
	thresholdSet bool
}

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// Execute runs the CLI with the provided arguments.
func (c CLI) Execute() error {
	var opts options

	cmd := &cobra.Command{
		Use:   "fsscan",
		Short: "Scan a directory tree and write a Markdown report",
		Long: heredoc.Doc(`
			fsscan walks a directory tree, collects per-file metadata, and
			aggregates statistics: counters, extension counts, large-file
			flags, and duplicate file names.

			Settings are read from a JSON file, created with defaults when
			missing. The --folder and --threshold-mb flags override the file
			values. The aggregated summary is written as a Markdown report
			under reports/.
		`),
		Version:       c.version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.folderSet = cmd.Flags().Changed("folder")
			opts.thresholdSet = cmd.Flags().Changed("threshold-mb")

			return run(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Folder, "folder", "f", "", "Override the target folder from the settings file")
	cmd.Flags().IntVarP(&opts.ThresholdMB, "threshold-mb", "t", 0, "Override the large-file threshold (MB)")
	cmd.Flags().StringVarP(&opts.Report, "report", "r", report.DefaultFilename, "Output report filename")
	cmd.Flags().StringVarP(&opts.Config, "config", "c", filepath.Join("config", "config.json"), "Settings file path")
	cmd.Flags().StringSliceVarP(&opts.Excludes, "exclude", "e", nil, "Glob patterns to exclude (e.g. '**/.git/**')")

	cmd.Flags().SortFlags = false

	return cmd.Execute()
}
