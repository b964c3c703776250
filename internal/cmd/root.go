package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for pdfops.
// Running it without a subcommand performs a merge.
func NewRootCommand() *cobra.Command {
	opts := &mergeOptions{}

	cmd := &cobra.Command{
		Use:   "pdfops",
		Short: "Merge and split PDF documents",
		Long: `pdfops merges every PDF under a directory into one document, or splits
one document into several, selecting pages with range specs like "1-3,5,10-".

Without a subcommand pdfops runs merge.

Configuration is loaded from .pdfops/config.yaml if present, then from
PDFOPS_* environment variables (a .env file in the working directory is
read first). CLI flags override both.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd, opts)
		},
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default: .pdfops/config.yaml)")
	cmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.PersistentFlags().String("log-dir", "", "Directory for the JSON run log (empty disables it)")
	cmd.PersistentFlags().String("metrics-file", "", "Write Prometheus metrics to this textfile after the run")

	addMergeFlags(cmd, opts)

	cmd.AddCommand(NewMergeCommand())
	cmd.AddCommand(NewSplitCommand())
	cmd.AddCommand(NewScanCommand())
	cmd.AddCommand(NewInteractiveCommand())

	return cmd
}
