package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harrison/pdfops/internal/display"
	"github.com/harrison/pdfops/internal/fileutil"
)

// scanOptions holds the scan command flags.
type scanOptions struct {
	input       string
	include     []string
	exclude     []string
	maxDepth    int
	followLinks bool
	absolute    bool
}

// NewScanCommand creates the scan command
func NewScanCommand() *cobra.Command {
	opts := &scanOptions{}
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List the PDF files a merge would consume, in merge order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", ".", "Directory to scan")
	cmd.Flags().BoolVar(&opts.absolute, "absolute", false, "Print absolute paths instead of paths relative to the input")
	addScanFlags(cmd, &opts.include, &opts.exclude, &opts.maxDepth, &opts.followLinks)
	return cmd
}

func runScan(cmd *cobra.Command, opts *scanOptions) error {
	if opts.maxDepth < 0 {
		return fmt.Errorf("--max-depth must be >= 0, got %d", opts.maxDepth)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	root, err := filepath.Abs(sanitizePath(opts.input))
	if err != nil {
		return fmt.Errorf("resolve input directory: %w", err)
	}

	filter := filterConfig(cmd, a, opts.include, opts.exclude, opts.maxDepth, opts.followLinks)
	result, err := fileutil.ScanDirectory(root, filter)
	if err != nil {
		return err
	}

	for _, e := range result.Entries {
		if opts.absolute {
			fmt.Fprintln(a.out, e.Path)
		} else {
			fmt.Fprintln(a.out, e.RelPath)
		}
	}

	a.log.LogScanSummary(root, len(result.Entries), result.Warnings)
	a.metrics.RecordScan(len(result.Entries), len(result.Warnings))
	if len(result.Warnings) > 0 {
		display.WarnScanProblems(result.Warnings).Display(a.errOut)
	}
	if unpadded := display.FindUnpaddedNumbering(result.Entries); len(unpadded) > 0 {
		display.WarnNumberedFiles(unpadded).Display(a.errOut)
	}
	return nil
}
