package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harrison/pdfops/internal/display"
	"github.com/harrison/pdfops/internal/executor"
	"github.com/harrison/pdfops/internal/fileutil"
	"github.com/harrison/pdfops/internal/logger"
	"github.com/harrison/pdfops/internal/output"
	"github.com/harrison/pdfops/internal/pagespec"
)

// mergeOptions holds the merge command flags.
type mergeOptions struct {
	input       string
	output      string
	pages       string
	include     []string
	exclude     []string
	maxDepth    int
	followLinks bool
	force       bool
	suffix      bool
}

// NewMergeCommand creates the merge command
func NewMergeCommand() *cobra.Command {
	opts := &mergeOptions{}
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge every PDF under a directory into one file",
		Long: `Merge scans the input directory for PDF files (matching *.pdf in any
case), orders them by relative path, and concatenates the selected pages of
each into one output document.

Inputs that cannot be opened, or that are too short for the page spec, are
skipped with a warning. The output file is never part of its own input.

Examples:
  pdfops merge -i ./chapters -o book.pdf
  pdfops merge -i ./scans --pages 1 -o covers.pdf     # first page of each
  pdfops merge --include '2024/**' --exclude '**/draft*' --max-depth 2
  pdfops merge -o merged.pdf --suffix                 # merged_1.pdf if taken`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd, opts)
		},
	}
	addMergeFlags(cmd, opts)
	return cmd
}

func addMergeFlags(cmd *cobra.Command, opts *mergeOptions) {
	cmd.Flags().StringVarP(&opts.input, "input", "i", ".", "Directory to scan for PDF files")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file, relative to the input directory (default from config: merged.pdf)")
	cmd.Flags().StringVar(&opts.pages, "pages", "", `Pages to take from every input, e.g. "1-3,5,10-" (default all)`)
	addScanFlags(cmd, &opts.include, &opts.exclude, &opts.maxDepth, &opts.followLinks)
	addPolicyFlags(cmd, &opts.force, &opts.suffix)
}

func addScanFlags(cmd *cobra.Command, include, exclude *[]string, maxDepth *int, followLinks *bool) {
	cmd.Flags().StringArrayVar(include, "include", nil, "Only admit relative paths matching this glob (repeatable, ** crosses directories)")
	cmd.Flags().StringArrayVar(exclude, "exclude", nil, "Reject relative paths matching this glob (repeatable, beats --include)")
	cmd.Flags().IntVar(maxDepth, "max-depth", 0, "Maximum directory depth (0 = unlimited, default from config)")
	cmd.Flags().BoolVar(followLinks, "follow-links", false, "Descend into symlinked directories")
}

func addPolicyFlags(cmd *cobra.Command, force, suffix *bool) {
	cmd.Flags().BoolVar(force, "force", false, "Overwrite existing output files")
	cmd.Flags().BoolVar(suffix, "suffix", false, "Pick name_N.pdf when an output file exists")
	cmd.MarkFlagsMutuallyExclusive("force", "suffix")
}

// collisionPolicy resolves --force/--suffix against the configured policy.
func collisionPolicy(a *app, force, suffix bool) (output.Policy, error) {
	switch {
	case force:
		return output.Force, nil
	case suffix:
		return output.Suffix, nil
	default:
		return a.cfg.Policy()
	}
}

// filterConfig builds scanner settings, letting flags override config.
func filterConfig(cmd *cobra.Command, a *app, include, exclude []string, maxDepth int, followLinks bool) fileutil.FilterConfig {
	cfg := fileutil.FilterConfig{
		MaxDepth:    a.cfg.Scan.MaxDepth,
		Include:     include,
		Exclude:     exclude,
		FollowLinks: a.cfg.Scan.FollowLinks,
	}
	if cmd.Flags().Changed("max-depth") {
		cfg.MaxDepth = maxDepth
	}
	if cmd.Flags().Changed("follow-links") {
		cfg.FollowLinks = followLinks
	}
	return cfg
}

func runMerge(cmd *cobra.Command, opts *mergeOptions) error {
	// Page specs and depth are validated before any I/O.
	spec, err := pagespec.Parse(opts.pages)
	if err != nil {
		return fmt.Errorf("invalid --pages: %w", err)
	}
	if opts.maxDepth < 0 {
		return fmt.Errorf("--max-depth must be >= 0, got %d", opts.maxDepth)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	policy, err := collisionPolicy(a, opts.force, opts.suffix)
	if err != nil {
		return err
	}

	root, err := filepath.Abs(sanitizePath(opts.input))
	if err != nil {
		return fmt.Errorf("resolve input directory: %w", err)
	}
	outName := opts.output
	if outName == "" {
		outName = a.cfg.Merge.Output
	}
	outPath := output.ResolveUnder(root, sanitizePath(outName))

	filter := filterConfig(cmd, a, opts.include, opts.exclude, opts.maxDepth, opts.followLinks)
	filter.ExcludePaths = []string{outPath}

	scan, err := fileutil.ScanDirectory(root, filter)
	if err != nil {
		return err
	}
	a.log.LogScanSummary(root, len(scan.Entries), scan.Warnings)
	a.metrics.RecordScan(len(scan.Entries), len(scan.Warnings))
	if len(scan.Warnings) > 0 {
		display.WarnScanProblems(scan.Warnings).Display(a.errOut)
	}
	if len(scan.Entries) == 0 {
		return fmt.Errorf("no PDF files found in %s", root)
	}
	if unpadded := display.FindUnpaddedNumbering(scan.Entries); len(unpadded) > 0 {
		display.WarnNumberedFiles(unpadded).Display(a.errOut)
	}

	ctx, stop := executor.WithInterrupt(cmd.Context(), a.errOut)
	defer stop()

	merger := executor.NewMerger(a.pdf, a.log)
	bar := logger.NewProgressWriter(a.errOut, "merge ")
	result, err := merger.Merge(ctx, executor.MergeRequest{
		Inputs: scan.Paths(),
		Pages:  spec,
		Output: output.Plan{Path: outPath, Policy: policy},
	}, bar)

	a.metrics.RecordMerge(result, err)
	if result != nil {
		if len(result.Skipped) > 0 {
			display.WarnSkippedInputs(result.Skipped).Display(a.errOut)
		}
		a.log.LogMergeSummary(result)
	}
	if err != nil {
		if executor.IsCancelled(err) {
			return fmt.Errorf("merge cancelled, nothing written: %w", err)
		}
		return fmt.Errorf("merge into %s failed: %w", outPath, err)
	}

	fmt.Fprintln(a.out, result.Output)
	return nil
}
