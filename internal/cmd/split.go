package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harrison/pdfops/internal/executor"
	"github.com/harrison/pdfops/internal/logger"
	"github.com/harrison/pdfops/internal/pagespec"
)

// splitOptions holds the split command flags.
type splitOptions struct {
	input   string
	outDir  string
	each    bool
	ranges  string
	every   int
	pattern string
	force   bool
	suffix  bool
}

// NewSplitCommand creates the split command
func NewSplitCommand() *cobra.Command {
	opts := &splitOptions{}
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split one PDF into several files",
		Long: `Split writes parts of one document to separate files.

Modes (pick one, default --each):
  --each           one file per page
  --ranges SPEC    one file per range, e.g. "1-3,4-6,7-"
  --every N        consecutive runs of N pages

Output names come from --pattern. Tokens: {base} (input name without
extension), {start} and {end} (page bounds, zero-padded to the width of the
page count) and {index} (1-based position of the range).

A range that does not fit the document fails before anything is written.
Outputs go to the current directory unless -d names another one.

Examples:
  pdfops split -i report.pdf
  pdfops split -i report.pdf --ranges 1-3,4-6,7- -d parts/
  pdfops split -i scan.pdf --every 2 --pattern '{base}_{index}.pdf'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "PDF file to split (required)")
	cmd.Flags().StringVarP(&opts.outDir, "out-dir", "d", ".", "Directory for the outputs")
	cmd.Flags().BoolVar(&opts.each, "each", false, "Write one file per page")
	cmd.Flags().StringVar(&opts.ranges, "ranges", "", "Write one file per range of this page spec")
	cmd.Flags().IntVar(&opts.every, "every", 0, "Write consecutive runs of N pages")
	cmd.Flags().StringVar(&opts.pattern, "pattern", "", "Output name template (default from config: {base}-{start}-{end}.pdf)")
	addPolicyFlags(cmd, &opts.force, &opts.suffix)
	_ = cmd.MarkFlagRequired("input")
	cmd.MarkFlagsMutuallyExclusive("each", "ranges", "every")

	return cmd
}

// splitRequest converts flags to an engine request. It does no I/O.
func (o *splitOptions) splitRequest(cmd *cobra.Command) (executor.SplitRequest, error) {
	req := executor.SplitRequest{
		Input:    sanitizePath(o.input),
		Mode:     executor.SplitEachPage,
		Template: o.pattern,
	}
	if req.Input == "" {
		return req, fmt.Errorf("--input is required")
	}

	switch {
	case cmd.Flags().Changed("ranges"):
		spec, err := pagespec.Parse(o.ranges)
		if err != nil {
			return req, fmt.Errorf("invalid --ranges: %w", err)
		}
		req.Mode = executor.SplitRanges
		req.Ranges = spec
	case cmd.Flags().Changed("every"):
		if o.every < 1 {
			return req, fmt.Errorf("--every must be >= 1, got %d", o.every)
		}
		req.Mode = executor.SplitChunked
		req.ChunkSize = o.every
	}

	req.OutDir = sanitizePath(o.outDir)
	if req.OutDir == "" {
		req.OutDir = "."
	}
	return req, nil
}

func runSplit(cmd *cobra.Command, opts *splitOptions) error {
	req, err := opts.splitRequest(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if req.Template == "" {
		req.Template = a.cfg.Split.Pattern
	}
	if req.Policy, err = collisionPolicy(a, opts.force, opts.suffix); err != nil {
		return err
	}
	if req.Input, err = filepath.Abs(req.Input); err != nil {
		return fmt.Errorf("resolve input: %w", err)
	}

	ctx, stop := executor.WithInterrupt(cmd.Context(), a.errOut)
	defer stop()

	splitter := executor.NewSplitter(a.pdf, a.log)
	bar := logger.NewProgressWriter(a.errOut, "split ")
	result, err := splitter.Split(ctx, req, bar)

	a.metrics.RecordSplit(result, err)
	if result != nil {
		a.log.LogSplitSummary(result)
		for _, o := range result.Outputs {
			fmt.Fprintln(a.out, o.Path)
		}
	}
	if err != nil {
		if executor.IsCancelled(err) {
			return fmt.Errorf("split cancelled: %w", err)
		}
		return err
	}
	return nil
}
