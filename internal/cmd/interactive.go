package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/pdfops/internal/display"
	"github.com/harrison/pdfops/internal/executor"
	"github.com/harrison/pdfops/internal/fileutil"
	"github.com/harrison/pdfops/internal/jobs"
	"github.com/harrison/pdfops/internal/logger"
	"github.com/harrison/pdfops/internal/models"
	"github.com/harrison/pdfops/internal/output"
	"github.com/harrison/pdfops/internal/pagespec"
)

const shellPrompt = "pdfops> "

// MenuReader defines interface for reading user input (for testing)
type MenuReader interface {
	ReadString(delim byte) (string, error)
}

// DefaultMenuReader wraps bufio.Reader
type DefaultMenuReader struct {
	reader *bufio.Reader
}

func (d *DefaultMenuReader) ReadString(delim byte) (string, error) {
	return d.reader.ReadString(delim)
}

// NewInteractiveCommand creates the interactive command
func NewInteractiveCommand() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Pick files and run merges or splits from a prompt",
		Long: `Interactive starts a command shell over one directory. It scans the
directory (one level deep by default), lets you pick and reorder files, and
runs a merge or split in the background while the prompt stays available.

Type 'help' at the prompt for the command list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			root, err := filepath.Abs(sanitizePath(input))
			if err != nil {
				return fmt.Errorf("resolve input directory: %w", err)
			}
			reader := &DefaultMenuReader{reader: bufio.NewReader(cmd.InOrStdin())}
			return newShell(a, reader, root).Run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", ".", "Directory to work in")
	return cmd
}

// Shell is the interactive command loop. All output happens on the
// goroutine running Run; jobs report back through the supervisor.
type Shell struct {
	app    *app
	reader MenuReader
	out    io.Writer
	sup    *jobs.Supervisor

	root   string
	filter fileutil.FilterConfig

	files     []fileutil.ScanEntry
	selection []int // indices into files, in run order; empty means all files
	scanned   bool

	mode     jobs.Kind
	output   string
	pages    pagespec.Spec
	every    int
	pattern  string
	policy   output.Policy
	reported string // ID of the last job whose outcome was printed

	errColor *color.Color
	okColor  *color.Color
}

func newShell(a *app, reader MenuReader, root string) *Shell {
	s := &Shell{
		app:    a,
		reader: reader,
		out:    a.out,
		root:   root,
		filter: fileutil.FilterConfig{
			MaxDepth:    a.cfg.Interactive.Depth,
			FollowLinks: a.cfg.Scan.FollowLinks,
		},
		mode:     jobs.KindMerge,
		pages:    pagespec.All(),
		policy:   output.Suffix,
		errColor: color.New(color.FgRed),
		okColor:  color.New(color.FgGreen),
	}
	s.sup = jobs.New(jobs.WithOnDone(s.record))
	return s
}

// record runs on the worker goroutine. It only touches metrics and the
// file log, both of which are safe for concurrent use.
func (s *Shell) record(o jobs.Outcome) {
	switch r := o.Result.(type) {
	case *models.MergeResult:
		s.app.metrics.RecordMerge(r, o.Err)
		if s.app.file != nil && r != nil {
			s.app.file.LogMergeSummary(r)
		}
	case *models.SplitResult:
		s.app.metrics.RecordSplit(r, o.Err)
		if s.app.file != nil && r != nil {
			s.app.file.LogSplitSummary(r)
		}
	}
	if s.app.file != nil && o.Err != nil {
		s.app.file.Errorf("%s job %s: %v", o.Kind, o.State, o.Err)
	}
}

// Run reads commands until quit or end of input. A job still running at
// exit is cancelled and waited for.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintf(s.out, "pdfops interactive. Working in %s. Type 'help' for commands.\n", s.root)
	if err := s.scan(ctx); err != nil {
		s.fail(err)
	}

	for {
		s.reportOutcome()
		fmt.Fprint(s.out, shellPrompt)

		line, err := s.reader.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			if quit := s.dispatch(ctx, line); quit {
				break
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return fmt.Errorf("read command: %w", err)
			}
			fmt.Fprintln(s.out)
			break
		}
	}

	return s.shutdown(ctx)
}

func (s *Shell) shutdown(ctx context.Context) error {
	if s.sup.Cancel() {
		fmt.Fprintln(s.out, "Cancelling the running job...")
	}
	if _, err := s.sup.Wait(ctx); err != nil {
		return err
	}
	s.reportOutcome()
	return nil
}

// dispatch executes one command line and reports whether to quit.
func (s *Shell) dispatch(ctx context.Context, line string) bool {
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	var err error
	switch strings.ToLower(name) {
	case "help", "?":
		s.help()
	case "scan":
		err = s.scan(ctx)
	case "depth":
		err = s.setDepth(args)
	case "include":
		s.filter.Include = appendOrClear(s.filter.Include, rest)
		fmt.Fprintf(s.out, "Include: %s (applies at next scan)\n", listOrNone(s.filter.Include))
	case "exclude":
		s.filter.Exclude = appendOrClear(s.filter.Exclude, rest)
		fmt.Fprintf(s.out, "Exclude: %s (applies at next scan)\n", listOrNone(s.filter.Exclude))
	case "files", "ls":
		s.listFiles()
	case "select":
		err = s.selectFiles(args)
	case "clear":
		s.selection = nil
		fmt.Fprintln(s.out, "Selection cleared; all files will be used")
	case "order":
		s.showOrder()
	case "up":
		err = s.move(args, -1)
	case "down":
		err = s.move(args, 1)
	case "mode":
		err = s.setMode(args)
	case "output":
		s.output = sanitizePath(rest)
		fmt.Fprintf(s.out, "Output: %s\n", valueOr(s.output, "(default)"))
	case "pages":
		err = s.setPages(rest)
	case "every":
		err = s.setEvery(args)
	case "pattern":
		s.pattern = rest
		fmt.Fprintf(s.out, "Pattern: %s\n", valueOr(s.pattern, s.app.cfg.Interactive.SplitSuffix))
	case "policy":
		err = s.setPolicy(args)
	case "run":
		err = s.run(ctx)
	case "status":
		s.status()
	case "cancel":
		if s.sup.Cancel() {
			fmt.Fprintln(s.out, "Cancellation requested; the job stops at its next checkpoint")
		} else {
			fmt.Fprintln(s.out, "No running job")
		}
	case "wait":
		_, err = s.sup.Wait(ctx)
	case "dismiss":
		s.reportOutcome()
		err = s.sup.Reset()
	case "quit", "exit", "q":
		return true
	default:
		err = fmt.Errorf("unknown command %q (type 'help')", name)
	}

	if err != nil {
		s.fail(err)
	}
	return false
}

func (s *Shell) fail(err error) {
	fmt.Fprintln(s.out, s.errColor.Sprintf("Error: %v", err))
}

func (s *Shell) help() {
	fmt.Fprint(s.out, `Files:
  scan                 rescan the working directory
  depth N|all          scan depth (1 = top level only)
  include GLOB         admit only matching paths (no argument clears)
  exclude GLOB         reject matching paths (no argument clears)
  files                list scanned files
  select N...          pick files by number, in run order ("select all")
  clear                drop the selection (use every file)
  order                show the run order
  up N / down N        move the Nth selected file
Job:
  mode merge|split     what 'run' does
  output PATH          merge file, or split directory
  pages SPEC           pages per input (merge) or ranges (split)
  every N              split into runs of N pages (0 turns it off)
  pattern TEMPLATE     split naming: {base} {start} {end} {index}
  policy reject|force|suffix
  run                  start the job in the background
  status               show job progress and settings
  cancel               stop the job at its next checkpoint
  wait                 block until the job finishes
  dismiss              clear a finished job
  quit
`)
}

func (s *Shell) scan(ctx context.Context) error {
	if _, err := os.Stat(s.root); err != nil {
		return fmt.Errorf("cannot scan %s: %w", s.root, err)
	}

	ctx, stop := executor.WithInterrupt(ctx, s.out)
	defer stop()

	indicator := display.NewProgressIndicator(s.out)
	indicator.Start(s.root)

	var (
		entries   []fileutil.ScanEntry
		warnings  []error
		cancelled bool
		failed    error
	)
	for ev := range fileutil.Stream(ctx, s.root, s.filter) {
		switch ev.Kind {
		case fileutil.EventFound:
			entries = append(entries, ev.Entry)
			indicator.Step(ev.Entry.RelPath)
		case fileutil.EventWarning:
			warnings = append(warnings, ev.Err)
		case fileutil.EventDone:
			cancelled = ev.Summary.Cancelled
		case fileutil.EventFailed:
			failed = ev.Err
		}
	}
	if failed != nil {
		return failed
	}
	indicator.Complete(len(entries), cancelled)

	s.files = entries
	s.selection = nil
	s.scanned = true

	s.app.metrics.RecordScan(len(entries), len(warnings))
	if s.app.file != nil {
		s.app.file.LogScanSummary(s.root, len(entries), warnings)
	}
	if len(warnings) > 0 {
		display.WarnScanProblems(warnings).Display(s.out)
	}
	if unpadded := display.FindUnpaddedNumbering(entries); len(unpadded) > 0 {
		display.WarnNumberedFiles(unpadded).Display(s.out)
	}
	return nil
}

func (s *Shell) setDepth(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: depth N|all")
	}
	if strings.EqualFold(args[0], "all") {
		s.filter.MaxDepth = 0
	} else {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("depth must be a positive number or 'all', got %q", args[0])
		}
		s.filter.MaxDepth = n
	}
	fmt.Fprintf(s.out, "Depth: %s (applies at next scan)\n", depthLabel(s.filter.MaxDepth))
	return nil
}

func (s *Shell) listFiles() {
	if len(s.files) == 0 {
		fmt.Fprintln(s.out, "No PDF files. Use 'scan', 'depth' or 'include' to find some.")
		return
	}
	position := make(map[int]int, len(s.selection))
	for pos, idx := range s.selection {
		position[idx] = pos + 1
	}
	for i, e := range s.files {
		mark := ""
		if pos, ok := position[i]; ok {
			mark = fmt.Sprintf("  [#%d]", pos)
		}
		fmt.Fprintf(s.out, "%4d  %s%s\n", i+1, e.RelPath, mark)
	}
}

func (s *Shell) selectFiles(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: select N... | select all")
	}
	if len(args) == 1 && strings.EqualFold(args[0], "all") {
		s.selection = s.selection[:0]
		for i := range s.files {
			s.selection = append(s.selection, i)
		}
		s.showOrder()
		return nil
	}

	picked := make([]int, 0, len(args))
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(s.files) {
			return fmt.Errorf("no file numbered %q (1-%d)", arg, len(s.files))
		}
		picked = append(picked, n-1)
	}
	for _, idx := range picked {
		if !containsInt(s.selection, idx) {
			s.selection = append(s.selection, idx)
		}
	}
	s.showOrder()
	return nil
}

func (s *Shell) showOrder() {
	if len(s.selection) == 0 {
		fmt.Fprintf(s.out, "No selection: all %d file(s) in scan order\n", len(s.files))
		return
	}
	for pos, idx := range s.selection {
		fmt.Fprintf(s.out, "%4d. %s\n", pos+1, s.files[idx].RelPath)
	}
}

func (s *Shell) move(args []string, delta int) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: up N | down N")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(s.selection) {
		return fmt.Errorf("no selected file at position %q (see 'order')", args[0])
	}
	from, to := n-1, n-1+delta
	if to < 0 || to >= len(s.selection) {
		return fmt.Errorf("cannot move position %d any further", n)
	}
	s.selection[from], s.selection[to] = s.selection[to], s.selection[from]
	s.showOrder()
	return nil
}

func (s *Shell) setMode(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: mode merge|split")
	}
	switch strings.ToLower(args[0]) {
	case string(jobs.KindMerge):
		s.mode = jobs.KindMerge
	case string(jobs.KindSplit):
		s.mode = jobs.KindSplit
	default:
		return fmt.Errorf("unknown mode %q (want merge or split)", args[0])
	}
	fmt.Fprintf(s.out, "Mode: %s\n", s.mode)
	return nil
}

func (s *Shell) setPages(raw string) error {
	spec, err := pagespec.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid pages: %w", err)
	}
	s.pages = spec
	fmt.Fprintf(s.out, "Pages: %s\n", s.pages)
	return nil
}

func (s *Shell) setEvery(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: every N")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return fmt.Errorf("every must be a number >= 0, got %q", args[0])
	}
	s.every = n
	if n == 0 {
		fmt.Fprintln(s.out, "Every: off")
	} else {
		fmt.Fprintf(s.out, "Every: %d page(s) per file\n", n)
	}
	return nil
}

func (s *Shell) setPolicy(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: policy reject|force|suffix")
	}
	p, err := output.ParsePolicy(args[0])
	if err != nil {
		return err
	}
	s.policy = p
	fmt.Fprintf(s.out, "Policy: %s\n", s.policy)
	return nil
}

// inputs returns the files a job would use, in run order.
func (s *Shell) inputs() []string {
	if len(s.selection) == 0 {
		paths := make([]string, len(s.files))
		for i, e := range s.files {
			paths[i] = e.Path
		}
		return paths
	}
	paths := make([]string, len(s.selection))
	for pos, idx := range s.selection {
		paths[pos] = s.files[idx].Path
	}
	return paths
}

func (s *Shell) run(ctx context.Context) error {
	st := s.sup.Snapshot()
	if st.State.Active() {
		return fmt.Errorf("a %s job is already running (use 'cancel' or 'wait')", st.Job.Kind)
	}
	if st.State.Terminal() {
		return fmt.Errorf("the previous %s job has finished; type 'dismiss' first", st.Job.Kind)
	}

	var (
		run jobs.RunFunc
		err error
	)
	if s.mode == jobs.KindSplit {
		run, err = s.prepareSplit()
	} else {
		run, err = s.prepareMerge()
	}
	if err != nil || run == nil {
		return err
	}

	job, ch, err := s.sup.Start(s.mode, run)
	if err != nil {
		return err
	}
	// Progress lives in the supervisor snapshot; drain so the worker never blocks.
	go func() {
		for range ch {
		}
	}()
	fmt.Fprintf(s.out, "Started %s job %s. Use 'status', 'wait' or 'cancel'.\n", job.Kind, shortID(job.ID))
	return nil
}

func (s *Shell) prepareMerge() (jobs.RunFunc, error) {
	name := s.output
	if name == "" {
		name = s.app.cfg.Merge.Output
	}
	outPath := output.ResolveUnder(s.root, name)

	var inputs []string
	for _, p := range s.inputs() {
		if filepath.Clean(p) != outPath {
			inputs = append(inputs, p)
		}
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("nothing to merge; scan or select some files first")
	}

	req := executor.MergeRequest{
		Inputs: inputs,
		Pages:  s.pages,
		Output: output.Plan{Path: outPath, Policy: s.policy},
	}
	merger := executor.NewMerger(s.app.pdf, s.app.engineLogger(true))
	return func(ctx context.Context, sink models.ProgressSink) (interface{}, error) {
		return merger.Merge(ctx, req, sink)
	}, nil
}

func (s *Shell) prepareSplit() (jobs.RunFunc, error) {
	inputs := s.inputs()
	if len(inputs) != 1 {
		return nil, fmt.Errorf("split needs exactly one file; 'select' one (%d in use)", len(inputs))
	}

	req := executor.SplitRequest{
		Input:    inputs[0],
		Mode:     executor.SplitEachPage,
		Template: valueOr(s.pattern, s.app.cfg.Interactive.SplitSuffix),
		Policy:   s.policy,
	}
	switch {
	case s.every > 0:
		req.Mode = executor.SplitChunked
		req.ChunkSize = s.every
	case !s.pages.IsAll():
		req.Mode = executor.SplitRanges
		req.Ranges = s.pages
	}
	if s.output != "" {
		dir := output.ResolveUnder(s.root, s.output)
		if strings.EqualFold(filepath.Ext(dir), ".pdf") {
			dir = filepath.Dir(dir)
		}
		req.OutDir = dir
	}

	splitter := executor.NewSplitter(s.app.pdf, s.app.engineLogger(true))
	n, err := splitter.Estimate(req)
	if err != nil {
		return nil, err
	}
	if limit := s.app.cfg.Interactive.ConfirmThreshold; limit > 0 && n > limit {
		ok, err := s.confirm(fmt.Sprintf("This split writes %d files. Continue? [y/N]: ", n))
		if err != nil {
			return nil, err
		}
		if !ok {
			fmt.Fprintln(s.out, "Split not started")
			return nil, nil
		}
	}

	return func(ctx context.Context, sink models.ProgressSink) (interface{}, error) {
		return splitter.Split(ctx, req, sink)
	}, nil
}

func (s *Shell) confirm(question string) (bool, error) {
	fmt.Fprint(s.out, question)
	answer, err := s.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read answer: %w", err)
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

func (s *Shell) status() {
	st := s.sup.Snapshot()
	if st.Job == nil {
		fmt.Fprintln(s.out, "Job: none")
	} else {
		fmt.Fprintf(s.out, "Job: %s %s (%s)\n", st.Job.Kind, shortID(st.Job.ID), st.State)
		if st.State.Active() {
			bar := logger.NewProgressBar(st.Progress.Length, 20, false)
			bar.Update(st.Progress.Position)
			bar.SetMessage(filepath.Base(st.Progress.Message))
			fmt.Fprintf(s.out, "  %s\n", bar.Render())
		}
	}

	fmt.Fprintf(s.out, "Directory: %s (depth %s)\n", s.root, depthLabel(s.filter.MaxDepth))
	fmt.Fprintf(s.out, "Files: %d scanned, %d selected\n", len(s.files), len(s.selection))
	fmt.Fprintf(s.out, "Mode: %s  Policy: %s  Pages: %s\n", s.mode, s.policy, s.pages)
	fmt.Fprintf(s.out, "Output: %s\n", valueOr(s.output, "(default)"))
}

// reportOutcome prints a finished job's result once.
func (s *Shell) reportOutcome() {
	st := s.sup.Snapshot()
	o := st.Outcome
	if o == nil || o.JobID == s.reported {
		return
	}
	s.reported = o.JobID

	console := s.app.console
	switch r := o.Result.(type) {
	case *models.MergeResult:
		if r != nil {
			for _, skipped := range r.Skipped {
				console.LogSkipped(skipped)
			}
			if o.State == jobs.StateSucceeded {
				console.LogOutputWritten(r.Output, r.Pages)
			}
			console.LogMergeSummary(r)
		}
	case *models.SplitResult:
		if r != nil {
			for _, out := range r.Outputs {
				console.LogOutputWritten(out.Path, out.Pages())
			}
			console.LogSplitSummary(r)
		}
	}

	switch o.State {
	case jobs.StateSucceeded:
		fmt.Fprintln(s.out, s.okColor.Sprintf("%s job finished", o.Kind))
	case jobs.StateCancelled:
		fmt.Fprintf(s.out, "%s job cancelled\n", o.Kind)
	default:
		fmt.Fprintln(s.out, s.errColor.Sprintf("%s job failed: %v", o.Kind, o.Err))
	}
	fmt.Fprintln(s.out, "Type 'dismiss' before starting another job.")
}

// Helpers

func appendOrClear(list []string, glob string) []string {
	if glob == "" {
		return nil
	}
	return append(list, glob)
}

func listOrNone(list []string) string {
	if len(list) == 0 {
		return "(none)"
	}
	return strings.Join(list, ", ")
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func depthLabel(depth int) string {
	if depth == 0 {
		return "all"
	}
	return strconv.Itoa(depth)
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
