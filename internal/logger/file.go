package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/harrison/pdfops/internal/filelock"
	"github.com/harrison/pdfops/internal/models"
)

// DefaultLogFile is the name of the rotating run log inside the log directory.
const DefaultLogFile = "pdfops.log"

// FileOptions configures a FileLogger.
type FileOptions struct {
	Dir        string
	Level      string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// FileLogger writes structured JSON records to a rotating file in Dir.
// Every record carries the run id and process id so the output of
// concurrent pdfops invocations sharing one file can be told apart.
// Writes are serialized across processes with a lock file next to the log.
type FileLogger struct {
	path   string
	runID  string
	rotate *lumberjack.Logger
	log    zerolog.Logger
	mu     sync.Mutex
	closed bool
}

// NewFileLogger creates the log directory if needed and opens the run log.
func NewFileLogger(opts FileOptions) (*FileLogger, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("log directory is empty")
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(opts.Dir, DefaultLogFile)
	if err := createLog(path, path+".lock"); err != nil {
		return nil, err
	}
	rotate := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}
	out := filelock.NewLockedWriter(rotate, path+".lock")

	lvl, err := zerolog.ParseLevel(normalizeLogLevel(opts.Level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	runID := uuid.NewString()
	fl := &FileLogger{
		path:   path,
		runID:  runID,
		rotate: rotate,
		log: zerolog.New(out).Level(lvl).With().
			Timestamp().
			Str("run", runID).
			Int("pid", os.Getpid()).
			Logger(),
	}
	fl.log.Info().Str("event", "start").Str("args", strings.Join(os.Args[1:], " ")).Msg("run started")
	return fl, nil
}

// createLog makes sure the log exists before lumberjack first opens it.
// lumberjack truncates a file it creates itself and only appends to one
// that is already there, so a second run racing the first would otherwise
// write through a non-append descriptor.
func createLog(path, lockPath string) error {
	lock := filelock.NewFileLock(lockPath)
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	return f.Close()
}

// Path returns the active log file path.
func (fl *FileLogger) Path() string { return fl.path }

// RunID returns the identifier attached to every record of this run.
func (fl *FileLogger) RunID() string { return fl.runID }

func (fl *FileLogger) Debugf(format string, args ...interface{}) {
	fl.event(fl.log.Debug()).Msgf(format, args...)
}

func (fl *FileLogger) Infof(format string, args ...interface{}) {
	fl.event(fl.log.Info()).Msgf(format, args...)
}

func (fl *FileLogger) Warnf(format string, args ...interface{}) {
	fl.event(fl.log.Warn()).Msgf(format, args...)
}

func (fl *FileLogger) Errorf(format string, args ...interface{}) {
	fl.event(fl.log.Error()).Msgf(format, args...)
}

// event returns nil after Close so late records are dropped.
func (fl *FileLogger) event(e *zerolog.Event) *zerolog.Event {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.closed {
		return nil
	}
	return e
}

// LogScanSummary records the outcome of a directory scan.
func (fl *FileLogger) LogScanSummary(root string, found int, warnings []error) {
	e := fl.event(fl.log.Info())
	if e == nil {
		return
	}
	e.Str("event", "scan").
		Str("root", root).
		Int("found", found).
		Errs("warnings", warnings).
		Msg("scan complete")
}

// LogMergeSummary records the outcome of a merge with one field per input
// list.
func (fl *FileLogger) LogMergeSummary(result *models.MergeResult) {
	if result == nil {
		return
	}
	e := fl.event(fl.log.Info())
	if e == nil {
		return
	}
	skipped := zerolog.Arr()
	for _, s := range result.Skipped {
		skipped.Dict(zerolog.Dict().Str("path", s.Path).AnErr("reason", s.Reason))
	}
	e.Str("event", models.KindMerge).
		Str("output", result.Output).
		Int("pages", result.Pages).
		Strs("merged", result.Merged).
		Array("skipped", skipped).
		Dur("duration", result.Duration).
		Msg("merge complete")
}

// LogSplitSummary records the outcome of a split.
func (fl *FileLogger) LogSplitSummary(result *models.SplitResult) {
	if result == nil {
		return
	}
	e := fl.event(fl.log.Info())
	if e == nil {
		return
	}
	outputs := zerolog.Arr()
	for _, o := range result.Outputs {
		outputs.Dict(zerolog.Dict().
			Int("index", o.Index).
			Str("path", o.Path).
			Int("start", o.Start).
			Int("end", o.End))
	}
	e.Str("event", models.KindSplit).
		Str("input", result.Input).
		Int("total_pages", result.TotalPages).
		Int("pages_written", result.PagesWritten()).
		Array("outputs", outputs).
		Dur("duration", result.Duration).
		Msg("split complete")
}

// Close writes a final record and closes the underlying file.
// Subsequent calls are no-ops.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	if fl.closed {
		fl.mu.Unlock()
		return nil
	}
	fl.mu.Unlock()

	fl.log.Info().Str("event", "end").Time("finished", time.Now()).Msg("run finished")

	fl.mu.Lock()
	fl.closed = true
	fl.mu.Unlock()
	return fl.rotate.Close()
}

// MultiLogger delegates every call to a list of loggers.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger creates a MultiLogger, skipping nil entries.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	ml := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			ml.loggers = append(ml.loggers, l)
		}
	}
	return ml
}

func (ml *MultiLogger) Debugf(format string, args ...interface{}) {
	for _, l := range ml.loggers {
		l.Debugf(format, args...)
	}
}

func (ml *MultiLogger) Infof(format string, args ...interface{}) {
	for _, l := range ml.loggers {
		l.Infof(format, args...)
	}
}

func (ml *MultiLogger) Warnf(format string, args ...interface{}) {
	for _, l := range ml.loggers {
		l.Warnf(format, args...)
	}
}

func (ml *MultiLogger) Errorf(format string, args ...interface{}) {
	for _, l := range ml.loggers {
		l.Errorf(format, args...)
	}
}

func (ml *MultiLogger) LogScanSummary(root string, found int, warnings []error) {
	for _, l := range ml.loggers {
		l.LogScanSummary(root, found, warnings)
	}
}

func (ml *MultiLogger) LogMergeSummary(result *models.MergeResult) {
	for _, l := range ml.loggers {
		l.LogMergeSummary(result)
	}
}

func (ml *MultiLogger) LogSplitSummary(result *models.SplitResult) {
	for _, l := range ml.loggers {
		l.LogSplitSummary(result)
	}
}
