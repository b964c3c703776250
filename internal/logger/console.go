// Package logger provides logging implementations for pdfops runs.
//
// ConsoleLogger writes human-readable lines to a terminal, FileLogger writes
// structured JSON records to a rotating log file, and MultiLogger fans out to
// several loggers. All implementations are safe for concurrent use.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/harrison/pdfops/internal/models"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// Logger is implemented by every logger in this package.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	LogScanSummary(root string, found int, warnings []error)
	LogMergeSummary(result *models.MergeResult)
	LogSplitSummary(result *models.SplitResult)
}

// ConsoleLogger logs run progress to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps.
// Color output is enabled automatically when writing to a terminal.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal reports whether w is a TTY that should receive colors.
// NO_COLOR is honored through color.NoColor.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil || color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// IsTerminal is the exported form of the TTY check, used by progress rendering.
func IsTerminal(w io.Writer) bool {
	return isTerminal(w)
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if validLevels[normalized] {
		return normalized
	}

	return "info"
}

// ValidLevel reports whether level is a recognized log level name.
func ValidLevel(level string) bool {
	l := strings.ToLower(strings.TrimSpace(level))
	return l == "trace" || l == "debug" || l == "info" || l == "warn" || l == "error"
}

// shouldLog checks if a message at the given level should be logged.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// LogTrace logs a trace-level message (most verbose).
// Format: "[HH:MM:SS] [TRACE] <message>"
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

func (cl *ConsoleLogger) Debugf(format string, args ...interface{}) {
	cl.LogDebug(fmt.Sprintf(format, args...))
}

func (cl *ConsoleLogger) Infof(format string, args ...interface{}) {
	cl.LogInfo(fmt.Sprintf(format, args...))
}

func (cl *ConsoleLogger) Warnf(format string, args ...interface{}) {
	cl.LogWarn(fmt.Sprintf(format, args...))
}

func (cl *ConsoleLogger) Errorf(format string, args ...interface{}) {
	cl.LogError(fmt.Sprintf(format, args...))
}

// logWithLevel logs a message at the specified level if filtering allows it.
func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil {
		return
	}
	if !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	var formatted string
	if cl.colorOutput {
		formatted = cl.formatWithColor(ts, level, message)
	} else {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, level, message)
	}

	cl.writer.Write([]byte(formatted))
}

// formatWithColor formats a log message with ANSI color codes.
func (cl *ConsoleLogger) formatWithColor(ts, level, message string) string {
	var coloredLevel string

	switch strings.ToUpper(level) {
	case "TRACE":
		coloredLevel = color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		coloredLevel = color.New(color.FgCyan).Sprint(level)
	case "INFO":
		coloredLevel = color.New(color.FgBlue).Sprint(level)
	case "WARN":
		coloredLevel = color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		coloredLevel = color.New(color.FgRed).Sprint(level)
	default:
		coloredLevel = level
	}

	return fmt.Sprintf("[%s] [%s] %s\n", ts, coloredLevel, message)
}

// LogScanSummary reports how many files a scan admitted.
// Format: "[HH:MM:SS] [INFO] Scanned <root>: N PDF file(s), M warning(s)"
func (cl *ConsoleLogger) LogScanSummary(root string, found int, warnings []error) {
	msg := fmt.Sprintf("Scanned %s: %d PDF file(s)", root, found)
	if len(warnings) > 0 {
		msg += fmt.Sprintf(", %d warning(s)", len(warnings))
	}
	cl.LogInfo(msg)
	for _, w := range warnings {
		cl.LogDebug(fmt.Sprintf("scan warning: %v", w))
	}
}

// LogSkipped reports one merge input that was left out.
func (cl *ConsoleLogger) LogSkipped(skipped models.SkippedInput) {
	cl.LogWarn(fmt.Sprintf("Skipped %s: %v", filepath.Base(skipped.Path), skipped.Reason))
}

// LogOutputWritten reports a written file.
func (cl *ConsoleLogger) LogOutputWritten(path string, pages int) {
	cl.LogInfo(fmt.Sprintf("Wrote %s (%d page(s))", path, pages))
}

// LogMergeSummary logs one summary line for a merge. Per-input lines are
// logged by the engine as it runs.
func (cl *ConsoleLogger) LogMergeSummary(result *models.MergeResult) {
	if result == nil {
		return
	}

	scheme := newColorScheme(cl.colorOutput)
	parts := []string{
		formatColorizedMetric("merged", len(result.Merged), scheme.success, scheme),
		formatColorizedMetric("skipped", len(result.Skipped), scheme.countColor(len(result.Skipped)), scheme),
		formatColorizedMetric("pages", result.Pages, scheme.value, scheme),
		formatColorizedMetric("duration", formatDuration(result.Duration), scheme.value, scheme),
	}
	cl.LogInfo("Merge summary: " + strings.Join(parts, ", "))
}

// LogSplitSummary logs every output of a split followed by a summary line.
func (cl *ConsoleLogger) LogSplitSummary(result *models.SplitResult) {
	if result == nil {
		return
	}
	for _, o := range result.Outputs {
		cl.LogDebug(fmt.Sprintf("Wrote %s (pages %d-%d)", o.Path, o.Start, o.End))
	}

	scheme := newColorScheme(cl.colorOutput)
	parts := []string{
		formatColorizedMetric("files", len(result.Outputs), scheme.success, scheme),
		formatColorizedMetric("pages", fmt.Sprintf("%d/%d", result.PagesWritten(), result.TotalPages), scheme.value, scheme),
		formatColorizedMetric("duration", formatDuration(result.Duration), scheme.value, scheme),
	}
	cl.LogInfo(fmt.Sprintf("Split summary for %s: %s", filepath.Base(result.Input), strings.Join(parts, ", ")))
}

// timestamp returns the current time formatted as HH:MM:SS.
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration converts a time.Duration to a human-readable string.
// Sub-second durations are shown in milliseconds.
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		remainder := d % time.Hour
		if remainder == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		minutes := remainder / time.Minute
		remainder = remainder % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dh%dm", hours, minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	case d >= time.Minute:
		minutes := d / time.Minute
		remainder := d % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d >= time.Second:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

// NoOpLogger is a Logger implementation that discards all log messages.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) Debugf(string, ...interface{})           {}
func (n *NoOpLogger) Infof(string, ...interface{})            {}
func (n *NoOpLogger) Warnf(string, ...interface{})            {}
func (n *NoOpLogger) Errorf(string, ...interface{})           {}
func (n *NoOpLogger) LogScanSummary(string, int, []error)     {}
func (n *NoOpLogger) LogMergeSummary(*models.MergeResult)     {}
func (n *NoOpLogger) LogSplitSummary(*models.SplitResult)     {}
