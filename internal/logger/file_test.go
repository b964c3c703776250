package logger

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/pdfops/internal/models"
)

// readRecords parses every JSON line of the log file.
func readRecords(t *testing.T, path string) []map[string]interface{} {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var records []map[string]interface{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec map[string]interface{}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec), sc.Text())
		records = append(records, rec)
	}
	require.NoError(t, sc.Err())
	return records
}

func findEvent(records []map[string]interface{}, event string) map[string]interface{} {
	for _, r := range records {
		if r["event"] == event {
			return r
		}
	}
	return nil
}

func TestNewFileLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	fl, err := NewFileLogger(FileOptions{Dir: dir, Level: "info"})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, DefaultLogFile), fl.Path())
	assert.NotEmpty(t, fl.RunID())
	require.NoError(t, fl.Close())
	require.NoError(t, fl.Close(), "second close is a no-op")

	records := readRecords(t, fl.Path())
	require.GreaterOrEqual(t, len(records), 2)
	assert.Equal(t, "start", records[0]["event"])
	assert.Equal(t, "end", records[len(records)-1]["event"])
	for _, r := range records {
		assert.Equal(t, fl.RunID(), r["run"])
		assert.EqualValues(t, os.Getpid(), r["pid"])
	}
}

func TestNewFileLoggerEmptyDir(t *testing.T) {
	_, err := NewFileLogger(FileOptions{})
	assert.Error(t, err)
}

func TestFileLoggerLevels(t *testing.T) {
	fl, err := NewFileLogger(FileOptions{Dir: t.TempDir(), Level: "warn"})
	require.NoError(t, err)

	fl.Debugf("debug %d", 1)
	fl.Infof("info %d", 2)
	fl.Warnf("warn %d", 3)
	fl.Errorf("error %d", 4)
	require.NoError(t, fl.Close())

	var messages []string
	for _, r := range readRecords(t, fl.Path()) {
		if msg, ok := r["message"].(string); ok {
			messages = append(messages, msg)
		}
	}
	assert.Contains(t, messages, "warn 3")
	assert.Contains(t, messages, "error 4")
	assert.NotContains(t, messages, "debug 1")
	assert.NotContains(t, messages, "info 2")
}

func TestFileLoggerSummaries(t *testing.T) {
	fl, err := NewFileLogger(FileOptions{Dir: t.TempDir(), Level: "debug"})
	require.NoError(t, err)

	fl.LogScanSummary("/docs", 4, []error{errors.New("permission denied")})
	fl.LogMergeSummary(&models.MergeResult{
		Output:   "/out/merged.pdf",
		Pages:    5,
		Merged:   []string{"/in/a.pdf", "/in/b.pdf"},
		Skipped:  []models.SkippedInput{{Path: "/in/c.pdf", Reason: errors.New("not a PDF")}},
		Duration: time.Second,
	})
	fl.LogSplitSummary(&models.SplitResult{
		Input:      "/in/a.pdf",
		TotalPages: 3,
		Outputs:    []models.SplitOutput{{Path: "/in/a-1-3.pdf", Index: 1, Start: 1, End: 3}},
	})
	fl.LogMergeSummary(nil)
	require.NoError(t, fl.Close())

	records := readRecords(t, fl.Path())

	scan := findEvent(records, "scan")
	require.NotNil(t, scan)
	assert.Equal(t, "/docs", scan["root"])
	assert.EqualValues(t, 4, scan["found"])
	assert.Equal(t, []interface{}{"permission denied"}, scan["warnings"])

	merge := findEvent(records, models.KindMerge)
	require.NotNil(t, merge)
	assert.Equal(t, "/out/merged.pdf", merge["output"])
	assert.EqualValues(t, 5, merge["pages"])
	assert.Equal(t, []interface{}{"/in/a.pdf", "/in/b.pdf"}, merge["merged"])
	skipped, ok := merge["skipped"].([]interface{})
	require.True(t, ok)
	require.Len(t, skipped, 1)
	assert.Equal(t, "/in/c.pdf", skipped[0].(map[string]interface{})["path"])
	assert.Equal(t, "not a PDF", skipped[0].(map[string]interface{})["reason"])

	split := findEvent(records, models.KindSplit)
	require.NotNil(t, split)
	assert.EqualValues(t, 3, split["pages_written"])
	outputs, ok := split["outputs"].([]interface{})
	require.True(t, ok)
	assert.Len(t, outputs, 1)
}

func TestFileLoggerDropsAfterClose(t *testing.T) {
	fl, err := NewFileLogger(FileOptions{Dir: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, fl.Close())

	fl.Infof("late")
	fl.LogScanSummary("/late", 1, nil)

	for _, r := range readRecords(t, fl.Path()) {
		assert.NotEqual(t, "late", r["message"])
		assert.NotEqual(t, "scan", r["event"])
	}
}

func TestSharedLogFileAcrossLoggers(t *testing.T) {
	dir := t.TempDir()
	a, err := NewFileLogger(FileOptions{Dir: dir})
	require.NoError(t, err)
	b, err := NewFileLogger(FileOptions{Dir: dir})
	require.NoError(t, err)

	a.Infof("from a")
	b.Infof("from b")
	require.NoError(t, a.Close())
	require.NoError(t, b.Close())

	runs := map[interface{}]bool{}
	for _, r := range readRecords(t, filepath.Join(dir, DefaultLogFile)) {
		runs[r["run"]] = true
	}
	assert.Len(t, runs, 2)
}

func TestCreateLogKeepsExistingContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultLogFile)
	require.NoError(t, os.WriteFile(path, []byte("earlier run\n"), 0o644))

	require.NoError(t, createLog(path, path+".lock"))
	require.NoError(t, createLog(path, path+".lock"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "earlier run\n", string(data))
}

func TestCreateLogCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultLogFile)
	require.NoError(t, createLog(path, path+".lock"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

type countingLogger struct {
	NoOpLogger
	infos  int
	merges int
}

func (c *countingLogger) Infof(string, ...interface{})         { c.infos++ }
func (c *countingLogger) LogMergeSummary(*models.MergeResult) { c.merges++ }

func TestMultiLogger(t *testing.T) {
	first, second := &countingLogger{}, &countingLogger{}
	ml := NewMultiLogger(first, nil, second)

	ml.Infof("hello")
	ml.LogMergeSummary(&models.MergeResult{})
	ml.Warnf("ignored by counters")

	assert.Equal(t, 1, first.infos)
	assert.Equal(t, 1, second.infos)
	assert.Equal(t, 1, first.merges)
	assert.Equal(t, 1, second.merges)
}
