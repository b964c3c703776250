package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/pdfops/internal/pdfdoc/pdftest"
)

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		files map[string][]string // relative to the output directory
	}{
		{
			name: "each page by default",
			args: nil,
			files: map[string][]string{
				"report-1-1.pdf": {"r:1"},
				"report-2-2.pdf": {"r:2"},
				"report-3-3.pdf": {"r:3"},
			},
		},
		{
			name: "ranges",
			args: []string{"--ranges", "1-2,3-"},
			files: map[string][]string{
				"report-1-2.pdf": {"r:1", "r:2"},
				"report-3-3.pdf": {"r:3"},
			},
		},
		{
			name: "every with index pattern",
			args: []string{"--every", "2", "--pattern", "{base}_{index}.pdf"},
			files: map[string][]string{
				"report_1.pdf": {"r:1", "r:2"},
				"report_2.pdf": {"r:3"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, dir := setupCommandTest(t)
			input := pdftest.WriteDoc(t, filepath.Join(dir, "report.pdf"), pdftest.Pages("r", 3)...)
			outDir := filepath.Join(dir, "parts")

			args := append([]string{"split", "-i", input, "-d", outDir}, tt.args...)
			res := execute(t, "", args...)
			require.NoError(t, res.err, res.stderr)

			printed := lines(res.stdout)
			assert.Len(t, printed, len(tt.files))
			for name, labels := range tt.files {
				path := filepath.Join(outDir, name)
				assert.Contains(t, printed, path)
				assert.Equal(t, labels, pdftest.ReadLabels(t, path))
			}
			assert.Contains(t, res.stderr, "Split summary for report.pdf")
		})
	}
}

func TestSplitDefaultsToWorkingDirectory(t *testing.T) {
	_, dir := setupCommandTest(t)
	in := filepath.Join(dir, "inbox", "memo.pdf")
	require.NoError(t, os.MkdirAll(filepath.Dir(in), 0o755))
	pdftest.WriteDoc(t, in, pdftest.Pages("m", 2)...)

	res := execute(t, "", "split", "-i", in)
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, []string{"memo-1-1.pdf", "memo-2-2.pdf"}, lines(res.stdout))
	assert.FileExists(t, filepath.Join(dir, "memo-1-1.pdf"))
	assert.FileExists(t, filepath.Join(dir, "memo-2-2.pdf"))
	assert.NoFileExists(t, filepath.Join(dir, "inbox", "memo-1-1.pdf"))
}

func TestSplitErrors(t *testing.T) {
	t.Run("input is required", func(t *testing.T) {
		setupCommandTest(t)
		res := execute(t, "", "split")
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "input")
	})

	t.Run("modes are exclusive", func(t *testing.T) {
		setupCommandTest(t)
		res := execute(t, "", "split", "-i", "x.pdf", "--each", "--every", "2")
		require.Error(t, res.err)
	})

	t.Run("bad ranges fail before opening", func(t *testing.T) {
		fake, _ := setupCommandTest(t)
		res := execute(t, "", "split", "-i", "x.pdf", "--ranges", "0-2")
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "invalid --ranges")
		assert.Empty(t, fake.Opened())
	})

	t.Run("every must be positive", func(t *testing.T) {
		setupCommandTest(t)
		res := execute(t, "", "split", "-i", "x.pdf", "--every", "0")
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "--every must be >= 1")
	})

	t.Run("range beyond the document writes nothing", func(t *testing.T) {
		fake, dir := setupCommandTest(t)
		input := pdftest.WriteDoc(t, filepath.Join(dir, "short.pdf"), pdftest.Pages("s", 3)...)

		res := execute(t, "", "split", "-i", input, "--ranges", "1-2,3-9")
		require.Error(t, res.err)
		assert.Empty(t, fake.Saved())
		assert.Empty(t, res.stdout)
	})

	t.Run("write failure keeps earlier outputs", func(t *testing.T) {
		fake, dir := setupCommandTest(t)
		input := pdftest.WriteDoc(t, filepath.Join(dir, "doc.pdf"), pdftest.Pages("d", 3)...)
		fake.FailSave["doc-2-2.pdf"] = errors.New("disk full")

		res := execute(t, "", "split", "-i", input)
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "disk full")
		assert.Equal(t, []string{"doc-1-1.pdf"}, lines(res.stdout))
		assert.FileExists(t, filepath.Join(dir, "doc-1-1.pdf"))
		assert.NoFileExists(t, filepath.Join(dir, "doc-3-3.pdf"))
	})

	t.Run("existing output rejected", func(t *testing.T) {
		_, dir := setupCommandTest(t)
		input := pdftest.WriteDoc(t, filepath.Join(dir, "doc.pdf"), pdftest.Pages("d", 1)...)
		pdftest.WriteDoc(t, filepath.Join(dir, "doc-1-1.pdf"), "old")

		res := execute(t, "", "split", "-i", input)
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "already exists")

		res = execute(t, "", "split", "-i", input, "--suffix")
		require.NoError(t, res.err, res.stderr)
		assert.Equal(t, []string{"d:1"}, pdftest.ReadLabels(t, filepath.Join(dir, "doc-1-1_1.pdf")))
		assert.Equal(t, []string{"old"}, pdftest.ReadLabels(t, filepath.Join(dir, "doc-1-1.pdf")))
	})
}
