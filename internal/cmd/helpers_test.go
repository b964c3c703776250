package cmd

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/harrison/pdfops/internal/config"
	"github.com/harrison/pdfops/internal/pdfdoc"
	"github.com/harrison/pdfops/internal/pdfdoc/pdftest"
)

// setupCommandTest swaps in a fake PDF backend, isolates configuration from
// the developer's environment and changes into a fresh directory.
func setupCommandTest(t *testing.T) (*pdftest.Fake, string) {
	t.Helper()

	fake := pdftest.NewFake()
	prev := newCapability
	newCapability = func() pdfdoc.Capability { return fake }
	t.Cleanup(func() { newCapability = prev })

	for _, key := range []string{
		config.EnvLogLevel, config.EnvLogDir, config.EnvCollisionPolicy,
		config.EnvMetricsFile, config.EnvMaxDepth, config.EnvFollowLinks,
	} {
		t.Setenv(key, "")
	}
	t.Setenv(config.HomeEnv, t.TempDir())

	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return fake, dir
}

type cmdResult struct {
	stdout string
	stderr string
	err    error
}

// execute runs the root command with args and optional stdin.
func execute(t *testing.T, stdin string, args ...string) cmdResult {
	t.Helper()

	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()
	return cmdResult{stdout: out.String(), stderr: errOut.String(), err: err}
}

// lines splits output into non-empty trimmed lines.
func lines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
