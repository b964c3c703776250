// Package pdftest provides an in-memory stand-in for pdfdoc.Capability.
//
// Fake documents are plain text files with one page label per line, for
// example "a:1\na:2\n". A file whose content is "CORRUPT" fails to open.
// Saved outputs use the same format, so tests can assert exactly which pages
// landed in which file and in what order.
package pdftest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/harrison/pdfops/internal/filelock"
	"github.com/harrison/pdfops/internal/pdfdoc"
)

// Corrupt is the content that makes Fake.Open fail.
const Corrupt = "CORRUPT"

// ErrCorrupt is returned by Fake.Open for corrupt files.
var ErrCorrupt = errors.New("corrupt fake document")

// Doc is a fake document.
type Doc struct {
	Labels []string
}

func (d *Doc) PageCount() int { return len(d.Labels) }

// Fake implements pdfdoc.Capability over label files.
type Fake struct {
	mu sync.Mutex

	// OnOpen runs before every Open with the path being opened.
	OnOpen func(path string)
	// FailSave makes Save fail for paths whose base name is listed.
	FailSave map[string]error

	opened []string
	saved  []string
}

var _ pdfdoc.Capability = (*Fake)(nil)

// NewFake returns an empty Fake.
func NewFake() *Fake {
	return &Fake{FailSave: make(map[string]error)}
}

func (f *Fake) Open(path string) (pdfdoc.Document, error) {
	if f.OnOpen != nil {
		f.OnOpen(path)
	}
	f.mu.Lock()
	f.opened = append(f.opened, path)
	f.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == Corrupt {
		return nil, fmt.Errorf("open %s: %w", path, ErrCorrupt)
	}
	return &Doc{Labels: parse(string(data))}, nil
}

func (f *Fake) Extract(doc pdfdoc.Document, pages []int) (pdfdoc.Document, error) {
	d, ok := doc.(*Doc)
	if !ok {
		return nil, pdfdoc.ErrForeignDocument
	}
	out := &Doc{Labels: make([]string, 0, len(pages))}
	for _, p := range pages {
		if p < 1 || p > len(d.Labels) {
			return nil, fmt.Errorf("extract: page %d out of range 1-%d", p, len(d.Labels))
		}
		out.Labels = append(out.Labels, d.Labels[p-1])
	}
	return out, nil
}

func (f *Fake) Empty() pdfdoc.Document {
	return &Doc{}
}

func (f *Fake) Append(dst, src pdfdoc.Document) error {
	d, ok := dst.(*Doc)
	if !ok {
		return pdfdoc.ErrForeignDocument
	}
	s, ok := src.(*Doc)
	if !ok {
		return pdfdoc.ErrForeignDocument
	}
	d.Labels = append(d.Labels, s.Labels...)
	return nil
}

func (f *Fake) Save(doc pdfdoc.Document, path string) error {
	d, ok := doc.(*Doc)
	if !ok {
		return pdfdoc.ErrForeignDocument
	}
	if err, fail := f.FailSave[filepath.Base(path)]; fail {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if len(d.Labels) == 0 {
		return fmt.Errorf("save %s: %w", path, pdfdoc.ErrEmptyDocument)
	}
	if err := filelock.AtomicWrite(path, []byte(strings.Join(d.Labels, "\n")+"\n")); err != nil {
		return err
	}
	f.mu.Lock()
	f.saved = append(f.saved, path)
	f.mu.Unlock()
	return nil
}

// Opened returns the paths passed to Open, in call order.
func (f *Fake) Opened() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.opened...)
}

// Saved returns the paths successfully written, in call order.
func (f *Fake) Saved() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.saved...)
}

// Pages returns labels "prefix:1" through "prefix:n".
func Pages(prefix string, n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("%s:%d", prefix, i+1)
	}
	return labels
}

// WriteDoc writes a fake document with the given page labels.
func WriteDoc(t testing.TB, path string, labels ...string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := ""
	if len(labels) > 0 {
		content = strings.Join(labels, "\n") + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fake doc: %v", err)
	}
	return path
}

// WriteCorrupt writes a fake document that fails to open.
func WriteCorrupt(t testing.TB, path string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(Corrupt), 0644); err != nil {
		t.Fatalf("write corrupt doc: %v", err)
	}
	return path
}

// ReadLabels returns the page labels stored in a fake document.
func ReadLabels(t testing.TB, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fake doc: %v", err)
	}
	return parse(string(data))
}

func parse(content string) []string {
	labels := []string{}
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			labels = append(labels, line)
		}
	}
	return labels
}
