package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/harrison/pdfops/internal/models"
)

var _ models.ProgressSink = (*ProgressBar)(nil)

// TestProgressBarRender verifies correct ASCII bar rendering
func TestProgressBarRender(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		total    int
		width    int
		expected string
	}{
		{
			name:     "empty progress",
			current:  0,
			total:    10,
			width:    10,
			expected: "[          ] 0/10 (0%)",
		},
		{
			name:     "half progress",
			current:  5,
			total:    10,
			width:    10,
			expected: "[=====     ] 5/10 (50%)",
		},
		{
			name:     "full progress",
			current:  10,
			total:    10,
			width:    10,
			expected: "[==========] 10/10 (100%)",
		},
		{
			name:     "overflow clamps",
			current:  12,
			total:    10,
			width:    4,
			expected: "[====] 12/10 (100%)",
		},
		{
			name:     "zero total",
			current:  0,
			total:    0,
			width:    5,
			expected: "[     ] 0/0 (0%)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pb := NewProgressBar(tt.total, tt.width, false)
			pb.Update(tt.current)
			if got := pb.Render(); got != tt.expected {
				t.Errorf("Render() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestProgressBarColor(t *testing.T) {
	pb := NewProgressBar(2, 2, true)
	pb.Increment()
	if got := pb.Render(); !strings.HasPrefix(got, "\033[36m") {
		t.Errorf("in-progress bar should be cyan, got %q", got)
	}
	pb.Increment()
	if got := pb.Render(); !strings.HasPrefix(got, "\033[32m") {
		t.Errorf("complete bar should be green, got %q", got)
	}
}

func TestProgressBarDefaults(t *testing.T) {
	pb := NewProgressBar(4, 0, false)
	pb.SetPrefix("merge ")
	if got := pb.Render(); got != "merge [          ] 0/4 (0%)" {
		t.Errorf("Render() = %q", got)
	}
	if pb.Percentage() != 0 || pb.Total() != 4 || pb.Current() != 0 {
		t.Error("unexpected initial state")
	}
}

// TestProgressWriterLines verifies a non-terminal writer gets one line per step.
func TestProgressWriterLines(t *testing.T) {
	buf := &bytes.Buffer{}
	pb := NewProgressWriter(buf, "")
	pb.SetLength(2)
	pb.SetMessage("ignored when not redrawing")
	pb.Advance("a.pdf")
	pb.Advance("b.pdf")
	pb.Finish()
	pb.Finish()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.HasSuffix(lines[0], "1/2 (50%) a.pdf") {
		t.Errorf("line 1 = %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "2/2 (100%) b.pdf") {
		t.Errorf("line 2 = %q", lines[1])
	}
	if strings.Contains(buf.String(), "\r") {
		t.Error("non-terminal output must not contain carriage returns")
	}
}

func TestProgressBarConcurrentAdvance(t *testing.T) {
	pb := NewProgressBar(100, 10, false)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pb.Advance("x")
		}()
	}
	wg.Wait()
	if pb.Current() != 100 || pb.Percentage() != 100 {
		t.Errorf("expected 100/100, got %d (%d%%)", pb.Current(), pb.Percentage())
	}
}
