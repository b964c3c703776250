package executor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInputError(t *testing.T) {
	cause := errors.New("bad xref")
	err := NewInputError("/in/a.pdf", "open failed", cause)

	assert.Contains(t, err.Error(), "/in/a.pdf")
	assert.Contains(t, err.Error(), "open failed")
	assert.Contains(t, err.Error(), "bad xref")
	assert.ErrorIs(t, err, cause)
	assert.False(t, err.Timestamp.IsZero())

	noCause := NewInputError("/in/b.pdf", "skipped", nil)
	assert.Equal(t, "input /in/b.pdf: skipped", noCause.Error())
}

func TestOutputError(t *testing.T) {
	cause := errors.New("disk full")

	tests := []struct {
		name string
		err  *OutputError
		want string
	}{
		{"merge", &OutputError{Path: "out.pdf", Err: cause}, "output out.pdf: disk full"},
		{"split", &OutputError{Path: "a-1-1.pdf", Index: 2, Err: cause}, "output 2 (a-1-1.pdf): disk full"},
		{"split without path", &OutputError{Index: 3, Err: cause}, "output 3: disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.ErrorIs(t, tt.err, cause)
		})
	}

	wrapped := fmt.Errorf("run: %w", &OutputError{Path: "x", Err: cause})
	assert.True(t, IsOutputError(wrapped))
	assert.False(t, IsOutputError(cause))
	assert.False(t, IsOutputError(nil))
}

func TestIsCancelled(t *testing.T) {
	assert.True(t, IsCancelled(fmt.Errorf("merge: %w", context.Canceled)))
	assert.False(t, IsCancelled(context.DeadlineExceeded))
	assert.False(t, IsCancelled(nil))
}

type gracefulTestLogger struct {
	warnfCalls []string
	infofCalls []string
}

func (m *gracefulTestLogger) Warnf(format string, args ...interface{}) {
	m.warnfCalls = append(m.warnfCalls, format)
}

func (m *gracefulTestLogger) Infof(format string, args ...interface{}) {
	m.infofCalls = append(m.infofCalls, format)
}

func TestGracefulHelpers(t *testing.T) {
	// nil logger must not panic
	GracefulWarn(nil, "skipping %s", "a.pdf")
	GracefulInfo(nil, "wrote %s", "b.pdf")

	logger := &gracefulTestLogger{}
	GracefulWarn(logger, "skipping %s", "a.pdf")
	GracefulInfo(logger, "wrote %s", "b.pdf")
	assert.Equal(t, []string{"skipping %s"}, logger.warnfCalls)
	assert.Equal(t, []string{"wrote %s"}, logger.infofCalls)
}
