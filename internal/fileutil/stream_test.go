package fileutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(ch <-chan ScanEvent) []ScanEvent {
	var events []ScanEvent
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func TestStreamDeliversEntriesThenDone(t *testing.T) {
	root := makeTree(t, "b.pdf", "a/x.pdf", "a.pdf")

	events := drain(Stream(context.Background(), root, FilterConfig{}))
	require.Len(t, events, 4)

	var found []string
	for _, ev := range events[:3] {
		require.Equal(t, EventFound, ev.Kind)
		found = append(found, ev.Entry.RelPath)
	}
	assert.Equal(t, []string{"a.pdf", "a/x.pdf", "b.pdf"}, found)

	last := events[3]
	assert.Equal(t, EventDone, last.Kind)
	require.NotNil(t, last.Summary)
	assert.Equal(t, 3, last.Summary.Found)
	assert.False(t, last.Summary.Cancelled)
}

func TestStreamFailure(t *testing.T) {
	events := drain(Stream(context.Background(), filepath.Join(t.TempDir(), "nope"), FilterConfig{}))
	require.Len(t, events, 1)
	assert.Equal(t, EventFailed, events[0].Kind)
	assert.ErrorIs(t, events[0].Err, ErrRootNotFound)
}

func TestStreamCancelIsNotAnError(t *testing.T) {
	files := make([]string, 0, 200)
	for i := 0; i < 200; i++ {
		files = append(files, filepath.ToSlash(filepath.Join("d", string(rune('a'+i%26)), "f"+string(rune('a'+i/26))+".pdf")))
	}
	root := makeTree(t, files...)

	ctx, cancel := context.WithCancel(context.Background())
	ch := Stream(ctx, root, FilterConfig{})

	first := <-ch
	require.Equal(t, EventFound, first.Kind)
	cancel()

	events := drain(ch)
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, EventDone, last.Kind)
	require.NotNil(t, last.Summary)
	assert.True(t, last.Summary.Cancelled)
	assert.Less(t, last.Summary.Found, 200)
	for _, ev := range events {
		assert.NotEqual(t, EventFailed, ev.Kind)
	}
}

func TestStreamAlreadyCancelled(t *testing.T) {
	root := makeTree(t, "a.pdf")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := drain(Stream(ctx, root, FilterConfig{}))
	require.Len(t, events, 1)
	assert.Equal(t, EventDone, events[0].Kind)
	assert.True(t, events[0].Summary.Cancelled)
	assert.Equal(t, 0, events[0].Summary.Found)
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "found", EventFound.String())
	assert.Equal(t, "failed", EventFailed.String())
}
