package jobs

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/pdfops/internal/executor"
	"github.com/harrison/pdfops/internal/models"
	"github.com/harrison/pdfops/internal/output"
	"github.com/harrison/pdfops/internal/pdfdoc/pdftest"
)

const testTimeout = 5 * time.Second

// collect drains a job channel and returns its progress messages and outcome.
func collect(t *testing.T, ch <-chan Message) ([]models.ProgressSnapshot, *Outcome) {
	t.Helper()
	var progress []models.ProgressSnapshot
	var done *Outcome
	timeout := time.After(testTimeout)
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				require.NotNil(t, done, "channel closed without Done")
				return progress, done
			}
			if msg.Progress != nil {
				require.Nil(t, done, "progress after Done")
				progress = append(progress, *msg.Progress)
			}
			if msg.Done != nil {
				require.Nil(t, done, "second Done")
				done = msg.Done
			}
		case <-timeout:
			t.Fatal("timed out waiting for job")
		}
	}
}

func TestStartSucceeds(t *testing.T) {
	var observed []Outcome
	var mu sync.Mutex
	s := New(WithOnDone(func(o Outcome) {
		mu.Lock()
		observed = append(observed, o)
		mu.Unlock()
	}))

	job, ch, err := s.Start(KindMerge, func(ctx context.Context, sink models.ProgressSink) (interface{}, error) {
		sink.SetLength(3)
		for i := 0; i < 3; i++ {
			sink.Advance(fmt.Sprintf("file%d.pdf", i))
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, KindMerge, job.Kind)

	progress, done := collect(t, ch)
	assert.Equal(t, StateSucceeded, done.State)
	assert.Equal(t, job.ID, done.JobID)
	assert.Equal(t, "ok", done.Result)
	assert.NoError(t, done.Err)

	for i := 1; i < len(progress); i++ {
		assert.GreaterOrEqual(t, progress[i].Position, progress[i-1].Position)
	}

	st := s.Snapshot()
	assert.Equal(t, StateSucceeded, st.State)
	assert.Equal(t, 3, st.Progress.Position)
	assert.Equal(t, 3, st.Progress.Length)
	require.NotNil(t, st.Outcome)

	mu.Lock()
	assert.Len(t, observed, 1)
	mu.Unlock()
}

func TestStartRejectedWhileRunningAndUntilDismissed(t *testing.T) {
	s := New()
	release := make(chan struct{})

	_, ch, err := s.Start(KindSplit, func(ctx context.Context, sink models.ProgressSink) (interface{}, error) {
		<-release
		return nil, nil
	})
	require.NoError(t, err)

	_, _, err = s.Start(KindMerge, func(context.Context, models.ProgressSink) (interface{}, error) { return nil, nil })
	assert.ErrorIs(t, err, ErrJobRunning)
	assert.ErrorIs(t, s.Reset(), ErrJobRunning)

	close(release)
	_, done := collect(t, ch)
	assert.Equal(t, StateSucceeded, done.State)

	// terminal but not dismissed
	_, _, err = s.Start(KindMerge, func(context.Context, models.ProgressSink) (interface{}, error) { return nil, nil })
	assert.ErrorIs(t, err, ErrJobRunning)

	require.NoError(t, s.Reset())
	assert.Equal(t, StateIdle, s.Snapshot().State)
	assert.Nil(t, s.Snapshot().Job)

	_, ch, err = s.Start(KindMerge, func(context.Context, models.ProgressSink) (interface{}, error) { return nil, nil })
	require.NoError(t, err)
	collect(t, ch)
}

func TestFailedAndPanickingJobs(t *testing.T) {
	s := New()
	boom := errors.New("boom")

	_, ch, err := s.Start(KindMerge, func(context.Context, models.ProgressSink) (interface{}, error) {
		return nil, boom
	})
	require.NoError(t, err)
	_, done := collect(t, ch)
	assert.Equal(t, StateFailed, done.State)
	assert.ErrorIs(t, done.Err, boom)
	require.NoError(t, s.Reset())

	_, ch, err = s.Start(KindSplit, func(context.Context, models.ProgressSink) (interface{}, error) {
		panic("decoder exploded")
	})
	require.NoError(t, err)
	_, done = collect(t, ch)
	assert.Equal(t, StateFailed, done.State)
	assert.Contains(t, done.Err.Error(), "decoder exploded")
}

// gateSink pauses the worker after a number of Advance calls.
type gateSink struct {
	models.ProgressSink
	after   int
	count   int
	reached chan struct{}
	release chan struct{}
}

func (g *gateSink) Advance(message string) {
	g.ProgressSink.Advance(message)
	g.count++
	if g.count == g.after {
		close(g.reached)
		<-g.release
	}
}

func TestCancelMergeAfterTwoOfFive(t *testing.T) {
	dir := t.TempDir()
	var inputs []string
	for i := 1; i <= 5; i++ {
		name := fmt.Sprintf("doc%d", i)
		inputs = append(inputs, pdftest.WriteDoc(t, filepath.Join(dir, name+".pdf"), pdftest.Pages(name, 3)...))
	}
	out := filepath.Join(dir, "merged.pdf")

	fake := pdftest.NewFake()
	merger := executor.NewMerger(fake, nil)
	reached := make(chan struct{})
	release := make(chan struct{})

	s := New()
	_, ch, err := s.Start(KindMerge, func(ctx context.Context, sink models.ProgressSink) (interface{}, error) {
		gate := &gateSink{ProgressSink: sink, after: 2, reached: reached, release: release}
		return merger.Merge(ctx, executor.MergeRequest{
			Inputs: inputs,
			Output: output.Plan{Path: out},
		}, gate)
	})
	require.NoError(t, err)

	select {
	case <-reached:
	case <-time.After(testTimeout):
		t.Fatal("merge never reached the second input")
	}
	assert.Equal(t, StateRunning, s.Snapshot().State)
	assert.True(t, s.Cancel())
	close(release)

	_, done := collect(t, ch)
	assert.Equal(t, StateCancelled, done.State)
	assert.True(t, errors.Is(done.Err, context.Canceled))
	assert.NoFileExists(t, out)
	assert.Len(t, fake.Opened(), 2)

	assert.False(t, s.Cancel(), "nothing left to cancel")
	assert.Equal(t, StateCancelled, s.Snapshot().State)
}

func TestWait(t *testing.T) {
	s := New()

	out, err := s.Wait(context.Background())
	require.NoError(t, err)
	assert.Nil(t, out)

	release := make(chan struct{})
	_, ch, err := s.Start(KindSplit, func(context.Context, models.ProgressSink) (interface{}, error) {
		<-release
		return 7, nil
	})
	require.NoError(t, err)
	go func() {
		for range ch {
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = s.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	ctx2, cancel2 := context.WithTimeout(context.Background(), testTimeout)
	defer cancel2()
	out, err = s.Wait(ctx2)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, StateSucceeded, out.State)
	assert.Equal(t, 7, out.Result)
}

func TestResetWithoutJob(t *testing.T) {
	assert.ErrorIs(t, New().Reset(), ErrNoJob)
	assert.False(t, New().Cancel())
}

func TestStartNilRun(t *testing.T) {
	_, _, err := New().Start(KindMerge, nil)
	assert.Error(t, err)
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "cancelled", StateCancelled.String())
	assert.True(t, StateRunning.Active())
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateIdle.Terminal())
}
