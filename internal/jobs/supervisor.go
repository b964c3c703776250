// Package jobs runs at most one merge or split at a time on a background
// goroutine, with progress reporting and cooperative cancellation, so an
// interactive prompt stays responsive while a long operation runs.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/pdfops/internal/models"
)

var (
	// ErrJobRunning is returned by Start while a job is active or its
	// terminal state has not been dismissed with Reset.
	ErrJobRunning = errors.New("a job is already running")
	// ErrNoJob is returned by Reset when there is nothing to dismiss.
	ErrNoJob = errors.New("no job to dismiss")
)

// Kind names the operation a job performs.
type Kind string

const (
	KindMerge Kind = models.KindMerge
	KindSplit Kind = models.KindSplit
)

// State is the lifecycle state of the supervisor's current job.
type State int

const (
	StateIdle State = iota
	StatePending
	StateRunning
	StateSucceeded
	StateFailed
	StateCancelled
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Active reports whether the state blocks a new Start because work is
// still in progress.
func (s State) Active() bool {
	return s == StatePending || s == StateRunning
}

// Terminal reports whether the job has finished.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateCancelled
}

// Job identifies one run.
type Job struct {
	ID      string
	Kind    Kind
	Started time.Time
}

// Outcome is the terminal report of a job.
type Outcome struct {
	JobID    string
	Kind     Kind
	State    State
	Result   interface{} // *models.MergeResult or *models.SplitResult, possibly partial
	Err      error       // nil when Succeeded
	Duration time.Duration
}

// Message is sent on a job's channel. Exactly one of the fields is set.
type Message struct {
	Progress *models.ProgressSnapshot
	Done     *Outcome
}

// Status is a point-in-time view of the supervisor.
type Status struct {
	State    State
	Job      *Job
	Progress models.ProgressSnapshot
	Outcome  *Outcome
}

// RunFunc performs the work of a job. It must return promptly once ctx is
// cancelled, at its next checkpoint.
type RunFunc func(ctx context.Context, sink models.ProgressSink) (interface{}, error)

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithBuffer sets the message channel capacity. Progress messages are
// dropped rather than blocking the worker when the buffer is full.
func WithBuffer(n int) Option {
	return func(s *Supervisor) {
		if n > 0 {
			s.buffer = n
		}
	}
}

// WithOnDone registers a callback invoked on the worker goroutine with every
// terminal outcome, before the Done message is sent.
func WithOnDone(fn func(Outcome)) Option {
	return func(s *Supervisor) {
		s.onDone = fn
	}
}

const defaultBuffer = 32

// Supervisor owns the state of at most one job.
type Supervisor struct {
	mu       sync.Mutex
	state    State
	job      *Job
	progress models.ProgressSnapshot
	outcome  *Outcome
	cancel   context.CancelFunc
	done     chan struct{}

	buffer int
	onDone func(Outcome)
}

// New creates an idle Supervisor.
func New(opts ...Option) *Supervisor {
	s := &Supervisor{buffer: defaultBuffer}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches run on a worker goroutine. The returned channel carries
// progress snapshots followed by exactly one Done message, then is closed.
// Callers should drain it.
func (s *Supervisor) Start(kind Kind, run RunFunc) (*Job, <-chan Message, error) {
	if run == nil {
		return nil, nil, fmt.Errorf("start %s: nil run function", kind)
	}

	s.mu.Lock()
	if s.state != StateIdle {
		state := s.state
		s.mu.Unlock()
		return nil, nil, fmt.Errorf("%w (current job is %s)", ErrJobRunning, state)
	}

	ctx, cancel := context.WithCancel(context.Background())
	job := &Job{ID: uuid.NewString(), Kind: kind, Started: time.Now()}
	ch := make(chan Message, s.buffer)

	s.state = StatePending
	s.job = job
	s.progress = models.ProgressSnapshot{}
	s.outcome = nil
	s.cancel = cancel
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go s.work(ctx, cancel, job, run, ch, done)
	return job, ch, nil
}

func (s *Supervisor) work(ctx context.Context, cancel context.CancelFunc, job *Job, run RunFunc, ch chan Message, done chan struct{}) {
	defer cancel()

	s.mu.Lock()
	s.state = StateRunning
	s.mu.Unlock()

	sink := &jobSink{s: s, ch: ch}
	result, err := safeRun(ctx, run, sink)

	outcome := &Outcome{
		JobID:    job.ID,
		Kind:     job.Kind,
		Result:   result,
		Err:      err,
		Duration: time.Since(job.Started),
	}
	switch {
	case err == nil:
		outcome.State = StateSucceeded
	case errors.Is(err, context.Canceled):
		outcome.State = StateCancelled
	default:
		outcome.State = StateFailed
	}

	s.mu.Lock()
	s.state = outcome.State
	s.outcome = outcome
	s.cancel = nil
	s.mu.Unlock()
	close(done)

	if s.onDone != nil {
		s.onDone(*outcome)
	}

	ch <- Message{Done: outcome}
	close(ch)
}

func safeRun(ctx context.Context, run RunFunc, sink models.ProgressSink) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return run(ctx, sink)
}

// Cancel asks the running job to stop at its next checkpoint. It reports
// whether there was an active job to cancel.
func (s *Supervisor) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Active() || s.cancel == nil {
		return false
	}
	s.cancel()
	return true
}

// Snapshot returns the current status.
func (s *Supervisor) Snapshot() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{State: s.state, Progress: s.progress}
	if s.job != nil {
		job := *s.job
		st.Job = &job
	}
	if s.outcome != nil {
		out := *s.outcome
		st.Outcome = &out
	}
	return st
}

// Wait blocks until the current job reaches a terminal state or ctx is done.
// It returns nil immediately when no job has been started.
func (s *Supervisor) Wait(ctx context.Context) (*Outcome, error) {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil, nil
	}

	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome == nil {
		return nil, nil
	}
	out := *s.outcome
	return &out, nil
}

// Reset dismisses a finished job and returns the supervisor to idle.
func (s *Supervisor) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.state.Active():
		return fmt.Errorf("cannot dismiss: %w", ErrJobRunning)
	case s.state == StateIdle:
		return ErrNoJob
	}

	s.state = StateIdle
	s.job = nil
	s.outcome = nil
	s.progress = models.ProgressSnapshot{}
	s.done = nil
	return nil
}

// jobSink adapts engine progress calls into supervisor state and channel
// messages. Position only ever increases.
type jobSink struct {
	s  *Supervisor
	ch chan Message
}

func (j *jobSink) SetLength(n int) {
	j.update(func(p *models.ProgressSnapshot) { p.Length = n })
}

func (j *jobSink) Advance(message string) {
	j.update(func(p *models.ProgressSnapshot) {
		p.Position++
		p.Message = message
	})
}

func (j *jobSink) SetMessage(message string) {
	j.update(func(p *models.ProgressSnapshot) { p.Message = message })
}

func (j *jobSink) Finish() {}

func (j *jobSink) update(fn func(*models.ProgressSnapshot)) {
	j.s.mu.Lock()
	fn(&j.s.progress)
	snap := j.s.progress
	j.s.mu.Unlock()

	select {
	case j.ch <- Message{Progress: &snap}:
	default:
	}
}
