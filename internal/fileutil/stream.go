package fileutil

import (
	"context"
)

// EventKind identifies a ScanEvent.
type EventKind int

const (
	EventFound EventKind = iota
	EventWarning
	EventDone
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventFound:
		return "found"
	case EventWarning:
		return "warning"
	case EventDone:
		return "done"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ScanEvent is one message from Stream.
type ScanEvent struct {
	Kind    EventKind
	Entry   ScanEntry    // set for EventFound
	Err     error        // set for EventWarning and EventFailed
	Summary *WalkSummary // set for EventDone
}

// streamBuffer is the channel capacity used by Stream.
const streamBuffer = 64

// Stream runs a walk on its own goroutine and reports entries and warnings as
// they are found. Exactly one EventDone or EventFailed is sent last, then the
// channel is closed. Callers must drain the channel; cancelling ctx makes the
// walk finish quickly with a Done event whose summary is marked Cancelled.
func Stream(ctx context.Context, root string, cfg FilterConfig) <-chan ScanEvent {
	ch := make(chan ScanEvent, streamBuffer)

	go func() {
		defer close(ch)

		summary := &WalkSummary{}
		send := func(ev ScanEvent) error {
			select {
			case ch <- ev:
				return nil
			case <-ctx.Done():
				return errCancelled
			}
		}

		err := walk(ctx, root, cfg,
			func(e ScanEntry) error {
				if err := send(ScanEvent{Kind: EventFound, Entry: e}); err != nil {
					return err
				}
				summary.Found++
				return nil
			},
			func(w error) {
				summary.Warnings = append(summary.Warnings, w)
				_ = send(ScanEvent{Kind: EventWarning, Err: w})
			},
		)

		switch {
		case err == nil:
			ch <- ScanEvent{Kind: EventDone, Summary: summary}
		case err == errCancelled:
			summary.Cancelled = true
			ch <- ScanEvent{Kind: EventDone, Summary: summary}
		default:
			ch <- ScanEvent{Kind: EventFailed, Err: err}
		}
	}()

	return ch
}
