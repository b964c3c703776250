package executor

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// WithInterrupt returns a context that is cancelled on SIGINT or SIGTERM.
// Engines observe the cancellation at their next checkpoint, so an
// interrupted merge writes nothing and an interrupted split keeps the files
// it already finished. The notice, if non-nil, receives one line when a
// signal arrives. Call stop to release the signal handler.
func WithInterrupt(ctx context.Context, notice io.Writer) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			if notice != nil {
				fmt.Fprintln(notice, "\nReceived interrupt signal, stopping at the next checkpoint...")
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	stop := func() {
		signal.Stop(sigChan)
		cancel()
	}
	return ctx, stop
}
