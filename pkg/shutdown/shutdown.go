package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// ErrSignal is the cancel cause when a signal ended the context.
var ErrSignal = errors.New("shutdown signal")

// WithSignals returns a context cancelled by the first of sigs, or by
// SIGINT/SIGTERM when none are given. context.Cause wraps ErrSignal and
// names the signal; calling the returned cancel leaves context.Canceled.
func WithSignals(parent context.Context, sigs ...os.Signal) (context.Context, context.CancelFunc) {
	if len(sigs) == 0 {
		sigs = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}
	ctx, cancel := context.WithCancelCause(parent)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)

	go func() {
		defer signal.Stop(ch)
		select {
		case <-ctx.Done():
		case sig := <-ch:
			cancel(fmt.Errorf("%w: %s", ErrSignal, sig))
		}
	}()

	return ctx, func() { cancel(nil) }
}

// Signalled reports whether ctx ended because of a signal.
func Signalled(ctx context.Context) bool {
	return errors.Is(context.Cause(ctx), ErrSignal)
}
