package animal

import (
	"context"
	"time"
)

// CallWithTimeout runs a registry call bounded by timeout. It returns when the call
// returns or the context is done, whichever is first, so a registry that ignores
// its context can't block the caller. The abandoned call keeps running with a
// canceled context.
func CallWithTimeout(ctx context.Context, timeout time.Duration, call func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	errC := make(chan error, 1)
	go func() {
		errC <- call(ctx)
	}()

	select {
	case err := <-errC:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
