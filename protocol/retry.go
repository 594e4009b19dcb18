package protocol

import (
	"context"
	"fmt"
	"time"

	"github.com/vlcremote/vlcremote/log"
)

// DefaultRetryDelay separates two attempts of the same request.
const DefaultRetryDelay = 100 * time.Millisecond

type retrying struct {
	inner    Transport
	attempts int
	delay    time.Duration
}

// WithRetry retries network errors and timeouts up to attempts times in total.
// Protocol errors are returned immediately.
func WithRetry(t Transport, attempts int, delay time.Duration) Transport {
	if attempts < 1 {
		attempts = 1
	}
	return &retrying{inner: t, attempts: attempts, delay: delay}
}

func (r *retrying) Unwrap() Transport {
	return r.inner
}

func (r *retrying) SendCommand(ctx context.Context, name string, params map[string]string) (CommandResult, error) {
	var result CommandResult
	err := r.do(ctx, "command "+name, func() error {
		var err error
		result, err = r.inner.SendCommand(ctx, name, params)
		return err
	})
	return result, err
}

func (r *retrying) FetchStatus(ctx context.Context) (RawStatus, error) {
	var raw RawStatus
	err := r.do(ctx, "status", func() error {
		var err error
		raw, err = r.inner.FetchStatus(ctx)
		return err
	})
	return raw, err
}

func (r *retrying) do(ctx context.Context, what string, attempt func() error) error {
	var lastErr error

	for i := 0; i < r.attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return Classify(what, ctx.Err())
			case <-time.After(r.delay):
			}
		}

		lastErr = attempt()
		if lastErr == nil || !Retryable(lastErr) {
			return lastErr
		}
		log.Debugf("%s attempt %d/%d failed: %v", what, i+1, r.attempts, lastErr)
	}

	return fmt.Errorf("%s failed after %d attempts: %w", what, r.attempts, lastErr)
}
