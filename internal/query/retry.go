package query

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Default retry settings.
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = time.Second
	DefaultMaxDelay   = 30 * time.Second
)

// RetryPolicy controls how failed queries are retried. The delay before
// retry i (zero based) is min(BaseDelay*2^i, MaxDelay).
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	// Retryable reports whether err may be retried. Nil retries everything.
	Retryable func(err error) bool
}

// DefaultRetryPolicy returns three retries with 1s..30s exponential delays.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
		MaxDelay:   DefaultMaxDelay,
	}
}

// ExponentialDelay is a backoff.BackOff producing min(base*2^n, max) with
// no jitter.
type ExponentialDelay struct {
	Base    time.Duration
	Max     time.Duration
	attempt int
}

// NextBackOff implements backoff.BackOff.
func (d *ExponentialDelay) NextBackOff() time.Duration {
	next := d.Delay(d.attempt)
	d.attempt++
	return next
}

// Reset implements backoff.BackOff.
func (d *ExponentialDelay) Reset() {
	d.attempt = 0
}

// Delay returns the delay before retry n.
func (d *ExponentialDelay) Delay(n int) time.Duration {
	delay := d.Base
	for range n {
		delay *= 2
		if delay >= d.Max {
			return d.Max
		}
	}
	return min(delay, d.Max)
}

// Retry runs op until it succeeds, returns a non-retryable error, or the
// policy's retries are exhausted. The last error is returned unchanged.
// onRetry, when non-nil, is called before each wait.
func Retry[V any](
	ctx context.Context,
	p RetryPolicy,
	op func(context.Context) (V, error),
	onRetry func(err error, wait time.Duration),
) (V, error) {
	operation := func() (V, error) {
		v, err := op(ctx)
		if err != nil && p.Retryable != nil && !p.Retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(&ExponentialDelay{Base: p.BaseDelay, Max: p.MaxDelay}),
		backoff.WithMaxTries(uint(max(p.MaxRetries, 0)) + 1),
		backoff.WithMaxElapsedTime(0),
	}
	if onRetry != nil {
		opts = append(opts, backoff.WithNotify(onRetry))
	}

	v, err := backoff.Retry(ctx, operation, opts...)

	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Unwrap()
	}
	return v, err
}
