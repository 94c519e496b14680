// Package retry runs an operation repeatedly until it succeeds, fails
// permanently, or runs out of attempts.
//
// Attempts are strictly sequential: the next attempt starts only after the
// previous one has returned and the backoff delay has elapsed. A Runner keeps
// no state between calls, so one Runner can serve any number of concurrent
// callers.
//
// The defaults are 5 attempts with a linear backoff of 1s × attempt, which
// gives delays of 1s, 2s, 3s and 4s between attempts:
//
//	err := retry.Do(ctx, func(ctx context.Context) error {
//	    return makeAPICall()
//	})
//
// Returning retry.Abort(err) from the operation stops the loop immediately:
//
//	if isFatal(err) {
//	    return retry.Abort(err)
//	}
package retry

import (
	"context"
	"errors"
	"time"
)

const (
	DefaultAttempts  Attempts = 5
	DefaultBaseDelay          = 1000 * time.Millisecond
)

// Runner executes operations with retry logic.
type Runner interface {
	Do(ctx context.Context, f func(ctx context.Context) error) error
}

// ValueRunner executes operations that produce a value with retry logic.
type ValueRunner[T any] interface {
	Do(ctx context.Context, f func(ctx context.Context) (T, error)) (T, error)
}

func newOptions(opts []Option) *options {
	intOpts := &options{
		attempts: DefaultAttempts,
		backoff:  LinearBackoff{Base: DefaultBaseDelay},
		sleep:    sleepCtx,
	}

	for _, option := range opts {
		if option != nil {
			option(intOpts)
		}
	}

	return intOpts
}

// NewRunner creates a Runner. Without options it makes 5 attempts with a
// linear 1s backoff.
func NewRunner(opts ...Option) Runner {
	return &runnerImpl{opts: newOptions(opts)}
}

// NewValueRunner creates a ValueRunner with the same defaults as NewRunner.
func NewValueRunner[T any](opts ...Option) ValueRunner[T] {
	return &valueRunnerImpl[T]{opts: newOptions(opts)}
}

type runnerImpl struct {
	opts *options
}

func (r *runnerImpl) Do(ctx context.Context, f func(ctx context.Context) error) error {
	return do(ctx, r.opts, f)
}

type valueRunnerImpl[T any] struct {
	opts *options
}

// Do returns the first successful result. On failure it returns the zero
// value of T together with the final error.
func (v *valueRunnerImpl[T]) Do(ctx context.Context, f func(ctx context.Context) (T, error)) (T, error) {
	var out T

	err := do(ctx, v.opts, func(ctx context.Context) error {
		var err error

		out, err = f(ctx)

		return err
	})
	if err != nil {
		var zero T

		return zero, err
	}

	return out, nil
}

// do is the retry loop. The attempt counter and the last error are local to
// a single call and are discarded when it returns.
//
// It returns:
//   - nil if the operation succeeds
//   - the unwrapped error if the operation returns a permanent error
//   - the last error once every attempt has failed
//   - ctx.Err() if the context ends while waiting between attempts
func do(ctx context.Context, opts *options, operation func(ctx context.Context) error) error {
	for attempt := uint(1); ; attempt++ {
		err := operation(withAttempt(ctx, attempt))
		if err == nil {
			return nil
		}

		var p *permanentError
		if errors.As(err, &p) {
			opts.notify(ctx, Event{Attempt: attempt, Err: err, Outcome: OutcomeAborted})

			return p.error
		}

		if opts.attempts != 0 && Attempts(attempt) >= opts.attempts {
			opts.notify(ctx, Event{Attempt: attempt, Err: err, Outcome: OutcomeExhausted})

			return err
		}

		delay := opts.backoff.Delay(attempt)

		opts.notify(ctx, Event{Attempt: attempt, Err: err, Outcome: OutcomeRetrying, Delay: delay})

		if sleepErr := opts.sleep(ctx, delay); sleepErr != nil {
			return sleepErr
		}
	}
}

// sleepCtx waits for d or until the context ends, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Do creates a Runner from opts and runs f with it.
func Do(ctx context.Context, f func(ctx context.Context) error, opts ...Option) error {
	return NewRunner(opts...).Do(ctx, f)
}

// DoValue creates a ValueRunner from opts and runs f with it.
func DoValue[T any](ctx context.Context, f func(ctx context.Context) (T, error), opts ...Option) (T, error) {
	return NewValueRunner[T](opts...).Do(ctx, f)
}
