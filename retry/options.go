package retry

import (
	"context"
	"time"
)

// Option configures a Runner or ValueRunner.
type Option func(*options)

// Sleeper waits between attempts. It must return early with an error if the
// context ends.
type Sleeper func(ctx context.Context, d time.Duration) error

// Observer is told about every failed attempt.
type Observer func(ctx context.Context, ev Event)

type options struct {
	attempts  Attempts
	backoff   Backoff
	sleep     Sleeper
	observers []Observer
}

func (o *options) notify(ctx context.Context, ev Event) {
	for _, obs := range o.observers {
		obs(ctx, ev)
	}
}

// WithAttempts sets the maximum number of attempts, counting the first one.
// Zero means unlimited.
//
//	runner := retry.NewRunner(retry.WithAttempts(3))
func WithAttempts(a Attempts) Option {
	return func(o *options) {
		o.attempts = a
	}
}

// WithBackoff sets the strategy used to compute the delay between attempts.
//
//	runner := retry.NewRunner(retry.WithBackoff(retry.LinearBackoff{Base: 500 * time.Millisecond}))
func WithBackoff(b Backoff) Option {
	return func(o *options) {
		if b != nil {
			o.backoff = b
		}
	}
}

// WithSleeper replaces the function used to wait between attempts. Tests
// use it to record delays without actually waiting.
func WithSleeper(s Sleeper) Option {
	return func(o *options) {
		if s != nil {
			o.sleep = s
		}
	}
}

// WithObserver registers a function that is called after every failed
// attempt, before any delay. Observers run on the calling goroutine and
// must not block.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}
