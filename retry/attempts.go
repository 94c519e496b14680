package retry

import (
	"context"
	"time"
)

// Attempts is the maximum number of attempts, including the first one.
// Zero means unlimited.
type Attempts uint

// Outcome says what the loop did after a failed attempt.
type Outcome int

const (
	// OutcomeRetrying means another attempt follows after Event.Delay.
	OutcomeRetrying Outcome = iota
	// OutcomeAborted means the error was permanent and the loop stopped.
	OutcomeAborted
	// OutcomeExhausted means the attempt budget is used up.
	OutcomeExhausted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRetrying:
		return "retrying"
	case OutcomeAborted:
		return "aborted"
	case OutcomeExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Event describes one failed attempt.
type Event struct {
	Attempt uint
	Err     error
	Outcome Outcome
	// Delay before the next attempt; only set for OutcomeRetrying.
	Delay time.Duration
}

// Final reports whether the loop stops after this event.
func (e Event) Final() bool {
	return e.Outcome != OutcomeRetrying
}

type ctxKey string

const attemptKey ctxKey = "attempt"

func withAttempt(ctx context.Context, attempt uint) context.Context {
	return context.WithValue(ctx, attemptKey, attempt)
}

// Attempt returns the current 1-indexed attempt number from inside an
// operation, or 0 outside of a retry loop.
//
//	err := retry.Do(ctx, func(ctx context.Context) error {
//	    slog.Info("calling", "attempt", retry.Attempt(ctx))
//	    return makeAPICall()
//	})
func Attempt(ctx context.Context) uint {
	attemptNum, ok := ctx.Value(attemptKey).(uint)
	if !ok {
		return 0
	}

	return attemptNum
}
