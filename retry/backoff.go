package retry

import "time"

// Backoff computes how long to wait after a failed attempt.
type Backoff interface {
	// Delay returns the wait after the given attempt failed. Attempts are
	// 1-indexed: Delay(1) is the wait between the first and second attempt.
	Delay(attempt uint) time.Duration
}

// LinearBackoff waits Base × attempt, optionally capped at Max.
//
//	backoff := retry.LinearBackoff{Base: time.Second}
//	// Delays: 1s, 2s, 3s, 4s, ...
type LinearBackoff struct {
	Base time.Duration
	// Max caps the delay. Zero means no cap.
	Max time.Duration
}

func (b LinearBackoff) Delay(attempt uint) time.Duration {
	attempt = max(attempt, 1)

	d := b.Base * time.Duration(attempt)
	if b.Max > 0 && d > b.Max {
		return b.Max
	}

	return d
}
