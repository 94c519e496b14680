// Package bgworker runs fire-and-forget work on a bounded pool of
// goroutines.
package bgworker

import (
	"context"
	"sync"

	"github.com/alitto/pond/v2"
	"github.com/giraplus/giraplus-go/envutil"
	"github.com/giraplus/giraplus-go/logger"
	"github.com/giraplus/giraplus-go/shutdown"
)

const defaultWorkerCount = 10

// Pool is a bounded worker pool.
type Pool struct {
	pool pond.Pool
	stop sync.Once
}

// New creates a pool with GIRA_WORKER_COUNT workers (default 10), or size
// workers when size is positive.
func New(ctx context.Context, size int) *Pool {
	if size <= 0 {
		size = envutil.Int(ctx, "GIRA_WORKER_COUNT",
			envutil.Default(defaultWorkerCount),
			envutil.Validate(positive)).
			ValueOrElse(defaultWorkerCount)
	}

	logger.Get(ctx).Debug("Initializing background worker pool", "count", size)

	return &Pool{pool: pond.NewPool(size)}
}

func positive(n int) error {
	if n <= 0 {
		return envutil.ErrBadEnvVar
	}

	return nil
}

// Go runs f on the pool and returns immediately. It fails if the pool is
// stopped.
func (p *Pool) Go(f func()) error {
	return p.pool.Go(f)
}

// StopAndWait waits for queued work and stops the pool. Later calls do
// nothing.
func (p *Pool) StopAndWait() {
	p.stop.Do(p.pool.StopAndWait)
}

// StopOnShutdown drains the pool when the process shuts down.
func (p *Pool) StopOnShutdown(ctx context.Context) {
	shutdown.BeforeShutdown(func() {
		logger.Get(ctx).Debug("Stopping background worker pool")
		p.StopAndWait()
		logger.Get(ctx).Debug("Background worker pool stopped")
	})
}
