package giramais

import (
	"context"
	"errors"
	"sync"

	"github.com/giraplus/giraplus-go/bgworker"
	errs "github.com/giraplus/giraplus-go/errors"
	"github.com/giraplus/giraplus-go/logger"
	"go.uber.org/atomic"
)

// Reporter sends statistics in the background so that callers never wait
// for the network. Calls skipped because reporting is off are not errors.
//
//	r := giramais.NewReporter(ctx, client, pool)
//	r.AppUsage()
//	r.TripStart(&bike, nil)
//	err := r.Wait()
type Reporter struct {
	ctx    context.Context //nolint:containedctx
	client *Client
	pool   *bgworker.Pool
	wg     sync.WaitGroup
	errs   errs.Collection

	sent    *atomic.Int64
	skipped *atomic.Int64
}

// Stats counts finished reports.
type Stats struct {
	Sent    int64
	Skipped int64
	Failed  int64
}

// NewReporter creates a Reporter. Reports keep running when ctx is
// cancelled but carry its values.
func NewReporter(ctx context.Context, client *Client, pool *bgworker.Pool) *Reporter {
	return &Reporter{
		ctx:     context.WithoutCancel(ctx),
		client:  client,
		pool:    pool,
		sent:    atomic.NewInt64(0),
		skipped: atomic.NewInt64(0),
	}
}

func (r *Reporter) AppUsage() {
	r.submit("usage", func(ctx context.Context) error {
		_, err := r.client.ReportAppUsage(ctx)

		return err
	})
}

func (r *Reporter) TripStart(bikeSerial, stationSerial *string) {
	r.submit("trip", func(ctx context.Context) error {
		_, err := r.client.ReportTripStart(ctx, bikeSerial, stationSerial)

		return err
	})
}

func (r *Reporter) Error(code string, message *string) {
	r.submit("error", func(ctx context.Context) error {
		_, err := r.client.ReportError(ctx, code, message)

		return err
	})
}

func (r *Reporter) BikeRating(bikeSerial string, rating int) {
	r.submit("rating", func(ctx context.Context) error {
		_, err := r.client.PostBikeRating(ctx, bikeSerial, rating)

		return err
	})
}

func (r *Reporter) submit(kind string, report func(ctx context.Context) error) {
	r.wg.Add(1)

	err := r.pool.Go(func() {
		defer r.wg.Done()

		r.finish(kind, report(r.ctx))
	})
	if err != nil {
		r.wg.Done()
		r.finish(kind, err)
	}
}

func (r *Reporter) finish(kind string, err error) {
	switch {
	case err == nil:
		r.sent.Inc()
	case errors.Is(err, ErrReportingDisabled):
		r.skipped.Inc()
		logger.Get(r.ctx).Debug("Statistics report skipped", "kind", kind, "reason", err)
	default:
		r.errs.Add(err)
		logger.Get(r.ctx).Warn("Statistics report failed", "kind", kind, "error", err)
	}
}

// Wait blocks until every submitted report is done and returns the
// failures joined together.
func (r *Reporter) Wait() error {
	r.wg.Wait()

	return r.errs.GetError()
}

func (r *Reporter) Stats() Stats {
	return Stats{
		Sent:    r.sent.Load(),
		Skipped: r.skipped.Load(),
		Failed:  int64(r.errs.Len()),
	}
}
