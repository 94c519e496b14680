package giramais

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/giraplus/giraplus-go/bgworker"
	"github.com/giraplus/giraplus-go/http/retryable"
	"github.com/giraplus/giraplus-go/retry"
	"github.com/giraplus/giraplus-go/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporter(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	s := settings.Defaults()
	s.ReportRatings = false

	client := newTestClient(t, api, s)
	pool := bgworker.New(t.Context(), 2)
	t.Cleanup(pool.StopAndWait)

	r := NewReporter(t.Context(), client, pool)

	r.AppUsage()
	r.TripStart(strPtr("E1"), strPtr("S1"))
	r.Error("BIKE_NOT_FOUND", nil)
	r.BikeRating("E1", 5)

	require.NoError(t, r.Wait())

	assert.Equal(t, Stats{Sent: 3, Skipped: 1}, r.Stats())
	assert.Len(t, api.seen(), 3)
}

func TestReporter_Failures(t *testing.T) {
	t.Parallel()

	failing := retryable.TransportFunc(func(context.Context, *retryable.Request) (*retryable.Response, error) {
		return nil, errors.New("network unreachable") //nolint:err113
	})

	client, err := NewClient(t.Context(),
		WithBaseURL("http://api.example"),
		WithDevice(testDevice),
		WithSettings(settings.Static(settings.Defaults())),
		WithHTTPClient(retryable.NewClient(t.Context(),
			retryable.WithTransport(failing),
			retryable.WithRetryOptions(retry.WithSleeper(noSleep)))))
	require.NoError(t, err)

	pool := bgworker.New(t.Context(), 1)
	t.Cleanup(pool.StopAndWait)

	r := NewReporter(t.Context(), client, pool)
	r.AppUsage()
	r.Error("X", nil)

	err = r.Wait()
	require.Error(t, err)

	var httpErr *retryable.Error
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, Stats{Failed: 2}, r.Stats())
}

func TestReporter_StoppedPool(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, &fakeAPI{}, settings.Defaults())

	pool := bgworker.New(t.Context(), 1)
	pool.StopAndWait()

	r := NewReporter(t.Context(), client, pool)
	r.AppUsage()

	require.Error(t, r.Wait())
	assert.Equal(t, int64(1), r.Stats().Failed)
}

func TestReporter_OutlivesCallerContext(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{status: http.StatusOK}
	client := newTestClient(t, api, settings.Defaults())

	pool := bgworker.New(t.Context(), 1)
	t.Cleanup(pool.StopAndWait)

	ctx, cancel := context.WithCancel(t.Context())
	r := NewReporter(ctx, client, pool)
	cancel()

	r.AppUsage()
	require.NoError(t, r.Wait())
	assert.Len(t, api.seen(), 1)
}
