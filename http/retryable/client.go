// Package retryable issues HTTP requests and retries them on failure.
//
// A call makes up to 5 sequential attempts, waiting 1s × attempt between
// them (1s, 2s, 3s, 4s). By default only transport failures are retried;
// with RetryOnStatus a non-2xx status is a failure too. A failure whose
// "errors" list holds an identifier that the call's Classification marks as
// not retryable ends the call at once, on any attempt:
//
//	client := retryable.NewClient(ctx,
//	    retryable.WithDefaultClassification(knownerrors.Default().Classification()))
//
//	rsp, err := client.Do(ctx, &retryable.Request{
//	    Method: http.MethodGet,
//	    URL:    "https://api.example.com/message",
//	}, retryable.RetryOnStatus())
//
//	var httpErr *retryable.Error
//	if errors.As(err, &httpErr) {
//	    ... httpErr.Status, httpErr.Messages() ...
//	}
//
// Every failed attempt is logged at warn level with the attempt number and
// the failure; a final error record is written when the call gives up.
package retryable

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/giraplus/giraplus-go/logger"
	"github.com/giraplus/giraplus-go/retry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/giraplus/giraplus-go/http/retryable"

// Client runs logical calls. It holds no per-call state and is safe for
// concurrent use.
type Client struct {
	transport      Transport
	classification Classification
	retryOptions   []retry.Option
}

type Option func(*Client)

// WithTransport replaces the default HTTPTransport.
func WithTransport(t Transport) Option {
	return func(c *Client) {
		if t != nil {
			c.transport = t
		}
	}
}

// WithDefaultClassification sets the classification used by calls that do
// not pass WithClassification.
func WithDefaultClassification(cls Classification) Option {
	return func(c *Client) {
		c.classification = cls
	}
}

// WithRetryOptions tunes the retry loop. Tests use retry.WithSleeper to
// avoid waiting.
func WithRetryOptions(opts ...retry.Option) Option {
	return func(c *Client) {
		c.retryOptions = append(c.retryOptions, opts...)
	}
}

// NewClient creates a Client. Without WithTransport it sends requests with
// NewHTTPTransport(ctx).
func NewClient(ctx context.Context, opts ...Option) *Client {
	c := &Client{}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.transport == nil {
		c.transport = NewHTTPTransport(ctx)
	}

	return c
}

// CallOption configures a single call.
type CallOption func(*call)

type call struct {
	retryOnStatus  bool
	classification Classification
}

// RetryOnStatus treats a response with a status outside [200, 300) as a
// failure. Without it such responses are returned as successes.
func RetryOnStatus() CallOption {
	return func(c *call) {
		c.retryOnStatus = true
	}
}

// WithClassification replaces the client's default classification for one
// call.
func WithClassification(cls Classification) CallOption {
	return func(c *call) {
		c.classification = cls
	}
}

// Do runs the call. It returns the first successful response, or the last
// failure as an *Error. Invalid requests fail before any attempt, and a
// cancelled context stops the call between attempts.
func (c *Client) Do(ctx context.Context, req *Request, opts ...CallOption) (*Response, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	cl := &call{classification: c.classification}

	for _, opt := range opts {
		if opt != nil {
			opt(cl)
		}
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "retryable.Do "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.full", req.URL),
			attribute.Bool("retry_on_status", cl.retryOnStatus),
		))
	defer span.End()

	log := logger.Get(ctx).With("method", method, "url", req.URL)
	start := time.Now()

	rsp, err := retry.DoValue(ctx, func(ctx context.Context) (*Response, error) {
		return c.attempt(ctx, req, cl)
	}, slices.Concat(c.retryOptions, []retry.Option{
		retry.WithObserver(c.observer(log, span, method, cl)),
	})...)

	callDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())

	if err != nil {
		callsTotal.WithLabelValues(method, result(ctx, err, cl)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	callsTotal.WithLabelValues(method, resultSuccess).Inc()
	attemptsTotal.WithLabelValues(method, resultSuccess).Inc()
	span.SetAttributes(attribute.Int("http.response.status_code", rsp.StatusCode))

	return rsp, nil
}

func (c *Client) attempt(ctx context.Context, req *Request, cl *call) (*Response, error) {
	rsp, err := c.transport.Execute(ctx, req)

	var failure *Error

	switch {
	case err != nil:
		failure = normalize(err)
	case rsp == nil:
		failure = &Error{Cause: errNoResponse}
	case cl.retryOnStatus && !isSuccess(rsp.StatusCode):
		failure = StatusError(rsp)
	default:
		return rsp, nil
	}

	if _, fatal := cl.classification.Fatal(failure); fatal || ctx.Err() != nil || errors.Is(failure, ErrInvalidRequest) {
		return nil, retry.Abort(failure)
	}

	return nil, failure
}

var errNoResponse = errors.New("transport returned no response")

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// observer logs, counts and traces each failed attempt.
func (c *Client) observer(log *slog.Logger, span trace.Span, method string, cl *call) retry.Observer {
	return func(ctx context.Context, ev retry.Event) {
		var failure *Error
		if !errors.As(ev.Err, &failure) {
			failure = normalize(ev.Err)
		}

		attemptsTotal.WithLabelValues(method, ev.Outcome.String()).Inc()
		span.AddEvent("attempt failed", trace.WithAttributes(
			attribute.Int("attempt", int(ev.Attempt)), //nolint:gosec
			attribute.Int("http.response.status_code", failure.Status),
			attribute.String("outcome", ev.Outcome.String()),
		))

		if ev.Final() {
			span.SetAttributes(attribute.Int("retry.attempts", int(ev.Attempt))) //nolint:gosec
		}

		switch ev.Outcome {
		case retry.OutcomeAborted:
			id, fatal := cl.classification.Fatal(failure)

			switch {
			case fatal:
				span.SetAttributes(attribute.String("error.id", id))
				log.ErrorContext(ctx, "Known error occurred",
					"attempt", ev.Attempt,
					"error_id", id,
					"error", failure)
			case errors.Is(failure, ErrInvalidRequest):
				log.ErrorContext(ctx, "Request rejected", "attempt", ev.Attempt, "error", failure)
			default:
				log.WarnContext(ctx, "Call cancelled", "attempt", ev.Attempt, "error", failure)
			}
		case retry.OutcomeExhausted:
			log.WarnContext(ctx, "Attempt "+strconv.FormatUint(uint64(ev.Attempt), 10)+" failed",
				"attempt", ev.Attempt,
				"error", failure)
			log.ErrorContext(ctx, "Max attempts reached", "attempts", ev.Attempt, "error", failure)
		case retry.OutcomeRetrying:
			backoffSeconds.WithLabelValues(method).Add(ev.Delay.Seconds())
			log.WarnContext(ctx, "Attempt "+strconv.FormatUint(uint64(ev.Attempt), 10)+" failed",
				"attempt", ev.Attempt,
				"error", failure,
				"retry_in", ev.Delay)
		}
	}
}

func result(ctx context.Context, err error, cl *call) string {
	if ctx.Err() != nil {
		return resultCanceled
	}

	if errors.Is(err, ErrInvalidRequest) {
		return resultInvalid
	}

	var failure *Error
	if errors.As(err, &failure) {
		if _, fatal := cl.classification.Fatal(failure); fatal {
			return resultFatal
		}
	}

	return resultExhausted
}
