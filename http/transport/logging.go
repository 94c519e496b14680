package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/giraplus/giraplus-go/http/printable"
	"github.com/giraplus/giraplus-go/logger"
	"github.com/giraplus/giraplus-go/retry"
	"github.com/google/uuid"
)

// NewLoggingTransport wraps transport (http.DefaultTransport if nil) and
// logs each request and response at debug level, and transport failures at
// warn level. Every exchange gets a UUIDv7 correlation id shared by its log
// records, which also carry the retry attempt number when the request runs
// inside a retry loop. Bodies are only read for logging when debug logging is enabled.
func NewLoggingTransport(ctx context.Context, transport http.RoundTripper) http.RoundTripper {
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &loggingTransport{
		logger:    logger.Get(ctx),
		transport: transport,
		bodyLimit: defaultLogBodyLimit,
	}
}

type loggingTransport struct {
	logger    *slog.Logger
	transport http.RoundTripper
	bodyLimit int
}

var _ http.RoundTripper = (*loggingTransport)(nil)

func (l *loggingTransport) RoundTrip(request *http.Request) (*http.Response, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("error generating UUID: %w", err)
	}

	ctx := request.Context()
	log := l.logger.With(
		"correlation_id", id.String(),
		"method", request.Method,
		"url", request.URL.Redacted(),
	)

	if n := retry.Attempt(ctx); n > 0 {
		log = log.With("attempt", n)
	}

	debug := log.Enabled(ctx, slog.LevelDebug)
	if debug {
		attrs := []any{"headers", request.Header}
		if body := l.peekRequest(request); body != nil {
			attrs = append(attrs, "body", body)
		}

		log.DebugContext(ctx, "HTTP request", attrs...)
	}

	start := time.Now()

	response, err := l.transport.RoundTrip(request)
	if err != nil {
		log.WarnContext(ctx, "HTTP request failed",
			"error", err,
			"elapsed", time.Since(start))

		return response, err
	}

	if debug {
		attrs := []any{
			"status", response.StatusCode,
			"headers", response.Header,
			"elapsed", time.Since(start),
		}
		if body := l.peekResponse(response); body != nil {
			attrs = append(attrs, "body", body)
		}

		log.DebugContext(ctx, "HTTP response", attrs...)
	}

	return response, nil
}

func (l *loggingTransport) peekRequest(request *http.Request) *printable.Payload {
	if request.Body == nil || request.GetBody == nil {
		return nil
	}

	body, err := request.GetBody()
	if err != nil {
		return nil
	}

	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(body, int64(l.bodyLimit)+1))
	if err != nil {
		return nil
	}

	return printable.Body(data, request.Header.Get("Content-Type")).Truncate(l.bodyLimit)
}

// peekResponse reads the response body and puts an equivalent reader back.
func (l *loggingTransport) peekResponse(response *http.Response) *printable.Payload {
	if response.Body == nil || response.Body == http.NoBody {
		return nil
	}

	data, err := io.ReadAll(response.Body)
	_ = response.Body.Close()

	response.Body = io.NopCloser(bytes.NewReader(data))
	if err != nil {
		return nil
	}

	return printable.Body(data, response.Header.Get("Content-Type")).Truncate(l.bodyLimit)
}
