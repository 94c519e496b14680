package transport

import (
	"context"
	"net/http"
)

type contextKey string

const contextKeyTransport contextKey = "http-transport"

// WithTransport stores a round tripper on the context; Get returns it in
// preference to any shared instance. Tests use it to reach a fake server.
func WithTransport(ctx context.Context, transport http.RoundTripper) context.Context {
	return context.WithValue(ctx, contextKeyTransport, transport)
}

func getTransportFromContext(ctx context.Context) http.RoundTripper {
	if ctx == nil {
		return nil
	}

	transport, ok := ctx.Value(contextKeyTransport).(http.RoundTripper)
	if !ok {
		return nil
	}

	return transport
}
