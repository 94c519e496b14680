package retryable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/giraplus/giraplus-go/envutil"
	"github.com/giraplus/giraplus-go/http/transport"
	"golang.org/x/net/http/httpguts"
)

const defaultTimeout = 30 * time.Second

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidHeader  = errors.New("invalid header")
)

// Transport executes a single attempt. A non-2xx status is not an error at
// this level; returning an *Error lets a transport supply structured
// failure data.
type Transport interface {
	Execute(ctx context.Context, req *Request) (*Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, req *Request) (*Response, error)

func (f TransportFunc) Execute(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// HTTPTransport is the Transport backed by an *http.Client.
type HTTPTransport struct {
	client *http.Client
}

var _ Transport = (*HTTPTransport)(nil)

type HTTPOption func(*httpOptions)

type httpOptions struct {
	client    *http.Client
	timeout   time.Duration
	transport []transport.Option
}

// WithHTTPClient makes the transport use client as is.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(o *httpOptions) {
		o.client = client
	}
}

// WithTimeout bounds every attempt. It defaults to GIRA_HTTP_TIMEOUT, or 30s.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(o *httpOptions) {
		o.timeout = timeout
	}
}

// WithTransportOptions are passed on to transport.Get.
func WithTransportOptions(opts ...transport.Option) HTTPOption {
	return func(o *httpOptions) {
		o.transport = append(o.transport, opts...)
	}
}

// NewHTTPTransport builds a Transport on the shared round tripper from
// package transport, wrapped to decode compressed bodies and log exchanges.
func NewHTTPTransport(ctx context.Context, opts ...HTTPOption) *HTTPTransport {
	o := &httpOptions{
		timeout: envutil.Duration(ctx, "GIRA_HTTP_TIMEOUT",
			envutil.Default(defaultTimeout)).
			ValueOrElse(defaultTimeout),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	if o.client != nil {
		return &HTTPTransport{client: o.client}
	}

	rt := transport.NewLoggingTransport(ctx,
		transport.NewDecompressor(transport.Get(ctx, o.transport...)))

	return &HTTPTransport{
		client: &http.Client{
			Transport: rt,
			Timeout:   o.timeout,
		},
	}
}

func (t *HTTPTransport) Execute(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := newHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	rsp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}

	defer rsp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(rsp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &Response{
		StatusCode: rsp.StatusCode,
		Headers:    rsp.Header,
		Body:       data,
		Data:       decodeBody(data, rsp.Header.Get("Content-Type")),
	}, nil
}

func newHTTPRequest(ctx context.Context, req *Request) (*http.Request, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	var body io.Reader

	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: encoding body: %w", ErrInvalidRequest, err)
		}

		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, strings.ToUpper(req.Method), req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	return httpReq, nil
}

func validate(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: nil request", ErrInvalidRequest)
	}

	if req.URL == "" {
		return fmt.Errorf("%w: missing URL", ErrInvalidRequest)
	}

	if req.Method != "" && !httpguts.ValidHeaderFieldName(req.Method) {
		return fmt.Errorf("%w: bad method %q", ErrInvalidRequest, req.Method)
	}

	if _, err := url.Parse(req.URL); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	if req.Body != nil {
		if _, err := json.Marshal(req.Body); err != nil {
			return fmt.Errorf("%w: encoding body: %w", ErrInvalidRequest, err)
		}
	}

	for k, v := range req.Headers {
		if !httpguts.ValidHeaderFieldName(k) {
			return fmt.Errorf("%w: bad name %q", ErrInvalidHeader, k)
		}

		if !httpguts.ValidHeaderFieldValue(v) {
			return fmt.Errorf("%w: bad value for %q", ErrInvalidHeader, k)
		}
	}

	return nil
}
