package retryable

import (
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"strings"

	"github.com/giraplus/giraplus-go/http/printable"
)

// Bytes of response body included when an *Error is logged.
const maxLoggedBody = 1024

// Request describes one logical call. The client never modifies it, so the
// same value can be reused across calls and attempts.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	// Body is encoded as JSON. Nil means no body.
	Body any
}

// Response is a response that ended the call successfully.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	// Data is the decoded JSON body, or nil when the body is not JSON.
	Data any
}

// ErrorEntry is one item of the "errors" list a server returns.
type ErrorEntry struct {
	Message string `json:"message"`
	// Extra holds the remaining fields of the entry.
	Extra map[string]any `json:"-"`
}

// Error is the failure of an attempt, and of the call when it is the last
// one. Status is 0 when no response was received.
type Error struct {
	Status int
	Errors []ErrorEntry
	// Body is the decoded response body when it was a JSON object.
	Body map[string]any
	// Response is the raw response, if any.
	Response *Response
	// Cause is the transport error, if any.
	Cause error
}

func (e *Error) Error() string {
	var sb strings.Builder

	if e.Status != 0 {
		fmt.Fprintf(&sb, "http status %d", e.Status)
	} else {
		sb.WriteString("http request failed")
	}

	if ids := e.Messages(); len(ids) > 0 {
		sb.WriteString(": ")
		sb.WriteString(strings.Join(ids, ", "))
	}

	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}

	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) LogValue() slog.Value {
	attrs := []slog.Attr{slog.Int("status", e.Status)}

	if ids := e.Messages(); len(ids) > 0 {
		attrs = append(attrs, slog.Any("errors", ids))
	}

	if e.Cause != nil {
		attrs = append(attrs, slog.String("cause", e.Cause.Error()))
	}

	if e.Response != nil {
		body := printable.Body(e.Response.Body, e.Response.Headers.Get("Content-Type"))
		if body != nil {
			attrs = append(attrs, slog.Any("body", body.Truncate(maxLoggedBody)))
		}
	}

	return slog.GroupValue(attrs...)
}

// Messages returns the identifiers of every server-supplied error entry.
func (e *Error) Messages() []string {
	ids := make([]string, 0, len(e.Errors))

	for _, entry := range e.Errors {
		if entry.Message != "" {
			ids = append(ids, entry.Message)
		}
	}

	return ids
}

// Policy says what to do when an error identifier is seen.
type Policy struct {
	Retry bool `json:"retry" yaml:"retry"`
}

// Classification maps error identifiers to their policy. Identifiers that
// are absent are retried.
type Classification map[string]Policy

// Fatal returns the first entry of err whose identifier is classified as
// not retryable. Every entry is checked.
func (c Classification) Fatal(err *Error) (string, bool) {
	if err == nil || len(c) == 0 {
		return "", false
	}

	for _, entry := range err.Errors {
		if p, ok := c[entry.Message]; ok && !p.Retry {
			return entry.Message, true
		}
	}

	return "", false
}

// Merge returns a new classification with the entries of others applied on
// top of c.
func (c Classification) Merge(others ...Classification) Classification {
	out := make(Classification, len(c))
	maps.Copy(out, c)

	for _, o := range others {
		maps.Copy(out, o)
	}

	return out
}
