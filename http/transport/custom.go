package transport

import (
	"errors"
	"net/http"
)

// ErrNoRoundTrip is returned by a custom transport built without a function.
var ErrNoRoundTrip = errors.New("custom transport has no RoundTrip function")

// NewCustom wraps a function as an http.RoundTripper.
//
//	rt := transport.NewCustom(func(req *http.Request) (*http.Response, error) {
//	    return nil, errors.New("network unreachable")
//	})
func NewCustom(roundTrip func(req *http.Request) (*http.Response, error)) http.RoundTripper {
	if roundTrip == nil {
		roundTrip = func(*http.Request) (*http.Response, error) {
			return nil, ErrNoRoundTrip
		}
	}

	return &customTransport{roundTrip: roundTrip}
}

type customTransport struct {
	roundTrip func(req *http.Request) (*http.Response, error)
}

var _ http.RoundTripper = (*customTransport)(nil)

func (c *customTransport) RoundTrip(request *http.Request) (*http.Response, error) {
	return c.roundTrip(request)
}
