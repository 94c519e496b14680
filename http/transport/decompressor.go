package transport

import (
	"errors"
	"io"
	"net/http"

	"github.com/fereidani/httpdecompressor"
)

// NewDecompressor wraps roundTripper so that gzip, deflate, br and zstd
// response bodies are decoded transparently. Uncompressed responses pass
// through unchanged.
//
//	client := &http.Client{Transport: transport.NewDecompressor(transport.Get(ctx))}
func NewDecompressor(roundTripper http.RoundTripper) http.RoundTripper {
	if roundTripper == nil {
		roundTripper = http.DefaultTransport
	}

	return &decompressor{roundTripper: roundTripper}
}

type decompressor struct {
	roundTripper http.RoundTripper
}

var _ http.RoundTripper = (*decompressor)(nil)

func (d *decompressor) RoundTrip(request *http.Request) (*http.Response, error) {
	rsp, err := d.roundTripper.RoundTrip(request)
	if err != nil {
		return rsp, err
	}

	origBody := rsp.Body

	bodyReader, err := httpdecompressor.Reader(rsp)
	if err != nil {
		_ = origBody.Close()

		return nil, err
	}

	if bodyReader == origBody {
		return rsp, nil
	}

	// Decoder first, then the connection.
	rsp.Body = &decodedBody{
		Reader:  bodyReader,
		closers: []io.Closer{bodyReader, origBody},
	}

	return rsp, nil
}

type decodedBody struct {
	io.Reader

	closers []io.Closer
}

func (b *decodedBody) Close() error {
	var errs []error

	for _, c := range b.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
