package transport

import (
	"net/http"
	"testing"
	"time"

	"github.com/giraplus/giraplus-go/envutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		tr := New(t.Context())
		require.NotNil(t, tr)

		assert.Equal(t, defaultMaxIdleConns, tr.MaxIdleConns)
		assert.Equal(t, defaultMaxIdleConnsPerHost, tr.MaxIdleConnsPerHost)
		assert.Equal(t, defaultIdleConnTimeout, tr.IdleConnTimeout)
		assert.Equal(t, defaultTLSHandshakeTimeout, tr.TLSHandshakeTimeout)
		assert.Equal(t, defaultExpectContinueTimeout, tr.ExpectContinueTimeout)
		assert.True(t, tr.ForceAttemptHTTP2)
		assert.False(t, tr.DisableKeepAlives)
		assert.Nil(t, tr.TLSClientConfig)
	})

	t.Run("options", func(t *testing.T) {
		t.Parallel()

		tr := New(t.Context(), DisableConnectionPooling, EnableDNSCache, InsecureTLS)

		assert.True(t, tr.DisableKeepAlives)
		require.NotNil(t, tr.TLSClientConfig)
		assert.True(t, tr.TLSClientConfig.InsecureSkipVerify)
		assert.NotNil(t, tr.DialContext)
	})

	t.Run("environment", func(t *testing.T) {
		t.Parallel()

		ctx := envutil.WithEnvOverrides(t.Context(), map[string]string{
			"HTTP_TRANSPORT_MAX_IDLE_CONNS":          "7",
			"HTTP_TRANSPORT_MAX_IDLE_CONNS_PER_HOST": "3",
			"HTTP_TRANSPORT_IDLE_CONN_TIMEOUT":       "5s",
			"HTTP_TRANSPORT_FORCE_ATTEMPT_HTTP2":     "false",
			"HTTP_TRANSPORT_PREFER_POOLED":           "false",
		})

		tr := New(ctx)

		assert.Equal(t, 7, tr.MaxIdleConns)
		assert.Equal(t, 3, tr.MaxIdleConnsPerHost)
		assert.Equal(t, 5*time.Second, tr.IdleConnTimeout)
		assert.False(t, tr.ForceAttemptHTTP2)
		assert.True(t, tr.DisableKeepAlives)
	})

	t.Run("bad values fall back to defaults", func(t *testing.T) {
		t.Parallel()

		ctx := envutil.WithEnvOverride(t.Context(), "HTTP_TRANSPORT_MAX_IDLE_CONNS", "lots")

		tr := New(ctx)
		assert.Equal(t, defaultMaxIdleConns, tr.MaxIdleConns)
	})
}

func TestGet(t *testing.T) {
	t.Parallel()

	t.Run("instances are shared per option set", func(t *testing.T) {
		t.Parallel()

		a := Get(t.Context())
		b := Get(t.Context())
		c := Get(t.Context(), DisableConnectionPooling)

		assert.Same(t, a, b)
		assert.NotSame(t, a, c)
	})

	t.Run("override option", func(t *testing.T) {
		t.Parallel()

		custom := NewCustom(nil)

		assert.Same(t, custom, Get(t.Context(), WithTransportOverride(nil, custom)))
	})

	t.Run("context transport wins", func(t *testing.T) {
		t.Parallel()

		fromCtx := NewCustom(nil)
		ctx := WithTransport(t.Context(), fromCtx)

		assert.Same(t, fromCtx, Get(ctx, WithTransportOverride(NewCustom(nil))))
	})
}

func TestNewCustom(t *testing.T) {
	t.Parallel()

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, "http://example.invalid", nil)
	require.NoError(t, err)

	//nolint:bodyclose
	_, err = NewCustom(nil).RoundTrip(req)
	require.ErrorIs(t, err, ErrNoRoundTrip)

	called := false
	rt := NewCustom(func(r *http.Request) (*http.Response, error) {
		called = true

		return &http.Response{StatusCode: http.StatusTeapot, Body: http.NoBody, Request: r}, nil
	})

	rsp, err := rt.RoundTrip(req)
	require.NoError(t, err)

	defer rsp.Body.Close() //nolint:errcheck

	assert.True(t, called)
	assert.Equal(t, http.StatusTeapot, rsp.StatusCode)
}
