// Package transport builds the HTTP round trippers used to talk to the
// Gira+ back end.
//
// New creates a fresh *http.Transport; Get hands out a shared instance per
// option combination so that connection pools are reused. Both read their
// tuning from the environment:
//
//   - HTTP_TRANSPORT_PREFER_POOLED: keep-alive connection reuse (default: true)
//   - HTTP_TRANSPORT_DNS_CACHE: cache DNS lookups (default: false)
//   - HTTP_TRANSPORT_MAX_IDLE_CONNS: maximum idle connections (default: 100)
//   - HTTP_TRANSPORT_MAX_IDLE_CONNS_PER_HOST: idle connections per host (default: 10)
//   - HTTP_TRANSPORT_IDLE_CONN_TIMEOUT: idle connection timeout (default: 90s)
//   - HTTP_TRANSPORT_TLS_HANDSHAKE_TIMEOUT: TLS handshake timeout (default: 10s)
//   - HTTP_TRANSPORT_EXPECT_CONTINUE_TIMEOUT: Expect-Continue timeout (default: 1s)
//   - HTTP_TRANSPORT_FORCE_ATTEMPT_HTTP2: try HTTP/2 (default: true)
//   - HTTP_TRANSPORT_DIAL_TIMEOUT: dial timeout (default: 30s)
//   - HTTP_TRANSPORT_DIAL_KEEPALIVE: TCP keep-alive (default: 30s)
//
// The wrappers NewDecompressor and NewLoggingTransport can be stacked on top
// of any round tripper.
package transport

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"sync"

	"github.com/giraplus/giraplus-go/envutil"
)

// New returns a new *http.Transport. Reuse the result: a transport owns
// its connection pool.
func New(ctx context.Context, options ...Option) *http.Transport {
	return create(ctx, readOptions(ctx, options...))
}

func create(ctx context.Context, cfg *config) *http.Transport {
	maxIdleConns := envutil.Int(ctx, "HTTP_TRANSPORT_MAX_IDLE_CONNS",
		envutil.Default(defaultMaxIdleConns)).
		ValueOrElse(defaultMaxIdleConns)

	maxIdleConnsPerHost := envutil.Int(ctx, "HTTP_TRANSPORT_MAX_IDLE_CONNS_PER_HOST",
		envutil.Default(defaultMaxIdleConnsPerHost)).
		ValueOrElse(defaultMaxIdleConnsPerHost)

	idleConnTimeout := envutil.Duration(ctx, "HTTP_TRANSPORT_IDLE_CONN_TIMEOUT",
		envutil.Default(defaultIdleConnTimeout)).
		ValueOrElse(defaultIdleConnTimeout)

	tlsHandshakeTimeout := envutil.Duration(ctx, "HTTP_TRANSPORT_TLS_HANDSHAKE_TIMEOUT",
		envutil.Default(defaultTLSHandshakeTimeout)).
		ValueOrElse(defaultTLSHandshakeTimeout)

	expectContinueTimeout := envutil.Duration(ctx, "HTTP_TRANSPORT_EXPECT_CONTINUE_TIMEOUT",
		envutil.Default(defaultExpectContinueTimeout)).
		ValueOrElse(defaultExpectContinueTimeout)

	forceAttemptHTTP2 := envutil.Bool(ctx, "HTTP_TRANSPORT_FORCE_ATTEMPT_HTTP2",
		envutil.Default(defaultForceAttemptHTTP2)).
		ValueOrElse(defaultForceAttemptHTTP2)

	dialTimeout := envutil.Duration(ctx, "HTTP_TRANSPORT_DIAL_TIMEOUT",
		envutil.Default(defaultTransportDialTimeout)).
		ValueOrElse(defaultTransportDialTimeout)

	keepAlive := envutil.Duration(ctx, "HTTP_TRANSPORT_DIAL_KEEPALIVE",
		envutil.Default(defaultKeepAlive)).
		ValueOrElse(defaultKeepAlive)

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: keepAlive,
		}).DialContext,
		ForceAttemptHTTP2:     forceAttemptHTTP2,
		MaxIdleConns:          maxIdleConns,
		MaxIdleConnsPerHost:   maxIdleConnsPerHost,
		IdleConnTimeout:       idleConnTimeout,
		TLSHandshakeTimeout:   tlsHandshakeTimeout,
		ExpectContinueTimeout: expectContinueTimeout,
	}

	if cfg.DisableConnectionPooling {
		transport.DisableKeepAlives = true
	}

	if cfg.EnableDNSCache {
		useDNSCacheDialer(transport, dialTimeout, keepAlive)
	}

	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec
		}
	}

	return transport
}

var (
	instancesMu sync.Mutex                      //nolint:gochecknoglobals
	instances   = map[key]*http.Transport{} //nolint:gochecknoglobals
)

// Get returns a shared round tripper. A transport stored on the context with
// WithTransport wins, then any WithTransportOverride option, then the cached
// instance for the option combination.
func Get(ctx context.Context, opts ...Option) http.RoundTripper {
	if tr := getTransportFromContext(ctx); tr != nil {
		return tr
	}

	cfg := readOptions(ctx, opts...)

	for _, tr := range cfg.TransportOverrides {
		if tr != nil {
			return tr
		}
	}

	instancesMu.Lock()
	defer instancesMu.Unlock()

	if tr, ok := instances[cfg.key()]; ok {
		return tr
	}

	tr := create(ctx, cfg)
	instances[cfg.key()] = tr

	return tr
}
