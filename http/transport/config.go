package transport

import (
	"context"
	"net/http"

	"github.com/giraplus/giraplus-go/envutil"
)

type Option func(*config)

type config struct {
	TransportOverrides       []http.RoundTripper
	DisableConnectionPooling bool
	EnableDNSCache           bool
	InsecureTLS              bool
}

// key identifies a cached transport instance.
type key struct {
	disableConnectionPooling bool
	enableDNSCache           bool
	insecureTLS              bool
}

func (c *config) key() key {
	return key{
		disableConnectionPooling: c.DisableConnectionPooling,
		enableDNSCache:           c.EnableDNSCache,
		insecureTLS:              c.InsecureTLS,
	}
}

func DisableConnectionPooling(c *config) {
	c.DisableConnectionPooling = true
}

func EnableDNSCache(c *config) {
	c.EnableDNSCache = true
}

// InsecureTLS skips certificate verification. Only for local test servers.
func InsecureTLS(c *config) {
	c.InsecureTLS = true
}

// WithTransportOverride makes Get return the first non-nil transport given.
func WithTransportOverride(transport ...http.RoundTripper) Option {
	return func(c *config) {
		c.TransportOverrides = append(c.TransportOverrides, transport...)
	}
}

func readOptions(ctx context.Context, opts ...Option) *config {
	cfg := &config{}

	if !envutil.Bool(ctx, "HTTP_TRANSPORT_PREFER_POOLED", envutil.Default(true)).ValueOrElse(true) {
		cfg.DisableConnectionPooling = true
	}

	if envutil.Bool(ctx, "HTTP_TRANSPORT_DNS_CACHE", envutil.Default(false)).ValueOrElse(false) {
		cfg.EnableDNSCache = true
	}

	for _, c := range opts {
		if c != nil {
			c(cfg)
		}
	}

	return cfg
}
