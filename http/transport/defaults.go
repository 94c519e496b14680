package transport

import "time"

const (
	defaultIdleConnTimeout       = 90 * time.Second
	defaultMaxIdleConns          = 100
	defaultMaxIdleConnsPerHost   = 10
	defaultTLSHandshakeTimeout   = 10 * time.Second
	defaultExpectContinueTimeout = 1 * time.Second
	defaultForceAttemptHTTP2     = true
	defaultTransportDialTimeout  = 30 * time.Second //nolint:mnd
	defaultKeepAlive             = 30 * time.Second //nolint:mnd

	// Bytes of body included in debug logs.
	defaultLogBodyLimit = 2048
)
