package dispatch

import (
	"net/http"
	"time"
)

// Default timeouts when the caller does not supply clients.
const (
	DefaultAPITimeout      = 30 * time.Second
	DefaultPackageTimeout  = 30 * time.Minute
	maxInfoBodyBytes       = 16 << 20
	maxErrorBodyDrainBytes = 64 << 10
)

// NewAPIClient returns the client used for /api/info.
func NewAPIClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultAPITimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          10,
			MaxIdleConnsPerHost:   4,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: timeout,
		},
	}
}

// NewPackageClient returns the client used for playlist packages. The
// backend builds the archive before answering, so header and overall
// timeouts are long.
func NewPackageClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultPackageTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        4,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     120 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}
