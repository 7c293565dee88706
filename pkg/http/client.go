package http

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// TransportFunc wraps a RoundTripper, e.g. to add headers or logging
type TransportFunc func(http.RoundTripper) http.RoundTripper

// clientConfig tunes the pooled client behind a Connector. The embedder,
// vector store and ASR connectors each talk to a single host, so idle
// connections are kept per host rather than globally.
type clientConfig struct {
	dialTimeout           time.Duration
	keepAlive             time.Duration
	requestTimeout        time.Duration
	responseHeaderTimeout time.Duration
	idleConnTimeout       time.Duration
	idleConnsPerHost      int
	wrappers              []TransportFunc
}

func newClientConfig() *clientConfig {
	return &clientConfig{
		dialTimeout:           10 * time.Second,
		keepAlive:             90 * time.Second,
		requestTimeout:        30 * time.Second,
		responseHeaderTimeout: 30 * time.Second,
		idleConnTimeout:       90 * time.Second,
		idleConnsPerHost:      16,
	}
}

func newClient(opts ...HttpOpts) *http.Client {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	dialer := &net.Dialer{
		Timeout:   cfg.dialTimeout,
		KeepAlive: cfg.keepAlive,
	}

	var rt http.RoundTripper = &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
		TLSHandshakeTimeout:   cfg.dialTimeout,
		ResponseHeaderTimeout: cfg.responseHeaderTimeout,
		IdleConnTimeout:       cfg.idleConnTimeout,
		MaxIdleConnsPerHost:   cfg.idleConnsPerHost,
	}

	// First registered wrapper sits closest to the network
	for _, wrap := range cfg.wrappers {
		rt = wrap(rt)
	}

	return &http.Client{
		Timeout:   cfg.requestTimeout,
		Transport: rt,
	}
}
