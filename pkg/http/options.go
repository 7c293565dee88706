package http

import "time"

// HttpOpts configures the client of a Connector
type HttpOpts func(*clientConfig)

// WithConnClientTimeout bounds dialing and the TLS handshake
func WithConnClientTimeout(timeout time.Duration) HttpOpts {
	return func(c *clientConfig) {
		if timeout > 0 {
			c.dialTimeout = timeout
		}
	}
}

// WithRequestTimeout bounds a whole request including reading the body.
// Zero keeps the default.
func WithRequestTimeout(timeout time.Duration) HttpOpts {
	return func(c *clientConfig) {
		if timeout > 0 {
			c.requestTimeout = timeout
		}
	}
}

func WithClientKeepAlive(keepAlive time.Duration) HttpOpts {
	return func(c *clientConfig) {
		c.keepAlive = keepAlive
	}
}

func WithResponseHeaderTimeout(timeout time.Duration) HttpOpts {
	return func(c *clientConfig) {
		if timeout > 0 {
			c.responseHeaderTimeout = timeout
		}
	}
}

func WithIdleConnTimeout(timeout time.Duration) HttpOpts {
	return func(c *clientConfig) {
		c.idleConnTimeout = timeout
	}
}

// WithTransport adds a RoundTripper wrapper
func WithTransport(transport TransportFunc) HttpOpts {
	return func(c *clientConfig) {
		c.wrappers = append(c.wrappers, transport)
	}
}
