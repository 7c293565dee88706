package http

import "net/http"

// headerTransport sets a fixed credential header on every outbound request
type headerTransport struct {
	header    string
	value     string
	transport http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.value == "" {
		return t.transport.RoundTrip(req)
	}

	reqCopy := req.Clone(req.Context())
	reqCopy.Header.Set(t.header, t.value)

	return t.transport.RoundTrip(reqCopy)
}

// WithAuthToken sends "Authorization: Bearer <token>". An empty token sends nothing.
func WithAuthToken(token string) HttpOpts {
	if token == "" {
		return WithHeaderAuth("Authorization", "")
	}
	return WithHeaderAuth("Authorization", "Bearer "+token)
}

// WithHeaderAuth sends the given header with every request, e.g. "Api-Key".
func WithHeaderAuth(header, value string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &headerTransport{
			header:    header,
			value:     value,
			transport: rt,
		}
	})
}
