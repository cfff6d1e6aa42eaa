package authclient

import "net/http"

// Transport is an http.RoundTripper that stamps the session credential on each request.
// The original request is cloned, never mutated.
type Transport struct {
	Client *Client
	Base   http.RoundTripper
}

// NewTransport wraps base (http.DefaultTransport when nil).
func NewTransport(c *Client, base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{Client: c, Base: base}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := req.Clone(req.Context())
	t.Client.Authorize(next)
	return t.Base.RoundTrip(next)
}
