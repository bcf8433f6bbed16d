// Package fetcher is the HTTP gateway shared by every upstream call: it bounds
// each request by a timeout, throttles per host and converts failures into
// typed errors or, for JSON fetches, into absence.
package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

// DefaultTimeout bounds a request when the caller does not set one.
const DefaultTimeout = 5 * time.Second

// DefaultMaxBodyBytes caps how much of a response body is read.
const DefaultMaxBodyBytes int64 = 2 << 20

// Request describes a GET against an upstream.
type Request struct {
	URL     string
	Timeout time.Duration
	Headers map[string]string
	Params  map[string]string
}

// Response is a fully read upstream response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Options configures the Gateway.
type Options struct {
	UserAgent         string
	MaxBodyBytes      int64
	RequestsPerSecond float64
	Burst             int
	// Transport overrides the base round tripper (tests).
	Transport http.RoundTripper
}

// Gateway performs timeout-bounded requests through a per-host rate-limited client.
type Gateway struct {
	client *http.Client
	opts   Options
}

// New creates a Gateway with the given options.
func New(opts Options) *Gateway {
	if opts.UserAgent == "" {
		opts.UserAgent = "token-enricher/1.0"
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	base := opts.Transport
	if base == nil {
		base = &http.Transport{
			MaxIdleConnsPerHost: 10,
			MaxConnsPerHost:     20,
			IdleConnTimeout:     90 * time.Second,
		}
	}
	return &Gateway{
		client: &http.Client{
			Transport: NewLimitedTransport(base, opts.RequestsPerSecond, opts.Burst),
		},
		opts: opts,
	}
}

// HTTPClient returns the shared rate-limited client. It carries no client-wide
// timeout; callers bound each call with a context deadline.
func (g *Gateway) HTTPClient() *http.Client {
	return g.client
}

// Get performs a GET. Non-2xx responses are returned as *StatusError.
func (g *Gateway) Get(ctx context.Context, r Request) (*Response, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	target, err := withParams(r.URL, r.Params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: create request")
	}
	req.Header.Set("User-Agent", g.opts.UserAgent)
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: get %s", r.URL)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, g.opts.MaxBodyBytes))
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: read body from %s", r.URL)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: r.URL, StatusCode: resp.StatusCode, Body: string(body)}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// withParams merges query params into rawURL, keeping any already present.
func withParams(rawURL string, params map[string]string) (string, error) {
	if len(params) == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", eris.Wrapf(err, "fetcher: parse url %q", rawURL)
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
