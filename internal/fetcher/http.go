package fetcher

import (
	"net/http"
	"sync"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// LimitedTransport is an http.RoundTripper that waits on a per-host token
// bucket before each request. It never retries.
type LimitedTransport struct {
	base  http.RoundTripper
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewLimitedTransport wraps base. A non-positive rps disables throttling.
func NewLimitedTransport(base http.RoundTripper, rps float64, burst int) *LimitedTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &LimitedTransport{
		base:     base,
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// RoundTrip implements http.RoundTripper.
func (t *LimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiterFor(req.URL.Host).Wait(req.Context()); err != nil {
		return nil, eris.Wrap(err, "rate limiter wait")
	}
	return t.base.RoundTrip(req)
}

func (t *LimitedTransport) limiterFor(host string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()
	lim, ok := t.limiters[host]
	if !ok {
		lim = rate.NewLimiter(t.limit, t.burst)
		t.limiters[host] = lim
	}
	return lim
}
