// Package twitter provides a client for the RapidAPI Twitter API45 account lookup.
package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
)

// DefaultHost is the RapidAPI host header for the account API.
const DefaultHost = "twitter-api45.p.rapidapi.com"

// ErrRateLimited is returned when the API answers 429.
var ErrRateLimited = eris.New("twitter: rate limited")

// Client defines the social account lookup operations.
type Client interface {
	// Lookup fetches the account for a screen name.
	Lookup(ctx context.Context, screenName string) (*Account, error)
}

// Account is the subset of the account payload the enricher uses. Counts
// are decimals because the API sends them as integers, floats or strings.
type Account struct {
	CreatedAt      string          `json:"created_at"`
	FollowersCount decimal.Decimal `json:"followers_count"`
	FollowingCount decimal.Decimal `json:"following_count"`
	StatusesCount  decimal.Decimal `json:"statuses_count"`
	Location       string          `json:"location"`
	Verified       bool            `json:"verified"`
}

// StatusError carries a non-200, non-429 response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("twitter: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets the lookup endpoint (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHost sets the x-rapidapi-host header value.
func WithHost(host string) Option {
	return func(c *httpClient) {
		c.host = host
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	host    string
	http    *http.Client
}

// NewClient creates a new account lookup client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://" + DefaultHost + "/screenname.php",
		host:    DefaultHost,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Lookup(ctx context.Context, screenName string) (*Account, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, eris.Wrap(err, "twitter: parse base url")
	}
	q := u.Query()
	q.Set("screenname", screenName)
	q.Set("rest_id", "")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "twitter: create request")
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.host)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "twitter: request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, eris.Wrap(err, "twitter: read response body")
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	default:
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var acct Account
	if err := json.Unmarshal(body, &acct); err != nil {
		return nil, eris.Wrap(err, "twitter: unmarshal response")
	}
	return &acct, nil
}
