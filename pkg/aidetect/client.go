// Package aidetect provides a client for the RapidAPI AI content detector.
package aidetect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// DefaultHost is the RapidAPI host header for the detector.
const DefaultHost = "ai-content-detector6.p.rapidapi.com"

var (
	// ErrRateLimited is returned when the detector answers 429.
	ErrRateLimited = eris.New("aidetect: rate limited")
	// ErrMissingScore is returned for a 200 response without confidenceScore.
	ErrMissingScore = eris.New("aidetect: response has no confidenceScore")
	// ErrScoreOutOfRange is returned when confidenceScore is outside [0,1].
	ErrScoreOutOfRange = eris.New("aidetect: confidenceScore out of range")
)

// Client defines the AI content detector operations.
type Client interface {
	// Detect submits text and returns the detector's confidence that it is
	// AI-generated.
	Detect(ctx context.Context, text string) (*Result, error)
}

// Result is the parsed detector response.
type Result struct {
	ConfidenceScore float64 `json:"confidenceScore"`
}

// StatusError carries a non-200, non-429 response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("aidetect: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets the detector endpoint (for testing).
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

// NewClient creates a new detector client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://" + DefaultHost + "/v1/ai-content-detector",
		host:    DefaultHost,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type detectRequest struct {
	Text string `json:"text"`
}

type detectResponse struct {
	ConfidenceScore *float64 `json:"confidenceScore"`
}

func (c *httpClient) Detect(ctx context.Context, text string) (*Result, error) {
	payload, err := json.Marshal(detectRequest{Text: text})
	if err != nil {
		return nil, eris.Wrap(err, "aidetect: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "aidetect: create request")
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.host)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "aidetect: request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, eris.Wrap(err, "aidetect: read response body")
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	default:
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed detectResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "aidetect: unmarshal response")
	}
	if parsed.ConfidenceScore == nil {
		return nil, ErrMissingScore
	}
	score := *parsed.ConfidenceScore
	if score < 0 || score > 1 {
		return nil, eris.Wrapf(ErrScoreOutOfRange, "got %v", score)
	}

	return &Result{ConfidenceScore: score}, nil
}
