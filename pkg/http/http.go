package http

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// RLHTTPClient is a rate limited HTTP client. Transient failures are retried
// by the underlying retryable client; the rate limiter keeps batched metadata
// queries from hammering the remote service.
type RLHTTPClient struct {
	Client      *http.Client
	Ratelimiter *rate.Limiter
}

// Do sends an HTTP request.
func (c *RLHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if err := c.Ratelimiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return c.Client.Do(req)
}

// NewClient returns a rate limited http client with retries enabled.
func NewClient(rl *rate.Limiter) *RLHTTPClient {
	retry := retryablehttp.NewClient()
	retry.RetryMax = 3
	retry.RetryWaitMin = 1 * time.Second
	retry.Logger = nil

	return &RLHTTPClient{
		Client:      retry.StandardClient(),
		Ratelimiter: rl,
	}
}
