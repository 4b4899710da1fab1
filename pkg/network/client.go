package network

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

const maxRetries = 3

// Client wraps http.Client with bounded retries and optional rate
// limiting. One Client is shared by all scan workers; it is safe for
// concurrent use.
type Client struct {
	HTTPClient  *http.Client
	RateLimiter *RateLimiter
}

// NewClient creates a Client with connection pooling sized for the given
// worker count. rateLimit is requests per second (0 = unlimited).
func NewClient(timeout time.Duration, proxyURL string, workers int, rateLimit float64) *Client {
	maxIdlePerHost := workers / 2
	if maxIdlePerHost < 10 {
		maxIdlePerHost = 10
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,

		MaxIdleConns:        workers * 2,
		MaxIdleConnsPerHost: maxIdlePerHost,
		MaxConnsPerHost:     workers,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if proxyURL != "" {
		if pURL, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(pURL)
		}
	}

	httpClient := &http.Client{
		Transport: transport,
		Timeout:   timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// A redirect body is where the reflection lives; don't follow.
			return http.ErrUseLastResponse
		},
	}

	return &Client{
		HTTPClient:  httpClient,
		RateLimiter: NewRateLimiter(rateLimit),
	}
}

// Do sends an HTTP request, retrying transient failures with exponential
// backoff. 4xx responses are returned as-is; 5xx and network errors are
// retried up to maxRetries times.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.RateLimiter != nil {
		if err := c.RateLimiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}

	var resp *http.Response
	var err error

	backoff := 100 * time.Millisecond
	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(backoff):
			}
			backoff *= 2

			// The first attempt drained the body; rewind it or the
			// retry sends an empty POST.
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, fmt.Errorf("failed to rewind request body: %w", err)
				}
				req.Body = body
			}
		}

		resp, err = c.HTTPClient.Do(req)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}

		// Close before retrying; the final response is returned intact.
		if resp != nil && i < maxRetries {
			resp.Body.Close()
		}
	}

	if err != nil {
		return nil, fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
	}
	return resp, nil
}
