// Package httpclient provides the shared outbound GET transport: it
// classifies failures and retries transient ones with bounded exponential
// backoff and jitter. Every external source is reached through it.
package httpclient

import (
	"context"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/dawadex/backend/pkg/config"
	apperrors "github.com/dawadex/backend/pkg/errors"
)

// Client wraps an http.Client with retry/backoff semantics
type Client struct {
	httpClient     *http.Client
	maxAttempts    int
	backoffCeiling time.Duration
}

// New creates a transport from configuration
func New(cfg *config.HTTPConfig) *Client {
	return &Client{
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		maxAttempts:    cfg.MaxAttempts,
		backoffCeiling: cfg.BackoffCeiling,
	}
}

// Get performs a GET request. Connection errors, timeouts, and HTTP 5xx are
// retried with exponential backoff; any other status returns immediately.
// When retries are exhausted the last received response is returned so the
// caller can inspect its status code; with no response at all a transient
// error is returned. The caller owns the response body.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values, headers map[string]string) (*http.Response, error) {
	endpoint, err := buildURL(rawURL, params)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid request URL: " + rawURL)
	}

	var lastResp *http.Response
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, apperrors.NewValidationError("failed to build request: " + err.Error())
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		switch {
		case err != nil:
			// Connection error or timeout: retryable
			lastErr = err
		case resp.StatusCode >= 500:
			// Upstream failure: retryable, keep the response for the caller
			if lastResp != nil {
				lastResp.Body.Close()
			}
			lastResp = resp
		default:
			// Success or non-retryable client failure
			if lastResp != nil {
				lastResp.Body.Close()
			}
			return resp, nil
		}

		if attempt == c.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			if lastResp != nil {
				lastResp.Body.Close()
			}
			return nil, apperrors.NewTransientError("request cancelled during backoff", ctx.Err())
		case <-time.After(c.backoffDelay(attempt)):
		}
	}

	if lastResp != nil {
		return lastResp, nil
	}
	return nil, apperrors.NewTransientError("request failed after retries", lastErr)
}

// backoffDelay computes min(2^attempt + jitter, ceiling)
func (c *Client) backoffDelay(attempt int) time.Duration {
	seconds := math.Pow(2, float64(attempt)) + rand.Float64()
	delay := time.Duration(seconds * float64(time.Second))
	if delay > c.backoffCeiling {
		delay = c.backoffCeiling
	}
	return delay
}

func buildURL(rawURL string, params url.Values) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if len(params) > 0 {
		query := parsed.Query()
		for k, vals := range params {
			for _, v := range vals {
				query.Add(k, v)
			}
		}
		parsed.RawQuery = query.Encode()
	}
	return parsed.String(), nil
}
