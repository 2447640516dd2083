// Package clients holds the shared HTTP plumbing for the upstream
// platform clients: a minimal client interface for test injection, a
// JSON fetch helper and exponential backoff for transient failures.
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient is the subset of *http.Client the platform clients need.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient returns a client with the given timeout.
func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &http.Client{Timeout: timeout}
}

// StatusError reports a non-2xx upstream response. The body is truncated
// so error envelopes can be decoded without holding large payloads.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, string(e.Body))
}

const maxErrorBody = 4 << 10

// GetJSON performs a GET request with the given headers and decodes the
// JSON response into v. Non-2xx responses return a *StatusError.
func GetJSON(ctx context.Context, c HTTPClient, url string, header http.Header, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: body}
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

// Backoff retries an operation with exponential delays between attempts.
type Backoff struct {
	Base       time.Duration
	MaxRetries int
}

// Do runs fn until it succeeds or the retry budget is spent. The attempt
// index is passed to fn starting at zero. Context cancellation stops the
// retry loop between attempts.
func (b Backoff) Do(ctx context.Context, fn func(attempt int) error) error {
	var err error
	for i := 0; i <= b.MaxRetries; i++ {
		err = fn(i)
		if err == nil {
			return nil
		}
		if !Retryable(err) || i == b.MaxRetries {
			return err
		}

		delay := time.Duration(1<<uint(i)) * b.Base
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// Retryable reports whether the error is worth retrying: transport
// failures and throttling or server-side statuses.
func Retryable(err error) bool {
	if statusErr, ok := err.(*StatusError); ok {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}
	// Transport-level failures carry no status.
	return true
}
