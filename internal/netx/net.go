// Package netx holds the small HTTP helpers shared by the blob backends.
package netx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// maxBody caps how much of a response is read into memory.
const maxBody = 64 << 20

// Response is a fully read HTTP response.
type Response struct {
	Status int
	Body   []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

// Put sends body with an HTTP PUT and reads the whole response.
// A non-2xx status is not an error here; callers inspect Response.Status.
func Put(ctx context.Context, client *http.Client, url string, body []byte, contentType string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	return do(client, req)
}

// Get fetches url and reads the whole response.
func Get(ctx context.Context, client *http.Client, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return do(client, req)
}

func do(client *http.Client, req *http.Request) (*Response, error) {
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", req.Method, req.URL.Redacted(), err)
	}
	return &Response{Status: resp.StatusCode, Body: b}, nil
}

// Retryable reports whether status is worth another attempt: 429 or any 5xx.
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// RetryPolicy bounds retries of a single remote call.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
}

// DefaultRetryPolicy is used when a zero policy is given.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, BaseDelay: 200 * time.Millisecond}

// Backoff returns jittered exponential backoff capped at Attempts tries.
func (p RetryPolicy) Backoff() retry.Backoff {
	if p.Attempts <= 0 {
		p = DefaultRetryPolicy
	}
	b := retry.NewExponential(p.BaseDelay)
	b = retry.WithJitterPercent(20, b)
	return retry.WithMaxRetries(uint64(p.Attempts-1), b)
}
