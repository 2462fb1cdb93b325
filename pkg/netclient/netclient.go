// Package netclient implements a resilient GET wrapper for URL imports: a
// per-request timeout, exponential backoff with jitter, and retryable error
// classification (network errors, HTTP 429/5xx). Built on pkg/httputil's
// client wrapper, the way gh-aw layers its own retry helpers over a shared
// HTTP client.
package netclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/netzkontrast/mdflow/pkg/httputil"
	"github.com/netzkontrast/mdflow/pkg/logger"
)

var log = logger.New("mdflow:netclient")

const (
	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 10 * time.Second
	// BaseBackoff is the first retry's backoff delay.
	BaseBackoff = 1 * time.Second
	// MaxBackoff caps the exponential backoff delay.
	MaxBackoff = 10 * time.Second
	// BackoffMultiplier is applied to the delay on each retry.
	BackoffMultiplier = 2.0
	// TotalAttempts is 1 initial attempt plus 3 retries.
	TotalAttempts = 4
)

// FetchExhausted is returned when all retry attempts are spent. It carries
// the last underlying cause and the number of attempts made.
type FetchExhausted struct {
	Attempts int
	Cause    error
}

func (e *FetchExhausted) Error() string {
	return fmt.Sprintf("fetch failed after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *FetchExhausted) Unwrap() error { return e.Cause }

// HTTPStatusError wraps a non-retryable HTTP status response.
type HTTPStatusError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("http status %d", e.StatusCode)
}

// Client performs resilient GET requests.
type Client struct {
	http *httputil.Client
	// Sleep is overridable for deterministic tests.
	Sleep func(time.Duration)
	// Rand is overridable for deterministic jitter in tests.
	Rand func() float64
}

// New returns a Client configured with the tool's default timeout.
func New() *Client {
	return &Client{
		http:  httputil.NewClient(&httputil.ClientOptions{Timeout: DefaultTimeout}),
		Sleep: time.Sleep,
		Rand:  rand.Float64,
	}
}

// Get performs a resilient GET against url, retrying retryable failures up
// to TotalAttempts total tries with exponential backoff and jitter. On
// retry exhaustion it returns a *FetchExhausted wrapping the last cause.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < TotalAttempts; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(attempt, c.Rand)
			log.Printf("retrying GET %s: attempt=%d delay=%s", url, attempt+1, delay)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			c.Sleep(delay)
		}

		body, retryable, err := c.attempt(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}

	return nil, &FetchExhausted{Attempts: TotalAttempts, Cause: lastErr}
}

// attempt performs a single GET, returning the body, whether a failure is
// retryable, and the error (nil on success).
func (c *Client) attempt(ctx context.Context, url string) ([]byte, bool, error) {
	reqCtx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	req, err := c.http.NewRequest(http.MethodGet, url)
	if err != nil {
		return nil, false, err
	}
	req = req.WithContext(reqCtx)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, isRetryableNetworkError(err), err
	}
	defer resp.Body.Close()

	body, readErr := httputil.ReadResponseBody(resp)
	if readErr != nil {
		return nil, true, readErr
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, false, nil
	}

	statusErr := &HTTPStatusError{StatusCode: resp.StatusCode, Body: body}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, true, statusErr
	}
	return nil, false, statusErr
}

// backoffDelay computes the exponential-backoff-with-jitter delay for the
// given retry attempt (1-indexed: attempt 1 is the first retry).
func backoffDelay(attempt int, randFn func() float64) time.Duration {
	delay := float64(BaseBackoff) * pow(BackoffMultiplier, float64(attempt-1))
	if delay > float64(MaxBackoff) {
		delay = float64(MaxBackoff)
	}
	jitter := randFn() * delay * 0.25
	return time.Duration(delay + jitter)
}

func pow(base, exp float64) float64 {
	result := 1.0
	for i := 0; i < int(exp); i++ {
		result *= base
	}
	return result
}

// isRetryableNetworkError classifies connection-level failures: reset,
// refused, timeout, DNS failure, or context cancellation via deadline.
func isRetryableNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"connection reset", "connection refused", "eof", "timeout", "no such host"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return errors.Is(err, io.ErrUnexpectedEOF)
}
