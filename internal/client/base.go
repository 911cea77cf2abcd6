package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	ErrNotFound    = errors.New("remote resource not found")
	ErrUnavailable = errors.New("remote resource unavailable")
)

// RemoteError carries the status and error payload returned by a remote
// resource when the call itself completed.
type RemoteError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote call failed: status=%d code=%s message=%s", e.StatusCode, e.Code, e.Message)
}

// remoteErrorBody matches the error envelope the remote API uses.
type remoteErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// baseClient is shared plumbing for the cart, order and product clients:
// one timeout-bounded HTTP client behind a circuit breaker, with the
// transport instrumented for tracing.
type baseClient struct {
	http    *http.Client
	baseURL string
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func newBaseClient(name, baseURL string, timeout time.Duration) *baseClient {
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// Client-side errors from the remote (4xx) must not trip the
			// breaker; only transport failures and 5xx responses count.
			var re *RemoteError
			if errors.As(err, &re) {
				return re.StatusCode < http.StatusInternalServerError
			}
			return err == nil || errors.Is(err, ErrNotFound)
		},
	})

	return &baseClient{
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: baseURL,
		breaker: breaker,
	}
}

// do issues one JSON request and decodes the response into out (when out is
// non-nil). Non-2xx responses are returned as ErrNotFound or *RemoteError.
func (c *baseClient) do(ctx context.Context, method, path string, in, out any) error {
	data, err := c.breaker.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, method, path, in)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response from %s %s: %w", method, path, err)
	}
	return nil
}

func (c *baseClient) roundTrip(ctx context.Context, method, path string, in any) ([]byte, error) {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response from %s %s: %w", method, path, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode >= 300 {
		remoteErr := &RemoteError{
			StatusCode: resp.StatusCode,
			Code:       "remote_error",
			Message:    http.StatusText(resp.StatusCode),
		}
		var parsed remoteErrorBody
		if jsonErr := json.Unmarshal(data, &parsed); jsonErr == nil && parsed.Error != "" {
			remoteErr.Message = parsed.Error
			if parsed.Code != "" {
				remoteErr.Code = parsed.Code
			}
		}
		return nil, remoteErr
	}

	return data, nil
}
