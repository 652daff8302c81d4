package connectors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/custodia-labs/heritage-rag/internal/core/domain"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an error response is kept in an APIError.
const maxErrorBody = 512

// Client performs JSON GET requests against public APIs.
type Client struct {
	http      *http.Client
	userAgent string
}

// NewClient creates a client that sends userAgent with every request.
// A zero timeout uses DefaultTimeout.
func NewClient(userAgent string, timeout time.Duration) *Client {
	if userAgent == "" {
		userAgent = domain.DefaultUserAgent
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// UserAgent returns the User-Agent header value.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// GetJSON fetches rawURL and decodes the body into dst. Failures wrap
// domain.ErrFetch; 429 responses are reported as *RateLimitError.
func (c *Client) GetJSON(ctx context.Context, rawURL, accept string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("%w: create request: %v", domain.ErrFetch, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{RetryAfter: retryAfter(resp), URL: rawURL}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Message: string(body), URL: rawURL}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrFetch, err)
	}
	return nil
}

func retryAfter(resp *http.Response) time.Duration {
	seconds, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// APIError represents a non-success HTTP response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: API error %d: %s (URL: %s)", domain.ErrFetch, e.StatusCode, e.Message, e.URL)
}

// Unwrap makes APIError match domain.ErrFetch.
func (e *APIError) Unwrap() error {
	return domain.ErrFetch
}

// RateLimitError represents a 429 response.
type RateLimitError struct {
	// RetryAfter is the server's requested back-off, zero when not sent.
	RetryAfter time.Duration
	URL        string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: rate limited, retry after %s (URL: %s)", domain.ErrFetch, e.RetryAfter, e.URL)
	}
	return fmt.Sprintf("%s: rate limited (URL: %s)", domain.ErrFetch, e.URL)
}

// Unwrap makes RateLimitError match domain.ErrFetch.
func (e *RateLimitError) Unwrap() error {
	return domain.ErrFetch
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}
