package openlibrary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

var (
	// ErrNotFound means the external catalog does not know the work id.
	ErrNotFound = errors.New("work not found in open library")
	// ErrUnavailable covers transport failures, timeouts and 5xx responses.
	ErrUnavailable = errors.New("open library unavailable")
)

type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	limiter    *rate.Limiter
	maxRetries int
}

// NewClient builds a client for the works API. The timeout stays short
// because fetches happen on the synchronous resolve path.
func NewClient(userAgent string, rps int, maxRetries int) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		userAgent:  userAgent,
		baseURL:    "https://openlibrary.org",
		limiter:    rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
		maxRetries: maxRetries,
	}
}

// WithBaseURL overrides the API endpoint, used by tests.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

// Work matches works/{id}.json. Description is string or {type, value};
// authors carry only keys, never names.
type Work struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	Subtitle         string   `json:"subtitle"`
	Description      any      `json:"description"`
	Covers           []int    `json:"covers"`
	Subjects         []string `json:"subjects"`
	FirstPublishDate string   `json:"first_publish_date"`
	Authors          []struct {
		Author struct {
			Key string `json:"key"`
		} `json:"author"`
	} `json:"authors"`
}

// DescriptionText flattens the string-or-object description field.
func (w *Work) DescriptionText() string {
	switch d := w.Description.(type) {
	case string:
		return d
	case map[string]any:
		if v, ok := d["value"].(string); ok {
			return v
		}
	}
	return ""
}

// GetWork fetches works/{externalID}.json. A 404 maps to ErrNotFound; any
// transport error, timeout or 5xx that survives the retries maps to
// ErrUnavailable.
func (c *Client) GetWork(ctx context.Context, externalID string) (*Work, error) {
	u := fmt.Sprintf("%s/works/%s.json", c.baseURL, externalID)

	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			// Backoff: 250ms, 500ms, 1s...
			backoff := time.Duration(1<<uint(i-1)) * 250 * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			var work Work
			err := json.NewDecoder(resp.Body).Decode(&work)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
			}
			return &work, nil
		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			return nil, ErrNotFound
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			resp.Body.Close()
			lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			continue
		default:
			resp.Body.Close()
			return nil, fmt.Errorf("%w: unexpected status code: %d", ErrUnavailable, resp.StatusCode)
		}
	}
	return nil, fmt.Errorf("%w: after %d retries: %v", ErrUnavailable, c.maxRetries, lastErr)
}
