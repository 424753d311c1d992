package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sweeney/button-bridge/internal/logic"
)

// DefaultTimeout bounds each request to the remote service.
const DefaultTimeout = 5 * time.Second

// Client talks to the remote service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for baseURL. timeout <= 0 means DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse base url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SendPress posts event to {base}/physical-button-press. No retry.
func (c *Client) SendPress(ctx context.Context, event logic.PressEvent) error {
	body, err := json.Marshal(NewPressPayload(event))
	if err != nil {
		return fmt.Errorf("format press payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+PathPress, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build press request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: "send press", Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Op: "send press", StatusCode: resp.StatusCode}
	}
	return nil
}

// CheckHealth issues GET {base}/health and classifies the result.
func (c *Client) CheckHealth(ctx context.Context) HealthResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+PathHealth, nil)
	if err != nil {
		return HealthResult{Status: HealthUnreachable, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return HealthResult{Status: HealthUnreachable, Err: &TransportError{Op: "health check", Err: err}}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return HealthResult{Status: HealthUnhealthy, StatusCode: resp.StatusCode}
	}
	return HealthResult{Status: HealthOK, StatusCode: resp.StatusCode}
}
