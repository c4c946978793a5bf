// Package provider defines the remote model boundary and an embeddable base
// client with HTTP helpers shared by concrete provider implementations.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/germanamz/chainy/pkg/genparams"
	"github.com/germanamz/chainy/pkg/providers/usage"
)

// Request describes one text generation call.
type Request struct {
	Model     string // Model identifier (e.g. "google/flan-ul2").
	ProjectID string // Project or tenant identifier; empty when the service has none.
	Input     string // Prompt text.
	Params    genparams.Params
}

// Response is the raw result of a generation call, before any post-processing.
type Response struct {
	Text         string // Generated text.
	StopReason   string // Provider-reported finish reason, if any.
	InputTokens  int
	OutputTokens int
}

// TextGenerator sends a prompt to a hosted model and returns the generated
// text. Implementations make exactly one network round-trip per call and do
// not retry.
type TextGenerator interface {
	GenerateText(ctx context.Context, req Request) (Response, error)
}

// Auth holds authentication settings for a provider API.
type Auth struct {
	Key    string // API key value.
	Header string // Header name (default: "Authorization").
	Scheme string // Scheme prefix (default: "Bearer" when Header is "Authorization").
}

// Client holds shared state for provider implementations. Embed it in a
// concrete provider struct to get HTTP helpers, auth, custom headers, and
// usage tracking. Concrete types define their own GenerateText method to
// shadow the default stub.
type Client struct {
	Auth    Auth              // Authentication settings.
	BaseURL string            // API base URL (no trailing slash).
	HTTP    *http.Client      // HTTP client; falls back to http.DefaultClient.
	Headers map[string]string // Extra headers applied to every request.
	Usage   usage.Tracker     // Token usage tracker.
}

// NewClient creates a Client with the given settings.
// A nil httpClient falls back to http.DefaultClient at call time.
func NewClient(baseURL string, auth Auth, httpClient *http.Client) Client {
	return Client{
		Auth:    auth,
		BaseURL: baseURL,
		HTTP:    httpClient,
	}
}

// GenerateText is a stub that returns an error. Concrete providers that embed
// Client should define their own GenerateText method to shadow this one.
func (c *Client) GenerateText(_ context.Context, _ Request) (Response, error) {
	return Response{}, errors.New("provider: GenerateText not implemented")
}

// UsageTracker returns the client's token usage tracker.
func (c *Client) UsageTracker() *usage.Tracker { return &c.Usage }

// httpClient returns the configured client or http.DefaultClient.
func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}

	return http.DefaultClient
}

// NewRequest builds an *http.Request with the base URL, auth, and custom
// headers already applied.
func (c *Client) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	url := c.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	// Apply auth.
	if c.Auth.Key != "" {
		header := c.Auth.Header
		if header == "" {
			header = "Authorization"
		}

		value := c.Auth.Key
		if header == "Authorization" {
			scheme := c.Auth.Scheme
			if scheme == "" {
				scheme = "Bearer"
			}

			value = scheme + " " + value
		} else if c.Auth.Scheme != "" {
			value = c.Auth.Scheme + " " + value
		}

		req.Header.Set(header, value)
	}

	// Apply custom headers.
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

// Do sends the request using the configured HTTP client.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient().Do(req) //nolint:gosec // URL is built from trusted BaseURL config, not user input.
}

// PostJSON marshals payload as JSON, sends a POST to the given path,
// checks for a 2xx status, and unmarshals the response body into dest.
// If dest is nil the response body is discarded after the status check.
func (c *Client) PostJSON(ctx context.Context, path string, payload any, dest any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := c.NewRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		respBody, _ := io.ReadAll(resp.Body)
		return &RateLimitError{
			RetryAfter: ParseRetryAfter(resp.Header.Get("Retry-After")),
			Body:       string(respBody),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	if dest == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
