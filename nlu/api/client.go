// Package api provides pipeline strategies backed by the Anthropic
// messages API. Importing it registers the "api" strategy for every role:
//
//	import _ "github.com/radiantlogicinc/TalkEngine/nlu/api"
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.anthropic.com/v1"

// StrategyAPI is the registry name shared by the API-backed classifier,
// extractor, and generator.
const StrategyAPI = "api"

// client is the shared messages-API transport for all three strategies.
type client struct {
	apiKey     string
	model      string
	baseURL    string
	http       *http.Client
	maxRetries int
}

// Option configures an API strategy.
type Option func(*client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *client) {
		c.baseURL = url
	}
}

// WithRetries sets the number of retry attempts.
func WithRetries(n int) Option {
	return func(c *client) {
		c.maxRetries = n
	}
}

func newClient(apiKey, model string, opts ...Option) *client {
	c := &client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
		http:       &http.Client{Timeout: 30 * time.Second},
		maxRetries: 1, // default: no retries (1 attempt)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// complete sends one user prompt and returns the first text block of the
// reply. Transient server errors are retried up to maxRetries attempts;
// client errors are not.
func (c *client) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model":      c.model,
		"max_tokens": 1024,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/messages", bytes.NewReader(reqJSON))
		if err != nil {
			return "", fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", "2023-06-01")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("making request: %w", err)
			continue
		}

		if resp.StatusCode >= 500 {
			// Transient server error - retry
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("API error (status %d): %s", resp.StatusCode, body)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			// Client error (4xx) - don't retry
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, body)
		}

		var apiResp anthropicResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
			resp.Body.Close()
			return "", fmt.Errorf("decoding response: %w", err)
		}
		resp.Body.Close()

		if len(apiResp.Content) == 0 {
			return "", fmt.Errorf("empty response from API")
		}
		return apiResp.Content[0].Text, nil
	}

	return "", lastErr
}
