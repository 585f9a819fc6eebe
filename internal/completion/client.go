// Package completion calls an OpenAI-compatible chat-completion endpoint.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/filechat/backend/internal/metrics"
	"github.com/filechat/backend/internal/models"
	"github.com/tidwall/gjson"
)

// maxErrorBody caps how much of a failed response is kept for logging.
const maxErrorBody = 4 << 10

// Config configures a Client.
type Config struct {
	URL       string
	APIKey    string
	Model     string
	MaxTokens int
}

// ExternalServiceError is returned for any failed completion call: a non-200
// status, a transport failure or a response without content.
type ExternalServiceError struct {
	StatusCode int // 0 when no response was received
	Body       string
	Err        error
}

func (e *ExternalServiceError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err == nil:
		return fmt.Sprintf("completion API returned %d: %s", e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("completion API returned %d: %v", e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("completion API request failed: %v", e.Err)
	}
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// Client sends a single system+user exchange and returns the first choice.
// It never retries.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// New creates a Client. A nil httpClient means http.DefaultClient.
func New(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{cfg: cfg, httpClient: httpClient}
}

// Complete posts {model, messages, max_tokens} and returns
// choices[0].message.content verbatim.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	payload, err := json.Marshal(models.CompletionRequest{
		Model: c.cfg.Model,
		Messages: []models.CompletionMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens: c.cfg.MaxTokens,
	})
	if err != nil {
		return "", &ExternalServiceError{Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return "", &ExternalServiceError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	start := time.Now()
	content, err := c.do(req)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.ObserveCompletion(status, time.Since(start))
	return content, err
}

func (c *Client) do(req *http.Request) (string, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &ExternalServiceError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &ExternalServiceError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ExternalServiceError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if !gjson.ValidBytes(body) {
		return "", &ExternalServiceError{StatusCode: resp.StatusCode, Err: fmt.Errorf("response is not valid JSON")}
	}

	content := gjson.GetBytes(body, "choices.0.message.content")
	if !content.Exists() {
		return "", &ExternalServiceError{StatusCode: resp.StatusCode, Err: fmt.Errorf("no choices in response")}
	}
	return content.String(), nil
}
