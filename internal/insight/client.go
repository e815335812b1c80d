// Package insight produces a deterministic dataset summary locally and asks
// an OpenAI-compatible chat endpoint for analytical insights on top of it.
// The remote collaborator is best effort: any failure degrades to a fixed
// fallback list, never to a run failure.
package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	httpClient       *http.Client
	apiKey           string
	baseURL          string
	model            string
	retryMaxAttempts int
	retryBaseDelay   time.Duration
}

// Message is one turn in a chat exchange.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// APIError is a non-2xx response from the collaborator.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("insight api: status=%d message=%s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("insight api: status=%d", e.StatusCode)
}

// ErrNoAPIKey means the client was constructed without credentials. Callers
// treat it like any other collaborator failure.
var ErrNoAPIKey = errors.New("insight: api key not configured")

// NewClient builds a chat client. Zero values get workable defaults; baseURL
// must point at the provider root (the /chat/completions suffix is appended
// here).
func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient:       &http.Client{Timeout: timeout},
		apiKey:           apiKey,
		baseURL:          baseURL,
		model:            model,
		retryMaxAttempts: 3,
		retryBaseDelay:   500 * time.Millisecond,
	}
}

// Chat sends the messages and returns the first choice's content.
// Retries on timeouts, 429 and 5xx with exponential backoff.
func (c *Client) Chat(ctx context.Context, messages []Message) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}
	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   300,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("insight: marshal request: %w", err)
	}
	endpoint := c.baseURL + "/chat/completions"

	backoff := c.retryBaseDelay
	var lastErr error
	for attempt := 1; attempt <= c.retryMaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return "", fmt.Errorf("insight: build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if isRetryableNetErr(err) && attempt < c.retryMaxAttempts {
				lastErr = err
				time.Sleep(backoff)
				backoff *= 2
				continue
			}
			return "", fmt.Errorf("insight: http request: %w", err)
		}

		content, apiErr := decodeChat(resp)
		if apiErr == nil {
			return content, nil
		}
		lastErr = apiErr
		var ae *APIError
		retryable := errors.As(apiErr, &ae) &&
			(ae.StatusCode == http.StatusTooManyRequests || ae.StatusCode >= 500)
		if retryable && attempt < c.retryMaxAttempts {
			time.Sleep(backoff)
			backoff *= 2
			continue
		}
		return "", lastErr
	}
	return "", lastErr
}

func decodeChat(resp *http.Response) (string, error) {
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var raw map[string]any
		if json.Unmarshal(body, &raw) == nil {
			if v, ok := raw["error"].(map[string]any); ok {
				if msg, ok := v["message"].(string); ok {
					apiErr.Message = msg
				}
			} else if msg, ok := raw["message"].(string); ok {
				apiErr.Message = msg
			}
		}
		return "", apiErr
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("insight: decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("insight: response has no choices")
	}
	return out.Choices[0].Message.Content, nil
}

func isRetryableNetErr(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, io.EOF)
}
