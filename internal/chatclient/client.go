// Package chatclient posts transcripts to the chat endpoint on behalf of the
// widget.
package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"estate-chat/internal/domain"
)

// StatusError is returned for any non-2xx endpoint response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("chatclient: endpoint returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("chatclient: endpoint returned status %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	endpoint   string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a Client for the endpoint URL. Like the endpoint itself, the
// default HTTP client sets no timeout.
func New(endpoint string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("chatclient: endpoint must not be empty")
	}
	c := &Client{endpoint: endpoint, httpClient: &http.Client{}}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		return nil, errors.New("chatclient: http client must not be nil")
	}
	return c, nil
}

// Send posts the full transcript and decodes the completion.
func (c *Client) Send(ctx context.Context, req domain.ChatRequest) (domain.Completion, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("chatclient: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Completion{}, fmt.Errorf("chatclient: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("chatclient: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		var eb domain.ErrorBody
		_ = json.Unmarshal(buf, &eb)
		return domain.Completion{}, &StatusError{StatusCode: res.StatusCode, Message: eb.Error}
	}

	var out domain.Completion
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return domain.Completion{}, fmt.Errorf("chatclient: decode response: %w", err)
	}
	return out, nil
}
