package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"estate-chat/internal/domain"
)

func TestChatURL(t *testing.T) {
	cases := []struct {
		base string
		want string
	}{
		{"https://api.groq.com/openai/v1", "https://api.groq.com/openai/v1/chat/completions"},
		{"https://api.groq.com/openai/v1/", "https://api.groq.com/openai/v1/chat/completions"},
		{"http://localhost:8080", "http://localhost:8080/v1/chat/completions"},
		{"", "https://api.groq.com/openai/v1/chat/completions"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, chatURL(tc.base), "base=%q", tc.base)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient()
	require.NoError(t, err)
	require.Equal(t, DefaultBaseURL, c.baseURL)
	require.NotNil(t, c.httpClient)
	require.Zero(t, c.httpClient.Timeout)
}

func TestNewClient_NilHTTPClient(t *testing.T) {
	_, err := NewClient(WithHTTPClient(nil))
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be nil")
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(
		WithBaseURL(srv.URL),
		WithHTTPClient(&http.Client{Timeout: 2 * time.Second}),
	)
	require.NoError(t, err)
	return c
}

func testRequest() domain.CompletionRequest {
	return domain.CompletionRequest{
		Model:       "llama-mock",
		Messages:    []domain.Message{{Role: domain.RoleUser, Content: "hi"}},
		Temperature: 1,
		MaxTokens:   512,
		TopP:        1,
	}
}

func TestClient_Complete_PassesBodyThrough(t *testing.T) {
	const completion = `{"id":"chatcmpl-123","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"**Hello** from mock"}}],"usage":{"total_tokens":9}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var got map[string]any
		require.NoError(t, json.Unmarshal(raw, &got))
		require.Equal(t, "llama-mock", got["model"])
		require.EqualValues(t, 1, got["temperature"])
		require.EqualValues(t, 512, got["max_tokens"])
		require.EqualValues(t, 1, got["top_p"])
		require.Len(t, got["messages"], 1)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completion))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	raw, err := c.Complete(context.Background(), "sk-test", testRequest())
	require.NoError(t, err)
	require.JSONEq(t, completion, string(raw))
}

func TestClient_Complete_EmptyAPIKey(t *testing.T) {
	c, err := NewClient()
	require.NoError(t, err)
	_, err = c.Complete(context.Background(), " ", testRequest())
	require.Error(t, err)
	require.Contains(t, err.Error(), "api key")
}

func TestClient_Complete_EmptyModel(t *testing.T) {
	c, err := NewClient()
	require.NoError(t, err)
	req := testRequest()
	req.Model = ""
	_, err = c.Complete(context.Background(), "sk-test", req)
	require.Error(t, err)
	require.Contains(t, err.Error(), "model")
}

func TestClient_Complete_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid API Key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Complete(context.Background(), "sk-test", testRequest())
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected status")
	require.Contains(t, err.Error(), "401")

	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusUnauthorized, statusErr.HTTPStatusCode())
	require.Equal(t, "Invalid API Key", statusErr.ProviderMessage())
}

func TestClient_Complete_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not-a-json`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Complete(context.Background(), "sk-test", testRequest())
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode response")
}

func TestClient_Complete_ResponseTooLarge(t *testing.T) {
	big := `{"choices":[{"message":{"role":"assistant","content":"` + strings.Repeat("a", maxResponseBytes) + `"}}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(big))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Complete(context.Background(), "sk-test", testRequest())
	require.ErrorIs(t, err, ErrResponseTooLarge)
	require.NotContains(t, err.Error(), "not valid JSON")
}

func TestClient_Complete_NetworkError(t *testing.T) {
	c, err := NewClient(
		WithBaseURL("http://127.0.0.1:1"),
		WithHTTPClient(&http.Client{Timeout: 100 * time.Millisecond}),
	)
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "sk-test", testRequest())
	require.Error(t, err)
	require.Contains(t, err.Error(), "request failed")
}

func TestClient_Complete_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := newTestClient(t, srv)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Complete(ctx, "sk-test", testRequest())
	require.Error(t, err)
	require.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestHTTPStatusError_ProviderMessage(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{name: "nested", body: `{"error":{"message":"model overloaded"}}`, want: "model overloaded"},
		{name: "flat", body: `{"error":"rate limited"}`, want: "rate limited"},
		{name: "no error field", body: `{"detail":"x"}`, want: ""},
		{name: "not json", body: `<html>bad gateway</html>`, want: ""},
		{name: "empty", body: ``, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := &HTTPStatusError{StatusCode: 500, Body: tc.body}
			require.Equal(t, tc.want, e.ProviderMessage())
		})
	}
}
