package chatclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"estate-chat/internal/domain"
)

func TestNew_Validates(t *testing.T) {
	_, err := New(" ")
	require.Error(t, err)

	_, err = New("http://localhost/api/chat", WithHTTPClient(nil))
	require.Error(t, err)

	c, err := New("http://localhost/api/chat")
	require.NoError(t, err)
	require.Zero(t, c.httpClient.Timeout)
}

func TestSend_PostsTranscriptAndDecodes(t *testing.T) {
	var got domain.ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/chat", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":"x","choices":[{"index":0,"message":{"role":"assistant","content":"**Yes**"}}]}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL + "/api/chat")
	require.NoError(t, err)

	req := domain.ChatRequest{Messages: []domain.Message{
		{Role: domain.RoleSystem, Content: "greeting"},
		{Role: domain.RoleUser, Content: "Do I need a notary?"},
	}}
	out, err := c.Send(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, req, got)
	require.Len(t, out.Choices, 1)
	require.Equal(t, "**Yes**", out.Choices[0].Message.Content)
}

func TestSend_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"API key not configured"}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)
	_, err = c.Send(context.Background(), domain.ChatRequest{})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	require.Equal(t, "API key not configured", statusErr.Message)
}

func TestSend_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)
	_, err = c.Send(context.Background(), domain.ChatRequest{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode response")
}

func TestSend_Unreachable(t *testing.T) {
	c, err := New("http://127.0.0.1:1/api/chat", WithHTTPClient(&http.Client{Timeout: 100 * time.Millisecond}))
	require.NoError(t, err)
	_, err = c.Send(context.Background(), domain.ChatRequest{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "request failed")
}
