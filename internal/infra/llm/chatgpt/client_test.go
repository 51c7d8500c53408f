package chatgpt

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCreateChatCompletionSendsRequest(t *testing.T) {
	var got ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"A greeting."}}],"usage":{"prompt_tokens":12,"completion_tokens":4,"total_tokens":16}}`))
	}))
	defer srv.Close()

	client := NewClient("sk-test", srv.URL+"/v1/", time.Second)
	resp, err := client.CreateChatCompletion(context.Background(), ChatCompletionRequest{
		Model:       "qwen-plus",
		Messages:    []Message{{Role: "user", Content: "hello"}},
		MaxTokens:   500,
		Temperature: 0.7,
	})
	require.NoError(t, err)

	require.Equal(t, "qwen-plus", got.Model)
	require.Equal(t, 500, got.MaxTokens)
	require.InDelta(t, 0.7, got.Temperature, 1e-6)
	require.Equal(t, []Message{{Role: "user", Content: "hello"}}, got.Messages)

	require.Len(t, resp.Choices, 1)
	require.Equal(t, "A greeting.", resp.Choices[0].Message.Content)
	require.NotNil(t, resp.Usage)
	require.Equal(t, 16, resp.Usage.TotalTokens)
}

func TestCreateChatCompletionWithoutUsage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	resp, err := NewClient("k", srv.URL, 0).CreateChatCompletion(context.Background(), ChatCompletionRequest{Model: "m"})
	require.NoError(t, err)
	require.Nil(t, resp.Usage)
}

func TestCreateChatCompletionFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"boom"}`, wantErr: "status=500"},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `invalid key`, wantErr: "status=401 body=invalid key"},
		{name: "malformed body", status: http.StatusOK, body: `{not json`, wantErr: "decode chat completion"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient("k", srv.URL, time.Second).CreateChatCompletion(context.Background(), ChatCompletionRequest{Model: "m"})
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestCreateChatCompletionMissingKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer srv.Close()

	_, err := NewClient("  ", srv.URL, time.Second).CreateChatCompletion(context.Background(), ChatCompletionRequest{})
	require.True(t, errors.Is(err, ErrMissingAPIKey))
	require.False(t, called)
}

func TestCreateChatCompletionHonoursTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { <-release }))
	defer srv.Close()
	defer close(release)

	_, err := NewClient("k", srv.URL, 20*time.Millisecond).CreateChatCompletion(context.Background(), ChatCompletionRequest{})
	require.ErrorContains(t, err, "request chat completion")
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("k", "", 0)
	require.Equal(t, defaultBaseURL, c.baseURL)
	require.Equal(t, defaultTimeout, c.httpClient.Timeout)
}
