package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
)

func TestNewLLMService_Defaults(t *testing.T) {
	svc := NewLLMService(LLMConfig{})

	assert.Equal(t, DefaultLLMModel, svc.ModelName())
	assert.Equal(t, DefaultBaseURL, svc.api.BaseURL())
	assert.NoError(t, svc.Close())
}

func TestLLMService_Complete(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(chatResponse{
			Message: chatMessage{Role: "assistant", Content: "[90, 70, 60]\n"},
			Done:    true,
		})
	}))
	defer server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL + "/", Model: "mistral"})
	out, err := svc.Complete(context.Background(), "rank", "1. a\n2. b", driven.CompletionOptions{
		MaxTokens: 64,
		JSONMode:  true,
	})

	require.NoError(t, err)
	assert.Equal(t, "[90, 70, 60]", out)
	assert.Equal(t, "mistral", got.Model)
	assert.False(t, got.Stream)
	assert.Equal(t, "json", got.Format)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, chatMessage{Role: "system", Content: "rank"}, got.Messages[0])
	assert.Equal(t, chatMessage{Role: "user", Content: "1. a\n2. b"}, got.Messages[1])
	require.NotNil(t, got.Options)
	assert.Equal(t, 64, got.Options.NumPredict)
}

func TestLLMService_Complete_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		malformed bool
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "model not loaded"},
		{name: "empty content", status: http.StatusOK, body: `{"message":{"role":"assistant","content":"  "},"done":true}`, malformed: true},
		{name: "invalid json", status: http.StatusOK, body: `not json`, malformed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			svc := NewLLMService(LLMConfig{BaseURL: server.URL})
			_, err := svc.Complete(context.Background(), "s", "u", driven.CompletionOptions{})

			require.Error(t, err)
			assert.Equal(t, tt.malformed, errors.Is(err, domain.ErrMalformedProviderResponse))
			if !tt.malformed {
				assert.Contains(t, err.Error(), "model not loaded")
			}
		})
	}
}

func TestLLMService_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			_, _ = w.Write([]byte(`{"models":[]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	assert.NoError(t, NewLLMService(LLMConfig{BaseURL: server.URL}).Ping(context.Background()))

	server.Close()
	assert.ErrorContains(t, NewLLMService(LLMConfig{BaseURL: server.URL}).Ping(context.Background()), "ping failed")
}
