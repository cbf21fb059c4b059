package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewLLMService(Config{APIKey: "sk-ant-test", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)
	return svc
}

func writeMessage(w http.ResponseWriter, content ...map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":          "msg_1",
		"type":        "message",
		"role":        "assistant",
		"model":       DefaultModel,
		"content":     content,
		"stop_reason": "end_turn",
		"usage":       map[string]any{"input_tokens": 10, "output_tokens": 5},
	})
}

func TestNewLLMService(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.ErrorContains(t, err, "API key is required")

	svc, err := NewLLMService(Config{APIKey: "sk-ant"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.NoError(t, svc.Close())
}

func TestLLMService_Complete(t *testing.T) {
	var got map[string]any
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant-test", r.Header.Get("x-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeMessage(w,
			map[string]any{"type": "text", "text": `{"origin": "reuters.com",`},
			map[string]any{"type": "text", "text": ` "viral": true}`},
		)
	})

	out, err := svc.Complete(context.Background(), "judge provenance", "claim", driven.CompletionOptions{
		Temperature: 0.1,
		JSONMode:    true,
	})

	require.NoError(t, err)
	assert.Equal(t, `{"origin": "reuters.com", "viral": true}`, out)
	assert.Equal(t, "judge provenance"+jsonInstruction, got["system"])
	assert.EqualValues(t, DefaultMaxTokens, got["max_tokens"])
	assert.InDelta(t, 0.1, got["temperature"], 1e-6)
}

func TestLLMService_Complete_EmptyContent(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w)
	})

	_, err := svc.Complete(context.Background(), "s", "u", driven.CompletionOptions{MaxTokens: 50})

	assert.ErrorIs(t, err, domain.ErrMalformedProviderResponse)
}

func TestLLMService_Complete_APIError(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	})

	_, err := svc.Complete(context.Background(), "s", "u", driven.CompletionOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid x-api-key")
}

func TestLLMService_Ping(t *testing.T) {
	var maxTokens float64
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		maxTokens, _ = body["max_tokens"].(float64)
		writeMessage(w, map[string]any{"type": "text", "text": "p"})
	})

	require.NoError(t, svc.Ping(context.Background()))
	assert.InDelta(t, 1, maxTokens, 0)
}
