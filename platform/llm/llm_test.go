package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_FallbackWithoutKey(t *testing.T) {
	c := NewClient(Options{Model: "gpt-4o-mini"})
	_, ok := c.(Fallback)
	require.True(t, ok)

	reply, err := c.Generate(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, FallbackReply, reply)
}

func TestConversation(t *testing.T) {
	history := []Message{
		{Role: RoleUser, Content: "a"},
		{Role: RoleAssistant, Content: "b"},
		{Role: RoleUser, Content: "c"},
	}
	got := Conversation("be nice", history, "d", 2)
	require.Len(t, got, 4)
	assert.Equal(t, Message{Role: RoleSystem, Content: "be nice"}, got[0])
	assert.Equal(t, "b", got[1].Content)
	assert.Equal(t, Message{Role: RoleUser, Content: "d"}, got[3])

	bare := Conversation("  ", nil, "hi", 0)
	assert.Equal(t, []Message{{Role: RoleUser, Content: "hi"}}, bare)
}

func TestOpenAIClient_Generate(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  سلام!  "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewClient(Options{APIKey: "sk-test", BaseURL: srv.URL + "/v1", Model: "test-model"})
	reply, err := c.Generate(context.Background(), Conversation("sys", nil, "hello", 0))
	require.NoError(t, err)
	assert.Equal(t, "سلام!", reply)
	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, RoleSystem, got.Messages[0].Role)
	assert.Equal(t, "hello", got.Messages[1].Content)
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(Options{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	_, err := c.Generate(context.Background(), Conversation("", nil, "hello", 0))
	assert.ErrorIs(t, err, ErrNoChoices)
}

func TestOpenAIClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(Options{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	_, err := c.Generate(context.Background(), Conversation("", nil, "hello", 0))
	assert.Error(t, err)
}
