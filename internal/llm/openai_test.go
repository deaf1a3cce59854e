package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitprep/internal/core"
)

func fakeOpenAI(t *testing.T, status int, body any, seen *openai.ChatCompletionRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if seen != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCompleteSendsSingleSystemMessage(t *testing.T) {
	var seen openai.ChatCompletionRequest
	srv := fakeOpenAI(t, http.StatusOK, openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "- plan"}},
		},
	}, &seen)

	c := NewOpenAIClient("test-key", "", srv.URL+"/v1")
	out, err := c.Complete(context.Background(), core.CompletionRequest{
		SystemPrompt: "prompt text",
		MaxTokens:    150,
		Temperature:  0.7,
	})
	require.NoError(t, err)
	assert.Equal(t, "- plan", out)

	assert.Equal(t, DefaultModel, seen.Model)
	require.Len(t, seen.Messages, 1)
	assert.Equal(t, openai.ChatMessageRoleSystem, seen.Messages[0].Role)
	assert.Equal(t, "prompt text", seen.Messages[0].Content)
	assert.Equal(t, 150, seen.MaxTokens)
	assert.Equal(t, 1, seen.N)
	assert.InDelta(t, 0.7, seen.Temperature, 1e-6)
	assert.Empty(t, seen.Stop)
}

func TestCompleteNoChoices(t *testing.T) {
	srv := fakeOpenAI(t, http.StatusOK, openai.ChatCompletionResponse{}, nil)
	c := NewOpenAIClient("test-key", "gpt-4o-mini", srv.URL+"/v1")

	_, err := c.Complete(context.Background(), core.CompletionRequest{SystemPrompt: "x"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestCompleteBlankContent(t *testing.T) {
	srv := fakeOpenAI(t, http.StatusOK, openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: " \n "}},
		},
	}, nil)
	c := NewOpenAIClient("test-key", "", srv.URL+"/v1")

	_, err := c.Complete(context.Background(), core.CompletionRequest{SystemPrompt: "x"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestCompleteAPIError(t *testing.T) {
	srv := fakeOpenAI(t, http.StatusUnauthorized, map[string]any{
		"error": map[string]any{"message": "bad key", "type": "invalid_request_error"},
	}, nil)
	c := NewOpenAIClient("test-key", "", srv.URL+"/v1")

	_, err := c.Complete(context.Background(), core.CompletionRequest{SystemPrompt: "x"})
	require.Error(t, err)
	var apiErr *openai.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.HTTPStatusCode)
}

func TestMockClient(t *testing.T) {
	m := NewMockClient()
	ctx := context.Background()

	plan, err := m.Complete(ctx, core.CompletionRequest{SystemPrompt: core.PlanPreamble})
	require.NoError(t, err)
	assert.Equal(t, MockPlan, plan)

	ans, err := m.Complete(ctx, core.CompletionRequest{SystemPrompt: core.BuildFollowUpPrompt(plan, "Is metformin enough?")})
	require.NoError(t, err)
	assert.Equal(t, "Mock answer to: Is metformin enough?", ans)
}
