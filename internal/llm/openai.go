package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"visitprep/internal/core"
)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = "gpt-4"

// ErrEmptyResponse is returned when the API answers without any choices or
// with blank content.
var ErrEmptyResponse = errors.New("openai: response contained no choices")

// OpenAIClient calls the OpenAI chat completion API.  Each request carries a
// single system message.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient constructs an OpenAI-backed completer.  baseURL may be empty
// to use the public endpoint.
func NewOpenAIClient(apiKey, model, baseURL string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Model returns the configured chat model.
func (c *OpenAIClient) Model() string { return c.model }

// Complete implements core.Completer.
func (c *OpenAIClient) Complete(ctx context.Context, req core.CompletionRequest) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		N:           1,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
