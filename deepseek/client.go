package deepseek

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const (
	deepseekBaseURL = "https://api.deepseek.com"

	systemPrompt = "You are a helpful assistant that analyzes Reddit content and outputs JSON."
)

// Client is the DeepSeek API client using the OpenAI-compatible interface
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a new DeepSeek client
func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = "deepseek-chat"
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = deepseekBaseURL

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Complete sends the prompt and returns the raw response text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.3,
		MaxTokens:   2000,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	return resp.Choices[0].Message.Content, nil
}
