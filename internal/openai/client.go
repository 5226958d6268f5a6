package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/MikeSquared-Agency/colive/internal/llm"
)

// DefaultBaseURL is the OpenAI API. Any OpenAI-compatible host works,
// e.g. https://chat-ai.academiccloud.de/v1.
const DefaultBaseURL = "https://api.openai.com/v1"

// Client is an llm.Completer for OpenAI-compatible chat completion APIs.
type Client struct {
	api   *goopenai.Client
	model string
}

func NewClient(baseURL, apiKey, model string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	cfg := goopenai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	cfg.HTTPClient = &http.Client{Timeout: 120 * time.Second}

	return &Client{
		api:   goopenai.NewClientWithConfig(cfg),
		model: model,
	}
}

func (c *Client) Complete(ctx context.Context, in llm.Request) (string, error) {
	req := goopenai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    make([]goopenai.ChatCompletionMessage, 0, len(in.Messages)),
		Temperature: in.Temperature,
		TopP:        in.TopP,
		MaxTokens:   in.MaxTokens,
		Stop:        in.Stop,
	}
	if in.Model != "" {
		req.Model = in.Model
	}
	for _, m := range in.Messages {
		req.Messages = append(req.Messages, goopenai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", llm.ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}
