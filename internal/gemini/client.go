package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/MikeSquared-Agency/colive/internal/llm"
)

// Client is an llm.Completer backed by the Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient builds a Gemini API client. baseURL is only set in tests.
func NewClient(ctx context.Context, apiKey, model, baseURL string) (*Client, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions.BaseURL = baseURL
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

func (c *Client) Complete(ctx context.Context, in llm.Request) (string, error) {
	system, rest := llm.SplitSystem(in.Messages)

	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(in.MaxTokens),
		StopSequences:   in.Stop,
	}
	if in.Temperature != 0 {
		temp := in.Temperature
		cfg.Temperature = &temp
	}
	if in.TopP != 0 {
		topP := in.TopP
		cfg.TopP = &topP
	}
	if len(system) > 0 {
		cfg.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}

	contents := make([]*genai.Content, 0, len(rest))
	for _, m := range rest {
		role := genai.RoleUser
		if m.Role == llm.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}

	model := c.model
	if in.Model != "" {
		model = in.Model
	}
	resp, err := c.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	txt := extractText(resp)
	if txt == "" {
		return "", llm.ErrEmptyCompletion
	}
	return txt, nil
}

func extractText(res *genai.GenerateContentResponse) string {
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range res.Candidates[0].Content.Parts {
		if p != nil && p.Text != "" {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}
