package llm

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrEmptyCompletion is returned when a provider answers with no text.
var ErrEmptyCompletion = errors.New("empty completion")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is one chat-completion call. Zero Temperature and TopP leave the
// provider default in place.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature,omitempty"`
	TopP        float32   `json:"top_p,omitempty"`
	MaxTokens   int       `json:"max_tokens"`
	Stop        []string  `json:"stop,omitempty"`
}

// Completer sends a chat conversation to a hosted model and returns the
// text of its first choice.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// SplitSystem separates the leading system messages from the rest of the
// conversation, for providers that take the instruction out of band.
func SplitSystem(msgs []Message) (system []string, rest []Message) {
	i := 0
	for i < len(msgs) && msgs[i].Role == RoleSystem {
		system = append(system, msgs[i].Content)
		i++
	}
	return system, msgs[i:]
}
