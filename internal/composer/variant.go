package composer

import (
	"errors"
	"fmt"
	"sort"

	"github.com/MikeSquared-Agency/colive/internal/dialogue"
)

// ErrUnknownVariant is returned by LookupVariant for names with no built-in.
var ErrUnknownVariant = errors.New("unknown variant")

// DefaultVariant is used when a request names no variant.
const DefaultVariant = "gpt4o"

// ContinuePrompt replaces the user input in autotalk mode.
const ContinuePrompt = "Please continue the conversation."

// Variant is one prompt and model configuration.
type Variant struct {
	Name        string                 `json:"name"`
	Model       string                 `json:"model"`
	Temperature float32                `json:"temperature"`
	TopP        float32                `json:"top_p,omitempty"`
	MaxTokens   int                    `json:"max_tokens"`
	Stop        []string               `json:"stop,omitempty"`
	Policy      dialogue.SpeakerPolicy `json:"policy"`

	// SpeakerGuard adds a system reminder after every participant message
	// naming who may reply.
	SpeakerGuard bool `json:"speaker_guard"`
	// Closing tells the model to wrap up once every topic is covered.
	Closing bool `json:"closing"`
	// ContinuePrompt, when set, is sent instead of the participant's input.
	ContinuePrompt string `json:"continue_prompt,omitempty"`
}

var builtins = map[string]Variant{
	"gpt4o": {
		Name:        "gpt4o",
		Model:       "gpt-4o",
		Temperature: 0.7,
		MaxTokens:   300,
		Policy:      dialogue.PolicyGroup,
	},
	"chatai": {
		Name:         "chatai",
		Model:        "meta-llama-3.1-8b-instruct",
		Temperature:  0.7,
		MaxTokens:    250,
		Policy:       dialogue.PolicyGroup,
		SpeakerGuard: true,
		Closing:      true,
	},
	"llama": {
		Name:        "llama",
		Model:       "meta-llama-3.1-8b-instruct",
		Temperature: 0.7,
		MaxTokens:   250,
		Policy:      dialogue.PolicyGroup,
	},
	"qwen": {
		Name:        "qwen",
		Model:       "qwen3-32b",
		Temperature: 0.7,
		MaxTokens:   300,
		Stop:        []string{"\n\n", "```", "<|endoftext|>"},
		Policy:      dialogue.PolicyGroup,
		Closing:     true,
	},
	"autotalk": {
		Name:           "autotalk",
		Model:          "meta-llama-3.1-8b-instruct",
		Temperature:    0.7,
		TopP:           0.9,
		MaxTokens:      250,
		Policy:         dialogue.PolicyRotation,
		Closing:        true,
		ContinuePrompt: ContinuePrompt,
	},
}

// LookupVariant returns the built-in variant called name. An empty name
// selects DefaultVariant.
func LookupVariant(name string) (Variant, error) {
	if name == "" {
		name = DefaultVariant
	}
	v, ok := builtins[name]
	if !ok {
		return Variant{}, fmt.Errorf("%w %q", ErrUnknownVariant, name)
	}
	v.Stop = append([]string(nil), v.Stop...)
	return v, nil
}

// Variants lists the built-in variants sorted by name.
func Variants() []Variant {
	out := make([]Variant, 0, len(builtins))
	for _, v := range builtins {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// WithModel returns v with its model replaced, unless model is empty.
func (v Variant) WithModel(model string) Variant {
	if model != "" {
		v.Model = model
	}
	return v
}
