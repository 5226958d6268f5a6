package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Built-in variants name OpenAI-compatible models, so the other providers
// always run with an explicit model.
const (
	DefaultAnthropicModel = "claude-sonnet-4-20250514"
	DefaultGeminiModel    = "gemini-2.5-flash"
)

type Config struct {
	Port     int
	LogLevel string

	Provider        string
	LLMAPIKey       string
	LLMBaseURL      string
	AnthropicAPIKey string
	GeminiAPIKey    string

	Variant           string
	Model             string
	CompletionTimeout time.Duration
	StrictVocabulary  bool

	PersonaFile        string
	PersonaDatabaseURL string

	NatsURL     string
	NatsToken   string
	TraceStdout bool
}

func Load() Config {
	provider := envStr("LLM_PROVIDER", ProviderOpenAI)
	return Config{
		Port:               envInt("COLIVE_PORT", 8000),
		LogLevel:           envStr("LOG_LEVEL", "info"),
		Provider:           provider,
		LLMAPIKey:          envFirst("LLM_API_KEY", "OPENAI_API_KEY", "CHATAI_API_KEY"),
		LLMBaseURL:         envStr("LLM_BASE_URL", "https://api.openai.com/v1"),
		AnthropicAPIKey:    envStr("ANTHROPIC_API_KEY", ""),
		GeminiAPIKey:       envStr("GEMINI_API_KEY", ""),
		Variant:            envStr("COLIVE_VARIANT", "gpt4o"),
		Model:              envStr("COLIVE_MODEL", defaultModel(provider)),
		CompletionTimeout:  envDuration("COMPLETION_TIMEOUT", 60*time.Second),
		StrictVocabulary:   envBool("STRICT_VOCABULARY", true),
		PersonaFile:        envStr("PERSONA_FILE", ""),
		PersonaDatabaseURL: envStr("PERSONA_DATABASE_URL", ""),
		NatsURL:            envStr("NATS_URL", ""),
		NatsToken:          envStr("NATS_TOKEN", ""),
		TraceStdout:        envBool("TRACE_STDOUT", false),
	}
}

func defaultModel(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return DefaultAnthropicModel
	case ProviderGemini:
		return DefaultGeminiModel
	default:
		return ""
	}
}

// APIKey returns the credential for the configured provider.
func (c Config) APIKey() string {
	switch c.Provider {
	case ProviderAnthropic:
		return c.AnthropicAPIKey
	case ProviderGemini:
		return c.GeminiAPIKey
	default:
		return c.LLMAPIKey
	}
}

// Validate reports missing credentials or an unknown provider.
func (c Config) Validate() error {
	var errs []error
	switch c.Provider {
	case ProviderOpenAI:
		if c.LLMAPIKey == "" {
			errs = append(errs, errors.New("LLM_API_KEY (or OPENAI_API_KEY / CHATAI_API_KEY) is required"))
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			errs = append(errs, errors.New("ANTHROPIC_API_KEY is required"))
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LLM_PROVIDER %q", c.Provider))
	}
	if c.Provider != ProviderOpenAI && c.Model == "" {
		errs = append(errs, fmt.Errorf("COLIVE_MODEL is required for provider %s", c.Provider))
	}
	if c.CompletionTimeout <= 0 {
		errs = append(errs, errors.New("COMPLETION_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envFirst returns the first non-empty value among keys.
func envFirst(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// envDuration accepts Go durations ("90s") or a bare number of seconds.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
