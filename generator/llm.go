package generator

import (
	"context"
	"errors"
	"fmt"
)

const (
	GenerationTemperature = 0.8
	SuggestionTemperature = 0.7
	SuggestionMaxTokens   = 100
)

// Request is one call to the text-generation capability. Schema is nil for
// plain-text calls.
type Request struct {
	Instruction string
	Temperature float64
	MaxTokens   int
	Schema      *Schema
}

// LLMClient abstracts the model provider so it can be swapped or mocked.
type LLMClient interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// LLMSettings is the provider configuration handed to implementations.
type LLMSettings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

// NewLLM builds the client for settings.Provider.
func NewLLM(settings LLMSettings) (LLMClient, error) {
	switch settings.Provider {
	case "mock":
		return MockLLM{}, nil
	case "", "gemini":
		if settings.BaseURL == "" {
			settings.BaseURL = GeminiBaseURL
		}
	case "openai":
	case "deepseek":
		// DeepSeek exposes an OpenAI-compatible API; base_url is mandatory.
		if settings.BaseURL == "" {
			return nil, errors.New("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
	default:
		return nil, fmt.Errorf("llm provider %s not supported", settings.Provider)
	}
	llm, err := NewOpenAILLMFromConfig(&settings)
	if err != nil {
		return nil, err
	}
	return llm, nil
}
