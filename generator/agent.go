package generator

import (
	"context"
	"errors"
	"strings"
)

// InsufficientContextMessage is the successful result of a suggestion call
// that was short-circuited for lack of context.
const InsufficientContextMessage = "Por favor, rellena primero el tema o el objetivo para obtener una sugerencia."

// Agent runs generation and suggestion calls against an LLMClient.
type Agent struct {
	llm LLMClient
}

func NewAgent(llm LLMClient) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	return &Agent{llm: llm}, nil
}

// Generate sends a compiled generation request and parses the drafts.
func (a *Agent) Generate(ctx context.Context, req GenerationRequest) ([]GeneratedEmail, error) {
	schema := req.Schema
	if schema.Name == "" {
		schema = EmailListSchema
	}
	raw, err := a.llm.Complete(ctx, Request{
		Instruction: req.Instruction,
		Temperature: GenerationTemperature,
		Schema:      &schema,
	})
	if err != nil {
		return nil, err
	}
	return ParseEmails(raw, schema)
}

// Suggest returns one cleaned plain-text suggestion.
func (a *Agent) Suggest(ctx context.Context, instruction string) (string, error) {
	if strings.TrimSpace(instruction) == InsufficientContextInstruction {
		return InsufficientContextMessage, nil
	}
	raw, err := a.llm.Complete(ctx, Request{
		Instruction: instruction,
		Temperature: SuggestionTemperature,
		MaxTokens:   SuggestionMaxTokens,
	})
	if err != nil {
		return "", err
	}
	return CleanSuggestion(raw), nil
}
