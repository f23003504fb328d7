package model

import (
	"context"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"pairpilot/ollama"
)

// ToolChoice controls whether a completion may request tool calls.
type ToolChoice int

const (
	// ToolChoiceAuto lets the service decide between text and tool calls.
	ToolChoiceAuto ToolChoice = iota
	// ToolChoiceNone forbids tool calls. Backends that need the definitions
	// to accept tool history (Anthropic) still send them; others omit them.
	ToolChoiceNone
)

// Provider abstracts completion service implementations (Ollama, OpenAI,
// OpenRouter, Anthropic) using provider-agnostic types from the model layer.
//
// This interface is defined in the model package (not provider package) to avoid
// import cycles: provider implementations can import model, and consumers can use
// the Provider interface without importing the provider package.
type Provider interface {
	// Complete sends messages and returns a single assistant message holding
	// either final text or tool calls. tools are the definitions the service
	// may see; choice says whether it may call them.
	Complete(ctx context.Context, messages []Message, tools []mcptypes.Tool, choice ToolChoice) (Message, error)

	// ListModels returns available models for this provider.
	ListModels(ctx context.Context) ([]ollama.ModelInfo, error)

	// GetModel returns the currently selected model name.
	GetModel() string

	// SetModel changes the active model.
	SetModel(model string)

	// Ping checks if the provider is reachable.
	Ping(ctx context.Context) error
}
