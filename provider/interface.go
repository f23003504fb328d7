// Package provider adapts completion services to model.Provider.
//
// Every adapter makes a single non-streaming request per Complete call and
// returns one assistant message carrying either final text or tool calls.
// Tool call IDs returned by the service are preserved verbatim so tool
// result messages can be correlated with the call that produced them.
// Ollama returns no IDs, so the Ollama adapter synthesizes them.
//
// # Conversions
//
// conversions.go holds the mapping between model.Message and each vendor's
// message type. Anthropic gets its own shape: system messages are lifted into
// the system parameter and consecutive tool results are grouped into a single
// user turn of tool_result blocks.
//
// # Usage
//
//	p, err := provider.NewProvider(provider.Config{
//	    Type:   provider.ProviderTypeOpenAI,
//	    APIKey: key,
//	    Model:  "gpt-4.1-2025-04-14",
//	})
//	if err != nil {
//	    // handle error
//	}
//	reply, err := p.Complete(ctx, messages, tools, model.ToolChoiceAuto)
package provider

import "errors"

// Note: The Provider interface is defined in the model package
// (model/provider.go) to avoid import cycles. This package implements model.Provider.

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeOllama     ProviderType = "ollama"
	ProviderTypeOpenRouter ProviderType = "openrouter"
	ProviderTypeOpenAI     ProviderType = "openai"
	ProviderTypeAnthropic  ProviderType = "anthropic"
)

// ErrMissingAPIKey is returned by cloud provider constructors without a key.
var ErrMissingAPIKey = errors.New("API key is required")

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
	APIKey  string // For OpenAI/OpenRouter/Anthropic (unused for Ollama)
}

// maxCompletionTokens bounds replies for services that require a limit.
const maxCompletionTokens = 4096
