package provider

import (
	"context"
	"fmt"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"pairpilot/mcp"
	"pairpilot/model"
	"pairpilot/ollama"
)

// OllamaProvider wraps ollama.Client to implement the Provider interface.
type OllamaProvider struct {
	client *ollama.Client
}

// NewOllamaProvider creates a new Ollama provider instance.
//
// Parameters:
//   - baseURL: The Ollama server URL. Defaults to "http://localhost:11434".
//   - model: The model name to use. Defaults to "llama3.1:latest".
func NewOllamaProvider(baseURL, model string) (*OllamaProvider, error) {
	client, err := ollama.NewClient(baseURL, model)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}

	return &OllamaProvider{
		client: client,
	}, nil
}

// Complete implements Provider.Complete. Ollama has no tool choice, so
// forbidden tools are left off the request.
func (p *OllamaProvider) Complete(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, choice model.ToolChoice) (model.Message, error) {
	if choice == model.ToolChoiceNone {
		tools = nil
	}
	reply, err := p.client.Chat(ctx, ConvertToOllamaMessages(messages), mcp.OllamaTools(tools))
	if err != nil {
		return model.Message{}, fmt.Errorf("Ollama completion failed: %w", err)
	}
	return ConvertFromOllamaMessage(reply), nil
}

// ListModels implements Provider.ListModels (direct passthrough).
func (p *OllamaProvider) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	return p.client.ListModels(ctx)
}

// GetModel implements Provider.GetModel (direct passthrough).
func (p *OllamaProvider) GetModel() string {
	return p.client.GetModel()
}

// SetModel implements Provider.SetModel (direct passthrough).
func (p *OllamaProvider) SetModel(model string) {
	p.client.SetModel(model)
}

// Ping implements Provider.Ping (direct passthrough).
func (p *OllamaProvider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}
