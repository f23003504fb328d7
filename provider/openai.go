package provider

import (
	"context"
	"fmt"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"pairpilot/mcp"
	"pairpilot/model"
	"pairpilot/ollama"
)

// OpenAIProvider implements the Provider interface using OpenAI's official API.
type OpenAIProvider struct {
	client  openai.Client
	model   string
	baseURL string
}

// NewOpenAIProvider creates a new OpenAI provider instance.
//
// Parameters:
//   - baseURL: OpenAI API base URL (default: "https://api.openai.com/v1")
//   - apiKey: OpenAI API key (required)
//   - model: Initial model to use (default: "gpt-4.1-2025-04-14")
func NewOpenAIProvider(baseURL, apiKey, model string) (*OpenAIProvider, error) {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI: %w", ErrMissingAPIKey)
	}
	if model == "" {
		model = "gpt-4.1-2025-04-14"
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &OpenAIProvider{
		client:  client,
		model:   model,
		baseURL: baseURL,
	}, nil
}

// Complete implements Provider.Complete. Tools are offered with automatic
// tool choice, and omitted when tool use is forbidden.
func (p *OpenAIProvider) Complete(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, choice model.ToolChoice) (model.Message, error) {
	msg, err := completeOpenAI(ctx, p.client, p.model, messages, tools, choice)
	if err != nil {
		return model.Message{}, fmt.Errorf("OpenAI completion failed: %w", err)
	}
	return msg, nil
}

// completeOpenAI is shared by every OpenAI-compatible provider.
func completeOpenAI(ctx context.Context, client openai.Client, modelName string, messages []model.Message, tools []mcptypes.Tool, choice model.ToolChoice) (model.Message, error) {
	params := openai.ChatCompletionNewParams{
		Messages: ConvertToOpenAIMessages(messages),
		Model:    openai.ChatModel(modelName),
	}
	if len(tools) > 0 && choice != model.ToolChoiceNone {
		params.Tools = mcp.OpenAITools(tools)
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String("auto"),
		}
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return model.Message{}, err
	}
	if len(resp.Choices) == 0 {
		return model.Message{Role: model.RoleAssistant}, nil
	}
	return ConvertFromOpenAIMessage(resp.Choices[0].Message), nil
}

// ListModels implements Provider.ListModels.
func (p *OpenAIProvider) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	modelsPage, err := p.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list OpenAI models: %w", err)
	}

	result := make([]ollama.ModelInfo, 0, len(modelsPage.Data))
	for _, m := range modelsPage.Data {
		result = append(result, ollama.ModelInfo{
			Name:         m.ID,
			InternalName: m.ID,
			Provider:     "openai",
		})
	}

	return result, nil
}

// GetModel implements Provider.GetModel.
func (p *OpenAIProvider) GetModel() string {
	return p.model
}

// SetModel implements Provider.SetModel.
func (p *OpenAIProvider) SetModel(model string) {
	p.model = model
}

// Ping implements Provider.Ping by attempting to list models.
func (p *OpenAIProvider) Ping(ctx context.Context) error {
	_, err := p.client.Models.List(ctx)
	if err != nil {
		return fmt.Errorf("OpenAI ping failed: %w", err)
	}
	return nil
}
