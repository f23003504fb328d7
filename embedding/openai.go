package embedding

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIEngine generates embeddings with the OpenAI embeddings endpoint.
type OpenAIEngine struct {
	client openai.Client
	model  string
}

func NewOpenAIEngine(baseURL, apiKey, model string) (*OpenAIEngine, error) {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = string(openai.EmbeddingModelTextEmbedding3Small)
	}

	return &OpenAIEngine{
		client: openai.NewClient(option.WithBaseURL(baseURL), option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

func (e *OpenAIEngine) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, ErrEmptyEmbedding
	}

	src := resp.Data[0].Embedding
	vec := make([]float32, len(src))
	for i, x := range src {
		vec[i] = float32(x)
	}
	return vec, nil
}

func (e *OpenAIEngine) Name() string {
	return "openai:" + e.model
}
