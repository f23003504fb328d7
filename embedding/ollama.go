package embedding

import (
	"context"

	"pairpilot/ollama"
)

// OllamaEngine generates embeddings using a local Ollama server.
type OllamaEngine struct {
	client *ollama.Client
	model  string
}

func NewOllamaEngine(client *ollama.Client, model string) *OllamaEngine {
	if model == "" {
		model = ollama.DefaultEmbedModel
	}
	return &OllamaEngine{client: client, model: model}
}

func (e *OllamaEngine) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.client.Embed(ctx, e.model, text)
}

func (e *OllamaEngine) Name() string {
	return "ollama:" + e.model
}
