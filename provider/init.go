package provider

import (
	"fmt"

	"go.uber.org/zap"

	"pairpilot/config"
	"pairpilot/model"
	"pairpilot/ollama"
)

// NewFromConfig creates the completion provider named by the [completion]
// section, reading its API key from the credential store or environment.
//
// A cloud provider without a key yields an error wrapping ErrMissingAPIKey.
// Callers may treat that as "not configured" and still run commands that
// need no completion service.
func NewFromConfig(cfg *config.Config, logger *zap.Logger) (model.Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("provider")

	id := cfg.Completion.Provider
	providerType := MapProviderIDToType(id)

	p, err := NewProvider(Config{
		Type:    providerType,
		BaseURL: cfg.Completion.BaseURL,
		APIKey:  cfg.APIKey(id),
		Model:   cfg.Completion.Model,
	})
	if err != nil {
		logger.Warn("completion provider unavailable", zap.String("provider", id), zap.Error(err))
		return nil, fmt.Errorf("provider %s: %w", id, err)
	}

	if providerType == ProviderTypeOllama && !ollama.ModelSupportsToolCalling(p.GetModel()) {
		logger.Warn("model is not known to support tool calling; tool requests may be ignored",
			zap.String("model", p.GetModel()))
	}

	logger.Debug("completion provider initialized",
		zap.String("provider", id),
		zap.String("model", p.GetModel()))
	return p, nil
}
