package provider

import (
	"errors"
	"testing"

	"pairpilot/config"
	"pairpilot/model"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		missingKey  bool
	}{
		{
			name:   "ollama provider with defaults",
			config: Config{Type: ProviderTypeOllama},
		},
		{
			name: "ollama provider with custom config",
			config: Config{
				Type:    ProviderTypeOllama,
				BaseURL: "http://localhost:11434",
				Model:   "llama3.1",
			},
		},
		{
			name: "openai provider",
			config: Config{
				Type:   ProviderTypeOpenAI,
				Model:  "gpt-4.1-2025-04-14",
				APIKey: "test-key",
			},
		},
		{
			name:   "openrouter provider",
			config: Config{Type: ProviderTypeOpenRouter, APIKey: "test-key"},
		},
		{
			name: "anthropic provider",
			config: Config{
				Type:   ProviderTypeAnthropic,
				Model:  "claude-sonnet-4-5-20250929",
				APIKey: "test-key",
			},
		},
		{
			name:        "openai without key",
			config:      Config{Type: ProviderTypeOpenAI},
			expectError: true,
			missingKey:  true,
		},
		{
			name:        "anthropic without key",
			config:      Config{Type: ProviderTypeAnthropic},
			expectError: true,
			missingKey:  true,
		},
		{
			name:        "unknown provider type",
			config:      Config{Type: ProviderType("unknown")},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(tt.config)

			if tt.expectError && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.missingKey && !errors.Is(err, ErrMissingAPIKey) {
				t.Errorf("error = %v, want ErrMissingAPIKey", err)
			}
			if tt.expectError && provider != nil {
				t.Error("expected nil provider, got non-nil")
			}
			if !tt.expectError && provider.GetModel() == "" {
				t.Error("provider has no default model")
			}
		})
	}
}

func TestFactoryReturnsOllamaProvider(t *testing.T) {
	provider, err := NewProvider(Config{Type: ProviderTypeOllama, Model: "llama3.1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := provider.(*OllamaProvider); !ok {
		t.Errorf("expected *OllamaProvider, got %T", provider)
	}
}

func TestMapProviderIDToType(t *testing.T) {
	tests := map[string]ProviderType{
		"ollama":     ProviderTypeOllama,
		"openrouter": ProviderTypeOpenRouter,
		"openai":     ProviderTypeOpenAI,
		"anthropic":  ProviderTypeAnthropic,
		"OpenAI":     ProviderType("OpenAI"),
	}
	for id, want := range tests {
		if got := MapProviderIDToType(id); got != want {
			t.Errorf("MapProviderIDToType(%q) = %q, want %q", id, got, want)
		}
	}
}

func TestNewFromConfig(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	cfg := &config.Config{}
	cfg.Completion = config.CompletionConfig{Provider: "openai", Model: "gpt-4.1-2025-04-14"}
	if _, err := NewFromConfig(cfg, nil); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("error = %v, want ErrMissingAPIKey", err)
	}

	t.Setenv("OPENAI_API_KEY", "sk-test")
	p, err := NewFromConfig(cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := p.GetModel(); got != "gpt-4.1-2025-04-14" {
		t.Errorf("GetModel() = %q", got)
	}
	var _ model.Provider = p

	cfg.Completion = config.CompletionConfig{Provider: "ollama", Model: "phi3"}
	if _, err := NewFromConfig(cfg, nil); err != nil {
		t.Errorf("ollama needs no key, got %v", err)
	}
}
