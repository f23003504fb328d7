package ollama

import "testing"

func TestModelSupportsToolCalling(t *testing.T) {
	tests := []struct {
		model string
		want  bool
	}{
		{"llama3.1:latest", true},
		{"llama3.2:3b", true},
		{"Qwen2.5-Coder:7b", true},
		{"llama3:8b", false},
		{"llama3-gradient:8b", false},
		{"codellama:13b", false},
		{"gemma2", false},
		{"unknown-model", false},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			if got := ModelSupportsToolCalling(tt.model); got != tt.want {
				t.Errorf("ModelSupportsToolCalling(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient("", "")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if c.GetModel() != DefaultModel {
		t.Errorf("GetModel() = %q, want %q", c.GetModel(), DefaultModel)
	}
	if c.BaseURL() != DefaultHost {
		t.Errorf("BaseURL() = %q, want %q", c.BaseURL(), DefaultHost)
	}

	c.SetModel("qwen3")
	if !c.SupportsToolCalling() {
		t.Error("qwen3 should support tool calling")
	}
}

func TestNewClientInvalidURL(t *testing.T) {
	if _, err := NewClient("://bad", ""); err == nil {
		t.Error("expected error for invalid URL")
	}
}
