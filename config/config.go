package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type CompletionConfig struct {
	Provider string `toml:"provider"`
	BaseURL  string `toml:"base_url,omitempty"`
	Model    string `toml:"model"`
}

type EmbeddingConfig struct {
	Provider string `toml:"provider"`
	BaseURL  string `toml:"base_url,omitempty"`
	Model    string `toml:"model"`
	TaskType string `toml:"task_type,omitempty"`
}

type RetrievalConfig struct {
	MemoryLimit int `toml:"memory_limit"`
}

type ToolsConfig struct {
	MaxReadChars     int `toml:"max_read_chars"`
	MaxTreeChars     int `toml:"max_tree_chars"`
	DefaultTreeDepth int `toml:"default_tree_depth"`
}

type IndexConfig struct {
	MaxScanDepth   int `toml:"max_scan_depth"`
	ReindexDelayMS int `toml:"reindex_delay_ms"`
}

type SecurityConfig struct {
	Method     SecurityMethod `toml:"method"`
	SSHKeyPath string         `toml:"ssh_key_path,omitempty"`
}

type UserConfig struct {
	Completion        CompletionConfig `toml:"completion"`
	Embedding         EmbeddingConfig  `toml:"embedding"`
	Retrieval         RetrievalConfig  `toml:"retrieval"`
	Tools             ToolsConfig      `toml:"tools"`
	Index             IndexConfig      `toml:"index"`
	Security          SecurityConfig   `toml:"security"`
	SystemPromptExtra string           `toml:"system_prompt_extra,omitempty"`
}

// Config is the resolved runtime configuration. It is built once at startup
// and handed explicitly to every component that needs it.
type Config struct {
	DataDirectory string
	UserConfig
	Debug           bool
	CredentialStore *CredentialStore
}

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

// DBPath is the SQLite database holding projects and insights.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir(), "pairpilot.db")
}

func (c *Config) ReindexDelay() time.Duration {
	return time.Duration(c.Index.ReindexDelayMS) * time.Millisecond
}

// APIKey returns the stored credential for a provider, falling back to the
// vendor's conventional environment variable.
func (c *Config) APIKey(providerID string) string {
	if c.CredentialStore != nil {
		if key := c.CredentialStore.Get(providerID); key != "" {
			return key
		}
	}
	if env, ok := apiKeyEnvVars[providerID]; ok {
		return os.Getenv(env)
	}
	return ""
}

var apiKeyEnvVars = map[string]string{
	"openai":     "OPENAI_API_KEY",
	"anthropic":  "ANTHROPIC_API_KEY",
	"openrouter": "OPENROUTER_API_KEY",
	"genai":      "GEMINI_API_KEY",
}

func (c *Config) applyEnvOverrides() {
	if dataDir := os.Getenv("PAIRPILOT_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if p := os.Getenv("PAIRPILOT_PROVIDER"); p != "" {
		c.Completion.Provider = p
	}
	if m := os.Getenv("PAIRPILOT_MODEL"); m != "" {
		c.Completion.Model = m
	}
	if p := os.Getenv("PAIRPILOT_EMBED_PROVIDER"); p != "" {
		c.Embedding.Provider = p
	}
	if m := os.Getenv("PAIRPILOT_EMBED_MODEL"); m != "" {
		c.Embedding.Model = m
	}
}

// normalize replaces unset or non-positive limits with defaults so a
// partially written config.toml still yields a usable configuration.
func (c *Config) normalize() {
	d := DefaultUserConfig()
	if c.Completion.Provider == "" {
		c.Completion.Provider = d.Completion.Provider
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = d.Embedding.Provider
	}
	if c.Retrieval.MemoryLimit <= 0 {
		c.Retrieval.MemoryLimit = d.Retrieval.MemoryLimit
	}
	if c.Tools.MaxReadChars <= 0 {
		c.Tools.MaxReadChars = d.Tools.MaxReadChars
	}
	if c.Tools.MaxTreeChars <= 0 {
		c.Tools.MaxTreeChars = d.Tools.MaxTreeChars
	}
	if c.Tools.DefaultTreeDepth <= 0 {
		c.Tools.DefaultTreeDepth = d.Tools.DefaultTreeDepth
	}
	if c.Index.MaxScanDepth <= 0 {
		c.Index.MaxScanDepth = d.Index.MaxScanDepth
	}
	if c.Index.ReindexDelayMS <= 0 {
		c.Index.ReindexDelayMS = d.Index.ReindexDelayMS
	}
	if c.Security.Method == "" {
		c.Security.Method = SecurityPlainText
	}
}

func CheckDebug() bool {
	debug := os.Getenv("PAIRPILOT_DEBUG")
	return debug == "true" || debug == "1"
}

// Load reads settings.toml and <data_directory>/config.toml, creating both
// with defaults when missing, applies environment overrides and opens the
// credential store.
func Load() (*Config, error) {
	systemCfg, err := LoadSystemConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load system config: %w", err)
	}

	cfg := &Config{
		DataDirectory: systemCfg.DataDirectory,
		Debug:         CheckDebug(),
	}
	// The data directory override must apply before the user config is read.
	if dataDir := os.Getenv("PAIRPILOT_DATA_DIR"); dataDir != "" {
		cfg.DataDirectory = dataDir
	}

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	cfg.UserConfig = *userCfg
	cfg.applyEnvOverrides()
	cfg.normalize()

	store := NewCredentialStore(cfg.Security.Method, ExpandPath(cfg.Security.SSHKeyPath))
	store.SetPassphrase(os.Getenv("PAIRPILOT_SSH_PASSPHRASE"))
	if err := store.Load(dataDir); err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	cfg.CredentialStore = store

	return cfg, nil
}
