package config

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/pairpilot",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Completion: CompletionConfig{
			Provider: "openai",
			Model:    "gpt-4.1-2025-04-14",
		},
		Embedding: EmbeddingConfig{
			Provider: "openai",
			Model:    "text-embedding-3-small",
			TaskType: "SEMANTIC_SIMILARITY",
		},
		Retrieval: RetrievalConfig{MemoryLimit: 3},
		Tools: ToolsConfig{
			MaxReadChars:     20000,
			MaxTreeChars:     20000,
			DefaultTreeDepth: 3,
		},
		Index: IndexConfig{
			MaxScanDepth:   5,
			ReindexDelayMS: 100,
		},
		Security: SecurityConfig{Method: SecurityPlainText},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# pairpilot System Configuration
# Location: ~/.config/pairpilot/settings.toml
# This file uses TOML format: https://toml.io

# Directory where the database, sessions and user config are stored
data_directory = "~/.local/share/pairpilot"
`
}

func GenerateUserConfigTemplate() string {
	return `# pairpilot User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

[completion]
# One of: openai, openrouter, anthropic, ollama
provider = "openai"
model = "gpt-4.1-2025-04-14"
# base_url = ""

[embedding]
# One of: openai, ollama, genai
provider = "openai"
model = "text-embedding-3-small"
task_type = "SEMANTIC_SIMILARITY"

[retrieval]
# Number of long-term memories recalled per turn
memory_limit = 3

[tools]
max_read_chars = 20000
max_tree_chars = 20000
default_tree_depth = 3

[index]
max_scan_depth = 5
reindex_delay_ms = 100

[security]
# "plaintext" stores API keys in credentials.toml (0600)
# "ssh_key" encrypts them into credentials.enc with a key derived from an SSH key
method = "plaintext"
# ssh_key_path = "~/.ssh/id_ed25519"

# Extra instructions appended to the built-in assistant prompt (optional)
# system_prompt_extra = ""
`
}
