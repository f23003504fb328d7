// Package embedding provides vector embedding generation for long-term memory.
// Supports multiple backends: OpenAI (cloud), Ollama (local) and Google GenAI (cloud).
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"pairpilot/ollama"
)

// MaxInputChars caps the text sent to an embedding model.
const MaxInputChars = 4000

var (
	// ErrEmptyInput is returned when text is empty after preparation.
	ErrEmptyInput = errors.New("embedding input is empty")
	// ErrEmptyEmbedding is returned when a backend answers with no vector.
	ErrEmptyEmbedding = errors.New("embedding service returned no vector")
	// ErrDimensionMismatch is returned by CosineSimilarity for vectors of different length.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Engine generates vector embeddings for text.
type Engine interface {
	// Embed generates the embedding of a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Name identifies the backend and model, e.g. "openai:text-embedding-3-small".
	Name() string
}

// Config holds embedding engine configuration.
type Config struct {
	// Provider: "openai", "ollama" or "genai"
	Provider string
	BaseURL  string
	Model    string
	APIKey   string
	// TaskType for GenAI: "SEMANTIC_SIMILARITY", "RETRIEVAL_QUERY", "RETRIEVAL_DOCUMENT"
	TaskType string
}

// NewEngine creates an embedding engine based on configuration.
func NewEngine(cfg Config, logger *zap.Logger) (Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("embedding")

	var (
		engine Engine
		err    error
	)
	switch cfg.Provider {
	case "openai", "":
		engine, err = NewOpenAIEngine(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case "ollama":
		var client *ollama.Client
		client, err = ollama.NewClient(cfg.BaseURL, "")
		if err == nil {
			engine = NewOllamaEngine(client, cfg.Model)
		}
	case "genai":
		engine, err = NewGenAIEngine(context.Background(), cfg.APIKey, cfg.Model, cfg.TaskType)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s (use 'openai', 'ollama' or 'genai')", cfg.Provider)
	}
	if err != nil {
		logger.Error("failed to create embedding engine", zap.String("provider", cfg.Provider), zap.Error(err))
		return nil, err
	}

	logger.Debug("embedding engine created", zap.String("engine", engine.Name()))
	return engine, nil
}

// PrepareText normalizes text before embedding: newlines become spaces, the
// result is trimmed and capped at MaxInputChars characters.
func PrepareText(text string) string {
	text = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(text)
	text = strings.TrimSpace(text)
	if r := []rune(text); len(r) > MaxInputChars {
		text = string(r[:MaxInputChars])
	}
	return text
}

// Embed prepares text and asks the engine for its vector. Empty input and
// empty vectors are reported as errors.
func Embed(ctx context.Context, engine Engine, text string) ([]float32, error) {
	prepared := PrepareText(text)
	if prepared == "" {
		return nil, ErrEmptyInput
	}
	vec, err := engine.Embed(ctx, prepared)
	if err != nil {
		return nil, fmt.Errorf("%s embed failed: %w", engine.Name(), err)
	}
	if len(vec) == 0 {
		return nil, ErrEmptyEmbedding
	}
	return vec, nil
}

// CosineSimilarity calculates dot(a,b) / (|a||b|).
// Returns 0 when either vector has zero magnitude.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, aMag, bMag float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		aMag += x * x
		bMag += y * y
	}
	if aMag == 0 || bMag == 0 {
		return 0, nil
	}

	sim := dot / (math.Sqrt(aMag) * math.Sqrt(bMag))
	// Clamp rounding drift so identical vectors never exceed 1.
	return math.Max(-1, math.Min(1, sim)), nil
}

// IsZero reports whether every component of v is zero.
func IsZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
