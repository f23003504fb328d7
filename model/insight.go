package model

import "time"

// InsightRecord is a persisted long-term memory entry. Records are append-only.
type InsightRecord struct {
	ID              int64
	Text            string
	Embedding       []float32
	SourceProjectID *int64
	Timestamp       time.Time
}

// ScoredInsight is an insight ranked against a query.
type ScoredInsight struct {
	ID         int64
	Text       string
	Similarity float64
}

// RetrievalResult holds the per-turn snippets injected into the prompt.
// Either snippet may be empty.
type RetrievalResult struct {
	StructureSnippet string
	MemorySnippet    string
}

// ToolExecutionResult is the outcome of one tool call.
type ToolExecutionResult struct {
	ResultText   string
	NeedsReindex bool
}
