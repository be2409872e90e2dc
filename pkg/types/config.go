// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the deep-research
// pipelines: configuration, retrieved web results, and stored document
// chunks.
package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "deep-research/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// WebSearchConfig holds settings for the web search provider.
type WebSearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey authenticates against the search provider.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxResults is the maximum number of snippets per query (default 5).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// DocStoreConfig holds settings for the document chunk store.
type DocStoreConfig struct {
	// DataDir is the base directory for the store (contains index/).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxResults is the default maximum number of chunks per search (default 5).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// Threshold is the minimum relevance score a chunk must reach to be
	// returned (default 0.3).
	Threshold float64 `json:"threshold" yaml:"threshold"`
}

// IngestConfig holds settings for document ingestion and chunking.
type IngestConfig struct {
	// ChunkSize is the target chunk length in characters (default 1000).
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`

	// ChunkOverlap is the number of characters shared between consecutive
	// chunks (default 200).
	ChunkOverlap int `json:"chunk_overlap" yaml:"chunk_overlap"`
}

// AIConfig holds shared settings for components that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxTokens bounds the response length (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// DraftingConfig holds settings for the drafting backend.
type DraftingConfig struct {
	AIConfig   `yaml:",inline"`
	HTTPConfig `yaml:",inline"`
}

// WorkflowConfig holds settings shared by both pipelines.
type WorkflowConfig struct {
	// MaxInsights caps how many extracted insights become tree nodes (default 8).
	MaxInsights int `json:"max_insights" yaml:"max_insights"`

	// SummarySentences caps per-source summaries in reports (default 4).
	SummarySentences int `json:"summary_sentences" yaml:"summary_sentences"`

	// MaxIterations is carried into workflow state and reported; the
	// pipelines are single-pass and never loop on it.
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`
}

// AppConfig groups all component configurations.
type AppConfig struct {
	WebSearch WebSearchConfig `json:"web_search" yaml:"web_search"`
	DocStore  DocStoreConfig  `json:"doc_store" yaml:"doc_store"`
	Ingest    IngestConfig    `json:"ingest" yaml:"ingest"`
	Drafting  DraftingConfig  `json:"drafting" yaml:"drafting"`
	Workflow  WorkflowConfig  `json:"workflow" yaml:"workflow"`
}
