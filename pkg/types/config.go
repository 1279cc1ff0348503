// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Provider identifies a text-generation backend.
type Provider string

const (
	ProviderClaude Provider = "claude"
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
	ProviderOllama Provider = "ollama"
)

// AIConfig holds settings for the generation backend.
type AIConfig struct {
	// Provider selects the backend: claude, openai, gemini, or ollama.
	// When empty it is inferred from Model.
	Provider Provider `json:"provider" yaml:"provider"`

	// Model is the model identifier (e.g. "claude-sonnet-4-5-20250929", "gpt-4o", "llama3").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for hosted providers.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the provider endpoint (OpenAI-compatible gateways, remote Ollama).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxRetries is the maximum number of attempts per backend call (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// InitialDelay is the first backoff delay; it doubles after every failure (default 1s).
	InitialDelay time.Duration `json:"initial_delay" yaml:"initial_delay"`

	// Timeout bounds a single HTTP request to the provider.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// CacheConfig holds settings for the generation memo store.
type CacheConfig struct {
	// Capacity is the number of distinct prompts kept (default 100).
	Capacity int `json:"capacity" yaml:"capacity"`
}

// PipelineConfig holds settings for section fan-out.
type PipelineConfig struct {
	// Workers bounds concurrent section tasks (default: one per section).
	Workers int `json:"workers" yaml:"workers"`
}

// RefineConfig holds settings for the refinement stage.
type RefineConfig struct {
	// ConsistencyCheck enables the check-and-re-refine pass.
	ConsistencyCheck bool `json:"consistency_check" yaml:"consistency_check"`
}

// OutputFormat selects the file format handed to the output sink.
type OutputFormat string

const (
	OutputMarkdown OutputFormat = "markdown"
	OutputText     OutputFormat = "text"
	OutputDocx     OutputFormat = "docx"
	OutputODT      OutputFormat = "odt"
	OutputPDF      OutputFormat = "pdf"
	OutputHTML     OutputFormat = "html"
)

// RenderConfig holds settings for the output sink.
type RenderConfig struct {
	// Format selects the output file format.
	Format OutputFormat `json:"format" yaml:"format"`

	// Image is the container image used for binary formats.
	Image string `json:"image" yaml:"image"`
}

// GenerationConfig groups all settings for a generate run.
type GenerationConfig struct {
	AI       AIConfig       `json:"ai" yaml:"ai"`
	Cache    CacheConfig    `json:"cache" yaml:"cache"`
	Pipeline PipelineConfig `json:"pipeline" yaml:"pipeline"`
	Refine   RefineConfig   `json:"refine" yaml:"refine"`
	Render   RenderConfig   `json:"render" yaml:"render"`

	// DocumentType names the document being produced (e.g. "Statement of Work (SOW)").
	DocumentType string `json:"document_type" yaml:"document_type"`

	// OutputDir is where generated documents are written.
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}
