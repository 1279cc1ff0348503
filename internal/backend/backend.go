// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package backend sends prompts to an external text-generation service.
// The set of services is closed: Claude, OpenAI, Gemini, and Ollama. New
// picks one variant from configuration; the rest of the pipeline sees only
// the Backend interface.
package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/documint/pkg/types"
)

// Backend abstracts the generation service so tests can supply a fake.
// Generate performs exactly one attempt; retries belong to the caller.
type Backend interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Named is implemented by backends that can report a stable identity for
// cache keys.
type Named interface {
	Name() string
}

// Error describes a failed call to a provider. StatusCode is 0 when the
// request never produced an HTTP response.
type Error struct {
	Provider   types.Provider
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

const (
	defaultMaxTokens = 4096
	defaultTimeout   = 120 * time.Second

	// transportRetries bounds in-request 429/5xx retries; the section
	// cache applies its own backoff on top.
	transportRetries = 2
)

// InferProvider maps a model name to its provider.
func InferProvider(model string) (types.Provider, error) {
	m := strings.ToLower(strings.TrimSpace(model))
	switch {
	case strings.HasPrefix(m, "claude"):
		return types.ProviderClaude, nil
	case strings.HasPrefix(m, "gpt"), strings.HasPrefix(m, "o1"), strings.HasPrefix(m, "o3"), strings.HasPrefix(m, "o4"):
		return types.ProviderOpenAI, nil
	case strings.HasPrefix(m, "gemini"):
		return types.ProviderGemini, nil
	case strings.HasPrefix(m, "llama"), strings.HasPrefix(m, "mistral"),
		strings.HasPrefix(m, "qwen"), strings.HasPrefix(m, "phi"), strings.HasPrefix(m, "gemma"):
		return types.ProviderOllama, nil
	}
	return "", fmt.Errorf("unsupported model %q: set provider explicitly", model)
}

// New builds the backend selected by cfg. The provider is inferred from
// the model name when cfg.Provider is empty. Hosted providers require an
// API key.
func New(ctx context.Context, cfg types.AIConfig) (Backend, error) {
	provider := cfg.Provider
	if provider == "" {
		p, err := InferProvider(cfg.Model)
		if err != nil {
			return nil, err
		}
		provider = p
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("%s: model is required", provider)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := &http.Client{Timeout: timeout}

	switch provider {
	case types.ProviderClaude:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("claude: API key is required (set anthropic-api-key in .secrets/ or ANTHROPIC_API_KEY)")
		}
		return &ClaudeBackend{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL, Client: client}, nil
	case types.ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai: API key is required (set openai-api-key in .secrets/ or OPENAI_API_KEY)")
		}
		return NewOpenAIBackend(cfg.APIKey, cfg.Model, cfg.BaseURL, client), nil
	case types.ProviderGemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini: API key is required (set gemini-api-key in .secrets/ or GEMINI_API_KEY)")
		}
		return NewGeminiBackend(ctx, cfg.APIKey, cfg.Model, cfg.BaseURL, client)
	case types.ProviderOllama:
		return NewOllamaBackend(cfg.Model, cfg.BaseURL, client), nil
	}
	return nil, fmt.Errorf("unknown provider %q", provider)
}
