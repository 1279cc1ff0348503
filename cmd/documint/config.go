// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/documint/internal/backend"
	"github.com/pdiddy/documint/internal/cache"
	"github.com/pdiddy/documint/internal/render"
	"github.com/pdiddy/documint/internal/secrets"
	"github.com/pdiddy/documint/pkg/types"
)

const defaultModel = "claude-sonnet-4-5-20250929"

// setDefaults registers the config keys documint reads. Keys map to
// documint.yaml entries and DOCUMINT_* environment variables
// (ai.model -> DOCUMINT_AI_MODEL).
func setDefaults(v *viper.Viper) {
	v.SetDefault("ai.provider", "")
	v.SetDefault("ai.model", defaultModel)
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.max_retries", 5)
	v.SetDefault("ai.initial_delay", time.Second)
	v.SetDefault("ai.timeout", 2*time.Minute)
	v.SetDefault("cache.capacity", cache.DefaultCapacity)
	v.SetDefault("pipeline.workers", 0)
	v.SetDefault("refine.consistency_check", true)
	v.SetDefault("render.format", string(types.OutputMarkdown))
	v.SetDefault("render.image", "")
	v.SetDefault("document_type", "Statement of Work (SOW)")
	v.SetDefault("output_dir", "output")
	v.SetDefault("secrets_dir", ".secrets/")
	v.SetDefault("data_dir", "data")
}

// generationConfig reads a GenerationConfig from v. The provider is
// inferred from the model when not set, and the API key is resolved
// from the loaded secrets or the provider's environment variable.
func generationConfig(v *viper.Viper, loaded map[string]string) (types.GenerationConfig, error) {
	format, err := render.ParseFormat(v.GetString("render.format"))
	if err != nil {
		return types.GenerationConfig{}, err
	}

	cfg := types.GenerationConfig{
		AI: types.AIConfig{
			Provider:     types.Provider(v.GetString("ai.provider")),
			Model:        v.GetString("ai.model"),
			BaseURL:      v.GetString("ai.base_url"),
			MaxRetries:   v.GetInt("ai.max_retries"),
			InitialDelay: v.GetDuration("ai.initial_delay"),
			Timeout:      v.GetDuration("ai.timeout"),
		},
		Cache:    types.CacheConfig{Capacity: v.GetInt("cache.capacity")},
		Pipeline: types.PipelineConfig{Workers: v.GetInt("pipeline.workers")},
		Refine:   types.RefineConfig{ConsistencyCheck: v.GetBool("refine.consistency_check")},
		Render: types.RenderConfig{
			Format: format,
			Image:  v.GetString("render.image"),
		},
		DocumentType: v.GetString("document_type"),
		OutputDir:    v.GetString("output_dir"),
	}

	if cfg.AI.Provider == "" {
		p, err := backend.InferProvider(cfg.AI.Model)
		if err != nil {
			return types.GenerationConfig{}, err
		}
		cfg.AI.Provider = p
	}
	cfg.AI.APIKey = secrets.APIKey(cfg.AI.Provider, loaded)
	return cfg, nil
}
