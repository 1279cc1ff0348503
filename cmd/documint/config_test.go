// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/documint/internal/answers"
	"github.com/pdiddy/documint/internal/pipeline"
	"github.com/pdiddy/documint/internal/questions"
	"github.com/pdiddy/documint/internal/sections"
	"github.com/pdiddy/documint/pkg/types"
)

func TestGenerationConfigDefaults(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	v := viper.New()
	setDefaults(v)

	cfg, err := generationConfig(v, map[string]string{"anthropic-api-key": "sk-file"})
	require.NoError(t, err)

	assert.Equal(t, types.ProviderClaude, cfg.AI.Provider)
	assert.Equal(t, defaultModel, cfg.AI.Model)
	assert.Equal(t, "sk-file", cfg.AI.APIKey)
	assert.Equal(t, 5, cfg.AI.MaxRetries)
	assert.Equal(t, time.Second, cfg.AI.InitialDelay)
	assert.Equal(t, 100, cfg.Cache.Capacity)
	assert.True(t, cfg.Refine.ConsistencyCheck)
	assert.Equal(t, types.OutputMarkdown, cfg.Render.Format)
	assert.Equal(t, "output", cfg.OutputDir)
}

func TestGenerationConfigOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	v := viper.New()
	setDefaults(v)
	v.Set("ai.model", "gpt-4o")
	v.Set("render.format", "docx")
	v.Set("pipeline.workers", 3)

	cfg, err := generationConfig(v, nil)
	require.NoError(t, err)
	assert.Equal(t, types.ProviderOpenAI, cfg.AI.Provider)
	assert.Equal(t, "sk-env", cfg.AI.APIKey)
	assert.Equal(t, types.OutputDocx, cfg.Render.Format)
	assert.Equal(t, 3, cfg.Pipeline.Workers)
}

func TestGenerationConfigErrors(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("render.format", "rtf")
	_, err := generationConfig(v, nil)
	assert.ErrorContains(t, err, "unsupported output format")

	v = viper.New()
	setDefaults(v)
	v.Set("ai.model", "mystery-model")
	_, err = generationConfig(v, nil)
	assert.ErrorContains(t, err, "unsupported model")
}

func TestFileSlug(t *testing.T) {
	tests := map[string]string{
		"Apollo Modernization":     "apollo-modernization",
		"  NASA / JPL: Phase II  ": "nasa-jpl-phase-ii",
		"":                         "document",
		"---":                      "document",
	}
	for in, want := range tests {
		assert.Equal(t, want, fileSlug(in), in)
	}
}

func TestPrintQuestions(t *testing.T) {
	report, err := questions.ParseReport("1. Name the project?\n@Required\n2. Any background?\n@Optional\nstray @Optional")
	require.NoError(t, err)

	var buf bytes.Buffer
	printQuestions(&buf, report)
	out := buf.String()
	assert.Contains(t, out, "1     *    Name the project?")
	assert.Contains(t, out, "2          Any background?")
	assert.Contains(t, out, "2 questions (1 required), 1 dropped")
}

func TestSampleTemplatesAreConsistent(t *testing.T) {
	report, err := questions.ParseFile("../../templates/questions.txt")
	require.NoError(t, err)
	assert.Len(t, report.Questions, 5)
	assert.Zero(t, report.Dropped)

	mapping, err := sections.LoadMapping("../../templates/mapping.yaml")
	require.NoError(t, err)
	require.NoError(t, sections.Validate(mapping, report.Questions))

	structure, err := sections.ParseStructureFile("../../templates/structure.md")
	require.NoError(t, err)
	assert.Zero(t, structure.Dropped)

	preloaded := answers.Preload(report.Questions)
	assert.Empty(t, answers.MissingRequired(report.Questions, preloaded))
	assert.Empty(t, pipeline.Warnings(pipeline.Request{
		Mapping:   mapping,
		Questions: report.Questions,
		Answers:   preloaded,
		Structure: structure,
	}), "every mapped section has structure and every answer is preloaded")
}
