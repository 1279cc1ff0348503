// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/pdiddy/documint/pkg/types"
)

// GeminiBackend generates text through the Gemini API.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiBackend creates a genai client for the Gemini API backend.
// baseURL overrides the API host; empty uses the default.
func NewGeminiBackend(ctx context.Context, apiKey, model, baseURL string, httpClient *http.Client) (*GeminiBackend, error) {
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiBackend{client: client, model: model}, nil
}

// Name identifies the backend in cache keys.
func (g *GeminiBackend) Name() string { return string(types.ProviderGemini) + "/" + g.model }

// Generate sends prompt as a single text content.
func (g *GeminiBackend) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", &Error{Provider: types.ProviderGemini, StatusCode: apiStatus(err), Err: err}
	}
	text := resp.Text()
	if text == "" {
		return "", &Error{Provider: types.ProviderGemini, Err: errors.New("empty reply")}
	}
	return text, nil
}

func apiStatus(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}
