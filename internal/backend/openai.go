// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/documint/internal/httputil"
	"github.com/pdiddy/documint/pkg/types"
)

const openAIDefaultEndpoint = "https://api.openai.com/v1/chat/completions"

// OpenAIBackend calls an OpenAI-compatible chat completions endpoint.
type OpenAIBackend struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

type openAIChatRequest struct {
	Model       string              `json:"model"`
	Messages    []openAIChatMessage `json:"messages"`
	Temperature float64             `json:"temperature,omitempty"`
}

type openAIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message openAIChatMessage `json:"message"`
	} `json:"choices"`
}

// NewOpenAIBackend returns a backend for model. baseURL may name a
// gateway root ("https://host", "https://host/v1") or the full
// chat/completions URL; empty means api.openai.com.
func NewOpenAIBackend(apiKey, model, baseURL string, client *http.Client) *OpenAIBackend {
	endpoint := strings.TrimSpace(baseURL)
	if endpoint == "" {
		endpoint = openAIDefaultEndpoint
	} else {
		endpoint = strings.TrimRight(endpoint, "/")
		if !strings.HasSuffix(endpoint, "/chat/completions") {
			if strings.HasSuffix(endpoint, "/v1") {
				endpoint += "/chat/completions"
			} else {
				endpoint += "/v1/chat/completions"
			}
		}
	}
	return &OpenAIBackend{apiKey: apiKey, model: model, endpoint: endpoint, client: client}
}

// Name identifies the backend in cache keys.
func (o *OpenAIBackend) Name() string { return string(types.ProviderOpenAI) + "/" + o.model }

// Generate sends prompt as a single user message and returns the first
// choice's content.
func (o *OpenAIBackend) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(openAIChatRequest{
		Model:       o.model,
		Messages:    []openAIChatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.3,
	})
	if err != nil {
		return "", o.fail(0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", o.fail(0, err)
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetry(ctx, o.client, req, transportRetries)
	if err != nil {
		return "", o.fail(0, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", o.fail(resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", o.fail(resp.StatusCode, errors.New(strings.TrimSpace(string(raw))))
	}

	var parsed openAIChatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", o.fail(resp.StatusCode, fmt.Errorf("decoding response: %w", err))
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", o.fail(resp.StatusCode, errors.New("empty completion"))
	}
	return parsed.Choices[0].Message.Content, nil
}

func (o *OpenAIBackend) fail(status int, err error) error {
	return &Error{Provider: types.ProviderOpenAI, StatusCode: status, Err: err}
}
