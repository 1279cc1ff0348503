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

const ollamaDefaultBaseURL = "http://localhost:11434"

// OllamaBackend calls a local or remote Ollama server's chat endpoint.
type OllamaBackend struct {
	model    string
	endpoint string
	client   *http.Client
}

type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []openAIChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
}

type ollamaChatResponse struct {
	Message openAIChatMessage `json:"message"`
	Error   string            `json:"error,omitempty"`
}

// NewOllamaBackend returns a backend for model served at baseURL
// (default http://localhost:11434).
func NewOllamaBackend(model, baseURL string, client *http.Client) *OllamaBackend {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = ollamaDefaultBaseURL
	}
	return &OllamaBackend{
		model:    model,
		endpoint: strings.TrimRight(baseURL, "/") + "/api/chat",
		client:   client,
	}
}

// Name identifies the backend in cache keys.
func (o *OllamaBackend) Name() string { return string(types.ProviderOllama) + "/" + o.model }

// Generate sends prompt as a single non-streaming chat turn.
func (o *OllamaBackend) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ollamaChatRequest{
		Model:    o.model,
		Messages: []openAIChatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", o.fail(0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", o.fail(0, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetry(ctx, o.client, req, transportRetries)
	if err != nil {
		return "", o.fail(0, fmt.Errorf("calling ollama at %s: %w", o.endpoint, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", o.fail(resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", o.fail(resp.StatusCode, errors.New(strings.TrimSpace(string(raw))))
	}

	var parsed ollamaChatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", o.fail(resp.StatusCode, fmt.Errorf("decoding response: %w", err))
	}
	if parsed.Error != "" {
		return "", o.fail(resp.StatusCode, errors.New(parsed.Error))
	}
	if strings.TrimSpace(parsed.Message.Content) == "" {
		return "", o.fail(resp.StatusCode, errors.New("empty reply"))
	}
	return parsed.Message.Content, nil
}

func (o *OllamaBackend) fail(status int, err error) error {
	return &Error{Provider: types.ProviderOllama, StatusCode: status, Err: err}
}
