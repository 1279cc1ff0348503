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

// claudeAPIURL is the Claude Messages endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// ClaudeBackend calls the Claude Messages API.
type ClaudeBackend struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *http.Client
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Name identifies the backend in cache keys.
func (c *ClaudeBackend) Name() string { return string(types.ProviderClaude) + "/" + c.Model }

// Generate sends prompt as a single user message and returns the
// concatenated text blocks of the reply.
func (c *ClaudeBackend) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(claudeRequest{
		Model:     c.Model,
		MaxTokens: defaultMaxTokens,
		Messages:  []claudeMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", c.fail(0, fmt.Errorf("marshaling request: %w", err))
	}

	endpoint := claudeAPIURL
	if c.BaseURL != "" {
		endpoint = strings.TrimRight(c.BaseURL, "/") + "/v1/messages"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", c.fail(0, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, transportRetries)
	if err != nil {
		return "", c.fail(0, fmt.Errorf("calling Claude API: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", c.fail(resp.StatusCode, errors.New(strings.TrimSpace(string(raw))))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", c.fail(resp.StatusCode, fmt.Errorf("decoding response: %w", err))
	}

	var sb strings.Builder
	for _, block := range cResp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", c.fail(resp.StatusCode, errors.New("no text content in response"))
	}
	return sb.String(), nil
}

func (c *ClaudeBackend) fail(status int, err error) error {
	return &Error{Provider: types.ProviderClaude, StatusCode: status, Err: err}
}
