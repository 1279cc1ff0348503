// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/documint/internal/httputil"
	"github.com/pdiddy/documint/pkg/types"
)

func TestMain(m *testing.M) {
	httputil.RetryBaseDelay = time.Millisecond
	os.Exit(m.Run())
}

func TestInferProvider(t *testing.T) {
	tests := []struct {
		model   string
		want    types.Provider
		wantErr bool
	}{
		{model: "claude-3-5-sonnet-20240620", want: types.ProviderClaude},
		{model: "gpt-4o", want: types.ProviderOpenAI},
		{model: "o3-mini", want: types.ProviderOpenAI},
		{model: "gemini-2.5-flash", want: types.ProviderGemini},
		{model: "llama3", want: types.ProviderOllama},
		{model: " Mistral-7B ", want: types.ProviderOllama},
		{model: "davinci", wantErr: true},
		{model: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			got, err := InferProvider(tt.model)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	b, err := New(ctx, types.AIConfig{Model: "claude-sonnet-4-5", APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &ClaudeBackend{}, b)

	b, err = New(ctx, types.AIConfig{Model: "llama3"})
	require.NoError(t, err)
	assert.Equal(t, "ollama/llama3", b.(Named).Name())

	b, err = New(ctx, types.AIConfig{Provider: types.ProviderOpenAI, Model: "my-gateway-model", APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIBackend{}, b)

	_, err = New(ctx, types.AIConfig{Model: "gpt-4o"})
	assert.ErrorContains(t, err, "API key is required")

	_, err = New(ctx, types.AIConfig{Provider: types.ProviderClaude})
	assert.ErrorContains(t, err, "model is required")

	_, err = New(ctx, types.AIConfig{Provider: "bard", Model: "x"})
	assert.ErrorContains(t, err, "unknown provider")
}

func TestErrorFormatting(t *testing.T) {
	err := &Error{Provider: types.ProviderClaude, StatusCode: 529, Err: errors.New("overloaded")}
	assert.Equal(t, "claude: status 529: overloaded", err.Error())

	inner := errors.New("dial tcp: refused")
	err = &Error{Provider: types.ProviderOllama, Err: inner}
	assert.Equal(t, "ollama: dial tcp: refused", err.Error())
	assert.ErrorIs(t, err, inner)
}

func TestClaudeGenerate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var req claudeRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-test", req.Model)
		if assert.Len(t, req.Messages, 1) {
			assert.Equal(t, "write the background", req.Messages[0].Content)
		}

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"content":[{"type":"text","text":"The agency "},{"type":"tool_use"},{"type":"text","text":"needs support."}]}`)
	}))
	defer ts.Close()

	c := &ClaudeBackend{APIKey: "secret", Model: "claude-test", BaseURL: ts.URL, Client: ts.Client()}
	out, err := c.Generate(context.Background(), "write the background")
	require.NoError(t, err)
	assert.Equal(t, "The agency needs support.", out)
	assert.Equal(t, "claude/claude-test", c.Name())
}

func TestClaudeGenerateErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{name: "bad request", status: 400, body: `{"error":"bad"}`, wantStatus: 400, wantMsg: "bad"},
		{name: "throttled", status: 429, body: "slow down", wantStatus: 429, wantMsg: "slow down"},
		{name: "no text", status: 200, body: `{"content":[]}`, wantStatus: 200, wantMsg: "no text content"},
		{name: "bad json", status: 200, body: `{`, wantStatus: 200, wantMsg: "decoding response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer ts.Close()

			c := &ClaudeBackend{APIKey: "k", Model: "m", BaseURL: ts.URL, Client: ts.Client()}
			_, err := c.Generate(context.Background(), "p")

			var berr *Error
			require.True(t, errors.As(err, &berr))
			assert.Equal(t, types.ProviderClaude, berr.Provider)
			assert.Equal(t, tt.wantStatus, berr.StatusCode)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestClaudeTransportRetry(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"prompt text"`)
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, `{"content":[{"type":"text","text":"ok"}]}`)
	}))
	defer ts.Close()

	c := &ClaudeBackend{APIKey: "k", Model: "m", BaseURL: ts.URL, Client: ts.Client()}
	out, err := c.Generate(context.Background(), "prompt text")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestNewOpenAIBackendEndpoint(t *testing.T) {
	tests := []struct {
		baseURL string
		want    string
	}{
		{baseURL: "", want: openAIDefaultEndpoint},
		{baseURL: "https://gw.example.com", want: "https://gw.example.com/v1/chat/completions"},
		{baseURL: "https://gw.example.com/v1/", want: "https://gw.example.com/v1/chat/completions"},
		{baseURL: "https://gw.example.com/v1/chat/completions", want: "https://gw.example.com/v1/chat/completions"},
	}
	for _, tt := range tests {
		t.Run(tt.baseURL, func(t *testing.T) {
			assert.Equal(t, tt.want, NewOpenAIBackend("k", "gpt-4o", tt.baseURL, nil).endpoint)
		})
	}
}

func TestOpenAIGenerate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req openAIChatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o", req.Model)
		if assert.Len(t, req.Messages, 1) {
			assert.Equal(t, "user", req.Messages[0].Role)
		}

		io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"Scope text"}}]}`)
	}))
	defer ts.Close()

	o := NewOpenAIBackend("sk-test", "gpt-4o", ts.URL, ts.Client())
	out, err := o.Generate(context.Background(), "scope")
	require.NoError(t, err)
	assert.Equal(t, "Scope text", out)
}

func TestOpenAIGenerateEmpty(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"choices":[]}`)
	}))
	defer ts.Close()

	_, err := NewOpenAIBackend("k", "gpt-4o", ts.URL, ts.Client()).Generate(context.Background(), "p")
	var berr *Error
	require.True(t, errors.As(err, &berr))
	assert.Equal(t, types.ProviderOpenAI, berr.Provider)
	assert.Contains(t, err.Error(), "empty completion")
}

func TestOllamaGenerate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req ollamaChatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		assert.Equal(t, "llama3", req.Model)

		io.WriteString(w, `{"message":{"role":"assistant","content":"Deliverables text"},"done":true}`)
	}))
	defer ts.Close()

	o := NewOllamaBackend("llama3", ts.URL+"/", ts.Client())
	out, err := o.Generate(context.Background(), "deliverables")
	require.NoError(t, err)
	assert.Equal(t, "Deliverables text", out)
}

func TestOllamaGenerateModelMissing(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":"model 'llama9' not found"}`)
	}))
	defer ts.Close()

	_, err := NewOllamaBackend("llama9", ts.URL, ts.Client()).Generate(context.Background(), "p")
	var berr *Error
	require.True(t, errors.As(err, &berr))
	assert.Equal(t, http.StatusNotFound, berr.StatusCode)
	assert.Contains(t, err.Error(), "not found")
}

func TestGeminiGenerate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-test:generateContent"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Period of performance text"}]}}]}`)
	}))
	defer ts.Close()

	g, err := NewGeminiBackend(context.Background(), "test-key", "gemini-test", ts.URL, ts.Client())
	require.NoError(t, err)

	out, err := g.Generate(context.Background(), "period")
	require.NoError(t, err)
	assert.Equal(t, "Period of performance text", out)
}

func TestGeminiGenerateAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, `{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`)
	}))
	defer ts.Close()

	g, err := NewGeminiBackend(context.Background(), "test-key", "gemini-test", ts.URL, ts.Client())
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), "p")
	var berr *Error
	require.True(t, errors.As(err, &berr))
	assert.Equal(t, types.ProviderGemini, berr.Provider)
	assert.Equal(t, http.StatusServiceUnavailable, berr.StatusCode)
}
