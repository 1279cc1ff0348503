// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads provider API keys from a directory of plain-text
// files. Each file is one secret: the filename is the key name and the
// trimmed contents are the value.
//
// Recognized key files: anthropic-api-key, openai-api-key, gemini-api-key.
package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/documint/pkg/types"
)

// keyFiles maps providers to their secret file and environment variable.
var keyFiles = map[types.Provider]struct{ file, env string }{
	types.ProviderClaude: {file: "anthropic-api-key", env: "ANTHROPIC_API_KEY"},
	types.ProviderOpenAI: {file: "openai-api-key", env: "OPENAI_API_KEY"},
	types.ProviderGemini: {file: "gemini-api-key", env: "GEMINI_API_KEY"},
}

// Load reads every non-hidden file in dir. A missing directory yields an
// empty map. Unreadable files are reported to warn and skipped.
func Load(dir string, warn io.Writer) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	out := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			if warn != nil {
				fmt.Fprintf(warn, "warning: could not read secret %s: %v\n", name, err)
			}
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			out[name] = value
		}
	}
	return out, nil
}

// APIKey returns the key for provider: the secret file value when
// present, otherwise the provider's environment variable. Ollama needs no
// key and always yields "".
func APIKey(provider types.Provider, loaded map[string]string) string {
	k, ok := keyFiles[provider]
	if !ok {
		return ""
	}
	if v := loaded[k.file]; v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv(k.env))
}
