// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns a finished Markdown document into the requested
// output format. Markdown and plain text pass through; binary and HTML
// formats are produced by pandoc running in a container.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pdiddy/documint/internal/container"
	"github.com/pdiddy/documint/pkg/types"
)

const (
	imagePandoc      = "pandoc/core:latest"
	imagePandocLaTeX = "pandoc/latex:latest"
)

// pandocWriters maps output formats to pandoc writer names.
var pandocWriters = map[types.OutputFormat]string{
	types.OutputDocx: "docx",
	types.OutputODT:  "odt",
	types.OutputPDF:  "pdf",
	types.OutputHTML: "html5",
}

var extensions = map[types.OutputFormat]string{
	types.OutputMarkdown: ".md",
	types.OutputText:     ".txt",
	types.OutputDocx:     ".docx",
	types.OutputODT:      ".odt",
	types.OutputPDF:      ".pdf",
	types.OutputHTML:     ".html",
}

// ParseFormat validates a format name. Empty means markdown; "md" and
// "txt" are accepted as aliases.
func ParseFormat(s string) (types.OutputFormat, error) {
	switch f := types.OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", "md":
		return types.OutputMarkdown, nil
	case "txt":
		return types.OutputText, nil
	default:
		if _, ok := extensions[f]; ok {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported output format %q (want markdown, text, docx, odt, pdf, or html)", s)
}

// Extension returns the file extension for format, including the dot.
func Extension(format types.OutputFormat) string {
	if ext, ok := extensions[format]; ok {
		return ext
	}
	return ".md"
}

// NeedsContainer reports whether format requires the pandoc container.
func NeedsContainer(format types.OutputFormat) bool {
	_, ok := pandocWriters[format]
	return ok
}

// Renderer converts Markdown to an output format. The container runtime
// is detected on first use, so passthrough formats never require one.
type Renderer struct {
	image string

	once    sync.Once
	runtime container.Runtime
	rtErr   error
	detect  func(context.Context) (container.Runtime, error)
}

// New returns a Renderer. A nil rt is detected when first needed.
// cfg.Image overrides the pandoc image.
func New(rt container.Runtime, cfg types.RenderConfig) *Renderer {
	return &Renderer{image: cfg.Image, runtime: rt, detect: container.DetectRuntime}
}

// Render returns markdown converted to format. Conversion failures leave
// the caller's markdown untouched; callers write the .md first.
func (r *Renderer) Render(ctx context.Context, markdown string, format types.OutputFormat) ([]byte, error) {
	if format == "" || format == types.OutputMarkdown || format == types.OutputText {
		return []byte(markdown), nil
	}
	writer, ok := pandocWriters[format]
	if !ok {
		return nil, fmt.Errorf("unsupported output format %q", format)
	}

	rt, err := r.containerRuntime(ctx)
	if err != nil {
		return nil, err
	}

	image := r.imageFor(format)
	if err := container.EnsureImage(ctx, rt, image); err != nil {
		return nil, fmt.Errorf("preparing converter: %w", err)
	}

	args := []string{"-f", "markdown", "-t", writer, "--standalone", "-o", "-"}
	if format == types.OutputPDF {
		args = append(args, "--pdf-engine=xelatex")
	}

	var out bytes.Buffer
	if err := rt.Run(ctx, image, args, strings.NewReader(markdown), &out); err != nil {
		return nil, fmt.Errorf("converting to %s: %w", format, err)
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("converter produced empty %s output", format)
	}
	return out.Bytes(), nil
}

func (r *Renderer) imageFor(format types.OutputFormat) string {
	if r.image != "" {
		return r.image
	}
	if format == types.OutputPDF {
		return imagePandocLaTeX
	}
	return imagePandoc
}

func (r *Renderer) containerRuntime(ctx context.Context) (container.Runtime, error) {
	r.once.Do(func() {
		if r.runtime == nil {
			r.runtime, r.rtErr = r.detect(ctx)
		}
	})
	return r.runtime, r.rtErr
}
