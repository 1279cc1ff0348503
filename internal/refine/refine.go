// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package refine polishes an assembled document. A refine pass rewrites
// the whole draft for consistency and presentation; an optional
// consistency check reviews the result, and any findings feed a second
// refine pass.
package refine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/documint/internal/backend"
	"github.com/pdiddy/documint/internal/cache"
)

// NoIssues is the reply the consistency check gives for a clean document.
const NoIssues = "NO_ISSUES"

// Stage names used in StageError.
const (
	StageRefine   = "refine"
	StageCheck    = "consistency-check"
	StageReRefine = "re-refine"
)

// StageError reports a refinement call that exhausted its retries.
type StageError struct {
	Stage    string
	Attempts int
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Stage, e.Attempts, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

var refinePromptTmpl = template.Must(template.New("refine").Parse(`You are a senior contract specialist and technical writer specializing in {{.DocumentType}} documents.
Refine and polish the draft below to meet professional procurement standards:
1. Keep style, tone, and terminology consistent throughout.
2. Remove redundant or duplicated information.
3. Keep every section heading and the section order exactly as given.
4. Keep the table of contents accurate for the headings present.
5. Make objectives, deliverables, timelines, roles, and responsibilities unambiguous.
6. Add transition sentences between sections where the flow is abrupt.
7. Correct grammar, punctuation, and spelling.
8. Do not invent facts that are not in the draft; keep placeholder text where information is missing.
{{- if .Findings}}

Address each of these review findings:
{{- range .Findings}}
- {{.}}
{{- end}}
{{- end}}

Return only the refined document in Markdown.

Draft:
{{.Document}}
`))

var checkPromptTmpl = template.Must(template.New("check").Parse(`You are a {{.DocumentType}} consistency reviewer. Review the document below for:
1. Consistent terminology and phrasing.
2. Alignment between objectives, scope, deliverables, and schedule.
3. Logical flow and structure.

List each inconsistency or area for improvement on its own line starting with "- ".
If there are none, reply with exactly ` + NoIssues + `.

Document:
{{.Document}}
`))

type promptData struct {
	DocumentType string
	Document     string
	Findings     []string
}

// Outcome is the result of a refinement run.
type Outcome struct {
	// Document is the final refined text.
	Document string

	// Findings lists the consistency check findings that drove the
	// second pass. Empty when the check found nothing or did not run.
	Findings []string

	// Passes is the number of refine passes applied (1 or 2).
	Passes int
}

// Options configures a Refiner.
type Options struct {
	DocumentType     string
	ConsistencyCheck bool
	Policy           cache.Policy
	Logger           *zap.Logger
}

// Refiner runs the refine, check, and re-refine passes against a backend.
type Refiner struct {
	backend backend.Backend
	opts    Options
	logger  *zap.Logger
}

// New returns a Refiner that sends its prompts to b.
func New(b backend.Backend, opts Options) *Refiner {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.DocumentType == "" {
		opts.DocumentType = "Statement of Work (SOW)"
	}
	return &Refiner{backend: b, opts: opts, logger: logger}
}

// Refine polishes raw. Any pass that exhausts its retries (refine,
// consistency check, or re-refine) is fatal and returned as *StageError.
func (r *Refiner) Refine(ctx context.Context, raw string) (Outcome, error) {
	refined, err := r.call(ctx, StageRefine, refinePromptTmpl, promptData{Document: raw})
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{Document: refined, Passes: 1}

	if !r.opts.ConsistencyCheck {
		return out, nil
	}

	reply, err := r.call(ctx, StageCheck, checkPromptTmpl, promptData{Document: refined})
	if err != nil {
		return Outcome{}, err
	}

	findings := ParseFindings(reply)
	if len(findings) == 0 {
		r.logger.Debug("consistency check found no issues")
		return out, nil
	}
	r.logger.Info("consistency check findings", zap.Int("count", len(findings)))

	final, err := r.call(ctx, StageReRefine, refinePromptTmpl, promptData{Document: refined, Findings: findings})
	if err != nil {
		return Outcome{}, err
	}
	out.Document = final
	out.Findings = findings
	out.Passes = 2
	return out, nil
}

func (r *Refiner) call(ctx context.Context, stage string, tmpl *template.Template, data promptData) (string, error) {
	data.DocumentType = r.opts.DocumentType

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", &StageError{Stage: stage, Err: fmt.Errorf("rendering prompt: %w", err)}
	}
	prompt := buf.String()

	policy := r.opts.Policy
	policy.OnRetry = func(attempt int, err error, delay time.Duration) {
		r.logger.Warn("refinement call failed, retrying",
			zap.String("stage", stage),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))
	}

	attempts := 0
	out, err := cache.Retry(ctx, policy, func(ctx context.Context) (string, error) {
		attempts++
		return r.backend.Generate(ctx, prompt)
	})
	if err != nil {
		var rerr *cache.RetryError
		if errors.As(err, &rerr) {
			attempts = rerr.Attempts
		}
		return "", &StageError{Stage: stage, Attempts: attempts, Err: err}
	}
	return strings.TrimSpace(out), nil
}

var listMarker = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s*`)

// ParseFindings splits a consistency check reply into findings. An empty
// reply or one that reports NoIssues yields none.
func ParseFindings(reply string) []string {
	reply = strings.TrimSpace(reply)
	if reply == "" || strings.EqualFold(strings.Trim(reply, ".` *"), NoIssues) {
		return nil
	}

	var findings []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(listMarker.ReplaceAllString(strings.TrimSpace(line), ""))
		if line == "" || strings.EqualFold(line, NoIssues) {
			continue
		}
		findings = append(findings, line)
	}
	return findings
}
