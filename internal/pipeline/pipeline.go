// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline generates document sections concurrently. Each
// section becomes one task on a bounded worker pool; every task calls the
// backend through the retrying cache and writes its result into the slot
// paired with its section, so output order always equals input order.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/documint/internal/backend"
	"github.com/pdiddy/documint/internal/cache"
	"github.com/pdiddy/documint/internal/sections"
	"github.com/pdiddy/documint/pkg/types"
)

// FailedContent replaces the body of a section whose generation failed.
const FailedContent = "Error generating this section."

const defaultDocumentType = "Statement of Work (SOW)"

// Request is the input to one pipeline run.
type Request struct {
	// Mapping lists the sections to generate, in document order.
	Mapping types.SectionMapping

	Questions []types.Question
	Answers   types.AnswerSet
	Structure sections.Structure

	// Hints are the example answers shown beside each question, keyed by
	// question ID. Nil means the questions' own model hints.
	Hints map[int]string

	// DocumentType names the document in prompts (default "Statement of Work (SOW)").
	DocumentType string
}

func (r Request) documentType() string {
	if r.DocumentType == "" {
		return defaultDocumentType
	}
	return r.DocumentType
}

// Pipeline fans section generation out over a worker pool.
type Pipeline struct {
	backend backend.Backend
	cache   *cache.Cache
	policy  cache.Policy
	workers int
	logger  *zap.Logger
}

// New returns a pipeline that sends prompts to b through c. A nil cache
// gets a default-capacity one. cfg.Workers <= 0 means one worker per
// section.
func New(b backend.Backend, c *cache.Cache, cfg types.PipelineConfig, policy cache.Policy, logger *zap.Logger) *Pipeline {
	if c == nil {
		c = cache.New(cache.DefaultCapacity)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		backend: b,
		cache:   c,
		policy:  policy,
		workers: cfg.Workers,
		logger:  logger,
	}
}

// Run generates every section of req.Mapping and returns one result per
// section in mapping order. A section whose backend calls are exhausted
// is marked failed with FailedContent; its siblings are unaffected. Run
// blocks until every task has finished. When ctx is cancelled the
// unfinished sections fail and Run returns the results with ctx.Err().
func (p *Pipeline) Run(ctx context.Context, req Request) ([]types.SectionResult, error) {
	results := make([]types.SectionResult, len(req.Mapping))

	workers := p.workers
	if workers <= 0 {
		workers = len(req.Mapping)
	}

	var g errgroup.Group
	g.SetLimit(max(workers, 1))

	for i, sec := range req.Mapping {
		g.Go(func() error {
			results[i] = p.generate(ctx, req, sec)
			return nil
		})
	}
	_ = g.Wait()

	return results, ctx.Err()
}

// generate produces the result for one section. It never returns an
// error; failures are recorded in the result.
func (p *Pipeline) generate(ctx context.Context, req Request, sec types.MappedSection) types.SectionResult {
	log := p.logger.With(zap.String("section", sec.Name))

	if err := ctx.Err(); err != nil {
		return failed(sec.Name, 0, err)
	}

	prompt, err := RenderPrompt(req, sec)
	if err != nil {
		log.Error("rendering prompt", zap.Error(err))
		return failed(sec.Name, 0, fmt.Errorf("rendering prompt: %w", err))
	}

	policy := p.policy
	policy.OnRetry = func(attempt int, err error, delay time.Duration) {
		log.Warn("section generation failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))
	}

	attempts := 0
	start := time.Now()
	out, err := p.cache.Call(ctx, p.key(prompt), policy, func(ctx context.Context) (string, error) {
		attempts++
		return p.backend.Generate(ctx, prompt)
	})
	if err != nil {
		var rerr *cache.RetryError
		if errors.As(err, &rerr) {
			attempts = rerr.Attempts
		}
		log.Error("section generation failed", zap.Int("attempts", attempts), zap.Error(err))
		return failed(sec.Name, attempts, err)
	}

	log.Debug("section generated",
		zap.Int("attempts", attempts),
		zap.Duration("elapsed", time.Since(start)))

	return types.SectionResult{
		Section:  sec.Name,
		Content:  Clean(out),
		Status:   types.SectionOK,
		Attempts: attempts,
	}
}

// key identifies a prompt for one backend and model.
func (p *Pipeline) key(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return backendName(p.backend) + "/" + hex.EncodeToString(sum[:])
}

func backendName(b backend.Backend) string {
	if n, ok := b.(backend.Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", b)
}

func failed(section string, attempts int, err error) types.SectionResult {
	return types.SectionResult{
		Section:  section,
		Content:  FailedContent,
		Status:   types.SectionFailed,
		Error:    err.Error(),
		Attempts: attempts,
	}
}

// Warnings reports non-fatal gaps in req: sections without template
// guidance and mapped questions whose answer is empty.
func Warnings(req Request) []types.Warning {
	known := make(map[int]bool, len(req.Questions))
	for _, q := range req.Questions {
		known[q.ID] = true
	}

	var warns []types.Warning
	for _, sec := range req.Mapping {
		if _, ok := req.Structure.Lookup(sec.Name); !ok {
			warns = append(warns, types.Warning{
				Kind:    types.WarnMissingStructure,
				Section: sec.Name,
				Message: "template has no matching section; generating without structure guidance",
			})
		}
		for _, id := range sec.QuestionIDs {
			if !known[id] || req.Answers.Get(id) != "" {
				continue
			}
			warns = append(warns, types.Warning{
				Kind:       types.WarnMissingAnswer,
				Section:    sec.Name,
				QuestionID: id,
				Message:    fmt.Sprintf("question %d has no answer", id),
			})
		}
	}
	return warns
}
