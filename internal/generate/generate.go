// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate orchestrates one document run: parse the question
// bank, validate the section mapping, generate sections concurrently,
// assemble them into the skeleton, and refine the assembled draft.
package generate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/documint/internal/answers"
	"github.com/pdiddy/documint/internal/assemble"
	"github.com/pdiddy/documint/internal/backend"
	"github.com/pdiddy/documint/internal/cache"
	"github.com/pdiddy/documint/internal/logging"
	"github.com/pdiddy/documint/internal/pipeline"
	"github.com/pdiddy/documint/internal/questions"
	"github.com/pdiddy/documint/internal/refine"
	"github.com/pdiddy/documint/internal/sections"
	"github.com/pdiddy/documint/pkg/types"
)

// Warning is a non-fatal problem surfaced by a run.
type Warning = types.Warning

// MissingRequiredError is returned in strict mode when required
// questions have no answer.
type MissingRequiredError struct {
	IDs []int
}

func (e *MissingRequiredError) Error() string {
	return fmt.Sprintf("required questions without answers: %v", e.IDs)
}

// Request is the input to one run.
type Request struct {
	// QuestionBank is the raw annotated question text.
	QuestionBank string

	// Structure is the parsed heading structure that guides each section
	// (see sections.ParseStructure and sections.ParseStructureFile).
	Structure sections.Structure

	// Skeleton is the document skeleton with {{key}} placeholders. When
	// empty, one is built from the mapping.
	Skeleton string

	// Mapping lists the sections to generate. Nil means the default SOW mapping.
	Mapping types.SectionMapping

	Answers types.AnswerSet
	Project assemble.Project
}

// Result is the outcome of a successful run.
type Result struct {
	RunID string

	// Document is the refined final document.
	Document string

	// Draft is the assembled document before refinement.
	Draft string

	Sections  []types.SectionResult
	Questions []types.Question
	Warnings  []Warning

	// DroppedQuestions counts malformed question-bank fragments skipped by the parser.
	DroppedQuestions int

	// DroppedTemplateLines counts structure lines with no section to attach to.
	DroppedTemplateLines int

	Findings     []string
	RefinePasses int
	Elapsed      time.Duration
}

// FailedSections returns the names of sections that fell back to the
// failure placeholder.
func (r *Result) FailedSections() []string {
	var names []string
	for _, s := range r.Sections {
		if s.Failed() {
			names = append(names, s.Section)
		}
	}
	return names
}

// Options configures a Generator.
type Options struct {
	Config types.GenerationConfig

	// Cache memoizes section prompts across runs. Nil gets a fresh cache
	// sized by Config.Cache.Capacity.
	Cache *cache.Cache

	Logger *zap.Logger

	// Strict turns missing required answers into an error before any
	// backend call is made.
	Strict bool
}

// Generator runs document generation against one backend.
type Generator struct {
	backend backend.Backend
	cache   *cache.Cache
	cfg     types.GenerationConfig
	strict  bool
	logger  *zap.Logger
	newID   func() string
}

// New returns a Generator that sends every prompt to b.
func New(b backend.Backend, opts Options) *Generator {
	c := opts.Cache
	if c == nil {
		c = cache.New(opts.Config.Cache.Capacity)
	}
	return &Generator{
		backend: b,
		cache:   c,
		cfg:     opts.Config,
		strict:  opts.Strict,
		logger:  logging.OrNop(opts.Logger),
		newID:   uuid.NewString,
	}
}

// Generate produces a document for req. An unparseable question bank, a
// mapping that references unknown questions, any exhausted refinement
// call, and cancellation of ctx are fatal. Failed sections and missing
// answers are reported as warnings.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: g.newID()}
	log := g.logger.With(zap.String("run_id", res.RunID))

	report, err := questions.ParseReport(req.QuestionBank)
	if err != nil {
		return nil, fmt.Errorf("parsing question bank: %w", err)
	}
	res.Questions = report.Questions
	res.DroppedQuestions = report.Dropped
	if report.Dropped > 0 {
		log.Warn("dropped malformed question blocks", zap.Int("dropped", report.Dropped))
		res.Warnings = append(res.Warnings, Warning{
			Kind:    types.WarnDroppedBlocks,
			Message: fmt.Sprintf("%d malformed question-bank fragments dropped", report.Dropped),
		})
	}

	mapping := req.Mapping
	if mapping == nil {
		mapping = sections.DefaultSOW()
	}
	if err := sections.Validate(mapping, report.Questions); err != nil {
		return nil, fmt.Errorf("validating section mapping: %w", err)
	}

	structure := req.Structure
	res.DroppedTemplateLines = structure.Dropped
	if structure.Dropped > 0 {
		log.Warn("dropped template lines outside any section", zap.Int("dropped", structure.Dropped))
		res.Warnings = append(res.Warnings, Warning{
			Kind:    types.WarnDroppedBlocks,
			Message: fmt.Sprintf("%d template lines outside any section dropped", structure.Dropped),
		})
	}

	missing := answers.MissingRequired(report.Questions, req.Answers)
	if len(missing) > 0 {
		ids := make([]int, len(missing))
		for i, q := range missing {
			ids[i] = q.ID
			res.Warnings = append(res.Warnings, Warning{
				Kind:       types.WarnMissingRequired,
				QuestionID: q.ID,
				Message:    fmt.Sprintf("required question %d has no answer", q.ID),
			})
		}
		if g.strict {
			return nil, &MissingRequiredError{IDs: ids}
		}
	}

	preq := pipeline.Request{
		Mapping:      mapping,
		Questions:    report.Questions,
		Answers:      req.Answers,
		Structure:    structure,
		Hints:        types.HintSet(report.Questions),
		DocumentType: g.cfg.DocumentType,
	}
	res.Warnings = append(res.Warnings, pipeline.Warnings(preq)...)

	policy := cache.Policy{
		MaxAttempts:  g.cfg.AI.MaxRetries,
		InitialDelay: g.cfg.AI.InitialDelay,
	}

	log.Info("generating sections",
		zap.Int("sections", len(mapping)),
		zap.Int("questions", len(report.Questions)),
	)
	p := pipeline.New(g.backend, g.cache, g.cfg.Pipeline, policy, log)
	results, err := p.Run(ctx, preq)
	if err != nil {
		return nil, fmt.Errorf("generating sections: %w", err)
	}
	res.Sections = results
	for _, r := range results {
		if r.Failed() {
			res.Warnings = append(res.Warnings, Warning{
				Kind:    types.WarnSectionFailed,
				Section: r.Section,
				Message: fmt.Sprintf("failed after %d attempts: %s", r.Attempts, r.Error),
			})
		}
	}

	names := mapping.Names()
	skeleton := req.Skeleton
	if skeleton == "" {
		skeleton = assemble.DefaultSkeleton(names)
	}
	contents := assemble.Contents(results)
	if unfilled := assemble.Unfilled(skeleton, assemble.Data(names, contents, req.Project)); len(unfilled) > 0 {
		log.Warn("skeleton placeholders left unfilled", zap.Strings("keys", unfilled))
	}
	res.Draft = assemble.Assemble(skeleton, names, contents, req.Project)

	refiner := refine.New(g.backend, refine.Options{
		DocumentType:     g.cfg.DocumentType,
		ConsistencyCheck: g.cfg.Refine.ConsistencyCheck,
		Policy:           policy,
		Logger:           log,
	})
	outcome, err := refiner.Refine(ctx, res.Draft)
	if err != nil {
		var se *refine.StageError
		if errors.As(err, &se) {
			log.Error("refinement failed", zap.String("stage", se.Stage), zap.Int("attempts", se.Attempts), zap.Error(se.Err))
		}
		return nil, fmt.Errorf("refining document: %w", err)
	}
	res.Document = outcome.Document
	res.Findings = outcome.Findings
	res.RefinePasses = outcome.Passes
	res.Elapsed = time.Since(start)

	log.Info("document generated",
		zap.Int("failed_sections", len(res.FailedSections())),
		zap.Int("warnings", len(res.Warnings)),
		zap.Int("refine_passes", res.RefinePasses),
		zap.Duration("elapsed", res.Elapsed),
	)
	return res, nil
}
