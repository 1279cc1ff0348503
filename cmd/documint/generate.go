// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/documint/internal/answers"
	"github.com/pdiddy/documint/internal/assemble"
	"github.com/pdiddy/documint/internal/backend"
	"github.com/pdiddy/documint/internal/generate"
	"github.com/pdiddy/documint/internal/questions"
	"github.com/pdiddy/documint/internal/render"
	"github.com/pdiddy/documint/internal/sections"
	"github.com/pdiddy/documint/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a document from a question bank, answers, and a template",
	Long: `Generate parses the question bank, generates every mapped section
concurrently, fills the skeleton, and refines the result. The Markdown
document is always written to the output directory first; --format docx,
odt, pdf, or html additionally converts it with pandoc in a container.

Answers come from exactly one source: --answers (a YAML file), --project
(the answers database), or --preload (the example answers in the question
bank).`,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.String("questions", "", "path to the annotated question bank (required)")
	f.String("template", "", "path to the template heading structure (required)")
	f.String("skeleton", "", "path to a skeleton with {{key}} placeholders (default: built from the mapping)")
	f.String("mapping", "", "path to a YAML section mapping (default: the SOW mapping)")
	f.String("answers", "", "path to a YAML answer file")
	f.String("project", "", "load answers for this project from the answers database")
	f.Bool("preload", false, "use the question bank's example answers")
	f.String("name", "", "document name (default: the project name)")
	f.String("provider", "", "backend provider: claude, openai, gemini, or ollama (default: inferred from model)")
	f.String("model", defaultModel, "model identifier")
	f.String("base-url", "", "override the provider endpoint")
	f.String("format", string(types.OutputMarkdown), "output format: markdown, text, docx, odt, pdf, or html")
	f.String("output-dir", "output", "directory for generated documents")
	f.Int("workers", 0, "concurrent section generations (0: one per section)")
	f.String("document-type", "Statement of Work (SOW)", "document type named in prompts")
	f.Bool("consistency-check", true, "run the consistency check and second refine pass")
	f.Duration("timeout", 0, "abort the run after this long (0: no limit)")
	f.Bool("strict", false, "fail when required questions have no answer")
	f.Bool("preview", false, "render the document to the terminal")

	for key, flag := range map[string]string{
		"ai.provider":              "provider",
		"ai.model":                 "model",
		"ai.base_url":              "base-url",
		"render.format":            "format",
		"output_dir":               "output-dir",
		"pipeline.workers":         "workers",
		"document_type":            "document-type",
		"refine.consistency_check": "consistency-check",
	} {
		_ = viper.BindPFlag(key, f.Lookup(flag))
	}

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	questionsPath, _ := cmd.Flags().GetString("questions")
	templatePath, _ := cmd.Flags().GetString("template")
	if questionsPath == "" || templatePath == "" {
		return fmt.Errorf("--questions and --template are required")
	}

	cfg, err := generationConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return err
	}

	bank, err := os.ReadFile(questionsPath)
	if err != nil {
		return fmt.Errorf("reading question bank: %w", err)
	}
	structure, err := sections.ParseStructureFile(templatePath)
	if err != nil {
		return err
	}

	req := generate.Request{
		QuestionBank: string(bank),
		Structure:    structure,
	}
	if p, _ := cmd.Flags().GetString("skeleton"); p != "" {
		if req.Skeleton, err = assemble.LoadSkeleton(p); err != nil {
			return err
		}
	}
	if p, _ := cmd.Flags().GetString("mapping"); p != "" {
		if req.Mapping, err = sections.LoadMapping(p); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if req.Answers, req.Project, err = resolveAnswers(ctx, cmd, req.QuestionBank); err != nil {
		return err
	}
	if name, _ := cmd.Flags().GetString("name"); name != "" {
		req.Project.Name = name
	}

	b, err := backend.New(ctx, cfg.AI)
	if err != nil {
		return err
	}

	strict, _ := cmd.Flags().GetBool("strict")
	gen := generate.New(b, generate.Options{Config: cfg, Logger: logger, Strict: strict})

	fmt.Fprintf(os.Stderr, "Generating %q with %s/%s...\n", req.Project.Name, cfg.AI.Provider, cfg.AI.Model)
	res, err := gen.Generate(ctx, req)
	if err != nil {
		return err
	}
	printWarnings(os.Stderr, res.Warnings)

	base := filepath.Join(cfg.OutputDir, fileSlug(req.Project.Name))
	mdPath := base + ".md"
	if err := writeOutput(mdPath, []byte(res.Document)); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "wrote %s\n", mdPath)

	if preview, _ := cmd.Flags().GetBool("preview"); preview {
		if err := printPreview(os.Stdout, res.Document); err != nil {
			logger.Warn("preview failed", zap.Error(err))
		}
	}

	printSummary(os.Stdout, res)

	format := cfg.Render.Format
	if format == types.OutputMarkdown {
		return nil
	}
	data, err := render.New(nil, cfg.Render).Render(ctx, res.Document, format)
	if err != nil {
		return fmt.Errorf("converting to %s (markdown kept at %s): %w", format, mdPath, err)
	}
	outPath := base + render.Extension(format)
	if err := writeOutput(outPath, data); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "wrote %s\n", outPath)
	return nil
}

// resolveAnswers loads answers from the one source selected by flags.
func resolveAnswers(ctx context.Context, cmd *cobra.Command, bank string) (types.AnswerSet, assemble.Project, error) {
	answersPath, _ := cmd.Flags().GetString("answers")
	project, _ := cmd.Flags().GetString("project")
	preload, _ := cmd.Flags().GetBool("preload")

	sources := 0
	for _, set := range []bool{answersPath != "", project != "", preload} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return nil, assemble.Project{}, fmt.Errorf("exactly one of --answers, --project, or --preload is required")
	}

	switch {
	case answersPath != "":
		f, err := answers.ReadYAML(answersPath)
		if err != nil {
			return nil, assemble.Project{}, err
		}
		return f.Answers, assemble.Project{Name: f.Project, Context: f.Context}, nil

	case project != "":
		store, err := answers.Open(viper.GetString("data_dir"))
		if err != nil {
			return nil, assemble.Project{}, err
		}
		defer store.Close()

		f, err := store.LoadFile(ctx, project)
		if err != nil {
			return nil, assemble.Project{}, err
		}
		return f.Answers, assemble.Project{Name: f.Project, Context: f.Context}, nil

	default:
		qs, err := questions.Parse(bank)
		if err != nil {
			return nil, assemble.Project{}, err
		}
		return answers.Preload(qs), assemble.Project{Name: "Preloaded Project"}, nil
	}
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// fileSlug turns a document name into a file name stem.
func fileSlug(name string) string {
	s := strings.Trim(slugInvalid.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if s == "" {
		return "document"
	}
	return s
}

func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func printWarnings(w io.Writer, warns []types.Warning) {
	for _, warn := range warns {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
}

func printSummary(w io.Writer, res *generate.Result) {
	failed := res.FailedSections()
	fmt.Fprintf(w, "\nsections: %d, failed: %d, warnings: %d, refine passes: %d (%s)\n",
		len(res.Sections), len(failed), len(res.Warnings), res.RefinePasses, res.Elapsed.Round(time.Millisecond))
	if len(failed) > 0 {
		fmt.Fprintf(w, "failed sections: %s\n", strings.Join(failed, ", "))
	}
}

func printPreview(w io.Writer, markdown string) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return err
	}
	out, err := r.Render(markdown)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
