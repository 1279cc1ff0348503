// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package answers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/documint/pkg/types"
)

// File is the on-disk form of a completed questionnaire.
type File struct {
	Project string            `yaml:"project"`
	Context map[string]string `yaml:"context,omitempty"`
	Answers types.AnswerSet   `yaml:"answers"`
}

// ReadYAML loads an answer file.
func ReadYAML(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("reading answers: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parsing answers %s: %w", path, err)
	}
	f.Project = strings.TrimSpace(f.Project)
	if f.Answers == nil {
		f.Answers = types.AnswerSet{}
	}
	return f, nil
}

// WriteYAML writes f to path, creating parent directories.
func WriteYAML(path string, f File) error {
	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("marshaling answers: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing answers: %w", err)
	}
	return nil
}

const examplePrefix = "Example Answer "

// Preload derives placeholder answers from the questions' model hints,
// with the "Example Answer " label removed. Used to exercise generation
// without a filled questionnaire.
func Preload(qs []types.Question) types.AnswerSet {
	out := make(types.AnswerSet, len(qs))
	for _, q := range qs {
		out[q.ID] = strings.TrimSpace(strings.ReplaceAll(q.ModelHint, examplePrefix, ""))
	}
	return out
}

// MissingRequired returns the required questions with blank answers, in
// question order.
func MissingRequired(qs []types.Question, answers types.AnswerSet) []types.Question {
	var missing []types.Question
	for _, q := range qs {
		if q.Required && strings.TrimSpace(answers.Get(q.ID)) == "" {
			missing = append(missing, q)
		}
	}
	return missing
}

// Template returns an answer file with an empty answer for every
// question, ready to be filled in by hand.
func Template(project string, qs []types.Question) File {
	f := File{Project: project, Answers: make(types.AnswerSet, len(qs))}
	for _, q := range qs {
		f.Answers[q.ID] = ""
	}
	return f
}
