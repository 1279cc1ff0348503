//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	sampleQuestions = "templates/questions.txt"
	sampleStructure = "templates/structure.md"
	sampleMapping   = "templates/mapping.yaml"
)

// Sample generates a document from the sample bank, structure, and
// mapping in templates/ with preloaded example answers. Set
// DOCUMINT_AI_MODEL to choose the backend.
func Sample() error {
	mg.Deps(Build, Init)

	for _, f := range []string{sampleQuestions, sampleStructure, sampleMapping} {
		if _, err := os.Stat(f); err != nil {
			return fmt.Errorf("sample needs %s: %w", f, err)
		}
	}
	return sh.RunV("bin/documint", "generate",
		"--questions", sampleQuestions,
		"--template", sampleStructure,
		"--mapping", sampleMapping,
		"--preload",
		"--name", "sample",
	)
}

// Questions lists the questions parsed from the sample bank.
func Questions() error {
	mg.Deps(Build)
	return sh.RunV("bin/documint", "questions", sampleQuestions)
}
