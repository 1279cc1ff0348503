// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sections maps document sections to questionnaire questions and
// looks up per-section template guidance.
package sections

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/documint/pkg/types"
)

// mappingFile is the on-disk shape of a section mapping.
type mappingFile struct {
	Sections types.SectionMapping `yaml:"sections"`
}

// DefaultSOW returns the built-in Statement of Work mapping.
func DefaultSOW() types.SectionMapping {
	return types.SectionMapping{
		{Name: "Template Header, PR#", QuestionIDs: []int{1}},
		{Name: "Section I Task Name, Requisitioning Office", QuestionIDs: []int{3, 4}},
		{Name: "Section II – Background", QuestionIDs: []int{5, 6, 7, 8}},
		{Name: "Section III - Purpose", QuestionIDs: []int{9, 10}},
		{Name: "Section IV – Technical Requirements", QuestionIDs: []int{11, 12, 13, 14, 16}},
		{Name: "Contractor Personnel", QuestionIDs: []int{23, 24, 25}},
		{Name: "Transition", QuestionIDs: []int{27}},
		{Name: "Deliverables", QuestionIDs: []int{20}},
		{Name: "Period of Performance", QuestionIDs: []int{18, 19}},
		{Name: "Place of Performance", QuestionIDs: []int{22}},
		{Name: "Delivery Instructions", QuestionIDs: []int{21}},
		{Name: "Travel Requirements", QuestionIDs: []int{17}},
		{Name: "GFE/GFI", QuestionIDs: []int{26}},
		{Name: "Special Security Requirements", QuestionIDs: []int{15}},
		{Name: "Section V – Applicable Documents", QuestionIDs: []int{28}},
	}
}

// LoadMapping reads an ordered section mapping from a YAML file:
//
//	sections:
//	  - name: Background
//	    questions: [5, 6, 7]
func LoadMapping(path string) (types.SectionMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mapping: %w", err)
	}
	var f mappingFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing mapping: %w", err)
	}
	if len(f.Sections) == 0 {
		return nil, fmt.Errorf("mapping %s defines no sections", path)
	}

	seen := make(map[Key]bool, len(f.Sections))
	for i := range f.Sections {
		f.Sections[i].Name = strings.TrimSpace(f.Sections[i].Name)
		k := KeyOf(f.Sections[i].Name)
		if k == "" {
			return nil, fmt.Errorf("mapping %s: section %d has no name", path, i+1)
		}
		if seen[k] {
			return nil, fmt.Errorf("mapping %s: duplicate section %q", path, f.Sections[i].Name)
		}
		seen[k] = true
	}
	return f.Sections, nil
}

// QuestionsFor returns the question IDs mapped to the named section, or
// nil when the mapping has no such section.
func QuestionsFor(m types.SectionMapping, name string) []int {
	k := KeyOf(name)
	for _, s := range m {
		if KeyOf(s.Name) == k {
			return s.QuestionIDs
		}
	}
	return nil
}

// UnknownIDError lists mapped question IDs absent from the question bank.
type UnknownIDError struct {
	// Missing maps section name to the unknown IDs it references.
	Missing map[string][]int
}

func (e *UnknownIDError) Error() string {
	names := make([]string, 0, len(e.Missing))
	for n := range e.Missing {
		names = append(names, n)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s %v", n, e.Missing[n])
	}
	return "section mapping references unknown questions: " + strings.Join(parts, "; ")
}

// Validate checks that every question ID referenced by m exists in qs.
func Validate(m types.SectionMapping, qs []types.Question) error {
	known := make(map[int]bool, len(qs))
	for _, q := range qs {
		known[q.ID] = true
	}

	missing := make(map[string][]int)
	for _, s := range m {
		for _, id := range s.QuestionIDs {
			if !known[id] {
				missing[s.Name] = append(missing[s.Name], id)
			}
		}
	}
	if len(missing) > 0 {
		return &UnknownIDError{Missing: missing}
	}
	return nil
}
