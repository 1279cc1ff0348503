// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assemble merges generated sections into a document skeleton.
// Skeletons are plain Markdown with {{key}} placeholders; keys are the
// reserved project_name and table_of_contents plus one key per section.
package assemble

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/pdiddy/documint/pkg/types"
)

// Reserved placeholder keys.
const (
	KeyProjectName     = "project_name"
	KeyTableOfContents = "table_of_contents"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([^{}\s][^{}]*?)\s*\}\}`)

// TableOfContents renders one numbered Markdown link per section. The
// anchor is the lower-cased title with spaces replaced by hyphens.
func TableOfContents(sections []string) string {
	var sb strings.Builder
	for i, s := range sections {
		fmt.Fprintf(&sb, "%d. [%s](#%s)\n", i+1, s, strings.ReplaceAll(strings.ToLower(s), " ", "-"))
	}
	return sb.String()
}

// PlaceholderKey returns the skeleton key for a section name.
func PlaceholderKey(section string) string {
	return strings.ReplaceAll(strings.ToLower(section), " ", "_")
}

// Fill replaces every {{key}} in tmpl with data[key]. Placeholders with no
// entry in data are left as they are; all other text is untouched.
func Fill(tmpl string, data map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(m string) string {
		key := placeholderPattern.FindStringSubmatch(m)[1]
		if v, ok := data[key]; ok {
			return v
		}
		return m
	})
}

// Placeholders returns the distinct keys referenced by tmpl in order of
// first appearance.
func Placeholders(tmpl string) []string {
	seen := map[string]bool{}
	var keys []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(tmpl, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			keys = append(keys, m[1])
		}
	}
	return keys
}

// Project carries document-wide values for the skeleton.
type Project struct {
	Name string

	// Context holds extra placeholder values (agency, contract number).
	// Reserved and section keys take precedence over context keys.
	Context map[string]string
}

// Data builds the placeholder map for a skeleton: project_name,
// table_of_contents over sections, every project context key, and one
// key per section. A section with no content maps to "".
func Data(sections []string, contents map[string]string, project Project) map[string]string {
	data := make(map[string]string, len(sections)+len(project.Context)+2)
	for k, v := range project.Context {
		data[k] = v
	}
	data[KeyProjectName] = project.Name
	data[KeyTableOfContents] = TableOfContents(sections)
	for _, s := range sections {
		data[PlaceholderKey(s)] = contents[s]
	}
	return data
}

// Assemble fills skeleton with the generated section contents.
func Assemble(skeleton string, sections []string, contents map[string]string, project Project) string {
	return Fill(skeleton, Data(sections, contents, project))
}

// Contents indexes section results by section name.
func Contents(results []types.SectionResult) map[string]string {
	m := make(map[string]string, len(results))
	for _, r := range results {
		m[r.Section] = r.Content
	}
	return m
}

// DefaultSkeleton builds a skeleton with a title, the table of contents,
// and a "## <Section>" heading plus placeholder for every section.
func DefaultSkeleton(sections []string) string {
	var sb strings.Builder
	sb.WriteString("# {{" + KeyProjectName + "}}\n\n")
	sb.WriteString("## Table of Contents\n\n{{" + KeyTableOfContents + "}}\n")
	for _, s := range sections {
		fmt.Fprintf(&sb, "## %s\n\n{{%s}}\n\n", s, PlaceholderKey(s))
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// LoadSkeleton reads a skeleton file.
func LoadSkeleton(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading skeleton: %w", err)
	}
	return string(data), nil
}

// Unfilled returns the placeholders of skeleton that data cannot fill.
func Unfilled(skeleton string, data map[string]string) []string {
	var missing []string
	for _, k := range Placeholders(skeleton) {
		if _, ok := data[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing
}
