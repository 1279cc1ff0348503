// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/documint/pkg/types"
)

func TestTableOfContents(t *testing.T) {
	got := TableOfContents([]string{"Background", "Period of Performance", "GFE/GFI"})
	assert.Equal(t,
		"1. [Background](#background)\n"+
			"2. [Period of Performance](#period-of-performance)\n"+
			"3. [GFE/GFI](#gfe/gfi)\n",
		got)
	assert.Empty(t, TableOfContents(nil))
}

func TestPlaceholderKey(t *testing.T) {
	tests := map[string]string{
		"Background":                       "background",
		"Period of Performance":            "period_of_performance",
		"Template Header, PR#":             "template_header,_pr#",
		"Section V – Applicable Documents": "section_v_–_applicable_documents",
	}
	for in, want := range tests {
		assert.Equal(t, want, PlaceholderKey(in), in)
	}
}

func TestFillRoundTrip(t *testing.T) {
	out := Fill("# {{project_name}}\n\nBody stays.", map[string]string{"project_name": "Cloud Migration"})
	assert.Equal(t, "# Cloud Migration\n\nBody stays.", out)
}

func TestFill(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		data map[string]string
		want string
	}{
		{
			name: "repeated key",
			tmpl: "{{a}} and {{a}}",
			data: map[string]string{"a": "x"},
			want: "x and x",
		},
		{
			name: "inner spaces",
			tmpl: "{{ a }}",
			data: map[string]string{"a": "x"},
			want: "x",
		},
		{
			name: "unknown key left alone",
			tmpl: "{{a}} {{b}}",
			data: map[string]string{"a": "x"},
			want: "x {{b}}",
		},
		{
			name: "values are not rescanned",
			tmpl: "{{a}}",
			data: map[string]string{"a": "{{b}}", "b": "no"},
			want: "{{b}}",
		},
		{
			name: "single braces untouched",
			tmpl: "{a} {{}} text",
			data: map[string]string{"a": "x"},
			want: "{a} {{}} text",
		},
		{
			name: "unicode dash key",
			tmpl: "{{section_v_–_applicable_documents}}",
			data: map[string]string{"section_v_–_applicable_documents": "Docs"},
			want: "Docs",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fill(tt.tmpl, tt.data))
		})
	}
}

func TestAssembleFailedSectionKeepsHeading(t *testing.T) {
	sections := []string{"Background", "Transition"}
	results := []types.SectionResult{
		{Section: "Background", Content: "The client is TSA.", Status: types.SectionOK},
		{Section: "Transition", Content: "Error generating this section.", Status: types.SectionFailed},
	}

	doc := Assemble(DefaultSkeleton(sections), sections, Contents(results), Project{Name: "Cloud Migration"})

	assert.Contains(t, doc, "# Cloud Migration\n")
	assert.Contains(t, doc, "1. [Background](#background)\n2. [Transition](#transition)\n")
	assert.Contains(t, doc, "## Background\n\nThe client is TSA.")
	assert.Contains(t, doc, "## Transition\n\nError generating this section.")
	assert.NotContains(t, doc, "{{")
}

func TestAssembleMissingSectionIsEmpty(t *testing.T) {
	sections := []string{"Background", "Scope"}
	doc := Assemble("{{background}}|{{scope}}|{{agency}}", sections,
		map[string]string{"Background": "bg"},
		Project{Name: "P", Context: map[string]string{"agency": "TSA", "scope": "ignored"}})
	assert.Equal(t, "bg||TSA", doc)
}

func TestDefaultSkeleton(t *testing.T) {
	sk := DefaultSkeleton([]string{"Background", "Period of Performance"})
	assert.Equal(t, "# {{project_name}}\n\n"+
		"## Table of Contents\n\n{{table_of_contents}}\n"+
		"## Background\n\n{{background}}\n\n"+
		"## Period of Performance\n\n{{period_of_performance}}\n", sk)

	assert.Equal(t, []string{"project_name", "table_of_contents", "background", "period_of_performance"}, Placeholders(sk))
}

func TestUnfilled(t *testing.T) {
	data := Data([]string{"Background"}, nil, Project{Name: "P"})
	assert.Equal(t, []string{"contract_number"}, Unfilled("{{project_name}} {{background}} {{contract_number}}", data))
	assert.Empty(t, Unfilled(DefaultSkeleton([]string{"Background"}), data))
}

func TestLoadSkeleton(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skeleton.md")
	require.NoError(t, os.WriteFile(path, []byte("# {{project_name}}\n"), 0o644))

	sk, err := LoadSkeleton(path)
	require.NoError(t, err)
	assert.Equal(t, "# {{project_name}}\n", sk)

	_, err = LoadSkeleton(filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)
}
