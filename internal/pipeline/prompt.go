// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/documint/internal/sections"
	"github.com/pdiddy/documint/pkg/types"
)

// sectionPromptTmpl is sent to the backend once per section. It carries
// the template guidance, the section's questions with their answers and
// example answers, and fixed tone and formatting rules.
var sectionPromptTmpl = template.Must(template.New("section").Parse(`Generate the '{{.Section}}' section of the {{.DocumentType}} based on the following information:

Section: {{.Section}}
Relevant Template Structure:
{{.Structure}}

Questionnaire Responses:
{{- range .Items}}
Question {{.ID}}: {{.Question}}
Answer: {{if .Answer}}{{.Answer}}{{else}}(not provided){{end}}
{{- if .Example}}
Example Answer: {{.Example}}
{{- end}}
{{- else}}
(no questions are mapped to this section)
{{- end}}

Please follow these guidelines:
1. Focus only on generating content for the '{{.Section}}' section.
2. Incorporate the relevant questionnaire responses into this section.
3. Reference the example answers for style and content guidance, not as facts.
4. Ensure the section is complete and detailed.
5. Maintain a professional tone and use terminology appropriate for federal procurement.
6. Adapt the content to the document type ({{.DocumentType}}).
7. Do not include introductory phrases like "Here's the generated content for...".
8. Do not repeat the section heading; start directly with the content.

Generate the complete content for this section, filling in any missing information with clearly marked placeholder text.
`))

// promptItem is one question/answer pair rendered into a section prompt.
type promptItem struct {
	ID       int
	Question string
	Answer   string
	Example  string
}

type promptData struct {
	Section      string
	DocumentType string
	Structure    string
	Items        []promptItem
}

// RenderPrompt builds the generation prompt for one section. Question ids
// not present in qs are skipped; Validate reports them before a run.
func RenderPrompt(req Request, section types.MappedSection) (string, error) {
	byID := make(map[int]types.Question, len(req.Questions))
	for _, q := range req.Questions {
		byID[q.ID] = q
	}

	hints := req.Hints
	if hints == nil {
		hints = types.HintSet(req.Questions)
	}

	data := promptData{
		Section:      section.Name,
		DocumentType: req.documentType(),
		Structure:    sections.ContentFor(req.Structure, section.Name),
	}
	for _, id := range section.QuestionIDs {
		q, ok := byID[id]
		if !ok {
			continue
		}
		data.Items = append(data.Items, promptItem{
			ID:       id,
			Question: q.Text,
			Answer:   req.Answers.Get(id),
			Example:  hints[id],
		})
	}

	var buf bytes.Buffer
	if err := sectionPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
