// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// MappedSection pairs a document section with the question IDs whose
// answers feed it.
type MappedSection struct {
	// Name is the section title as it appears in the generated document.
	Name string `json:"name" yaml:"name"`

	// QuestionIDs lists the relevant questions in prompt order.
	QuestionIDs []int `json:"questions" yaml:"questions"`
}

// SectionMapping is the ordered list of sections to generate.
type SectionMapping []MappedSection

// Names returns the section names in mapping order.
func (m SectionMapping) Names() []string {
	names := make([]string, len(m))
	for i, s := range m {
		names[i] = s.Name
	}
	return names
}

// TemplateSubsection is a ### entry nested under a TemplateSection.
type TemplateSubsection struct {
	Title   string   `json:"title" yaml:"title"`
	Content []string `json:"content" yaml:"content"`
}

// TemplateSection is a top-level (# or ##) entry of the template structure.
type TemplateSection struct {
	Title       string               `json:"title" yaml:"title"`
	Content     []string             `json:"content" yaml:"content"`
	Subsections []TemplateSubsection `json:"subsections" yaml:"subsections"`
}

// SectionStatus records whether a section was generated.
type SectionStatus string

const (
	SectionOK     SectionStatus = "ok"
	SectionFailed SectionStatus = "failed"
)

// SectionResult is the outcome of generating one section.
type SectionResult struct {
	// Section is the section name the task was created for.
	Section string `json:"section" yaml:"section"`

	// Content is the cleaned generated text, or the failure placeholder.
	Content string `json:"content" yaml:"content"`

	// Status is ok or failed.
	Status SectionStatus `json:"status" yaml:"status"`

	// Error holds the last backend error message when Status is failed.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// Attempts is the number of backend calls made for this section
	// (0 when served from the cache or when the run was cancelled first).
	Attempts int `json:"attempts" yaml:"attempts"`
}

// Failed reports whether the section fell back to the placeholder.
func (r SectionResult) Failed() bool {
	return r.Status == SectionFailed
}

// WarningKind classifies a non-fatal problem found during generation.
type WarningKind string

const (
	WarnMissingStructure WarningKind = "missing-structure"
	WarnMissingAnswer    WarningKind = "missing-answer"
	WarnMissingRequired  WarningKind = "missing-required"
	WarnDroppedBlocks    WarningKind = "dropped-blocks"
	WarnSectionFailed    WarningKind = "section-failed"
)

// Warning is a non-fatal generation problem. The document is still
// produced; callers decide whether to surface or escalate it.
type Warning struct {
	Kind       WarningKind `json:"kind" yaml:"kind"`
	Section    string      `json:"section,omitempty" yaml:"section,omitempty"`
	QuestionID int         `json:"question_id,omitempty" yaml:"question_id,omitempty"`
	Message    string      `json:"message" yaml:"message"`
}

func (w Warning) String() string {
	if w.Section != "" {
		return string(w.Kind) + " [" + w.Section + "]: " + w.Message
	}
	return string(w.Kind) + ": " + w.Message
}
