// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Question is one parsed entry of the question bank. Questions are
// immutable once parsed; IDs are unique and strictly increasing in the
// order they appear in the source text.
type Question struct {
	// ID is the leading number of the question block (e.g. 12 for "12. ...").
	ID int `json:"id" yaml:"id"`

	// Text is the question prompt shown to the person filling the questionnaire.
	Text string `json:"text" yaml:"text"`

	// UserHint is guidance for the person answering (from @User:). May be empty.
	UserHint string `json:"user_hint,omitempty" yaml:"user_hint,omitempty"`

	// ModelHint is an example answer (from @LLM:). It doubles as a style
	// exemplar for generation and as a placeholder answer. May be empty.
	ModelHint string `json:"model_hint,omitempty" yaml:"model_hint,omitempty"`

	// Required is true when the block carries the @Required marker.
	Required bool `json:"required" yaml:"required"`
}

// AnswerSet maps question IDs to the answers supplied by the
// questionnaire. Empty answers are permitted.
type AnswerSet map[int]string

// Get returns the answer for id, or "" when absent.
func (a AnswerSet) Get(id int) string {
	if a == nil {
		return ""
	}
	return a[id]
}

// HintSet returns the model hints of qs keyed by question ID.
func HintSet(qs []Question) map[int]string {
	hints := make(map[int]string, len(qs))
	for _, q := range qs {
		hints[q.ID] = q.ModelHint
	}
	return hints
}
