// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"regexp"
	"strings"
)

var (
	preamblePattern = regexp.MustCompile(`(?im)^[ \t]*here(?:'|’)?s the generated (?:content|section) for[^\n]*(?:\n|$)`)
	headingPattern  = regexp.MustCompile(`(?m)^[ \t]*#+[ \t]+[^\n]*(?:\n|$)`)
	blankRunPattern = regexp.MustCompile(`\n{3,}`)
)

// Clean normalizes a backend reply before it is merged into the
// document: assistant preamble lines and markdown heading lines are
// removed (the assembler owns headings), runs of blank lines collapse to
// one, and surrounding whitespace is trimmed. Clean(Clean(s)) == Clean(s).
func Clean(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = preamblePattern.ReplaceAllString(s, "")
	s = headingPattern.ReplaceAllString(s, "")
	s = blankRunPattern.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
