// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package questions parses the annotated question bank into typed
// question records.
//
// A question block starts at a line beginning with "<n>." and ends at the
// first @Optional or @Required marker. Inside a block, @User: introduces a
// hint for the person answering and @LLM: introduces an example answer:
//
//	3. What is the primary purpose of this project?
//	@User: One or two sentences.
//	@LLM: Example Answer The project modernizes screening logistics.
//	@Required
package questions

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/documint/pkg/types"
)

const (
	markerUser     = "@User:"
	markerLLM      = "@LLM:"
	markerRequired = "@Required"
	markerOptional = "@Optional"
)

// chunkPattern cuts the text into spans that each end at a terminal marker.
var chunkPattern = regexp.MustCompile(`(?s).*?(?:@Optional|@Required)`)

// blockStartPattern finds the first line of a chunk that opens a question.
var blockStartPattern = regexp.MustCompile(`(?m)^[ \t]*(\d+)\.`)

// ParseError reports a question bank with no usable question blocks.
type ParseError struct {
	// Dropped is the number of malformed fragments that were skipped.
	Dropped int
}

func (e *ParseError) Error() string {
	if e.Dropped > 0 {
		return fmt.Sprintf("question bank contains no well-formed question blocks (%d malformed fragments dropped)", e.Dropped)
	}
	return "question bank contains no well-formed question blocks"
}

// Report is the outcome of parsing a question bank.
type Report struct {
	// Questions are the parsed records in source order.
	Questions []types.Question

	// Dropped counts fragments that were skipped: chunks without a leading
	// question number, blocks whose number does not increase, and a
	// trailing block with no terminal marker.
	Dropped int
}

// Parse parses raw question-bank text. It returns a *ParseError when the
// text holds no well-formed question blocks.
func Parse(raw string) ([]types.Question, error) {
	r, err := ParseReport(raw)
	if err != nil {
		return nil, err
	}
	return r.Questions, nil
}

// ParseFile reads and parses a question-bank file.
func ParseFile(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("reading question bank: %w", err)
	}
	return ParseReport(string(data))
}

// ParseReport parses raw question-bank text and reports how many
// fragments were dropped. Malformed fragments never abort the parse.
func ParseReport(raw string) (Report, error) {
	var r Report
	lastID := 0

	end := 0
	for _, span := range chunkPattern.FindAllStringIndex(raw, -1) {
		chunk := raw[span[0]:span[1]]
		end = span[1]

		loc := blockStartPattern.FindStringSubmatchIndex(chunk)
		if loc == nil {
			r.Dropped++
			continue
		}

		id, err := strconv.Atoi(chunk[loc[2]:loc[3]])
		if err != nil || id < 1 || id <= lastID {
			r.Dropped++
			continue
		}

		q := parseBlock(id, chunk[loc[1]:])
		r.Questions = append(r.Questions, q)
		lastID = id
	}

	// A question left open at the end of the text never reached its marker.
	if blockStartPattern.MatchString(raw[end:]) {
		r.Dropped++
	}

	if len(r.Questions) == 0 {
		return r, &ParseError{Dropped: r.Dropped}
	}
	return r, nil
}

// parseBlock extracts the fields of one block. body is everything after
// the "<n>." prefix up to and including the terminal marker.
func parseBlock(id int, body string) types.Question {
	q := types.Question{
		ID:       id,
		Text:     upTo(body, markerUser, markerLLM, markerRequired, markerOptional),
		Required: strings.Contains(body, markerRequired),
	}
	if i := strings.Index(body, markerUser); i >= 0 {
		q.UserHint = upTo(body[i+len(markerUser):], markerLLM, markerRequired, markerOptional)
	}
	if i := strings.Index(body, markerLLM); i >= 0 {
		q.ModelHint = upTo(body[i+len(markerLLM):], markerRequired, markerOptional)
	}
	return q
}

// upTo returns s up to the earliest of the given markers, trimmed.
func upTo(s string, markers ...string) string {
	end := len(s)
	for _, m := range markers {
		if i := strings.Index(s, m); i >= 0 && i < end {
			end = i
		}
	}
	return strings.TrimSpace(s[:end])
}
