// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sections

import (
	"fmt"
	"os"
	"strings"

	"github.com/pdiddy/documint/pkg/types"
)

// NoStructure is returned by ContentFor when the template has no entry
// for a section.
const NoStructure = "No specific structure provided"

// Key identifies a section independent of spacing, case, and dash style,
// so "Section II – Background " and "section ii - background" match.
type Key string

// KeyOf normalizes a section title into its Key.
func KeyOf(title string) Key {
	title = strings.NewReplacer("–", "-", "—", "-").Replace(title)
	return Key(strings.ToLower(strings.Join(strings.Fields(title), " ")))
}

// Structure is a template broken into its heading hierarchy.
type Structure struct {
	Sections []types.TemplateSection

	// Dropped counts lines that had no open section to attach to:
	// text before the first heading and ### headings (with their
	// content) that precede any top-level heading.
	Dropped int
}

// ParseStructure splits template text on heading markers. "# " and "## "
// open a new top-level section; "### " opens a subsection of the current
// section; any other line is content of the latest subsection, or of the
// section when it has no subsections yet.
func ParseStructure(text string) Structure {
	var (
		st      Structure
		current *types.TemplateSection
	)

	flush := func() {
		if current != nil {
			st.Sections = append(st.Sections, *current)
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")

		switch {
		case strings.HasPrefix(line, "# "):
			flush()
			current = &types.TemplateSection{Title: strings.TrimSpace(line[2:])}
		case strings.HasPrefix(line, "## "):
			flush()
			current = &types.TemplateSection{Title: strings.TrimSpace(line[3:])}
		case strings.HasPrefix(line, "### "):
			if current == nil {
				st.Dropped++
				continue
			}
			current.Subsections = append(current.Subsections, types.TemplateSubsection{
				Title: strings.TrimSpace(line[4:]),
			})
		case current == nil:
			if strings.TrimSpace(line) != "" {
				st.Dropped++
			}
		case len(current.Subsections) > 0:
			last := &current.Subsections[len(current.Subsections)-1]
			last.Content = append(last.Content, line)
		default:
			current.Content = append(current.Content, line)
		}
	}
	flush()

	return st
}

// ParseStructureFile reads and parses a template structure file.
func ParseStructureFile(path string) (Structure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Structure{}, fmt.Errorf("reading template: %w", err)
	}
	return ParseStructure(string(data)), nil
}

// Lookup returns the template section matching name, if any.
func (s Structure) Lookup(name string) (types.TemplateSection, bool) {
	k := KeyOf(name)
	for _, sec := range s.Sections {
		if KeyOf(sec.Title) == k {
			return sec, true
		}
	}
	return types.TemplateSection{}, false
}

// ContentFor returns the template guidance for a section: its content
// lines followed by each subsection heading and content. It returns
// NoStructure when the template has no matching section.
func ContentFor(s Structure, name string) string {
	sec, ok := s.Lookup(name)
	if !ok {
		return NoStructure
	}

	lines := append([]string(nil), sec.Content...)
	for _, sub := range sec.Subsections {
		lines = append(lines, "### "+sub.Title)
		lines = append(lines, sub.Content...)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
