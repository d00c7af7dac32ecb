// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package transform rewrites story bodies for the task tracker.
package transform

import "strings"

const (
	// acceptanceMarker is the literal that opens an acceptance-criteria
	// section in the source document.
	acceptanceMarker = "**Acceptance Criteria:**"

	// acceptanceHeading replaces the marker line in the emitted body.
	acceptanceHeading = "## Acceptance Criteria"
)

// Checklist joins a story's raw content lines, strips surrounding blank
// lines, and converts acceptance-criteria bullets into checklist items.
//
// The marker line itself is replaced by the heading. From that point every
// line whose trimmed text starts with "- " has its first "- " rewritten to
// "- [ ] "; the mode never turns off for the remainder of the body, so a
// later unrelated bullet list is converted too.
func Checklist(content []string) string {
	body := strings.TrimSpace(strings.Join(content, "\n"))
	if body == "" {
		return ""
	}

	var out []string
	inAcceptance := false

	for _, line := range strings.Split(body, "\n") {
		switch {
		case strings.Contains(line, acceptanceMarker):
			inAcceptance = true
			out = append(out, acceptanceHeading)
		case inAcceptance && strings.HasPrefix(strings.TrimSpace(line), "- "):
			out = append(out, strings.Replace(line, "- ", "- [ ] ", 1))
		default:
			out = append(out, line)
		}
	}

	return strings.Join(out, "\n")
}
