// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parse extracts epic and user-story sections from a plan document.
package parse

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/pdiddy/story-migrate/pkg/types"
)

// epicPattern matches level-2 headings that open an epic section,
// e.g. "## CLI Interface Epic".
var epicPattern = regexp.MustCompile(`^##\s+(.*)`)

// storyPattern matches level-3 headings shaped like "US-CODE: Title",
// e.g. "### US-CLI-01: Parse Command Line Arguments".
var storyPattern = regexp.MustCompile(`^###\s+((US-[\w-]+):\s+(.*))`)

// skipMarkers lists heading substrings that never open an epic.
var skipMarkers = []string{"Table of Contents", "Appendix"}

// ParseFile reads the plan document at path and parses it.
func ParseFile(path string) ([]types.Epic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan %s: %w", path, err)
	}
	return Parse(string(data)), nil
}

// Parse scans the document in a single forward pass and returns its epics
// in document order. A story's body is consumed with lookahead: lines are
// swallowed up to, but not including, the next heading of depth >= 2, so
// the outer scan sees that heading on its next step.
//
// A level-3 story heading with no open epic is silently skipped, and
// headings that fail to match either shape are ignored. That leniency is
// the contract, not a gap: the source documents are hand-written.
func Parse(document string) []types.Epic {
	lines := strings.Split(document, "\n")

	var epics []types.Epic
	current := -1

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if m := epicPattern.FindStringSubmatch(line); m != nil && !skipped(line) {
			epics = append(epics, types.Epic{Name: strings.TrimSpace(m[1])})
			current = len(epics) - 1
			continue
		}

		if m := storyPattern.FindStringSubmatch(line); m != nil && current >= 0 {
			story := types.Story{
				IDCode: strings.TrimSpace(m[2]),
				Title:  strings.TrimSpace(m[3]),
			}
			for i+1 < len(lines) && !strings.HasPrefix(lines[i+1], "##") {
				story.Content = append(story.Content, lines[i+1])
				i++
			}
			epics[current].Stories = append(epics[current].Stories, story)
		}
	}

	return epics
}

// skipped reports whether a heading line carries one of the skip markers.
func skipped(line string) bool {
	for _, marker := range skipMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}
