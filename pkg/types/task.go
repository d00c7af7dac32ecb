// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the shared data model for the migration pipeline.
package types

// Epic is a top-level grouping section from the plan document, opened by a
// level-2 heading. Duplicate epic names are permitted and produce separate
// task files.
type Epic struct {
	// Name is the trimmed heading text.
	Name string `json:"name" yaml:"name"`

	// Stories lists the epic's user stories in document order.
	Stories []Story `json:"stories" yaml:"stories"`
}

// Story is a leaf unit of work, opened by a level-3 heading shaped like
// "US-CODE: Title". A story always belongs to the epic that was open when
// it was parsed.
type Story struct {
	// IDCode is the US-prefixed identifier from the heading (e.g. "US-CLI-01").
	IDCode string `json:"id_code" yaml:"id_code"`

	// Title is the trimmed heading text after the identifier.
	Title string `json:"title" yaml:"title"`

	// Content holds the raw body lines up to the next heading of depth >= 2.
	Content []string `json:"content" yaml:"content"`
}

// Task is one emitted task-file record, either an epic or a story.
// Numeric identifiers come from a single counter shared across epics and
// stories, assigned in emission order.
type Task struct {
	// Num is the numeric identifier (1-based, emission order).
	Num int `json:"num" yaml:"num"`

	// Title is the task title; for stories this is "IDCode Title".
	Title string `json:"title" yaml:"title"`

	// Status is the tracker status (e.g. "To Do").
	Status string `json:"status" yaml:"status"`

	// Body is the task body written after the metadata block.
	Body string `json:"body" yaml:"body"`

	// Parent is the numeric identifier of the owning epic; zero for epics.
	Parent int `json:"parent,omitempty" yaml:"parent,omitempty"`

	// IsEpic marks epic tasks, which carry the Epic label.
	IsEpic bool `json:"is_epic" yaml:"is_epic"`
}
