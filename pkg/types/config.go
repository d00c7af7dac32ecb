// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// MigrationConfig holds settings for the parse-and-emit pipeline.
type MigrationConfig struct {
	// SourceFile is the plan document containing epic and story headings
	// (default "plans/user_stories.md").
	SourceFile string `json:"source_file" yaml:"source_file"`

	// TasksDir is the destination directory for generated task files
	// (default "backlog/tasks"). Every task-*.md file in it is owned by
	// the emitter and replaced on each run.
	TasksDir string `json:"tasks_dir" yaml:"tasks_dir"`
}

// IndexConfig holds settings for the task index.
type IndexConfig struct {
	// TasksDir is the directory of generated task files (contains .index/).
	TasksDir string `json:"tasks_dir" yaml:"tasks_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
