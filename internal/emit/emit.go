// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package emit writes parsed epics and stories as task files with a
// line-oriented metadata block understood by the task tracker.
package emit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pdiddy/story-migrate/internal/transform"
	"github.com/pdiddy/story-migrate/pkg/types"
)

const (
	taskPrefix = "task-"
	taskExt    = ".md"

	// idPrefix namespaces numeric identifiers in the metadata block.
	idPrefix = "TASK-"

	// defaultStatus is the tracker status stamped on every generated task.
	defaultStatus = "To Do"

	// epicBody is the fixed body for epic task files.
	epicBody = "Parent Epic for related user stories."
)

// unsafeChars matches characters removed from titles when composing file
// names. Two titles that sanitize to the same name overwrite one another.
var unsafeChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// now returns the timestamp stamped into created_date. Tests override it.
var now = time.Now

// Emitter writes task files into a destination directory, assigning
// numeric identifiers from a single counter shared by epics and stories.
type Emitter struct {
	tasksDir string
	counter  int
}

// NewEmitter returns an emitter targeting cfg.TasksDir with the counter
// at its starting value.
func NewEmitter(cfg types.MigrationConfig) *Emitter {
	return &Emitter{tasksDir: cfg.TasksDir, counter: 1}
}

// Summary holds counts from a migration run.
type Summary struct {
	Epics   int
	Stories int
}

// Total returns the number of task files written.
func (s Summary) Total() int {
	return s.Epics + s.Stories
}

// Clear creates the destination directory if needed and removes every
// existing task-*.md file in it. The emitter owns all files matching that
// pattern and replaces them unconditionally on each run.
func (e *Emitter) Clear() error {
	if err := os.MkdirAll(e.tasksDir, 0o755); err != nil {
		return fmt.Errorf("creating tasks directory %s: %w", e.tasksDir, err)
	}

	entries, err := os.ReadDir(e.tasksDir)
	if err != nil {
		return fmt.Errorf("reading tasks directory %s: %w", e.tasksDir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, taskPrefix) && strings.HasSuffix(name, taskExt) {
			if err := os.Remove(filepath.Join(e.tasksDir, name)); err != nil {
				return fmt.Errorf("removing %s: %w", name, err)
			}
		}
	}

	return nil
}

// EmitAll clears prior output and writes one task file per epic and per
// story, in parsed order, reporting each created file to w. Each epic is
// immediately followed by its stories, so an epic's stories occupy the
// identifiers between it and the next epic.
//
// A write failure aborts the run; files written before the failure remain
// on disk.
func (e *Emitter) EmitAll(epics []types.Epic, w io.Writer) (Summary, error) {
	if err := e.Clear(); err != nil {
		return Summary{}, err
	}

	var summary Summary

	for _, epic := range epics {
		epicNum := e.counter
		task := types.Task{
			Num:    epicNum,
			Title:  epic.Name,
			Status: defaultStatus,
			Body:   epicBody,
			IsEpic: true,
		}
		if err := e.writeTask(task); err != nil {
			return summary, err
		}
		fmt.Fprintf(w, "Created Epic: %s (ID: %d)\n", epic.Name, epicNum)
		e.counter++
		summary.Epics++

		for _, story := range epic.Stories {
			fullTitle := story.IDCode + " " + story.Title
			task := types.Task{
				Num:    e.counter,
				Title:  fullTitle,
				Status: defaultStatus,
				Body:   transform.Checklist(story.Content),
				Parent: epicNum,
			}
			if err := e.writeTask(task); err != nil {
				return summary, err
			}
			fmt.Fprintf(w, "  Created Story: %s (ID: %d)\n", fullTitle, e.counter)
			e.counter++
			summary.Stories++
		}
	}

	fmt.Fprintf(w, "\nMigrated %d epic(s), %d story(s) (total: %d task files)\n",
		summary.Epics, summary.Stories, summary.Total())

	return summary, nil
}

func (e *Emitter) writeTask(t types.Task) error {
	name := Filename(t.Num, t.Title)
	path := filepath.Join(e.tasksDir, name)
	if err := os.WriteFile(path, []byte(render(t)), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// Filename derives the task file name from the numeric identifier and the
// sanitized title: "task-<num> - <title>.md".
func Filename(num int, title string) string {
	return fmt.Sprintf("%s%d - %s%s", taskPrefix, num, unsafeChars.ReplaceAllString(title, ""), taskExt)
}

// render composes the metadata block and body. The tracker parses the
// block as line-oriented key:value pairs, so key names, ordering, and
// list-marker syntax are fixed. Titles are written unescaped; the caller
// must ensure they do not break the block's syntax.
func render(t types.Task) string {
	var b strings.Builder

	b.WriteString("---\n")
	fmt.Fprintf(&b, "id: %s%d\n", idPrefix, t.Num)
	fmt.Fprintf(&b, "title: %s\n", t.Title)
	fmt.Fprintf(&b, "status: %s\n", t.Status)
	b.WriteString("assignee: []\n")
	fmt.Fprintf(&b, "created_date: '%s'\n", now().Format("2006-01-02 15:04"))
	if t.IsEpic {
		b.WriteString("labels: ['Epic']\n")
	} else {
		b.WriteString("labels: []\n")
	}
	if t.Parent != 0 {
		fmt.Fprintf(&b, "parent: %s%d\n", idPrefix, t.Parent)
	}
	b.WriteString("dependencies: []\n")
	b.WriteString("---\n\n")
	b.WriteString(t.Body)

	return b.String()
}
