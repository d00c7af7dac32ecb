// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package emit

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/story-migrate/internal/parse"
	"github.com/pdiddy/story-migrate/pkg/types"
)

// fixClock pins the package clock for deterministic created_date fields.
func fixClock(t *testing.T) {
	t.Helper()
	prev := now
	now = func() time.Time {
		return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	}
	t.Cleanup(func() { now = prev })
}

func listTaskFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "task-") && strings.HasSuffix(e.Name(), ".md") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

func TestEmitAll_EpicAndStoryFiles(t *testing.T) {
	fixClock(t)
	dir := t.TempDir()

	epics := []types.Epic{
		{
			Name: "Alpha Epic",
			Stories: []types.Story{
				{
					IDCode:  "US-100",
					Title:   "Do Thing",
					Content: []string{"", "**Acceptance Criteria:**", "- Works"},
				},
			},
		},
	}

	var log bytes.Buffer
	summary, err := NewEmitter(types.MigrationConfig{TasksDir: dir}).EmitAll(epics, &log)
	if err != nil {
		t.Fatalf("EmitAll: %v", err)
	}
	if summary.Epics != 1 || summary.Stories != 1 || summary.Total() != 2 {
		t.Errorf("summary = %+v", summary)
	}

	epicContent, err := os.ReadFile(filepath.Join(dir, "task-1 - Alpha Epic.md"))
	if err != nil {
		t.Fatalf("reading epic file: %v", err)
	}
	wantEpic := strings.Join([]string{
		"---",
		"id: TASK-1",
		"title: Alpha Epic",
		"status: To Do",
		"assignee: []",
		"created_date: '2026-03-14 09:30'",
		"labels: ['Epic']",
		"dependencies: []",
		"---",
		"",
		"Parent Epic for related user stories.",
	}, "\n")
	if string(epicContent) != wantEpic {
		t.Errorf("epic file content:\n%s\nwant:\n%s", epicContent, wantEpic)
	}

	storyContent, err := os.ReadFile(filepath.Join(dir, "task-2 - US-100 Do Thing.md"))
	if err != nil {
		t.Fatalf("reading story file: %v", err)
	}
	wantStory := strings.Join([]string{
		"---",
		"id: TASK-2",
		"title: US-100 Do Thing",
		"status: To Do",
		"assignee: []",
		"created_date: '2026-03-14 09:30'",
		"labels: []",
		"parent: TASK-1",
		"dependencies: []",
		"---",
		"",
		"## Acceptance Criteria",
		"- [ ] Works",
	}, "\n")
	if string(storyContent) != wantStory {
		t.Errorf("story file content:\n%s\nwant:\n%s", storyContent, wantStory)
	}

	if !strings.Contains(log.String(), "Created Epic: Alpha Epic (ID: 1)") {
		t.Errorf("log missing epic line: %q", log.String())
	}
	if !strings.Contains(log.String(), "  Created Story: US-100 Do Thing (ID: 2)") {
		t.Errorf("log missing story line: %q", log.String())
	}
}

func TestEmitAll_CounterContiguity(t *testing.T) {
	fixClock(t)
	dir := t.TempDir()

	epics := []types.Epic{
		{
			Name: "Alpha",
			Stories: []types.Story{
				{IDCode: "US-1", Title: "One"},
				{IDCode: "US-2", Title: "Two"},
			},
		},
		{
			Name:    "Beta",
			Stories: []types.Story{{IDCode: "US-3", Title: "Three"}},
		},
	}

	var log bytes.Buffer
	if _, err := NewEmitter(types.MigrationConfig{TasksDir: dir}).EmitAll(epics, &log); err != nil {
		t.Fatal(err)
	}

	got := listTaskFiles(t, dir)
	want := []string{
		"task-1 - Alpha.md",
		"task-2 - US-1 One.md",
		"task-3 - US-2 Two.md",
		"task-4 - Beta.md",
		"task-5 - US-3 Three.md",
	}
	if len(got) != len(want) {
		t.Fatalf("file names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("file[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// Each story carries its owning epic's identifier.
	for _, name := range []string{"task-2 - US-1 One.md", "task-3 - US-2 Two.md"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "parent: TASK-1\n") {
			t.Errorf("%s missing parent TASK-1", name)
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, "task-5 - US-3 Three.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "parent: TASK-4\n") {
		t.Errorf("Beta story missing parent TASK-4")
	}
}

func TestEmitAll_ClearsPriorOutput(t *testing.T) {
	fixClock(t)
	dir := t.TempDir()

	stale := filepath.Join(dir, "task-99 - Stale.md")
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	unrelated := filepath.Join(dir, "notes.md")
	if err := os.WriteFile(unrelated, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}

	var log bytes.Buffer
	if _, err := NewEmitter(types.MigrationConfig{TasksDir: dir}).EmitAll(nil, &log); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale task file was not removed")
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Error("unrelated file was removed")
	}
	if files := listTaskFiles(t, dir); len(files) != 0 {
		t.Errorf("expected no task files for empty input, got %v", files)
	}
}

func TestEmitAll_RerunIsIdempotent(t *testing.T) {
	fixClock(t)
	dir := t.TempDir()

	epics := []types.Epic{
		{
			Name:    "Alpha",
			Stories: []types.Story{{IDCode: "US-1", Title: "One", Content: []string{"body"}}},
		},
	}

	var log bytes.Buffer
	if _, err := NewEmitter(types.MigrationConfig{TasksDir: dir}).EmitAll(epics, &log); err != nil {
		t.Fatal(err)
	}
	first := map[string]string{}
	for _, name := range listTaskFiles(t, dir) {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		first[name] = string(data)
	}

	if _, err := NewEmitter(types.MigrationConfig{TasksDir: dir}).EmitAll(epics, &log); err != nil {
		t.Fatal(err)
	}
	second := listTaskFiles(t, dir)
	if len(second) != len(first) {
		t.Fatalf("rerun changed file count: %d -> %d", len(first), len(second))
	}
	for _, name := range second {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != first[name] {
			t.Errorf("rerun changed content of %s", name)
		}
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		num   int
		title string
		want  string
	}{
		{1, "Alpha Epic", "task-1 - Alpha Epic.md"},
		{2, "US-1 One", "task-2 - US-1 One.md"},
		{3, `What? A "quoted" title: yes/no`, "task-3 - What A quoted title yesno.md"},
		{4, `back\slash*and|pipes<here>`, "task-4 - backslashandpipeshere.md"},
	}

	for _, tt := range tests {
		if got := Filename(tt.num, tt.title); got != tt.want {
			t.Errorf("Filename(%d, %q) = %q, want %q", tt.num, tt.title, got, tt.want)
		}
	}
}

func TestPipeline_ParseToEmit(t *testing.T) {
	fixClock(t)
	dir := t.TempDir()

	doc := strings.Join([]string{
		"# Plan",
		"",
		"## Table of Contents",
		"",
		"## Alpha Epic",
		"",
		"### US-100: Do Thing",
		"",
		"**Acceptance Criteria:**",
		"- Works",
	}, "\n")

	var log bytes.Buffer
	summary, err := NewEmitter(types.MigrationConfig{TasksDir: dir}).EmitAll(parse.Parse(doc), &log)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Epics != 1 || summary.Stories != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	data, err := os.ReadFile(filepath.Join(dir, "task-2 - US-100 Do Thing.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(data), "## Acceptance Criteria\n- [ ] Works") {
		t.Errorf("story body = %q", data)
	}
}
