// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"fmt"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Record is one indexed task row, reconstructed from a task file's
// metadata block and body.
type Record struct {
	Num         int      `json:"num" yaml:"num"`
	TaskID      string   `json:"task_id" yaml:"task_id"`
	Title       string   `json:"title" yaml:"title"`
	Status      string   `json:"status" yaml:"status"`
	Labels      []string `json:"labels" yaml:"labels"`
	Parent      string   `json:"parent,omitempty" yaml:"parent,omitempty"`
	CreatedDate string   `json:"created_date" yaml:"created_date"`
	Filename    string   `json:"filename" yaml:"filename"`
	Body        string   `json:"body,omitempty" yaml:"body,omitempty"`
}

// IsEpic reports whether the record carries the Epic label.
func (r Record) IsEpic() bool {
	for _, l := range r.Labels {
		if l == "Epic" {
			return true
		}
	}
	return false
}

// taskMeta mirrors the key set of the emitted metadata block.
type taskMeta struct {
	ID           string   `yaml:"id"`
	Title        string   `yaml:"title"`
	Status       string   `yaml:"status"`
	Assignee     []string `yaml:"assignee"`
	CreatedDate  string   `yaml:"created_date"`
	Labels       []string `yaml:"labels"`
	Parent       string   `yaml:"parent"`
	Dependencies []string `yaml:"dependencies"`
}

const delimiter = "---\n"

// parseTaskFile splits a task file into its metadata block and body and
// returns the reconstructed record. The block is YAML-compatible as long
// as the title did not break its syntax, which the emitter does not
// guarantee; malformed files surface as per-file ingest failures.
func parseTaskFile(name string, data []byte) (Record, error) {
	content := string(data)
	if !strings.HasPrefix(content, delimiter) {
		return Record{}, fmt.Errorf("missing metadata block")
	}

	rest := strings.TrimPrefix(content, delimiter)
	end := strings.Index(rest, "\n"+strings.TrimSuffix(delimiter, "\n"))
	if end < 0 {
		return Record{}, fmt.Errorf("unterminated metadata block")
	}

	block := rest[:end+1]
	body := rest[end+len("\n---"):]
	body = strings.TrimPrefix(body, "\n")
	body = strings.TrimPrefix(body, "\n")

	var meta taskMeta
	if err := yaml.Unmarshal([]byte(block), &meta); err != nil {
		return Record{}, fmt.Errorf("parsing metadata block: %w", err)
	}

	num, err := taskNum(meta.ID)
	if err != nil {
		return Record{}, err
	}

	return Record{
		Num:         num,
		TaskID:      meta.ID,
		Title:       meta.Title,
		Status:      meta.Status,
		Labels:      meta.Labels,
		Parent:      meta.Parent,
		CreatedDate: meta.CreatedDate,
		Filename:    name,
		Body:        body,
	}, nil
}

// taskNum extracts the numeric identifier from a namespaced id like "TASK-7".
func taskNum(id string) (int, error) {
	trimmed := strings.TrimPrefix(id, "TASK-")
	if trimmed == id || trimmed == "" {
		return 0, fmt.Errorf("malformed task id %q", id)
	}
	num, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("malformed task id %q: %w", id, err)
	}
	return num, nil
}
