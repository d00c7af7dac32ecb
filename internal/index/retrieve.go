// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// QueryOptions holds parameters for task index queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string over title and body.
	Query string

	// Status filters by tracker status (e.g. "To Do").
	Status string

	// Label filters by label (e.g. "Epic").
	Label string

	// Parent filters by owning epic's namespaced id (e.g. "TASK-1").
	Parent string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Status == "" && q.Label == "" && q.Parent == ""
}

// Retrieve queries the index with optional full-text search and structured
// filters. Full-text queries are ranked by relevance; structured-only
// queries come back in emission order.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]Record, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT t.num, t.task_id, t.title, t.status, t.labels, t.parent,
				t.created_date, t.filename, t.body
			FROM tasks_fts
			JOIN tasks t ON t.num = tasks_fts.rowid
			WHERE tasks_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT t.num, t.task_id, t.title, t.status, t.labels, t.parent,
				t.created_date, t.filename, t.body
			FROM tasks t
			WHERE 1=1`)
	}

	if opts.Status != "" {
		qb.WriteString(` AND t.status = ?`)
		args = append(args, opts.Status)
	}

	if opts.Parent != "" {
		qb.WriteString(` AND t.parent = ?`)
		args = append(args, opts.Parent)
	}

	if opts.Label != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(t.labels) WHERE value = ?)`)
		args = append(args, opts.Label)
	}

	if useFTS {
		qb.WriteString(` ORDER BY tasks_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY t.num`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying task index: %w", err)
	}
	defer rows.Close()

	var results []Record
	for rows.Next() {
		var (
			rec        Record
			labelsJSON sql.NullString
			parent     sql.NullString
			created    sql.NullString
			status     sql.NullString
			body       sql.NullString
		)

		if err := rows.Scan(
			&rec.Num, &rec.TaskID, &rec.Title, &status, &labelsJSON,
			&parent, &created, &rec.Filename, &body,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		if status.Valid {
			rec.Status = status.String
		}
		if labelsJSON.Valid {
			json.Unmarshal([]byte(labelsJSON.String), &rec.Labels)
		}
		if parent.Valid {
			rec.Parent = parent.String
		}
		if created.Valid {
			rec.CreatedDate = created.String
		}
		if body.Valid {
			rec.Body = body.String
		}

		results = append(results, rec)
	}

	return results, rows.Err()
}

// Show returns the full on-disk content of the task file behind a
// namespaced id like "TASK-2".
func (s *Store) Show(ctx context.Context, taskID string) (string, error) {
	var filename string

	err := s.db.QueryRowContext(ctx,
		`SELECT filename FROM tasks WHERE task_id = ?`, taskID,
	).Scan(&filename)

	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("task %s not found", taskID)
		}
		return "", fmt.Errorf("looking up task: %w", err)
	}

	content, err := os.ReadFile(filepath.Join(s.tasksDir, filename))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", filename, err)
	}

	return string(content), nil
}
