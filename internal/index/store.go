// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index maintains a queryable SQLite index over generated task files.
// The tracker itself is file-based; the index gives the backlog a search
// surface without re-reading every file.
package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/story-migrate/pkg/types"
)

const (
	indexDir = ".index"
	dbFile   = "tasks.db"

	taskPrefix = "task-"
	taskExt    = ".md"
)

// Store manages the task index SQLite database.
type Store struct {
	db         *sql.DB
	tasksDir   string
	maxResults int
}

// NewStore opens or creates the index database at tasksDir/.index/tasks.db,
// creating the schema if it does not exist.
func NewStore(cfg types.IndexConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.TasksDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		tasksDir:   cfg.TasksDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			num INTEGER PRIMARY KEY,
			task_id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			status TEXT,
			labels TEXT,
			parent TEXT,
			created_date TEXT,
			filename TEXT NOT NULL,
			body TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			filename TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='tasks_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE tasks_fts USING fts5(title, body, content=tasks, content_rowid=num)`,
			`CREATE TRIGGER tasks_ai AFTER INSERT ON tasks BEGIN
				INSERT INTO tasks_fts(rowid, title, body) VALUES (new.num, new.title, new.body);
			END`,
			`CREATE TRIGGER tasks_ad AFTER DELETE ON tasks BEGIN
				INSERT INTO tasks_fts(tasks_fts, rowid, title, body) VALUES('delete', old.num, old.title, old.body);
			END`,
			`CREATE TRIGGER tasks_au AFTER UPDATE ON tasks BEGIN
				INSERT INTO tasks_fts(tasks_fts, rowid, title, body) VALUES('delete', old.num, old.title, old.body);
				INSERT INTO tasks_fts(rowid, title, body) VALUES (new.num, new.title, new.body);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from an indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of task files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest scans the tasks directory for task-*.md files and populates the
// database. Unchanged files are skipped by comparing modification times
// against the previous run; changed files replace their old rows.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	entries, err := os.ReadDir(s.tasksDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading tasks directory %s: %w", s.tasksDir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, taskPrefix) || !strings.HasSuffix(name, taskExt) {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE filename = ?`, name,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", name)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		data, err := os.ReadFile(filepath.Join(s.tasksDir, name))
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}

		rec, err := parseTaskFile(name, data)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", name, err)
			summary.Failed++
			continue
		}

		if err := s.ingestRecord(ctx, rec, modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%s)\n", name, rec.TaskID)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexed %s (%s)\n", name, rec.TaskID)
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	return summary, nil
}

func (s *Store) ingestRecord(ctx context.Context, rec Record, modTime string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Drop any rows previously produced from this file; a regeneration may
	// have reassigned its numeric identifier.
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE filename = ?`, rec.Filename); err != nil {
		return fmt.Errorf("deleting old rows: %w", err)
	}

	labelsJSON, _ := json.Marshal(rec.Labels)

	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO tasks (num, task_id, title, status, labels, parent, created_date, filename, body)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Num, rec.TaskID, rec.Title, rec.Status, string(labelsJSON),
		rec.Parent, rec.CreatedDate, rec.Filename, rec.Body,
	)
	if err != nil {
		return fmt.Errorf("inserting task %s: %w", rec.TaskID, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (filename, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(filename) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		rec.Filename, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}
